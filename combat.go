package main

import "github.com/sirupsen/logrus"

// Combat resolution. Enemies pick victims in two stages: anything
// already inside strike range gets hit, otherwise the enemy acquires a
// movement goal (nearest hero or player building in aggro range, the
// building blocking its line of advance, or the Town Hall). Heroes
// fight back automatically against enemies in their own range. All
// strikes are gated by the attacker's attack speed.

// rollDamage applies the +-20% variance to a base damage value.
func (g *Game) rollDamage(base int) int {
	return int(float64(base) * (0.8 + g.rng.Float64()*0.4))
}

type strikeTarget struct {
	kind     TargetKind
	hero     *Hero
	building *Building
	unit     *Unit
	dist     float64
}

// stepEnemyAI drives every living enemy: tick its cooldown, strike if
// anything is in range, otherwise make sure it is marching somewhere
// useful.
func (g *Game) stepEnemyAI(dt float64) {
	for _, e := range g.state.Enemies {
		if !e.Alive() {
			continue
		}
		if e.AttackCD > 0 {
			e.AttackCD -= dt
		}

		if victim, ok := g.findStrikeTarget(e); ok {
			// Stop marching while something is in reach.
			if e.HasTarget() {
				e.ClearTarget()
			}
			if e.AttackCD <= 0 {
				g.enemyStrike(e, victim)
			}
			continue
		}

		g.ensureEnemyGoal(e)
	}
}

// findStrikeTarget returns the nearest victim already inside strike
// range: player buildings count with effective range, heroes and units
// with the plain attack range. Shared buildings (the Town Hall) are
// only struck when nothing else is reachable.
func (g *Game) findStrikeTarget(e *Enemy) (strikeTarget, bool) {
	best := strikeTarget{dist: -1}

	for _, b := range g.state.Buildings {
		if !b.Alive() || b.PlayerID == SharedOwner {
			continue
		}
		d := e.Position.DistanceTo(b.Center())
		if d <= b.EffectiveRange(e.AttackRange) && (best.dist < 0 || d < best.dist) {
			best = strikeTarget{kind: TargetBuilding, building: b, dist: d}
		}
	}
	for _, h := range g.state.Heroes {
		if !h.Alive() {
			continue
		}
		d := e.Position.DistanceTo(h.Position)
		if d <= e.AttackRange && (best.dist < 0 || d < best.dist) {
			best = strikeTarget{kind: TargetHero, hero: h, dist: d}
		}
	}
	for _, u := range g.state.Units {
		if !u.Alive() {
			continue
		}
		d := e.Position.DistanceTo(u.Position)
		if d <= e.AttackRange && (best.dist < 0 || d < best.dist) {
			best = strikeTarget{kind: TargetUnit, unit: u, dist: d}
		}
	}
	if best.dist >= 0 {
		return best, true
	}

	for _, b := range g.state.Buildings {
		if !b.Alive() || b.PlayerID != SharedOwner {
			continue
		}
		d := e.Position.DistanceTo(b.Center())
		if d <= b.EffectiveRange(e.AttackRange) && (best.dist < 0 || d < best.dist) {
			best = strikeTarget{kind: TargetBuilding, building: b, dist: d}
		}
	}
	return best, best.dist >= 0
}

// enemyStrike lands one hit and resets the attacker's cooldown.
func (g *Game) enemyStrike(e *Enemy, t strikeTarget) {
	dmg := g.rollDamage(e.AttackDamage)
	effType := enemyEffectType(e.Type)

	switch t.kind {
	case TargetBuilding:
		b := t.building
		if b.TakeDamage(dmg) {
			logger.WithFields(logrus.Fields{"building": b.Type, "enemy": e.ID}).Info("building destroyed")
			g.onBuildingDestroyed(b)
		}
		g.addEffect(e.ID, b.ID, effType, e.Position, b.Center(), dmg)
	case TargetHero:
		h := t.hero
		if h.TakeDamage(dmg) {
			logger.WithFields(logrus.Fields{"hero": h.Type, "player": h.PlayerID}).Info("hero killed")
			h.ClearTarget()
		}
		g.addEffect(e.ID, h.ID, effType, e.Position, h.Position, dmg)
	case TargetUnit:
		u := t.unit
		if u.TakeDamage(dmg) {
			u.ClearTarget()
		}
		g.addEffect(e.ID, u.ID, effType, e.Position, u.Position, dmg)
	}

	e.AttackCD = 1.0 / e.AttackSpeed
	g.markDirty()
}

// ensureEnemyGoal keeps the enemy marching: toward the nearest hero or
// player building inside aggro range, or toward whatever building
// blocks the straight line there, or toward the Town Hall.
func (g *Game) ensureEnemyGoal(e *Enemy) {
	kind, id, pos, follow := g.acquireEnemyGoal(e)
	if id == "" {
		if e.HasTarget() {
			return // keep whatever it had; nothing better exists
		}
		return
	}
	if e.Target != nil && e.Target.Kind == kind && e.Target.TargetID == id {
		return // already on it
	}
	e.SetTarget(&MovementTarget{
		Kind:           kind,
		TargetID:       id,
		Position:       pos,
		FollowDistance: follow,
	})
}

func (g *Game) acquireEnemyGoal(e *Enemy) (TargetKind, string, Position, float64) {
	aggro := g.config.EnemyAggroRadius

	var (
		kind   TargetKind
		id     string
		pos    Position
		follow float64
		best   = -1.0
	)
	for _, h := range g.state.Heroes {
		if !h.Alive() {
			continue
		}
		d := e.Position.DistanceTo(h.Position)
		if d <= aggro && (best < 0 || d < best) {
			kind, id, pos, follow = TargetHero, h.ID, h.Position, e.AttackRange
			best = d
		}
	}
	for _, b := range g.state.Buildings {
		if !b.Alive() || b.PlayerID == SharedOwner {
			continue
		}
		d := e.Position.DistanceTo(b.Center())
		if d <= aggro && (best < 0 || d < best) {
			kind, id, pos, follow = TargetBuilding, b.ID, b.Center(), b.EffectiveRange(e.AttackRange)
			best = d
		}
	}

	if best < 0 {
		th := g.state.FindTownHall()
		if th == nil || !th.Alive() {
			return "", "", Position{}, 0
		}
		kind, id, pos, follow = TargetBuilding, th.ID, th.Center(), th.EffectiveRange(e.AttackRange)
	}

	// Attack the obstacle: a building sitting on the straight line to
	// the goal becomes the goal.
	if blocker := g.losBlockingBuilding(e.Position, pos, id); blocker != nil {
		kind = TargetBuilding
		id = blocker.ID
		pos = blocker.Center()
		follow = blocker.EffectiveRange(e.AttackRange)
	}
	return kind, id, pos, follow
}

// losBlockingBuilding returns the living building nearest to `from`
// whose footprint crosses the segment from->to, excluding the intended
// destination itself.
func (g *Game) losBlockingBuilding(from, to Position, excludeID string) *Building {
	var nearest *Building
	nearestDist := 0.0
	for _, b := range g.state.Buildings {
		if !b.Alive() || b.ID == excludeID {
			continue
		}
		if !SegmentIntersectsRect(from, to, b.Position.X, b.Position.Y, float64(b.Width), float64(b.Height)) {
			continue
		}
		d := from.DistanceTo(b.Center())
		if nearest == nil || d < nearestDist {
			nearest = b
			nearestDist = d
		}
	}
	return nearest
}

// stepHeroCombat runs the automatic exchange between heroes and
// enemies standing inside each other's range. The spatial index bounds
// the enemy scan per hero.
func (g *Game) stepHeroCombat(dt float64) {
	for _, h := range g.state.Heroes {
		if h.AttackCD > 0 {
			h.AttackCD -= dt
		}
		if !h.Alive() {
			continue
		}

		reach := h.AttackRange
		if EnemyMaxAttackRange > reach {
			reach = EnemyMaxAttackRange
		}
		refs := g.spatial.QueryBuf(h.Position.X, h.Position.Y, reach, g.queryBuf[:0])
		g.queryBuf = refs[:0]
		for _, ref := range refs {
			if ref.Kind != 'e' {
				continue
			}
			e, ok := g.state.Enemies[ref.ID]
			if !ok || !e.Alive() {
				continue
			}
			d := h.Position.DistanceTo(e.Position)

			if d <= h.AttackRange && h.AttackCD <= 0 {
				dmg := g.rollDamage(h.AttackDamage)
				if e.TakeDamage(dmg) {
					e.Die(g.state.GameTime)
					g.onEnemyKilled(h.PlayerID)
				}
				g.addEffect(h.ID, e.ID, heroEffectType(h.Type), h.Position, e.Position, dmg)
				h.AttackCD = 1.0 / h.AttackSpeed
				g.markDirty()
			}

			if e.Alive() && d <= e.AttackRange && e.AttackCD <= 0 {
				dmg := g.rollDamage(e.AttackDamage)
				if h.TakeDamage(dmg) {
					logger.WithFields(logrus.Fields{"hero": h.Type, "player": h.PlayerID}).Info("hero killed")
					h.ClearTarget()
				}
				g.addEffect(e.ID, h.ID, enemyEffectType(e.Type), e.Position, h.Position, dmg)
				e.AttackCD = 1.0 / e.AttackSpeed
				g.markDirty()
			}

			if !h.Alive() {
				break
			}
		}
	}
}

// addEffect appends a transient attack-effect record for clients.
func (g *Game) addEffect(attackerID, targetID, effType string, from, to Position, damage int) {
	g.state.Effects = append(g.state.Effects,
		NewAttackEffect(attackerID, targetID, effType, from, to, damage, g.state.GameTime))
	g.markDirty()
}
