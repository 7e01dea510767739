package main

import "math"

// Mover is the movement component shared by heroes, units and enemies:
// the active order plus the waypoint route serving it.
type Mover struct {
	Target    *MovementTarget
	Path      []Position
	PathIndex int
}

// SetTarget replaces the current order. The next movement step plans a
// fresh route.
func (m *Mover) SetTarget(t *MovementTarget) {
	m.Target = t
	m.Path = nil
	m.PathIndex = 0
}

// SetPath installs a route for the current order.
func (m *Mover) SetPath(path []Position) {
	m.Path = path
	m.PathIndex = 0
}

// ClearTarget drops the order and its route.
func (m *Mover) ClearTarget() {
	m.Target = nil
	m.Path = nil
	m.PathIndex = 0
}

// HasTarget reports whether an order is active.
func (m *Mover) HasTarget() bool {
	return m.Target != nil
}

func (m *Mover) pathDone() bool {
	return m.PathIndex >= len(m.Path)
}

// stepMovement advances every mover one tick. Heroes and units avoid
// other movers by replanning; enemies instead get nudged apart after
// moving, so packed waves keep flowing instead of thrashing the
// pathfinder.
func (g *Game) stepMovement(dt float64) {
	for _, h := range g.state.Heroes {
		if !h.Alive() {
			continue
		}
		if g.stepMover(h.ID, &h.Position, &h.Mover, h.Speed, dt, true) {
			g.revealAround(h.Position, HeroVisionRadius)
			g.markDirty()
		}
	}
	for _, u := range g.state.Units {
		if !u.Alive() {
			continue
		}
		if g.stepMover(u.ID, &u.Position, &u.Mover, u.Speed, dt, true) {
			g.markDirty()
		}
	}
	for _, e := range g.state.Enemies {
		if !e.Alive() {
			continue
		}
		if g.stepMover(e.ID, &e.Position, &e.Mover, e.Speed, dt, false) {
			g.separateEnemy(e)
			g.markDirty()
		}
	}
}

// stepMover advances one mover along its route and returns whether it
// moved. Follow targets are re-resolved each tick: when the entity has
// drifted more than half a tile on either axis the route is replanned,
// and when it dies the order is dropped.
func (g *Game) stepMover(id string, pos *Position, mv *Mover, speed, dt float64, avoidMovers bool) bool {
	t := mv.Target
	if t == nil {
		return false
	}

	if t.Kind != TargetPosition && t.TargetID != "" {
		cur, ok := g.resolveTarget(t)
		if !ok {
			mv.ClearTarget()
			return false
		}
		if math.Abs(cur.X-t.Position.X) > TargetDriftReplan ||
			math.Abs(cur.Y-t.Position.Y) > TargetDriftReplan {
			t.Position = cur
			g.replan(id, *pos, mv)
		}
	}

	if len(mv.Path) == 0 {
		g.replan(id, *pos, mv)
		if len(mv.Path) == 0 {
			mv.ClearTarget()
			return false
		}
	}

	moved := false
	for !mv.pathDone() {
		next := mv.Path[mv.PathIndex]
		dx := next.X - pos.X
		dy := next.Y - pos.Y
		dist := math.Hypot(dx, dy)

		if dist <= WaypointArriveDist {
			mv.PathIndex++
			continue
		}

		step := speed * dt
		if step >= dist {
			if avoidMovers && g.dynamicObstacleAt(next.X, next.Y, id) {
				g.replan(id, *pos, mv)
				break
			}
			*pos = next
			mv.PathIndex++
			moved = true
		} else {
			nx := pos.X + dx/dist*step
			ny := pos.Y + dy/dist*step
			if avoidMovers && g.dynamicObstacleAt(nx, ny, id) {
				g.replan(id, *pos, mv)
				break
			}
			pos.X = nx
			pos.Y = ny
			g.clampToMap(pos)
			moved = true
		}
		break
	}

	if mv.pathDone() && mv.Target != nil {
		if pos.DistanceTo(mv.Target.Position) <= mv.Target.FollowDistance {
			mv.ClearTarget()
		} else {
			g.replan(id, *pos, mv)
			if len(mv.Path) == 0 {
				mv.ClearTarget()
			}
		}
	}
	return moved
}

// resolveTarget returns the live position of a followed entity, or
// false when it is gone or dead. Buildings resolve to their center.
func (g *Game) resolveTarget(t *MovementTarget) (Position, bool) {
	switch t.Kind {
	case TargetHero:
		if h, ok := g.state.Heroes[t.TargetID]; ok && h.Alive() {
			return h.Position, true
		}
	case TargetBuilding:
		if b, ok := g.state.Buildings[t.TargetID]; ok && b.Alive() {
			return b.Center(), true
		}
	case TargetEnemy:
		if e, ok := g.state.Enemies[t.TargetID]; ok && e.Alive() {
			return e.Position, true
		}
	case TargetUnit:
		if u, ok := g.state.Units[t.TargetID]; ok && u.Alive() {
			return u.Position, true
		}
	default:
		return t.Position, true
	}
	return Position{}, false
}

// replan recomputes the route for the mover's current order.
func (g *Game) replan(id string, from Position, mv *Mover) {
	if mv.Target == nil {
		return
	}
	goal := g.approachPoint(from, mv.Target)
	mv.SetPath(g.findPath(from, goal, id))
}

// approachPoint picks where to actually walk. Building targets route
// to a point just off the nearest edge of the footprint instead of the
// unwalkable center.
func (g *Game) approachPoint(from Position, t *MovementTarget) Position {
	if t.Kind == TargetBuilding && t.TargetID != "" && t.FollowDistance > 0 {
		if b, ok := g.state.Buildings[t.TargetID]; ok && b.Alive() {
			cx := Clamp(from.X, b.Position.X, b.Position.X+float64(b.Width))
			cy := Clamp(from.Y, b.Position.Y, b.Position.Y+float64(b.Height))
			dx := from.X - cx
			dy := from.Y - cy
			d := math.Hypot(dx, dy)
			if d > 0 {
				return Position{X: cx + dx/d*t.FollowDistance, Y: cy + dy/d*t.FollowDistance}
			}
			return b.Center()
		}
	}
	return t.Position
}

// dynamicObstacleAt reports whether another hero or living enemy sits
// within the collision box of the given point.
func (g *Game) dynamicObstacleAt(x, y float64, excludeID string) bool {
	for id, h := range g.state.Heroes {
		if id == excludeID || !h.Alive() {
			continue
		}
		if math.Abs(h.Position.X-x) < DynamicObstacleDist && math.Abs(h.Position.Y-y) < DynamicObstacleDist {
			return true
		}
	}
	for id, e := range g.state.Enemies {
		if id == excludeID || !e.Alive() {
			continue
		}
		if math.Abs(e.Position.X-x) < DynamicObstacleDist && math.Abs(e.Position.Y-y) < DynamicObstacleDist {
			return true
		}
	}
	return false
}

// separateEnemy nudges an enemy off any packmate it has crowded into.
// The nudge is random so stacked spawns unstack over a few ticks.
func (g *Game) separateEnemy(e *Enemy) {
	refs := g.spatial.QueryBuf(e.Position.X, e.Position.Y, EnemySeparationDist+0.5, g.queryBuf[:0])
	g.queryBuf = refs[:0]
	for _, ref := range refs {
		if ref.Kind != 'e' || ref.ID == e.ID {
			continue
		}
		other, ok := g.state.Enemies[ref.ID]
		if !ok || !other.Alive() {
			continue
		}
		if math.Abs(other.Position.X-e.Position.X) < EnemySeparationDist &&
			math.Abs(other.Position.Y-e.Position.Y) < EnemySeparationDist {
			e.Position.X += g.rng.Float64() - 0.5
			e.Position.Y += g.rng.Float64() - 0.5
			g.clampToMap(&e.Position)
			break
		}
	}
}

// clampToMap keeps a position half a tile inside the playable area.
func (g *Game) clampToMap(p *Position) {
	p.X = Clamp(p.X, 0.5, float64(g.state.MapWidth())-0.5)
	p.Y = Clamp(p.Y, 0.5, float64(g.state.MapHeight())-0.5)
}
