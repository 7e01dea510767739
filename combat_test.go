package main

import (
	"math"
	"testing"
)

func TestEffectiveRangeMeasuresToFootprintEdge(t *testing.T) {
	th, _ := NewBuilding("th", BuildingTownHall, SharedOwner, 20, 20)
	wall, _ := NewBuilding("w", BuildingWall, "p1", 20, 20)

	// Range 1.0 against a 3x3 footprint reaches 2.5 from the center, so
	// an attacker standing 2.3 away connects.
	if got := th.EffectiveRange(1.0); math.Abs(got-2.5) > 1e-9 {
		t.Errorf("3x3 effective range = %v, want 2.5", got)
	}
	if th.EffectiveRange(1.0) < 2.3 {
		t.Error("attacker at center distance 2.3 should reach a 3x3 building")
	}
	if got := wall.EffectiveRange(1.0); math.Abs(got-1.5) > 1e-9 {
		t.Errorf("1x1 effective range = %v, want 1.5", got)
	}
	// At equal attack range a bigger footprint is reachable from farther
	// out, never closer.
	if wall.EffectiveRange(1.0) >= th.EffectiveRange(1.0) {
		t.Error("1x1 reach should be shorter than 3x3 reach")
	}
}

func TestRollDamageBounds(t *testing.T) {
	g, _ := newTestGame("Ana")
	for i := 0; i < 200; i++ {
		d := g.rollDamage(10)
		if d < 8 || d > 12 {
			t.Fatalf("rolled %d from base 10, want 8..12", d)
		}
	}
}

func TestHeroStrikesEnemyInRange(t *testing.T) {
	g, roster := newTestGame("Ana")
	h := g.state.HeroOf(roster[0].ID)
	h.AttackCD = 0

	e := NewEnemy("e1", EnemyBasic, Position{X: h.Position.X + 1, Y: h.Position.Y}, 1)
	e.Health = 40
	g.state.Enemies[e.ID] = e
	g.rebuildSpatial()

	g.stepHeroCombat(g.config.TickDuration())

	if e.Health >= 40 {
		t.Error("enemy in range took no damage")
	}
	if h.AttackCD <= 0 {
		t.Error("hero cooldown not reset after striking")
	}
	if len(g.state.Effects) == 0 {
		t.Error("strike produced no attack effect")
	}
}

func TestHeroKillCreditsPlayer(t *testing.T) {
	g, roster := newTestGame("Ana")
	h := g.state.HeroOf(roster[0].ID)
	h.AttackCD = 0

	e := NewEnemy("e1", EnemyBasic, Position{X: h.Position.X + 1, Y: h.Position.Y}, 1)
	e.Health = 1
	g.state.Enemies[e.ID] = e
	g.rebuildSpatial()

	g.stepHeroCombat(g.config.TickDuration())

	if e.Alive() {
		t.Fatal("enemy with 1 hp survived a strike")
	}
	if got := g.killCounts[roster[0].ID]; got != 1 {
		t.Errorf("kill count = %d, want 1", got)
	}
}

func TestEnemyOutOfHeroRangeUntouched(t *testing.T) {
	g, roster := newTestGame("Ana")
	h := g.state.HeroOf(roster[0].ID)
	h.AttackCD = 0

	e := NewEnemy("e1", EnemyBasic, Position{X: h.Position.X + 8, Y: h.Position.Y}, 1)
	hp := e.Health
	g.state.Enemies[e.ID] = e
	g.rebuildSpatial()

	g.stepHeroCombat(g.config.TickDuration())
	if e.Health != hp {
		t.Error("enemy outside attack range took damage")
	}
}

func TestEnemyStrikesHero(t *testing.T) {
	g, roster := newTestGame("Ana")
	h := g.state.HeroOf(roster[0].ID)
	hp := h.Health

	e := NewEnemy("e1", EnemyBasic, Position{X: h.Position.X + 0.5, Y: h.Position.Y}, 1)
	e.AttackCD = 0
	g.state.Enemies[e.ID] = e

	g.stepEnemyAI(g.config.TickDuration())

	if h.Health >= hp {
		t.Error("hero in strike range took no damage")
	}
	if e.AttackCD <= 0 {
		t.Error("enemy cooldown not reset after striking")
	}
}

func TestEnemyCooldownGatesStrikes(t *testing.T) {
	g, roster := newTestGame("Ana")
	h := g.state.HeroOf(roster[0].ID)
	hp := h.Health

	e := NewEnemy("e1", EnemyBasic, Position{X: h.Position.X + 0.5, Y: h.Position.Y}, 1)
	e.AttackCD = 5
	g.state.Enemies[e.ID] = e

	dt := g.config.TickDuration()
	g.stepEnemyAI(dt)

	if h.Health != hp {
		t.Error("enemy struck while on cooldown")
	}
	if e.AttackCD >= 5 {
		t.Error("cooldown did not tick down")
	}
}

func TestStrikePrefersPlayerBuildingOverTownHall(t *testing.T) {
	g, roster := newTestGame("Ana")

	wall, ok := NewBuilding("w1", BuildingWall, roster[0].ID, 23, 20)
	if !ok {
		t.Fatal("wall not created")
	}
	g.state.Buildings[wall.ID] = wall

	// Both the wall and the Town Hall are within reach here.
	e := NewEnemy("e1", EnemyBasic, Position{X: 22.8, Y: 20.5}, 1)
	g.state.Enemies[e.ID] = e

	victim, found := g.findStrikeTarget(e)
	if !found {
		t.Fatal("no strike target found")
	}
	if victim.kind != TargetBuilding || victim.building.ID != wall.ID {
		t.Errorf("struck %v, want the player wall", victim.kind)
	}
}

func TestStrikeFallsBackToTownHall(t *testing.T) {
	g, _ := newTestGame("Ana")
	th := g.state.FindTownHall()

	e := NewEnemy("e1", EnemyBasic, Position{X: 22.8, Y: 20.5}, 1)
	g.state.Enemies[e.ID] = e

	victim, found := g.findStrikeTarget(e)
	if !found {
		t.Fatal("no strike target found")
	}
	if victim.building == nil || victim.building.ID != th.ID {
		t.Error("expected the shared Town Hall as the fallback victim")
	}
}

func TestEnemyGoalDefaultsToTownHall(t *testing.T) {
	g, _ := newTestGame("Ana")
	th := g.state.FindTownHall()

	e := NewEnemy("e1", EnemyBasic, Position{X: 2, Y: 2}, 1)
	g.state.Enemies[e.ID] = e

	g.ensureEnemyGoal(e)
	if e.Target == nil {
		t.Fatal("enemy has no goal")
	}
	if e.Target.Kind != TargetBuilding || e.Target.TargetID != th.ID {
		t.Errorf("goal = %v %s, want the Town Hall", e.Target.Kind, e.Target.TargetID)
	}
}

func TestEnemyAggroPrefersNearbyHero(t *testing.T) {
	g, roster := newTestGame("Ana")
	h := g.state.HeroOf(roster[0].ID)

	e := NewEnemy("e1", EnemyBasic, Position{X: h.Position.X - 4, Y: h.Position.Y - 4}, 1)
	g.state.Enemies[e.ID] = e

	g.ensureEnemyGoal(e)
	if e.Target == nil {
		t.Fatal("enemy has no goal")
	}
	if e.Target.Kind != TargetHero || e.Target.TargetID != h.ID {
		t.Errorf("goal = %v %s, want the hero in aggro range", e.Target.Kind, e.Target.TargetID)
	}
}

func TestBlockingBuildingBecomesGoal(t *testing.T) {
	g, roster := newTestGame("Ana")
	th := g.state.FindTownHall()

	// A wall squarely on the straight line from the enemy to the hall.
	wall, _ := NewBuilding("w1", BuildingWall, roster[0].ID, 10, 20)
	g.state.Buildings[wall.ID] = wall

	e := NewEnemy("e1", EnemyBasic, Position{X: 2, Y: 20.5}, 1)
	g.state.Enemies[e.ID] = e

	kind, id, _, _ := g.acquireEnemyGoal(e)
	if kind != TargetBuilding {
		t.Fatalf("goal kind = %v, want building", kind)
	}
	if id != wall.ID {
		t.Errorf("goal = %s, want the blocking wall, not %s", id, th.ID)
	}
}

func TestLosBlockingBuildingExcludesDestination(t *testing.T) {
	g, roster := newTestGame("Ana")

	wall, _ := NewBuilding("w1", BuildingWall, roster[0].ID, 10, 10)
	g.state.Buildings[wall.ID] = wall

	from := Position{X: 5.5, Y: 10.5}
	to := Position{X: 15.5, Y: 10.5}
	if b := g.losBlockingBuilding(from, to, ""); b == nil || b.ID != wall.ID {
		t.Error("wall on the segment not detected")
	}
	if b := g.losBlockingBuilding(from, to, wall.ID); b != nil {
		t.Error("excluded destination reported as a blocker")
	}
}
