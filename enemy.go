package main

// Enemy is a wave attacker. Health scales with the wave number it
// spawned in; the other stats come from its variant. Dead enemies keep
// a corpse in the state for a grace period so clients can play death
// animations, then the cleanup pass removes them.
type Enemy struct {
	ID        string
	Type      EnemyType
	Position  Position
	Health    int
	MaxHealth int

	Speed        float64
	AttackDamage int
	AttackRange  float64
	AttackSpeed  float64
	AttackCD     float64

	Active    bool
	IsDead    bool
	DeathTime float64 // game time of death

	Mover
}

// WaveHealth is the health every enemy of wave n spawns with.
func WaveHealth(wave int) int {
	return 30 + 5*wave
}

// NewEnemy spawns an enemy of the given variant for the given wave.
func NewEnemy(id string, t EnemyType, pos Position, wave int) *Enemy {
	def := GetEnemyDef(t)
	hp := WaveHealth(wave)
	return &Enemy{
		ID:           id,
		Type:         t,
		Position:     pos,
		Health:       hp,
		MaxHealth:    hp,
		Speed:        def.Speed,
		AttackDamage: def.AttackDamage,
		AttackRange:  def.AttackRange,
		AttackSpeed:  def.AttackSpeed,
		Active:       true,
	}
}

// Alive reports whether the enemy still fights.
func (e *Enemy) Alive() bool {
	return !e.IsDead && e.Health > 0
}

// TakeDamage reduces health, flooring at zero. The caller records the
// death time; damage itself does not know the game clock.
func (e *Enemy) TakeDamage(dmg int) bool {
	if !e.Alive() {
		return false
	}
	e.Health -= dmg
	if e.Health <= 0 {
		e.Health = 0
		return true
	}
	return false
}

// Die marks the enemy dead at the given game time and freezes it.
func (e *Enemy) Die(gameTime float64) {
	e.Health = 0
	e.IsDead = true
	e.Active = false
	e.DeathTime = gameTime
	e.ClearTarget()
}
