package main

// Hero is a player's avatar in the world. Stats are copied from the
// class definition at spawn so later catalog changes never mutate a
// running game. A dead hero stays in the state at zero health; there
// is no respawn.
type Hero struct {
	ID        string
	PlayerID  string
	Type      HeroType
	Position  Position
	Health    int
	MaxHealth int

	Speed        float64 // tiles per second
	BuildSpeed   float64
	AttackDamage int
	AttackRange  float64 // tiles
	AttackSpeed  float64 // attacks per second
	AttackCD     float64 // seconds until the next attack is allowed

	Mover
}

// NewHero spawns a hero of the given class at pos.
func NewHero(id, playerID string, t HeroType, pos Position) *Hero {
	def := GetHeroClass(t)
	return &Hero{
		ID:           id,
		PlayerID:     playerID,
		Type:         t,
		Position:     pos,
		Health:       def.Health,
		MaxHealth:    def.Health,
		Speed:        def.Speed,
		BuildSpeed:   def.BuildSpeed,
		AttackDamage: def.AttackDamage,
		AttackRange:  def.AttackRange,
		AttackSpeed:  def.AttackSpeed,
	}
}

// Alive reports whether the hero can still act.
func (h *Hero) Alive() bool {
	return h.Health > 0
}

// TakeDamage reduces health, flooring at zero. Returns true on death.
func (h *Hero) TakeDamage(dmg int) bool {
	if h.Health <= 0 {
		return false
	}
	h.Health -= dmg
	if h.Health <= 0 {
		h.Health = 0
		return true
	}
	return false
}
