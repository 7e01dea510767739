package main

// Unit is a player-owned ground unit. Units ride the same movement
// pipeline as heroes and are valid follow and attack targets; they
// carry no weapons of their own.
type Unit struct {
	ID        string
	Type      UnitType
	PlayerID  string
	Position  Position
	Health    int
	MaxHealth int
	Speed     float64

	Mover
}

// NewUnit spawns a unit of the given type at pos.
func NewUnit(id, playerID string, t UnitType, pos Position) *Unit {
	def, ok := GetUnitDef(t)
	if !ok {
		def = unitDefs[UnitSoldier]
		t = UnitSoldier
	}
	return &Unit{
		ID:        id,
		PlayerID:  playerID,
		Type:      t,
		Position:  pos,
		Health:    def.Health,
		MaxHealth: def.Health,
		Speed:     def.Speed,
	}
}

// Alive reports whether the unit can still be targeted.
func (u *Unit) Alive() bool {
	return u.Health > 0
}

// TakeDamage reduces health, flooring at zero. Returns true on death.
func (u *Unit) TakeDamage(dmg int) bool {
	if u.Health <= 0 {
		return false
	}
	u.Health -= dmg
	if u.Health <= 0 {
		u.Health = 0
		return true
	}
	return false
}
