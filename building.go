package main

// Building occupies a rectangle of whole tiles. Position is the
// top-left anchor; Center is derived. Destroyed buildings stay in the
// state as ruins so the footprint remains occupied and clients can
// render them, but they stop blocking movement.
type Building struct {
	ID        string
	Type      BuildingType
	PlayerID  string // SharedOwner for the Town Hall
	Position  Position
	Width     int
	Height    int
	Health    int
	MaxHealth int
}

// NewBuilding places a building of the given type with its anchor at
// whole-tile coordinates (tx, ty).
func NewBuilding(id string, t BuildingType, playerID string, tx, ty int) (*Building, bool) {
	def, ok := GetBuildingDef(t)
	if !ok {
		return nil, false
	}
	return &Building{
		ID:        id,
		Type:      t,
		PlayerID:  playerID,
		Position:  Position{X: float64(tx), Y: float64(ty)},
		Width:     def.Width,
		Height:    def.Height,
		Health:    def.Health,
		MaxHealth: def.Health,
	}, true
}

// Center returns the middle of the footprint in tile units.
func (b *Building) Center() Position {
	return Position{
		X: b.Position.X + float64(b.Width)/2,
		Y: b.Position.Y + float64(b.Height)/2,
	}
}

// Covers reports whether the footprint includes the tile.
func (b *Building) Covers(tx, ty int) bool {
	ax, ay := int(b.Position.X), int(b.Position.Y)
	return tx >= ax && tx < ax+b.Width && ty >= ay && ty < ay+b.Height
}

// EffectiveRange widens an attacker's reach by half the footprint so
// range is measured to the building's edge rather than its center.
func (b *Building) EffectiveRange(attackRange float64) float64 {
	half := float64(b.Width)
	if b.Height > b.Width {
		half = float64(b.Height)
	}
	return attackRange + half/2
}

// Alive reports whether the building still stands.
func (b *Building) Alive() bool {
	return b.Health > 0
}

// TakeDamage reduces health, flooring at zero. Returns true when this
// hit destroyed the building.
func (b *Building) TakeDamage(dmg int) bool {
	if b.Health <= 0 {
		return false
	}
	b.Health -= dmg
	if b.Health <= 0 {
		b.Health = 0
		return true
	}
	return false
}
