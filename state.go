package main

// Position is a point in tile units, the canonical coordinate space of
// the simulation. Pixel coordinates exist only on the wire; PixelPoint
// is the only other point type and ToTiles/ToPixels are the only
// conversions between the two spaces.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PixelPoint is a point in pixel units as used by clients for building
// placement. Never stored in simulation state.
type PixelPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ToTiles converts a wire pixel point into tile units.
func (p PixelPoint) ToTiles() Position {
	return Position{X: p.X / TileSize, Y: p.Y / TileSize}
}

// ToPixels converts a tile position into wire pixel units.
func (p Position) ToPixels() PixelPoint {
	return PixelPoint{X: p.X * TileSize, Y: p.Y * TileSize}
}

// DistanceTo returns the Euclidean distance to another position.
func (p Position) DistanceTo(o Position) float64 {
	return Distance(p.X, p.Y, o.X, o.Y)
}

// Resources is a player's stockpile. Quantities never go negative.
type Resources struct {
	Wood  int `json:"wood"`
	Stone int `json:"stone"`
	Wheat int `json:"wheat"`
	Metal int `json:"metal"`
	Gold  int `json:"gold"`
}

// CanAfford reports whether every component of cost is covered.
func (r Resources) CanAfford(cost Resources) bool {
	return r.Wood >= cost.Wood &&
		r.Stone >= cost.Stone &&
		r.Wheat >= cost.Wheat &&
		r.Metal >= cost.Metal &&
		r.Gold >= cost.Gold
}

// Deduct subtracts cost, flooring each component at zero.
func (r *Resources) Deduct(cost Resources) {
	r.Wood = maxInt(0, r.Wood-cost.Wood)
	r.Stone = maxInt(0, r.Stone-cost.Stone)
	r.Wheat = maxInt(0, r.Wheat-cost.Wheat)
	r.Metal = maxInt(0, r.Metal-cost.Metal)
	r.Gold = maxInt(0, r.Gold-cost.Gold)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// TargetKind distinguishes what a movement order follows.
type TargetKind string

const (
	TargetPosition TargetKind = "POSITION"
	TargetHero     TargetKind = "HERO"
	TargetBuilding TargetKind = "BUILDING"
	TargetEnemy    TargetKind = "ENEMY"
	TargetUnit     TargetKind = "UNIT"
)

// MovementTarget is an active movement order: either a fixed position
// or a followed entity, plus the stand-off distance at which the order
// counts as fulfilled.
type MovementTarget struct {
	Kind           TargetKind
	TargetID       string
	Position       Position // resolved target position, tile units
	FollowDistance float64
}

// FollowDistanceFor returns the stand-off distance for a target kind.
func FollowDistanceFor(kind TargetKind) float64 {
	switch kind {
	case TargetBuilding:
		return FollowDistBuilding
	case TargetEnemy:
		return FollowDistEnemy
	case TargetUnit:
		return FollowDistUnit
	case TargetHero:
		return FollowDistHero
	default:
		return FollowDistPosition
	}
}

// Game-over reasons.
const (
	GameOverTownHallDestroyed = "town_hall_destroyed"
	GameOverAllDisconnected   = "all_players_disconnected"
)

// SharedOwner marks buildings owned by the whole lobby (the Town Hall).
const SharedOwner = "shared"

// GameState is the aggregate root for one lobby's simulation. It is
// owned exclusively by that lobby's Game; nothing outside the Game's
// loop or its mutex-holding command handlers may touch it.
type GameState struct {
	LobbyID   string
	Players   map[string]*Player
	Heroes    map[string]*Hero
	Buildings map[string]*Building
	Units     map[string]*Unit
	Enemies   map[string]*Enemy
	Pings     map[string]*Ping
	Effects   []*AttackEffect

	Tiles [][]TileType
	Fog   [][]bool

	GameTime       float64
	WaveNumber     int
	NextWaveTime   float64 // game time of the next wave spawn
	IsActive       bool
	IsPaused       bool
	GameOverReason string
}

// MapWidth returns the tile grid width.
func (s *GameState) MapWidth() int {
	if len(s.Tiles) == 0 {
		return 0
	}
	return len(s.Tiles[0])
}

// MapHeight returns the tile grid height.
func (s *GameState) MapHeight() int {
	return len(s.Tiles)
}

// InBounds reports whether the tile coordinates are on the map.
func (s *GameState) InBounds(tx, ty int) bool {
	return tx >= 0 && ty >= 0 && tx < s.MapWidth() && ty < s.MapHeight()
}

// TileAt returns the tile type at the given coordinates. Out-of-bounds
// reads as a wall so callers treat the border as impassable.
func (s *GameState) TileAt(tx, ty int) TileType {
	if !s.InBounds(tx, ty) {
		return TileWall
	}
	return s.Tiles[ty][tx]
}

// IsWalkable reports whether an actor can occupy the tile: terrain must
// allow it and no living building footprint may cover it.
func (s *GameState) IsWalkable(tx, ty int) bool {
	if !s.TileAt(tx, ty).Walkable() {
		return false
	}
	for _, b := range s.Buildings {
		if b.Health <= 0 {
			continue
		}
		if b.Covers(tx, ty) {
			return false
		}
	}
	return true
}

// FindTownHall returns the Town Hall building, dead or alive, or nil if
// none was ever placed. Callers that need a living one check Alive.
func (s *GameState) FindTownHall() *Building {
	for _, b := range s.Buildings {
		if b.Type == BuildingTownHall {
			return b
		}
	}
	return nil
}

// FootprintFree reports whether a w×h footprint anchored at tile
// (tx,ty) is fully in bounds and overlaps no existing building,
// regardless of the other building's health: ruins still occupy ground.
func (s *GameState) FootprintFree(tx, ty, w, h int) bool {
	for dx := 0; dx < w; dx++ {
		for dy := 0; dy < h; dy++ {
			x, y := tx+dx, ty+dy
			if !s.InBounds(x, y) {
				return false
			}
			for _, b := range s.Buildings {
				if b.Covers(x, y) {
					return false
				}
			}
		}
	}
	return true
}

// Explored reports whether the fog of war has been lifted at the tile.
func (s *GameState) Explored(tx, ty int) bool {
	if !s.InBounds(tx, ty) {
		return false
	}
	return s.Fog[ty][tx]
}

// HeroOf returns the hero owned by the given player, or nil.
func (s *GameState) HeroOf(playerID string) *Hero {
	for _, h := range s.Heroes {
		if h.PlayerID == playerID {
			return h
		}
	}
	return nil
}
