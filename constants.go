package main

// TileSize is the pixel edge length of one map tile. Clients position
// buildings in pixels; everything inside the simulation is tile units.
const TileSize = 32.0

// TileType identifies what occupies a map cell.
type TileType uint8

const (
	TileEmpty TileType = 0
	TileWood  TileType = 1 // trees, blocks movement
	TileStone TileType = 2
	TileWheat TileType = 3
	TileMetal TileType = 4
	TileGold  TileType = 5
	TileWall  TileType = 6 // impassable terrain
)

// Walkable reports whether actors can stand on this tile type.
func (t TileType) Walkable() bool {
	return t != TileWood && t != TileWall
}

var tileNames = [...]string{"EMPTY", "WOOD", "STONE", "WHEAT", "METAL", "GOLD", "WALL"}

func (t TileType) String() string {
	if int(t) < len(tileNames) {
		return tileNames[t]
	}
	return "EMPTY"
}

// MarshalJSON emits the tile name so JSON snapshots stay readable.
// Binary snapshots skip this and encode the raw byte.
func (t TileType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// TileTypeFromName maps a tile name back to its compact form.
func TileTypeFromName(name string) TileType {
	for i, n := range tileNames {
		if n == name {
			return TileType(i)
		}
	}
	return TileEmpty
}

// HeroType identifies a hero class.
type HeroType string

const (
	HeroTank    HeroType = "TANK"
	HeroBuilder HeroType = "BUILDER"
	HeroArcher  HeroType = "ARCHER"
	HeroMage    HeroType = "MAGE"
)

// HeroClassDef holds the stats for a hero class.
type HeroClassDef struct {
	Health       int
	Speed        float64 // tiles/s
	BuildSpeed   float64
	AttackDamage int
	AttackRange  float64 // tiles
	AttackSpeed  float64 // attacks/s
}

var heroClasses = map[HeroType]HeroClassDef{
	HeroTank:    {Health: 200, Speed: 2, BuildSpeed: 1.0, AttackDamage: 15, AttackRange: 1.5, AttackSpeed: 0.8},
	HeroBuilder: {Health: 150, Speed: 4, BuildSpeed: 2.0, AttackDamage: 8, AttackRange: 1.2, AttackSpeed: 1.0},
	HeroArcher:  {Health: 80, Speed: 4, BuildSpeed: 1.0, AttackDamage: 12, AttackRange: 6.0, AttackSpeed: 1.5},
	HeroMage:    {Health: 70, Speed: 3, BuildSpeed: 1.0, AttackDamage: 40, AttackRange: 4.0, AttackSpeed: 0.5},
}

// GetHeroClass returns the definition for a hero type, falling back to
// the tank for unknown values.
func GetHeroClass(t HeroType) HeroClassDef {
	if def, ok := heroClasses[t]; ok {
		return def
	}
	return heroClasses[HeroTank]
}

// ValidHeroType reports whether t names a playable class.
func ValidHeroType(t HeroType) bool {
	_, ok := heroClasses[t]
	return ok
}

// BuildingType identifies a structure.
type BuildingType string

const (
	BuildingTownHall      BuildingType = "TOWN_HALL"
	BuildingWall          BuildingType = "WALL"
	BuildingTower         BuildingType = "TOWER"
	BuildingFarm          BuildingType = "FARM"
	BuildingMine          BuildingType = "MINE"
	BuildingWoodCutter    BuildingType = "WOOD_CUTTER"
	BuildingGoldMine      BuildingType = "GOLD_MINE"
	BuildingBarracks      BuildingType = "BARRACKS"
	BuildingArcheryRange  BuildingType = "ARCHERY_RANGE"
	BuildingCannonFoundry BuildingType = "CANNON_FOUNDRY"
)

// BuildingDef describes one buildable structure.
type BuildingDef struct {
	Type   BuildingType
	Health int
	Cost   Resources
	Width  int // footprint in tiles
	Height int
}

// BuildingCatalog is the full list of placeable structures. The Town
// Hall appears here too: it is placed by the simulation at start, never
// by a build command (cost left zero).
var BuildingCatalog = []BuildingDef{
	{Type: BuildingTownHall, Health: 1000, Cost: Resources{}, Width: 3, Height: 3},
	{Type: BuildingWall, Health: 50, Cost: Resources{Wood: 10}, Width: 1, Height: 1},
	{Type: BuildingTower, Health: 100, Cost: Resources{Wood: 20, Stone: 15}, Width: 1, Height: 1},
	{Type: BuildingFarm, Health: 75, Cost: Resources{Wood: 15}, Width: 2, Height: 2},
	{Type: BuildingMine, Health: 100, Cost: Resources{Wood: 25, Stone: 10}, Width: 2, Height: 2},
	{Type: BuildingWoodCutter, Health: 80, Cost: Resources{Wood: 20}, Width: 2, Height: 2},
	{Type: BuildingGoldMine, Health: 120, Cost: Resources{Wood: 30, Stone: 20}, Width: 2, Height: 2},
	{Type: BuildingBarracks, Health: 150, Cost: Resources{Wood: 40, Stone: 30}, Width: 3, Height: 2},
	{Type: BuildingArcheryRange, Health: 120, Cost: Resources{Wood: 35, Stone: 25}, Width: 3, Height: 2},
	{Type: BuildingCannonFoundry, Health: 200, Cost: Resources{Wood: 50, Stone: 40, Metal: 20}, Width: 3, Height: 3},
}

// buildingDefs provides O(1) lookup by type.
var buildingDefs map[BuildingType]BuildingDef

func init() {
	buildingDefs = make(map[BuildingType]BuildingDef, len(BuildingCatalog))
	for _, def := range BuildingCatalog {
		buildingDefs[def.Type] = def
	}
}

// GetBuildingDef returns the definition for a building type.
func GetBuildingDef(t BuildingType) (BuildingDef, bool) {
	def, ok := buildingDefs[t]
	return def, ok
}

// EnemyType identifies an attacker variant.
type EnemyType string

const (
	EnemyBasic  EnemyType = "BASIC"
	EnemyRanged EnemyType = "RANGED"
	EnemyHeavy  EnemyType = "HEAVY"
	EnemyFast   EnemyType = "FAST"
)

// EnemyDef holds the combat stats for an enemy variant. Health here is
// the catalog base; spawned enemies use the wave formula instead.
type EnemyDef struct {
	Health       int
	Speed        float64 // tiles/s
	AttackDamage int
	AttackRange  float64 // tiles
	AttackSpeed  float64 // attacks/s
}

var enemyDefs = map[EnemyType]EnemyDef{
	EnemyBasic:  {Health: 30, Speed: 4.0, AttackDamage: 10, AttackRange: 1.0, AttackSpeed: 1.0},
	EnemyRanged: {Health: 20, Speed: 3.0, AttackDamage: 8, AttackRange: 3.5, AttackSpeed: 1.2},
	EnemyHeavy:  {Health: 50, Speed: 2.5, AttackDamage: 15, AttackRange: 1.2, AttackSpeed: 0.7},
	EnemyFast:   {Health: 15, Speed: 6.0, AttackDamage: 6, AttackRange: 0.8, AttackSpeed: 1.5},
}

// EnemyMaxAttackRange bounds spatial queries that have to see every
// enemy that could possibly strike. Keep in sync with enemyDefs.
const EnemyMaxAttackRange = 3.5

// GetEnemyDef returns the definition for an enemy type, falling back to
// the basic grunt.
func GetEnemyDef(t EnemyType) EnemyDef {
	if def, ok := enemyDefs[t]; ok {
		return def
	}
	return enemyDefs[EnemyBasic]
}

// UnitType identifies a trainable unit.
type UnitType string

const (
	UnitSoldier UnitType = "SOLDIER"
	UnitArcher  UnitType = "ARCHER"
	UnitCannon  UnitType = "CANNON"
)

// UnitDef holds the stats for a trainable unit.
type UnitDef struct {
	Health int
	Speed  float64 // tiles/s
	Cost   Resources
}

var unitDefs = map[UnitType]UnitDef{
	UnitSoldier: {Health: 60, Speed: 3, Cost: Resources{Wheat: 2, Metal: 1}},
	UnitArcher:  {Health: 40, Speed: 4, Cost: Resources{Wheat: 1, Wood: 2}},
	UnitCannon:  {Health: 80, Speed: 2, Cost: Resources{Wheat: 3, Metal: 3, Gold: 1}},
}

// GetUnitDef returns the definition for a unit type.
func GetUnitDef(t UnitType) (UnitDef, bool) {
	def, ok := unitDefs[t]
	return def, ok
}

// Vision radii in tiles.
const (
	HeroVisionRadius     = 5
	BuildingVisionRadius = 3
)

// Follow distances in tiles, by target kind. An order is fulfilled once
// the actor stands within this distance of the resolved target.
const (
	FollowDistPosition = 0.5
	FollowDistHero     = 0.8
	FollowDistUnit     = 1.0
	FollowDistEnemy    = 1.0
	FollowDistBuilding = 1.5
)

// Movement tuning, tile units.
const (
	WaypointArriveDist  = 0.1 // snap-and-pop threshold
	TargetDriftReplan   = 0.5 // followed target moved this far -> replan
	DynamicObstacleDist = 0.4 // another actor this close blocks a step
	EnemySeparationDist = 0.2 // packed enemies closer than this unstack
)

// BuildAdjacencyDist is how close a hero must stand to any footprint
// tile for a build command to succeed. Clients with a distant hero walk
// it over and re-issue the command.
const BuildAdjacencyDist = 1.8

// Combat and lifecycle timing, seconds.
const (
	CorpseGracePeriod = 20.0 // dead enemies linger for death animation
	PingDuration      = 5.0
)

// Attack effect render durations by kind, seconds.
const (
	EffectMelee  = "MELEE"
	EffectRanged = "RANGED"
	EffectMagic  = "MAGIC"

	EffectMeleeDuration  = 0.3
	EffectRangedDuration = 0.5
	EffectMagicDuration  = 0.8
)
