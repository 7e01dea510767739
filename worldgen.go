package main

import (
	"hash/fnv"
	"math"
	"math/rand"
)

const (
	// spawnClearRadius keeps resource tiles out of the starting area so
	// the town hall surroundings stay buildable.
	spawnClearRadius = 15
	clusterKeepout   = spawnClearRadius + 10
	rareEdgeBand     = 25
	symmetryChance   = 0.7
)

// MapGenerator produces the tile grid for a new game. The same seed
// always yields the same map, so every client in a lobby renders
// identical terrain.
type MapGenerator struct {
	width  int
	height int
	rng    *rand.Rand
}

func NewMapGenerator(width, height int, seed int64) *MapGenerator {
	return &MapGenerator{
		width:  width,
		height: height,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Generate builds the full tile grid: basic resource clusters scattered
// across the mid-map, rare ores along the edges, then a mirrored copy of
// everything through the center.
func (mg *MapGenerator) Generate() [][]TileType {
	tiles := make([][]TileType, mg.height)
	for y := range tiles {
		tiles[y] = make([]TileType, mg.width)
	}

	cx, cy := mg.width/2, mg.height/2

	mg.placeBasicResources(tiles, cx, cy)
	mg.placeRareResources(tiles)
	mg.mirrorResources(tiles, cx, cy)

	return tiles
}

func (mg *MapGenerator) placeBasicResources(tiles [][]TileType, cx, cy int) {
	for _, res := range []TileType{TileWood, TileStone, TileWheat} {
		clusters := mg.intn(8, 12)
		for c := 0; c < clusters; c++ {
			clusterX := mg.intn(spawnClearRadius, mg.width-spawnClearRadius)
			clusterY := mg.intn(spawnClearRadius, mg.height-spawnClearRadius)
			if tileDist(clusterX, clusterY, cx, cy) < clusterKeepout {
				continue
			}
			size := mg.intn(3, 8)
			for i := 0; i < size; i++ {
				x := clusterX + mg.intn(-3, 3)
				y := clusterY + mg.intn(-3, 3)
				if x < 0 || x >= mg.width || y < 0 || y >= mg.height {
					continue
				}
				if tiles[y][x] != TileEmpty || tileDist(x, y, cx, cy) < spawnClearRadius {
					continue
				}
				tiles[y][x] = res
			}
		}
	}
}

// placeRareResources drops metal and gold in bands near the four map
// edges, far from the protected spawn area.
func (mg *MapGenerator) placeRareResources(tiles [][]TileType) {
	for _, res := range []TileType{TileMetal, TileGold} {
		clusters := mg.intn(4, 6)
		for c := 0; c < clusters; c++ {
			var clusterX, clusterY int
			switch mg.rng.Intn(4) {
			case 0:
				clusterX = mg.intn(5, rareEdgeBand)
				clusterY = mg.intn(5, mg.height-5)
			case 1:
				clusterX = mg.intn(mg.width-rareEdgeBand, mg.width-5)
				clusterY = mg.intn(5, mg.height-5)
			case 2:
				clusterX = mg.intn(5, mg.width-5)
				clusterY = mg.intn(5, rareEdgeBand)
			default:
				clusterX = mg.intn(5, mg.width-5)
				clusterY = mg.intn(mg.height-rareEdgeBand, mg.height-5)
			}
			size := mg.intn(2, 4)
			for i := 0; i < size; i++ {
				x := clusterX + mg.intn(-2, 2)
				y := clusterY + mg.intn(-2, 2)
				if x < 0 || x >= mg.width || y < 0 || y >= mg.height {
					continue
				}
				if tiles[y][x] == TileEmpty {
					tiles[y][x] = res
				}
			}
		}
	}
}

// mirrorResources copies resource tiles through the map center onto
// empty tiles. Each copy lands with symmetryChance probability, which
// keeps the layout balanced without looking stamped.
func (mg *MapGenerator) mirrorResources(tiles [][]TileType, cx, cy int) {
	for y := 0; y < mg.height; y++ {
		for x := 0; x < mg.width; x++ {
			if tiles[y][x] == TileEmpty {
				continue
			}
			mx, my := 2*cx-x, 2*cy-y
			if mx < 0 || mx >= mg.width || my < 0 || my >= mg.height {
				continue
			}
			if tiles[my][mx] == TileEmpty && mg.rng.Float64() < symmetryChance {
				tiles[my][mx] = tiles[y][x]
			}
		}
	}
}

// intn returns a uniform int in [lo, hi], both ends inclusive.
func (mg *MapGenerator) intn(lo, hi int) int {
	return lo + mg.rng.Intn(hi-lo+1)
}

func tileDist(x1, y1, x2, y2 int) float64 {
	dx := float64(x1 - x2)
	dy := float64(y1 - y2)
	return math.Sqrt(dx*dx + dy*dy)
}

// seedFromLobbyID derives a deterministic map seed from a lobby ID so
// every player in the lobby simulates the same world.
func seedFromLobbyID(id string) int64 {
	h := fnv.New64a()
	h.Write([]byte(id))
	return int64(h.Sum64())
}
