package main

// SpatialCellSize is the query-cell edge in tiles. Sized so an enemy
// aggro scan touches a handful of cells and a separation scan usually
// touches one.
const SpatialCellSize = 4.0

// EntityRef identifies an entity in the grid
type EntityRef struct {
	Kind byte // 'h'=hero, 'e'=enemy, 'u'=unit
	ID   string
}

// SpatialGrid is a coarse cell index over the tile map for broad-phase
// range queries. It is rebuilt every tick before AI runs; it never
// outlives the tick that filled it.
type SpatialGrid struct {
	cols  int
	rows  int
	cells [][]EntityRef
}

// NewSpatialGrid sizes the index for a map of the given tile extent.
func NewSpatialGrid(mapWidth, mapHeight int) *SpatialGrid {
	cols := int(float64(mapWidth)/SpatialCellSize) + 1
	rows := int(float64(mapHeight)/SpatialCellSize) + 1
	return &SpatialGrid{
		cols:  cols,
		rows:  rows,
		cells: make([][]EntityRef, cols*rows),
	}
}

// Clear resets all cells (keeps allocated capacity)
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

func (g *SpatialGrid) cellIdx(x, y float64) int {
	cx := int(x / SpatialCellSize)
	cy := int(y / SpatialCellSize)
	if cx < 0 {
		cx = 0
	} else if cx >= g.cols {
		cx = g.cols - 1
	}
	if cy < 0 {
		cy = 0
	} else if cy >= g.rows {
		cy = g.rows - 1
	}
	return cy*g.cols + cx
}

// Insert adds an entity reference at the given tile position
func (g *SpatialGrid) Insert(x, y float64, ref EntityRef) {
	idx := g.cellIdx(x, y)
	g.cells[idx] = append(g.cells[idx], ref)
}

// QueryBuf appends every ref in cells overlapping the square of the
// given radius to buf and returns the extended slice. Callers filter
// by exact distance; cells only bound the candidate set.
func (g *SpatialGrid) QueryBuf(x, y, radius float64, buf []EntityRef) []EntityRef {
	minCX := int((x - radius) / SpatialCellSize)
	maxCX := int((x + radius) / SpatialCellSize)
	minCY := int((y - radius) / SpatialCellSize)
	maxCY := int((y + radius) / SpatialCellSize)
	if minCX < 0 {
		minCX = 0
	}
	if maxCX >= g.cols {
		maxCX = g.cols - 1
	}
	if minCY < 0 {
		minCY = 0
	}
	if maxCY >= g.rows {
		maxCY = g.rows - 1
	}
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			idx := cy*g.cols + cx
			buf = append(buf, g.cells[idx]...)
		}
	}
	return buf
}

// Query returns all entity refs in cells that overlap the given square
func (g *SpatialGrid) Query(x, y, radius float64) []EntityRef {
	return g.QueryBuf(x, y, radius, nil)
}
