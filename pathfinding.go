package main

import (
	"container/heap"
	"math"
)

// Pathfinder produces waypoint routes through the world in tile units.
// The first waypoint is the exact start position and the last the exact
// goal; an empty slice means no route exists. excludeID names the actor
// asking, so its own body never blocks its route.
type Pathfinder interface {
	FindPath(start, goal Position, state *GameState, excludeID string) []Position
}

// GridPathfinder runs 8-directional A* straight over the tile grid.
// It is the guaranteed fallback engine: slower routes than the navmesh
// but it always works, including right after structural changes.
type GridPathfinder struct {
	width  int
	height int
}

func NewGridPathfinder(width, height int) *GridPathfinder {
	return &GridPathfinder{width: width, height: height}
}

type gridPoint struct {
	x, y int
}

var gridNeighbors = [...]struct {
	dx, dy   int
	cost     float64
	diagonal bool
}{
	{0, -1, 1, false},
	{1, 0, 1, false},
	{0, 1, 1, false},
	{-1, 0, 1, false},
	{1, -1, math.Sqrt2, true},
	{1, 1, math.Sqrt2, true},
	{-1, 1, math.Sqrt2, true},
	{-1, -1, math.Sqrt2, true},
}

type gridNode struct {
	point  gridPoint
	g      float64
	f      float64
	index  int
	parent *gridNode
}

type gridQueue []*gridNode

func (pq gridQueue) Len() int { return len(pq) }

func (pq gridQueue) Less(i, j int) bool { return pq[i].f < pq[j].f }

func (pq gridQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *gridQueue) Push(x interface{}) {
	item := x.(*gridNode)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *gridQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

// searchGrid is the per-request view of the world: static walkability
// (terrain plus living building footprints) and the tiles occupied by
// other movers.
type searchGrid struct {
	width, height int
	static        []bool
	dynamic       map[int]struct{}
}

func (p *GridPathfinder) buildSearchGrid(state *GameState, excludeID string) *searchGrid {
	sg := &searchGrid{
		width:   p.width,
		height:  p.height,
		static:  make([]bool, p.width*p.height),
		dynamic: make(map[int]struct{}),
	}
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			sg.static[y*p.width+x] = state.TileAt(x, y).Walkable()
		}
	}
	for _, b := range state.Buildings {
		if !b.Alive() {
			continue
		}
		ax, ay := int(b.Position.X), int(b.Position.Y)
		for dy := 0; dy < b.Height; dy++ {
			for dx := 0; dx < b.Width; dx++ {
				x, y := ax+dx, ay+dy
				if x >= 0 && y >= 0 && x < p.width && y < p.height {
					sg.static[y*p.width+x] = false
				}
			}
		}
	}
	mark := func(id string, pos Position, alive bool) {
		if id == excludeID || !alive {
			return
		}
		x, y := int(pos.X), int(pos.Y)
		if x >= 0 && y >= 0 && x < p.width && y < p.height {
			sg.dynamic[y*p.width+x] = struct{}{}
		}
	}
	for _, h := range state.Heroes {
		mark(h.ID, h.Position, h.Alive())
	}
	for _, e := range state.Enemies {
		mark(e.ID, e.Position, e.Alive())
	}
	for _, u := range state.Units {
		mark(u.ID, u.Position, u.Alive())
	}
	return sg
}

func (sg *searchGrid) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < sg.width && y < sg.height
}

func (sg *searchGrid) index(x, y int) int { return y*sg.width + x }

func (sg *searchGrid) walkable(x, y int) bool {
	return sg.inBounds(x, y) && sg.static[sg.index(x, y)]
}

func (sg *searchGrid) occupied(x, y int) bool {
	_, ok := sg.dynamic[sg.index(x, y)]
	return ok
}

// canStepDiagonal forbids cutting a corner whose orthogonal neighbors
// are blocked.
func (sg *searchGrid) canStepDiagonal(from gridPoint, dx, dy int) bool {
	if !sg.walkable(from.x+dx, from.y) || !sg.walkable(from.x, from.y+dy) {
		return false
	}
	if sg.occupied(from.x+dx, from.y) || sg.occupied(from.x, from.y+dy) {
		return false
	}
	return true
}

// closestWalkable finds the nearest statically walkable tile to (x,y)
// by scanning outward in square rings. Within one ring the candidate
// closest to the original point wins; ties break on (y,x) so results
// stay deterministic.
func (sg *searchGrid) closestWalkable(x, y int) (gridPoint, bool) {
	if sg.walkable(x, y) {
		return gridPoint{x, y}, true
	}
	maxR := sg.width
	if sg.height > maxR {
		maxR = sg.height
	}
	for r := 1; r <= maxR; r++ {
		best := gridPoint{}
		bestDist := math.MaxFloat64
		found := false
		consider := func(cx, cy int) {
			if !sg.walkable(cx, cy) {
				return
			}
			d := Distance(float64(cx), float64(cy), float64(x), float64(y))
			if d < bestDist || (d == bestDist && (cy < best.y || (cy == best.y && cx < best.x))) {
				best = gridPoint{cx, cy}
				bestDist = d
				found = true
			}
		}
		for cx := x - r; cx <= x+r; cx++ {
			consider(cx, y-r)
			consider(cx, y+r)
		}
		for cy := y - r + 1; cy <= y+r-1; cy++ {
			consider(x-r, cy)
			consider(x+r, cy)
		}
		if found {
			return best, true
		}
	}
	return gridPoint{}, false
}

// manhattan is the search heuristic. With diagonal steps allowed it can
// overestimate slightly, trading strict optimality for fewer expansions
// on open ground.
func manhattan(a, b gridPoint) float64 {
	return math.Abs(float64(a.x-b.x)) + math.Abs(float64(a.y-b.y))
}

// FindPath searches tile-by-tile from start to goal. A goal on a
// blocked tile resolves to the nearest walkable tile; tiles under other
// movers are avoided except when the goal itself sits under one.
func (p *GridPathfinder) FindPath(start, goal Position, state *GameState, excludeID string) []Position {
	sg := p.buildSearchGrid(state, excludeID)

	sx, sy := int(start.X), int(start.Y)
	gx, gy := int(goal.X), int(goal.Y)
	if !sg.inBounds(sx, sy) || !sg.inBounds(gx, gy) {
		return nil
	}

	startPt, ok := sg.closestWalkable(sx, sy)
	if !ok {
		return nil
	}
	goalPt, ok := sg.closestWalkable(gx, gy)
	if !ok {
		return nil
	}
	if goalPt.x != gx || goalPt.y != gy {
		// The requested goal was blocked; route to the substitute tile
		// and stop at its center rather than the original point.
		goal = Position{X: float64(goalPt.x) + 0.5, Y: float64(goalPt.y) + 0.5}
	}
	if startPt == goalPt {
		return []Position{start, goal}
	}

	nodes, ok := sg.astar(startPt, goalPt)
	if !ok {
		return nil
	}

	path := make([]Position, 0, len(nodes)+1)
	path = append(path, start)
	for i := 1; i < len(nodes); i++ {
		path = append(path, Position{X: float64(nodes[i].x) + 0.5, Y: float64(nodes[i].y) + 0.5})
	}
	// Snap the tail to the exact goal for clean sub-tile arrival.
	if len(path) > 1 {
		path[len(path)-1] = goal
	} else {
		path = append(path, goal)
	}
	return path
}

func (sg *searchGrid) astar(start, goal gridPoint) ([]gridPoint, bool) {
	open := &gridQueue{}
	heap.Init(open)
	heap.Push(open, &gridNode{point: start, g: 0, f: manhattan(start, goal)})

	gScore := map[int]float64{sg.index(start.x, start.y): 0}
	closed := make(map[int]struct{})

	for open.Len() > 0 {
		current := heap.Pop(open).(*gridNode)
		currIdx := sg.index(current.point.x, current.point.y)
		if _, seen := closed[currIdx]; seen {
			continue
		}
		closed[currIdx] = struct{}{}
		if current.point == goal {
			return reconstructGridPath(current), true
		}

		for _, delta := range gridNeighbors {
			nx, ny := current.point.x+delta.dx, current.point.y+delta.dy
			if !sg.walkable(nx, ny) {
				continue
			}
			if delta.diagonal && !sg.canStepDiagonal(current.point, delta.dx, delta.dy) {
				continue
			}
			idx := sg.index(nx, ny)
			// Other movers block intermediate tiles but never the goal
			// itself; you can always walk up next to someone.
			if sg.occupied(nx, ny) && !(nx == goal.x && ny == goal.y) {
				continue
			}
			if _, seen := closed[idx]; seen {
				continue
			}
			tentative := current.g + delta.cost
			if prev, ok := gScore[idx]; ok && tentative >= prev {
				continue
			}
			gScore[idx] = tentative
			next := gridPoint{nx, ny}
			heap.Push(open, &gridNode{
				point:  next,
				g:      tentative,
				f:      tentative + manhattan(next, goal),
				parent: current,
			})
		}
	}
	return nil, false
}

func reconstructGridPath(end *gridNode) []gridPoint {
	var path []gridPoint
	for n := end; n != nil; n = n.parent {
		path = append(path, n.point)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
