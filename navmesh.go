package main

import (
	"container/heap"
	"math"
)

// navEpsilon is the slack for matching collinear rectangle edges.
const navEpsilon = 0.001

// navPortal is the shared edge between two adjacent polygons. A and B
// are its endpoints in tile units; Mid is cached for edge costs.
type navPortal struct {
	A   Position
	B   Position
	Mid Position
}

// NavPolygon is one convex axis-aligned rectangle of walkable tiles.
type NavPolygon struct {
	ID        int
	X, Y      float64 // top-left corner, tile units
	W, H      float64
	Center    Position
	Neighbors []int
	Portals   map[int]navPortal
}

func (p *NavPolygon) vertices() [4]Position {
	return [4]Position{
		{X: p.X, Y: p.Y},
		{X: p.X + p.W, Y: p.Y},
		{X: p.X + p.W, Y: p.Y + p.H},
		{X: p.X, Y: p.Y + p.H},
	}
}

// contains uses ray casting. Dirt simple containment would do for
// rectangles, but ray casting keeps the mesh correct if polygons ever
// stop being rectangles.
func (p *NavPolygon) contains(pt Position) bool {
	verts := p.vertices()
	inside := false
	j := len(verts) - 1
	for i := 0; i < len(verts); i++ {
		vi, vj := verts[i], verts[j]
		if (vi.Y > pt.Y) != (vj.Y > pt.Y) {
			xint := (pt.Y-vi.Y)*(vj.X-vi.X)/(vj.Y-vi.Y) + vi.X
			if pt.X <= xint {
				inside = !inside
			}
		}
		j = i
	}
	if inside {
		return true
	}
	// Ray casting misses points exactly on the boundary; rectangles
	// make that test cheap.
	return pt.X >= p.X-navEpsilon && pt.X <= p.X+p.W+navEpsilon &&
		pt.Y >= p.Y-navEpsilon && pt.Y <= p.Y+p.H+navEpsilon
}

// NavMesh is the polygon graph over the walkable grid. Generation is
// deterministic for a given map and building set; the game rebuilds it
// whenever a building is placed or destroyed.
type NavMesh struct {
	width    int
	height   int
	Polygons []*NavPolygon
}

// BuildNavMesh decomposes the walkable tiles into maximal rectangles
// scanned in row-major order (grow widest first, then tallest), then
// links rectangles that share a positive-length edge.
func BuildNavMesh(state *GameState) *NavMesh {
	w, h := state.MapWidth(), state.MapHeight()
	m := &NavMesh{width: w, height: h}

	walk := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			walk[y*w+x] = state.TileAt(x, y).Walkable()
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
				if x >= 0 && y >= 0 && x < w && y < h {
					walk[y*w+x] = false
				}
			}
		}
	}

	claimed := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !walk[y*w+x] || claimed[y*w+x] {
				continue
			}
			rw := 0
			for x+rw < w && walk[y*w+x+rw] && !claimed[y*w+x+rw] {
				rw++
			}
			rh := 1
		grow:
			for y+rh < h {
				for cx := x; cx < x+rw; cx++ {
					if !walk[(y+rh)*w+cx] || claimed[(y+rh)*w+cx] {
						break grow
					}
				}
				rh++
			}
			for cy := y; cy < y+rh; cy++ {
				for cx := x; cx < x+rw; cx++ {
					claimed[cy*w+cx] = true
				}
			}
			id := len(m.Polygons)
			m.Polygons = append(m.Polygons, &NavPolygon{
				ID: id,
				X:  float64(x), Y: float64(y),
				W: float64(rw), H: float64(rh),
				Center:  Position{X: float64(x) + float64(rw)/2, Y: float64(y) + float64(rh)/2},
				Portals: make(map[int]navPortal),
			})
		}
	}

	m.connect()
	return m
}

func (m *NavMesh) connect() {
	for i := 0; i < len(m.Polygons); i++ {
		for j := i + 1; j < len(m.Polygons); j++ {
			a, b := m.Polygons[i], m.Polygons[j]
			portal, ok := sharedEdge(a, b)
			if !ok {
				continue
			}
			a.Neighbors = append(a.Neighbors, b.ID)
			b.Neighbors = append(b.Neighbors, a.ID)
			a.Portals[b.ID] = portal
			b.Portals[a.ID] = portal
		}
	}
}

// sharedEdge finds the positive-length overlap between the borders of
// two rectangles, if they touch along an edge.
func sharedEdge(a, b *NavPolygon) (navPortal, bool) {
	// Vertical contact: a's right against b's left, or vice versa.
	for _, pair := range [2][2]*NavPolygon{{a, b}, {b, a}} {
		l, r := pair[0], pair[1]
		if math.Abs((l.X+l.W)-r.X) < navEpsilon {
			y1 := maxF(l.Y, r.Y)
			y2 := minF(l.Y+l.H, r.Y+r.H)
			if y2-y1 > navEpsilon {
				x := l.X + l.W
				return makePortal(Position{X: x, Y: y1}, Position{X: x, Y: y2}), true
			}
		}
		if math.Abs((l.Y+l.H)-r.Y) < navEpsilon {
			x1 := maxF(l.X, r.X)
			x2 := minF(l.X+l.W, r.X+r.W)
			if x2-x1 > navEpsilon {
				y := l.Y + l.H
				return makePortal(Position{X: x1, Y: y}, Position{X: x2, Y: y}), true
			}
		}
	}
	return navPortal{}, false
}

func makePortal(a, b Position) navPortal {
	return navPortal{
		A:   a,
		B:   b,
		Mid: Position{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2},
	}
}

// Locate returns the id of the polygon containing the point, or -1.
func (m *NavMesh) Locate(pt Position) int {
	for _, p := range m.Polygons {
		if p.contains(pt) {
			return p.ID
		}
	}
	return -1
}

type navNode struct {
	polyID int
	g      float64
	f      float64
	entry  Position // where the route enters this polygon
	index  int
	parent *navNode
}

type navQueue []*navNode

func (pq navQueue) Len() int { return len(pq) }

func (pq navQueue) Less(i, j int) bool { return pq[i].f < pq[j].f }

func (pq navQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *navQueue) Push(x interface{}) {
	item := x.(*navNode)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *navQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

// findPolygonPath runs A* over the adjacency graph. Edge cost is the
// distance between successive portal entry points; the heuristic is
// the center-to-center distance to the goal polygon.
func (m *NavMesh) findPolygonPath(start, goal Position) []int {
	startID := m.Locate(start)
	goalID := m.Locate(goal)
	if startID < 0 || goalID < 0 {
		return nil
	}
	if startID == goalID {
		return []int{startID}
	}

	heuristic := func(id int) float64 {
		return m.Polygons[id].Center.DistanceTo(m.Polygons[goalID].Center)
	}

	open := &navQueue{}
	heap.Init(open)
	heap.Push(open, &navNode{polyID: startID, g: 0, f: heuristic(startID), entry: start})
	gScore := map[int]float64{startID: 0}
	closed := make(map[int]struct{})

	for open.Len() > 0 {
		current := heap.Pop(open).(*navNode)
		if _, seen := closed[current.polyID]; seen {
			continue
		}
		closed[current.polyID] = struct{}{}
		if current.polyID == goalID {
			var ids []int
			for n := current; n != nil; n = n.parent {
				ids = append(ids, n.polyID)
			}
			for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
				ids[i], ids[j] = ids[j], ids[i]
			}
			return ids
		}
		poly := m.Polygons[current.polyID]
		for _, nid := range poly.Neighbors {
			if _, seen := closed[nid]; seen {
				continue
			}
			entry := poly.Portals[nid].Mid
			tentative := current.g + current.entry.DistanceTo(entry)
			if prev, ok := gScore[nid]; ok && tentative >= prev {
				continue
			}
			gScore[nid] = tentative
			heap.Push(open, &navNode{
				polyID: nid,
				g:      tentative,
				f:      tentative + heuristic(nid),
				entry:  entry,
				parent: current,
			})
		}
	}
	return nil
}

// FindPath satisfies Pathfinder. The mesh ignores other movers; the
// movement layer handles dynamic avoidance by replanning. An empty
// result tells the caller to fall back to the grid engine.
func (m *NavMesh) FindPath(start, goal Position, state *GameState, excludeID string) []Position {
	ids := m.findPolygonPath(start, goal)
	if len(ids) == 0 {
		return nil
	}
	if len(ids) == 1 {
		return []Position{start, goal}
	}
	portals := make([]navPortal, 0, len(ids)-1)
	for i := 0; i+1 < len(ids); i++ {
		portals = append(portals, m.Polygons[ids[i]].Portals[ids[i+1]])
	}
	return funnel(start, goal, portals)
}

// funnel runs the string-pulling pass over the portal sequence: keep a
// taut pair of boundary points from the apex, advance sides inward
// while they stay taut, and commit a corner to the path whenever one
// side would cross the other.
func funnel(start, goal Position, portals []navPortal) []Position {
	type side struct {
		left, right Position
	}
	sides := make([]side, 0, len(portals)+1)
	prev := start
	for _, p := range portals {
		// Orient each portal so left/right are consistent with the
		// direction of travel through it.
		if cross2(prev.X, prev.Y, p.Mid.X, p.Mid.Y, p.A.X, p.A.Y) > 0 {
			sides = append(sides, side{left: p.A, right: p.B})
		} else {
			sides = append(sides, side{left: p.B, right: p.A})
		}
		prev = p.Mid
	}
	// Terminal pseudo-portal collapses onto the goal.
	sides = append(sides, side{left: goal, right: goal})

	path := []Position{start}
	apex := start
	left, right := apex, apex
	leftIdx, rightIdx := 0, 0

	for i := 0; i < len(sides); i++ {
		pl, pr := sides[i].left, sides[i].right

		// Tighten the right side.
		if triArea2(apex, right, pr) <= 0 {
			if apex == right || triArea2(apex, left, pr) > 0 {
				right = pr
				rightIdx = i
			} else {
				// Right would cross left: the left point becomes a
				// committed corner and the funnel restarts there.
				path = append(path, left)
				apex = left
				left, right = apex, apex
				i = leftIdx
				rightIdx = leftIdx
				continue
			}
		}
		// Tighten the left side.
		if triArea2(apex, left, pl) >= 0 {
			if apex == left || triArea2(apex, right, pl) < 0 {
				left = pl
				leftIdx = i
			} else {
				path = append(path, right)
				apex = right
				left, right = apex, apex
				i = rightIdx
				leftIdx = rightIdx
				continue
			}
		}
	}
	path = append(path, goal)
	return path
}

func triArea2(a, b, c Position) float64 {
	return cross2(a.X, a.Y, b.X, b.Y, c.X, c.Y)
}
