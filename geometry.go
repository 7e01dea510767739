package main

// cross2 returns the z-component of (b-a)x(c-a). Positive when c lies
// to the left of the directed line a->b.
func cross2(ax, ay, bx, by, cx, cy float64) float64 {
	return (bx-ax)*(cy-ay) - (by-ay)*(cx-ax)
}

func onSegment(ax, ay, bx, by, px, py float64) bool {
	return minF(ax, bx) <= px && px <= maxF(ax, bx) &&
		minF(ay, by) <= py && py <= maxF(ay, by)
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// SegmentsIntersect reports whether segments ab and cd touch or cross.
func SegmentsIntersect(ax, ay, bx, by, cx, cy, dx, dy float64) bool {
	d1 := cross2(cx, cy, dx, dy, ax, ay)
	d2 := cross2(cx, cy, dx, dy, bx, by)
	d3 := cross2(ax, ay, bx, by, cx, cy)
	d4 := cross2(ax, ay, bx, by, dx, dy)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	if d1 == 0 && onSegment(cx, cy, dx, dy, ax, ay) {
		return true
	}
	if d2 == 0 && onSegment(cx, cy, dx, dy, bx, by) {
		return true
	}
	if d3 == 0 && onSegment(ax, ay, bx, by, cx, cy) {
		return true
	}
	if d4 == 0 && onSegment(ax, ay, bx, by, dx, dy) {
		return true
	}
	return false
}

// PointInRect reports whether (px,py) lies inside the axis-aligned
// rectangle with origin (rx,ry) and extent (rw,rh).
func PointInRect(px, py, rx, ry, rw, rh float64) bool {
	return px >= rx && px <= rx+rw && py >= ry && py <= ry+rh
}

// SegmentIntersectsRect reports whether segment a->b passes through the
// axis-aligned rectangle, including grazing an edge.
func SegmentIntersectsRect(a, b Position, rx, ry, rw, rh float64) bool {
	if PointInRect(a.X, a.Y, rx, ry, rw, rh) || PointInRect(b.X, b.Y, rx, ry, rw, rh) {
		return true
	}
	x2, y2 := rx+rw, ry+rh
	if SegmentsIntersect(a.X, a.Y, b.X, b.Y, rx, ry, x2, ry) {
		return true
	}
	if SegmentsIntersect(a.X, a.Y, b.X, b.Y, x2, ry, x2, y2) {
		return true
	}
	if SegmentsIntersect(a.X, a.Y, b.X, b.Y, x2, y2, rx, y2) {
		return true
	}
	if SegmentsIntersect(a.X, a.Y, b.X, b.Y, rx, y2, rx, ry) {
		return true
	}
	return false
}
