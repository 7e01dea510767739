package main

import "testing"

func TestRevealAroundIsCircular(t *testing.T) {
	g, _ := newTestGame("Ana")
	st := emptyState(40, 40)
	g.state = st

	g.revealAround(Position{X: 20.5, Y: 20.5}, 3)

	if !st.Explored(20, 20) {
		t.Fatal("center tile not revealed")
	}
	if !st.Explored(23, 20) || !st.Explored(20, 17) {
		t.Error("tiles on the radius not revealed")
	}
	// The square corner is outside the circle.
	if st.Explored(23, 23) {
		t.Error("corner outside the circular radius was revealed")
	}
	if st.Explored(24, 20) {
		t.Error("tile beyond the radius was revealed")
	}
}

func TestRevealNearMapEdge(t *testing.T) {
	g, _ := newTestGame("Ana")
	g.state = emptyState(40, 40)

	g.revealAround(Position{X: 0.5, Y: 0.5}, 5)
	if !g.state.Explored(0, 0) || !g.state.Explored(4, 0) {
		t.Error("edge reveal clipped inside the map")
	}
}

func TestFogNeverRehides(t *testing.T) {
	g, roster := newTestGame("Ana")
	h := g.state.HeroOf(roster[0].ID)
	tx, ty := int(h.Position.X), int(h.Position.Y)
	if !g.state.Explored(tx, ty) {
		t.Fatal("hero start tile should be revealed at game start")
	}

	// Walk the hero far away; the old tile must stay lifted.
	h.Position = Position{X: 5, Y: 5}
	g.refreshVision()
	if !g.state.Explored(tx, ty) {
		t.Error("previously explored tile went dark")
	}
}

func TestExploredOutOfBounds(t *testing.T) {
	g, _ := newTestGame("Ana")
	if g.state.Explored(-1, 0) || g.state.Explored(0, -1) || g.state.Explored(40, 40) {
		t.Error("out-of-bounds tiles report as explored")
	}
}

func TestInitialRevealCoversTownHall(t *testing.T) {
	g, _ := newTestGame("Ana")
	th := g.state.FindTownHall()

	ax, ay := int(th.Position.X), int(th.Position.Y)
	for y := ay; y < ay+th.Height; y++ {
		for x := ax; x < ax+th.Width; x++ {
			if !g.state.Explored(x, y) {
				t.Errorf("town hall tile (%d,%d) starts fogged", x, y)
			}
		}
	}
}
