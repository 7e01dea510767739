package main

// Fog of war is shared by the whole lobby and only ever lifts; nothing
// re-hides a tile. Heroes reveal as they move, buildings reveal when
// placed, and the opening reveal covers the Town Hall and the spawn
// heroes.

// revealAround lifts the fog in a circle of the given tile radius.
// Reveal uses the anchor tile of the position, matching how buildings
// and heroes are placed on whole tiles.
func (g *Game) revealAround(pos Position, radius int) {
	cx, cy := int(pos.X), int(pos.Y)
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			x, y := cx+dx, cy+dy
			if !g.state.InBounds(x, y) {
				continue
			}
			if dx*dx+dy*dy <= radius*radius {
				g.state.Fog[y][x] = true
			}
		}
	}
}

// refreshVision re-reveals around every hero and player building. Used
// at game start and after reconnects; per-move reveals keep it current
// during play.
func (g *Game) refreshVision() {
	for _, h := range g.state.Heroes {
		g.revealAround(h.Position, HeroVisionRadius)
	}
	for _, b := range g.state.Buildings {
		g.revealAround(b.Position, BuildingVisionRadius)
	}
}
