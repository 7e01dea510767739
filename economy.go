package main

// resourceSearchRadius is how far (in tiles, square box) a production
// building looks for its matching resource tile.
const resourceSearchRadius = 2

// stepEconomy pays out building income on the fixed resource interval.
// A production building only earns while a matching resource tile sits
// within its search box; ruins earn nothing.
func (g *Game) stepEconomy(dt float64) {
	g.economyAccum += dt
	if g.economyAccum < g.config.ResourceInterval {
		return
	}
	g.economyAccum -= g.config.ResourceInterval

	for _, p := range g.state.Players {
		var income Resources
		for _, b := range g.state.Buildings {
			if b.PlayerID != p.ID || !b.Alive() {
				continue
			}
			bi := g.buildingIncome(b)
			income.Wood += bi.Wood
			income.Stone += bi.Stone
			income.Wheat += bi.Wheat
			income.Metal += bi.Metal
			income.Gold += bi.Gold
		}
		if income != (Resources{}) {
			p.Resources.Wood += income.Wood
			p.Resources.Stone += income.Stone
			p.Resources.Wheat += income.Wheat
			p.Resources.Metal += income.Metal
			p.Resources.Gold += income.Gold
			g.markDirty()
		}
	}
}

// buildingIncome returns one interval's production for a building.
// Mines prefer stone deposits and only fall back to metal.
func (g *Game) buildingIncome(b *Building) Resources {
	switch b.Type {
	case BuildingFarm:
		if g.hasNearbyResource(b.Position, TileWheat) {
			return Resources{Wheat: 2}
		}
	case BuildingWoodCutter:
		if g.hasNearbyResource(b.Position, TileWood) {
			return Resources{Wood: 3}
		}
	case BuildingMine:
		if g.hasNearbyResource(b.Position, TileStone) {
			return Resources{Stone: 2}
		}
		if g.hasNearbyResource(b.Position, TileMetal) {
			return Resources{Metal: 1}
		}
	case BuildingGoldMine:
		if g.hasNearbyResource(b.Position, TileGold) {
			return Resources{Gold: 1}
		}
	}
	return Resources{}
}

func (g *Game) hasNearbyResource(pos Position, t TileType) bool {
	cx, cy := int(pos.X), int(pos.Y)
	for dx := -resourceSearchRadius; dx <= resourceSearchRadius; dx++ {
		for dy := -resourceSearchRadius; dy <= resourceSearchRadius; dy++ {
			if g.state.TileAt(cx+dx, cy+dy) == t {
				return true
			}
		}
	}
	return false
}
