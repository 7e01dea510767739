package main

import "github.com/sirupsen/logrus"

// Wave direction. Waves spawn at the four map corners on a fixed
// schedule: the first after a grace delay, the rest at the wave
// interval. Per-corner count grows with the wave number and clamps at
// ten; per-enemy health follows WaveHealth.

// WaveSize is how many enemies each corner contributes in wave n.
func WaveSize(wave int) int {
	n := 3 + wave/2
	if n > 10 {
		n = 10
	}
	return n
}

// spawnCorners returns the four corner spawn tiles for the map.
func (g *Game) spawnCorners() [4]Position {
	w := float64(g.state.MapWidth() - 1)
	h := float64(g.state.MapHeight() - 1)
	return [4]Position{
		{X: 0, Y: 0},
		{X: w, Y: 0},
		{X: 0, Y: h},
		{X: w, Y: h},
	}
}

// waveEnemyType picks a variant for the current wave. Early waves are
// all grunts; runners, archers and bruisers blend in as waves go on.
func (g *Game) waveEnemyType(wave int) EnemyType {
	switch {
	case wave <= 2:
		return EnemyBasic
	case wave <= 4:
		if g.rng.Float64() < 0.3 {
			return EnemyFast
		}
		return EnemyBasic
	case wave <= 6:
		pool := [3]EnemyType{EnemyBasic, EnemyFast, EnemyRanged}
		return pool[g.rng.Intn(len(pool))]
	default:
		pool := [4]EnemyType{EnemyBasic, EnemyFast, EnemyRanged, EnemyHeavy}
		return pool[g.rng.Intn(len(pool))]
	}
}

// stepWaves spawns a wave when its time arrives and keeps the
// countdown fresh on the wire once per second.
func (g *Game) stepWaves() {
	remaining := g.state.NextWaveTime - g.state.GameTime
	if remaining <= 0 {
		g.spawnWave()
		g.state.NextWaveTime = g.state.GameTime + g.config.WaveInterval
		g.lastWaveCountdown = -1
		g.markDirty()
		return
	}
	if int(remaining) != g.lastWaveCountdown {
		g.lastWaveCountdown = int(remaining)
		g.markDirty()
	}
}

// spawnWave places the next wave's enemies at the corners, jittered a
// tile so they never stack exactly, all marching on the Town Hall.
func (g *Game) spawnWave() {
	g.state.WaveNumber++
	wave := g.state.WaveNumber
	perCorner := WaveSize(wave)

	th := g.state.FindTownHall()

	total := 0
	for _, corner := range g.spawnCorners() {
		for i := 0; i < perCorner; i++ {
			pos := Position{
				X: corner.X + (g.rng.Float64()*2 - 1),
				Y: corner.Y + (g.rng.Float64()*2 - 1),
			}
			g.clampToMap(&pos)
			e := NewEnemy(GenerateUUID(), g.waveEnemyType(wave), pos, wave)
			if th != nil && th.Alive() {
				e.SetTarget(&MovementTarget{
					Kind:           TargetBuilding,
					TargetID:       th.ID,
					Position:       th.Center(),
					FollowDistance: th.EffectiveRange(e.AttackRange),
				})
			}
			g.state.Enemies[e.ID] = e
			total++
		}
	}

	logger.WithFields(logrus.Fields{
		"lobby":   g.state.LobbyID,
		"wave":    wave,
		"enemies": total,
	}).Info("wave spawned")
	if g.onWave != nil {
		g.onWave(wave)
	}
	g.markDirty()
}
