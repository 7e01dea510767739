package main

import "time"

// GameConfig holds the tunable settings for one game. Values are fixed
// at game start; tests override individual fields to shrink maps and
// accelerate waves.
type GameConfig struct {
	TickRate      int // simulation steps per second
	BroadcastRate int // snapshot sends per second

	MapWidth   int
	MapHeight  int
	MaxPlayers int

	FirstWaveDelay   float64 // seconds before wave 1
	WaveInterval     float64 // seconds between waves
	ResourceInterval float64 // seconds between income ticks

	EnemyAggroRadius float64 // tiles

	StartingResources Resources

	Seed       int64 // 0 derives the seed from the lobby ID
	UseNavMesh bool  // prefer navmesh paths, grid A* as fallback
}

// DefaultGameConfig returns the standard cooperative survival setup.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		TickRate:         60,
		BroadcastRate:    20,
		MapWidth:         200,
		MapHeight:        200,
		MaxPlayers:       4,
		FirstWaveDelay:   60,
		WaveInterval:     300,
		ResourceInterval: 2.0,
		EnemyAggroRadius: 10,
		StartingResources: Resources{
			Wood:  100,
			Stone: 50,
			Wheat: 50,
			Metal: 10,
			Gold:  5,
		},
		UseNavMesh: true,
	}
}

// TickDuration returns the fixed timestep in seconds.
func (c GameConfig) TickDuration() float64 {
	return 1.0 / float64(c.TickRate)
}

// TickInterval returns the tick period for the loop ticker.
func (c GameConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// BroadcastInterval returns the minimum wall-clock spacing between
// snapshot broadcasts. Snapshots also require the dirty flag, so the
// real send rate is usually lower.
func (c GameConfig) BroadcastInterval() time.Duration {
	if c.BroadcastRate <= 0 {
		return 0
	}
	return time.Second / time.Duration(c.BroadcastRate)
}
