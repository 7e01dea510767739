package main

// Ping is a map marker a player drops for their teammates. It expires
// on its own; the id and timestamp come from the client so the sender
// can reconcile its local echo.
type Ping struct {
	ID         string
	PlayerID   string
	PlayerName string
	Position   Position
	PingType   string
	Timestamp  float64 // client clock, passed through untouched
	Duration   float64
	CreatedAt  float64 // server game time, drives expiry
}

// NewPing creates a marker that lives for the standard ping lifetime.
func NewPing(id, playerID, playerName string, pos Position, pingType string, timestamp, now float64) *Ping {
	return &Ping{
		ID:         id,
		PlayerID:   playerID,
		PlayerName: playerName,
		Position:   pos,
		PingType:   pingType,
		Timestamp:  timestamp,
		Duration:   PingDuration,
		CreatedAt:  now,
	}
}

// Expired reports whether the marker has outlived its duration.
func (p *Ping) Expired(now float64) bool {
	return now-p.CreatedAt >= p.Duration
}
