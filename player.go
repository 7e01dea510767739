package main

// Player is one lobby member. It exists from the moment the player
// joins the lobby and carries their economy once the game starts;
// heroes, not players, have a position in the world.
type Player struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	HeroType    HeroType  `json:"hero_type"`
	Resources   Resources `json:"resources"`
	IsConnected bool      `json:"is_connected"`

	// AccountID links to a registered account for stats persistence;
	// zero means the player is an anonymous guest.
	AccountID int64 `json:"-"`
}

// NewPlayer creates a lobby member with the default hero class picked.
// The class can be changed until the host starts the game.
func NewPlayer(id, name string) *Player {
	return &Player{
		ID:          id,
		Name:        name,
		HeroType:    HeroTank,
		IsConnected: true,
	}
}
