package main

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

const maxLobbies = 100

// Lobby is a pre-game gathering room that becomes a running game. Up
// to MaxPlayers players join, pick hero classes, and the host starts
// the simulation. The lobby object stays alive for the whole game so
// late broadcasts (game over, disconnects) still have an audience.
//
// Every field except ID is guarded by the manager mutex. Client
// handlers run on their own goroutines, so they go through the locked
// LobbyManager accessors and never touch the maps directly.
type Lobby struct {
	ID      string
	HostID  string
	Players map[string]*Player
	Game    *Game
	Started bool

	order   []string // join order, decides hero spawn slots
	clients map[string]Broadcaster
}

// snapsLocked returns the wire form of the lobby roster. Callers hold
// the manager mutex.
func (l *Lobby) snapsLocked() map[string]PlayerSnap {
	snaps := make(map[string]PlayerSnap, len(l.Players))
	for id, p := range l.Players {
		snaps[id] = PlayerSnap{
			ID:          p.ID,
			Name:        p.Name,
			HeroType:    string(p.HeroType),
			Resources:   p.Resources,
			IsConnected: p.IsConnected,
		}
	}
	return snaps
}

// LobbyManager owns every lobby in the process. Lobby ids are UUIDs so
// invite links are unguessable.
type LobbyManager struct {
	mu      sync.RWMutex
	lobbies map[string]*Lobby

	db        *DB
	analytics *Analytics
	config    GameConfig
}

// NewLobbyManager creates a manager using config for every game it
// starts. db and analytics may be nil; stats are then simply not kept.
func NewLobbyManager(db *DB, analytics *Analytics, config GameConfig) *LobbyManager {
	return &LobbyManager{
		lobbies:   make(map[string]*Lobby),
		db:        db,
		analytics: analytics,
		config:    config,
	}
}

// CreateLobby opens a lobby with the creator as host. Returns nil when
// the process-wide lobby cap is hit.
func (lm *LobbyManager) CreateLobby(playerName string, client Broadcaster) (*Lobby, *Player) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if len(lm.lobbies) >= maxLobbies {
		return nil, nil
	}

	p := NewPlayer(GenerateID(8), playerName)
	p.AccountID = accountIDOf(client)
	l := &Lobby{
		ID:      GenerateUUID(),
		HostID:  p.ID,
		Players: map[string]*Player{p.ID: p},
		order:   []string{p.ID},
		clients: map[string]Broadcaster{p.ID: client},
	}
	lm.lobbies[l.ID] = l

	logger.WithFields(logrus.Fields{"lobby": l.ID, "host": playerName}).Info("lobby created")
	return l, p
}

// JoinLobby adds a player to an existing lobby. The returned reason is
// non-empty on refusal and goes straight into the join_failed message.
func (lm *LobbyManager) JoinLobby(lobbyID, playerName string, client Broadcaster) (*Lobby, *Player, string) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	l, ok := lm.lobbies[lobbyID]
	if !ok {
		return nil, nil, "lobby not found"
	}
	if l.Started {
		return nil, nil, "game already started"
	}
	if len(l.Players) >= lm.config.MaxPlayers {
		return nil, nil, "lobby full"
	}

	p := NewPlayer(GenerateID(8), playerName)
	p.AccountID = accountIDOf(client)
	l.Players[p.ID] = p
	l.order = append(l.order, p.ID)
	l.clients[p.ID] = client

	lm.broadcastLocked(l, PlayerJoinedMsg{
		Type:     MsgPlayerJoined,
		LobbyID:  l.ID,
		PlayerID: p.ID,
		Players:  l.snapsLocked(),
	})
	return l, p, ""
}

// RosterSnaps returns the current roster of a lobby in wire form, or
// nil for an unknown lobby.
func (lm *LobbyManager) RosterSnaps(lobbyID string) map[string]PlayerSnap {
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	l, ok := lm.lobbies[lobbyID]
	if !ok {
		return nil
	}
	return l.snapsLocked()
}

// RunningGame returns the lobby's simulation once the game has started,
// or nil. This is the only way handler goroutines reach a game.
func (lm *LobbyManager) RunningGame(lobbyID string) *Game {
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	l, ok := lm.lobbies[lobbyID]
	if !ok || !l.Started {
		return nil
	}
	return l.Game
}

// SelectHero records a player's class pick. Rejected once the game has
// started or for unknown classes.
func (lm *LobbyManager) SelectHero(lobbyID, playerID string, heroType HeroType) bool {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	l, ok := lm.lobbies[lobbyID]
	if !ok || l.Started {
		return false
	}
	p, ok := l.Players[playerID]
	if !ok || !ValidHeroType(heroType) {
		return false
	}
	p.HeroType = heroType

	lm.broadcastLocked(l, HeroSelectedMsg{
		Type:     MsgHeroSelected,
		PlayerID: playerID,
		HeroType: string(heroType),
	})
	return true
}

// StartGame spins up the simulation for a lobby. Host only, once.
func (lm *LobbyManager) StartGame(lobbyID, playerID string) (*Lobby, bool) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	l, ok := lm.lobbies[lobbyID]
	if !ok || l.Started || l.HostID != playerID || len(l.Players) == 0 {
		return nil, false
	}

	roster := make([]*Player, 0, len(l.order))
	for _, id := range l.order {
		if p, ok := l.Players[id]; ok {
			roster = append(roster, p)
		}
	}

	game := NewGame(l.ID, roster, lm.config)
	for id, c := range l.clients {
		game.SetClient(id, c)
	}
	game.onGameOver = lm.gameOverFunc(l.ID)
	game.onWave = func(wave int) {
		if lm.analytics != nil {
			lm.analytics.Track(EvtWaveReached, 0, l.ID, "")
		}
	}
	l.Game = game
	l.Started = true

	if lm.analytics != nil {
		lm.analytics.Track(EvtGameStart, 0, l.ID, "")
	}
	go game.Run()

	lm.broadcastLocked(l, GameStartedMsg{Type: MsgGameStarted, GameState: game.Snapshot()})

	logger.WithFields(logrus.Fields{"lobby": l.ID, "players": len(roster)}).Info("game started")
	return l, true
}

// CreatePing drops a map marker into a lobby's running game and
// announces it to everyone in the lobby.
func (lm *LobbyManager) CreatePing(lobbyID, playerID string, msg CreatePingMsg) bool {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	l, ok := lm.lobbies[lobbyID]
	if !ok || !l.Started {
		return false
	}
	p, ok := l.Players[playerID]
	if !ok {
		return false
	}

	ping := l.Game.CreatePing(msg.PingID, playerID, p.Name, msg.Position, msg.PingType, msg.Timestamp)
	lm.broadcastLocked(l, PingCreatedMsg{Type: MsgPingCreated, Ping: buildPingSnap(ping)})
	return true
}

// gameOverFunc builds the callback the game loop fires once after its
// final broadcast: announce, persist stats and achievements for
// registered players, then drop the lobby.
func (lm *LobbyManager) gameOverFunc(lobbyID string) GameOverFunc {
	return func(reason string, wave int, duration float64, kills, builds map[string]int) {
		lm.mu.Lock()
		l, ok := lm.lobbies[lobbyID]
		var conns []Broadcaster
		if ok {
			delete(lm.lobbies, lobbyID)
			conns = make([]Broadcaster, 0, len(l.clients))
			for _, c := range l.clients {
				conns = append(conns, c)
			}
		}
		lm.mu.Unlock()
		if !ok {
			return
		}

		msg := GameOverMsg{Type: MsgGameOver, Reason: reason, Wave: wave, Duration: duration}
		for _, c := range conns {
			c.SendJSON(msg)
		}

		if lm.analytics != nil {
			lm.analytics.Track(EvtGameOver, 0, lobbyID, gameOverEventData(reason, wave, duration))
		}
		lm.persistResults(l, wave, duration, reason, kills, builds)
	}
}

// persistResults writes the game's outcome for every registered player.
// The lobby has already been removed from the manager, so this
// goroutine is its sole owner and no lock is needed.
func (lm *LobbyManager) persistResults(l *Lobby, wave int, duration float64, reason string, kills, builds map[string]int) {
	if lm.db == nil {
		return
	}
	gameID, err := lm.db.RecordGame(l.ID, reason, wave, duration, len(l.Players))
	if err != nil {
		logger.WithError(err).Error("record game failed")
		return
	}
	for id, p := range l.Players {
		if p.AccountID == 0 {
			continue
		}
		killed, built := kills[id], builds[id]
		if err := lm.db.RecordGamePlayer(gameID, p.AccountID, killed, built); err != nil {
			logger.WithError(err).Error("record game player failed")
		}
		if err := lm.db.UpdateStatsAfterGame(p.AccountID, killed, built, wave, duration); err != nil {
			logger.WithError(err).Error("update stats failed")
			continue
		}
		for _, a := range CheckAchievements(lm.db, p.AccountID, wave) {
			if lm.analytics != nil {
				lm.analytics.Track(EvtAchievement, p.AccountID, l.ID, `{"id":"`+a.ID+`"}`)
			}
		}
	}
}

// GetLobby returns a lobby by id. Callers outside this file treat the
// result as an existence check only; the fields belong to the manager
// mutex.
func (lm *LobbyManager) GetLobby(id string) *Lobby {
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	return lm.lobbies[id]
}

// HandleDisconnect detaches a dropped connection from its lobby. Before
// the game starts the player leaves the roster; during a game the
// player is only flagged disconnected so they could reconnect. An empty
// lobby is torn down.
func (lm *LobbyManager) HandleDisconnect(lobbyID, playerID string) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	l, ok := lm.lobbies[lobbyID]
	if !ok {
		return
	}
	delete(l.clients, playerID)

	if l.Started {
		l.Game.SetConnected(playerID, false)
	} else {
		delete(l.Players, playerID)
		for i, id := range l.order {
			if id == playerID {
				l.order = append(l.order[:i], l.order[i+1:]...)
				break
			}
		}
		if l.HostID == playerID && len(l.order) > 0 {
			l.HostID = l.order[0]
		}
	}

	lm.broadcastLocked(l, PlayerDisconnectedMsg{Type: MsgPlayerDisconnected, PlayerID: playerID})

	if len(l.clients) == 0 && !l.Started {
		delete(lm.lobbies, lobbyID)
	}
}

// ListLobbies returns the joinable-lobby overview.
func (lm *LobbyManager) ListLobbies() []LobbyInfo {
	lm.mu.RLock()
	defer lm.mu.RUnlock()

	list := make([]LobbyInfo, 0, len(lm.lobbies))
	for _, l := range lm.lobbies {
		list = append(list, LobbyInfo{
			ID:         l.ID,
			Players:    len(l.Players),
			MaxPlayers: lm.config.MaxPlayers,
			Started:    l.Started,
		})
	}
	return list
}

// Count returns the number of live lobbies.
func (lm *LobbyManager) Count() int {
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	return len(lm.lobbies)
}

// broadcastLocked sends a message to every connection in the lobby.
// Callers hold the manager mutex.
func (lm *LobbyManager) broadcastLocked(l *Lobby, msg interface{}) {
	for _, c := range l.clients {
		c.SendJSON(msg)
	}
}

// accountIDOf pulls the authenticated account off a connection, if the
// broadcaster is a real client that logged in.
func accountIDOf(b Broadcaster) int64 {
	if c, ok := b.(*Client); ok {
		return c.authAccountID
	}
	return 0
}

func gameOverEventData(reason string, wave int, duration float64) string {
	data, err := json.Marshal(struct {
		Reason   string  `json:"reason"`
		Wave     int     `json:"wave"`
		Duration float64 `json:"duration"`
	}{reason, wave, duration})
	if err != nil {
		return ""
	}
	return string(data)
}
