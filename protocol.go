package main

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
)

// Wire shape: a flat JSON object with a "type" tag and the payload
// fields inline. Inbound messages are decoded in two passes: the type
// tag first, then the full struct from the same raw bytes.

// Client -> Server message types
const (
	MsgCreateLobby = "create_lobby"
	MsgJoinLobby   = "join_lobby"
	MsgSelectHero  = "select_hero"
	MsgStartGame   = "start_game"
	MsgListLobbies = "list_lobbies"
	MsgGameAction  = "game_action"
	MsgCreatePing  = "create_ping"
	MsgRegister    = "register"
	MsgLogin       = "login"
	MsgAuth        = "auth"
	MsgProfile     = "profile"
)

// Game action types carried inside a game_action message
const (
	ActMoveHero     = "move_hero"
	ActMoveToTarget = "move_to_target"
	ActBuild        = "build"
	ActTogglePause  = "toggle_pause"
)

// Server -> Client message types
const (
	MsgLobbyCreated       = "lobby_created"
	MsgPlayerJoined       = "player_joined"
	MsgJoinFailed         = "join_failed"
	MsgHeroSelected       = "hero_selected"
	MsgLobbyList          = "lobby_list"
	MsgGameStarted        = "game_started"
	MsgGameUpdate         = "game_update"
	MsgPingCreated        = "ping_created"
	MsgPlayerDisconnected = "player_disconnected"
	MsgGameOver           = "game_over"
	MsgAuthOK             = "auth_ok"
	MsgProfileData        = "profile_data"
	MsgError              = "error"
)

// msgHead is the first decode pass over any inbound message.
type msgHead struct {
	Type string `json:"type"`
}

// --- Inbound payloads ---

type CreateLobbyMsg struct {
	PlayerName string `json:"player_name"`
}

type JoinLobbyMsg struct {
	LobbyID    string `json:"lobby_id"`
	PlayerName string `json:"player_name"`
	Binary     bool   `json:"bin"` // request msgpack snapshot frames
}

type SelectHeroMsg struct {
	HeroType string `json:"hero_type"`
}

// GameActionMsg wraps one simulation command. The action payload keeps
// its own type tag and is decoded the same two-pass way.
type GameActionMsg struct {
	Action json.RawMessage `json:"action"`
}

type MoveHeroAction struct {
	TargetPosition Position `json:"target_position"`
}

type MoveToTargetAction struct {
	TargetType     string    `json:"target_type"`
	TargetID       string    `json:"target_id,omitempty"`
	TargetPosition *Position `json:"target_position,omitempty"`
}

// BuildAction positions are in pixel units; the handler converts.
type BuildAction struct {
	BuildingType string     `json:"building_type"`
	Position     PixelPoint `json:"position"`
}

type CreatePingMsg struct {
	PingID    string   `json:"ping_id"`
	Position  Position `json:"position"`
	PingType  string   `json:"ping_type"`
	Timestamp float64  `json:"timestamp"`
}

type RegisterMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthMsg struct {
	Token string `json:"token"`
}

// --- Outbound messages ---

type LobbyCreatedMsg struct {
	Type     string                `json:"type"`
	LobbyID  string                `json:"lobby_id"`
	PlayerID string                `json:"player_id"`
	Players  map[string]PlayerSnap `json:"players"`
}

type PlayerJoinedMsg struct {
	Type     string                `json:"type"`
	LobbyID  string                `json:"lobby_id"`
	PlayerID string                `json:"player_id"`
	Players  map[string]PlayerSnap `json:"players"`
}

type JoinFailedMsg struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

type HeroSelectedMsg struct {
	Type     string `json:"type"`
	PlayerID string `json:"player_id"`
	HeroType string `json:"hero_type"`
}

type LobbyInfo struct {
	ID         string `json:"id"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"max_players"`
	Started    bool   `json:"started"`
}

type LobbyListMsg struct {
	Type    string      `json:"type"`
	Lobbies []LobbyInfo `json:"lobbies"`
}

type GameStartedMsg struct {
	Type      string   `json:"type"`
	GameState Snapshot `json:"game_state"`
}

type GameUpdateMsg struct {
	Type      string   `json:"type"`
	GameState Snapshot `json:"game_state"`
}

type PingCreatedMsg struct {
	Type string   `json:"type"`
	Ping PingSnap `json:"ping"`
}

type PlayerDisconnectedMsg struct {
	Type     string `json:"type"`
	PlayerID string `json:"player_id"`
}

type GameOverMsg struct {
	Type     string  `json:"type"`
	Reason   string  `json:"reason"`
	Wave     int     `json:"wave"`
	Duration float64 `json:"duration"`
}

type AuthOKMsg struct {
	Type     string `json:"type"`
	Token    string `json:"token"`
	Username string `json:"username"`
	PlayerID int64  `json:"player_id"`
}

type ProfileDataMsg struct {
	Type           string  `json:"type"`
	Username       string  `json:"username"`
	Games          int     `json:"games"`
	BestWave       int     `json:"best_wave"`
	EnemiesKilled  int     `json:"enemies_killed"`
	BuildingsBuilt int     `json:"buildings_built"`
	Playtime       float64 `json:"playtime"`
}

type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func errorMsg(message string) ErrorMsg {
	return ErrorMsg{Type: MsgError, Message: message}
}

// --- Snapshot ---

// Snapshot is the wire form of a GameState. Heroes, units, enemies,
// pings and effects cross the wire in tile units; building positions
// cross in pixels, matching how build commands arrive. The same struct
// serves JSON text frames and msgpack binary frames.

type PlayerSnap struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	HeroType    string    `json:"hero_type"`
	Resources   Resources `json:"resources"`
	IsConnected bool      `json:"is_connected"`
}

type HeroSnap struct {
	ID        string   `json:"id"`
	PlayerID  string   `json:"player_id"`
	Type      string   `json:"type"`
	Position  Position `json:"position"`
	Health    int      `json:"health"`
	MaxHealth int      `json:"max_health"`
}

type BuildingSnap struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	PlayerID  string     `json:"player_id"`
	Position  PixelPoint `json:"position"`
	Width     int        `json:"width"`
	Height    int        `json:"height"`
	Health    int        `json:"health"`
	MaxHealth int        `json:"max_health"`
}

type UnitSnap struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	PlayerID  string   `json:"player_id"`
	Position  Position `json:"position"`
	Health    int      `json:"health"`
	MaxHealth int      `json:"max_health"`
}

type EnemySnap struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	Position  Position `json:"position"`
	Health    int      `json:"health"`
	MaxHealth int      `json:"max_health"`
	IsDead    bool     `json:"is_dead"`
}

type PingSnap struct {
	ID         string   `json:"id"`
	PlayerID   string   `json:"player_id"`
	PlayerName string   `json:"player_name"`
	Position   Position `json:"position"`
	PingType   string   `json:"ping_type"`
	Timestamp  float64  `json:"timestamp"`
}

type EffectSnap struct {
	ID         string   `json:"id"`
	AttackerID string   `json:"attacker_id"`
	TargetID   string   `json:"target_id"`
	Type       string   `json:"effect_type"`
	From       Position `json:"from"`
	To         Position `json:"to"`
	Damage     int      `json:"damage"`
	CreatedAt  float64  `json:"created_at"`
	Duration   float64  `json:"duration"`
}

type Snapshot struct {
	Players        map[string]PlayerSnap   `json:"players"`
	Heroes         map[string]HeroSnap     `json:"heroes"`
	Buildings      map[string]BuildingSnap `json:"buildings"`
	Units          map[string]UnitSnap     `json:"units"`
	Enemies        map[string]EnemySnap    `json:"enemies"`
	Pings          map[string]PingSnap     `json:"pings"`
	Effects        []EffectSnap            `json:"attack_effects"`
	Tiles          [][]TileType            `json:"tiles"`
	Fog            [][]bool                `json:"fog_of_war"`
	GameTime       float64                 `json:"game_time"`
	WaveNumber     int                     `json:"wave_number"`
	NextWaveIn     float64                 `json:"next_wave_in"`
	IsActive       bool                    `json:"is_active"`
	IsPaused       bool                    `json:"is_paused"`
	GameOverReason string                  `json:"game_over_reason,omitempty"`
}

// BuildSnapshot converts the live state into its wire form. The tile
// and fog grids are shared by reference: callers serialize while still
// holding the game lock, before the next tick mutates them.
func BuildSnapshot(s *GameState) Snapshot {
	snap := Snapshot{
		Players:        make(map[string]PlayerSnap, len(s.Players)),
		Heroes:         make(map[string]HeroSnap, len(s.Heroes)),
		Buildings:      make(map[string]BuildingSnap, len(s.Buildings)),
		Units:          make(map[string]UnitSnap, len(s.Units)),
		Enemies:        make(map[string]EnemySnap, len(s.Enemies)),
		Pings:          make(map[string]PingSnap, len(s.Pings)),
		Effects:        make([]EffectSnap, 0, len(s.Effects)),
		Tiles:          s.Tiles,
		Fog:            s.Fog,
		GameTime:       s.GameTime,
		WaveNumber:     s.WaveNumber,
		NextWaveIn:     s.NextWaveTime - s.GameTime,
		IsActive:       s.IsActive,
		IsPaused:       s.IsPaused,
		GameOverReason: s.GameOverReason,
	}

	for id, p := range s.Players {
		snap.Players[id] = PlayerSnap{
			ID:          p.ID,
			Name:        p.Name,
			HeroType:    string(p.HeroType),
			Resources:   p.Resources,
			IsConnected: p.IsConnected,
		}
	}
	for id, h := range s.Heroes {
		snap.Heroes[id] = HeroSnap{
			ID:        h.ID,
			PlayerID:  h.PlayerID,
			Type:      string(h.Type),
			Position:  h.Position,
			Health:    h.Health,
			MaxHealth: h.MaxHealth,
		}
	}
	for id, b := range s.Buildings {
		snap.Buildings[id] = BuildingSnap{
			ID:        b.ID,
			Type:      string(b.Type),
			PlayerID:  b.PlayerID,
			Position:  b.Position.ToPixels(),
			Width:     b.Width,
			Height:    b.Height,
			Health:    b.Health,
			MaxHealth: b.MaxHealth,
		}
	}
	for id, u := range s.Units {
		snap.Units[id] = UnitSnap{
			ID:        u.ID,
			Type:      string(u.Type),
			PlayerID:  u.PlayerID,
			Position:  u.Position,
			Health:    u.Health,
			MaxHealth: u.MaxHealth,
		}
	}
	for id, e := range s.Enemies {
		snap.Enemies[id] = EnemySnap{
			ID:        e.ID,
			Type:      string(e.Type),
			Position:  e.Position,
			Health:    e.Health,
			MaxHealth: e.MaxHealth,
			IsDead:    e.IsDead,
		}
	}
	for id, p := range s.Pings {
		snap.Pings[id] = buildPingSnap(p)
	}
	for _, fx := range s.Effects {
		snap.Effects = append(snap.Effects, EffectSnap{
			ID:         fx.ID,
			AttackerID: fx.AttackerID,
			TargetID:   fx.TargetID,
			Type:       fx.Type,
			From:       fx.From,
			To:         fx.To,
			Damage:     fx.Damage,
			CreatedAt:  fx.CreatedAt,
			Duration:   fx.Duration,
		})
	}
	return snap
}

func buildPingSnap(p *Ping) PingSnap {
	return PingSnap{
		ID:         p.ID,
		PlayerID:   p.PlayerID,
		PlayerName: p.PlayerName,
		Position:   p.Position,
		PingType:   p.PingType,
		Timestamp:  p.Timestamp,
	}
}

// encodeSnapshotBinary packs a snapshot into one msgpack frame. The
// 200x200 tile and fog grids dominate snapshot size; msgpack encodes
// them far tighter than JSON tile names.
func encodeSnapshotBinary(snap Snapshot) ([]byte, error) {
	return msgpack.Marshal(snap)
}

// decodeSnapshotBinary is the inverse, used by tests and kept next to
// the encoder so the two stay in sync.
func decodeSnapshotBinary(data []byte) (Snapshot, error) {
	var snap Snapshot
	err := msgpack.Unmarshal(data, &snap)
	return snap, err
}
