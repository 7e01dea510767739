package main

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 50
	maxNameLen        = 16
)

// Client is one WebSocket connection. A connection belongs to at most
// one lobby; lobbyID/playerID are set by a successful create or join.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	playerID   string
	lobbyID    string
	remoteAddr string
	useBinary  bool // msgpack snapshot frames instead of JSON
	msgCount   int
	msgResetAt time.Time

	// Auth state; zero/empty means guest.
	authAccountID int64
	authUsername  string
}

// NewClient wraps an upgraded connection.
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
	}
}

// ReadPump reads messages from the WebSocket connection until it drops.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.WithError(err).Debug("ws read error")
			}
			break
		}

		// Rate limiting
		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			logger.WithField("addr", c.remoteAddr).Warn("rate limit exceeded, disconnecting")
			break
		}

		c.handleMessage(message)
	}
}

// WritePump writes queued messages and keepalive pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// 0xFF prefix marks a binary frame queued by SendBinary.
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON marshals and queues a message for this client.
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.WithError(err).Error("marshal error")
		return
	}
	c.SendRaw(data)
}

// SendRaw queues pre-marshaled bytes as a text message. A full send
// buffer drops the message; the next snapshot supersedes it anyway.
func (c *Client) SendRaw(data []byte) {
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
	}
}

// SendBinary queues pre-marshaled bytes as a binary WebSocket message.
// Prefixed with 0xFF so WritePump can tell it from text.
func (c *Client) SendBinary(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

// handleMessage routes an inbound message by its type tag.
func (c *Client) handleMessage(raw []byte) {
	var head msgHead
	if err := json.Unmarshal(raw, &head); err != nil {
		logger.WithError(err).Debug("unmarshal error")
		return
	}

	switch head.Type {
	case MsgCreateLobby:
		c.handleCreateLobby(raw)
	case MsgJoinLobby:
		c.handleJoinLobby(raw)
	case MsgSelectHero:
		c.handleSelectHero(raw)
	case MsgStartGame:
		c.handleStartGame()
	case MsgListLobbies:
		c.handleListLobbies()
	case MsgGameAction:
		c.handleGameAction(raw)
	case MsgCreatePing:
		c.handleCreatePing(raw)
	case MsgRegister:
		c.handleRegister(raw)
	case MsgLogin:
		c.handleLogin(raw)
	case MsgAuth:
		c.handleAuth(raw)
	case MsgProfile:
		c.handleProfile()
	}
}

func cleanName(name string) string {
	if name == "" {
		name = GenerateGuestName()
	}
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	return name
}

func (c *Client) handleCreateLobby(raw []byte) {
	var msg CreateLobbyMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}
	if c.lobbyID != "" {
		c.SendJSON(errorMsg("already in a lobby"))
		return
	}

	lobby, player := c.hub.lobbies.CreateLobby(cleanName(msg.PlayerName), c)
	if lobby == nil {
		c.SendJSON(errorMsg("too many active lobbies"))
		return
	}
	c.lobbyID = lobby.ID
	c.playerID = player.ID

	c.SendJSON(LobbyCreatedMsg{
		Type:     MsgLobbyCreated,
		LobbyID:  lobby.ID,
		PlayerID: player.ID,
		Players:  c.hub.lobbies.RosterSnaps(lobby.ID),
	})
}

func (c *Client) handleJoinLobby(raw []byte) {
	var msg JoinLobbyMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}
	if c.lobbyID != "" {
		c.SendJSON(errorMsg("already in a lobby"))
		return
	}
	c.useBinary = msg.Binary

	lobby, player, reason := c.hub.lobbies.JoinLobby(msg.LobbyID, cleanName(msg.PlayerName), c)
	if reason != "" {
		c.SendJSON(JoinFailedMsg{Type: MsgJoinFailed, Reason: reason})
		return
	}
	c.lobbyID = lobby.ID
	c.playerID = player.ID
}

func (c *Client) handleSelectHero(raw []byte) {
	var msg SelectHeroMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}
	if c.lobbyID == "" {
		return
	}
	c.hub.lobbies.SelectHero(c.lobbyID, c.playerID, HeroType(msg.HeroType))
}

func (c *Client) handleStartGame() {
	if c.lobbyID == "" {
		return
	}
	if _, ok := c.hub.lobbies.StartGame(c.lobbyID, c.playerID); !ok {
		c.SendJSON(errorMsg("cannot start game"))
	}
}

func (c *Client) handleListLobbies() {
	c.SendJSON(LobbyListMsg{Type: MsgLobbyList, Lobbies: c.hub.lobbies.ListLobbies()})
}

// handleGameAction dispatches one simulation command to this player's
// running game. Invalid commands are dropped without a reply, matching
// the "nothing happened" contract.
func (c *Client) handleGameAction(raw []byte) {
	game := c.currentGame()
	if game == nil {
		return
	}
	var wrapper GameActionMsg
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return
	}
	var head msgHead
	if err := json.Unmarshal(wrapper.Action, &head); err != nil {
		return
	}

	switch head.Type {
	case ActMoveHero:
		var act MoveHeroAction
		if err := json.Unmarshal(wrapper.Action, &act); err != nil {
			return
		}
		game.MoveHero(c.playerID, act.TargetPosition)
	case ActMoveToTarget:
		var act MoveToTargetAction
		if err := json.Unmarshal(wrapper.Action, &act); err != nil {
			return
		}
		game.MoveToTarget(c.playerID, TargetKind(act.TargetType), act.TargetID, act.TargetPosition)
	case ActBuild:
		var act BuildAction
		if err := json.Unmarshal(wrapper.Action, &act); err != nil {
			return
		}
		if game.Build(c.playerID, BuildingType(act.BuildingType), act.Position) && c.hub.analytics != nil {
			c.hub.analytics.Track(EvtBuildingBuilt, c.authAccountID, c.lobbyID, `{"type":"`+act.BuildingType+`"}`)
		}
	case ActTogglePause:
		game.TogglePause()
	}
}

func (c *Client) handleCreatePing(raw []byte) {
	if c.lobbyID == "" || c.playerID == "" {
		return
	}
	var msg CreatePingMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}
	c.hub.lobbies.CreatePing(c.lobbyID, c.playerID, msg)
}

// currentGame returns the running game of this client's lobby, or nil.
func (c *Client) currentGame() *Game {
	if c.lobbyID == "" || c.playerID == "" {
		return nil
	}
	return c.hub.lobbies.RunningGame(c.lobbyID)
}

func (c *Client) handleRegister(raw []byte) {
	if c.hub.auth == nil {
		return
	}
	var msg RegisterMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Register(msg.Username, msg.Password)
	if err != nil {
		c.SendJSON(errorMsg(err.Error()))
		return
	}
	c.authAccountID = id
	c.authUsername = msg.Username
	c.SendJSON(AuthOKMsg{Type: MsgAuthOK, Token: token, Username: msg.Username, PlayerID: id})
}

func (c *Client) handleLogin(raw []byte) {
	if c.hub.auth == nil {
		return
	}
	var msg LoginMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Login(msg.Username, msg.Password, c.remoteAddr)
	if err != nil {
		c.SendJSON(errorMsg(err.Error()))
		return
	}
	c.authAccountID = id
	c.authUsername = msg.Username
	c.SendJSON(AuthOKMsg{Type: MsgAuthOK, Token: token, Username: msg.Username, PlayerID: id})
}

func (c *Client) handleAuth(raw []byte) {
	if c.hub.auth == nil {
		return
	}
	var msg AuthMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}
	id, username, err := c.hub.auth.ValidateToken(msg.Token)
	if err != nil {
		c.SendJSON(errorMsg("invalid token"))
		return
	}
	c.authAccountID = id
	c.authUsername = username
	c.SendJSON(AuthOKMsg{Type: MsgAuthOK, Token: msg.Token, Username: username, PlayerID: id})
}

func (c *Client) handleProfile() {
	if c.hub.db == nil || c.authAccountID == 0 {
		c.SendJSON(errorMsg("not authenticated"))
		return
	}
	stats, err := c.hub.db.GetStats(c.authAccountID)
	if err != nil || stats == nil {
		c.SendJSON(errorMsg("profile not found"))
		return
	}
	c.SendJSON(ProfileDataMsg{
		Type:           MsgProfileData,
		Username:       c.authUsername,
		Games:          stats.Games,
		BestWave:       stats.BestWave,
		EnemiesKilled:  stats.EnemiesKilled,
		BuildingsBuilt: stats.BuildingsBuilt,
		Playtime:       stats.Playtime,
	})
}
