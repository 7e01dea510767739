package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func startTestServer(t *testing.T) (*httptest.Server, *Hub) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>stronghold</html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	hub := NewHub(nil, nil, testConfig())
	go hub.Run()
	srv := httptest.NewServer(SetupRoutes(hub, dir))
	t.Cleanup(srv.Close)
	return srv, hub
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendMsg(t *testing.T, conn *websocket.Conn, msg interface{}) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// readUntilType reads text frames until one carries the wanted type
// tag, skipping unrelated broadcasts.
func readUntilType(t *testing.T, conn *websocket.Conn, want string) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %q: %v", want, err)
		}
		if mt != websocket.TextMessage {
			continue
		}
		var m map[string]interface{}
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatalf("bad frame while waiting for %q: %v", want, err)
		}
		if m["type"] == want {
			return m
		}
	}
}

func readBinaryFrame(t *testing.T, conn *websocket.Conn) []byte {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for a binary frame: %v", err)
		}
		if mt == websocket.BinaryMessage {
			return data
		}
	}
}

func TestLobbyFlowOverWebSocket(t *testing.T) {
	srv, _ := startTestServer(t)

	host := dialWS(t, srv)
	sendMsg(t, host, map[string]interface{}{"type": MsgCreateLobby, "player_name": "Ana"})
	created := readUntilType(t, host, MsgLobbyCreated)

	lobbyID, _ := created["lobby_id"].(string)
	hostID, _ := created["player_id"].(string)
	if lobbyID == "" || hostID == "" {
		t.Fatalf("lobby_created = %v", created)
	}

	// Invite links embed the lobby UUID.
	if !uuidPathRe.MatchString("/" + lobbyID) {
		t.Errorf("lobby id %q is not a UUID", lobbyID)
	}

	guest := dialWS(t, srv)
	sendMsg(t, guest, map[string]interface{}{
		"type": MsgJoinLobby, "lobby_id": lobbyID, "player_name": "Bo", "bin": true,
	})
	joined := readUntilType(t, host, MsgPlayerJoined)
	readUntilType(t, guest, MsgPlayerJoined)
	if players, ok := joined["players"].(map[string]interface{}); !ok || len(players) != 2 {
		t.Errorf("player_joined roster = %v", joined["players"])
	}

	sendMsg(t, guest, map[string]interface{}{"type": MsgSelectHero, "hero_type": "MAGE"})
	pick := readUntilType(t, host, MsgHeroSelected)
	if pick["hero_type"] != "MAGE" {
		t.Errorf("hero_selected = %v", pick)
	}

	sendMsg(t, host, map[string]interface{}{"type": MsgStartGame})
	started := readUntilType(t, host, MsgGameStarted)
	readUntilType(t, guest, MsgGameStarted)
	if _, ok := started["game_state"].(map[string]interface{}); !ok {
		t.Fatalf("game_started carries no state: %v", started)
	}

	// Text client gets JSON updates, the bin:true client msgpack frames.
	update := readUntilType(t, host, MsgGameUpdate)
	state, _ := update["game_state"].(map[string]interface{})
	if state == nil || state["is_active"] != true {
		t.Errorf("game_update state = %v", state)
	}

	snap, err := decodeSnapshotBinary(readBinaryFrame(t, guest))
	if err != nil {
		t.Fatalf("binary snapshot: %v", err)
	}
	if !snap.IsActive || len(snap.Heroes) != 2 {
		t.Errorf("binary snapshot has %d heroes, active=%v", len(snap.Heroes), snap.IsActive)
	}
}

func TestJoinUnknownLobby(t *testing.T) {
	srv, _ := startTestServer(t)

	conn := dialWS(t, srv)
	sendMsg(t, conn, map[string]interface{}{
		"type": MsgJoinLobby, "lobby_id": "missing", "player_name": "Bo",
	})
	failed := readUntilType(t, conn, MsgJoinFailed)
	if failed["reason"] != "lobby not found" {
		t.Errorf("join_failed reason = %v", failed["reason"])
	}
}

func TestNonHostCannotStart(t *testing.T) {
	srv, _ := startTestServer(t)

	host := dialWS(t, srv)
	sendMsg(t, host, map[string]interface{}{"type": MsgCreateLobby, "player_name": "Ana"})
	created := readUntilType(t, host, MsgLobbyCreated)
	lobbyID := created["lobby_id"].(string)

	guest := dialWS(t, srv)
	sendMsg(t, guest, map[string]interface{}{
		"type": MsgJoinLobby, "lobby_id": lobbyID, "player_name": "Bo",
	})
	readUntilType(t, guest, MsgPlayerJoined)

	sendMsg(t, guest, map[string]interface{}{"type": MsgStartGame})
	failed := readUntilType(t, guest, MsgError)
	if failed["message"] != "cannot start game" {
		t.Errorf("error = %v", failed["message"])
	}
}

func TestListLobbiesOverWebSocket(t *testing.T) {
	srv, _ := startTestServer(t)

	host := dialWS(t, srv)
	sendMsg(t, host, map[string]interface{}{"type": MsgCreateLobby, "player_name": "Ana"})
	readUntilType(t, host, MsgLobbyCreated)

	other := dialWS(t, srv)
	sendMsg(t, other, map[string]interface{}{"type": MsgListLobbies})
	list := readUntilType(t, other, MsgLobbyList)
	lobbies, ok := list["lobbies"].([]interface{})
	if !ok || len(lobbies) != 1 {
		t.Errorf("lobby_list = %v", list["lobbies"])
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := startTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}
	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("health body = %v", body)
	}
}

func TestQRInvite(t *testing.T) {
	srv, _ := startTestServer(t)

	host := dialWS(t, srv)
	sendMsg(t, host, map[string]interface{}{"type": MsgCreateLobby, "player_name": "Ana"})
	created := readUntilType(t, host, MsgLobbyCreated)
	lobbyID := created["lobby_id"].(string)

	resp, err := http.Get(srv.URL + "/qr?lobby=" + lobbyID)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("qr status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("qr content type = %q", ct)
	}

	resp, err = http.Get(srv.URL + "/qr?lobby=bogus")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("bogus lobby qr status = %d", resp.StatusCode)
	}
}

func TestLeaderboardWithoutDatabase(t *testing.T) {
	srv, _ := startTestServer(t)

	resp, err := http.Get(srv.URL + "/api/leaderboard")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("leaderboard status without db = %d", resp.StatusCode)
	}
}

func TestSPAServesInviteLinks(t *testing.T) {
	srv, _ := startTestServer(t)

	for _, path := range []string{"/", "/" + GenerateUUID()} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		body := make([]byte, 64)
		n, _ := resp.Body.Read(body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s status = %d", path, resp.StatusCode)
		}
		if !strings.Contains(string(body[:n]), "stronghold") {
			t.Errorf("%s did not serve the SPA shell", path)
		}
	}
}

func TestAuthOverWebSocket(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html></html>"), 0o644)
	db, err := OpenDB(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	hub := NewHub(db, nil, testConfig())
	go hub.Run()
	srv := httptest.NewServer(SetupRoutes(hub, dir))
	defer srv.Close()

	conn := dialWS(t, srv)
	sendMsg(t, conn, map[string]interface{}{"type": MsgRegister, "username": "ana", "password": "secret"})
	ok := readUntilType(t, conn, MsgAuthOK)
	token, _ := ok["token"].(string)
	if ok["username"] != "ana" || token == "" {
		t.Fatalf("auth_ok = %v", ok)
	}

	// A fresh connection resumes the session off the token.
	conn2 := dialWS(t, srv)
	sendMsg(t, conn2, map[string]interface{}{"type": MsgAuth, "token": token})
	resumed := readUntilType(t, conn2, MsgAuthOK)
	if resumed["username"] != "ana" {
		t.Errorf("resumed session = %v", resumed)
	}

	sendMsg(t, conn2, map[string]interface{}{"type": MsgProfile})
	profile := readUntilType(t, conn2, MsgProfileData)
	if profile["games"] != float64(0) {
		t.Errorf("fresh profile = %v", profile)
	}
}
