package main

import (
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Broadcaster is the send side of a connected client.
type Broadcaster interface {
	SendJSON(msg interface{})
}

// GameOverFunc is invoked once after a game ends and its final snapshot
// has gone out. kills and builds map player ID to enemies killed and
// buildings placed.
type GameOverFunc func(reason string, wave int, duration float64, kills, builds map[string]int)

// Game runs one lobby's simulation: a fixed-rate tick loop plus the
// mutex-guarded command handlers that mutate state between ticks.
type Game struct {
	mu     sync.RWMutex
	state  *GameState
	config GameConfig
	rng    *rand.Rand

	grid    *GridPathfinder
	navmesh *NavMesh
	spatial *SpatialGrid

	clients map[string]Broadcaster // playerID -> client

	tick              uint64
	dirty             bool
	lastBroadcast     time.Time
	economyAccum      float64
	lastWaveCountdown int
	killCounts        map[string]int
	buildCounts       map[string]int
	queryBuf          []EntityRef

	running    bool
	stop       chan struct{}
	onGameOver GameOverFunc
	onWave     func(wave int)
}

// NewGame builds the world for a lobby roster and returns a game ready
// to Run. Roster order decides hero spawn slots.
func NewGame(lobbyID string, roster []*Player, config GameConfig) *Game {
	seed := config.Seed
	if seed == 0 {
		seed = seedFromLobbyID(lobbyID)
	}

	state := &GameState{
		LobbyID:   lobbyID,
		Players:   make(map[string]*Player, len(roster)),
		Heroes:    make(map[string]*Hero, len(roster)),
		Buildings: make(map[string]*Building),
		Units:     make(map[string]*Unit),
		Enemies:   make(map[string]*Enemy),
		Pings:     make(map[string]*Ping),
		IsActive:  true,
	}
	state.Tiles = NewMapGenerator(config.MapWidth, config.MapHeight, seed).Generate()
	state.Fog = make([][]bool, config.MapHeight)
	for y := range state.Fog {
		state.Fog[y] = make([]bool, config.MapWidth)
	}
	state.NextWaveTime = config.FirstWaveDelay

	g := &Game{
		state:             state,
		config:            config,
		rng:               rand.New(rand.NewSource(seed)),
		grid:              NewGridPathfinder(config.MapWidth, config.MapHeight),
		spatial:           NewSpatialGrid(config.MapWidth, config.MapHeight),
		clients:           make(map[string]Broadcaster),
		killCounts:        make(map[string]int),
		buildCounts:       make(map[string]int),
		lastWaveCountdown: -1,
		stop:              make(chan struct{}),
	}

	g.placeStartingEntities(roster)
	if config.UseNavMesh {
		g.navmesh = BuildNavMesh(state)
	}
	g.refreshVision()
	return g
}

// placeStartingEntities drops the shared Town Hall in the map center
// and one hero per player around it. The anchor is shifted so the 3x3
// footprint is centered and the hero spawn ring stays outside it.
func (g *Game) placeStartingEntities(roster []*Player) {
	cx := g.config.MapWidth / 2
	cy := g.config.MapHeight / 2

	th, _ := NewBuilding(GenerateUUID(), BuildingTownHall, SharedOwner, cx-1, cy-1)
	g.state.Buildings[th.ID] = th

	spawns := [...]Position{
		{X: float64(cx - 2), Y: float64(cy - 2)},
		{X: float64(cx + 2), Y: float64(cy - 2)},
		{X: float64(cx - 2), Y: float64(cy + 2)},
		{X: float64(cx + 2), Y: float64(cy + 2)},
	}

	for i, p := range roster {
		if i >= len(spawns) {
			break
		}
		p.Resources = g.config.StartingResources
		g.state.Players[p.ID] = p

		h := NewHero(GenerateUUID(), p.ID, p.HeroType, spawns[i])
		g.state.Heroes[h.ID] = h
	}
}

// Run drives the fixed-rate loop until the game ends or Stop is called.
func (g *Game) Run() {
	g.mu.Lock()
	g.running = true
	g.mu.Unlock()

	ticker := time.NewTicker(g.config.TickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if g.safeUpdate() {
				g.finish()
				return
			}
		case <-g.stop:
			return
		}
	}
}

// Stop terminates the loop without a game-over broadcast.
func (g *Game) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running {
		g.running = false
		close(g.stop)
	}
}

// safeUpdate runs one tick, trapping panics so a bug in one lobby's
// simulation cannot take down the rest of the process. Returns true
// when the game is over.
func (g *Game) safeUpdate() (ended bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithFields(logrus.Fields{
				"lobby": g.state.LobbyID,
				"panic": r,
			}).Error("tick panicked")
		}
	}()
	return g.update()
}

// update advances one tick and returns whether the game just ended.
// Pause freezes game time and every subsystem; only the broadcast gate
// keeps running so clients see the pause flag and queued orders.
func (g *Game) update() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.state.IsActive {
		return true
	}

	g.tick++
	dt := g.config.TickDuration()

	if !g.state.IsPaused {
		g.state.GameTime += dt

		g.rebuildSpatial()
		g.stepMovement(dt)
		g.stepEconomy(dt)
		g.stepWaves()
		g.stepEnemyAI(dt)
		g.stepHeroCombat(dt)
		g.cleanupExpired()
		g.checkGameOver()
	}

	ended := !g.state.IsActive
	if ended || (g.dirty && time.Since(g.lastBroadcast) >= g.config.BroadcastInterval()) {
		g.broadcastState()
		g.dirty = false
		g.lastBroadcast = time.Now()
	}
	return ended
}

// rebuildSpatial refills the broad-phase index from live positions.
// Runs at tick start, so queries during the tick see positions at most
// one step stale; exact range checks always use live coordinates.
func (g *Game) rebuildSpatial() {
	g.spatial.Clear()
	for id, h := range g.state.Heroes {
		if h.Alive() {
			g.spatial.Insert(h.Position.X, h.Position.Y, EntityRef{Kind: 'h', ID: id})
		}
	}
	for id, u := range g.state.Units {
		if u.Alive() {
			g.spatial.Insert(u.Position.X, u.Position.Y, EntityRef{Kind: 'u', ID: id})
		}
	}
	for id, e := range g.state.Enemies {
		if e.Alive() {
			g.spatial.Insert(e.Position.X, e.Position.Y, EntityRef{Kind: 'e', ID: id})
		}
	}
}

// cleanupExpired reaps finished attack effects, expired pings and
// corpses past their grace period.
func (g *Game) cleanupExpired() {
	now := g.state.GameTime

	if n := len(g.state.Effects); n > 0 {
		kept := g.state.Effects[:0]
		for _, fx := range g.state.Effects {
			if !fx.Expired(now) {
				kept = append(kept, fx)
			}
		}
		g.state.Effects = kept
		if len(kept) != n {
			g.markDirty()
		}
	}

	for id, p := range g.state.Pings {
		if p.Expired(now) {
			delete(g.state.Pings, id)
			g.markDirty()
		}
	}

	for id, e := range g.state.Enemies {
		if e.IsDead && now-e.DeathTime >= CorpseGracePeriod {
			delete(g.state.Enemies, id)
			g.markDirty()
		}
	}
}

func (g *Game) checkGameOver() {
	if th := g.state.FindTownHall(); th == nil || !th.Alive() {
		g.endGame(GameOverTownHallDestroyed)
		return
	}
	connected := 0
	for _, p := range g.state.Players {
		if p.IsConnected {
			connected++
		}
	}
	if connected == 0 {
		g.endGame(GameOverAllDisconnected)
	}
}

func (g *Game) endGame(reason string) {
	g.state.IsActive = false
	g.state.GameOverReason = reason
	g.markDirty()
	logger.WithFields(logrus.Fields{
		"lobby":  g.state.LobbyID,
		"reason": reason,
		"wave":   g.state.WaveNumber,
	}).Info("game over")
}

// finish fires the game-over callback after the loop exits.
func (g *Game) finish() {
	g.mu.Lock()
	g.running = false
	cb := g.onGameOver
	reason := g.state.GameOverReason
	wave := g.state.WaveNumber
	duration := g.state.GameTime
	kills := make(map[string]int, len(g.killCounts))
	for id, n := range g.killCounts {
		kills[id] = n
	}
	builds := make(map[string]int, len(g.buildCounts))
	for id, n := range g.buildCounts {
		builds[id] = n
	}
	g.mu.Unlock()

	if cb != nil {
		cb(reason, wave, duration, kills, builds)
	}
}

// markDirty flags the state for the next broadcast gate.
func (g *Game) markDirty() {
	g.dirty = true
}

// findPath plans a route in tile units. The nav mesh gives shorter,
// smoother routes when built; grid A* is the guaranteed fallback and
// the only engine that avoids dynamic actors.
func (g *Game) findPath(start, goal Position, excludeID string) []Position {
	if g.navmesh != nil {
		if path := g.navmesh.FindPath(start, goal, g.state, excludeID); len(path) > 0 {
			return path
		}
	}
	return g.grid.FindPath(start, goal, g.state, excludeID)
}

func (g *Game) rebuildNavMesh() {
	if g.config.UseNavMesh {
		g.navmesh = BuildNavMesh(g.state)
	}
}

// onBuildingDestroyed handles the structural side of a building kill:
// the ruin stops blocking movement, so both path engines must refresh.
func (g *Game) onBuildingDestroyed(b *Building) {
	g.rebuildNavMesh()
	g.markDirty()
}

func (g *Game) onEnemyKilled(playerID string) {
	g.killCounts[playerID]++
}

// MoveHero orders the player's hero to a fixed position.
func (g *Game) MoveHero(playerID string, target Position) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	h := g.state.HeroOf(playerID)
	if h == nil || !h.Alive() {
		return false
	}
	g.clampToMap(&target)
	h.SetTarget(&MovementTarget{
		Kind:           TargetPosition,
		Position:       target,
		FollowDistance: FollowDistPosition,
	})
	g.replan(h.ID, h.Position, &h.Mover)
	g.markDirty()
	return true
}

// MoveToTarget orders the player's hero to follow an entity, or to a
// raw position when the client already resolved one.
func (g *Game) MoveToTarget(playerID string, kind TargetKind, targetID string, pos *Position) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch kind {
	case TargetPosition, TargetHero, TargetBuilding, TargetEnemy, TargetUnit:
	default:
		return false
	}
	// A raw-position order with no position would march the hero to the
	// map origin.
	if kind == TargetPosition && pos == nil {
		return false
	}

	h := g.state.HeroOf(playerID)
	if h == nil || !h.Alive() {
		return false
	}

	t := &MovementTarget{
		Kind:           kind,
		TargetID:       targetID,
		FollowDistance: FollowDistanceFor(kind),
	}
	if pos != nil {
		t.Position = *pos
	} else {
		resolved, ok := g.resolveTarget(t)
		if !ok {
			return false
		}
		t.Position = resolved
	}

	h.SetTarget(t)
	g.replan(h.ID, h.Position, &h.Mover)
	g.markDirty()
	return true
}

// Build validates and places a building. The wire position is in pixel
// units; everything past this boundary is tile units.
func (g *Game) Build(playerID string, buildingType BuildingType, wirePos PixelPoint) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	player, ok := g.state.Players[playerID]
	if !ok {
		return false
	}
	def, ok := GetBuildingDef(buildingType)
	if !ok || buildingType == BuildingTownHall {
		return false
	}
	if !player.Resources.CanAfford(def.Cost) {
		return false
	}

	anchor := wirePos.ToTiles()
	tx, ty := int(anchor.X), int(anchor.Y)

	if !g.state.FootprintFree(tx, ty, def.Width, def.Height) {
		return false
	}
	if !g.footprintExplored(tx, ty, def.Width, def.Height) {
		return false
	}
	if !g.heroAdjacent(playerID, tx, ty, def.Width, def.Height) {
		return false
	}

	player.Resources.Deduct(def.Cost)
	b, _ := NewBuilding(GenerateUUID(), buildingType, playerID, tx, ty)
	g.state.Buildings[b.ID] = b
	g.buildCounts[playerID]++

	g.rebuildNavMesh()
	g.revealAround(b.Center(), BuildingVisionRadius)
	g.markDirty()

	logger.WithFields(logrus.Fields{
		"player":   playerID,
		"building": buildingType,
		"x":        tx,
		"y":        ty,
	}).Debug("building placed")
	return true
}

// footprintExplored requires every tile under the footprint to be out
// of the fog of war.
func (g *Game) footprintExplored(tx, ty, w, h int) bool {
	for dx := 0; dx < w; dx++ {
		for dy := 0; dy < h; dy++ {
			if !g.state.Explored(tx+dx, ty+dy) {
				return false
			}
		}
	}
	return true
}

// heroAdjacent reports whether the player's hero stands close enough to
// the footprint to do the construction work. Clients with a distant
// hero walk it over and re-issue the build.
func (g *Game) heroAdjacent(playerID string, tx, ty, w, h int) bool {
	hero := g.state.HeroOf(playerID)
	if hero == nil || !hero.Alive() {
		return false
	}
	for dx := 0; dx < w; dx++ {
		for dy := 0; dy < h; dy++ {
			if Distance(hero.Position.X, hero.Position.Y, float64(tx+dx), float64(ty+dy)) <= BuildAdjacencyDist {
				return true
			}
		}
	}
	return false
}

// TogglePause flips the paused flag. Pausing freezes game time and all
// simulation; command handlers still run so the game can be unpaused.
func (g *Game) TogglePause() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.state.IsActive {
		return false
	}
	g.state.IsPaused = !g.state.IsPaused
	g.markDirty()
	logger.WithFields(logrus.Fields{
		"lobby":  g.state.LobbyID,
		"paused": g.state.IsPaused,
	}).Info("pause toggled")
	return true
}

// CreatePing drops a map marker visible to the whole lobby. The ping ID
// and client timestamp are passed through so the sender can render its
// own ping immediately and reconcile later.
func (g *Game) CreatePing(pingID, playerID, playerName string, pos Position, pingType string, timestamp float64) *Ping {
	g.mu.Lock()
	defer g.mu.Unlock()

	if pingID == "" {
		pingID = GenerateUUID()
	}
	g.clampToMap(&pos)
	ping := NewPing(pingID, playerID, playerName, pos, pingType, timestamp, g.state.GameTime)
	g.state.Pings[ping.ID] = ping
	g.markDirty()
	return ping
}

// SetClient associates a broadcaster with a player.
func (g *Game) SetClient(playerID string, client Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clients[playerID] = client
}

// SetConnected flips a player's connection flag when their socket drops
// or comes back. Heroes stay in the world while disconnected.
func (g *Game) SetConnected(playerID string, connected bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if p, ok := g.state.Players[playerID]; ok {
		p.IsConnected = connected
		g.markDirty()
	}
	if !connected {
		delete(g.clients, playerID)
	}
}

// PlayerCount returns the roster size.
func (g *Game) PlayerCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.state.Players)
}

// Active reports whether the simulation is still running.
func (g *Game) Active() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state.IsActive
}

// Snapshot builds the wire form of the current state.
func (g *Game) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return BuildSnapshot(g.state)
}

// broadcastState sends the current snapshot to every connected client.
// Binary-mode clients share one msgpack frame, everyone else the shared
// JSON encoding. Callers hold the state lock.
func (g *Game) broadcastState() {
	msg := GameUpdateMsg{Type: MsgGameUpdate, GameState: BuildSnapshot(g.state)}

	jsonData, err := json.Marshal(msg)
	if err != nil {
		logger.WithError(err).Error("snapshot marshal failed")
		return
	}

	var binData []byte
	for _, client := range g.clients {
		if c, ok := client.(*Client); ok && c.useBinary {
			binData, err = encodeSnapshotBinary(msg.GameState)
			if err != nil {
				logger.WithError(err).Error("snapshot msgpack failed")
				binData = nil
			}
			break
		}
	}

	for _, client := range g.clients {
		c, ok := client.(*Client)
		if !ok {
			client.SendJSON(msg)
			continue
		}
		if c.useBinary && binData != nil {
			c.SendBinary(binData)
		} else {
			c.SendRaw(jsonData)
		}
	}
}
