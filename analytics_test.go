package main

import "testing"

func TestAnalyticsStopDrainsQueue(t *testing.T) {
	db := openTestDB(t)
	a := NewAnalytics(db)

	a.Track(EvtSessionStart, 1, "s1", "")
	a.Track(EvtGameStart, 1, "lobby-1", "")
	a.Track(EvtGameOver, 1, "lobby-1", `{"reason":"town_hall_destroyed","wave":3,"duration":42.5}`)
	a.Stop()

	var count int
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM analytics_events").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("persisted %d events, want 3", count)
	}
}

func TestAnalyticsGauges(t *testing.T) {
	a := NewAnalytics(nil)
	defer a.Stop()

	a.SetConnections(12)
	a.SetActiveLobbies(3)
	conns, lobbies := a.Gauges()
	if conns != 12 || lobbies != 3 {
		t.Errorf("gauges = %d/%d, want 12/3", conns, lobbies)
	}
}

func TestAnalyticsActiveCounts(t *testing.T) {
	db := openTestDB(t)
	a := NewAnalytics(db)

	a.Track(EvtSessionStart, 1, "s1", "")
	a.Track(EvtSessionStart, 2, "s2", "")
	a.Track(EvtSessionStart, 2, "s2", "") // same player again
	a.Track(EvtWaveReached, 0, "lobby-1", "")
	a.Stop()

	dau, err := a.DAUCount()
	if err != nil {
		t.Fatal(err)
	}
	if dau != 2 {
		t.Errorf("DAU = %d, want 2 distinct players", dau)
	}
	wau, err := a.WAUCount()
	if err != nil {
		t.Fatal(err)
	}
	if wau != 2 {
		t.Errorf("WAU = %d, want 2", wau)
	}
}

func TestAnalyticsEventCounts(t *testing.T) {
	db := openTestDB(t)
	a := NewAnalytics(db)

	a.Track(EvtGameStart, 0, "lobby-1", "")
	a.Track(EvtGameStart, 0, "lobby-2", "")
	a.Track(EvtGameOver, 0, "lobby-1", "")
	a.Stop()

	counts, err := a.EventCounts(7)
	if err != nil {
		t.Fatal(err)
	}
	if counts[EvtGameStart] != 2 || counts[EvtGameOver] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestAnalyticsGameOutcomes(t *testing.T) {
	db := openTestDB(t)
	a := NewAnalytics(db)

	a.Track(EvtGameOver, 0, "l1", gameOverEventData("town_hall_destroyed", 4, 100))
	a.Track(EvtGameOver, 0, "l2", gameOverEventData("town_hall_destroyed", 6, 200))
	a.Track(EvtGameOver, 0, "l3", gameOverEventData("all_players_disconnected", 2, 30))
	a.Stop()

	outcomes, err := a.GameOutcomes(7)
	if err != nil {
		t.Fatal(err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("grouped into %d outcomes, want 2", len(outcomes))
	}
	top := outcomes[0]
	if top.Reason != "town_hall_destroyed" || top.Count != 2 {
		t.Errorf("top outcome = %+v", top)
	}
	if top.AvgDuration != 150 || top.AvgWave != 5 {
		t.Errorf("averages = %v / %v, want 150 / 5", top.AvgDuration, top.AvgWave)
	}
}

func TestAnalyticsNilDBQueries(t *testing.T) {
	a := NewAnalytics(nil)
	defer a.Stop()

	if n, err := a.DAUCount(); n != 0 || err != nil {
		t.Error("nil-db DAU should be zero")
	}
	if counts, err := a.EventCounts(7); counts != nil || err != nil {
		t.Error("nil-db event counts should be empty")
	}
}
