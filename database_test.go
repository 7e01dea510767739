package main

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreateAndFetchPlayer(t *testing.T) {
	db := openTestDB(t)

	id, err := db.CreatePlayer("ana", "ana@example.com", "hash")
	if err != nil {
		t.Fatal(err)
	}

	p, err := db.GetPlayerByUsername("ana")
	if err != nil {
		t.Fatal(err)
	}
	if p == nil || p.ID != id || p.Username != "ana" || p.PassHash != "hash" {
		t.Fatalf("fetched %+v", p)
	}

	byID, err := db.GetPlayerByID(id)
	if err != nil || byID == nil || byID.Username != "ana" {
		t.Errorf("GetPlayerByID = %+v, %v", byID, err)
	}

	missing, err := db.GetPlayerByUsername("bo")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Error("absent username returned a row")
	}
}

func TestUsernameExists(t *testing.T) {
	db := openTestDB(t)
	db.CreatePlayer("ana", "", "hash")

	if ok, _ := db.UsernameExists("ana"); !ok {
		t.Error("existing username not found")
	}
	if ok, _ := db.UsernameExists("bo"); ok {
		t.Error("absent username reported as taken")
	}
}

func TestGuestPlayersExcludedFromLeaderboard(t *testing.T) {
	db := openTestDB(t)

	regular, _ := db.CreatePlayer("ana", "", "hash")
	guest, err := db.CreateGuest("Guest_abc")
	if err != nil {
		t.Fatal(err)
	}

	if err := db.UpdateStatsAfterGame(regular, 5, 2, 3, 60); err != nil {
		t.Fatal(err)
	}
	if err := db.UpdateStatsAfterGame(guest, 50, 20, 30, 600); err != nil {
		t.Fatal(err)
	}

	board, err := db.GetLeaderboard("waves", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(board) != 1 {
		t.Fatalf("leaderboard has %d rows, want the registered player only", len(board))
	}
	if board[0].Username != "ana" || board[0].Rank != 1 {
		t.Errorf("leaderboard row = %+v", board[0])
	}
}

func TestLeaderboardUnknownOrderFallsBack(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.CreatePlayer("ana", "", "hash")
	db.UpdateStatsAfterGame(id, 1, 1, 2, 10)

	// Arbitrary column names never reach the query; the default order
	// applies instead.
	board, err := db.GetLeaderboard("password", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(board) != 1 {
		t.Errorf("leaderboard rows = %d, want 1", len(board))
	}
}

func TestStatsAccumulate(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.CreatePlayer("ana", "", "hash")

	zero, err := db.GetStats(id)
	if err != nil {
		t.Fatal(err)
	}
	if zero.Games != 0 || zero.BestWave != 0 {
		t.Fatalf("fresh stats = %+v", zero)
	}

	db.UpdateStatsAfterGame(id, 4, 1, 7, 100)
	db.UpdateStatsAfterGame(id, 6, 2, 5, 50)

	s, err := db.GetStats(id)
	if err != nil {
		t.Fatal(err)
	}
	if s.Games != 2 {
		t.Errorf("games = %d, want 2", s.Games)
	}
	if s.EnemiesKilled != 10 || s.BuildingsBuilt != 3 {
		t.Errorf("totals = %d kills / %d builds", s.EnemiesKilled, s.BuildingsBuilt)
	}
	if s.BestWave != 7 {
		t.Errorf("best wave = %d, lower run overwrote the record", s.BestWave)
	}
	if s.Playtime != 150 {
		t.Errorf("playtime = %v, want 150", s.Playtime)
	}
}

func TestRecordGameAndParticipants(t *testing.T) {
	db := openTestDB(t)
	pid, _ := db.CreatePlayer("ana", "", "hash")

	gameID, err := db.RecordGame("lobby-1", "town_hall_destroyed", 6, 240, 2)
	if err != nil {
		t.Fatal(err)
	}
	if gameID == 0 {
		t.Fatal("no game row id")
	}
	if err := db.RecordGamePlayer(gameID, pid, 12, 4); err != nil {
		t.Fatal(err)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	db := openTestDB(t)

	if got := db.GetSetting("theme"); got != "" {
		t.Fatalf("absent setting = %q", got)
	}
	if err := db.SetSetting("theme", "dark"); err != nil {
		t.Fatal(err)
	}
	if got := db.GetSetting("theme"); got != "dark" {
		t.Errorf("setting = %q, want dark", got)
	}
	// Upsert replaces.
	db.SetSetting("theme", "light")
	if got := db.GetSetting("theme"); got != "light" {
		t.Errorf("updated setting = %q, want light", got)
	}
}

func TestUnlockAchievementOnce(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.CreatePlayer("ana", "", "hash")

	first, err := db.UnlockAchievement(id, "first_blood")
	if err != nil {
		t.Fatal(err)
	}
	if !first {
		t.Fatal("fresh unlock reported as already held")
	}
	again, err := db.UnlockAchievement(id, "first_blood")
	if err != nil {
		t.Fatal(err)
	}
	if again {
		t.Error("repeat unlock reported as new")
	}

	got, err := db.GetAchievements(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "first_blood" {
		t.Errorf("achievements = %v", got)
	}
}

func TestCheckAchievementsAfterGame(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.CreatePlayer("ana", "", "hash")
	db.UpdateStatsAfterGame(id, 3, 1, 6, 90)

	newOnes := CheckAchievements(db, id, 6)
	ids := map[string]bool{}
	for _, a := range newOnes {
		ids[a.ID] = true
	}
	for _, want := range []string{"first_blood", "first_wall", "wave_5"} {
		if !ids[want] {
			t.Errorf("achievement %s not unlocked", want)
		}
	}
	if ids["slayer"] {
		t.Error("slayer unlocked with only 3 kills")
	}

	// Second pass unlocks nothing new.
	if again := CheckAchievements(db, id, 6); len(again) != 0 {
		t.Errorf("repeat check unlocked %d achievements", len(again))
	}
}

func TestCheckAchievementsNilDB(t *testing.T) {
	if got := CheckAchievements(nil, 1, 5); got != nil {
		t.Errorf("nil db returned %v", got)
	}
}
