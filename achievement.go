package main

// Achievement definitions
type AchievementDef struct {
	ID          string
	Name        string
	Description string
}

var Achievements = []AchievementDef{
	{"first_blood", "First Blood", "Slay your first enemy"},
	{"slayer", "Slayer", "Slay 100 enemies in total"},
	{"exterminator", "Exterminator", "Slay 1000 enemies in total"},
	{"first_wall", "Mason", "Put up your first building"},
	{"architect", "Architect", "Put up 50 buildings in total"},
	{"wave_5", "Holding the Line", "Survive to wave 5"},
	{"wave_10", "Unbroken", "Survive to wave 10"},
	{"wave_20", "Legend of the Stronghold", "Survive to wave 20"},
	{"veteran", "Veteran", "Finish 10 games"},
	{"marathon", "Marathon", "Play for 1 hour total"},
}

// CheckAchievements checks if any new achievements should be unlocked for a
// player after a finished game. wave is the highest wave that run reached.
// Returns the newly unlocked achievements.
func CheckAchievements(db *DB, playerID int64, wave int) []AchievementDef {
	if db == nil || playerID == 0 {
		return nil
	}

	stats, err := db.GetStats(playerID)
	if err != nil || stats == nil {
		return nil
	}

	existing, err := db.GetAchievements(playerID)
	if err != nil {
		return nil
	}
	has := make(map[string]bool, len(existing))
	for _, a := range existing {
		has[a] = true
	}

	var unlocked []AchievementDef

	check := func(id string) bool {
		if has[id] {
			return false
		}
		switch id {
		case "first_blood":
			return stats.EnemiesKilled >= 1
		case "slayer":
			return stats.EnemiesKilled >= 100
		case "exterminator":
			return stats.EnemiesKilled >= 1000
		case "first_wall":
			return stats.BuildingsBuilt >= 1
		case "architect":
			return stats.BuildingsBuilt >= 50
		case "wave_5":
			return wave >= 5
		case "wave_10":
			return wave >= 10
		case "wave_20":
			return wave >= 20
		case "veteran":
			return stats.Games >= 10
		case "marathon":
			return stats.Playtime >= 3600
		}
		return false
	}

	for _, def := range Achievements {
		if check(def.ID) {
			if newlyUnlocked, err := db.UnlockAchievement(playerID, def.ID); err == nil && newlyUnlocked {
				unlocked = append(unlocked, def)
			}
		}
	}

	return unlocked
}
