package history

import "sort"

// Stats aggregates a player's retained history.
type Stats struct {
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	TotalDuels int     `json:"total_duels"`
	WinRate    float64 `json:"win_rate"` // percentage
	BestStreak int     `json:"best_streak"`
}

// Compute walks the records oldest-first so the streak reflects chronology
// even when the stored order drifted.
func Compute(player_id string, records []Record) Stats {
	ordered := make([]Record, len(records))
	copy(ordered, records)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	var stats Stats
	streak := 0
	for _, record := range ordered {
		if record.WinnerID == player_id {
			stats.Wins++
			streak++
			if streak > stats.BestStreak {
				stats.BestStreak = streak
			}
		} else {
			stats.Losses++
			streak = 0
		}
	}

	stats.TotalDuels = stats.Wins + stats.Losses
	if stats.TotalDuels > 0 {
		stats.WinRate = float64(stats.Wins) / float64(stats.TotalDuels) * 100
	}
	return stats
}
