// Package streak tracks consecutive scenario wins and maps them to reward tiers.
package streak

// Record is the persisted win streak.
type Record struct {
	CurrentStreak int `json:"currentStreak"`
	BestStreak    int `json:"bestStreak"`
}

// RecordOutcome returns the record after one scenario outcome.
func RecordOutcome(rec Record, won bool) Record {
	if rec.CurrentStreak < 0 {
		rec.CurrentStreak = 0
	}
	if !won {
		rec.CurrentStreak = 0
		return rec
	}
	rec.CurrentStreak++
	if rec.CurrentStreak > rec.BestStreak {
		rec.BestStreak = rec.CurrentStreak
	}
	return rec
}
