package model

// UserStatsID is the fixed identifier of the single stats record.
const UserStatsID = "user-stats"

// UserStats accumulates gamification state. Streak counts consecutive
// calendar days with at least one qualifying completion.
type UserStats struct {
	ID     string `json:"id"`
	Points int    `json:"points"`
	Streak int    `json:"streak"`
	// LastCompletionDay is a YYYY-MM-DD calendar day, empty when no
	// completion has been recorded.
	LastCompletionDay string `json:"lastCompletionDay,omitempty"`
}

// NewUserStats returns the zero stats record.
func NewUserStats() UserStats {
	return UserStats{ID: UserStatsID}
}
