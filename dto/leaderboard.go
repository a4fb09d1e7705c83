package dto

// LeaderboardEntry projects a progression record down to its ranking
// fields. Position is 1-based within the returned page.
type LeaderboardEntry struct {
	Position      int    `json:"position"`
	UserID        string `json:"user_id"`
	OrgID         string `json:"org_id"`
	Rank          string `json:"rank"`
	TotalXP       int    `json:"total_xp"`
	Level         int    `json:"level"`
	WeeklyXP      int    `json:"weekly_xp"`
	WeeklyWeekKey string `json:"weekly_week_key"`
}

type LeaderboardResponse struct {
	OrgID       string             `json:"org_id"`
	Limit       int                `json:"limit"`
	Scope       string             `json:"scope"`
	WeekKey     string             `json:"week_key,omitempty"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}
