package dto

import "github.com/bitgalaxy-labs/galaxy_api/shared"

type PlayerProgressResponse struct {
	UserID        string          `json:"user_id"`
	OrgID         string          `json:"org_id"`
	TotalXP       int             `json:"total_xp"`
	Rank          string          `json:"rank"`
	Level         int             `json:"level"`
	WeeklyXP      int             `json:"weekly_xp"`
	WeeklyWeekKey string          `json:"weekly_week_key"`
	Streak        int             `json:"streak"`
	Progress      shared.RankInfo `json:"progress"`
	QuestsDone    int             `json:"quests_done"`
}
