package dto

import (
	"time"

	"github.com/bitgalaxy-labs/galaxy_api/shared"
)

type CheckinRequest struct {
	OrgID string `json:"org_id" validate:"required"`
	Code  string `json:"code"`
}

// PlayerSnapshot is the fully-typed view of a progression record returned
// after every XP mutation.
type PlayerSnapshot struct {
	UserID        string          `json:"user_id"`
	OrgID         string          `json:"org_id"`
	TotalXP       int             `json:"total_xp"`
	Rank          string          `json:"rank"`
	Level         int             `json:"level"`
	WeeklyXP      int             `json:"weekly_xp"`
	WeeklyWeekKey string          `json:"weekly_week_key"`
	Streak        int             `json:"streak"`
	Progress      shared.RankInfo `json:"progress"`
}

// CheckinResult distinguishes the already-checked-in outcome from a
// successful award; it is a normal result, not an error.
type CheckinResult struct {
	Success          bool           `json:"success"`
	AlreadyCheckedIn bool           `json:"already_checked_in"`
	XPAwarded        int            `json:"xp_awarded"`
	Streak           int            `json:"streak"`
	Player           PlayerSnapshot `json:"player"`
}

type QuestCompleteRequest struct {
	OrgID    string `json:"org_id" validate:"required"`
	XPReward int    `json:"xp_reward" validate:"omitempty,gt=0,lte=10000"`
}

type QuestCompleteResult struct {
	Success          bool           `json:"success"`
	AlreadyCompleted bool           `json:"already_completed"`
	QuestID          string         `json:"quest_id"`
	XPAwarded        int            `json:"xp_awarded"`
	Player           PlayerSnapshot `json:"player"`
}

type ReferralRequest struct {
	OrgID string `json:"org_id" validate:"required"`
}

type HistoryEntryResponse struct {
	ID        string    `json:"id"`
	EventType string    `json:"event_type"`
	XPChange  int       `json:"xp_change"`
	QuestID   *string   `json:"quest_id,omitempty"`
	RewardID  *string   `json:"reward_id,omitempty"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

type HistoryResponse struct {
	OrgID   string                 `json:"org_id"`
	UserID  string                 `json:"user_id"`
	Entries []HistoryEntryResponse `json:"entries"`
}
