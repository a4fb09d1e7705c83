package model

import (
	"encoding/json"
	"time"
)

// PlayerProgress is the per-(org, user) progression record. It is created
// lazily on the first XP-affecting action and only ever mutated through the
// XP delta path, which recomputes Rank/Level together with the XP write.
type PlayerProgress struct {
	ID     string `gorm:"primaryKey"`
	OrgID  string `gorm:"uniqueIndex:idx_player_org_user;not null"`
	UserID string `gorm:"uniqueIndex:idx_player_org_user;not null"`

	TotalXP int    `gorm:"not null;default:0"`
	Rank    string `gorm:"not null"`
	Level   int    `gorm:"not null;default:1"`

	// WeeklyXP is only meaningful while WeeklyWeekKey matches the current
	// ISO week key; readers seeing a stale key must treat it as zero.
	WeeklyXP      int    `gorm:"not null;default:0"`
	WeeklyWeekKey string `gorm:"index"`

	Streak          int
	LastCheckinAt   *time.Time
	CompletedQuests json.RawMessage `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// XPHistory is an append-only record of one XP-affecting event. Rows are
// never updated or deleted.
type XPHistory struct {
	ID        string `gorm:"primaryKey"`
	OrgID     string `gorm:"index:idx_history_org_user"`
	UserID    string `gorm:"index:idx_history_org_user"`
	EventType string `gorm:"not null"`
	XPChange  int
	QuestID   *string
	RewardID  *string
	Source    string
	Metadata  json.RawMessage `gorm:"type:text"`
	CreatedAt time.Time       `gorm:"index"`
}
