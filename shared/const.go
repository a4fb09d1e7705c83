package shared

const (
	UserID = "user_id"

	EventTypeXP            = "xp"
	EventTypeQuestComplete = "quest_complete"
	EventTypeCheckin       = "checkin"
	EventTypeRewardRedeem  = "reward_redeem"
	EventTypeReferral      = "referral"

	SourceCheckin  = "checkin"
	SourceQuest    = "quest"
	SourceReferral = "referral"

	ScopeAllTime = "allTime"
	ScopeWeekly  = "weekly"

	LeaderboardDefaultLimit = 50
	LeaderboardMaxLimit     = 100
)
