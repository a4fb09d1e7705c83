package services

import (
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"sync"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/bitgalaxy-labs/galaxy_api/dto"
	"github.com/bitgalaxy-labs/galaxy_api/model"
	"github.com/bitgalaxy-labs/galaxy_api/shared"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ProgressionService turns player actions into durable XP changes. Every
// mutation goes through the same delta path: apply the award to total XP,
// recompute rank and level, roll the weekly counter on a week-key change,
// persist the record as one write, then append history and emit the
// integration event.
type ProgressionService struct {
	appContext.DefaultService

	sqlSvc   *SqlService
	redisSvc *RedisService
	hookSvc  *HookService

	baseXP         int
	streakBonusXP  int
	streakBonusCap int
	referralXP     int
	questXP        int

	// now is swappable so eligibility and week-boundary logic can be
	// exercised at fixed instants.
	now func() time.Time

	locks sync.Map // "{orgID}/{userID}" -> *sync.Mutex
}

const PROGRESSION_SVC = "progression_svc"

func (svc ProgressionService) Id() string {
	return PROGRESSION_SVC
}

func (svc *ProgressionService) Configure(ctx *appContext.Context) error {
	svc.baseXP = envInt("CHECKIN_BASE_XP", 10)
	svc.streakBonusXP = envInt("CHECKIN_STREAK_BONUS_XP", 2)
	svc.streakBonusCap = envInt("CHECKIN_STREAK_BONUS_CAP", 20)
	svc.referralXP = envInt("REFERRAL_BONUS_XP", 25)
	svc.questXP = envInt("QUEST_BASE_XP", 25)
	svc.now = time.Now

	return svc.DefaultService.Configure(ctx)
}

func (svc *ProgressionService) Start() error {
	svc.sqlSvc = svc.Service(SQL_SVC).(*SqlService)
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	svc.hookSvc = svc.Service(HOOK_SVC).(*HookService)
	return nil
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}

// lockPlayer serializes read-modify-write cycles for one (org, user) pair
// within this process. The guarded UPDATE covers concurrent processes.
func (svc *ProgressionService) lockPlayer(orgID, userID string) func() {
	v, _ := svc.locks.LoadOrStore(orgID+"/"+userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// ==================== CHECK-IN ====================

// ProcessCheckin awards the daily check-in. At most one check-in succeeds
// per player per UTC day; a repeat attempt returns an AlreadyCheckedIn
// result without touching state.
func (svc *ProgressionService) ProcessCheckin(orgID, userID, code string) (*dto.CheckinResult, error) {
	if orgID == "" || userID == "" {
		return nil, shared.NewBadRequestError(nil, "org_id and user_id are required")
	}

	unlock := svc.lockPlayer(orgID, userID)
	defer unlock()

	now := svc.now().UTC()

	player, created, err := svc.loadOrCreateDraft(orgID, userID, now)
	if err != nil {
		return nil, err
	}

	if player.LastCheckinAt != nil && shared.SameUTCDay(*player.LastCheckinAt, now) {
		recordCheckin("already_checked_in")
		return &dto.CheckinResult{
			AlreadyCheckedIn: true,
			Streak:           player.Streak,
			Player:           playerSnapshot(player),
		}, nil
	}

	prevCheckinAt := player.LastCheckinAt
	streak := svc.nextStreak(player, now)
	award := svc.checkinAward(streak)

	svc.applyDelta(player, award, now)
	player.Streak = streak
	player.LastCheckinAt = &now

	if created {
		if err := svc.sqlSvc.CreatePlayerProgress(player); err != nil {
			// Unique index on (org_id, user_id) rejects a racing first
			// check-in from another process.
			return nil, shared.NewInternalError(svc.sqlSvc.HandleError(err), "Failed to create player record")
		}
	} else {
		ok, err := svc.sqlSvc.UpdatePlayerCheckinGuarded(player, prevCheckinAt)
		if err != nil {
			return nil, shared.NewInternalError(svc.sqlSvc.HandleError(err), "Failed to persist check-in")
		}
		if !ok {
			// Lost the conditional write: a concurrent check-in already
			// landed today.
			recordCheckin("already_checked_in")
			fresh, ferr := svc.sqlSvc.GetPlayerProgress(orgID, userID)
			if ferr != nil {
				return nil, shared.NewInternalError(ferr, "Failed to reload player record")
			}
			return &dto.CheckinResult{
				AlreadyCheckedIn: true,
				Streak:           fresh.Streak,
				Player:           playerSnapshot(fresh),
			}, nil
		}
	}

	meta, _ := json.Marshal(map[string]string{"code": code})
	if err := svc.appendHistory(player, shared.EventTypeCheckin, award, shared.SourceCheckin, nil, meta, now); err != nil {
		return nil, shared.NewInternalError(err, "Failed to record check-in history")
	}

	svc.afterXPWrite(player, shared.EventTypeCheckin, award, now)
	recordCheckin("success")

	log.WithFields(log.Fields{
		"org_id":  orgID,
		"user_id": userID,
		"award":   award,
		"streak":  streak,
	}).Info("Check-in processed")

	return &dto.CheckinResult{
		Success:   true,
		XPAwarded: award,
		Streak:    streak,
		Player:    playerSnapshot(player),
	}, nil
}

func (svc *ProgressionService) checkinAward(streak int) int {
	bonus := (streak - 1) * svc.streakBonusXP
	if bonus > svc.streakBonusCap {
		bonus = svc.streakBonusCap
	}
	if bonus < 0 {
		bonus = 0
	}
	return svc.baseXP + bonus
}

func (svc *ProgressionService) nextStreak(player *model.PlayerProgress, now time.Time) int {
	if player.LastCheckinAt == nil {
		return 1
	}

	last := player.LastCheckinAt.UTC()
	lastDay := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch int(today.Sub(lastDay).Hours() / 24) {
	case 0:
		return player.Streak
	case 1:
		return player.Streak + 1
	default:
		return 1
	}
}

// ==================== QUESTS ====================

// CompleteQuest grants the quest reward once per quest per player. The
// completed-quest list rides on the record itself so the award and the
// idempotency marker land in the same write.
func (svc *ProgressionService) CompleteQuest(orgID, userID, questID string, xpReward int) (*dto.QuestCompleteResult, error) {
	if orgID == "" || userID == "" || questID == "" {
		return nil, shared.NewBadRequestError(nil, "org_id, user_id and quest_id are required")
	}
	if xpReward <= 0 {
		xpReward = svc.questXP
	}

	unlock := svc.lockPlayer(orgID, userID)
	defer unlock()

	now := svc.now().UTC()

	player, created, err := svc.loadOrCreateDraft(orgID, userID, now)
	if err != nil {
		return nil, err
	}

	var completed []string
	if len(player.CompletedQuests) > 0 {
		if err := json.Unmarshal(player.CompletedQuests, &completed); err != nil {
			return nil, shared.NewInternalError(err, "Corrupt completed quest list")
		}
	}

	for _, id := range completed {
		if id == questID {
			return &dto.QuestCompleteResult{
				AlreadyCompleted: true,
				QuestID:          questID,
				Player:           playerSnapshot(player),
			}, nil
		}
	}

	completed = append(completed, questID)
	completedJSON, err := json.Marshal(completed)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to encode completed quest list")
	}

	prevUpdatedAt := player.UpdatedAt
	player.CompletedQuests = completedJSON
	svc.applyDelta(player, xpReward, now)

	if err := svc.persistDelta(player, created, prevUpdatedAt); err != nil {
		return nil, err
	}

	if err := svc.appendHistory(player, shared.EventTypeQuestComplete, xpReward, shared.SourceQuest, &questID, nil, now); err != nil {
		return nil, shared.NewInternalError(err, "Failed to record quest history")
	}

	svc.afterXPWrite(player, shared.EventTypeQuestComplete, xpReward, now)

	return &dto.QuestCompleteResult{
		Success:   true,
		QuestID:   questID,
		XPAwarded: xpReward,
		Player:    playerSnapshot(player),
	}, nil
}

// ==================== GENERIC XP ====================

// GrantXP applies a positive XP delta outside the check-in and quest
// flows. Total XP is monotonic, so non-positive deltas are rejected.
func (svc *ProgressionService) GrantXP(orgID, userID string, delta int, eventType, source string) (*dto.PlayerSnapshot, error) {
	if orgID == "" || userID == "" {
		return nil, shared.NewBadRequestError(nil, "org_id and user_id are required")
	}
	if delta <= 0 {
		return nil, shared.NewBadRequestError(nil, "XP delta must be positive")
	}

	unlock := svc.lockPlayer(orgID, userID)
	defer unlock()

	now := svc.now().UTC()

	player, created, err := svc.loadOrCreateDraft(orgID, userID, now)
	if err != nil {
		return nil, err
	}

	prevUpdatedAt := player.UpdatedAt
	svc.applyDelta(player, delta, now)

	if err := svc.persistDelta(player, created, prevUpdatedAt); err != nil {
		return nil, err
	}

	if err := svc.appendHistory(player, eventType, delta, source, nil, nil, now); err != nil {
		return nil, shared.NewInternalError(err, "Failed to record XP history")
	}

	svc.afterXPWrite(player, eventType, delta, now)

	snapshot := playerSnapshot(player)
	return &snapshot, nil
}

func (svc *ProgressionService) AwardReferral(orgID, userID string) (*dto.PlayerSnapshot, error) {
	return svc.GrantXP(orgID, userID, svc.referralXP, shared.EventTypeReferral, shared.SourceReferral)
}

// ==================== READS ====================

func (svc *ProgressionService) GetPlayerProgress(orgID, userID string) (*dto.PlayerProgressResponse, error) {
	if orgID == "" || userID == "" {
		return nil, shared.NewBadRequestError(nil, "org_id and user_id are required")
	}

	player, err := svc.sqlSvc.GetPlayerProgress(orgID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(nil, "Player has no progression record yet")
		}
		return nil, svc.sqlSvc.HandleError(err)
	}

	var completed []string
	if len(player.CompletedQuests) > 0 {
		_ = json.Unmarshal(player.CompletedQuests, &completed)
	}

	snapshot := playerSnapshot(player)

	// A counter from a closed week reads as zero; the stored value only
	// survives until the next XP write resets it.
	if weekKey := shared.WeekKey(svc.now()); snapshot.WeeklyWeekKey != weekKey {
		snapshot.WeeklyXP = 0
		snapshot.WeeklyWeekKey = weekKey
	}

	return &dto.PlayerProgressResponse{
		UserID:        snapshot.UserID,
		OrgID:         snapshot.OrgID,
		TotalXP:       snapshot.TotalXP,
		Rank:          snapshot.Rank,
		Level:         snapshot.Level,
		WeeklyXP:      snapshot.WeeklyXP,
		WeeklyWeekKey: snapshot.WeeklyWeekKey,
		Streak:        snapshot.Streak,
		Progress:      snapshot.Progress,
		QuestsDone:    len(completed),
	}, nil
}

func (svc *ProgressionService) GetPlayerHistory(orgID, userID string, limit int) (*dto.HistoryResponse, error) {
	if orgID == "" || userID == "" {
		return nil, shared.NewBadRequestError(nil, "org_id and user_id are required")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	entries, err := svc.sqlSvc.GetPlayerHistory(orgID, userID, limit)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	out := make([]dto.HistoryEntryResponse, len(entries))
	for i, entry := range entries {
		out[i] = dto.HistoryEntryResponse{
			ID:        entry.ID,
			EventType: entry.EventType,
			XPChange:  entry.XPChange,
			QuestID:   entry.QuestID,
			RewardID:  entry.RewardID,
			Source:    entry.Source,
			Timestamp: entry.CreatedAt,
		}
	}

	return &dto.HistoryResponse{
		OrgID:   orgID,
		UserID:  userID,
		Entries: out,
	}, nil
}

// ==================== DELTA PATH ====================

// loadOrCreateDraft returns the stored record, or a defaulted in-memory
// draft when the player has none yet. The draft is only persisted when an
// XP delta actually lands.
func (svc *ProgressionService) loadOrCreateDraft(orgID, userID string, now time.Time) (*model.PlayerProgress, bool, error) {
	player, err := svc.sqlSvc.GetPlayerProgress(orgID, userID)
	if err == nil {
		return player, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, svc.sqlSvc.HandleError(err)
	}

	id, _ := uuid.NewV7()
	return &model.PlayerProgress{
		ID:              id.String(),
		OrgID:           orgID,
		UserID:          userID,
		TotalXP:         0,
		Rank:            shared.LowestRank(),
		Level:           1,
		WeeklyXP:        0,
		CompletedQuests: json.RawMessage("[]"),
		CreatedAt:       now,
		UpdatedAt:       now,
	}, true, nil
}

// applyDelta mutates the in-memory record: total, rank, level and the
// weekly counter, which resets whenever the week key rolls over.
func (svc *ProgressionService) applyDelta(player *model.PlayerProgress, delta int, now time.Time) {
	player.TotalXP += delta

	info := shared.RankProgress(player.TotalXP)
	player.Rank = info.Rank
	player.Level = info.Level

	weekKey := shared.WeekKey(now)
	if player.WeeklyWeekKey != weekKey {
		player.WeeklyXP = delta
		player.WeeklyWeekKey = weekKey
	} else {
		player.WeeklyXP += delta
	}

	player.UpdatedAt = now
}

func (svc *ProgressionService) persistDelta(player *model.PlayerProgress, created bool, prevUpdatedAt time.Time) error {
	if created {
		if err := svc.sqlSvc.CreatePlayerProgress(player); err != nil {
			return shared.NewInternalError(svc.sqlSvc.HandleError(err), "Failed to create player record")
		}
		return nil
	}

	ok, err := svc.sqlSvc.UpdatePlayerGuarded(player, prevUpdatedAt)
	if err != nil {
		return shared.NewInternalError(svc.sqlSvc.HandleError(err), "Failed to persist XP change")
	}
	if !ok {
		return shared.NewConflictError(nil, "Player record changed concurrently, retry")
	}
	return nil
}

func (svc *ProgressionService) appendHistory(player *model.PlayerProgress, eventType string, delta int, source string, questID *string, meta json.RawMessage, now time.Time) error {
	id, _ := uuid.NewV7()
	return svc.sqlSvc.CreateHistoryEntry(&model.XPHistory{
		ID:        id.String(),
		OrgID:     player.OrgID,
		UserID:    player.UserID,
		EventType: eventType,
		XPChange:  delta,
		QuestID:   questID,
		Source:    source,
		Metadata:  meta,
		CreatedAt: now,
	})
}

// afterXPWrite handles the non-transactional tail of a successful delta:
// metrics, leaderboard cache invalidation and the integration hook.
func (svc *ProgressionService) afterXPWrite(player *model.PlayerProgress, eventType string, delta int, now time.Time) {
	recordXPGranted(eventType, delta)

	if svc.redisSvc != nil {
		go func(orgID string) {
			ctx, cancel := leaderboardCacheContext()
			defer cancel()
			if err := svc.redisSvc.DeleteByPrefix(ctx, leaderboardCachePrefix(orgID)); err != nil {
				log.WithError(err).WithField("org_id", orgID).Debug("Leaderboard cache invalidation failed")
			}
		}(player.OrgID)
	}

	if svc.hookSvc != nil {
		svc.hookSvc.Publish(IntegrationEvent{
			OrgID:      player.OrgID,
			UserID:     player.UserID,
			EventType:  eventType,
			XPChange:   delta,
			OccurredAt: now,
		})
	}
}

func playerSnapshot(player *model.PlayerProgress) dto.PlayerSnapshot {
	return dto.PlayerSnapshot{
		UserID:        player.UserID,
		OrgID:         player.OrgID,
		TotalXP:       player.TotalXP,
		Rank:          player.Rank,
		Level:         player.Level,
		WeeklyXP:      player.WeeklyXP,
		WeeklyWeekKey: player.WeeklyWeekKey,
		Streak:        player.Streak,
		Progress:      shared.RankProgress(player.TotalXP),
	}
}
