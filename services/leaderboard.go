package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/bitgalaxy-labs/galaxy_api/dto"
	"github.com/bitgalaxy-labs/galaxy_api/model"
	"github.com/bitgalaxy-labs/galaxy_api/shared"
	log "github.com/sirupsen/logrus"
)

// LeaderboardService serves ranked views of an organization's players in
// two scopes. Pages are cached in redis for a short TTL and invalidated on
// XP writes for the organization.
type LeaderboardService struct {
	appContext.DefaultService

	sqlSvc   *SqlService
	redisSvc *RedisService

	cacheTTL time.Duration

	now func() time.Time
}

const LEADERBOARD_SVC = "leaderboard_svc"

func (svc LeaderboardService) Id() string {
	return LEADERBOARD_SVC
}

func (svc *LeaderboardService) Configure(ctx *appContext.Context) error {
	svc.cacheTTL = 30 * time.Second
	if ttl := os.Getenv("LEADERBOARD_CACHE_TTL_SECONDS"); ttl != "" {
		if n, err := strconv.Atoi(ttl); err == nil && n > 0 {
			svc.cacheTTL = time.Duration(n) * time.Second
		}
	}
	svc.now = time.Now

	return svc.DefaultService.Configure(ctx)
}

func (svc *LeaderboardService) Start() error {
	svc.sqlSvc = svc.Service(SQL_SVC).(*SqlService)
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	return nil
}

// GetOrgLeaderboard returns up to limit entries for the organization.
// Limit is defaulted to 50 and clamped to 100; any scope other than
// "weekly" is treated as all-time. An organization with no players yields
// an empty list, never an error.
func (svc *LeaderboardService) GetOrgLeaderboard(orgID string, limit int, scope string) (*dto.LeaderboardResponse, error) {
	if orgID == "" {
		return nil, shared.NewBadRequestError(nil, "org_id is required")
	}

	if limit <= 0 {
		limit = shared.LeaderboardDefaultLimit
	}
	if limit > shared.LeaderboardMaxLimit {
		limit = shared.LeaderboardMaxLimit
	}
	if scope != shared.ScopeWeekly {
		scope = shared.ScopeAllTime
	}

	cacheKey := svc.cacheKey(orgID, scope, limit)
	if cached := svc.fromCache(cacheKey); cached != nil {
		recordLeaderboardQuery(scope, true)
		return cached, nil
	}
	recordLeaderboardQuery(scope, false)

	var (
		resp *dto.LeaderboardResponse
		err  error
	)
	if scope == shared.ScopeWeekly {
		resp, err = svc.weeklyLeaderboard(orgID, limit)
	} else {
		resp, err = svc.allTimeLeaderboard(orgID, limit)
	}
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	svc.toCache(cacheKey, resp)
	return resp, nil
}

func (svc *LeaderboardService) allTimeLeaderboard(orgID string, limit int) (*dto.LeaderboardResponse, error) {
	players, err := svc.sqlSvc.GetAllTimeLeaderboard(orgID, limit)
	if err != nil {
		return nil, err
	}

	return &dto.LeaderboardResponse{
		OrgID:       orgID,
		Limit:       limit,
		Scope:       shared.ScopeAllTime,
		Leaderboard: buildEntries(players),
	}, nil
}

// weeklyLeaderboard over-fetches by weekly_xp and filters to the current
// week key client-side, since the store has no index over (org, week).
// When more than limit stale rows outrank live ones inside the fetched
// window this can under-return; accepted approximation.
func (svc *LeaderboardService) weeklyLeaderboard(orgID string, limit int) (*dto.LeaderboardResponse, error) {
	fetch := 4 * limit
	if fetch < 200 {
		fetch = 200
	}

	candidates, err := svc.sqlSvc.GetWeeklyLeaderboardCandidates(orgID, fetch)
	if err != nil {
		return nil, err
	}

	weekKey := shared.WeekKey(svc.now())
	current := make([]model.PlayerProgress, 0, limit)
	for _, player := range candidates {
		if player.WeeklyWeekKey != weekKey {
			continue
		}
		current = append(current, player)
		if len(current) == limit {
			break
		}
	}

	return &dto.LeaderboardResponse{
		OrgID:       orgID,
		Limit:       limit,
		Scope:       shared.ScopeWeekly,
		WeekKey:     weekKey,
		Leaderboard: buildEntries(current),
	}, nil
}

func buildEntries(players []model.PlayerProgress) []dto.LeaderboardEntry {
	entries := make([]dto.LeaderboardEntry, len(players))
	for i, player := range players {
		entries[i] = dto.LeaderboardEntry{
			Position:      i + 1,
			UserID:        player.UserID,
			OrgID:         player.OrgID,
			Rank:          player.Rank,
			TotalXP:       player.TotalXP,
			Level:         player.Level,
			WeeklyXP:      player.WeeklyXP,
			WeeklyWeekKey: player.WeeklyWeekKey,
		}
	}
	return entries
}

// ==================== CACHE ====================

// cacheKey scopes weekly pages to their ISO week so a page cached just
// before the week boundary cannot be served after the rollover.
func (svc *LeaderboardService) cacheKey(orgID, scope string, limit int) string {
	key := fmt.Sprintf("%s%s:%d", leaderboardCachePrefix(orgID), scope, limit)
	if scope == shared.ScopeWeekly {
		key += ":" + shared.WeekKey(svc.now())
	}
	return key
}

func leaderboardCachePrefix(orgID string) string {
	return "leaderboard:" + orgID + ":"
}

func leaderboardCacheContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 2*time.Second)
}

func (svc *LeaderboardService) fromCache(key string) *dto.LeaderboardResponse {
	if svc.redisSvc == nil {
		return nil
	}

	ctx, cancel := leaderboardCacheContext()
	defer cancel()

	raw, err := svc.redisSvc.Get(ctx, key)
	if err != nil || raw == "" {
		return nil
	}

	var resp dto.LeaderboardResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil
	}
	return &resp
}

func (svc *LeaderboardService) toCache(key string, resp *dto.LeaderboardResponse) {
	if svc.redisSvc == nil {
		return
	}

	ctx, cancel := leaderboardCacheContext()
	defer cancel()

	if err := svc.redisSvc.Set(ctx, key, resp, svc.cacheTTL); err != nil {
		log.WithError(err).Debug("Leaderboard cache write failed")
	}
}
