package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bitgalaxy-labs/galaxy_api/model"
	"github.com/bitgalaxy-labs/galaxy_api/shared"
	"github.com/google/uuid"
)

func newTestLeaderboard(t *testing.T, now time.Time) *LeaderboardService {
	t.Helper()

	svc := &LeaderboardService{
		sqlSvc:   newTestSqlService(t),
		cacheTTL: time.Second,
	}
	svc.now = func() time.Time { return now }
	return svc
}

func seedPlayer(t *testing.T, svc *LeaderboardService, orgID, userID string, totalXP, weeklyXP int, weekKey string) {
	t.Helper()

	id, _ := uuid.NewV7()
	info := shared.RankProgress(totalXP)
	err := svc.sqlSvc.CreatePlayerProgress(&model.PlayerProgress{
		ID:              id.String(),
		OrgID:           orgID,
		UserID:          userID,
		TotalXP:         totalXP,
		Rank:            info.Rank,
		Level:           info.Level,
		WeeklyXP:        weeklyXP,
		WeeklyWeekKey:   weekKey,
		CompletedQuests: json.RawMessage("[]"),
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	})
	if err != nil {
		t.Fatalf("failed to seed player %s: %v", userID, err)
	}
}

func TestGetOrgLeaderboardAllTime(t *testing.T) {
	now := time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)
	svc := newTestLeaderboard(t, now)
	weekKey := shared.WeekKey(now)

	for i := 0; i < 10; i++ {
		seedPlayer(t, svc, "org1", fmt.Sprintf("user%d", i), (i+1)*100, 10, weekKey)
	}
	seedPlayer(t, svc, "org2", "outsider", 99999, 10, weekKey)

	resp, err := svc.GetOrgLeaderboard("org1", 5, shared.ScopeAllTime)
	if err != nil {
		t.Fatalf("GetOrgLeaderboard failed: %v", err)
	}

	if len(resp.Leaderboard) != 5 {
		t.Fatalf("entries = %d, want 5", len(resp.Leaderboard))
	}
	for i, entry := range resp.Leaderboard {
		if entry.OrgID != "org1" {
			t.Errorf("entry %d leaked from org %s", i, entry.OrgID)
		}
		if entry.Position != i+1 {
			t.Errorf("entry %d position = %d", i, entry.Position)
		}
		if i > 0 && entry.TotalXP > resp.Leaderboard[i-1].TotalXP {
			t.Errorf("entries not sorted by total XP desc at %d", i)
		}
	}
	if resp.Leaderboard[0].TotalXP != 1000 {
		t.Errorf("top entry TotalXP = %d, want 1000", resp.Leaderboard[0].TotalXP)
	}
}

func TestGetOrgLeaderboardWeeklyFiltersStaleWeeks(t *testing.T) {
	now := time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)
	svc := newTestLeaderboard(t, now)
	currentWeek := shared.WeekKey(now)
	staleWeek := shared.WeekKey(now.AddDate(0, 0, -7))

	// Stale rows carry higher raw weekly XP than the live ones.
	seedPlayer(t, svc, "org1", "stale1", 5000, 900, staleWeek)
	seedPlayer(t, svc, "org1", "stale2", 4000, 800, staleWeek)
	seedPlayer(t, svc, "org1", "live1", 300, 50, currentWeek)
	seedPlayer(t, svc, "org1", "live2", 200, 30, currentWeek)

	resp, err := svc.GetOrgLeaderboard("org1", 10, shared.ScopeWeekly)
	if err != nil {
		t.Fatalf("GetOrgLeaderboard failed: %v", err)
	}

	if len(resp.Leaderboard) != 2 {
		t.Fatalf("entries = %d, want only the 2 current-week players", len(resp.Leaderboard))
	}
	for _, entry := range resp.Leaderboard {
		if entry.WeeklyWeekKey != currentWeek {
			t.Errorf("stale entry returned: %s (%s)", entry.UserID, entry.WeeklyWeekKey)
		}
	}
	if resp.Leaderboard[0].UserID != "live1" || resp.Leaderboard[1].UserID != "live2" {
		t.Errorf("unexpected weekly order: %s, %s", resp.Leaderboard[0].UserID, resp.Leaderboard[1].UserID)
	}
	if resp.WeekKey != currentWeek {
		t.Errorf("WeekKey = %q, want %q", resp.WeekKey, currentWeek)
	}
}

func TestGetOrgLeaderboardLimitNormalization(t *testing.T) {
	now := time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)
	svc := newTestLeaderboard(t, now)
	seedPlayer(t, svc, "org1", "user1", 100, 10, shared.WeekKey(now))

	tests := []struct {
		limit int
		want  int
	}{
		{0, 50},
		{-5, 50},
		{500, 100},
		{25, 25},
	}

	for _, tt := range tests {
		resp, err := svc.GetOrgLeaderboard("org1", tt.limit, shared.ScopeAllTime)
		if err != nil {
			t.Fatalf("GetOrgLeaderboard(limit=%d) failed: %v", tt.limit, err)
		}
		if resp.Limit != tt.want {
			t.Errorf("limit %d normalized to %d, want %d", tt.limit, resp.Limit, tt.want)
		}
	}
}

func TestGetOrgLeaderboardScopeFallback(t *testing.T) {
	now := time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)
	svc := newTestLeaderboard(t, now)
	seedPlayer(t, svc, "org1", "user1", 100, 10, shared.WeekKey(now))

	resp, err := svc.GetOrgLeaderboard("org1", 10, "bogus")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Scope != shared.ScopeAllTime {
		t.Errorf("scope = %q, want fallback to allTime", resp.Scope)
	}
}

func TestGetOrgLeaderboardEmptyOrg(t *testing.T) {
	now := time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)
	svc := newTestLeaderboard(t, now)

	resp, err := svc.GetOrgLeaderboard("ghost-org", 10, shared.ScopeAllTime)
	if err != nil {
		t.Fatalf("expected no error for empty org, got %v", err)
	}
	if len(resp.Leaderboard) != 0 {
		t.Errorf("entries = %d, want 0", len(resp.Leaderboard))
	}
}

func TestLeaderboardCacheKeyScopedToWeek(t *testing.T) {
	now := time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)
	svc := newTestLeaderboard(t, now)

	weekly := svc.cacheKey("org1", shared.ScopeWeekly, 50)
	if !strings.Contains(weekly, shared.WeekKey(now)) {
		t.Errorf("weekly cache key %q missing week key %q", weekly, shared.WeekKey(now))
	}

	allTime := svc.cacheKey("org1", shared.ScopeAllTime, 50)
	if strings.Contains(allTime, shared.WeekKey(now)) {
		t.Errorf("all-time cache key %q should not carry a week key", allTime)
	}

	// A page cached before the rollover must not be addressable afterwards.
	svc.now = func() time.Time { return now.AddDate(0, 0, 7) }
	if next := svc.cacheKey("org1", shared.ScopeWeekly, 50); next == weekly {
		t.Errorf("weekly cache key unchanged across week boundary: %q", next)
	}
}

func TestGetOrgLeaderboardRequiresOrg(t *testing.T) {
	svc := newTestLeaderboard(t, time.Now())

	if _, err := svc.GetOrgLeaderboard("", 10, shared.ScopeAllTime); err == nil {
		t.Error("expected error for missing org_id")
	}
}
