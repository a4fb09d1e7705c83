package shared

import "testing"

func TestRankProgress(t *testing.T) {
	tests := []struct {
		xp       int
		wantRank string
		wantNext *int
	}{
		{0, "Stardust", intPtr(100)},
		{99, "Stardust", intPtr(100)},
		{100, "Asteroid", intPtr(300)},
		{299, "Asteroid", intPtr(300)},
		{300, "Comet", intPtr(700)},
		{1500, "Planet", intPtr(3000)},
		{24999, "Supernova", intPtr(25000)},
		{25000, "Galaxy", nil},
		{1_000_000, "Galaxy", nil},
	}

	for _, tt := range tests {
		got := RankProgress(tt.xp)
		if got.Rank != tt.wantRank {
			t.Errorf("RankProgress(%d).Rank = %q, want %q", tt.xp, got.Rank, tt.wantRank)
		}
		if (got.NextThreshold == nil) != (tt.wantNext == nil) {
			t.Errorf("RankProgress(%d).NextThreshold = %v, want %v", tt.xp, got.NextThreshold, tt.wantNext)
		} else if got.NextThreshold != nil && *got.NextThreshold != *tt.wantNext {
			t.Errorf("RankProgress(%d).NextThreshold = %d, want %d", tt.xp, *got.NextThreshold, *tt.wantNext)
		}
	}
}

func TestRankProgressMonotonic(t *testing.T) {
	prevTier := -1
	for xp := 0; xp <= 30000; xp += 7 {
		info := RankProgress(xp)
		tier := tierIndex(info.Rank)
		if tier < prevTier {
			t.Fatalf("rank regressed at xp=%d: %s", xp, info.Rank)
		}
		prevTier = tier

		if info.ProgressToNext < 0 || info.ProgressToNext > 1 {
			t.Fatalf("progress out of range at xp=%d: %f", xp, info.ProgressToNext)
		}
		if info.Level < 1 {
			t.Fatalf("level below 1 at xp=%d", xp)
		}
	}
}

func TestRankProgressTopTier(t *testing.T) {
	info := RankProgress(25000)
	if info.NextThreshold != nil {
		t.Errorf("expected nil next threshold at top tier, got %d", *info.NextThreshold)
	}
	if info.ProgressToNext != 1 {
		t.Errorf("expected progress 1 at top tier, got %f", info.ProgressToNext)
	}
}

func TestRankProgressNegativeClamped(t *testing.T) {
	if got := RankProgress(-5); got.Rank != LowestRank() {
		t.Errorf("RankProgress(-5).Rank = %q, want lowest tier", got.Rank)
	}
}

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{99, 1},
		{100, 2}, // 100
		{249, 2},
		{250, 3}, // 100 + 150
		{474, 3},
		{475, 4}, // 100 + 150 + 225
	}

	for _, tt := range tests {
		if got := LevelForXP(tt.xp); got != tt.want {
			t.Errorf("LevelForXP(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func intPtr(v int) *int {
	return &v
}

func tierIndex(name string) int {
	for i, tier := range rankTiers {
		if tier.Name == name {
			return i
		}
	}
	return -1
}
