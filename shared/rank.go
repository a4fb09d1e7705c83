package shared

// RankInfo is the derived standing for a given XP total. NextThreshold is
// nil once the top tier is reached.
type RankInfo struct {
	Rank           string  `json:"rank"`
	Level          int     `json:"level"`
	TierThreshold  int     `json:"tier_threshold"`
	NextThreshold  *int    `json:"next_threshold"`
	ProgressToNext float64 `json:"progress_to_next"`
}

type rankTier struct {
	MinXP int
	Name  string
}

// Ordered ascending by MinXP. The first tier must start at 0 so every
// non-negative total maps to a rank.
var rankTiers = []rankTier{
	{0, "Stardust"},
	{100, "Asteroid"},
	{300, "Comet"},
	{700, "Moon"},
	{1500, "Planet"},
	{3000, "Star"},
	{6000, "Nebula"},
	{12000, "Supernova"},
	{25000, "Galaxy"},
}

// LowestRank is the tier assigned to a freshly created record.
func LowestRank() string {
	return rankTiers[0].Name
}

// RankProgress derives rank, level and progress metadata from a lifetime XP
// total. Pure and total over all non-negative inputs; negative inputs are
// clamped to zero.
func RankProgress(totalXP int) RankInfo {
	if totalXP < 0 {
		totalXP = 0
	}

	idx := 0
	for i, tier := range rankTiers {
		if totalXP >= tier.MinXP {
			idx = i
		}
	}

	info := RankInfo{
		Rank:          rankTiers[idx].Name,
		Level:         LevelForXP(totalXP),
		TierThreshold: rankTiers[idx].MinXP,
	}

	if idx < len(rankTiers)-1 {
		next := rankTiers[idx+1].MinXP
		info.NextThreshold = &next
		span := next - rankTiers[idx].MinXP
		info.ProgressToNext = float64(totalXP-rankTiers[idx].MinXP) / float64(span)
	} else {
		info.ProgressToNext = 1
	}

	return info
}

// LevelForXP converts lifetime XP to a level, each level costing 1.5x the
// previous one starting at 100 XP for level 2.
func LevelForXP(totalXP int) int {
	level := 1
	requiredXP := 100

	for totalXP >= requiredXP {
		totalXP -= requiredXP
		level++
		requiredXP = int(float64(requiredXP) * 1.5)
	}

	return level
}
