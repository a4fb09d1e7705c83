package repositories

import (
	"time"

	"github.com/bitgalaxy-labs/galaxy_api/model"
	"gorm.io/gorm"
)

// PlayerRepository handles progression record database operations
type PlayerRepository struct {
	BaseRepository
}

func NewPlayerRepository(db *gorm.DB) *PlayerRepository {
	return &PlayerRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *PlayerRepository) GetByOrgUser(orgID, userID string) (*model.PlayerProgress, error) {
	var player model.PlayerProgress
	if err := ds.db.Where("org_id = ? AND user_id = ?", orgID, userID).First(&player).Error; err != nil {
		return nil, err
	}
	return &player, nil
}

func (ds *PlayerRepository) Create(player *model.PlayerProgress) error {
	return ds.db.Create(player).Error
}

// UpdateCheckinGuarded replaces the record only if last_checkin_at still
// matches what the caller read. A false return means a concurrent check-in
// won the race and no row was touched.
func (ds *PlayerRepository) UpdateCheckinGuarded(player *model.PlayerProgress, prevCheckinAt *time.Time) (bool, error) {
	query := ds.db.Model(&model.PlayerProgress{}).Where("id = ?", player.ID)
	if prevCheckinAt == nil {
		query = query.Where("last_checkin_at IS NULL")
	} else {
		query = query.Where("last_checkin_at = ?", *prevCheckinAt)
	}

	result := query.Updates(map[string]interface{}{
		"total_xp":         player.TotalXP,
		"rank":             player.Rank,
		"level":            player.Level,
		"weekly_xp":        player.WeeklyXP,
		"weekly_week_key":  player.WeeklyWeekKey,
		"streak":           player.Streak,
		"last_checkin_at":  player.LastCheckinAt,
		"completed_quests": player.CompletedQuests,
		"updated_at":       player.UpdatedAt,
	})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// UpdateGuarded replaces the record only if updated_at still matches the
// value read before the mutation. Used by the non-checkin XP paths.
func (ds *PlayerRepository) UpdateGuarded(player *model.PlayerProgress, prevUpdatedAt time.Time) (bool, error) {
	result := ds.db.Model(&model.PlayerProgress{}).
		Where("id = ? AND updated_at = ?", player.ID, prevUpdatedAt).
		Updates(map[string]interface{}{
			"total_xp":         player.TotalXP,
			"rank":             player.Rank,
			"level":            player.Level,
			"weekly_xp":        player.WeeklyXP,
			"weekly_week_key":  player.WeeklyWeekKey,
			"streak":           player.Streak,
			"last_checkin_at":  player.LastCheckinAt,
			"completed_quests": player.CompletedQuests,
			"updated_at":       player.UpdatedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (ds *PlayerRepository) AllTimeTop(orgID string, limit int) ([]model.PlayerProgress, error) {
	var players []model.PlayerProgress
	if err := ds.db.Where("org_id = ?", orgID).
		Order("total_xp DESC").Limit(limit).Find(&players).Error; err != nil {
		return nil, err
	}
	return players, nil
}

// WeeklyCandidates returns the raw over-fetched candidate window for the
// weekly leaderboard; the service filters out stale week keys.
func (ds *PlayerRepository) WeeklyCandidates(orgID string, fetch int) ([]model.PlayerProgress, error) {
	var players []model.PlayerProgress
	if err := ds.db.Where("org_id = ?", orgID).
		Order("weekly_xp DESC").Limit(fetch).Find(&players).Error; err != nil {
		return nil, err
	}
	return players, nil
}
