package repositories

import (
	"time"

	"github.com/bitgalaxy-labs/galaxy_api/model"
	"gorm.io/gorm"
)

// HistoryRepository handles the append-only XP event log. Entries are
// created once and never updated or deleted.
type HistoryRepository struct {
	BaseRepository
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *HistoryRepository) Create(entry *model.XPHistory) error {
	return ds.db.Create(entry).Error
}

func (ds *HistoryRepository) ListByPlayer(orgID, userID string, limit int) ([]model.XPHistory, error) {
	var entries []model.XPHistory
	if err := ds.db.Where("org_id = ? AND user_id = ?", orgID, userID).
		Order("created_at DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (ds *HistoryRepository) ListByOrgBetween(orgID string, from, to time.Time) ([]model.XPHistory, error) {
	var entries []model.XPHistory
	if err := ds.db.Where("org_id = ? AND created_at >= ? AND created_at < ?", orgID, from, to).
		Order("created_at ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (ds *HistoryRepository) OrgsWithActivityBetween(from, to time.Time) ([]string, error) {
	var orgs []string
	if err := ds.db.Model(&model.XPHistory{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Distinct("org_id").Pluck("org_id", &orgs).Error; err != nil {
		return nil, err
	}
	return orgs, nil
}
