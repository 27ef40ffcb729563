package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/freightdeck/campaign-engine/models"
	"gorm.io/gorm"
)

// DispatchRunRepositoryImpl implements the DispatchRunRepository interface
type DispatchRunRepositoryImpl struct {
	*BaseRepository[models.DispatchRun, models.DispatchRunFilter]
}

// NewDispatchRunRepository creates a new dispatch run repository
func NewDispatchRunRepository(db *gorm.DB) DispatchRunRepository {
	return &DispatchRunRepositoryImpl{
		BaseRepository: NewBaseRepository[models.DispatchRun, models.DispatchRunFilter](db),
	}
}

// Update persists changes to an existing dispatch run
func (r *DispatchRunRepositoryImpl) Update(ctx context.Context, run *models.DispatchRun) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Save(run).Error
	if err != nil {
		return fmt.Errorf("failed to update dispatch run: %w", err)
	}

	return nil
}

// LatestByCampaignID returns the most recent dispatch run for a campaign, or
// nil when none exists
func (r *DispatchRunRepositoryImpl) LatestByCampaignID(ctx context.Context, campaignID uint) (*models.DispatchRun, error) {
	db := r.getDB(ctx)

	var run models.DispatchRun
	err := db.Where("campaign_id = ?", campaignID).
		Order("started_at DESC").
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &run, nil
}

// ByFilter retrieves dispatch runs based on filter criteria
func (r *DispatchRunRepositoryImpl) ByFilter(ctx context.Context, filter models.DispatchRunFilter, orderBy string, limit, offset int) ([]*models.DispatchRun, error) {
	db := r.getDB(ctx)

	var runs []*models.DispatchRun
	query := r.applyFilter(db, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&runs).Error
	if err != nil {
		return nil, err
	}

	return runs, nil
}

// Count returns the number of dispatch runs matching the filter
func (r *DispatchRunRepositoryImpl) Count(ctx context.Context, filter models.DispatchRunFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	var run models.DispatchRun
	query := r.applyFilter(db.Model(&run), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *DispatchRunRepositoryImpl) applyFilter(db *gorm.DB, filter models.DispatchRunFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.CampaignID != nil {
		db = db.Where("campaign_id = ?", *filter.CampaignID)
	}
	if filter.StartedAfter != nil {
		db = db.Where("started_at >= ?", *filter.StartedAfter)
	}
	if filter.StartedBefore != nil {
		db = db.Where("started_at < ?", *filter.StartedBefore)
	}

	return db
}
