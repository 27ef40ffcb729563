package repository

import (
	"context"

	"github.com/freightdeck/campaign-engine/models"
	"gorm.io/gorm"
)

// DeliveryLogRepositoryImpl implements the DeliveryLogRepository interface
type DeliveryLogRepositoryImpl struct {
	*BaseRepository[models.DeliveryLog, models.DeliveryLogFilter]
}

// NewDeliveryLogRepository creates a new delivery log repository
func NewDeliveryLogRepository(db *gorm.DB) DeliveryLogRepository {
	return &DeliveryLogRepositoryImpl{
		BaseRepository: NewBaseRepository[models.DeliveryLog, models.DeliveryLogFilter](db),
	}
}

// ListByCampaign returns all delivery logs for a campaign ordered by creation
func (r *DeliveryLogRepositoryImpl) ListByCampaign(ctx context.Context, campaignID uint) ([]*models.DeliveryLog, error) {
	db := r.getDB(ctx)

	var logs []*models.DeliveryLog
	err := db.Where("campaign_id = ?", campaignID).
		Order("id ASC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}

	return logs, nil
}

// ByFilter retrieves delivery logs based on filter criteria
func (r *DeliveryLogRepositoryImpl) ByFilter(ctx context.Context, filter models.DeliveryLogFilter, orderBy string, limit, offset int) ([]*models.DeliveryLog, error) {
	db := r.getDB(ctx)

	var logs []*models.DeliveryLog
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

	err := query.Find(&logs).Error
	if err != nil {
		return nil, err
	}

	return logs, nil
}

// Count returns the number of delivery logs matching the filter
func (r *DeliveryLogRepositoryImpl) Count(ctx context.Context, filter models.DeliveryLogFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	var log models.DeliveryLog
	query := r.applyFilter(db.Model(&log), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *DeliveryLogRepositoryImpl) applyFilter(db *gorm.DB, filter models.DeliveryLogFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.CampaignID != nil {
		db = db.Where("campaign_id = ?", *filter.CampaignID)
	}
	if filter.DispatchRunID != nil {
		db = db.Where("dispatch_run_id = ?", *filter.DispatchRunID)
	}
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}

	return db
}
