package repository

import (
	"context"

	"github.com/freightdeck/campaign-engine/models"
	"gorm.io/gorm"
)

// InAppNotificationRepositoryImpl implements the InAppNotificationRepository interface
type InAppNotificationRepositoryImpl struct {
	*BaseRepository[models.InAppNotification, models.InAppNotificationFilter]
}

// NewInAppNotificationRepository creates a new in-app notification repository
func NewInAppNotificationRepository(db *gorm.DB) InAppNotificationRepository {
	return &InAppNotificationRepositoryImpl{
		BaseRepository: NewBaseRepository[models.InAppNotification, models.InAppNotificationFilter](db),
	}
}

// ByFilter retrieves notifications based on filter criteria
func (r *InAppNotificationRepositoryImpl) ByFilter(ctx context.Context, filter models.InAppNotificationFilter, orderBy string, limit, offset int) ([]*models.InAppNotification, error) {
	db := r.getDB(ctx)

	var notifications []*models.InAppNotification
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

	err := query.Find(&notifications).Error
	if err != nil {
		return nil, err
	}

	return notifications, nil
}

// Count returns the number of notifications matching the filter
func (r *InAppNotificationRepositoryImpl) Count(ctx context.Context, filter models.InAppNotificationFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	var notification models.InAppNotification
	query := r.applyFilter(db.Model(&notification), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *InAppNotificationRepositoryImpl) applyFilter(db *gorm.DB, filter models.InAppNotificationFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	if filter.CampaignID != nil {
		db = db.Where("campaign_id = ?", *filter.CampaignID)
	}
	if filter.Unread != nil && *filter.Unread {
		db = db.Where("read_at IS NULL")
	}

	return db
}
