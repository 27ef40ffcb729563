package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/freightdeck/campaign-engine/models"
	"github.com/freightdeck/campaign-engine/utils"
	"gorm.io/gorm"
)

// CampaignRepositoryImpl implements the CampaignRepository interface
type CampaignRepositoryImpl struct {
	*BaseRepository[models.Campaign, models.CampaignFilter]
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(db *gorm.DB) CampaignRepository {
	return &CampaignRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Campaign, models.CampaignFilter](db),
	}
}

// ByID retrieves a campaign by ID
func (r *CampaignRepositoryImpl) ByID(ctx context.Context, id uint) (*models.Campaign, error) {
	db := r.getDB(ctx)

	var campaign models.Campaign
	err := db.Preload("Company").Last(&campaign, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &campaign, nil
}

// ByUUID retrieves a campaign by UUID
func (r *CampaignRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Campaign, error) {
	parsedUUID, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	filter := models.CampaignFilter{UUID: &parsedUUID}
	campaigns, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}

	if len(campaigns) == 0 {
		return nil, nil
	}

	return campaigns[0], nil
}

// Update updates a campaign
func (r *CampaignRepositoryImpl) Update(ctx context.Context, campaign models.Campaign) error {
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

	// Set updated_at timestamp
	now := utils.UTCNow()
	campaign.UpdatedAt = &now

	err = db.Save(&campaign).Error
	if err != nil {
		return err
	}

	return nil
}

// UpdateStatusFrom performs the optimistic compare-and-commit that every
// transition goes through: the status column itself is the guard, so two
// actors racing on the same campaign produce exactly one winner even across
// process instances.
func (r *CampaignRepositoryImpl) UpdateStatusFrom(ctx context.Context, id uint, from []models.CampaignStatus, to models.CampaignStatus, set map[string]any) (won bool, err error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return false, err
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

	updates := map[string]any{
		"status":     to,
		"updated_at": utils.UTCNow(),
	}
	for k, v := range set {
		updates[k] = v
	}

	res := db.Model(&models.Campaign{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		err = res.Error
		return false, err
	}

	return res.RowsAffected == 1, nil
}

// IncrementCounters adds deltas to the delivered/failed counters. Increments
// rather than overwrites so concurrent recipient completions never lose counts.
func (r *CampaignRepositoryImpl) IncrementCounters(ctx context.Context, id uint, delivered, failed int) error {
	db := r.getDB(ctx)
	return db.Model(&models.Campaign{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"delivered_count": gorm.Expr("delivered_count + ?", delivered),
			"failed_count":    gorm.Expr("failed_count + ?", failed),
			"updated_at":      utils.UTCNow(),
		}).Error
}

// ListDue retrieves scheduled campaigns whose scheduled_at has arrived
func (r *CampaignRepositoryImpl) ListDue(ctx context.Context, now time.Time) ([]*models.Campaign, error) {
	db := r.getDB(ctx)

	var campaigns []*models.Campaign
	err := db.Where("status = ? AND scheduled_at <= ?", models.CampaignStatusScheduled, now).
		Order("scheduled_at ASC").
		Find(&campaigns).Error
	if err != nil {
		return nil, err
	}

	return campaigns, nil
}

// ListStaleSending retrieves campaigns that entered sending before the cutoff
// and never finalized
func (r *CampaignRepositoryImpl) ListStaleSending(ctx context.Context, cutoff time.Time) ([]*models.Campaign, error) {
	db := r.getDB(ctx)

	var campaigns []*models.Campaign
	err := db.Where("status = ? AND started_at < ?", models.CampaignStatusSending, cutoff).
		Find(&campaigns).Error
	if err != nil {
		return nil, err
	}

	return campaigns, nil
}

// Delete removes a campaign record. Status guards live in the flow; the
// repository deletes unconditionally.
func (r *CampaignRepositoryImpl) Delete(ctx context.Context, id uint) error {
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

	err = db.Delete(&models.Campaign{}, id).Error
	if err != nil {
		return fmt.Errorf("failed to delete campaign %d: %w", id, err)
	}

	return nil
}

// ByFilter retrieves campaigns based on filter criteria
func (r *CampaignRepositoryImpl) ByFilter(ctx context.Context, filter models.CampaignFilter, orderBy string, limit, offset int) ([]*models.Campaign, error) {
	db := r.getDB(ctx)

	var campaigns []*models.Campaign
	query := r.applyFilter(db, filter)

	// Apply ordering
	if orderBy != "" {
		query = query.Order(orderBy)
	}

	// Apply pagination
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	query = query.Preload("Company")

	err := query.Find(&campaigns).Error
	if err != nil {
		return nil, err
	}

	return campaigns, nil
}

// Count returns the number of campaigns matching the filter
func (r *CampaignRepositoryImpl) Count(ctx context.Context, filter models.CampaignFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	var campaign models.Campaign
	query := r.applyFilter(db.Model(&campaign), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *CampaignRepositoryImpl) applyFilter(db *gorm.DB, filter models.CampaignFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.OwnerScope != nil {
		db = db.Where("owner_scope = ?", *filter.OwnerScope)
	}
	if filter.CompanyID != nil {
		db = db.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.AudienceType != nil {
		db = db.Where("audience_type = ?", *filter.AudienceType)
	}
	if filter.Channel != nil {
		db = db.Where("channel = ?", *filter.Channel)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at < ?", *filter.CreatedBefore)
	}
	if filter.ScheduledAfter != nil {
		db = db.Where("scheduled_at > ?", *filter.ScheduledAfter)
	}
	if filter.ScheduledBefore != nil {
		db = db.Where("scheduled_at < ?", *filter.ScheduledBefore)
	}
	if filter.StartedBefore != nil {
		db = db.Where("started_at < ?", *filter.StartedBefore)
	}

	return db
}
