package repository

import (
	"context"
	"fmt"

	"github.com/freightdeck/campaign-engine/models"
	"gorm.io/gorm"
)

// UserRepositoryImpl implements the UserRepository interface
type UserRepositoryImpl struct {
	*BaseRepository[models.User, models.UserFilter]
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{
		BaseRepository: NewBaseRepository[models.User, models.UserFilter](db),
	}
}

// consentColumn maps a channel to the consent flag that gates it. A user who
// has not opted in to the channel's marketing communications is excluded
// regardless of audience type.
func consentColumn(channel models.Channel) (string, error) {
	switch channel {
	case models.ChannelEmail:
		return "email_marketing_opt_in", nil
	case models.ChannelWhatsApp:
		return "whatsapp_opt_in", nil
	case models.ChannelInApp:
		// In-app delivery lands in the user's own inbox; no extra opt-in flag.
		return "", nil
	default:
		return "", fmt.Errorf("unknown channel: %s", channel)
	}
}

// ListPlatformAudience returns active users of the given roles that consented
// to the channel
func (r *UserRepositoryImpl) ListPlatformAudience(ctx context.Context, roles []string, channel models.Channel) ([]*models.User, error) {
	db := r.getDB(ctx)

	col, err := consentColumn(channel)
	if err != nil {
		return nil, err
	}

	query := db.Where("is_active = ?", true).
		Where("role IN ?", roles).
		Order("id ASC")
	if col != "" {
		query = query.Where(fmt.Sprintf("%s = ?", col), true)
	}

	var users []*models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

// ListCompanyPastCustomers returns active customers with at least one booking
// with the company and the carrier-marketing opt-in set
func (r *UserRepositoryImpl) ListCompanyPastCustomers(ctx context.Context, companyID uint, channel models.Channel) ([]*models.User, error) {
	db := r.getDB(ctx)

	col, err := consentColumn(channel)
	if err != nil {
		return nil, err
	}

	query := db.
		Joins("JOIN bookings ON bookings.user_id = users.id").
		Where("bookings.company_id = ?", companyID).
		Where("users.is_active = ?", true).
		Where("users.role = ?", models.UserRoleCustomer).
		Where("users.carrier_marketing_opt_in = ?", true).
		Distinct("users.*").
		Order("users.id ASC")
	if col != "" {
		query = query.Where(fmt.Sprintf("users.%s = ?", col), true)
	}

	var users []*models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

// ListByIDs retrieves users by primary keys
func (r *UserRepositoryImpl) ListByIDs(ctx context.Context, ids []uint) ([]*models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	db := r.getDB(ctx)

	var users []*models.User
	if err := db.Where("id IN ?", ids).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

// ByFilter retrieves users based on filter criteria
func (r *UserRepositoryImpl) ByFilter(ctx context.Context, filter models.UserFilter, orderBy string, limit, offset int) ([]*models.User, error) {
	db := r.getDB(ctx)

	var users []*models.User
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

	err := query.Find(&users).Error
	if err != nil {
		return nil, err
	}

	return users, nil
}

// Count returns the number of users matching the filter
func (r *UserRepositoryImpl) Count(ctx context.Context, filter models.UserFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	var user models.User
	query := r.applyFilter(db.Model(&user), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *UserRepositoryImpl) applyFilter(db *gorm.DB, filter models.UserFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.Role != nil {
		db = db.Where("role = ?", *filter.Role)
	}
	if filter.Email != nil {
		db = db.Where("email = ?", *filter.Email)
	}
	if filter.EmailMarketingOptIn != nil {
		db = db.Where("email_marketing_opt_in = ?", *filter.EmailMarketingOptIn)
	}
	if filter.WhatsAppOptIn != nil {
		db = db.Where("whatsapp_opt_in = ?", *filter.WhatsAppOptIn)
	}
	if filter.CarrierMarketingOptIn != nil {
		db = db.Where("carrier_marketing_opt_in = ?", *filter.CarrierMarketingOptIn)
	}
	if filter.IsActive != nil {
		db = db.Where("is_active = ?", *filter.IsActive)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at < ?", *filter.CreatedBefore)
	}

	return db
}
