package repository

import (
	"context"

	"github.com/freightdeck/campaign-engine/models"
	"gorm.io/gorm"
)

// BookingRepositoryImpl implements the BookingRepository interface
type BookingRepositoryImpl struct {
	*BaseRepository[models.Booking, models.BookingFilter]
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &BookingRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Booking, models.BookingFilter](db),
	}
}

// ByFilter retrieves bookings based on filter criteria
func (r *BookingRepositoryImpl) ByFilter(ctx context.Context, filter models.BookingFilter, orderBy string, limit, offset int) ([]*models.Booking, error) {
	db := r.getDB(ctx)

	var bookings []*models.Booking
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

	err := query.Find(&bookings).Error
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

// Count returns the number of bookings matching the filter
func (r *BookingRepositoryImpl) Count(ctx context.Context, filter models.BookingFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	var booking models.Booking
	query := r.applyFilter(db.Model(&booking), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *BookingRepositoryImpl) applyFilter(db *gorm.DB, filter models.BookingFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	if filter.CompanyID != nil {
		db = db.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}

	return db
}
