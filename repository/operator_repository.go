package repository

import (
	"context"
	"errors"

	"github.com/freightdeck/campaign-engine/models"
	"gorm.io/gorm"
)

// OperatorRepositoryImpl implements the OperatorRepository interface
type OperatorRepositoryImpl struct {
	*BaseRepository[models.Operator, models.OperatorFilter]
}

// NewOperatorRepository creates a new operator repository
func NewOperatorRepository(db *gorm.DB) OperatorRepository {
	return &OperatorRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Operator, models.OperatorFilter](db),
	}
}

// ByEmail retrieves an operator by email, or nil when no match exists
func (r *OperatorRepositoryImpl) ByEmail(ctx context.Context, email string) (*models.Operator, error) {
	db := r.getDB(ctx)

	var operator models.Operator
	err := db.Where("email = ?", email).First(&operator).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &operator, nil
}

// ByFilter retrieves operators based on filter criteria
func (r *OperatorRepositoryImpl) ByFilter(ctx context.Context, filter models.OperatorFilter, orderBy string, limit, offset int) ([]*models.Operator, error) {
	db := r.getDB(ctx)

	var operators []*models.Operator
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

	err := query.Find(&operators).Error
	if err != nil {
		return nil, err
	}

	return operators, nil
}

// Count returns the number of operators matching the filter
func (r *OperatorRepositoryImpl) Count(ctx context.Context, filter models.OperatorFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	var operator models.Operator
	query := r.applyFilter(db.Model(&operator), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *OperatorRepositoryImpl) applyFilter(db *gorm.DB, filter models.OperatorFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.Email != nil {
		db = db.Where("email = ?", *filter.Email)
	}
	if filter.Scope != nil {
		db = db.Where("scope = ?", *filter.Scope)
	}
	if filter.CompanyID != nil {
		db = db.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.IsActive != nil {
		db = db.Where("is_active = ?", *filter.IsActive)
	}

	return db
}
