package models

import (
	"time"

	"github.com/google/uuid"
)

// Company is a carrier company on the marketplace. Company-scoped campaigns
// belong to exactly one company and only ever target its past customers.
type Company struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_companies_uuid" json:"uuid"`
	Name string    `gorm:"size:120;not null" json:"name"`

	IsActive *bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	// Relations
	Bookings  []Booking  `gorm:"foreignKey:CompanyID" json:"-"`
	Campaigns []Campaign `gorm:"foreignKey:CompanyID" json:"-"`
}

func (Company) TableName() string {
	return "companies"
}

// CompanyFilter represents filter criteria for company queries
type CompanyFilter struct {
	ID       *uint
	UUID     *uuid.UUID
	Name     *string
	IsActive *bool
}
