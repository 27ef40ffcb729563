package models

import (
	"time"
)

// Booking links a user to a company they booked with. The audience resolver
// uses it to compute a company's past customers; the engine never writes
// bookings.
type Booking struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	UserID    uint   `gorm:"not null;index:idx_bookings_user_id" json:"user_id"`
	CompanyID uint   `gorm:"not null;index:idx_bookings_company_id" json:"company_id"`
	Status    string `gorm:"size:20;not null;default:'completed'" json:"status"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`

	// Relations
	User    *User    `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Company *Company `gorm:"foreignKey:CompanyID;references:ID" json:"company,omitempty"`
}

func (Booking) TableName() string {
	return "bookings"
}

// BookingFilter represents filter criteria for booking queries
type BookingFilter struct {
	ID        *uint
	UserID    *uint
	CompanyID *uint
	Status    *string
}
