// Package models contains domain entities and business models for the campaign engine
package models

import (
	"time"

	"github.com/google/uuid"
)

// User role constants
const (
	UserRoleCustomer   = "customer"
	UserRoleCompanyRep = "company_rep"
)

// User is a marketplace user eligible to receive marketing campaigns.
// The engine reads users only through the audience resolver; consent flags
// gate which channels may reach them.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UUID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_users_uuid" json:"uuid"`
	Role        string    `gorm:"size:20;not null;index:idx_users_role" json:"role"`
	Email       string    `gorm:"size:255;not null;uniqueIndex:idx_users_email" json:"email"`
	PhoneNumber *string   `gorm:"size:20;uniqueIndex:uk_users_phone_number" json:"phone_number,omitempty"`

	// Marketing consent flags, one per channel family
	EmailMarketingOptIn   *bool `gorm:"default:false;index:idx_users_email_opt_in" json:"email_marketing_opt_in"`
	WhatsAppOptIn         *bool `gorm:"default:false" json:"whatsapp_opt_in"`
	CarrierMarketingOptIn *bool `gorm:"default:false" json:"carrier_marketing_opt_in"`

	IsActive *bool `gorm:"default:true;index:idx_users_is_active" json:"is_active"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	// Relations
	Bookings []Booking `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsCustomer() bool {
	return u.Role == UserRoleCustomer
}

func (u *User) IsCompanyRep() bool {
	return u.Role == UserRoleCompanyRep
}

// UserFilter represents filter criteria for user queries
type UserFilter struct {
	ID                    *uint
	UUID                  *uuid.UUID
	Role                  *string
	Email                 *string
	EmailMarketingOptIn   *bool
	WhatsAppOptIn         *bool
	CarrierMarketingOptIn *bool
	IsActive              *bool
	CreatedAfter          *time.Time
	CreatedBefore         *time.Time
}
