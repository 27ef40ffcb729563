package models

import (
	"time"

	"github.com/google/uuid"
)

// Operator is a calling principal: either a platform admin or a company
// account. Identity itself lives in an external provider; this record only
// carries what the engine needs to resolve the operator's owner scope.
type Operator struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UUID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_operators_uuid" json:"uuid"`
	Email        string    `gorm:"size:255;not null;uniqueIndex:idx_operators_email" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"` // Never serialize password hash

	Scope     OwnerScope `gorm:"type:owner_scope;not null" json:"scope"`
	CompanyID *uint      `gorm:"index:idx_operators_company_id" json:"company_id,omitempty"`

	IsActive *bool `gorm:"default:true" json:"is_active"`

	CreatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	// Relations
	Company *Company `gorm:"foreignKey:CompanyID;references:ID" json:"company,omitempty"`
}

func (Operator) TableName() string {
	return "operators"
}

func (o *Operator) IsPlatform() bool {
	return o.Scope == OwnerScopePlatform
}

func (o *Operator) IsCompany() bool {
	return o.Scope == OwnerScopeCompany
}

// OperatorFilter represents filter criteria for operator queries
type OperatorFilter struct {
	ID        *uint
	UUID      *uuid.UUID
	Email     *string
	Scope     *OwnerScope
	CompanyID *uint
	IsActive  *bool
}
