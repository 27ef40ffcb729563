package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// DeliveryStatus is the per-recipient outcome of a send
type DeliveryStatus string

const (
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusFailed    DeliveryStatus = "failed"
)

func (s DeliveryStatus) Valid() bool {
	return s == DeliveryStatusDelivered || s == DeliveryStatusFailed
}

// Scan implements the sql.Scanner interface for DeliveryStatus
func (s *DeliveryStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = DeliveryStatus(v)
	case []byte:
		*s = DeliveryStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into DeliveryStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for DeliveryStatus
func (s DeliveryStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid DeliveryStatus: %s", s)
	}
	return string(s), nil
}

// DeliveryLog is one recipient's send outcome within a dispatch run.
// One recipient's failure never aborts the batch; the row records why.
type DeliveryLog struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CampaignID    uint           `gorm:"not null;index:idx_delivery_logs_campaign_id" json:"campaign_id"`
	DispatchRunID uint           `gorm:"not null;index:idx_delivery_logs_dispatch_run_id" json:"dispatch_run_id"`
	UserID        uint           `gorm:"not null;index:idx_delivery_logs_user_id" json:"user_id"`
	Channel       Channel        `gorm:"type:campaign_channel;not null" json:"channel"`
	Status        DeliveryStatus `gorm:"type:delivery_status;not null;index:idx_delivery_logs_status" json:"status"`
	Error         *string        `gorm:"type:text" json:"error,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_delivery_logs_created_at" json:"created_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
}

func (DeliveryLog) TableName() string {
	return "delivery_logs"
}

// DeliveryLogFilter represents filter criteria for delivery log queries
type DeliveryLogFilter struct {
	ID            *uint
	CampaignID    *uint
	DispatchRunID *uint
	UserID        *uint
	Status        *DeliveryStatus
}
