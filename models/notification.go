package models

import (
	"time"
)

// InAppNotification is the durable store behind the in-app channel: the
// sender writes one row per recipient and the marketplace UI reads them.
type InAppNotification struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	UserID     uint   `gorm:"not null;index:idx_in_app_notifications_user_id" json:"user_id"`
	CampaignID *uint  `gorm:"index:idx_in_app_notifications_campaign_id" json:"campaign_id,omitempty"`
	Title      string `gorm:"size:255;not null" json:"title"`
	Body       string `gorm:"type:text;not null" json:"body"`

	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_in_app_notifications_created_at" json:"created_at"`
}

func (InAppNotification) TableName() string {
	return "in_app_notifications"
}

func (n *InAppNotification) IsRead() bool {
	return n.ReadAt != nil
}

// InAppNotificationFilter represents filter criteria for notification queries
type InAppNotificationFilter struct {
	ID         *uint
	UserID     *uint
	CampaignID *uint
	Unread     *bool
}
