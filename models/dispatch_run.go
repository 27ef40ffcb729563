package models

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// DispatchRun records one dispatch attempt of a campaign: the audience that
// was resolved at dispatch time and the content that was frozen for it.
// It exists for crash diagnostics; counters on the campaign stay authoritative.
type DispatchRun struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	CampaignID uint `gorm:"not null;index:idx_dispatch_runs_campaign_id" json:"campaign_id"`

	// Full resolved recipient set, persisted before the first send
	AudienceIDs pq.Int64Array `gorm:"type:bigint[]" json:"audience_ids"`

	// Content snapshot as dispatched
	ContentJSON json.RawMessage `gorm:"type:jsonb" json:"content_json,omitempty"`

	StartedAt  time.Time  `gorm:"not null" json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	// Relations
	Campaign *Campaign `gorm:"foreignKey:CampaignID;references:ID" json:"campaign,omitempty"`
}

func (DispatchRun) TableName() string {
	return "dispatch_runs"
}

// DispatchRunFilter represents filter criteria for dispatch run queries
type DispatchRunFilter struct {
	ID            *uint
	CampaignID    *uint
	StartedAfter  *time.Time
	StartedBefore *time.Time
}
