// Package models contains domain entities and business models for the campaign engine
package models

import (
	"encoding/json"
	"time"
)

type AuditLog struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	OperatorID   *uint           `gorm:"index:idx_audit_operator_id" json:"operator_id,omitempty"`
	Operator     *Operator       `gorm:"foreignKey:OperatorID;references:ID" json:"operator,omitempty"`
	CampaignID   *uint           `gorm:"index:idx_audit_campaign_id" json:"campaign_id,omitempty"`
	Action       string          `gorm:"size:64;not null;index:idx_audit_action" json:"action"`
	Description  *string         `gorm:"type:text" json:"description,omitempty"`
	IPAddress    *string         `gorm:"type:inet;index:idx_audit_ip_address" json:"ip_address,omitempty"`
	UserAgent    *string         `gorm:"type:text" json:"user_agent,omitempty"`
	RequestID    *string         `gorm:"size:255;index:idx_audit_request_id" json:"request_id,omitempty"`
	Metadata     json.RawMessage `gorm:"type:jsonb" json:"metadata,omitempty"`
	Success      *bool           `gorm:"default:true;index:idx_audit_success" json:"success"`
	ErrorMessage *string         `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time       `gorm:"default:CURRENT_TIMESTAMP;index:idx_audit_created_at" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_log"
}

// Audit action constants
const (
	AuditActionCampaignCreated        = "campaign_created"
	AuditActionCampaignCreationFailed = "campaign_creation_failed"
	AuditActionCampaignUpdated        = "campaign_updated"
	AuditActionCampaignUpdateFailed   = "campaign_update_failed"
	AuditActionCampaignScheduled      = "campaign_scheduled"
	AuditActionCampaignScheduleFailed = "campaign_schedule_failed"
	AuditActionCampaignSendRequested  = "campaign_send_requested"
	AuditActionCampaignSendFailed     = "campaign_send_failed"
	AuditActionCampaignCancelled      = "campaign_cancelled"
	AuditActionCampaignCancelFailed   = "campaign_cancel_failed"
	AuditActionCampaignDeleted        = "campaign_deleted"
	AuditActionCampaignDeleteFailed   = "campaign_delete_failed"
	AuditActionOperatorLogin          = "operator_login"
	AuditActionOperatorLoginFailed    = "operator_login_failed"
)

// AuditLogFilter represents filter criteria for audit log queries
type AuditLogFilter struct {
	ID            *uint
	OperatorID    *uint
	CampaignID    *uint
	Action        *string
	Success       *bool
	RequestID     *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func (a *AuditLog) IsFailed() bool {
	return a.Success != nil && !*a.Success
}
