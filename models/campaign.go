package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/freightdeck/campaign-engine/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CampaignStatus represents the lifecycle status of a campaign
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusScheduled CampaignStatus = "scheduled"
	CampaignStatusSending   CampaignStatus = "sending"
	CampaignStatusSent      CampaignStatus = "sent"
	CampaignStatusFailed    CampaignStatus = "failed"
	CampaignStatusCancelled CampaignStatus = "cancelled"
)

// String returns the string representation of the status
func (s CampaignStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignStatusDraft, CampaignStatusScheduled, CampaignStatusSending,
		CampaignStatusSent, CampaignStatusFailed, CampaignStatusCancelled:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for CampaignStatus
func (s *CampaignStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = CampaignStatus(v)
	case []byte:
		*s = CampaignStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into CampaignStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for CampaignStatus
func (s CampaignStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid CampaignStatus: %s", s)
	}
	return string(s), nil
}

// OwnerScope discriminates who a campaign belongs to and which audience
// types and recipient caps apply
type OwnerScope string

const (
	OwnerScopePlatform OwnerScope = "platform"
	OwnerScopeCompany  OwnerScope = "company"
)

func (o OwnerScope) Valid() bool {
	return o == OwnerScopePlatform || o == OwnerScopeCompany
}

// Scan implements the sql.Scanner interface for OwnerScope
func (o *OwnerScope) Scan(value any) error {
	if value == nil {
		*o = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*o = OwnerScope(v)
	case []byte:
		*o = OwnerScope(string(v))
	default:
		return fmt.Errorf("cannot scan %T into OwnerScope", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for OwnerScope
func (o OwnerScope) Value() (driver.Value, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("invalid OwnerScope: %s", o)
	}
	return string(o), nil
}

// RecipientCap returns the tier cap for the scope
func (o OwnerScope) RecipientCap() int {
	if o == OwnerScopeCompany {
		return utils.CompanyRecipientCap
	}
	return utils.PlatformRecipientCap
}

// AudienceType names the rule used to compute the recipient set
type AudienceType string

const (
	AudiencePlatformCustomersOnly AudienceType = "platform_customers_only"
	AudiencePlatformCompaniesOnly AudienceType = "platform_companies_only"
	AudiencePlatformAllUsers      AudienceType = "platform_all_users"
	AudienceCompanyPastCustomers  AudienceType = "company_past_customers"
)

func (a AudienceType) Valid() bool {
	switch a {
	case AudiencePlatformCustomersOnly, AudiencePlatformCompaniesOnly,
		AudiencePlatformAllUsers, AudienceCompanyPastCustomers:
		return true
	default:
		return false
	}
}

// ValidForScope checks whether the audience type is legal for the owner scope
func (a AudienceType) ValidForScope(scope OwnerScope) bool {
	if scope == OwnerScopeCompany {
		return a == AudienceCompanyPastCustomers
	}
	return a == AudiencePlatformCustomersOnly ||
		a == AudiencePlatformCompaniesOnly ||
		a == AudiencePlatformAllUsers
}

// Scan implements the sql.Scanner interface for AudienceType
func (a *AudienceType) Scan(value any) error {
	if value == nil {
		*a = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*a = AudienceType(v)
	case []byte:
		*a = AudienceType(string(v))
	default:
		return fmt.Errorf("cannot scan %T into AudienceType", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for AudienceType
func (a AudienceType) Value() (driver.Value, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid AudienceType: %s", a)
	}
	return string(a), nil
}

// Channel is the delivery channel of a campaign
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelInApp    Channel = "in_app"
	ChannelWhatsApp Channel = "whatsapp"
)

func (c Channel) Valid() bool {
	return c == ChannelEmail || c == ChannelInApp || c == ChannelWhatsApp
}

// Scan implements the sql.Scanner interface for Channel
func (c *Channel) Scan(value any) error {
	if value == nil {
		*c = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*c = Channel(v)
	case []byte:
		*c = Channel(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Channel", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for Channel
func (c Channel) Value() (driver.Value, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid Channel: %s", c)
	}
	return string(c), nil
}

// EmailContent holds the content fields of an email campaign
type EmailContent struct {
	Subject     string  `json:"subject"`
	ContentHTML string  `json:"content_html"`
	ContentText *string `json:"content_text,omitempty"`
}

// InAppContent holds the content fields of an in-app notification campaign
type InAppContent struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// WhatsAppContent holds the content fields of a WhatsApp campaign.
// WhatsApp delivery is logged-only; the template key is recorded for when
// the transport goes live.
type WhatsAppContent struct {
	TemplateKey *string `json:"template_key,omitempty"`
}

// CampaignContent is the channel-keyed content union stored as jsonb.
// Exactly the variant matching the campaign's channel is populated.
type CampaignContent struct {
	Email    *EmailContent    `json:"email,omitempty"`
	InApp    *InAppContent    `json:"in_app,omitempty"`
	WhatsApp *WhatsAppContent `json:"whatsapp,omitempty"`
}

// Value implements the driver.Valuer interface for CampaignContent
func (c CampaignContent) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements the sql.Scanner interface for CampaignContent
func (c *CampaignContent) Scan(value any) error {
	if value == nil {
		*c = CampaignContent{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into CampaignContent", value)
	}

	return json.Unmarshal(bytes, c)
}

// MatchesChannel reports whether the populated content variant is the one the
// channel delivers.
func (c CampaignContent) MatchesChannel(channel Channel) bool {
	switch channel {
	case ChannelEmail:
		return c.Email != nil
	case ChannelInApp:
		return c.InApp != nil
	case ChannelWhatsApp:
		return c.WhatsApp != nil
	default:
		return false
	}
}

// Campaign represents a campaign in the database
type Campaign struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	UUID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uk_campaigns_uuid;index:idx_campaigns_uuid" json:"uuid"`
	Name         string          `gorm:"size:255;not null" json:"name"`
	OwnerScope   OwnerScope      `gorm:"type:owner_scope;not null;index:idx_campaigns_owner_scope" json:"owner_scope"`
	CompanyID    *uint           `gorm:"index:idx_campaigns_company_id" json:"company_id,omitempty"`
	AudienceType AudienceType    `gorm:"type:audience_type;not null" json:"audience_type"`
	Channel      Channel         `gorm:"type:campaign_channel;not null" json:"channel"`
	Content      CampaignContent `gorm:"type:jsonb;not null" json:"content"`
	Status       CampaignStatus  `gorm:"type:campaign_status;not null;default:'draft';index:idx_campaigns_status" json:"status"`

	ScheduledAt *time.Time `gorm:"index:idx_campaigns_scheduled_at" json:"scheduled_at,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	SentAt      *time.Time `json:"sent_at,omitempty"`

	TotalRecipients int     `gorm:"not null;default:0" json:"total_recipients"`
	DeliveredCount  int     `gorm:"not null;default:0" json:"delivered_count"`
	FailedCount     int     `gorm:"not null;default:0" json:"failed_count"`
	FailureReason   *string `gorm:"type:text" json:"failure_reason,omitempty"`

	CreatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_campaigns_created_at" json:"created_at"`
	UpdatedAt *time.Time `gorm:"index:idx_campaigns_updated_at" json:"updated_at,omitempty"`

	// Relations
	Company *Company `gorm:"foreignKey:CompanyID;references:ID" json:"company,omitempty"`
}

// TableName returns the table name for the model
func (Campaign) TableName() string {
	return "campaigns"
}

// BeforeCreate is called before creating a new record
func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.Status == "" {
		c.Status = CampaignStatusDraft
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (c *Campaign) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	c.UpdatedAt = &now
	return nil
}

// IsEditable checks if the campaign content can still be edited
func (c *Campaign) IsEditable() bool {
	return c.Status == CampaignStatusDraft
}

// IsCancelable checks if the campaign can be cancelled; a campaign already
// dispatching runs to completion
func (c *Campaign) IsCancelable() bool {
	return c.Status == CampaignStatusDraft || c.Status == CampaignStatusScheduled
}

// IsDeletable checks if the campaign can be deleted. Campaigns that entered
// dispatch keep their delivery history.
func (c *Campaign) IsDeletable() bool {
	switch c.Status {
	case CampaignStatusDraft, CampaignStatusScheduled, CampaignStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status can never change again
func (c *Campaign) IsTerminal() bool {
	switch c.Status {
	case CampaignStatusSent, CampaignStatusFailed, CampaignStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if the campaign can transition to the given status
func (c *Campaign) CanTransitionTo(newStatus CampaignStatus) bool {
	switch c.Status {
	case CampaignStatusDraft:
		return newStatus == CampaignStatusDraft ||
			newStatus == CampaignStatusScheduled ||
			newStatus == CampaignStatusSending ||
			newStatus == CampaignStatusCancelled
	case CampaignStatusScheduled:
		return newStatus == CampaignStatusScheduled ||
			newStatus == CampaignStatusSending ||
			newStatus == CampaignStatusCancelled
	case CampaignStatusSending:
		return newStatus == CampaignStatusSent ||
			newStatus == CampaignStatusFailed
	default:
		return false
	}
}

// CampaignFilter represents filter criteria for campaigns
type CampaignFilter struct {
	ID              *uint           `json:"id,omitempty"`
	UUID            *uuid.UUID      `json:"uuid,omitempty"`
	OwnerScope      *OwnerScope     `json:"owner_scope,omitempty"`
	CompanyID       *uint           `json:"company_id,omitempty"`
	AudienceType    *AudienceType   `json:"audience_type,omitempty"`
	Channel         *Channel        `json:"channel,omitempty"`
	Status          *CampaignStatus `json:"status,omitempty"`
	CreatedAfter    *time.Time      `json:"created_after,omitempty"`
	CreatedBefore   *time.Time      `json:"created_before,omitempty"`
	ScheduledAfter  *time.Time      `json:"scheduled_after,omitempty"`
	ScheduledBefore *time.Time      `json:"scheduled_before,omitempty"`
	StartedBefore   *time.Time      `json:"started_before,omitempty"`
}

// GetStatusDisplayName returns a human-readable status name
func (c *Campaign) GetStatusDisplayName() string {
	switch c.Status {
	case CampaignStatusDraft:
		return "Draft"
	case CampaignStatusScheduled:
		return "Scheduled"
	case CampaignStatusSending:
		return "Sending"
	case CampaignStatusSent:
		return "Sent"
	case CampaignStatusFailed:
		return "Failed"
	case CampaignStatusCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}
