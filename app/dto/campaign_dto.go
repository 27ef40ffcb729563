package dto

import (
	"time"
)

// EmailContentDTO carries the email variant of campaign content
type EmailContentDTO struct {
	Subject     string  `json:"subject" validate:"required,min=1,max=255"`
	ContentHTML string  `json:"content_html" validate:"required"`
	ContentText *string `json:"content_text,omitempty"`
}

// InAppContentDTO carries the in-app variant of campaign content
type InAppContentDTO struct {
	Title string `json:"title" validate:"required,min=1,max=255"`
	Body  string `json:"body" validate:"required"`
}

// WhatsAppContentDTO carries the whatsapp variant of campaign content
type WhatsAppContentDTO struct {
	TemplateKey *string `json:"template_key,omitempty"`
}

// CampaignContentDTO is a tagged union; exactly one variant matching the
// campaign channel must be set
type CampaignContentDTO struct {
	Email    *EmailContentDTO    `json:"email,omitempty"`
	InApp    *InAppContentDTO    `json:"in_app,omitempty"`
	WhatsApp *WhatsAppContentDTO `json:"whatsapp,omitempty"`
}

// CreateCampaignRequest represents the request to create a new campaign
type CreateCampaignRequest struct {
	OperatorID   uint                `json:"-"`
	Name         string              `json:"name" validate:"required,min=1,max=255"`
	AudienceType string              `json:"audience_type" validate:"required"`
	Channel      string              `json:"channel" validate:"required"`
	Content      *CampaignContentDTO `json:"content" validate:"required"`
	ScheduledAt  *time.Time          `json:"scheduled_at,omitempty"`
}

// CreateCampaignResponse represents the response to create a new campaign
type CreateCampaignResponse struct {
	Message   string `json:"message"`
	ID        uint   `json:"id"`
	UUID      string `json:"uuid"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// UpdateCampaignRequest represents the request to update an existing campaign
type UpdateCampaignRequest struct {
	UUID         string              `json:"-"`
	OperatorID   uint                `json:"-"`
	Name         *string             `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	AudienceType *string             `json:"audience_type,omitempty"`
	Channel      *string             `json:"channel,omitempty"`
	Content      *CampaignContentDTO `json:"content,omitempty"`
	ScheduledAt  *time.Time          `json:"scheduled_at,omitempty"`
}

// UpdateCampaignResponse represents the response to update an existing campaign
type UpdateCampaignResponse struct {
	Message  string      `json:"message"`
	Campaign CampaignDTO `json:"campaign"`
}

// ScheduleCampaignRequest represents the request to schedule a campaign
type ScheduleCampaignRequest struct {
	UUID        string    `json:"-"`
	OperatorID  uint      `json:"-"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
}

// ScheduleCampaignResponse represents the response to schedule a campaign
type ScheduleCampaignResponse struct {
	Message     string `json:"message"`
	Status      string `json:"status"`
	ScheduledAt string `json:"scheduled_at"`
}

// SendCampaignNowRequest represents the request for an immediate send
type SendCampaignNowRequest struct {
	UUID       string `json:"-"`
	OperatorID uint   `json:"-"`
}

// SendCampaignNowResponse represents the response for an immediate send
type SendCampaignNowResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// CancelCampaignRequest represents the request to cancel a campaign
type CancelCampaignRequest struct {
	UUID       string `json:"-"`
	OperatorID uint   `json:"-"`
}

// CancelCampaignResponse represents the response to cancel a campaign
type CancelCampaignResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// DeleteCampaignRequest represents the request to delete a campaign
type DeleteCampaignRequest struct {
	UUID       string `json:"-"`
	OperatorID uint   `json:"-"`
}

// DeleteCampaignResponse represents the response to delete a campaign
type DeleteCampaignResponse struct {
	Message string `json:"message"`
}

// PreviewAudienceRequest represents the request to preview a campaign audience
type PreviewAudienceRequest struct {
	UUID       string `json:"-"`
	OperatorID uint   `json:"-"`
}

// PreviewAudienceResponse reports the current size of the resolved audience
// against the owner scope's recipient cap
type PreviewAudienceResponse struct {
	TotalRecipients int  `json:"total_recipients"`
	RecipientCap    int  `json:"recipient_cap"`
	OverCap         bool `json:"over_cap"`
	Cached          bool `json:"cached"`
}

// GetCampaignRequest represents the request to get an existing campaign
type GetCampaignRequest struct {
	UUID       string `json:"-"`
	OperatorID uint   `json:"-"`
}

// CampaignDTO represents the campaign in responses
type CampaignDTO struct {
	ID              uint               `json:"id"`
	UUID            string             `json:"uuid"`
	Name            string             `json:"name"`
	OwnerScope      string             `json:"owner_scope"`
	CompanyID       *uint              `json:"company_id,omitempty"`
	AudienceType    string             `json:"audience_type"`
	Channel         string             `json:"channel"`
	Content         CampaignContentDTO `json:"content"`
	Status          string             `json:"status"`
	ScheduledAt     *time.Time         `json:"scheduled_at,omitempty"`
	StartedAt       *time.Time         `json:"started_at,omitempty"`
	SentAt          *time.Time         `json:"sent_at,omitempty"`
	TotalRecipients int                `json:"total_recipients"`
	DeliveredCount  int                `json:"delivered_count"`
	FailedCount     int                `json:"failed_count"`
	FailureReason   *string            `json:"failure_reason,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       *time.Time         `json:"updated_at,omitempty"`
}

// GetCampaignResponse represents the response to get an existing campaign
type GetCampaignResponse struct {
	Campaign CampaignDTO `json:"campaign"`
}

// ListCampaignsRequest represents the request to list campaigns
type ListCampaignsRequest struct {
	OperatorID uint    `json:"-"`
	Status     *string `json:"status,omitempty"`
	Channel    *string `json:"channel,omitempty"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	OrderBy    string  `json:"order_by,omitempty"`
}

// PaginationDTO carries paging information in list responses
type PaginationDTO struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// ListCampaignsResponse represents the response to list campaigns
type ListCampaignsResponse struct {
	Items      []CampaignDTO `json:"items"`
	Pagination PaginationDTO `json:"pagination"`
}
