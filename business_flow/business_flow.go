// Package businessflow contains the business logic for the campaign engine.
package businessflow

import (
	"github.com/freightdeck/campaign-engine/app/dto"
	"github.com/freightdeck/campaign-engine/models"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds client-related information for audit logging
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToCampaignDTO converts a campaign model into its response representation
func ToCampaignDTO(campaign *models.Campaign) dto.CampaignDTO {
	content := dto.CampaignContentDTO{}
	if campaign.Content.Email != nil {
		content.Email = &dto.EmailContentDTO{
			Subject:     campaign.Content.Email.Subject,
			ContentHTML: campaign.Content.Email.ContentHTML,
			ContentText: campaign.Content.Email.ContentText,
		}
	}
	if campaign.Content.InApp != nil {
		content.InApp = &dto.InAppContentDTO{
			Title: campaign.Content.InApp.Title,
			Body:  campaign.Content.InApp.Body,
		}
	}
	if campaign.Content.WhatsApp != nil {
		content.WhatsApp = &dto.WhatsAppContentDTO{
			TemplateKey: campaign.Content.WhatsApp.TemplateKey,
		}
	}

	return dto.CampaignDTO{
		ID:              campaign.ID,
		UUID:            campaign.UUID.String(),
		Name:            campaign.Name,
		OwnerScope:      string(campaign.OwnerScope),
		CompanyID:       campaign.CompanyID,
		AudienceType:    string(campaign.AudienceType),
		Channel:         string(campaign.Channel),
		Content:         content,
		Status:          string(campaign.Status),
		ScheduledAt:     campaign.ScheduledAt,
		StartedAt:       campaign.StartedAt,
		SentAt:          campaign.SentAt,
		TotalRecipients: campaign.TotalRecipients,
		DeliveredCount:  campaign.DeliveredCount,
		FailedCount:     campaign.FailedCount,
		FailureReason:   campaign.FailureReason,
		CreatedAt:       campaign.CreatedAt,
		UpdatedAt:       campaign.UpdatedAt,
	}
}

// ToOperatorDTO converts an operator model into its response representation
func ToOperatorDTO(operator *models.Operator) dto.OperatorDTO {
	return dto.OperatorDTO{
		ID:        operator.ID,
		UUID:      operator.UUID.String(),
		Email:     operator.Email,
		Scope:     string(operator.Scope),
		CompanyID: operator.CompanyID,
	}
}
