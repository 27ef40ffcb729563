package businessflow

import (
	"strings"

	"github.com/freightdeck/campaign-engine/app/dto"
	"github.com/freightdeck/campaign-engine/models"
)

// ContentFromDTO converts the content tagged union from its request form and
// rejects payloads that do not match the campaign channel. Field completeness
// is not checked here: drafts can be saved incomplete, and
// ValidateStoredContent enforces required fields when the campaign leaves
// draft.
func ContentFromDTO(channel models.Channel, in *dto.CampaignContentDTO) (models.CampaignContent, error) {
	var content models.CampaignContent

	if in == nil {
		return content, NewValidationError(map[string]string{"content": ErrCampaignContentRequired.Error()})
	}

	fields := make(map[string]string)

	variants := 0
	if in.Email != nil {
		variants++
	}
	if in.InApp != nil {
		variants++
	}
	if in.WhatsApp != nil {
		variants++
	}
	if variants != 1 {
		fields["content"] = "exactly one content variant must be set"
		return content, NewValidationError(fields)
	}

	switch channel {
	case models.ChannelEmail:
		if in.Email == nil {
			fields["content"] = ErrContentChannelMismatch.Error()
			break
		}
		content.Email = &models.EmailContent{
			Subject:     in.Email.Subject,
			ContentHTML: in.Email.ContentHTML,
			ContentText: in.Email.ContentText,
		}
	case models.ChannelInApp:
		if in.InApp == nil {
			fields["content"] = ErrContentChannelMismatch.Error()
			break
		}
		content.InApp = &models.InAppContent{
			Title: in.InApp.Title,
			Body:  in.InApp.Body,
		}
	case models.ChannelWhatsApp:
		if in.WhatsApp == nil {
			fields["content"] = ErrContentChannelMismatch.Error()
			break
		}
		content.WhatsApp = &models.WhatsAppContent{
			TemplateKey: in.WhatsApp.TemplateKey,
		}
	default:
		fields["channel"] = "unknown channel"
	}

	if len(fields) > 0 {
		return models.CampaignContent{}, NewValidationError(fields)
	}

	return content, nil
}

// ValidateStoredContent re-checks persisted content before a campaign may
// leave draft. Drafts can be saved incomplete; schedule and send cannot.
func ValidateStoredContent(channel models.Channel, content models.CampaignContent) error {
	fields := make(map[string]string)

	if !content.MatchesChannel(channel) {
		return NewValidationError(map[string]string{"content": ErrContentChannelMismatch.Error()})
	}

	switch channel {
	case models.ChannelEmail:
		if strings.TrimSpace(content.Email.Subject) == "" {
			fields["content.email.subject"] = ErrEmailSubjectRequired.Error()
		}
		if strings.TrimSpace(content.Email.ContentHTML) == "" {
			fields["content.email.content_html"] = ErrEmailBodyRequired.Error()
		}
	case models.ChannelInApp:
		if strings.TrimSpace(content.InApp.Title) == "" {
			fields["content.in_app.title"] = ErrInAppTitleRequired.Error()
		}
		if strings.TrimSpace(content.InApp.Body) == "" {
			fields["content.in_app.body"] = ErrInAppBodyRequired.Error()
		}
	}

	if len(fields) > 0 {
		return NewValidationError(fields)
	}

	return nil
}

// ValidateCampaignCore checks the channel, audience type, and scope fields of
// a campaign against each other. It collects all failures into one
// ValidationError rather than stopping at the first.
func ValidateCampaignCore(name string, scope models.OwnerScope, companyID *uint, audienceType models.AudienceType, channel models.Channel) error {
	fields := make(map[string]string)

	if strings.TrimSpace(name) == "" {
		fields["name"] = ErrCampaignNameRequired.Error()
	}
	if !channel.Valid() {
		fields["channel"] = "unknown channel"
	}
	if !audienceType.Valid() {
		fields["audience_type"] = "unknown audience type"
	} else if !audienceType.ValidForScope(scope) {
		fields["audience_type"] = ErrAudienceTypeInvalid.Error()
	}

	switch scope {
	case models.OwnerScopeCompany:
		if companyID == nil {
			fields["company_id"] = ErrCompanyIDRequired.Error()
		}
	case models.OwnerScopePlatform:
		if companyID != nil {
			fields["company_id"] = ErrCompanyIDForbidden.Error()
		}
	}

	if len(fields) > 0 {
		return NewValidationError(fields)
	}

	return nil
}
