package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/freightdeck/campaign-engine/models"
	"github.com/freightdeck/campaign-engine/repository"
	"github.com/freightdeck/campaign-engine/utils"
)

// ChannelSender delivers one campaign message to one recipient. Implementations
// exist per channel; the dispatcher picks the sender matching the campaign.
type ChannelSender interface {
	Channel() models.Channel
	Send(ctx context.Context, campaign *models.Campaign, user *models.User) error
}

// EmailProvider interface for email sending
type EmailProvider interface {
	SendEmail(email, subject, htmlBody, textBody string) error
}

// EmailSender delivers email campaigns through the configured provider
type EmailSender struct {
	provider EmailProvider
}

// NewEmailSender creates a new email channel sender
func NewEmailSender(provider EmailProvider) ChannelSender {
	return &EmailSender{provider: provider}
}

func (s *EmailSender) Channel() models.Channel {
	return models.ChannelEmail
}

func (s *EmailSender) Send(ctx context.Context, campaign *models.Campaign, user *models.User) error {
	if s.provider == nil {
		return fmt.Errorf("email provider not configured")
	}
	if campaign.Content.Email == nil {
		return fmt.Errorf("campaign %s has no email content", campaign.UUID)
	}
	if len(user.Email) == 0 || !strings.Contains(user.Email, "@") {
		return fmt.Errorf("invalid email address: %s", user.Email)
	}

	textBody := ""
	if campaign.Content.Email.ContentText != nil {
		textBody = *campaign.Content.Email.ContentText
	}

	return s.provider.SendEmail(user.Email, campaign.Content.Email.Subject, campaign.Content.Email.ContentHTML, textBody)
}

// InAppSender delivers in-app campaigns by writing inbox rows
type InAppSender struct {
	notificationRepo repository.InAppNotificationRepository
	clock            utils.Clock
}

// NewInAppSender creates a new in-app channel sender
func NewInAppSender(notificationRepo repository.InAppNotificationRepository, clock utils.Clock) ChannelSender {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	return &InAppSender{notificationRepo: notificationRepo, clock: clock}
}

func (s *InAppSender) Channel() models.Channel {
	return models.ChannelInApp
}

func (s *InAppSender) Send(ctx context.Context, campaign *models.Campaign, user *models.User) error {
	if campaign.Content.InApp == nil {
		return fmt.Errorf("campaign %s has no in-app content", campaign.UUID)
	}

	notification := &models.InAppNotification{
		UserID:     user.ID,
		CampaignID: &campaign.ID,
		Title:      campaign.Content.InApp.Title,
		Body:       campaign.Content.InApp.Body,
		CreatedAt:  s.clock.Now(),
	}

	return s.notificationRepo.Save(ctx, notification)
}

// WhatsAppSender is the whatsapp channel placeholder. No provider integration
// exists yet, so sends are recorded in the application log and reported as
// delivered.
type WhatsAppSender struct {
	logger *log.Logger
}

// NewWhatsAppSender creates a new whatsapp channel sender
func NewWhatsAppSender(logger *log.Logger) ChannelSender {
	if logger == nil {
		logger = log.Default()
	}
	return &WhatsAppSender{logger: logger}
}

func (s *WhatsAppSender) Channel() models.Channel {
	return models.ChannelWhatsApp
}

func (s *WhatsAppSender) Send(ctx context.Context, campaign *models.Campaign, user *models.User) error {
	if user.PhoneNumber == nil || *user.PhoneNumber == "" {
		return fmt.Errorf("user %d has no phone number", user.ID)
	}

	templateKey := ""
	if campaign.Content.WhatsApp != nil && campaign.Content.WhatsApp.TemplateKey != nil {
		templateKey = *campaign.Content.WhatsApp.TemplateKey
	}

	s.logger.Printf("whatsapp send (logged only): campaign=%s user=%d template=%s", campaign.UUID, user.ID, templateKey)
	return nil
}

// MockEmailProvider logs instead of sending; used in development and tests
type MockEmailProvider struct{}

func NewMockEmailProvider() EmailProvider {
	return &MockEmailProvider{}
}

func (p *MockEmailProvider) SendEmail(email, subject, htmlBody, textBody string) error {
	log.Printf("Email sent to %s: %s", email, subject)
	return nil
}
