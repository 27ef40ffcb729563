package services

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/freightdeck/campaign-engine/models"
	"github.com/freightdeck/campaign-engine/repository"
	"github.com/freightdeck/campaign-engine/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEmailProvider struct {
	sent []string
	err  error
}

func (p *recordingEmailProvider) SendEmail(email, subject, htmlBody, textBody string) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, email)
	return nil
}

type fakeNotificationRepo struct {
	repository.InAppNotificationRepository
	saved []*models.InAppNotification
}

func (f *fakeNotificationRepo) Save(ctx context.Context, n *models.InAppNotification) error {
	f.saved = append(f.saved, n)
	return nil
}

func TestEmailSender(t *testing.T) {
	campaign := &models.Campaign{
		UUID:    uuid.New(),
		Channel: models.ChannelEmail,
		Content: models.CampaignContent{Email: &models.EmailContent{
			Subject:     "Rates",
			ContentHTML: "<p>hi</p>",
		}},
	}

	t.Run("delivers through the provider", func(t *testing.T) {
		provider := &recordingEmailProvider{}
		sender := NewEmailSender(provider)

		err := sender.Send(context.Background(), campaign, &models.User{Email: "user@example.com"})
		require.NoError(t, err)
		assert.Equal(t, []string{"user@example.com"}, provider.sent)
	})

	t.Run("rejects invalid address", func(t *testing.T) {
		sender := NewEmailSender(&recordingEmailProvider{})

		err := sender.Send(context.Background(), campaign, &models.User{Email: "not-an-address"})
		assert.Error(t, err)
	})

	t.Run("rejects missing content", func(t *testing.T) {
		sender := NewEmailSender(&recordingEmailProvider{})
		bare := &models.Campaign{UUID: uuid.New(), Channel: models.ChannelEmail}

		err := sender.Send(context.Background(), bare, &models.User{Email: "user@example.com"})
		assert.Error(t, err)
	})
}

func TestInAppSenderWritesInboxRow(t *testing.T) {
	campaign := &models.Campaign{
		ID:      3,
		UUID:    uuid.New(),
		Channel: models.ChannelInApp,
		Content: models.CampaignContent{InApp: &models.InAppContent{
			Title: "Rate drop",
			Body:  "Your usual lane just got cheaper",
		}},
	}
	notificationRepo := &fakeNotificationRepo{}
	sender := NewInAppSender(notificationRepo, nil)

	err := sender.Send(context.Background(), campaign, &models.User{ID: 9})
	require.NoError(t, err)

	require.Len(t, notificationRepo.saved, 1)
	saved := notificationRepo.saved[0]
	assert.Equal(t, uint(9), saved.UserID)
	require.NotNil(t, saved.CampaignID)
	assert.Equal(t, uint(3), *saved.CampaignID)
	assert.Equal(t, "Rate drop", saved.Title)
}

func TestWhatsAppSenderIsLogOnly(t *testing.T) {
	sender := NewWhatsAppSender(log.New(io.Discard, "", 0))
	campaign := &models.Campaign{
		UUID:    uuid.New(),
		Channel: models.ChannelWhatsApp,
		Content: models.CampaignContent{WhatsApp: &models.WhatsAppContent{
			TemplateKey: utils.ToPtr("rate_drop_v1"),
		}},
	}

	t.Run("reports delivered with a phone number", func(t *testing.T) {
		err := sender.Send(context.Background(), campaign, &models.User{
			ID:          1,
			PhoneNumber: utils.ToPtr("+15550100"),
		})
		assert.NoError(t, err)
	})

	t.Run("fails without a phone number", func(t *testing.T) {
		err := sender.Send(context.Background(), campaign, &models.User{ID: 2})
		assert.Error(t, err)
	})
}
