package businessflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/freightdeck/campaign-engine/app/dto"
	businessflow "github.com/freightdeck/campaign-engine/business_flow"
	"github.com/freightdeck/campaign-engine/models"
	"github.com/freightdeck/campaign-engine/repository"
	"github.com/freightdeck/campaign-engine/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fakes embed the repository interface so only the methods a test path
// actually touches need an implementation; anything else panics loudly.

type fakeOperatorRepo struct {
	repository.OperatorRepository
	operators map[uint]*models.Operator
}

func (f *fakeOperatorRepo) ByID(ctx context.Context, id uint) (*models.Operator, error) {
	return f.operators[id], nil
}

type fakeCampaignRepo struct {
	repository.CampaignRepository

	campaigns map[string]*models.Campaign

	won          bool
	winnerStatus models.CampaignStatus
	updateErr    error
	lastFrom     []models.CampaignStatus
	lastTo       models.CampaignStatus
	lastSet      map[string]any
	total        int64
	listed       []*models.Campaign
	lastFilter   models.CampaignFilter
	lastOrderBy  string
	lastLimit    int
	lastOffset   int
}

func (f *fakeCampaignRepo) ByUUID(ctx context.Context, u string) (*models.Campaign, error) {
	return f.campaigns[u], nil
}

func (f *fakeCampaignRepo) UpdateStatusFrom(ctx context.Context, id uint, from []models.CampaignStatus, to models.CampaignStatus, set map[string]any) (bool, error) {
	f.lastFrom = from
	f.lastTo = to
	f.lastSet = set
	if !f.won && f.winnerStatus != "" {
		// Simulate the concurrent writer that won the conditional update.
		for _, c := range f.campaigns {
			if c.ID == id {
				c.Status = f.winnerStatus
			}
		}
	}
	return f.won, f.updateErr
}

func (f *fakeCampaignRepo) Count(ctx context.Context, filter models.CampaignFilter) (int64, error) {
	f.lastFilter = filter
	return f.total, nil
}

func (f *fakeCampaignRepo) ByFilter(ctx context.Context, filter models.CampaignFilter, orderBy string, limit, offset int) ([]*models.Campaign, error) {
	f.lastFilter = filter
	f.lastOrderBy = orderBy
	f.lastLimit = limit
	f.lastOffset = offset
	return f.listed, nil
}

type fakeAuditRepo struct {
	repository.AuditLogRepository
	entries []*models.AuditLog
}

func (f *fakeAuditRepo) Save(ctx context.Context, entry *models.AuditLog) error {
	f.entries = append(f.entries, entry)
	return nil
}

type fakeResolver struct {
	count  int
	cached bool
	err    error
}

func (f *fakeResolver) Resolve(ctx context.Context, campaign *models.Campaign) ([]*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	users := make([]*models.User, f.count)
	for i := range users {
		users[i] = &models.User{ID: uint(i + 1)}
	}
	return users, nil
}

func (f *fakeResolver) PreviewCount(ctx context.Context, campaign *models.Campaign) (int, bool, error) {
	if f.err != nil {
		return 0, false, f.err
	}
	return f.count, f.cached, nil
}

type fakeDispatcher struct {
	started  bool
	err      error
	lastFrom []models.CampaignStatus
	calls    int
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, campaign *models.Campaign, from []models.CampaignStatus) (bool, error) {
	f.calls++
	f.lastFrom = from
	return f.started, f.err
}

type flowFixture struct {
	flow         businessflow.CampaignFlow
	campaignRepo *fakeCampaignRepo
	auditRepo    *fakeAuditRepo
	resolver     *fakeResolver
	dispatcher   *fakeDispatcher
	now          time.Time
}

const (
	platformOperatorID     = 1
	companyOperatorID      = 2
	inactiveOperatorID     = 3
	otherCompanyOperatorID = 4
	missingOperatorID      = 99
)

func newFlowFixture(t *testing.T, campaigns ...*models.Campaign) *flowFixture {
	t.Helper()

	companyID := uint(10)
	otherCompanyID := uint(20)

	operatorRepo := &fakeOperatorRepo{operators: map[uint]*models.Operator{
		platformOperatorID: {
			ID: platformOperatorID, UUID: uuid.New(),
			Scope: models.OwnerScopePlatform, IsActive: utils.ToPtr(true),
		},
		companyOperatorID: {
			ID: companyOperatorID, UUID: uuid.New(),
			Scope: models.OwnerScopeCompany, CompanyID: &companyID, IsActive: utils.ToPtr(true),
		},
		inactiveOperatorID: {
			ID: inactiveOperatorID, UUID: uuid.New(),
			Scope: models.OwnerScopePlatform, IsActive: utils.ToPtr(false),
		},
		otherCompanyOperatorID: {
			ID: otherCompanyOperatorID, UUID: uuid.New(),
			Scope: models.OwnerScopeCompany, CompanyID: &otherCompanyID, IsActive: utils.ToPtr(true),
		},
	}}

	campaignRepo := &fakeCampaignRepo{campaigns: map[string]*models.Campaign{}, won: true}
	for _, campaign := range campaigns {
		campaignRepo.campaigns[campaign.UUID.String()] = campaign
	}

	f := &flowFixture{
		campaignRepo: campaignRepo,
		auditRepo:    &fakeAuditRepo{},
		resolver:     &fakeResolver{count: 5},
		dispatcher:   &fakeDispatcher{started: true},
		now:          time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.flow = businessflow.NewCampaignFlow(
		campaignRepo, operatorRepo, nil, f.auditRepo,
		f.resolver, f.dispatcher, utils.FixedClock{T: f.now}, nil,
	)
	return f
}

func platformDraft() *models.Campaign {
	return &models.Campaign{
		ID:           100,
		UUID:         uuid.New(),
		Name:         "Spring lane rates",
		OwnerScope:   models.OwnerScopePlatform,
		AudienceType: models.AudiencePlatformCustomersOnly,
		Channel:      models.ChannelEmail,
		Content: models.CampaignContent{Email: &models.EmailContent{
			Subject:     "Spring rates on trans-continental lanes",
			ContentHTML: "<p>Book now</p>",
		}},
		Status: models.CampaignStatusDraft,
	}
}

func companyCampaign(status models.CampaignStatus) *models.Campaign {
	companyID := uint(10)
	return &models.Campaign{
		ID:           200,
		UUID:         uuid.New(),
		Name:         "Repeat booker promo",
		OwnerScope:   models.OwnerScopeCompany,
		CompanyID:    &companyID,
		AudienceType: models.AudienceCompanyPastCustomers,
		Channel:      models.ChannelInApp,
		Content: models.CampaignContent{InApp: &models.InAppContent{
			Title: "Rate drop",
			Body:  "Your usual lane just got cheaper",
		}},
		Status: status,
	}
}

func TestCreateCampaignValidation(t *testing.T) {
	f := newFlowFixture(t)
	ctx := context.Background()
	meta := businessflow.NewClientMetadata("127.0.0.1", "test")

	t.Run("operator not found", func(t *testing.T) {
		_, err := f.flow.CreateCampaign(ctx, &dto.CreateCampaignRequest{OperatorID: missingOperatorID}, meta)
		require.Error(t, err)
		assert.True(t, businessflow.IsOperatorNotFound(err))
	})

	t.Run("operator inactive", func(t *testing.T) {
		_, err := f.flow.CreateCampaign(ctx, &dto.CreateCampaignRequest{OperatorID: inactiveOperatorID}, meta)
		require.Error(t, err)
		assert.True(t, businessflow.IsOperatorInactive(err))
	})

	t.Run("audience type invalid for scope", func(t *testing.T) {
		_, err := f.flow.CreateCampaign(ctx, &dto.CreateCampaignRequest{
			OperatorID:   companyOperatorID,
			Name:         "Promo",
			AudienceType: string(models.AudiencePlatformAllUsers),
			Channel:      string(models.ChannelEmail),
			Content:      &dto.CampaignContentDTO{Email: &dto.EmailContentDTO{Subject: "s", ContentHTML: "b"}},
		}, meta)
		require.Error(t, err)
		assert.True(t, businessflow.IsValidationError(err))
	})

	t.Run("content variant must match channel", func(t *testing.T) {
		_, err := f.flow.CreateCampaign(ctx, &dto.CreateCampaignRequest{
			OperatorID:   platformOperatorID,
			Name:         "Promo",
			AudienceType: string(models.AudiencePlatformAllUsers),
			Channel:      string(models.ChannelEmail),
			Content:      &dto.CampaignContentDTO{InApp: &dto.InAppContentDTO{Title: "t", Body: "b"}},
		}, meta)
		require.Error(t, err)
		assert.True(t, businessflow.IsValidationError(err))
	})

	t.Run("scheduled time in the past", func(t *testing.T) {
		past := f.now.Add(-time.Hour)
		_, err := f.flow.CreateCampaign(ctx, &dto.CreateCampaignRequest{
			OperatorID:   platformOperatorID,
			Name:         "Promo",
			AudienceType: string(models.AudiencePlatformAllUsers),
			Channel:      string(models.ChannelEmail),
			Content:      &dto.CampaignContentDTO{Email: &dto.EmailContentDTO{Subject: "s", ContentHTML: "b"}},
			ScheduledAt:  &past,
		}, meta)
		require.Error(t, err)
		assert.True(t, businessflow.IsValidationError(err))
	})
}

func TestUpdateCampaignGuards(t *testing.T) {
	ctx := context.Background()
	meta := businessflow.NewClientMetadata("127.0.0.1", "test")

	t.Run("requires at least one field", func(t *testing.T) {
		campaign := platformDraft()
		f := newFlowFixture(t, campaign)

		_, err := f.flow.UpdateCampaign(ctx, &dto.UpdateCampaignRequest{
			UUID: campaign.UUID.String(), OperatorID: platformOperatorID,
		}, meta)
		require.Error(t, err)

		var be *businessflow.BusinessError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, "CAMPAIGN_UPDATE_VALIDATION_FAILED", be.Code)
	})

	t.Run("rejects non-draft campaign", func(t *testing.T) {
		campaign := companyCampaign(models.CampaignStatusScheduled)
		f := newFlowFixture(t, campaign)

		_, err := f.flow.UpdateCampaign(ctx, &dto.UpdateCampaignRequest{
			UUID:       campaign.UUID.String(),
			OperatorID: companyOperatorID,
			Name:       utils.ToPtr("New name"),
		}, meta)
		require.Error(t, err)
		assert.True(t, businessflow.IsConflict(err))
	})

	t.Run("company audience type is immutable", func(t *testing.T) {
		campaign := companyCampaign(models.CampaignStatusDraft)
		f := newFlowFixture(t, campaign)

		_, err := f.flow.UpdateCampaign(ctx, &dto.UpdateCampaignRequest{
			UUID:         campaign.UUID.String(),
			OperatorID:   companyOperatorID,
			AudienceType: utils.ToPtr(string(models.AudiencePlatformAllUsers)),
		}, meta)
		require.Error(t, err)
		assert.True(t, businessflow.IsValidationError(err))
	})

	t.Run("channel change without matching content", func(t *testing.T) {
		campaign := platformDraft()
		f := newFlowFixture(t, campaign)

		_, err := f.flow.UpdateCampaign(ctx, &dto.UpdateCampaignRequest{
			UUID:       campaign.UUID.String(),
			OperatorID: platformOperatorID,
			Channel:    utils.ToPtr(string(models.ChannelInApp)),
		}, meta)
		require.Error(t, err)
		assert.True(t, businessflow.IsValidationError(err))
	})

	t.Run("scheduled time must be in the future", func(t *testing.T) {
		campaign := platformDraft()
		f := newFlowFixture(t, campaign)

		past := f.now.Add(-time.Minute)
		_, err := f.flow.UpdateCampaign(ctx, &dto.UpdateCampaignRequest{
			UUID:        campaign.UUID.String(),
			OperatorID:  platformOperatorID,
			ScheduledAt: &past,
		}, meta)
		require.Error(t, err)
		assert.True(t, businessflow.IsValidationError(err))
	})
}

func TestScheduleCampaign(t *testing.T) {
	ctx := context.Background()
	meta := businessflow.NewClientMetadata("127.0.0.1", "test")

	t.Run("success commits the scheduled transition", func(t *testing.T) {
		campaign := platformDraft()
		f := newFlowFixture(t, campaign)

		resp, err := f.flow.ScheduleCampaign(ctx, &dto.ScheduleCampaignRequest{
			UUID:        campaign.UUID.String(),
			OperatorID:  platformOperatorID,
			ScheduledAt: f.now.Add(time.Hour),
		}, meta)
		require.NoError(t, err)
		assert.Equal(t, string(models.CampaignStatusScheduled), resp.Status)

		assert.Equal(t, models.CampaignStatusScheduled, f.campaignRepo.lastTo)
		assert.ElementsMatch(t,
			[]models.CampaignStatus{models.CampaignStatusDraft, models.CampaignStatusScheduled},
			f.campaignRepo.lastFrom)
		assert.Contains(t, f.campaignRepo.lastSet, "scheduled_at")
	})

	t.Run("past schedule time", func(t *testing.T) {
		campaign := platformDraft()
		f := newFlowFixture(t, campaign)

		_, err := f.flow.ScheduleCampaign(ctx, &dto.ScheduleCampaignRequest{
			UUID:        campaign.UUID.String(),
			OperatorID:  platformOperatorID,
			ScheduledAt: f.now.Add(-time.Hour),
		}, meta)
		require.Error(t, err)
		assert.True(t, businessflow.IsValidationError(err))
	})

	t.Run("sending campaign cannot be scheduled", func(t *testing.T) {
		campaign := companyCampaign(models.CampaignStatusSending)
		f := newFlowFixture(t, campaign)

		_, err := f.flow.ScheduleCampaign(ctx, &dto.ScheduleCampaignRequest{
			UUID:        campaign.UUID.String(),
			OperatorID:  companyOperatorID,
			ScheduledAt: f.now.Add(time.Hour),
		}, meta)
		require.Error(t, err)
		assert.True(t, businessflow.IsInvalidTransition(err))
	})

	t.Run("incomplete content blocks scheduling", func(t *testing.T) {
		campaign := platformDraft()
		campaign.Content.Email.Subject = ""
		f := newFlowFixture(t, campaign)

		_, err := f.flow.ScheduleCampaign(ctx, &dto.ScheduleCampaignRequest{
			UUID:        campaign.UUID.String(),
			OperatorID:  platformOperatorID,
			ScheduledAt: f.now.Add(time.Hour),
		}, meta)
		require.Error(t, err)
		assert.True(t, businessflow.IsValidationError(err))
	})

	t.Run("lost race names the winning status", func(t *testing.T) {
		campaign := platformDraft()
		f := newFlowFixture(t, campaign)
		f.campaignRepo.won = false
		f.campaignRepo.winnerStatus = models.CampaignStatusSending

		_, err := f.flow.ScheduleCampaign(ctx, &dto.ScheduleCampaignRequest{
			UUID:        campaign.UUID.String(),
			OperatorID:  platformOperatorID,
			ScheduledAt: f.now.Add(time.Hour),
		}, meta)
		require.Error(t, err)
		assert.True(t, businessflow.IsInvalidTransition(err))

		var ite *businessflow.InvalidTransitionError
		require.ErrorAs(t, err, &ite)
		assert.Equal(t, models.CampaignStatusSending, ite.From)
		assert.Equal(t, models.CampaignStatusScheduled, ite.To)
	})
}

func TestSendCampaignNow(t *testing.T) {
	ctx := context.Background()
	meta := businessflow.NewClientMetadata("127.0.0.1", "test")

	t.Run("kicks the dispatcher synchronously", func(t *testing.T) {
		campaign := companyCampaign(models.CampaignStatusScheduled)
		f := newFlowFixture(t, campaign)

		resp, err := f.flow.SendCampaignNow(ctx, &dto.SendCampaignNowRequest{
			UUID: campaign.UUID.String(), OperatorID: companyOperatorID,
		}, meta)
		require.NoError(t, err)
		assert.Equal(t, string(models.CampaignStatusSending), resp.Status)
		assert.Equal(t, 1, f.dispatcher.calls)
		assert.ElementsMatch(t,
			[]models.CampaignStatus{models.CampaignStatusDraft, models.CampaignStatusScheduled},
			f.dispatcher.lastFrom)
	})

	t.Run("terminal campaign cannot be sent", func(t *testing.T) {
		campaign := companyCampaign(models.CampaignStatusSent)
		f := newFlowFixture(t, campaign)

		_, err := f.flow.SendCampaignNow(ctx, &dto.SendCampaignNowRequest{
			UUID: campaign.UUID.String(), OperatorID: companyOperatorID,
		}, meta)
		require.Error(t, err)
		assert.True(t, businessflow.IsInvalidTransition(err))
		assert.Zero(t, f.dispatcher.calls)
	})

	t.Run("cap exceeded is surfaced with its own code", func(t *testing.T) {
		campaign := companyCampaign(models.CampaignStatusDraft)
		f := newFlowFixture(t, campaign)
		f.dispatcher.started = false
		f.dispatcher.err = businessflow.NewCapExceededError(1500, 1000)

		_, err := f.flow.SendCampaignNow(ctx, &dto.SendCampaignNowRequest{
			UUID: campaign.UUID.String(), OperatorID: companyOperatorID,
		}, meta)
		require.Error(t, err)
		assert.True(t, businessflow.IsCapExceeded(err))

		var be *businessflow.BusinessError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, "CAMPAIGN_CAP_EXCEEDED", be.Code)
	})

	t.Run("lost dispatch race reports an invalid transition", func(t *testing.T) {
		campaign := companyCampaign(models.CampaignStatusScheduled)
		f := newFlowFixture(t, campaign)
		f.dispatcher.started = false

		_, err := f.flow.SendCampaignNow(ctx, &dto.SendCampaignNowRequest{
			UUID: campaign.UUID.String(), OperatorID: companyOperatorID,
		}, meta)
		require.Error(t, err)
		assert.True(t, businessflow.IsInvalidTransition(err))

		var ite *businessflow.InvalidTransitionError
		require.ErrorAs(t, err, &ite)
		assert.Equal(t, models.CampaignStatusSending, ite.To)
	})
}

func TestCancelCampaign(t *testing.T) {
	ctx := context.Background()
	meta := businessflow.NewClientMetadata("127.0.0.1", "test")

	t.Run("cancels a scheduled campaign", func(t *testing.T) {
		campaign := companyCampaign(models.CampaignStatusScheduled)
		f := newFlowFixture(t, campaign)

		resp, err := f.flow.CancelCampaign(ctx, &dto.CancelCampaignRequest{
			UUID: campaign.UUID.String(), OperatorID: companyOperatorID,
		}, meta)
		require.NoError(t, err)
		assert.Equal(t, string(models.CampaignStatusCancelled), resp.Status)
		assert.Equal(t, models.CampaignStatusCancelled, f.campaignRepo.lastTo)
	})

	t.Run("sending campaign cannot be cancelled", func(t *testing.T) {
		campaign := companyCampaign(models.CampaignStatusSending)
		f := newFlowFixture(t, campaign)

		_, err := f.flow.CancelCampaign(ctx, &dto.CancelCampaignRequest{
			UUID: campaign.UUID.String(), OperatorID: companyOperatorID,
		}, meta)
		require.Error(t, err)
		assert.True(t, businessflow.IsInvalidTransition(err))
	})

	t.Run("lost race names the winning status", func(t *testing.T) {
		campaign := companyCampaign(models.CampaignStatusDraft)
		f := newFlowFixture(t, campaign)
		f.campaignRepo.won = false
		f.campaignRepo.winnerStatus = models.CampaignStatusSending

		_, err := f.flow.CancelCampaign(ctx, &dto.CancelCampaignRequest{
			UUID: campaign.UUID.String(), OperatorID: companyOperatorID,
		}, meta)
		require.Error(t, err)
		assert.True(t, businessflow.IsInvalidTransition(err))

		var ite *businessflow.InvalidTransitionError
		require.ErrorAs(t, err, &ite)
		assert.Equal(t, models.CampaignStatusSending, ite.From)
		assert.Equal(t, models.CampaignStatusCancelled, ite.To)
	})
}

func TestDeleteCampaignGuards(t *testing.T) {
	ctx := context.Background()
	meta := businessflow.NewClientMetadata("127.0.0.1", "test")

	for _, status := range []models.CampaignStatus{
		models.CampaignStatusSending,
		models.CampaignStatusSent,
		models.CampaignStatusFailed,
	} {
		t.Run(string(status), func(t *testing.T) {
			campaign := companyCampaign(status)
			f := newFlowFixture(t, campaign)

			_, err := f.flow.DeleteCampaign(ctx, &dto.DeleteCampaignRequest{
				UUID: campaign.UUID.String(), OperatorID: companyOperatorID,
			}, meta)
			require.Error(t, err)
			assert.True(t, businessflow.IsConflict(err))
		})
	}
}

func TestPreviewAudience(t *testing.T) {
	ctx := context.Background()
	meta := businessflow.NewClientMetadata("127.0.0.1", "test")

	t.Run("over cap is reported, never rejected", func(t *testing.T) {
		campaign := companyCampaign(models.CampaignStatusDraft)
		f := newFlowFixture(t, campaign)
		f.resolver.count = 1500

		resp, err := f.flow.PreviewAudience(ctx, &dto.PreviewAudienceRequest{
			UUID: campaign.UUID.String(), OperatorID: companyOperatorID,
		}, meta)
		require.NoError(t, err)
		assert.Equal(t, 1500, resp.TotalRecipients)
		assert.Equal(t, 1000, resp.RecipientCap)
		assert.True(t, resp.OverCap)
	})

	t.Run("platform cap is ten thousand", func(t *testing.T) {
		campaign := platformDraft()
		f := newFlowFixture(t, campaign)
		f.resolver.count = 9999

		resp, err := f.flow.PreviewAudience(ctx, &dto.PreviewAudienceRequest{
			UUID: campaign.UUID.String(), OperatorID: platformOperatorID,
		}, meta)
		require.NoError(t, err)
		assert.Equal(t, 10000, resp.RecipientCap)
		assert.False(t, resp.OverCap)
	})

	t.Run("resolution failure surfaces", func(t *testing.T) {
		campaign := platformDraft()
		f := newFlowFixture(t, campaign)
		f.resolver.err = assert.AnError

		_, err := f.flow.PreviewAudience(ctx, &dto.PreviewAudienceRequest{
			UUID: campaign.UUID.String(), OperatorID: platformOperatorID,
		}, meta)
		require.Error(t, err)

		var be *businessflow.BusinessError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, "AUDIENCE_PREVIEW_FAILED", be.Code)
	})
}

func TestCampaignVisibility(t *testing.T) {
	ctx := context.Background()
	meta := businessflow.NewClientMetadata("127.0.0.1", "test")

	t.Run("platform operator sees company campaigns", func(t *testing.T) {
		campaign := companyCampaign(models.CampaignStatusDraft)
		f := newFlowFixture(t, campaign)

		resp, err := f.flow.GetCampaign(ctx, &dto.GetCampaignRequest{
			UUID: campaign.UUID.String(), OperatorID: platformOperatorID,
		}, meta)
		require.NoError(t, err)
		assert.Equal(t, campaign.UUID.String(), resp.Campaign.UUID)
	})

	t.Run("company operator cannot see another company's campaign", func(t *testing.T) {
		campaign := companyCampaign(models.CampaignStatusDraft)
		f := newFlowFixture(t, campaign)

		_, err := f.flow.GetCampaign(ctx, &dto.GetCampaignRequest{
			UUID: campaign.UUID.String(), OperatorID: otherCompanyOperatorID,
		}, meta)
		require.Error(t, err)
		assert.True(t, businessflow.IsCampaignAccessDenied(err))
	})

	t.Run("company operator cannot see platform campaigns", func(t *testing.T) {
		campaign := platformDraft()
		f := newFlowFixture(t, campaign)

		_, err := f.flow.GetCampaign(ctx, &dto.GetCampaignRequest{
			UUID: campaign.UUID.String(), OperatorID: companyOperatorID,
		}, meta)
		require.Error(t, err)
		assert.True(t, businessflow.IsCampaignAccessDenied(err))
	})

	t.Run("unknown campaign", func(t *testing.T) {
		f := newFlowFixture(t)

		_, err := f.flow.GetCampaign(ctx, &dto.GetCampaignRequest{
			UUID: uuid.New().String(), OperatorID: platformOperatorID,
		}, meta)
		require.Error(t, err)
		assert.True(t, businessflow.IsCampaignNotFound(err))
	})
}

func TestListCampaigns(t *testing.T) {
	ctx := context.Background()
	meta := businessflow.NewClientMetadata("127.0.0.1", "test")

	t.Run("company operator is scoped to its own campaigns", func(t *testing.T) {
		f := newFlowFixture(t)
		f.campaignRepo.total = 3
		f.campaignRepo.listed = []*models.Campaign{companyCampaign(models.CampaignStatusDraft)}

		resp, err := f.flow.ListCampaigns(ctx, &dto.ListCampaignsRequest{
			OperatorID: companyOperatorID, Page: 1, PageSize: 20,
		}, meta)
		require.NoError(t, err)

		require.NotNil(t, f.campaignRepo.lastFilter.CompanyID)
		assert.Equal(t, uint(10), *f.campaignRepo.lastFilter.CompanyID)
		require.NotNil(t, f.campaignRepo.lastFilter.OwnerScope)
		assert.Equal(t, models.OwnerScopeCompany, *f.campaignRepo.lastFilter.OwnerScope)
		assert.Len(t, resp.Items, 1)
		assert.Equal(t, int64(3), resp.Pagination.Total)
		assert.Equal(t, 1, resp.Pagination.TotalPages)
	})

	t.Run("platform operator sees everything", func(t *testing.T) {
		f := newFlowFixture(t)
		f.campaignRepo.total = 45
		f.campaignRepo.listed = nil

		resp, err := f.flow.ListCampaigns(ctx, &dto.ListCampaignsRequest{
			OperatorID: platformOperatorID, Page: 2, PageSize: 20,
		}, meta)
		require.NoError(t, err)

		assert.Nil(t, f.campaignRepo.lastFilter.CompanyID)
		assert.Nil(t, f.campaignRepo.lastFilter.OwnerScope)
		assert.Equal(t, 20, f.campaignRepo.lastOffset)
		assert.Equal(t, 3, resp.Pagination.TotalPages)
	})

	t.Run("rejects invalid paging", func(t *testing.T) {
		f := newFlowFixture(t)

		_, err := f.flow.ListCampaigns(ctx, &dto.ListCampaignsRequest{
			OperatorID: platformOperatorID, Page: 0, PageSize: 20,
		}, meta)
		assert.Error(t, err)

		_, err = f.flow.ListCampaigns(ctx, &dto.ListCampaignsRequest{
			OperatorID: platformOperatorID, Page: 1, PageSize: 500,
		}, meta)
		assert.Error(t, err)
	})

	t.Run("rejects unknown status filter", func(t *testing.T) {
		f := newFlowFixture(t)

		_, err := f.flow.ListCampaigns(ctx, &dto.ListCampaignsRequest{
			OperatorID: platformOperatorID, Page: 1, PageSize: 20,
			Status: utils.ToPtr("archived"),
		}, meta)
		require.Error(t, err)
		assert.True(t, businessflow.IsValidationError(err))
	})
}
