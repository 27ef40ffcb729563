package dispatcher_test

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/freightdeck/campaign-engine/app/dispatcher"
	"github.com/freightdeck/campaign-engine/app/services"
	businessflow "github.com/freightdeck/campaign-engine/business_flow"
	"github.com/freightdeck/campaign-engine/models"
	"github.com/freightdeck/campaign-engine/repository"
	"github.com/freightdeck/campaign-engine/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusUpdate struct {
	from []models.CampaignStatus
	to   models.CampaignStatus
	set  map[string]any
}

type counterBump struct {
	delivered int
	failed    int
}

type fakeCampaignRepo struct {
	repository.CampaignRepository

	mu         sync.Mutex
	won        bool
	updates    []statusUpdate
	counters   []counterBump
	counterErr error
}

func (f *fakeCampaignRepo) UpdateStatusFrom(ctx context.Context, id uint, from []models.CampaignStatus, to models.CampaignStatus, set map[string]any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, statusUpdate{from: from, to: to, set: set})
	return f.won, nil
}

func (f *fakeCampaignRepo) IncrementCounters(ctx context.Context, id uint, delivered, failed int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counterErr != nil {
		return f.counterErr
	}
	f.counters = append(f.counters, counterBump{delivered: delivered, failed: failed})
	return nil
}

type fakeRunRepo struct {
	repository.DispatchRunRepository

	mu    sync.Mutex
	saved []*models.DispatchRun
}

func (f *fakeRunRepo) Save(ctx context.Context, run *models.DispatchRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	run.ID = uint(len(f.saved) + 1)
	f.saved = append(f.saved, run)
	return nil
}

func (f *fakeRunRepo) Update(ctx context.Context, run *models.DispatchRun) error {
	return nil
}

type fakeDeliveryLogRepo struct {
	repository.DeliveryLogRepository

	mu   sync.Mutex
	logs []*models.DeliveryLog
}

func (f *fakeDeliveryLogRepo) SaveBatch(ctx context.Context, logs []*models.DeliveryLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, logs...)
	return nil
}

type fakeResolver struct {
	users []*models.User
	err   error
}

func (f *fakeResolver) Resolve(ctx context.Context, campaign *models.Campaign) ([]*models.User, error) {
	return f.users, f.err
}

func (f *fakeResolver) PreviewCount(ctx context.Context, campaign *models.Campaign) (int, bool, error) {
	return len(f.users), false, f.err
}

type noopSender struct {
	channel models.Channel
}

func (s *noopSender) Channel() models.Channel { return s.channel }

func (s *noopSender) Send(ctx context.Context, campaign *models.Campaign, user *models.User) error {
	return nil
}

// flakySender fails delivery for one recipient and delivers everyone else.
type flakySender struct {
	channel models.Channel
	failFor uint
}

func (s *flakySender) Channel() models.Channel { return s.channel }

func (s *flakySender) Send(ctx context.Context, campaign *models.Campaign, user *models.User) error {
	if user.ID == s.failFor {
		return assert.AnError
	}
	return nil
}

var sendableStatuses = []models.CampaignStatus{
	models.CampaignStatusDraft,
	models.CampaignStatusScheduled,
}

func newDispatcher(campaignRepo *fakeCampaignRepo, resolver *fakeResolver, senders ...services.ChannelSender) *dispatcher.Dispatcher {
	return dispatcher.New(
		campaignRepo, nil, nil, resolver, senders, nil,
		log.New(io.Discard, "", 0),
		utils.FixedClock{T: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		4,
	)
}

func newFullDispatcher(campaignRepo *fakeCampaignRepo, runRepo *fakeRunRepo, logRepo *fakeDeliveryLogRepo, resolver *fakeResolver, senders ...services.ChannelSender) *dispatcher.Dispatcher {
	return dispatcher.New(
		campaignRepo, runRepo, logRepo, resolver, senders, nil,
		log.New(io.Discard, "", 0),
		utils.FixedClock{T: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		4,
	)
}

func emailCampaign(scope models.OwnerScope) *models.Campaign {
	campaign := &models.Campaign{
		ID:         1,
		UUID:       uuid.New(),
		Name:       "Lane promo",
		OwnerScope: scope,
		Channel:    models.ChannelEmail,
		Status:     models.CampaignStatusScheduled,
	}
	if scope == models.OwnerScopeCompany {
		companyID := uint(10)
		campaign.CompanyID = &companyID
		campaign.AudienceType = models.AudienceCompanyPastCustomers
	} else {
		campaign.AudienceType = models.AudiencePlatformAllUsers
	}
	return campaign
}

func TestDispatchRejectsUnknownChannel(t *testing.T) {
	campaignRepo := &fakeCampaignRepo{won: true}
	d := newDispatcher(campaignRepo, &fakeResolver{})

	started, err := d.Dispatch(context.Background(), emailCampaign(models.OwnerScopePlatform), sendableStatuses)
	require.Error(t, err)
	assert.False(t, started)
	assert.Empty(t, campaignRepo.updates)
}

func TestDispatchFailsCampaignOnResolutionError(t *testing.T) {
	campaignRepo := &fakeCampaignRepo{won: true}
	d := newDispatcher(campaignRepo, &fakeResolver{err: assert.AnError}, &noopSender{channel: models.ChannelEmail})

	started, err := d.Dispatch(context.Background(), emailCampaign(models.OwnerScopePlatform), sendableStatuses)
	require.Error(t, err)
	assert.False(t, started)

	require.Len(t, campaignRepo.updates, 1)
	update := campaignRepo.updates[0]
	assert.Equal(t, models.CampaignStatusFailed, update.to)
	assert.Equal(t, sendableStatuses, update.from)
	assert.Contains(t, update.set["failure_reason"], "audience resolution failed")
}

func TestDispatchEnforcesRecipientCap(t *testing.T) {
	users := make([]*models.User, 1001)
	for i := range users {
		users[i] = &models.User{ID: uint(i + 1)}
	}

	campaignRepo := &fakeCampaignRepo{won: true}
	d := newDispatcher(campaignRepo, &fakeResolver{users: users}, &noopSender{channel: models.ChannelEmail})

	started, err := d.Dispatch(context.Background(), emailCampaign(models.OwnerScopeCompany), sendableStatuses)
	assert.False(t, started)
	require.Error(t, err)
	assert.True(t, businessflow.IsCapExceeded(err))

	var capErr *businessflow.CapExceededError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 1001, capErr.Count)
	assert.Equal(t, 1000, capErr.Cap)

	// The campaign is failed with the canonical reason and the over-cap count.
	require.Len(t, campaignRepo.updates, 1)
	update := campaignRepo.updates[0]
	assert.Equal(t, models.CampaignStatusFailed, update.to)
	assert.Equal(t, "recipient count exceeds tier limit", update.set["failure_reason"])
	assert.Equal(t, 1001, update.set["total_recipients"])
}

func TestDispatchDeliversAndFinalizes(t *testing.T) {
	users := make([]*models.User, 5)
	for i := range users {
		users[i] = &models.User{ID: uint(i + 1)}
	}

	campaignRepo := &fakeCampaignRepo{won: true}
	runRepo := &fakeRunRepo{}
	logRepo := &fakeDeliveryLogRepo{}
	d := newFullDispatcher(campaignRepo, runRepo, logRepo, &fakeResolver{users: users},
		&flakySender{channel: models.ChannelEmail, failFor: 3})

	campaign := emailCampaign(models.OwnerScopePlatform)
	started, err := d.Dispatch(context.Background(), campaign, sendableStatuses)
	require.NoError(t, err)
	require.True(t, started)
	d.Wait()

	// Sending transition first, sent finalization last.
	require.Len(t, campaignRepo.updates, 2)
	assert.Equal(t, models.CampaignStatusSending, campaignRepo.updates[0].to)
	assert.Equal(t, 5, campaignRepo.updates[0].set["total_recipients"])

	final := campaignRepo.updates[1]
	assert.Equal(t, models.CampaignStatusSent, final.to)
	assert.Equal(t, []models.CampaignStatus{models.CampaignStatusSending}, final.from)
	assert.Contains(t, final.set, "sent_at")
	assert.NotContains(t, final.set, "failure_reason")

	// The dispatch run snapshots the resolved audience and is closed out.
	require.Len(t, runRepo.saved, 1)
	assert.Len(t, runRepo.saved[0].AudienceIDs, 5)
	assert.Equal(t, campaign.ID, runRepo.saved[0].CampaignID)
	assert.NotNil(t, runRepo.saved[0].FinishedAt)

	// One delivery log per recipient; the flaky recipient fails, the send
	// carries on, and the counters account for every recipient.
	require.Len(t, logRepo.logs, 5)
	delivered, failed := 0, 0
	for _, entry := range logRepo.logs {
		switch entry.Status {
		case models.DeliveryStatusDelivered:
			delivered++
		case models.DeliveryStatusFailed:
			failed++
			assert.Equal(t, uint(3), entry.UserID)
			require.NotNil(t, entry.Error)
		}
	}
	assert.Equal(t, 4, delivered)
	assert.Equal(t, 1, failed)

	countedDelivered, countedFailed := 0, 0
	for _, bump := range campaignRepo.counters {
		countedDelivered += bump.delivered
		countedFailed += bump.failed
	}
	assert.Equal(t, 4, countedDelivered)
	assert.Equal(t, 1, countedFailed)
	assert.Equal(t, 5, countedDelivered+countedFailed)
}

func TestDispatchAccountingLossFailsCampaign(t *testing.T) {
	campaignRepo := &fakeCampaignRepo{won: true, counterErr: assert.AnError}
	runRepo := &fakeRunRepo{}
	logRepo := &fakeDeliveryLogRepo{}
	d := newFullDispatcher(campaignRepo, runRepo, logRepo,
		&fakeResolver{users: []*models.User{{ID: 1}, {ID: 2}}},
		&noopSender{channel: models.ChannelEmail})

	started, err := d.Dispatch(context.Background(), emailCampaign(models.OwnerScopePlatform), sendableStatuses)
	require.NoError(t, err)
	require.True(t, started)
	d.Wait()

	// Counters never made it to the database, so the campaign must not be
	// finalized as sent.
	require.Len(t, campaignRepo.updates, 2)
	final := campaignRepo.updates[1]
	assert.Equal(t, models.CampaignStatusFailed, final.to)
	assert.Equal(t, []models.CampaignStatus{models.CampaignStatusSending}, final.from)
	assert.Contains(t, final.set["failure_reason"], "delivery accounting failed")
}

func TestDispatchLostRaceIsNotAnError(t *testing.T) {
	campaignRepo := &fakeCampaignRepo{won: false}
	d := newDispatcher(campaignRepo, &fakeResolver{users: []*models.User{{ID: 1}}}, &noopSender{channel: models.ChannelEmail})

	started, err := d.Dispatch(context.Background(), emailCampaign(models.OwnerScopePlatform), sendableStatuses)
	require.NoError(t, err)
	assert.False(t, started)

	// Exactly one transition attempt, and no failure written for the loser.
	require.Len(t, campaignRepo.updates, 1)
	assert.Equal(t, models.CampaignStatusSending, campaignRepo.updates[0].to)
}
