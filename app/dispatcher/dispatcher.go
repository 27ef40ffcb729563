// Package dispatcher drives campaign delivery: it wins the sending transition,
// fans recipient sends out over a bounded worker pool, and finalizes the
// campaign when every recipient has been processed.
package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/freightdeck/campaign-engine/app/services"
	businessflow "github.com/freightdeck/campaign-engine/business_flow"
	"github.com/freightdeck/campaign-engine/models"
	"github.com/freightdeck/campaign-engine/repository"
	"github.com/freightdeck/campaign-engine/utils"
	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	campaignsDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_dispatches_total",
			Help: "Campaign dispatch attempts by outcome",
		},
		[]string{"outcome"},
	)

	recipientSendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_recipient_sends_total",
			Help: "Per-recipient send results by channel and status",
		},
		[]string{"channel", "status"},
	)

	dispatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "campaign_dispatch_duration_seconds",
			Help:    "Wall time from sending transition to campaign finalization",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Delivery results are flushed to the database in batches. Counter increments
// ride in the same flush so a crash loses at most one batch. A failed flush is
// retried before the loss is surfaced to finalization.
const (
	flushBatchSize  = 100
	flushAttempts   = 3
	flushRetryDelay = 250 * time.Millisecond
)

// Dispatcher implements the campaign delivery pipeline
type Dispatcher struct {
	campaignRepo    repository.CampaignRepository
	runRepo         repository.DispatchRunRepository
	deliveryLogRepo repository.DeliveryLogRepository
	resolver        businessflow.AudienceResolver
	senders         map[models.Channel]services.ChannelSender
	db              *gorm.DB
	logger          *log.Logger
	clock           utils.Clock
	concurrency     int

	wg sync.WaitGroup
}

// New creates a dispatcher. Senders are indexed by the channel they deliver.
func New(
	campaignRepo repository.CampaignRepository,
	runRepo repository.DispatchRunRepository,
	deliveryLogRepo repository.DeliveryLogRepository,
	resolver businessflow.AudienceResolver,
	senders []services.ChannelSender,
	db *gorm.DB,
	logger *log.Logger,
	clock utils.Clock,
	concurrency int,
) *Dispatcher {
	if concurrency <= 0 {
		concurrency = utils.DefaultDispatchConcurrency
	}
	if clock == nil {
		clock = utils.SystemClock{}
	}
	if logger == nil {
		logger = log.Default()
	}

	byChannel := make(map[models.Channel]services.ChannelSender, len(senders))
	for _, sender := range senders {
		byChannel[sender.Channel()] = sender
	}

	return &Dispatcher{
		campaignRepo:    campaignRepo,
		runRepo:         runRepo,
		deliveryLogRepo: deliveryLogRepo,
		resolver:        resolver,
		senders:         byChannel,
		db:              db,
		logger:          logger,
		clock:           clock,
		concurrency:     concurrency,
	}
}

// Dispatch re-resolves the audience, enforces the scope cap, and commits the
// sending transition from one of the expected source statuses. It returns
// started=false without error when a concurrent actor won the transition.
// Recipient fan-out continues in the background after a successful return.
func (d *Dispatcher) Dispatch(ctx context.Context, campaign *models.Campaign, from []models.CampaignStatus) (bool, error) {
	sender, ok := d.senders[campaign.Channel]
	if !ok {
		return false, fmt.Errorf("no sender registered for channel %s", campaign.Channel)
	}

	users, err := d.resolver.Resolve(ctx, campaign)
	if err != nil {
		reason := fmt.Sprintf("audience resolution failed: %v", err)
		d.failFrom(ctx, campaign.ID, from, reason, 0)
		campaignsDispatchedTotal.WithLabelValues("resolution_failed").Inc()
		return false, fmt.Errorf("resolve audience for campaign %s: %w", campaign.UUID, err)
	}

	count := len(users)
	cap := campaign.OwnerScope.RecipientCap()
	if count > cap {
		// The over-cap count is recorded on the failed campaign so the
		// operator can see why a scheduled send never went out.
		d.failFrom(ctx, campaign.ID, from, "recipient count exceeds tier limit", count)
		campaignsDispatchedTotal.WithLabelValues("cap_exceeded").Inc()
		d.logger.Printf("dispatcher: campaign %s failed cap check: %d > %d", campaign.UUID, count, cap)
		return false, businessflow.NewCapExceededError(count, cap)
	}

	now := d.clock.Now()
	won, err := d.campaignRepo.UpdateStatusFrom(ctx, campaign.ID, from, models.CampaignStatusSending,
		map[string]any{"total_recipients": count, "started_at": now, "updated_at": now})
	if err != nil {
		return false, fmt.Errorf("commit sending transition for campaign %s: %w", campaign.UUID, err)
	}
	if !won {
		// Another sweep or a send-now call got there first.
		return false, nil
	}

	contentJSON, _ := json.Marshal(campaign.Content)
	audienceIDs := make(pq.Int64Array, 0, count)
	for _, user := range users {
		audienceIDs = append(audienceIDs, int64(user.ID))
	}

	run := &models.DispatchRun{
		CampaignID:  campaign.ID,
		AudienceIDs: audienceIDs,
		ContentJSON: contentJSON,
		StartedAt:   now,
	}
	if err := repository.WithTransaction(ctx, d.db, func(txCtx context.Context) error {
		return d.runRepo.Save(txCtx, run)
	}); err != nil {
		d.failFrom(ctx, campaign.ID, []models.CampaignStatus{models.CampaignStatusSending},
			fmt.Sprintf("dispatch bookkeeping failed: %v", err), count)
		campaignsDispatchedTotal.WithLabelValues("failed").Inc()
		return false, fmt.Errorf("persist dispatch run for campaign %s: %w", campaign.UUID, err)
	}

	d.logger.Printf("dispatcher: campaign %s sending to %d recipients (concurrency %d)", campaign.UUID, count, d.concurrency)

	d.wg.Add(1)
	// Delivery must run to completion even if the triggering request's
	// context ends; there is no mid-dispatch cancellation.
	go d.fanOut(context.Background(), campaign, run, sender, users)

	return true, nil
}

// Wait blocks until all in-flight dispatches have finalized. Used during
// graceful shutdown.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

type deliveryResult struct {
	userID  uint
	sendErr error
}

func (d *Dispatcher) fanOut(ctx context.Context, campaign *models.Campaign, run *models.DispatchRun, sender services.ChannelSender, users []*models.User) {
	defer d.wg.Done()
	start := time.Now()

	jobs := make(chan *models.User)
	results := make(chan deliveryResult)

	var workers sync.WaitGroup
	for i := 0; i < d.concurrency; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for user := range jobs {
				results <- deliveryResult{userID: user.ID, sendErr: sender.Send(ctx, campaign, user)}
			}
		}()
	}

	go func() {
		for _, user := range users {
			jobs <- user
		}
		close(jobs)
		workers.Wait()
		close(results)
	}()

	pending := make([]*models.DeliveryLog, 0, flushBatchSize)
	delivered, failed := 0, 0
	var accountingErr error
	for result := range results {
		entry := &models.DeliveryLog{
			CampaignID:    campaign.ID,
			DispatchRunID: run.ID,
			UserID:        result.userID,
			Channel:       campaign.Channel,
			Status:        models.DeliveryStatusDelivered,
			CreatedAt:     d.clock.Now(),
		}
		if result.sendErr != nil {
			entry.Status = models.DeliveryStatusFailed
			entry.Error = utils.ToPtr(result.sendErr.Error())
			failed++
		} else {
			delivered++
		}
		recipientSendsTotal.WithLabelValues(string(campaign.Channel), string(entry.Status)).Inc()

		pending = append(pending, entry)
		if len(pending) >= flushBatchSize {
			if err := d.flush(ctx, campaign.ID, pending, delivered, failed); err != nil {
				accountingErr = err
			}
			pending = pending[:0]
			delivered, failed = 0, 0
		}
	}
	if len(pending) > 0 || delivered > 0 || failed > 0 {
		if err := d.flush(ctx, campaign.ID, pending, delivered, failed); err != nil {
			accountingErr = err
		}
	}

	d.finalize(ctx, campaign, run, accountingErr)
	dispatchDuration.Observe(time.Since(start).Seconds())
}

// flush persists one batch of delivery logs and bumps the campaign counters in
// the same transaction, so counters survive a crash mid-dispatch. It returns
// an error only once the retry budget is exhausted.
func (d *Dispatcher) flush(ctx context.Context, campaignID uint, logs []*models.DeliveryLog, delivered, failed int) error {
	var err error
	for attempt := 1; attempt <= flushAttempts; attempt++ {
		if attempt > 1 {
			time.Sleep(flushRetryDelay)
		}

		err = repository.WithTransaction(ctx, d.db, func(txCtx context.Context) error {
			if len(logs) > 0 {
				if err := d.deliveryLogRepo.SaveBatch(txCtx, logs); err != nil {
					return err
				}
			}
			return d.campaignRepo.IncrementCounters(txCtx, campaignID, delivered, failed)
		})
		if err == nil {
			return nil
		}
		d.logger.Printf("dispatcher: flush attempt %d/%d failed for campaign id=%d: %v", attempt, flushAttempts, campaignID, err)
	}

	return err
}

func (d *Dispatcher) finalize(ctx context.Context, campaign *models.Campaign, run *models.DispatchRun, accountingErr error) {
	now := d.clock.Now()

	run.FinishedAt = &now
	if err := d.runRepo.Update(ctx, run); err != nil {
		d.logger.Printf("dispatcher: finish dispatch run id=%d failed: %v", run.ID, err)
	}

	if accountingErr != nil {
		// The persisted counters no longer cover every recipient; a sent
		// verdict would freeze that discrepancy, so the campaign fails with
		// the reason instead.
		d.failFrom(ctx, campaign.ID, []models.CampaignStatus{models.CampaignStatusSending},
			fmt.Sprintf("delivery accounting failed: %v", accountingErr), 0)
		campaignsDispatchedTotal.WithLabelValues("accounting_failed").Inc()
		d.logger.Printf("dispatcher: campaign %s failed: delivery accounting lost: %v", campaign.UUID, accountingErr)
		return
	}

	won, err := d.campaignRepo.UpdateStatusFrom(ctx, campaign.ID,
		[]models.CampaignStatus{models.CampaignStatusSending}, models.CampaignStatusSent,
		map[string]any{"sent_at": now, "updated_at": now})
	if err != nil {
		d.logger.Printf("dispatcher: finalize campaign %s failed: %v", campaign.UUID, err)
		return
	}
	if !won {
		// Only the stale-sending sweep can move a campaign out from under an
		// active dispatch; log and leave its verdict in place.
		d.logger.Printf("dispatcher: campaign %s no longer sending at finalization", campaign.UUID)
		return
	}

	campaignsDispatchedTotal.WithLabelValues("sent").Inc()
	d.logger.Printf("dispatcher: campaign %s sent", campaign.UUID)
}

// failFrom commits a failed transition with the given reason. Losing the race
// is fine; whoever won has already decided the campaign's fate.
func (d *Dispatcher) failFrom(ctx context.Context, campaignID uint, from []models.CampaignStatus, reason string, totalRecipients int) {
	now := d.clock.Now()
	set := map[string]any{"failure_reason": reason, "updated_at": now}
	if totalRecipients > 0 {
		set["total_recipients"] = totalRecipients
	}

	if _, err := d.campaignRepo.UpdateStatusFrom(ctx, campaignID, from, models.CampaignStatusFailed, set); err != nil {
		d.logger.Printf("dispatcher: fail transition for campaign id=%d: %v", campaignID, err)
	}
}
