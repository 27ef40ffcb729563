// Package scheduler
package scheduler

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	businessflow "github.com/freightdeck/campaign-engine/business_flow"
	"github.com/freightdeck/campaign-engine/models"
	"github.com/freightdeck/campaign-engine/repository"
	"github.com/freightdeck/campaign-engine/utils"
	"gopkg.in/natefinch/lumberjack.v2"
)

// CampaignScheduler periodically sweeps for due campaigns and hands each one
// to the dispatcher. The sweep is idempotent per campaign: the dispatcher's
// guarded transition means a campaign already picked up simply loses the race.
type CampaignScheduler struct {
	campaignRepo repository.CampaignRepository
	dispatcher   businessflow.CampaignDispatcher
	logger       *log.Logger
	clock        utils.Clock
	interval     time.Duration

	// staleTimeout is how long a campaign may sit in sending before the sweep
	// force-fails it as interrupted. Zero disables the stale sweep.
	staleTimeout time.Duration

	wake chan struct{}
}

func NewCampaignScheduler(
	campaignRepo repository.CampaignRepository,
	dispatcher businessflow.CampaignDispatcher,
	logger *log.Logger,
	clock utils.Clock,
	interval time.Duration,
	staleTimeout time.Duration,
	logDir string,
) *CampaignScheduler {
	if interval <= 0 {
		interval = utils.DefaultSweepInterval
	}
	if clock == nil {
		clock = utils.SystemClock{}
	}
	if logger == nil {
		logger = newSchedulerLogger(logDir)
	}

	return &CampaignScheduler{
		campaignRepo: campaignRepo,
		dispatcher:   dispatcher,
		logger:       logger,
		clock:        clock,
		interval:     interval,
		staleTimeout: staleTimeout,
		wake:         make(chan struct{}, 1),
	}
}

// newSchedulerLogger writes to stdout and a size-rotated file under logDir
func newSchedulerLogger(logDir string) *log.Logger {
	if logDir == "" {
		logDir = "data"
	}

	rotated := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "scheduler.log"),
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	mw := io.MultiWriter(os.Stdout, rotated)

	return log.New(mw, "scheduler ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
}

// Start launches the sweep loop in a background goroutine and returns a stop
// function.
func (s *CampaignScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			case <-s.wake:
				s.runOnce(ctx)
			}
		}
	}()

	return cancel
}

// Wake triggers an immediate sweep without waiting for the next tick
func (s *CampaignScheduler) Wake() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *CampaignScheduler) runOnce(ctx context.Context) {
	now := s.clock.Now()

	due, err := s.campaignRepo.ListDue(ctx, now)
	if err != nil {
		s.logger.Printf("scheduler: list due campaigns failed: %v", err)
		return
	}
	if len(due) > 0 {
		s.logger.Printf("scheduler: %d campaigns due", len(due))
	}

	for _, campaign := range due {
		c := campaign
		go func() {
			started, err := s.dispatcher.Dispatch(ctx, c, []models.CampaignStatus{models.CampaignStatusScheduled})
			if err != nil {
				s.logger.Printf("scheduler: dispatch campaign id=%d failed: %v", c.ID, err)
				return
			}
			if started {
				s.logger.Printf("scheduler: campaign id=%d dispatched", c.ID)
			}
		}()
	}

	s.sweepStaleSending(ctx, now)
}

// sweepStaleSending force-fails campaigns stuck in sending since before the
// stale cutoff. A campaign only gets stuck when a previous process crashed
// mid-dispatch, so the counters already persisted stay as they are.
func (s *CampaignScheduler) sweepStaleSending(ctx context.Context, now time.Time) {
	if s.staleTimeout <= 0 {
		return
	}

	cutoff := now.Add(-s.staleTimeout)
	stale, err := s.campaignRepo.ListStaleSending(ctx, cutoff)
	if err != nil {
		s.logger.Printf("scheduler: list stale sending failed: %v", err)
		return
	}

	for _, campaign := range stale {
		won, err := s.campaignRepo.UpdateStatusFrom(ctx, campaign.ID,
			[]models.CampaignStatus{models.CampaignStatusSending}, models.CampaignStatusFailed,
			map[string]any{"failure_reason": "dispatch interrupted", "updated_at": now})
		if err != nil {
			s.logger.Printf("scheduler: fail stale campaign id=%d: %v", campaign.ID, err)
			continue
		}
		if won {
			s.logger.Printf("scheduler: campaign id=%d force-failed after %s in sending", campaign.ID, s.staleTimeout)
		}
	}
}
