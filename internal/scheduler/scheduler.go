package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/AI2HU/hotspot/internal/loader"
	"github.com/AI2HU/hotspot/internal/logger"
	"github.com/AI2HU/hotspot/internal/models"
	"github.com/AI2HU/hotspot/internal/services"
)

// Retry configuration constants
const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = 30 * time.Second
)

// Scheduler periodically loads the source, records a snapshot and archives
// its records
type Scheduler struct {
	source     services.RecordSource
	sourceURI  string
	snapshots  *services.SnapshotService
	cronExpr   string
	cron       *cron.Cron
	running    bool
	mu         sync.RWMutex
	refreshMu  sync.Mutex
	maxRetries int
	retryDelay time.Duration
	log        *logger.Logger
}

// New creates a new scheduler
func New(source services.RecordSource, sourceURI string, snapshots *services.SnapshotService, cronExpr string) *Scheduler {
	return &Scheduler{
		source:     source,
		sourceURI:  sourceURI,
		snapshots:  snapshots,
		cronExpr:   cronExpr,
		cron:       cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		log:        logger.Component("scheduler"),
	}
}

// SetRetry overrides how many attempts a refresh gets and the delay between them
func (s *Scheduler) SetRetry(maxRetries int, delay time.Duration) {
	if maxRetries < 1 {
		maxRetries = 1
	}
	s.maxRetries = maxRetries
	s.retryDelay = delay
}

// Start registers the refresh job and starts the cron runner
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	_, err := s.cron.AddFunc(s.cronExpr, func() {
		if _, err := s.RefreshNow(ctx); err != nil {
			s.log.Error("Scheduled refresh failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job %q: %w", s.cronExpr, err)
	}

	s.cron.Start()
	s.running = true

	s.log.Info("Scheduler started with cron expression: %s", s.cronExpr)
	return nil
}

// Stop stops the scheduler and waits for a running refresh to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	<-s.cron.Stop().Done()
	s.running = false

	s.log.Info("Scheduler stopped")
}

// Running reports whether the cron runner is active
func (s *Scheduler) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// NextRun returns the next scheduled refresh, or the zero time when stopped
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running {
		return time.Time{}
	}
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// RefreshNow runs one refresh immediately. Concurrent calls are serialized.
func (s *Scheduler) RefreshNow(ctx context.Context) (*models.Snapshot, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	s.log.Info("Refreshing %s", s.sourceURI)
	records, report, err := s.loadWithRetry(ctx)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.snapshots.Record(ctx, records, report)
	if err != nil {
		return nil, err
	}

	if s.snapshots.HasArchive() {
		if _, err := s.snapshots.Archive(ctx, snapshot.ID, records); err != nil {
			s.log.Error("Snapshot %s recorded but not archived: %v", snapshot.ID, err)
		}
	}

	s.log.Info("Refresh complete: snapshot %s with %d records", snapshot.ID, snapshot.KeptRows)
	return snapshot, nil
}

// loadWithRetry retries only when the source is unavailable or the fetch
// was throttled
func (s *Scheduler) loadWithRetry(ctx context.Context) ([]models.Record, *models.LoadReport, error) {
	var lastErr error

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		records, report, err := s.source.Load(ctx, s.sourceURI)
		if err == nil {
			if attempt > 1 {
				s.log.Info("Load succeeded on attempt %d after %d previous failures", attempt, attempt-1)
			}
			return records, report, nil
		}

		if !errors.Is(err, loader.ErrSourceUnavailable) && !errors.Is(err, loader.ErrThrottled) {
			return nil, nil, err
		}
		lastErr = err
		s.log.Warning("Attempt %d/%d to load %s failed: %v", attempt, s.maxRetries, s.sourceURI, err)

		if attempt < s.maxRetries {
			select {
			case <-ctx.Done():
				return nil, nil, fmt.Errorf("refresh cancelled: %w", ctx.Err())
			case <-time.After(s.retryDelay):
			}
		}
	}

	return nil, nil, fmt.Errorf("failed after %d attempts, last error: %w", s.maxRetries, lastErr)
}
