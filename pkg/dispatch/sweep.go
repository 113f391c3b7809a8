package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper evicts stale instances from an InstanceCache on a cron schedule.
// It bounds cache growth for tenants whose root page is never requested
// again.
type Sweeper struct {
	cache    *InstanceCache
	schedule string
	maxAge   time.Duration
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewSweeper creates a sweeper evicting instances older than maxAge.
// The schedule uses standard five-field cron syntax, for example
// "*/15 * * * *".
func NewSweeper(cache *InstanceCache, schedule string, maxAge time.Duration) *Sweeper {
	return &Sweeper{
		cache:    cache,
		schedule: schedule,
		maxAge:   maxAge,
		cron:     cron.New(),
		logger:   cache.logger.With("component", "dispatch.sweeper"),
	}
}

// Start schedules the sweep. An empty schedule leaves the sweeper idle. The
// sweeper stops when ctx is canceled.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Debug("sweep schedule not configured, skipping sweeper")
		return nil
	}
	if s.maxAge <= 0 {
		return fmt.Errorf("sweep max age must be positive, got %s", s.maxAge)
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}
	if _, err := s.cron.AddFunc(s.schedule, s.RunOnce); err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("cache sweeper started",
		"schedule", s.schedule,
		"max_age", s.maxAge,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// RunOnce performs a single sweep.
func (s *Sweeper) RunOnce() {
	evicted := s.cache.Sweep(s.maxAge)
	if evicted > 0 {
		s.logger.Info("cache sweep completed", "evicted_count", evicted)
	} else {
		s.logger.Debug("cache sweep completed, nothing evicted")
	}
}

// Stop stops the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("cache sweeper stopped")
	}
}

// IsRunning reports whether the sweeper is scheduled.
func (s *Sweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled sweep, or nil when idle.
func (s *Sweeper) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if !s.running || len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
