package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/backdesk/backdesk/internal/store"
)

// HousekeepingService periodically deletes spent and stale challenges so the
// challenges table doesn't grow without bound.
type HousekeepingService struct {
	Store     store.Store
	Logger    *slog.Logger
	Interval  time.Duration
	Retention time.Duration // how long challenges are kept after issuance

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService builds the background cleaner. Interval defaults to
// 1 hour, retention to 24 hours.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval, retention time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention <= 0 {
		retention = 24 * time.Hour
	}

	return &HousekeepingService{
		Store:     st,
		Logger:    logger,
		Interval:  interval,
		Retention: retention,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress cleanup finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) cleanup() {
	ctx := context.Background()
	cutoff := time.Now().Add(-s.Retention)

	deleted, err := s.Store.Challenges().DeleteCreatedBefore(ctx, cutoff)
	if err != nil {
		s.Logger.Error("challenge cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		s.Logger.Info("challenge cleanup", "deleted", deleted)
	}
}
