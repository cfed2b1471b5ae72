package web

import (
	"context"
	"time"

	"product-advisor/web/services"

	"go.uber.org/zap"
)

// CleanupService drops idle session transcripts on a fixed interval.
type CleanupService struct {
	store  *services.TranscriptStore
	logger *zap.Logger
}

// NewCleanupService creates a new cleanup service instance
func NewCleanupService(store *services.TranscriptStore, logger *zap.Logger) *CleanupService {
	return &CleanupService{
		store:  store,
		logger: logger,
	}
}

// CleanupStaleSessions removes transcripts idle for longer than maxAge and
// returns how many were removed.
func (cs *CleanupService) CleanupStaleSessions(maxAge time.Duration) int {
	cs.logger.Debug("Starting stale session cleanup",
		zap.Duration("max_age", maxAge),
		zap.Int("sessions", cs.store.Sessions()))

	removed := cs.store.Sweep(maxAge)
	if removed > 0 {
		cs.logger.Info("Stale session cleanup completed",
			zap.Int("sessions_deleted", removed),
			zap.Int("sessions_remaining", cs.store.Sessions()))
	}
	return removed
}

// Run sweeps every interval until ctx is cancelled.
func (cs *CleanupService) Run(ctx context.Context, interval, maxAge time.Duration) {
	if interval <= 0 || maxAge <= 0 {
		cs.logger.Warn("Session cleanup disabled",
			zap.Duration("interval", interval),
			zap.Duration("max_age", maxAge))
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cs.CleanupStaleSessions(maxAge)
		case <-ctx.Done():
			cs.logger.Debug("Session cleanup stopped")
			return
		}
	}
}
