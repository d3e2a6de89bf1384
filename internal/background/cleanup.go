package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/mfrancke/seatly/internal/repositories"
)

// CleanupManager periodically closes expired lockouts and removes stale
// login attempts and sessions from the database.
type CleanupManager struct {
	lockouts  *repositories.LockoutRepository
	attempts  *repositories.LoginAttemptRepository
	sessions  *repositories.SessionRepository
	logger    *slog.Logger
	interval  time.Duration
	retention time.Duration
	stopCh    chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(
	lockouts *repositories.LockoutRepository,
	attempts *repositories.LoginAttemptRepository,
	sessions *repositories.SessionRepository,
	logger *slog.Logger,
	interval time.Duration,
	retention time.Duration,
) *CleanupManager {
	return &CleanupManager{
		lockouts:  lockouts,
		attempts:  attempts,
		sessions:  sessions,
		logger:    logger,
		interval:  interval,
		retention: retention,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

// runCleanup runs one maintenance sweep. Each step is independent; a
// failure in one never skips the others.
func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cm.logger.Info("starting maintenance sweep")

	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	closed, err := cm.lockouts.CloseExpired(cleanupCtx)
	if err != nil {
		cm.logger.Error("failed to close expired lockouts", slog.Any("error", err))
	} else if closed > 0 {
		cm.logger.Info("expired lockouts closed", slog.Int64("rows_closed", closed))
	}

	attempts, err := cm.attempts.DeleteExpired(cleanupCtx, cm.retention)
	if err != nil {
		cm.logger.Error("failed to delete stale login attempts", slog.Any("error", err))
	} else if attempts > 0 {
		cm.logger.Info("stale login attempts deleted", slog.Int64("rows_deleted", attempts))
	}

	sessions, err := cm.sessions.DeleteExpired(cleanupCtx)
	if err != nil {
		cm.logger.Error("failed to delete expired sessions", slog.Any("error", err))
	} else if sessions > 0 {
		cm.logger.Info("expired sessions deleted", slog.Int64("rows_deleted", sessions))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
