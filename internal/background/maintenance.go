package background

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/BradenHooton/alumninet/internal/metrics"
)

// PendingCounter counts profiles waiting for a moderation decision.
type PendingCounter interface {
	CountPending(ctx context.Context) (int64, error)
}

// Purger drops expired entries from an in-process store.
type Purger interface {
	Purge(ctx context.Context) (int, error)
}

// MaintenanceManager periodically refreshes the pending-members gauge and
// purges the in-process denylist when one is in use.
type MaintenanceManager struct {
	pending  PendingCounter
	purger   Purger
	metrics  *metrics.Metrics
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewMaintenanceManager creates a new maintenance manager. purger may be nil.
func NewMaintenanceManager(
	pending PendingCounter,
	purger Purger,
	m *metrics.Metrics,
	logger *slog.Logger,
	interval time.Duration,
) *MaintenanceManager {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &MaintenanceManager{
		pending:  pending,
		purger:   purger,
		metrics:  m,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs maintenance immediately and then every interval until Stop is
// called or ctx is cancelled.
func (mm *MaintenanceManager) Start(ctx context.Context) {
	ticker := time.NewTicker(mm.interval)
	defer ticker.Stop()

	mm.run(ctx)

	for {
		select {
		case <-ticker.C:
			mm.run(ctx)
		case <-mm.stopCh:
			mm.logger.Info("maintenance manager stopped")
			return
		case <-ctx.Done():
			mm.logger.Info("maintenance manager context cancelled")
			return
		}
	}
}

func (mm *MaintenanceManager) run(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	n, err := mm.pending.CountPending(runCtx)
	if err != nil {
		mm.logger.Error("failed to count pending members", slog.Any("error", err))
	} else {
		mm.metrics.SetPending(n)
	}

	if mm.purger == nil {
		return
	}
	removed, err := mm.purger.Purge(runCtx)
	if err != nil {
		mm.logger.Error("failed to purge denylist", slog.Any("error", err))
		return
	}
	if removed > 0 {
		mm.logger.Info("denylist purge completed", slog.Int("entries_removed", removed))
	}
}

// Stop signals the maintenance manager to stop. Safe to call more than once.
func (mm *MaintenanceManager) Stop() {
	mm.stopOnce.Do(func() { close(mm.stopCh) })
}
