package store

import (
	"context"
	"log/slog"
	"time"
)

// StartMaintenanceWorker runs a background goroutine that periodically
// prunes aged attempt-log rows and logs Q-table growth.
func StartMaintenanceWorker(ctx context.Context, repo Repository, interval, retention time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("Maintenance worker started", "interval", interval, "retention", retention)

		for {
			select {
			case <-ticker.C:
				sweep(ctx, repo, retention)
			case <-ctx.Done():
				slog.Info("Maintenance worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func sweep(ctx context.Context, repo Repository, retention time.Duration) {
	pruned, err := repo.PruneAttempts(ctx, retention)
	if err != nil {
		slog.Error("Maintenance worker failed to prune attempts", "error", err)
		return
	}
	if pruned > 0 {
		slog.Info("Maintenance worker pruned aged attempts", "count", pruned)
	}

	states, err := repo.CountQStates(ctx)
	if err != nil {
		slog.Error("Maintenance worker failed to count q states", "error", err)
		return
	}
	slog.Debug("Q-table size", "states", states)
}
