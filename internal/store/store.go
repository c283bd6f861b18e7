// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/ashureev/alphabet-lab/internal/domain"
)

// Repository defines the interface for persisting policy state on the
// service side. The session controller itself persists nothing.
type Repository interface {
	// QValues returns the action-value map for a state key. Unknown
	// state keys return an empty map, not an error.
	QValues(ctx context.Context, stateKey string) (map[string]float64, error)

	// UpsertQValue writes the value of one (state, action) pair.
	UpsertQValue(ctx context.Context, stateKey, action string, value float64) error

	// CountQStates returns the number of distinct state keys in the
	// Q-table.
	CountQStates(ctx context.Context) (int64, error)

	// RecordAttempt appends one row to the attempt log.
	RecordAttempt(ctx context.Context, rec *domain.AttemptRecord) error

	// AttemptStats summarizes attempt-log rows recorded at or after the
	// given time.
	AttemptStats(ctx context.Context, since time.Time) (*AttemptStats, error)

	// PruneAttempts deletes attempt rows older than the retention window
	// and returns how many were removed.
	PruneAttempts(ctx context.Context, retention time.Duration) (int64, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}

// AttemptStats is an aggregate over the attempt log.
type AttemptStats struct {
	Attempts  int64   `json:"attempts"`
	RewardSum float64 `json:"reward_sum"`
	Positive  int64   `json:"positive"`
}
