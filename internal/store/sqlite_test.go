package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/ashureev/alphabet-lab/internal/domain"
)

func newTestStore(t *testing.T) Repository {
	t.Helper()
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return repo
}

func TestQValueRoundTrip(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	if err := repo.UpsertQValue(ctx, "A:0", "practice_current", 0.5); err != nil {
		t.Fatalf("UpsertQValue failed: %v", err)
	}
	if err := repo.UpsertQValue(ctx, "A:0", "move_next", -0.25); err != nil {
		t.Fatalf("UpsertQValue failed: %v", err)
	}

	values, err := repo.QValues(ctx, "A:0")
	if err != nil {
		t.Fatalf("QValues failed: %v", err)
	}
	if len(values) != 2 {
		t.Fatalf("Expected 2 values, got %d", len(values))
	}
	if math.Abs(values["practice_current"]-0.5) > 1e-9 {
		t.Errorf("Expected 0.5, got %v", values["practice_current"])
	}
	if math.Abs(values["move_next"]+0.25) > 1e-9 {
		t.Errorf("Expected -0.25, got %v", values["move_next"])
	}
}

func TestQValueUpsertOverwrites(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	if err := repo.UpsertQValue(ctx, "B:1", "move_next", 0.1); err != nil {
		t.Fatalf("UpsertQValue failed: %v", err)
	}
	if err := repo.UpsertQValue(ctx, "B:1", "move_next", 0.9); err != nil {
		t.Fatalf("UpsertQValue failed: %v", err)
	}

	values, err := repo.QValues(ctx, "B:1")
	if err != nil {
		t.Fatalf("QValues failed: %v", err)
	}
	if math.Abs(values["move_next"]-0.9) > 1e-9 {
		t.Errorf("Expected 0.9, got %v", values["move_next"])
	}
}

func TestQValuesUnknownStateIsEmpty(t *testing.T) {
	repo := newTestStore(t)

	values, err := repo.QValues(context.Background(), "Q:2")
	if err != nil {
		t.Fatalf("QValues failed: %v", err)
	}
	if len(values) != 0 {
		t.Errorf("Expected empty map, got %v", values)
	}
}

func TestCountQStates(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"A:0", "A:0", "B:1", "C:2"} {
		if err := repo.UpsertQValue(ctx, key, "practice_current", 1); err != nil {
			t.Fatalf("UpsertQValue failed: %v", err)
		}
	}

	count, err := repo.CountQStates(ctx)
	if err != nil {
		t.Fatalf("CountQStates failed: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 3 distinct states, got %d", count)
	}
}

func TestAttemptLogStatsAndPrune(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	old := &domain.AttemptRecord{
		StateKey:    "A:0",
		Action:      "practice_current",
		Reward:      1,
		NextLetter:  "A",
		NextMastery: domain.MasteryPracticing,
		CreatedAt:   time.Now().Add(-48 * time.Hour),
	}
	fresh := &domain.AttemptRecord{
		StateKey:    "A:1",
		Action:      "practice_current",
		Reward:      -1,
		NextLetter:  "A",
		NextMastery: domain.MasteryPracticing,
	}
	if err := repo.RecordAttempt(ctx, old); err != nil {
		t.Fatalf("RecordAttempt failed: %v", err)
	}
	if err := repo.RecordAttempt(ctx, fresh); err != nil {
		t.Fatalf("RecordAttempt failed: %v", err)
	}

	stats, err := repo.AttemptStats(ctx, time.Now().Add(-72*time.Hour))
	if err != nil {
		t.Fatalf("AttemptStats failed: %v", err)
	}
	if stats.Attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", stats.Attempts)
	}
	if math.Abs(stats.RewardSum) > 1e-9 {
		t.Errorf("Expected reward sum 0, got %v", stats.RewardSum)
	}
	if stats.Positive != 1 {
		t.Errorf("Expected 1 positive attempt, got %d", stats.Positive)
	}

	pruned, err := repo.PruneAttempts(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("PruneAttempts failed: %v", err)
	}
	if pruned != 1 {
		t.Errorf("Expected 1 pruned row, got %d", pruned)
	}

	stats, err = repo.AttemptStats(ctx, time.Now().Add(-72*time.Hour))
	if err != nil {
		t.Fatalf("AttemptStats failed: %v", err)
	}
	if stats.Attempts != 1 {
		t.Errorf("Expected 1 remaining attempt, got %d", stats.Attempts)
	}
}
