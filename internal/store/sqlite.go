package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ashureev/alphabet-lab/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS q_values (
		state_key TEXT NOT NULL,
		action TEXT NOT NULL,
		value REAL NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (state_key, action)
	);

	CREATE TABLE IF NOT EXISTS attempts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		state_key TEXT NOT NULL,
		action TEXT NOT NULL,
		reward REAL NOT NULL,
		next_letter TEXT NOT NULL,
		next_mastery INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_attempts_created ON attempts(created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// QValues returns the action-value map for a state key.
func (s *SQLiteStore) QValues(ctx context.Context, stateKey string) (map[string]float64, error) {
	query := `SELECT action, value FROM q_values WHERE state_key = ?`

	rows, err := s.db.QueryContext(ctx, query, stateKey)
	if err != nil {
		return nil, fmt.Errorf("query q values: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close q value rows", "error", closeErr)
		}
	}()

	values := make(map[string]float64)
	for rows.Next() {
		var action string
		var value float64
		if err := rows.Scan(&action, &value); err != nil {
			return nil, fmt.Errorf("scan q value row: %w", err)
		}
		values[action] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate q values: %w", err)
	}

	return values, nil
}

// UpsertQValue writes the value of one (state, action) pair.
func (s *SQLiteStore) UpsertQValue(ctx context.Context, stateKey, action string, value float64) error {
	query := `
	INSERT INTO q_values (state_key, action, value, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(state_key, action) DO UPDATE SET
		value = excluded.value,
		updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query, stateKey, action, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("upsert q value: %w", err)
	}
	return nil
}

// CountQStates returns the number of distinct state keys in the Q-table.
func (s *SQLiteStore) CountQStates(ctx context.Context) (int64, error) {
	var count int64
	query := `SELECT COUNT(DISTINCT state_key) FROM q_values`
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count q states: %w", err)
	}
	return count, nil
}

// RecordAttempt appends one row to the attempt log.
func (s *SQLiteStore) RecordAttempt(ctx context.Context, rec *domain.AttemptRecord) error {
	query := `
	INSERT INTO attempts (state_key, action, reward, next_letter, next_mastery, created_at)
	VALUES (?, ?, ?, ?, ?, ?)`

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, query,
		rec.StateKey, rec.Action, rec.Reward,
		string(rec.NextLetter), int(rec.NextMastery), createdAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}

// AttemptStats summarizes attempt-log rows recorded at or after since.
func (s *SQLiteStore) AttemptStats(ctx context.Context, since time.Time) (*AttemptStats, error) {
	query := `
	SELECT COUNT(*), COALESCE(SUM(reward), 0), COALESCE(SUM(reward > 0), 0)
	FROM attempts WHERE created_at >= ?`

	var stats AttemptStats
	row := s.db.QueryRowContext(ctx, query, since.Unix())
	if err := row.Scan(&stats.Attempts, &stats.RewardSum, &stats.Positive); err != nil {
		return nil, fmt.Errorf("scan attempt stats: %w", err)
	}
	return &stats, nil
}

// PruneAttempts deletes attempt rows older than the retention window.
func (s *SQLiteStore) PruneAttempts(ctx context.Context, retention time.Duration) (int64, error) {
	threshold := time.Now().Add(-retention).Unix()
	query := `DELETE FROM attempts WHERE created_at < ?`
	result, err := s.db.ExecContext(ctx, query, threshold)
	if err != nil {
		return 0, fmt.Errorf("prune attempts: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
