/*
Package sqlite provides a SQLite-backed implementation of store.RunStore.

PURPOSE:
  Persists simulation runs for the HTTP server. In production the same
  patterns apply to PostgreSQL with minor SQL dialect differences.

KEY TABLES:
  simulation_runs: One row per run. Parameters and results are stored as
                   JSON documents; decimals are encoded as strings so no
                   precision is lost on the way back.

INDEXES:
  - idx_runs_created_at: Newest-first listing (hot path)
  - idx_runs_model:      Filtering by pricing model

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In-memory databases are pinned to a
  single connection so every query sees the same database.

WAL MODE:
  File databases are opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  st, err := sqlite.New("./data/pricing.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

  run := store.NewRun(params, results, time.Now())
  err = st.SaveRun(ctx, run)

SEE ALSO:
  - store/store.go: RunStore interface
  - store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/pricing-engine/store"
)

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements store.RunStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Compile-time check that Store implements store.RunStore
var _ store.RunStore = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	dsn := dbPath + "?_foreign_keys=on&_journal_mode=WAL"
	if dbPath == ":memory:" {
		dsn = dbPath
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	st := &Store{db: db}
	if err := st.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return st, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS simulation_runs (
		id TEXT PRIMARY KEY,
		pricing_model TEXT NOT NULL,
		time_horizon INTEGER NOT NULL,
		parameters_json TEXT NOT NULL,
		results_json TEXT NOT NULL,
		total_net_revenue TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at
		ON simulation_runs(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_model
		ON simulation_runs(pricing_model);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RUN STORE
// =============================================================================

// SaveRun inserts a run. Runs are never updated.
func (s *Store) SaveRun(ctx context.Context, run store.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	paramsJSON, err := json.Marshal(run.Parameters)
	if err != nil {
		return fmt.Errorf("failed to encode parameters: %w", err)
	}
	resultsJSON, err := json.Marshal(run.Results)
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}

	query := `
		INSERT INTO simulation_runs
			(id, pricing_model, time_horizon, parameters_json, results_json, total_net_revenue, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		run.ID, string(run.Parameters.PricingModel), run.Parameters.TimeHorizon,
		string(paramsJSON), string(resultsJSON), run.TotalNetRevenue.String(),
		run.CreatedAt.UTC().Format(timeLayout),
	)
	if isUniqueConstraintError(err) {
		return store.ErrDuplicateRun
	}
	return err
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (*store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, parameters_json, results_json, total_net_revenue, created_at
		FROM simulation_runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns runs newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// SQLite treats a negative LIMIT as no limit
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, parameters_json, results_json, total_net_revenue, created_at
		FROM simulation_runs
		ORDER BY created_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM simulation_runs WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrRunNotFound
	}
	return nil
}

// PruneRuns keeps the newest keep runs and deletes the rest.
func (s *Store) PruneRuns(ctx context.Context, keep int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keep < 0 {
		keep = 0
	}

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM simulation_runs
		WHERE id NOT IN (
			SELECT id FROM simulation_runs
			ORDER BY created_at DESC, id
			LIMIT ?
		)`, keep)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// Reset clears all runs (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM simulation_runs")
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (store.Run, error) {
	var (
		run                      store.Run
		paramsJSON, resultsJSON  string
		totalNetRevenue, created string
	)

	if err := sc.Scan(&run.ID, &paramsJSON, &resultsJSON, &totalNetRevenue, &created); err != nil {
		return run, err
	}

	if err := json.Unmarshal([]byte(paramsJSON), &run.Parameters); err != nil {
		return run, fmt.Errorf("failed to decode parameters of run %s: %w", run.ID, err)
	}
	if err := json.Unmarshal([]byte(resultsJSON), &run.Results); err != nil {
		return run, fmt.Errorf("failed to decode results of run %s: %w", run.ID, err)
	}

	var err error
	if run.TotalNetRevenue, err = decimal.NewFromString(totalNetRevenue); err != nil {
		return run, fmt.Errorf("failed to decode total of run %s: %w", run.ID, err)
	}
	if run.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return run, fmt.Errorf("failed to decode created_at of run %s: %w", run.ID, err)
	}
	return run, nil
}

func isUniqueConstraintError(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		se.ExtendedCode == sqlite3.ErrConstraintUnique
}
