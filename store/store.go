/*
Package store persists simulation runs.

PURPOSE:
  Keeps a history of simulations so an analyst can reopen earlier runs
  and drill into their cohorts. The engine itself is stateless; this is
  purely a record of inputs and outputs.

KEY INTERFACES:
  RunStore: Save, load, list, delete and prune runs

RUNS ARE IMMUTABLE:
  A Run is written once. There is no update; a re-run is a new Run
  with a new ID.

IMPLEMENTATIONS:
  - memory.go: In-memory for testing
  - store/sqlite/sqlite.go: SQLite for the server

SEE ALSO:
  - api/handlers.go: Saves a run per successful simulation
*/
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/pricing-engine/format"
	"github.com/warp/pricing-engine/pricing"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrRunNotFound is returned when a referenced run doesn't exist.
	ErrRunNotFound = errors.New("simulation run not found")

	// ErrDuplicateRun is returned when saving a run whose ID already exists.
	ErrDuplicateRun = errors.New("duplicate simulation run")
)

// =============================================================================
// RUN
// =============================================================================

// Run is one recorded simulation.
type Run struct {
	ID              string
	Parameters      pricing.Parameters
	Results         []pricing.MonthResult
	TotalNetRevenue decimal.Decimal
	CreatedAt       time.Time
}

// NewRun records a finished simulation under a fresh ID.
func NewRun(p pricing.Parameters, results []pricing.MonthResult, now time.Time) Run {
	return Run{
		ID:              uuid.NewString(),
		Parameters:      p,
		Results:         results,
		TotalNetRevenue: format.TotalNetRevenue(results),
		CreatedAt:       now.UTC(),
	}
}

// =============================================================================
// RUN STORE
// =============================================================================

// RunStore handles persistence of simulation runs.
type RunStore interface {
	// SaveRun persists a run. Returns ErrDuplicateRun if the ID exists.
	SaveRun(ctx context.Context, run Run) error

	// GetRun returns the run with the given ID or ErrRunNotFound.
	GetRun(ctx context.Context, id string) (*Run, error)

	// ListRuns returns up to limit runs, newest first. limit <= 0 means all.
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// DeleteRun removes a run. Returns ErrRunNotFound if it doesn't exist.
	DeleteRun(ctx context.Context, id string) error

	// PruneRuns deletes all but the newest keep runs and returns how many
	// were removed.
	PruneRuns(ctx context.Context, keep int) (int, error)

	// Reset removes every run.
	Reset(ctx context.Context) error
}
