/*
retention.go - Run history retention scheduler

PURPOSE:
  Every simulate call adds a run, so an always-on server grows its history
  without bound. The scheduler periodically trims the store to the newest
  MaxRuns runs.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Prunes once immediately on start
  - MaxRuns of 0 disables pruning (the scheduler does not start)

CONFIGURATION:
  - Interval: How often to prune (config prune_interval, default 1 hour)
  - MaxRuns:  Runs to keep (config max_runs, default 500)

USAGE:
  scheduler := NewRetentionScheduler(store, cfg.MaxRuns, cfg.PruneInterval)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - store/store.go: RunStore.PruneRuns
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/pricing-engine/store"
)

// RetentionScheduler caps the size of the run history.
type RetentionScheduler struct {
	Store    store.RunStore
	MaxRuns  int
	Interval time.Duration

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewRetentionScheduler creates a new scheduler.
func NewRetentionScheduler(st store.RunStore, maxRuns int, interval time.Duration) *RetentionScheduler {
	return &RetentionScheduler{
		Store:    st,
		MaxRuns:  maxRuns,
		Interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start begins the scheduler.
func (rs *RetentionScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.MaxRuns <= 0 || rs.Store == nil {
		log.Println("[Retention] Disabled, not starting")
		return
	}
	if rs.ticker != nil {
		return
	}

	rs.ticker = time.NewTicker(rs.Interval)
	rs.wg.Add(1)

	go rs.run(rs.ticker, rs.stop)

	log.Printf("[Retention] Started: keeping %d runs, checking every %v", rs.MaxRuns, rs.Interval)
}

// Stop stops the scheduler and waits for an in-flight prune to finish.
func (rs *RetentionScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		rs.ticker = nil
		rs.stop = make(chan struct{})
		log.Println("[Retention] Stopped")
	}
}

func (rs *RetentionScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer rs.wg.Done()

	rs.RunNow()

	for {
		select {
		case <-ticker.C:
			rs.RunNow()
		case <-stop:
			return
		}
	}
}

// RunNow prunes immediately and returns the number of runs removed.
func (rs *RetentionScheduler) RunNow() int {
	removed, err := rs.Store.PruneRuns(context.Background(), rs.MaxRuns)
	if err != nil {
		log.Printf("[Retention] Error pruning runs: %v", err)
		return 0
	}
	if removed > 0 {
		log.Printf("[Retention] Pruned %d runs", removed)
	}
	return removed
}
