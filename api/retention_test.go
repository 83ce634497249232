package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/pricing-engine/pricing"
	"github.com/warp/pricing-engine/store"
)

func seedRuns(t *testing.T, st store.RunStore, n int) []string {
	t.Helper()
	p, err := NewHandler(nil).Factory.ParseJSON([]byte(defaultBody))
	require.NoError(t, err)

	base := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	ids := make([]string, n)
	for i := range ids {
		run := store.NewRun(*p, pricing.Simulate(*p), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, st.SaveRun(context.Background(), run))
		ids[i] = run.ID
	}
	return ids
}

func TestRetention_RunNowKeepsNewest(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			// GIVEN: Five stored runs and a cap of two
			ids := seedRuns(t, st, 5)
			rs := NewRetentionScheduler(st, 2, time.Hour)

			// WHEN: Pruning
			removed := rs.RunNow()

			// THEN: Only the two newest remain
			assert.Equal(t, 3, removed)
			runs, err := st.ListRuns(context.Background(), 0)
			require.NoError(t, err)
			require.Len(t, runs, 2)
			assert.Equal(t, ids[4], runs[0].ID)
			assert.Equal(t, ids[3], runs[1].ID)
		})
	}
}

func TestRetention_StartPrunesImmediately(t *testing.T) {
	st := store.NewMemory()
	seedRuns(t, st, 4)
	rs := NewRetentionScheduler(st, 1, time.Hour)

	rs.Start()
	rs.Stop()

	runs, err := st.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestRetention_DisabledWhenUnlimited(t *testing.T) {
	st := store.NewMemory()
	seedRuns(t, st, 3)
	rs := NewRetentionScheduler(st, 0, time.Hour)

	rs.Start()
	rs.Stop()

	runs, err := st.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}
