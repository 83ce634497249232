package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/pricing-engine/pricing"
	"github.com/warp/pricing-engine/store"
)

func exampleRun(t *testing.T, at time.Time) store.Run {
	t.Helper()
	p := pricing.Parameters{
		PricingModel:                      pricing.ModelFixedDiscount,
		ListPricePerAdministration:        decimal.NewFromInt(3500),
		NewPatientsPerMonth:               decimal.NewFromInt(100),
		AverageTreatmentDuration:          4,
		AdministrationsPerPatientPerMonth: decimal.NewFromInt(2),
		TimeHorizon:                       4,
		ResponseRateAfterMonth1:           decimal.RequireFromString("0.9"),
		FixedDiscountRate:                 decimal.RequireFromString("0.15"),
	}
	return store.NewRun(p, pricing.Simulate(p), at)
}

func TestNewRun_AssignsIDAndTotal(t *testing.T) {
	a := exampleRun(t, time.Now())
	b := exampleRun(t, time.Now())

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "5950000", a.TotalNetRevenue.String())
	assert.Equal(t, time.UTC, a.CreatedAt.Location())
}

func TestMemory_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	run := exampleRun(t, time.Now())

	require.NoError(t, m.SaveRun(ctx, run))
	assert.ErrorIs(t, m.SaveRun(ctx, run), store.ErrDuplicateRun)

	got, err := m.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Len(t, got.Results, 4)

	require.NoError(t, m.DeleteRun(ctx, run.ID))
	_, err = m.GetRun(ctx, run.ID)
	assert.ErrorIs(t, err, store.ErrRunNotFound)
	assert.ErrorIs(t, m.DeleteRun(ctx, run.ID), store.ErrRunNotFound)
}

func TestMemory_ListNewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	base := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 3; i++ {
		run := exampleRun(t, base.Add(time.Duration(i)*time.Minute))
		ids = append(ids, run.ID)
		require.NoError(t, m.SaveRun(ctx, run))
	}

	runs, err := m.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[0], runs[2].ID)

	runs, err = m.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	require.NoError(t, m.Reset(ctx))
	runs, err = m.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestMemory_PruneKeepsNewest(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	base := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 5; i++ {
		run := exampleRun(t, base.Add(time.Duration(i)*time.Hour))
		ids = append(ids, run.ID)
		require.NoError(t, m.SaveRun(ctx, run))
	}

	removed, err := m.PruneRuns(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	runs, err := m.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[4], runs[0].ID)
	assert.Equal(t, ids[3], runs[1].ID)

	removed, err = m.PruneRuns(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
