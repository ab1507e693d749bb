package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/fundbot/internal/adapters/storage"
	"github.com/alejandrodnm/fundbot/internal/domain"
	"github.com/alejandrodnm/fundbot/internal/ports"
)

func makeRun(id string) ports.RunRecord {
	sharpe := 1.25
	drawdown := -8.4
	ddDate := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	return ports.RunRecord{
		ID:                id,
		Tickers:           []string{"AAPL", "MSFT"},
		StartDate:         "2024-01-02",
		EndDate:           "2024-06-28",
		InitialCapital:    100000,
		MarginRequirement: 0.5,
		FinalValue:        112500,
		Metrics: domain.Metrics{
			SharpeRatio:     &sharpe,
			MaxDrawdown:     &drawdown,
			MaxDrawdownDate: &ddDate,
		},
		Stats: domain.FinalStats{
			TotalReturnPct:     12.5,
			TotalRealizedGains: 8000,
			WinRatePct:         54.2,
			WinLossRatio:       1.3,
			MaxWinStreak:       6,
			MaxLossStreak:      4,
		},
	}
}

func TestSQLiteStorage_SaveAndGetRun(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	want := makeRun("run-1")
	require.NoError(t, db.SaveRun(context.Background(), want))

	got, err := db.GetRun(context.Background(), "run-1")
	require.NoError(t, err)

	assert.Equal(t, want.Tickers, got.Tickers)
	assert.Equal(t, want.StartDate, got.StartDate)
	assert.InDelta(t, 100000, got.InitialCapital, 1e-9)
	assert.InDelta(t, 112500, got.FinalValue, 1e-9)

	require.NotNil(t, got.Metrics.SharpeRatio)
	assert.InDelta(t, 1.25, *got.Metrics.SharpeRatio, 1e-9)
	// Sortino nunca se calculó: debe volver como nil, no como 0
	assert.Nil(t, got.Metrics.SortinoRatio)
	require.NotNil(t, got.Metrics.MaxDrawdownDate)
	assert.Equal(t, "2024-03-15", got.Metrics.MaxDrawdownDate.Format("2006-01-02"))

	assert.InDelta(t, 12.5, got.Stats.TotalReturnPct, 1e-9)
	assert.Equal(t, 6, got.Stats.MaxWinStreak)
}

func TestSQLiteStorage_SaveRunUpserts(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	run := makeRun("run-1")
	require.NoError(t, db.SaveRun(context.Background(), run))

	run.FinalValue = 95000
	run.Stats.TotalReturnPct = -5
	require.NoError(t, db.SaveRun(context.Background(), run))

	got, err := db.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.InDelta(t, 95000, got.FinalValue, 1e-9)
	assert.InDelta(t, -5, got.Stats.TotalReturnPct, 1e-9)
}

func TestSQLiteStorage_GetRun_NotFound(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.GetRun(context.Background(), "missing")
	assert.Error(t, err)
}

func TestSQLiteStorage_DailyValuesRoundTrip(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	d0 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	values := []domain.DailyValue{
		{Date: d0, TotalValue: 100000, LongShortRatio: 2},
		{Date: d0.AddDate(0, 0, 1), TotalValue: 101000, LongExposure: 50000, GrossExposure: 50000, NetExposure: 50000, LongShortRatio: 3},
	}
	require.NoError(t, db.SaveDailyValues(context.Background(), "run-1", values))

	got, err := db.GetDailyValues(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, d0, got[0].Date)
	assert.InDelta(t, 101000, got[1].TotalValue, 1e-9)
	assert.InDelta(t, 50000, got[1].LongExposure, 1e-9)
}

func TestSQLiteStorage_DailyValuesReplaceOnSameDate(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	d := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	require.NoError(t, db.SaveDailyValues(ctx, "run-1", []domain.DailyValue{{Date: d, TotalValue: 100}}))
	require.NoError(t, db.SaveDailyValues(ctx, "run-1", []domain.DailyValue{{Date: d, TotalValue: 200}}))

	got, err := db.GetDailyValues(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 200, got[0].TotalValue, 1e-9)
}

func TestSQLiteStorage_SaveTrades(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	trades := []domain.ExecutedTrade{
		{Ticker: "AAPL", Action: domain.ActionBuy, Filled: 100, Price: 185},
		{Ticker: "MSFT", Action: domain.ActionShort, Filled: 20, Price: 410},
	}
	assert.NoError(t, db.SaveTrades(context.Background(), "run-1", "2024-01-02", trades))

	// slices vacíos no deben tocar la base
	assert.NoError(t, db.SaveTrades(context.Background(), "run-1", "2024-01-03", nil))
}

func TestSQLiteStorage_EmptyDailyValues(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.SaveDailyValues(context.Background(), "run-1", nil))
	got, err := db.GetDailyValues(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Empty(t, got)
}
