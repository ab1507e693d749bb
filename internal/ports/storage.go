package ports

import (
	"context"

	"github.com/alejandrodnm/fundbot/internal/domain"
)

// RunRecord identifies one backtest run and its final results.
type RunRecord struct {
	ID                string
	Tickers           []string
	StartDate         string
	EndDate           string
	InitialCapital    float64
	MarginRequirement float64
	FinalValue        float64
	Metrics           domain.Metrics
	Stats             domain.FinalStats
}

// RunStorage persists backtest runs for later comparison.
type RunStorage interface {
	// SaveRun upserts the run header and final results.
	SaveRun(ctx context.Context, run RunRecord) error

	// SaveDailyValues persists the valuation series for a run.
	SaveDailyValues(ctx context.Context, runID string, values []domain.DailyValue) error

	// SaveTrades persists the executed trades for a run.
	SaveTrades(ctx context.Context, runID string, date string, trades []domain.ExecutedTrade) error

	// GetRun loads a run header by ID.
	GetRun(ctx context.Context, runID string) (RunRecord, error)

	// GetDailyValues loads the valuation series for a run, oldest first.
	GetDailyValues(ctx context.Context, runID string) ([]domain.DailyValue, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
