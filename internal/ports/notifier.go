package ports

import (
	"context"

	"github.com/alejandrodnm/fundbot/internal/domain"
)

// DayRow is the reporting line for one ticker on one trading day.
type DayRow struct {
	Date          string
	Ticker        string
	Action        domain.Action
	Quantity      int // shares actually filled
	Price         float64
	SharesOwned   int // net shares: long - short
	PositionValue float64
	BullishCount  int
	BearishCount  int
	NeutralCount  int
}

// DaySummary is the reporting line that closes each trading day.
type DaySummary struct {
	Date               string
	TotalValue         float64
	ReturnPct          float64
	CashBalance        float64
	TotalPositionValue float64
	Metrics            domain.Metrics
}

// Notifier presenta el progreso del backtest al usuario.
type Notifier interface {
	// NotifyDay muestra las filas por ticker y el resumen de un día.
	NotifyDay(ctx context.Context, rows []DayRow, summary DaySummary) error

	// NotifySummary muestra el informe final del run completo.
	NotifySummary(ctx context.Context, run RunRecord, values []domain.DailyValue) error
}
