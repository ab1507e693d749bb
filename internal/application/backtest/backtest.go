// Package backtest drives the day-by-day portfolio simulation: price
// resolution, agent invocation, trade execution, valuation and metrics.
package backtest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/fundbot/internal/domain"
	"github.com/alejandrodnm/fundbot/internal/ports"
)

const (
	prefetchMetricsLimit = 10
	prefetchRecordsLimit = 1000
	// Days of history the prefetch pulls in front of the run, so the agent's
	// lookback window is always warm.
	prefetchPriceYears = 1

	// Metrics are noise until a few daily returns exist.
	minDaysForMetrics = 4
)

// Config holds the parameters of one backtest run.
type Config struct {
	Tickers           []string
	StartDate         time.Time
	EndDate           time.Time
	InitialCapital    float64
	MarginRequirement float64
	LookbackDays      int
}

// Result is everything one run produces.
type Result struct {
	RunID     string
	Values    []domain.DailyValue
	Metrics   domain.Metrics
	Stats     domain.FinalStats
	Portfolio *domain.Portfolio
}

// Backtester runs the daily simulation loop. Days are strictly sequential:
// each day's decisions observe the portfolio state the previous day left
// behind, so there is no intra-run concurrency to manage.
type Backtester struct {
	cfg      Config
	agent    ports.Agent
	data     ports.DataProvider
	store    ports.RunStorage // optional
	notifier ports.Notifier   // optional

	runID     string
	portfolio *domain.Portfolio
	values    []domain.DailyValue
	metrics   domain.Metrics
}

// New creates a Backtester. store and notifier may be nil; the run then
// keeps everything in memory and reports nothing.
func New(cfg Config, agent ports.Agent, data ports.DataProvider, store ports.RunStorage, notifier ports.Notifier) *Backtester {
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 30
	}
	return &Backtester{
		cfg:       cfg,
		agent:     agent,
		data:      data,
		store:     store,
		notifier:  notifier,
		runID:     uuid.New().String(),
		portfolio: domain.NewPortfolio(cfg.Tickers, cfg.InitialCapital, cfg.MarginRequirement),
	}
}

// Run executes the backtest over every business day in the configured
// range. Days with missing price data (or a failing agent) are skipped with
// the prior valuation carried forward; only a cancelled context ends the
// run early, and only at the day boundary, so state is never half-applied.
func (b *Backtester) Run(ctx context.Context) (*Result, error) {
	dates := tradingDays(b.cfg.StartDate, b.cfg.EndDate)
	if len(dates) == 0 {
		return nil, fmt.Errorf("backtest.Run: no trading days between %s and %s",
			b.cfg.StartDate.Format("2006-01-02"), b.cfg.EndDate.Format("2006-01-02"))
	}

	b.prefetch(ctx, dates[len(dates)-1])

	// Seed the series with the starting capital so the first real day has a
	// well-defined return baseline.
	seedDate := dates[0]
	if dates[0].After(b.cfg.StartDate) {
		seedDate = dates[0].AddDate(0, 0, -1)
	}
	b.values = append(b.values, domain.Exposures(b.portfolio, nil, seedDate))

	slog.Info("backtest starting",
		"run_id", b.runID,
		"tickers", strings.Join(b.cfg.Tickers, ","),
		"days", len(dates),
		"capital", b.cfg.InitialCapital,
		"margin_requirement", b.cfg.MarginRequirement,
	)

	for _, date := range dates {
		// Cancellation checkpoint: between days the portfolio is always in a
		// consistent state, so this is the only safe place to stop.
		if err := ctx.Err(); err != nil {
			slog.Warn("backtest cancelled", "run_id", b.runID, "date", date.Format("2006-01-02"))
			return b.finish(context.WithoutCancel(ctx)), err
		}

		b.runDay(ctx, date)
	}

	return b.finish(ctx), nil
}

// runDay processes one trading day end to end.
func (b *Backtester) runDay(ctx context.Context, date time.Time) {
	dateStr := date.Format("2006-01-02")
	lookbackStart := date.AddDate(0, 0, -b.cfg.LookbackDays).Format("2006-01-02")

	prices, ok := b.resolvePrices(ctx, date)
	if !ok {
		slog.Warn("skipping day: missing price data", "date", dateStr)
		b.carryForward(date)
		return
	}

	output, err := b.agent.Decide(ctx, ports.AgentRequest{
		Tickers:   b.cfg.Tickers,
		StartDate: lookbackStart,
		EndDate:   dateStr,
		Portfolio: b.portfolio.Snapshot(),
	})
	if err != nil {
		// A transient decision-source failure should not kill a multi-month
		// run; treat it like a missing-data day.
		slog.Warn("skipping day: agent error", "date", dateStr, "err", err)
		b.carryForward(date)
		return
	}

	executed := make([]domain.ExecutedTrade, 0, len(b.cfg.Tickers))
	for _, ticker := range b.cfg.Tickers {
		decision, found := output.Decisions[ticker]
		if !found {
			decision = domain.Decision{Action: domain.ActionHold}
		}
		filled := domain.ExecuteTrade(b.portfolio, ticker, decision.Action, decision.Quantity, prices[ticker])
		executed = append(executed, domain.ExecutedTrade{
			Ticker: ticker,
			Action: decision.Action,
			Filled: filled,
			Price:  prices[ticker],
		})
	}

	dv := domain.Exposures(b.portfolio, prices, date)
	b.values = append(b.values, dv)

	if len(b.values) > minDaysForMetrics-1 {
		domain.UpdateMetrics(&b.metrics, b.values)
	}

	b.persistDay(ctx, dateStr, dv, executed)
	b.notifyDay(ctx, dateStr, prices, output, executed, dv)
}

// resolvePrices fetches each ticker's close for the day. One missing ticker
// makes the whole day unusable: trades against a stale price would corrupt
// the accounting.
func (b *Backtester) resolvePrices(ctx context.Context, date time.Time) (map[string]float64, bool) {
	prevStr := date.AddDate(0, 0, -1).Format("2006-01-02")
	dateStr := date.Format("2006-01-02")

	prices := make(map[string]float64, len(b.cfg.Tickers))
	for _, ticker := range b.cfg.Tickers {
		bars, err := b.data.GetPrices(ctx, ticker, prevStr, dateStr)
		if err != nil {
			slog.Warn("price fetch failed", "ticker", ticker, "date", dateStr, "err", err)
			return nil, false
		}
		if len(bars) == 0 {
			return nil, false
		}
		close := bars[len(bars)-1].Close
		if close <= 0 {
			return nil, false
		}
		prices[ticker] = close
	}
	return prices, true
}

// carryForward appends a copy of the last valuation under the new date. The
// portfolio did not change, so neither did its value or exposures.
func (b *Backtester) carryForward(date time.Time) {
	last := b.values[len(b.values)-1]
	last.Date = date
	b.values = append(b.values, last)
	b.persistDay(context.Background(), date.Format("2006-01-02"), last, nil)
}

// prefetch warms the provider's cache for the whole range up front: prices
// a year back of the run's end, plus fundamentals, insider trades and news.
// Failures are logged and ignored; the daily loop re-fetches as needed.
func (b *Backtester) prefetch(ctx context.Context, end time.Time) {
	start := b.cfg.StartDate.Format("2006-01-02")
	endStr := end.Format("2006-01-02")
	priceStart := end.AddDate(-prefetchPriceYears, 0, 0).Format("2006-01-02")

	slog.Info("prefetching data", "from", priceStart, "to", endStr)
	began := time.Now()

	for _, ticker := range b.cfg.Tickers {
		if _, err := b.data.GetPrices(ctx, ticker, priceStart, endStr); err != nil {
			slog.Warn("prefetch prices failed", "ticker", ticker, "err", err)
		}
		if _, err := b.data.GetFinancialMetrics(ctx, ticker, endStr, prefetchMetricsLimit); err != nil {
			slog.Warn("prefetch financial metrics failed", "ticker", ticker, "err", err)
		}
		if _, err := b.data.GetInsiderTrades(ctx, ticker, start, endStr, prefetchRecordsLimit); err != nil {
			slog.Warn("prefetch insider trades failed", "ticker", ticker, "err", err)
		}
		if _, err := b.data.GetCompanyNews(ctx, ticker, start, endStr, prefetchRecordsLimit); err != nil {
			slog.Warn("prefetch news failed", "ticker", ticker, "err", err)
		}
	}

	slog.Info("prefetch complete", "took", time.Since(began).Round(time.Millisecond))
}

// persistDay stores the day's valuation and fills, if storage is wired.
func (b *Backtester) persistDay(ctx context.Context, date string, dv domain.DailyValue, executed []domain.ExecutedTrade) {
	if b.store == nil {
		return
	}
	if err := b.store.SaveDailyValues(ctx, b.runID, []domain.DailyValue{dv}); err != nil {
		slog.Warn("persist daily value failed", "date", date, "err", err)
	}

	var fills []domain.ExecutedTrade
	for _, t := range executed {
		if t.Filled > 0 {
			fills = append(fills, t)
		}
	}
	if err := b.store.SaveTrades(ctx, b.runID, date, fills); err != nil {
		slog.Warn("persist trades failed", "date", date, "err", err)
	}
}

// notifyDay builds the per-ticker reporting rows plus the day summary.
func (b *Backtester) notifyDay(
	ctx context.Context,
	date string,
	prices map[string]float64,
	output domain.AgentOutput,
	executed []domain.ExecutedTrade,
	dv domain.DailyValue,
) {
	if b.notifier == nil {
		return
	}

	rows := make([]ports.DayRow, 0, len(executed))
	for _, t := range executed {
		pos := b.portfolio.Position(t.Ticker)
		bullish, bearish, neutral := countSignals(output.AnalystSignals, t.Ticker)
		rows = append(rows, ports.DayRow{
			Date:          date,
			Ticker:        t.Ticker,
			Action:        t.Action,
			Quantity:      t.Filled,
			Price:         t.Price,
			SharesOwned:   pos.Long - pos.Short,
			PositionValue: float64(pos.Long)*prices[t.Ticker] - float64(pos.Short)*prices[t.Ticker],
			BullishCount:  bullish,
			BearishCount:  bearish,
			NeutralCount:  neutral,
		})
	}

	summary := ports.DaySummary{
		Date:               date,
		TotalValue:         dv.TotalValue,
		ReturnPct:          (dv.TotalValue/b.cfg.InitialCapital - 1) * 100,
		CashBalance:        b.portfolio.Cash,
		TotalPositionValue: dv.TotalValue - b.portfolio.Cash,
		Metrics:            b.metrics,
	}

	if err := b.notifier.NotifyDay(ctx, rows, summary); err != nil {
		slog.Warn("notifier error", "date", date, "err", err)
	}
}

// finish computes the post-hoc statistics, persists the run header and
// emits the final report.
func (b *Backtester) finish(ctx context.Context) *Result {
	domain.UpdateMetrics(&b.metrics, b.values)
	stats := domain.FinalizeStats(b.values, b.cfg.InitialCapital, b.portfolio.TotalRealizedGains())

	result := &Result{
		RunID:     b.runID,
		Values:    b.values,
		Metrics:   b.metrics,
		Stats:     stats,
		Portfolio: b.portfolio,
	}

	run := ports.RunRecord{
		ID:                b.runID,
		Tickers:           b.cfg.Tickers,
		StartDate:         b.cfg.StartDate.Format("2006-01-02"),
		EndDate:           b.cfg.EndDate.Format("2006-01-02"),
		InitialCapital:    b.cfg.InitialCapital,
		MarginRequirement: b.cfg.MarginRequirement,
		FinalValue:        finalValue(b.values),
		Metrics:           b.metrics,
		Stats:             stats,
	}

	if b.store != nil {
		if err := b.store.SaveRun(ctx, run); err != nil {
			slog.Warn("persist run failed", "run_id", b.runID, "err", err)
		}
	}
	if b.notifier != nil {
		if err := b.notifier.NotifySummary(ctx, run, b.values); err != nil {
			slog.Warn("notifier error on summary", "err", err)
		}
	}

	return result
}

func finalValue(values []domain.DailyValue) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1].TotalValue
}

func countSignals(signals map[string]map[string]domain.AnalystSignal, ticker string) (bullish, bearish, neutral int) {
	for _, byTicker := range signals {
		sig, ok := byTicker[ticker]
		if !ok {
			continue
		}
		switch strings.ToLower(sig.Signal) {
		case "bullish":
			bullish++
		case "bearish":
			bearish++
		case "neutral":
			neutral++
		}
	}
	return bullish, bearish, neutral
}

// tradingDays expands [start, end] into business days (Mon-Fri). Market
// holidays show up as missing-data days and are skipped by the loop.
func tradingDays(start, end time.Time) []time.Time {
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
			continue
		default:
			days = append(days, d)
		}
	}
	return days
}
