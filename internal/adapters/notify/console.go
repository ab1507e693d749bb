package notify

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/fundbot/internal/domain"
	"github.com/alejandrodnm/fundbot/internal/ports"
)

// Console implementa ports.Notifier.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// NotifyDay imprime las operaciones y la valoración de un día.
func (c *Console) NotifyDay(_ context.Context, rows []ports.DayRow, summary ports.DaySummary) error {
	if c.table {
		c.printDayTable(rows)
	} else {
		c.printDayCompact(rows, summary)
		return nil
	}
	c.printDaySummary(summary)
	return nil
}

// printDayCompact imprime lo esencial en una línea.
func (c *Console) printDayCompact(rows []ports.DayRow, summary ports.DaySummary) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] val $%.2f (%+.2f%%) cash $%.2f", summary.Date,
		summary.TotalValue, summary.ReturnPct, summary.CashBalance)

	for _, row := range rows {
		if row.Action == domain.ActionHold || row.Quantity == 0 {
			continue
		}
		fmt.Fprintf(&sb, " | %s %s %d @$%.2f", row.Ticker, row.Action, row.Quantity, row.Price)
	}

	fmt.Fprintln(c.out, sb.String())
}

// printDayTable imprime una fila por ticker con acción, posición y señales.
func (c *Console) printDayTable(rows []ports.DayRow) {
	if len(rows) == 0 {
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Date", "Ticker", "Action", "Qty", "Price", "Shares", "Pos Value", "Bull", "Bear", "Neutral")

	for _, row := range rows {
		table.Append(
			row.Date,
			row.Ticker,
			strings.ToUpper(string(row.Action)),
			fmt.Sprintf("%d", row.Quantity),
			fmt.Sprintf("$%.2f", row.Price),
			fmt.Sprintf("%d", row.SharesOwned),
			fmt.Sprintf("$%.2f", row.PositionValue),
			fmt.Sprintf("%d", row.BullishCount),
			fmt.Sprintf("%d", row.BearishCount),
			fmt.Sprintf("%d", row.NeutralCount),
		)
	}

	table.Render()
}

// printDaySummary imprime la valoración del portfolio tras el cierre.
func (c *Console) printDaySummary(s ports.DaySummary) {
	fmt.Fprintf(c.out, "  [%s] Total: $%.2f (%+.2f%%) | Cash: $%.2f | Positions: $%.2f",
		s.Date, s.TotalValue, s.ReturnPct, s.CashBalance, s.TotalPositionValue)

	if s.Metrics.SharpeRatio != nil {
		fmt.Fprintf(c.out, " | Sharpe: %.2f", *s.Metrics.SharpeRatio)
	}
	if s.Metrics.MaxDrawdown != nil {
		fmt.Fprintf(c.out, " | MaxDD: %.2f%%", *s.Metrics.MaxDrawdown)
	}
	fmt.Fprintln(c.out)
}

// NotifySummary imprime el informe final del run.
func (c *Console) NotifySummary(_ context.Context, run ports.RunRecord, values []domain.DailyValue) error {
	fmt.Fprintf(c.out, "\n========================================================\n")
	fmt.Fprintf(c.out, "  BACKTEST REPORT — %s\n", strings.Join(run.Tickers, ", "))
	fmt.Fprintf(c.out, "  %s to %s\n", run.StartDate, run.EndDate)
	fmt.Fprintf(c.out, "========================================================\n\n")

	fmt.Fprintf(c.out, "  Initial capital:   $%.2f\n", run.InitialCapital)
	fmt.Fprintf(c.out, "  Final value:       $%.2f\n", run.FinalValue)
	fmt.Fprintf(c.out, "  Total return:      %+.2f%%\n", run.Stats.TotalReturnPct)
	fmt.Fprintf(c.out, "  Realized gains:    $%.2f\n", run.Stats.TotalRealizedGains)

	fmt.Fprintf(c.out, "\n  --- RISK ---\n")
	fmt.Fprintf(c.out, "  Sharpe ratio:      %s\n", floatLabel(run.Metrics.SharpeRatio))
	fmt.Fprintf(c.out, "  Sortino ratio:     %s\n", floatLabel(run.Metrics.SortinoRatio))
	if run.Metrics.MaxDrawdown != nil {
		label := fmt.Sprintf("%.2f%%", *run.Metrics.MaxDrawdown)
		if run.Metrics.MaxDrawdownDate != nil {
			label += " on " + run.Metrics.MaxDrawdownDate.Format("2006-01-02")
		}
		fmt.Fprintf(c.out, "  Max drawdown:      %s\n", label)
	} else {
		fmt.Fprintf(c.out, "  Max drawdown:      none (never below initial peak)\n")
	}

	fmt.Fprintf(c.out, "\n  --- CONSISTENCY ---\n")
	fmt.Fprintf(c.out, "  Win rate:          %.1f%%\n", run.Stats.WinRatePct)
	fmt.Fprintf(c.out, "  Win/loss ratio:    %s\n", ratioLabel(run.Stats.WinLossRatio))
	fmt.Fprintf(c.out, "  Max win streak:    %d days\n", run.Stats.MaxWinStreak)
	fmt.Fprintf(c.out, "  Max loss streak:   %d days\n", run.Stats.MaxLossStreak)

	if len(values) > 0 {
		last := values[len(values)-1]
		fmt.Fprintf(c.out, "\n  --- FINAL EXPOSURE ---\n")
		fmt.Fprintf(c.out, "  Long:              $%.2f\n", last.LongExposure)
		fmt.Fprintf(c.out, "  Short:             $%.2f\n", last.ShortExposure)
		fmt.Fprintf(c.out, "  Gross:             $%.2f\n", last.GrossExposure)
		fmt.Fprintf(c.out, "  Net:               $%.2f\n", last.NetExposure)
		fmt.Fprintf(c.out, "  Long/short ratio:  %s\n", ratioLabel(last.LongShortRatio))
	}

	if c.table && len(values) > 1 {
		c.printValueSeries(values)
	}

	fmt.Fprintln(c.out)
	return nil
}

// printValueSeries imprime la serie diaria completa en tabla.
func (c *Console) printValueSeries(values []domain.DailyValue) {
	fmt.Fprintf(c.out, "\n  --- DAILY VALUES ---\n")

	tbl := tablewriter.NewWriter(c.out)
	tbl.Header("Date", "Value", "Long", "Short", "Gross", "Net")

	for _, v := range values {
		tbl.Append(
			v.Date.Format("2006-01-02"),
			fmt.Sprintf("$%.2f", v.TotalValue),
			fmt.Sprintf("$%.2f", v.LongExposure),
			fmt.Sprintf("$%.2f", v.ShortExposure),
			fmt.Sprintf("$%.2f", v.GrossExposure),
			fmt.Sprintf("$%.2f", v.NetExposure),
		)
	}
	tbl.Render()
}

// --- helpers ---

func floatLabel(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

func ratioLabel(v float64) string {
	if math.IsInf(v, 1) {
		return "INF"
	}
	return fmt.Sprintf("%.2f", v)
}
