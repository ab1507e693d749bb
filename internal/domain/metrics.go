package domain

import (
	"math"
	"time"
)

const (
	// Annualized risk-free rate used for excess returns, spread over 252
	// trading days.
	annualRiskFree     = 0.0434
	tradingDaysPerYear = 252

	// Standard deviations below this are treated as numerically zero.
	stdevEpsilon = 1e-12
)

var inf = math.Inf(1)

// Metrics holds the rolling risk/return statistics over the daily valuation
// series. Pointer fields stay nil until enough data points exist to compute
// them meaningfully.
type Metrics struct {
	SharpeRatio     *float64
	SortinoRatio    *float64
	MaxDrawdown     *float64   // negative percentage, 0 for a curve that never dips
	MaxDrawdownDate *time.Time // nil when the curve never went below its peak
	LongShortRatio  *float64
	GrossExposure   *float64
	NetExposure     *float64
}

// FinalStats are the post-hoc statistics that only make sense once the run
// is complete: streaks, win rate and total return.
type FinalStats struct {
	TotalReturnPct     float64
	TotalRealizedGains float64
	WinRatePct         float64
	WinLossRatio       float64 // +Inf with winners and no losers
	MaxWinStreak       int     // longest run of strictly positive daily returns
	MaxLossStreak      int     // longest run of non-positive daily returns
}

// UpdateMetrics refreshes the rolling metrics from the full accumulated
// valuation series. It recomputes from scratch every call; at backtest
// scale simplicity beats a streaming algorithm. Series with fewer than two
// daily returns leave the metrics untouched.
func UpdateMetrics(m *Metrics, values []DailyValue) {
	returns := dailyReturns(values)
	if len(returns) < 2 {
		return
	}

	excess := make([]float64, len(returns))
	rf := annualRiskFree / tradingDaysPerYear
	for i, r := range returns {
		excess[i] = r - rf
	}

	meanExcess := mean(excess)
	stdExcess := sampleStdev(excess)

	sharpe := 0.0
	if stdExcess > stdevEpsilon {
		sharpe = math.Sqrt(tradingDaysPerYear) * meanExcess / stdExcess
	}
	m.SharpeRatio = &sharpe

	var negative []float64
	for _, e := range excess {
		if e < 0 {
			negative = append(negative, e)
		}
	}
	sortino := 0.0
	if downside := sampleStdev(negative); downside > stdevEpsilon {
		sortino = math.Sqrt(tradingDaysPerYear) * meanExcess / downside
	} else if meanExcess > 0 {
		sortino = inf
	}
	m.SortinoRatio = &sortino

	drawdown, at := maxDrawdown(values)
	m.MaxDrawdown = &drawdown
	m.MaxDrawdownDate = at

	last := values[len(values)-1]
	m.LongShortRatio = &last.LongShortRatio
	m.GrossExposure = &last.GrossExposure
	m.NetExposure = &last.NetExposure
}

// FinalizeStats computes the end-of-run statistics over the complete series.
func FinalizeStats(values []DailyValue, initialCapital, realizedGains float64) FinalStats {
	stats := FinalStats{TotalRealizedGains: realizedGains}
	if len(values) == 0 || initialCapital <= 0 {
		return stats
	}

	final := values[len(values)-1].TotalValue
	stats.TotalReturnPct = (final/initialCapital - 1) * 100

	returns := dailyReturns(values)

	var wins, winStreak, lossStreak int
	var sumWin, sumLoss float64
	var nWin, nLoss int
	for _, r := range returns {
		if r > 0 {
			wins++
			winStreak++
			lossStreak = 0
			sumWin += r
			nWin++
		} else {
			lossStreak++
			winStreak = 0
			if r < 0 {
				sumLoss += -r
				nLoss++
			}
		}
		if winStreak > stats.MaxWinStreak {
			stats.MaxWinStreak = winStreak
		}
		if lossStreak > stats.MaxLossStreak {
			stats.MaxLossStreak = lossStreak
		}
	}

	totalDays := len(values) - 1
	if totalDays < 1 {
		totalDays = 1
	}
	stats.WinRatePct = float64(wins) / float64(totalDays) * 100

	switch {
	case nLoss > 0:
		stats.WinLossRatio = (sumWin / float64(max(nWin, 1))) / (sumLoss / float64(nLoss))
	case nWin > 0:
		stats.WinLossRatio = inf
	}

	return stats
}

// dailyReturns builds r[t] = v[t]/v[t-1] - 1. The first record has no
// return, so the result is one element shorter than the series.
func dailyReturns(values []DailyValue) []float64 {
	if len(values) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		prev := values[i-1].TotalValue
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, values[i].TotalValue/prev-1)
	}
	return returns
}

// maxDrawdown returns the worst percentage decline from the running equity
// peak (≤ 0) and the date it bottomed, or nil when the curve never dipped.
func maxDrawdown(values []DailyValue) (float64, *time.Time) {
	var peak, worst float64
	var worstDate *time.Time
	for i, v := range values {
		if i == 0 || v.TotalValue > peak {
			peak = v.TotalValue
		}
		if peak == 0 {
			continue
		}
		dd := (v.TotalValue - peak) / peak
		if dd < worst {
			worst = dd
			d := v.Date
			worstDate = &d
		}
	}
	return worst * 100, worstDate
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStdev is the n-1 denominator standard deviation. Fewer than two
// samples yield 0.
func sampleStdev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}
