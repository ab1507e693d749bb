// Package agents provides built-in decision sources. The backtester accepts
// any ports.Agent; Momentum is the reference implementation the CLI wires
// when no external source is plugged in.
package agents

import (
	"context"
	"fmt"
	"math"

	"github.com/alejandrodnm/fundbot/internal/domain"
	"github.com/alejandrodnm/fundbot/internal/ports"
)

// Momentum trades on trailing price momentum: buy strength, exit weakness,
// split the available cash evenly across the bullish tickers.
type Momentum struct {
	data ports.DataProvider

	// Return threshold over the lookback window before a signal fires.
	threshold float64
}

// NewMomentum creates a momentum agent with the given signal threshold
// (e.g. 0.02 for 2% over the lookback window).
func NewMomentum(data ports.DataProvider, threshold float64) *Momentum {
	if threshold <= 0 {
		threshold = 0.02
	}
	return &Momentum{data: data, threshold: threshold}
}

// Decide computes one decision per ticker from the lookback window's price
// action. It never shorts; weak tickers are exited to cash.
func (m *Momentum) Decide(ctx context.Context, req ports.AgentRequest) (domain.AgentOutput, error) {
	out := domain.AgentOutput{
		Decisions: make(map[string]domain.Decision, len(req.Tickers)),
		AnalystSignals: map[string]map[string]domain.AnalystSignal{
			"momentum": make(map[string]domain.AnalystSignal, len(req.Tickers)),
		},
	}

	type view struct {
		ret   float64
		price float64
	}
	views := make(map[string]view, len(req.Tickers))
	bullish := 0

	for _, ticker := range req.Tickers {
		bars, err := m.data.GetPrices(ctx, ticker, req.StartDate, req.EndDate)
		if err != nil {
			return domain.AgentOutput{}, fmt.Errorf("agents.Momentum: prices for %s: %w", ticker, err)
		}
		if len(bars) < 2 {
			views[ticker] = view{}
			continue
		}

		first, last := bars[0].Close, bars[len(bars)-1].Close
		if first <= 0 || last <= 0 {
			views[ticker] = view{}
			continue
		}

		v := view{ret: last/first - 1, price: last}
		views[ticker] = v
		if v.ret > m.threshold {
			bullish++
		}
	}

	// Cash split happens after counting so every bullish ticker gets an
	// equal slice of what's available today.
	for _, ticker := range req.Tickers {
		v := views[ticker]

		signal := "neutral"
		switch {
		case v.price == 0:
			// Not enough data; stay put.
		case v.ret > m.threshold:
			signal = "bullish"
		case v.ret < -m.threshold:
			signal = "bearish"
		}

		out.AnalystSignals["momentum"][ticker] = domain.AnalystSignal{
			Signal:     signal,
			Confidence: confidence(v.ret, m.threshold),
		}

		switch signal {
		case "bullish":
			budget := req.Portfolio.Cash / float64(bullish)
			qty := math.Floor(budget / v.price)
			if qty > 0 {
				out.Decisions[ticker] = domain.Decision{
					Action:    domain.ActionBuy,
					Quantity:  qty,
					Reasoning: fmt.Sprintf("momentum %+.1f%% over window", v.ret*100),
				}
				continue
			}
		case "bearish":
			if held := req.Portfolio.Position(ticker).Long; held > 0 {
				out.Decisions[ticker] = domain.Decision{
					Action:    domain.ActionSell,
					Quantity:  float64(held),
					Reasoning: fmt.Sprintf("momentum %+.1f%% over window", v.ret*100),
				}
				continue
			}
		}

		out.Decisions[ticker] = domain.Decision{Action: domain.ActionHold}
	}

	return out, nil
}

// confidence maps the window return to [0, 100] against the threshold.
func confidence(ret, threshold float64) float64 {
	c := math.Abs(ret) / (threshold * 5) * 100
	return math.Min(c, 100)
}
