package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPortfolio_SeedsTickers(t *testing.T) {
	p := NewPortfolio([]string{"AAPL", "MSFT"}, 50000, 0.5)

	assert.InDelta(t, 50000, p.Cash, 1e-9)
	assert.InDelta(t, 0.5, p.MarginRequirement, 1e-9)
	require.Contains(t, p.Positions, "AAPL")
	require.Contains(t, p.Positions, "MSFT")
	assert.Zero(t, p.Positions["AAPL"].Long)
	require.Contains(t, p.RealizedGains, "AAPL")
}

func TestPortfolio_PositionLazilyCreates(t *testing.T) {
	p := NewPortfolio(nil, 1000, 0)

	pos := p.Position("NVDA")
	require.NotNil(t, pos)
	assert.Same(t, pos, p.Position("NVDA"))
}

func TestPortfolio_TotalRealizedGains(t *testing.T) {
	p := NewPortfolio([]string{"AAPL", "MSFT"}, 100000, 0.5)

	ExecuteTrade(p, "AAPL", ActionBuy, 100, 50)
	ExecuteTrade(p, "AAPL", ActionSell, 100, 60) // +1000 long
	ExecuteTrade(p, "MSFT", ActionShort, 10, 100)
	ExecuteTrade(p, "MSFT", ActionCover, 10, 80) // +200 short

	assert.InDelta(t, 1200, p.TotalRealizedGains(), 1e-9)
}

func TestPortfolio_SnapshotIsolation(t *testing.T) {
	p := NewPortfolio([]string{"AAPL"}, 100000, 0.5)
	ExecuteTrade(p, "AAPL", ActionBuy, 100, 50)

	snap := p.Snapshot()

	// mutating the snapshot must never reach the live portfolio
	snap.Cash = 0
	snap.Position("AAPL").Long = 999
	snap.RealizedGains["AAPL"].Long = 12345

	assert.InDelta(t, 95000, p.Cash, 1e-9)
	assert.Equal(t, 100, p.Positions["AAPL"].Long)
	assert.InDelta(t, 0, p.RealizedGains["AAPL"].Long, 1e-9)
}

func TestParseAction(t *testing.T) {
	assert.Equal(t, ActionBuy, ParseAction("buy"))
	assert.Equal(t, ActionBuy, ParseAction(" BUY "))
	assert.Equal(t, ActionCover, ParseAction("Cover"))
	assert.Equal(t, ActionHold, ParseAction("hold"))
	assert.Equal(t, ActionHold, ParseAction("yolo"))
	assert.Equal(t, ActionHold, ParseAction(""))
}
