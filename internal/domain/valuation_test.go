package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValue_LongOnly(t *testing.T) {
	p := NewPortfolio([]string{"AAPL"}, 100000, 0)
	ExecuteTrade(p, "AAPL", ActionBuy, 100, 50)

	total := Value(p, map[string]float64{"AAPL": 60})
	assert.InDelta(t, 95000+6000, total, 1e-9)
}

func TestValue_ShortIsLiability(t *testing.T) {
	p := NewPortfolio([]string{"AAPL"}, 100000, 0.5)
	ExecuteTrade(p, "AAPL", ActionShort, 100, 50)

	// cash 102500, short liability 100*55
	total := Value(p, map[string]float64{"AAPL": 55})
	assert.InDelta(t, 102500-5500, total, 1e-9)
}

func TestValue_MissingPriceValuesAtZero(t *testing.T) {
	p := NewPortfolio([]string{"AAPL"}, 100000, 0)
	ExecuteTrade(p, "AAPL", ActionBuy, 100, 50)

	total := Value(p, map[string]float64{})
	assert.InDelta(t, 95000, total, 1e-9)
}

func TestExposures(t *testing.T) {
	p := NewPortfolio([]string{"AAPL", "MSFT"}, 100000, 0.5)
	ExecuteTrade(p, "AAPL", ActionBuy, 100, 50)
	ExecuteTrade(p, "MSFT", ActionShort, 20, 100)

	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	dv := Exposures(p, map[string]float64{"AAPL": 60, "MSFT": 110}, date)

	assert.Equal(t, date, dv.Date)
	assert.InDelta(t, 6000, dv.LongExposure, 1e-9)
	assert.InDelta(t, 2200, dv.ShortExposure, 1e-9)
	assert.InDelta(t, 8200, dv.GrossExposure, 1e-9)
	assert.InDelta(t, 3800, dv.NetExposure, 1e-9)
	assert.InDelta(t, 6000.0/2200.0, dv.LongShortRatio, 1e-9)
	assert.InDelta(t, Value(p, map[string]float64{"AAPL": 60, "MSFT": 110}), dv.TotalValue, 1e-9)
}

func TestExposures_NoShortsRatioIsInf(t *testing.T) {
	p := NewPortfolio([]string{"AAPL"}, 100000, 0)
	ExecuteTrade(p, "AAPL", ActionBuy, 10, 50)

	dv := Exposures(p, map[string]float64{"AAPL": 50}, time.Now())
	assert.True(t, math.IsInf(dv.LongShortRatio, 1))
}
