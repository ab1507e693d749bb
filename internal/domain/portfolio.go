package domain

// Position is the per-ticker state of the portfolio: open long and short
// lots with their volume-weighted cost bases, plus the margin currently
// pledged against the short lot.
type Position struct {
	Long            int     // shares held long
	Short           int     // shares held short
	LongCostBasis   float64 // VWAP entry price of the open long lot
	ShortCostBasis  float64 // VWAP entry price of the open short lot
	ShortMarginUsed float64 // cash pledged against this ticker's short lot
}

// RealizedGain is the cumulative realized P&L for one ticker, split by side.
// Pure bookkeeping: the cash effect of each close is already in Portfolio.Cash.
type RealizedGain struct {
	Long  float64
	Short float64
}

// Portfolio is the aggregate account state. It is mutated exclusively by
// ExecuteTrade; everything else reads it.
type Portfolio struct {
	Cash              float64
	MarginRequirement float64 // fraction of short proceeds pledged as margin, [0,1]
	MarginUsed        float64 // sum of all positions' ShortMarginUsed
	Positions         map[string]*Position
	RealizedGains     map[string]*RealizedGain
}

// NewPortfolio creates a portfolio with the given starting cash and margin
// requirement, seeding zeroed position and realized-gains entries per ticker.
func NewPortfolio(tickers []string, initialCapital, marginRequirement float64) *Portfolio {
	p := &Portfolio{
		Cash:              initialCapital,
		MarginRequirement: marginRequirement,
		Positions:         make(map[string]*Position, len(tickers)),
		RealizedGains:     make(map[string]*RealizedGain, len(tickers)),
	}
	for _, t := range tickers {
		p.Positions[t] = &Position{}
		p.RealizedGains[t] = &RealizedGain{}
	}
	return p
}

// Position returns the position entry for ticker, creating a zeroed one if
// the ticker was not seeded at construction.
func (p *Portfolio) Position(ticker string) *Position {
	pos, ok := p.Positions[ticker]
	if !ok {
		pos = &Position{}
		p.Positions[ticker] = pos
	}
	return pos
}

// realizedGain returns the realized-gains entry for ticker, creating it if
// needed.
func (p *Portfolio) realizedGain(ticker string) *RealizedGain {
	rg, ok := p.RealizedGains[ticker]
	if !ok {
		rg = &RealizedGain{}
		p.RealizedGains[ticker] = rg
	}
	return rg
}

// TotalRealizedGains sums realized P&L across all tickers and both sides.
func (p *Portfolio) TotalRealizedGains() float64 {
	var total float64
	for _, rg := range p.RealizedGains {
		total += rg.Long + rg.Short
	}
	return total
}

// Snapshot returns a deep copy of the portfolio. The backtest driver hands
// snapshots to the agent so it can never mutate live account state.
func (p *Portfolio) Snapshot() *Portfolio {
	cp := &Portfolio{
		Cash:              p.Cash,
		MarginRequirement: p.MarginRequirement,
		MarginUsed:        p.MarginUsed,
		Positions:         make(map[string]*Position, len(p.Positions)),
		RealizedGains:     make(map[string]*RealizedGain, len(p.RealizedGains)),
	}
	for t, pos := range p.Positions {
		c := *pos
		cp.Positions[t] = &c
	}
	for t, rg := range p.RealizedGains {
		c := *rg
		cp.RealizedGains[t] = &c
	}
	return cp
}
