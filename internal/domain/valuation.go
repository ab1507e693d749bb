package domain

import "time"

// DailyValue is one day's mark-to-market record. Appended once per simulated
// trading day, never mutated afterwards.
type DailyValue struct {
	Date           time.Time
	TotalValue     float64
	LongExposure   float64
	ShortExposure  float64
	GrossExposure  float64
	NetExposure    float64
	LongShortRatio float64 // +Inf when there is no short exposure
}

// Value computes total mark-to-market equity: cash plus long market value
// minus short market value. An open short is a liability, so its notional
// is subtracted.
func Value(p *Portfolio, prices map[string]float64) float64 {
	total := p.Cash
	for ticker, pos := range p.Positions {
		price := prices[ticker]
		total += float64(pos.Long) * price
		if pos.Short > 0 {
			total -= float64(pos.Short) * price
		}
	}
	return total
}

// Exposures builds the day's valuation record from post-trade positions and
// prices. The long/short ratio is +Inf when short exposure is numerically
// zero.
func Exposures(p *Portfolio, prices map[string]float64, date time.Time) DailyValue {
	var long, short float64
	for ticker, pos := range p.Positions {
		price := prices[ticker]
		long += float64(pos.Long) * price
		short += float64(pos.Short) * price
	}

	ratio := inf
	if short > 1e-9 {
		ratio = long / short
	}

	return DailyValue{
		Date:           date,
		TotalValue:     Value(p, prices),
		LongExposure:   long,
		ShortExposure:  short,
		GrossExposure:  long + short,
		NetExposure:    long - short,
		LongShortRatio: ratio,
	}
}
