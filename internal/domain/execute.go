package domain

// ExecuteTrade applies one trade decision to the portfolio and returns the
// number of shares actually filled. Only whole shares trade; a request the
// account cannot fully afford degrades to the largest affordable fill (or
// zero) instead of failing. Business-rule shortfalls are therefore never
// errors: callers inspect the returned quantity.
//
// Cash can never go negative and sells/covers can never exceed the open
// position.
func ExecuteTrade(p *Portfolio, ticker string, action Action, quantity float64, price float64) int {
	if quantity <= 0 || price <= 0 {
		return 0
	}

	shares := int(quantity) // whole shares only
	if shares <= 0 {
		return 0
	}
	pos := p.Position(ticker)

	switch action {
	case ActionBuy:
		return executeBuy(p, pos, shares, price)
	case ActionSell:
		return executeSell(p, pos, p.realizedGain(ticker), shares, price)
	case ActionShort:
		return executeShort(p, pos, shares, price)
	case ActionCover:
		return executeCover(p, pos, p.realizedGain(ticker), shares, price)
	default:
		// hold, or anything unrecognized
		return 0
	}
}

func executeBuy(p *Portfolio, pos *Position, shares int, price float64) int {
	cost := float64(shares) * price
	if cost > p.Cash {
		// Degrade to the maximum affordable whole-share quantity.
		shares = int(p.Cash / price)
		if shares <= 0 {
			return 0
		}
		cost = float64(shares) * price
	}

	pos.LongCostBasis = weightedBasis(pos.Long, pos.LongCostBasis, shares, price)
	pos.Long += shares
	p.Cash -= cost
	return shares
}

func executeSell(p *Portfolio, pos *Position, rg *RealizedGain, shares int, price float64) int {
	if shares > pos.Long {
		shares = pos.Long
	}
	if shares <= 0 {
		return 0
	}

	rg.Long += (price - pos.LongCostBasis) * float64(shares)

	pos.Long -= shares
	p.Cash += float64(shares) * price

	if pos.Long == 0 {
		pos.LongCostBasis = 0
	}
	return shares
}

// executeShort opens a short: proceeds are credited, then a fraction of the
// notional (MarginRequirement) is pledged as margin. Net cash effect is
// +proceeds - margin.
func executeShort(p *Portfolio, pos *Position, shares int, price float64) int {
	margin := float64(shares) * price * p.MarginRequirement
	if margin > p.Cash {
		if p.MarginRequirement <= 0 {
			// Unreachable for positive cash, kept as a division guard: a
			// zero margin requirement blocks all shorts.
			return 0
		}
		shares = int(p.Cash / (price * p.MarginRequirement))
		if shares <= 0 {
			return 0
		}
		margin = float64(shares) * price * p.MarginRequirement
	}

	proceeds := float64(shares) * price

	pos.ShortCostBasis = weightedBasis(pos.Short, pos.ShortCostBasis, shares, price)
	pos.Short += shares

	pos.ShortMarginUsed += margin
	p.MarginUsed += margin

	p.Cash += proceeds
	p.Cash -= margin
	return shares
}

// executeCover closes (part of) a short: margin is released proportionally
// to the covered fraction of the pre-trade short lot, then the cover cost
// is paid. Net cash effect is +releasedMargin - coverCost.
func executeCover(p *Portfolio, pos *Position, rg *RealizedGain, shares int, price float64) int {
	if shares > pos.Short {
		shares = pos.Short
	}
	if shares <= 0 {
		return 0
	}

	rg.Short += (pos.ShortCostBasis - price) * float64(shares)

	portion := float64(shares) / float64(pos.Short)
	released := portion * pos.ShortMarginUsed

	pos.Short -= shares
	pos.ShortMarginUsed -= released
	p.MarginUsed -= released

	p.Cash += released
	p.Cash -= float64(shares) * price

	if pos.Short == 0 {
		pos.ShortCostBasis = 0
		pos.ShortMarginUsed = 0
	}
	return shares
}

// weightedBasis folds a new lot into an existing one, returning the
// volume-weighted average entry price.
func weightedBasis(oldShares int, oldBasis float64, newShares int, price float64) float64 {
	total := oldShares + newShares
	if total <= 0 {
		return 0
	}
	return (oldBasis*float64(oldShares) + price*float64(newShares)) / float64(total)
}
