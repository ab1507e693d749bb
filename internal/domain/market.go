package domain

import "encoding/json"

// Market-data record types returned by the historical data provider. Dates
// are kept as YYYY-MM-DD strings, matching the provider's wire format; the
// backtest driver only ever compares them lexicographically.

// Price is one daily OHLCV bar.
type Price struct {
	Open   float64 `json:"open"`
	Close  float64 `json:"close"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Volume int64   `json:"volume"`
	Time   string  `json:"time"`
}

// FinancialMetrics is one reporting period's ratio snapshot. The provider
// exposes dozens of ratios; the commonly consumed ones are typed and the
// rest land in Extra.
type FinancialMetrics struct {
	Ticker            string   `json:"ticker"`
	ReportPeriod      string   `json:"report_period"`
	Period            string   `json:"period"` // annual | quarterly | ttm
	Currency          string   `json:"currency"`
	MarketCap         *float64 `json:"market_cap"`
	PriceToEarnings   *float64 `json:"price_to_earnings_ratio"`
	PriceToBook       *float64 `json:"price_to_book_ratio"`
	PriceToSales      *float64 `json:"price_to_sales_ratio"`
	NetMargin         *float64 `json:"net_margin"`
	OperatingMargin   *float64 `json:"operating_margin"`
	ReturnOnEquity    *float64 `json:"return_on_equity"`
	DebtToEquity      *float64 `json:"debt_to_equity"`
	RevenueGrowth     *float64 `json:"revenue_growth"`
	EarningsGrowth    *float64 `json:"earnings_growth"`
	EarningsPerShare  *float64 `json:"earnings_per_share"`
	FreeCashFlowYield *float64 `json:"free_cash_flow_yield"`
}

// LineItem is one row of a financial-statement line-item search. Schemas
// vary by statement, so beyond the identity fields every numeric column
// lands in the open Extra mapping.
type LineItem struct {
	Ticker       string
	ReportPeriod string
	Period       string
	Currency     string
	Extra        map[string]float64
}

// UnmarshalJSON pulls out the fixed identity fields and keeps every other
// numeric field in Extra, since each search returns a different column set.
func (li *LineItem) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	li.Extra = make(map[string]float64)
	for k, v := range raw {
		switch k {
		case "ticker":
			li.Ticker, _ = v.(string)
		case "report_period":
			li.ReportPeriod, _ = v.(string)
		case "period":
			li.Period, _ = v.(string)
		case "currency":
			li.Currency, _ = v.(string)
		default:
			if f, ok := v.(float64); ok {
				li.Extra[k] = f
			}
		}
	}
	return nil
}

// InsiderTrade is one insider filing.
type InsiderTrade struct {
	Ticker                   string   `json:"ticker"`
	Name                     *string  `json:"name"`
	Title                    *string  `json:"title"`
	IsBoardDirector          *bool    `json:"is_board_director"`
	TransactionDate          *string  `json:"transaction_date"`
	TransactionShares        *float64 `json:"transaction_shares"`
	TransactionPricePerShare *float64 `json:"transaction_price_per_share"`
	TransactionValue         *float64 `json:"transaction_value"`
	SharesOwnedBefore        *float64 `json:"shares_owned_before_transaction"`
	SharesOwnedAfter         *float64 `json:"shares_owned_after_transaction"`
	FilingDate               string   `json:"filing_date"`
}

// CompanyNews is one news article about a ticker.
type CompanyNews struct {
	Ticker    string  `json:"ticker"`
	Title     string  `json:"title"`
	Author    string  `json:"author"`
	Source    string  `json:"source"`
	Date      string  `json:"date"`
	URL       string  `json:"url"`
	Sentiment *string `json:"sentiment"`
}
