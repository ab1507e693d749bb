package findata

import "github.com/alejandrodnm/fundbot/internal/domain"

// Wire envelopes del API de financialdatasets.ai.

type priceResponse struct {
	Ticker string         `json:"ticker"`
	Prices []domain.Price `json:"prices"`
}

type financialMetricsResponse struct {
	FinancialMetrics []domain.FinancialMetrics `json:"financial_metrics"`
}

type lineItemResponse struct {
	SearchResults []domain.LineItem `json:"search_results"`
}

type insiderTradeResponse struct {
	InsiderTrades []domain.InsiderTrade `json:"insider_trades"`
}

type companyNewsResponse struct {
	News []domain.CompanyNews `json:"news"`
}

type companyFactsResponse struct {
	CompanyFacts struct {
		Ticker    string   `json:"ticker"`
		Name      string   `json:"name"`
		MarketCap *float64 `json:"market_cap"`
	} `json:"company_facts"`
}

type lineItemSearchRequest struct {
	Tickers   []string `json:"tickers"`
	LineItems []string `json:"line_items"`
	EndDate   string   `json:"end_date"`
	Period    string   `json:"period"`
	Limit     int      `json:"limit"`
}
