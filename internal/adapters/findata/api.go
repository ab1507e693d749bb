package findata

// api.go — endpoints del API de datos históricos. Cada método consulta
// primero el cache con una key que incluye todos los parámetros del
// request; el API es determinista para un (ticker, rango) dado, así que el
// cacheo por request exacto es correcto.

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/alejandrodnm/fundbot/internal/domain"
)

// GetPrices devuelve las barras diarias del ticker en [startDate, endDate].
func (c *Client) GetPrices(ctx context.Context, ticker, startDate, endDate string) ([]domain.Price, error) {
	key := fmt.Sprintf("%s_%s_%s", ticker, startDate, endDate)
	if cached, ok := c.cache.GetPrices(key); ok {
		return cached, nil
	}

	u := fmt.Sprintf("%s/prices/?ticker=%s&interval=day&interval_multiplier=1&start_date=%s&end_date=%s",
		c.baseURL, url.QueryEscape(ticker), startDate, endDate)

	var resp priceResponse
	if err := c.get(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("findata.GetPrices: %s: %w", ticker, err)
	}
	if len(resp.Prices) == 0 {
		return nil, nil
	}

	c.cache.SetPrices(key, resp.Prices)
	return resp.Prices, nil
}

// GetFinancialMetrics devuelve hasta limit periodos TTM que terminan en o
// antes de endDate, más recientes primero.
func (c *Client) GetFinancialMetrics(ctx context.Context, ticker, endDate string, limit int) ([]domain.FinancialMetrics, error) {
	key := fmt.Sprintf("%s_ttm_%s_%d", ticker, endDate, limit)
	if cached, ok := c.cache.GetFinancialMetrics(key); ok {
		return cached, nil
	}

	u := fmt.Sprintf("%s/financial-metrics/?ticker=%s&report_period_lte=%s&limit=%d&period=ttm",
		c.baseURL, url.QueryEscape(ticker), endDate, limit)

	var resp financialMetricsResponse
	if err := c.get(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("findata.GetFinancialMetrics: %s: %w", ticker, err)
	}
	if len(resp.FinancialMetrics) == 0 {
		return nil, nil
	}

	c.cache.SetFinancialMetrics(key, resp.FinancialMetrics)
	return resp.FinancialMetrics, nil
}

// SearchLineItems busca line items de estados financieros vía POST.
func (c *Client) SearchLineItems(ctx context.Context, ticker string, lineItems []string, endDate string, limit int) ([]domain.LineItem, error) {
	key := fmt.Sprintf("%s_%s_%s_%d", ticker, strings.Join(lineItems, ","), endDate, limit)
	if cached, ok := c.cache.GetLineItems(key); ok {
		return cached, nil
	}

	body := lineItemSearchRequest{
		Tickers:   []string{ticker},
		LineItems: lineItems,
		EndDate:   endDate,
		Period:    "ttm",
		Limit:     limit,
	}

	var resp lineItemResponse
	if err := c.post(ctx, c.baseURL+"/financials/search/line-items", body, &resp); err != nil {
		return nil, fmt.Errorf("findata.SearchLineItems: %s: %w", ticker, err)
	}
	results := resp.SearchResults
	if len(results) > limit {
		results = results[:limit]
	}
	if len(results) == 0 {
		return nil, nil
	}

	c.cache.SetLineItems(key, results)
	return results, nil
}

// GetInsiderTrades devuelve filings entre startDate y endDate. El API
// pagina hacia atrás: cada página cubre hasta el filing más antiguo de la
// anterior.
func (c *Client) GetInsiderTrades(ctx context.Context, ticker, startDate, endDate string, limit int) ([]domain.InsiderTrade, error) {
	key := fmt.Sprintf("%s_%s_%s_%d", ticker, orNone(startDate), endDate, limit)
	if cached, ok := c.cache.GetInsiderTrades(key); ok {
		return cached, nil
	}

	var all []domain.InsiderTrade
	currentEnd := endDate

	for {
		u := fmt.Sprintf("%s/insider-trades/?ticker=%s&filing_date_lte=%s",
			c.baseURL, url.QueryEscape(ticker), currentEnd)
		if startDate != "" {
			u += "&filing_date_gte=" + startDate
		}
		u += fmt.Sprintf("&limit=%d", limit)

		var resp insiderTradeResponse
		if err := c.get(ctx, u, &resp); err != nil {
			return nil, fmt.Errorf("findata.GetInsiderTrades: %s: %w", ticker, err)
		}
		if len(resp.InsiderTrades) == 0 {
			break
		}

		all = append(all, resp.InsiderTrades...)

		// Solo seguir paginando si hay startDate y la página vino llena.
		if startDate == "" || len(resp.InsiderTrades) < limit {
			break
		}

		oldest := resp.InsiderTrades[0].FilingDate
		for _, t := range resp.InsiderTrades {
			if t.FilingDate < oldest {
				oldest = t.FilingDate
			}
		}
		currentEnd = dateOnly(oldest)

		if currentEnd <= startDate {
			break
		}
	}

	if len(all) == 0 {
		return nil, nil
	}

	c.cache.SetInsiderTrades(key, all)
	return all, nil
}

// GetCompanyNews devuelve noticias entre startDate y endDate, paginando
// hacia atrás igual que GetInsiderTrades.
func (c *Client) GetCompanyNews(ctx context.Context, ticker, startDate, endDate string, limit int) ([]domain.CompanyNews, error) {
	key := fmt.Sprintf("%s_%s_%s_%d", ticker, orNone(startDate), endDate, limit)
	if cached, ok := c.cache.GetCompanyNews(key); ok {
		return cached, nil
	}

	var all []domain.CompanyNews
	currentEnd := endDate

	for {
		u := fmt.Sprintf("%s/news/?ticker=%s&end_date=%s", c.baseURL, url.QueryEscape(ticker), currentEnd)
		if startDate != "" {
			u += "&start_date=" + startDate
		}
		u += fmt.Sprintf("&limit=%d", limit)

		var resp companyNewsResponse
		if err := c.get(ctx, u, &resp); err != nil {
			return nil, fmt.Errorf("findata.GetCompanyNews: %s: %w", ticker, err)
		}
		if len(resp.News) == 0 {
			break
		}

		all = append(all, resp.News...)

		if startDate == "" || len(resp.News) < limit {
			break
		}

		oldest := resp.News[0].Date
		for _, n := range resp.News {
			if n.Date < oldest {
				oldest = n.Date
			}
		}
		currentEnd = dateOnly(oldest)

		if currentEnd <= startDate {
			break
		}
	}

	if len(all) == 0 {
		return nil, nil
	}

	c.cache.SetCompanyNews(key, all)
	return all, nil
}

// GetMarketCap devuelve el market cap más reciente a endDate, cayendo a
// las métricas financieras si el endpoint de company facts no lo trae.
func (c *Client) GetMarketCap(ctx context.Context, ticker, endDate string) (float64, error) {
	var facts companyFactsResponse
	err := c.get(ctx, fmt.Sprintf("%s/company/facts/?ticker=%s", c.baseURL, url.QueryEscape(ticker)), &facts)
	if err == nil && facts.CompanyFacts.MarketCap != nil {
		return *facts.CompanyFacts.MarketCap, nil
	}

	metrics, err := c.GetFinancialMetrics(ctx, ticker, endDate, 1)
	if err != nil {
		return 0, fmt.Errorf("findata.GetMarketCap: %s: %w", ticker, err)
	}
	if len(metrics) == 0 || metrics[0].MarketCap == nil {
		return 0, fmt.Errorf("findata.GetMarketCap: %s: no market cap available", ticker)
	}
	return *metrics[0].MarketCap, nil
}

// orNone distingue "sin startDate" de un startDate vacío en la cache key.
func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

// dateOnly recorta un timestamp ISO a YYYY-MM-DD.
func dateOnly(s string) string {
	if i := strings.IndexByte(s, 'T'); i > 0 {
		return s[:i]
	}
	return s
}
