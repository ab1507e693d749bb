package findata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPrices_FetchesAndCaches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/prices/", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-API-KEY"))
		assert.Equal(t, "AAPL", r.URL.Query().Get("ticker"))
		assert.Equal(t, "day", r.URL.Query().Get("interval"))

		fmt.Fprint(w, `{"ticker":"AAPL","prices":[
			{"open":180,"close":185,"high":186,"low":179,"volume":1000,"time":"2024-01-02"},
			{"open":185,"close":187,"high":188,"low":184,"volume":1100,"time":"2024-01-03"}
		]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")

	prices, err := c.GetPrices(context.Background(), "AAPL", "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	require.Len(t, prices, 2)
	assert.InDelta(t, 187, prices[1].Close, 1e-9)

	// segunda llamada idéntica: servida desde cache
	_, err = c.GetPrices(context.Background(), "AAPL", "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestGetPrices_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"ticker":"AAPL","prices":[]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	prices, err := c.GetPrices(context.Background(), "AAPL", "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Empty(t, prices)
}

func TestGetPrices_ClientErrorIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		http.Error(w, `{"error":"unknown ticker"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.GetPrices(context.Background(), "NOPE", "2024-01-01", "2024-01-31")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client error 404")
	assert.Equal(t, int32(1), hits.Load())
}

func TestGetFinancialMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/financial-metrics/", r.URL.Path)
		assert.Equal(t, "ttm", r.URL.Query().Get("period"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		fmt.Fprint(w, `{"financial_metrics":[
			{"ticker":"AAPL","report_period":"2024-03-31","period":"ttm","currency":"USD",
			 "market_cap":2800000000000,"price_to_earnings_ratio":28.5}
		]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	metrics, err := c.GetFinancialMetrics(context.Background(), "AAPL", "2024-06-30", 10)
	require.NoError(t, err)
	require.Len(t, metrics, 1)
	require.NotNil(t, metrics[0].MarketCap)
	assert.InDelta(t, 2.8e12, *metrics[0].MarketCap, 1)
	require.NotNil(t, metrics[0].PriceToEarnings)
	assert.InDelta(t, 28.5, *metrics[0].PriceToEarnings, 1e-9)
}

func TestSearchLineItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/financials/search/line-items", r.URL.Path)

		var req lineItemSearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"AAPL"}, req.Tickers)
		assert.Equal(t, []string{"revenue", "net_income"}, req.LineItems)

		fmt.Fprint(w, `{"search_results":[
			{"ticker":"AAPL","report_period":"2024-03-31","period":"ttm","currency":"USD",
			 "revenue":385000000000,"net_income":97000000000}
		]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	items, err := c.SearchLineItems(context.Background(), "AAPL", []string{"revenue", "net_income"}, "2024-06-30", 5)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "AAPL", items[0].Ticker)
	assert.InDelta(t, 3.85e11, items[0].Extra["revenue"], 1)
	assert.InDelta(t, 9.7e10, items[0].Extra["net_income"], 1)
}

func TestGetInsiderTrades_PaginatesBackwards(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		assert.Equal(t, "/insider-trades/", r.URL.Path)

		// primera página llena (limit 2), la segunda corta la paginación
		if n == 1 {
			assert.Equal(t, "2024-06-30", r.URL.Query().Get("filing_date_lte"))
			fmt.Fprint(w, `{"insider_trades":[
				{"ticker":"AAPL","filing_date":"2024-06-15T00:00:00Z"},
				{"ticker":"AAPL","filing_date":"2024-05-20T00:00:00Z"}
			]}`)
			return
		}
		assert.Equal(t, "2024-05-20", r.URL.Query().Get("filing_date_lte"))
		fmt.Fprint(w, `{"insider_trades":[
			{"ticker":"AAPL","filing_date":"2024-04-10T00:00:00Z"}
		]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	trades, err := c.GetInsiderTrades(context.Background(), "AAPL", "2024-01-01", "2024-06-30", 2)
	require.NoError(t, err)
	assert.Len(t, trades, 3)
	assert.Equal(t, int32(2), hits.Load())
}

func TestGetInsiderTrades_NoStartDateSinglePage(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Empty(t, r.URL.Query().Get("filing_date_gte"))
		fmt.Fprint(w, `{"insider_trades":[
			{"ticker":"AAPL","filing_date":"2024-06-15"},
			{"ticker":"AAPL","filing_date":"2024-05-20"}
		]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	trades, err := c.GetInsiderTrades(context.Background(), "AAPL", "", "2024-06-30", 2)
	require.NoError(t, err)
	assert.Len(t, trades, 2)
	// sin startDate no hay paginación aunque la página venga llena
	assert.Equal(t, int32(1), hits.Load())
}

func TestGetCompanyNews(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/news/", r.URL.Path)
		fmt.Fprint(w, `{"news":[
			{"ticker":"AAPL","title":"Apple launches thing","date":"2024-06-01","sentiment":"positive"}
		]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	news, err := c.GetCompanyNews(context.Background(), "AAPL", "2024-01-01", "2024-06-30", 100)
	require.NoError(t, err)
	require.Len(t, news, 1)
	require.NotNil(t, news[0].Sentiment)
	assert.Equal(t, "positive", *news[0].Sentiment)
}

func TestGetMarketCap_FallsBackToMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/company/facts/" {
			fmt.Fprint(w, `{"company_facts":{"ticker":"AAPL","name":"Apple Inc."}}`)
			return
		}
		fmt.Fprint(w, `{"financial_metrics":[
			{"ticker":"AAPL","report_period":"2024-03-31","period":"ttm","currency":"USD","market_cap":2800000000000}
		]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	mcap, err := c.GetMarketCap(context.Background(), "AAPL", "2024-06-30")
	require.NoError(t, err)
	assert.InDelta(t, 2.8e12, mcap, 1)
}

func TestDateOnly(t *testing.T) {
	assert.Equal(t, "2024-06-15", dateOnly("2024-06-15T00:00:00Z"))
	assert.Equal(t, "2024-06-15", dateOnly("2024-06-15"))
}
