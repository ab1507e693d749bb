package ports

import (
	"context"

	"github.com/alejandrodnm/fundbot/internal/domain"
)

// DataProvider serves historical market and fundamental data. All dates are
// YYYY-MM-DD strings. Implementations must be deterministic for a given
// (ticker, range) so response caching is sound.
type DataProvider interface {
	// GetPrices returns daily bars for the ticker in [startDate, endDate],
	// oldest first.
	GetPrices(ctx context.Context, ticker, startDate, endDate string) ([]domain.Price, error)

	// GetFinancialMetrics returns up to limit reporting periods ending at or
	// before endDate, newest first.
	GetFinancialMetrics(ctx context.Context, ticker, endDate string, limit int) ([]domain.FinancialMetrics, error)

	// GetInsiderTrades returns insider filings between startDate and endDate,
	// paginating as needed up to limit.
	GetInsiderTrades(ctx context.Context, ticker, startDate, endDate string, limit int) ([]domain.InsiderTrade, error)

	// GetCompanyNews returns news between startDate and endDate, paginating
	// as needed up to limit.
	GetCompanyNews(ctx context.Context, ticker, startDate, endDate string, limit int) ([]domain.CompanyNews, error)
}
