package findata

// cache.go — cache en memoria de respuestas del API, una instancia por
// Client. Las entradas se mergean por el campo identidad de cada tipo de
// registro (time, report_period, filing_date, date): append-only, sin
// duplicados, preservando el orden de llegada.

import (
	"sync"

	"github.com/alejandrodnm/fundbot/internal/domain"
)

// Cache guarda listas de registros por request key.
type Cache struct {
	mu               sync.RWMutex
	prices           map[string][]domain.Price
	financialMetrics map[string][]domain.FinancialMetrics
	lineItems        map[string][]domain.LineItem
	insiderTrades    map[string][]domain.InsiderTrade
	companyNews      map[string][]domain.CompanyNews
}

// NewCache crea un cache vacío.
func NewCache() *Cache {
	return &Cache{
		prices:           make(map[string][]domain.Price),
		financialMetrics: make(map[string][]domain.FinancialMetrics),
		lineItems:        make(map[string][]domain.LineItem),
		insiderTrades:    make(map[string][]domain.InsiderTrade),
		companyNews:      make(map[string][]domain.CompanyNews),
	}
}

// GetPrices devuelve los precios cacheados para la key, si existen.
func (c *Cache) GetPrices(key string) ([]domain.Price, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.prices[key]
	return v, ok
}

// SetPrices mergea precios nuevos en la key, deduplicando por Time.
func (c *Cache) SetPrices(key string, data []domain.Price) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prices[key] = mergeRecords(c.prices[key], data, func(p domain.Price) string { return p.Time })
}

// GetFinancialMetrics devuelve las métricas cacheadas para la key.
func (c *Cache) GetFinancialMetrics(key string) ([]domain.FinancialMetrics, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.financialMetrics[key]
	return v, ok
}

// SetFinancialMetrics mergea métricas nuevas, deduplicando por ReportPeriod.
func (c *Cache) SetFinancialMetrics(key string, data []domain.FinancialMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.financialMetrics[key] = mergeRecords(c.financialMetrics[key], data,
		func(m domain.FinancialMetrics) string { return m.ReportPeriod })
}

// GetLineItems devuelve los line items cacheados para la key.
func (c *Cache) GetLineItems(key string) ([]domain.LineItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.lineItems[key]
	return v, ok
}

// SetLineItems mergea line items nuevos, deduplicando por ReportPeriod.
func (c *Cache) SetLineItems(key string, data []domain.LineItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lineItems[key] = mergeRecords(c.lineItems[key], data,
		func(li domain.LineItem) string { return li.ReportPeriod })
}

// GetInsiderTrades devuelve los insider trades cacheados para la key.
func (c *Cache) GetInsiderTrades(key string) ([]domain.InsiderTrade, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.insiderTrades[key]
	return v, ok
}

// SetInsiderTrades mergea insider trades nuevos, deduplicando por FilingDate.
func (c *Cache) SetInsiderTrades(key string, data []domain.InsiderTrade) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.insiderTrades[key] = mergeRecords(c.insiderTrades[key], data,
		func(t domain.InsiderTrade) string { return t.FilingDate })
}

// GetCompanyNews devuelve las noticias cacheadas para la key.
func (c *Cache) GetCompanyNews(key string) ([]domain.CompanyNews, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.companyNews[key]
	return v, ok
}

// SetCompanyNews mergea noticias nuevas, deduplicando por Date.
func (c *Cache) SetCompanyNews(key string, data []domain.CompanyNews) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.companyNews[key] = mergeRecords(c.companyNews[key], data,
		func(n domain.CompanyNews) string { return n.Date })
}

// mergeRecords añade a existing los registros de incoming cuya key no está
// ya presente. Nunca elimina ni reordena lo ya cacheado.
func mergeRecords[T any](existing, incoming []T, key func(T) string) []T {
	if len(existing) == 0 {
		return incoming
	}

	seen := make(map[string]struct{}, len(existing))
	for _, item := range existing {
		seen[key(item)] = struct{}{}
	}

	merged := existing
	for _, item := range incoming {
		if _, ok := seen[key(item)]; ok {
			continue
		}
		merged = append(merged, item)
		seen[key(item)] = struct{}{}
	}
	return merged
}
