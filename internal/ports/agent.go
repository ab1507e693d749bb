package ports

import (
	"context"

	"github.com/alejandrodnm/fundbot/internal/domain"
)

// AgentRequest is everything the decision source gets to see for one
// trading day: the tickers in play, the lookback window for context data,
// and a snapshot of the account it cannot mutate.
type AgentRequest struct {
	Tickers   []string
	StartDate string // lookback window start, YYYY-MM-DD
	EndDate   string // current trading day, YYYY-MM-DD
	Portfolio *domain.Portfolio
}

// Agent proposes trades for a given day. The backtest driver treats it as
// an opaque callable: it only reads the returned actions and quantities.
// In production this boundary hides an LLM-driven analyst pipeline; in
// tests it is a table lookup.
type Agent interface {
	Decide(ctx context.Context, req AgentRequest) (domain.AgentOutput, error)
}

// AgentFunc adapts a plain function to the Agent interface.
type AgentFunc func(ctx context.Context, req AgentRequest) (domain.AgentOutput, error)

func (f AgentFunc) Decide(ctx context.Context, req AgentRequest) (domain.AgentOutput, error) {
	return f(ctx, req)
}
