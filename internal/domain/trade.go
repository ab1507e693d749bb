package domain

import "strings"

// Action is what the agent wants to do with a ticker on a given day.
type Action string

const (
	ActionBuy   Action = "buy"
	ActionSell  Action = "sell"
	ActionShort Action = "short"
	ActionCover Action = "cover"
	ActionHold  Action = "hold"
)

// ParseAction normalizes a raw action string. Anything unrecognized maps to
// hold, which the execution engine treats as a no-op.
func ParseAction(s string) Action {
	switch Action(strings.ToLower(strings.TrimSpace(s))) {
	case ActionBuy:
		return ActionBuy
	case ActionSell:
		return ActionSell
	case ActionShort:
		return ActionShort
	case ActionCover:
		return ActionCover
	default:
		return ActionHold
	}
}

// Decision is the agent's proposed trade for one ticker. Only Action and
// Quantity drive execution; Confidence and Reasoning are carried through
// untouched for reporting.
type Decision struct {
	Action     Action
	Quantity   float64
	Confidence float64
	Reasoning  string
}

// AnalystSignal is one advisory signal ("bullish", "bearish", "neutral")
// from a named signal source.
type AnalystSignal struct {
	Signal     string
	Confidence float64
}

// AgentOutput is everything the decision source returns for one trading day.
// AnalystSignals is keyed source name → ticker → signal.
type AgentOutput struct {
	Decisions      map[string]Decision
	AnalystSignals map[string]map[string]AnalystSignal
}

// ExecutedTrade records what the execution engine actually did with a
// decision: the requested action and the quantity that really filled.
type ExecutedTrade struct {
	Ticker string
	Action Action
	Filled int
	Price  float64
}
