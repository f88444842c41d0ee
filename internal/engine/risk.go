package engine

import (
	"tradebot/types"

	"github.com/shopspring/decimal"
)

// HaltDecision is the outcome of one account-level risk evaluation.
// Drawdown and PnL are informational; Halt is fatal for the run.
type HaltDecision struct {
	Halt     bool
	Drawdown decimal.Decimal
	PnL      decimal.Decimal
	Anomaly  string
}

// RiskGuard computes the account's return since the last close and decides
// whether the whole run must halt. It is a global check, evaluated once per
// bar cycle, not per instrument.
type RiskGuard struct {
	maxDrawdown decimal.Decimal
}

func NewRiskGuard(maxDrawdown decimal.Decimal) *RiskGuard {
	return &RiskGuard{maxDrawdown: maxDrawdown}
}

// Evaluate halts iff 1 - equity/lastEquity exceeds the limit strictly.
// A zero last equity cannot produce a drawdown; it is reported as an
// anomaly and never halts.
func (g *RiskGuard) Evaluate(account types.AccountSnapshot) HaltDecision {
	if account.LastEquity.IsZero() {
		return HaltDecision{Anomaly: "last equity is zero, drawdown undefined"}
	}

	drawdown := decimal.NewFromInt(1).Sub(account.Equity.Div(account.LastEquity))
	return HaltDecision{
		Halt:     drawdown.GreaterThan(g.maxDrawdown),
		Drawdown: drawdown,
		PnL:      account.Equity.Sub(account.LastEquity),
	}
}
