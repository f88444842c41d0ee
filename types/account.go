package types

import "github.com/shopspring/decimal"

// AccountSnapshot holds the two equity values needed for the drawdown check,
// read fresh from the brokerage each evaluation. LastEquity is the account
// value at the previous market close.
type AccountSnapshot struct {
	Equity     decimal.Decimal
	LastEquity decimal.Decimal
}
