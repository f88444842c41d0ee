package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string

const (
	SideTypeBuy  Side = "BUY"
	SideTypeSell Side = "SELL"
)

// OrderIntent is a request to trade a dollar notional of one asset at market.
// The notional is independent of share/unit quantity.
type OrderIntent struct {
	Symbol    string
	Side      Side
	Notional  decimal.Decimal
	CreatedAt time.Time
}

func NewOrderIntent(symbol string, side Side, notional decimal.Decimal, createdAt time.Time) OrderIntent {
	return OrderIntent{
		Symbol:    symbol,
		Side:      side,
		Notional:  notional,
		CreatedAt: createdAt,
	}
}
