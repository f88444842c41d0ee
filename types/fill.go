package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type FillStatus string

const (
	FillStatusFilled   FillStatus = "FILLED"
	FillStatusRejected FillStatus = "REJECTED"
)

// Fill is the brokerage confirmation that an order executed, with the
// realized price.
type Fill struct {
	Symbol string
	Side   Side
	Price  decimal.Decimal
	Status FillStatus
	Time   time.Time
}

func NewFill(symbol string, side Side, price decimal.Decimal, status FillStatus, time time.Time) Fill {
	return Fill{
		Symbol: symbol,
		Side:   side,
		Price:  price,
		Status: status,
		Time:   time,
	}
}
