package types

import "github.com/shopspring/decimal"

type PositionState string

const (
	PositionFlat PositionState = "FLAT"
	PositionLong PositionState = "LONG"
)

// Position is one asset's market exposure. EntryPrice is set on a confirmed
// buy fill and cleared on close; it is defined iff State == PositionLong.
type Position struct {
	Symbol     string
	State      PositionState
	EntryPrice decimal.Decimal
}
