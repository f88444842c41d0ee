package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar is one aggregated price observation for an asset, one minute in the
// reference deployment.
type Bar struct {
	Symbol    string          `json:"S"`
	Exchange  string          `json:"x"`
	Open      decimal.Decimal `json:"o"`
	High      decimal.Decimal `json:"h"`
	Low       decimal.Decimal `json:"l"`
	Close     decimal.Decimal `json:"c"`
	Volume    decimal.Decimal `json:"v"`
	Timestamp time.Time       `json:"t"`
}
