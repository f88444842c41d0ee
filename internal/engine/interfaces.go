package engine

import (
	"context"
	"tradebot/types"

	"github.com/shopspring/decimal"
)

// MarketDataPort delivers live bars for the subscribed assets. Delivery is
// at-least-once; the stream owns no dedup guarantee.
type MarketDataPort interface {
	Subscribe(ctx context.Context, symbols []string) (<-chan types.Bar, error)
	Close() error
}

// ExecutionPort abstracts the brokerage. All calls are synchronous round
// trips and may fail.
type ExecutionPort interface {
	SubmitOrder(ctx context.Context, symbol string, side types.Side, notional decimal.Decimal) (types.Fill, error)
	ClosePosition(ctx context.Context, symbol string) (types.Fill, error)
	GetAccount(ctx context.Context) (types.AccountSnapshot, error)
	CloseAllPositions(ctx context.Context) error
}

// HistoryPort supplies historical closes used to seed price windows at
// startup.
type HistoryPort interface {
	RecentCloses(ctx context.Context, symbol string, limit int) ([]decimal.Decimal, error)
}

// NotificationPort is fire-and-forget; implementations swallow their own
// failures and must never propagate them into trading logic.
type NotificationPort interface {
	Send(message string)
}

// SignalStrategy derives a trading signal from a price window and the
// current position. Implementations must be pure so the engine may call them
// once per bar with no ordering concerns.
type SignalStrategy interface {
	Evaluate(window []decimal.Decimal, position types.PositionState) types.Signal
}
