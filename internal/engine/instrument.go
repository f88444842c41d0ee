package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"tradebot/types"

	"github.com/shopspring/decimal"
)

var ErrOrderRejected = errors.New("order rejected by execution port")

// InstrumentEngine owns one asset's price window and position state and
// turns crossover signals into orders. It is the only writer of both, so bar
// delivery for a given asset must stay serialized by the caller.
type InstrumentEngine struct {
	symbol   string
	budget   decimal.Decimal
	capacity int
	window   []decimal.Decimal
	position types.Position
	strat    SignalStrategy
	exec     ExecutionPort
	notifier NotificationPort
}

func NewInstrumentEngine(
	symbol string,
	budget decimal.Decimal,
	capacity int,
	strat SignalStrategy,
	exec ExecutionPort,
	notifier NotificationPort,
) *InstrumentEngine {
	return &InstrumentEngine{
		symbol:   symbol,
		budget:   budget,
		capacity: capacity,
		window:   make([]decimal.Decimal, 0, capacity),
		position: types.Position{Symbol: symbol, State: types.PositionFlat},
		strat:    strat,
		exec:     exec,
		notifier: notifier,
	}
}

// Seed fills the price window with historical closes, keeping only the most
// recent capacity entries. Called once before live bars arrive.
func (e *InstrumentEngine) Seed(closes []decimal.Decimal) {
	if len(closes) > e.capacity {
		closes = closes[len(closes)-e.capacity:]
	}
	e.window = append(e.window[:0], closes...)
}

// WindowLen reports the number of seeded prices.
func (e *InstrumentEngine) WindowLen() int {
	return len(e.window)
}

// Position returns a copy of the current position.
func (e *InstrumentEngine) Position() types.Position {
	return e.position
}

// OnBar pushes the bar's close into the window, evaluates the signal, and
// submits at most one order. Position state only changes on a confirmed
// fill: a failed or rejected submission leaves it untouched, so the same
// signal edge may legitimately re-fire on the next bar.
func (e *InstrumentEngine) OnBar(ctx context.Context, bar types.Bar) (*types.OrderIntent, error) {
	e.pushPrice(bar.Close)

	signal := e.strat.Evaluate(e.window, e.position.State)
	switch signal {
	case types.SignalEnterLong:
		intent := types.NewOrderIntent(e.symbol, types.SideTypeBuy, e.budget, bar.Timestamp)
		return &intent, e.enterLong(ctx, intent)
	case types.SignalExitLong:
		intent := types.NewOrderIntent(e.symbol, types.SideTypeSell, decimal.Zero, bar.Timestamp)
		return &intent, e.exitLong(ctx)
	}
	return nil, nil
}

// CloseOut flattens the position if one is open. Used by the halt sequence.
func (e *InstrumentEngine) CloseOut(ctx context.Context) error {
	if e.position.State != types.PositionLong {
		return nil
	}
	return e.exitLong(ctx)
}

func (e *InstrumentEngine) enterLong(ctx context.Context, intent types.OrderIntent) error {
	fill, err := e.exec.SubmitOrder(ctx, e.symbol, types.SideTypeBuy, intent.Notional)
	if err != nil {
		return fmt.Errorf("submit buy %s: %w", e.symbol, err)
	}
	if fill.Status != types.FillStatusFilled {
		return fmt.Errorf("buy %s: %w", e.symbol, ErrOrderRejected)
	}

	e.position.State = types.PositionLong
	e.position.EntryPrice = fill.Price

	msg := fmt.Sprintf("BOUGHT $%s worth of %s at $%s", intent.Notional, e.symbol, fill.Price)
	log.Printf("[engine] %s", msg)
	e.notifier.Send(msg)
	return nil
}

func (e *InstrumentEngine) exitLong(ctx context.Context) error {
	fill, err := e.exec.ClosePosition(ctx, e.symbol)
	if err != nil {
		return fmt.Errorf("close %s: %w", e.symbol, err)
	}
	if fill.Status != types.FillStatusFilled {
		return fmt.Errorf("close %s: %w", e.symbol, ErrOrderRejected)
	}

	// Realized PnL is reported, not stored.
	pnl := fill.Price.Sub(e.position.EntryPrice)
	e.position.State = types.PositionFlat
	e.position.EntryPrice = decimal.Zero

	msg := fmt.Sprintf("SOLD %s holding at $%s. Realized PnL: %s", e.symbol, fill.Price, pnl)
	log.Printf("[engine] %s", msg)
	e.notifier.Send(msg)
	return nil
}

func (e *InstrumentEngine) pushPrice(px decimal.Decimal) {
	if e.capacity > 0 && len(e.window) >= e.capacity {
		e.window = e.window[:copy(e.window, e.window[1:])]
	}
	e.window = append(e.window, px)
}
