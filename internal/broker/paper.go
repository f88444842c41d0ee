package broker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"tradebot/types"

	"github.com/shopspring/decimal"
)

var (
	ErrNoMark       = errors.New("no mark price observed for symbol")
	ErrNoPosition   = errors.New("no open position for symbol")
	ErrUnknownSide  = errors.New("unknown order side")
	ErrInsufficient = errors.New("insufficient cash for order")
)

// Paper is an in-memory execution port. Orders fill synchronously at the
// last observed mark price, with no slippage and no fees, so the bot can run
// end to end without brokerage credentials.
type Paper struct {
	mu         sync.Mutex
	cash       decimal.Decimal
	lastEquity decimal.Decimal
	marks      map[string]decimal.Decimal
	positions  map[string]*paperPosition
}

type paperPosition struct {
	qty   decimal.Decimal
	entry decimal.Decimal
}

func NewPaper(startingCash decimal.Decimal) *Paper {
	return &Paper{
		cash:       startingCash,
		lastEquity: startingCash,
		marks:      make(map[string]decimal.Decimal),
		positions:  make(map[string]*paperPosition),
	}
}

// UpdateMark records the latest observed price for a symbol. Fills and
// equity marks use the most recent value.
func (p *Paper) UpdateMark(symbol string, price decimal.Decimal) {
	p.mu.Lock()
	p.marks[symbol] = price
	p.mu.Unlock()
}

func (p *Paper) SubmitOrder(_ context.Context, symbol string, side types.Side, notional decimal.Decimal) (types.Fill, error) {
	if side != types.SideTypeBuy {
		return types.Fill{}, fmt.Errorf("submit %s %s: %w", side, symbol, ErrUnknownSide)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	mark, ok := p.marks[symbol]
	if !ok || mark.IsZero() {
		return types.Fill{}, fmt.Errorf("submit buy %s: %w", symbol, ErrNoMark)
	}
	if notional.GreaterThan(p.cash) {
		return types.NewFill(symbol, side, mark, types.FillStatusRejected, time.Now()),
			fmt.Errorf("submit buy %s: %w", symbol, ErrInsufficient)
	}

	qty := notional.Div(mark)
	p.cash = p.cash.Sub(notional)
	pos := p.positions[symbol]
	if pos == nil {
		pos = &paperPosition{entry: mark}
		p.positions[symbol] = pos
	}
	pos.qty = pos.qty.Add(qty)

	return types.NewFill(symbol, side, mark, types.FillStatusFilled, time.Now()), nil
}

func (p *Paper) ClosePosition(_ context.Context, symbol string) (types.Fill, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeLocked(symbol)
}

func (p *Paper) GetAccount(_ context.Context) (types.AccountSnapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	equity := p.cash
	for symbol, pos := range p.positions {
		mark, ok := p.marks[symbol]
		if !ok {
			mark = pos.entry
		}
		equity = equity.Add(pos.qty.Mul(mark))
	}
	return types.AccountSnapshot{Equity: equity, LastEquity: p.lastEquity}, nil
}

func (p *Paper) CloseAllPositions(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for symbol := range p.positions {
		if _, err := p.closeLocked(symbol); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (p *Paper) closeLocked(symbol string) (types.Fill, error) {
	pos, ok := p.positions[symbol]
	if !ok || pos.qty.IsZero() {
		return types.Fill{}, fmt.Errorf("close %s: %w", symbol, ErrNoPosition)
	}
	mark, ok := p.marks[symbol]
	if !ok || mark.IsZero() {
		mark = pos.entry
	}

	p.cash = p.cash.Add(pos.qty.Mul(mark))
	delete(p.positions, symbol)
	return types.NewFill(symbol, types.SideTypeSell, mark, types.FillStatusFilled, time.Now()), nil
}
