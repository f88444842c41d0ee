package engine

import (
	"context"
	"time"
	"tradebot/types"

	"github.com/shopspring/decimal"
)

type submitCall struct {
	symbol   string
	side     types.Side
	notional decimal.Decimal
}

// fakeExec is an in-memory ExecutionPort. Fills confirm at fillPrice unless
// an error or rejection is armed.
type fakeExec struct {
	fillPrice  decimal.Decimal
	submitErr  error
	closeErr   error
	reject     bool
	account    types.AccountSnapshot
	accountErr error

	submits   []submitCall
	closes    []string
	closedAll bool
}

func (f *fakeExec) SubmitOrder(_ context.Context, symbol string, side types.Side, notional decimal.Decimal) (types.Fill, error) {
	f.submits = append(f.submits, submitCall{symbol, side, notional})
	if f.submitErr != nil {
		return types.Fill{}, f.submitErr
	}
	status := types.FillStatusFilled
	if f.reject {
		status = types.FillStatusRejected
	}
	return types.NewFill(symbol, side, f.fillPrice, status, time.Now()), nil
}

func (f *fakeExec) ClosePosition(_ context.Context, symbol string) (types.Fill, error) {
	f.closes = append(f.closes, symbol)
	if f.closeErr != nil {
		return types.Fill{}, f.closeErr
	}
	status := types.FillStatusFilled
	if f.reject {
		status = types.FillStatusRejected
	}
	return types.NewFill(symbol, types.SideTypeSell, f.fillPrice, status, time.Now()), nil
}

func (f *fakeExec) GetAccount(_ context.Context) (types.AccountSnapshot, error) {
	if f.accountErr != nil {
		return types.AccountSnapshot{}, f.accountErr
	}
	return f.account, nil
}

func (f *fakeExec) CloseAllPositions(_ context.Context) error {
	f.closedAll = true
	return nil
}

type fakeNotifier struct {
	messages []string
}

func (f *fakeNotifier) Send(message string) {
	f.messages = append(f.messages, message)
}

type fakeHistory struct {
	closes map[string][]decimal.Decimal
	err    error
}

func (f *fakeHistory) RecentCloses(_ context.Context, symbol string, limit int) ([]decimal.Decimal, error) {
	if f.err != nil {
		return nil, f.err
	}
	closes := f.closes[symbol]
	if len(closes) > limit {
		closes = closes[len(closes)-limit:]
	}
	return closes, nil
}

type fakeMarket struct {
	bars   chan types.Bar
	subErr error
	closed bool
}

func newFakeMarket() *fakeMarket {
	return &fakeMarket{bars: make(chan types.Bar, 16)}
}

func (f *fakeMarket) Subscribe(_ context.Context, _ []string) (<-chan types.Bar, error) {
	if f.subErr != nil {
		return nil, f.subErr
	}
	return f.bars, nil
}

func (f *fakeMarket) Close() error {
	f.closed = true
	return nil
}

func flatCloses(n int, price float64) []decimal.Decimal {
	out := make([]decimal.Decimal, n)
	for i := range out {
		out[i] = decimal.NewFromFloat(price)
	}
	return out
}
