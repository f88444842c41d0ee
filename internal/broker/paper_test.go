package broker

import (
	"context"
	"testing"
	"tradebot/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func TestPaperSubmitOrderFillsAtMark(t *testing.T) {
	p := NewPaper(dec(10000))
	p.UpdateMark("BTCUSD", dec(100))

	fill, err := p.SubmitOrder(context.Background(), "BTCUSD", types.SideTypeBuy, dec(1000))
	require.NoError(t, err)
	assert.Equal(t, types.FillStatusFilled, fill.Status)
	assert.True(t, fill.Price.Equal(dec(100)), "fill price = %s", fill.Price)

	account, err := p.GetAccount(context.Background())
	require.NoError(t, err)
	assert.True(t, account.Equity.Equal(dec(10000)), "equity = %s", account.Equity)
}

func TestPaperSubmitOrderWithoutMark(t *testing.T) {
	p := NewPaper(dec(10000))

	_, err := p.SubmitOrder(context.Background(), "BTCUSD", types.SideTypeBuy, dec(1000))
	require.ErrorIs(t, err, ErrNoMark)
}

func TestPaperSubmitOrderRejectsSell(t *testing.T) {
	p := NewPaper(dec(10000))
	p.UpdateMark("BTCUSD", dec(100))

	_, err := p.SubmitOrder(context.Background(), "BTCUSD", types.SideTypeSell, dec(1000))
	require.ErrorIs(t, err, ErrUnknownSide)
}

func TestPaperSubmitOrderInsufficientCash(t *testing.T) {
	p := NewPaper(dec(500))
	p.UpdateMark("BTCUSD", dec(100))

	fill, err := p.SubmitOrder(context.Background(), "BTCUSD", types.SideTypeBuy, dec(1000))
	require.ErrorIs(t, err, ErrInsufficient)
	assert.Equal(t, types.FillStatusRejected, fill.Status)
}

func TestPaperEquityMarksToMarket(t *testing.T) {
	p := NewPaper(dec(10000))
	p.UpdateMark("BTCUSD", dec(100))

	_, err := p.SubmitOrder(context.Background(), "BTCUSD", types.SideTypeBuy, dec(1000))
	require.NoError(t, err)

	// qty is 10, so a 10 point move is worth 100.
	p.UpdateMark("BTCUSD", dec(110))
	account, err := p.GetAccount(context.Background())
	require.NoError(t, err)
	assert.True(t, account.Equity.Equal(dec(10100)), "equity = %s", account.Equity)
	assert.True(t, account.LastEquity.Equal(dec(10000)), "last equity = %s", account.LastEquity)
}

func TestPaperClosePositionRealizesAtMark(t *testing.T) {
	p := NewPaper(dec(10000))
	p.UpdateMark("BTCUSD", dec(100))

	_, err := p.SubmitOrder(context.Background(), "BTCUSD", types.SideTypeBuy, dec(1000))
	require.NoError(t, err)

	p.UpdateMark("BTCUSD", dec(90))
	fill, err := p.ClosePosition(context.Background(), "BTCUSD")
	require.NoError(t, err)
	assert.Equal(t, types.SideTypeSell, fill.Side)
	assert.True(t, fill.Price.Equal(dec(90)))

	account, err := p.GetAccount(context.Background())
	require.NoError(t, err)
	assert.True(t, account.Equity.Equal(dec(9900)), "equity = %s", account.Equity)
}

func TestPaperClosePositionUnknownSymbol(t *testing.T) {
	p := NewPaper(dec(10000))

	_, err := p.ClosePosition(context.Background(), "BTCUSD")
	require.ErrorIs(t, err, ErrNoPosition)
}

func TestPaperCloseAllPositions(t *testing.T) {
	p := NewPaper(dec(10000))
	p.UpdateMark("BTCUSD", dec(100))
	p.UpdateMark("ETHUSD", dec(50))

	_, err := p.SubmitOrder(context.Background(), "BTCUSD", types.SideTypeBuy, dec(1000))
	require.NoError(t, err)
	_, err = p.SubmitOrder(context.Background(), "ETHUSD", types.SideTypeBuy, dec(1000))
	require.NoError(t, err)

	require.NoError(t, p.CloseAllPositions(context.Background()))

	account, err := p.GetAccount(context.Background())
	require.NoError(t, err)
	assert.True(t, account.Equity.Equal(dec(10000)), "equity = %s", account.Equity)

	_, err = p.ClosePosition(context.Background(), "BTCUSD")
	assert.ErrorIs(t, err, ErrNoPosition)
}
