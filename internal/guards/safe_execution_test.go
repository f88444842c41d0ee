package guards

import (
	"context"
	"errors"
	"testing"
	"time"
	"tradebot/types"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExec struct {
	submitErr error
	reject    bool
	submits   int
	closes    int
}

func (s *stubExec) SubmitOrder(_ context.Context, symbol string, side types.Side, _ decimal.Decimal) (types.Fill, error) {
	s.submits++
	if s.submitErr != nil {
		return types.Fill{}, s.submitErr
	}
	status := types.FillStatusFilled
	if s.reject {
		status = types.FillStatusRejected
	}
	return types.NewFill(symbol, side, decimal.NewFromInt(100), status, time.Now()), nil
}

func (s *stubExec) ClosePosition(_ context.Context, symbol string) (types.Fill, error) {
	s.closes++
	return types.NewFill(symbol, types.SideTypeSell, decimal.NewFromInt(100), types.FillStatusFilled, time.Now()), nil
}

func (s *stubExec) GetAccount(_ context.Context) (types.AccountSnapshot, error) {
	return types.AccountSnapshot{}, nil
}

func (s *stubExec) CloseAllPositions(_ context.Context) error {
	return nil
}

func TestSubmitOrderSuppressesDuplicates(t *testing.T) {
	inner := &stubExec{}
	safe := NewSafeExecution(inner, time.Minute)
	ctx := context.Background()
	notional := decimal.NewFromInt(500)

	_, err := safe.SubmitOrder(ctx, "BTCUSD", types.SideTypeBuy, notional)
	require.NoError(t, err)

	_, err = safe.SubmitOrder(ctx, "BTCUSD", types.SideTypeBuy, notional)
	assert.ErrorIs(t, err, ErrDuplicateSuppressed)
	assert.Equal(t, 1, inner.submits, "duplicate must not reach the broker")

	// A different order inside the window passes.
	_, err = safe.SubmitOrder(ctx, "ETHUSD", types.SideTypeBuy, notional)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.submits)
}

func TestSubmitOrderZeroWindowDisablesSuppression(t *testing.T) {
	inner := &stubExec{}
	safe := NewSafeExecution(inner, 0)
	ctx := context.Background()
	notional := decimal.NewFromInt(500)

	_, err := safe.SubmitOrder(ctx, "BTCUSD", types.SideTypeBuy, notional)
	require.NoError(t, err)
	_, err = safe.SubmitOrder(ctx, "BTCUSD", types.SideTypeBuy, notional)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.submits)
}

// A failed submission does not update the duplicate key, so the re-fire on
// the next bar is never suppressed.
func TestSubmitOrderFailureDoesNotArmSuppression(t *testing.T) {
	inner := &stubExec{submitErr: errors.New("rejected")}
	safe := NewSafeExecution(inner, time.Minute)
	ctx := context.Background()
	notional := decimal.NewFromInt(500)

	failedBefore := testutil.ToFloat64(metricOrdersFailed)
	_, err := safe.SubmitOrder(ctx, "BTCUSD", types.SideTypeBuy, notional)
	require.Error(t, err)
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(metricOrdersFailed))

	inner.submitErr = nil
	_, err = safe.SubmitOrder(ctx, "BTCUSD", types.SideTypeBuy, notional)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.submits)
}

func TestClosePositionNeverSuppressed(t *testing.T) {
	inner := &stubExec{}
	safe := NewSafeExecution(inner, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := safe.ClosePosition(ctx, "BTCUSD")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, inner.closes)
}
