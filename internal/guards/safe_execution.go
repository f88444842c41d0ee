package guards

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"tradebot/internal/engine"
	"tradebot/types"
)

var ErrDuplicateSuppressed = errors.New("duplicate order suppressed")

var (
	metricOrdersAttempted  = prometheus.NewCounter(prometheus.CounterOpts{Name: "bot_orders_attempted_total", Help: "Orders the bot tried to place"})
	metricOrdersPlaced     = prometheus.NewCounter(prometheus.CounterOpts{Name: "bot_orders_placed_total", Help: "Orders confirmed filled by the execution port"})
	metricOrdersFailed     = prometheus.NewCounter(prometheus.CounterOpts{Name: "bot_orders_failed_total", Help: "Orders that errored or came back rejected"})
	metricOrdersSuppressed = prometheus.NewCounter(prometheus.CounterOpts{Name: "bot_orders_suppressed_total", Help: "Orders blocked by duplicate suppression"})
	metricClosesAttempted  = prometheus.NewCounter(prometheus.CounterOpts{Name: "bot_closes_attempted_total", Help: "Position close requests sent"})
)

func init() {
	prometheus.MustRegister(
		metricOrdersAttempted, metricOrdersPlaced, metricOrdersFailed,
		metricOrdersSuppressed, metricClosesAttempted,
	)
}

// SafeExecution wraps an execution port with order metrics and a duplicate
// suppression window. The window guards against accidental double submission
// of a byte-identical order; it must stay shorter than the bar cadence so a
// signal that legitimately re-fires on the next bar passes through.
type SafeExecution struct {
	inner     engine.ExecutionPort
	dupWindow time.Duration

	mu           sync.Mutex
	lastOrderKey string
	lastOrderAt  time.Time
}

func NewSafeExecution(inner engine.ExecutionPort, dupWindow time.Duration) *SafeExecution {
	return &SafeExecution{
		inner:     inner,
		dupWindow: dupWindow,
	}
}

func (s *SafeExecution) SubmitOrder(ctx context.Context, symbol string, side types.Side, notional decimal.Decimal) (types.Fill, error) {
	metricOrdersAttempted.Inc()

	now := time.Now()
	key := ordKey(symbol, side, notional)
	if s.isDuplicate(key, now) {
		metricOrdersSuppressed.Inc()
		return types.Fill{}, ErrDuplicateSuppressed
	}

	fill, err := s.inner.SubmitOrder(ctx, symbol, side, notional)
	if err != nil || fill.Status != types.FillStatusFilled {
		metricOrdersFailed.Inc()
		return fill, err
	}

	s.mu.Lock()
	s.lastOrderKey, s.lastOrderAt = key, now
	s.mu.Unlock()
	metricOrdersPlaced.Inc()
	return fill, nil
}

// ClosePosition is not suppressed: closing an already flat position is
// harmless, while blocking a close never is.
func (s *SafeExecution) ClosePosition(ctx context.Context, symbol string) (types.Fill, error) {
	metricClosesAttempted.Inc()
	fill, err := s.inner.ClosePosition(ctx, symbol)
	if err != nil || fill.Status != types.FillStatusFilled {
		metricOrdersFailed.Inc()
	}
	return fill, err
}

func (s *SafeExecution) GetAccount(ctx context.Context) (types.AccountSnapshot, error) {
	return s.inner.GetAccount(ctx)
}

func (s *SafeExecution) CloseAllPositions(ctx context.Context) error {
	return s.inner.CloseAllPositions(ctx)
}

func (s *SafeExecution) isDuplicate(key string, now time.Time) bool {
	if s.dupWindow <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return key == s.lastOrderKey && now.Sub(s.lastOrderAt) < s.dupWindow
}

func ordKey(symbol string, side types.Side, notional decimal.Decimal) string {
	h := sha256.Sum256([]byte(symbol + string(side) + notional.String()))
	return hex.EncodeToString(h[:8])
}
