package crossover

import (
	"tradebot/types"

	"github.com/shopspring/decimal"
)

// Strategy is a simple moving average crossover:
//   - when flat and the fast MA is above the slow MA, go long
//   - when long and the fast MA drops below the slow MA, close the long
//
// Ties never trigger an action (explicit hold policy).
type Strategy struct {
	fastPeriod int
	slowPeriod int
}

func New(fastPeriod, slowPeriod int) *Strategy {
	return &Strategy{
		fastPeriod: fastPeriod,
		slowPeriod: slowPeriod,
	}
}

// Evaluate derives a signal from the price window and the current position.
// It is pure: no state is kept between calls, so evaluating the same inputs
// twice yields the same signal. Windows shorter than the slow period always
// yield SignalNone.
func (s *Strategy) Evaluate(window []decimal.Decimal, position types.PositionState) types.Signal {
	if len(window) < s.slowPeriod {
		return types.SignalNone
	}

	slowAvg := mean(window[len(window)-s.slowPeriod:])
	fastAvg := mean(window[len(window)-s.fastPeriod:])

	switch position {
	case types.PositionFlat:
		if fastAvg.GreaterThan(slowAvg) {
			return types.SignalEnterLong
		}
	case types.PositionLong:
		if fastAvg.LessThan(slowAvg) {
			return types.SignalExitLong
		}
	}
	return types.SignalNone
}

func mean(prices []decimal.Decimal) decimal.Decimal {
	if len(prices) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, p := range prices {
		sum = sum.Add(p)
	}
	return sum.Div(decimal.NewFromInt(int64(len(prices))))
}
