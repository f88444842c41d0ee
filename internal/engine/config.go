package engine

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPeriods  = errors.New("fast period must be > 0 and slow period > fast period")
	ErrInvalidBudget   = errors.New("max budget must be positive")
	ErrEmptyUniverse   = errors.New("asset universe is empty")
	ErrMissingExchange = errors.New("exchange identifier is empty")
	ErrShortHistory    = errors.New("history length must be at least the slow period")
)

const defaultMaxDrawdown = "0.25"

// Config is the full startup configuration, constructed once at process
// start and passed into the orchestrator. No ambient globals.
type Config struct {
	FastPeriod int
	SlowPeriod int
	MaxBudget  decimal.Decimal
	Universe   []string
	Exchange   string

	// HistoryBars is the price window capacity; defaults to SlowPeriod.
	HistoryBars int

	// MaxDrawdown is the fractional equity decline that halts the run;
	// defaults to 0.25.
	MaxDrawdown decimal.Decimal

	// DupWindow suppresses byte-identical orders submitted within this
	// window. Keep it below the bar cadence so next-bar re-fires pass.
	DupWindow time.Duration
}

// Validate checks the configuration and fills defaults.
func (c *Config) Validate() error {
	if c.FastPeriod <= 0 || c.SlowPeriod <= c.FastPeriod {
		return ErrInvalidPeriods
	}
	if !c.MaxBudget.IsPositive() {
		return ErrInvalidBudget
	}
	if len(c.Universe) == 0 {
		return ErrEmptyUniverse
	}
	if c.Exchange == "" {
		return ErrMissingExchange
	}
	if c.HistoryBars == 0 {
		c.HistoryBars = c.SlowPeriod
	}
	if c.HistoryBars < c.SlowPeriod {
		return ErrShortHistory
	}
	if c.MaxDrawdown.IsZero() {
		c.MaxDrawdown = decimal.RequireFromString(defaultMaxDrawdown)
	}
	return nil
}

// BudgetPerAsset splits the max budget equally across the universe, rounded
// down to cents so the summed allocation never exceeds the max.
func (c Config) BudgetPerAsset() decimal.Decimal {
	return c.MaxBudget.
		Div(decimal.NewFromInt(int64(len(c.Universe)))).
		RoundDown(2)
}
