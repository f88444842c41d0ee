package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"tradebot/types"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
)

var ErrStreamClosed = errors.New("market data stream closed")

var hundred = decimal.NewFromInt(100)

type RunState string

const (
	StateStarting RunState = "STARTING"
	StateRunning  RunState = "RUNNING"
	StateHalting  RunState = "HALTING"
	StateStopped  RunState = "STOPPED"
)

// Orchestrator owns the asset-to-engine map, the risk guard, and the halt
// flag. A single dispatch loop serializes all bar processing, so engines
// never see concurrent bars and in-flight submissions always finish before
// the halt sequence runs.
type Orchestrator struct {
	cfg      Config
	market   MarketDataPort
	exec     ExecutionPort
	history  HistoryPort
	notifier NotificationPort
	guard    *RiskGuard
	engines  map[string]*InstrumentEngine

	state  RunState
	halted bool // monotonic: set once, never reset within a run
}

func NewOrchestrator(
	cfg Config,
	strat SignalStrategy,
	market MarketDataPort,
	exec ExecutionPort,
	history HistoryPort,
	notifier NotificationPort,
) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &Orchestrator{
		cfg:      cfg,
		market:   market,
		exec:     exec,
		history:  history,
		notifier: notifier,
		guard:    NewRiskGuard(cfg.MaxDrawdown),
		engines:  make(map[string]*InstrumentEngine, len(cfg.Universe)),
		state:    StateStarting,
	}

	budget := cfg.BudgetPerAsset()
	for _, symbol := range cfg.Universe {
		o.engines[symbol] = NewInstrumentEngine(symbol, budget, cfg.HistoryBars, strat, exec, notifier)
	}
	return o, nil
}

// State reports the current run state.
func (o *Orchestrator) State() RunState {
	return o.state
}

// Halted reports whether the risk halt flag has been raised.
func (o *Orchestrator) Halted() bool {
	return o.halted
}

// Run drives the whole lifecycle: seed windows, consume the bar stream,
// check risk after every bar, and shut down on a halt decision or on ctx
// cancellation. It returns nil on a clean stop; startup failures and a
// closed stream are returned as errors.
func (o *Orchestrator) Run(ctx context.Context) error {
	if err := o.seedHistory(ctx); err != nil {
		return err
	}

	bars, err := o.market.Subscribe(ctx, o.cfg.Universe)
	if err != nil {
		return fmt.Errorf("subscribe bars: %w", err)
	}

	o.state = StateRunning
	log.Printf("[orchestrator] running, listening to feeds from %v", o.cfg.Universe)
	o.notifier.Send(fmt.Sprintf("Starting the momentum algorithm on %v", o.cfg.Universe))

	for {
		select {
		case <-ctx.Done():
			// Operator interrupt: same shutdown path as a risk halt, but
			// not an error. Cleanup runs on a fresh context.
			o.notifier.Send("ALERT! momentum algorithm interrupted")
			o.shutdown(context.Background())
			return nil
		case bar, ok := <-bars:
			if !ok {
				o.shutdown(context.Background())
				return ErrStreamClosed
			}
			o.dispatch(ctx, bar)
			if dec := o.checkRisk(ctx); dec.Halt {
				o.halted = true
				msg := fmt.Sprintf("HALT TRADING! account value dropped more than %s%%",
					o.cfg.MaxDrawdown.Mul(hundred))
				log.Printf("[orchestrator] %s", msg)
				o.notifier.Send(msg)
				o.shutdown(ctx)
				return nil
			}
		}
	}
}

// seedHistory builds every engine's price window from historical closes.
// Any asset without enough history aborts startup.
func (o *Orchestrator) seedHistory(ctx context.Context) error {
	bar := initProgressBar(len(o.cfg.Universe))
	for _, symbol := range o.cfg.Universe {
		closes, err := o.history.RecentCloses(ctx, symbol, o.cfg.HistoryBars)
		if err != nil {
			return fmt.Errorf("seed history for %s: %w", symbol, err)
		}
		if len(closes) < o.cfg.SlowPeriod {
			return fmt.Errorf("seed history for %s: got %d closes, need %d: %w",
				symbol, len(closes), o.cfg.SlowPeriod, ErrShortHistory)
		}
		o.engines[symbol].Seed(closes)
		bar.Add(1)
	}
	return nil
}

// dispatch routes one bar to its owning engine. Per-asset errors are
// contained here and never abort the loop.
func (o *Orchestrator) dispatch(ctx context.Context, bar types.Bar) {
	if bar.Exchange != o.cfg.Exchange {
		return
	}
	eng, ok := o.engines[bar.Symbol]
	if !ok {
		log.Printf("[orchestrator] dropped bar for unknown asset %s", bar.Symbol)
		return
	}
	if _, err := eng.OnBar(ctx, bar); err != nil {
		log.Printf("[orchestrator] %s: %v", bar.Symbol, err)
	}
}

// checkRisk reads a fresh account snapshot and evaluates the guard. A failed
// account read is logged and skips the check for this cycle only.
func (o *Orchestrator) checkRisk(ctx context.Context) HaltDecision {
	account, err := o.exec.GetAccount(ctx)
	if err != nil {
		log.Printf("[orchestrator] account read failed, skipping risk check: %v", err)
		return HaltDecision{}
	}
	dec := o.guard.Evaluate(account)
	if dec.Anomaly != "" {
		log.Printf("[orchestrator] risk anomaly: %s", dec.Anomaly)
		return dec
	}
	log.Printf("[orchestrator] account PnL: %s drawdown: %s", dec.PnL, dec.Drawdown)
	return dec
}

// shutdown runs the HALTING sequence: stop the stream, flatten every engine
// best-effort, close any brokerage-side leftovers, notify, stop.
func (o *Orchestrator) shutdown(ctx context.Context) {
	o.state = StateHalting
	if err := o.market.Close(); err != nil {
		log.Printf("[orchestrator] stream close failed: %v", err)
	}
	for symbol, eng := range o.engines {
		if err := eng.CloseOut(ctx); err != nil {
			log.Printf("[orchestrator] close out %s failed: %v", symbol, err)
		}
	}
	if err := o.exec.CloseAllPositions(ctx); err != nil {
		log.Printf("[orchestrator] close all positions failed: %v", err)
	}
	o.notifier.Send("Momentum algorithm stopped, all positions closed")
	o.state = StateStopped
}

func initProgressBar(assets int) *progressbar.ProgressBar {
	return progressbar.NewOptions(assets,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetDescription("Seeding price history..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
