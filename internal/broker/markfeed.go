package broker

import (
	"context"
	"tradebot/internal/engine"
	"tradebot/types"
)

// MarkFeed wraps a market-data port and keeps a paper broker's mark prices
// current from the bars flowing through it, so paper fills always price at
// the latest close the strategy has seen.
type MarkFeed struct {
	inner engine.MarketDataPort
	paper *Paper
}

func NewMarkFeed(inner engine.MarketDataPort, paper *Paper) *MarkFeed {
	return &MarkFeed{inner: inner, paper: paper}
}

func (m *MarkFeed) Subscribe(ctx context.Context, symbols []string) (<-chan types.Bar, error) {
	upstream, err := m.inner.Subscribe(ctx, symbols)
	if err != nil {
		return nil, err
	}

	out := make(chan types.Bar, 256)
	go func() {
		defer close(out)
		for bar := range upstream {
			m.paper.UpdateMark(bar.Symbol, bar.Close)
			select {
			case out <- bar:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (m *MarkFeed) Close() error {
	return m.inner.Close()
}
