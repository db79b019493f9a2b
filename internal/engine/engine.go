// Package engine drives the phase transitions of in-progress rooms in the
// background, so games move on even when nobody is polling.
package engine

import (
	"context"
	"log/slog"
	"time"
)

// Target is ticked once per interval. TickAll returns how many rooms changed.
type Target interface {
	TickAll() int
}

// TickerGen creates the tick source. It returns the channel and a stop func.
type TickerGen func(interval time.Duration) (<-chan time.Time, func())

// NewTickerGen returns a TickerGen backed by time.Ticker
func NewTickerGen() TickerGen {
	return func(interval time.Duration) (<-chan time.Time, func()) {
		t := time.NewTicker(interval)
		return t.C, t.Stop
	}
}

// Engine periodically ticks a Target
type Engine struct {
	target   Target
	interval time.Duration
	logger   *slog.Logger
	ticker   TickerGen
}

// New creates an engine ticking target every interval
func New(target Target, interval time.Duration, logger *slog.Logger, ticker TickerGen) *Engine {
	if ticker == nil {
		ticker = NewTickerGen()
	}
	return &Engine{
		target:   target,
		interval: interval,
		logger:   logger,
		ticker:   ticker,
	}
}

// Run ticks until ctx is cancelled
func (e *Engine) Run(ctx context.Context) {
	ticks, stop := e.ticker(e.interval)
	defer stop()

	e.logger.Info("tick engine started", "interval", e.interval)
	for {
		select {
		case <-ctx.Done():
			e.logger.Info("tick engine stopped")
			return
		case <-ticks:
			if n := e.target.TickAll(); n > 0 {
				e.logger.Debug("rooms advanced", "count", n)
			}
		}
	}
}
