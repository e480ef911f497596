// Package scan feeds key events into an engine: a ticking loop that is the
// engine's only writer, a deterministic script player and a raw terminal
// source for trying keymaps without hardware.
package scan

import (
	"context"
	"log/slog"
	"time"

	"github.com/Alia5/keylayer/engine"
	"github.com/Alia5/keylayer/internal/log"
	"github.com/Alia5/keylayer/keymap"
)

// DefaultInterval is the 1kHz scan rate.
const DefaultInterval = time.Millisecond

// Clock is a free-running millisecond clock. It wraps after ~49 days; the
// engine compares timestamps modulo 2^32.
type Clock func() uint32

// WallClock returns a Clock counting milliseconds from now.
func WallClock() Clock {
	start := time.Now()
	return func() uint32 {
		return uint32(time.Since(start).Milliseconds())
	}
}

// Loop owns an engine. Run is the only goroutine that touches it; other
// goroutines hand over events and keymap reloads through channels.
type Loop struct {
	engine   *engine.Engine
	interval time.Duration
	clock    Clock
	logger   *slog.Logger
	reload   chan reload
}

type reload struct {
	table  *keymap.Table
	macros engine.MacroRunner
}

// NewLoop creates a loop ticking e every interval (DefaultInterval if <= 0).
// clock nil means WallClock.
func NewLoop(e *engine.Engine, interval time.Duration, clock Clock, logger *slog.Logger) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if clock == nil {
		clock = WallClock()
	}
	return &Loop{
		engine:   e,
		interval: interval,
		clock:    clock,
		logger:   log.OrDiscard(logger),
		reload:   make(chan reload, 1),
	}
}

// Clock returns the loop's clock, for sources stamping events.
func (l *Loop) Clock() Clock { return l.clock }

// Reload queues t and its macros to replace the engine's keymap. A reload
// still queued is superseded.
func (l *Loop) Reload(t *keymap.Table, macros engine.MacroRunner) {
	r := reload{table: t, macros: macros}
	for {
		select {
		case l.reload <- r:
			return
		default:
		}
		select {
		case <-l.reload:
		default:
		}
	}
}

// Run processes events until ctx is done or events is closed. Pressed keys
// are released on the way out.
func (l *Loop) Run(ctx context.Context, events <-chan engine.KeyEvent) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	defer l.engine.ReleaseAll()
	l.logger.Debug("scan loop started", "interval", l.interval)
	defer l.logger.Debug("scan loop stopped")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			l.engine.Tick(l.clock())
		case r := <-l.reload:
			l.engine.SetMacros(r.macros)
			l.engine.SetTable(r.table)
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			// The engine logs the events it drops.
			_ = l.engine.Handle(ev)
		}
	}
}
