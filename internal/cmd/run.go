package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Alia5/keylayer/engine"
	"github.com/Alia5/keylayer/hid"
	"github.com/Alia5/keylayer/indicator"
	"github.com/Alia5/keylayer/internal/log"
	"github.com/Alia5/keylayer/internal/watch"
	"github.com/Alia5/keylayer/keymap"
	"github.com/Alia5/keylayer/macro"
	"github.com/Alia5/keylayer/scan"

	"github.com/google/uuid"
)

// Run drives a keymap from the terminal: every character typed becomes a
// tap of the key producing it, and the resulting HID reports are logged.
type Run struct {
	Keymap   string        `help:"Keymap file or builtin name" default:"ergodox_ez/jeffschenck" env:"KEYLAYER_KEYMAP"`
	Watch    bool          `help:"Reload the keymap file when it changes" env:"KEYLAYER_WATCH"`
	Interval time.Duration `help:"Scan interval" default:"1ms" env:"KEYLAYER_SCAN_INTERVAL"`
	Engine   engine.Config `embed:"" prefix:"engine."`
}

// Run is called by Kong when the run command is executed.
func (r *Run) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	restore, err := scan.EnterRaw(os.Stdin)
	switch {
	case errors.Is(err, scan.ErrNotTerminal):
		logger.Info("stdin is not a terminal; reading it as typed input")
	case err != nil:
		return err
	default:
		defer restore()
		logger.Info("type to press keys, Ctrl-C to quit")
	}
	return r.Start(ctx, os.Stdin, logger, rawLogger)
}

// Start runs the engine on input from in until ctx is done or in ends.
func (r *Run) Start(ctx context.Context, in io.Reader, logger *slog.Logger, rawLogger log.RawLogger) error {
	logger = logger.With("session", uuid.NewString())

	board, path, err := openKeymap(r.Keymap)
	if err != nil {
		return err
	}
	if r.Watch && path == "" {
		return fmt.Errorf("--watch needs a keymap file, %q is builtin", r.Keymap)
	}

	panel, err := indicator.New(board.Indicators, func(state uint8) {
		rawLogger.Log("leds", []byte{state})
	}, logger)
	if err != nil {
		return err
	}
	report := hid.NewReport(func(b []byte) {
		rawLogger.Log("report", b)
	})

	e, err := engine.New(r.Engine, board.Table, board.Macros, report, logger)
	if err != nil {
		return err
	}
	e.OnActiveLayerChanged(panel.Update)
	logger.Info("engine started", "keymap", board.Name, "tapTimeout", r.Engine.TapTimeout)

	loop := scan.NewLoop(e, r.Interval, nil, logger)
	term := scan.NewTerminal(in, board.Table, loop.Clock(), logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if r.Watch {
		w := watch.New(path, 0, func(t *keymap.Table, m *macro.Table) {
			term.SetTable(t)
			loop.Reload(t, m)
		}, logger)
		go func() {
			if err := w.Run(ctx); err != nil {
				logger.Error("keymap watcher stopped", "error", err)
			}
		}()
	}

	events := make(chan engine.KeyEvent, 16)
	go func() {
		defer close(events)
		if err := term.Run(ctx, events); err != nil {
			logger.Error("terminal input stopped", "error", err)
		}
	}()

	err = loop.Run(ctx, events)
	logger.Info("engine stopped")
	return err
}
