package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Alia5/keylayer/engine"
	"github.com/Alia5/keylayer/indicator"
	"github.com/Alia5/keylayer/internal/log"
	"github.com/Alia5/keylayer/scan"
)

// Simulate replays a key script and prints what the host would see.
type Simulate struct {
	Script string        `arg:"" help:"Script file (YAML)" type:"existingfile"`
	Keymap string        `help:"Keymap file or builtin name; overrides the script's keymap" env:"KEYLAYER_KEYMAP"`
	Engine engine.Config `embed:"" prefix:"engine."`
	Out    io.Writer     `kong:"-"`
}

// Run is called by Kong when the simulate command is executed.
func (s *Simulate) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	script, err := scan.LoadScript(s.Script)
	if err != nil {
		return err
	}
	name := s.Keymap
	if name == "" {
		name = script.Keymap
	}
	if name == "" {
		return errors.New("no keymap: set --keymap or keymap: in the script")
	}
	board, _, err := openKeymap(name)
	if err != nil {
		return err
	}
	panel, err := indicator.New(board.Indicators, nil, logger)
	if err != nil {
		return err
	}

	frames, err := scan.Replay(script, board.Table, scan.ReplayOptions{
		Config: s.Engine,
		Macros: board.Macros,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	out := stdout(s.Out)
	fmt.Fprintf(out, "%s: %d steps\n", board.Name, len(frames))
	dropped := 0
	for _, f := range frames {
		panel.Update(f.Layers[0])
		if len(f.Actions) > 0 {
			rawLogger.Log("report", f.State.BuildReport())
		}
		fmt.Fprintln(out, formatFrame(f, panel))
		if f.Err != nil {
			dropped++
		}
	}
	if dropped > 0 {
		logger.Warn("events dropped", "count", dropped)
	}
	return nil
}

func formatFrame(f scan.Frame, panel *indicator.Panel) string {
	acts := make([]string, len(f.Actions))
	for i, a := range f.Actions {
		acts[i] = a.String()
	}
	keys := f.State.Keys()
	held := make([]string, len(keys))
	for i, k := range keys {
		held[i] = fmt.Sprintf("0x%02x", k)
	}
	line := fmt.Sprintf("%7dms %-14s layers=%v leds=%s keys=[%s]", f.At, f.Step, f.Layers, panel, strings.Join(held, " "))
	if len(acts) > 0 {
		line += " emit=[" + strings.Join(acts, ", ") + "]"
	}
	if f.Err != nil {
		line += " dropped: " + f.Err.Error()
	}
	return line
}
