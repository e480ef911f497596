package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/Alia5/keylayer/engine"
	"github.com/Alia5/keylayer/hid"
	"github.com/Alia5/keylayer/internal/log"
	"github.com/Alia5/keylayer/keycode"
	"github.com/Alia5/keylayer/keymap"

	"golang.org/x/term"
)

// ErrNotTerminal is returned by EnterRaw for redirected input.
var ErrNotTerminal = errors.New("stdin is not a terminal")

// quitByte ends a terminal session; raw mode swallows SIGINT.
const quitByte = 0x03 // Ctrl-C

type position struct{ row, col int }

// Terminal turns bytes typed on a raw terminal into key events. A terminal
// only reports characters, so each one becomes a press and release of the
// base layer position that produces it, wrapped in left shift where needed.
type Terminal struct {
	in     io.Reader
	clock  Clock
	logger *slog.Logger
	keys   atomic.Pointer[charMap]
}

type charMap struct {
	byUsage map[uint8]position
	shift   position
	hasSh   bool
}

// NewTerminal maps characters read from in onto t's base layer.
func NewTerminal(in io.Reader, t *keymap.Table, clock Clock, logger *slog.Logger) *Terminal {
	if clock == nil {
		clock = WallClock()
	}
	ts := &Terminal{in: in, clock: clock, logger: log.OrDiscard(logger)}
	ts.SetTable(t)
	return ts
}

// SetTable rebuilds the character lookup for tbl. It is safe to call while
// Run is reading.
func (t *Terminal) SetTable(tbl *keymap.Table) {
	m := &charMap{byUsage: make(map[uint8]position)}
	for r := 0; r < tbl.Rows(); r++ {
		for c := 0; c < tbl.Cols(); c++ {
			k := tbl.Lookup(0, r, c)
			switch k.Kind {
			case keycode.KindPlain, keycode.KindLayerTapToggle, keycode.KindModTapHold:
			default:
				continue
			}
			if k.Code == 0 {
				continue
			}
			if _, dup := m.byUsage[k.Code]; !dup {
				m.byUsage[k.Code] = position{r, c}
			}
			if k.Kind == keycode.KindPlain && k.Code == hid.KeyLeftShift && !m.hasSh {
				m.shift, m.hasSh = position{r, c}, true
			}
		}
	}
	t.keys.Store(m)
}

// Run reads from the terminal and sends events to out until ctx is done,
// input ends or the user types Ctrl-C. It returns nil in all three cases.
func (t *Terminal) Run(ctx context.Context, out chan<- engine.KeyEvent) error {
	buf := make([]byte, 64)
	for {
		n, err := t.in.Read(buf)
		for _, k := range decodeKeys(buf[:n]) {
			if k.quit {
				return nil
			}
			if err := t.send(ctx, out, k); err != nil {
				return nil
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read terminal: %w", err)
		}
	}
}

func (t *Terminal) send(ctx context.Context, out chan<- engine.KeyEvent, k typed) error {
	m := t.keys.Load()
	pos, ok := m.byUsage[k.usage]
	if !ok {
		t.logger.Debug("no base layer key for input", "usage", keycode.UsageName(k.usage))
		return nil
	}
	now := t.clock()
	var evs []engine.KeyEvent
	if k.shift && m.hasSh {
		evs = append(evs, engine.KeyEvent{Row: m.shift.row, Col: m.shift.col, Pressed: true, Time: now})
	}
	evs = append(evs,
		engine.KeyEvent{Row: pos.row, Col: pos.col, Pressed: true, Time: now},
		engine.KeyEvent{Row: pos.row, Col: pos.col, Time: now},
	)
	if k.shift && m.hasSh {
		evs = append(evs, engine.KeyEvent{Row: m.shift.row, Col: m.shift.col, Time: now})
	}
	for _, ev := range evs {
		select {
		case out <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// EnterRaw puts f into raw mode and returns the function restoring it.
func EnterRaw(f *os.File) (restore func(), err error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("raw mode: %w", err)
	}
	return func() { _ = term.Restore(fd, old) }, nil
}

// Width returns the terminal width of f, or fallback if f is not a terminal.
func Width(f *os.File, fallback int) int {
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}
