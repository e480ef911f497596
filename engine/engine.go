// Package engine turns raw matrix events into HID actions.
//
// An Engine owns the layer stack and one small state machine per matrix
// position. Every press is resolved against the active layers once; the
// resolved keycode is remembered so the matching release undoes exactly what
// the press did, whatever happened to the layers in between. Tap/hold keys
// defer their decision: a release inside the tap timeout is a tap, while the
// timeout passing or any other key going down makes it a hold.
//
// The engine is single-threaded. Handle and Tick must be called from one
// goroutine and never allocate.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Alia5/keylayer/hid"
	"github.com/Alia5/keylayer/internal/log"
	"github.com/Alia5/keylayer/keycode"
	"github.com/Alia5/keylayer/keymap"
	"github.com/Alia5/keylayer/layer"
)

// ErrOutOfRangeCoordinate is returned for events outside the matrix. The
// event is dropped.
var ErrOutOfRangeCoordinate = errors.New("key event outside matrix")

// KeyEvent is one physical transition reported by the scanner. Time is a
// free-running millisecond clock; comparisons tolerate wrap-around.
type KeyEvent struct {
	Row     int
	Col     int
	Pressed bool
	Time    uint32
}

func (ev KeyEvent) String() string {
	dir := "release"
	if ev.Pressed {
		dir = "press"
	}
	return fmt.Sprintf("%s (%d,%d) @%dms", dir, ev.Row, ev.Col, ev.Time)
}

// MacroRunner plays macros for MacroTrigger keys. *macro.Table satisfies it.
// Both methods report false for an unknown id.
type MacroRunner interface {
	Press(id uint8, sink hid.Sink) bool
	Release(id uint8, sink hid.Sink) bool
}

type keyState struct {
	state     State
	action    keycode.Keycode
	pressedAt uint32
}

// pending is the single armed tap/hold key, if any.
type pending struct {
	armed    bool
	row, col int
}

// tapCount tracks consecutive taps of one tap-toggle key.
type tapCount struct {
	row, col   int
	count      int
	releasedAt uint32
}

// Engine is the per-board event state machine.
type Engine struct {
	cfg    Config
	tapMs  uint32
	table  *keymap.Table
	stack  *layer.Stack
	macros MacroRunner
	sink   hid.Sink
	logger *slog.Logger

	keys     []keyState // row-major
	pending  pending
	taps     tapCount
	onChange layer.ChangeFunc
}

// New builds an engine for table. macros may be nil; sink nil discards
// output; logger nil discards logs.
func New(cfg Config, table *keymap.Table, macros MacroRunner, sink hid.Sink, logger *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if table == nil {
		return nil, errors.New("engine: nil keymap table")
	}
	if sink == nil {
		sink = hid.Discard
	}
	e := &Engine{
		cfg:    cfg,
		tapMs:  cfg.tapTimeoutMillis(),
		table:  table,
		macros: macros,
		sink:   sink,
		logger: log.OrDiscard(logger),
		keys:   make([]keyState, table.Rows()*table.Cols()),
	}
	e.stack = layer.New(cfg.StackCapacity, e.layerChanged)
	return e, nil
}

// OnActiveLayerChanged registers fn to be called with the topmost layer
// whenever it changes.
func (e *Engine) OnActiveLayerChanged(fn layer.ChangeFunc) { e.onChange = fn }

// Stack exposes the layer stack, e.g. for indicators and tests.
func (e *Engine) Stack() *layer.Stack { return e.stack }

// Table returns the keymap in use.
func (e *Engine) Table() *keymap.Table { return e.table }

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// State returns the state of (row, col); Idle outside the matrix.
func (e *Engine) State(row, col int) State {
	if !e.table.InMatrix(row, col) {
		return Idle
	}
	return e.keys[e.index(row, col)].state
}

// Pending reports the position of the armed tap/hold key, if any.
func (e *Engine) Pending() (row, col int, ok bool) {
	return e.pending.row, e.pending.col, e.pending.armed
}

// Handle processes one event. Expired tap/hold timers are resolved first.
func (e *Engine) Handle(ev KeyEvent) error {
	if !e.table.InMatrix(ev.Row, ev.Col) {
		e.logger.Warn("dropping key event outside matrix",
			"row", ev.Row, "col", ev.Col, "rows", e.table.Rows(), "cols", e.table.Cols())
		return fmt.Errorf("%w: (%d,%d)", ErrOutOfRangeCoordinate, ev.Row, ev.Col)
	}
	e.Tick(ev.Time)
	if log.Tracing(e.logger) {
		e.logger.Log(context.Background(), log.LevelTrace, "key event", "event", ev)
	}
	if ev.Pressed {
		e.press(ev.Row, ev.Col, ev.Time)
	} else {
		e.release(ev.Row, ev.Col, ev.Time)
	}
	return nil
}

// Tick resolves the armed tap/hold key as a hold once its timeout has passed
// at now. The scan loop calls it every pass.
func (e *Engine) Tick(now uint32) {
	if !e.pending.armed {
		return
	}
	ks := &e.keys[e.index(e.pending.row, e.pending.col)]
	if elapsed(ks.pressedAt, now) >= e.tapMs {
		e.resolveHold()
	}
}

// Reset discards the armed tap/hold key, all per-key state and tap counts,
// and returns the layer stack to base. Nothing is emitted.
func (e *Engine) Reset() {
	clear(e.keys)
	e.pending = pending{}
	e.taps = tapCount{}
	e.stack.Reset()
}

// ReleaseAll emits the release side of every pressed key, as if each were
// let go, then resets. An armed tap/hold key is discarded.
func (e *Engine) ReleaseAll() {
	e.pending = pending{}
	for i := range e.keys {
		ks := &e.keys[i]
		if ks.state != PressedTapHold {
			e.undo(ks)
		}
	}
	e.Reset()
}

// SetTable swaps the keymap. Pressed keys are released first.
func (e *Engine) SetTable(t *keymap.Table) {
	e.ReleaseAll()
	e.table = t
	if n := t.Rows() * t.Cols(); n != len(e.keys) {
		e.keys = make([]keyState, n)
	}
	e.logger.Info("keymap loaded", "name", t.Name(), "layers", t.Layers(), "rows", t.Rows(), "cols", t.Cols())
}

// SetMacros swaps the macro runner. Pressed keys are released first so no
// macro is left without its release half.
func (e *Engine) SetMacros(m MacroRunner) {
	e.ReleaseAll()
	e.macros = m
}

func (e *Engine) press(row, col int, now uint32) {
	ks := &e.keys[e.index(row, col)]
	if ks.state != Idle {
		// Bounce or a missed release; the first press stands.
		return
	}
	// Another key going down decides an armed tap/hold before this key is
	// resolved, so a layer it holds applies here.
	if e.pending.armed {
		e.resolveHold()
	}
	if e.taps.count > 0 && (e.taps.row != row || e.taps.col != col) {
		e.taps = tapCount{}
	}

	k := Resolve(e.table, row, col, e.stack)
	ks.action = k
	ks.pressedAt = now

	switch k.Kind {
	case keycode.KindPlain:
		e.emit(hid.Down(k.Code))
		ks.state = PressedPlain
	case keycode.KindLayerMomentary:
		if e.activate(int(k.Layer()), layer.Held) {
			ks.state = PressedLayerHeld
		} else {
			ks.state = PressedNoOp
		}
	case keycode.KindLayerTapToggle, keycode.KindModTapHold:
		e.pending = pending{armed: true, row: row, col: col}
		ks.state = PressedTapHold
	case keycode.KindCompositeModifier:
		e.emit(hid.RegisterMods(k.Mods))
		e.emit(hid.Down(k.Code))
		ks.state = PressedComposite
	case keycode.KindMacroTrigger:
		if e.macros != nil && e.macros.Press(k.Macro(), e.sink) {
			ks.state = PressedMacro
		} else {
			if e.logger.Enabled(context.Background(), slog.LevelDebug) {
				e.logger.Debug("unresolved macro", "id", k.Macro(), "row", row, "col", col)
			}
			ks.state = PressedNoOp
		}
	case keycode.KindLayerToggle:
		if err := e.stack.Toggle(int(k.Layer())); err != nil {
			e.logger.Warn("layer toggle ignored", "layer", k.Layer(), "error", err)
		}
		ks.state = PressedNoOp
	default:
		ks.state = PressedNoOp
	}
}

func (e *Engine) release(row, col int, now uint32) {
	ks := &e.keys[e.index(row, col)]
	switch ks.state {
	case Idle:
		return
	case PressedTapHold:
		// Still armed after Tick: released inside the timeout, so a tap.
		e.pending = pending{}
		e.tap(row, col, ks, now)
	default:
		e.undo(ks)
	}
	*ks = keyState{}
}

// undo performs the release side of a decided key.
func (e *Engine) undo(ks *keyState) {
	k := ks.action
	switch ks.state {
	case PressedPlain:
		e.emit(hid.Up(k.Code))
	case PressedLayerHeld:
		e.stack.Release(int(k.Layer()))
	case PressedMod:
		e.emit(hid.UnregisterMods(k.Mods))
	case PressedComposite:
		e.emit(hid.Up(k.Code))
		e.emit(hid.UnregisterMods(k.Mods))
	case PressedMacro:
		e.macros.Release(k.Macro(), e.sink)
	}
}

func (e *Engine) tap(row, col int, ks *keyState, now uint32) {
	k := ks.action
	if k.Kind == keycode.KindLayerTapToggle && k.Code == 0 {
		e.tapToggle(row, col, ks, now)
		return
	}
	if k.Code != 0 {
		e.emit(hid.Down(k.Code))
		e.emit(hid.Up(k.Code))
	}
}

// tapToggle counts taps of a code-less tap-toggle key. Each press must come
// within the tap timeout of the previous tap's release.
func (e *Engine) tapToggle(row, col int, ks *keyState, now uint32) {
	t := &e.taps
	if t.count > 0 && t.row == row && t.col == col && elapsed(t.releasedAt, ks.pressedAt) < e.tapMs {
		t.count++
	} else {
		*t = tapCount{row: row, col: col, count: 1}
	}
	t.releasedAt = now
	if t.count < e.cfg.TapToggleCount {
		return
	}
	*t = tapCount{}
	l := int(ks.action.Layer())
	if err := e.stack.Toggle(l); err != nil {
		e.logger.Warn("layer toggle ignored", "layer", l, "error", err)
	}
}

func (e *Engine) resolveHold() {
	row, col := e.pending.row, e.pending.col
	e.pending = pending{}
	e.taps = tapCount{}
	ks := &e.keys[e.index(row, col)]
	k := ks.action
	switch k.Kind {
	case keycode.KindModTapHold:
		e.emit(hid.RegisterMods(k.Mods))
		ks.state = PressedMod
	case keycode.KindLayerTapToggle:
		if e.activate(int(k.Layer()), layer.Held) {
			ks.state = PressedLayerHeld
		} else {
			ks.state = PressedNoOp
		}
	}
}

func (e *Engine) activate(l int, kind layer.Kind) bool {
	if err := e.stack.Activate(l, kind); err != nil {
		e.logger.Warn("layer activation ignored", "layer", l, "error", err)
		return false
	}
	return true
}

func (e *Engine) layerChanged(top int) {
	if e.logger.Enabled(context.Background(), slog.LevelDebug) {
		e.logger.Debug("active layer changed", "layer", top, "name", e.table.LayerName(top))
	}
	if e.onChange != nil {
		e.onChange(top)
	}
}

func (e *Engine) emit(a hid.Action) {
	if log.Tracing(e.logger) {
		e.logger.Log(context.Background(), log.LevelTrace, "emit", "action", a)
	}
	e.sink.Emit(a)
}

func (e *Engine) index(row, col int) int {
	return row*e.table.Cols() + col
}

// elapsed is now-since on a wrapping millisecond clock.
func elapsed(since, now uint32) uint32 {
	return now - since
}
