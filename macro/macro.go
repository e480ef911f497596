// Package macro is the macro collaborator of the engine: a table of macros
// whose press and release halves are short sequences of HID steps.
package macro

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Alia5/keylayer/hid"
	"github.com/Alia5/keylayer/keycode"
)

// ErrUnresolvedMacro is reported when a trigger names an id with no macro.
var ErrUnresolvedMacro = errors.New("unresolved macro")

// ErrInvalidStep is returned for unparsable step text.
var ErrInvalidStep = errors.New("invalid macro step")

// Op is what a Step does with its usage.
type Op uint8

const (
	OpDown Op = iota + 1
	OpUp
	OpTap
)

func (o Op) String() string {
	switch o {
	case OpDown:
		return "down"
	case OpUp:
		return "up"
	case OpTap:
		return "tap"
	default:
		return fmt.Sprintf("Op(%d)", uint8(o))
	}
}

// Step presses, releases or taps one usage. Modifier usages become modifier
// bits in the report, so "down LSFT" registers shift.
type Step struct {
	Op   Op
	Code uint8
}

func Down(code uint8) Step { return Step{Op: OpDown, Code: code} }
func Up(code uint8) Step   { return Step{Op: OpUp, Code: code} }
func Tap(code uint8) Step  { return Step{Op: OpTap, Code: code} }

func (s Step) String() string {
	return s.Op.String() + " " + keycode.UsageName(s.Code)
}

// ParseStep parses "down LSFT", "up KC_LSFT" or "tap A".
func ParseStep(text string) (Step, error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return Step{}, fmt.Errorf("%w: %q", ErrInvalidStep, text)
	}
	code, ok := keycode.LookupUsage(fields[1])
	if !ok {
		return Step{}, fmt.Errorf("%w: unknown key %q", ErrInvalidStep, fields[1])
	}
	switch strings.ToLower(fields[0]) {
	case "down":
		return Down(code), nil
	case "up":
		return Up(code), nil
	case "tap":
		return Tap(code), nil
	default:
		return Step{}, fmt.Errorf("%w: unknown op %q", ErrInvalidStep, fields[0])
	}
}

func (s Step) emit(sink hid.Sink) {
	switch s.Op {
	case OpDown:
		sink.Emit(hid.Down(s.Code))
	case OpUp:
		sink.Emit(hid.Up(s.Code))
	case OpTap:
		sink.Emit(hid.Down(s.Code))
		sink.Emit(hid.Up(s.Code))
	}
}

// Macro is the behaviour bound to one MacroTrigger id.
type Macro struct {
	ID      uint8
	Name    string
	Press   []Step
	Release []Step
}

// Table holds up to 256 macros indexed by id. The zero value is empty and
// ready to use.
type Table struct {
	macros [256]*Macro
}

// NewTable returns a table holding ms. Later entries replace earlier ones
// with the same id.
func NewTable(ms ...Macro) *Table {
	t := &Table{}
	for _, m := range ms {
		t.Set(m)
	}
	return t
}

// Set stores m under m.ID.
func (t *Table) Set(m Macro) {
	t.macros[m.ID] = &m
}

// Get returns the macro for id.
func (t *Table) Get(id uint8) (*Macro, bool) {
	if t == nil {
		return nil, false
	}
	m := t.macros[id]
	return m, m != nil
}

// Require returns ErrUnresolvedMacro if id has no macro.
func (t *Table) Require(id uint8) error {
	if _, ok := t.Get(id); !ok {
		return fmt.Errorf("%w: id %d", ErrUnresolvedMacro, id)
	}
	return nil
}

// Macros returns the stored macros ordered by id.
func (t *Table) Macros() []Macro {
	if t == nil {
		return nil
	}
	var out []Macro
	for _, m := range t.macros {
		if m != nil {
			out = append(out, *m)
		}
	}
	return out
}

// Len returns the number of stored macros.
func (t *Table) Len() int {
	n := 0
	if t == nil {
		return n
	}
	for _, m := range t.macros {
		if m != nil {
			n++
		}
	}
	return n
}

// Press plays the press half of macro id into sink and reports whether the
// macro exists.
func (t *Table) Press(id uint8, sink hid.Sink) bool {
	m, ok := t.Get(id)
	if !ok {
		return false
	}
	for _, s := range m.Press {
		s.emit(sink)
	}
	return true
}

// Release plays the release half of macro id into sink.
func (t *Table) Release(id uint8, sink hid.Sink) bool {
	m, ok := t.Get(id)
	if !ok {
		return false
	}
	for _, s := range m.Release {
		s.emit(sink)
	}
	return true
}
