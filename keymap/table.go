// Package keymap holds the immutable per-layer keycode tables the engine
// resolves against, and their persisted forms.
package keymap

import (
	"errors"
	"fmt"

	"github.com/Alia5/keylayer/keycode"
)

// MaxLayers bounds both the number of layers in a table and the layer
// indices keycodes may reference.
const MaxLayers = 32

var (
	ErrDimensions      = errors.New("keymap dimensions mismatch")
	ErrTransparentBase = errors.New("transparent keycode in base layer")
	ErrTooManyLayers   = errors.New("too many layers")
	ErrLayerReference  = errors.New("keycode references invalid layer")
	ErrInvalidKeycode  = errors.New("invalid keycode")
	ErrDuplicateLayer  = errors.New("duplicate layer name")
)

// Layer is one named grid of keycodes, given row by row.
type Layer struct {
	Name string
	Keys [][]keycode.Keycode
}

// Table is a validated layers x rows x cols grid. It is never mutated after
// New returns and is safe to share.
type Table struct {
	name   string
	rows   int
	cols   int
	names  []string
	cells  []keycode.Keycode // layer-major, then row-major
	byName map[string]int
}

// New validates layers against rows x cols and builds a Table.
func New(name string, rows, cols int, layers ...Layer) (*Table, error) {
	if rows <= 0 || cols <= 0 || rows > 255 || cols > 255 {
		return nil, fmt.Errorf("%w: %dx%d", ErrDimensions, rows, cols)
	}
	if len(layers) == 0 {
		return nil, fmt.Errorf("%w: no layers", ErrDimensions)
	}
	if len(layers) > MaxLayers {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyLayers, len(layers), MaxLayers)
	}

	t := &Table{
		name:   name,
		rows:   rows,
		cols:   cols,
		names:  make([]string, len(layers)),
		cells:  make([]keycode.Keycode, 0, len(layers)*rows*cols),
		byName: make(map[string]int, len(layers)),
	}
	for li, l := range layers {
		if len(l.Keys) != rows {
			return nil, fmt.Errorf("%w: layer %d has %d rows, want %d", ErrDimensions, li, len(l.Keys), rows)
		}
		if len(l.Name) > 255 {
			return nil, fmt.Errorf("%w: layer %d name longer than 255 bytes", ErrDimensions, li)
		}
		if l.Name != "" {
			if _, dup := t.byName[l.Name]; dup {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateLayer, l.Name)
			}
			t.byName[l.Name] = li
		}
		t.names[li] = l.Name
		for r, row := range l.Keys {
			if len(row) != cols {
				return nil, fmt.Errorf("%w: layer %d row %d has %d columns, want %d", ErrDimensions, li, r, len(row), cols)
			}
			for c, k := range row {
				if err := checkCell(li, k); err != nil {
					return nil, fmt.Errorf("layer %d (%d,%d): %w", li, r, c, err)
				}
				t.cells = append(t.cells, k)
			}
		}
	}
	return t, nil
}

func checkCell(layer int, k keycode.Keycode) error {
	if !k.Kind.Valid() {
		return fmt.Errorf("%w: kind %d", ErrInvalidKeycode, uint8(k.Kind))
	}
	if layer == 0 && k.IsTransparent() {
		return ErrTransparentBase
	}
	if k.ReferencesLayer() && int(k.Layer()) >= MaxLayers {
		return fmt.Errorf("%w: %d", ErrLayerReference, k.Layer())
	}
	var code, mods, param bool
	switch k.Kind {
	case keycode.KindPlain:
		code = true
	case keycode.KindLayerTapToggle:
		code, param = true, true
	case keycode.KindModTapHold, keycode.KindCompositeModifier:
		if k.Mods == 0 {
			return fmt.Errorf("%w: %s without modifiers", ErrInvalidKeycode, k.Kind)
		}
		code, mods = true, true
	case keycode.KindLayerMomentary, keycode.KindLayerToggle, keycode.KindMacroTrigger:
		param = true
	}
	// Operands a kind does not use would be lost by Format and change the
	// fingerprint across a document round trip.
	if (!code && k.Code != 0) || (!mods && k.Mods != 0) || (!param && k.Param != 0) {
		return fmt.Errorf("%w: %s with unused operands %v", ErrInvalidKeycode, k.Kind, k.Pack())
	}
	return nil
}

// MustNew is New for package level tables; it panics on invalid input.
func MustNew(name string, rows, cols int, layers ...Layer) *Table {
	t, err := New(name, rows, cols, layers...)
	if err != nil {
		panic(fmt.Sprintf("keymap %s: %v", name, err))
	}
	return t
}

// Lookup returns the keycode at (layer, row, col), or NoOp when any
// coordinate is out of range.
func (t *Table) Lookup(layer, row, col int) keycode.Keycode {
	if !t.Has(layer) || !t.InMatrix(row, col) {
		return keycode.NoOp
	}
	return t.cells[(layer*t.rows+row)*t.cols+col]
}

// Has reports whether the table defines layer.
func (t *Table) Has(layer int) bool {
	return layer >= 0 && layer < len(t.names)
}

// InMatrix reports whether (row, col) is inside the matrix.
func (t *Table) InMatrix(row, col int) bool {
	return row >= 0 && row < t.rows && col >= 0 && col < t.cols
}

func (t *Table) Name() string { return t.name }
func (t *Table) Rows() int     { return t.rows }
func (t *Table) Cols() int     { return t.cols }
func (t *Table) Layers() int   { return len(t.names) }

// LayerName returns the name of layer, "" if unnamed or undefined.
func (t *Table) LayerName(layer int) string {
	if !t.Has(layer) {
		return ""
	}
	return t.names[layer]
}

// LayerIndex returns the index of a named layer.
func (t *Table) LayerIndex(name string) (int, bool) {
	i, ok := t.byName[name]
	return i, ok
}

// Layer returns a copy of one layer's grid.
func (t *Table) Layer(layer int) Layer {
	l := Layer{Name: t.LayerName(layer)}
	if !t.Has(layer) {
		return l
	}
	l.Keys = make([][]keycode.Keycode, t.rows)
	for r := range l.Keys {
		start := (layer*t.rows + r) * t.cols
		l.Keys[r] = append([]keycode.Keycode(nil), t.cells[start:start+t.cols]...)
	}
	return l
}

// Find returns the first position of k on layer.
func (t *Table) Find(layer int, k keycode.Keycode) (row, col int, ok bool) {
	for r := 0; r < t.rows; r++ {
		for c := 0; c < t.cols; c++ {
			if t.Lookup(layer, r, c) == k {
				return r, c, true
			}
		}
	}
	return 0, 0, false
}

// Grid is a convenience for literal tables: each argument is one row.
func Grid(rows ...[]keycode.Keycode) [][]keycode.Keycode {
	return rows
}
