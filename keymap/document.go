package keymap

import (
	"fmt"

	"github.com/Alia5/keylayer/keycode"
	"github.com/Alia5/keylayer/macro"
)

// Document is the editable, serialisable form of a keymap: keycodes as text,
// layers referenced by name or index, and the board's macros.
type Document struct {
	Name   string          `json:"name" yaml:"name" toml:"name"`
	Rows   int             `json:"rows" yaml:"rows" toml:"rows"`
	Cols   int             `json:"cols" yaml:"cols" toml:"cols"`
	Layers []LayerDocument `json:"layers" yaml:"layers" toml:"layers"`
	Macros []MacroDocument `json:"macros,omitempty" yaml:"macros,omitempty" toml:"macros,omitempty"`
}

// LayerDocument is one layer of a Document.
type LayerDocument struct {
	Name string     `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Keys [][]string `json:"keys" yaml:"keys,flow" toml:"keys"`
}

// MacroDocument is one macro of a Document. Steps use macro.ParseStep syntax.
type MacroDocument struct {
	ID      int      `json:"id" yaml:"id" toml:"id"`
	Name    string   `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Press   []string `json:"press,omitempty" yaml:"press,omitempty,flow" toml:"press,omitempty"`
	Release []string `json:"release,omitempty" yaml:"release,omitempty,flow" toml:"release,omitempty"`
}

// Build parses and validates the document.
func (d *Document) Build() (*Table, *macro.Table, error) {
	names := make(map[string]uint8, len(d.Layers))
	for i, l := range d.Layers {
		if l.Name != "" && i < MaxLayers {
			names[l.Name] = uint8(i)
		}
	}
	lookup := func(n string) (uint8, bool) {
		i, ok := names[n]
		return i, ok
	}

	layers := make([]Layer, len(d.Layers))
	for li, ld := range d.Layers {
		layers[li].Name = ld.Name
		layers[li].Keys = make([][]keycode.Keycode, len(ld.Keys))
		for r, row := range ld.Keys {
			layers[li].Keys[r] = make([]keycode.Keycode, len(row))
			for c, text := range row {
				k, err := keycode.ParseWith(text, lookup)
				if err != nil {
					return nil, nil, fmt.Errorf("layer %d (%d,%d): %w", li, r, c, err)
				}
				layers[li].Keys[r][c] = k
			}
		}
	}
	t, err := New(d.Name, d.Rows, d.Cols, layers...)
	if err != nil {
		return nil, nil, err
	}

	macros := macro.NewTable()
	for _, md := range d.Macros {
		if md.ID < 0 || md.ID > 255 {
			return nil, nil, fmt.Errorf("macro %q: id %d out of range", md.Name, md.ID)
		}
		m := macro.Macro{ID: uint8(md.ID), Name: md.Name}
		if m.Press, err = parseSteps(md.Press); err != nil {
			return nil, nil, fmt.Errorf("macro %d press: %w", md.ID, err)
		}
		if m.Release, err = parseSteps(md.Release); err != nil {
			return nil, nil, fmt.Errorf("macro %d release: %w", md.ID, err)
		}
		macros.Set(m)
	}
	return t, macros, nil
}

func parseSteps(texts []string) ([]macro.Step, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	steps := make([]macro.Step, len(texts))
	for i, s := range texts {
		st, err := macro.ParseStep(s)
		if err != nil {
			return nil, err
		}
		steps[i] = st
	}
	return steps, nil
}

// NewDocument renders t and macros (which may be nil) as a Document. Layer
// operands are printed by name where the layer has one.
func NewDocument(t *Table, macros *macro.Table) *Document {
	d := &Document{
		Name:   t.Name(),
		Rows:   t.Rows(),
		Cols:   t.Cols(),
		Layers: make([]LayerDocument, t.Layers()),
	}
	namer := func(l uint8) string { return t.LayerName(int(l)) }
	for li := range d.Layers {
		d.Layers[li].Name = t.LayerName(li)
		d.Layers[li].Keys = make([][]string, t.Rows())
		for r := range d.Layers[li].Keys {
			row := make([]string, t.Cols())
			for c := range row {
				row[c] = keycode.Format(t.Lookup(li, r, c), namer)
			}
			d.Layers[li].Keys[r] = row
		}
	}
	for _, m := range macros.Macros() {
		md := MacroDocument{ID: int(m.ID), Name: m.Name}
		for _, s := range m.Press {
			md.Press = append(md.Press, s.String())
		}
		for _, s := range m.Release {
			md.Release = append(md.Release, s.String())
		}
		d.Macros = append(d.Macros, md)
	}
	return d
}
