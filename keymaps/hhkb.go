package keymaps

import (
	_ "embed"

	"github.com/Alia5/keylayer/keymap"
)

//go:embed hhkb.yaml
var hhkbYAML []byte

// HHKB is the s60_x Happy Hacking layout with a momentary FN layer.
var HHKB = mustDecode(hhkbYAML, keymap.FormatYAML)

func mustDecode(data []byte, f keymap.Format) *Board {
	doc, err := keymap.Decode(data, f)
	if err != nil {
		panic(err)
	}
	t, m, err := doc.Build()
	if err != nil {
		panic(err)
	}
	return &Board{Name: t.Name(), Table: t, Macros: m}
}

func init() {
	HHKB.Description = "s60_x HHKB layout, FN held under the right pinky"
	Register(HHKB)
}
