package engine

import (
	"github.com/Alia5/keylayer/keycode"
	"github.com/Alia5/keylayer/keymap"
	"github.com/Alia5/keylayer/layer"
)

// Resolve returns the keycode for (row, col) under the active layers of
// stack: the first entry that is not Transparent, walking from the highest
// priority layer down. Layers the table does not define are skipped. The
// result is never Transparent; a nil stack resolves against the base layer.
func Resolve(t *keymap.Table, row, col int, stack *layer.Stack) keycode.Keycode {
	if stack != nil {
		for i := 0; i < stack.Len(); i++ {
			l := stack.At(i)
			if !t.Has(l) {
				continue
			}
			if k := t.Lookup(l, row, col); !k.IsTransparent() {
				return k
			}
		}
	}
	if k := t.Lookup(0, row, col); !k.IsTransparent() {
		return k
	}
	return keycode.NoOp
}
