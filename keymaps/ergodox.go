package keymaps

import (
	"github.com/Alia5/keylayer/hid"
	"github.com/Alia5/keylayer/keycode"
	"github.com/Alia5/keylayer/keymap"
	"github.com/Alia5/keylayer/macro"
)

// Ergodox layers.
const (
	BASE = 0 // Basic layer
	PROG = 1 // Programmer layer
	MDIA = 2 // Media layer
	OPER = 3 // OS layer, indicator only
)

// The ergodox grid is 6 rows x 14 columns: five key rows plus a thumb row,
// left hand in columns 0-6 and right hand in columns 7-13. Positions with no
// physical switch hold NO on every layer.
const (
	ergodoxRows = 6
	ergodoxCols = 14
)

var (
	___ = keycode.Transparent
	xxx = keycode.NoOp
)

func kc(code uint8) keycode.Keycode { return keycode.Plain(code) }
func sh(code uint8) keycode.Keycode { return keycode.Shifted(code) }

func row(left, right []keycode.Keycode) []keycode.Keycode {
	return append(append(make([]keycode.Keycode, 0, ergodoxCols), left...), right...)
}

// Ergodox is the ergodox_ez "jeffschenck" keymap: QWERTY with layers held
// under a finger rather than toggled.
var Ergodox = keymap.MustNew("ergodox_ez/jeffschenck", ergodoxRows, ergodoxCols,
	keymap.Layer{Name: "BASE", Keys: keymap.Grid(
		row([]keycode.Keycode{kc(hid.KeyGrave), kc(hid.Key1), kc(hid.Key2), kc(hid.Key3), kc(hid.Key4), kc(hid.Key5), kc(hid.Key6)},
			[]keycode.Keycode{kc(hid.Key5), kc(hid.Key6), kc(hid.Key7), kc(hid.Key8), kc(hid.Key9), kc(hid.Key0), kc(hid.KeyMinus)}),
		row([]keycode.Keycode{kc(hid.KeyTab), kc(hid.KeyQ), kc(hid.KeyW), kc(hid.KeyE), kc(hid.KeyR), kc(hid.KeyT), xxx},
			[]keycode.Keycode{xxx, kc(hid.KeyY), kc(hid.KeyU), kc(hid.KeyI), kc(hid.KeyO), kc(hid.KeyP), kc(hid.KeyEqual)}),
		row([]keycode.Keycode{keycode.ModTapHold(hid.ModLeftCtrl, hid.KeyCapsLock), keycode.LayerTapToggle(PROG, hid.KeyA), kc(hid.KeyS), kc(hid.KeyD), kc(hid.KeyF), kc(hid.KeyG), xxx},
			[]keycode.Keycode{xxx, kc(hid.KeyH), kc(hid.KeyJ), kc(hid.KeyK), kc(hid.KeyL), keycode.LayerTapToggle(MDIA, hid.KeySemicolon), keycode.ModTapHold(hid.ModHyper, hid.KeyApostrophe)}),
		row([]keycode.Keycode{kc(hid.KeyLeftShift), kc(hid.KeyZ), kc(hid.KeyX), kc(hid.KeyC), kc(hid.KeyV), kc(hid.KeyB), xxx},
			[]keycode.Keycode{xxx, kc(hid.KeyN), kc(hid.KeyM), kc(hid.KeyComma), kc(hid.KeyPeriod), kc(hid.KeySlash), kc(hid.KeyRightShift)}),
		row([]keycode.Keycode{kc(hid.KeyLeftCtrl), kc(hid.KeyLeftAlt), kc(hid.KeyLeftGUI), kc(hid.KeyLeft), kc(hid.KeyRight), xxx, xxx},
			[]keycode.Keycode{xxx, xxx, kc(hid.KeyDown), kc(hid.KeyUp), kc(hid.KeyRightGUI), kc(hid.KeyRightAlt), kc(hid.KeyRightCtrl)}),
		// thumbs
		row([]keycode.Keycode{kc(hid.KeyBackslash), sh(hid.KeyLeftBrace), kc(hid.KeyLeftBrace), kc(hid.KeyEnter), kc(hid.KeyLeftGUI), sh(hid.Key0), xxx},
			[]keycode.Keycode{xxx, sh(hid.KeyRightBrace), kc(hid.KeyEscape), kc(hid.KeyRightBrace), sh(hid.Key0), kc(hid.KeyBackspace), kc(hid.KeySpace)}),
	)},
	keymap.Layer{Name: "PROG", Keys: keymap.Grid(
		row([]keycode.Keycode{___, kc(hid.KeyF1), kc(hid.KeyF2), kc(hid.KeyF3), kc(hid.KeyF4), kc(hid.KeyF5), ___},
			[]keycode.Keycode{___, kc(hid.KeyF6), kc(hid.KeyF7), kc(hid.KeySlash), sh(hid.Key8), kc(hid.KeyMinus), ___}),
		row([]keycode.Keycode{___, ___, kc(hid.KeyEqual), sh(hid.KeyLeftBrace), sh(hid.KeyRightBrace), sh(hid.KeyBackslash), ___},
			[]keycode.Keycode{___, ___, kc(hid.Key7), kc(hid.Key8), kc(hid.Key9), sh(hid.KeyEqual), ___}),
		row([]keycode.Keycode{___, ___, sh(hid.Key3), sh(hid.Key9), sh(hid.Key0), kc(hid.KeyMinus), xxx},
			[]keycode.Keycode{xxx, ___, kc(hid.Key4), kc(hid.Key5), kc(hid.Key6), ___, ___}),
		row([]keycode.Keycode{___, ___, kc(hid.KeyGrave), kc(hid.KeyLeftBrace), kc(hid.KeyRightBrace), sh(hid.KeyMinus), ___},
			[]keycode.Keycode{___, ___, kc(hid.Key1), kc(hid.Key2), kc(hid.Key3), ___, ___}),
		row([]keycode.Keycode{___, ___, ___, ___, ___, xxx, xxx},
			[]keycode.Keycode{xxx, xxx, ___, kc(hid.KeyPeriod), kc(hid.Key0), kc(hid.KeyEnter), ___}),
		row([]keycode.Keycode{___, ___, ___, ___, ___, ___, xxx},
			[]keycode.Keycode{xxx, ___, ___, ___, ___, ___, ___}),
	)},
	keymap.Layer{Name: "MDIA", Keys: keymap.Grid(
		row([]keycode.Keycode{___, ___, ___, ___, ___, ___, ___},
			[]keycode.Keycode{___, ___, ___, ___, ___, ___, ___}),
		row([]keycode.Keycode{___, ___, xxx, kc(hid.KeyMouseUp), xxx, ___, ___},
			[]keycode.Keycode{___, xxx, xxx, kc(hid.KeyUp), xxx, ___, ___}),
		row([]keycode.Keycode{___, ___, kc(hid.KeyMouseLeft), kc(hid.KeyMouseDown), kc(hid.KeyMouseRight), ___, xxx},
			[]keycode.Keycode{xxx, xxx, kc(hid.KeyLeft), kc(hid.KeyDown), kc(hid.KeyRight), ___, ___}),
		row([]keycode.Keycode{___, ___, kc(hid.KeyMouseBtn3), kc(hid.KeyMouseBtn2), kc(hid.KeyMouseBtn1), ___, ___},
			[]keycode.Keycode{___, keycode.CompositeModifier(hid.ModHyper, hid.KeySemicolon), kc(hid.KeyMediaPrevious), kc(hid.KeyMediaNext), kc(hid.KeyMediaPlayPause), ___, ___}),
		// F14/F15 drive display brightness on OS X
		row([]keycode.Keycode{___, ___, ___, kc(hid.KeyF14), kc(hid.KeyF15), xxx, xxx},
			[]keycode.Keycode{xxx, xxx, kc(hid.KeyVolumeDown), kc(hid.KeyVolumeUp), kc(hid.KeyMute), ___, ___}),
		row([]keycode.Keycode{___, ___, ___, ___, ___, ___, xxx},
			[]keycode.Keycode{xxx, ___, ___, ___, ___, ___, ___}),
	)},
)

func init() {
	Register(&Board{
		Name:        Ergodox.Name(),
		Description: "ErgoDox EZ, QWERTY base with held PROG and MDIA layers",
		Table:       Ergodox,
		Macros:      macro.NewTable(),
		Indicators: map[int]string{
			PROG: "right_led_1",
			MDIA: "right_led_2",
			OPER: "right_led_3",
		},
	})
}
