package scan

import "github.com/Alia5/keylayer/hid"

type typed struct {
	usage uint8
	shift bool
	quit  bool
}

// charKeys maps printable ASCII and the control bytes a raw terminal sends
// to the usage typing them on a US layout.
var charKeys = map[byte]typed{
	' ': {usage: hid.KeySpace}, '\r': {usage: hid.KeyEnter}, '\n': {usage: hid.KeyEnter},
	'\t': {usage: hid.KeyTab}, 0x7f: {usage: hid.KeyBackspace}, 0x08: {usage: hid.KeyBackspace},
	0x1b: {usage: hid.KeyEscape},

	'1': {usage: hid.Key1}, '2': {usage: hid.Key2}, '3': {usage: hid.Key3}, '4': {usage: hid.Key4}, '5': {usage: hid.Key5},
	'6': {usage: hid.Key6}, '7': {usage: hid.Key7}, '8': {usage: hid.Key8}, '9': {usage: hid.Key9}, '0': {usage: hid.Key0},
	'!': {usage: hid.Key1, shift: true}, '@': {usage: hid.Key2, shift: true}, '#': {usage: hid.Key3, shift: true}, '$': {usage: hid.Key4, shift: true}, '%': {usage: hid.Key5, shift: true},
	'^': {usage: hid.Key6, shift: true}, '&': {usage: hid.Key7, shift: true}, '*': {usage: hid.Key8, shift: true}, '(': {usage: hid.Key9, shift: true}, ')': {usage: hid.Key0, shift: true},

	'-': {usage: hid.KeyMinus}, '_': {usage: hid.KeyMinus, shift: true},
	'=': {usage: hid.KeyEqual}, '+': {usage: hid.KeyEqual, shift: true},
	'[': {usage: hid.KeyLeftBrace}, '{': {usage: hid.KeyLeftBrace, shift: true},
	']': {usage: hid.KeyRightBrace}, '}': {usage: hid.KeyRightBrace, shift: true},
	'\\': {usage: hid.KeyBackslash}, '|': {usage: hid.KeyBackslash, shift: true},
	';': {usage: hid.KeySemicolon}, ':': {usage: hid.KeySemicolon, shift: true},
	'\'': {usage: hid.KeyApostrophe}, '"': {usage: hid.KeyApostrophe, shift: true},
	'`': {usage: hid.KeyGrave}, '~': {usage: hid.KeyGrave, shift: true},
	',': {usage: hid.KeyComma}, '<': {usage: hid.KeyComma, shift: true},
	'.': {usage: hid.KeyPeriod}, '>': {usage: hid.KeyPeriod, shift: true},
	'/': {usage: hid.KeySlash}, '?': {usage: hid.KeySlash, shift: true},
}

func init() {
	for c := byte('a'); c <= 'z'; c++ {
		charKeys[c] = typed{usage: hid.KeyA + (c - 'a')}
		charKeys[c-'a'+'A'] = typed{usage: hid.KeyA + (c - 'a'), shift: true}
	}
}

// csiKeys are the final bytes of ESC [ sequences for the arrow keys.
var csiKeys = map[byte]uint8{
	'A': hid.KeyUp,
	'B': hid.KeyDown,
	'C': hid.KeyRight,
	'D': hid.KeyLeft,
	'H': hid.KeyHome,
	'F': hid.KeyEnd,
}

// decodeKeys splits one read from a raw terminal into typed keys, ending at
// Ctrl-C. Unknown bytes and escape sequences are skipped.
func decodeKeys(b []byte) []typed {
	var out []typed
	for i := 0; i < len(b); i++ {
		c := b[i]
		if c == quitByte {
			return append(out, typed{quit: true})
		}
		if c == 0x1b && i+2 < len(b) && b[i+1] == '[' {
			if u, ok := csiKeys[b[i+2]]; ok {
				out = append(out, typed{usage: u})
			}
			i += 2
			continue
		}
		if k, ok := charKeys[c]; ok {
			out = append(out, k)
		}
	}
	return out
}
