package hid

// Modifier bitmasks as they appear in byte 0 of the input report.
const (
	ModLeftCtrl   = 0x01
	ModLeftShift  = 0x02
	ModLeftAlt    = 0x04
	ModLeftGUI    = 0x08 // Windows/Command key
	ModRightCtrl  = 0x10
	ModRightShift = 0x20
	ModRightAlt   = 0x40
	ModRightGUI   = 0x80

	// ModMeh is Ctrl+Shift+Alt, ModHyper adds GUI.
	ModMeh   = ModLeftCtrl | ModLeftShift | ModLeftAlt
	ModHyper = ModMeh | ModLeftGUI
)

// HID usage codes on the Keyboard/Keypad page.
const (
	KeyA = 0x04 + iota
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	Key1 // 0x1E
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	Key0 // 0x27
)

const (
	KeyEnter      = 0x28
	KeyEscape     = 0x29
	KeyBackspace  = 0x2A
	KeyTab        = 0x2B
	KeySpace      = 0x2C
	KeyMinus      = 0x2D // - and _
	KeyEqual      = 0x2E // = and +
	KeyLeftBrace  = 0x2F // [ and {
	KeyRightBrace = 0x30 // ] and }
	KeyBackslash  = 0x31 // \ and |
	KeyNonUSHash  = 0x32 // Non-US # and ~
	KeySemicolon  = 0x33 // ; and :
	KeyApostrophe = 0x34 // ' and "
	KeyGrave      = 0x35 // ` and ~
	KeyComma      = 0x36 // , and <
	KeyPeriod     = 0x37 // . and >
	KeySlash      = 0x38 // / and ?
	KeyCapsLock   = 0x39
)

// Function keys. F1-F12 and F13-F24 are two contiguous runs.
const (
	KeyF1 = 0x3A + iota
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

const (
	KeyF13 = 0x68 + iota
	KeyF14
	KeyF15
	KeyF16
	KeyF17
	KeyF18
	KeyF19
	KeyF20
	KeyF21
	KeyF22
	KeyF23
	KeyF24
)

const (
	KeyPrintScreen = 0x46
	KeyScrollLock  = 0x47
	KeyPause       = 0x48
	KeyInsert      = 0x49
	KeyHome        = 0x4A
	KeyPageUp      = 0x4B
	KeyDelete      = 0x4C
	KeyEnd         = 0x4D
	KeyPageDown    = 0x4E

	KeyRight = 0x4F
	KeyLeft  = 0x50
	KeyDown  = 0x51
	KeyUp    = 0x52
)

// Keypad.
const (
	KeyNumLock    = 0x53
	KeyKpSlash    = 0x54
	KeyKpAsterisk = 0x55
	KeyKpMinus    = 0x56
	KeyKpPlus     = 0x57
	KeyKpEnter    = 0x58
	KeyKp1        = 0x59
	KeyKp2        = 0x5A
	KeyKp3        = 0x5B
	KeyKp4        = 0x5C
	KeyKp5        = 0x5D
	KeyKp6        = 0x5E
	KeyKp7        = 0x5F
	KeyKp8        = 0x60
	KeyKp9        = 0x61
	KeyKp0        = 0x62
	KeyKpDot      = 0x63
	KeyKpEqual    = 0x67
)

const (
	KeyNonUSBackslash = 0x64
	KeyApplication    = 0x65 // Windows Menu key
	KeyPower          = 0x66

	KeyExecute    = 0x74
	KeyHelp       = 0x75
	KeyMenu       = 0x76
	KeySelect     = 0x77
	KeyStop       = 0x78
	KeyAgain      = 0x79 // Redo
	KeyUndo       = 0x7A
	KeyCut        = 0x7B
	KeyCopy       = 0x7C
	KeyPaste      = 0x7D
	KeyFind       = 0x7E
	KeyMute       = 0x7F
	KeyVolumeUp   = 0x80
	KeyVolumeDown = 0x81
)

// Modifier usages. A key-down of one of these sets the matching bit in the
// modifier byte instead of the key bitmap.
const (
	KeyLeftCtrl   = 0xE0
	KeyLeftShift  = 0xE1
	KeyLeftAlt    = 0xE2
	KeyLeftGUI    = 0xE3
	KeyRightCtrl  = 0xE4
	KeyRightShift = 0xE5
	KeyRightAlt   = 0xE6
	KeyRightGUI   = 0xE7
)

// Media keys, carried in the key bitmap with the other usages.
const (
	KeyMediaPlayPause = 0xE8
	KeyMediaStop      = 0xE9
	KeyMediaNext      = 0xEB
	KeyMediaPrevious  = 0xEC
)

// Pointer and extra media usages. They are not part of the keyboard report;
// Report drops them and leaves them to a pointer/consumer transport.
const (
	KeyMouseUp    = 0xF0
	KeyMouseDown  = 0xF1
	KeyMouseLeft  = 0xF2
	KeyMouseRight = 0xF3
	KeyMouseBtn1  = 0xF4
	KeyMouseBtn2  = 0xF5
	KeyMouseBtn3  = 0xF6
	KeyMediaEject = 0xF8

	firstExtended = KeyMouseUp
)

// IsModifier reports whether code is one of the 0xE0-0xE7 modifier usages.
func IsModifier(code uint8) bool {
	return code >= KeyLeftCtrl && code <= KeyRightGUI
}

// ModifierBit returns the modifier mask bit for a modifier usage, 0 otherwise.
func ModifierBit(code uint8) uint8 {
	if !IsModifier(code) {
		return 0
	}
	return 1 << (code - KeyLeftCtrl)
}

// IsExtended reports whether code lies outside the keyboard report.
func IsExtended(code uint8) bool {
	return code >= firstExtended
}
