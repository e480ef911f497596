package keycode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Alia5/keylayer/hid"
)

type usageName struct {
	name string
	code uint8
}

// usages lists canonical short names first; the first name registered for a
// code is the one Format prints.
var usages = []usageName{
	{"A", hid.KeyA}, {"B", hid.KeyB}, {"C", hid.KeyC}, {"D", hid.KeyD}, {"E", hid.KeyE},
	{"F", hid.KeyF}, {"G", hid.KeyG}, {"H", hid.KeyH}, {"I", hid.KeyI}, {"J", hid.KeyJ},
	{"K", hid.KeyK}, {"L", hid.KeyL}, {"M", hid.KeyM}, {"N", hid.KeyN}, {"O", hid.KeyO},
	{"P", hid.KeyP}, {"Q", hid.KeyQ}, {"R", hid.KeyR}, {"S", hid.KeyS}, {"T", hid.KeyT},
	{"U", hid.KeyU}, {"V", hid.KeyV}, {"W", hid.KeyW}, {"X", hid.KeyX}, {"Y", hid.KeyY},
	{"Z", hid.KeyZ},

	{"1", hid.Key1}, {"2", hid.Key2}, {"3", hid.Key3}, {"4", hid.Key4}, {"5", hid.Key5},
	{"6", hid.Key6}, {"7", hid.Key7}, {"8", hid.Key8}, {"9", hid.Key9}, {"0", hid.Key0},

	{"ENT", hid.KeyEnter}, {"ESC", hid.KeyEscape}, {"BSPC", hid.KeyBackspace},
	{"TAB", hid.KeyTab}, {"SPC", hid.KeySpace}, {"MINS", hid.KeyMinus},
	{"EQL", hid.KeyEqual}, {"LBRC", hid.KeyLeftBrace}, {"RBRC", hid.KeyRightBrace},
	{"BSLS", hid.KeyBackslash}, {"NUHS", hid.KeyNonUSHash}, {"SCLN", hid.KeySemicolon},
	{"QUOT", hid.KeyApostrophe}, {"GRV", hid.KeyGrave}, {"COMM", hid.KeyComma},
	{"DOT", hid.KeyPeriod}, {"SLSH", hid.KeySlash}, {"CAPS", hid.KeyCapsLock},

	{"F1", hid.KeyF1}, {"F2", hid.KeyF2}, {"F3", hid.KeyF3}, {"F4", hid.KeyF4},
	{"F5", hid.KeyF5}, {"F6", hid.KeyF6}, {"F7", hid.KeyF7}, {"F8", hid.KeyF8},
	{"F9", hid.KeyF9}, {"F10", hid.KeyF10}, {"F11", hid.KeyF11}, {"F12", hid.KeyF12},
	{"F13", hid.KeyF13}, {"F14", hid.KeyF14}, {"F15", hid.KeyF15}, {"F16", hid.KeyF16},
	{"F17", hid.KeyF17}, {"F18", hid.KeyF18}, {"F19", hid.KeyF19}, {"F20", hid.KeyF20},
	{"F21", hid.KeyF21}, {"F22", hid.KeyF22}, {"F23", hid.KeyF23}, {"F24", hid.KeyF24},

	{"PSCR", hid.KeyPrintScreen}, {"SLCK", hid.KeyScrollLock}, {"PAUS", hid.KeyPause},
	{"INS", hid.KeyInsert}, {"HOME", hid.KeyHome}, {"PGUP", hid.KeyPageUp},
	{"DEL", hid.KeyDelete}, {"END", hid.KeyEnd}, {"PGDN", hid.KeyPageDown},
	{"RGHT", hid.KeyRight}, {"LEFT", hid.KeyLeft}, {"DOWN", hid.KeyDown}, {"UP", hid.KeyUp},

	{"NLCK", hid.KeyNumLock}, {"PSLS", hid.KeyKpSlash}, {"PAST", hid.KeyKpAsterisk},
	{"PMNS", hid.KeyKpMinus}, {"PPLS", hid.KeyKpPlus}, {"PENT", hid.KeyKpEnter},
	{"P1", hid.KeyKp1}, {"P2", hid.KeyKp2}, {"P3", hid.KeyKp3}, {"P4", hid.KeyKp4},
	{"P5", hid.KeyKp5}, {"P6", hid.KeyKp6}, {"P7", hid.KeyKp7}, {"P8", hid.KeyKp8},
	{"P9", hid.KeyKp9}, {"P0", hid.KeyKp0}, {"PDOT", hid.KeyKpDot}, {"PEQL", hid.KeyKpEqual},

	{"NUBS", hid.KeyNonUSBackslash}, {"APP", hid.KeyApplication}, {"PWR", hid.KeyPower},
	{"EXEC", hid.KeyExecute}, {"HELP", hid.KeyHelp}, {"MENU", hid.KeyMenu},
	{"SLCT", hid.KeySelect}, {"STOP", hid.KeyStop}, {"AGIN", hid.KeyAgain},
	{"UNDO", hid.KeyUndo}, {"CUT", hid.KeyCut}, {"COPY", hid.KeyCopy},
	{"PSTE", hid.KeyPaste}, {"FIND", hid.KeyFind}, {"MUTE", hid.KeyMute},
	{"VOLU", hid.KeyVolumeUp}, {"VOLD", hid.KeyVolumeDown},

	{"LCTL", hid.KeyLeftCtrl}, {"LSFT", hid.KeyLeftShift}, {"LALT", hid.KeyLeftAlt},
	{"LGUI", hid.KeyLeftGUI}, {"RCTL", hid.KeyRightCtrl}, {"RSFT", hid.KeyRightShift},
	{"RALT", hid.KeyRightAlt}, {"RGUI", hid.KeyRightGUI},

	{"MPLY", hid.KeyMediaPlayPause}, {"MSTP", hid.KeyMediaStop},
	{"MNXT", hid.KeyMediaNext}, {"MPRV", hid.KeyMediaPrevious}, {"EJCT", hid.KeyMediaEject},
	{"MS_U", hid.KeyMouseUp}, {"MS_D", hid.KeyMouseDown}, {"MS_L", hid.KeyMouseLeft},
	{"MS_R", hid.KeyMouseRight}, {"BTN1", hid.KeyMouseBtn1}, {"BTN2", hid.KeyMouseBtn2},
	{"BTN3", hid.KeyMouseBtn3},

	// Aliases.
	{"ENTER", hid.KeyEnter}, {"ESCAPE", hid.KeyEscape}, {"BSPACE", hid.KeyBackspace},
	{"SPACE", hid.KeySpace}, {"MINUS", hid.KeyMinus}, {"EQUAL", hid.KeyEqual},
	{"LCAP", hid.KeyCapsLock}, {"CAPSLOCK", hid.KeyCapsLock}, {"RIGHT", hid.KeyRight},
	{"DELETE", hid.KeyDelete}, {"INSERT", hid.KeyInsert}, {"PGDOWN", hid.KeyPageDown},
	{"LCTRL", hid.KeyLeftCtrl}, {"LSHIFT", hid.KeyLeftShift}, {"RCTRL", hid.KeyRightCtrl},
	{"RSHIFT", hid.KeyRightShift}, {"LCMD", hid.KeyLeftGUI}, {"RCMD", hid.KeyRightGUI},
	{"PAUSE", hid.KeyPause},
}

// shiftedNames are the QMK names for LSFT(x) keycodes.
var shiftedNames = []usageName{
	{"EXLM", hid.Key1}, {"AT", hid.Key2}, {"HASH", hid.Key3}, {"DLR", hid.Key4},
	{"PERC", hid.Key5}, {"CIRC", hid.Key6}, {"AMPR", hid.Key7}, {"ASTR", hid.Key8},
	{"LPRN", hid.Key9}, {"RPRN", hid.Key0}, {"UNDS", hid.KeyMinus}, {"PLUS", hid.KeyEqual},
	{"LCBR", hid.KeyLeftBrace}, {"RCBR", hid.KeyRightBrace}, {"PIPE", hid.KeyBackslash},
	{"COLN", hid.KeySemicolon}, {"DQUO", hid.KeyApostrophe}, {"TILD", hid.KeyGrave},
	{"LABK", hid.KeyComma}, {"RABK", hid.KeyPeriod}, {"QUES", hid.KeySlash},
}

var modNames = [8]string{"LCTL", "LSFT", "LALT", "LGUI", "RCTL", "RSFT", "RALT", "RGUI"}

var modAliases = map[string]uint8{
	"CTL":  hid.ModLeftCtrl,
	"SFT":  hid.ModLeftShift,
	"ALT":  hid.ModLeftAlt,
	"GUI":  hid.ModLeftGUI,
	"MEH":  hid.ModMeh,
	"HYPR": hid.ModHyper,
}

// modTapNames maps QMK mod-tap shorthands to their masks. Format prefers
// these over MT(...) when the mask matches.
var modTapNames = []struct {
	name string
	mods uint8
}{
	{"CTL_T", hid.ModLeftCtrl},
	{"SFT_T", hid.ModLeftShift},
	{"ALT_T", hid.ModLeftAlt},
	{"GUI_T", hid.ModLeftGUI},
	{"RCTL_T", hid.ModRightCtrl},
	{"RSFT_T", hid.ModRightShift},
	{"RALT_T", hid.ModRightAlt},
	{"RGUI_T", hid.ModRightGUI},
	{"MEH_T", hid.ModMeh},
	{"ALL_T", hid.ModHyper},
	{"LCTL_T", hid.ModLeftCtrl},
	{"LSFT_T", hid.ModLeftShift},
	{"LALT_T", hid.ModLeftAlt},
	{"LGUI_T", hid.ModLeftGUI},
	{"HYPR_T", hid.ModHyper},
}

var (
	codeByName    = map[string]uint8{}
	nameByCode    [256]string
	shiftedByName = map[string]uint8{}
	shiftedByCode [256]string
)

func init() {
	for _, u := range usages {
		codeByName[u.name] = u.code
		if nameByCode[u.code] == "" {
			nameByCode[u.code] = u.name
		}
	}
	for _, u := range shiftedNames {
		shiftedByName[u.name] = u.code
		shiftedByCode[u.code] = u.name
	}
}

// LookupUsage returns the HID usage for a key name such as "A", "KC_ENT" or
// "0x2c".
func LookupUsage(name string) (uint8, bool) {
	name = normalize(name)
	if code, ok := codeByName[name]; ok {
		return code, true
	}
	if strings.HasPrefix(name, "0X") {
		if code, err := strconv.ParseUint(name[2:], 16, 8); err == nil {
			return uint8(code), true
		}
	}
	return 0, false
}

// UsageName returns the canonical name of code, or its hex form.
func UsageName(code uint8) string {
	if n := nameByCode[code]; n != "" {
		return n
	}
	return fmt.Sprintf("0x%02X", code)
}

// ModsString formats a modifier mask as "LCTL|LSFT".
func ModsString(mods uint8) string {
	var parts []string
	for i, n := range modNames {
		if mods&(1<<i) != 0 {
			parts = append(parts, n)
		}
	}
	if len(parts) == 0 {
		return "NONE"
	}
	return strings.Join(parts, "|")
}

// ParseMods parses "LCTL|LSFT", "HYPR" or "MEH" into a mask.
func ParseMods(s string) (uint8, error) {
	var mods uint8
	for _, p := range strings.Split(s, "|") {
		p = normalize(p)
		if m, ok := modAliases[p]; ok {
			mods |= m
			continue
		}
		found := false
		for i, n := range modNames {
			if p == n || p == "MOD_"+n {
				mods |= 1 << i
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("%w: modifier %q", ErrUnknownKeycode, p)
		}
	}
	if mods == 0 {
		return 0, fmt.Errorf("%w: empty modifier set", ErrUnknownKeycode)
	}
	return mods, nil
}

func normalize(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.TrimPrefix(s, "KC_")
}
