package keycode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Alia5/keylayer/hid"
)

// ErrUnknownKeycode is returned for text that names no keycode.
var ErrUnknownKeycode = errors.New("unknown keycode")

// LayerLookup resolves a layer name used inside LT/MO/TG/TT.
type LayerLookup func(name string) (uint8, bool)

// LayerNamer returns the name Format prints for a layer, or "" for the index.
type LayerNamer func(layer uint8) string

// Parse parses the textual form with numeric layer operands only.
func Parse(s string) (Keycode, error) {
	return ParseWith(s, nil)
}

// ParseWith parses the textual form, resolving named layer operands through
// layers.
func ParseWith(s string, layers LayerLookup) (Keycode, error) {
	k, err := parse(strings.TrimSpace(s), layers)
	if err != nil {
		return NoOp, fmt.Errorf("%q: %w", s, err)
	}
	return k, nil
}

func parse(s string, layers LayerLookup) (Keycode, error) {
	fn, args, isCall, err := splitCall(s)
	if err != nil {
		return NoOp, err
	}
	if !isCall {
		return parseName(s)
	}

	switch fn {
	case "LT":
		if len(args) != 2 {
			return NoOp, arity(fn, 2)
		}
		layer, err := parseLayer(args[0], layers)
		if err != nil {
			return NoOp, err
		}
		code, err := parseTapCode(args[1])
		if err != nil {
			return NoOp, err
		}
		return LayerTapToggle(layer, code), nil
	case "TT", "MO", "TG":
		if len(args) != 1 {
			return NoOp, arity(fn, 1)
		}
		layer, err := parseLayer(args[0], layers)
		if err != nil {
			return NoOp, err
		}
		switch fn {
		case "TT":
			return TapToggle(layer), nil
		case "MO":
			return LayerMomentary(layer), nil
		default:
			return LayerToggle(layer), nil
		}
	case "M":
		if len(args) != 1 {
			return NoOp, arity(fn, 1)
		}
		id, err := strconv.ParseUint(args[0], 0, 8)
		if err != nil {
			return NoOp, fmt.Errorf("%w: macro id %q", ErrUnknownKeycode, args[0])
		}
		return MacroTrigger(uint8(id)), nil
	case "MT", "MODS":
		if len(args) != 2 {
			return NoOp, arity(fn, 2)
		}
		mods, err := ParseMods(args[0])
		if err != nil {
			return NoOp, err
		}
		if fn == "MT" {
			code, err := parseTapCode(args[1])
			if err != nil {
				return NoOp, err
			}
			return ModTapHold(mods, code), nil
		}
		return wrapMods(mods, args[1], layers)
	}

	for _, mt := range modTapNames {
		if fn == mt.name {
			if len(args) != 1 {
				return NoOp, arity(fn, 1)
			}
			code, err := parseTapCode(args[0])
			if err != nil {
				return NoOp, err
			}
			return ModTapHold(mt.mods, code), nil
		}
	}

	// LSFT(x), HYPR(x), MEH(x) and friends.
	if len(args) == 1 {
		if mods, err := ParseMods(fn); err == nil {
			return wrapMods(mods, args[0], layers)
		}
	}
	return NoOp, fmt.Errorf("%w: function %s", ErrUnknownKeycode, fn)
}

func wrapMods(mods uint8, inner string, layers LayerLookup) (Keycode, error) {
	k, err := parse(inner, layers)
	if err != nil {
		return NoOp, err
	}
	switch k.Kind {
	case KindPlain:
		return CompositeModifier(mods, k.Code), nil
	case KindCompositeModifier:
		return CompositeModifier(mods|k.Mods, k.Code), nil
	default:
		return NoOp, fmt.Errorf("%w: cannot add modifiers to %s", ErrUnknownKeycode, k.Kind)
	}
}

func parseName(s string) (Keycode, error) {
	switch n := normalize(s); n {
	case "":
		return NoOp, fmt.Errorf("%w: empty", ErrUnknownKeycode)
	case "TRNS", "TRANSPARENT", "_______":
		return Transparent, nil
	case "NO", "XXXXXXX":
		return NoOp, nil
	default:
		if code, ok := shiftedByName[n]; ok {
			return Shifted(code), nil
		}
		if code, ok := LookupUsage(n); ok {
			return Plain(code), nil
		}
		return NoOp, fmt.Errorf("%w: %s", ErrUnknownKeycode, n)
	}
}

func parseTapCode(s string) (uint8, error) {
	n := normalize(s)
	if n == "NO" {
		return 0, nil
	}
	code, ok := LookupUsage(n)
	if !ok {
		return 0, fmt.Errorf("%w: tap code %s", ErrUnknownKeycode, n)
	}
	return code, nil
}

func parseLayer(s string, layers LayerLookup) (uint8, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseUint(s, 10, 8); err == nil {
		return uint8(n), nil
	}
	if layers != nil {
		if n, ok := layers(s); ok {
			return n, nil
		}
	}
	return 0, fmt.Errorf("%w: layer %q", ErrUnknownKeycode, s)
}

// splitCall splits "FN(a,b)" into FN and its top level arguments.
func splitCall(s string) (fn string, args []string, isCall bool, err error) {
	open := strings.IndexByte(s, '(')
	if open < 0 {
		return "", nil, false, nil
	}
	if !strings.HasSuffix(s, ")") || open == 0 {
		return "", nil, false, fmt.Errorf("%w: malformed %s", ErrUnknownKeycode, s)
	}
	fn = strings.ToUpper(strings.TrimSpace(s[:open]))
	body := s[open+1 : len(s)-1]
	depth, start := 0, 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return "", nil, false, fmt.Errorf("%w: unbalanced %s", ErrUnknownKeycode, s)
			}
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(body[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return "", nil, false, fmt.Errorf("%w: unbalanced %s", ErrUnknownKeycode, s)
	}
	args = append(args, strings.TrimSpace(body[start:]))
	return fn, args, true, nil
}

func arity(fn string, n int) error {
	return fmt.Errorf("%w: %s takes %d argument(s)", ErrUnknownKeycode, fn, n)
}

// Format prints k in its canonical textual form. names, if non-nil, supplies
// layer names for layer operands.
func Format(k Keycode, names LayerNamer) string {
	layer := func() string {
		if names != nil {
			if n := names(k.Param); n != "" {
				return n
			}
		}
		return strconv.Itoa(int(k.Param))
	}

	switch k.Kind {
	case KindNoOp:
		return "NO"
	case KindTransparent:
		return "TRNS"
	case KindPlain:
		return UsageName(k.Code)
	case KindLayerTapToggle:
		if k.Code == 0 {
			return "TT(" + layer() + ")"
		}
		return "LT(" + layer() + "," + UsageName(k.Code) + ")"
	case KindLayerMomentary:
		return "MO(" + layer() + ")"
	case KindLayerToggle:
		return "TG(" + layer() + ")"
	case KindMacroTrigger:
		return "M(" + strconv.Itoa(int(k.Param)) + ")"
	case KindModTapHold:
		tap := "NO"
		if k.Code != 0 {
			tap = UsageName(k.Code)
		}
		for _, mt := range modTapNames {
			if mt.mods == k.Mods {
				return mt.name + "(" + tap + ")"
			}
		}
		return "MT(" + ModsString(k.Mods) + "," + tap + ")"
	case KindCompositeModifier:
		return formatComposite(k)
	default:
		return fmt.Sprintf("Keycode(%d)", uint8(k.Kind))
	}
}

func formatComposite(k Keycode) string {
	if k.Mods == hid.ModLeftShift {
		if n := shiftedByCode[k.Code]; n != "" {
			return n
		}
	}
	inner := UsageName(k.Code)
	switch k.Mods {
	case hid.ModHyper:
		return "HYPR(" + inner + ")"
	case hid.ModMeh:
		return "MEH(" + inner + ")"
	}
	if k.Mods != 0 && k.Mods&(k.Mods-1) == 0 {
		return ModsString(k.Mods) + "(" + inner + ")"
	}
	return "MODS(" + ModsString(k.Mods) + "," + inner + ")"
}
