// Package keycode defines the action descriptor stored in every keymap cell.
//
// A Keycode is a small comparable value: a Kind tag plus up to three byte
// sized operands. The zero value is NoOp. Keycodes have a textual form based
// on QMK names ("A", "TRNS", "LT(1,A)", "CTL_T(CAPS)", "HYPR(SCLN)", "M(0)")
// used by keymap documents and tooling.
package keycode

import (
	"fmt"

	"github.com/Alia5/keylayer/hid"
)

// Kind tags a Keycode.
type Kind uint8

const (
	KindNoOp Kind = iota
	KindTransparent
	KindPlain
	KindLayerTapToggle
	KindModTapHold
	KindLayerMomentary
	KindMacroTrigger
	KindCompositeModifier
	KindLayerToggle

	kindCount
)

var kindNames = [kindCount]string{
	KindNoOp:              "NoOp",
	KindTransparent:       "Transparent",
	KindPlain:             "Plain",
	KindLayerTapToggle:    "LayerTapToggle",
	KindModTapHold:        "ModTapHold",
	KindLayerMomentary:    "LayerMomentary",
	KindMacroTrigger:      "MacroTrigger",
	KindCompositeModifier: "CompositeModifier",
	KindLayerToggle:       "LayerToggle",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Valid reports whether k is a known tag.
func (k Kind) Valid() bool { return k < kindCount }

// Keycode is the action descriptor of one keymap cell.
type Keycode struct {
	Kind Kind
	// Code is the HID usage for Plain, CompositeModifier and the tap side of
	// LayerTapToggle and ModTapHold.
	Code uint8
	// Mods is the modifier mask of ModTapHold and CompositeModifier.
	Mods uint8
	// Param is the layer index of the layer kinds or the macro id.
	Param uint8
}

var (
	NoOp        = Keycode{Kind: KindNoOp}
	Transparent = Keycode{Kind: KindTransparent}
)

// Plain sends code while the key is held.
func Plain(code uint8) Keycode {
	return Keycode{Kind: KindPlain, Code: code}
}

// LayerTapToggle sends code on tap and holds layer while pressed. With a
// NoOp code (see TapToggle) repeated taps toggle the layer instead.
func LayerTapToggle(layer, code uint8) Keycode {
	return Keycode{Kind: KindLayerTapToggle, Param: layer, Code: code}
}

// TapToggle is the code-less LayerTapToggle (QMK TT).
func TapToggle(layer uint8) Keycode {
	return LayerTapToggle(layer, 0)
}

// ModTapHold sends code on tap and holds mods while pressed.
func ModTapHold(mods, code uint8) Keycode {
	return Keycode{Kind: KindModTapHold, Mods: mods, Code: code}
}

// LayerMomentary holds layer while pressed.
func LayerMomentary(layer uint8) Keycode {
	return Keycode{Kind: KindLayerMomentary, Param: layer}
}

// LayerToggle flips layer on every press.
func LayerToggle(layer uint8) Keycode {
	return Keycode{Kind: KindLayerToggle, Param: layer}
}

// MacroTrigger dispatches macro id on press and release.
func MacroTrigger(id uint8) Keycode {
	return Keycode{Kind: KindMacroTrigger, Param: id}
}

// CompositeModifier sends code with mods held around it.
func CompositeModifier(mods, code uint8) Keycode {
	return Keycode{Kind: KindCompositeModifier, Mods: mods, Code: code}
}

// Shifted is CompositeModifier with left shift, as used by QMK's
// KC_LCBR, KC_PIPE and friends.
func Shifted(code uint8) Keycode {
	return CompositeModifier(hid.ModLeftShift, code)
}

// Layer returns the layer operand of the layer kinds.
func (k Keycode) Layer() uint8 { return k.Param }

// Macro returns the macro id of a MacroTrigger.
func (k Keycode) Macro() uint8 { return k.Param }

// IsTransparent reports whether k falls through to lower layers.
func (k Keycode) IsTransparent() bool { return k.Kind == KindTransparent }

// IsTapHold reports whether k needs deferred tap/hold resolution.
func (k Keycode) IsTapHold() bool {
	return k.Kind == KindLayerTapToggle || k.Kind == KindModTapHold
}

// ReferencesLayer reports whether k names a layer in Param.
func (k Keycode) ReferencesLayer() bool {
	switch k.Kind {
	case KindLayerTapToggle, KindLayerMomentary, KindLayerToggle:
		return true
	}
	return false
}

// Pack encodes k as 4 bytes: kind, code, mods, param.
func (k Keycode) Pack() [4]byte {
	return [4]byte{byte(k.Kind), k.Code, k.Mods, k.Param}
}

// Unpack decodes the Pack form.
func Unpack(b [4]byte) (Keycode, error) {
	k := Keycode{Kind: Kind(b[0]), Code: b[1], Mods: b[2], Param: b[3]}
	if !k.Kind.Valid() {
		return NoOp, fmt.Errorf("%w: kind %d", ErrUnknownKeycode, b[0])
	}
	return k, nil
}

func (k Keycode) String() string {
	return Format(k, nil)
}

// MarshalText implements encoding.TextMarshaler.
func (k Keycode) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Keycode) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
