// Package hid holds the HID keyboard vocabulary shared by the engine and its
// transports: usage codes, modifier bits, the Action deltas the engine emits
// and a Report that folds those deltas into an N-key rollover input report.
package hid

import "fmt"

// ActionKind tags an Action.
type ActionKind uint8

const (
	ActionKeyDown ActionKind = iota + 1
	ActionKeyUp
	ActionModsDown
	ActionModsUp
)

func (k ActionKind) String() string {
	switch k {
	case ActionKeyDown:
		return "key-down"
	case ActionKeyUp:
		return "key-up"
	case ActionModsDown:
		return "mods-down"
	case ActionModsUp:
		return "mods-up"
	default:
		return fmt.Sprintf("ActionKind(%d)", uint8(k))
	}
}

// Action is one report delta: a usage going down or up, or a set of
// modifier bits being registered or unregistered.
type Action struct {
	Kind ActionKind
	Code uint8 // usage for ActionKeyDown/ActionKeyUp
	Mods uint8 // modifier mask for ActionModsDown/ActionModsUp
}

func Down(code uint8) Action { return Action{Kind: ActionKeyDown, Code: code} }
func Up(code uint8) Action   { return Action{Kind: ActionKeyUp, Code: code} }

func RegisterMods(mods uint8) Action   { return Action{Kind: ActionModsDown, Mods: mods} }
func UnregisterMods(mods uint8) Action { return Action{Kind: ActionModsUp, Mods: mods} }

func (a Action) String() string {
	switch a.Kind {
	case ActionKeyDown, ActionKeyUp:
		return fmt.Sprintf("%s 0x%02x", a.Kind, a.Code)
	default:
		return fmt.Sprintf("%s 0x%02x", a.Kind, a.Mods)
	}
}

// Sink consumes actions in emission order.
type Sink interface {
	Emit(a Action)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(a Action)

func (f SinkFunc) Emit(a Action) { f(a) }

// Discard drops every action.
var Discard Sink = SinkFunc(func(Action) {})
