package engine

import "fmt"

// State is the state of one matrix position.
type State uint8

const (
	Idle State = iota
	PressedPlain
	// PressedTapHold is an armed tap/hold key waiting for a decision.
	PressedTapHold
	PressedLayerHeld
	// PressedMod is a mod-tap key decided as hold.
	PressedMod
	PressedMacro
	PressedComposite
	// PressedNoOp is a pressed key whose release does nothing: NoOp, layer
	// toggles, unresolved macros and refused layer activations.
	PressedNoOp
)

var stateNames = [...]string{
	Idle:             "Idle",
	PressedPlain:     "PressedPlain",
	PressedTapHold:   "PressedTapHold",
	PressedLayerHeld: "PressedLayerHeld",
	PressedMod:       "PressedMod",
	PressedMacro:     "PressedMacro",
	PressedComposite: "PressedComposite",
	PressedNoOp:      "PressedNoOp",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}
