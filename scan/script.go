package scan

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/Alia5/keylayer/engine"
	"github.com/Alia5/keylayer/hid"
	"github.com/Alia5/keylayer/keymap"

	yaml "gopkg.in/yaml.v3"
)

// ErrInvalidScript wraps every script parse and validation failure.
var ErrInvalidScript = errors.New("invalid script")

// Script is a timed list of key transitions, replayed without a wall clock.
//
//	keymap: ergodox_ez/jeffschenck
//	steps:
//	  - {at: 0, press: [2, 1]}
//	  - {at: 250, press: [2, 3]}
//	  - {at: 300, tick: true}
type Script struct {
	// Keymap names a builtin board or a keymap file. Optional.
	Keymap string       `yaml:"keymap,omitempty"`
	Steps  []ScriptStep `yaml:"steps"`
}

// ScriptStep is one press, release or bare clock tick at time At (ms).
type ScriptStep struct {
	At      uint32 `yaml:"at"`
	Press   []int  `yaml:"press,omitempty,flow"`
	Release []int  `yaml:"release,omitempty,flow"`
	Tick    bool   `yaml:"tick,omitempty"`
}

func (s ScriptStep) event() (engine.KeyEvent, bool, error) {
	n := 0
	if s.Press != nil {
		n++
	}
	if s.Release != nil {
		n++
	}
	if s.Tick {
		n++
	}
	if n != 1 {
		return engine.KeyEvent{}, false, fmt.Errorf("%w: step at %dms needs exactly one of press, release, tick", ErrInvalidScript, s.At)
	}
	if s.Tick {
		return engine.KeyEvent{}, false, nil
	}
	pos, pressed := s.Release, false
	if s.Press != nil {
		pos, pressed = s.Press, true
	}
	if len(pos) != 2 {
		return engine.KeyEvent{}, false, fmt.Errorf("%w: step at %dms: position must be [row, col]", ErrInvalidScript, s.At)
	}
	return engine.KeyEvent{Row: pos[0], Col: pos[1], Pressed: pressed, Time: s.At}, true, nil
}

// ParseScript decodes a YAML script.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}
	var last uint32
	for i, st := range s.Steps {
		if _, _, err := st.event(); err != nil {
			return nil, err
		}
		if i > 0 && st.At < last {
			return nil, fmt.Errorf("%w: step %d at %dms goes back in time", ErrInvalidScript, i, st.At)
		}
		last = st.At
	}
	return &s, nil
}

// LoadScript reads and parses a script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := ParseScript(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Frame is the outcome of one script step.
type Frame struct {
	At      uint32
	Step    string
	Actions []hid.Action
	// Layers is the stack after the step, highest first.
	Layers []int
	State  hid.InputState
	// Err is set when the engine dropped the event.
	Err error
}

// ReplayOptions configure the engine Replay builds.
type ReplayOptions struct {
	Config engine.Config
	Macros engine.MacroRunner
	Logger *slog.Logger
}

// Replay runs s against a fresh engine over t and returns one frame per step.
// Dropped events are recorded on their frame and do not stop the replay.
func Replay(s *Script, t *keymap.Table, opts ReplayOptions) ([]Frame, error) {
	var actions []hid.Action
	report := hid.NewReport(nil)
	sink := hid.SinkFunc(func(a hid.Action) {
		actions = append(actions, a)
		report.Emit(a)
	})

	e, err := engine.New(opts.Config, t, opts.Macros, sink, opts.Logger)
	if err != nil {
		return nil, err
	}

	frames := make([]Frame, 0, len(s.Steps))
	for _, st := range s.Steps {
		ev, isEvent, err := st.event()
		if err != nil {
			return frames, err
		}
		f := Frame{At: st.At, Step: "tick"}
		if isEvent {
			f.Step = "release"
			if ev.Pressed {
				f.Step = "press"
			}
			f.Step = fmt.Sprintf("%s (%d,%d)", f.Step, ev.Row, ev.Col)
			f.Err = e.Handle(ev)
		} else {
			e.Tick(st.At)
		}
		f.Actions = actions
		f.Layers = e.Stack().ActiveLayersHighestFirst()
		f.State = report.State()
		frames = append(frames, f)
		actions = nil
	}
	return frames, nil
}
