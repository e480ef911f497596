// Package layer implements the active layer stack consulted by the resolver.
//
// The base layer (0) is always present at the bottom of the stack. Other
// layers are ordered by first activation: the most recently activated layer
// has the highest priority.
package layer

import (
	"errors"
	"fmt"

	"github.com/Alia5/keylayer/keymap"
)

// MaxLayers is the largest number of stack entries, base included.
const MaxLayers = keymap.MaxLayers

var (
	// ErrLayerStackOverflow is returned when an activation would exceed the
	// stack capacity. The stack is left unchanged.
	ErrLayerStackOverflow = errors.New("layer stack overflow")
	// ErrLayerOutOfRange is returned for layers outside [0, MaxLayers).
	ErrLayerOutOfRange    = errors.New("layer index out of range")
)

// Kind is how a layer was activated.
type Kind uint8

const (
	// Held layers stay active while at least one originating key is down.
	Held Kind = iota + 1
	// Toggled layers stay active until toggled off.
	Toggled
)

func (k Kind) String() string {
	switch k {
	case Held:
		return "held"
	case Toggled:
		return "toggled"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ChangeFunc is called with the new topmost layer whenever it changes. It is
// called with 0 when only the base layer remains.
type ChangeFunc func(layer int)

type entry struct {
	layer   uint8
	holds   uint8
	toggled bool
}

// Stack is the ordered set of active layers. It is not safe for concurrent
// use and does not allocate after New.
type Stack struct {
	entries  [MaxLayers]entry // entries[0] is the base layer
	n        int
	capacity int
	onChange ChangeFunc
}

// New creates a stack holding only the base layer. capacity bounds the
// number of entries including base; values outside 1..MaxLayers mean
// MaxLayers. onChange may be nil.
func New(capacity int, onChange ChangeFunc) *Stack {
	if capacity < 1 || capacity > MaxLayers {
		capacity = MaxLayers
	}
	return &Stack{n: 1, capacity: capacity, onChange: onChange}
}

// OnChange replaces the change callback.
func (s *Stack) OnChange(fn ChangeFunc) { s.onChange = fn }

// Capacity returns the maximum number of entries, base included.
func (s *Stack) Capacity() int { return s.capacity }

// Len returns the number of active layers, base included.
func (s *Stack) Len() int { return s.n }

// Top returns the highest priority layer.
func (s *Stack) Top() int { return int(s.entries[s.n-1].layer) }

// At returns the i-th layer in priority order; At(0) is Top and
// At(Len()-1) is the base layer.
func (s *Stack) At(i int) int { return int(s.entries[s.n-1-i].layer) }

// Active reports whether layer is on the stack.
func (s *Stack) Active(layer int) bool {
	return layer == 0 || s.find(layer) > 0
}

// Toggled reports whether layer is active by toggle.
func (s *Stack) Toggled(layer int) bool {
	i := s.find(layer)
	return i > 0 && s.entries[i].toggled
}

// Holds returns the number of keys currently holding layer.
func (s *Stack) Holds(layer int) int {
	if i := s.find(layer); i > 0 {
		return int(s.entries[i].holds)
	}
	return 0
}

// Activate puts layer on the stack. An already active layer keeps its
// priority: Held adds a hold, Toggled marks it toggled. Activating the base
// layer is a no-op.
func (s *Stack) Activate(layer int, kind Kind) error {
	if layer < 0 || layer >= MaxLayers {
		return fmt.Errorf("%w: %d", ErrLayerOutOfRange, layer)
	}
	if layer == 0 {
		return nil
	}
	i, pushed := s.find(layer), false
	if i < 0 {
		if s.n >= s.capacity {
			return fmt.Errorf("%w: activating %d with %d active", ErrLayerStackOverflow, layer, s.n)
		}
		i = s.n
		s.entries[i] = entry{layer: uint8(layer)}
		s.n++
		pushed = true
	}
	switch kind {
	case Toggled:
		s.entries[i].toggled = true
	default:
		if s.entries[i].holds < 0xFF {
			s.entries[i].holds++
		}
	}
	if pushed {
		s.changed()
	}
	return nil
}

// Release drops one hold on layer. The layer leaves the stack once no holds
// remain, unless it is toggled.
func (s *Stack) Release(layer int) {
	i := s.find(layer)
	if i <= 0 {
		return
	}
	e := &s.entries[i]
	if e.holds > 0 {
		e.holds--
	}
	if e.holds == 0 && !e.toggled {
		s.remove(i)
	}
}

// Deactivate removes layer regardless of holds or toggle. The base layer
// cannot be removed.
func (s *Stack) Deactivate(layer int) {
	if i := s.find(layer); i > 0 {
		s.remove(i)
	}
}

// Toggle turns a toggled layer off and any other layer toggled on. A layer
// that is also held stays active until its holds are released.
func (s *Stack) Toggle(layer int) error {
	i := s.find(layer)
	if i <= 0 || !s.entries[i].toggled {
		return s.Activate(layer, Toggled)
	}
	s.entries[i].toggled = false
	if s.entries[i].holds == 0 {
		s.remove(i)
	}
	return nil
}

// ActiveLayersHighestFirst returns the active layers in priority order,
// base last.
func (s *Stack) ActiveLayersHighestFirst() []int {
	return s.AppendHighestFirst(make([]int, 0, s.n))
}

// AppendHighestFirst appends the active layers in priority order to dst.
func (s *Stack) AppendHighestFirst(dst []int) []int {
	for i := s.n - 1; i >= 0; i-- {
		dst = append(dst, int(s.entries[i].layer))
	}
	return dst
}

// Reset leaves only the base layer.
func (s *Stack) Reset() {
	top := s.Top()
	s.entries = [MaxLayers]entry{}
	s.n = 1
	if top != 0 {
		s.changed()
	}
}

func (s *Stack) String() string {
	return fmt.Sprint(s.ActiveLayersHighestFirst())
}

// find returns the entry index of layer, 0 for base, -1 if inactive.
func (s *Stack) find(layer int) int {
	if layer < 0 || layer >= MaxLayers {
		return -1
	}
	for i := 0; i < s.n; i++ {
		if int(s.entries[i].layer) == layer {
			return i
		}
	}
	return -1
}

func (s *Stack) remove(i int) {
	wasTop := i == s.n-1
	copy(s.entries[i:s.n], s.entries[i+1:s.n])
	s.n--
	s.entries[s.n] = entry{}
	if wasTop {
		s.changed()
	}
}

func (s *Stack) changed() {
	if s.onChange != nil {
		s.onChange(s.Top())
	}
}
