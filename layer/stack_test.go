package layer_test

import (
	"math/rand"
	"testing"

	"github.com/Alia5/keylayer/layer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type changeRecorder struct {
	calls []int
}

func (r *changeRecorder) record(l int) { r.calls = append(r.calls, l) }

func TestNewStack(t *testing.T) {
	s := layer.New(0, nil)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 0, s.Top())
	assert.Equal(t, layer.MaxLayers, s.Capacity())
	assert.Equal(t, []int{0}, s.ActiveLayersHighestFirst())
	assert.True(t, s.Active(0))
}

func TestActivateOrder(t *testing.T) {
	s := layer.New(0, nil)
	require.NoError(t, s.Activate(2, layer.Held))
	require.NoError(t, s.Activate(1, layer.Toggled))
	require.NoError(t, s.Activate(3, layer.Held))
	assert.Equal(t, []int{3, 1, 2, 0}, s.ActiveLayersHighestFirst())
	assert.Equal(t, 1, s.At(1))

	// Re-activating keeps priority.
	require.NoError(t, s.Activate(2, layer.Held))
	assert.Equal(t, []int{3, 1, 2, 0}, s.ActiveLayersHighestFirst())
	assert.Equal(t, 2, s.Holds(2))
}

func TestActivateErrors(t *testing.T) {
	s := layer.New(2, nil)
	assert.ErrorIs(t, s.Activate(-1, layer.Held), layer.ErrLayerOutOfRange)
	assert.ErrorIs(t, s.Activate(layer.MaxLayers, layer.Held), layer.ErrLayerOutOfRange)

	require.NoError(t, s.Activate(1, layer.Held))
	err := s.Activate(2, layer.Held)
	assert.ErrorIs(t, err, layer.ErrLayerStackOverflow)
	assert.Equal(t, []int{1, 0}, s.ActiveLayersHighestFirst(), "overflow leaves stack unchanged")

	// Activating the base layer never counts against capacity.
	assert.NoError(t, s.Activate(0, layer.Toggled))
}

func TestHoldRefCount(t *testing.T) {
	s := layer.New(0, nil)
	require.NoError(t, s.Activate(1, layer.Held))
	require.NoError(t, s.Activate(1, layer.Held))

	s.Release(1)
	assert.True(t, s.Active(1), "one hold remains")
	s.Release(1)
	assert.False(t, s.Active(1))

	// Extra releases are harmless.
	s.Release(1)
	assert.Equal(t, []int{0}, s.ActiveLayersHighestFirst())
}

func TestToggledSurvivesRelease(t *testing.T) {
	s := layer.New(0, nil)
	require.NoError(t, s.Activate(1, layer.Held))
	require.NoError(t, s.Activate(1, layer.Toggled))
	s.Release(1)
	assert.True(t, s.Active(1))
	assert.True(t, s.Toggled(1))

	require.NoError(t, s.Toggle(1))
	assert.False(t, s.Active(1))
}

func TestToggle(t *testing.T) {
	s := layer.New(0, nil)
	require.NoError(t, s.Toggle(2))
	assert.True(t, s.Toggled(2))
	require.NoError(t, s.Toggle(2))
	assert.False(t, s.Active(2))

	// Toggling off a layer that is also held leaves the hold in place.
	require.NoError(t, s.Activate(2, layer.Held))
	require.NoError(t, s.Toggle(2))
	require.NoError(t, s.Toggle(2))
	assert.True(t, s.Active(2))
	s.Release(2)
	assert.False(t, s.Active(2))
}

func TestDeactivate(t *testing.T) {
	s := layer.New(0, nil)
	require.NoError(t, s.Activate(1, layer.Held))
	require.NoError(t, s.Activate(1, layer.Toggled))
	s.Deactivate(1)
	assert.False(t, s.Active(1))

	s.Deactivate(0)
	s.Deactivate(7)
	assert.Equal(t, []int{0}, s.ActiveLayersHighestFirst())
}

func TestBaseNeverRemoved(t *testing.T) {
	s := layer.New(0, nil)
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 2000; i++ {
		l := r.Intn(8)
		switch r.Intn(5) {
		case 0:
			_ = s.Activate(l, layer.Held)
		case 1:
			_ = s.Activate(l, layer.Toggled)
		case 2:
			s.Release(l)
		case 3:
			_ = s.Toggle(l)
		case 4:
			s.Deactivate(l)
		}
		active := s.ActiveLayersHighestFirst()
		require.Equal(t, 0, active[len(active)-1], "base is last")
		seen := map[int]bool{}
		for _, a := range active {
			require.False(t, seen[a], "duplicate layer %d in %v", a, active)
			seen[a] = true
		}
	}
}

func TestHeldActivationReversible(t *testing.T) {
	s := layer.New(0, nil)
	require.NoError(t, s.Activate(3, layer.Toggled))
	require.NoError(t, s.Activate(1, layer.Held))
	before := s.ActiveLayersHighestFirst()

	for _, l := range []int{2, 3, 1, 5} {
		require.NoError(t, s.Activate(l, layer.Held))
		s.Release(l)
		assert.Equal(t, before, s.ActiveLayersHighestFirst(), "hold and release of %d", l)
	}
}

func TestChangeCallback(t *testing.T) {
	var rec changeRecorder
	s := layer.New(0, rec.record)

	require.NoError(t, s.Activate(1, layer.Held))
	require.NoError(t, s.Activate(1, layer.Held)) // no change
	require.NoError(t, s.Activate(2, layer.Held))
	s.Release(1) // not the top
	s.Release(1)
	s.Release(2)
	require.NoError(t, s.Toggle(3))
	s.Reset()
	s.Reset() // already at base

	assert.Equal(t, []int{1, 2, 0, 3, 0}, rec.calls)
}

func TestAppendHighestFirstNoAlloc(t *testing.T) {
	s := layer.New(0, nil)
	require.NoError(t, s.Activate(1, layer.Held))
	require.NoError(t, s.Activate(2, layer.Held))
	buf := make([]int, 0, layer.MaxLayers)

	allocs := testing.AllocsPerRun(100, func() {
		buf = s.AppendHighestFirst(buf[:0])
	})
	assert.Zero(t, allocs)
	assert.Equal(t, []int{2, 1, 0}, buf)
}
