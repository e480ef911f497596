package indicator_test

import (
	"testing"

	"github.com/Alia5/keylayer/engine"
	"github.com/Alia5/keylayer/indicator"
	"github.com/Alia5/keylayer/keymaps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ergodoxPanel(t *testing.T, onSet func(uint8)) *indicator.Panel {
	t.Helper()
	b, ok := keymaps.Get("ergodox_ez/jeffschenck")
	require.True(t, ok)
	p, err := indicator.New(b.Indicators, onSet, nil)
	require.NoError(t, err)
	return p
}

func TestPanelUpdate(t *testing.T) {
	type testCase struct {
		layer    int
		expected string
	}

	cases := []testCase{
		{keymaps.PROG, "right_led_1"},
		{keymaps.MDIA, "right_led_2"},
		{keymaps.OPER, "right_led_3"},
		{keymaps.BASE, "off"},
		{7, "off"},
	}

	p := ergodoxPanel(t, nil)
	assert.Equal(t, []string{"right_led_1", "right_led_2", "right_led_3"}, p.LEDs())
	for _, tc := range cases {
		p.Update(tc.layer)
		assert.Equal(t, tc.expected, p.String(), "layer %d", tc.layer)
		if tc.expected != "off" {
			assert.True(t, p.Lit(tc.expected))
		} else {
			assert.Zero(t, p.State())
		}
	}
}

func TestPanelOnlyReportsChanges(t *testing.T) {
	var states []uint8
	p := ergodoxPanel(t, func(s uint8) { states = append(states, s) })

	p.Update(keymaps.PROG)
	p.Update(keymaps.PROG)
	p.Update(keymaps.MDIA)
	p.Update(keymaps.BASE)
	p.Update(keymaps.BASE)

	assert.Equal(t, []uint8{0b001, 0b010, 0}, states)
}

func TestPanelFollowsEngine(t *testing.T) {
	p := ergodoxPanel(t, nil)
	e, err := engine.New(engine.DefaultConfig(), keymaps.Ergodox, nil, nil, nil)
	require.NoError(t, err)
	e.OnActiveLayerChanged(p.Update)

	require.NoError(t, e.Handle(engine.KeyEvent{Row: 2, Col: 12, Pressed: true, Time: 0}))
	e.Tick(300)
	assert.True(t, p.Lit("right_led_2"))

	require.NoError(t, e.Handle(engine.KeyEvent{Row: 2, Col: 12, Time: 400}))
	assert.Equal(t, "off", p.String())
}

func TestPanelTooManyLEDs(t *testing.T) {
	bindings := map[int]string{}
	for i := 0; i < indicator.MaxLEDs+1; i++ {
		bindings[i] = string(rune('a' + i))
	}
	_, err := indicator.New(bindings, nil, nil)
	assert.Error(t, err)
}
