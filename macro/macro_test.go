package macro_test

import (
	"testing"

	"github.com/Alia5/keylayer/hid"
	"github.com/Alia5/keylayer/macro"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder []hid.Action

func (r *recorder) Emit(a hid.Action) { *r = append(*r, a) }

func TestParseStep(t *testing.T) {
	type testCase struct {
		text     string
		expected macro.Step
		wantErr  bool
	}

	cases := []testCase{
		{text: "down LSFT", expected: macro.Down(hid.KeyLeftShift)},
		{text: "UP kc_lsft", expected: macro.Up(hid.KeyLeftShift)},
		{text: "tap A", expected: macro.Tap(hid.KeyA)},
		{text: "tap", wantErr: true},
		{text: "hold A", wantErr: true},
		{text: "tap NOPE", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			s, err := macro.ParseStep(tc.text)
			if tc.wantErr {
				assert.ErrorIs(t, err, macro.ErrInvalidStep)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, s)

			again, err := macro.ParseStep(s.String())
			require.NoError(t, err)
			assert.Equal(t, s, again)
		})
	}
}

func TestTablePressRelease(t *testing.T) {
	tbl := macro.NewTable(macro.Macro{
		ID:      3,
		Name:    "shift-lock",
		Press:   []macro.Step{macro.Down(hid.KeyLeftShift), macro.Tap(hid.KeyA)},
		Release: []macro.Step{macro.Up(hid.KeyLeftShift)},
	})

	var rec recorder
	assert.True(t, tbl.Press(3, &rec))
	assert.Equal(t, recorder{
		hid.Down(hid.KeyLeftShift),
		hid.Down(hid.KeyA),
		hid.Up(hid.KeyA),
	}, rec)

	rec = nil
	assert.True(t, tbl.Release(3, &rec))
	assert.Equal(t, recorder{hid.Up(hid.KeyLeftShift)}, rec)

	rec = nil
	assert.False(t, tbl.Press(4, &rec))
	assert.False(t, tbl.Release(4, &rec))
	assert.Empty(t, rec)

	assert.Equal(t, 1, tbl.Len())
	require.Len(t, tbl.Macros(), 1)
	assert.Equal(t, "shift-lock", tbl.Macros()[0].Name)
}

func TestNilTable(t *testing.T) {
	var tbl *macro.Table
	_, ok := tbl.Get(0)
	assert.False(t, ok)
	assert.False(t, tbl.Press(0, hid.Discard))
	assert.Equal(t, 0, tbl.Len())
	assert.Nil(t, tbl.Macros())
}

func TestRequire(t *testing.T) {
	tbl := macro.NewTable(macro.Macro{ID: 1})
	assert.NoError(t, tbl.Require(1))
	assert.ErrorIs(t, tbl.Require(2), macro.ErrUnresolvedMacro)

	var none *macro.Table
	assert.ErrorIs(t, none.Require(0), macro.ErrUnresolvedMacro)
}
