package keymap_test

import (
	"testing"

	"github.com/Alia5/keylayer/hid"
	"github.com/Alia5/keylayer/keycode"
	"github.com/Alia5/keylayer/keymap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plainRow(codes ...uint8) []keycode.Keycode {
	row := make([]keycode.Keycode, len(codes))
	for i, c := range codes {
		row[i] = keycode.Plain(c)
	}
	return row
}

// twoByTwo is BASE [[Q, LT(1,A)], [B, MO(1)]] and NAV [[TRNS, UP], [NO, TRNS]].
func twoByTwo(t *testing.T) *keymap.Table {
	t.Helper()
	tbl, err := keymap.New("test", 2, 2,
		keymap.Layer{Name: "BASE", Keys: keymap.Grid(
			[]keycode.Keycode{keycode.Plain(hid.KeyQ), keycode.LayerTapToggle(1, hid.KeyA)},
			[]keycode.Keycode{keycode.Plain(hid.KeyB), keycode.LayerMomentary(1)},
		)},
		keymap.Layer{Name: "NAV", Keys: keymap.Grid(
			[]keycode.Keycode{keycode.Transparent, keycode.Plain(hid.KeyUp)},
			[]keycode.Keycode{keycode.NoOp, keycode.Transparent},
		)},
	)
	require.NoError(t, err)
	return tbl
}

func TestNewValidation(t *testing.T) {
	type testCase struct {
		name        string
		rows, cols  int
		layers      []keymap.Layer
		expectedErr error
	}

	ok := keymap.Layer{Name: "BASE", Keys: keymap.Grid(plainRow(hid.KeyA, hid.KeyB))}

	cases := []testCase{
		{
			name:        "zero rows",
			rows:        0,
			cols:        2,
			layers:      []keymap.Layer{ok},
			expectedErr: keymap.ErrDimensions,
		},
		{
			name:        "no layers",
			rows:        1,
			cols:        2,
			expectedErr: keymap.ErrDimensions,
		},
		{
			name:        "short row",
			rows:        1,
			cols:        3,
			layers:      []keymap.Layer{ok},
			expectedErr: keymap.ErrDimensions,
		},
		{
			name:        "row count mismatch",
			rows:        2,
			cols:        2,
			layers:      []keymap.Layer{ok},
			expectedErr: keymap.ErrDimensions,
		},
		{
			name: "transparent in base",
			rows: 1,
			cols: 2,
			layers: []keymap.Layer{{Keys: keymap.Grid(
				[]keycode.Keycode{keycode.Plain(hid.KeyA), keycode.Transparent},
			)}},
			expectedErr: keymap.ErrTransparentBase,
		},
		{
			name: "layer reference out of range",
			rows: 1,
			cols: 1,
			layers: []keymap.Layer{{Keys: keymap.Grid(
				[]keycode.Keycode{keycode.LayerMomentary(keymap.MaxLayers)},
			)}},
			expectedErr: keymap.ErrLayerReference,
		},
		{
			name: "unknown kind",
			rows: 1,
			cols: 1,
			layers: []keymap.Layer{{Keys: keymap.Grid(
				[]keycode.Keycode{{Kind: 200}},
			)}},
			expectedErr: keymap.ErrInvalidKeycode,
		},
		{
			name: "mod-tap without mods",
			rows: 1,
			cols: 1,
			layers: []keymap.Layer{{Keys: keymap.Grid(
				[]keycode.Keycode{keycode.ModTapHold(0, hid.KeyA)},
			)}},
			expectedErr: keymap.ErrInvalidKeycode,
		},
		{
			name: "momentary with a code",
			rows: 1,
			cols: 1,
			layers: []keymap.Layer{{Keys: keymap.Grid(
				[]keycode.Keycode{{Kind: keycode.KindLayerMomentary, Param: 1, Code: hid.KeyA}},
			)}},
			expectedErr: keymap.ErrInvalidKeycode,
		},
		{
			name: "plain with mods",
			rows: 1,
			cols: 1,
			layers: []keymap.Layer{{Keys: keymap.Grid(
				[]keycode.Keycode{{Kind: keycode.KindPlain, Code: hid.KeyA, Mods: hid.ModLeftCtrl}},
			)}},
			expectedErr: keymap.ErrInvalidKeycode,
		},
		{
			name: "no-op with a param",
			rows: 1,
			cols: 1,
			layers: []keymap.Layer{{Keys: keymap.Grid(
				[]keycode.Keycode{{Kind: keycode.KindNoOp, Param: 3}},
			)}},
			expectedErr: keymap.ErrInvalidKeycode,
		},
		{
			name:        "duplicate layer names",
			rows:        1,
			cols:        2,
			layers:      []keymap.Layer{ok, ok},
			expectedErr: keymap.ErrDuplicateLayer,
		},
		{
			name:        "too many layers",
			rows:        1,
			cols:        2,
			layers:      make([]keymap.Layer, keymap.MaxLayers+1),
			expectedErr: keymap.ErrTooManyLayers,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := keymap.New("test", tc.rows, tc.cols, tc.layers...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func TestTransparentAllowedAboveBase(t *testing.T) {
	tbl := twoByTwo(t)
	assert.Equal(t, keycode.Transparent, tbl.Lookup(1, 0, 0))
}

func TestLookup(t *testing.T) {
	tbl := twoByTwo(t)

	assert.Equal(t, keycode.Plain(hid.KeyQ), tbl.Lookup(0, 0, 0))
	assert.Equal(t, keycode.LayerTapToggle(1, hid.KeyA), tbl.Lookup(0, 0, 1))
	assert.Equal(t, keycode.Plain(hid.KeyUp), tbl.Lookup(1, 0, 1))

	for _, c := range [][3]int{{2, 0, 0}, {-1, 0, 0}, {0, 2, 0}, {0, 0, 2}, {0, -1, 0}} {
		assert.Equal(t, keycode.NoOp, tbl.Lookup(c[0], c[1], c[2]), "lookup %v", c)
	}
}

func TestTableAccessors(t *testing.T) {
	tbl := twoByTwo(t)

	assert.Equal(t, "test", tbl.Name())
	assert.Equal(t, 2, tbl.Rows())
	assert.Equal(t, 2, tbl.Cols())
	assert.Equal(t, 2, tbl.Layers())
	assert.Equal(t, "NAV", tbl.LayerName(1))
	assert.Empty(t, tbl.LayerName(5))

	i, ok := tbl.LayerIndex("NAV")
	assert.True(t, ok)
	assert.Equal(t, 1, i)
	_, ok = tbl.LayerIndex("MISSING")
	assert.False(t, ok)

	r, c, ok := tbl.Find(0, keycode.LayerMomentary(1))
	require.True(t, ok)
	assert.Equal(t, [2]int{1, 1}, [2]int{r, c})

	l := tbl.Layer(0)
	l.Keys[0][0] = keycode.NoOp
	assert.Equal(t, keycode.Plain(hid.KeyQ), tbl.Lookup(0, 0, 0), "Layer returns a copy")
}

func TestMustNewPanics(t *testing.T) {
	assert.Panics(t, func() { keymap.MustNew("bad", 0, 0) })
}
