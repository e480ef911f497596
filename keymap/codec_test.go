package keymap_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Alia5/keylayer/hid"
	"github.com/Alia5/keylayer/keycode"
	"github.com/Alia5/keylayer/keymap"
	"github.com/Alia5/keylayer/macro"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMacros() *macro.Table {
	m := macro.NewTable()
	m.Set(macro.Macro{
		ID:      0,
		Name:    "shout",
		Press:   []macro.Step{macro.Down(hid.KeyLeftShift), macro.Tap(hid.KeyH)},
		Release: []macro.Step{macro.Up(hid.KeyLeftShift)},
	})
	return m
}

func assertSameTable(t *testing.T, want, got *keymap.Table) {
	t.Helper()
	require.Equal(t, want.Layers(), got.Layers())
	require.Equal(t, want.Rows(), got.Rows())
	require.Equal(t, want.Cols(), got.Cols())
	for l := 0; l < want.Layers(); l++ {
		assert.Equal(t, want.LayerName(l), got.LayerName(l))
		for r := 0; r < want.Rows(); r++ {
			for c := 0; c < want.Cols(); c++ {
				assert.Equal(t, want.Lookup(l, r, c), got.Lookup(l, r, c), "layer %d (%d,%d)", l, r, c)
			}
		}
	}
}

func TestBinaryImageRoundTrip(t *testing.T) {
	tbl := twoByTwo(t)

	img, err := tbl.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, "KLT1", string(img[:4]))

	got, err := keymap.UnmarshalImage("copy", img)
	require.NoError(t, err)
	assertSameTable(t, tbl, got)
	assert.Equal(t, tbl.Fingerprint(), got.Fingerprint())

	var viaIface keymap.Table
	require.NoError(t, viaIface.UnmarshalBinary(img))
	assertSameTable(t, tbl, &viaIface)
	assert.ErrorIs(t, new(keymap.Table).UnmarshalBinary(img[:5]), keymap.ErrMalformedImage)
}

func TestUnmarshalImageMalformed(t *testing.T) {
	img, err := twoByTwo(t).MarshalBinary()
	require.NoError(t, err)

	cases := map[string][]byte{
		"empty":     nil,
		"bad magic": append([]byte("XXXX"), img[4:]...),
		"truncated": img[:len(img)-1],
		"trailing":  append(append([]byte(nil), img...), 0),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := keymap.UnmarshalImage("", data)
			assert.ErrorIs(t, err, keymap.ErrMalformedImage)
		})
	}
}

func TestUnmarshalImageRejectsUnusedOperands(t *testing.T) {
	img, err := twoByTwo(t).MarshalBinary()
	require.NoError(t, err)

	// Header, "BASE" and "NAV" names, then cell (0,1) LT(1,A): kind, code, mods, param.
	const ltCell = 7 + 1 + 4 + 1 + 3 + 4
	require.Equal(t, keycode.LayerTapToggle(1, hid.KeyA).Pack(), [4]byte(img[ltCell:ltCell+4]))

	bad := append([]byte(nil), img...)
	bad[ltCell+2] = hid.ModLeftShift
	_, err = keymap.UnmarshalImage("", bad)
	assert.ErrorIs(t, err, keymap.ErrInvalidKeycode)
}

func TestFingerprintDiffers(t *testing.T) {
	a := twoByTwo(t)
	b := keymap.MustNew("other", 1, 1, keymap.Layer{Keys: keymap.Grid(plainRow(hid.KeyA))})
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestDocumentRoundTrip(t *testing.T) {
	tbl := twoByTwo(t)
	macros := testMacros()

	for _, f := range []keymap.Format{keymap.FormatJSON, keymap.FormatYAML, keymap.FormatTOML} {
		t.Run(string(f), func(t *testing.T) {
			data, err := keymap.Encode(keymap.NewDocument(tbl, macros), f)
			require.NoError(t, err)

			doc, err := keymap.Decode(data, f)
			require.NoError(t, err)
			got, gotMacros, err := doc.Build()
			require.NoError(t, err)

			assertSameTable(t, tbl, got)
			assert.Equal(t, tbl.Fingerprint(), got.Fingerprint())
			require.Equal(t, 1, gotMacros.Len())
			assert.Equal(t, macros.Macros(), gotMacros.Macros())
		})
	}
}

func TestDocumentNamesLayers(t *testing.T) {
	doc := keymap.NewDocument(twoByTwo(t), nil)
	assert.Equal(t, "LT(NAV,A)", doc.Layers[0].Keys[0][1])
	assert.Equal(t, "MO(NAV)", doc.Layers[0].Keys[1][1])
	assert.Equal(t, "TRNS", doc.Layers[1].Keys[0][0])
}

func TestDecodeRejectsSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"missing layers": `{"rows": 1, "cols": 1}`,
		"unknown field":  `{"rows": 1, "cols": 1, "layers": [{"keys": [["A"]]}], "colour": "red"}`,
		"bad layer name": `{"rows": 1, "cols": 1, "layers": [{"name": "1st", "keys": [["A"]]}]}`,
		"numeric key":    `{"rows": 1, "cols": 1, "layers": [{"keys": [[4]]}]}`,
		"macro id":       `{"rows": 1, "cols": 1, "layers": [{"keys": [["A"]]}], "macros": [{"id": 300}]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := keymap.Decode([]byte(doc), keymap.FormatJSON)
			assert.ErrorIs(t, err, keymap.ErrSchema)
		})
	}
}

func TestBuildErrors(t *testing.T) {
	cases := map[string]string{
		"unknown keycode": `{"rows": 1, "cols": 1, "layers": [{"keys": [["NOPE"]]}]}`,
		"unknown layer":   `{"rows": 1, "cols": 1, "layers": [{"keys": [["MO(NAV)"]]}]}`,
		"dimensions":      `{"rows": 1, "cols": 2, "layers": [{"keys": [["A"]]}]}`,
		"bad step":        `{"rows": 1, "cols": 1, "layers": [{"keys": [["A"]]}], "macros": [{"id": 1, "press": ["hold A"]}]}`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			doc, err := keymap.Decode([]byte(data), keymap.FormatJSON)
			require.NoError(t, err)
			_, _, err = doc.Build()
			assert.Error(t, err)
		})
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]keymap.Format{
		"json": keymap.FormatJSON, ".yml": keymap.FormatYAML, "YAML": keymap.FormatYAML,
		"toml": keymap.FormatTOML, "bin": keymap.FormatBinary,
	} {
		got, err := keymap.ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := keymap.ParseFormat("xml")
	assert.ErrorIs(t, err, keymap.ErrUnknownFormat)
}

func TestSaveLoad(t *testing.T) {
	tbl := twoByTwo(t)
	dir := t.TempDir()

	for _, name := range []string{"board.json", "board.yaml", "board.toml", "board.bin"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, keymap.Save(path, tbl, testMacros()))

			got, _, err := keymap.Load(path)
			require.NoError(t, err)
			assertSameTable(t, tbl, got)
		})
	}
}

func TestLoadDefaultsNameToFileBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rows: 1\ncols: 1\nlayers:\n  - keys: [[\"A\"]]\n"), 0o644))

	tbl, _, err := keymap.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tiny", tbl.Name())
}
