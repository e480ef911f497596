package cmd_test

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Alia5/keylayer/engine"
	"github.com/Alia5/keylayer/internal/cmd"
	"github.com/Alia5/keylayer/keymaps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"
)

var quiet = slog.New(slog.DiscardHandler)

type rawRecord struct {
	label string
	data  []byte
}

type recordingRaw struct {
	mu   sync.Mutex
	recs []rawRecord
}

func (r *recordingRaw) Log(label string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs = append(r.recs, rawRecord{label, append([]byte(nil), data...)})
}

func (r *recordingRaw) count(label string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rec := range r.recs {
		if rec.label == label {
			n++
		}
	}
	return n
}

func TestKeymapList(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, (&cmd.KeymapList{Out: &out}).Run())
	assert.Contains(t, out.String(), "ergodox_ez/jeffschenck")
	assert.Contains(t, out.String(), "s60_x/hhkb")
}

func TestKeymapValidateAndConvert(t *testing.T) {
	fp := keymaps.Ergodox.Fingerprint()
	want := hex.EncodeToString(fp[:])

	var out bytes.Buffer
	require.NoError(t, (&cmd.KeymapValidate{Keymap: "ergodox_ez/jeffschenck", Out: &out}).Run(quiet))
	assert.Contains(t, out.String(), want)

	dir := t.TempDir()
	for _, ext := range []string{".yaml", ".json", ".toml", ".bin"} {
		t.Run(ext, func(t *testing.T) {
			dest := filepath.Join(dir, "ergodox"+ext)
			require.NoError(t, (&cmd.KeymapConvert{Input: "ergodox_ez/jeffschenck", Output: dest}).Run(quiet))

			var out bytes.Buffer
			require.NoError(t, (&cmd.KeymapValidate{Keymap: dest, Out: &out}).Run(quiet))
			assert.Contains(t, out.String(), want)

			err := (&cmd.KeymapConvert{Input: "ergodox_ez/jeffschenck", Output: dest}).Run(quiet)
			assert.Error(t, err, "existing destination needs --force")
			assert.NoError(t, (&cmd.KeymapConvert{Input: "ergodox_ez/jeffschenck", Output: dest, Force: true}).Run(quiet))
		})
	}
}

func TestKeymapValidateErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("rows: 1\n"), 0o644))

	assert.Error(t, (&cmd.KeymapValidate{Keymap: bad}).Run(quiet))
	assert.Error(t, (&cmd.KeymapValidate{Keymap: filepath.Join(dir, "missing.yaml")}).Run(quiet))
}

func TestKeymapShow(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, (&cmd.KeymapShow{Keymap: "s60_x/hhkb", Layer: []string{"FN"}, Out: &out}).Run())
	s := out.String()
	assert.True(t, strings.HasPrefix(s, "s60_x/hhkb (5x15)\n"))
	assert.Contains(t, s, "layer 1 FN")
	assert.NotContains(t, s, "layer 0 BASE")
	assert.Contains(t, s, "PENT")
	assert.Contains(t, s, "___")

	out.Reset()
	require.NoError(t, (&cmd.KeymapShow{Keymap: "ergodox_ez/jeffschenck", Width: 12, Out: &out}).Run())
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	for _, line := range lines[1:] {
		assert.LessOrEqual(t, len(line), 12)
	}
	assert.Contains(t, out.String(), "layer 2 MDIA")

	assert.Error(t, (&cmd.KeymapShow{Keymap: "s60_x/hhkb", Layer: []string{"NOPE"}, Out: &out}).Run())
}

func TestKeymapSchema(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, (&cmd.KeymapSchema{Out: &out}).Run())
	assert.Contains(t, out.String(), `"layers"`)
}

const script = `
keymap: ergodox_ez/jeffschenck
steps:
  - {at: 0, press: [2, 1]}
  - {at: 250, tick: true}
  - {at: 260, press: [1, 1]}
  - {at: 270, release: [1, 1]}
  - {at: 280, release: [2, 1]}
  - {at: 300, press: [9, 9]}
`

func TestSimulate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hold.yaml")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o644))

	var out bytes.Buffer
	raw := &recordingRaw{}
	s := &cmd.Simulate{Script: path, Engine: engine.DefaultConfig(), Out: &out}
	require.NoError(t, s.Run(quiet, raw))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "ergodox_ez/jeffschenck: 6 steps", lines[0])
	assert.Contains(t, lines[2], "layers=[1 0] leds=right_led_1")
	assert.Contains(t, lines[3], "emit=[key-down 0x14]")
	assert.Contains(t, lines[5], "leds=off")
	assert.Contains(t, lines[6], "dropped:")
	assert.Equal(t, 2, raw.count("report"))
}

func TestSimulateKeymapOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps:\n  - {at: 0, press: [1, 1]}\n"), 0o644))

	var out bytes.Buffer
	err := (&cmd.Simulate{Script: path, Engine: engine.DefaultConfig(), Out: &out}).Run(quiet, &recordingRaw{})
	assert.Error(t, err, "no keymap anywhere")

	s := &cmd.Simulate{Script: path, Keymap: "s60_x/hhkb", Engine: engine.DefaultConfig(), Out: &out}
	require.NoError(t, s.Run(quiet, &recordingRaw{}))
	assert.Contains(t, out.String(), "s60_x/hhkb: 1 steps")
	assert.Contains(t, out.String(), "emit=[key-down 0x14]")
}

func TestRunStart(t *testing.T) {
	raw := &recordingRaw{}
	r := &cmd.Run{Keymap: "ergodox_ez/jeffschenck", Interval: time.Millisecond, Engine: engine.DefaultConfig()}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, r.Start(ctx, strings.NewReader("qA"), quiet, raw))

	// q down, q up, shift down, A down, A up, shift up.
	assert.Equal(t, 6, raw.count("report"))
}

func TestRunWatchNeedsFile(t *testing.T) {
	r := &cmd.Run{Keymap: "s60_x/hhkb", Watch: true, Engine: engine.DefaultConfig()}
	assert.Error(t, r.Start(context.Background(), strings.NewReader(""), quiet, &recordingRaw{}))
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "run.yaml")
	c := &cmd.ConfigInit{Command: "run", Format: "yaml", Output: dest}
	require.NoError(t, c.Run())

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, "ergodox_ez/jeffschenck", got["keymap"])
	assert.Equal(t, "1ms", got["interval"])
	assert.Equal(t, false, got["watch"])
	assert.Equal(t, map[string]any{
		"tapTimeout":     "200ms",
		"tapToggleCount": 2,
		"stackCapacity":  32,
	}, got["engine"])

	assert.Error(t, c.Run(), "refuses to overwrite")
	c.Force = true
	assert.NoError(t, c.Run())

	sim := &cmd.ConfigInit{Command: "simulate", Format: "json", Output: filepath.Join(dir, "sim.json")}
	require.NoError(t, sim.Run())
	data, err = os.ReadFile(sim.Output)
	require.NoError(t, err)
	var simCfg map[string]any
	require.NoError(t, json.Unmarshal(data, &simCfg))
	assert.Contains(t, simCfg, "keymap")
	assert.Contains(t, simCfg, "engine")
	assert.NotContains(t, simCfg, "script")
	assert.NotContains(t, simCfg, "out")
}

func TestConfigInitFormats(t *testing.T) {
	type testCase struct {
		format   string
		expected string
	}
	cases := []testCase{
		{"json", "run.json"},
		{"yml", "run.yaml"},
		{"toml", "run.toml"},
	}
	for _, tc := range cases {
		t.Run(tc.format, func(t *testing.T) {
			t.Chdir(t.TempDir())
			require.NoError(t, (&cmd.ConfigInit{Command: "run", Format: tc.format}).Run())

			data, err := os.ReadFile(tc.expected)
			require.NoError(t, err)
			assert.Contains(t, string(data), "tapTimeout")
			assert.Contains(t, string(data), "ergodox_ez/jeffschenck")
		})
	}

	t.Chdir(t.TempDir())
	assert.Error(t, (&cmd.ConfigInit{Command: "run", Format: "xml"}).Run())
	assert.Error(t, (&cmd.ConfigInit{Command: "serve", Format: "json"}).Run())
}
