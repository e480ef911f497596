package log_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/Alia5/keylayer/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	type testCase struct {
		in       string
		expected slog.Level
	}
	cases := []testCase{
		{"trace", log.LevelTrace},
		{"DEBUG", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"loud", slog.LevelInfo},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.expected, log.ParseLevel(tc.in))
		})
	}
}

func TestOrDiscardAndTracing(t *testing.T) {
	l := log.OrDiscard(nil)
	require.NotNil(t, l)
	assert.False(t, log.Tracing(l))

	h := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: log.LevelTrace})
	traced := slog.New(h)
	assert.Same(t, traced, log.OrDiscard(traced))
	assert.True(t, log.Tracing(traced))
}

func TestSetupLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keylayer.log")
	logger, closers, err := log.SetupLogger("trace", path)
	require.NoError(t, err)

	logger.Log(context.Background(), log.LevelTrace, "scan", "row", 1)
	logger.Debug("resolved")
	for _, c := range closers {
		require.NoError(t, c.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "level=TRACE msg=scan row=1")
	assert.Contains(t, string(data), "level=DEBUG msg=resolved")
}

func TestSetupLoggerBadFile(t *testing.T) {
	_, _, err := log.SetupLogger("info", filepath.Join(t.TempDir(), "missing", "x.log"))
	assert.Error(t, err)
}

func TestRawLogger(t *testing.T) {
	var buf bytes.Buffer
	raw := log.NewRaw(&buf)
	raw.Log("report", []byte{0x02, 0x00, 0xab})
	raw.Log("leds", nil)
	raw.Log("leds", []byte{0x01})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Regexp(t, regexp.MustCompile(`^\d{4}/\d{2}/\d{2} [\d:.]+ report #1: 3 bytes, hex: 02 00 ab$`), lines[0])
	assert.Regexp(t, regexp.MustCompile(` leds #2: 1 bytes, hex: 01$`), lines[1])

	assert.NotPanics(t, func() { log.NewRaw(nil).Log("report", []byte{1}) })
}
