package log

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"
)

// RawLogger records raw HID reports, one hex line each.
type RawLogger interface {
	Log(label string, data []byte)
}

// rawLogger implements RawLogger with thread-safe log.
type rawLogger struct {
	w   io.Writer
	mu  sync.Mutex
	seq uint64
}

// NewRaw creates a new RawLogger. If writer is nil, returns a no-op logger.
func NewRaw(w io.Writer) RawLogger {
	return &rawLogger{w: w}
}

// Log emits a single-line log with timestamp, sequence number and hex dump.
// label names the stream, e.g. "report".
func (r *rawLogger) Log(label string, data []byte) {
	if len(data) == 0 {
		return
	}
	if r.w == nil {
		return
	}

	var hexbuf bytes.Buffer
	const hexdigits = "0123456789abcdef"
	for i, b := range data {
		if i > 0 {
			hexbuf.WriteByte(' ')
		}
		hexbuf.WriteByte(hexdigits[b>>4])
		hexbuf.WriteByte(hexdigits[b&0x0f])
	}

	r.mu.Lock()
	r.seq++
	line := fmt.Sprintf("%s %s #%d: %d bytes, hex: %s\n",
		time.Now().Format("2006/01/02 15:04:05.000"),
		label,
		r.seq,
		len(data),
		hexbuf.String())
	_, _ = r.w.Write([]byte(line))
	r.mu.Unlock()
}
