package utils

import (
	"io"
)

// drainLimit caps how much of an unread body is discarded before closing,
// so a keep-alive connection can be reused without reading forever.
const drainLimit = 64 << 10

// Close closes c and ignores any error.
// Use for best-effort cleanup in defer where error handling is not critical.
func Close(c io.Closer) {
	_ = c.Close()
}

// DrainClose discards what is left of an HTTP body, then closes it.
func DrainClose(rc io.ReadCloser) {
	if rc == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, drainLimit))
	_ = rc.Close()
}

// CloseFunc adapts a closer to a func for use with cleanup stacks
// (t.Cleanup, errgroup shutdown hooks).
func CloseFunc(c io.Closer) func() {
	return func() { Close(c) }
}
