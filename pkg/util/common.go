package util

import (
	"io"
	"log/slog"
)

// Close closes c and logs a failure instead of returning it, for use in defers.
func Close(c io.Closer, what string) {
	if err := c.Close(); err != nil {
		slog.Error("close "+what, "err", err)
	}
}
