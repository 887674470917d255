// Package logx provides file-backed diagnostic logging. The TUI owns the
// terminal, so nothing here ever writes to stdout or stderr.
package logx

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Open returns a logger writing to the given file, creating it if needed.
// The returned closer flushes and releases the file.
func Open(path string) (zerolog.Logger, io.Closer, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return Nop(), nil, fmt.Errorf("open debug log: %w", err)
	}
	logger := zerolog.New(file).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	return logger, file, nil
}

// Nop returns a logger that discards everything.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
