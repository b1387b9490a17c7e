// Package logging configures the process logger. Output goes to stderr, or
// to a size rotated file when a log file is configured.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

var debug atomic.Bool

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup points the standard logger at file, or at stderr when file is empty,
// and enables debug output when asked. The returned closer flushes the file.
func Setup(file string, debugMode bool) (io.Closer, error) {
	debug.Store(debugMode)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if file == "" {
		log.SetOutput(os.Stderr)
		return nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	out := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    10, // MB
		MaxBackups: 2,
		MaxAge:     28, // days
		Compress:   true,
	}
	log.SetOutput(out)
	return out, nil
}

// DebugEnabled reports whether debug output is on
func DebugEnabled() bool {
	return debug.Load()
}

// Logger returns the standard logger for components that take a *log.Logger
func Logger() *log.Logger {
	return log.Default()
}

// Printf calls the standard log.Printf()
func Printf(format string, v ...interface{}) {
	log.Output(2, fmt.Sprintf(format, v...))
}

// Debugf logs only in debug mode
func Debugf(format string, v ...interface{}) {
	if debug.Load() {
		log.Output(2, "DEBUG "+fmt.Sprintf(format, v...))
	}
}
