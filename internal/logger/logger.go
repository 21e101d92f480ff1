// Package logger prints the verbose diagnostics trail of the retrieval
// pipeline: stage sections, leveled messages and stage timings. Output
// is suppressed unless enabled with SetVerbose and goes to a single
// configurable writer, stderr by default.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

type level string

const (
	levelDebug level = "DEBUG"
	levelInfo  level = "INFO"
	levelWarn  level = "WARN"
)

var state = struct {
	sync.RWMutex
	verbose bool
	out     io.Writer
}{out: os.Stderr}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	state.Lock()
	defer state.Unlock()
	state.verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	state.RLock()
	defer state.RUnlock()
	return state.verbose
}

// SetOutput sets the output writer for verbose logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	state.Lock()
	defer state.Unlock()
	state.out = w
}

func emit(lvl level, format string, args ...any) {
	state.RLock()
	defer state.RUnlock()
	if !state.verbose {
		return
	}
	fmt.Fprintf(state.out, "[%s] %s\n", lvl, fmt.Sprintf(format, args...))
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	emit(levelDebug, format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	emit(levelInfo, format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	emit(levelWarn, format, args...)
}

// Section marks the start of a pipeline stage in the diagnostics trail.
func Section(name string) {
	state.RLock()
	defer state.RUnlock()
	if !state.verbose {
		return
	}
	fmt.Fprintf(state.out, "\n=== %s ===\n", name)
}

// Elapsed logs the time spent in a stage since start, rounded to
// milliseconds.
func Elapsed(stage string, start time.Time) {
	emit(levelDebug, "%s took %s", stage, time.Since(start).Round(time.Millisecond))
}
