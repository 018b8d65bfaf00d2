// Package logger provides process-wide logging for bookrag.
// Debug and Info messages are printed only in verbose mode; warnings and
// errors are always printed. Output is human-readable on a terminal and
// JSON lines otherwise.
package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Format selects how log lines are rendered.
type Format string

// Supported formats.
const (
	// FormatAuto renders console output on a terminal and JSON elsewhere.
	FormatAuto Format = "auto"

	// FormatConsole always renders human-readable lines.
	FormatConsole Format = "console"

	// FormatJSON always renders JSON lines.
	FormatJSON Format = "json"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	format            = FormatAuto
	base              = build(output, format, verbose)
)

// build returns a zerolog logger for the current settings. Callers hold mu.
func build(w io.Writer, f Format, v bool) zerolog.Logger {
	if f == FormatConsole || (f == FormatAuto && isTerminal(w)) {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.Kitchen,
			NoColor:    !isTerminal(w),
		}
	}
	level := zerolog.WarnLevel
	if v {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func current() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := base
	return &l
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	base = build(output, format, verbose)
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	base = build(output, format, verbose)
}

// SetFormat selects console or JSON rendering.
func SetFormat(f Format) {
	mu.Lock()
	defer mu.Unlock()
	format = f
	base = build(output, format, verbose)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	current().Debug().Msgf(format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	current().Debug().Str("section", name).Msg("=== " + name + " ===")
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	current().Info().Msgf(format, args...)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	current().Warn().Msgf(format, args...)
}

// Error prints an error message.
func Error(format string, args ...any) {
	current().Error().Msgf(format, args...)
}

// Component logs with a fixed set of structured fields.
type Component struct {
	fields map[string]any
}

// With returns a logger that tags every line with the component name.
func With(component string) *Component {
	return &Component{fields: map[string]any{"component": component}}
}

// With returns a copy of c carrying an extra field.
func (c *Component) With(key string, value any) *Component {
	fields := make(map[string]any, len(c.fields)+1)
	for k, v := range c.fields {
		fields[k] = v
	}
	fields[key] = value
	return &Component{fields: fields}
}

// Debug prints a message if verbose mode is enabled.
func (c *Component) Debug(format string, args ...any) {
	current().Debug().Fields(c.fields).Msgf(format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func (c *Component) Info(format string, args ...any) {
	current().Info().Fields(c.fields).Msgf(format, args...)
}

// Warn prints a warning message.
func (c *Component) Warn(format string, args ...any) {
	current().Warn().Fields(c.fields).Msgf(format, args...)
}

// Error prints an error message.
func (c *Component) Error(format string, args ...any) {
	current().Error().Fields(c.fields).Msgf(format, args...)
}
