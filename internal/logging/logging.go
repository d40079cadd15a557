package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Standard field names.
const (
	FieldComponent = "component"
	FieldAddress   = "address"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldRole      = "role"
)

// New returns the root logger. A terminal writer gets zerolog's console
// format; anything else gets JSON lines.
func New(w io.Writer, debug bool) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	if f, ok := w.(*os.File); ok && isTerminal(f) {
		w = zerolog.ConsoleWriter{Out: f, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Component returns a child logger tagged with component=name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str(FieldComponent, name).Logger()
}

// Nop is a logger that discards everything. Components default to it.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
