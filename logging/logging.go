// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

const consoleTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Config selects the log level and output encoding.
type Config struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=trace debug info warn warning error"`
	Format string `yaml:"format" validate:"omitempty,oneof=console json"`
}

var (
	mu     sync.RWMutex
	logger = zerolog.Nop()
)

// InitLogging installs a logger writing to stdout.
func InitLogging(cfg Config) zerolog.Logger {
	return InitLoggingTo(os.Stdout, cfg)
}

// InitLoggingTo installs a logger writing to w and returns it.
func InitLoggingTo(w io.Writer, cfg Config) zerolog.Logger {
	zerolog.TimeFieldFormat = consoleTimeFormat
	zerolog.ErrorFieldName = "err"

	out := w
	if !strings.EqualFold(cfg.Format, "json") {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: consoleTimeFormat, NoColor: true}
	}
	l := zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()

	mu.Lock()
	logger = l
	mu.Unlock()
	return l
}

// L returns the installed logger; before InitLogging it discards everything.
func L() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// For returns the installed logger tagged with a component name.
func For(component string) zerolog.Logger {
	return L().With().Str("component", component).Logger()
}

// ParseLevel maps a config level name to a zerolog level; unknown names are info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
