// Package logging configures structured logging with log/slog.
//
// Text output goes through tint (colored when writing to a terminal); JSON
// output suits log collectors. The level is shared by every logger built
// here and can be changed at runtime with SetLevel.
//
// Usage:
//
//	logger, err := logging.Configure("json", "debug")
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

// Format selects the log encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

var level = new(slog.LevelVar)

// Configure installs a default logger with the given format and level name
// and returns it.
func Configure(format, levelName string) (*slog.Logger, error) {
	l, err := ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	f := Format(strings.ToLower(format))
	if f != FormatText && f != FormatJSON && f != "" {
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	level.Set(l)
	logger := New(os.Stderr, f)
	slog.SetDefault(logger)
	return logger, nil
}

// New builds a logger writing to w at the shared level.
func New(w io.Writer, format Format) *slog.Logger {
	if format == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     level,
			AddSource: true,
		}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  true,
		NoColor:    !isTerminal(w),
	}))
}

// SetLevel changes the level of every logger built by this package.
func SetLevel(name string) error {
	l, err := ParseLevel(name)
	if err != nil {
		return err
	}
	if level.Level() != l {
		level.Set(l)
		slog.Info("Log level changed", "level", l.String())
	}
	return nil
}

// Level reports the current shared level.
func Level() slog.Level {
	return level.Level()
}

// ParseLevel maps debug, info, warn and error (any case) to a level. The
// empty string is INFO.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
