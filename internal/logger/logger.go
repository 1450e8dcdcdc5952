// Package logger configures the slog logger used by envedit.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

// LevelVar allows changing the log level after the logger is created
var LevelVar = new(slog.LevelVar)

func init() {
	LevelVar.Set(slog.LevelWarn)
}

// ParseLevel converts a level name to a slog level
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelWarn, fmt.Errorf("unknown log level %q", name)
}

// SetLevel changes the level of every logger created by New
func SetLevel(level slog.Level) {
	LevelVar.Set(level)
}

// New creates a tint logger writing to w. Colours are used only when w is
// a terminal.
func New(w io.Writer) *slog.Logger {
	isTTY := false
	if f, ok := w.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      LevelVar,
		TimeFormat: "15:04:05",
		NoColor:    !isTTY,
	}))
}

// Init installs a stderr logger as the slog default and returns it
func Init() *slog.Logger {
	l := New(os.Stderr)
	slog.SetDefault(l)
	return l
}
