// Package logging installs the default slog logger for the groupledger
// binaries. Both the server and the token tool call Setup with the LOG_LEVEL
// value from their config; output goes to stderr through tint, colored only
// when stderr is a terminal.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Setup installs the default logger at the named level.
func Setup(level string) {
	SetupWithLevel(ParseLevel(level))
}

// SetupWithLevel installs the default logger at level.
func SetupWithLevel(level slog.Level) {
	color := isatty.IsTerminal(os.Stderr.Fd())
	slog.SetDefault(slog.New(NewHandler(os.Stderr, level, color)))
}

// NewHandler returns the tint handler the binaries log through. Records carry
// their source location and a kitchen-clock timestamp.
func NewHandler(w io.Writer, level slog.Leveler, color bool) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  true,
		NoColor:    !color,
	})
}

// ParseLevel maps a LOG_LEVEL value to a slog level. Unknown names are INFO.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
