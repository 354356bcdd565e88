package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phrazzld/ecorewards-api/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation settings for file output.
const (
	maxLogFileSizeMB = 50
	maxLogBackups    = 5
	maxLogAgeDays    = 28
)

// ParseLevel converts a configured level name to a slog.Level.
// Matching is case-insensitive.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// New creates a JSON logger writing to w at the given level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Setup configures the application logger from cfg and installs it as the
// slog default. Output goes to stdout and, when cfg.LogFile is set, also to a
// size-rotated file. An unknown level falls back to info with a warning.
//
// The returned io.Closer releases the log file and must be closed on shutdown.
func Setup(cfg config.ServerConfig) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.LogLevel)
	if err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Warn(
			"invalid log level configured, using default level",
			slog.String("configured_level", cfg.LogLevel),
			slog.String("default_level", "info"))
	}

	var out io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}
	if cfg.LogFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    maxLogFileSizeMB,
			MaxBackups: maxLogBackups,
			MaxAge:     maxLogAgeDays,
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, rotator)
		closer = rotator
	}

	l := New(out, level)
	slog.SetDefault(l)
	return l, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
