// ABOUTME: Structured logging configuration using log/slog.
// ABOUTME: Configures the default logger for stderr (CLI) or debug.log (TUI).

package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LogFileName is the TUI log file inside the config dir
const LogFileName = "debug.log"

// Init configures the default slog logger to write to w.
// level: debug, info, warn, error (default: info)
// format: text, json (default: text)
func Init(w io.Writer, level, format string) {
	slog.SetDefault(New(w, level, format))
}

// New builds a logger without installing it
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// InitFile points the default logger at debug.log in configDir so a
// full-screen UI keeps the terminal clean. With an empty configDir logs are
// discarded. The returned closer releases the file.
func InitFile(configDir, level, format string) (io.Closer, error) {
	if configDir == "" {
		Init(io.Discard, level, format)
		return io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config dir: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(configDir, LogFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	Init(f, level, format)
	return f, nil
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
