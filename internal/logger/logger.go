// Package logger provides structured slog loggers for the dispatch core.
// All logs are written in JSON format. When a log directory is configured
// the log file is rotated by size; otherwise logs go to stderr.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// New creates a JSON slog.Logger. If logDir is empty the logger writes to
// stderr; otherwise it writes to <logDir>/mailroom.log with size-based
// rotation. The directory is created if it does not exist.
func New(logDir string, level slog.Level) (*slog.Logger, error) {
	var w io.Writer = os.Stderr
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0750); err != nil {
			return nil, fmt.Errorf("creating log directory %q: %w", logDir, err)
		}
		w = &lumberjack.Logger{
			Filename:   filepath.Join(logDir, "mailroom.log"),
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			Compress:   true,
		}
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler), nil
}
