package config

import (
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/natefinch/lumberjack.v2"
)

// parseSlogLevel maps a textual level to a slog.Level, falling back to
// defaultLevel when the text is unknown.
func parseSlogLevel(level string, defaultLevel slog.Level) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// ConfigureLogger builds the process-wide slog logger from the log settings
// and installs it as the default. Logs rotate through lumberjack; an empty
// file name sends them to stderr instead.
func ConfigureLogger(s *Settings) *slog.Logger {
	level := parseSlogLevel(s.Log.Level, slog.LevelInfo)

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if s.Log.File == "" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(&lumberjack.Logger{
			Filename:   s.Log.File,
			MaxSize:    s.Log.MaxSize,
			MaxBackups: s.Log.MaxBackups,
			MaxAge:     s.Log.MaxAge,
			Compress:   s.Log.Compress,
		}, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
