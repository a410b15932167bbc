package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvLogLevel overrides log.level when set.
const EnvLogLevel = "CINEGRADE_LOG_LEVEL"

// ParseLevel maps debug, info, warn and error to slog levels. The empty
// string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// NewLogger builds the process logger writing to w and installs it as the
// slog default. Stdout carries the tool protocol, so callers pass stderr.
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	name := c.Log.Level
	if env := os.Getenv(EnvLogLevel); env != "" {
		name = env
	}
	level, err := ParseLevel(name)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if c.Log.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, nil
}
