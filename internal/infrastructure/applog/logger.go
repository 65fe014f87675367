// Package applog builds the process-wide *slog.Logger every component is
// constructed with, following wan-prober's slog.LevelVar + handler-from-
// config setup.
package applog

import (
	"log/slog"
	"os"

	"github.com/crepric/netfailoverd/internal/domain/failoverconfig"
)

// New builds a *slog.Logger from the logging section of cfg. level
// defaults to info and format defaults to text for any unrecognized
// value, matching the loader's own cascading defaults.
func New(cfg failoverconfig.LoggingConfig) *slog.Logger {
	level := new(slog.LevelVar)
	switch cfg.Level {
	case "debug":
		level.Set(slog.LevelDebug)
	case "warn":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
