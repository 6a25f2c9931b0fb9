// Package logger provides the structured logging constructors used across
// the engine's subsystems. Every component accepts a *zap.SugaredLogger
// rather than constructing its own, so callers can inject test loggers or
// route production logs through their own zap core.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production-profile logger: JSON encoding, ISO8601
// timestamps, and the given service name attached to every entry.
func New(service string) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	base, err := cfg.Build()
	if err != nil {
		// Falling back to a no-op logger keeps the engine usable even if
		// the process's stdout/stderr are unavailable at construction time.
		base = zap.NewNop()
	}

	return base.Sugar().With("service", service)
}

// NewDevelopment builds a console-encoded, human-readable logger suited to
// test output.
func NewDevelopment(service string) *zap.SugaredLogger {
	base, err := zap.NewDevelopment()
	if err != nil {
		base = zap.NewNop()
	}
	return base.Sugar().With("service", service)
}
