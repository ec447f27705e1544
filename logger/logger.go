// logger.go wraps go-belt's contextual logger for the hapdxt packages.

// Package logger provides context-bound logging for the hapdxt project.
package logger

import (
	"context"

	"github.com/facebookincubator/go-belt/tool/logger"
)

type Logger = logger.Logger
type Level = logger.Level

const (
	LevelError   = logger.LevelError
	LevelWarning = logger.LevelWarning
	LevelInfo    = logger.LevelInfo
	LevelDebug   = logger.LevelDebug

	// LevelTrace is only emitted when built with the "debug_trace" tag.
	LevelTrace = logger.LevelTrace
)

// SetDefault sets the logger used when the context carries none.
func SetDefault(defaultLogger func() Logger) {
	logger.Default = defaultLogger
}

func CtxWithLogger(ctx context.Context, l Logger) context.Context {
	return logger.CtxWithLogger(ctx, l)
}

func Debugf(ctx context.Context, format string, args ...any) {
	logger.Debugf(ctx, format, args...)
}

func Warnf(ctx context.Context, format string, args ...any) {
	logger.Warnf(ctx, format, args...)
}

func Errorf(ctx context.Context, format string, args ...any) {
	logger.Errorf(ctx, format, args...)
}

// Panicf logs at the panic level, which also triggers a `panic`.
func Panicf(ctx context.Context, format string, args ...any) {
	logger.Panicf(ctx, format, args...)
}
