// Package zaplog adapts go.uber.org/zap to the core.Logger interface,
// for deployments that already run structured zap logging.
package zaplog

import (
	"github.com/Swind/go-task-pool/core"
	"go.uber.org/zap"
)

// Logger implements core.Logger on top of a zap.Logger.
type Logger struct {
	base *zap.Logger
}

var _ core.Logger = (*Logger)(nil)

// New wraps an existing zap logger. A nil base falls back to zap.NewNop.
func New(base *zap.Logger) *Logger {
	if base == nil {
		base = zap.NewNop()
	}
	return &Logger{base: base}
}

// NewDevelopment builds a Logger over zap's development config.
func NewDevelopment() (*Logger, error) {
	base, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return &Logger{base: base}, nil
}

// NewProduction builds a Logger over zap's production config.
func NewProduction() (*Logger, error) {
	base, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &Logger{base: base}, nil
}

func (l *Logger) Debug(msg string, fields ...core.Field) {
	l.base.Debug(msg, zapFields(fields)...)
}

func (l *Logger) Info(msg string, fields ...core.Field) {
	l.base.Info(msg, zapFields(fields)...)
}

func (l *Logger) Warn(msg string, fields ...core.Field) {
	l.base.Warn(msg, zapFields(fields)...)
}

func (l *Logger) Error(msg string, fields ...core.Field) {
	l.base.Error(msg, zapFields(fields)...)
}

// Sync flushes buffered log entries.
func (l *Logger) Sync() error {
	return l.base.Sync()
}

func zapFields(fields []core.Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}
