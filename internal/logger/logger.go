// Package logger provides the default zap-backed implementation of the
// contracts.Logger interface.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/leandrodaf/midirouter/sdk/contracts"
)

// ZapLogger implements contracts.Logger on top of a zap.Logger.
type ZapLogger struct {
	logger *zap.Logger
	level  zap.AtomicLevel
}

// NewZapLogger creates a production zap logger at InfoLevel.
func NewZapLogger() contracts.Logger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	cfg := zap.NewProductionConfig()
	cfg.Level = level

	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// The production config cannot fail to build; fall back to a plain
		// core writing to stderr rather than returning an error from here.
		core := zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.Lock(os.Stderr),
			level,
		)
		logger = zap.New(core)
	}
	return &ZapLogger{logger: logger, level: level}
}

// Info logs a message at the INFO level.
func (z *ZapLogger) Info(msg string, fields ...contracts.Field) {
	z.logger.Info(msg, zapFields(fields)...)
}

// Error logs a message at the ERROR level.
func (z *ZapLogger) Error(msg string, fields ...contracts.Field) {
	z.logger.Error(msg, zapFields(fields)...)
}

// Debug logs a message at the DEBUG level.
func (z *ZapLogger) Debug(msg string, fields ...contracts.Field) {
	z.logger.Debug(msg, zapFields(fields)...)
}

// Warn logs a message at the WARN level.
func (z *ZapLogger) Warn(msg string, fields ...contracts.Field) {
	z.logger.Warn(msg, zapFields(fields)...)
}

// Fatal logs a message at the FATAL level and terminates the application.
func (z *ZapLogger) Fatal(msg string, fields ...contracts.Field) {
	z.logger.Fatal(msg, zapFields(fields)...)
}

// Field returns a new field builder.
func (z *ZapLogger) Field() contracts.Field {
	return field{}
}

// SetLevel sets the minimum level emitted by the logger.
func (z *ZapLogger) SetLevel(level contracts.LogLevel) {
	z.level.SetLevel(zapLevel(level))
}

func zapLevel(level contracts.LogLevel) zapcore.Level {
	switch level {
	case contracts.DebugLevel:
		return zapcore.DebugLevel
	case contracts.WarnLevel:
		return zapcore.WarnLevel
	case contracts.ErrorLevel:
		return zapcore.ErrorLevel
	case contracts.FatalLevel:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func zapFields(fields []contracts.Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		if zf, ok := f.(field); ok && zf.key != "" {
			out = append(out, zap.Any(zf.key, zf.value))
		}
	}
	return out
}

// field implements contracts.Field as an immutable key/value pair.
type field struct {
	key   string
	value interface{}
}

func (f field) Bool(key string, val bool) contracts.Field { return field{key, val} }

func (f field) Int(key string, val int) contracts.Field { return field{key, val} }

func (f field) Float64(key string, val float64) contracts.Field { return field{key, val} }

func (f field) String(key string, val string) contracts.Field { return field{key, val} }

func (f field) Error(key string, val error) contracts.Field { return field{key, val} }

func (f field) Uint8(key string, val uint8) contracts.Field { return field{key, val} }
