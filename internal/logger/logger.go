package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the root logger
type Options struct {
	// File is the rotated JSON log file. Empty disables the file sink.
	File       string
	Level      string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int

	// Console mirrors log lines in human-readable form, e.g. os.Stderr for --verbose.
	// Leave nil while the terminal UI owns the screen.
	Console io.Writer
}

// Logger provides structured logging tagged with a component name
type Logger struct {
	component string
	base      *zap.Logger // fields without the component tag
	zl        *zap.Logger
}

// Field represents a key-value pair for structured logging
type Field = zap.Field

// Setup builds the root zap logger from options
func Setup(opts Options) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(orDefault(opts.Level, "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	var cores []zapcore.Core

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		}

		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderConfig.MessageKey = "message"
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(rotator),
			level,
		))
	}

	if opts.Console != nil {
		consoleConfig := zap.NewDevelopmentEncoderConfig()
		consoleConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleConfig),
			zapcore.Lock(zapcore.AddSync(opts.Console)),
			zapcore.DebugLevel,
		))
	}

	if len(cores) == 0 {
		return zap.NewNop(), nil
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1)), nil
}

// New creates a new logger instance for a component.
// A nil base logger discards everything.
func New(component string, base *zap.Logger) *Logger {
	if base == nil {
		base = zap.NewNop()
	}
	return &Logger{
		component: component,
		base:      base,
		zl:        base.With(zap.String("component", component)),
	}
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return New("", nil)
}

// WithComponent creates a logger with a specific component name
func (l *Logger) WithComponent(component string) *Logger {
	return New(component, l.base)
}

// With returns a logger that adds fields to every entry
func (l *Logger) With(fields ...Field) *Logger {
	return New(l.component, l.base.With(fields...))
}

// Component returns the component name
func (l *Logger) Component() string {
	return l.component
}

// Debug logs debug messages
func (l *Logger) Debug(msg string, fields ...Field) {
	l.zl.Debug(msg, fields...)
}

// Info logs informational messages
func (l *Logger) Info(msg string, fields ...Field) {
	l.zl.Info(msg, fields...)
}

// Warn logs warning messages
func (l *Logger) Warn(msg string, fields ...Field) {
	l.zl.Warn(msg, fields...)
}

// Error logs error messages
func (l *Logger) Error(msg string, fields ...Field) {
	l.zl.Error(msg, fields...)
}

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.zl.Sync()
}

// Helper functions for common field types
func F(key string, value interface{}) Field {
	return zap.Any(key, value)
}

func Count(value int) Field {
	return zap.Int("count", value)
}

func Duration(d time.Duration) Field {
	return zap.Duration("duration", d)
}

func Error(err error) Field {
	return zap.Error(err)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
