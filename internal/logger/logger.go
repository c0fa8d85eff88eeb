// Package logger provides verbose logging for the notely CLI.
// When verbose mode is enabled via the --verbose flag, messages are printed
// to stderr to help users follow requests and streams. When a log file is
// configured, every message is also written there as JSON, rotated by size.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	console           = newConsoleLogger(os.Stderr)
	file    *zap.Logger
	rotator *lumberjack.Logger
)

// newConsoleLogger renders "[LEVEL] message" lines to w.
func newConsoleLogger(w io.Writer) *zap.Logger {
	cfg := zapcore.EncoderConfig{
		MessageKey:       "message",
		LevelKey:         "level",
		LineEnding:       zapcore.DefaultLineEnding,
		ConsoleSeparator: " ",
		EncodeLevel: func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString("[" + l.CapitalString() + "]")
		},
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(w), zap.DebugLevel)
	return zap.New(core)
}

// newFileLogger writes JSON lines to a size-rotated file.
func newFileLogger(r *lumberjack.Logger) *zap.Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.MessageKey = "message"
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg), zapcore.AddSync(r), zap.DebugLevel)
	return zap.New(core)
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for verbose logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	console = newConsoleLogger(w)
}

// SetLogFile starts writing all messages to path, rotating at 10 MB.
// An empty path stops file logging.
func SetLogFile(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if rotator != nil {
		_ = file.Sync()
		if err := rotator.Close(); err != nil {
			return fmt.Errorf("closing log file: %w", err)
		}
		file, rotator = nil, nil
	}
	if path == "" {
		return nil
	}

	rotator = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // Megabytes
		MaxBackups: 3,
		MaxAge:     30, // Days
		Compress:   true,
	}
	file = newFileLogger(rotator)
	return nil
}

// Sync flushes buffered log output.
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	if file != nil {
		return file.Sync()
	}
	return nil
}

func logAt(level zapcore.Level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if !verbose && file == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if verbose {
		console.Log(level, msg)
	}
	if file != nil {
		file.Log(level, msg)
	}
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	logAt(zapcore.DebugLevel, format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	logAt(zapcore.InfoLevel, format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	logAt(zapcore.WarnLevel, format, args...)
}

// Error prints an error message if verbose mode is enabled.
func Error(format string, args ...any) {
	logAt(zapcore.ErrorLevel, format, args...)
}
