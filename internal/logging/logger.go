// Package logging provides structured logging for keyline on top of
// log/slog. One package logger is shared by the editor, history and
// storage layers; the CLI reconfigures it once at startup.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

var current atomic.Pointer[slog.Logger]

func init() {
	Init(DefaultConfig())
}

// Config holds logger configuration.
type Config struct {
	Level     slog.Level
	JSON      bool
	Output    io.Writer // default: stderr
	AddSource bool
}

// DefaultConfig logs warnings and worse as text on stderr. Edit sessions
// are chatty at INFO.
func DefaultConfig() Config {
	return Config{Level: slog.LevelWarn, Output: os.Stderr}
}

// DebugConfig logs everything as JSON with source locations.
func DebugConfig() Config {
	return Config{Level: slog.LevelDebug, JSON: true, Output: os.Stderr, AddSource: true}
}

// Init replaces the package logger.
func Init(cfg Config) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}

	var h slog.Handler = slog.NewTextHandler(out, opts)
	if cfg.JSON {
		h = slog.NewJSONHandler(out, opts)
	}
	current.Store(slog.New(h))
}

// InitDebug is Init(DebugConfig()).
func InitDebug() {
	Init(DebugConfig())
}

// Logger returns the package logger.
func Logger() *slog.Logger {
	return current.Load()
}

// DebugEnabled reports whether debug records are being written.
func DebugEnabled() bool {
	return Logger().Enabled(context.Background(), slog.LevelDebug)
}

// With returns the package logger with extra attributes.
func With(args ...any) *slog.Logger {
	return Logger().With(args...)
}

// WithGroup returns the package logger with a group prefix.
func WithGroup(name string) *slog.Logger {
	return Logger().WithGroup(name)
}

// Level shorthands on the package logger.

func Info(msg string, args ...any)     { Logger().Info(msg, args...) }
func DebugLog(msg string, args ...any) { Logger().Debug(msg, args...) }
func Warn(msg string, args ...any)     { Logger().Warn(msg, args...) }
func Error(msg string, args ...any)    { Logger().Error(msg, args...) }

// DebugContext logs at DEBUG with the gesture id carried by ctx.
func DebugContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).DebugContext(ctx, msg, args...)
}

// Attribute keys shared by every package.
const (
	KeyGestureID = "gesture_id"
	KeyOperation = "op"
	KeyDuration  = "duration_ms"
	KeyError     = "error"
	KeyClip      = "clip"
	KeyBone      = "bone"
	KeyProperty  = "property"
	KeyFrame     = "frame"
	KeyDelta     = "delta"
	KeyAction    = "action"
	KeyPosition  = "position"
	KeyLength    = "length"
	KeyKind      = "kind"
	KeyHandle    = "handle"
	KeyCount     = "count"
	KeyPath      = "path"
	KeyStatus    = "status"
)
