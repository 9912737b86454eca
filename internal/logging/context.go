package logging

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type gestureKey struct{}

// GenerateGestureID returns a short random id: the first 8 hex characters
// of a UUID. Every log line of one drag, script run or bake shares it.
func GenerateGestureID() string {
	return uuid.NewString()[:8]
}

// WithGestureID returns ctx carrying id.
func WithGestureID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, gestureKey{}, id)
}

// NewGestureContext returns a background context with a fresh gesture id.
func NewGestureContext() context.Context {
	return WithGestureID(context.Background(), GenerateGestureID())
}

// EnsureGestureID returns ctx unchanged if it already carries a gesture id,
// else a child context with a fresh one.
func EnsureGestureID(ctx context.Context) context.Context {
	if GestureIDFromContext(ctx) != "" {
		return ctx
	}
	return WithGestureID(ctx, GenerateGestureID())
}

// GestureIDFromContext returns the gesture id in ctx, or "".
func GestureIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(gestureKey{}).(string)
	return id
}

// LoggerFromContext returns the package logger tagged with ctx's gesture id.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if id := GestureIDFromContext(ctx); id != "" {
		return Logger().With(KeyGestureID, id)
	}
	return Logger()
}
