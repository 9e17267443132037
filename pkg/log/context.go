package log

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
)

// IntoContext returns a copy of ctx carrying l.
func IntoContext(ctx context.Context, l Logger) context.Context {
	return logr.NewContext(ctx, l.Logr())
}

// FromContext returns the logger stored in ctx, or the global logger.
func FromContext(ctx context.Context) Logger {
	lr, err := logr.FromContext(ctx)
	if err != nil {
		return std
	}
	if under, ok := lr.GetSink().(zapr.Underlier); ok {
		return &zapLogger{core: under.GetUnderlying()}
	}
	return std
}
