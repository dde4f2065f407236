package engine

import (
	"context"

	"go.uber.org/zap"
)

// Result is one subsystem's outcome. A failed subsystem carries its error
// and never affects its siblings.
type Result[T any] struct {
	Value T
	Err   error
}

// Or returns the value, or def when the subsystem failed.
func (r Result[T]) Or(def T) T {
	if r.Err != nil {
		return def
	}
	return r.Value
}

// fetch runs fn and logs a failure under the subsystem name.
func fetch[T any](ctx context.Context, log *zap.Logger, subsystem string, fn func(context.Context) (T, error)) Result[T] {
	v, err := fn(ctx)
	if err != nil {
		log.Warn("subsystem unavailable, using defaults",
			zap.String("subsystem", subsystem),
			zap.Error(err))
		return Result[T]{Err: err}
	}
	return Result[T]{Value: v}
}
