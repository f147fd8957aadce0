package clock

import (
	"context"
	"time"
)

type ctxClockKey struct{}

// Clock returns the current time.
type Clock func() time.Time

// Now returns the clock bound to ctx, falling back to UTC wall time.
func Now(ctx context.Context) time.Time {
	c, ok := ctx.Value(ctxClockKey{}).(Clock)
	if !ok {
		return time.Now().UTC()
	}
	return c()
}

// With binds a clock to ctx.
func With(ctx context.Context, c Clock) context.Context {
	return context.WithValue(ctx, ctxClockKey{}, c)
}

// Fixed returns a clock that always reports t.
func Fixed(t time.Time) Clock {
	return func() time.Time { return t }
}
