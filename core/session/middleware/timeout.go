package middleware

import (
	"context"
	"time"

	"github.com/leofalp/itinera/core/session"
)

// NewTimeoutMiddleware gives every generate call its own deadline. When it
// expires the call returns context.DeadlineExceeded, which the session records
// as a transport failure before moving on to the next attempt; the session's
// own context stays live.
//
// A non-positive timeout disables the middleware. A shorter deadline already
// on the caller's context wins, as usual.
func NewTimeoutMiddleware(timeout time.Duration) session.Middleware {
	return func(next session.GenerateFunc) session.GenerateFunc {
		if timeout <= 0 {
			return next
		}
		return func(ctx context.Context) (string, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			return next(ctx)
		}
	}
}
