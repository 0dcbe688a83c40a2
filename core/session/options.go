package session

import (
	"time"

	"github.com/leofalp/itinera/core/extract"
	"github.com/leofalp/itinera/providers/observability"
)

const (
	// DefaultMaxAttempts is the number of generate calls a session makes
	// before giving up.
	DefaultMaxAttempts = 3

	// DefaultBackoff is the pause between two attempts.
	DefaultBackoff = 2 * time.Second
)

// Option configures a [Session].
type Option func(*Session)

// WithMaxAttempts sets the attempt budget. Values below 1 restore
// [DefaultMaxAttempts].
func WithMaxAttempts(n int) Option {
	return func(s *Session) {
		if n < 1 {
			n = DefaultMaxAttempts
		}
		s.maxAttempts = n
	}
}

// WithBackoff sets the fixed pause between attempts. Zero or negative
// disables it.
func WithBackoff(d time.Duration) Option {
	return func(s *Session) {
		if d < 0 {
			d = 0
		}
		s.backoff = d
	}
}

// WithExtractor replaces the default extractor, e.g. to enable token repair.
func WithExtractor(extractor *extract.Extractor) Option {
	return func(s *Session) {
		if extractor != nil {
			s.extractor = extractor
		}
	}
}

// WithObserver instruments the session with spans, metrics and logs. It does
// not instrument the extractor; pass extract.WithObserver for that.
func WithObserver(observer observability.Provider) Option {
	return func(s *Session) {
		s.observer = observer
	}
}

// WithMiddleware wraps every generate call. Middlewares run in the order
// given: the first is the outermost. An error returned through the chain is
// a transport failure for that attempt.
func WithMiddleware(middlewares ...Middleware) Option {
	return func(s *Session) {
		for _, mw := range middlewares {
			if mw != nil {
				s.middlewares = append(s.middlewares, mw)
			}
		}
	}
}
