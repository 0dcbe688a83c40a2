// Package middleware provides built-in [session.Middleware] implementations
// that wrap the caller's generate function on every attempt.
//
// # Available Middleware
//
//   - [NewTimeoutMiddleware]: bounds each generate call with its own deadline,
//     so one stalled call costs an attempt instead of the whole session.
//
//   - [NewLoggingMiddleware]: emits structured slog entries before and after
//     every generate call, with three verbosity levels.
//
// # Usage
//
//	s := session.New(required,
//	    session.WithMiddleware(
//	        middleware.NewTimeoutMiddleware(30*time.Second),
//	        middleware.NewLoggingMiddleware(slog.Default(), middleware.LogLevelStandard),
//	    ),
//	)
//
// The first middleware is the outermost wrapper. Above, a call travels
// Timeout → Logging → generate, so the logged duration never exceeds the
// deadline.
package middleware
