// Package observability defines the interfaces and semantic conventions used
// for tracing, metrics and structured logging throughout itinera.
//
// [Provider] composes [Tracer], [Metrics] and [Logger] into a single
// injectable dependency. Extractors and sessions accept a Provider through
// their options; a nil Provider disables instrumentation entirely. An active
// [Span] can travel through a [context.Context] with [ContextWithSpan] and be
// recovered with [SpanFromContext].
//
// semconv.go holds the attribute keys, span names and metric names emitted by
// the extraction pipeline and the retry session.
package observability
