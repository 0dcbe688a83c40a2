// Package slogobs provides an observability.Provider backed by log/slog.
// Spans and metric updates become debug records, log calls map onto slog
// levels (with an extra TRACE level below DEBUG), and counters keep their
// running totals in memory so they can be read back with
// [Observer.CounterValue].
//
// Output is either a single-line compact format or JSON, chosen with
// [WithFormat] or the ITINERA_LOG_FORMAT environment variable; the minimum
// level comes from [WithLevel] or ITINERA_LOG_LEVEL.
package slogobs
