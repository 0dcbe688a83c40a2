package extract

import "github.com/leofalp/itinera/providers/observability"

// DefaultExcerptLength is how many characters of the raw text a parse
// failure diagnostic quotes.
const DefaultExcerptLength = 100

// Option configures an [Extractor].
type Option func(*Extractor)

// WithObserver instruments extractions with spans, metrics and logs.
// A nil provider disables instrumentation.
func WithObserver(observer observability.Provider) Option {
	return func(e *Extractor) {
		e.observer = observer
	}
}

// WithTokenRepair enables the final token_repair stage, which runs the best
// candidate through a tokenizer-backed JSON repairer. It recovers far more
// (single quotes, comments, truncated output) at the price of occasionally
// guessing; it is off by default.
func WithTokenRepair(enabled bool) Option {
	return func(e *Extractor) {
		e.tokenRepair = enabled
	}
}

// WithExcerptLength sets how many characters of raw text parse failure
// diagnostics quote. Non-positive values restore [DefaultExcerptLength].
func WithExcerptLength(n int) Option {
	return func(e *Extractor) {
		if n <= 0 {
			n = DefaultExcerptLength
		}
		e.excerptLength = n
	}
}
