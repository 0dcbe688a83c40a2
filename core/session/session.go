package session

import (
	"context"
	"time"

	"github.com/leofalp/itinera/core/extract"
	"github.com/leofalp/itinera/providers/observability"
)

// GenerateFunc produces the raw text for one attempt. An error means the
// upstream call itself failed (network, timeout, provider outage).
type GenerateFunc func(ctx context.Context) (string, error)

// Middleware wraps a GenerateFunc, e.g. to bound or log each call.
type Middleware func(next GenerateFunc) GenerateFunc

// AugmentFunc receives the missing keys after a missing-fields failure that
// will be retried. The session never builds prompt text itself.
type AugmentFunc func(missing []string)

// Session is the state of one request: attempts made, the budget, and the
// last result.
type Session struct {
	required    []string
	maxAttempts int
	backoff     time.Duration
	extractor   *extract.Extractor
	observer    observability.Provider
	middlewares []Middleware

	attempt int
	last    extract.Result
}

// New creates a session that validates every document against required.
//
//	s := session.New([]string{"flights", "hotels", "daily_plan"},
//	    session.WithMaxAttempts(3),
//	    session.WithBackoff(2*time.Second),
//	)
//	result, err := s.Run(ctx, generate, augment)
func New(required []string, opts ...Option) *Session {
	s := &Session{
		required:    append([]string(nil), required...),
		maxAttempts: DefaultMaxAttempts,
		backoff:     DefaultBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.extractor == nil {
		s.extractor = extract.New()
	}
	return s
}

// RunWithRetry runs a fresh session with maxAttempts attempts. Values of
// maxAttempts below 1 use [DefaultMaxAttempts].
func RunWithRetry(ctx context.Context, generate GenerateFunc, augment AugmentFunc, required []string, maxAttempts int, opts ...Option) (extract.Result, error) {
	opts = append(opts, WithMaxAttempts(maxAttempts))
	return New(required, opts...).Run(ctx, generate, augment)
}

// Attempt returns the number of generate calls made so far.
func (s *Session) Attempt() int {
	return s.attempt
}

// MaxAttempts returns the attempt budget.
func (s *Session) MaxAttempts() int {
	return s.maxAttempts
}

// Last returns the most recent result, or the zero Result before any attempt.
func (s *Session) Last() extract.Result {
	return s.last
}

// Done reports whether the session is terminal: it has succeeded or spent
// its budget.
func (s *Session) Done() bool {
	return s.last.OK() || s.attempt >= s.maxAttempts
}

// Run makes attempts until one succeeds or the budget is spent, and returns
// the final result. Failures of any kind are reported through the result,
// never as the error; the error is non-nil only when ctx ends the session
// early, in which case the result is the last one observed.
//
// Calling Run on a terminal session returns the stored result without
// calling generate. A nil augment is allowed.
func (s *Session) Run(ctx context.Context, generate GenerateFunc, augment AugmentFunc) (extract.Result, error) {
	if s.Done() {
		return s.last, nil
	}

	var span observability.Span
	if s.observer != nil {
		ctx, span = s.observer.StartSpan(ctx, observability.SpanSessionRun,
			observability.Int(observability.AttrSessionMaxAttempts, s.maxAttempts),
			observability.Duration(observability.AttrSessionBackoff, s.backoff),
			observability.Strings(observability.AttrExtractRequired, s.required),
		)
		defer span.End()
	}

	generate = s.chain(generate)
	for !s.Done() {
		if s.attempt > 0 {
			if err := s.wait(ctx); err != nil {
				s.aborted(ctx, span, err)
				return s.last, err
			}
		} else if err := ctx.Err(); err != nil {
			s.aborted(ctx, span, err)
			return s.last, err
		}

		s.attempt++
		s.last = s.runAttempt(ctx, span, generate)

		if s.last.Kind() == extract.MissingFields && !s.Done() && augment != nil {
			missing := append([]string(nil), s.last.Missing()...)
			if span != nil {
				span.AddEvent(observability.EventAugment,
					observability.Int(observability.AttrSessionAttempt, s.attempt),
					observability.Bool(observability.AttrSessionAugmented, true),
					observability.Strings(observability.AttrExtractMissing, missing),
				)
			}
			augment(missing)
		}
	}

	s.finished(ctx, span)
	return s.last, nil
}

// chain applies the middlewares so that the first one registered runs
// outermost.
func (s *Session) chain(generate GenerateFunc) GenerateFunc {
	for i := len(s.middlewares) - 1; i >= 0; i-- {
		generate = s.middlewares[i](generate)
	}
	return generate
}

func (s *Session) runAttempt(ctx context.Context, span observability.Span, generate GenerateFunc) extract.Result {
	start := time.Now()
	if span != nil {
		span.AddEvent(observability.EventAttemptStart, observability.Int(observability.AttrSessionAttempt, s.attempt))
	}

	var result extract.Result
	raw, err := generate(ctx)
	if err != nil {
		result = extract.TransportFailure(err)
	} else {
		result = s.extractor.Extract(ctx, raw, s.required...)
	}

	if s.observer != nil {
		s.recordAttempt(ctx, span, result, time.Since(start))
	}
	return result
}

func (s *Session) wait(ctx context.Context) error {
	if s.backoff <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Session) recordAttempt(ctx context.Context, span observability.Span, result extract.Result, elapsed time.Duration) {
	attempt := observability.Int(observability.AttrSessionAttempt, s.attempt)

	s.observer.Counter(observability.MetricSessionAttempts).Add(ctx, 1)
	s.observer.Histogram(observability.MetricSessionAttemptDuration).Record(ctx, float64(elapsed.Milliseconds()), attempt)

	if result.OK() {
		span.AddEvent(observability.EventAttemptEnd, attempt, observability.String(observability.AttrStatus, "success"))
		s.observer.Info(ctx, "attempt succeeded",
			attempt,
			observability.String(observability.AttrExtractStrategy, result.Strategy.String()),
			observability.Duration(observability.AttrDuration, elapsed),
		)
		return
	}

	kind := observability.String(observability.AttrExtractFailureKind, result.Kind().String())
	s.observer.Counter(observability.MetricSessionFailures).Add(ctx, 1, kind)
	span.AddEvent(observability.EventAttemptEnd, attempt, kind)
	s.observer.Warn(ctx, "attempt failed",
		attempt,
		observability.Int(observability.AttrSessionMaxAttempts, s.maxAttempts),
		kind,
		observability.String(observability.AttrStatusDescription, result.Failure.Diagnostic),
	)
}

func (s *Session) finished(ctx context.Context, span observability.Span) {
	if s.observer == nil {
		return
	}
	span.SetAttributes(observability.Int(observability.AttrSessionAttempt, s.attempt))
	if s.last.OK() {
		span.SetStatus(observability.StatusOK, "")
		return
	}
	span.RecordError(s.last.Err())
	span.SetStatus(observability.StatusError, "attempts exhausted")
	s.observer.Error(ctx, "all attempts failed",
		observability.Int(observability.AttrSessionAttempt, s.attempt),
		observability.String(observability.AttrExtractFailureKind, s.last.Kind().String()),
		observability.Error(s.last.Err()),
	)
}

func (s *Session) aborted(ctx context.Context, span observability.Span, err error) {
	if s.observer == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(observability.StatusError, "session aborted")
	s.observer.Warn(ctx, "session aborted",
		observability.Int(observability.AttrSessionAttempt, s.attempt),
		observability.Error(err),
	)
}
