package session

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/leofalp/itinera/core/extract"
	"github.com/leofalp/itinera/providers/observability"
	"github.com/leofalp/itinera/providers/observability/slogobs"
)

var itineraryFields = []string{"flights", "hotels", "daily_plan"}

const completeItinerary = `{"flights": [], "hotels": [], "daily_plan": {}}`

// scriptedGenerator replays a fixed sequence of responses. Entries with a
// non-nil err fail the call; calls past the end repeat the last entry.
type scriptedGenerator struct {
	steps []step
	calls int
}

type step struct {
	text string
	err  error
}

func (g *scriptedGenerator) generate(_ context.Context) (string, error) {
	index := g.calls
	g.calls++
	if index >= len(g.steps) {
		index = len(g.steps) - 1
	}
	return g.steps[index].text, g.steps[index].err
}

type augmentRecorder struct {
	calls [][]string
}

func (a *augmentRecorder) augment(missing []string) {
	a.calls = append(a.calls, missing)
}

func TestRunWithRetry_SuccessOnThirdAttempt(t *testing.T) {
	gen := &scriptedGenerator{steps: []step{
		{text: "I'm still searching for flights..."},
		{text: "{broken"},
		{text: completeItinerary},
	}}
	aug := &augmentRecorder{}

	result, err := RunWithRetry(context.Background(), gen.generate, aug.augment, itineraryFields, 3, WithBackoff(0))

	if err != nil {
		t.Fatalf("RunWithRetry() error = %v", err)
	}
	if !result.OK() {
		t.Fatalf("RunWithRetry() failed: %v", result.Err())
	}
	if gen.calls != 3 {
		t.Errorf("generate called %d times, want 3", gen.calls)
	}
	if len(aug.calls) != 0 {
		t.Errorf("augment called after parse errors: %v", aug.calls)
	}
}

func TestRunWithRetry_StopsAtFirstSuccess(t *testing.T) {
	gen := &scriptedGenerator{steps: []step{{text: completeItinerary}}}

	result, err := RunWithRetry(context.Background(), gen.generate, nil, itineraryFields, 3, WithBackoff(0))

	if err != nil || !result.OK() {
		t.Fatalf("RunWithRetry() = %v, %v", result.Err(), err)
	}
	if gen.calls != 1 {
		t.Errorf("generate called %d times, want 1", gen.calls)
	}
}

func TestRunWithRetry_MissingFieldsExhausted(t *testing.T) {
	gen := &scriptedGenerator{steps: []step{{text: `{"hotels": [], "daily_plan": {}}`}}}
	aug := &augmentRecorder{}

	result, err := RunWithRetry(context.Background(), gen.generate, aug.augment, itineraryFields, 3, WithBackoff(0))

	if err != nil {
		t.Fatalf("RunWithRetry() error = %v", err)
	}
	if gen.calls != 3 {
		t.Errorf("generate called %d times, want 3", gen.calls)
	}
	want := [][]string{{"flights"}, {"flights"}}
	if diff := cmp.Diff(want, aug.calls); diff != "" {
		t.Errorf("augment calls mismatch (-want +got):\n%s", diff)
	}
	if result.Kind() != extract.MissingFields {
		t.Fatalf("Kind() = %v, want %v", result.Kind(), extract.MissingFields)
	}
	if diff := cmp.Diff([]string{"flights"}, result.Missing()); diff != "" {
		t.Errorf("Missing() mismatch (-want +got):\n%s", diff)
	}
}

func TestRunWithRetry_ReturnsLastFailureVerbatim(t *testing.T) {
	cause := errors.New("upstream timeout")
	gen := &scriptedGenerator{steps: []step{
		{text: `{"flights": []}`},
		{text: "prose only"},
		{err: cause},
	}}
	aug := &augmentRecorder{}

	result, err := RunWithRetry(context.Background(), gen.generate, aug.augment, itineraryFields, 3, WithBackoff(0))

	if err != nil {
		t.Fatalf("RunWithRetry() error = %v", err)
	}
	if result.Kind() != extract.TransportError {
		t.Fatalf("Kind() = %v, want %v", result.Kind(), extract.TransportError)
	}
	if !errors.Is(result.Err(), cause) {
		t.Errorf("last failure does not wrap the generator error: %v", result.Err())
	}
	if len(aug.calls) != 1 {
		t.Errorf("augment called %d times, want 1 (after the first attempt only)", len(aug.calls))
	}
}

func TestRunWithRetry_TransportErrorsConsumeAttempts(t *testing.T) {
	gen := &scriptedGenerator{steps: []step{
		{err: errors.New("connection reset")},
		{err: errors.New("503")},
		{text: completeItinerary},
	}}
	aug := &augmentRecorder{}

	result, err := RunWithRetry(context.Background(), gen.generate, aug.augment, itineraryFields, 3, WithBackoff(0))

	if err != nil || !result.OK() {
		t.Fatalf("RunWithRetry() = %v, %v", result.Err(), err)
	}
	if gen.calls != 3 {
		t.Errorf("generate called %d times, want 3", gen.calls)
	}
	if len(aug.calls) != 0 {
		t.Errorf("transport errors triggered augment: %v", aug.calls)
	}
}

func TestRunWithRetry_DefaultAttempts(t *testing.T) {
	gen := &scriptedGenerator{steps: []step{{text: "nope"}}}

	result, _ := RunWithRetry(context.Background(), gen.generate, nil, itineraryFields, 0, WithBackoff(0))

	if gen.calls != DefaultMaxAttempts {
		t.Errorf("generate called %d times, want %d", gen.calls, DefaultMaxAttempts)
	}
	if result.Kind() != extract.ParseError {
		t.Errorf("Kind() = %v, want %v", result.Kind(), extract.ParseError)
	}
}

func TestSession_TerminalAfterSuccess(t *testing.T) {
	gen := &scriptedGenerator{steps: []step{{text: completeItinerary}}}
	s := New(itineraryFields, WithBackoff(0))

	first, _ := s.Run(context.Background(), gen.generate, nil)
	second, err := s.Run(context.Background(), gen.generate, nil)

	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if gen.calls != 1 {
		t.Errorf("generate called %d times across two runs, want 1", gen.calls)
	}
	if !s.Done() || s.Attempt() != 1 {
		t.Errorf("Done() = %v, Attempt() = %d", s.Done(), s.Attempt())
	}
	if diff := cmp.Diff(first.Document, second.Document); diff != "" {
		t.Errorf("second Run returned a different document (-first +second):\n%s", diff)
	}
}

func TestSession_AttemptNeverExceedsBudget(t *testing.T) {
	gen := &scriptedGenerator{steps: []step{{text: "nope"}}}
	s := New(itineraryFields, WithMaxAttempts(2), WithBackoff(0))

	for i := 0; i < 3; i++ {
		_, _ = s.Run(context.Background(), gen.generate, nil)
	}

	if s.Attempt() != 2 || s.MaxAttempts() != 2 {
		t.Errorf("Attempt() = %d, MaxAttempts() = %d, want 2 and 2", s.Attempt(), s.MaxAttempts())
	}
	if gen.calls != 2 {
		t.Errorf("generate called %d times, want 2", gen.calls)
	}
}

func TestSession_LastBeforeRun(t *testing.T) {
	s := New(itineraryFields)

	if s.Last().OK() || s.Last().Err() != nil {
		t.Errorf("Last() before Run = %+v, want zero result", s.Last())
	}
	if s.Done() {
		t.Error("fresh session reports Done")
	}
}

func TestSession_CancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gen := &scriptedGenerator{steps: []step{{text: "nope"}}}
	s := New(itineraryFields, WithBackoff(time.Hour))

	generate := func(ctx context.Context) (string, error) {
		defer cancel()
		return gen.generate(ctx)
	}
	result, err := s.Run(ctx, generate, nil)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if gen.calls != 1 {
		t.Errorf("generate called %d times, want 1", gen.calls)
	}
	if result.Kind() != extract.ParseError {
		t.Errorf("Kind() = %v, want the last observed parse error", result.Kind())
	}
}

func TestSession_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gen := &scriptedGenerator{steps: []step{{text: completeItinerary}}}

	result, err := New(itineraryFields).Run(ctx, gen.generate, nil)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if gen.calls != 0 || result.OK() {
		t.Errorf("generate calls = %d, OK = %v; want no attempt", gen.calls, result.OK())
	}
}

func TestSession_BackoffBetweenAttempts(t *testing.T) {
	gen := &scriptedGenerator{steps: []step{{text: "nope"}, {text: completeItinerary}}}
	backoff := 20 * time.Millisecond

	start := time.Now()
	result, err := New(itineraryFields, WithBackoff(backoff)).Run(context.Background(), gen.generate, nil)
	elapsed := time.Since(start)

	if err != nil || !result.OK() {
		t.Fatalf("Run() = %v, %v", result.Err(), err)
	}
	if elapsed < backoff {
		t.Errorf("two attempts took %v, want at least the %v backoff", elapsed, backoff)
	}
}

func TestSession_UsesCustomExtractor(t *testing.T) {
	gen := &scriptedGenerator{steps: []step{{text: `{'flights': [], 'hotels': [], 'daily_plan': {}}`}}}
	extractor := extract.New(extract.WithTokenRepair(true))

	result, _ := New(itineraryFields, WithExtractor(extractor), WithBackoff(0)).Run(context.Background(), gen.generate, nil)

	if !result.OK() || result.Strategy != extract.StrategyTokenRepair {
		t.Errorf("Run() = %+v, want a token_repair success", result)
	}
}

func TestSession_MiddlewareOrder(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next GenerateFunc) GenerateFunc {
			return func(ctx context.Context) (string, error) {
				order = append(order, name)
				return next(ctx)
			}
		}
	}
	gen := &scriptedGenerator{steps: []step{{text: "nope"}, {text: completeItinerary}}}

	result, _ := New(itineraryFields, WithBackoff(0), WithMiddleware(tag("outer"), nil, tag("inner"))).
		Run(context.Background(), gen.generate, nil)

	if !result.OK() {
		t.Fatalf("Run() failed: %v", result.Err())
	}
	if diff := cmp.Diff([]string{"outer", "inner", "outer", "inner"}, order); diff != "" {
		t.Errorf("middleware order mismatch (-want +got):\n%s", diff)
	}
}

func TestSession_MiddlewareErrorIsTransportFailure(t *testing.T) {
	refuse := func(GenerateFunc) GenerateFunc {
		return func(context.Context) (string, error) {
			return "", errors.New("quota exhausted")
		}
	}
	aug := &augmentRecorder{}

	result, err := New(itineraryFields, WithBackoff(0), WithMaxAttempts(2), WithMiddleware(refuse)).
		Run(context.Background(), (&scriptedGenerator{steps: []step{{text: completeItinerary}}}).generate, aug.augment)

	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Kind() != extract.TransportError || !strings.Contains(result.Failure.Diagnostic, "quota exhausted") {
		t.Errorf("Run() = %+v, want a transport failure", result)
	}
	if len(aug.calls) != 0 {
		t.Errorf("augment called after transport errors: %v", aug.calls)
	}
}

func TestSession_Observer(t *testing.T) {
	var buf bytes.Buffer
	observer := slogobs.New(
		slogobs.WithFormat(slogobs.FormatCompact),
		slogobs.WithLevel(slog.LevelDebug),
		slogobs.WithOutput(&buf),
	)
	gen := &scriptedGenerator{steps: []step{
		{text: `{"flights": []}`},
		{err: errors.New("gateway timeout")},
		{text: completeItinerary},
	}}

	result, err := New(itineraryFields, WithObserver(observer), WithBackoff(0)).
		Run(context.Background(), gen.generate, func([]string) {})

	if err != nil || !result.OK() {
		t.Fatalf("Run() = %v, %v", result.Err(), err)
	}
	if got := observer.CounterValue(observability.MetricSessionAttempts); got != 3 {
		t.Errorf("%s = %d, want 3", observability.MetricSessionAttempts, got)
	}
	if got := observer.CounterValue(observability.MetricSessionFailures); got != 2 {
		t.Errorf("%s = %d, want 2", observability.MetricSessionFailures, got)
	}
	out := buf.String()
	for _, want := range []string{
		"attempt failed",
		`"extract.failure.kind":"missing_fields"`,
		`"extract.failure.kind":"transport_error"`,
		observability.EventAugment,
		"attempt succeeded",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q", want)
		}
	}
}

func TestSession_ObserverExhausted(t *testing.T) {
	var buf bytes.Buffer
	observer := slogobs.New(slogobs.WithLevel(slog.LevelError), slogobs.WithOutput(&buf))
	gen := &scriptedGenerator{steps: []step{{text: "nope"}}}

	_, _ = New(itineraryFields, WithObserver(observer), WithMaxAttempts(2), WithBackoff(0)).
		Run(context.Background(), gen.generate, nil)

	if !strings.Contains(buf.String(), "all attempts failed") {
		t.Errorf("exhausted session did not log an error: %s", buf.String())
	}
}

func TestMissingFieldsInstruction(t *testing.T) {
	got := MissingFieldsInstruction([]string{"flights", "daily_plan"})

	if !strings.HasPrefix(got, `Your previous response was missing these required fields: ["flights", "daily_plan"].`) {
		t.Errorf("MissingFieldsInstruction() = %q", got)
	}
}
