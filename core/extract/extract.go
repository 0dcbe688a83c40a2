package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/kaptinlin/jsonrepair"

	"github.com/leofalp/itinera/internal/utils"
	"github.com/leofalp/itinera/providers/observability"
)

// Extractor runs the recovery pipeline. It is immutable after [New] and safe
// for concurrent use.
type Extractor struct {
	observer      observability.Provider
	tokenRepair   bool
	excerptLength int
	stages        []stage
}

// stage is one entry of the pipeline: every candidate it yields is parsed,
// after transform when one is set.
type stage struct {
	strategy   Strategy
	candidates func(raw string) []string
	transform  func(text string) (string, error)
}

var defaultExtractor = New()

// Extract runs the default extractor without instrumentation.
func Extract(raw string, required ...string) Result {
	return defaultExtractor.Extract(context.Background(), raw, required...)
}

// New creates an Extractor.
//
//	extractor := extract.New(
//	    extract.WithObserver(slogobs.New()),
//	    extract.WithTokenRepair(true),
//	)
//	result := extractor.Extract(ctx, raw, "flights", "hotels", "daily_plan")
func New(opts ...Option) *Extractor {
	e := &Extractor{excerptLength: DefaultExcerptLength}
	for _, opt := range opts {
		opt(e)
	}
	e.stages = e.pipeline()
	return e
}

// Strategies lists the stages in the order they are tried.
func (e *Extractor) Strategies() []Strategy {
	out := make([]Strategy, len(e.stages))
	for i, st := range e.stages {
		out[i] = st.strategy
	}
	return out
}

func (e *Extractor) pipeline() []stage {
	repair := func(text string) (string, error) { return Repair(text), nil }

	stages := []stage{
		{strategy: StrategyDirect, candidates: rawCandidate},
		{strategy: StrategyRepaired, candidates: rawCandidate, transform: repair},
		{strategy: StrategyFenced, candidates: fenceCandidates},
		{strategy: StrategyFencedRepaired, candidates: fenceCandidates, transform: repair},
		{strategy: StrategyBraces, candidates: braceCandidate},
		{strategy: StrategyBracesRepaired, candidates: braceCandidate, transform: repair},
	}
	if e.tokenRepair {
		stages = append(stages, stage{
			strategy:   StrategyTokenRepair,
			candidates: bestCandidate,
			transform:  jsonrepair.JSONRepair,
		})
	}
	return stages
}

func rawCandidate(raw string) []string {
	return []string{raw}
}

func fenceCandidates(raw string) []string {
	fences := Fences(raw)
	out := make([]string, 0, len(fences))
	for _, f := range fences {
		out = append(out, f.Body)
	}
	return out
}

func braceCandidate(raw string) []string {
	if span, ok := BraceSpan(raw); ok {
		return []string{span}
	}
	return nil
}

// bestCandidate picks the narrowest plausible JSON region: the first fence,
// else the brace span, else the whole text.
func bestCandidate(raw string) []string {
	if fences := Fences(raw); len(fences) > 0 {
		return []string{fences[0].Body}
	}
	if span, ok := BraceSpan(raw); ok {
		return []string{span}
	}
	return []string{raw}
}

// Extract recovers a document from raw and checks that every required key is
// present at the top level. Duplicate required names are ignored.
func (e *Extractor) Extract(ctx context.Context, raw string, required ...string) Result {
	required = dedupe(required)

	var span observability.Span
	if e.observer != nil {
		ctx, span = e.observer.StartSpan(ctx, observability.SpanExtract,
			observability.Int(observability.AttrExtractInputLength, len(raw)),
			observability.Strings(observability.AttrExtractRequired, required),
		)
		defer span.End()
	}

	result := e.run(ctx, span, raw, required)
	e.record(ctx, span, result)
	return result
}

func (e *Extractor) run(ctx context.Context, span observability.Span, raw string, required []string) Result {
	for _, st := range e.stages {
		for _, candidate := range st.candidates(raw) {
			text := candidate
			if st.transform != nil {
				transformed, err := st.transform(candidate)
				if err != nil {
					e.stageFailed(ctx, span, st.strategy, candidate, err)
					continue
				}
				if transformed == candidate {
					// Same text as the untransformed stage already rejected.
					continue
				}
				text = transformed
			}

			doc, err := parseDocument(text)
			if err != nil {
				e.stageFailed(ctx, span, st.strategy, text, err)
				continue
			}
			return validate(doc, st.strategy, required)
		}
	}

	// The excerpt is copied verbatim, newlines and quotes included.
	return ParseFailure(fmt.Sprintf("no JSON object in %d characters of output, starting with: %s",
		utf8.RuneCountInString(raw), utils.Excerpt(raw, e.excerptLength)))
}

// parseDocument decodes text and accepts only a top-level object.
func parseDocument(text string) (Document, error) {
	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return nil, err
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("top-level JSON value is %s, not an object", jsonKind(value))
	}
	return Document(obj), nil
}

func jsonKind(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case []any:
		return "an array"
	case string:
		return "a string"
	case float64:
		return "a number"
	case bool:
		return "a boolean"
	default:
		return fmt.Sprintf("%T", value)
	}
}

func validate(doc Document, strategy Strategy, required []string) Result {
	var missing []string
	for _, key := range required {
		if _, ok := doc[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return MissingFieldsFailure(doc, strategy, missing)
	}
	return Success(doc, strategy)
}

func dedupe(keys []string) []string {
	if len(keys) < 2 {
		return keys
	}
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

func (e *Extractor) stageFailed(ctx context.Context, span observability.Span, strategy Strategy, candidate string, err error) {
	if e.observer == nil {
		return
	}
	attrs := []observability.Attribute{
		observability.String(observability.AttrExtractStage, strategy.String()),
		observability.Int(observability.AttrExtractCandidateLength, len(candidate)),
		observability.Error(err),
	}
	span.AddEvent(observability.EventStageFailed, attrs...)
	e.observer.Trace(ctx, "extract stage failed", attrs...)
}

func (e *Extractor) record(ctx context.Context, span observability.Span, result Result) {
	if e.observer == nil {
		return
	}

	status := "success"
	if !result.OK() {
		status = result.Kind().String()
	}
	e.observer.Counter(observability.MetricExtractCount).Add(ctx, 1,
		observability.String(observability.AttrStatus, status),
		observability.String(observability.AttrExtractStrategy, result.Strategy.String()),
	)

	if result.OK() {
		span.SetAttributes(observability.String(observability.AttrExtractStrategy, result.Strategy.String()))
		span.SetStatus(observability.StatusOK, "")
		e.observer.Debug(ctx, "extraction succeeded",
			observability.String(observability.AttrExtractStrategy, result.Strategy.String()),
			observability.Int(observability.AttrDocumentKeys, len(result.Document)),
		)
		return
	}

	span.SetAttributes(observability.String(observability.AttrExtractFailureKind, result.Kind().String()))
	if missing := result.Missing(); len(missing) > 0 {
		span.SetAttributes(observability.Strings(observability.AttrExtractMissing, missing))
	}
	span.SetStatus(observability.StatusError, result.Failure.Error())
	e.observer.Debug(ctx, "extraction failed",
		observability.String(observability.AttrExtractFailureKind, result.Kind().String()),
		observability.Strings(observability.AttrExtractMissing, result.Missing()),
	)
}
