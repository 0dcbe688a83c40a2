package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors matched by [Failure.Is] according to the failure kind.
var (
	ErrParse         = errors.New("itinera: no structured document found")
	ErrMissingFields = errors.New("itinera: required fields missing")
	ErrTransport     = errors.New("itinera: generator call failed")
)

// Document is a parsed top-level JSON object.
type Document map[string]any

// Kind classifies a failed extraction attempt.
type Kind int

const (
	// ParseError means no stage produced a JSON object.
	ParseError Kind = iota + 1

	// MissingFields means a JSON object was found but lacks required keys.
	MissingFields

	// TransportError means the generator itself failed; no text was extracted.
	TransportError
)

// String returns the snake_case name used in logs and JSON output.
func (k Kind) String() string {
	switch k {
	case ParseError:
		return "parse_error"
	case MissingFields:
		return "missing_fields"
	case TransportError:
		return "transport_error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Strategy names the pipeline stage that produced a parse.
type Strategy string

const (
	StrategyDirect         Strategy = "direct"
	StrategyRepaired       Strategy = "repaired"
	StrategyFenced         Strategy = "fenced"
	StrategyFencedRepaired Strategy = "fenced_repaired"
	StrategyBraces         Strategy = "braces"
	StrategyBracesRepaired Strategy = "braces_repaired"
	StrategyTokenRepair    Strategy = "token_repair"
)

// String returns the strategy name.
func (s Strategy) String() string {
	return string(s)
}

// Failure describes why an attempt did not produce a usable document.
// It implements error; errors.Is matches [ErrParse], [ErrMissingFields] or
// [ErrTransport] by kind, and Unwrap exposes the generator error of a
// transport failure.
type Failure struct {
	Kind Kind

	// Missing lists absent required keys in the caller's order (MissingFields only).
	Missing []string

	// Partial is the incomplete document (MissingFields only). It is never
	// handed out as a success.
	Partial Document

	// Diagnostic is a short human-readable explanation: input length and
	// excerpt for parse errors, the missing keys, or the transport message.
	Diagnostic string

	// Err is the generator error (TransportError only).
	Err error
}

func (f *Failure) Error() string {
	if f.Diagnostic == "" {
		return f.Kind.String()
	}
	return f.Kind.String() + ": " + f.Diagnostic
}

// Is reports whether target is the sentinel for f's kind.
func (f *Failure) Is(target error) bool {
	switch target {
	case ErrParse:
		return f.Kind == ParseError
	case ErrMissingFields:
		return f.Kind == MissingFields
	case ErrTransport:
		return f.Kind == TransportError
	}
	return false
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Result is the outcome of one extraction: a Document on success, a Failure
// otherwise. Exactly one of the two is set on a result produced by this
// package; the zero Result (no attempt made) has neither.
type Result struct {
	Document Document
	Strategy Strategy
	Failure  *Failure
}

// Success builds a successful result.
func Success(doc Document, strategy Strategy) Result {
	return Result{Document: doc, Strategy: strategy}
}

// ParseFailure builds a ParseError result.
func ParseFailure(diagnostic string) Result {
	return Result{Failure: &Failure{Kind: ParseError, Diagnostic: diagnostic}}
}

// MissingFieldsFailure builds a MissingFields result for a document parsed by strategy.
func MissingFieldsFailure(partial Document, strategy Strategy, missing []string) Result {
	return Result{
		Strategy: strategy,
		Failure: &Failure{
			Kind:       MissingFields,
			Missing:    missing,
			Partial:    partial,
			Diagnostic: "document is missing required fields: " + strings.Join(missing, ", "),
		},
	}
}

// TransportFailure builds a TransportError result wrapping err.
func TransportFailure(err error) Result {
	f := &Failure{Kind: TransportError, Err: err}
	if err != nil {
		f.Diagnostic = err.Error()
	}
	return Result{Failure: f}
}

// OK reports whether r carries a validated document.
func (r Result) OK() bool {
	return r.Failure == nil && r.Document != nil
}

// Err returns r.Failure as an error, or nil on success. The zero Result
// yields nil as well; check [Result.OK] to tell it apart from a success.
func (r Result) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

// Kind returns the failure kind, or 0 on success.
func (r Result) Kind() Kind {
	if r.Failure == nil {
		return 0
	}
	return r.Failure.Kind
}

// Missing returns the missing keys of a MissingFields result, or nil.
func (r Result) Missing() []string {
	if r.Failure == nil || r.Failure.Kind != MissingFields {
		return nil
	}
	return r.Failure.Missing
}

type resultJSON struct {
	Status     string   `json:"status"`
	Strategy   Strategy `json:"strategy,omitempty"`
	Document   any      `json:"document,omitempty"`
	Kind       string   `json:"kind,omitempty"`
	Missing    []string `json:"missing,omitempty"`
	Diagnostic string   `json:"diagnostic,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// MarshalJSON renders r as {"status":"success",...} or {"status":"failure",...}.
func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{Strategy: r.Strategy}
	switch {
	case r.OK():
		out.Status = "success"
		out.Document = r.Document
	case r.Failure != nil:
		out.Status = "failure"
		out.Kind = r.Failure.Kind.String()
		out.Missing = r.Failure.Missing
		out.Diagnostic = r.Failure.Diagnostic
		if r.Failure.Err != nil {
			out.Error = r.Failure.Err.Error()
		}
	default:
		out.Status = "empty"
	}
	return json.Marshal(out)
}
