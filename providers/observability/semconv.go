package observability

// Semantic conventions for the attributes, spans, events and metrics emitted
// by the extraction pipeline and the retry session.

// --- Extraction Attributes ---

const (
	// AttrExtractInputLength is the length in bytes of the raw generator output
	AttrExtractInputLength = "extract.input.length"

	// AttrExtractRequired is the ordered list of required top-level keys
	AttrExtractRequired = "extract.required"

	// AttrExtractStrategy is the pipeline stage that produced the parse
	AttrExtractStrategy = "extract.strategy"

	// AttrExtractStage is the stage currently being attempted
	AttrExtractStage = "extract.stage"

	// AttrExtractCandidateLength is the length of the text handed to a stage
	AttrExtractCandidateLength = "extract.candidate.length"

	// AttrExtractMissing is the list of required keys absent from the document
	AttrExtractMissing = "extract.missing"

	// AttrExtractFailureKind is the failure kind (parse_error, missing_fields, transport_error)
	AttrExtractFailureKind = "extract.failure.kind"

	// AttrDocumentKeys is the number of top-level keys in the extracted document
	AttrDocumentKeys = "extract.document.keys"
)

// --- Session Attributes ---

const (
	// AttrSessionAttempt is the 1-based attempt number
	AttrSessionAttempt = "session.attempt"

	// AttrSessionMaxAttempts is the configured attempt budget
	AttrSessionMaxAttempts = "session.max_attempts"

	// AttrSessionBackoff is the fixed delay between attempts
	AttrSessionBackoff = "session.backoff"

	// AttrSessionAugmented reports whether augment was called after an attempt
	AttrSessionAugmented = "session.augmented"
)

// --- General Attributes ---

const (
	// AttrError is the error message
	AttrError = "error"

	// AttrDuration is the operation duration
	AttrDuration = "duration"

	// AttrStatus is the operation status
	AttrStatus = "status"

	// AttrStatusDescription is the status description
	AttrStatusDescription = "status_description"
)

// --- Span Names ---

const (
	// SpanExtract wraps one call to Extractor.Extract
	SpanExtract = "extract"

	// SpanSessionRun wraps one Session.Run
	SpanSessionRun = "session.run"
)

// --- Event Names ---

const (
	// EventStageFailed marks a pipeline stage that did not yield a document
	EventStageFailed = "extract.stage.failed"

	// EventAttemptStart marks the start of one generate call
	EventAttemptStart = "session.attempt.start"

	// EventAttemptEnd marks the end of one attempt (generate plus extract)
	EventAttemptEnd = "session.attempt.end"

	// EventAugment marks a call to the caller's augment function
	EventAugment = "session.augment"
)

// --- Metric Names ---

const (
	// MetricExtractCount counts extractions, tagged by status and strategy
	MetricExtractCount = "itinera.extract.count"

	// MetricSessionAttempts counts generate calls made by sessions
	MetricSessionAttempts = "itinera.session.attempts"

	// MetricSessionFailures counts failed attempts, tagged by failure kind
	MetricSessionFailures = "itinera.session.failures"

	// MetricSessionAttemptDuration records wall time per attempt in milliseconds
	MetricSessionAttemptDuration = "itinera.session.attempt.duration"
)
