// Package parse converts extracted documents into typed Go values.
//
// The extraction pipeline returns untyped maps; callers that own a schema,
// such as an itinerary struct, use [As] for the whole document and [Field]
// for a single top-level key. Both tolerate the schema-style envelopes
// language models sometimes emit in place of plain values, e.g.
// {"type": "string", "value": "Rome"}.
package parse
