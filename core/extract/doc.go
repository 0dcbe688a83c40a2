// Package extract turns unreliable generator text into a validated
// structured document.
//
// [Extractor.Extract] runs an ordered pipeline of recovery stages and stops at
// the first stage that yields a JSON object:
//
//  1. direct: the raw text as-is
//  2. repaired: the raw text after [Repair]
//  3. fenced, fenced_repaired: the content of markdown code fences,
//     json-tagged fences first
//  4. braces, braces_repaired: the span from the first '{' to the last '}'
//  5. token_repair: tokenizer-backed repair, only with [WithTokenRepair]
//
// Once a stage parses, every required top-level key is checked. The outcome
// is a [Result]: either a [Document] or a [*Failure] whose [Kind] tells a
// parse failure apart from a document that is merely missing fields.
//
// The zero-option extractor is available through the package-level [Extract].
package extract
