// Package session drives a generator through a bounded number of extraction
// attempts.
//
// A [Session] belongs to one logical request. Each attempt calls the
// caller's [GenerateFunc] once and hands the text to an extract.Extractor:
//
//   - a success ends the session immediately
//   - a missing-fields failure calls the [AugmentFunc] with the missing keys,
//     so the caller can steer the next prompt, then retries
//   - a parse failure retries unchanged
//   - a generator error becomes a transport failure for that attempt and
//     retries without augmenting
//
// After the attempt budget is spent the last failure is returned as-is.
// A fixed backoff separates attempts; cancelling the context aborts the
// session.
//
// Sessions are not safe for concurrent use. Give every request its own.
package session
