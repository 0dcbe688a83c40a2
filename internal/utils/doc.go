// Package utils provides small string helpers shared by the extraction
// pipeline and the CLI: rune-safe excerpts for diagnostics, truncation for
// log output, and compact JSON rendering.
package utils
