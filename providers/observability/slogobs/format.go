package slogobs

import (
	"log/slog"
	"os"
	"strings"
)

// Format represents the output format for logs.
type Format string

const (
	// FormatCompact is a single-line format with JSON attributes.
	// Example: 2026-03-01 10:40:35 DEBUG Span ended -> {"span":"extract"}
	FormatCompact Format = "compact"

	// FormatJSON is standard slog JSON output, one object per line.
	FormatJSON Format = "json"
)

// LevelTrace sits below slog.LevelDebug and is only emitted when explicitly enabled.
const LevelTrace = slog.LevelDebug - 4

// ParseFormat parses a format string. Unknown values yield FormatCompact.
func ParseFormat(s string) Format {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "json":
		return FormatJSON
	default:
		return FormatCompact
	}
}

// FormatFromEnv reads ITINERA_LOG_FORMAT, then LOG_FORMAT.
func FormatFromEnv() Format {
	return ParseFormat(firstEnv("ITINERA_LOG_FORMAT", "LOG_FORMAT"))
}

// ParseLogLevel maps trace, debug, info, warn/warning and error
// (case-insensitive) to slog levels. Anything else is INFO.
func ParseLogLevel(s string) slog.Level {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelFromEnv reads ITINERA_LOG_LEVEL, then LOG_LEVEL.
func LevelFromEnv() slog.Level {
	return ParseLogLevel(firstEnv("ITINERA_LOG_LEVEL", "LOG_LEVEL"))
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}

// String returns the string representation of the Format.
func (f Format) String() string {
	return string(f)
}

func levelString(level slog.Level) string {
	switch {
	case level < slog.LevelDebug:
		return "TRACE"
	case level < slog.LevelInfo:
		return "DEBUG"
	case level < slog.LevelWarn:
		return "INFO"
	case level < slog.LevelError:
		return "WARN"
	default:
		return "ERROR"
	}
}
