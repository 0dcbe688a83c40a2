package middleware

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/leofalp/itinera/core/session"
	"github.com/leofalp/itinera/internal/utils"
)

// LogLevel controls how much detail the logging middleware emits per call.
type LogLevel int

const (
	// LogLevelMinimal logs only the call duration.
	LogLevelMinimal LogLevel = iota

	// LogLevelStandard adds the response length in characters.
	LogLevelStandard

	// LogLevelVerbose adds the response text, truncated to 500 characters.
	//
	// WARNING: do not use LogLevelVerbose in production. Generated text can
	// echo user data from the prompt.
	LogLevelVerbose
)

const truncateLen = 500

// NewLoggingMiddleware logs every generate call. A nil logger means
// slog.Default(), resolved when the middleware is built.
func NewLoggingMiddleware(logger *slog.Logger, level LogLevel) session.Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next session.GenerateFunc) session.GenerateFunc {
		return func(ctx context.Context) (string, error) {
			logger.InfoContext(ctx, "generate")

			start := time.Now()
			text, err := next(ctx)
			elapsed := time.Since(start)

			if err != nil {
				logger.ErrorContext(ctx, "generate failed",
					slog.Duration("duration", elapsed),
					slog.String("error", err.Error()),
				)
				return "", err
			}

			logger.InfoContext(ctx, "generate completed", responseAttrs(text, elapsed, level)...)
			return text, nil
		}
	}
}

func responseAttrs(text string, elapsed time.Duration, level LogLevel) []any {
	attrs := []any{slog.Duration("duration", elapsed)}

	if level >= LogLevelStandard {
		attrs = append(attrs, slog.Int("response_length", utf8.RuneCountInString(text)))
	}
	if level >= LogLevelVerbose && text != "" {
		attrs = append(attrs, slog.String("response_content", utils.TruncateString(text, truncateLen)))
	}
	return attrs
}
