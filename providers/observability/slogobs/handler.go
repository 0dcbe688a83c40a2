package slogobs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// NewHandler returns the slog.Handler for format writing to output at level.
// A nil output writes to os.Stderr.
func NewHandler(format Format, level slog.Level, output io.Writer) slog.Handler {
	if output == nil {
		output = os.Stderr
	}
	if format == FormatJSON {
		return slog.NewJSONHandler(output, &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if len(groups) == 0 && a.Key == slog.LevelKey {
					if lvl, ok := a.Value.Any().(slog.Level); ok {
						a.Value = slog.StringValue(levelString(lvl))
					}
				}
				return a
			},
		})
	}
	return &compactHandler{
		level: level,
		out:   &lockedWriter{w: output},
	}
}

// compactHandler writes "2006-01-02 15:04:05 LEVEL message -> {attrs}".
type compactHandler struct {
	level  slog.Level
	out    *lockedWriter
	attrs  []slog.Attr
	prefix string
}

func (h *compactHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *compactHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make(map[string]interface{}, len(h.attrs)+r.NumAttrs())
	for _, attr := range h.attrs {
		fields[attr.Key] = attr.Value.Any()
	}
	r.Attrs(func(attr slog.Attr) bool {
		fields[h.prefix+attr.Key] = attr.Value.Any()
		return true
	})

	line := fmt.Sprintf("%s %5s %s", r.Time.Format("2006-01-02 15:04:05"), levelString(r.Level), r.Message)
	if len(fields) > 0 {
		encoded, err := json.Marshal(fields)
		if err != nil {
			line += " -> [json-error]"
		} else {
			line += " -> " + string(encoded)
		}
	}
	return h.out.write(line + "\n")
}

func (h *compactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]slog.Attr{}, h.attrs...)
	for _, attr := range attrs {
		attr.Key = h.prefix + attr.Key
		next.attrs = append(next.attrs, attr)
	}
	return &next
}

func (h *compactHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

// lockedWriter serialises writes from handlers derived via WithAttrs/WithGroup.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) write(s string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := io.WriteString(l.w, s)
	return err
}
