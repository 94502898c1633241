package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// LineHandler is a slog.Handler emitting one log-file line per record:
//
//	<ISO-8601 UTC timestamp> -- [<LEVEL>] <message> key=value ...
//
// Levels are spelled DEBUG, INFO, WARNING, ERROR.
type LineHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
}

// NewLineHandler creates a LineHandler writing to w at the given
// minimum level.
func NewLineHandler(w io.Writer, level slog.Leveler) *LineHandler {
	return &LineHandler{
		mu:    &sync.Mutex{},
		w:     w,
		level: level,
	}
}

func (h *LineHandler) Enabled(_ context.Context, level slog.Level) bool {
	min := slog.LevelInfo
	if h.level != nil {
		min = h.level.Level()
	}
	return level >= min
}

func (h *LineHandler) Handle(_ context.Context, record slog.Record) error {
	var b strings.Builder

	b.WriteString(record.Time.UTC().Format(time.RFC3339))
	b.WriteString(" -- [")
	b.WriteString(levelName(record.Level))
	b.WriteString("] ")
	b.WriteString(record.Message)

	for _, attr := range h.attrs {
		h.appendAttr(&b, attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		h.appendAttr(&b, attr)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *LineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)

	groups := make([]string, len(h.groups))
	copy(groups, h.groups)

	return &LineHandler{mu: h.mu, w: h.w, level: h.level, attrs: merged, groups: groups}
}

func (h *LineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	attrs := make([]slog.Attr, len(h.attrs))
	copy(attrs, h.attrs)

	groups := make([]string, 0, len(h.groups)+1)
	groups = append(groups, h.groups...)
	groups = append(groups, name)

	return &LineHandler{mu: h.mu, w: h.w, level: h.level, attrs: attrs, groups: groups}
}

func (h *LineHandler) appendAttr(b *strings.Builder, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}

	key := attr.Key
	if len(h.groups) > 0 {
		key = strings.Join(h.groups, ".") + "." + key
	}

	value := attr.Value.String()
	b.WriteByte(' ')
	b.WriteString(key)
	b.WriteByte('=')
	if strings.ContainsAny(value, " \t\"") {
		b.WriteString(fmt.Sprintf("%q", value))
	} else {
		b.WriteString(value)
	}
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARNING"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
