// Package slogutil provides the line-oriented slog handler and helpers used
// by every wordsmith component.
package slogutil

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// LineHandler writes one record per line:
// TIMESTAMP [level] Message | key=value key=value
//
// Attributes added with WithAttrs are rendered once and reused for every
// record. Values containing spaces, quotes or '=' are quoted.
type LineHandler struct {
	out   *lineWriter
	level slog.Leveler
	// preset holds the rendered " key=value" pairs from WithAttrs
	preset []byte
	// prefix is the dotted group path applied to later keys, e.g. "habit."
	prefix string
}

// lineWriter serializes whole lines onto w; clones of a handler share it.
type lineWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lineWriter) write(line []byte) error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	_, err := lw.w.Write(line)
	return err
}

// NewLineHandler creates a handler writing to w
func NewLineHandler(w io.Writer, opts *slog.HandlerOptions) *LineHandler {
	h := &LineHandler{out: &lineWriter{w: w}, level: slog.LevelInfo}
	if opts != nil && opts.Level != nil {
		h.level = opts.Level
	}
	return h
}

// Enabled reports whether the handler handles records at the given level.
func (h *LineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and writes the log record.
func (h *LineHandler) Handle(_ context.Context, r slog.Record) error {
	line := make([]byte, 0, 128+len(h.preset))
	line = r.Time.UTC().AppendFormat(line, time.RFC3339)
	line = append(line, " ["...)
	line = append(line, levelName(r.Level)...)
	line = append(line, "] "...)
	line = append(line, r.Message...)

	pairs := append([]byte(nil), h.preset...)
	r.Attrs(func(a slog.Attr) bool {
		pairs = appendAttr(pairs, h.prefix, a)
		return true
	})
	if len(pairs) > 0 {
		line = append(line, " |"...)
		line = append(line, pairs...)
	}
	line = append(line, '\n')

	return h.out.write(line)
}

// WithAttrs returns a new handler with the given attributes added.
func (h *LineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	preset := append([]byte(nil), h.preset...)
	for _, a := range attrs {
		preset = appendAttr(preset, h.prefix, a)
	}
	return &LineHandler{out: h.out, level: h.level, preset: preset, prefix: h.prefix}
}

// WithGroup returns a new handler that prefixes later keys with name.
func (h *LineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &LineHandler{out: h.out, level: h.level, preset: h.preset, prefix: h.prefix + name + "."}
}

// appendAttr renders a as " prefix.key=value". Group values are flattened
// into dotted keys; empty attrs are dropped.
func appendAttr(dst []byte, prefix string, a slog.Attr) []byte {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		group := v.Group()
		if len(group) == 0 {
			return dst
		}
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range group {
			dst = appendAttr(dst, prefix, ga)
		}
		return dst
	}
	if a.Key == "" {
		return dst
	}

	dst = append(dst, ' ')
	dst = append(dst, prefix...)
	dst = append(dst, a.Key...)
	dst = append(dst, '=')
	return appendValue(dst, v)
}

func appendValue(dst []byte, v slog.Value) []byte {
	switch v.Kind() {
	case slog.KindString:
		return appendString(dst, v.String())
	case slog.KindInt64:
		return strconv.AppendInt(dst, v.Int64(), 10)
	case slog.KindUint64:
		return strconv.AppendUint(dst, v.Uint64(), 10)
	case slog.KindBool:
		return strconv.AppendBool(dst, v.Bool())
	case slog.KindTime:
		return v.Time().AppendFormat(dst, time.RFC3339)
	case slog.KindDuration:
		return append(dst, v.Duration().String()...)
	default:
		return appendString(dst, v.String())
	}
}

func appendString(dst []byte, s string) []byte {
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.AppendQuote(dst, s)
	}
	return append(dst, s...)
}

var levelNames = [...]string{"debug", "info", "warn", "error"}

func levelName(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return levelNames[0]
	case level < slog.LevelWarn:
		return levelNames[1]
	case level < slog.LevelError:
		return levelNames[2]
	}
	return levelNames[3]
}
