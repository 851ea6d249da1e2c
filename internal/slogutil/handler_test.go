package slogutil

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLineHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)

	logger.Info("Dictionary loaded", "words", 42, "source", "words.txt")

	output := buf.String()
	for _, want := range []string{"[info]", "Dictionary loaded", " | ", "words=42", "source=words.txt"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestLineHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	output := buf.String()
	if strings.Contains(output, "debug message") || strings.Contains(output, "info message") {
		t.Errorf("messages below warn should be filtered, got: %s", output)
	}
	if !strings.Contains(output, "[warn] warn message") {
		t.Error("warn message should be included")
	}
	if !strings.Contains(output, "[error] error message") {
		t.Error("error message should be included")
	}
}

func TestLineHandler_GroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo).With("session", "abc").WithGroup("habit")

	logger.Info("promoted", "word", "cat")

	output := buf.String()
	if !strings.Contains(output, "session=abc") {
		t.Errorf("expected pre-set attr, got: %s", output)
	}
	if !strings.Contains(output, "habit.word=cat") {
		t.Errorf("expected grouped key, got: %s", output)
	}
}

func TestLineHandler_Values(t *testing.T) {
	tests := []struct {
		name string
		attr slog.Attr
		want string
	}{
		{"plain string", slog.String("word", "cat"), " | word=cat\n"},
		{"spaced string", slog.String("error", "disk full"), ` | error="disk full"` + "\n"},
		{"empty string", slog.String("word", ""), ` | word=""` + "\n"},
		{"int", slog.Int("count", -3), " | count=-3\n"},
		{"uint", slog.Uint64("count", 7), " | count=7\n"},
		{"bool", slog.Bool("promoted", true), " | promoted=true\n"},
		{"duration", slog.Duration("took", 1500*time.Millisecond), " | took=1.5s\n"},
		{"inline group", slog.Group("dict", slog.Int("lines", 3), slog.Int("skipped", 1)), " | dict.lines=3 dict.skipped=1\n"},
		{"empty group", slog.Group("dict"), "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(&buf, slog.LevelInfo)
			logger.LogAttrs(context.Background(), slog.LevelInfo, "msg", tt.attr)

			if got := buf.String(); !strings.HasSuffix(got, "[info] msg"+tt.want) {
				t.Errorf("got %q, want suffix %q", got, "[info] msg"+tt.want)
			}
		})
	}
}

func TestLineHandler_ClonesShareWriter(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(&buf, slog.LevelInfo)
	a := base.With("session", "one")
	b := base.WithGroup("api").With("route", "/words")

	a.Info("first")
	b.Info("second", "status", 202)
	base.Info("third")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %q", len(lines), buf.String())
	}
	if !strings.HasSuffix(lines[0], "first | session=one") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "second | api.route=/words api.status=202") {
		t.Errorf("line 1 = %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], "[info] third") {
		t.Errorf("line 2 = %q", lines[2])
	}
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, JSONFormat, slog.LevelInfo)
	logger.Info("recorded", "word", "cat")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if entry["word"] != "cat" {
		t.Errorf("word = %v, want cat", entry["word"])
	}
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{" error ", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := LevelFromString(tt.input); got != tt.expected {
				t.Errorf("LevelFromString(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLevelFromVerbosity(t *testing.T) {
	tests := []struct {
		verbosity int
		quiet     bool
		expected  slog.Level
	}{
		{0, false, slog.LevelWarn},
		{1, false, slog.LevelInfo},
		{2, false, slog.LevelDebug},
		{3, false, slog.LevelDebug},
		{0, true, silentLevel},
		{5, true, silentLevel},
	}

	for _, tt := range tests {
		if got := LevelFromVerbosity(tt.verbosity, tt.quiet); got != tt.expected {
			t.Errorf("LevelFromVerbosity(%d, %v) = %v, want %v", tt.verbosity, tt.quiet, got, tt.expected)
		}
	}
}

func TestTeeHandler(t *testing.T) {
	var all, warnOnly bytes.Buffer
	h1 := NewLineHandler(&all, &slog.HandlerOptions{Level: slog.LevelInfo})
	h2 := NewLineHandler(&warnOnly, &slog.HandlerOptions{Level: slog.LevelWarn})

	logger := slog.New(NewTeeHandler(h1, h2))
	logger.Info("info message")
	logger.Warn("warn message")

	if !strings.Contains(all.String(), "info message") || !strings.Contains(all.String(), "warn message") {
		t.Errorf("info handler missed records: %s", all.String())
	}
	if strings.Contains(warnOnly.String(), "info message") {
		t.Error("warn handler should not contain info message")
	}
	if !strings.Contains(warnOnly.String(), "warn message") {
		t.Error("warn handler should contain warn message")
	}
}

func TestNewDiscardLogger(t *testing.T) {
	logger := NewDiscardLogger()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Error("discard logger should not be enabled for any level")
	}
	logger.Error("dropped")
}
