package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"wordsmith/internal/autocomplete"
	wserrors "wordsmith/internal/errors"
	"wordsmith/internal/export"
	"wordsmith/internal/kvstore"
	"wordsmith/internal/slogutil"
)

func newTestServer(t *testing.T, opts Options, words ...string) (*Server, *autocomplete.Engine) {
	t.Helper()
	logger := slogutil.NewDiscardLogger()
	engine := autocomplete.New(autocomplete.Options{Store: kvstore.NewMemoryStore(), Logger: logger})
	if _, err := engine.LoadDictionaryFrom(strings.NewReader(strings.Join(words, "\n"))); err != nil {
		t.Fatalf("LoadDictionaryFrom failed: %v", err)
	}
	engine.Start(context.Background())
	t.Cleanup(func() { _ = engine.Close() })
	return NewServer("127.0.0.1:0", engine, logger, opts), engine
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s, engine := newTestServer(t, Options{})

	w := do(s, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "healthy" || resp.Session != engine.SessionID() {
		t.Errorf("response = %+v", resp)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestRequestIDPreserved(t *testing.T) {
	s, _ := newTestServer(t, Options{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID = %q, want abc-123", got)
	}
}

func TestComplete(t *testing.T) {
	s, _ := newTestServer(t, Options{}, "amazing", "amazingly", "amaze")

	tests := []struct {
		target string
		want   []string
	}{
		{"/complete?prefix=ama", []string{"amaze", "amazing", "amazingly"}},
		{"/complete?prefix=A", []string{}},
		{"/complete", []string{}},
		{"/complete?prefix=xyz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := do(s, http.MethodGet, tt.target, "")
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d", w.Code)
			}
			var resp CompleteResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Suggestions == nil {
				t.Fatal("suggestions should be an empty array, not null")
			}
			got := make([]string, 0, len(resp.Suggestions))
			for _, sg := range resp.Suggestions {
				got = append(got, sg.Text)
				if sg.Source != autocomplete.SourceDictionary {
					t.Errorf("%q source = %v", sg.Text, sg.Source)
				}
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("suggestions = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompleteTaggedHabit(t *testing.T) {
	s, _ := newTestServer(t, Options{}, "amazing", "amaze")

	for i := 0; i < 2; i++ {
		if w := do(s, http.MethodPost, "/words", `{"word":"Amaze"}`); w.Code != http.StatusOK {
			t.Fatalf("POST /words status = %d: %s", w.Code, w.Body.String())
		}
	}

	w := do(s, http.MethodGet, "/complete?prefix=am", "")
	want := `{"prefix":"am","suggestions":[{"text":"amaze","source":"habit"}]}`
	if got := strings.TrimSpace(w.Body.String()); got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
}

func TestWords(t *testing.T) {
	s, _ := newTestServer(t, Options{})

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"valid", `{"word":"hello"}`, http.StatusOK},
		{"empty word", `{"word":""}`, http.StatusBadRequest},
		{"blank word", `{"word":"   "}`, http.StatusBadRequest},
		{"missing word", `{}`, http.StatusBadRequest},
		{"two words", `{"word":"two words"}`, http.StatusBadRequest},
		{"not json", `hello`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(s, http.MethodPost, "/words", tt.body)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.status, w.Body.String())
			}
			if tt.status == http.StatusBadRequest {
				var resp ErrorResponse
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Code != "INVALID_INPUT" {
					t.Errorf("error body = %s", w.Body.String())
				}
			}
		})
	}

	w := do(s, http.MethodPost, "/words", `{"word":"Hello"}`)
	var c autocomplete.Completion
	if err := json.Unmarshal(w.Body.Bytes(), &c); err != nil {
		t.Fatal(err)
	}
	if c.Word != "hello" || c.Count != 2 || !c.Promoted {
		t.Errorf("completion = %+v, want hello/2/promoted", c)
	}
}

func TestWordsMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t, Options{})

	w := do(s, http.MethodGet, "/words", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
	if w.Header().Get("Allow") != http.MethodPost {
		t.Errorf("Allow = %q", w.Header().Get("Allow"))
	}
}

func TestWordsDebounced(t *testing.T) {
	s, engine := newTestServer(t, Options{RecordDebounce: 20 * time.Millisecond})

	for i := 0; i < 3; i++ {
		w := do(s, http.MethodPost, "/words", `{"word":"queued"}`)
		if w.Code != http.StatusAccepted {
			t.Fatalf("status = %d, want 202", w.Code)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for engine.Frequency().Count("queued") < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("count = %d after deadline, want 3", engine.Frequency().Count("queued"))
		}
		time.Sleep(10 * time.Millisecond)
	}
	if got := engine.HabitWords(); len(got) != 1 || got[0] != "queued" {
		t.Errorf("HabitWords = %v", got)
	}
}

func TestShutdownFlushesQueuedWords(t *testing.T) {
	s, engine := newTestServer(t, Options{RecordDebounce: time.Hour})

	do(s, http.MethodPost, "/words", `{"word":"late"}`)
	if engine.Frequency().Count("late") != 0 {
		t.Fatal("word should still be queued")
	}
	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if engine.Frequency().Count("late") != 1 {
		t.Error("Shutdown should record queued words")
	}
}

func TestFrequency(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	do(s, http.MethodPost, "/words", `{"word":"cat"}`)
	do(s, http.MethodPost, "/words", `{"word":"cat"}`)
	do(s, http.MethodPost, "/words", `{"word":"dog"}`)

	w := do(s, http.MethodGet, "/frequency", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	snap, err := export.Decode(w.Body, export.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	counts := snap.Counts()
	if counts["cat"] != 2 || counts["dog"] != 1 || len(counts) != 2 {
		t.Errorf("counts = %v", counts)
	}
	if snap.Words[0].Word != "cat" || !snap.Words[0].Habit {
		t.Errorf("first entry = %+v, want habit cat", snap.Words[0])
	}

	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}
	req := httptest.NewRequest(http.MethodGet, "/frequency", nil)
	req.Header.Set("If-None-Match", etag)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotModified {
		t.Errorf("conditional GET status = %d, want 304", rec.Code)
	}

	do(s, http.MethodPost, "/words", `{"word":"dog"}`)
	if w := do(s, http.MethodGet, "/frequency", ""); w.Header().Get("ETag") == etag {
		t.Error("ETag should change after a new recording")
	}
}

func TestFrequencyFormats(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	do(s, http.MethodPost, "/words", `{"word":"owl"}`)

	w := do(s, http.MethodGet, "/frequency?format=yaml", "")
	if ct := w.Header().Get("Content-Type"); ct != "application/yaml" {
		t.Errorf("Content-Type = %q", ct)
	}
	var snap export.Snapshot
	if err := yaml.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("yaml body: %v", err)
	}
	if len(snap.Words) != 1 || snap.Words[0].Word != "owl" {
		t.Errorf("words = %+v", snap.Words)
	}

	if w := do(s, http.MethodGet, "/frequency?format=toml", ""); w.Code != http.StatusOK {
		t.Errorf("toml status = %d", w.Code)
	}
	if w := do(s, http.MethodGet, "/frequency?format=xml", ""); w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("xml status = %d, want 415", w.Code)
	}
}

func TestStatsAndMetrics(t *testing.T) {
	s, _ := newTestServer(t, Options{}, "tree", "trek")
	do(s, http.MethodGet, "/complete?prefix=tr", "")
	do(s, http.MethodPost, "/words", `{"word":"tree"}`)

	w := do(s, http.MethodGet, "/stats", "")
	var stats autocomplete.Stats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.DictionaryWords != 2 || stats.TrackedWords != 1 {
		t.Errorf("stats = %+v", stats)
	}

	body := do(s, http.MethodGet, "/metrics", "").Body.String()
	for _, want := range []string{
		`wordsmith_queries_total{source="dictionary"} 1`,
		`wordsmith_suggestions_total{source="dictionary"} 2`,
		"wordsmith_words_recorded_total 1",
		"wordsmith_dictionary_words 2",
		"wordsmith_query_duration_seconds_count 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestCORS(t *testing.T) {
	s, _ := newTestServer(t, Options{CORSOrigins: []string{"http://localhost:3000"}})

	req := httptest.NewRequest(http.MethodOptions, "/complete", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	s.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin for unknown origin = %q, want empty", got)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(slogutil.NewDiscardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Code != "INTERNAL_ERROR" {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestMapErrorToStatus(t *testing.T) {
	tests := map[string]int{
		"INVALID_INPUT":          http.StatusBadRequest,
		"UNSUPPORTED_FORMAT":     http.StatusUnsupportedMediaType,
		"STORAGE_UNAVAILABLE":    http.StatusServiceUnavailable,
		"DICTIONARY_UNAVAILABLE": http.StatusServiceUnavailable,
		"INTERNAL_ERROR":         http.StatusInternalServerError,
		"SOMETHING_ELSE":         http.StatusInternalServerError,
	}
	for code, want := range tests {
		if got := MapErrorToStatus(wserrors.ErrorCode(code)); got != want {
			t.Errorf("MapErrorToStatus(%s) = %d, want %d", code, got, want)
		}
	}
}
