package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/cespare/xxhash/v2"

	"wordsmith/internal/autocomplete"
	wserrors "wordsmith/internal/errors"
	"wordsmith/internal/export"
	"wordsmith/internal/frequency"
	"wordsmith/internal/version"
)

const maxWordBody = 4 << 10

// CompleteResponse is returned by GET /complete
type CompleteResponse struct {
	Prefix      string                    `json:"prefix"`
	Suggestions []autocomplete.Suggestion `json:"suggestions"`
}

// WordRequest is the body of POST /words
type WordRequest struct {
	Word string `json:"word"`
}

// QueuedResponse is returned by POST /words when recordings are batched
type QueuedResponse struct {
	Word   string `json:"word"`
	Queued bool   `json:"queued"`
}

// handleComplete answers GET /complete?prefix=
func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowed(w, http.MethodGet)
		return
	}

	prefix := r.URL.Query().Get("prefix")
	start := time.Now()
	suggestions := s.engine.Query(prefix)
	s.metrics.queryDuration.Observe(time.Since(start).Seconds())

	source := "none"
	if len(suggestions) > 0 {
		source = suggestions[0].Source.String()
	}
	s.metrics.queriesTotal.Inc(source)
	s.metrics.suggestionsTotal.Add(uint64(len(suggestions)), source)

	WriteJSON(w, CompleteResponse{Prefix: prefix, Suggestions: suggestions}, http.StatusOK)
}

// handleWords records a completed word from POST /words
func (s *Server) handleWords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowed(w, http.MethodPost)
		return
	}

	var req WordRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxWordBody)).Decode(&req); err != nil {
		BadRequest(w, "body must be a JSON object with a word field")
		return
	}
	word := frequency.Normalize(req.Word)
	if word == "" {
		BadRequest(w, "word is required")
		return
	}
	if strings.ContainsFunc(word, unicode.IsSpace) {
		BadRequest(w, "word must not contain whitespace")
		return
	}

	if s.recorder != nil {
		s.recorder.add(word)
		WriteJSON(w, QueuedResponse{Word: word, Queued: true}, http.StatusAccepted)
		return
	}

	c, err := s.engine.Complete(r.Context(), word)
	s.metrics.observeCompletion(c, err)
	if err != nil {
		WriteCodedError(w, err)
		return
	}
	WriteJSON(w, c, http.StatusOK)
}

// handleFrequency returns the frequency snapshot. ?format= selects json
// (default), yaml or toml. The ETag changes only when counts change.
func (s *Server) handleFrequency(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowed(w, http.MethodGet)
		return
	}

	name := r.URL.Query().Get("format")
	if name == "" {
		name = string(export.FormatJSON)
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		WriteCodedError(w, err)
		return
	}

	counts := s.engine.Frequency().Snapshot()
	plain, err := json.Marshal(counts)
	if err != nil {
		InternalError(w, "encode frequency", err)
		return
	}
	etag := fmt.Sprintf(`"%s-%016x"`, format, xxhash.Sum64(plain))
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	snap := export.NewSnapshot(counts, s.engine.Stats().Threshold, version.Version, time.Now())
	var buf bytes.Buffer
	if err := export.Encode(&buf, snap, format); err != nil {
		InternalError(w, "encode frequency", err)
		return
	}

	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// handleStats returns vocabulary sizes
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowed(w, http.MethodGet)
		return
	}
	WriteJSON(w, s.engine.Stats(), http.StatusOK)
}

func (m *Metrics) observeCompletion(c autocomplete.Completion, err error) {
	if c.Count > 0 {
		m.wordsTotal.Inc()
	}
	if c.Promoted {
		m.promotionsTotal.Inc()
	}
	if err != nil {
		m.errorsTotal.Inc(string(wserrors.CodeOf(err)))
	}
}

func contentType(f export.Format) string {
	switch f {
	case export.FormatYAML:
		return "application/yaml"
	case export.FormatTOML:
		return "application/toml"
	default:
		return "application/json"
	}
}
