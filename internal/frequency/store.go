// Package frequency tracks how often each completed word was typed and keeps
// the mapping encrypted in the key-value store.
package frequency

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	wserrors "wordsmith/internal/errors"
	"wordsmith/internal/kvstore"
)

// Codec seals the serialized mapping before it is stored
type Codec interface {
	Seal(plaintext []byte) (string, error)
	Open(blob string) ([]byte, error)
}

// Store is a write-through word -> count mapping. Every mutation re-seals
// and persists the whole mapping before returning.
type Store struct {
	kv     kvstore.Store
	codec  Codec
	logger *slog.Logger
	key    string

	mu     sync.Mutex
	counts map[string]uint64
	loaded bool
}

// New creates a store persisting under kvstore.FrequencyKey
func New(kv kvstore.Store, codec Codec, logger *slog.Logger) *Store {
	return &Store{
		kv:     kv,
		codec:  codec,
		logger: logger,
		key:    kvstore.FrequencyKey,
		counts: make(map[string]uint64),
	}
}

// Normalize trims surrounding whitespace and lower-cases word. Invalid
// UTF-8 normalizes to "" and is never counted.
func Normalize(word string) string {
	if !utf8.ValidString(word) {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(word))
}

// Load reads and decrypts the persisted mapping, replacing the in-memory
// state. Missing, unreadable, undecryptable or non-JSON state yields an
// empty mapping; the failure is logged, never returned.
func (s *Store) Load(ctx context.Context) map[string]uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts = s.read(ctx)
	s.loaded = true
	return copyCounts(s.counts)
}

// Record counts one occurrence of word and persists the mapping. Blank input
// is ignored and returns 0. The returned count is the new total.
// A persistence failure keeps the in-memory increment and is returned as a
// STORAGE_UNAVAILABLE error.
func (s *Store) Record(ctx context.Context, word string) (uint64, error) {
	w := Normalize(word)
	if w == "" {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLoaded(ctx)
	s.counts[w] = addCounts(s.counts[w], 1)
	count := s.counts[w]

	return count, s.persist(ctx)
}

// Merge adds every count in other to the mapping and persists once.
// Keys are normalized the same way Record normalizes them.
func (s *Store) Merge(ctx context.Context, other map[string]uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLoaded(ctx)
	for word, n := range sanitize(other) {
		s.counts[word] = addCounts(s.counts[word], n)
	}
	return s.persist(ctx)
}

// Reset empties the mapping and persists the empty state
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts = make(map[string]uint64)
	s.loaded = true
	return s.persist(ctx)
}

// Count returns the in-memory count for word
func (s *Store) Count(word string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[Normalize(word)]
}

// Snapshot returns a copy of the in-memory mapping
func (s *Store) Snapshot() map[string]uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyCounts(s.counts)
}

// Len returns the number of distinct words tracked
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counts)
}

// ensureLoaded pulls persisted state on first mutation. Caller holds mu.
func (s *Store) ensureLoaded(ctx context.Context) {
	if !s.loaded {
		s.counts = s.read(ctx)
		s.loaded = true
	}
}

// read fetches and decodes the persisted mapping. Caller holds mu.
func (s *Store) read(ctx context.Context) map[string]uint64 {
	blob, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("Failed to read word frequency, starting empty", "error", err.Error())
		return make(map[string]uint64)
	}
	if !ok || blob == "" {
		return make(map[string]uint64)
	}

	plain, err := s.codec.Open(blob)
	if err != nil {
		s.logger.Warn("Failed to decrypt word frequency, starting empty", "error", err.Error())
		return make(map[string]uint64)
	}

	counts, err := decode(plain)
	if err != nil {
		s.logger.Warn("Failed to parse word frequency, starting empty", "error", err.Error())
		return make(map[string]uint64)
	}
	return counts
}

// persist seals and writes the full mapping. Caller holds mu.
func (s *Store) persist(ctx context.Context) error {
	plain, err := json.Marshal(s.counts)
	if err != nil {
		return wserrors.New(wserrors.InternalError, "encode word frequency", err)
	}
	blob, err := s.codec.Seal(plain)
	if err != nil {
		return wserrors.New(wserrors.InternalError, "encrypt word frequency", err)
	}
	if err := s.kv.Put(ctx, s.key, blob); err != nil {
		s.logger.Error("Failed to persist word frequency", "error", err.Error())
		return wserrors.New(wserrors.StorageUnavailable, "persist word frequency", err)
	}
	return nil
}

// decode parses a JSON object of word -> number. Counts below one are
// dropped and keys that normalize to the same word are summed.
func decode(plain []byte) (map[string]uint64, error) {
	dec := json.NewDecoder(bytes.NewReader(plain))
	dec.UseNumber()

	var raw map[string]json.Number
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	out := make(map[string]uint64, len(raw))
	for word, num := range raw {
		n, ok := toCount(num)
		if !ok {
			continue
		}
		if w := Normalize(word); w != "" {
			out[w] = addCounts(out[w], n)
		}
	}
	return out, nil
}

func toCount(num json.Number) (uint64, bool) {
	if n, err := strconv.ParseUint(num.String(), 10, 64); err == nil {
		return n, n >= 1
	}
	f, err := num.Float64()
	if err != nil || f < 1 || math.IsNaN(f) {
		return 0, false
	}
	// float64(math.MaxUint64) rounds up to 2^64, which uint64 cannot hold
	if f >= float64(math.MaxUint64) {
		return math.MaxUint64, true
	}
	return uint64(f), true
}

// addCounts sums a and b, saturating at math.MaxUint64
func addCounts(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

func sanitize(in map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(in))
	for word, n := range in {
		if w := Normalize(word); w != "" && n > 0 {
			out[w] = addCounts(out[w], n)
		}
	}
	return out
}

func copyCounts(in map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
