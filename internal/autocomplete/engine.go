// Package autocomplete serves word completions from a habit vocabulary and a
// static dictionary, and learns habits from completed words.
package autocomplete

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"

	"wordsmith/internal/dictionary"
	"wordsmith/internal/frequency"
	"wordsmith/internal/habit"
	"wordsmith/internal/kvstore"
	"wordsmith/internal/seal"
	"wordsmith/internal/slogutil"
	"wordsmith/internal/trie"
)

const (
	// MinPrefixLen is the shortest prefix that produces suggestions
	MinPrefixLen = 2
	// DictionaryLimit caps dictionary suggestions per query
	DictionaryLimit = 10
)

// Options configures an Engine
type Options struct {
	// Store backs the frequency mapping; the engine closes it on Close
	Store kvstore.Store
	// Codec seals the frequency mapping; nil means the default OpenSSL sealer
	Codec frequency.Codec
	// Threshold is the promotion threshold; zero means habit.DefaultThreshold
	Threshold int
	// DictionarySource is a file path or URL loaded by Start; empty skips loading
	DictionarySource string
	HTTPClient       *http.Client
	Logger           *slog.Logger
}

// Completion describes the effect of one completed word
type Completion struct {
	Word     string `json:"word"`
	Count    uint64 `json:"count"`
	Promoted bool   `json:"promoted"`
}

// StartReport summarizes session start-up
type StartReport struct {
	Promoted   []string          `json:"promoted"`
	Dictionary *dictionary.Stats `json:"dictionary,omitempty"`
	// DictionaryError is set when the dictionary could not be loaded; the
	// session continues with whatever the dictionary trie holds.
	DictionaryError string `json:"dictionaryError,omitempty"`
}

// Stats is a point-in-time view of the session
type Stats struct {
	SessionID       string `json:"sessionId"`
	Threshold       int    `json:"threshold"`
	HabitWords      int    `json:"habitWords"`
	DictionaryWords int    `json:"dictionaryWords"`
	TrackedWords    int    `json:"trackedWords"`
}

// Engine owns one session's tries and frequency store
type Engine struct {
	habit      *trie.Trie
	dictionary *trie.Trie
	freq       *frequency.Store
	promoter   *habit.Promoter
	store      kvstore.Store

	dictSource string
	client     *http.Client
	logger     *slog.Logger
	sessionID  string

	closeOnce sync.Once
}

// New creates an engine. Call Start to load persisted state.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	codec := opts.Codec
	if codec == nil {
		codec = seal.Default()
	}
	threshold := opts.Threshold
	if threshold == 0 {
		threshold = habit.DefaultThreshold
	}
	store := opts.Store
	if store == nil {
		store = kvstore.NewMemoryStore()
	}

	sessionID := uuid.New().String()
	logger = logger.With("session", sessionID)

	habitTrie := trie.New()
	return &Engine{
		habit:      habitTrie,
		dictionary: trie.New(),
		freq:       frequency.New(store, codec, logger),
		promoter:   habit.NewPromoter(habitTrie, threshold),
		store:      store,
		dictSource: opts.DictionarySource,
		client:     opts.HTTPClient,
		logger:     logger,
		sessionID:  sessionID,
	}
}

// Start loads the frequency mapping, promotes every eligible word and loads
// the configured dictionary. It never fails: a missing dictionary leaves the
// dictionary trie empty and is reported in the StartReport.
func (e *Engine) Start(ctx context.Context) StartReport {
	var report StartReport

	freq := e.freq.Load(ctx)
	report.Promoted = e.promoter.Promote(freq)
	e.logger.Info("Habit vocabulary loaded",
		"tracked", len(freq),
		"promoted", len(report.Promoted),
		"threshold", e.promoter.Threshold())

	if e.dictSource != "" {
		stats, err := e.LoadDictionary(ctx, e.dictSource)
		report.Dictionary = &stats
		if err != nil {
			report.DictionaryError = err.Error()
		}
	}
	return report
}

// LoadDictionary loads src into the dictionary trie. Existing words stay;
// the trie only grows. The error is informational: the engine keeps serving
// with what it has.
func (e *Engine) LoadDictionary(ctx context.Context, src string) (dictionary.Stats, error) {
	stats, err := dictionary.LoadSource(ctx, src, e.dictionary, e.client)
	if err != nil {
		e.logger.Warn("Error loading dictionary", "source", src, "error", err.Error())
		return stats, err
	}
	e.logger.Info("Dictionary loaded",
		"source", src,
		"lines", stats.Lines,
		"words", e.dictionary.Len(),
		"duration", stats.Duration)
	return stats, nil
}

// LoadDictionaryFrom loads a word list from r into the dictionary trie
func (e *Engine) LoadDictionaryFrom(r io.Reader) (dictionary.Stats, error) {
	return dictionary.Load(r, e.dictionary)
}

// Query returns completions for prefix. The prefix is lower-cased; prefixes
// shorter than MinPrefixLen runes return nothing. Habit matches, when there
// are any, are returned exclusively. Otherwise up to DictionaryLimit
// dictionary matches are returned.
func (e *Engine) Query(prefix string) []Suggestion {
	prefix = strings.ToLower(prefix)
	if utf8.RuneCountInString(prefix) < MinPrefixLen {
		return []Suggestion{}
	}

	if matches := e.habit.StartsWith(prefix); len(matches) > 0 {
		return tag(matches, SourceHabit)
	}

	matches := e.dictionary.StartsWith(prefix)
	if len(matches) > DictionaryLimit {
		matches = matches[:DictionaryLimit]
	}
	return tag(matches, SourceDictionary)
}

// Complete records a completed word and promotes it as soon as it reaches
// the threshold. Blank words are ignored. A persistence error is returned
// after the in-memory state has been updated.
func (e *Engine) Complete(ctx context.Context, word string) (Completion, error) {
	normalized := frequency.Normalize(word)
	if normalized == "" {
		return Completion{}, nil
	}

	count, err := e.freq.Record(ctx, normalized)
	c := Completion{Word: normalized, Count: count}
	if count > 0 {
		c.Promoted = e.promoter.PromoteWord(normalized, count)
	}
	if err != nil {
		e.logger.Warn("Recorded word was not persisted", "word", normalized, "error", err.Error())
		return c, err
	}

	e.logger.Debug("Recorded word", "word", normalized, "count", count, "promoted", c.Promoted)
	return c, nil
}

// RebuildHabits reloads the persisted mapping and re-runs promotion over it
func (e *Engine) RebuildHabits(ctx context.Context) []string {
	return e.promoter.Promote(e.freq.Load(ctx))
}

// HabitWords lists the habit vocabulary in order
func (e *Engine) HabitWords() []string {
	return e.habit.StartsWith("")
}

// Frequency exposes the session's frequency store
func (e *Engine) Frequency() *frequency.Store {
	return e.freq
}

// SessionID returns the identifier attached to this session's log lines
func (e *Engine) SessionID() string {
	return e.sessionID
}

// Stats returns vocabulary sizes
func (e *Engine) Stats() Stats {
	return Stats{
		SessionID:       e.sessionID,
		Threshold:       e.promoter.Threshold(),
		HabitWords:      e.habit.Len(),
		DictionaryWords: e.dictionary.Len(),
		TrackedWords:    e.freq.Len(),
	}
}

// Close releases the key-value store
func (e *Engine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		err = e.store.Close()
	})
	return err
}

func tag(words []string, source Source) []Suggestion {
	out := make([]Suggestion, len(words))
	for i, w := range words {
		out[i] = Suggestion{Text: w, Source: source}
	}
	return out
}
