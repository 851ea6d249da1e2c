package main

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"wordsmith/internal/autocomplete"
)

func TestRecordStream(t *testing.T) {
	engine := autocomplete.New(autocomplete.Options{})
	defer engine.Close()

	got, err := recordStream(context.Background(), strings.NewReader("Hello world.\nhello again"), engine)
	if err != nil {
		t.Fatalf("recordStream: %v", err)
	}

	words := make([]string, len(got))
	for i, c := range got {
		words[i] = c.Word
	}
	if want := "hello world hello again"; strings.Join(words, " ") != want {
		t.Fatalf("recorded %v, want %q", words, want)
	}
	if !got[2].Promoted || got[2].Count != 2 {
		t.Errorf("second hello = %+v, want promoted with count 2", got[2])
	}

	suggestions := engine.Query("he")
	if len(suggestions) != 1 || suggestions[0].Text != "hello" || suggestions[0].Source != autocomplete.SourceHabit {
		t.Errorf("Query(he) = %v, want habit hello", suggestions)
	}
}

func TestRecordStream_Empty(t *testing.T) {
	engine := autocomplete.New(autocomplete.Options{})
	defer engine.Close()

	got, err := recordStream(context.Background(), strings.NewReader("  \n. "), engine)
	if err != nil {
		t.Fatalf("recordStream: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("recorded %v, want nothing", got)
	}
}

type countingCompleter struct{ n int }

func (c *countingCompleter) Query(string) []autocomplete.Suggestion { return nil }

func (c *countingCompleter) Complete(_ context.Context, word string) (autocomplete.Completion, error) {
	c.n++
	return autocomplete.Completion{Word: word, Count: 1}, nil
}

func TestRecordStream_LargeInput(t *testing.T) {
	const n = 100000
	c := &countingCompleter{}

	start := time.Now()
	got, err := recordStream(context.Background(), strings.NewReader(strings.Repeat("word. ", n)), c)
	if err != nil {
		t.Fatalf("recordStream: %v", err)
	}
	if len(got) != n || c.n != n {
		t.Fatalf("recorded %d (completer saw %d), want %d", len(got), c.n, n)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("recording %d words took %s", n, elapsed)
	}
}

type failingCompleter struct{}

func (failingCompleter) Query(string) []autocomplete.Suggestion { return nil }

func (failingCompleter) Complete(context.Context, string) (autocomplete.Completion, error) {
	return autocomplete.Completion{}, errors.New("disk full")
}

func TestRecordStream_Error(t *testing.T) {
	_, err := recordStream(context.Background(), strings.NewReader("word "), failingCompleter{})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("err = %v, want disk full", err)
	}
}

func TestRecordStream_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := autocomplete.New(autocomplete.Options{})
	defer engine.Close()

	if _, err := recordStream(ctx, strings.NewReader("word "), engine); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
