// Package typing turns a stream of keystrokes into word-completion events
// and the partial word under the cursor.
package typing

import (
	"strings"
	"unicode"
)

const (
	keyBackspace = '\b'
	keyDelete    = 0x7f
)

// Event is emitted when a boundary key completes a word
type Event struct {
	// Word is the completed token with trailing boundary punctuation removed
	Word string
	// Boundary is the key that completed the word
	Boundary rune
}

// IsBoundary reports whether r completes a word: space, enter, or one of
// . , ! ?
func IsBoundary(r rune) bool {
	switch r {
	case ' ', '\n', '\r', '.', ',', '!', '?':
		return true
	}
	return false
}

// Buffer accumulates typed text. It is not safe for concurrent use.
type Buffer struct {
	text []rune
	// pending is set while word characters have been typed since the last
	// boundary
	pending bool
}

// NewBuffer creates an empty buffer
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Feed appends one keystroke. Backspace and delete remove the last rune.
// When r is a boundary and a word was typed since the previous boundary, the
// completed word is returned.
func (b *Buffer) Feed(r rune) (Event, bool) {
	if r == keyBackspace || r == keyDelete {
		if n := len(b.text); n > 0 {
			b.text = b.text[:n-1]
		}
		b.pending = b.CurrentWord() != ""
		return Event{}, false
	}

	if r == '\r' {
		r = '\n'
	}
	b.text = append(b.text, r)

	if !IsBoundary(r) {
		if !unicode.IsSpace(r) {
			b.pending = true
		}
		return Event{}, false
	}

	if !b.pending {
		return Event{}, false
	}
	b.pending = false

	word := strings.TrimRightFunc(b.LastToken(), IsBoundary)
	if word == "" {
		return Event{}, false
	}
	return Event{Word: word, Boundary: r}, true
}

// FeedString feeds every rune of s and returns the events in order
func (b *Buffer) FeedString(s string) []Event {
	var events []Event
	for _, r := range s {
		if ev, ok := b.Feed(r); ok {
			events = append(events, ev)
		}
	}
	return events
}

// LastToken returns the last whitespace-delimited token of the text. It
// scans back from the end, so the cost is bounded by the token length.
func (b *Buffer) LastToken() string {
	end := len(b.text)
	for end > 0 && unicode.IsSpace(b.text[end-1]) {
		end--
	}
	start := end
	for start > 0 && !unicode.IsSpace(b.text[start-1]) {
		start--
	}
	return string(b.text[start:end])
}

// CurrentWord returns the partial word before the cursor: the runes typed
// since the last whitespace or boundary key.
func (b *Buffer) CurrentWord() string {
	i := len(b.text)
	for i > 0 {
		r := b.text[i-1]
		if unicode.IsSpace(r) || IsBoundary(r) {
			break
		}
		i--
	}
	return string(b.text[i:])
}

// String returns the full text typed so far
func (b *Buffer) String() string {
	return string(b.text)
}

// Accept replaces the current partial word with word and returns the
// completion event for it, as if the word had been typed and ended with a
// space.
func (b *Buffer) Accept(word string) (Event, bool) {
	partial := len([]rune(b.CurrentWord()))
	b.text = b.text[:len(b.text)-partial]
	b.text = append(b.text, []rune(word)...)
	b.pending = word != ""
	return b.Feed(' ')
}

// Reset clears the buffer
func (b *Buffer) Reset() {
	b.text = b.text[:0]
	b.pending = false
}
