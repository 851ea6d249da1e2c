// Package trie provides a concurrency-safe prefix tree over word tokens.
package trie

import (
	"sync"
	"unicode/utf8"
)

// Trie is an ordered prefix tree. Words are stored exactly as inserted;
// callers are expected to normalize case before inserting or querying.
// Only valid UTF-8 is stored: children are keyed by rune, and invalid bytes
// would all decode to U+FFFD and collapse distinct words onto one path.
type Trie struct {
	mu    sync.RWMutex
	root  *node
	words int
}

// New creates an empty trie
func New() *Trie {
	return &Trie{root: newNode()}
}

// Insert adds word to the trie. Empty input, invalid UTF-8 and repeated
// inserts are no-ops.
func (t *Trie) Insert(word string) {
	if word == "" || !utf8.ValidString(word) {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.root
	for _, r := range word {
		child, ok := n.children[r]
		if !ok {
			child = newNode()
			n.children[r] = child
		}
		n = child
	}
	if !n.terminal {
		n.terminal = true
		t.words++
	}
}

// StartsWith returns every inserted word beginning with prefix, in
// lexicographic rune order. An empty prefix returns every word.
// The result is never nil.
func (t *Trie) StartsWith(prefix string) []string {
	if !utf8.ValidString(prefix) {
		return []string{}
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	n := t.find(prefix)
	if n == nil {
		return []string{}
	}
	return n.collect([]rune(prefix), make([]string, 0))
}

// Contains reports whether word was inserted
func (t *Trie) Contains(word string) bool {
	if word == "" || !utf8.ValidString(word) {
		return false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	n := t.find(word)
	return n != nil && n.terminal
}

// Len returns the number of distinct words
func (t *Trie) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.words
}

// find walks the path for s. Caller must hold the lock.
func (t *Trie) find(s string) *node {
	n := t.root
	for _, r := range s {
		child, ok := n.children[r]
		if !ok {
			return nil
		}
		n = child
	}
	return n
}
