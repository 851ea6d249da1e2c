// Package habit promotes frequently typed words into the habit vocabulary.
package habit

import (
	"sort"

	"wordsmith/internal/trie"
)

// DefaultThreshold is the number of recordings a word needs before it is
// eligible for promotion.
const DefaultThreshold = 2

// Promoter inserts words whose count meets a threshold into a trie
type Promoter struct {
	trie      *trie.Trie
	threshold uint64
}

// NewPromoter creates a promoter for the given habit trie. A threshold below
// one is treated as one.
func NewPromoter(t *trie.Trie, threshold int) *Promoter {
	if threshold < 1 {
		threshold = 1
	}
	return &Promoter{trie: t, threshold: uint64(threshold)}
}

// Threshold returns the effective threshold
func (p *Promoter) Threshold() int {
	return int(p.threshold)
}

// Promote inserts every word in freq with count >= threshold and returns the
// eligible words in sorted order. Words are expected to be normalized.
func (p *Promoter) Promote(freq map[string]uint64) []string {
	promoted := make([]string, 0)
	for word, count := range freq {
		if p.PromoteWord(word, count) {
			promoted = append(promoted, word)
		}
	}
	sort.Strings(promoted)
	return promoted
}

// PromoteWord inserts word if count meets the threshold and reports whether
// it is eligible. Inserting an already promoted word is a no-op.
func (p *Promoter) PromoteWord(word string, count uint64) bool {
	if word == "" || count < p.threshold {
		return false
	}
	p.trie.Insert(word)
	return true
}
