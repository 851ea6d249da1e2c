package habit

import (
	"reflect"
	"testing"

	"wordsmith/internal/trie"
)

func TestPromote(t *testing.T) {
	tests := []struct {
		name      string
		threshold int
		freq      map[string]uint64
		want      []string
	}{
		{
			name:      "default threshold",
			threshold: DefaultThreshold,
			freq:      map[string]uint64{"cat": 2, "car": 1, "cart": 5},
			want:      []string{"cart", "cat"},
		},
		{
			name:      "nothing eligible",
			threshold: DefaultThreshold,
			freq:      map[string]uint64{"cat": 1},
			want:      []string{},
		},
		{
			name:      "zero threshold clamps to one",
			threshold: 0,
			freq:      map[string]uint64{"cat": 1},
			want:      []string{"cat"},
		},
		{
			name:      "empty mapping",
			threshold: DefaultThreshold,
			freq:      map[string]uint64{},
			want:      []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := trie.New()
			got := NewPromoter(tr, tt.threshold).Promote(tt.freq)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Promote = %v, want %v", got, tt.want)
			}
			if trieWords := tr.StartsWith(""); !reflect.DeepEqual(trieWords, tt.want) {
				t.Errorf("trie contents = %v, want %v", trieWords, tt.want)
			}
		})
	}
}

func TestPromoteIsIdempotent(t *testing.T) {
	tr := trie.New()
	p := NewPromoter(tr, DefaultThreshold)
	freq := map[string]uint64{"habit": 3, "hab": 2}

	first := p.Promote(freq)
	second := p.Promote(freq)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("second Promote = %v, want %v", second, first)
	}
	if tr.Len() != 2 {
		t.Errorf("trie Len = %d, want 2", tr.Len())
	}
}

func TestPromoteWord(t *testing.T) {
	tr := trie.New()
	p := NewPromoter(tr, 2)

	if p.PromoteWord("cat", 1) {
		t.Error("count below threshold should not promote")
	}
	if tr.Contains("cat") {
		t.Error("cat inserted too early")
	}
	if !p.PromoteWord("cat", 2) {
		t.Error("count at threshold should promote")
	}
	if !tr.Contains("cat") {
		t.Error("cat missing after promotion")
	}
	if p.PromoteWord("", 10) {
		t.Error("empty word must never promote")
	}
}
