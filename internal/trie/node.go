package trie

import "sort"

// node is a single character step in the trie
type node struct {
	children map[rune]*node
	terminal bool
}

func newNode() *node {
	return &node{children: make(map[rune]*node)}
}

// sortedKeys returns the child runes in ascending order so traversal is
// stable across runs regardless of map iteration order.
func (n *node) sortedKeys() []rune {
	keys := make([]rune, 0, len(n.children))
	for r := range n.children {
		keys = append(keys, r)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// collect appends every terminal word under n, depth-first, to out.
// A word is emitted before its extensions.
func (n *node) collect(prefix []rune, out []string) []string {
	if n.terminal {
		out = append(out, string(prefix))
	}
	for _, r := range n.sortedKeys() {
		out = n.children[r].collect(append(prefix, r), out)
	}
	return out
}
