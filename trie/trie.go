// Package trie implements the per-object token-prefix trie of admissible
// key strings. Edges are token IDs; terminal nodes carry the key string
// they complete.
package trie

import "github.com/latticeforge/schemasteer/tokenizer"

// node is one trie node. The root node of a [Trie] is node index 0.
type node struct {
	children map[tokenizer.TokenID]int // edge token ID -> child node index
	keyName  string                    // non-empty at a terminal node
	terminal bool
}

// Trie is a rooted tree whose edges are token IDs and whose terminal nodes
// carry the key string they complete. Built by [Build]; immutable
// thereafter. A Trie from [Build] always has a root node; the zero value
// has no nodes at all, so its [Trie.Root] path cannot be navigated.
type Trie struct {
	nodes []node
}

// newTrie returns a Trie containing only an empty root.
func newTrie() *Trie {
	return &Trie{nodes: []node{{children: make(map[tokenizer.TokenID]int)}}}
}

// insert adds the token path for one key, marking the final node terminal
// with keyName. Two distinct keys sharing a token prefix share that prefix
// of nodes.
func (t *Trie) insert(path []tokenizer.TokenID, keyName string) {
	cur := 0

	for _, tok := range path {
		next, ok := t.nodes[cur].children[tok]
		if !ok {
			t.nodes = append(t.nodes, node{children: make(map[tokenizer.TokenID]int)})
			next = len(t.nodes) - 1
			t.nodes[cur].children[tok] = next
		}

		cur = next
	}

	t.nodes[cur].terminal = true
	t.nodes[cur].keyName = keyName
}

// Empty reports whether the trie stores zero keys.
func (t *Trie) Empty() bool {
	return len(t.nodes) <= 1
}

// Root returns a [Path] positioned at the trie's root.
func (t *Trie) Root() Path {
	return Path{trie: t, node: 0}
}

// Path is a position in a [Trie]: the node reached by the tokens consumed so
// far. It does not record the consumed token IDs themselves. The zero Path
// is not valid; obtain one from [Trie.Root].
type Path struct {
	trie *Trie
	node int
}

// Advance returns the Path reached by following the edge for tok. ok is
// false if no such edge exists.
func (p Path) Advance(tok tokenizer.TokenID) (Path, bool) {
	if p.trie == nil {
		return Path{}, false
	}

	next, ok := p.trie.nodes[p.node].children[tok]
	if !ok {
		return Path{}, false
	}

	return Path{trie: p.trie, node: next}, true
}

// AllowedNext returns the set of outgoing edge token IDs from the current
// node.
func (p Path) AllowedNext() []tokenizer.TokenID {
	if p.trie == nil {
		return nil
	}

	n := p.trie.nodes[p.node]
	out := make([]tokenizer.TokenID, 0, len(n.children))

	for tok := range n.children {
		out = append(out, tok)
	}

	return out
}

// IsTerminal reports whether the current node completes a stored key.
func (p Path) IsTerminal() bool {
	return p.trie != nil && p.trie.nodes[p.node].terminal
}

// KeyName returns the completed key name at the current node, and whether
// the node is in fact terminal.
func (p Path) KeyName() (string, bool) {
	if p.trie == nil || !p.trie.nodes[p.node].terminal {
		return "", false
	}

	return p.trie.nodes[p.node].keyName, true
}

// AtRoot reports whether this Path is positioned at its trie's root.
func (p Path) AtRoot() bool {
	return p.trie != nil && p.node == 0
}
