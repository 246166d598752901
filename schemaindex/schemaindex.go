// Package schemaindex builds the [Index]: one [trie.Trie] per Object node
// in a [schema.Model], built once per (schema, tokenizer) pair. It is keyed
// by [schema.NodeID] with a fallback key of sorted-property-names, so
// schemas that are structurally equal but were rebuilt as separate
// [schema.Model] values still share the same trie.
package schemaindex

import (
	"github.com/latticeforge/schemasteer/schema"
	"github.com/latticeforge/schemasteer/tokenizer"
	"github.com/latticeforge/schemasteer/trie"
)

// Index maps every Object [schema.NodeID] in one [schema.Model] to the
// [trie.Trie] over that object's property names. Build with [Build]; the
// result is immutable after construction and safe for concurrent read-only
// use across requests.
type Index struct {
	model  *schema.Model
	tries  map[schema.NodeID]*trie.Trie
	byKeys map[string]*trie.Trie // fallback for structurally-equal rebuilt schemas
}

// Build walks model depth-first once, building a [trie.Trie] for every
// Object node's declared properties via builder (typically a shared
// [trie.Builder] so repeated (tokenizer, key-set) pairs across schemas hit
// its LRU cache).
func Build(model *schema.Model, tokenizerFingerprint string, tok tokenizer.Adapter, builder *trie.Builder) (*Index, error) {
	idx := &Index{
		model:  model,
		tries:  make(map[schema.NodeID]*trie.Trie),
		byKeys: make(map[string]*trie.Trie),
	}

	visited := make(map[schema.NodeID]bool)

	if err := idx.walk(model.Root(), tokenizerFingerprint, tok, builder, visited); err != nil {
		return nil, err
	}

	return idx, nil
}

func (idx *Index) walk(
	id schema.NodeID,
	tokenizerFingerprint string,
	tok tokenizer.Adapter,
	builder *trie.Builder,
	visited map[schema.NodeID]bool,
) error {
	if visited[id] {
		return nil
	}

	visited[id] = true

	n := idx.model.Node(id)

	switch n.Kind {
	case schema.KindObject:
		t, err := builder.Build(tokenizerFingerprint, n.PropertyOrder, tok)
		if err != nil {
			return err
		}

		idx.tries[id] = t
		idx.byKeys[idx.model.FingerprintKeys(id)] = t

		for _, propID := range n.Properties {
			if err := idx.walk(propID, tokenizerFingerprint, tok, builder, visited); err != nil {
				return err
			}
		}

	case schema.KindArray:
		if itemID, ok := idx.model.ItemsNode(id); ok {
			if err := idx.walk(itemID, tokenizerFingerprint, tok, builder, visited); err != nil {
				return err
			}
		}
	}

	return nil
}

// Trie returns the [trie.Trie] for the Object node at id. ok is false if id
// is not an Object node in this Index's model. When the direct NodeID miss
// (e.g. a structurally-equal Model rebuilt separately), Trie falls back to
// the sorted-keys fingerprint lookup before giving up.
func (idx *Index) Trie(id schema.NodeID) (*trie.Trie, bool) {
	if t, ok := idx.tries[id]; ok {
		return t, true
	}

	if int(id) < 0 || int(id) >= idx.model.Len() {
		return nil, false
	}

	n := idx.model.Node(id)
	if n.Kind != schema.KindObject {
		return nil, false
	}

	t, ok := idx.byKeys[idx.model.FingerprintKeys(id)]

	return t, ok
}
