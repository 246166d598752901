package schemaindex_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticeforge/schemasteer/schema"
	"github.com/latticeforge/schemasteer/schemaindex"
	"github.com/latticeforge/schemasteer/tokenizer"
	"github.com/latticeforge/schemasteer/trie"
)

func TestBuildIndexesNestedObjects(t *testing.T) {
	t.Parallel()

	doc := []byte(`{
		"type": "object",
		"properties": {
			"contact": {
				"type": "object",
				"properties": {
					"email": {"type": "string"},
					"phone": {"type": "string"}
				}
			}
		}
	}`)

	m, err := schema.Load(doc)
	require.NoError(t, err)

	stub := tokenizer.NewStub("contact", "email", "phone")
	builder := trie.NewBuilder(16)

	idx, err := schemaindex.Build(m, "stub-v1", stub, builder)
	require.NoError(t, err)

	rootTrie, ok := idx.Trie(m.Root())
	require.True(t, ok)
	assert.False(t, rootTrie.Empty())

	contactID, ok := m.PropertyNode(m.Root(), "contact")
	require.True(t, ok)

	contactTrie, ok := idx.Trie(contactID)
	require.True(t, ok)
	assert.False(t, contactTrie.Empty())
}

func TestTrieMissOnNonObjectNode(t *testing.T) {
	t.Parallel()

	doc := []byte(`{"type":"object","properties":{"name":{"type":"string"}}}`)

	m, err := schema.Load(doc)
	require.NoError(t, err)

	stub := tokenizer.NewStub("name")
	builder := trie.NewBuilder(16)

	idx, err := schemaindex.Build(m, "stub-v1", stub, builder)
	require.NoError(t, err)

	nameID, ok := m.PropertyNode(m.Root(), "name")
	require.True(t, ok)

	_, ok = idx.Trie(nameID)
	assert.False(t, ok)
}

func TestArrayOfObjectsEachElementIndexed(t *testing.T) {
	t.Parallel()

	doc := []byte(`{
		"type": "object",
		"properties": {
			"items": {
				"type": "array",
				"items": {
					"type": "object",
					"properties": {"id": {"type": "number"}, "name": {"type": "string"}}
				}
			}
		}
	}`)

	m, err := schema.Load(doc)
	require.NoError(t, err)

	stub := tokenizer.NewStub("items", "id", "name")
	builder := trie.NewBuilder(16)

	idx, err := schemaindex.Build(m, "stub-v1", stub, builder)
	require.NoError(t, err)

	itemsID, ok := m.PropertyNode(m.Root(), "items")
	require.True(t, ok)

	elemID, ok := m.ItemsNode(itemsID)
	require.True(t, ok)

	elemTrie, ok := idx.Trie(elemID)
	require.True(t, ok)
	assert.False(t, elemTrie.Empty())
}
