package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticeforge/schemasteer/schema"
)

func TestLoadBasic(t *testing.T) {
	t.Parallel()

	doc := []byte(`{
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"age": {"type": "number"}
		},
		"required": ["name"]
	}`)

	m, err := schema.Load(doc)
	require.NoError(t, err)
	require.True(t, m.Valid())

	root := m.Node(m.Root())
	assert.Equal(t, schema.KindObject, root.Kind)
	assert.True(t, root.HasProperty("name"))
	assert.True(t, root.HasProperty("age"))
	assert.True(t, root.IsRequired("name"))
	assert.False(t, root.IsRequired("age"))

	nameID, ok := m.PropertyNode(m.Root(), "name")
	require.True(t, ok)
	assert.Equal(t, schema.KindString, m.Node(nameID).Kind)

	ageID, ok := m.PropertyNode(m.Root(), "age")
	require.True(t, ok)
	assert.Equal(t, schema.KindNumber, m.Node(ageID).Kind)
}

func TestLoadNested(t *testing.T) {
	t.Parallel()

	doc := []byte(`{
		"type": "object",
		"properties": {
			"contact": {
				"type": "object",
				"properties": {
					"email": {"type": "string"},
					"phone": {"type": "string"}
				},
				"required": ["email"]
			}
		}
	}`)

	m, err := schema.Load(doc)
	require.NoError(t, err)

	contactID, ok := m.PropertyNode(m.Root(), "contact")
	require.True(t, ok)

	contact := m.Node(contactID)
	assert.Equal(t, schema.KindObject, contact.Kind)
	assert.True(t, contact.IsRequired("email"))
	assert.False(t, contact.IsRequired("phone"))
}

func TestLoadArrayOfObjects(t *testing.T) {
	t.Parallel()

	doc := []byte(`{
		"type": "object",
		"properties": {
			"items": {
				"type": "array",
				"items": {
					"type": "object",
					"properties": {
						"id": {"type": "number"},
						"name": {"type": "string"}
					}
				}
			}
		}
	}`)

	m, err := schema.Load(doc)
	require.NoError(t, err)

	itemsID, ok := m.PropertyNode(m.Root(), "items")
	require.True(t, ok)

	itemsNode := m.Node(itemsID)
	assert.Equal(t, schema.KindArray, itemsNode.Kind)

	elemID, ok := m.ItemsNode(itemsID)
	require.True(t, ok)
	assert.Equal(t, schema.KindObject, m.Node(elemID).Kind)
}

func TestLoadNullableUnion(t *testing.T) {
	t.Parallel()

	doc := []byte(`{
		"type": "object",
		"properties": {
			"nickname": {"type": ["string", "null"]}
		}
	}`)

	m, err := schema.Load(doc)
	require.NoError(t, err)

	nickID, ok := m.PropertyNode(m.Root(), "nickname")
	require.True(t, ok)

	n := m.Node(nickID)
	assert.Equal(t, schema.KindString, n.Kind)
	assert.True(t, n.Nullable)
}

func TestLoadEnumCarriedThrough(t *testing.T) {
	t.Parallel()

	doc := []byte(`{
		"type": "object",
		"properties": {
			"status": {"type": "string", "enum": ["open", "closed"]}
		}
	}`)

	m, err := schema.Load(doc)
	require.NoError(t, err)

	statusID, ok := m.PropertyNode(m.Root(), "status")
	require.True(t, ok)
	assert.Equal(t, []string{"open", "closed"}, m.Node(statusID).EnumValues)
}

func TestLoadInvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := schema.Load([]byte("not json"))
	require.Error(t, err)
}

func TestFingerprintKeysStable(t *testing.T) {
	t.Parallel()

	docA := []byte(`{"type":"object","properties":{"b":{"type":"string"},"a":{"type":"string"}}}`)
	docB := []byte(`{"type":"object","properties":{"a":{"type":"string"},"b":{"type":"string"}}}`)

	mA, err := schema.Load(docA)
	require.NoError(t, err)
	mB, err := schema.Load(docB)
	require.NoError(t, err)

	assert.Equal(t, mA.FingerprintKeys(mA.Root()), mB.FingerprintKeys(mB.Root()))
}
