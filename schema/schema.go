// Package schema models the typed tree of object/array/primitive nodes that
// drives context-sensitive key sets as the decoding engine descends into
// nested JSON. It is the Go-native encoding of the reference design's
// SchemaNode type: an identity-free arena of nodes addressed by integer ID,
// per the arena design note (cyclic/identity-keyed schema representations
// are replaced by an arena keyed by integer IDs so the index in [schemaindex]
// never needs live object pointers as map keys).
package schema

import "slices"

// Kind identifies the variant of a [Node]. Go has no sum types, so Kind
// drives an exhaustive switch everywhere a Node is inspected, the same way
// magicschema.walkNode dispatches on concrete YAML AST node types.
type Kind int

// Node kinds, one per JSON Schema shape this engine understands.
const (
	KindObject Kind = iota
	KindArray
	KindString
	KindNumber
	KindBoolean
	KindNull
	KindAny
)

// String returns a lowercase label for k, matching JSON Schema's "type"
// vocabulary where one exists.
func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindNull:
		return "null"
	case KindAny:
		return "any"
	default:
		return "unknown"
	}
}

// NodeID addresses a [Node] within a [Model]'s arena. IDs are arena indices
// starting at 0, so NodeID(0) is the first node added; "no node" is
// represented by invalidNodeID.
type NodeID int

// invalidNodeID marks "no node" (e.g. an Array with no items schema, or an
// unresolved property).
const invalidNodeID NodeID = -1

// Node is one immutable entry in a [Model]'s arena. Which fields are
// meaningful depends on Kind:
//
//   - KindObject: Properties and Required are meaningful.
//   - KindArray: Items is meaningful (invalid if the array has no item
//     schema, i.e. "items" was absent).
//   - KindString: EnumValues is meaningful (may be empty).
//   - KindNumber, KindBoolean, KindNull, KindAny: no extra fields.
//
// Node is a value type; callers obtain one via [Model.Node] and never
// mutate it — the Model is built once, bottom-up, by [Builder], and is
// immutable thereafter. Identity is structural: two Models built from
// equal JSON Schema documents produce arenas with equal node contents, but
// not necessarily equal NodeIDs, so correctness must never depend on a
// NodeID's numeric value beyond indexing the same Model it came from.
type Node struct {
	// Properties maps a property name to the NodeID of its schema, for
	// KindObject nodes.
	Properties map[string]NodeID
	// PropertyOrder preserves declaration order of Properties, for
	// deterministic trie construction and debugging.
	PropertyOrder []string
	// Required is the subset of Properties keys that must be present.
	// Invariant: every entry also appears in Properties.
	Required []string
	// Items is the NodeID of the schema for array elements, or
	// invalidNodeID if the array has no item constraint.
	Items NodeID
	// EnumValues holds a string enumeration, if the schema declared one.
	// Enums are never enforced at the token level; they are only
	// available for post-generation checks.
	EnumValues []string
	// Nullable is true when the schema's "type" included "null" alongside
	// another type: "null" is treated as "or this node may be null"
	// rather than as a concrete Kind.
	Nullable bool

	Kind Kind
}

// HasProperty reports whether name is a declared property of an Object
// node.
func (n Node) HasProperty(name string) bool {
	_, ok := n.Properties[name]
	return ok
}

// IsRequired reports whether name is in the node's required set.
func (n Node) IsRequired(name string) bool {
	return slices.Contains(n.Required, name)
}

// RequiredSatisfied reports whether every required key of an Object node is
// present in seen.
func (n Node) RequiredSatisfied(seen map[string]bool) bool {
	for _, req := range n.Required {
		if !seen[req] {
			return false
		}
	}

	return true
}

// Model is an immutable arena of [Node] values plus a root [NodeID].
// Construct one with [Builder] or [Load]. The zero Model is invalid; use
// [Model.Valid] to check before use.
type Model struct {
	nodes []Node
	root  NodeID
}

// Valid reports whether m was produced by [Builder.Build] or [Load] and has
// at least a root node.
func (m *Model) Valid() bool {
	return m != nil && m.root >= 0 && int(m.root) < len(m.nodes)
}

// Root returns the NodeID of the schema's top-level node.
func (m *Model) Root() NodeID {
	return m.root
}

// Node returns the [Node] stored at id. Panics if id is out of range; a
// valid Model never hands out an out-of-range NodeID to a caller, so this
// indicates a programming error (e.g. using a NodeID from a different
// Model).
func (m *Model) Node(id NodeID) Node {
	return m.nodes[id]
}

// Len returns the number of nodes in the arena.
func (m *Model) Len() int {
	return len(m.nodes)
}

// PropertyNode resolves the schema NodeID for property name on the Object
// node at objID. ok is false if objID is not an Object node or name is not
// declared.
func (m *Model) PropertyNode(objID NodeID, name string) (NodeID, bool) {
	if int(objID) < 0 || int(objID) >= len(m.nodes) {
		return invalidNodeID, false
	}

	n := m.nodes[objID]
	if n.Kind != KindObject {
		return invalidNodeID, false
	}

	id, ok := n.Properties[name]

	return id, ok
}

// ItemsNode resolves the schema NodeID for the Array node's item schema.
// ok is false if arrID is not an Array node or it has no item schema.
func (m *Model) ItemsNode(arrID NodeID) (NodeID, bool) {
	if int(arrID) < 0 || int(arrID) >= len(m.nodes) {
		return invalidNodeID, false
	}

	n := m.nodes[arrID]
	if n.Kind != KindArray || n.Items == invalidNodeID {
		return invalidNodeID, false
	}

	return n.Items, true
}

// FingerprintKeys returns a deterministic string derived from an Object
// node's sorted property names, used as the fallback cache key in
// [schemaindex] when pointer/NodeID identity may differ across equivalent
// Models: tries are keyed by node identity with sorted-keys-joined as the
// fallback key.
func (m *Model) FingerprintKeys(objID NodeID) string {
	n := m.nodes[objID]
	keys := slices.Clone(n.PropertyOrder)
	slices.Sort(keys)

	out := make([]byte, 0, len(keys)*8)
	for i, k := range keys {
		if i > 0 {
			out = append(out, '\x00')
		}

		out = append(out, k...)
	}

	return string(out)
}
