package schema

import "github.com/latticeforge/schemasteer/internal/errs"

// Builder assembles a [Model] arena bottom-up: a recursive descent over an
// already-parsed schema document (see [Load]) that appends freshly minted
// nodes and wires child IDs back into the parent, the same arena-construction
// style magicschema.Generator uses for its own node arena.
type Builder struct {
	nodes []Node
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends n to the arena and returns its NodeID. Callers typically
// build children before parents and wire the returned IDs into a parent
// Node's Properties/Items before calling Add for the parent itself.
func (b *Builder) Add(n Node) NodeID {
	b.nodes = append(b.nodes, n)
	return NodeID(len(b.nodes) - 1)
}

// Build finalizes the arena with root as the top-level node. Returns
// [errs.ErrInvalidSchema] if root is out of range, or if any Object node's
// Required set is not a subset of its Properties, a core invariant every
// [Model] must satisfy.
func (b *Builder) Build(root NodeID) (*Model, error) {
	if int(root) < 0 || int(root) >= len(b.nodes) {
		return nil, errs.ErrInvalidSchema
	}

	for _, n := range b.nodes {
		if n.Kind != KindObject {
			continue
		}

		for _, req := range n.Required {
			if !n.HasProperty(req) {
				return nil, errs.ErrInvalidSchema
			}
		}
	}

	m := &Model{
		nodes: b.nodes,
		root:  root,
	}

	return m, nil
}

// ObjectNode is a convenience constructor for a KindObject [Node] with no
// properties yet; callers fill Properties/PropertyOrder/Required before
// passing to [Builder.Add].
func ObjectNode() Node {
	return Node{
		Kind:       KindObject,
		Properties: make(map[string]NodeID),
	}
}

// ArrayNode is a convenience constructor for a KindArray [Node] with no item
// schema (items absent).
func ArrayNode() Node {
	return Node{
		Kind:  KindArray,
		Items: invalidNodeID,
	}
}
