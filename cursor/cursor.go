// Package cursor shadows a [jsonstate.Machine]'s structural [jsonstate.Event]
// stream with a
// stack of [schema.Model] node frames, so that at any point during decoding
// the engine can resolve "what schema node governs the container we're
// currently inside" and "what schema node governs the value we're about to
// start," without the JSON automaton itself knowing anything about schemas.
package cursor

import "github.com/latticeforge/schemasteer/schema"

// frame is one entry on the cursor's context stack, mirroring one currently
// open JSON container (object or array) and the schema node that describes
// it.
type frame struct {
	node schema.NodeID
	kind schema.Kind // schema.KindObject or schema.KindArray
}

// Cursor tracks, in lock-step with a [jsonstate.Machine]'s events, which
// [schema.Model] node governs the current container and the value about to
// be parsed. The zero Cursor is not valid; construct with [New].
//
// Resolution degrades gracefully: if a key has no corresponding property (an
// unrecognized or schema-less key), or a container's governing node could
// not be resolved, the cursor tracks an invalid node and reports KindAny /
// ok=false rather than erroring -- schema guidance is advisory, and the
// decoding engine must keep functioning on schema/structure mismatches:
// malformed or partial schema coverage degrades to unguided decoding for
// the affected value, not a hard failure.
type Cursor struct {
	model        *schema.Model
	stack        []frame
	currentValue schema.NodeID
	hasValue     bool
}

// New returns a Cursor positioned at model's root as the schema governing
// the document's first value.
func New(model *schema.Model) *Cursor {
	c := &Cursor{model: model}

	if model.Valid() {
		c.currentValue = model.Root()
		c.hasValue = true
	}

	return c
}

// CurrentValueSchema returns the schema node governing the value about to be
// parsed (or just entered), and whether resolution succeeded.
func (c *Cursor) CurrentValueSchema() (schema.Node, bool) {
	if !c.hasValue {
		return schema.Node{}, false
	}

	if int(c.currentValue) < 0 || int(c.currentValue) >= c.model.Len() {
		return schema.Node{}, false
	}

	return c.model.Node(c.currentValue), true
}

// CurrentValueNodeID returns the raw NodeID backing [Cursor.CurrentValueSchema].
func (c *Cursor) CurrentValueNodeID() (schema.NodeID, bool) {
	return c.currentValue, c.hasValue
}

// CurrentObject returns the NodeID of the Object node governing the
// innermost currently-open container, for use as a [schemaindex.Index] key.
// ok is false if we are not inside an object (e.g. inside an array, at
// root, or resolution failed upstream).
func (c *Cursor) CurrentObject() (schema.NodeID, bool) {
	if len(c.stack) == 0 {
		return 0, false
	}

	top := c.stack[len(c.stack)-1]
	if top.kind != schema.KindObject || top.node < 0 {
		return 0, false
	}

	return top.node, true
}

// Depth returns the number of open container frames, always equal to the
// governing [jsonstate.Machine]'s notion of nesting depth.
func (c *Cursor) Depth() int {
	return len(c.stack)
}

// OpenObject must be called when the governing machine emits
// jsonstate.EventOpenObject. It pushes a frame for the new object using the
// schema previously set by [Cursor.CurrentValueSchema], and clears the
// pending value until the first key resolves one.
func (c *Cursor) OpenObject() {
	id, kind := c.resolveContainerNode(schema.KindObject)
	c.stack = append(c.stack, frame{node: id, kind: kind})
	c.hasValue = false
}

// OpenArray must be called when the governing machine emits
// jsonstate.EventOpenArray. It pushes a frame for the new array and, if the
// array's item schema resolves, sets it as the pending value schema for the
// array's first element.
func (c *Cursor) OpenArray() {
	id, kind := c.resolveContainerNode(schema.KindArray)
	c.stack = append(c.stack, frame{node: id, kind: kind})
	c.setValueFromArrayItems(id)
}

// resolveContainerNode validates that the pending value schema (if any) is
// of the expected kind before handing it to the new frame; a mismatch (e.g.
// schema says "string" but the token stream opened an object) degrades to
// an unresolved frame rather than propagating a stale, wrong node.
func (c *Cursor) resolveContainerNode(want schema.Kind) (schema.NodeID, schema.Kind) {
	if !c.hasValue {
		return schema.NodeID(-1), want
	}

	if int(c.currentValue) < 0 || int(c.currentValue) >= c.model.Len() {
		return schema.NodeID(-1), want
	}

	n := c.model.Node(c.currentValue)
	if n.Kind != want && n.Kind != schema.KindAny {
		return schema.NodeID(-1), want
	}

	return c.currentValue, want
}

func (c *Cursor) setValueFromArrayItems(arrID schema.NodeID) {
	if arrID < 0 {
		c.hasValue = false
		return
	}

	itemID, ok := c.model.ItemsNode(arrID)
	if !ok {
		c.hasValue = false
		return
	}

	c.currentValue = itemID
	c.hasValue = true
}

// KeyComplete must be called when the governing machine emits
// jsonstate.EventKeyComplete, with the completed key. It resolves key's
// schema against the innermost object frame and sets it as the pending
// value schema for the upcoming value.
func (c *Cursor) KeyComplete(key string) {
	objID, ok := c.CurrentObject()
	if !ok {
		c.hasValue = false
		return
	}

	propID, ok := c.model.PropertyNode(objID, key)
	if !ok {
		c.hasValue = false
		return
	}

	c.currentValue = propID
	c.hasValue = true
}

// CloseContainer must be called when the governing machine emits
// jsonstate.EventCloseContainer. It pops the innermost frame and restores
// the pending value schema appropriately: an array parent keeps offering
// its item schema for further elements; an object parent offers no pending
// value until its next key completes.
func (c *Cursor) CloseContainer() {
	if len(c.stack) == 0 {
		c.hasValue = false
		return
	}

	c.stack = c.stack[:len(c.stack)-1]

	if len(c.stack) == 0 {
		c.hasValue = false
		return
	}

	parent := c.stack[len(c.stack)-1]
	if parent.kind == schema.KindArray {
		c.setValueFromArrayItems(parent.node)
		return
	}

	c.hasValue = false
}
