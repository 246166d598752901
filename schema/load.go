package schema

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/latticeforge/schemasteer/internal/errs"
)

// Supported JSON Schema "type" keyword values: a string or list of
// strings; "null" is treated as "or this node may be null" rather than as
// a concrete Kind.
const (
	typeObject  = "object"
	typeArray   = "array"
	typeString  = "string"
	typeNumber  = "number"
	typeInteger = "integer"
	typeBoolean = "boolean"
	typeNull    = "null"
)

// Load parses a JSON Schema document into a [Model]. It unmarshals doc into
// [jsonschema.Schema] (the same dependency magicschema uses to *produce*
// schemas; here it is the intermediate representation this engine
// *consumes*), then walks it into the arena form [Builder] produces.
//
// Supported keywords are type, properties, required, items, and enum.
// Unknown keywords are ignored via [jsonschema.Schema.Extra]. $ref is not
// resolved; a Ref-bearing node degrades to [KindAny].
func Load(doc []byte) (*Model, error) {
	var raw jsonschema.Schema

	if err := json.Unmarshal(doc, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidSchema, err)
	}

	b := NewBuilder()

	root, err := walkSchema(b, &raw)
	if err != nil {
		return nil, err
	}

	return b.Build(root)
}

// LoadFile reads path and parses it with [Load].
func LoadFile(path string) (*Model, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is operator-supplied CLI/config input.
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrReadInput, err)
	}

	return Load(data)
}

// walkSchema converts one *jsonschema.Schema into a freshly added [Node],
// recursing into properties and items the way
// magicschema.Generator.walkNode recurses into mapping/sequence children.
func walkSchema(b *Builder, s *jsonschema.Schema) (NodeID, error) {
	if s == nil {
		return b.Add(Node{Kind: KindAny}), nil
	}

	kinds, nullable := schemaTypes(s)

	if s.Ref != "" || len(kinds) == 0 {
		// $ref resolution is out of scope; degrade to Any rather than fail
		// the whole document.
		return b.Add(Node{Kind: KindAny, Nullable: nullable}), nil
	}

	// A schema naming more than one non-null type (e.g. ["string",
	// "number"]) has no single concrete Kind in this engine's value-starter
	// model; fall back to Any so the mask generator offers every starter.
	if len(kinds) > 1 {
		return b.Add(Node{Kind: KindAny, Nullable: nullable}), nil
	}

	switch kinds[0] {
	case typeObject:
		return walkObject(b, s, nullable)
	case typeArray:
		return walkArray(b, s, nullable)
	case typeString:
		return b.Add(Node{Kind: KindString, EnumValues: stringEnum(s.Enum), Nullable: nullable}), nil
	case typeNumber, typeInteger:
		return b.Add(Node{Kind: KindNumber, Nullable: nullable}), nil
	case typeBoolean:
		return b.Add(Node{Kind: KindBoolean, Nullable: nullable}), nil
	case typeNull:
		return b.Add(Node{Kind: KindNull}), nil
	default:
		return b.Add(Node{Kind: KindAny, Nullable: nullable}), nil
	}
}

// walkObject builds an Object [Node], recursing into each declared
// property in PropertyOrder (falling back to map iteration order only if
// PropertyOrder is unset, matching jsonschema-go's own field name).
func walkObject(b *Builder, s *jsonschema.Schema, nullable bool) (NodeID, error) {
	node := ObjectNode()
	node.Nullable = nullable

	order := s.PropertyOrder
	if len(order) == 0 {
		for name := range s.Properties {
			order = append(order, name)
		}
	}

	for _, name := range order {
		propSchema, ok := s.Properties[name]
		if !ok {
			continue
		}

		childID, err := walkSchema(b, propSchema)
		if err != nil {
			return invalidNodeID, err
		}

		node.Properties[name] = childID
		node.PropertyOrder = append(node.PropertyOrder, name)
	}

	for _, req := range s.Required {
		if _, ok := node.Properties[req]; ok {
			node.Required = append(node.Required, req)
		}
	}

	return b.Add(node), nil
}

// walkArray builds an Array [Node]; an absent Items keyword produces a node
// with no item constraint.
func walkArray(b *Builder, s *jsonschema.Schema, nullable bool) (NodeID, error) {
	node := ArrayNode()
	node.Nullable = nullable

	if s.Items != nil {
		itemID, err := walkSchema(b, s.Items)
		if err != nil {
			return invalidNodeID, err
		}

		node.Items = itemID
	}

	return b.Add(node), nil
}

// schemaTypes normalizes the "type" keyword (string or array form) into the
// set of non-null concrete types plus a nullable flag.
func schemaTypes(s *jsonschema.Schema) (kinds []string, nullable bool) {
	all := s.Types
	if s.Type != "" {
		all = append(append([]string{}, all...), s.Type)
	}

	if len(all) == 0 {
		return nil, false
	}

	for _, t := range all {
		if t == typeNull {
			nullable = true
			continue
		}

		kinds = append(kinds, t)
	}

	return kinds, nullable
}

// stringEnum filters a raw "enum" array down to the string-only subset this
// engine carries through for post-generation checking; enum membership is
// not enforced during decoding, only validated afterward.
func stringEnum(values []any) []string {
	if len(values) == 0 {
		return nil
	}

	out := make([]string, 0, len(values))

	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}

	return out
}
