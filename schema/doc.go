// Package schema is documented in schema.go; this file collects the
// package-level overview, in a standalone doc.go per package.
//
// # Construction
//
// Build a [Model] from a JSON Schema document with [Load] or [LoadFile], or
// assemble one directly with [Builder] when the schema is synthesized in
// memory.
//
// # Supported keywords
//
// Only type, properties, required, items, and enum are understood.
// Everything else round-trips through [jsonschema.Schema.Extra] and is
// ignored. $ref and recursive schemas are explicitly out of scope; a $ref
// node degrades to [KindAny] rather than erroring, a "fail toward no
// constraint" posture mirroring what magicschema's own generator does when
// it cannot infer a type.
package schema
