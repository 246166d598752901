// Package jsonstate implements a JSON character-level pushdown automaton: a
// tagged-union phase with exhaustive dispatch, tracking nesting depth, a
// parent-context stack, and the current key buffer. [Phase] is a single
// struct carrying a [Kind] discriminant plus only the fields meaningful for
// that kind -- Go has no sum types, so the discriminated-union idiom is an
// explicit Kind field and an exhaustive switch at every call site, the same
// dispatch style the schema package uses for its node kinds.
package jsonstate

// Kind discriminates the variants of [Phase].
type Kind int

// Phase kinds, one per JSON parse-phase variant.
const (
	KindRoot Kind = iota
	KindInObject
	KindInArray
	KindInString
	KindInNumber
	KindInLiteral
	KindDone
	KindError
)

// String returns a short debug label for k.
func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "Root"
	case KindInObject:
		return "InObject"
	case KindInArray:
		return "InArray"
	case KindInString:
		return "InString"
	case KindInNumber:
		return "InNumber"
	case KindInLiteral:
		return "InLiteral"
	case KindDone:
		return "Done"
	case KindError:
		return "Error"
	default:
		return "Unknown"
	}
}

// ObjectPhase is the sub-state of a [Phase] with Kind == [KindInObject].
type ObjectPhase int

// Object sub-states.
const (
	ObjExpectKeyOrEnd ObjectPhase = iota
	ObjExpectKeyFirstQuote
	ObjExpectColon
	ObjExpectValue
	ObjExpectCommaOrEnd
)

func (p ObjectPhase) String() string {
	switch p {
	case ObjExpectKeyOrEnd:
		return "ExpectKeyOrEnd"
	case ObjExpectKeyFirstQuote:
		return "ExpectKeyFirstQuote"
	case ObjExpectColon:
		return "ExpectColon"
	case ObjExpectValue:
		return "ExpectValue"
	case ObjExpectCommaOrEnd:
		return "ExpectCommaOrEnd"
	default:
		return "Unknown"
	}
}

// ArrayPhase is the sub-state of a [Phase] with Kind == [KindInArray].
type ArrayPhase int

// Array sub-states.
const (
	ArrExpectValue ArrayPhase = iota
	ArrExpectCommaOrEnd
)

func (p ArrayPhase) String() string {
	switch p {
	case ArrExpectValue:
		return "ExpectValue"
	case ArrExpectCommaOrEnd:
		return "ExpectCommaOrEnd"
	default:
		return "Unknown"
	}
}

// StringKind distinguishes a JSON key string from a JSON value string,
// for a [Phase] with Kind == [KindInString].
type StringKind int

// String sub-kinds.
const (
	StringKey StringKind = iota
	StringValue
)

func (k StringKind) String() string {
	if k == StringKey {
		return "Key"
	}

	return "Value"
}

// NumberPhase is the sub-state of a [Phase] with Kind == [KindInNumber].
type NumberPhase int

// Number sub-states.
const (
	NumInteger NumberPhase = iota
	NumDecimal
	NumExponent
)

func (p NumberPhase) String() string {
	switch p {
	case NumInteger:
		return "Integer"
	case NumDecimal:
		return "Decimal"
	case NumExponent:
		return "Exponent"
	default:
		return "Unknown"
	}
}

// ContainerKind identifies whether an open container is an object or an
// array, or neither (a bare scalar document has no enclosing container).
type ContainerKind int

// Container kinds.
const (
	ContainerNone ContainerKind = iota
	ContainerObject
	ContainerArray
)

// Phase is a tagged union over parse-phase variants: a Kind
// discriminant plus only the fields meaningful for that Kind.
//
//   - KindInObject: Object is meaningful.
//   - KindInArray: Array is meaningful.
//   - KindInString: StringKind and Escaped are meaningful.
//   - KindInNumber: Number is meaningful.
//   - KindInLiteral: Literal holds the partial literal consumed so far
//     ("t", "tr", "tru", "true", "f", ... , "n", ...).
//   - KindRoot, KindDone, KindError: no extra fields.
type Phase struct {
	Object     ObjectPhase
	Array      ArrayPhase
	StringKind StringKind
	Number     NumberPhase
	Literal    string
	Kind       Kind
	Escaped    bool
}

// String returns a one-line debug description of p, used by
// [github.com/latticeforge/schemasteer/processor.Processor.DebugState].
func (p Phase) String() string {
	switch p.Kind {
	case KindInObject:
		return "InObject(" + p.Object.String() + ")"
	case KindInArray:
		return "InArray(" + p.Array.String() + ")"
	case KindInString:
		return "InString{" + p.StringKind.String() + "}"
	case KindInNumber:
		return "InNumber(" + p.Number.String() + ")"
	case KindInLiteral:
		return "InLiteral(" + p.Literal + ")"
	default:
		return p.Kind.String()
	}
}
