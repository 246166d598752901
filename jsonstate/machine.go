package jsonstate

// EventKind classifies the structural event, if any, produced by one
// [Machine.Feed] call. [Machine] itself has no notion of a schema; it
// emits these events so a caller such as
// [github.com/latticeforge/schemasteer/cursor.Cursor] can react to
// container opens/closes and completed keys without re-deriving them from
// a before/after Phase diff.
type EventKind int

// Event kinds.
const (
	EventNone EventKind = iota
	EventOpenObject
	EventOpenArray
	EventCloseContainer
	EventKeyComplete
	EventDone
)

// Event reports what structurally happened during one [Machine.Feed] call.
// Key is meaningful only for EventKeyComplete.
type Event struct {
	Key  string
	Kind EventKind
}

// Machine is a character-level JSON pushdown automaton. Zero value is not
// valid; construct with [New].
type Machine struct {
	phase Phase
	depth int

	// contextStack holds the saved parent Phase at each push into a
	// NESTED container (depth > 1). Its length always equals the number
	// of currently-open containers nested inside another container -- the
	// outermost open container is implicit and never pushed.
	contextStack []Phase

	// valueContainerKind is set whenever we transition into a scalar
	// value (string/number/literal) and records which kind of container
	// that value's close should return control to. contextStack only
	// records ANCESTOR frames (see above), so the immediately enclosing
	// container's kind must be tracked separately rather than recovered
	// from the stack.
	valueContainerKind ContainerKind

	currentKey []rune
}

// New returns a Machine positioned at [KindRoot] with depth 0.
func New() *Machine {
	return &Machine{phase: Phase{Kind: KindRoot}}
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	return m.phase
}

// Depth returns the current nesting depth (the number of open objects and
// arrays). Depth is always non-negative. It is 0 at Root, in Done, and while
// a top-level scalar is being parsed; a machine in Error keeps the depth it
// had when the error occurred.
func (m *Machine) Depth() int {
	return m.depth
}

// CurrentKey returns the key buffer. Non-empty only while parsing a key
// string, or between a completed key and the end of its value.
func (m *Machine) CurrentKey() string {
	return string(m.currentKey)
}

// ContextDepth returns len(contextStack), exposed for invariant tests.
func (m *Machine) ContextDepth() int {
	return len(m.contextStack)
}

// Feed processes one character, mutating phase/depth/stack/key buffer, and
// returns the structural [Event] (if any) this character produced. Error
// and Done are absorbing: once reached, further Feed calls return
// EventNone and do not mutate state.
func (m *Machine) Feed(r rune) Event {
	if m.phase.Kind == KindError || m.phase.Kind == KindDone {
		return Event{Kind: EventNone}
	}

	switch m.phase.Kind {
	case KindRoot:
		return m.feedRoot(r)
	case KindInObject:
		return m.feedInObject(r)
	case KindInArray:
		return m.feedInArray(r)
	case KindInString:
		return m.feedInString(r)
	case KindInNumber:
		return m.feedInNumber(r, false)
	case KindInLiteral:
		return m.feedInLiteral(r, false)
	default:
		return Event{Kind: EventNone}
	}
}

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r':
		return true
	default:
		return false
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// valueStart applies the "value start" rules shared by Root and
// InObject/InArray's ExpectValue sub-states: InObject(ExpectValue) and
// InArray(ExpectValue) apply the same value-start rules as Root, but push
// the current phase onto the context stack before entering `{`/`[`.
// enclosing records which container kind the resulting scalar value
// belongs to, so its eventual close can return control correctly.
func (m *Machine) valueStart(r rune, enclosing ContainerKind, pushParent bool) Event {
	switch {
	case r == '{':
		return m.openContainer(ContainerObject, pushParent)
	case r == '[':
		return m.openContainer(ContainerArray, pushParent)
	case r == '"':
		m.valueContainerKind = enclosing
		m.phase = Phase{Kind: KindInString, StringKind: StringValue}

		return Event{Kind: EventNone}
	case r == '-' || isDigit(r):
		m.valueContainerKind = enclosing
		m.phase = Phase{Kind: KindInNumber, Number: NumInteger}

		return Event{Kind: EventNone}
	case r == 't' || r == 'f' || r == 'n':
		m.valueContainerKind = enclosing
		m.phase = Phase{Kind: KindInLiteral, Literal: string(r)}

		return Event{Kind: EventNone}
	case isWhitespace(r):
		return Event{Kind: EventNone}
	default:
		m.phase = Phase{Kind: KindError}

		return Event{Kind: EventNone}
	}
}

// openContainer transitions into a freshly opened object or array. When
// pushParent is true (we are nested inside an existing container's
// ExpectValue state) the current phase is saved onto contextStack first, so
// it can be restored by the close rules; the outermost container (entered
// directly from Root) never pushes.
func (m *Machine) openContainer(kind ContainerKind, pushParent bool) Event {
	if pushParent {
		m.contextStack = append(m.contextStack, m.phase)
	}

	m.depth++
	m.valueContainerKind = ContainerNone

	if kind == ContainerObject {
		m.phase = Phase{Kind: KindInObject, Object: ObjExpectKeyOrEnd}

		return Event{Kind: EventOpenObject}
	}

	m.phase = Phase{Kind: KindInArray, Array: ArrExpectValue}

	return Event{Kind: EventOpenArray}
}

func (m *Machine) feedRoot(r rune) Event {
	return m.valueStart(r, ContainerNone, false)
}

func (m *Machine) feedInObject(r rune) Event {
	switch m.phase.Object {
	case ObjExpectKeyOrEnd:
		switch {
		case r == '}':
			return m.closeContainer()
		case r == '"':
			m.currentKey = m.currentKey[:0]
			m.phase = Phase{Kind: KindInString, StringKind: StringKey}

			return Event{Kind: EventNone}
		case isWhitespace(r):
			return Event{Kind: EventNone}
		default:
			m.phase = Phase{Kind: KindError}

			return Event{Kind: EventNone}
		}

	case ObjExpectKeyFirstQuote:
		switch {
		case r == '"':
			m.currentKey = m.currentKey[:0]
			m.phase = Phase{Kind: KindInString, StringKind: StringKey}

			return Event{Kind: EventNone}
		case isWhitespace(r):
			return Event{Kind: EventNone}
		default:
			m.phase = Phase{Kind: KindError}

			return Event{Kind: EventNone}
		}

	case ObjExpectColon:
		switch {
		case r == ':':
			m.phase = Phase{Kind: KindInObject, Object: ObjExpectValue}

			return Event{Kind: EventNone}
		case isWhitespace(r):
			return Event{Kind: EventNone}
		default:
			m.phase = Phase{Kind: KindError}

			return Event{Kind: EventNone}
		}

	case ObjExpectValue:
		return m.valueStart(r, ContainerObject, true)

	case ObjExpectCommaOrEnd:
		switch {
		case r == ',':
			m.phase = Phase{Kind: KindInObject, Object: ObjExpectKeyFirstQuote}

			return Event{Kind: EventNone}
		case r == '}':
			return m.closeContainer()
		case isWhitespace(r):
			return Event{Kind: EventNone}
		default:
			m.phase = Phase{Kind: KindError}

			return Event{Kind: EventNone}
		}

	default:
		m.phase = Phase{Kind: KindError}

		return Event{Kind: EventNone}
	}
}

func (m *Machine) feedInArray(r rune) Event {
	switch m.phase.Array {
	case ArrExpectValue:
		return m.valueStart(r, ContainerArray, true)

	case ArrExpectCommaOrEnd:
		switch {
		case r == ',':
			m.phase = Phase{Kind: KindInArray, Array: ArrExpectValue}

			return Event{Kind: EventNone}
		case r == ']':
			return m.closeContainer()
		case isWhitespace(r):
			return Event{Kind: EventNone}
		default:
			m.phase = Phase{Kind: KindError}

			return Event{Kind: EventNone}
		}

	default:
		m.phase = Phase{Kind: KindError}

		return Event{Kind: EventNone}
	}
}

func (m *Machine) feedInString(r rune) Event {
	if m.phase.StringKind == StringKey {
		switch {
		case m.phase.Escaped:
			m.currentKey = append(m.currentKey, r)
			m.phase.Escaped = false

			return Event{Kind: EventNone}
		case r == '\\':
			m.phase.Escaped = true

			return Event{Kind: EventNone}
		case r == '"':
			key := string(m.currentKey)
			m.phase = Phase{Kind: KindInObject, Object: ObjExpectColon}

			return Event{Kind: EventKeyComplete, Key: key}
		default:
			m.currentKey = append(m.currentKey, r)

			return Event{Kind: EventNone}
		}
	}

	// StringKind == StringValue.
	switch {
	case m.phase.Escaped:
		m.phase.Escaped = false

		return Event{Kind: EventNone}
	case r == '\\':
		m.phase.Escaped = true

		return Event{Kind: EventNone}
	case r == '"':
		return m.completeValue()
	default:
		return Event{Kind: EventNone}
	}
}

func (m *Machine) feedInNumber(r rune, redispatch bool) Event {
	isTerminator := r == ',' || r == '}' || r == ']' || isWhitespace(r)

	switch m.phase.Number {
	case NumInteger:
		switch {
		case isDigit(r):
			return Event{Kind: EventNone}
		case r == '.':
			m.phase = Phase{Kind: KindInNumber, Number: NumDecimal}

			return Event{Kind: EventNone}
		case r == 'e' || r == 'E':
			m.phase = Phase{Kind: KindInNumber, Number: NumExponent}

			return Event{Kind: EventNone}
		case isTerminator:
			return m.commitAndRedispatch(r)
		default:
			m.phase = Phase{Kind: KindError}

			return Event{Kind: EventNone}
		}

	case NumDecimal:
		switch {
		case isDigit(r):
			return Event{Kind: EventNone}
		case r == 'e' || r == 'E':
			m.phase = Phase{Kind: KindInNumber, Number: NumExponent}

			return Event{Kind: EventNone}
		case isTerminator:
			return m.commitAndRedispatch(r)
		default:
			m.phase = Phase{Kind: KindError}

			return Event{Kind: EventNone}
		}

	case NumExponent:
		switch {
		case isDigit(r) || r == '+' || r == '-':
			return Event{Kind: EventNone}
		case isTerminator:
			return m.commitAndRedispatch(r)
		default:
			m.phase = Phase{Kind: KindError}

			return Event{Kind: EventNone}
		}

	default:
		m.phase = Phase{Kind: KindError}

		return Event{Kind: EventNone}
	}
}

var literalTargets = map[rune]string{'t': "true", 'f': "false", 'n': "null"}

func (m *Machine) feedInLiteral(r rune, _ bool) Event {
	target := literalTargets[rune(m.phase.Literal[0])]
	isTerminator := r == ',' || r == '}' || r == ']' || isWhitespace(r)

	if m.phase.Literal == target {
		if isTerminator {
			return m.commitAndRedispatch(r)
		}

		m.phase = Phase{Kind: KindError}

		return Event{Kind: EventNone}
	}

	next := m.phase.Literal + string(r)
	if len(next) > len(target) || target[:len(next)] != next {
		m.phase = Phase{Kind: KindError}

		return Event{Kind: EventNone}
	}

	m.phase = Phase{Kind: KindInLiteral, Literal: next}

	return Event{Kind: EventNone}
}

// commitAndRedispatch finalizes the current scalar value (number or
// literal) and re-processes the terminator character r through the newly
// restored enclosing phase, so the comma/close-brace/close-bracket is never
// lost.
func (m *Machine) commitAndRedispatch(r rune) Event {
	ev := m.completeValue()
	if ev.Kind == EventDone {
		// Whitespace after a bare top-level scalar is simply absorbed;
		// any other terminator after Done is nonsensical input already
		// handled by Done's absorbing-state rule on the next Feed call,
		// but since we already transitioned this call, re-dispatch
		// explicitly so a comma/brace right after a root scalar errors
		// instead of being silently swallowed.
		if isWhitespace(r) {
			return ev
		}

		m.phase = Phase{Kind: KindError}

		return Event{Kind: EventNone}
	}

	return m.Feed(r)
}

// completeValue transitions out of a just-finished scalar value
// (string-value close-quote, or number/literal commit) to the phase
// appropriate for its enclosing container: InObject -> ExpectCommaOrEnd,
// InArray -> ExpectCommaOrEnd, none -> Done.
func (m *Machine) completeValue() Event {
	switch m.valueContainerKind {
	case ContainerObject:
		m.phase = Phase{Kind: KindInObject, Object: ObjExpectCommaOrEnd}
		m.currentKey = m.currentKey[:0]

		return Event{Kind: EventNone}
	case ContainerArray:
		m.phase = Phase{Kind: KindInArray, Array: ArrExpectCommaOrEnd}

		return Event{Kind: EventNone}
	default:
		m.phase = Phase{Kind: KindDone}

		return Event{Kind: EventDone}
	}
}

// closeContainer handles `}`/`]` in ExpectKeyOrEnd/ExpectCommaOrEnd.
func (m *Machine) closeContainer() Event {
	m.depth--

	if m.depth <= 0 {
		m.phase = Phase{Kind: KindDone}

		return Event{Kind: EventDone}
	}

	if len(m.contextStack) == 0 {
		// Closing the outermost container, but an ancestor remains open
		// per depth bookkeeping -- indicates an invariant violation
		// upstream; fail closed rather than desynchronize.
		m.phase = Phase{Kind: KindError}

		return Event{Kind: EventNone}
	}

	parent := m.contextStack[len(m.contextStack)-1]
	m.contextStack = m.contextStack[:len(m.contextStack)-1]

	switch {
	case parent.Kind == KindInObject && parent.Object == ObjExpectValue:
		m.phase = Phase{Kind: KindInObject, Object: ObjExpectCommaOrEnd}
		m.valueContainerKind = ContainerObject
		m.currentKey = m.currentKey[:0]
	case parent.Kind == KindInArray && parent.Array == ArrExpectValue:
		m.phase = Phase{Kind: KindInArray, Array: ArrExpectCommaOrEnd}
		m.valueContainerKind = ContainerArray
	default:
		m.phase = parent
	}

	return Event{Kind: EventCloseContainer}
}
