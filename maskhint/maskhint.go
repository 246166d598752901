// Package maskhint implements the seven ordered rules that turn (phase,
// cursor state, trie path) into a [Hint] the
// [github.com/latticeforge/schemasteer/processor] package applies to a
// logits tensor.
package maskhint

import (
	"fmt"

	"github.com/latticeforge/schemasteer/internal/errs"
	"github.com/latticeforge/schemasteer/jsonstate"
	"github.com/latticeforge/schemasteer/schema"
	"github.com/latticeforge/schemasteer/tokenizer"
	"github.com/latticeforge/schemasteer/trie"
)

// Mode distinguishes a hard constraint from a soft bias.
type Mode int

// Hint modes.
const (
	// ModeHard applies -Inf to every disallowed token.
	ModeHard Mode = iota
	// ModeSoft adds a small positive bias to allowed tokens, leaving
	// everything else unchanged.
	ModeSoft
)

// MicroBias is the default positive bias [ModeSoft] applies to allowed
// tokens.
const MicroBias = 0.2

// Hint is the per-step recommendation produced by [Generator.Hint] and
// applied by the processor. A nil/zero-value Hint with Present == false
// means "no constraint this step."
type Hint struct {
	Allow   []tokenizer.TokenID
	Mode    Mode
	Present bool
}

// Input bundles the state [Generator.Hint] consults: the current JSON
// phase, what the [github.com/latticeforge/schemasteer/cursor.Cursor]
// currently knows about the enclosing object and expected value, and the
// active key trie path.
type Input struct {
	Phase jsonstate.Phase

	// ObjectTrieNonEmpty is true when the current object's key trie has at
	// least one key.
	ObjectTrieNonEmpty bool
	// RequiredSatisfied is true when every required property of the
	// current object has already been emitted.
	RequiredSatisfied bool

	// TriePath is the active position in the current object's key trie,
	// meaningful only while Phase is InString{Key}.
	TriePath trie.Path

	// ValueKind is the schema kind governing the value about to start,
	// meaningful only for ExpectValue phases. schema.KindAny means
	// "unconstrained" (no schema resolved).
	ValueKind schema.Kind
}

// Generator produces [Hint] values from special-token and value-starter
// token classes discovered once per tokenizer, plus an optional EOS token.
type Generator struct {
	special  tokenizer.SpecialSet
	starters tokenizer.ValueStarters
	eos      tokenizer.TokenID
	hasEOS   bool
}

// New returns a Generator over the given discovered token classes. eosTok,
// hasEOS come from an [tokenizer.EOSProvider], if the host tokenizer
// implements one.
func New(special tokenizer.SpecialSet, starters tokenizer.ValueStarters, eosTok tokenizer.TokenID, hasEOS bool) *Generator {
	return &Generator{special: special, starters: starters, eos: eosTok, hasEOS: hasEOS}
}

// Hint applies the seven ordered rules to in, returning the first matching
// rule's [Hint]. A zero Hint (Present == false) means rules 6/7 matched:
// free generation, no constraint.
func (g *Generator) Hint(in Input) (Hint, error) {
	switch {
	case g.isExpectKeyPhase(in.Phase):
		return g.hintExpectKey(in), nil

	case in.Phase.Kind == jsonstate.KindInString && in.Phase.StringKind == jsonstate.StringKey:
		return g.hintInKeyString(in)

	case in.Phase.Kind == jsonstate.KindInObject && in.Phase.Object == jsonstate.ObjExpectColon:
		return g.hintExpectColon(), nil

	case g.isExpectValuePhase(in.Phase):
		return g.hintExpectValue(in), nil

	case g.isExpectCommaOrEndPhase(in.Phase):
		return g.hintExpectCommaOrEnd(in.Phase), nil

	default:
		// Rules 6 (InString{Value}/InNumber/InLiteral) and 7
		// (Done/Error/Root): no hint.
		return Hint{}, nil
	}
}

func (g *Generator) isExpectKeyPhase(p jsonstate.Phase) bool {
	return p.Kind == jsonstate.KindInObject &&
		(p.Object == jsonstate.ObjExpectKeyOrEnd || p.Object == jsonstate.ObjExpectKeyFirstQuote)
}

func (g *Generator) isExpectValuePhase(p jsonstate.Phase) bool {
	return (p.Kind == jsonstate.KindInObject && p.Object == jsonstate.ObjExpectValue) ||
		(p.Kind == jsonstate.KindInArray && p.Array == jsonstate.ArrExpectValue)
}

func (g *Generator) isExpectCommaOrEndPhase(p jsonstate.Phase) bool {
	return (p.Kind == jsonstate.KindInObject && p.Object == jsonstate.ObjExpectCommaOrEnd) ||
		(p.Kind == jsonstate.KindInArray && p.Array == jsonstate.ArrExpectCommaOrEnd)
}

// Rule 1.
func (g *Generator) hintExpectKey(in Input) Hint {
	if !in.ObjectTrieNonEmpty {
		return Hint{}
	}

	allow := append([]tokenizer.TokenID(nil), g.special.Quote...)
	if in.RequiredSatisfied {
		allow = append(allow, g.special.CloseBrace...)
	}

	return g.hardHint(allow, true)
}

// Rule 2.
func (g *Generator) hintInKeyString(in Input) (Hint, error) {
	allow := in.TriePath.AllowedNext()

	if in.TriePath.IsTerminal() {
		allow = append(append([]tokenizer.TokenID(nil), allow...), g.special.Quote...)
	}

	if len(allow) == 0 && !in.TriePath.IsTerminal() {
		return Hint{}, fmt.Errorf("%w: empty trie path and not at a terminal node", errs.ErrNoValidTokens)
	}

	// Key-emission hints never add EOS; it is only ever added outside of
	// key-emission. A dead end here (no trie edge, not terminal) is
	// reported via the returned error; the caller steers generation toward
	// EOS itself with [Generator.EOSOnlyHint].
	return Hint{Mode: ModeHard, Allow: allow, Present: true}, nil
}

// Rule 3.
func (g *Generator) hintExpectColon() Hint {
	allow := append([]tokenizer.TokenID(nil), g.special.Colon...)
	allow = append(allow, g.special.Whitespace...)

	return g.hardHint(allow, true)
}

// Rule 4.
func (g *Generator) hintExpectValue(in Input) Hint {
	var allow []tokenizer.TokenID

	switch in.ValueKind {
	case schema.KindObject:
		allow = g.special.OpenBrace
	case schema.KindArray:
		allow = g.special.OpenBracket
	case schema.KindString:
		allow = g.special.Quote
	case schema.KindNumber:
		allow = g.starters.Number
	case schema.KindBoolean:
		allow = append(append([]tokenizer.TokenID(nil), g.starters.True...), g.starters.False...)
	case schema.KindNull:
		allow = g.starters.Null
	case schema.KindAny:
		allow = g.allValueStarters()
	default:
		allow = g.allValueStarters()
	}

	if len(allow) == 0 {
		return Hint{}
	}

	return Hint{Mode: ModeSoft, Allow: allow, Present: true}
}

func (g *Generator) allValueStarters() []tokenizer.TokenID {
	out := append([]tokenizer.TokenID(nil), g.special.OpenBrace...)
	out = append(out, g.special.OpenBracket...)
	out = append(out, g.special.Quote...)
	out = append(out, g.starters.All()...)

	return out
}

// Rule 5.
func (g *Generator) hintExpectCommaOrEnd(p jsonstate.Phase) Hint {
	allow := append([]tokenizer.TokenID(nil), g.special.Comma...)
	allow = append(allow, g.special.Whitespace...)

	if p.Kind == jsonstate.KindInObject {
		allow = append(allow, g.special.CloseBrace...)
	} else {
		allow = append(allow, g.special.CloseBracket...)
	}

	return g.hardHint(allow, true)
}

// hardHint builds a Hard-mode Hint, adding EOS when addEOS and the
// tokenizer exposes one.
func (g *Generator) hardHint(allow []tokenizer.TokenID, addEOS bool) Hint {
	if addEOS && g.hasEOS {
		allow = append(allow, g.eos)
	}

	return Hint{Mode: ModeHard, Allow: allow, Present: true}
}

// EOSOnlyHint returns a Hard-mode hint allowing only the EOS token, for a
// caller that has hit a dead end (such as [errs.ErrNoValidTokens] from
// [Generator.Hint]) and needs to steer the runtime toward terminating
// generation rather than sampling further. Present is false if the
// tokenizer exposes no EOS token, since there is then nothing to steer
// toward.
func (g *Generator) EOSOnlyHint() Hint {
	if !g.hasEOS {
		return Hint{}
	}

	return Hint{Mode: ModeHard, Allow: []tokenizer.TokenID{g.eos}, Present: true}
}
