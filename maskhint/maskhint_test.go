package maskhint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticeforge/schemasteer/internal/errs"
	"github.com/latticeforge/schemasteer/jsonstate"
	"github.com/latticeforge/schemasteer/maskhint"
	"github.com/latticeforge/schemasteer/schema"
	"github.com/latticeforge/schemasteer/tokenizer"
	"github.com/latticeforge/schemasteer/trie"
)

func newGenerator(t *testing.T) (*maskhint.Generator, tokenizer.SpecialSet) {
	t.Helper()

	stub := tokenizer.NewStub("name", "age")

	special, err := tokenizer.DiscoverSpecialTokens(stub)
	require.NoError(t, err)

	starters, err := tokenizer.DiscoverValueStarters(stub)
	require.NoError(t, err)

	eos, hasEOS := stub.EOSTokenID()

	return maskhint.New(special, starters, eos, hasEOS), special
}

func TestRuleExpectKeyOrEndAllowsQuoteButNotCloseBrace(t *testing.T) {
	t.Parallel()

	g, special := newGenerator(t)

	h, err := g.Hint(maskhint.Input{
		Phase:              jsonstate.Phase{Kind: jsonstate.KindInObject, Object: jsonstate.ObjExpectKeyOrEnd},
		ObjectTrieNonEmpty: true,
		RequiredSatisfied:  false,
	})
	require.NoError(t, err)
	assert.True(t, h.Present)
	assert.Equal(t, maskhint.ModeHard, h.Mode)

	for _, id := range special.Quote {
		assert.Contains(t, h.Allow, id)
	}

	for _, id := range special.CloseBrace {
		assert.NotContains(t, h.Allow, id)
	}
}

func TestRuleExpectKeyOrEndAllowsCloseBraceWhenRequiredSatisfied(t *testing.T) {
	t.Parallel()

	g, special := newGenerator(t)

	h, err := g.Hint(maskhint.Input{
		Phase:              jsonstate.Phase{Kind: jsonstate.KindInObject, Object: jsonstate.ObjExpectKeyOrEnd},
		ObjectTrieNonEmpty: true,
		RequiredSatisfied:  true,
	})
	require.NoError(t, err)

	for _, id := range special.CloseBrace {
		assert.Contains(t, h.Allow, id)
	}
}

func TestRuleExpectKeyNoHintWhenTrieEmpty(t *testing.T) {
	t.Parallel()

	g, _ := newGenerator(t)

	h, err := g.Hint(maskhint.Input{
		Phase:              jsonstate.Phase{Kind: jsonstate.KindInObject, Object: jsonstate.ObjExpectKeyOrEnd},
		ObjectTrieNonEmpty: false,
	})
	require.NoError(t, err)
	assert.False(t, h.Present)
}

func TestRuleInKeyStringUsesTriePath(t *testing.T) {
	t.Parallel()

	g, special := newGenerator(t)

	stub := tokenizer.NewStub("name", "age")
	tr, err := trie.Build([]string{"name", "age"}, stub)
	require.NoError(t, err)

	h, err := g.Hint(maskhint.Input{
		Phase:    jsonstate.Phase{Kind: jsonstate.KindInString, StringKind: jsonstate.StringKey},
		TriePath: tr.Root(),
	})
	require.NoError(t, err)
	assert.True(t, h.Present)
	assert.Equal(t, maskhint.ModeHard, h.Mode)
	assert.NotEmpty(t, h.Allow)

	// Root of a non-empty trie is never terminal, so no quote should be
	// mixed in yet.
	for _, q := range special.Quote {
		assert.NotContains(t, h.Allow, q)
	}
}

func TestRuleInKeyStringErrorsOnDeadEnd(t *testing.T) {
	t.Parallel()

	g, _ := newGenerator(t)

	stub := tokenizer.NewStub("name")
	tr, err := trie.Build([]string{"name"}, stub)
	require.NoError(t, err)

	path := tr.Root()

	toks, encErr := stub.Encode("name")
	require.NoError(t, encErr)

	for _, tok := range toks {
		var ok bool

		path, ok = path.Advance(tok)
		require.True(t, ok)
	}

	require.True(t, path.IsTerminal())

	// Force a walk off the trie to simulate a dead end: no further edges
	// and (for this synthetic case) treat it as non-terminal by using a
	// fresh empty trie instead.
	empty, err := trie.Build(nil, stub)
	require.NoError(t, err)

	_, err = g.Hint(maskhint.Input{
		Phase:    jsonstate.Phase{Kind: jsonstate.KindInString, StringKind: jsonstate.StringKey},
		TriePath: empty.Root(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrNoValidTokens)
}

func TestRuleExpectColon(t *testing.T) {
	t.Parallel()

	g, special := newGenerator(t)

	h, err := g.Hint(maskhint.Input{
		Phase: jsonstate.Phase{Kind: jsonstate.KindInObject, Object: jsonstate.ObjExpectColon},
	})
	require.NoError(t, err)
	assert.Equal(t, maskhint.ModeHard, h.Mode)

	for _, id := range append(append([]tokenizer.TokenID(nil), special.Colon...), special.Whitespace...) {
		assert.Contains(t, h.Allow, id)
	}
}

func TestRuleExpectValueIsSoftAndKindSpecific(t *testing.T) {
	t.Parallel()

	g, special := newGenerator(t)

	h, err := g.Hint(maskhint.Input{
		Phase:     jsonstate.Phase{Kind: jsonstate.KindInObject, Object: jsonstate.ObjExpectValue},
		ValueKind: schema.KindString,
	})
	require.NoError(t, err)
	assert.Equal(t, maskhint.ModeSoft, h.Mode)
	assert.ElementsMatch(t, special.Quote, h.Allow)
}

func TestRuleExpectValueAnyUnionsAllStarters(t *testing.T) {
	t.Parallel()

	g, _ := newGenerator(t)

	h, err := g.Hint(maskhint.Input{
		Phase:     jsonstate.Phase{Kind: jsonstate.KindInArray, Array: jsonstate.ArrExpectValue},
		ValueKind: schema.KindAny,
	})
	require.NoError(t, err)
	assert.Equal(t, maskhint.ModeSoft, h.Mode)
	assert.NotEmpty(t, h.Allow)
}

func TestRuleExpectCommaOrEndObject(t *testing.T) {
	t.Parallel()

	g, special := newGenerator(t)

	h, err := g.Hint(maskhint.Input{
		Phase: jsonstate.Phase{Kind: jsonstate.KindInObject, Object: jsonstate.ObjExpectCommaOrEnd},
	})
	require.NoError(t, err)
	assert.Equal(t, maskhint.ModeHard, h.Mode)

	for _, id := range special.CloseBrace {
		assert.Contains(t, h.Allow, id)
	}

	for _, id := range special.Comma {
		assert.Contains(t, h.Allow, id)
	}
}

func TestEOSOnlyHintAllowsOnlyEOS(t *testing.T) {
	t.Parallel()

	g, _ := newGenerator(t)

	stub := tokenizer.NewStub("name", "age")
	eos, hasEOS := stub.EOSTokenID()
	require.True(t, hasEOS)

	h := g.EOSOnlyHint()
	require.True(t, h.Present)
	assert.Equal(t, maskhint.ModeHard, h.Mode)
	assert.Equal(t, []tokenizer.TokenID{eos}, h.Allow)
}

func TestRuleNoHintDuringFreeGeneration(t *testing.T) {
	t.Parallel()

	g, _ := newGenerator(t)

	for _, p := range []jsonstate.Phase{
		{Kind: jsonstate.KindInString, StringKind: jsonstate.StringValue},
		{Kind: jsonstate.KindInNumber},
		{Kind: jsonstate.KindInLiteral},
		{Kind: jsonstate.KindDone},
		{Kind: jsonstate.KindError},
		{Kind: jsonstate.KindRoot},
	} {
		h, err := g.Hint(maskhint.Input{Phase: p})
		require.NoError(t, err)
		assert.False(t, h.Present, p.String())
	}
}
