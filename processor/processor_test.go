package processor_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticeforge/schemasteer/maskhint"
	"github.com/latticeforge/schemasteer/processor"
	"github.com/latticeforge/schemasteer/schema"
	"github.com/latticeforge/schemasteer/schemaindex"
	"github.com/latticeforge/schemasteer/tokenizer"
	"github.com/latticeforge/schemasteer/trie"
)

func buildProcessor(t *testing.T, doc []byte, extraPieces ...string) (*processor.Processor, *tokenizer.Stub) {
	t.Helper()

	m, err := schema.Load(doc)
	require.NoError(t, err)

	stub := tokenizer.NewStub(extraPieces...)

	builder := trie.NewBuilder(16)
	idx, err := schemaindex.Build(m, "stub-v1", stub, builder)
	require.NoError(t, err)

	special, err := tokenizer.DiscoverSpecialTokens(stub)
	require.NoError(t, err)

	starters, err := tokenizer.DiscoverValueStarters(stub)
	require.NoError(t, err)

	eos, hasEOS := stub.EOSTokenID()
	gen := maskhint.New(special, starters, eos, hasEOS)

	return processor.New(m, idx, stub, gen), stub
}

func runToCompletion(t *testing.T, p *processor.Processor, stub *tokenizer.Stub, doc string) {
	t.Helper()

	p.Prompt(nil)

	toks, err := stub.Encode(doc)
	require.NoError(t, err)

	vocab, ok := stub.VocabSize()
	require.True(t, ok)

	for _, tok := range toks {
		logits := make([]float32, vocab)

		_, err := p.Process(logits)
		require.NoError(t, err)

		require.NoError(t, p.DidSample(tok))
	}
}

func TestProcessorDrivesValidDocumentToCompletion(t *testing.T) {
	t.Parallel()

	doc := []byte(`{"type":"object","properties":{"name":{"type":"string"},"age":{"type":"number"}},"required":["name"]}`)

	p, stub := buildProcessor(t, doc, "name", "age")

	runToCompletion(t, p, stub, `{"name":"alice","age":7}`)

	assert.NoError(t, p.Err())
	assert.Contains(t, p.DebugState(), "phase=Done")
}

func TestProcessHardModeMasksDisallowedTokens(t *testing.T) {
	t.Parallel()

	doc := []byte(`{"type":"object","properties":{"name":{"type":"string"}},"required":["name"]}`)

	p, stub := buildProcessor(t, doc, "name")
	p.Prompt(nil)

	// Open the root object: at Root no hint applies, so masking starts once
	// the processor expects the first key.
	openBrace, ok := stub.TokenForPiece("{")
	require.True(t, ok)
	require.NoError(t, p.DidSample(openBrace))

	vocab, ok := stub.VocabSize()
	require.True(t, ok)

	logits := make([]float32, vocab)

	out, err := p.Process(logits)
	require.NoError(t, err)

	special, err := tokenizer.DiscoverSpecialTokens(stub)
	require.NoError(t, err)
	require.NotEmpty(t, special.Quote)

	eosTok, hasEOS := stub.EOSTokenID()
	require.True(t, hasEOS)

	allowed := map[tokenizer.TokenID]bool{eosTok: true}
	for _, q := range special.Quote {
		allowed[q] = true
	}

	for i, v := range out {
		if allowed[tokenizer.TokenID(i)] {
			continue
		}

		assert.True(t, math.IsInf(float64(v), -1), "index %d should be masked", i)
	}
}

func TestNestedObjectClosePreservesParentRequiredTracking(t *testing.T) {
	t.Parallel()

	doc := []byte(`{"type":"object","properties":{"a":{"type":"object","properties":{"x":{"type":"string"}},"required":["x"]},"b":{"type":"string"}},"required":["a","b"]}`)

	p, stub := buildProcessor(t, doc, "a", "b", "x")
	p.Prompt(nil)

	vocab, ok := stub.VocabSize()
	require.True(t, ok)

	// Emit the nested object under "a" in full, then "b" with its complete
	// string value, leaving the root object's required set satisfied by "a"
	// and "b" alike.
	prefix, err := stub.Encode(`{"a":{"x":"y"},"b":"z"`)
	require.NoError(t, err)

	for _, tok := range prefix {
		_, procErr := p.Process(make([]float32, vocab))
		require.NoError(t, procErr)
		require.NoError(t, p.DidSample(tok))
	}

	logits := make([]float32, vocab)
	_, err = p.Process(logits)
	require.NoError(t, err)

	closeBrace, ok := stub.TokenForPiece("}")
	require.True(t, ok)
	assert.False(t, math.IsInf(float64(logits[closeBrace]), -1),
		"close brace should be allowed once both top-level required keys are emitted, including \"a\" whose value was a nested object")
}

func TestDebugStateReportsUnpromptedBeforeFirstPrompt(t *testing.T) {
	t.Parallel()

	doc := []byte(`{"type":"object","properties":{"a":{"type":"string"}}}`)
	p, _ := buildProcessor(t, doc, "a")

	assert.Equal(t, "unprompted", p.DebugState())
}

func TestGeneratedTracksSampledTokens(t *testing.T) {
	t.Parallel()

	doc := []byte(`{"type":"object","properties":{"a":{"type":"string"}},"required":["a"]}`)
	p, stub := buildProcessor(t, doc, "a")

	runToCompletion(t, p, stub, `{"a":"x"}`)

	toks, err := stub.Encode(`{"a":"x"}`)
	require.NoError(t, err)
	assert.Equal(t, len(toks), len(p.Generated()))
}
