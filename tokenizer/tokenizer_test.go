package tokenizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticeforge/schemasteer/tokenizer"
)

func TestStubEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	stub := tokenizer.NewStub("name", "age")

	for _, text := range []string{
		`{"name":"A","age":1}`,
		`{}`,
		"plain text with spaces",
	} {
		ids, err := stub.Encode(text)
		require.NoError(t, err)

		decoded, err := stub.Decode(ids)
		require.NoError(t, err)
		assert.Equal(t, text, decoded)
	}
}

func TestStubKeysGetDedicatedTokens(t *testing.T) {
	t.Parallel()

	stub := tokenizer.NewStub("name", "age")

	nameIDs, err := stub.Encode("name")
	require.NoError(t, err)
	assert.Len(t, nameIDs, 1, "registered key should encode to exactly one token")

	ageIDs, err := stub.Encode("age")
	require.NoError(t, err)
	assert.Len(t, ageIDs, 1)

	assert.NotEqual(t, nameIDs[0], ageIDs[0])
}

func TestDiscoverSpecialTokens(t *testing.T) {
	t.Parallel()

	stub := tokenizer.NewStub("name", "age")

	special, err := tokenizer.DiscoverSpecialTokens(stub)
	require.NoError(t, err)

	assert.NotEmpty(t, special.Quote)
	assert.NotEmpty(t, special.Colon)
	assert.NotEmpty(t, special.Comma)
	assert.NotEmpty(t, special.OpenBrace)
	assert.NotEmpty(t, special.CloseBrace)
	assert.NotEmpty(t, special.OpenBracket)
	assert.NotEmpty(t, special.CloseBracket)
	assert.NotEmpty(t, special.Whitespace)
}

func TestCacheMemoizes(t *testing.T) {
	t.Parallel()

	stub := tokenizer.NewStub("name")
	cache := tokenizer.NewCache()

	first, err := cache.Get("model-a", stub)
	require.NoError(t, err)

	second, err := cache.Get("model-a", stub)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestStubVocabAndEOS(t *testing.T) {
	t.Parallel()

	stub := tokenizer.NewStub("name")

	size, ok := stub.VocabSize()
	assert.True(t, ok)
	assert.Positive(t, size)

	eos, ok := stub.EOSTokenID()
	assert.True(t, ok)

	decoded, err := stub.DecodeOne(eos)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}
