package cache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticeforge/schemasteer/internal/cache"
)

func TestGetMissReturnsFalse(t *testing.T) {
	t.Parallel()

	c := cache.New(2)

	_, ok := c.Get("missing")
	assert.False(t, ok)
}

func TestPutThenGetRoundTrips(t *testing.T) {
	t.Parallel()

	c := cache.New(2)
	c.Put("a", 1)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestPutOverwritesExistingKey(t *testing.T) {
	t.Parallel()

	c := cache.New(2)
	c.Put("a", 1)
	c.Put("a", 2)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len())
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	c := cache.New(2)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3) // evicts "a", the least recently used.

	_, ok := c.Get("a")
	assert.False(t, ok)

	v, ok := c.Get("b")
	require.True(t, ok)
	assert.Equal(t, 2, v)

	v, ok = c.Get("c")
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestGetPromotesToMostRecentlyUsed(t *testing.T) {
	t.Parallel()

	c := cache.New(2)
	c.Put("a", 1)
	c.Put("b", 2)

	_, _ = c.Get("a") // "a" is now most recently used, "b" is least.

	c.Put("c", 3) // evicts "b".

	_, ok := c.Get("b")
	assert.False(t, ok)

	_, ok = c.Get("a")
	assert.True(t, ok)
}

func TestNewClampsNonPositiveCapacity(t *testing.T) {
	t.Parallel()

	c := cache.New(0)
	c.Put("a", 1)
	c.Put("b", 2)

	assert.Equal(t, 1, c.Len())
}
