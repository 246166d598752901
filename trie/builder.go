package trie

import (
	"sort"
	"strings"
	"sync"

	"github.com/latticeforge/schemasteer/internal/cache"
	"github.com/latticeforge/schemasteer/tokenizer"
)

const defaultCacheSize = 256

// Build constructs a fresh [Trie] from keys: de-duplicates keys, drops
// empty strings, encodes each, inserts into a fresh trie, and marks
// terminals with their key name. Building is pure.
func Build(keys []string, tok tokenizer.Adapter) (*Trie, error) {
	t := newTrie()

	seen := make(map[string]bool, len(keys))

	for _, key := range keys {
		if key == "" || seen[key] {
			continue
		}

		seen[key] = true

		ids, err := tok.Encode(key)
		if err != nil {
			return nil, err
		}

		t.insert(ids, key)
	}

	return t, nil
}

// Builder caches [Trie] construction results keyed by (tokenizer
// fingerprint, sorted-keys-joined), with an LRU bound. Safe for concurrent
// use.
type Builder struct {
	mu    sync.Mutex
	cache *cache.LRU
}

// NewBuilder returns a Builder bounded to size cached tries. A
// non-positive size uses [defaultCacheSize].
func NewBuilder(size int) *Builder {
	if size <= 0 {
		size = defaultCacheSize
	}

	return &Builder{cache: cache.New(size)}
}

// Build returns the cached [Trie] for (tokenizerFingerprint, keys),
// constructing and storing it on first use.
func (b *Builder) Build(tokenizerFingerprint string, keys []string, tok tokenizer.Adapter) (*Trie, error) {
	cacheKey := fingerprint(tokenizerFingerprint, keys)

	b.mu.Lock()
	defer b.mu.Unlock()

	if cached, ok := b.cache.Get(cacheKey); ok {
		return cached.(*Trie), nil
	}

	t, err := Build(keys, tok)
	if err != nil {
		return nil, err
	}

	b.cache.Put(cacheKey, t)

	return t, nil
}

// fingerprint joins a tokenizer fingerprint with the sorted, deduplicated
// key list.
func fingerprint(tokenizerFingerprint string, keys []string) string {
	sorted := make([]string, 0, len(keys))

	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if k == "" || seen[k] {
			continue
		}

		seen[k] = true

		sorted = append(sorted, k)
	}

	sort.Strings(sorted)

	var sb strings.Builder

	sb.WriteString(tokenizerFingerprint)
	sb.WriteByte('\x00')
	sb.WriteString(strings.Join(sorted, "\x00"))

	return sb.String()
}
