package translate

import "sync"

// Cache is the translation cache boundary, keyed by language pair and exact
// source text.
//
// The default is stateless: nothing is remembered across calls, so two runs
// of the same document can never observe each other's staleness. Callers who
// want reuse inject an implementation explicitly.
type Cache interface {
	Get(sourceLang, targetLang, text string) (string, bool)
	Put(sourceLang, targetLang, text, translation string)
}

// NopCache remembers nothing.
type NopCache struct{}

var _ Cache = NopCache{}

// Get always misses.
func (NopCache) Get(sourceLang, targetLang, text string) (string, bool) { return "", false }

// Put drops the entry.
func (NopCache) Put(sourceLang, targetLang, text, translation string) {}

// MemoryCache is a process-local cache for single-process runs and tests.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]string
}

type cacheKey struct {
	source, target, text string
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[cacheKey]string)}
}

// Get returns the cached translation for the key, if present.
func (c *MemoryCache) Get(sourceLang, targetLang, text string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[cacheKey{sourceLang, targetLang, text}]
	return v, ok
}

// Put stores a translation under the key.
func (c *MemoryCache) Put(sourceLang, targetLang, text, translation string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey{sourceLang, targetLang, text}] = translation
}

// Len returns the number of cached entries. Test helper.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
