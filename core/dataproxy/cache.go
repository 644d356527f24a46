package dataproxy

import (
	"container/list"
	"context"
	"sync"
)

// Stats contains cache statistics.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
	MaxSize   int
}

// lruCache is a thread-safe LRU cache.
type lruCache[K comparable, V any] struct {
	mu        sync.Mutex
	maxSize   int
	entries   map[K]*list.Element
	evictList *list.List
	stats     Stats
}

type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

func newLRUCache[K comparable, V any](maxSize int) *lruCache[K, V] {
	if maxSize < 0 {
		maxSize = 0
	}
	return &lruCache[K, V]{
		maxSize:   maxSize,
		entries:   make(map[K]*list.Element),
		evictList: list.New(),
	}
}

func (c *lruCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ent, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		var zero V
		return zero, false
	}
	c.evictList.MoveToFront(ent)
	c.stats.Hits++
	return ent.Value.(*lruEntry[K, V]).value, true
}

func (c *lruCache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ent, ok := c.entries[key]; ok {
		c.evictList.MoveToFront(ent)
		ent.Value.(*lruEntry[K, V]).value = value
		return
	}
	c.entries[key] = c.evictList.PushFront(&lruEntry[K, V]{key: key, value: value})
	if c.maxSize > 0 && c.evictList.Len() > c.maxSize {
		oldest := c.evictList.Back()
		if oldest != nil {
			c.evictList.Remove(oldest)
			delete(c.entries, oldest.Value.(*lruEntry[K, V]).key)
			c.stats.Evictions++
		}
	}
}

func (c *lruCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

func (c *lruCache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = c.evictList.Len()
	s.MaxSize = c.maxSize
	return s
}

// DefaultCacheSize bounds the number of cached sequence slices.
const DefaultCacheSize = 512

type sliceKey struct {
	id         string
	start, end int
}

// CachingProxy wraps a SequenceDataProxy with bounded read-through LRU
// caches keyed by (accession, region). Normalization slices the same
// regions repeatedly across unrelated calls, so even a small cache
// removes most upstream reads.
type CachingProxy struct {
	inner  SequenceDataProxy
	slices *lruCache[sliceKey, string]
	meta   *lruCache[string, *Metadata]
}

// NewCachingProxy wraps inner with caches bounded to maxEntries slices
// (0 = DefaultCacheSize).
func NewCachingProxy(inner SequenceDataProxy, maxEntries int) *CachingProxy {
	if maxEntries == 0 {
		maxEntries = DefaultCacheSize
	}
	return &CachingProxy{
		inner:  inner,
		slices: newLRUCache[sliceKey, string](maxEntries),
		meta:   newLRUCache[string, *Metadata](maxEntries),
	}
}

// GetSequence returns a cached slice or reads through to the inner proxy.
func (p *CachingProxy) GetSequence(ctx context.Context, id string, start, end int) (string, error) {
	key := sliceKey{id: id, start: start, end: end}
	if v, ok := p.slices.Get(key); ok {
		return v, nil
	}
	v, err := p.inner.GetSequence(ctx, id, start, end)
	if err != nil {
		return "", err
	}
	p.slices.Put(key, v)
	return v, nil
}

// GetMetadata returns cached metadata or reads through.
func (p *CachingProxy) GetMetadata(ctx context.Context, id string) (*Metadata, error) {
	if m, ok := p.meta.Get(id); ok {
		return m, nil
	}
	m, err := p.inner.GetMetadata(ctx, id)
	if err != nil {
		return nil, err
	}
	p.meta.Put(id, m)
	return m, nil
}

// TranslateIdentifier delegates to the inner proxy via cached metadata.
func (p *CachingProxy) TranslateIdentifier(ctx context.Context, id, namespace string) ([]string, error) {
	if namespace == "" {
		m, err := p.GetMetadata(ctx, id)
		if err != nil {
			return nil, err
		}
		return m.Aliases, nil
	}
	return p.inner.TranslateIdentifier(ctx, id, namespace)
}

// SliceStats returns statistics for the sequence-slice cache.
func (p *CachingProxy) SliceStats() Stats { return p.slices.Stats() }

var _ SequenceDataProxy = (*CachingProxy)(nil)
