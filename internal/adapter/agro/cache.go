package agro

import (
	"context"
	"sync"

	"github.com/fieldscope/land-quality-service/internal/domain"
	"github.com/fieldscope/land-quality-service/internal/geo"
	"github.com/fieldscope/land-quality-service/internal/observability"
)

// CachedPolygonCreator wraps a PolygonCreator with an in-memory LRU cache
// keyed by ring geometry, so repeated analyses of the same drawn area reuse
// the registered polygon instead of creating duplicates (the upstream API
// bills per polygon).
type CachedPolygonCreator struct {
	inner   domain.PolygonCreator
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedPolygonCreator creates a cache decorator around a polygon creator.
func NewCachedPolygonCreator(inner domain.PolygonCreator, maxEntries int, metrics *observability.Metrics) *CachedPolygonCreator {
	return &CachedPolygonCreator{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedPolygonCreator) CreatePolygon(ctx context.Context, name string, ring geo.Ring) (domain.PolygonInfo, error) {
	key := domain.GenerateAreaID(ring)
	if info, ok := c.cache.get(key); ok {
		c.metrics.PolygonCache.WithLabelValues("hit").Inc()
		return info, nil
	}
	c.metrics.PolygonCache.WithLabelValues("miss").Inc()

	info, err := c.inner.CreatePolygon(ctx, name, ring)
	if err != nil {
		return info, err
	}
	// Only cache registrations that yielded a usable polygon ID.
	if info.ID != "" {
		c.cache.put(key, info)
	}
	return info, nil
}

// lruCache is a simple thread-safe LRU cache for polygon handles.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value domain.PolygonInfo
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (domain.PolygonInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.PolygonInfo{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value domain.PolygonInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
