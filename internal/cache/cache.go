// Package cache memoises report results. Entries are addressed by a murmur3
// hash of the canonical request key; the key itself is kept alongside the
// value so a hash collision is treated as a miss.
package cache

import (
	"container/list"
	"strconv"
	"sync"

	"github.com/spaolacci/murmur3"
	"golang.org/x/sync/singleflight"
)

// DefaultEntries is used when New is given a non-positive capacity.
const DefaultEntries = 256

// Cache is a bounded LRU cache with duplicate call suppression.
type Cache struct {
	mu       sync.Mutex
	capacity int

	// items maps hash → list element (whose value is *entry)
	items map[uint64]*list.Element
	order *list.List // front = most recently used

	group  singleflight.Group
	hits   uint64
	misses uint64
}

type entry struct {
	hash  uint64
	key   string
	value any
}

// Stats is a point-in-time view of cache usage.
type Stats struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

// New creates a cache holding at most capacity results.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultEntries
	}
	return &Cache{
		capacity: capacity,
		items:    make(map[uint64]*list.Element),
		order:    list.New(),
	}
}

// Hash returns the 64-bit murmur3 hash of key.
func Hash(key string) uint64 {
	return murmur3.Sum64([]byte(key))
}

// Do returns the cached value for key, or runs compute once and caches its
// result. Concurrent callers with the same key share a single compute call.
func (c *Cache) Do(key string, compute func() any) any {
	h := Hash(key)
	if v, ok := c.get(h, key); ok {
		return v
	}

	v, _, _ := c.group.Do(strconv.FormatUint(h, 16)+"|"+key, func() (any, error) {
		if v, ok := c.peek(h, key); ok {
			return v, nil
		}
		v := compute()
		c.put(h, key, v)
		return v, nil
	})
	return v
}

func (c *Cache) get(h uint64, key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[h]
	if !ok || elem.Value.(*entry).key != key {
		c.misses++
		return nil, false
	}
	c.hits++
	c.order.MoveToFront(elem)
	return elem.Value.(*entry).value, true
}

// peek is get without touching the counters.
func (c *Cache) peek(h uint64, key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[h]
	if !ok || elem.Value.(*entry).key != key {
		return nil, false
	}
	return elem.Value.(*entry).value, true
}

func (c *Cache) put(h uint64, key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[h]; ok {
		e := elem.Value.(*entry)
		e.key = key
		e.value = value
		c.order.MoveToFront(elem)
		return
	}

	c.items[h] = c.order.PushFront(&entry{hash: h, key: key, value: value})
	for c.order.Len() > c.capacity {
		c.removeLocked(c.order.Back())
	}
}

// removeLocked drops elem. Caller must hold c.mu.
func (c *Cache) removeLocked(elem *list.Element) {
	if elem == nil {
		return
	}
	c.order.Remove(elem)
	delete(c.items, elem.Value.(*entry).hash)
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[uint64]*list.Element)
	c.order.Init()
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats reports entry count and hit/miss counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Entries: len(c.items), Hits: c.hits, Misses: c.misses}
}
