// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"container/list"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pdiddy/verify-engine/pkg/types"
)

// Cache is an in-process query→results store with a time-to-live and a
// capacity bound. Expired entries are never served. When an insert pushes
// the cache over capacity, expired entries are purged first and then the
// least recently used entries are evicted. Safe for concurrent use.
type Cache struct {
	ttl      time.Duration
	capacity int
	now      func() time.Time

	mu    sync.Mutex
	order *list.List // front = most recently used
	items map[string]*list.Element

	flight singleflight.Group
}

type cacheEntry struct {
	key     string
	results []types.SearchResult
	expires time.Time
}

// NewCache returns a cache with the given TTL and capacity. Non-positive
// values fall back to 15 minutes and 2000 entries.
func NewCache(cfg types.CacheConfig) *Cache {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = 2000
	}
	return &Cache{
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}
}

// Get returns the cached results for key if a fresh entry exists.
func (c *Cache) Get(key string) ([]types.SearchResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	e := el.Value.(*cacheEntry)
	if !c.now().Before(e.expires) {
		c.removeElement(el)
		return nil, false
	}
	c.order.MoveToFront(el)
	return slices.Clone(e.results), true
}

// Put stores results under key, replacing any existing entry.
func (c *Cache) Put(key string, results []types.SearchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	entry := &cacheEntry{key: key, results: slices.Clone(results), expires: now.Add(c.ttl)}
	if el, ok := c.items[key]; ok {
		el.Value = entry
		c.order.MoveToFront(el)
		return
	}
	c.items[key] = c.order.PushFront(entry)

	if c.order.Len() > c.capacity {
		c.purgeExpired(now)
	}
	for c.order.Len() > c.capacity {
		c.removeElement(c.order.Back())
	}
}

// GetOrCompute returns the cached results for key, or runs compute and
// returns its output. Concurrent misses for the same key share a single
// compute call. The output is stored only when compute reports it complete,
// so an aborted computation is never served to later callers. The boolean
// reports a cache hit.
func (c *Cache) GetOrCompute(key string, compute func() ([]types.SearchResult, bool)) ([]types.SearchResult, bool) {
	if res, ok := c.Get(key); ok {
		return res, true
	}
	v, _, _ := c.flight.Do(key, func() (any, error) {
		if res, ok := c.Get(key); ok {
			return res, nil
		}
		res, complete := compute()
		if complete {
			c.Put(key, res)
		}
		return res, nil
	})
	return slices.Clone(v.([]types.SearchResult)), false
}

// Len returns the number of stored entries, including expired ones not yet
// purged.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache) purgeExpired(now time.Time) {
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if !now.Before(el.Value.(*cacheEntry).expires) {
			c.removeElement(el)
		}
		el = prev
	}
}

func (c *Cache) removeElement(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*cacheEntry).key)
}
