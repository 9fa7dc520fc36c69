package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache is a fixed-size LRU used for small bounded lookup tables
// (rate limiter state, endpoint latency samples).
type Cache[K comparable, V any] struct {
	cache *lru.Cache[K, V]
}

func NewLRU[K comparable, V any](maxSize int) *Cache[K, V] {
	c, err := lru.New[K, V](maxSize)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize LRU cache: %s", err.Error()))
	}
	return &Cache[K, V]{cache: c}
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	return c.cache.Get(key)
}

func (c *Cache[K, V]) Peek(key K) (V, bool) {
	return c.cache.Peek(key)
}

// Set adds or replaces key and reports whether an older entry was evicted to make room.
func (c *Cache[K, V]) Set(key K, value V) bool {
	return c.cache.Add(key, value)
}

func (c *Cache[K, V]) Remove(key K) bool {
	return c.cache.Remove(key)
}

func (c *Cache[K, V]) Keys() []K {
	return c.cache.Keys()
}

func (c *Cache[K, V]) Len() int {
	return c.cache.Len()
}

func (c *Cache[K, V]) Purge() {
	c.cache.Purge()
}
