package cache

import "sync"

type basicCacheEntry[T any] struct {
	data  T
	valid bool
}

// basicCache is an unbounded in-memory Cache. Entries live until deleted, so
// it suits short-lived deduplication and tests; use the TTL cache when
// entries must expire.
type basicCache[T any] struct {
	entries     map[string]basicCacheEntry[T]
	entriesLock sync.Mutex
}

func (c *basicCache[T]) getOrClaim(key string) hitResult[T] {
	c.entriesLock.Lock()
	defer c.entriesLock.Unlock()

	oldValue, ok := c.entries[key]
	if ok {
		return hitResult[T]{
			data:    oldValue.data,
			valid:   oldValue.valid,
			claimed: false,
		}
	}

	// Invalid entry marks the key as claimed
	c.entries[key] = basicCacheEntry[T]{valid: false}
	return hitResult[T]{
		valid:   false,
		claimed: true,
	}
}

func (c *basicCache[T]) set(key string, data T) {
	c.entriesLock.Lock()
	defer c.entriesLock.Unlock()

	c.entries[key] = basicCacheEntry[T]{data: data, valid: true}
}

func (c *basicCache[T]) delete(key string) {
	c.entriesLock.Lock()
	defer c.entriesLock.Unlock()

	delete(c.entries, key)
}

func (c *basicCache[T]) wait() {
}

func NewBasicCache[T any]() *basicCache[T] {
	return &basicCache[T]{
		entries: make(map[string]basicCacheEntry[T]),
	}
}
