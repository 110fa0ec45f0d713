package cache

// Keyed claim/wait cache used to deduplicate concurrent work per key.
// getOrClaim either returns the stored value or atomically claims the right
// to produce it; other callers wait() and retry until the claimant sets or
// deletes the entry.
type Cache[T any] interface {
	getOrClaim(key string) hitResult[T]
	set(key string, data T)
	delete(key string)
	wait()
}

type hitResult[T any] struct {
	data    T
	valid   bool
	claimed bool
}
