package cache

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/verdantlabs/greenhouse/internal/logging"
)

// OnceCell memoizes the first successful result of an asynchronous producer.
//
// Concurrent callers share a single in-flight producer invocation. A
// successful value is kept for the lifetime of the cell and never refreshed.
// A failed invocation yields the configured fallback to the callers awaiting
// that attempt and leaves the cell empty, so a later call starts a fresh
// producer invocation.
type OnceCell[T any] struct {
	produce  func(ctx context.Context) (T, error)
	fallback T

	group singleflight.Group

	mu    sync.RWMutex
	value T
	done  bool
}

func NewOnceCell[T any](produce func(ctx context.Context) (T, error), fallback T) *OnceCell[T] {
	return &OnceCell[T]{
		produce:  produce,
		fallback: fallback,
	}
}

// GetOrAwait returns the memoized value, joining an in-flight producer
// invocation or starting one if none is running. Producer errors are not
// returned; the callers awaiting the failed attempt get the fallback instead.
func (c *OnceCell[T]) GetOrAwait(ctx context.Context) T {
	c.mu.RLock()
	if c.done {
		value := c.value
		c.mu.RUnlock()
		return value
	}
	c.mu.RUnlock()

	value, err, _ := c.group.Do("cell", func() (any, error) {
		// Another caller may have completed the producer while we waited
		// for our turn in the group
		c.mu.RLock()
		if c.done {
			value := c.value
			c.mu.RUnlock()
			return value, nil
		}
		c.mu.RUnlock()

		// The producer outcome is shared with callers whose own context may
		// outlive ours, so it must not be tied to our cancellation
		produced, err := c.produce(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.value = produced
		c.done = true
		c.mu.Unlock()

		return produced, nil
	})
	if err != nil {
		logging.FromContext(ctx).Warn("Producer failed, returning fallback", "error", err.Error())
		return c.fallback
	}

	return value.(T)
}
