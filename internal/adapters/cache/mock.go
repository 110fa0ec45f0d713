package cache

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Tick-based deterministic cache for concurrency tests. All clients advance
// in lockstep: a client's wait() returns once every client has called wait()
// for the current tick and the server has moved to the next one.

type mockCacheServerEntry[T any] struct {
	data       T
	valid      bool
	insertedAt int
}

type mockCacheServer[T any] struct {
	cache     map[string]mockCacheServerEntry[T]
	cacheLock sync.Mutex

	// Tick counters are read in busy-wait loops by the clients while
	// processTicks writes them, so they must be atomic
	currentTick       atomic.Int64
	completedThisTick atomic.Int64

	maxTicks      int64
	numGoroutines int64
}

type mockCacheClient[T any] struct {
	server      *mockCacheServer[T]
	desiredTick int
}

func (cacheClient *mockCacheClient[T]) getOrClaim(key string) hitResult[T] {
	cacheClient.server.cacheLock.Lock()
	defer cacheClient.server.cacheLock.Unlock()

	oldValue, ok := cacheClient.server.cache[key]
	if ok {
		return hitResult[T]{
			data:    oldValue.data,
			valid:   oldValue.valid,
			claimed: false,
		}
	}

	cacheClient.server.cache[key] = mockCacheServerEntry[T]{
		valid:      false,
		insertedAt: cacheClient.server.tick(),
	}
	return hitResult[T]{
		valid:   false,
		claimed: true,
	}
}

func (cacheClient *mockCacheClient[T]) set(key string, data T) {
	cacheClient.server.cacheLock.Lock()
	defer cacheClient.server.cacheLock.Unlock()

	cacheClient.server.cache[key] = mockCacheServerEntry[T]{
		data:       data,
		valid:      true,
		insertedAt: cacheClient.server.tick(),
	}
}

func (cacheClient *mockCacheClient[T]) delete(key string) {
	cacheClient.server.cacheLock.Lock()
	defer cacheClient.server.cacheLock.Unlock()

	delete(cacheClient.server.cache, key)
}

func (cacheClient *mockCacheClient[T]) wait() {
	if cacheClient.server.isDone() {
		panic("wait() called on a client that is already done")
	}

	cacheClient.server.completedThisTick.Add(1)

	cacheClient.desiredTick++

	for cacheClient.server.tick() < cacheClient.desiredTick {
		runtime.Gosched()
	}
}

func (cacheClient *mockCacheClient[T]) waitUntilDone() {
	for !cacheClient.server.isDone() {
		cacheClient.wait()
	}
}

func (cacheServer *mockCacheServer[T]) tick() int {
	return int(cacheServer.currentTick.Load())
}

func (cacheServer *mockCacheServer[T]) isDone() bool {
	return cacheServer.currentTick.Load() >= cacheServer.maxTicks
}

func (cacheServer *mockCacheServer[T]) processTicks() {
	for !cacheServer.isDone() {
		if cacheServer.completedThisTick.Load() != cacheServer.numGoroutines {
			runtime.Gosched()
			continue
		}

		// Every client is now spinning on the tick counter, so no wait()
		// can land on completedThisTick until the tick advances. Reset it
		// before advancing so released clients start on a fresh counter.
		cacheServer.completedThisTick.Store(0)
		cacheServer.currentTick.Add(1)
	}
}

func NewMockCacheServer[T any](numGoroutines int, maxTicks int) (*mockCacheServer[T], []*mockCacheClient[T]) {
	server := &mockCacheServer[T]{
		cache:         make(map[string]mockCacheServerEntry[T]),
		maxTicks:      int64(maxTicks),
		numGoroutines: int64(numGoroutines),
	}

	clients := make([]*mockCacheClient[T], numGoroutines)
	for i := range numGoroutines {
		clients[i] = &mockCacheClient[T]{
			server:      server,
			desiredTick: 0,
		}
	}

	return server, clients
}
