package plantrepository

import (
	"context"
	"sync"

	"github.com/verdantlabs/greenhouse/internal/domain"
	"github.com/verdantlabs/greenhouse/internal/logging"
	"github.com/verdantlabs/greenhouse/internal/reporting"
)

// changeBroadcaster fans a change signal out to all subscribers. Signals
// carry no payload and coalesce: a subscriber that missed several broadcasts
// wakes up once and re-queries, which is all latest-only delivery needs.
type changeBroadcaster struct {
	mu          sync.Mutex
	subscribers map[chan struct{}]struct{}
}

func newChangeBroadcaster() *changeBroadcaster {
	return &changeBroadcaster{
		subscribers: make(map[chan struct{}]struct{}),
	}
}

func (b *changeBroadcaster) subscribe() chan struct{} {
	signal := make(chan struct{}, 1)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[signal] = struct{}{}

	return signal
}

func (b *changeBroadcaster) unsubscribe(signal chan struct{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscribers, signal)
}

func (b *changeBroadcaster) broadcast() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for signal := range b.subscribers {
		select {
		case signal <- struct{}{}:
		default:
			// Subscriber already has a pending signal
		}
	}
}

// watchSnapshots runs the query once up front and again after every change
// signal, pushing results to the returned channel with latest-only delivery.
func watchSnapshots(
	ctx context.Context,
	changes *changeBroadcaster,
	query func(ctx context.Context) ([]domain.Plant, error),
) <-chan []domain.Plant {
	signal := changes.subscribe()
	snapshots := make(chan []domain.Plant, 1)

	emit := func(plants []domain.Plant) {
		select {
		case snapshots <- plants:
		default:
			// Drop the stale snapshot the receiver hasn't picked up yet.
			// Only this goroutine sends, so the retry cannot block.
			select {
			case <-snapshots:
			default:
			}
			snapshots <- plants
		}
	}

	go func() {
		defer close(snapshots)
		defer changes.unsubscribe(signal)

		for {
			plants, err := query(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logging.FromContext(ctx).Error("Failed to query snapshot for watcher", "error", err.Error())
				reporting.Report(ctx, err)
			} else {
				emit(plants)
			}

			select {
			case <-ctx.Done():
				return
			case <-signal:
			}
		}
	}()

	return snapshots
}
