package app

import (
	"context"
	"fmt"

	"github.com/verdantlabs/greenhouse/internal/adapters/cache"
	"github.com/verdantlabs/greenhouse/internal/adapters/plantrepository"
	"github.com/verdantlabs/greenhouse/internal/domain"
)

// Produces a stream of sponsor-ranked catalog snapshots: the current one
// immediately, then a fresh one after every store. The channel closes when
// ctx is cancelled. An empty category means the whole catalog.
type WatchPlants func(ctx context.Context, category string) (<-chan []domain.Plant, error)

func BuildWatchPlantsWithSortOrder(
	repo plantrepository.PlantRepository,
	sortOrder *cache.OnceCell[[]string],
) WatchPlants {
	return func(ctx context.Context, category string) (<-chan []domain.Plant, error) {
		var snapshots <-chan []domain.Plant
		var err error
		if category == "" {
			snapshots, err = repo.WatchAll(ctx)
		} else {
			snapshots, err = repo.WatchByCategory(ctx, category)
		}
		if err != nil {
			// NOTE: PlantRepository implementations handle their own error reporting
			return nil, fmt.Errorf("could not watch plants: %w", err)
		}

		sorted := make(chan []domain.Plant, 1)

		// Ranking and sorting run here, never on the subscriber's goroutine
		go func() {
			defer close(sorted)
			for plants := range snapshots {
				ranked := domain.SortPlantsBySponsorOrder(plants, sortOrder.GetOrAwait(ctx))

				// Latest-only: replace an unconsumed snapshot instead of
				// blocking on a slow subscriber. We are the only sender, so
				// the retry after draining cannot block.
				select {
				case sorted <- ranked:
				default:
					select {
					case <-sorted:
					default:
					}
					sorted <- ranked
				}
			}
		}()

		return sorted, nil
	}
}
