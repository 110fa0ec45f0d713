package app

import (
	"context"
	"fmt"
	"time"

	"github.com/verdantlabs/greenhouse/internal/adapters/cache"
	"github.com/verdantlabs/greenhouse/internal/adapters/plantprovider"
	"github.com/verdantlabs/greenhouse/internal/adapters/plantrepository"
	"github.com/verdantlabs/greenhouse/internal/domain"
	"github.com/verdantlabs/greenhouse/internal/logging"
)

// Fetches fresh catalog data from the upstream and upserts it into the
// repository. An empty category refreshes the whole catalog. May skip the
// fetch entirely when the configured policy decides the data is fresh enough,
// or when another refresh of the same scope recently fetched it.
//
// Refreshing never touches the sort-order cell.
type RefreshPlants func(ctx context.Context, category string) error

func refreshScope(category string) string {
	if category == "" {
		return "all"
	}
	return fmt.Sprintf("category:%s", category)
}

func BuildRefreshPlants(
	fetchCache cache.Cache[[]domain.Plant],
	provider plantprovider.PlantProvider,
	repo plantrepository.PlantRepository,
	policy RefreshPolicy,
) RefreshPlants {
	return func(ctx context.Context, category string) error {
		scope := refreshScope(category)

		if !policy.ShouldRefresh(scope) {
			logging.FromContext(ctx).Info("Skipping refresh", "scope", scope)
			return nil
		}

		// Bursts of refreshes for the same scope share one upstream fetch
		_, err := cache.GetOrCreate(ctx, fetchCache, scope, func() ([]domain.Plant, error) {
			var plants []domain.Plant
			var err error
			if category == "" {
				plants, err = provider.FetchAll(ctx)
			} else {
				plants, err = provider.FetchByCategory(ctx, category)
			}
			if err != nil {
				// NOTE: PlantProvider implementations handle their own error reporting
				return nil, fmt.Errorf("could not fetch plants: %w", err)
			}

			// Ignore cancellations from the request context and try to store
			// the data anyway. Take a maximum of 1 second to not block the
			// request for too long
			storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 1*time.Second)
			defer cancel()
			err = repo.StorePlants(storeCtx, plants)
			if err != nil {
				// NOTE: PlantRepository implementations handle their own error reporting
				return nil, fmt.Errorf("could not store plants: %w", err)
			}

			policy.RecordRefresh(scope)

			logging.FromContext(ctx).Info("Refreshed plants", "scope", scope, "count", len(plants))

			return plants, nil
		})

		return err
	}
}
