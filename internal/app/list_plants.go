package app

import (
	"context"
	"fmt"

	"github.com/verdantlabs/greenhouse/internal/adapters/cache"
	"github.com/verdantlabs/greenhouse/internal/adapters/plantrepository"
	"github.com/verdantlabs/greenhouse/internal/domain"
)

// Returns one sponsor-ranked snapshot of the catalog. An empty category means
// the whole catalog.
type ListPlants func(ctx context.Context, category string) ([]domain.Plant, error)

func BuildListPlantsWithSortOrder(
	repo plantrepository.PlantRepository,
	sortOrder *cache.OnceCell[[]string],
) ListPlants {
	return func(ctx context.Context, category string) ([]domain.Plant, error) {
		var plants []domain.Plant
		var err error
		if category == "" {
			plants, err = repo.GetAll(ctx)
		} else {
			plants, err = repo.GetAllByCategory(ctx, category)
		}
		if err != nil {
			// NOTE: PlantRepository implementations handle their own error reporting
			return nil, fmt.Errorf("could not get plants: %w", err)
		}

		return domain.SortPlantsBySponsorOrder(plants, sortOrder.GetOrAwait(ctx)), nil
	}
}
