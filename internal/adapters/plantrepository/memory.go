package plantrepository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/verdantlabs/greenhouse/internal/domain"
)

// InMemoryPlantRepository implements PlantRepository without a database.
// Used as the development fallback and in tests.
type InMemoryPlantRepository struct {
	mu      sync.RWMutex
	plants  map[string]domain.Plant
	changes *changeBroadcaster
}

func NewInMemoryPlantRepository() *InMemoryPlantRepository {
	return &InMemoryPlantRepository{
		plants:  make(map[string]domain.Plant),
		changes: newChangeBroadcaster(),
	}
}

func (r *InMemoryPlantRepository) StorePlants(ctx context.Context, plants []domain.Plant) error {
	if len(plants) == 0 {
		return nil
	}

	r.mu.Lock()
	for _, plant := range plants {
		if plant.ID == "" {
			r.mu.Unlock()
			return fmt.Errorf("plant has empty id")
		}
		r.plants[plant.ID] = plant
	}
	r.mu.Unlock()

	r.changes.broadcast()

	return nil
}

func (r *InMemoryPlantRepository) snapshot(filter func(domain.Plant) bool) []domain.Plant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plants := make([]domain.Plant, 0, len(r.plants))
	for _, plant := range r.plants {
		if filter == nil || filter(plant) {
			plants = append(plants, plant)
		}
	}

	// Same emission order as the postgres implementation
	sort.Slice(plants, func(i, j int) bool {
		if plants[i].Name != plants[j].Name {
			return plants[i].Name < plants[j].Name
		}
		return plants[i].ID < plants[j].ID
	})

	return plants
}

func (r *InMemoryPlantRepository) GetAll(ctx context.Context) ([]domain.Plant, error) {
	return r.snapshot(nil), nil
}

func (r *InMemoryPlantRepository) GetAllByCategory(ctx context.Context, category string) ([]domain.Plant, error) {
	return r.snapshot(func(plant domain.Plant) bool {
		return plant.Category == category
	}), nil
}

func (r *InMemoryPlantRepository) WatchAll(ctx context.Context) (<-chan []domain.Plant, error) {
	return watchSnapshots(ctx, r.changes, r.GetAll), nil
}

func (r *InMemoryPlantRepository) WatchByCategory(ctx context.Context, category string) (<-chan []domain.Plant, error) {
	return watchSnapshots(ctx, r.changes, func(ctx context.Context) ([]domain.Plant, error) {
		return r.GetAllByCategory(ctx, category)
	}), nil
}
