package plantrepository

import (
	"context"

	"github.com/verdantlabs/greenhouse/internal/domain"
)

type PlantRepository interface {
	// StorePlants upserts the given plants by ID and notifies active watchers
	StorePlants(ctx context.Context, plants []domain.Plant) error

	GetAll(ctx context.Context) ([]domain.Plant, error)
	GetAllByCategory(ctx context.Context, category string) ([]domain.Plant, error)

	// Watch* return a channel that receives the current snapshot immediately
	// and a fresh snapshot after every store. Delivery is latest-only: a slow
	// receiver skips intermediate snapshots but always gets the newest one.
	// The channel is closed when ctx is cancelled. Cancelling one watcher
	// never affects delivery to other watchers.
	WatchAll(ctx context.Context) (<-chan []domain.Plant, error)
	WatchByCategory(ctx context.Context, category string) (<-chan []domain.Plant, error)
}
