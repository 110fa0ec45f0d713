package app

import (
	"context"

	"github.com/verdantlabs/greenhouse/internal/adapters/cache"
	"github.com/verdantlabs/greenhouse/internal/adapters/plantprovider"
)

// NewSortOrderCell wraps the provider's sort-order fetch in a single-flight
// memoize-once cell. The first snapshot that needs the ranking triggers the
// fetch; a failed fetch degrades that snapshot to alphabetical order (empty
// fallback) and the next snapshot retries.
//
// One cell is shared by every consumer for the lifetime of the process;
// refreshes never invalidate it.
func NewSortOrderCell(provider plantprovider.PlantProvider) *cache.OnceCell[[]string] {
	return cache.NewOnceCell(func(ctx context.Context) ([]string, error) {
		return provider.FetchSortOrderIDs(ctx)
	}, []string{})
}
