package plantprovider

import (
	"context"

	"github.com/verdantlabs/greenhouse/internal/domain"
)

type PlantProvider interface {
	// Raises domain.ErrTemporarilyUnavailable if the provider implementation
	// receives an error believed to be intermittent. The call may be retried
	// later.
	FetchAll(ctx context.Context) ([]domain.Plant, error)
	FetchByCategory(ctx context.Context, category string) ([]domain.Plant, error)

	// FetchSortOrderIDs returns the sponsored-plants ranking, earlier ids
	// ranking higher. Same error contract as the other fetches.
	FetchSortOrderIDs(ctx context.Context) ([]string, error)
}
