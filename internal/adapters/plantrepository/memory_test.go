package plantrepository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/verdantlabs/greenhouse/internal/domain"
	"github.com/verdantlabs/greenhouse/internal/domaintest"
)

func receiveSnapshot(t *testing.T, snapshots <-chan []domain.Plant) []domain.Plant {
	t.Helper()

	select {
	case plants, ok := <-snapshots:
		require.True(t, ok, "snapshot channel closed unexpectedly")
		return plants
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func requireClosed(t *testing.T, snapshots <-chan []domain.Plant) {
	t.Helper()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-snapshots:
			if !ok {
				return
			}
			// Drain snapshots delivered before the close
		case <-deadline:
			t.Fatal("timed out waiting for snapshot channel to close")
		}
	}
}

func TestInMemoryPlantRepositoryStoreAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewInMemoryPlantRepository()

	t.Run("empty repository yields empty snapshot", func(t *testing.T) {
		plants, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Empty(t, plants)
	})

	fern := domaintest.NewPlantBuilder("fern-1").WithName("Fern").WithCategory("shade").Build()
	rose := domaintest.NewPlantBuilder("rose-1").WithName("Rose").WithCategory("flower").Build()

	require.NoError(t, repo.StorePlants(ctx, []domain.Plant{fern, rose}))

	t.Run("get all returns stored plants", func(t *testing.T) {
		plants, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Equal(t, []domain.Plant{fern, rose}, plants)
	})

	t.Run("get by category filters", func(t *testing.T) {
		plants, err := repo.GetAllByCategory(ctx, "shade")
		require.NoError(t, err)
		require.Equal(t, []domain.Plant{fern}, plants)

		plants, err = repo.GetAllByCategory(ctx, "unknown")
		require.NoError(t, err)
		require.Empty(t, plants)
	})

	t.Run("store upserts by id", func(t *testing.T) {
		renamed := fern
		renamed.Name = "Boston Fern"
		require.NoError(t, repo.StorePlants(ctx, []domain.Plant{renamed}))

		plants, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, plants, 2)
		require.Equal(t, "Boston Fern", plants[0].Name)
	})

	t.Run("empty id is rejected", func(t *testing.T) {
		err := repo.StorePlants(ctx, []domain.Plant{{Name: "No ID"}})
		require.Error(t, err)
	})

	t.Run("storing nothing is a no-op", func(t *testing.T) {
		require.NoError(t, repo.StorePlants(ctx, nil))
	})
}

func TestInMemoryPlantRepositoryWatch(t *testing.T) {
	t.Parallel()

	t.Run("initial snapshot is delivered immediately", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		repo := NewInMemoryPlantRepository()
		fern := domaintest.NewPlantBuilder("fern-1").WithName("Fern").Build()
		require.NoError(t, repo.StorePlants(ctx, []domain.Plant{fern}))

		snapshots, err := repo.WatchAll(ctx)
		require.NoError(t, err)
		require.Equal(t, []domain.Plant{fern}, receiveSnapshot(t, snapshots))
	})

	t.Run("store triggers a new snapshot", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		repo := NewInMemoryPlantRepository()
		snapshots, err := repo.WatchAll(ctx)
		require.NoError(t, err)
		require.Empty(t, receiveSnapshot(t, snapshots))

		rose := domaintest.NewPlantBuilder("rose-1").WithName("Rose").Build()
		require.NoError(t, repo.StorePlants(ctx, []domain.Plant{rose}))
		require.Equal(t, []domain.Plant{rose}, receiveSnapshot(t, snapshots))
	})

	t.Run("watch by category never emits other categories", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		repo := NewInMemoryPlantRepository()
		snapshots, err := repo.WatchByCategory(ctx, "shade")
		require.NoError(t, err)
		require.Empty(t, receiveSnapshot(t, snapshots))

		fern := domaintest.NewPlantBuilder("fern-1").WithName("Fern").WithCategory("shade").Build()
		rose := domaintest.NewPlantBuilder("rose-1").WithName("Rose").WithCategory("flower").Build()
		require.NoError(t, repo.StorePlants(ctx, []domain.Plant{fern, rose}))

		require.Equal(t, []domain.Plant{fern}, receiveSnapshot(t, snapshots))
	})

	t.Run("slow watcher gets the latest snapshot", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		repo := NewInMemoryPlantRepository()
		snapshots, err := repo.WatchAll(ctx)
		require.NoError(t, err)

		// Do not read between stores: intermediate snapshots may be
		// replaced, but the final state always arrives
		for _, name := range []string{"Aloe", "Basil", "Clover"} {
			plant := domaintest.NewPlantBuilder("plant-1").WithName(name).Build()
			require.NoError(t, repo.StorePlants(ctx, []domain.Plant{plant}))
		}

		deadline := time.After(5 * time.Second)
		for {
			select {
			case plants := <-snapshots:
				if len(plants) == 1 && plants[0].Name == "Clover" {
					return
				}
			case <-deadline:
				t.Fatal("never received the latest snapshot")
			}
		}
	})

	t.Run("cancelling one watcher does not affect another", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		repo := NewInMemoryPlantRepository()

		firstCtx, cancelFirst := context.WithCancel(ctx)
		first, err := repo.WatchAll(firstCtx)
		require.NoError(t, err)

		second, err := repo.WatchAll(ctx)
		require.NoError(t, err)

		require.Empty(t, receiveSnapshot(t, first))
		require.Empty(t, receiveSnapshot(t, second))

		cancelFirst()
		requireClosed(t, first)

		fern := domaintest.NewPlantBuilder("fern-1").WithName("Fern").Build()
		require.NoError(t, repo.StorePlants(ctx, []domain.Plant{fern}))

		require.Equal(t, []domain.Plant{fern}, receiveSnapshot(t, second))
	})
}
