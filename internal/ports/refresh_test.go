package ports_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/verdantlabs/greenhouse/internal/app"
	"github.com/verdantlabs/greenhouse/internal/domain"
	"github.com/verdantlabs/greenhouse/internal/ports"
)

func TestMakeRefreshPlantsHandler(t *testing.T) {
	t.Parallel()

	allowedOrigins, err := ports.NewDomainSuffixes("example.com")
	require.NoError(t, err)

	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	noopMiddleware := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			h(w, r)
		}
	}

	makeRefreshPlants := func(t *testing.T, expectedCategory string, err error) (app.RefreshPlants, *bool) {
		called := false
		return func(ctx context.Context, category string) error {
			t.Helper()
			require.Equal(t, expectedCategory, category)

			called = true

			return err
		}, &called
	}

	makeRefreshPlantsHandler := func(refreshPlants app.RefreshPlants) http.HandlerFunc {
		return ports.MakeRefreshPlantsHandler(
			refreshPlants,
			allowedOrigins,
			testLogger,
			noopMiddleware,
		)
	}

	t.Run("successful refresh", func(t *testing.T) {
		t.Parallel()

		refreshPlantsFunc, called := makeRefreshPlants(t, "", nil)
		handler := makeRefreshPlantsHandler(refreshPlantsFunc)

		req := httptest.NewRequest("POST", "/v1/plants/refresh", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusNoContent, w.Code)
		require.True(t, *called)
	})

	t.Run("category is passed through", func(t *testing.T) {
		t.Parallel()

		refreshPlantsFunc, called := makeRefreshPlants(t, "flower", nil)
		handler := makeRefreshPlantsHandler(refreshPlantsFunc)

		req := httptest.NewRequest("POST", "/v1/plants/refresh?category=flower", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusNoContent, w.Code)
		require.True(t, *called)
	})

	t.Run("GET is rejected", func(t *testing.T) {
		t.Parallel()

		refreshPlantsFunc, called := makeRefreshPlants(t, "", nil)
		handler := makeRefreshPlantsHandler(refreshPlantsFunc)

		req := httptest.NewRequest("GET", "/v1/plants/refresh", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.False(t, *called)
	})

	t.Run("upstream unavailable maps to bad gateway", func(t *testing.T) {
		t.Parallel()

		refreshPlantsFunc, called := makeRefreshPlants(t, "", fmt.Errorf("refresh: %w", domain.ErrTemporarilyUnavailable))
		handler := makeRefreshPlantsHandler(refreshPlantsFunc)

		req := httptest.NewRequest("POST", "/v1/plants/refresh", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadGateway, w.Code)
		require.True(t, *called)
	})
}
