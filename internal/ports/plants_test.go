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
	"github.com/verdantlabs/greenhouse/internal/domaintest"
	"github.com/verdantlabs/greenhouse/internal/ports"
)

func TestMakeGetPlantsHandler(t *testing.T) {
	t.Parallel()

	allowedOrigins, err := ports.NewDomainSuffixes("example.com", "test.com")
	require.NoError(t, err)

	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	noopMiddleware := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			h(w, r)
		}
	}

	makeListPlants := func(t *testing.T, expectedCategory string, plants []domain.Plant, err error) (app.ListPlants, *bool) {
		called := false
		return func(ctx context.Context, category string) ([]domain.Plant, error) {
			t.Helper()
			require.Equal(t, expectedCategory, category)

			called = true

			return plants, err
		}, &called
	}

	makeGetPlantsHandler := func(listPlants app.ListPlants) http.HandlerFunc {
		return ports.MakeGetPlantsHandler(
			listPlants,
			allowedOrigins,
			testLogger,
			noopMiddleware,
		)
	}

	plants := []domain.Plant{
		domaintest.NewPlantBuilder("malus-pumila").
			WithName("Apple").
			WithCategory("fruit").
			Build(),
		domaintest.NewPlantBuilder("beta-vulgaris").
			WithName("Beet").
			WithCategory("vegetable").
			Build(),
	}

	t.Run("successful plant listing", func(t *testing.T) {
		t.Parallel()

		listPlantsFunc, called := makeListPlants(t, "", plants, nil)
		handler := makeGetPlantsHandler(listPlantsFunc)

		req := httptest.NewRequest("GET", "/v1/plants", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "application/json", w.Header().Get("Content-Type"))
		require.True(t, *called)

		body := w.Body.String()
		require.Contains(t, body, `"success":true`)
		require.Contains(t, body, `"plant_id":"malus-pumila"`)
		require.Contains(t, body, `"name":"Apple"`)
		require.Contains(t, body, `"plant_id":"beta-vulgaris"`)
	})

	t.Run("category is passed through", func(t *testing.T) {
		t.Parallel()

		listPlantsFunc, called := makeListPlants(t, "fruit", plants[:1], nil)
		handler := makeGetPlantsHandler(listPlantsFunc)

		req := httptest.NewRequest("GET", "/v1/plants?category=fruit", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		require.True(t, *called)
	})

	t.Run("empty listing returns empty array", func(t *testing.T) {
		t.Parallel()

		listPlantsFunc, called := makeListPlants(t, "", []domain.Plant{}, nil)
		handler := makeGetPlantsHandler(listPlantsFunc)

		req := httptest.NewRequest("GET", "/v1/plants", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		require.True(t, *called)
		require.JSONEq(t, `{"success":true,"plants":[]}`, w.Body.String())
	})

	t.Run("upstream unavailable maps to bad gateway", func(t *testing.T) {
		t.Parallel()

		listPlantsFunc, called := makeListPlants(t, "", nil, fmt.Errorf("listing: %w", domain.ErrTemporarilyUnavailable))
		handler := makeGetPlantsHandler(listPlantsFunc)

		req := httptest.NewRequest("GET", "/v1/plants", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadGateway, w.Code)
		require.True(t, *called)
		require.Contains(t, w.Body.String(), `"success":false`)
	})

	t.Run("unknown error maps to internal server error", func(t *testing.T) {
		t.Parallel()

		listPlantsFunc, called := makeListPlants(t, "", nil, fmt.Errorf("something broke"))
		handler := makeGetPlantsHandler(listPlantsFunc)

		req := httptest.NewRequest("GET", "/v1/plants", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusInternalServerError, w.Code)
		require.True(t, *called)
	})
}
