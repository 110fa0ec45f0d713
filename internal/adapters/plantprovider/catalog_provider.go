package plantprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/verdantlabs/greenhouse/internal/domain"
	"github.com/verdantlabs/greenhouse/internal/logging"
	"github.com/verdantlabs/greenhouse/internal/reporting"
)

type catalogPlantProvider struct {
	api CatalogAPI

	metrics catalogPlantProviderMetricsCollection
}

func NewCatalogPlantProvider(api CatalogAPI) (PlantProvider, error) {
	meter := otel.Meter("plantprovider/catalog_provider")
	metrics, err := setupCatalogPlantProviderMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to set up metrics: %w", err)
	}

	return &catalogPlantProvider{
		api:     api,
		metrics: metrics,
	}, nil
}

type plantResponse struct {
	PlantID              string `json:"plant_id"`
	Name                 string `json:"name"`
	Description          string `json:"description"`
	Category             string `json:"category"`
	GrowZoneNumber       int    `json:"grow_zone_number"`
	WateringIntervalDays int    `json:"watering_interval_days"`
	ImageURL             string `json:"image_url"`
}

type plantListResponse struct {
	Plants []plantResponse `json:"plants"`
}

type sortOrderResponse struct {
	PlantIDs []string `json:"plant_ids"`
}

func checkStatusCode(ctx context.Context, statusCode int) error {
	switch {
	case statusCode == http.StatusOK:
		return nil
	case statusCode == http.StatusNotFound:
		return domain.ErrPlantNotFound
	case statusCode == http.StatusTooManyRequests || statusCode >= 500:
		logging.FromContext(ctx).Warn("Catalog API temporarily unavailable", "statusCode", statusCode)
		return fmt.Errorf("%w: catalog API returned %d", domain.ErrTemporarilyUnavailable, statusCode)
	default:
		err := fmt.Errorf("catalog API returned unexpected status code %d", statusCode)
		reporting.Report(ctx, err)
		return err
	}
}

func parsePlantListResponse(ctx context.Context, data []byte) ([]domain.Plant, error) {
	var response plantListResponse
	err := json.Unmarshal(data, &response)
	if err != nil {
		err := fmt.Errorf("failed to parse plant list response: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"contentLength": fmt.Sprintf("%d", len(data)),
		})
		return nil, err
	}

	plants := make([]domain.Plant, 0, len(response.Plants))
	for _, plant := range response.Plants {
		if plant.PlantID == "" {
			err := fmt.Errorf("catalog API returned plant with empty id")
			reporting.Report(ctx, err, map[string]string{
				"name": plant.Name,
			})
			return nil, err
		}
		plants = append(plants, domain.Plant{
			ID:                   plant.PlantID,
			Name:                 plant.Name,
			Description:          plant.Description,
			Category:             plant.Category,
			GrowZoneNumber:       plant.GrowZoneNumber,
			WateringIntervalDays: plant.WateringIntervalDays,
			ImageURL:             plant.ImageURL,
		})
	}
	return plants, nil
}

func (p *catalogPlantProvider) fetchPlants(ctx context.Context, category string) ([]domain.Plant, error) {
	data, statusCode, err := p.api.GetPlants(ctx, category)
	if err != nil {
		// NOTE: CatalogAPI implementations handle their own error reporting
		return nil, fmt.Errorf("%w: failed to get plants: %w", domain.ErrTemporarilyUnavailable, err)
	}

	if err := checkStatusCode(ctx, statusCode); err != nil {
		return nil, err
	}

	plants, err := parsePlantListResponse(ctx, data)
	if err != nil {
		return nil, err
	}

	p.metrics.fetchedPlants.Add(ctx, int64(len(plants)), metric.WithAttributes(attribute.Bool("filtered", category != "")))

	return plants, nil
}

func (p *catalogPlantProvider) FetchAll(ctx context.Context) ([]domain.Plant, error) {
	return p.fetchPlants(ctx, "")
}

func (p *catalogPlantProvider) FetchByCategory(ctx context.Context, category string) ([]domain.Plant, error) {
	return p.fetchPlants(ctx, category)
}

func (p *catalogPlantProvider) FetchSortOrderIDs(ctx context.Context) ([]string, error) {
	data, statusCode, err := p.api.GetSortOrder(ctx)
	if err != nil {
		// NOTE: CatalogAPI implementations handle their own error reporting
		return nil, fmt.Errorf("%w: failed to get sort order: %w", domain.ErrTemporarilyUnavailable, err)
	}

	if err := checkStatusCode(ctx, statusCode); err != nil {
		return nil, err
	}

	var response sortOrderResponse
	err = json.Unmarshal(data, &response)
	if err != nil {
		err := fmt.Errorf("failed to parse sort order response: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"contentLength": fmt.Sprintf("%d", len(data)),
		})
		return nil, err
	}

	p.metrics.sortOrderFetches.Add(ctx, 1)

	return response.PlantIDs, nil
}

type catalogPlantProviderMetricsCollection struct {
	fetchedPlants    metric.Int64Counter
	sortOrderFetches metric.Int64Counter
}

func setupCatalogPlantProviderMetrics(meter metric.Meter) (catalogPlantProviderMetricsCollection, error) {
	fetchedPlants, err := meter.Int64Counter(
		"plantprovider/catalog_provider/fetched_plants",
		metric.WithDescription("Number of plants fetched from the upstream catalog"),
	)
	if err != nil {
		return catalogPlantProviderMetricsCollection{}, fmt.Errorf("failed to create metric: %w", err)
	}

	sortOrderFetches, err := meter.Int64Counter(
		"plantprovider/catalog_provider/sort_order_fetches",
		metric.WithDescription("Number of successful sort-order fetches"),
	)
	if err != nil {
		return catalogPlantProviderMetricsCollection{}, fmt.Errorf("failed to create metric: %w", err)
	}

	return catalogPlantProviderMetricsCollection{
		fetchedPlants:    fetchedPlants,
		sortOrderFetches: sortOrderFetches,
	}, nil
}
