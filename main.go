package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/verdantlabs/greenhouse/internal/adapters/cache"
	"github.com/verdantlabs/greenhouse/internal/adapters/plantprovider"
	"github.com/verdantlabs/greenhouse/internal/adapters/plantrepository"
	"github.com/verdantlabs/greenhouse/internal/app"
	"github.com/verdantlabs/greenhouse/internal/config"
	"github.com/verdantlabs/greenhouse/internal/domain"
	"github.com/verdantlabs/greenhouse/internal/ports"
	"github.com/verdantlabs/greenhouse/internal/reporting"
	"github.com/verdantlabs/greenhouse/internal/telemetry"

	_ "golang.org/x/crypto/x509roots/fallback"
)

// TODO: Put in config
const PROD_DOMAIN_SUFFIX = "verdantlabs.app"
const STAGING_DOMAIN_SUFFIX = "greenhouse-web.pages.dev"

func main() {
	ctx := context.Background()

	instanceID := uuid.New().String()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("instanceID", instanceID)

	fail := func(msg string, args ...any) {
		logger.Error(msg, args...)
		os.Exit(1)
	}

	config, err := config.ConfigFromEnv()
	if err != nil {
		fail("Failed to load config", "error", err.Error())
	}
	logger.Info("Loaded config", "config", config.NonSensitiveString())

	otelShutdown, err := telemetry.SetupOTelSDK(ctx, "greenhouse")
	if err != nil {
		fail("Failed to set up OpenTelemetry SDK", "error", err.Error())
	}
	defer func() {
		err := otelShutdown(context.Background())
		if err != nil {
			logger.Error("Failed to shut down OpenTelemetry SDK", "error", err.Error())
		}
	}()

	httpClient := &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	catalogAPI, err := plantprovider.NewCatalogAPIOrMock(config, httpClient)
	if err != nil {
		fail("Failed to initialize catalog API", "error", err.Error())
	}
	logger.Info("Initialized catalog API")

	plantProvider, err := plantprovider.NewCatalogPlantProvider(catalogAPI)
	if err != nil {
		fail("Failed to initialize plant provider", "error", err.Error())
	}

	sentryMiddleware, flush, err := reporting.NewSentryMiddlewareOrMock(config)
	if err != nil {
		fail("Failed to initialize Sentry", "error", err.Error())
	}
	defer flush()
	logger.Info("Initialized Sentry middleware")

	logger.Info("Initializing plant repository")
	plantRepo, err := plantrepository.NewPostgresPlantRepositoryOrMock(config, logger.With("component", "plantrepository"))
	if err != nil {
		fail("Failed to initialize PlantRepository", "error", err.Error())
	}
	logger.Info("Initialized PlantRepository")

	allowedOrigins, err := ports.NewDomainSuffixes(PROD_DOMAIN_SUFFIX, STAGING_DOMAIN_SUFFIX)
	if err != nil {
		fail("Failed to initialize allowed origins", "error", err.Error())
	}

	sortOrder := app.NewSortOrderCell(plantProvider)

	// Short TTL so bursts of refreshes share one upstream fetch while manual
	// refreshes still get fresh data quickly
	refreshFetchCache := cache.NewTTLCache[[]domain.Plant](30 * time.Second)

	listPlants := app.BuildListPlantsWithSortOrder(plantRepo, sortOrder)
	watchPlants := app.BuildWatchPlantsWithSortOrder(plantRepo, sortOrder)
	refreshPlants := app.BuildRefreshPlants(refreshFetchCache, plantProvider, plantRepo, app.NewAlwaysRefreshPolicy())

	http.HandleFunc(
		"OPTIONS /v1/plants",
		ports.BuildCORSHandler(allowedOrigins),
	)
	http.HandleFunc(
		"GET /v1/plants",
		ports.MakeGetPlantsHandler(
			listPlants,
			allowedOrigins,
			logger.With("port", "plants"),
			sentryMiddleware,
		),
	)

	http.HandleFunc(
		"OPTIONS /v1/plants/watch",
		ports.BuildCORSHandler(allowedOrigins),
	)
	http.HandleFunc(
		"GET /v1/plants/watch",
		ports.MakeWatchPlantsHandler(
			watchPlants,
			allowedOrigins,
			logger.With("port", "watchplants"),
			sentryMiddleware,
		),
	)

	http.HandleFunc(
		"OPTIONS /v1/plants/refresh",
		ports.BuildCORSHandler(allowedOrigins),
	)
	http.HandleFunc(
		"POST /v1/plants/refresh",
		ports.MakeRefreshPlantsHandler(
			refreshPlants,
			allowedOrigins,
			logger.With("port", "refreshplants"),
			sentryMiddleware,
		),
	)

	logger.Info("Init complete")
	err = http.ListenAndServe(fmt.Sprintf(":%s", config.Port()), nil)
	if errors.Is(err, http.ErrServerClosed) {
		logger.Info("Server shutdown")
	} else {
		fail("Server error", "error", err.Error())
	}
}
