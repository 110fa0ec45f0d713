package ports

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/verdantlabs/greenhouse/internal/app"
	e "github.com/verdantlabs/greenhouse/internal/errors"
	"github.com/verdantlabs/greenhouse/internal/logging"
	"github.com/verdantlabs/greenhouse/internal/ratelimiting"
	"github.com/verdantlabs/greenhouse/internal/reporting"
)

func rateLimitExceededHandler(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())
	statusCode := writeErrorResponse(r.Context(), w, e.RatelimitExceededError)
	logger.Info("Returning response", "statusCode", statusCode, "reason", "ratelimit exceeded")
}

func MakeGetPlantsHandler(
	listPlants app.ListPlants,
	allowedOrigins *DomainSuffixes,
	logger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	rateLimiter, _ := ratelimiting.NewTokenBucketRateLimiter(
		ratelimiting.RefillPerSecond(2),
		ratelimiting.BurstSize(120),
	)
	ipRateLimiter := ratelimiting.NewRequestBasedRateLimiter(rateLimiter, ratelimiting.IPKeyFunc)

	middleware := ComposeMiddlewares(
		logging.NewRequestLoggerMiddleware(logger),
		sentryMiddleware,
		buildMetricsMiddleware(),
		BuildCORSMiddleware(allowedOrigins),
		NewRateLimitMiddleware(ipRateLimiter, rateLimitExceededHandler),
	)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := logging.FromContext(ctx)
		category := r.URL.Query().Get("category")

		plants, err := listPlants(ctx, category)
		if err != nil {
			logger.Error("Error listing plants", "error", err)
			statusCode := writeErrorResponse(ctx, w, err)
			logger.Info("Returning response", "statusCode", statusCode, "reason", "error")
			return
		}

		marshalled, err := json.Marshal(plantsToResponse(plants))
		if err != nil {
			logger.Error("Failed to marshal plant list", "error", err)
			reporting.Report(ctx, err)
			statusCode := writeErrorResponse(ctx, w, e.APIServerError)
			logger.Info("Returning response", "statusCode", statusCode, "reason", "error")
			return
		}

		logger.Info("Returning response", "statusCode", http.StatusOK, "reason", "success", "plantCount", len(plants))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(marshalled)
	}

	return middleware(handler)
}
