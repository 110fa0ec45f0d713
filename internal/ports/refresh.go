package ports

import (
	"log/slog"
	"net/http"

	"github.com/verdantlabs/greenhouse/internal/app"
	e "github.com/verdantlabs/greenhouse/internal/errors"
	"github.com/verdantlabs/greenhouse/internal/logging"
	"github.com/verdantlabs/greenhouse/internal/ratelimiting"
)

func MakeRefreshPlantsHandler(
	refreshPlants app.RefreshPlants,
	allowedOrigins *DomainSuffixes,
	logger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	rateLimiter, _ := ratelimiting.NewTokenBucketRateLimiter(
		ratelimiting.RefillPerSecond(1),
		ratelimiting.BurstSize(30),
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

		if r.Method != http.MethodPost {
			statusCode := writeErrorResponse(ctx, w, e.APIClientError)
			logger.Info("Returning response", "statusCode", statusCode, "reason", "method not allowed")
			return
		}

		category := r.URL.Query().Get("category")

		err := refreshPlants(ctx, category)
		if err != nil {
			logger.Error("Error refreshing plants", "error", err)
			statusCode := writeErrorResponse(ctx, w, err)
			logger.Info("Returning response", "statusCode", statusCode, "reason", "error")
			return
		}

		logger.Info("Returning response", "statusCode", http.StatusNoContent, "reason", "success")
		w.WriteHeader(http.StatusNoContent)
	}

	return middleware(handler)
}
