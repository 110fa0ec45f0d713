package ports

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/verdantlabs/greenhouse/internal/app"
	e "github.com/verdantlabs/greenhouse/internal/errors"
	"github.com/verdantlabs/greenhouse/internal/logging"
	"github.com/verdantlabs/greenhouse/internal/ratelimiting"
	"github.com/verdantlabs/greenhouse/internal/reporting"
)

// MakeWatchPlantsHandler streams plant list snapshots as server-sent events.
// Each event carries the full re-sorted list, so clients can replace their
// state wholesale on every message.
func MakeWatchPlantsHandler(
	watchPlants app.WatchPlants,
	allowedOrigins *DomainSuffixes,
	logger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	rateLimiter, _ := ratelimiting.NewTokenBucketRateLimiter(
		ratelimiting.RefillPerSecond(1),
		ratelimiting.BurstSize(10),
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

		flusher, ok := w.(http.Flusher)
		if !ok {
			err := fmt.Errorf("%w: response writer does not support flushing", e.APIServerError)
			reporting.Report(ctx, err)
			statusCode := writeErrorResponse(ctx, w, err)
			logger.Info("Returning response", "statusCode", statusCode, "reason", "error")
			return
		}

		snapshots, err := watchPlants(ctx, category)
		if err != nil {
			logger.Error("Error watching plants", "error", err)
			statusCode := writeErrorResponse(ctx, w, err)
			logger.Info("Returning response", "statusCode", statusCode, "reason", "error")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		logger.Info("Started plant stream", "category", category)

		for snapshot := range snapshots {
			marshalled, err := json.Marshal(plantsToResponse(snapshot))
			if err != nil {
				logger.Error("Failed to marshal plant snapshot", "error", err)
				reporting.Report(ctx, err)
				return
			}

			_, err = fmt.Fprintf(w, "data: %s\n\n", marshalled)
			if err != nil {
				// Client went away; the context cancellation closes the channel
				logger.Info("Plant stream write failed", "error", err)
				return
			}
			flusher.Flush()
		}

		logger.Info("Plant stream closed")
	}

	return middleware(handler)
}
