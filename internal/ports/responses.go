package ports

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/verdantlabs/greenhouse/internal/domain"
	e "github.com/verdantlabs/greenhouse/internal/errors"
	"github.com/verdantlabs/greenhouse/internal/logging"
)

type plantResponse struct {
	PlantID              string `json:"plant_id"`
	Name                 string `json:"name"`
	Description          string `json:"description,omitempty"`
	Category             string `json:"category,omitempty"`
	GrowZoneNumber       int    `json:"grow_zone_number,omitempty"`
	WateringIntervalDays int    `json:"watering_interval_days,omitempty"`
	ImageURL             string `json:"image_url,omitempty"`
}

type plantListResponse struct {
	Success bool            `json:"success"`
	Plants  []plantResponse `json:"plants"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Cause   string `json:"cause"`
}

func plantsToResponse(plants []domain.Plant) plantListResponse {
	response := plantListResponse{
		Success: true,
		Plants:  make([]plantResponse, 0, len(plants)),
	}
	for _, plant := range plants {
		response.Plants = append(response.Plants, plantResponse{
			PlantID:              plant.ID,
			Name:                 plant.Name,
			Description:          plant.Description,
			Category:             plant.Category,
			GrowZoneNumber:       plant.GrowZoneNumber,
			WateringIntervalDays: plant.WateringIntervalDays,
			ImageURL:             plant.ImageURL,
		})
	}
	return response
}

func writeErrorResponse(ctx context.Context, w http.ResponseWriter, responseError error) int {
	w.Header().Set("Content-Type", "application/json")

	// Unknown error: default to 500
	statusCode := http.StatusInternalServerError

	switch {
	case errors.Is(responseError, domain.ErrTemporarilyUnavailable), errors.Is(responseError, e.BadGatewayError):
		statusCode = http.StatusBadGateway
	case errors.Is(responseError, domain.ErrPlantNotFound):
		statusCode = http.StatusNotFound
	case errors.Is(responseError, e.APIClientError):
		statusCode = http.StatusBadRequest
	case errors.Is(responseError, e.RatelimitExceededError):
		statusCode = http.StatusTooManyRequests
	case errors.Is(responseError, e.APIServerError):
		statusCode = http.StatusInternalServerError
	}

	errorBytes, err := json.Marshal(errorResponse{
		Success: false,
		Cause:   responseError.Error(),
	})
	if err != nil {
		logging.FromContext(ctx).Error("Failed to marshal error response", "error", err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"cause":"Internal server error (greenhouse)"}`))
		return http.StatusInternalServerError
	}

	w.WriteHeader(statusCode)
	w.Write(errorBytes)
	return statusCode
}
