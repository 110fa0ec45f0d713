package main

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/verdantlabs/greenhouse/internal/adapters/database"
	"github.com/verdantlabs/greenhouse/internal/adapters/plantrepository"
	"github.com/verdantlabs/greenhouse/internal/domain"
)

// Seeds the local development database with plants from a JSON file.
//
// Usage: seed-plants <plants.json>

type plantSeed struct {
	PlantID              string `json:"plant_id"`
	Name                 string `json:"name"`
	Description          string `json:"description"`
	Category             string `json:"category"`
	GrowZoneNumber       int    `json:"grow_zone_number"`
	WateringIntervalDays int    `json:"watering_interval_days"`
	ImageURL             string `json:"image_url"`
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("No seed file provided")
	}

	file, err := os.Open(os.Args[1])
	if err != nil {
		log.Fatalf("Failed opening seed file: %v", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Fatalf("Failed reading seed file: %v", err)
	}

	var seeds []plantSeed
	err = json.Unmarshal(data, &seeds)
	if err != nil {
		log.Fatalf("Failed parsing seed file: %v", err)
	}

	if len(seeds) == 0 {
		log.Fatal("Seed file contains no plants")
	}

	plants := make([]domain.Plant, 0, len(seeds))
	for _, seed := range seeds {
		if seed.PlantID == "" {
			log.Fatalf("Plant %q has no plant_id", seed.Name)
		}
		plants = append(plants, domain.Plant{
			ID:                   seed.PlantID,
			Name:                 seed.Name,
			Description:          seed.Description,
			Category:             seed.Category,
			GrowZoneNumber:       seed.GrowZoneNumber,
			WateringIntervalDays: seed.WateringIntervalDays,
			ImageURL:             seed.ImageURL,
		})
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.NewPostgresDatabase(database.LOCAL_CONNECTION_STRING)
	if err != nil {
		log.Fatalf("Failed connecting to local database: %v", err)
	}

	ctx := context.Background()

	schema := database.MAIN_SCHEMA
	err = database.NewDatabaseMigrator(db, logger.With("component", "migrator")).Migrate(ctx, schema)
	if err != nil {
		log.Fatalf("Failed migrating database: %v", err)
	}

	repo := plantrepository.NewPostgresPlantRepository(db, schema)
	err = repo.StorePlants(ctx, plants)
	if err != nil {
		log.Fatalf("Failed storing plants: %v", err)
	}

	log.Printf("Stored %d plants in schema %s", len(plants), schema)
}
