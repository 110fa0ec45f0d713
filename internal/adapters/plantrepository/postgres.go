package plantrepository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/verdantlabs/greenhouse/internal/adapters/database"
	"github.com/verdantlabs/greenhouse/internal/config"
	"github.com/verdantlabs/greenhouse/internal/domain"
	"github.com/verdantlabs/greenhouse/internal/reporting"
)

type PostgresPlantRepository struct {
	db      *sqlx.DB
	schema  string
	changes *changeBroadcaster
}

func NewPostgresPlantRepository(db *sqlx.DB, schema string) *PostgresPlantRepository {
	return &PostgresPlantRepository{
		db:      db,
		schema:  schema,
		changes: newChangeBroadcaster(),
	}
}

type dbPlant struct {
	ID                   string `db:"id"`
	Name                 string `db:"name"`
	Description          string `db:"description"`
	Category             string `db:"category"`
	GrowZoneNumber       int    `db:"grow_zone_number"`
	WateringIntervalDays int    `db:"watering_interval_days"`
	ImageURL             string `db:"image_url"`
}

func dbPlantToDomain(plant dbPlant) domain.Plant {
	return domain.Plant{
		ID:                   plant.ID,
		Name:                 plant.Name,
		Description:          plant.Description,
		Category:             plant.Category,
		GrowZoneNumber:       plant.GrowZoneNumber,
		WateringIntervalDays: plant.WateringIntervalDays,
		ImageURL:             plant.ImageURL,
	}
}

func (p *PostgresPlantRepository) plantsTable() string {
	return fmt.Sprintf("%s.plants", pq.QuoteIdentifier(p.schema))
}

func (p *PostgresPlantRepository) StorePlants(ctx context.Context, plants []domain.Plant) error {
	if len(plants) == 0 {
		return nil
	}

	txx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("failed to start transaction: %w", err)
		reporting.Report(ctx, err)
		return err
	}
	defer txx.Rollback()

	upsert := fmt.Sprintf(`INSERT INTO %s
		(id, name, description, category, grow_zone_number, watering_interval_days, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			grow_zone_number = EXCLUDED.grow_zone_number,
			watering_interval_days = EXCLUDED.watering_interval_days,
			image_url = EXCLUDED.image_url`,
		p.plantsTable(),
	)

	for _, plant := range plants {
		if plant.ID == "" {
			err := fmt.Errorf("plant has empty id")
			reporting.Report(ctx, err, map[string]string{
				"name": plant.Name,
			})
			return err
		}

		_, err = txx.ExecContext(ctx, upsert,
			plant.ID,
			plant.Name,
			plant.Description,
			plant.Category,
			plant.GrowZoneNumber,
			plant.WateringIntervalDays,
			plant.ImageURL,
		)
		if err != nil {
			err := fmt.Errorf("failed to upsert plant: %w", err)
			reporting.Report(ctx, err, map[string]string{
				"plantID": plant.ID,
			})
			return err
		}
	}

	err = txx.Commit()
	if err != nil {
		err := fmt.Errorf("failed to commit transaction: %w", err)
		reporting.Report(ctx, err)
		return err
	}

	p.changes.broadcast()

	return nil
}

func (p *PostgresPlantRepository) GetAll(ctx context.Context) ([]domain.Plant, error) {
	query := fmt.Sprintf("SELECT id, name, description, category, grow_zone_number, watering_interval_days, image_url FROM %s ORDER BY name, id", p.plantsTable())

	var dbPlants []dbPlant
	err := p.db.SelectContext(ctx, &dbPlants, query)
	if err != nil {
		err := fmt.Errorf("failed to select plants: %w", err)
		reporting.Report(ctx, err)
		return nil, err
	}

	plants := make([]domain.Plant, 0, len(dbPlants))
	for _, plant := range dbPlants {
		plants = append(plants, dbPlantToDomain(plant))
	}
	return plants, nil
}

func (p *PostgresPlantRepository) GetAllByCategory(ctx context.Context, category string) ([]domain.Plant, error) {
	query := fmt.Sprintf("SELECT id, name, description, category, grow_zone_number, watering_interval_days, image_url FROM %s WHERE category = $1 ORDER BY name, id", p.plantsTable())

	var dbPlants []dbPlant
	err := p.db.SelectContext(ctx, &dbPlants, query, category)
	if err != nil {
		err := fmt.Errorf("failed to select plants by category: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"category": category,
		})
		return nil, err
	}

	plants := make([]domain.Plant, 0, len(dbPlants))
	for _, plant := range dbPlants {
		plants = append(plants, dbPlantToDomain(plant))
	}
	return plants, nil
}

func (p *PostgresPlantRepository) WatchAll(ctx context.Context) (<-chan []domain.Plant, error) {
	return watchSnapshots(ctx, p.changes, p.GetAll), nil
}

func (p *PostgresPlantRepository) WatchByCategory(ctx context.Context, category string) (<-chan []domain.Plant, error) {
	return watchSnapshots(ctx, p.changes, func(ctx context.Context) ([]domain.Plant, error) {
		return p.GetAllByCategory(ctx, category)
	}), nil
}

func NewPostgresPlantRepositoryOrMock(conf config.Config, logger *slog.Logger) (PlantRepository, error) {
	db, err := database.NewPostgresDatabaseFromConfig(conf)
	if err == nil {
		schema := database.GetSchemaName(!conf.IsProduction())
		err = database.NewDatabaseMigrator(db, logger.With("component", "migrator")).Migrate(context.Background(), schema)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		return NewPostgresPlantRepository(db, schema), nil
	}

	if conf.IsDevelopment() {
		logger.Warn("Failed to connect to database. Falling back to in-memory repository.", "error", err.Error())
		return NewInMemoryPlantRepository(), nil
	}

	return nil, fmt.Errorf("failed to connect to database: %w", err)
}
