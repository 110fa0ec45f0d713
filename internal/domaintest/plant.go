package domaintest

import (
	"fmt"

	"github.com/verdantlabs/greenhouse/internal/domain"
)

type PlantBuilder struct {
	plant domain.Plant
}

func NewPlantBuilder(id string) *PlantBuilder {
	return &PlantBuilder{
		plant: domain.Plant{
			ID:                   id,
			Name:                 fmt.Sprintf("Plant %s", id),
			Description:          fmt.Sprintf("Description for %s", id),
			Category:             "",
			GrowZoneNumber:       9,
			WateringIntervalDays: 7,
			ImageURL:             fmt.Sprintf("https://images.example.com/%s.jpg", id),
		},
	}
}

func (b *PlantBuilder) WithName(name string) *PlantBuilder {
	b.plant.Name = name
	return b
}

func (b *PlantBuilder) WithCategory(category string) *PlantBuilder {
	b.plant.Category = category
	return b
}

func (b *PlantBuilder) WithGrowZone(zone int) *PlantBuilder {
	b.plant.GrowZoneNumber = zone
	return b
}

func (b *PlantBuilder) Build() domain.Plant {
	return b.plant
}
