package app

import (
	"context"
	"sync"
	"testing"

	"github.com/verdantlabs/greenhouse/internal/domain"
)

type panicPlantProvider struct {
	t *testing.T
}

func (p *panicPlantProvider) FetchAll(ctx context.Context) ([]domain.Plant, error) {
	p.t.Helper()
	p.t.Fatal("should not be called")
	return nil, nil
}

func (p *panicPlantProvider) FetchByCategory(ctx context.Context, category string) ([]domain.Plant, error) {
	p.t.Helper()
	p.t.Fatal("should not be called")
	return nil, nil
}

func (p *panicPlantProvider) FetchSortOrderIDs(ctx context.Context) ([]string, error) {
	p.t.Helper()
	p.t.Fatal("should not be called")
	return nil, nil
}

type mockedPlantProvider struct {
	mu sync.Mutex

	plants    []domain.Plant
	plantsErr error

	sortOrder    []string
	sortOrderErr error

	fetchCalls     int
	sortOrderCalls int

	lastCategory string
}

func (m *mockedPlantProvider) FetchAll(ctx context.Context) ([]domain.Plant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchCalls++
	m.lastCategory = ""
	return m.plants, m.plantsErr
}

func (m *mockedPlantProvider) FetchByCategory(ctx context.Context, category string) ([]domain.Plant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchCalls++
	m.lastCategory = category

	filtered := make([]domain.Plant, 0, len(m.plants))
	for _, plant := range m.plants {
		if plant.Category == category {
			filtered = append(filtered, plant)
		}
	}
	return filtered, m.plantsErr
}

func (m *mockedPlantProvider) FetchSortOrderIDs(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sortOrderCalls++
	return m.sortOrder, m.sortOrderErr
}

func (m *mockedPlantProvider) sortOrderCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortOrderCalls
}

func (m *mockedPlantProvider) fetchCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchCalls
}
