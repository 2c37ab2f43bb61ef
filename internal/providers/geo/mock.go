package geo

import (
	"context"
	"sync"
)

// MockResolver answers from a fixed table. Test helper and offline mode.
type MockResolver struct {
	mu     sync.Mutex
	Places map[string]Place
	Err    error
	Calls  []string
}

func (m *MockResolver) Resolve(ctx context.Context, query, city string) (*Place, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, query)
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if p, ok := m.Places[query]; ok {
		return &p, nil
	}
	return nil, ErrNotFound
}

// MockSearcher returns a fixed service list regardless of location.
type MockSearcher struct {
	Services []Service
	Err      error
}

func (m *MockSearcher) Search(ctx context.Context, lat, lon, radiusKm float64, categories []string) ([]Service, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Services, nil
}
