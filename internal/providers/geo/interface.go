// Package geo provides the location-resolution and nearby-POI collaborators
// the planner consumes. Clients here are owned, passed-in objects; nothing is
// process-global.
package geo

import (
	"context"
	"errors"
)

// ErrNotFound marks a query the provider answered but could not place.
// Deterministic; never retried.
var ErrNotFound = errors.New("location not found")

// Place is a resolved coordinate for a free-text query.
type Place struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DisplayName string  `json:"display_name"`
	Type        string  `json:"type,omitempty"`
}

// Service is a nearby point of interest returned by a POI search.
type Service struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Rating      float64 `json:"rating,omitempty"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
}

// Resolver maps a free-text place description to coordinates.
type Resolver interface {
	Resolve(ctx context.Context, query, city string) (*Place, error)
}

// NearbySearcher finds services of the given categories around a point.
// Partial category failures are tolerated: whatever succeeded is returned.
type NearbySearcher interface {
	Search(ctx context.Context, lat, lon, radiusKm float64, categories []string) ([]Service, error)
}

// RouteOptimizer reorders a coordinate list for travel efficiency. Optional;
// on failure the caller's own greedy ordering is the fallback.
type RouteOptimizer interface {
	OptimizeOrder(ctx context.Context, coords [][2]float64) ([]int, error)
}
