package planner

import (
	"context"
	"sort"

	"github.com/example/settlement-planner/internal/geo"
	"github.com/example/settlement-planner/internal/models"
	geoprov "github.com/example/settlement-planner/internal/providers/geo"
)

// Cluster reorders each day's located tasks so nearby ones sit together,
// starting from the day's first located task and always hopping to the
// nearest unvisited one. Location-free tasks keep their relative order at
// the end of the day. When an external route optimizer is supplied its
// ordering wins; any optimizer failure silently keeps the greedy path.
func Cluster(ctx context.Context, tasks []*models.Task, optimizer geoprov.RouteOptimizer) []*models.Task {
	byDay := map[int][]*models.Task{}
	days := []int{}
	for _, t := range tasks {
		if _, ok := byDay[t.Day]; !ok {
			days = append(days, t.Day)
		}
		byDay[t.Day] = append(byDay[t.Day], t)
	}
	sort.Ints(days)

	out := make([]*models.Task, 0, len(tasks))
	for _, day := range days {
		out = append(out, clusterDay(ctx, byDay[day], optimizer)...)
	}
	return out
}

func clusterDay(ctx context.Context, dayTasks []*models.Task, optimizer geoprov.RouteOptimizer) []*models.Task {
	var located, unlocated []*models.Task
	for _, t := range dayTasks {
		if t.Location != nil {
			located = append(located, t)
		} else {
			unlocated = append(unlocated, t)
		}
	}
	if len(located) > 2 {
		if ordered, ok := optimizedOrder(ctx, located, optimizer); ok {
			located = ordered
		} else {
			located = greedyOrder(located)
		}
	}
	return append(located, unlocated...)
}

func optimizedOrder(ctx context.Context, located []*models.Task, optimizer geoprov.RouteOptimizer) ([]*models.Task, bool) {
	if optimizer == nil {
		return nil, false
	}
	coords := make([][2]float64, len(located))
	for i, t := range located {
		coords[i] = [2]float64{t.Location.Latitude, t.Location.Longitude}
	}
	order, err := optimizer.OptimizeOrder(ctx, coords)
	if err != nil || len(order) != len(located) {
		return nil, false
	}
	seen := make(map[int]bool, len(order))
	ordered := make([]*models.Task, 0, len(located))
	for _, idx := range order {
		if idx < 0 || idx >= len(located) || seen[idx] {
			return nil, false
		}
		seen[idx] = true
		ordered = append(ordered, located[idx])
	}
	return ordered, true
}

func greedyOrder(located []*models.Task) []*models.Task {
	ordered := make([]*models.Task, 0, len(located))
	remaining := append([]*models.Task(nil), located...)

	current := remaining[0]
	ordered = append(ordered, current)
	remaining = remaining[1:]

	for len(remaining) > 0 {
		best := 0
		bestDist := geo.DistanceKm(
			current.Location.Latitude, current.Location.Longitude,
			remaining[0].Location.Latitude, remaining[0].Location.Longitude)
		for i := 1; i < len(remaining); i++ {
			d := geo.DistanceKm(
				current.Location.Latitude, current.Location.Longitude,
				remaining[i].Location.Latitude, remaining[i].Location.Longitude)
			if d < bestDist {
				best, bestDist = i, d
			}
		}
		current = remaining[best]
		ordered = append(ordered, current)
		remaining = append(remaining[:best], remaining[best+1:]...)
	}
	return ordered
}
