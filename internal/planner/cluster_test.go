package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/settlement-planner/internal/models"
)

func locTask(name string, day int, lat, lon float64) *models.Task {
	return &models.Task{
		Name:     name,
		Day:      day,
		Location: &models.Location{ID: name, Name: name, Latitude: lat, Longitude: lon},
	}
}

func names(tasks []*models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Name
	}
	return out
}

func TestClusterGreedyNearestNeighbor(t *testing.T) {
	// Central, then Mong Kok (far), then Admiralty (near Central): greedy
	// walk from Central visits Admiralty before Mong Kok.
	tasks := []*models.Task{
		locTask("central", 1, 22.2813, 114.1580),
		locTask("mong kok", 1, 22.3193, 114.1694),
		locTask("admiralty", 1, 22.2796, 114.1652),
	}

	out := Cluster(context.Background(), tasks, nil)
	assert.Equal(t, []string{"central", "admiralty", "mong kok"}, names(out))
}

func TestClusterAppendsUnlocatedInOrder(t *testing.T) {
	tasks := []*models.Task{
		{Name: "paperwork-a", Day: 1},
		locTask("central", 1, 22.2813, 114.1580),
		{Name: "paperwork-b", Day: 1},
		locTask("admiralty", 1, 22.2796, 114.1652),
		locTask("mong kok", 1, 22.3193, 114.1694),
	}

	out := Cluster(context.Background(), tasks, nil)
	require.Len(t, out, 5)
	assert.Equal(t, []string{"central", "admiralty", "mong kok", "paperwork-a", "paperwork-b"}, names(out))
}

func TestClusterKeepsDaysSeparate(t *testing.T) {
	tasks := []*models.Task{
		locTask("day2", 2, 22.30, 114.17),
		locTask("day1", 1, 22.28, 114.16),
	}
	out := Cluster(context.Background(), tasks, nil)
	assert.Equal(t, []string{"day1", "day2"}, names(out))
}

type fixedOptimizer struct {
	order []int
	err   error
}

func (f fixedOptimizer) OptimizeOrder(ctx context.Context, coords [][2]float64) ([]int, error) {
	return f.order, f.err
}

func TestClusterUsesOptimizerOrdering(t *testing.T) {
	tasks := []*models.Task{
		locTask("a", 1, 22.2813, 114.1580),
		locTask("b", 1, 22.2796, 114.1652),
		locTask("c", 1, 22.3193, 114.1694),
	}
	out := Cluster(context.Background(), tasks, fixedOptimizer{order: []int{2, 0, 1}})
	assert.Equal(t, []string{"c", "a", "b"}, names(out))
}

func TestClusterFallsBackOnOptimizerError(t *testing.T) {
	tasks := []*models.Task{
		locTask("central", 1, 22.2813, 114.1580),
		locTask("mong kok", 1, 22.3193, 114.1694),
		locTask("admiralty", 1, 22.2796, 114.1652),
	}
	out := Cluster(context.Background(), tasks, fixedOptimizer{err: errors.New("routing down")})
	assert.Equal(t, []string{"central", "admiralty", "mong kok"}, names(out))
}

func TestClusterRejectsBadPermutation(t *testing.T) {
	tasks := []*models.Task{
		locTask("central", 1, 22.2813, 114.1580),
		locTask("mong kok", 1, 22.3193, 114.1694),
		locTask("admiralty", 1, 22.2796, 114.1652),
	}
	out := Cluster(context.Background(), tasks, fixedOptimizer{order: []int{0, 0, 1}})
	assert.Equal(t, []string{"central", "admiralty", "mong kok"}, names(out))
}
