package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5, cfg.MaxTasksPerDay)
	assert.Equal(t, 2.0, cfg.SearchRadiusKm)
	assert.Equal(t, 0.6, cfg.RelevanceThreshold)
	assert.Equal(t, 3, cfg.MaxExtendedPerAnchor)
	assert.Equal(t, 2, cfg.DedupWindowDays)
	assert.True(t, cfg.ClusterByProximity)
}

func TestFromEnvOverlays(t *testing.T) {
	t.Setenv("MAX_TASKS_PER_DAY", "4")
	t.Setenv("SEARCH_RADIUS_KM", "1.5")
	t.Setenv("RELEVANCE_THRESHOLD", "0.7")
	t.Setenv("PROVIDER_TIMEOUT", "10s")
	t.Setenv("CLUSTER_BY_PROXIMITY", "false")
	t.Setenv("PORT", "9090")

	cfg := FromEnv()
	assert.Equal(t, 4, cfg.MaxTasksPerDay)
	assert.Equal(t, 1.5, cfg.SearchRadiusKm)
	assert.Equal(t, 0.7, cfg.RelevanceThreshold)
	assert.Equal(t, 10*time.Second, cfg.ProviderTimeout)
	assert.False(t, cfg.ClusterByProximity)
	assert.Equal(t, "9090", cfg.Port)
}

func TestFromEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("MAX_TASKS_PER_DAY", "many")
	t.Setenv("PROVIDER_TIMEOUT", "soon")

	cfg := FromEnv()
	assert.Equal(t, Default().MaxTasksPerDay, cfg.MaxTasksPerDay)
	assert.Equal(t, Default().ProviderTimeout, cfg.ProviderTimeout)
}

func TestValidateRejectsBadSettings(t *testing.T) {
	cfg := Default()
	cfg.MaxTasksPerDay = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.SearchRadiusKm = -1
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.RelevanceThreshold = 1.5
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.ProviderTimeout = 0
	assert.Error(t, cfg.Validate())
}
