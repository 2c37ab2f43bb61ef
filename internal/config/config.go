// Package config loads planner settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config carries every tunable the planning pipeline reads. Zero values are
// filled by Default; Validate rejects settings the scheduler cannot honor.
type Config struct {
	// MaxTasksPerDay is the daily workload ceiling enforced by the load
	// balancer. Essential and core tasks may exceed it; extended tasks never.
	MaxTasksPerDay int

	// SearchRadiusKm bounds the nearby-amenity search around anchor tasks.
	SearchRadiusKm float64

	// RelevanceThreshold drops extended candidates scoring below it.
	RelevanceThreshold float64

	// MaxExtendedPerAnchor caps suggestions generated per anchor task.
	MaxExtendedPerAnchor int

	// DedupWindowDays is the rolling window within which two extended tasks
	// sharing a (category, neighborhood) footprint count as duplicates.
	DedupWindowDays int

	// ProviderTimeout bounds each external call (LLM, geocode, POI search).
	ProviderTimeout time.Duration

	// GeocodePacing is the minimum spacing between requests to the same
	// provider, shared across concurrent callers.
	GeocodePacing time.Duration

	// GeocodeCacheTTL bounds how long a geocode result is served from cache.
	GeocodeCacheTTL time.Duration

	// ClusterByProximity enables the optional within-day route ordering pass.
	ClusterByProximity bool

	Port string
}

// Default returns the settings used when the environment is silent.
func Default() Config {
	return Config{
		MaxTasksPerDay:       5,
		SearchRadiusKm:       2.0,
		RelevanceThreshold:   0.6,
		MaxExtendedPerAnchor: 3,
		DedupWindowDays:      2,
		ProviderTimeout:      30 * time.Second,
		GeocodePacing:        200 * time.Millisecond,
		GeocodeCacheTTL:      15 * time.Minute,
		ClusterByProximity:   true,
		Port:                 "8080",
	}
}

// FromEnv overlays environment variables onto the defaults.
func FromEnv() Config {
	cfg := Default()
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if n, ok := envInt("MAX_TASKS_PER_DAY"); ok {
		cfg.MaxTasksPerDay = n
	}
	if f, ok := envFloat("SEARCH_RADIUS_KM"); ok {
		cfg.SearchRadiusKm = f
	}
	if f, ok := envFloat("RELEVANCE_THRESHOLD"); ok {
		cfg.RelevanceThreshold = f
	}
	if n, ok := envInt("MAX_EXTENDED_PER_ANCHOR"); ok {
		cfg.MaxExtendedPerAnchor = n
	}
	if n, ok := envInt("DEDUP_WINDOW_DAYS"); ok {
		cfg.DedupWindowDays = n
	}
	if d, ok := envDuration("PROVIDER_TIMEOUT"); ok {
		cfg.ProviderTimeout = d
	}
	if d, ok := envDuration("GEOCODE_PACING"); ok {
		cfg.GeocodePacing = d
	}
	if d, ok := envDuration("GEOCODE_CACHE_TTL"); ok {
		cfg.GeocodeCacheTTL = d
	}
	if v := os.Getenv("CLUSTER_BY_PROXIMITY"); v == "0" || v == "false" {
		cfg.ClusterByProximity = false
	}
	return cfg
}

// Validate reports the first setting the pipeline cannot run with.
func (c Config) Validate() error {
	if c.MaxTasksPerDay < 1 {
		return fmt.Errorf("max tasks per day must be at least 1, got %d", c.MaxTasksPerDay)
	}
	if c.SearchRadiusKm <= 0 {
		return fmt.Errorf("search radius must be positive, got %f", c.SearchRadiusKm)
	}
	if c.RelevanceThreshold < 0 || c.RelevanceThreshold > 1 {
		return fmt.Errorf("relevance threshold must be in [0,1], got %f", c.RelevanceThreshold)
	}
	if c.DedupWindowDays < 0 {
		return fmt.Errorf("dedup window must be non-negative, got %d", c.DedupWindowDays)
	}
	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("provider timeout must be positive, got %s", c.ProviderTimeout)
	}
	return nil
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envFloat(key string) (float64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func envDuration(key string) (time.Duration, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, false
	}
	return d, true
}
