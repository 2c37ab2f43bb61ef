package geo

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"encoding/json"
)

// categoryTags maps service categories to Overpass tag filters.
var categoryTags = map[string]map[string]string{
	"supermarket":       {"shop": "supermarket"},
	"convenience_store": {"shop": "convenience"},
	"pharmacy":          {"amenity": "pharmacy"},
	"restaurant":        {"amenity": "restaurant"},
	"cafe":              {"amenity": "cafe"},
	"bakery":            {"shop": "bakery"},
	"gym":               {"leisure": "fitness_centre"},
	"clinic":            {"amenity": "clinic"},
	"bank":              {"amenity": "bank"},
	"atm":               {"amenity": "atm"},
	"mall":              {"shop": "mall"},
	"market":            {"amenity": "marketplace"},
}

// OverpassSearcher finds nearby POIs through an Overpass-style endpoint.
// Per-category failures are logged and skipped so one bad category never
// empties the whole search.
type OverpassSearcher struct {
	BaseURL        string
	Client         *http.Client
	PerCategoryMax int

	cache *cache
	pacer *pacer
	log   *slog.Logger
}

// NewOverpassSearcher builds a searcher with the given cache TTL and pacing.
func NewOverpassSearcher(timeout, cacheTTL, pacing time.Duration, log *slog.Logger) *OverpassSearcher {
	base := "https://overpass-api.de/api/interpreter"
	if v := os.Getenv("OVERPASS_API_URL"); v != "" {
		base = strings.TrimRight(v, "/")
	}
	if log == nil {
		log = slog.Default()
	}
	return &OverpassSearcher{
		BaseURL:        base,
		Client:         &http.Client{Timeout: timeout},
		PerCategoryMax: 5,
		cache:          newCache(cacheTTL),
		pacer:          newPacer(pacing),
		log:            log,
	}
}

func (s *OverpassSearcher) Search(ctx context.Context, lat, lon, radiusKm float64, categories []string) ([]Service, error) {
	if len(categories) == 0 {
		categories = []string{"supermarket", "convenience_store", "pharmacy", "cafe", "restaurant"}
	}
	key := cacheKey("nearby", lat, lon, radiusKm, categories)
	if v, ok := s.cache.get(key); ok {
		return v.([]Service), nil
	}

	all := []Service{}
	var failed int
	for _, cat := range categories {
		tags, ok := categoryTags[cat]
		if !ok {
			continue
		}
		services, err := s.queryCategory(ctx, lat, lon, radiusKm, cat, tags)
		if err != nil {
			failed++
			s.log.Warn("nearby search category failed", "category", cat, "error", err)
			continue
		}
		all = append(all, services...)
	}
	if failed == len(categories) && len(all) == 0 {
		return nil, fmt.Errorf("nearby search: all %d categories failed", failed)
	}

	s.cache.put(key, all)
	return all, nil
}

func (s *OverpassSearcher) queryCategory(ctx context.Context, lat, lon, radiusKm float64, category string, tags map[string]string) ([]Service, error) {
	if err := s.pacer.wait(ctx); err != nil {
		return nil, err
	}

	var filter strings.Builder
	for k, v := range tags {
		fmt.Fprintf(&filter, `[%q=%q]`, k, v)
	}
	radiusM := int(radiusKm * 1000)
	query := fmt.Sprintf(`[out:json][timeout:25];
(
  node%[1]s(around:%[2]d,%[3]f,%[4]f);
  way%[1]s(around:%[2]d,%[3]f,%[4]f);
);
out center %[5]d;`, filter.String(), radiusM, lat, lon, s.PerCategoryMax)

	form := url.Values{}
	form.Set("data", query)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	res, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overpass status %d", res.StatusCode)
	}

	var out struct {
		Elements []struct {
			ID     int64   `json:"id"`
			Lat    float64 `json:"lat"`
			Lon    float64 `json:"lon"`
			Center *struct {
				Lat float64 `json:"lat"`
				Lon float64 `json:"lon"`
			} `json:"center"`
			Tags map[string]string `json:"tags"`
		} `json:"elements"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, err
	}

	services := make([]Service, 0, len(out.Elements))
	for _, e := range out.Elements {
		lat2, lon2 := e.Lat, e.Lon
		if e.Center != nil {
			lat2, lon2 = e.Center.Lat, e.Center.Lon
		}
		name := e.Tags["name"]
		if name == "" {
			continue
		}
		services = append(services, Service{
			ID:        fmt.Sprintf("osm_%d", e.ID),
			Name:      name,
			Address:   buildAddress(e.Tags),
			Latitude:  lat2,
			Longitude: lon2,
			Rating:    4.0,
			Category:  category,
		})
		if len(services) >= s.PerCategoryMax {
			break
		}
	}
	return services, nil
}

func buildAddress(tags map[string]string) string {
	parts := []string{}
	for _, k := range []string{"addr:housenumber", "addr:street", "addr:district", "addr:city"} {
		if v := tags[k]; v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}
