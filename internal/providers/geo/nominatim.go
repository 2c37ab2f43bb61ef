package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const userAgent = "settlement-planner/1.0"

// NominatimResolver geocodes free-text queries against a Nominatim-style
// endpoint. Results are cached with a bounded TTL and requests share a
// single pacing gate. When the provider is unreachable the curated place
// table answers instead.
type NominatimResolver struct {
	BaseURL string
	Client  *http.Client

	cache *cache
	pacer *pacer
	log   *slog.Logger
}

// NewNominatimResolver builds a resolver with the given cache TTL and
// request pacing.
func NewNominatimResolver(timeout, cacheTTL, pacing time.Duration, log *slog.Logger) *NominatimResolver {
	base := "https://nominatim.openstreetmap.org"
	if v := os.Getenv("GEOCODE_API_URL"); v != "" {
		base = strings.TrimRight(v, "/")
	}
	if log == nil {
		log = slog.Default()
	}
	return &NominatimResolver{
		BaseURL: base,
		Client:  &http.Client{Timeout: timeout},
		cache:   newCache(cacheTTL),
		pacer:   newPacer(pacing),
		log:     log,
	}
}

func (r *NominatimResolver) Resolve(ctx context.Context, query, city string) (*Place, error) {
	full := query
	if city != "" {
		full = query + ", " + city
	}
	key := cacheKey(full, 0, 0, 0, nil)
	if v, ok := r.cache.get(key); ok {
		if v == nil {
			return nil, ErrNotFound
		}
		p := v.(Place)
		return &p, nil
	}

	place, err := r.resolveRemote(ctx, full)
	if err == ErrNotFound {
		// Negative results are deterministic; cache them too.
		r.cache.put(key, nil)
		return nil, ErrNotFound
	}
	if err != nil {
		r.log.Warn("geocode failed, trying curated fallback", "query", query, "error", err)
		if p, ok := fallbackPlace(full); ok {
			return p, nil
		}
		return nil, err
	}
	r.cache.put(key, *place)
	return place, nil
}

func (r *NominatimResolver) resolveRemote(ctx context.Context, query string) (*Place, error) {
	// Two attempts with a short backoff covers the rate-limit blips this
	// endpoint throws; anything longer belongs to the curated fallback.
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(500 * time.Millisecond):
			}
		}
		place, retryable, err := r.query(ctx, query)
		if err == nil {
			return place, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

func (r *NominatimResolver) query(ctx context.Context, query string) (*Place, bool, error) {
	if err := r.pacer.wait(ctx); err != nil {
		return nil, false, err
	}

	q := url.Values{}
	q.Set("format", "json")
	q.Set("q", query)
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.BaseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", userAgent)

	res, err := r.Client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500 {
		return nil, true, fmt.Errorf("geocode status %d", res.StatusCode)
	}
	if res.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("geocode status %d", res.StatusCode)
	}

	var items []struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		DisplayName string `json:"display_name"`
		Type        string `json:"type"`
	}
	if err := json.NewDecoder(res.Body).Decode(&items); err != nil {
		return nil, false, err
	}
	if len(items) == 0 {
		return nil, false, ErrNotFound
	}

	lat, err := strconv.ParseFloat(items[0].Lat, 64)
	if err != nil {
		return nil, false, fmt.Errorf("bad latitude %q", items[0].Lat)
	}
	lon, err := strconv.ParseFloat(items[0].Lon, 64)
	if err != nil {
		return nil, false, fmt.Errorf("bad longitude %q", items[0].Lon)
	}

	return &Place{
		Latitude:    lat,
		Longitude:   lon,
		DisplayName: items[0].DisplayName,
		Type:        items[0].Type,
	}, false, nil
}
