package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSearcher(baseURL string) *OverpassSearcher {
	return &OverpassSearcher{
		BaseURL:        baseURL,
		Client:         &http.Client{Timeout: 2 * time.Second},
		PerCategoryMax: 5,
		cache:          newCache(time.Minute),
		pacer:          newPacer(0),
		log:            quietLogger(),
	}
}

const overpassBody = `{"elements": [
  {"id": 101, "lat": 22.2815, "lon": 114.1585,
   "tags": {"name": "Wellcome", "addr:street": "Queen's Road", "addr:city": "Central"}},
  {"id": 102, "center": {"lat": 22.2820, "lon": 114.1590},
   "tags": {"name": "ParknShop"}},
  {"id": 103, "lat": 22.2822, "lon": 114.1592, "tags": {}}
]}`

func TestSearchParsesElements(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Contains(t, r.Form.Get("data"), "shop")
		w.Write([]byte(overpassBody))
	}))
	defer srv.Close()

	s := newTestSearcher(srv.URL)
	services, err := s.Search(context.Background(), 22.2813, 114.1580, 2.0, []string{"supermarket"})
	require.NoError(t, err)
	// The unnamed element is skipped.
	require.Len(t, services, 2)

	assert.Equal(t, "osm_101", services[0].ID)
	assert.Equal(t, "Wellcome", services[0].Name)
	assert.Equal(t, "Queen's Road, Central", services[0].Address)
	assert.Equal(t, "supermarket", services[0].Category)

	// Ways use their computed center.
	assert.InDelta(t, 22.2820, services[1].Latitude, 1e-6)
}

func TestSearchToleratesPartialCategoryFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if strings.Contains(r.Form.Get("data"), "pharmacy") {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(overpassBody))
	}))
	defer srv.Close()

	s := newTestSearcher(srv.URL)
	services, err := s.Search(context.Background(), 22.2813, 114.1580, 2.0, []string{"supermarket", "pharmacy"})
	require.NoError(t, err)
	assert.Len(t, services, 2)
}

func TestSearchErrorsWhenEveryCategoryFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := newTestSearcher(srv.URL)
	_, err := s.Search(context.Background(), 22.2813, 114.1580, 2.0, []string{"supermarket", "pharmacy"})
	assert.Error(t, err)
}

func TestSearchServesFromCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(overpassBody))
	}))
	defer srv.Close()

	s := newTestSearcher(srv.URL)
	ctx := context.Background()

	first, err := s.Search(ctx, 22.2813, 114.1580, 2.0, []string{"supermarket"})
	require.NoError(t, err)
	second, err := s.Search(ctx, 22.2813, 114.1580, 2.0, []string{"supermarket"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
}
