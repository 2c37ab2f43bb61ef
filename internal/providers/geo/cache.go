package geo

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// cache is a TTL-bounded result cache. Hits must be indistinguishable from
// fresh calls, so values are stored fully materialized.
type cache struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time
	m   map[string]cacheEntry
}

type cacheEntry struct {
	value   any
	expires time.Time
}

func newCache(ttl time.Duration) *cache {
	return &cache{ttl: ttl, now: time.Now, m: map[string]cacheEntry{}}
}

func (c *cache) get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.m[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expires) {
		delete(c.m, key)
		return nil, false
	}
	return e.value, true
}

func (c *cache) put(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = cacheEntry{value: v, expires: c.now().Add(c.ttl)}
}

// cacheKey builds the lookup key from query text, coordinates rounded to
// four decimals, radius and requested categories.
func cacheKey(query string, lat, lon, radiusKm float64, categories []string) string {
	return fmt.Sprintf("%s|%.4f,%.4f|%.1f|%s",
		strings.ToLower(strings.TrimSpace(query)), lat, lon, radiusKm,
		strings.Join(categories, ","))
}

// pacer enforces a minimum spacing between requests to one provider. All
// concurrent callers share the same gate.
type pacer struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

func newPacer(interval time.Duration) *pacer {
	return &pacer{interval: interval, sleep: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// wait blocks until the spacing since the previous request has elapsed and
// claims the next slot. A cancelled context cuts the delay short.
func (p *pacer) wait(ctx context.Context) error {
	if p.interval <= 0 {
		return ctx.Err()
	}
	p.mu.Lock()
	now := time.Now()
	next := p.last.Add(p.interval)
	var d time.Duration
	if now.Before(next) {
		d = next.Sub(now)
		p.last = next
	} else {
		p.last = now
	}
	p.mu.Unlock()
	if d > 0 {
		return p.sleep(ctx, d)
	}
	return ctx.Err()
}
