package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gramseva/mgnrega-dashboard/internal/core/domain/report"
	"github.com/gramseva/mgnrega-dashboard/internal/core/ports"
)

// Utility helpers
func cacheSetSilently(c ports.Cache, ctx context.Context, key string, v any, ttl time.Duration) {
	if c == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.Set(ctx, key, b, ttl)
}

func cacheGet[T any](c ports.Cache, ctx context.Context, key string) (*T, bool) {
	if c == nil {
		return nil, false
	}
	b, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, false
	}
	return &v, true
}

func reportKey(loc report.Location, period report.Period) string {
	loc = loc.Normalized()
	return fmt.Sprintf("report:%s:%s:%s:%d", loc.State, loc.District, period.FinYear, period.Month)
}

// CachingReportStore decorates the durable report store with a Redis hot
// layer. The hot layer only accelerates reads; the database stays the
// source of truth for staleness bookkeeping, and Redis failures degrade
// silently to the database.
type CachingReportStore struct {
	inner  ports.ReportStore
	cache  ports.Cache
	hotTTL time.Duration
}

func NewCachingReportStore(inner ports.ReportStore, cache ports.Cache, hotTTL time.Duration) ports.ReportStore {
	return &CachingReportStore{inner: inner, cache: cache, hotTTL: hotTTL}
}

func (c *CachingReportStore) Get(ctx context.Context, loc report.Location, period report.Period) (*report.CacheEntry, bool, error) {
	key := reportKey(loc, period)
	if v, ok := cacheGet[report.CacheEntry](c.cache, ctx, key); ok {
		return v, true, nil
	}
	entry, found, err := c.inner.Get(ctx, loc, period)
	if err == nil && found {
		cacheSetSilently(c.cache, ctx, key, entry, c.hotTTL)
	}
	return entry, found, err
}

func (c *CachingReportStore) Put(ctx context.Context, rec report.PerformanceRecord) (*report.CacheEntry, error) {
	entry, err := c.inner.Put(ctx, rec)
	if err != nil {
		return nil, err
	}
	cacheSetSilently(c.cache, ctx, reportKey(rec.Location, rec.Period), entry, c.hotTTL)
	return entry, nil
}

func (c *CachingReportStore) PutBatch(ctx context.Context, recs []report.PerformanceRecord) error {
	if err := c.inner.PutBatch(ctx, recs); err != nil {
		return err
	}
	// Drop hot copies rather than recomputing entries; the next read
	// repopulates from the database.
	if c.cache != nil {
		for _, rec := range recs {
			_ = c.cache.Delete(ctx, reportKey(rec.Location, rec.Period))
		}
	}
	return nil
}
