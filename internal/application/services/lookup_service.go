package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/gramseva/mgnrega-dashboard/internal/core/domain/report"
	"github.com/gramseva/mgnrega-dashboard/internal/core/ports"
)

// LookupService is the fetch-cache-serve orchestrator: per period it
// decides cache-hit vs. fetch vs. stale fallback, and aggregates the
// range into an ordered, partial-success result.
type LookupService struct {
	store     ports.ReportStore
	upstream  ports.UpstreamClient
	districts ports.DistrictService
	logger    *logrus.Logger

	maxStale      time.Duration
	maxConcurrent int

	sf  singleflight.Group
	now func() time.Time
}

// LookupConfig groups the orchestrator's tunables.
type LookupConfig struct {
	// MaxStaleness bounds how old a stale entry may be and still serve
	// as fallback when the upstream fails.
	MaxStaleness time.Duration
	// MaxConcurrent bounds parallel upstream fetches within one batch.
	MaxConcurrent int
}

func NewLookupService(store ports.ReportStore, upstream ports.UpstreamClient, districts ports.DistrictService, cfg *LookupConfig, logger *logrus.Logger) *LookupService {
	maxStale := 30 * 24 * time.Hour
	maxConcurrent := 4
	if cfg != nil {
		if cfg.MaxStaleness > 0 {
			maxStale = cfg.MaxStaleness
		}
		if cfg.MaxConcurrent > 0 {
			maxConcurrent = cfg.MaxConcurrent
		}
	}
	return &LookupService{
		store:         store,
		upstream:      upstream,
		districts:     districts,
		logger:        logger,
		maxStale:      maxStale,
		maxConcurrent: maxConcurrent,
		now:           time.Now,
	}
}

// Lookup resolves every period in the range to a terminal status. The
// result is ordered chronologically regardless of completion order.
// Per-period failures are absorbed into status tags; only a range where
// zero periods resolve from either cache or upstream fails with
// report.ErrUnavailable.
func (s *LookupService) Lookup(ctx context.Context, loc report.Location, rng report.PeriodRange) (*report.LookupResult, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	loc = loc.Normalized()

	periods := rng.Periods()
	results := make([]report.PeriodResult, len(periods))

	g := new(errgroup.Group)
	g.SetLimit(s.maxConcurrent)
	for i, period := range periods {
		i, period := i, period
		g.Go(func() error {
			results[i] = s.resolvePeriod(ctx, loc, period)
			return nil
		})
	}
	_ = g.Wait()

	resolved := 0
	for _, res := range results {
		observePeriod(string(res.Status))
		if res.Status.Resolved() {
			resolved++
		}
	}
	if resolved == 0 {
		return nil, report.ErrUnavailable
	}

	return &report.LookupResult{Location: loc, Periods: results}, nil
}

// resolvePeriod runs the per-period state machine to one of its
// terminal states: cache_hit, fetched, stale_fallback, no_data or
// unavailable.
func (s *LookupService) resolvePeriod(ctx context.Context, loc report.Location, period report.Period) report.PeriodResult {
	now := s.now()

	entry, found, err := s.store.Get(ctx, loc, period)
	if err != nil {
		// A broken store read degrades to a miss; the upstream can still
		// answer the period.
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"state": loc.State, "district": loc.District, "fin_year": period.FinYear, "month": period.Month}).WithError(err).Error("cache store read failed")
		}
		found = false
	}

	if found && entry.Fresh(now) {
		observeCacheLookup("hit")
		return report.PeriodResult{Period: period, Status: report.StatusCacheHit, Record: &entry.Record, FetchedAt: entry.FetchedAt}
	}
	if found {
		observeCacheLookup("stale")
	} else {
		observeCacheLookup("miss")
	}

	rec, fetchErr := s.fetchOnce(ctx, loc, period)
	if fetchErr == nil {
		stored, putErr := s.store.Put(ctx, *rec)
		fetchedAt := now
		if putErr != nil {
			// The record is still good for this response even when the
			// write-through fails.
			if s.logger != nil {
				s.logger.WithFields(logrus.Fields{"state": loc.State, "district": loc.District}).WithError(putErr).Error("cache write-through failed")
			}
		} else {
			fetchedAt = stored.FetchedAt
		}
		if s.districts != nil {
			s.districts.Observe(ctx, loc.State, []string{loc.District})
		}
		return report.PeriodResult{Period: period, Status: report.StatusFetched, Record: rec, FetchedAt: fetchedAt}
	}

	if errors.Is(fetchErr, report.ErrNotFound) {
		// Definitive answer from the upstream; not cached.
		return report.PeriodResult{Period: period, Status: report.StatusNoData}
	}

	// Rate-limited, unreachable or malformed: fall back to a stale entry
	// while it is still within the staleness bound.
	var malformed *report.MalformedResponseError
	if errors.As(fetchErr, &malformed) && s.logger != nil {
		s.logger.WithFields(logrus.Fields{"state": loc.State, "district": loc.District, "fin_year": period.FinYear}).WithError(fetchErr).Error("upstream response failed schema parse")
	}
	if found && entry.Usable(now, s.maxStale) {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"state": loc.State, "district": loc.District, "month": period.Month, "fetched_at": entry.FetchedAt}).WithError(fetchErr).Warn("serving stale cache entry as fallback")
		}
		return report.PeriodResult{Period: period, Status: report.StatusStaleFallback, Record: &entry.Record, FetchedAt: entry.FetchedAt}
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"state": loc.State, "district": loc.District, "fin_year": period.FinYear, "month": period.Month}).WithError(fetchErr).Warn("period unavailable")
	}
	return report.PeriodResult{Period: period, Status: report.StatusUnavailable}
}

// fetchOnce coalesces concurrent fetches for the same key so that
// parallel requests for one district and period cost a single upstream
// call.
func (s *LookupService) fetchOnce(ctx context.Context, loc report.Location, period report.Period) (*report.PerformanceRecord, error) {
	key := loc.State + "|" + loc.District + "|" + period.FinYear + "|" + period.MonthName()
	v, err, _ := s.sf.Do(key, func() (any, error) {
		return s.upstream.Fetch(ctx, loc, period)
	})
	if err != nil {
		return nil, err
	}
	return v.(*report.PerformanceRecord), nil
}
