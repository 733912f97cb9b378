package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	impl "github.com/gramseva/mgnrega-dashboard/internal/application/services"
	"github.com/gramseva/mgnrega-dashboard/internal/core/domain/report"
	"github.com/gramseva/mgnrega-dashboard/test/mocks"
)

var patna = report.Location{State: "Bihar", District: "Patna"}

func juneRange() report.PeriodRange {
	return report.PeriodRange{FinYear: "2023-2024", FromMonth: 6, ToMonth: 6}
}

func patnaRecord(month int) *report.PerformanceRecord {
	return &report.PerformanceRecord{
		Location: patna.Normalized(),
		Period:   report.Period{FinYear: "2023-2024", Month: month},
		Metrics:  map[string]float64{"Wages": 123.5, "Total_Households_Worked": 4200},
	}
}

func newLookup(store *mocks.ReportStoreMock, upstream *mocks.UpstreamClientMock) *impl.LookupService {
	return impl.NewLookupService(store, upstream, nil, &impl.LookupConfig{
		MaxStaleness:  30 * 24 * time.Hour,
		MaxConcurrent: 2,
	}, nil)
}

func TestLookup_FetchThenCacheHit(t *testing.T) {
	store := &mocks.ReportStoreMock{}
	upstream := &mocks.UpstreamClientMock{
		FetchFn: func(ctx context.Context, loc report.Location, period report.Period) (*report.PerformanceRecord, error) {
			return patnaRecord(period.Month), nil
		},
	}
	svc := newLookup(store, upstream)

	// First call with an empty cache fetches and writes through.
	result, err := svc.Lookup(context.Background(), patna, juneRange())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := result.Periods[0].Status; got != report.StatusFetched {
		t.Fatalf("expected fetched, got %s", got)
	}
	if upstream.FetchCalls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", upstream.FetchCalls)
	}
	if store.PutCalls != 1 {
		t.Fatalf("expected write-through, got %d puts", store.PutCalls)
	}

	// Second call within TTL is served from cache with zero upstream calls.
	result, err = svc.Lookup(context.Background(), patna, juneRange())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := result.Periods[0].Status; got != report.StatusCacheHit {
		t.Fatalf("expected cache_hit, got %s", got)
	}
	if upstream.FetchCalls != 1 {
		t.Fatalf("expected no further upstream calls, got %d", upstream.FetchCalls)
	}
	if !result.Periods[0].Record.Equal(*patnaRecord(6)) {
		t.Fatalf("cached record differs from fetched record")
	}
}

func TestLookup_FreshEntryNeverCallsUpstream(t *testing.T) {
	store := &mocks.ReportStoreMock{}
	store.Seed(&report.CacheEntry{Record: *patnaRecord(6), FetchedAt: time.Now(), TTL: time.Hour})
	upstream := &mocks.UpstreamClientMock{}
	svc := newLookup(store, upstream)

	result, err := svc.Lookup(context.Background(), patna, juneRange())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := result.Periods[0].Status; got != report.StatusCacheHit {
		t.Fatalf("expected cache_hit, got %s", got)
	}
	if upstream.FetchCalls != 0 {
		t.Fatalf("fresh entry must suppress upstream calls, got %d", upstream.FetchCalls)
	}
}

func TestLookup_RateLimitedFallsBackToStale(t *testing.T) {
	store := &mocks.ReportStoreMock{}
	store.Seed(&report.CacheEntry{Record: *patnaRecord(6), FetchedAt: time.Now().Add(-2 * time.Hour), TTL: time.Hour})
	upstream := &mocks.UpstreamClientMock{
		FetchFn: func(ctx context.Context, loc report.Location, period report.Period) (*report.PerformanceRecord, error) {
			return nil, report.ErrRateLimited
		},
	}
	svc := newLookup(store, upstream)

	result, err := svc.Lookup(context.Background(), patna, juneRange())
	if err != nil {
		t.Fatalf("stale fallback must not surface an error, got %v", err)
	}
	res := result.Periods[0]
	if res.Status != report.StatusStaleFallback {
		t.Fatalf("expected stale_fallback, got %s", res.Status)
	}
	if res.Record == nil || !res.Record.Equal(*patnaRecord(6)) {
		t.Fatalf("stale fallback must carry the cached record")
	}
}

func TestLookup_StaleBeyondBoundIsUnavailable(t *testing.T) {
	store := &mocks.ReportStoreMock{}
	store.Seed(&report.CacheEntry{Record: *patnaRecord(6), FetchedAt: time.Now().Add(-40 * 24 * time.Hour), TTL: time.Hour})
	upstream := &mocks.UpstreamClientMock{
		FetchFn: func(ctx context.Context, loc report.Location, period report.Period) (*report.PerformanceRecord, error) {
			return nil, &report.NetworkError{Err: errors.New("timeout")}
		},
	}
	svc := newLookup(store, upstream)

	_, err := svc.Lookup(context.Background(), patna, juneRange())
	if !errors.Is(err, report.ErrUnavailable) {
		t.Fatalf("indefinitely stale data must not be served, got %v", err)
	}
}

func TestLookup_AllNotFoundReturnsNoData(t *testing.T) {
	store := &mocks.ReportStoreMock{}
	upstream := &mocks.UpstreamClientMock{} // default Fetch returns ErrNotFound
	svc := newLookup(store, upstream)

	rng := report.PeriodRange{FinYear: "2023-2024", FromMonth: 4, ToMonth: 6}
	result, err := svc.Lookup(context.Background(), patna, rng)
	if err != nil {
		t.Fatalf("no_data is a resolution, not a failure; got %v", err)
	}
	if len(result.Periods) != 3 {
		t.Fatalf("expected 3 periods, got %d", len(result.Periods))
	}
	for _, res := range result.Periods {
		if res.Status != report.StatusNoData {
			t.Fatalf("expected no_data for month %d, got %s", res.Period.Month, res.Status)
		}
	}
	if store.PutCalls != 0 {
		t.Fatalf("not-found periods must not be cached")
	}
}

func TestLookup_AllNetworkErrorsWithEmptyCacheIsUnavailable(t *testing.T) {
	store := &mocks.ReportStoreMock{}
	upstream := &mocks.UpstreamClientMock{
		FetchFn: func(ctx context.Context, loc report.Location, period report.Period) (*report.PerformanceRecord, error) {
			return nil, &report.NetworkError{Err: errors.New("connection refused")}
		},
	}
	svc := newLookup(store, upstream)

	rng := report.PeriodRange{FinYear: "2023-2024", FromMonth: 4, ToMonth: 6}
	_, err := svc.Lookup(context.Background(), patna, rng)
	if !errors.Is(err, report.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestLookup_PartialFailureDoesNotAbortBatch(t *testing.T) {
	store := &mocks.ReportStoreMock{}
	upstream := &mocks.UpstreamClientMock{
		FetchFn: func(ctx context.Context, loc report.Location, period report.Period) (*report.PerformanceRecord, error) {
			if period.Month == 5 {
				return nil, &report.NetworkError{Err: errors.New("timeout")}
			}
			return patnaRecord(period.Month), nil
		},
	}
	svc := newLookup(store, upstream)

	rng := report.PeriodRange{FinYear: "2023-2024", FromMonth: 4, ToMonth: 6}
	result, err := svc.Lookup(context.Background(), patna, rng)
	if err != nil {
		t.Fatalf("partial failure must not abort the batch: %v", err)
	}
	statuses := map[int]report.PeriodStatus{}
	for _, res := range result.Periods {
		statuses[res.Period.Month] = res.Status
	}
	if statuses[4] != report.StatusFetched || statuses[6] != report.StatusFetched {
		t.Fatalf("expected months 4 and 6 fetched, got %v", statuses)
	}
	if statuses[5] != report.StatusUnavailable {
		t.Fatalf("expected month 5 unavailable, got %v", statuses[5])
	}
}

func TestLookup_ResultsOrderedChronologically(t *testing.T) {
	store := &mocks.ReportStoreMock{}
	upstream := &mocks.UpstreamClientMock{
		FetchFn: func(ctx context.Context, loc report.Location, period report.Period) (*report.PerformanceRecord, error) {
			return patnaRecord(period.Month), nil
		},
	}
	svc := newLookup(store, upstream)

	// Full financial year: April through March, crossing the calendar
	// year boundary.
	rng := report.PeriodRange{FinYear: "2023-2024", FromMonth: 4, ToMonth: 3}
	result, err := svc.Lookup(context.Background(), patna, rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Periods) != 12 {
		t.Fatalf("expected 12 periods, got %d", len(result.Periods))
	}
	for i := 1; i < len(result.Periods); i++ {
		if !result.Periods[i-1].Period.Before(result.Periods[i].Period) {
			t.Fatalf("periods out of order at index %d: %v then %v", i, result.Periods[i-1].Period, result.Periods[i].Period)
		}
	}
}

func TestLookup_InvalidInputRejected(t *testing.T) {
	svc := newLookup(&mocks.ReportStoreMock{}, &mocks.UpstreamClientMock{})

	if _, err := svc.Lookup(context.Background(), report.Location{State: "Bihar"}, juneRange()); err == nil {
		t.Fatalf("expected error for empty district")
	}
	bad := report.PeriodRange{FinYear: "2023", FromMonth: 4, ToMonth: 6}
	if _, err := svc.Lookup(context.Background(), patna, bad); err == nil {
		t.Fatalf("expected error for malformed financial year")
	}
}
