package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gramseva/mgnrega-dashboard/internal/core/domain/district"
	"github.com/gramseva/mgnrega-dashboard/internal/core/domain/report"
	"github.com/gramseva/mgnrega-dashboard/internal/core/ports"
)

const defaultTTL = 24 * time.Hour

// UpstreamClientMock is a lightweight mock for UpstreamClient.
type UpstreamClientMock struct {
	FetchFn          func(ctx context.Context, loc report.Location, period report.Period) (*report.PerformanceRecord, error)
	FetchStateYearFn func(ctx context.Context, state, finYear string) ([]report.PerformanceRecord, error)
	PreviewURLFn     func(state, finYear string, limit, offset int) string

	mu         sync.Mutex
	FetchCalls int
}

func (m *UpstreamClientMock) Fetch(ctx context.Context, loc report.Location, period report.Period) (*report.PerformanceRecord, error) {
	m.mu.Lock()
	m.FetchCalls++
	m.mu.Unlock()
	if m.FetchFn != nil {
		return m.FetchFn(ctx, loc, period)
	}
	return nil, report.ErrNotFound
}

func (m *UpstreamClientMock) FetchStateYear(ctx context.Context, state, finYear string) ([]report.PerformanceRecord, error) {
	if m.FetchStateYearFn != nil {
		return m.FetchStateYearFn(ctx, state, finYear)
	}
	return nil, nil
}

func (m *UpstreamClientMock) PreviewURL(state, finYear string, limit, offset int) string {
	if m.PreviewURLFn != nil {
		return m.PreviewURLFn(state, finYear, limit, offset)
	}
	return ""
}

// ReportStoreMock is an in-memory ReportStore. Entries put through it
// are returned by Get, so it doubles as a tiny working store; the Fn
// fields override behavior per test.
type ReportStoreMock struct {
	GetFn      func(ctx context.Context, loc report.Location, period report.Period) (*report.CacheEntry, bool, error)
	PutFn      func(ctx context.Context, rec report.PerformanceRecord) (*report.CacheEntry, error)
	PutBatchFn func(ctx context.Context, recs []report.PerformanceRecord) error

	mu       sync.Mutex
	entries  map[string]*report.CacheEntry
	PutCalls int
}

func key(loc report.Location, period report.Period) string {
	loc = loc.Normalized()
	return fmt.Sprintf("%s|%s|%s|%d", loc.State, loc.District, period.FinYear, period.Month)
}

// Seed places an entry directly into the in-memory store.
func (m *ReportStoreMock) Seed(entry *report.CacheEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = make(map[string]*report.CacheEntry)
	}
	m.entries[key(entry.Record.Location, entry.Record.Period)] = entry
}

func (m *ReportStoreMock) Get(ctx context.Context, loc report.Location, period report.Period) (*report.CacheEntry, bool, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, loc, period)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key(loc, period)]
	return entry, ok, nil
}

func (m *ReportStoreMock) Put(ctx context.Context, rec report.PerformanceRecord) (*report.CacheEntry, error) {
	m.mu.Lock()
	m.PutCalls++
	m.mu.Unlock()
	if m.PutFn != nil {
		return m.PutFn(ctx, rec)
	}
	entry := &report.CacheEntry{Record: rec, FetchedAt: time.Now().UTC(), TTL: defaultTTL}
	m.Seed(entry)
	return entry, nil
}

func (m *ReportStoreMock) PutBatch(ctx context.Context, recs []report.PerformanceRecord) error {
	if m.PutBatchFn != nil {
		return m.PutBatchFn(ctx, recs)
	}
	for _, rec := range recs {
		if _, err := m.Put(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// DistrictRepositoryMock is a lightweight mock for DistrictRepository.
type DistrictRepositoryMock struct {
	UpsertManyFn  func(ctx context.Context, state string, names []string) (int, error)
	ListStatesFn  func(ctx context.Context) ([]string, error)
	ListByStateFn func(ctx context.Context, state string) (*district.StateDistricts, error)
}

func (m *DistrictRepositoryMock) UpsertMany(ctx context.Context, state string, names []string) (int, error) {
	if m.UpsertManyFn != nil {
		return m.UpsertManyFn(ctx, state, names)
	}
	return 0, nil
}

func (m *DistrictRepositoryMock) ListStates(ctx context.Context) ([]string, error) {
	if m.ListStatesFn != nil {
		return m.ListStatesFn(ctx)
	}
	return nil, nil
}

func (m *DistrictRepositoryMock) ListByState(ctx context.Context, state string) (*district.StateDistricts, error) {
	if m.ListByStateFn != nil {
		return m.ListByStateFn(ctx, state)
	}
	return &district.StateDistricts{State: state}, nil
}

// DistrictServiceMock is a lightweight mock for DistrictService.
type DistrictServiceMock struct {
	StatesFn    func(ctx context.Context) ([]string, error)
	DistrictsFn func(ctx context.Context, state string) (*district.StateDistricts, error)
	ObserveFn   func(ctx context.Context, state string, names []string) int
}

func (m *DistrictServiceMock) States(ctx context.Context) ([]string, error) {
	if m.StatesFn != nil {
		return m.StatesFn(ctx)
	}
	return nil, nil
}

func (m *DistrictServiceMock) Districts(ctx context.Context, state string) (*district.StateDistricts, error) {
	if m.DistrictsFn != nil {
		return m.DistrictsFn(ctx, state)
	}
	return &district.StateDistricts{State: state}, nil
}

func (m *DistrictServiceMock) Observe(ctx context.Context, state string, names []string) int {
	if m.ObserveFn != nil {
		return m.ObserveFn(ctx, state, names)
	}
	return 0
}

// LookupServiceMock is a lightweight mock for LookupService.
type LookupServiceMock struct {
	LookupFn func(ctx context.Context, loc report.Location, rng report.PeriodRange) (*report.LookupResult, error)
}

func (m *LookupServiceMock) Lookup(ctx context.Context, loc report.Location, rng report.PeriodRange) (*report.LookupResult, error) {
	if m.LookupFn != nil {
		return m.LookupFn(ctx, loc, rng)
	}
	return &report.LookupResult{Location: loc.Normalized()}, nil
}

// RefreshServiceMock is a lightweight mock for RefreshService.
type RefreshServiceMock struct {
	RefreshStateYearFn func(ctx context.Context, state, finYear string) (*ports.RefreshSummary, error)
}

func (m *RefreshServiceMock) RefreshStateYear(ctx context.Context, state, finYear string) (*ports.RefreshSummary, error) {
	if m.RefreshStateYearFn != nil {
		return m.RefreshStateYearFn(ctx, state, finYear)
	}
	return &ports.RefreshSummary{State: state, FinYear: finYear}, nil
}

// MemoryCache is an in-memory ports.Cache for exercising decorators.
type MemoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	return b, ok, nil
}

func (m *MemoryCache) Set(ctx context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.data[key] = value
	return nil
}

func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
