package ports

import (
	"context"

	"github.com/gramseva/mgnrega-dashboard/internal/core/domain/report"
)

// UpstreamClient translates (location, period) queries into calls
// against the government open-data API. Implementations are stateless:
// no caching, no retries. Failures map onto the report error taxonomy
// (NetworkError, ErrRateLimited, ErrNotFound, MalformedResponseError).
type UpstreamClient interface {
	// Fetch issues one outbound call for a single location and period.
	Fetch(ctx context.Context, loc report.Location, period report.Period) (*report.PerformanceRecord, error)

	// FetchStateYear bulk-fetches every district record for a state and
	// financial year, following upstream pagination.
	FetchStateYear(ctx context.Context, state, finYear string) ([]report.PerformanceRecord, error)

	// PreviewURL returns the exact upstream URL a fetch would hit, with
	// the API key redacted. Debug aid only.
	PreviewURL(state, finYear string, limit, offset int) string
}

// ReportStore persists performance records keyed by (state, district,
// fin_year, month). Get never performs network I/O. Put is write-through
// and atomic per key: a concurrent reader sees either the old or the new
// entry in full. Entries are never evicted, only flagged stale via TTL,
// so stale data stays available for offline fallback.
type ReportStore interface {
	Get(ctx context.Context, loc report.Location, period report.Period) (*report.CacheEntry, bool, error)
	Put(ctx context.Context, rec report.PerformanceRecord) (*report.CacheEntry, error)
	PutBatch(ctx context.Context, recs []report.PerformanceRecord) error
}

// LookupService is the fetch-cache-serve orchestrator.
type LookupService interface {
	// Lookup resolves every period in the range to a terminal status,
	// ordered chronologically. Partial failures never abort the batch;
	// report.ErrUnavailable is returned only when no period at all could
	// be resolved from cache or upstream.
	Lookup(ctx context.Context, loc report.Location, rng report.PeriodRange) (*report.LookupResult, error)
}

// RefreshService bulk-refreshes the cache for a whole state and
// financial year from the upstream API.
type RefreshService interface {
	RefreshStateYear(ctx context.Context, state, finYear string) (*RefreshSummary, error)
}

// RefreshSummary reports the outcome of a bulk refresh.
type RefreshSummary struct {
	JobID        string `json:"job_id"`
	State        string `json:"state"`
	FinYear      string `json:"fin_year"`
	RecordsSeen  int    `json:"records_seen"`
	RecordsSaved int    `json:"records_saved"`
	NewDistricts int    `json:"new_districts"`
}
