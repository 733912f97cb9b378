package report

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MonthCumulative marks the annual cumulative record rather than a calendar month.
const MonthCumulative = 0

// Location identifies the subject of a query. The upstream dataset stores
// state and district names in upper case, so the canonical form used for
// cache keys is upper-cased and trimmed.
type Location struct {
	State    string `json:"state"`
	District string `json:"district"`
}

// Normalized returns the canonical form used for key matching.
func (l Location) Normalized() Location {
	return Location{
		State:    strings.ToUpper(strings.TrimSpace(l.State)),
		District: strings.ToUpper(strings.TrimSpace(l.District)),
	}
}

// Validate checks that both fields are non-empty after trimming.
func (l Location) Validate() error {
	if strings.TrimSpace(l.State) == "" {
		return fmt.Errorf("location state must not be empty")
	}
	if strings.TrimSpace(l.District) == "" {
		return fmt.Errorf("location district must not be empty")
	}
	return nil
}

var finYearPattern = regexp.MustCompile(`^(\d{4})-(\d{4})$`)

// ValidateFinYear checks the Indian financial year convention, e.g. "2023-2024".
func ValidateFinYear(finYear string) error {
	m := finYearPattern.FindStringSubmatch(finYear)
	if m == nil {
		return fmt.Errorf("financial year %q must match YYYY-YYYY", finYear)
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	if end != start+1 {
		return fmt.Errorf("financial year %q must span consecutive years", finYear)
	}
	return nil
}

// Period identifies a reporting period: a financial year plus either a
// calendar month (1-12) or MonthCumulative for the year-to-date record.
type Period struct {
	FinYear string `json:"fin_year"`
	Month   int    `json:"month"`
}

func (p Period) Validate() error {
	if err := ValidateFinYear(p.FinYear); err != nil {
		return err
	}
	if p.Month < MonthCumulative || p.Month > 12 {
		return fmt.Errorf("month %d out of range", p.Month)
	}
	return nil
}

// FiscalIndex orders periods within a financial year: April is first,
// March last, and the cumulative record sorts after all months.
func (p Period) FiscalIndex() int {
	if p.Month == MonthCumulative {
		return 13
	}
	if p.Month >= 4 {
		return p.Month - 3
	}
	return p.Month + 9
}

// Before reports whether p is chronologically earlier than other.
// Financial years compare lexically, which is correct for YYYY-YYYY.
func (p Period) Before(other Period) bool {
	if p.FinYear != other.FinYear {
		return p.FinYear < other.FinYear
	}
	return p.FiscalIndex() < other.FiscalIndex()
}

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthName returns the English month name the upstream dataset uses,
// or "Cumulative" for the annual record.
func (p Period) MonthName() string {
	if p.Month == MonthCumulative {
		return "Cumulative"
	}
	return monthNames[p.Month-1]
}

// ParseMonth maps an upstream month value (full name or three-letter
// abbreviation, any case) to its calendar index. ok is false for
// unrecognized values, including the cumulative marker.
func ParseMonth(name string) (int, bool) {
	n := strings.TrimSpace(name)
	if len(n) < 3 {
		return 0, false
	}
	prefix := strings.ToLower(n[:3])
	for i, m := range monthNames {
		if strings.ToLower(m[:3]) == prefix {
			return i + 1, true
		}
	}
	return 0, false
}

// PeriodRange is a contiguous range of months within one financial year.
// FromMonth == ToMonth == MonthCumulative requests the cumulative record only.
type PeriodRange struct {
	FinYear   string `json:"fin_year"`
	FromMonth int    `json:"from_month"`
	ToMonth   int    `json:"to_month"`
}

func (r PeriodRange) Validate() error {
	if err := ValidateFinYear(r.FinYear); err != nil {
		return err
	}
	if r.FromMonth == MonthCumulative && r.ToMonth == MonthCumulative {
		return nil
	}
	if r.FromMonth < 1 || r.FromMonth > 12 || r.ToMonth < 1 || r.ToMonth > 12 {
		return fmt.Errorf("month range %d-%d out of range", r.FromMonth, r.ToMonth)
	}
	from := Period{FinYear: r.FinYear, Month: r.FromMonth}
	to := Period{FinYear: r.FinYear, Month: r.ToMonth}
	if to.FiscalIndex() < from.FiscalIndex() {
		return fmt.Errorf("month range ends before it starts (fiscal order runs April through March)")
	}
	return nil
}

// Periods expands the range into chronologically ordered periods.
func (r PeriodRange) Periods() []Period {
	if r.FromMonth == MonthCumulative && r.ToMonth == MonthCumulative {
		return []Period{{FinYear: r.FinYear, Month: MonthCumulative}}
	}
	from := Period{FinYear: r.FinYear, Month: r.FromMonth}
	to := Period{FinYear: r.FinYear, Month: r.ToMonth}
	periods := make([]Period, 0, to.FiscalIndex()-from.FiscalIndex()+1)
	for idx := from.FiscalIndex(); idx <= to.FiscalIndex(); idx++ {
		// fiscal index 1 is April
		month := idx + 3
		if month > 12 {
			month -= 12
		}
		periods = append(periods, Period{FinYear: r.FinYear, Month: month})
	}
	return periods
}

// PerformanceRecord is one district's metrics for one reporting period.
// Metric names come from the upstream provider and are passed through
// unchanged. Records are immutable once cached; a refresh replaces the
// whole record, it never merges partial metric sets.
type PerformanceRecord struct {
	Location Location           `json:"location"`
	Period   Period             `json:"period"`
	Metrics  map[string]float64 `json:"metrics"`
}

// Equal reports whether two records carry identical data.
func (r PerformanceRecord) Equal(other PerformanceRecord) bool {
	if r.Location != other.Location || r.Period != other.Period {
		return false
	}
	if len(r.Metrics) != len(other.Metrics) {
		return false
	}
	for k, v := range r.Metrics {
		ov, ok := other.Metrics[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// CacheEntry wraps a cached record with its freshness bookkeeping.
// Entries expire into staleness but are never deleted: stale data is
// still served when the upstream is unreachable.
type CacheEntry struct {
	Record    PerformanceRecord `json:"record"`
	FetchedAt time.Time         `json:"fetched_at"`
	TTL       time.Duration     `json:"ttl"`
}

// Fresh reports whether the entry is within its TTL at now.
func (e *CacheEntry) Fresh(now time.Time) bool {
	return now.Before(e.FetchedAt.Add(e.TTL))
}

// Usable reports whether a stale entry may still be served as fallback.
// Entries older than maxStale are treated as unusable rather than being
// served indefinitely.
func (e *CacheEntry) Usable(now time.Time, maxStale time.Duration) bool {
	if maxStale <= 0 {
		return true
	}
	return now.Before(e.FetchedAt.Add(maxStale))
}

// PeriodStatus is the terminal resolution state of one period within a
// lookup request.
type PeriodStatus string

const (
	StatusCacheHit      PeriodStatus = "cache_hit"
	StatusFetched       PeriodStatus = "fetched"
	StatusStaleFallback PeriodStatus = "stale_fallback"
	StatusNoData        PeriodStatus = "no_data"
	StatusUnavailable   PeriodStatus = "unavailable"
)

// Resolved reports whether the period produced either data or a
// definitive "no data exists" answer.
func (s PeriodStatus) Resolved() bool {
	return s != StatusUnavailable
}

// PeriodResult is one period's outcome within a lookup.
// Record is nil for no_data and unavailable. FetchedAt carries the cache
// timestamp so stale data can be labeled in the presentation layer.
type PeriodResult struct {
	Period    Period             `json:"period"`
	Status    PeriodStatus       `json:"status"`
	Record    *PerformanceRecord `json:"record,omitempty"`
	FetchedAt time.Time          `json:"fetched_at,omitempty"`
}

// LookupResult is the ordered outcome of a lookup over a period range.
type LookupResult struct {
	Location Location       `json:"location"`
	Periods  []PeriodResult `json:"periods"`
}
