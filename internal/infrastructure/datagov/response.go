package datagov

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/gramseva/mgnrega-dashboard/internal/core/domain/report"
)

// apiResponse is the fixed envelope of the open-data API. Numeric
// envelope fields arrive as numbers or numeric strings depending on the
// dataset version, so they decode through flexInt.
type apiResponse struct {
	Total   flexInt     `json:"total"`
	Count   flexInt     `json:"count"`
	Limit   flexInt     `json:"limit"`
	Offset  flexInt     `json:"offset"`
	Records []apiRecord `json:"records"`
}

// flexInt decodes a JSON number or a numeric string.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("expected numeric value, got %s", string(b))
	}
	*f = flexInt(int(v))
	return nil
}

// apiRecord is one row of the MGNREGA district performance dataset.
// Identity fields are pulled out explicitly; every remaining field whose
// value is numeric (or a numeric string) is passed through as a metric
// under its upstream name.
type apiRecord struct {
	State    string
	District string
	FinYear  string
	Month    string
	Metrics  map[string]float64
}

func (r *apiRecord) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	r.Metrics = make(map[string]float64)
	for key, val := range raw {
		switch strings.ToLower(key) {
		case "state_name", "state":
			r.State, _ = val.(string)
		case "district_name", "district":
			r.District, _ = val.(string)
		case "fin_year":
			r.FinYear, _ = val.(string)
		case "month":
			r.Month, _ = val.(string)
		default:
			if n, ok := numericValue(val); ok {
				r.Metrics[key] = n
			}
		}
	}
	return nil
}

func numericValue(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// toRecord converts a raw row into a domain record. Rows missing their
// identity fields are skipped rather than failing the whole page; the
// dataset occasionally carries summary rows without a district name.
func (r apiRecord) toRecord() (report.PerformanceRecord, bool) {
	loc := report.Location{State: r.State, District: r.District}.Normalized()
	if loc.State == "" || loc.District == "" {
		return report.PerformanceRecord{}, false
	}
	finYear := strings.TrimSpace(r.FinYear)
	if report.ValidateFinYear(finYear) != nil {
		return report.PerformanceRecord{}, false
	}
	month := report.MonthCumulative
	if m, ok := report.ParseMonth(r.Month); ok {
		month = m
	}
	return report.PerformanceRecord{
		Location: loc,
		Period:   report.Period{FinYear: finYear, Month: month},
		Metrics:  r.Metrics,
	}, true
}
