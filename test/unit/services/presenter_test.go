package services_test

import (
	"testing"
	"time"

	impl "github.com/gramseva/mgnrega-dashboard/internal/application/services"
	"github.com/gramseva/mgnrega-dashboard/internal/core/domain/report"
)

func lookupResultFixture() *report.LookupResult {
	loc := report.Location{State: "BIHAR", District: "PATNA"}
	april := report.PerformanceRecord{
		Location: loc,
		Period:   report.Period{FinYear: "2023-2024", Month: 4},
		Metrics:  map[string]float64{"Wages": 100, "Total_Households_Worked": 4000, "internal_code": 7},
	}
	june := report.PerformanceRecord{
		Location: loc,
		Period:   report.Period{FinYear: "2023-2024", Month: 6},
		Metrics:  map[string]float64{"Wages": 150, "Total_Households_Worked": 4200},
	}
	return &report.LookupResult{
		Location: loc,
		Periods: []report.PeriodResult{
			{Period: april.Period, Status: report.StatusCacheHit, Record: &april, FetchedAt: time.Now()},
			{Period: report.Period{FinYear: "2023-2024", Month: 5}, Status: report.StatusNoData},
			{Period: june.Period, Status: report.StatusStaleFallback, Record: &june, FetchedAt: time.Now().Add(-48 * time.Hour)},
		},
	}
}

func TestDashboard_HeadlineFromLatestResolvedPeriod(t *testing.T) {
	p := impl.NewDashboardPresenter()
	d := p.Build(lookupResultFixture(), "2023-2024")

	if d.Headline == nil {
		t.Fatalf("expected a headline")
	}
	if d.Headline.Period.Month != 6 {
		t.Fatalf("headline must come from the latest period with data, got month %d", d.Headline.Period.Month)
	}
	if !d.Headline.Stale {
		t.Fatalf("stale fallback data must be labeled stale in the headline")
	}
	if d.Headline.Metrics["Wages"] != 150 {
		t.Fatalf("unexpected headline wages: %v", d.Headline.Metrics["Wages"])
	}
	if _, ok := d.Headline.Metrics["internal_code"]; ok {
		t.Fatalf("non-headline metrics must not leak into the headline")
	}
}

func TestDashboard_SeriesAndPeriodTags(t *testing.T) {
	p := impl.NewDashboardPresenter()
	d := p.Build(lookupResultFixture(), "2023-2024")

	if len(d.Periods) != 3 {
		t.Fatalf("every requested period must appear, got %d", len(d.Periods))
	}
	if d.Periods[1].Status != report.StatusNoData {
		t.Fatalf("no_data period must keep its tag, got %s", d.Periods[1].Status)
	}

	var wages *impl.MetricSeries
	for i := range d.Series {
		if d.Series[i].Metric == "Wages" {
			wages = &d.Series[i]
		}
	}
	if wages == nil {
		t.Fatalf("expected a Wages series")
	}
	if len(wages.Points) != 2 {
		t.Fatalf("series must skip periods without data, got %d points", len(wages.Points))
	}
	if wages.Points[0].Value != 100 || wages.Points[1].Value != 150 {
		t.Fatalf("series out of chronological order: %+v", wages.Points)
	}
	if wages.Points[1].Label != "June" {
		t.Fatalf("expected month label June, got %s", wages.Points[1].Label)
	}
}

func TestDashboard_NoDataAnywhere(t *testing.T) {
	p := impl.NewDashboardPresenter()
	result := &report.LookupResult{
		Location: report.Location{State: "BIHAR", District: "PATNA"},
		Periods: []report.PeriodResult{
			{Period: report.Period{FinYear: "2023-2024", Month: 4}, Status: report.StatusNoData},
		},
	}
	d := p.Build(result, "2023-2024")
	if d.Headline != nil {
		t.Fatalf("no headline without data")
	}
	if len(d.Series) != 0 {
		t.Fatalf("no series without data")
	}
	if len(d.Periods) != 1 || d.Periods[0].Status != report.StatusNoData {
		t.Fatalf("the no-data marker must still render")
	}
}
