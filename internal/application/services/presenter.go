package services

import (
	"time"

	"github.com/gramseva/mgnrega-dashboard/internal/core/domain/report"
)

// headlineMetrics are the dataset fields shown in the dashboard's
// top-line summary, using the upstream's own field names.
var headlineMetrics = []string{
	"Total_Households_Worked",
	"Total_Individuals_Worked",
	"Persondays_of_Central_Liability_so_far",
	"Wages",
	"Average_days_of_employment_provided_per_Household",
}

// Dashboard is the display-layer shape of a lookup result: a headline
// from the latest resolved period plus chronological series for the
// headline metrics.
type Dashboard struct {
	Location report.Location `json:"location"`
	FinYear  string          `json:"fin_year"`
	Headline *Headline       `json:"headline,omitempty"`
	Series   []MetricSeries  `json:"series"`
	Periods  []PeriodView    `json:"periods"`
}

// Headline summarizes the latest period that produced data.
type Headline struct {
	Period  report.Period      `json:"period"`
	Month   string             `json:"month"`
	Stale   bool               `json:"stale"`
	AsOf    time.Time          `json:"as_of"`
	Metrics map[string]float64 `json:"metrics"`
}

// MetricSeries is one metric's chronological values for charting.
type MetricSeries struct {
	Metric string        `json:"metric"`
	Points []SeriesPoint `json:"points"`
}

type SeriesPoint struct {
	Month int     `json:"month"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// PeriodView tags each requested period for display, so the dashboard
// can always render something: data, stale-but-labeled data, or an
// explicit no-data marker.
type PeriodView struct {
	Period    report.Period       `json:"period"`
	Month     string              `json:"month"`
	Status    report.PeriodStatus `json:"status"`
	Stale     bool                `json:"stale"`
	FetchedAt time.Time           `json:"fetched_at,omitempty"`
}

// DashboardPresenter converts lookup results into the dashboard shape.
// It is a pure adapter: no I/O, no mutation of its input.
type DashboardPresenter struct{}

func NewDashboardPresenter() *DashboardPresenter {
	return &DashboardPresenter{}
}

func (p *DashboardPresenter) Build(result *report.LookupResult, finYear string) *Dashboard {
	d := &Dashboard{
		Location: result.Location,
		FinYear:  finYear,
		Series:   make([]MetricSeries, 0, len(headlineMetrics)),
		Periods:  make([]PeriodView, 0, len(result.Periods)),
	}

	for _, res := range result.Periods {
		stale := res.Status == report.StatusStaleFallback
		d.Periods = append(d.Periods, PeriodView{
			Period:    res.Period,
			Month:     res.Period.MonthName(),
			Status:    res.Status,
			Stale:     stale,
			FetchedAt: res.FetchedAt,
		})

		if res.Record == nil {
			continue
		}
		// Latest period with data wins the headline; results arrive in
		// chronological order.
		d.Headline = &Headline{
			Period:  res.Period,
			Month:   res.Period.MonthName(),
			Stale:   stale,
			AsOf:    res.FetchedAt,
			Metrics: pickHeadlineMetrics(res.Record.Metrics),
		}
	}

	for _, metric := range headlineMetrics {
		series := MetricSeries{Metric: metric, Points: make([]SeriesPoint, 0, len(result.Periods))}
		for _, res := range result.Periods {
			if res.Record == nil {
				continue
			}
			value, ok := res.Record.Metrics[metric]
			if !ok {
				continue
			}
			series.Points = append(series.Points, SeriesPoint{
				Month: res.Period.Month,
				Label: res.Period.MonthName(),
				Value: value,
			})
		}
		if len(series.Points) > 0 {
			d.Series = append(d.Series, series)
		}
	}

	return d
}

func pickHeadlineMetrics(metrics map[string]float64) map[string]float64 {
	picked := make(map[string]float64, len(headlineMetrics))
	for _, name := range headlineMetrics {
		if v, ok := metrics[name]; ok {
			picked[name] = v
		}
	}
	return picked
}
