package services_test

import (
	"context"
	"errors"
	"testing"

	impl "github.com/gramseva/mgnrega-dashboard/internal/application/services"
	"github.com/gramseva/mgnrega-dashboard/internal/core/domain/report"
	"github.com/gramseva/mgnrega-dashboard/test/mocks"
)

func TestRefreshStateYear_WritesBatchAndObservesDistricts(t *testing.T) {
	records := []report.PerformanceRecord{
		*patnaRecord(4),
		*patnaRecord(5),
		{
			Location: report.Location{State: "BIHAR", District: "GAYA"},
			Period:   report.Period{FinYear: "2023-2024", Month: 4},
			Metrics:  map[string]float64{"Wages": 80},
		},
	}
	store := &mocks.ReportStoreMock{}
	upstream := &mocks.UpstreamClientMock{
		FetchStateYearFn: func(ctx context.Context, state, finYear string) ([]report.PerformanceRecord, error) {
			return records, nil
		},
	}
	var observed []string
	districts := &mocks.DistrictServiceMock{
		ObserveFn: func(ctx context.Context, state string, names []string) int {
			observed = names
			return len(names)
		},
	}

	svc := impl.NewRefreshService(store, upstream, districts, nil)
	summary, err := svc.RefreshStateYear(context.Background(), "Bihar", "2023-2024")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.RecordsSeen != 3 || summary.RecordsSaved != 3 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.NewDistricts != 2 {
		t.Fatalf("expected 2 distinct districts observed, got %d", summary.NewDistricts)
	}
	if len(observed) != 2 {
		t.Fatalf("district names must be deduplicated, got %v", observed)
	}
	if summary.JobID == "" {
		t.Fatalf("expected a job id")
	}
}

func TestRefreshStateYear_UpstreamFailurePropagates(t *testing.T) {
	upstream := &mocks.UpstreamClientMock{
		FetchStateYearFn: func(ctx context.Context, state, finYear string) ([]report.PerformanceRecord, error) {
			return nil, &report.NetworkError{Err: errors.New("timeout")}
		},
	}
	svc := impl.NewRefreshService(&mocks.ReportStoreMock{}, upstream, nil, nil)
	if _, err := svc.RefreshStateYear(context.Background(), "Bihar", "2023-2024"); err == nil {
		t.Fatalf("expected error when the upstream sweep fails")
	}
}

func TestRefreshStateYear_InvalidFinYearRejected(t *testing.T) {
	svc := impl.NewRefreshService(&mocks.ReportStoreMock{}, &mocks.UpstreamClientMock{}, nil, nil)
	if _, err := svc.RefreshStateYear(context.Background(), "Bihar", "23-24"); err == nil {
		t.Fatalf("expected error for malformed financial year")
	}
}
