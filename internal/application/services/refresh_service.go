package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gramseva/mgnrega-dashboard/internal/core/domain/report"
	"github.com/gramseva/mgnrega-dashboard/internal/core/ports"
)

// RefreshService bulk-refreshes the cache for a whole state and
// financial year in one upstream sweep, and feeds newly seen district
// names into the registry.
type RefreshService struct {
	store     ports.ReportStore
	upstream  ports.UpstreamClient
	districts ports.DistrictService
	logger    *logrus.Logger
}

func NewRefreshService(store ports.ReportStore, upstream ports.UpstreamClient, districts ports.DistrictService, logger *logrus.Logger) ports.RefreshService {
	return &RefreshService{
		store:     store,
		upstream:  upstream,
		districts: districts,
		logger:    logger,
	}
}

func (s *RefreshService) RefreshStateYear(ctx context.Context, state, finYear string) (*ports.RefreshSummary, error) {
	if err := report.ValidateFinYear(finYear); err != nil {
		return nil, err
	}

	jobID := uuid.New().String()
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"job_id": jobID, "state": state, "fin_year": finYear}).Info("starting state-year refresh")
	}

	records, err := s.upstream.FetchStateYear(ctx, state, finYear)
	if err != nil {
		return nil, fmt.Errorf("refresh fetch failed: %w", err)
	}

	if err := s.store.PutBatch(ctx, records); err != nil {
		return nil, fmt.Errorf("refresh write failed: %w", err)
	}

	newDistricts := 0
	if s.districts != nil && len(records) > 0 {
		seen := make(map[string]struct{})
		names := make([]string, 0)
		for _, rec := range records {
			if _, ok := seen[rec.Location.District]; ok {
				continue
			}
			seen[rec.Location.District] = struct{}{}
			names = append(names, rec.Location.District)
		}
		newDistricts = s.districts.Observe(ctx, state, names)
	}

	summary := &ports.RefreshSummary{
		JobID:        jobID,
		State:        state,
		FinYear:      finYear,
		RecordsSeen:  len(records),
		RecordsSaved: len(records),
		NewDistricts: newDistricts,
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"job_id": jobID, "records": len(records), "new_districts": newDistricts}).Info("state-year refresh complete")
	}
	return summary, nil
}
