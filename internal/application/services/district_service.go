package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gramseva/mgnrega-dashboard/internal/core/domain/district"
	"github.com/gramseva/mgnrega-dashboard/internal/core/ports"
)

// DistrictService serves the location input boundary from the registry
// of districts observed in upstream data.
type DistrictService struct {
	repo   ports.DistrictRepository
	logger *logrus.Logger
}

func NewDistrictService(repo ports.DistrictRepository, logger *logrus.Logger) ports.DistrictService {
	return &DistrictService{
		repo:   repo,
		logger: logger,
	}
}

func (s *DistrictService) States(ctx context.Context) ([]string, error) {
	states, err := s.repo.ListStates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load states: %w", err)
	}
	return states, nil
}

func (s *DistrictService) Districts(ctx context.Context, state string) (*district.StateDistricts, error) {
	if strings.TrimSpace(state) == "" {
		return nil, fmt.Errorf("state must not be empty")
	}
	sd, err := s.repo.ListByState(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("failed to load districts: %w", err)
	}
	return sd, nil
}

// Observe records district names discovered during a fetch. Registry
// failures are logged and swallowed; discovery must never fail a lookup.
func (s *DistrictService) Observe(ctx context.Context, state string, names []string) int {
	added, err := s.repo.UpsertMany(ctx, state, names)
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"state": state}).WithError(err).Warn("failed to update district registry")
		}
		return added
	}
	if added > 0 && s.logger != nil {
		s.logger.WithFields(logrus.Fields{"state": state, "added": added}).Info("district registry updated")
	}
	return added
}
