package services_test

import (
	"context"
	"errors"
	"testing"

	impl "github.com/gramseva/mgnrega-dashboard/internal/application/services"
	"github.com/gramseva/mgnrega-dashboard/internal/core/domain/district"
	"github.com/gramseva/mgnrega-dashboard/test/mocks"
)

func TestDistricts_EmptyStateRejected(t *testing.T) {
	svc := impl.NewDistrictService(&mocks.DistrictRepositoryMock{}, nil)
	if _, err := svc.Districts(context.Background(), "  "); err == nil {
		t.Fatalf("expected error for blank state")
	}
}

func TestDistricts_ListsSortedNames(t *testing.T) {
	repo := &mocks.DistrictRepositoryMock{
		ListByStateFn: func(ctx context.Context, state string) (*district.StateDistricts, error) {
			return &district.StateDistricts{State: state, Districts: []string{"ARARIA", "PATNA"}}, nil
		},
	}
	svc := impl.NewDistrictService(repo, nil)
	sd, err := svc.Districts(context.Background(), "BIHAR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sd.Districts) != 2 {
		t.Fatalf("expected 2 districts, got %d", len(sd.Districts))
	}
}

func TestObserve_SwallowsRegistryFailures(t *testing.T) {
	repo := &mocks.DistrictRepositoryMock{
		UpsertManyFn: func(ctx context.Context, state string, names []string) (int, error) {
			return 0, errors.New("db down")
		},
	}
	svc := impl.NewDistrictService(repo, nil)
	// Must not panic or propagate; discovery is best-effort.
	if added := svc.Observe(context.Background(), "BIHAR", []string{"PATNA"}); added != 0 {
		t.Fatalf("expected 0 added on failure, got %d", added)
	}
}
