package ports

import (
	"context"

	"github.com/gramseva/mgnrega-dashboard/internal/core/domain/district"
)

// DistrictRepository persists the registry of district names observed in
// upstream responses, keyed by state.
type DistrictRepository interface {
	// UpsertMany records district names for a state, ignoring ones
	// already known. Returns the number of newly added districts.
	UpsertMany(ctx context.Context, state string, names []string) (int, error)
	ListStates(ctx context.Context) ([]string, error)
	ListByState(ctx context.Context, state string) (*district.StateDistricts, error)
}

// DistrictService serves the location input boundary: known states and
// their districts, for whatever picker the display layer uses.
type DistrictService interface {
	States(ctx context.Context) ([]string, error)
	Districts(ctx context.Context, state string) (*district.StateDistricts, error)
	// Observe records districts discovered during a fetch. Failures are
	// logged, never propagated into the fetch path.
	Observe(ctx context.Context, state string, names []string) int
}
