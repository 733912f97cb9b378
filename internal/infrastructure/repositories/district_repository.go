package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gramseva/mgnrega-dashboard/internal/core/domain/district"
	"github.com/gramseva/mgnrega-dashboard/internal/core/ports"
	"github.com/gramseva/mgnrega-dashboard/internal/infrastructure/db"
)

// DistrictRepository persists districts observed in upstream data.
type DistrictRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

func NewDistrictRepository(database *db.Database, logger *logrus.Logger) ports.DistrictRepository {
	return &DistrictRepository{
		db:     database,
		logger: logger,
	}
}

// UpsertMany records new district names for a state; names already in
// the registry are ignored. Returns the number of rows added.
func (r *DistrictRepository) UpsertMany(ctx context.Context, state string, names []string) (int, error) {
	state = strings.ToUpper(strings.TrimSpace(state))
	if state == "" {
		return 0, fmt.Errorf("state must not be empty")
	}

	added := 0
	query := `
		INSERT INTO districts (state, name)
		VALUES ($1, $2)
		ON CONFLICT (state, name) DO NOTHING`

	for _, name := range names {
		name = strings.ToUpper(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		res, err := r.db.DB.ExecContext(ctx, query, state, name)
		if err != nil {
			return added, fmt.Errorf("failed to upsert district: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			added += int(n)
		}
	}
	return added, nil
}

func (r *DistrictRepository) ListStates(ctx context.Context) ([]string, error) {
	var states []string
	query := `SELECT DISTINCT state FROM districts ORDER BY state`
	if err := r.db.DB.SelectContext(ctx, &states, query); err != nil {
		return nil, fmt.Errorf("failed to list states: %w", err)
	}
	return states, nil
}

func (r *DistrictRepository) ListByState(ctx context.Context, state string) (*district.StateDistricts, error) {
	state = strings.ToUpper(strings.TrimSpace(state))

	var names []string
	query := `SELECT name FROM districts WHERE state = $1 ORDER BY name`
	if err := r.db.DB.SelectContext(ctx, &names, query, state); err != nil {
		return nil, fmt.Errorf("failed to list districts: %w", err)
	}
	return &district.StateDistricts{State: state, Districts: names}, nil
}
