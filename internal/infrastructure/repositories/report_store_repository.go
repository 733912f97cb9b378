package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gramseva/mgnrega-dashboard/internal/core/domain/report"
	"github.com/gramseva/mgnrega-dashboard/internal/core/ports"
	"github.com/gramseva/mgnrega-dashboard/internal/infrastructure/db"
)

// ReportStoreRepository is the durable cache store: performance records
// keyed by (state, district, fin_year, month) in Postgres. The upsert
// makes Put atomic per key; readers see either the old or the new entry
// in full.
type ReportStoreRepository struct {
	db     *db.Database
	logger *logrus.Logger
	ttl    time.Duration
}

// NewReportStoreRepository creates the Postgres-backed report store.
// ttl is stamped onto entries at write time so freshness survives a
// config change for already-cached data.
func NewReportStoreRepository(database *db.Database, logger *logrus.Logger, ttl time.Duration) ports.ReportStore {
	return &ReportStoreRepository{
		db:     database,
		logger: logger,
		ttl:    ttl,
	}
}

// Get returns the cached entry for the key, present or not. Stale
// entries are returned as-is; freshness is the caller's judgment.
func (r *ReportStoreRepository) Get(ctx context.Context, loc report.Location, period report.Period) (*report.CacheEntry, bool, error) {
	loc = loc.Normalized()

	var metricsJSON []byte
	var fetchedAt time.Time
	var ttlSeconds int64

	query := `
		SELECT metrics, fetched_at, ttl_seconds
		FROM cache_entries
		WHERE state = $1 AND district = $2 AND fin_year = $3 AND month = $4`

	err := r.db.DB.QueryRowContext(ctx, query, loc.State, loc.District, period.FinYear, period.Month).
		Scan(&metricsJSON, &fetchedAt, &ttlSeconds)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	var metrics map[string]float64
	if err := json.Unmarshal(metricsJSON, &metrics); err != nil {
		return nil, false, fmt.Errorf("failed to parse cached metrics: %w", err)
	}

	entry := &report.CacheEntry{
		Record: report.PerformanceRecord{
			Location: loc,
			Period:   period,
			Metrics:  metrics,
		},
		FetchedAt: fetchedAt,
		TTL:       time.Duration(ttlSeconds) * time.Second,
	}
	return entry, true, nil
}

// Put writes through a fresh record, replacing any existing entry for
// the same key wholesale.
func (r *ReportStoreRepository) Put(ctx context.Context, rec report.PerformanceRecord) (*report.CacheEntry, error) {
	entry, err := r.putTx(ctx, r.db.DB, rec, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// PutBatch writes a refresh batch in one transaction.
func (r *ReportStoreRepository) PutBatch(ctx context.Context, recs []report.PerformanceRecord) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := r.db.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin cache batch: %w", err)
	}
	now := time.Now().UTC()
	for _, rec := range recs {
		if _, err := r.putTx(ctx, tx, rec, now); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cache batch: %w", err)
	}
	return nil
}

// execer covers both *sqlx.DB and *sqlx.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *ReportStoreRepository) putTx(ctx context.Context, ex execer, rec report.PerformanceRecord, now time.Time) (*report.CacheEntry, error) {
	rec.Location = rec.Location.Normalized()
	if err := rec.Location.Validate(); err != nil {
		return nil, err
	}
	if err := rec.Period.Validate(); err != nil {
		return nil, err
	}

	metricsJSON, err := json.Marshal(rec.Metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metrics: %w", err)
	}

	query := `
		INSERT INTO cache_entries (state, district, fin_year, month, metrics, fetched_at, ttl_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (state, district, fin_year, month)
		DO UPDATE SET metrics = EXCLUDED.metrics, fetched_at = EXCLUDED.fetched_at, ttl_seconds = EXCLUDED.ttl_seconds`

	ttlSeconds := int64(r.ttl / time.Second)
	_, err = ex.ExecContext(ctx, query,
		rec.Location.State, rec.Location.District, rec.Period.FinYear, rec.Period.Month,
		metricsJSON, now, ttlSeconds)
	if err != nil {
		return nil, fmt.Errorf("failed to write cache entry: %w", err)
	}

	return &report.CacheEntry{Record: rec, FetchedAt: now, TTL: r.ttl}, nil
}
