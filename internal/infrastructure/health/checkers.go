package health

import (
	"context"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/gramseva/mgnrega-dashboard/internal/core/ports"
	infraDB "github.com/gramseva/mgnrega-dashboard/internal/infrastructure/db"
)

// dbHealthChecker wraps the database for health checks.
type dbHealthChecker struct{ db *infraDB.Database }

func (d *dbHealthChecker) Name() string                    { return "database" }
func (d *dbHealthChecker) Check(ctx context.Context) error { return d.db.DB.PingContext(ctx) }

// redisHealthChecker wraps the redis client for health checks.
type redisHealthChecker struct{ client *redis.Client }

func (r *redisHealthChecker) Name() string                    { return "redis" }
func (r *redisHealthChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }

// upstreamHealthChecker probes reachability of the open-data API.
// Any HTTP response counts as healthy; it must not spend API quota,
// so no api-key is sent and the status code is ignored.
type upstreamHealthChecker struct {
	url    string
	client *http.Client
}

func (u *upstreamHealthChecker) Name() string { return "upstream" }

func (u *upstreamHealthChecker) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u.url, nil)
	if err != nil {
		return err
	}
	resp, err := u.client.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}

// NewDBHealthChecker creates a health checker for the database.
func NewDBHealthChecker(db *infraDB.Database) ports.HealthChecker { return &dbHealthChecker{db: db} }

// NewRedisHealthChecker creates a health checker for Redis.
func NewRedisHealthChecker(client *redis.Client) ports.HealthChecker {
	return &redisHealthChecker{client: client}
}

// NewUpstreamHealthChecker creates a reachability checker for the
// upstream API endpoint.
func NewUpstreamHealthChecker(baseURL string) ports.HealthChecker {
	return &upstreamHealthChecker{
		url:    baseURL,
		client: &http.Client{Timeout: 3 * time.Second},
	}
}
