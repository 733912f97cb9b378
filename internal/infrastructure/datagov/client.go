package datagov

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gramseva/mgnrega-dashboard/configs"
	"github.com/gramseva/mgnrega-dashboard/internal/core/domain/report"
	"github.com/gramseva/mgnrega-dashboard/internal/core/ports"
)

// Client talks to the data.gov.in MGNREGA resource endpoint. It is a
// stateless translation layer: one Fetch is one outbound call, retry and
// fallback policy live in the lookup service.
type Client struct {
	httpClient *http.Client
	cfg        *configs.UpstreamConfig
	logger     *logrus.Logger
}

func NewClient(cfg *configs.UpstreamConfig, logger *logrus.Logger) ports.UpstreamClient {
	return &Client{
		// Timeout is also enforced per call via context; the client-level
		// timeout is a backstop for response body reads.
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger,
	}
}

// Fetch issues a single filtered request for one district and period.
func (c *Client) Fetch(ctx context.Context, loc report.Location, period report.Period) (*report.PerformanceRecord, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	if err := period.Validate(); err != nil {
		return nil, err
	}
	loc = loc.Normalized()

	params := c.baseParams(c.cfg.PageLimit, 0)
	params.Set("filters[state_name]", loc.State)
	params.Set("filters[district_name]", loc.District)
	params.Set("filters[fin_year]", period.FinYear)
	if period.Month != report.MonthCumulative {
		params.Set("filters[month]", period.MonthName())
	}

	resp, err := c.doRequest(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(resp.Records) == 0 {
		return nil, report.ErrNotFound
	}

	for _, raw := range resp.Records {
		rec, ok := raw.toRecord()
		if !ok {
			continue
		}
		if rec.Location == loc && rec.Period == period {
			return &rec, nil
		}
	}
	return nil, report.ErrNotFound
}

// FetchStateYear pulls every record for a state and financial year,
// following upstream pagination until the reported total is reached.
func (c *Client) FetchStateYear(ctx context.Context, state, finYear string) ([]report.PerformanceRecord, error) {
	if err := report.ValidateFinYear(finYear); err != nil {
		return nil, err
	}
	stateU := (report.Location{State: state, District: "x"}).Normalized().State

	var all []report.PerformanceRecord
	offset := 0
	for {
		params := c.baseParams(c.cfg.PageLimit, offset)
		params.Set("filters[state_name]", stateU)
		params.Set("filters[fin_year]", finYear)

		resp, err := c.doRequest(ctx, params)
		if err != nil {
			return nil, err
		}
		for _, raw := range resp.Records {
			rec, ok := raw.toRecord()
			if !ok {
				continue
			}
			all = append(all, rec)
		}

		count := len(resp.Records)
		if count == 0 || offset+count >= int(resp.Total) {
			break
		}
		offset += count

		// Polite pause between pages to stay under the upstream quota.
		select {
		case <-ctx.Done():
			return nil, &report.NetworkError{Err: ctx.Err()}
		case <-time.After(c.cfg.PageDelay):
		}
	}

	if c.logger != nil {
		c.logger.WithFields(logrus.Fields{"state": stateU, "fin_year": finYear, "records": len(all)}).Info("fetched state-year from upstream")
	}
	return all, nil
}

// PreviewURL returns the upstream URL a bulk fetch would hit, with the
// API key redacted.
func (c *Client) PreviewURL(state, finYear string, limit, offset int) string {
	if limit <= 0 {
		limit = c.cfg.PageLimit
	}
	params := c.baseParams(limit, offset)
	params.Set("api-key", "REDACTED")
	params.Set("filters[state_name]", state)
	params.Set("filters[fin_year]", finYear)
	return c.cfg.BaseURL + "?" + params.Encode()
}

func (c *Client) baseParams(limit, offset int) url.Values {
	params := url.Values{}
	params.Set("api-key", c.cfg.APIKey)
	params.Set("format", "json")
	params.Set("limit", fmt.Sprintf("%d", limit))
	params.Set("offset", fmt.Sprintf("%d", offset))
	return params
}

// doRequest performs one HTTP round trip and maps failures onto the
// report error taxonomy.
func (c *Client) doRequest(ctx context.Context, params url.Values) (*apiResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	reqURL := c.cfg.BaseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		observeRequest("network_error", time.Since(start))
		return nil, &report.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		observeRequest("rate_limited", time.Since(start))
		return nil, fmt.Errorf("upstream returned 429: %w", report.ErrRateLimited)
	case resp.StatusCode == http.StatusNotFound:
		observeRequest("not_found", time.Since(start))
		return nil, report.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		observeRequest("network_error", time.Since(start))
		return nil, &report.NetworkError{Err: fmt.Errorf("upstream returned status %d", resp.StatusCode)}
	}

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		observeRequest("malformed", time.Since(start))
		return nil, &report.MalformedResponseError{Reason: err.Error()}
	}
	observeRequest("ok", time.Since(start))
	return &parsed, nil
}
