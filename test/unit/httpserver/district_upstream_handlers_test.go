package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gramseva/mgnrega-dashboard/internal/core/domain/district"
	"github.com/gramseva/mgnrega-dashboard/internal/core/ports"
	"github.com/gramseva/mgnrega-dashboard/internal/infrastructure/httpserver"
	"github.com/gramseva/mgnrega-dashboard/test/mocks"
)

func TestListStates(t *testing.T) {
	districtMock := &mocks.DistrictServiceMock{}
	districtMock.StatesFn = func(ctx context.Context) ([]string, error) {
		return []string{"BIHAR", "KERALA"}, nil
	}

	ts := newTestServer(t, httpserver.ServerDeps{
		LookupService:   &mocks.LookupServiceMock{},
		DistrictService: districtMock,
	})

	resp, body := doGet(t, ts, "/api/v1/states")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		States []string `json:"states"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Equal(t, []string{"BIHAR", "KERALA"}, payload.States)
}

func TestListDistricts(t *testing.T) {
	districtMock := &mocks.DistrictServiceMock{}
	districtMock.DistrictsFn = func(ctx context.Context, state string) (*district.StateDistricts, error) {
		require.Equal(t, "BIHAR", state)
		return &district.StateDistricts{State: "BIHAR", Districts: []string{"GAYA", "PATNA"}}, nil
	}

	ts := newTestServer(t, httpserver.ServerDeps{
		LookupService:   &mocks.LookupServiceMock{},
		DistrictService: districtMock,
	})

	resp, body := doGet(t, ts, "/api/v1/states/BIHAR/districts")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sd district.StateDistricts
	require.NoError(t, json.Unmarshal(body, &sd))
	require.Equal(t, []string{"GAYA", "PATNA"}, sd.Districts)
}

func TestPreviewUpstreamURL_PassesParamsThrough(t *testing.T) {
	upstreamMock := &mocks.UpstreamClientMock{}
	upstreamMock.PreviewURLFn = func(state, finYear string, limit, offset int) string {
		require.Equal(t, "Bihar", state)
		require.Equal(t, "2023-2024", finYear)
		require.Equal(t, 50, limit)
		require.Equal(t, 100, offset)
		return "https://api.example.gov/resource?api-key=REDACTED"
	}

	ts := newTestServer(t, httpserver.ServerDeps{
		LookupService:  &mocks.LookupServiceMock{},
		UpstreamClient: upstreamMock,
	})

	resp, body := doGet(t, ts, "/api/v1/upstream/preview?state=Bihar&fin_year=2023-2024&limit=50&offset=100")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Equal(t, "https://api.example.gov/resource?api-key=REDACTED", payload["url"])
}

func TestRefreshStateYear(t *testing.T) {
	refreshMock := &mocks.RefreshServiceMock{}
	refreshMock.RefreshStateYearFn = func(ctx context.Context, state, finYear string) (*ports.RefreshSummary, error) {
		return &ports.RefreshSummary{
			JobID:        "job-1",
			State:        state,
			FinYear:      finYear,
			RecordsSeen:  38,
			RecordsSaved: 38,
		}, nil
	}

	ts := newTestServer(t, httpserver.ServerDeps{
		LookupService:  &mocks.LookupServiceMock{},
		RefreshService: refreshMock,
	})

	resp, err := http.Post(ts.URL+"/api/v1/refresh?state=Bihar&fin_year=2023-2024", "", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summary ports.RefreshSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	require.Equal(t, 38, summary.RecordsSaved)
	require.Equal(t, "Bihar", summary.State)
}

func TestRefreshStateYear_BadInput(t *testing.T) {
	ts := newTestServer(t, httpserver.ServerDeps{
		LookupService:  &mocks.LookupServiceMock{},
		RefreshService: &mocks.RefreshServiceMock{},
	})

	for _, path := range []string{
		"/api/v1/refresh?fin_year=2023-2024",
		"/api/v1/refresh?state=Bihar&fin_year=bogus",
	} {
		resp, err := http.Post(ts.URL+path, "", nil)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}
}

func TestRefreshStateYear_UpstreamFailureMapsTo502(t *testing.T) {
	refreshMock := &mocks.RefreshServiceMock{}
	refreshMock.RefreshStateYearFn = func(ctx context.Context, state, finYear string) (*ports.RefreshSummary, error) {
		return nil, errors.New("upstream fetch failed")
	}

	ts := newTestServer(t, httpserver.ServerDeps{
		LookupService:  &mocks.LookupServiceMock{},
		RefreshService: refreshMock,
	})

	resp, err := http.Post(ts.URL+"/api/v1/refresh?state=Bihar&fin_year=2023-2024", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
}
