package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/gramseva/mgnrega-dashboard/internal/core/domain/report"
)

// previewUpstreamURL shows the exact upstream URL a bulk fetch would
// hit, with the API key redacted. Debug aid for operators.
func (s *Server) previewUpstreamURL(c echo.Context) error {
	state := c.QueryParam("state")
	finYear := c.QueryParam("fin_year")

	limit := 0
	offset := 0
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := c.QueryParam("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}

	url := s.upstream.PreviewURL(state, finYear, limit, offset)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"url":      url,
		"state":    state,
		"fin_year": finYear,
		"limit":    limit,
		"offset":   offset,
	})
}

// refreshStateYear bulk-refreshes the cache for a whole state and
// financial year. This can take a while for large states; the upstream
// pagination runs within the request.
func (s *Server) refreshStateYear(c echo.Context) error {
	state := c.QueryParam("state")
	finYear := c.QueryParam("fin_year")
	if state == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "state is required")
	}
	if err := report.ValidateFinYear(finYear); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	summary, err := s.refreshSvc.RefreshStateYear(c.Request().Context(), state, finYear)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, summary)
}
