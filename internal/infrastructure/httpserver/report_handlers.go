package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/gramseva/mgnrega-dashboard/internal/core/domain/report"
)

// parseLookupParams reads the location and period range out of the query
// string. Months default to the full financial year (April through
// March); cumulative=true requests only the annual record.
func parseLookupParams(c echo.Context) (report.Location, report.PeriodRange, error) {
	loc := report.Location{
		State:    c.QueryParam("state"),
		District: c.QueryParam("district"),
	}
	if err := loc.Validate(); err != nil {
		return report.Location{}, report.PeriodRange{}, err
	}

	finYear := c.QueryParam("fin_year")
	if err := report.ValidateFinYear(finYear); err != nil {
		return report.Location{}, report.PeriodRange{}, err
	}

	if cumulative, _ := strconv.ParseBool(c.QueryParam("cumulative")); cumulative {
		rng := report.PeriodRange{FinYear: finYear, FromMonth: report.MonthCumulative, ToMonth: report.MonthCumulative}
		return loc, rng, nil
	}

	fromMonth := 4
	toMonth := 3
	if v := c.QueryParam("from_month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return report.Location{}, report.PeriodRange{}, errors.New("from_month must be an integer 1-12")
		}
		fromMonth = n
	}
	if v := c.QueryParam("to_month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return report.Location{}, report.PeriodRange{}, errors.New("to_month must be an integer 1-12")
		}
		toMonth = n
	}

	rng := report.PeriodRange{FinYear: finYear, FromMonth: fromMonth, ToMonth: toMonth}
	if err := rng.Validate(); err != nil {
		return report.Location{}, report.PeriodRange{}, err
	}
	return loc, rng, nil
}

// getReports returns the raw lookup result: ordered records plus
// per-period status tags. Partial failures are part of the payload, not
// an error response.
func (s *Server) getReports(c echo.Context) error {
	loc, rng, err := parseLookupParams(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := s.lookupSvc.Lookup(c.Request().Context(), loc, rng)
	if err != nil {
		if errors.Is(err, report.ErrUnavailable) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "no data could be resolved from cache or upstream")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

// getDashboard runs the same lookup and shapes it for the display layer.
func (s *Server) getDashboard(c echo.Context) error {
	loc, rng, err := parseLookupParams(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := s.lookupSvc.Lookup(c.Request().Context(), loc, rng)
	if err != nil {
		if errors.Is(err, report.ErrUnavailable) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "no data could be resolved from cache or upstream")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, s.presenter.Build(result, rng.FinYear))
}
