package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) listStates(c echo.Context) error {
	states, err := s.districtSvc.States(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"states": states})
}

func (s *Server) listDistricts(c echo.Context) error {
	state := c.Param("state")
	sd, err := s.districtSvc.Districts(c.Request().Context(), state)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, sd)
}
