package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type LoggingMiddleware struct {
	logger *logrus.Logger
}

func NewLoggingMiddleware(logger *logrus.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{logger: logger}
}

func (m *LoggingMiddleware) RequestLogging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m.logger == nil || isProbePath(c.Path()) {
				return next(c)
			}
			fields := logrus.Fields{"method": c.Request().Method, "path": c.Path()}
			// Lookup queries carry their target in the query string;
			// logging it makes upstream trouble traceable per district.
			if state := c.QueryParam("state"); state != "" {
				fields["state"] = state
			}
			if district := c.QueryParam("district"); district != "" {
				fields["district"] = district
			}
			if finYear := c.QueryParam("fin_year"); finYear != "" {
				fields["fin_year"] = finYear
			}
			m.logger.WithFields(fields).Debug("incoming request")
			return next(c)
		}
	}
}

// isProbePath filters scrape and liveness traffic out of request logs
// and metrics; Prometheus and orchestrator probes would otherwise
// dominate both.
func isProbePath(path string) bool {
	return path == "/health" || path == "/metrics"
}
