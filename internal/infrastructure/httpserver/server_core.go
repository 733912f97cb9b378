package httpserver

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/gramseva/mgnrega-dashboard/internal/application/services"
	"github.com/gramseva/mgnrega-dashboard/internal/core/ports"
	customMiddleware "github.com/gramseva/mgnrega-dashboard/internal/infrastructure/httpserver/middleware"
)

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	TLSCertFile  string
	TLSKeyFile   string
}

type ServerDeps struct {
	LookupService      ports.LookupService
	DistrictService    ports.DistrictService
	RefreshService     ports.RefreshService
	UpstreamClient     ports.UpstreamClient
	Presenter          *services.DashboardPresenter
	RateLimiterService ports.RateLimiterService
	HealthCheckers     []ports.HealthChecker
}

type Server struct {
	echo           *echo.Echo
	config         *ServerConfig
	logger         *logrus.Logger
	lookupSvc      ports.LookupService
	districtSvc    ports.DistrictService
	refreshSvc     ports.RefreshService
	upstream       ports.UpstreamClient
	presenter      *services.DashboardPresenter
	middleware     *customMiddleware.MiddlewareCollection
	healthCheckers []ports.HealthChecker
}

func NewServer(serverConfig *ServerConfig, logger *logrus.Logger, deps ServerDeps) *Server {
	e := echo.New()

	server := &Server{
		echo:           e,
		config:         serverConfig,
		logger:         logger,
		lookupSvc:      deps.LookupService,
		districtSvc:    deps.DistrictService,
		refreshSvc:     deps.RefreshService,
		upstream:       deps.UpstreamClient,
		presenter:      deps.Presenter,
		healthCheckers: deps.HealthCheckers,
		middleware: customMiddleware.NewMiddlewareCollection(
			deps.RateLimiterService,
			logger,
			GetRequestsTotal(),
			GetRequestDuration(),
		),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}
