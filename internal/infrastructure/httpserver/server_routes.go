package httpserver

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/api/v1")

	api.GET("/states", s.listStates)
	api.GET("/states/:state/districts", s.listDistricts)

	api.GET("/reports", s.getReports)
	api.GET("/reports/dashboard", s.getDashboard)

	api.GET("/upstream/preview", s.previewUpstreamURL)
	api.POST("/refresh", s.refreshStateYear)
}
