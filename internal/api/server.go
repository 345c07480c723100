package api

import (
	"context"
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"diskwatch/internal/conf"
	"diskwatch/internal/logging"
	"diskwatch/internal/observability"
)

// Server wraps the Echo instance serving the API.
type Server struct {
	echo     *echo.Echo
	settings *conf.Settings
}

// NewServer builds the Echo instance with middleware and the API controller
// mounted.
func NewServer(settings *conf.Settings, mon MonitorSource, metrics *observability.Metrics) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logging.ForService("api").Debug("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status)
			return nil
		},
	}))

	New(e, settings, mon, metrics)

	return &Server{echo: e, settings: settings}
}

// Start serves until the listener fails or Shutdown is called. It returns
// nil on graceful shutdown.
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.settings.HTTP.Host, s.settings.HTTP.Port)
	logging.ForService("api").Info("HTTP server starting", "address", addr)

	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
