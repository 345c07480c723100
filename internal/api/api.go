// Package api exposes the monitored filesystem state over HTTP.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"diskwatch/internal/conf"
	"diskwatch/internal/fsstat"
	"diskwatch/internal/logging"
	"diskwatch/internal/observability"
)

// MonitorSource is the view of the polling service the API needs.
type MonitorSource interface {
	Snapshots() []fsstat.FilesystemInfo
	SnapshotFor(path string) (fsstat.FilesystemInfo, bool)
	AlertStatus() map[string]any
	MonitoredPaths() []string
}

// Controller manages the API routes and handlers
type Controller struct {
	Echo      *echo.Echo
	Group     *echo.Group
	Settings  *conf.Settings
	monitor   MonitorSource
	metrics   *observability.Metrics
	startTime time.Time
	apiLogger *slog.Logger
}

// New creates a new API controller and registers its routes on the given
// Echo instance.
func New(e *echo.Echo, settings *conf.Settings, mon MonitorSource, metrics *observability.Metrics) *Controller {
	c := &Controller{
		Echo:      e,
		Settings:  settings,
		monitor:   mon,
		metrics:   metrics,
		startTime: time.Now(),
		apiLogger: logging.ForService("api"),
	}
	c.Group = e.Group("/api/v1")
	c.initRoutes()
	return c
}

func (c *Controller) initRoutes() {
	c.Group.GET("/filesystems", c.GetFilesystems)
	c.Group.GET("/filesystems/lookup", c.GetFilesystem)
	c.Group.GET("/status", c.GetStatus)

	c.Echo.GET("/healthz", c.GetHealth)
	if c.metrics != nil {
		c.Echo.GET("/metrics", echo.WrapHandler(c.metrics.Handler()))
	}
}

// errorResponse is the JSON shape of every API error.
type errorResponse struct {
	Error string `json:"error"`
}

// GetFilesystems returns the latest snapshot of every monitored path.
func (c *Controller) GetFilesystems(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.monitor.Snapshots())
}

// GetFilesystem returns the latest snapshot for the path given in the "path"
// query parameter. Paths contain slashes, so a query parameter is used
// instead of a route segment.
func (c *Controller) GetFilesystem(ctx echo.Context) error {
	path := ctx.QueryParam("path")
	if path == "" {
		return ctx.JSON(http.StatusBadRequest, errorResponse{Error: "missing path parameter"})
	}

	info, ok := c.monitor.SnapshotFor(path)
	if !ok {
		c.apiLogger.Debug("snapshot lookup miss", "path", path)
		return ctx.JSON(http.StatusNotFound, errorResponse{Error: "path is not monitored or has no snapshot yet"})
	}
	return ctx.JSON(http.StatusOK, info)
}

// GetStatus returns the alert state of every monitored path plus process
// uptime.
func (c *Controller) GetStatus(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]any{
		"uptime_seconds": int64(time.Since(c.startTime).Seconds()),
		"paths":          c.monitor.MonitoredPaths(),
		"alerts":         c.monitor.AlertStatus(),
	})
}

// GetHealth is the liveness endpoint.
func (c *Controller) GetHealth(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
