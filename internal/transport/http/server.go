// Package http provides the HTTP servers of the mesh processes.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/xiaot623/gogo/mesh/internal/inspector"
	"github.com/xiaot623/gogo/mesh/internal/metrics"
	"github.com/xiaot623/gogo/mesh/internal/registry"
	"github.com/xiaot623/gogo/mesh/internal/transport/http/agentapi"
	"github.com/xiaot623/gogo/mesh/internal/transport/http/coordinatorapi"
	"github.com/xiaot623/gogo/mesh/internal/transport/http/inspectorapi"
	"github.com/xiaot623/gogo/mesh/internal/transport/http/registryapi"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	return e
}

// NewRegistryServer creates the registry server.
func NewRegistryServer(r *registry.Registry) *echo.Echo {
	e := newEcho()
	registryapi.NewHandler(r).RegisterRoutes(e)
	return e
}

// NewCoordinatorServer creates the client-facing coordinator server. The
// browser chat front-end calls it cross-origin, hence CORS.
func NewCoordinatorServer(r coordinatorapi.Resolver, insp *inspector.Inspector, m *metrics.Metrics) *echo.Echo {
	e := newEcho()
	e.Use(middleware.CORS())

	coordinatorapi.NewHandler(r).RegisterRoutes(e)
	inspectorapi.NewHandler(insp).RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(m.Handler()))
	return e
}

// NewAgentServer creates the server of one agent.
func NewAgentServer(rt agentapi.Runtime, insp *inspector.Inspector, m *metrics.Metrics) *echo.Echo {
	e := newEcho()
	agentapi.NewHandler(rt).RegisterRoutes(e)
	inspectorapi.NewHandler(insp).RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(m.Handler()))
	return e
}
