// Package coordinatorapi exposes the client-facing coordinator endpoints.
package coordinatorapi

import (
	"context"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/xiaot623/gogo/mesh/internal/domain"
)

// Resolver answers client queries against the mesh.
type Resolver interface {
	Resolve(ctx context.Context, query string) domain.AggregateResult
	LiveCount(ctx context.Context) int
}

// Handler handles coordinator requests.
type Handler struct {
	resolver Resolver
}

// NewHandler creates a new handler.
func NewHandler(r Resolver) *Handler {
	return &Handler{resolver: r}
}

// RegisterRoutes registers the coordinator routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/chat", h.Ask)
	e.POST("/ask", h.Ask)
	e.GET("/health", h.Health)
}

// Ask fans the query out to every live agent.
// POST /ask, POST /chat
func (h *Handler) Ask(c echo.Context) error {
	var q domain.Query
	if err := c.Bind(&q); err != nil {
		log.Printf("WARN: coordinator: unreadable query body: %v", err)
		q = domain.Query{}
	}
	return c.JSON(http.StatusOK, h.resolver.Resolve(c.Request().Context(), q.Query))
}

// Health reports the number of live agents seen through the registry.
// GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, domain.HealthResponse{
		Status:      domain.StatusOK,
		AgentsCount: h.resolver.LiveCount(c.Request().Context()),
	})
}
