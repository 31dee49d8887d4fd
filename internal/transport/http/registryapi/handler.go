// Package registryapi exposes the agent registry over HTTP.
package registryapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/xiaot623/gogo/mesh/internal/domain"
	"github.com/xiaot623/gogo/mesh/internal/registry"
)

// Handler handles registry requests.
type Handler struct {
	registry *registry.Registry
}

// NewHandler creates a new handler.
func NewHandler(r *registry.Registry) *Handler {
	return &Handler{registry: r}
}

// RegisterRoutes registers the registry routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/register", h.Register)
	e.GET("/agents", h.ListAgents)
	e.GET("/agents/:id", h.GetAgent)
	e.GET("/health", h.Health)
}

// Register upserts an agent card.
// POST /register
func (h *Handler) Register(c echo.Context) error {
	var card domain.AgentCard
	if err := c.Bind(&card); err != nil {
		return c.JSON(http.StatusBadRequest, domain.ErrorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(card.ID) == "" {
		return c.JSON(http.StatusBadRequest, domain.ErrorResponse{Error: "id is required"})
	}

	entry := h.registry.Register(card)
	return c.JSON(http.StatusOK, domain.RegisterResponse{
		Status:     domain.StatusOK,
		Registered: entry.ID,
	})
}

// ListAgents returns the live agents in registration order.
// GET /agents
func (h *Handler) ListAgents(c echo.Context) error {
	return c.JSON(http.StatusOK, h.registry.ListLive())
}

// GetAgent returns one agent regardless of liveness.
// GET /agents/:id
func (h *Handler) GetAgent(c echo.Context) error {
	id := c.Param("id")
	entry, err := h.registry.Get(id)
	if errors.Is(err, registry.ErrNotFound) {
		return c.JSON(http.StatusNotFound, domain.ErrorResponse{Error: fmt.Sprintf("Agent %s not found", id)})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, domain.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, entry)
}

// Health reports every stored entry, live or stale.
// GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, domain.HealthResponse{
		Status:      domain.StatusOK,
		AgentsCount: h.registry.Count(),
	})
}
