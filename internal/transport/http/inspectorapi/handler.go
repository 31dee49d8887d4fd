// Package inspectorapi serves recent inspector events.
package inspectorapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/xiaot623/gogo/mesh/internal/domain"
	"github.com/xiaot623/gogo/mesh/internal/inspector"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Handler handles inspector requests.
type Handler struct {
	inspector *inspector.Inspector
}

// NewHandler creates a new handler. A nil inspector serves an empty list.
func NewHandler(i *inspector.Inspector) *Handler {
	return &Handler{inspector: i}
}

// RegisterRoutes registers the inspector routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/inspector/events", h.ListEvents)
}

// ListEvents returns recent events, newest first.
// GET /inspector/events?agent=<id>&limit=<n>
func (h *Handler) ListEvents(c echo.Context) error {
	limit := defaultLimit
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, domain.ErrorResponse{Error: "limit must be a positive integer"})
		}
		limit = min(n, maxLimit)
	}

	events, err := h.inspector.Recent(c.Request().Context(), c.QueryParam("agent"), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, domain.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"events": events})
}
