// Package agentapi exposes an agent runtime over HTTP.
package agentapi

import (
	"context"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/xiaot623/gogo/mesh/internal/domain"
)

// Runtime resolves delegated queries for one agent.
type Runtime interface {
	Card() domain.AgentCard
	Handle(ctx context.Context, env domain.DelegationEnvelope) domain.AgentResponse
}

// Handler handles agent requests.
type Handler struct {
	runtime Runtime
}

// NewHandler creates a new handler.
func NewHandler(rt Runtime) *Handler {
	return &Handler{runtime: rt}
}

// RegisterRoutes registers the agent routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/agent-card", h.AgentCard)
	e.GET("/status", h.Status)
	e.POST("/a2a/message", h.Message)
}

// AgentCard returns the advertised card.
// GET /agent-card
func (h *Handler) AgentCard(c echo.Context) error {
	return c.JSON(http.StatusOK, h.runtime.Card())
}

// Status reports liveness of this agent.
// GET /status
func (h *Handler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, domain.StatusResponse{
		Status:  domain.StatusOK,
		AgentID: h.runtime.Card().ID,
	})
}

// Message resolves a delegated query. Unreadable envelopes are treated as an
// empty query so the sender always gets an AgentResponse.
// POST /a2a/message
func (h *Handler) Message(c echo.Context) error {
	var env domain.DelegationEnvelope
	if err := c.Bind(&env); err != nil {
		log.Printf("WARN: %s: unreadable envelope: %v", h.runtime.Card().ID, err)
		env = domain.DelegationEnvelope{}
	}
	if env.MessageID == "" {
		env.MessageID = c.Request().Header.Get("X-Message-ID")
	}
	return c.JSON(http.StatusOK, h.runtime.Handle(c.Request().Context(), env))
}
