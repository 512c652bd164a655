package api

import (
	"context"
	"net/http"

	"github.com/Domenick1991/coursedesk/internal/domain"
	"github.com/Domenick1991/coursedesk/internal/service/gate"
	"github.com/gin-gonic/gin"
)

type SessionReader interface {
	Current() domain.Snapshot
}

type HealthChecker interface {
	Health(ctx context.Context) (string, error)
}

// SessionHandler serves the read side of the session: the snapshot, flow
// gate decisions and backend health.
type SessionHandler struct {
	session SessionReader
	health  HealthChecker
}

func NewSessionHandler(session SessionReader, health HealthChecker) *SessionHandler {
	return &SessionHandler{session: session, health: health}
}

func (h *SessionHandler) Register(router gin.IRouter) {
	router.GET("/health", h.healthz)
	router.GET("/session", h.current)
	router.GET("/gate/:action", h.decide)
	router.GET("/admin", h.admin)
}

func (h *SessionHandler) healthz(c *gin.Context) {
	status, err := h.health.Health(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

func (h *SessionHandler) current(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Current())
}

func (h *SessionHandler) decide(c *gin.Context) {
	action := domain.Action(c.Param("action"))
	if !action.Valid() {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "unknown action"})
		return
	}
	decision := gate.Authorize(action, h.session.Current(), c.Query("package_id"))
	c.JSON(http.StatusOK, gin.H{"action": action, "decision": decision})
}

func (h *SessionHandler) admin(c *gin.Context) {
	snap := h.session.Current()
	if err := domain.DecisionError(gate.Authorize(domain.ActionOpenAdmin, snap, "")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"decision": domain.DecisionProceed, "identity": snap.Identity})
}
