package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"academy-booking-client/internal/gate"
)

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new account on the remote service.
func (h *Handler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.remote.Register(c.Request.Context(), req.Username, req.Password); err != nil {
		writeRemoteError(c, err)
		return
	}

	c.Status(http.StatusCreated)
}

// Login exchanges credentials for a token pair and opens the session.
func (h *Handler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := h.remote.IssueToken(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeRemoteError(c, err)
		return
	}

	if err := h.sessions.Login(c.Request.Context(), req.Username, pair.Access, pair.Refresh); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"username": req.Username})
}

// Logout closes the session. Calling it while logged out is a no-op.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.sessions.Logout(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetSession returns the session snapshot the UI renders its chrome from.
func (h *Handler) GetSession(c *gin.Context) {
	state := h.sessions.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"authenticated":   state.Authenticated,
		"username":        state.Username,
		"order_completed": state.Order.Completed,
		"order_pending":   state.Order.Pending,
	})
}

// GetNavigation evaluates the access gate for an arbitrary destination.
func (h *Handler) GetNavigation(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}

	state := h.sessions.Snapshot()
	decision := gate.Decide(state.Authenticated, state.Order.Completed, state.Order.Pending, path)
	if decision.Allow {
		c.JSON(http.StatusOK, gin.H{"allow": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"allow": false, "redirect_to": decision.RedirectTo})
}
