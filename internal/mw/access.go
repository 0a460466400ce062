package mw

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"academy-booking-client/internal/gate"
	"academy-booking-client/internal/session"
)

// RequireAccess guards the routes of one page. When the gate refuses the
// navigation, the request is aborted with the page the UI should go to
// instead. The gate itself never mutates anything.
func RequireAccess(sessions *session.Manager, page string) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := sessions.Snapshot()
		decision := gate.Decide(state.Authenticated, state.Order.Completed, state.Order.Pending, page)
		if !decision.Allow {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"redirect_to": decision.RedirectTo})
			return
		}
		c.Next()
	}
}
