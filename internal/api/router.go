package api

import (
	"github.com/gin-gonic/gin"

	"academy-booking-client/internal/gate"
	"academy-booking-client/internal/mw"
)

// NewRouter creates and configures a new Gin router. Routes are grouped by
// the page they serve; the access gate runs on every navigation into a
// protected group.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.Default()

	api := r.Group("/api")
	{
		api.POST("/register", h.Register)
		api.POST("/login", h.Login)
		api.POST("/logout", h.Logout)
		api.GET("/session", h.GetSession)
		api.GET("/navigation", h.GetNavigation)

		calendar := api.Group("/calendar", mw.RequireAccess(h.sessions, gate.PathCalendar))
		{
			calendar.GET("", h.GetCalendar)
			calendar.POST("/reservations", h.CreateReservation)
			calendar.DELETE("/reservations/:id", h.DeleteReservation)
			calendar.POST("/reservations/clear_rejected", h.ClearRejected)
			// The "order more hours" form lives on the calendar page.
			calendar.POST("/hours", h.UpdateOrder)
		}

		order := api.Group("/order", mw.RequireAccess(h.sessions, gate.PathOrder))
		{
			order.POST("", h.SubmitOrder)
		}

		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
