package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"academy-booking-client/internal/ledger"
	"academy-booking-client/internal/remote"
	"academy-booking-client/internal/session"
	"academy-booking-client/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	sessions *session.Manager
	resolver *session.OrderStatusResolver
	ledger   *ledger.Ledger
	store    store.Store
	remote   *remote.Client
	vapidKey string
}

// NewHandler creates a new API handler.
func NewHandler(sessions *session.Manager, resolver *session.OrderStatusResolver, l *ledger.Ledger, s store.Store, client *remote.Client, vapidPublicKey string) *Handler {
	return &Handler{
		sessions: sessions,
		resolver: resolver,
		ledger:   l,
		store:    s,
		remote:   client,
		vapidKey: vapidPublicKey,
	}
}

// writeRemoteError converts a remote call failure into a local response.
// Server validation bodies pass through verbatim so field-level messages
// reach the user; transport failures become a 502.
func writeRemoteError(c *gin.Context, err error) {
	var apiErr *remote.APIError
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.Status, apiErr.Fields)
		return
	}
	log.Printf("Warning: remote call failed: %v", err)
	c.JSON(http.StatusBadGateway, gin.H{"error": "the booking service is unreachable, please try again"})
}
