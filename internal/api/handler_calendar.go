package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"academy-booking-client/internal/ledger"
)

// GetCalendar returns the balance figures and the reservation set. Read
// failures are logged and answered with whatever state is held locally;
// the figures default to zero until a load succeeds.
func (h *Handler) GetCalendar(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.ledger.LoadBalance(ctx); err != nil {
		log.Printf("Warning: failed to load study hours: %v", err)
	}
	if err := h.ledger.LoadReservations(ctx); err != nil {
		log.Printf("Warning: failed to load reservations: %v", err)
	}

	balance := h.ledger.Balance()
	c.JSON(http.StatusOK, gin.H{
		"study_hours":     balance.Available,
		"remaining_hours": balance.Remaining,
		"pending_count":   balance.PendingCount,
		"has_rejected":    h.ledger.HasRejected(),
		"events":          h.ledger.Reservations(),
	})
}

type createReservationRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
}

// CreateReservation books a 1-hour slot from the clicked calendar cell.
// Only future days are selectable in the UI, so past slots are refused at
// this edge.
func (h *Handler) CreateReservation(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !req.StartTime.After(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reservations can only be made for future dates"})
		return
	}

	if err := h.ledger.CreateReservation(c.Request.Context(), req.StartTime); err != nil {
		if errors.Is(err, ledger.ErrNoHoursRemaining) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		writeRemoteError(c, err)
		return
	}

	c.Status(http.StatusCreated)
}

// DeleteReservation removes a pending reservation.
func (h *Handler) DeleteReservation(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reservation id"})
		return
	}

	if err := h.ledger.DeleteReservation(c.Request.Context(), id); err != nil {
		writeRemoteError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ClearRejected hides all rejected reservations.
func (h *Handler) ClearRejected(c *gin.Context) {
	if err := h.ledger.ClearRejected(c.Request.Context()); err != nil {
		writeRemoteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
