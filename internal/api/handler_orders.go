package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"academy-booking-client/internal/gate"
	"academy-booking-client/internal/ledger"
	"academy-booking-client/internal/remote"
)

type hourOrderRequest struct {
	FirstName     string `json:"first_name" binding:"required"`
	LastName      string `json:"last_name" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Phone         string `json:"phone" binding:"required"`
	Address       string `json:"address" binding:"required"`
	Hours         int    `json:"hours" binding:"required"`
	TermsAccepted bool   `json:"terms_accepted" binding:"required"`
	GdprAccepted  bool   `json:"gdpr_accepted" binding:"required"`
}

// SubmitOrder places a study-hour purchase. On success the order enters the
// pending state server-side and the UI is pointed at the order-pending
// page; the flag itself is observed through the order status resolver.
func (h *Handler) SubmitOrder(c *gin.Context) {
	var req hourOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order := remote.HourOrder{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		Hours:         req.Hours,
		TermsAccepted: req.TermsAccepted,
		GdprAccepted:  req.GdprAccepted,
	}

	if err := h.ledger.SubmitHourOrder(c.Request.Context(), order); err != nil {
		if errors.Is(err, ledger.ErrInvalidHours) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		writeRemoteError(c, err)
		return
	}

	h.resolver.Resolve(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{"redirect_to": gate.PathOrderPending})
}

type updateOrderRequest struct {
	Hours int `json:"hours" binding:"required"`
}

// UpdateOrder tops up the pending order with additional hours, from the
// calendar's order form.
func (h *Handler) UpdateOrder(c *gin.Context) {
	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.ledger.UpdateHourOrder(c.Request.Context(), req.Hours); err != nil {
		if errors.Is(err, ledger.ErrInvalidHours) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		writeRemoteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Your order has been placed and is pending approval."})
}
