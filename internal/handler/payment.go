package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rentalops/internal/repository"
	"rentalops/internal/service"
)

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	tripService *service.TripService
	paymentRepo repository.PaymentRepository
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(tripService *service.TripService, paymentRepo repository.PaymentRepository) *PaymentHandler {
	return &PaymentHandler{tripService: tripService, paymentRepo: paymentRepo}
}

// PaymentResponse is the HTTP response for payment data.
type PaymentResponse struct {
	ID     string `json:"id"`
	TripID string `json:"trip_id"`
	Amount string `json:"amount"`
	PaidAt string `json:"paid_at"`
}

// GetPayment handles GET /v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.paymentRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, PaymentResponse{
		ID:     payment.ID,
		TripID: payment.TripID,
		Amount: payment.Amount.String(),
		PaidAt: payment.PaidAt.Format(time.RFC3339),
	})
}

// DeletePayment handles DELETE /v1/payments/:id
//
// Deletion goes through the trip service so the owning trip's paid amount
// and payment status are re-derived in the same transaction.
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	trip, err := h.tripService.DeletePayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// ListTripPayments handles GET /v1/trips/:id/payments
func (h *PaymentHandler) ListTripPayments(c *gin.Context) {
	payments, err := h.paymentRepo.ListByTripID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		response = append(response, PaymentResponse{
			ID:     p.ID,
			TripID: p.TripID,
			Amount: p.Amount.String(),
			PaidAt: p.PaidAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, response)
}
