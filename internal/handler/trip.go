package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"rentalops/internal/domain"
	"rentalops/internal/service"
)

// TripHandler handles HTTP requests for the trip lifecycle.
type TripHandler struct {
	tripService *service.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// CreateTripRequest is the HTTP request body for trip creation.
type CreateTripRequest struct {
	VehicleID         string          `json:"vehicle_id"`
	CustomerID        string          `json:"customer_id"`
	DriverID          string          `json:"driver_id"`
	LeavingAt         time.Time       `json:"leaving_at"`
	EstimatedReturnAt time.Time       `json:"estimated_return_at"`
	Passengers        int             `json:"passengers"`
	DriverRequired    bool            `json:"driver_required"`
	FuelRequired      bool            `json:"fuel_required"`
	Discount          decimal.Decimal `json:"discount"`
}

// MeterRequest carries an odometer reading.
type MeterRequest struct {
	Meter int64 `json:"meter"`
}

// AlterMeterRequest is the HTTP request body for a meter/date correction.
type AlterMeterRequest struct {
	EndMeter   int64     `json:"end_meter"`
	ReturnedAt time.Time `json:"returned_at"`
	LockedDays int       `json:"locked_days"`
}

// AmountRequest carries a money amount.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// ExtraCostRequest is the HTTP request body for an itemized extra cost.
type ExtraCostRequest struct {
	CostType string          `json:"cost_type"`
	Amount   decimal.Decimal `json:"amount"`
}

// TripResponse is the HTTP response for trip operations. Money fields are
// rendered as decimal strings.
type TripResponse struct {
	TripID            string `json:"trip_id"`
	VehicleID         string `json:"vehicle_id"`
	CustomerID        string `json:"customer_id"`
	DriverID          string `json:"driver_id,omitempty"`
	Status            string `json:"status"`
	LeavingAt         string `json:"leaving_at"`
	EstimatedReturnAt string `json:"estimated_return_at,omitempty"`
	ActualReturnAt    string `json:"actual_return_at,omitempty"`
	StartMeter        int64  `json:"start_meter"`
	EndMeter          int64  `json:"end_meter"`
	ActualDistance    int64  `json:"actual_distance"`
	ActualDays        int    `json:"actual_days"`
	EstimatedTotal    string `json:"estimated_total"`
	ActualTotal       string `json:"actual_total"`
	PaidAmount        string `json:"paid_amount"`
	PaymentStatus     string `json:"payment_status"`
	Profit            string `json:"profit"`
	Discount          string `json:"discount"`
	DamageCost        string `json:"damage_cost"`
}

func tripResponse(trip *domain.Trip) TripResponse {
	resp := TripResponse{
		TripID:         trip.ID,
		VehicleID:      trip.VehicleID,
		CustomerID:     trip.CustomerID,
		DriverID:       trip.DriverID,
		Status:         string(trip.Status),
		LeavingAt:      trip.LeavingAt.Format(time.RFC3339),
		StartMeter:     trip.StartMeter,
		EndMeter:       trip.EndMeter,
		ActualDistance: trip.ActualDistance,
		ActualDays:     trip.ActualDays,
		EstimatedTotal: trip.EstimatedTotal.String(),
		ActualTotal:    trip.ActualTotal.String(),
		PaidAmount:     trip.PaidAmount.String(),
		PaymentStatus:  string(trip.PaymentStatus),
		Profit:         trip.Profit.String(),
		Discount:       trip.Discount.String(),
		DamageCost:     trip.DamageCost.String(),
	}

	if !trip.EstimatedReturnAt.IsZero() {
		resp.EstimatedReturnAt = trip.EstimatedReturnAt.Format(time.RFC3339)
	}
	if !trip.ActualReturnAt.IsZero() {
		resp.ActualReturnAt = trip.ActualReturnAt.Format(time.RFC3339)
	}

	return resp
}

// CreateTrip handles POST /v1/trips
func (h *TripHandler) CreateTrip(c *gin.Context) {
	var req CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.tripService.CreateTrip(c.Request.Context(), service.CreateTripRequest{
		VehicleID:         req.VehicleID,
		CustomerID:        req.CustomerID,
		DriverID:          req.DriverID,
		LeavingAt:         req.LeavingAt,
		EstimatedReturnAt: req.EstimatedReturnAt,
		Passengers:        req.Passengers,
		DriverRequired:    req.DriverRequired,
		FuelRequired:      req.FuelRequired,
		Discount:          req.Discount,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, tripResponse(trip))
}

// StartTrip handles POST /v1/trips/:id/start
func (h *TripHandler) StartTrip(c *gin.Context) {
	var req MeterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.tripService.StartTrip(c.Request.Context(), c.Param("id"), req.Meter)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// EndTrip handles POST /v1/trips/:id/end
func (h *TripHandler) EndTrip(c *gin.Context) {
	var req MeterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.tripService.EndTrip(c.Request.Context(), c.Param("id"), req.Meter)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// AlterMeter handles POST /v1/trips/:id/meter
func (h *TripHandler) AlterMeter(c *gin.Context) {
	var req AlterMeterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.tripService.AlterMeter(c.Request.Context(), service.AlterMeterRequest{
		TripID:     c.Param("id"),
		EndMeter:   req.EndMeter,
		ReturnedAt: req.ReturnedAt,
		LockedDays: req.LockedDays,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// AddPayment handles POST /v1/trips/:id/payments
func (h *TripHandler) AddPayment(c *gin.Context) {
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.tripService.AddPayment(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// AddDamage handles POST /v1/trips/:id/damage
func (h *TripHandler) AddDamage(c *gin.Context) {
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.tripService.AddDamage(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// AddExtraCost handles POST /v1/trips/:id/costs
func (h *TripHandler) AddExtraCost(c *gin.Context) {
	var req ExtraCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.tripService.AddExtraCost(c.Request.Context(), c.Param("id"), req.CostType, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// CompleteTrip handles POST /v1/trips/:id/complete
func (h *TripHandler) CompleteTrip(c *gin.Context) {
	trip, err := h.tripService.CompleteTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// CancelTrip handles POST /v1/trips/:id/cancel
func (h *TripHandler) CancelTrip(c *gin.Context) {
	trip, err := h.tripService.CancelTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// GetTrip handles GET /v1/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, err := h.tripService.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// GetAll handles GET /v1/trips
func (h *TripHandler) GetAll(c *gin.Context) {
	trips, err := h.tripService.ListTrips(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]TripResponse, 0, len(trips))
	for _, trip := range trips {
		response = append(response, tripResponse(trip))
	}

	c.JSON(http.StatusOK, response)
}
