package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rentalops/internal/repository"
	"rentalops/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code, kind := classifyError(err)
	c.JSON(code, ErrorResponse{Error: err.Error(), Kind: kind})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// classifyError maps service/repository errors to an HTTP status and a
// stable error kind.
func classifyError(err error) (int, string) {
	var transition *service.TransitionError
	if errors.As(err, &transition) {
		return http.StatusConflict, "invalid_transition"
	}

	var consistency *service.ConsistencyError
	if errors.As(err, &consistency) {
		return http.StatusUnprocessableEntity, "consistency_error"
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"

	// Validation errors - Bad Request.
	case errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrInvalidVehicleID),
		errors.Is(err, service.ErrInvalidCustomerID),
		errors.Is(err, service.ErrInvalidPaymentID),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidDiscount),
		errors.Is(err, service.ErrInvalidDamageCost),
		errors.Is(err, service.ErrInvalidCostType),
		errors.Is(err, service.ErrInvalidMeter),
		errors.Is(err, service.ErrMeterBeforeStart),
		errors.Is(err, service.ErrMeterBeforeVehicle),
		errors.Is(err, service.ErrInvalidSchedule):
		return http.StatusBadRequest, "validation_error"

	// Conflicts over shared resources.
	case errors.Is(err, service.ErrVehicleUnavailable),
		errors.Is(err, service.ErrVehicleBooked),
		errors.Is(err, service.ErrResourceLocked):
		return http.StatusConflict, "conflict"

	default:
		return http.StatusInternalServerError, "internal"
	}
}
