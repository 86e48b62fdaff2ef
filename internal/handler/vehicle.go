package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"rentalops/internal/domain"
	"rentalops/internal/service"
)

// VehicleHandler handles HTTP requests for the fleet catalog.
type VehicleHandler struct {
	vehicleService *service.VehicleService
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(vehicleService *service.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicleService: vehicleService}
}

// RegisterVehicleRequest is the HTTP request body for vehicle registration.
type RegisterVehicleRequest struct {
	Plate          string          `json:"plate"`
	Model          string          `json:"model"`
	Meter          int64           `json:"meter"`
	DailyRate      decimal.Decimal `json:"daily_rate"`
	FuelEfficiency decimal.Decimal `json:"fuel_efficiency"`
}

// AvailabilityRequest is the HTTP request body for an availability change.
type AvailabilityRequest struct {
	Available bool `json:"available"`
}

// VehicleResponse is the HTTP response for vehicle data.
type VehicleResponse struct {
	ID             string `json:"id"`
	Plate          string `json:"plate"`
	Model          string `json:"model"`
	Meter          int64  `json:"meter"`
	DailyRate      string `json:"daily_rate"`
	FuelEfficiency string `json:"fuel_efficiency"`
	Available      bool   `json:"available"`
}

func vehicleResponse(v *domain.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:             v.ID,
		Plate:          v.Plate,
		Model:          v.Model,
		Meter:          v.Meter,
		DailyRate:      v.DailyRate.String(),
		FuelEfficiency: v.FuelEfficiency.String(),
		Available:      v.Available,
	}
}

// Register handles POST /v1/vehicles
func (h *VehicleHandler) Register(c *gin.Context) {
	var req RegisterVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Plate == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "plate is required"})
		return
	}

	vehicle, err := h.vehicleService.RegisterVehicle(c.Request.Context(), service.RegisterVehicleRequest{
		Plate:          req.Plate,
		Model:          req.Model,
		Meter:          req.Meter,
		DailyRate:      req.DailyRate,
		FuelEfficiency: req.FuelEfficiency,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, vehicleResponse(vehicle))
}

// GetVehicle handles GET /v1/vehicles/:id
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	vehicle, err := h.vehicleService.GetVehicle(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, vehicleResponse(vehicle))
}

// GetAll handles GET /v1/vehicles
func (h *VehicleHandler) GetAll(c *gin.Context) {
	vehicles, err := h.vehicleService.ListVehicles(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]VehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		response = append(response, vehicleResponse(v))
	}

	c.JSON(http.StatusOK, response)
}

// SetAvailability handles POST /v1/vehicles/:id/availability
func (h *VehicleHandler) SetAvailability(c *gin.Context) {
	var req AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.vehicleService.SetAvailability(c.Request.Context(), c.Param("id"), req.Available); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
