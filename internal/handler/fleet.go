package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rentalops/internal/domain"
	"rentalops/internal/repository"
)

// FleetHandler handles HTTP requests for drivers and customers. These are
// thin pass-throughs to their repositories.
type FleetHandler struct {
	driverRepo   repository.DriverRepository
	customerRepo repository.CustomerRepository
}

// NewFleetHandler creates a new FleetHandler.
func NewFleetHandler(driverRepo repository.DriverRepository, customerRepo repository.CustomerRepository) *FleetHandler {
	return &FleetHandler{driverRepo: driverRepo, customerRepo: customerRepo}
}

// RegisterDriverRequest is the HTTP request body for driver registration.
type RegisterDriverRequest struct {
	Name        string          `json:"name"`
	Phone       string          `json:"phone"`
	DailyCharge decimal.Decimal `json:"daily_charge"`
}

// DriverResponse is the HTTP response for driver data.
type DriverResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	DailyCharge string `json:"daily_charge"`
	Active      bool   `json:"active"`
}

// RegisterDriver handles POST /v1/drivers
func (h *FleetHandler) RegisterDriver(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Name == "" || req.Phone == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name and phone are required"})
		return
	}

	driver := &domain.Driver{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Phone:       req.Phone,
		DailyCharge: req.DailyCharge,
		Active:      true,
	}

	if err := h.driverRepo.Create(c.Request.Context(), driver); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, DriverResponse{
		ID:          driver.ID,
		Name:        driver.Name,
		Phone:       driver.Phone,
		DailyCharge: driver.DailyCharge.String(),
		Active:      driver.Active,
	})
}

// GetDrivers handles GET /v1/drivers
func (h *FleetHandler) GetDrivers(c *gin.Context) {
	drivers, err := h.driverRepo.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]DriverResponse, 0, len(drivers))
	for _, d := range drivers {
		response = append(response, DriverResponse{
			ID:          d.ID,
			Name:        d.Name,
			Phone:       d.Phone,
			DailyCharge: d.DailyCharge.String(),
			Active:      d.Active,
		})
	}

	c.JSON(http.StatusOK, response)
}

// RegisterCustomerRequest is the HTTP request body for customer registration.
type RegisterCustomerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// CustomerResponse is the HTTP response for customer data.
type CustomerResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// RegisterCustomer handles POST /v1/customers
func (h *FleetHandler) RegisterCustomer(c *gin.Context) {
	var req RegisterCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Name == "" || req.Phone == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name and phone are required"})
		return
	}

	existing, err := h.customerRepo.GetByPhone(c.Request.Context(), req.Phone)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		respondError(c, err)
		return
	}

	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{
			"message":  "customer already registered",
			"customer": CustomerResponse{ID: existing.ID, Name: existing.Name, Phone: existing.Phone},
		})
		return
	}

	customer := &domain.Customer{
		ID:    uuid.New().String(),
		Name:  req.Name,
		Phone: req.Phone,
	}

	if err := h.customerRepo.Create(c.Request.Context(), customer); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CustomerResponse{
		ID:    customer.ID,
		Name:  customer.Name,
		Phone: customer.Phone,
	})
}
