package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/fieldserve/internal/http/middleware"
	"github.com/nurpe/fieldserve/internal/model"
	"github.com/nurpe/fieldserve/internal/service"
)

type customerRequest struct {
	Name           string `json:"name" binding:"required"`
	ContactName    string `json:"contact_name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	BillingAddress string `json:"billing_address"`
	SiteAddress    string `json:"site_address"`
}

func (h *Handler) createCustomer(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, err := h.catalog.CreateCustomer(c.Request.Context(), &model.Customer{
		Name:           req.Name,
		ContactName:    req.ContactName,
		Email:          req.Email,
		Phone:          req.Phone,
		BillingAddress: req.BillingAddress,
		SiteAddress:    req.SiteAddress,
	}, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func (h *Handler) listCustomers(c *gin.Context) {
	customers, err := h.catalog.ListCustomers(c.Request.Context(), strings.TrimSpace(c.Query("search")))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

func (h *Handler) getCustomer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	customer, err := h.catalog.GetCustomer(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *Handler) updateCustomer(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, err := h.catalog.UpdateCustomer(c.Request.Context(), &model.Customer{
		ID:             id,
		Name:           req.Name,
		ContactName:    req.ContactName,
		Email:          req.Email,
		Phone:          req.Phone,
		BillingAddress: req.BillingAddress,
		SiteAddress:    req.SiteAddress,
	}, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

type partRequest struct {
	SKU            string  `json:"sku" binding:"required"`
	Name           string  `json:"name" binding:"required"`
	Description    string  `json:"description"`
	UnitCost       float64 `json:"unit_cost"`
	UnitPrice      float64 `json:"unit_price"`
	QuantityOnHand int     `json:"quantity_on_hand"`
	ReorderLevel   int     `json:"reorder_level"`
	VendorName     string  `json:"vendor_name"`
}

func (h *Handler) createPart(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req partRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	part, err := h.catalog.CreatePart(c.Request.Context(), &model.Part{
		SKU:            req.SKU,
		Name:           req.Name,
		Description:    req.Description,
		UnitCost:       req.UnitCost,
		UnitPrice:      req.UnitPrice,
		QuantityOnHand: req.QuantityOnHand,
		ReorderLevel:   req.ReorderLevel,
		VendorName:     req.VendorName,
	}, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, part)
}

func (h *Handler) listParts(c *gin.Context) {
	lowStockOnly := strings.EqualFold(c.Query("low_stock"), "true")
	parts, err := h.catalog.ListParts(c.Request.Context(), lowStockOnly)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"parts": parts})
}

func (h *Handler) getPart(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	part, err := h.catalog.GetPart(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, part)
}

func (h *Handler) updatePart(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req partRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	part, err := h.catalog.UpdatePart(c.Request.Context(), &model.Part{
		ID:           id,
		SKU:          req.SKU,
		Name:         req.Name,
		Description:  req.Description,
		UnitCost:     req.UnitCost,
		UnitPrice:    req.UnitPrice,
		ReorderLevel: req.ReorderLevel,
		VendorName:   req.VendorName,
	}, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, part)
}

type stockAdjustRequest struct {
	Delta int `json:"delta" binding:"required"`
}

func (h *Handler) adjustPartStock(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req stockAdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	part, err := h.catalog.AdjustStock(c.Request.Context(), id, req.Delta, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, part)
}

type equipmentRequest struct {
	CustomerID        string `json:"customer_id" binding:"required"`
	Name              string `json:"name" binding:"required"`
	ModelNumber       string `json:"model_number"`
	SerialNumber      string `json:"serial_number"`
	InstallDate       string `json:"install_date"`
	WarrantyExpiresAt string `json:"warranty_expires_at"`
	Location          string `json:"location"`
	Notes             string `json:"notes"`
}

func (h *Handler) createEquipment(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req equipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customerID, err := parseOptionalUUID(req.CustomerID)
	if err != nil || customerID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer_id"})
		return
	}

	equipment := &model.Equipment{
		CustomerID:   *customerID,
		Name:         req.Name,
		ModelNumber:  req.ModelNumber,
		SerialNumber: req.SerialNumber,
		Location:     req.Location,
		Notes:        req.Notes,
	}
	if req.InstallDate != "" {
		installed, err := parseDate(req.InstallDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid install_date"})
			return
		}
		equipment.InstallDate = &installed
	}
	if req.WarrantyExpiresAt != "" {
		expires, err := parseDate(req.WarrantyExpiresAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid warranty_expires_at"})
			return
		}
		equipment.WarrantyExpiresAt = &expires
	}

	created, err := h.catalog.CreateEquipment(c.Request.Context(), equipment, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) listEquipment(c *gin.Context) {
	customerID, err := parseOptionalUUID(c.Query("customer_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer_id"})
		return
	}

	units, err := h.catalog.ListEquipment(c.Request.Context(), customerID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"equipment": units})
}

func (h *Handler) getEquipment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	equipment, err := h.catalog.GetEquipment(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, equipment)
}

func (h *Handler) listExpiringWarranties(c *gin.Context) {
	days := 30
	if raw := strings.TrimSpace(c.Query("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid days"})
			return
		}
		days = parsed
	}

	units, err := h.catalog.ListExpiringWarranties(c.Request.Context(), days)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"equipment": units})
}

func (h *Handler) getActiveLaborRates(c *gin.Context) {
	profile, err := h.catalog.GetActiveLaborRates(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

type laborRatesRequest struct {
	Name           string  `json:"name"`
	StandardRate   float64 `json:"standard_rate" binding:"required"`
	AfterHoursRate float64 `json:"after_hours_rate" binding:"required"`
	EmergencyRate  float64 `json:"emergency_rate" binding:"required"`
}

func (h *Handler) activateLaborRates(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req laborRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.catalog.ActivateLaborRates(c.Request.Context(), service.LaborRatesInput{
		Name:           req.Name,
		StandardRate:   req.StandardRate,
		AfterHoursRate: req.AfterHoursRate,
		EmergencyRate:  req.EmergencyRate,
		Principal:      principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
