package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nurpe/fieldserve/internal/http/middleware"
	"github.com/nurpe/fieldserve/internal/model"
	"github.com/nurpe/fieldserve/internal/repository"
	"github.com/nurpe/fieldserve/internal/service"
)

type lineItemRequest struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	PartID      string  `json:"part_id"`
	EquipmentID string  `json:"equipment_id"`
}

func (r lineItemRequest) toInput() (service.LineItemInput, error) {
	partID, err := parseOptionalUUID(r.PartID)
	if err != nil {
		return service.LineItemInput{}, err
	}
	equipmentID, err := parseOptionalUUID(r.EquipmentID)
	if err != nil {
		return service.LineItemInput{}, err
	}
	return service.LineItemInput{
		Type:        model.LineItemType(strings.ToLower(strings.TrimSpace(r.Type))),
		Description: r.Description,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
		PartID:      partID,
		EquipmentID: equipmentID,
	}, nil
}

func toLineItemInputs(requests []lineItemRequest) ([]service.LineItemInput, error) {
	inputs := make([]service.LineItemInput, 0, len(requests))
	for _, request := range requests {
		input, err := request.toInput()
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, input)
	}
	return inputs, nil
}

type createEstimateRequest struct {
	CustomerID   string            `json:"customer_id" binding:"required"`
	JobTitle     string            `json:"job_title" binding:"required"`
	Description  string            `json:"description"`
	SiteLocation string            `json:"site_location"`
	TaxRate      *float64          `json:"tax_rate"`
	EstimateDate string            `json:"estimate_date"`
	Notes        string            `json:"notes"`
	Terms        string            `json:"terms"`
	Items        []lineItemRequest `json:"items"`
}

func (h *Handler) createEstimate(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req createEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customerID, err := uuid.Parse(strings.TrimSpace(req.CustomerID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer_id"})
		return
	}

	items, err := toLineItemInputs(req.Items)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid part or equipment reference"})
		return
	}

	input := service.CreateEstimateInput{
		CustomerID:   customerID,
		JobTitle:     req.JobTitle,
		Description:  req.Description,
		SiteLocation: req.SiteLocation,
		TaxRate:      req.TaxRate,
		Notes:        req.Notes,
		Terms:        req.Terms,
		Items:        items,
		Principal:    principal,
	}
	if req.EstimateDate != "" {
		date, err := parseDate(req.EstimateDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid estimate_date"})
			return
		}
		input.EstimateDate = date
	}

	estimate, err := h.estimates.Create(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, estimate)
}

type priceLineRequest struct {
	Quantity    float64 `json:"quantity"`
	PartID      string  `json:"part_id"`
	EquipmentID string  `json:"equipment_id"`
	LaborRate   string  `json:"labor_rate"`
}

func (h *Handler) priceEstimateLine(c *gin.Context) {
	var req priceLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	partID, err := parseOptionalUUID(req.PartID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid part_id"})
		return
	}
	equipmentID, err := parseOptionalUUID(req.EquipmentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid equipment_id"})
		return
	}

	input := service.PriceLineInput{
		Quantity:    req.Quantity,
		PartID:      partID,
		EquipmentID: equipmentID,
	}
	if raw := strings.TrimSpace(req.LaborRate); raw != "" {
		key := model.LaborRateKey(strings.ToLower(raw))
		input.LaborRate = &key
	}

	line, err := h.estimates.PriceLine(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, line)
}

func (h *Handler) listEstimates(c *gin.Context) {
	filter := repository.EstimateFilter{}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := model.EstimateStatus(strings.ToLower(raw))
		filter.Status = &status
	}
	customerID, err := parseOptionalUUID(c.Query("customer_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer_id"})
		return
	}
	filter.CustomerID = customerID

	estimates, err := h.estimates.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"estimates": estimates})
}

func (h *Handler) getEstimate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	estimate, err := h.estimates.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, estimate)
}

type saveEstimateRequest struct {
	CustomerID   string            `json:"customer_id"`
	JobTitle     string            `json:"job_title"`
	Description  string            `json:"description"`
	SiteLocation string            `json:"site_location"`
	TaxRate      float64           `json:"tax_rate"`
	EstimateDate string            `json:"estimate_date"`
	ExpiresAt    string            `json:"expires_at"`
	Notes        string            `json:"notes"`
	Terms        string            `json:"terms"`
	Items        []lineItemRequest `json:"items"`
}

func (h *Handler) saveEstimate(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req saveEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, err := toLineItemInputs(req.Items)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid part or equipment reference"})
		return
	}

	input := service.SaveEstimateInput{
		EstimateID:   id,
		JobTitle:     req.JobTitle,
		Description:  req.Description,
		SiteLocation: req.SiteLocation,
		TaxRate:      req.TaxRate,
		Notes:        req.Notes,
		Terms:        req.Terms,
		Items:        items,
		Principal:    principal,
	}
	if req.CustomerID != "" {
		customerID, err := uuid.Parse(strings.TrimSpace(req.CustomerID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer_id"})
			return
		}
		input.CustomerID = customerID
	}
	if req.EstimateDate != "" {
		date, err := parseDate(req.EstimateDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid estimate_date"})
			return
		}
		input.EstimateDate = date
	}
	if req.ExpiresAt != "" {
		expires, err := parseDate(req.ExpiresAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expires_at"})
			return
		}
		input.ExpiresAt = &expires
	}

	result, err := h.estimates.Save(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response := gin.H{"estimate": result.Estimate}
	if result.Warning != "" {
		response["warning"] = result.Warning
	}
	c.JSON(http.StatusOK, response)
}

func (h *Handler) markEstimateSent(c *gin.Context) {
	h.estimateTransition(c, h.estimates.MarkSent)
}

func (h *Handler) markEstimateViewed(c *gin.Context) {
	h.estimateTransition(c, h.estimates.MarkViewed)
}

func (h *Handler) acceptEstimate(c *gin.Context) {
	h.estimateTransition(c, h.estimates.Accept)
}

func (h *Handler) rejectEstimate(c *gin.Context) {
	h.estimateTransition(c, h.estimates.Reject)
}

func (h *Handler) estimateTransition(
	c *gin.Context,
	op func(ctx context.Context, id uuid.UUID, principal model.Principal) (*model.Estimate, error),
) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	estimate, err := op(c.Request.Context(), id, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, estimate)
}

type convertEstimateRequest struct {
	Target string `json:"target" binding:"required"`
}

func (h *Handler) convertEstimate(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req convertEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.estimates.Convert(c.Request.Context(), service.ConvertInput{
		EstimateID: id,
		Target:     service.ConvertTarget(strings.ToLower(strings.TrimSpace(req.Target))),
		Principal:  principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	response := gin.H{"estimate": result.Estimate}
	if result.TicketID != nil {
		response["ticket_id"] = result.TicketID
	}
	if result.ProjectID != nil {
		response["project_id"] = result.ProjectID
	}
	c.JSON(http.StatusOK, response)
}

func (h *Handler) estimatePDF(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.estimates.RenderPDF(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

type exportEstimatesRequest struct {
	Status string `json:"status"`
	From   string `json:"from"`
	To     string `json:"to"`
}

func (h *Handler) exportEstimates(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req exportEstimatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.ExportRegisterInput{Principal: principal}
	if raw := strings.TrimSpace(req.Status); raw != "" {
		status := model.EstimateStatus(strings.ToLower(raw))
		input.Status = &status
	}
	if req.From != "" {
		from, err := parseDate(req.From)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from"})
			return
		}
		input.From = &from
	}
	if req.To != "" {
		to, err := parseDate(req.To)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to"})
			return
		}
		input.To = &to
	}

	result, err := h.estimates.ExportRegister(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, xlsxMIME, result.Content)
}
