package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nurpe/fieldserve/internal/http/middleware"
	"github.com/nurpe/fieldserve/internal/model"
	"github.com/nurpe/fieldserve/internal/repository"
	"github.com/nurpe/fieldserve/internal/service"
)

type createTicketRequest struct {
	CustomerID   string `json:"customer_id" binding:"required"`
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	SiteLocation string `json:"site_location"`
	Priority     string `json:"priority"`
	AssignedTo   string `json:"assigned_to"`
	ScheduledAt  string `json:"scheduled_at"`
}

func (h *Handler) createTicket(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req createTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customerID, err := uuid.Parse(strings.TrimSpace(req.CustomerID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer_id"})
		return
	}
	assignedTo, err := parseOptionalUUID(req.AssignedTo)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assigned_to"})
		return
	}

	input := service.CreateTicketInput{
		CustomerID:   customerID,
		Title:        req.Title,
		Description:  req.Description,
		SiteLocation: req.SiteLocation,
		Priority:     model.TicketPriority(strings.ToLower(strings.TrimSpace(req.Priority))),
		AssignedTo:   assignedTo,
		Principal:    principal,
	}
	if req.ScheduledAt != "" {
		scheduled, err := parseDate(req.ScheduledAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scheduled_at"})
			return
		}
		input.ScheduledAt = &scheduled
	}

	ticket, err := h.tickets.Create(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

func (h *Handler) listTickets(c *gin.Context) {
	filter := repository.TicketFilter{}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := model.TicketStatus(strings.ToLower(raw))
		filter.Status = &status
	}
	customerID, err := parseOptionalUUID(c.Query("customer_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer_id"})
		return
	}
	filter.CustomerID = customerID
	assignedTo, err := parseOptionalUUID(c.Query("assigned_to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assigned_to"})
		return
	}
	filter.AssignedTo = assignedTo

	tickets, err := h.tickets.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}

func (h *Handler) getTicket(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	ticket, err := h.tickets.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

type ticketStatusRequest struct {
	Status     string `json:"status" binding:"required"`
	AssignedTo string `json:"assigned_to"`
}

func (h *Handler) setTicketStatus(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req ticketStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	assignedTo, err := parseOptionalUUID(req.AssignedTo)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assigned_to"})
		return
	}

	ticket, err := h.tickets.SetStatus(c.Request.Context(), service.TicketStatusInput{
		TicketID:   id,
		Status:     model.TicketStatus(strings.ToLower(strings.TrimSpace(req.Status))),
		AssignedTo: assignedTo,
		Principal:  principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (h *Handler) uploadTicketPhoto(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.handleError(c, err)
		return
	}
	defer file.Close()

	photo, err := h.tickets.UploadPhoto(c.Request.Context(), service.UploadPhotoInput{
		TicketID:    id,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Content:     file,
		Principal:   principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, photo)
}

func (h *Handler) listTicketPhotos(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	photos, err := h.tickets.ListPhotos(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"photos": photos})
}
