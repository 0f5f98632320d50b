package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/fieldserve/internal/http/middleware"
	"github.com/nurpe/fieldserve/internal/service"
)

type Handler struct {
	estimates *service.EstimateService
	tickets   *service.TicketService
	projects  *service.ProjectService
	catalog   *service.CatalogService
	log       zerolog.Logger
}

func NewHandler(
	estimates *service.EstimateService,
	tickets *service.TicketService,
	projects *service.ProjectService,
	catalog *service.CatalogService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		estimates: estimates,
		tickets:   tickets,
		projects:  projects,
		catalog:   catalog,
		log:       log,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	api := router.Group("/api/v1")
	api.Use(authMiddleware)

	api.GET("/session", h.session)

	api.POST("/customers", h.createCustomer)
	api.GET("/customers", h.listCustomers)
	api.GET("/customers/:id", h.getCustomer)
	api.PUT("/customers/:id", h.updateCustomer)

	api.POST("/estimates", h.createEstimate)
	api.POST("/estimates/price-line", h.priceEstimateLine)
	api.GET("/estimates", h.listEstimates)
	api.GET("/estimates/:id", h.getEstimate)
	api.PUT("/estimates/:id", h.saveEstimate)
	api.POST("/estimates/:id/send", h.markEstimateSent)
	api.POST("/estimates/:id/viewed", h.markEstimateViewed)
	api.POST("/estimates/:id/accept", h.acceptEstimate)
	api.POST("/estimates/:id/reject", h.rejectEstimate)
	api.POST("/estimates/:id/convert", h.convertEstimate)
	api.GET("/estimates/:id/pdf", h.estimatePDF)
	api.POST("/estimates/export", h.exportEstimates)

	api.POST("/tickets", h.createTicket)
	api.GET("/tickets", h.listTickets)
	api.GET("/tickets/:id", h.getTicket)
	api.POST("/tickets/:id/status", h.setTicketStatus)
	api.POST("/tickets/:id/photos", h.uploadTicketPhoto)
	api.GET("/tickets/:id/photos", h.listTicketPhotos)

	api.POST("/projects", h.createProject)
	api.GET("/projects", h.listProjects)
	api.GET("/projects/:id", h.getProject)
	api.POST("/projects/:id/status", h.setProjectStatus)

	api.POST("/parts", h.createPart)
	api.GET("/parts", h.listParts)
	api.GET("/parts/:id", h.getPart)
	api.PUT("/parts/:id", h.updatePart)
	api.POST("/parts/:id/stock", h.adjustPartStock)

	api.POST("/equipment", h.createEquipment)
	api.GET("/equipment", h.listEquipment)
	api.GET("/equipment/expiring-warranties", h.listExpiringWarranties)
	api.GET("/equipment/:id", h.getEquipment)

	api.GET("/labor-rates/active", h.getActiveLaborRates)
	api.PUT("/labor-rates/active", h.activateLaborRates)
}

func (h *Handler) session(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":   principal.UserID,
		"role":      principal.Role,
		"full_name": principal.FullName,
	})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrIllegalTransition),
		errors.Is(err, service.ErrAlreadyConverted),
		errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}

func parseOptionalUUID(raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
