package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/alerta-utec/alerta-api/internal/models"
	"github.com/alerta-utec/alerta-api/internal/service"
	appErrors "github.com/alerta-utec/alerta-api/pkg/errors"
	"github.com/alerta-utec/alerta-api/pkg/response"
)

// IncidentHandler wires HTTP endpoints to the incident service.
type IncidentHandler struct {
	service *service.IncidentService
}

// NewIncidentHandler creates a new handler.
func NewIncidentHandler(svc *service.IncidentService) *IncidentHandler {
	return &IncidentHandler{service: svc}
}

// Create godoc
// @Summary Report incident
// @Tags Incidents
// @Accept json
// @Produce json
// @Param payload body models.CreateIncidentRequest true "Incident payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /incidents [post]
func (h *IncidentHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreateIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid incident payload"))
		return
	}

	incident, err := h.service.Create(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, incident)
}

// List godoc
// @Summary List incidents
// @Tags Incidents
// @Produce json
// @Param status query string false "Status filter"
// @Param urgency query string false "Urgency filter"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /incidents [get]
func (h *IncidentHandler) List(c *gin.Context) {
	var filter models.IncidentFilter
	if raw := c.Query("status"); raw != "" {
		status := models.IncidentStatus(raw)
		filter.Status = &status
	}
	if raw := c.Query("urgency"); raw != "" {
		urgency := models.IncidentUrgency(raw)
		filter.Urgency = &urgency
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			filter.Limit = limit
		}
	}

	incidents, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, incidents)
}

// Get godoc
// @Summary Get incident
// @Tags Incidents
// @Produce json
// @Param id path string true "Incident id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /incidents/{id} [get]
func (h *IncidentHandler) Get(c *gin.Context) {
	incident, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, incident)
}

// Update godoc
// @Summary Update incident status or urgency
// @Tags Incidents
// @Accept json
// @Produce json
// @Param id path string true "Incident id"
// @Param payload body models.UpdateIncidentRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /incidents/{id} [patch]
func (h *IncidentHandler) Update(c *gin.Context) {
	var req models.UpdateIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid update payload"))
		return
	}

	incident, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, incident)
}

// AddComment godoc
// @Summary Comment on incident
// @Tags Incidents
// @Accept json
// @Produce json
// @Param id path string true "Incident id"
// @Param payload body models.CreateCommentRequest true "Comment payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /incidents/{id}/comments [post]
func (h *IncidentHandler) AddComment(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid comment payload"))
		return
	}

	comment, err := h.service.AddComment(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, comment)
}

// ListComments godoc
// @Summary List incident comments
// @Tags Incidents
// @Produce json
// @Param id path string true "Incident id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /incidents/{id}/comments [get]
func (h *IncidentHandler) ListComments(c *gin.Context) {
	comments, err := h.service.ListComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, comments)
}
