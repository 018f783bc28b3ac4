package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alerta-utec/alerta-api/internal/realtime"
	appErrors "github.com/alerta-utec/alerta-api/pkg/errors"
	"github.com/alerta-utec/alerta-api/pkg/response"
)

// RealtimeHandler serves the gateway connect/disconnect callbacks backing the
// connection registry.
type RealtimeHandler struct {
	registry *realtime.Registry
}

// NewRealtimeHandler creates a new handler.
func NewRealtimeHandler(registry *realtime.Registry) *RealtimeHandler {
	return &RealtimeHandler{registry: registry}
}

type connectRequest struct {
	ConnectionID string `json:"connection_id" binding:"required"`
}

// Connect godoc
// @Summary Register realtime connection
// @Tags Realtime
// @Accept json
// @Produce json
// @Param payload body connectRequest true "Connection"
// @Success 201 {object} response.Envelope
// @Router /realtime/connections [post]
func (h *RealtimeHandler) Connect(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req connectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid connection payload"))
		return
	}

	conn := realtime.Connection{
		ID:     req.ConnectionID,
		UserID: claims.Subject,
		Role:   claims.Role,
	}
	if err := h.registry.Register(c.Request.Context(), conn); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message))
		return
	}

	response.Created(c, conn)
}

// List godoc
// @Summary List active realtime connections
// @Tags Realtime
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /realtime/connections [get]
func (h *RealtimeHandler) List(c *gin.Context) {
	ids, err := h.registry.Active(c.Request.Context())
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message))
		return
	}

	response.JSON(c, http.StatusOK, ids)
}

// Disconnect godoc
// @Summary Deregister realtime connection
// @Tags Realtime
// @Produce json
// @Param id path string true "Connection id"
// @Success 204 {object} response.Envelope
// @Router /realtime/connections/{id} [delete]
func (h *RealtimeHandler) Disconnect(c *gin.Context) {
	if err := h.registry.Deregister(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message))
		return
	}

	response.NoContent(c)
}
