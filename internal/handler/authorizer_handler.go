package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alerta-utec/alerta-api/internal/authorizer"
	"github.com/alerta-utec/alerta-api/internal/service"
	appErrors "github.com/alerta-utec/alerta-api/pkg/errors"
	"github.com/alerta-utec/alerta-api/pkg/response"
)

// AuthorizerHandler exposes the two gateway authorization contracts over
// HTTP. Front-door gateways call these endpoints with the original request's
// Authorization header; any failure collapses to a 401 with no detail.
type AuthorizerHandler struct {
	authorizer *authorizer.Authorizer
	metrics    *service.MetricsService
}

// NewAuthorizerHandler creates a new handler. Metrics are optional.
func NewAuthorizerHandler(a *authorizer.Authorizer, metrics *service.MetricsService) *AuthorizerHandler {
	return &AuthorizerHandler{authorizer: a, metrics: metrics}
}

// Simple godoc
// @Summary Simple authorization check
// @Description Verifies the bearer token and returns the flat allow/deny contract
// @Tags Authorization
// @Produce json
// @Success 200 {object} authorizer.SimpleResult
// @Failure 401 {object} response.Envelope
// @Router /authz/simple [get]
func (h *AuthorizerHandler) Simple(c *gin.Context) {
	result, err := h.authorizer.Simple(c.GetHeader("Authorization"))
	if err != nil {
		h.metrics.RecordAuthDecision("simple", false)
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	h.metrics.RecordAuthDecision("simple", true)
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, result)
}

type policyRequest struct {
	MethodArn string `json:"methodArn" binding:"required"`
}

// Policy godoc
// @Summary Policy-document authorization check
// @Description Verifies the bearer token and returns an allow policy scoped to the requested resource
// @Tags Authorization
// @Accept json
// @Produce json
// @Param payload body policyRequest true "Invoked resource"
// @Success 200 {object} authorizer.PolicyResult
// @Failure 401 {object} response.Envelope
// @Router /authz/policy [post]
func (h *AuthorizerHandler) Policy(c *gin.Context) {
	var req policyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// the policy contract is throw-to-deny: a bad request is a deny
		h.metrics.RecordAuthDecision("policy", false)
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	result, err := h.authorizer.Policy(c.GetHeader("Authorization"), req.MethodArn)
	if err != nil {
		h.metrics.RecordAuthDecision("policy", false)
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	h.metrics.RecordAuthDecision("policy", true)
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, result)
}
