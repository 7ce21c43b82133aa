package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	"github.com/leasepay/leasepay_backend/internal/apperrors"
	portssvc "github.com/leasepay/leasepay_backend/internal/core/ports/services"
	"github.com/leasepay/leasepay_backend/internal/middleware"
)

// webhookHandler receives gateway webhook deliveries. The endpoint is
// unauthenticated; trust comes from the payload signature, and the org in
// the URL is only a hint that is checked against the payment's true owner.
type webhookHandler struct {
	paymentService portssvc.PaymentSvcFacade
}

func newWebhookHandler(paymentService portssvc.PaymentSvcFacade) *webhookHandler {
	return &webhookHandler{paymentService: paymentService}
}

// handleGatewayWebhook godoc
// @Summary Receive a payment gateway webhook
// @Description Verifies the signature and applies the status transition. Duplicate and out-of-order deliveries are safe; unknown event types are acknowledged and ignored.
// @Tags webhooks
// @Accept  json
// @Produce  json
// @Param   orgID path string true "Owning organization hint"
// @Success 200 {object} map[string]bool "received=true, processed reports whether a payment was updated"
// @Failure 400 {object} map[string]string "Signature verification failed"
// @Router /webhooks/gateway/{orgID} [post]
func (h *webhookHandler) handleGatewayWebhook(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgHint := c.Param("orgID")

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}
	signature := c.GetHeader("Stripe-Signature")

	handled, err := h.paymentService.ProcessWebhook(c.Request.Context(), payload, signature, orgHint)
	if err != nil {
		if errors.Is(err, apperrors.ErrSignatureInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Signature verification failed"})
			return
		}
		// A transient processing failure gets a 5xx so the gateway retries
		// the delivery; processing is idempotent, so retries are safe.
		logger.Error("Failed to process webhook", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process webhook"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true, "processed": handled})
}

// registerWebhookRoutes registers the public, rate-limited webhook endpoint
func registerWebhookRoutes(r *gin.Engine, paymentService portssvc.PaymentSvcFacade, rateLimiter *limiter.Limiter) {
	h := newWebhookHandler(paymentService)

	webhooks := r.Group("/webhooks", middleware.RateLimit(rateLimiter))
	{
		webhooks.POST("/gateway/:orgID", h.handleGatewayWebhook)
	}
}
