package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/leasepay/leasepay_backend/internal/apperrors"
	portssvc "github.com/leasepay/leasepay_backend/internal/core/ports/services"
	"github.com/leasepay/leasepay_backend/internal/dto"
	"github.com/leasepay/leasepay_backend/internal/middleware"
)

// paymentHandler handles HTTP requests related to payments.
type paymentHandler struct {
	paymentService portssvc.PaymentSvcFacade
}

// newPaymentHandler creates a new paymentHandler.
func newPaymentHandler(paymentService portssvc.PaymentSvcFacade) *paymentHandler {
	return &paymentHandler{paymentService: paymentService}
}

// authIdentity pulls the verified user and org out of the request context.
func authIdentity(c *gin.Context) (userID, orgID string, ok bool) {
	userID, uok := middleware.GetUserIDFromCtx(c.Request.Context())
	orgID, ook := middleware.GetOrgIDFromCtx(c.Request.Context())
	return userID, orgID, uok && ook
}

// processPayment godoc
// @Summary Process a rent payment
// @Description Creates a payment for a lease, adds any late fee, and charges the payment gateway
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   payment body dto.ProcessPaymentRequest true "Payment details"
// @Success 201 {object} dto.PaymentResponse "The created payment with its gateway status"
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Lease not found"
// @Failure 502 {object} map[string]string "Payment gateway failure"
// @Router /payments [post]
func (h *paymentHandler) processPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.ProcessPaymentRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for ProcessPayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, orgID, ok := authIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payment, err := h.paymentService.ProcessPayment(c.Request.Context(), orgID, req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Validation error processing payment", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Lease not found for payment", slog.String("lease_id", req.LeaseID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Lease not found"})
		case errors.Is(err, apperrors.ErrGateway):
			// The payment record exists with status FAILED; return it so the
			// caller can see what happened.
			logger.Warn("Gateway error processing payment", slog.String("error", err.Error()))
			body := gin.H{"error": "Payment gateway failure"}
			if payment != nil {
				body["payment"] = dto.ToPaymentResponse(payment)
			}
			c.JSON(http.StatusBadGateway, body)
		default:
			logger.Error("Failed to process payment", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process payment"})
		}
		return
	}

	logger.Info("Payment processed", slog.String("payment_id", payment.PaymentID), slog.String("status", string(payment.Status)))
	c.JSON(http.StatusCreated, dto.ToPaymentResponse(payment))
}

// confirmPayment godoc
// @Summary Confirm a payment against the gateway
// @Description Re-fetches the gateway's view of the charge and applies the resulting status transition
// @Tags payments
// @Produce  json
// @Param   chargeRef path string true "Gateway charge reference"
// @Success 200 {object} dto.PaymentResponse "The payment after applying the gateway status"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Payment not found"
// @Failure 502 {object} map[string]string "Payment gateway failure"
// @Router /payments/confirm/{chargeRef} [post]
func (h *paymentHandler) confirmPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	chargeRef := c.Param("chargeRef")

	userID, orgID, ok := authIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payment, err := h.paymentService.ConfirmPayment(c.Request.Context(), orgID, chargeRef, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		case errors.Is(err, apperrors.ErrGateway):
			logger.Warn("Gateway error confirming payment", slog.String("error", err.Error()))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Payment gateway failure"})
		default:
			logger.Error("Failed to confirm payment", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to confirm payment"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

// refundPayment godoc
// @Summary Refund a completed payment
// @Description Issues a full or partial refund through the gateway and posts the reversing ledger entries
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   refund body dto.RefundPaymentRequest true "Refund details"
// @Success 201 {object} dto.PaymentResponse "The refund payment record"
// @Failure 400 {object} map[string]string "Invalid amount"
// @Failure 404 {object} map[string]string "Payment not found"
// @Failure 409 {object} map[string]string "Payment is not refundable"
// @Failure 502 {object} map[string]string "Payment gateway failure"
// @Router /payments/refund [post]
func (h *paymentHandler) refundPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.RefundPaymentRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for RefundPayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, orgID, ok := authIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	refund, err := h.paymentService.RefundPayment(c.Request.Context(), orgID, req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Validation error refunding payment", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		case errors.Is(err, apperrors.ErrConflict):
			logger.Warn("Payment not refundable", slog.String("payment_id", req.PaymentID), slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrGateway):
			logger.Error("Gateway error refunding payment", slog.String("error", err.Error()))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Payment gateway failure"})
		default:
			logger.Error("Failed to refund payment", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refund payment"})
		}
		return
	}

	logger.Info("Refund created", slog.String("refund_payment_id", refund.PaymentID))
	c.JSON(http.StatusCreated, dto.ToPaymentResponse(refund))
}

// getPayment godoc
// @Summary Get payment details
// @Description Retrieves one payment with best-effort gateway receipt URLs
// @Tags payments
// @Produce  json
// @Param   paymentID path string true "Payment ID"
// @Success 200 {object} dto.PaymentDetailsResponse "Payment with receipts"
// @Failure 404 {object} map[string]string "Payment not found"
// @Router /payments/{paymentID} [get]
func (h *paymentHandler) getPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	paymentID := c.Param("paymentID")

	_, orgID, ok := authIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	details, err := h.paymentService.GetPaymentDetails(c.Request.Context(), orgID, paymentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
			return
		}
		logger.Error("Failed to get payment", slog.String("error", err.Error()), slog.String("payment_id", paymentID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve payment"})
		return
	}

	c.JSON(http.StatusOK, details)
}

// listPayments godoc
// @Summary List payment history
// @Description Retrieves a filtered, token-paginated page of payments for the caller's org
// @Tags payments
// @Produce  json
// @Param   leaseID query string false "Filter by lease"
// @Param   status query string false "Filter by status"
// @Param   method query string false "Filter by method"
// @Param   limit query int false "Page size (default 20)"
// @Param   nextToken query string false "Pagination token from the previous page"
// @Success 200 {object} dto.ListPaymentsResponse "Page of payments"
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Router /payments [get]
func (h *paymentHandler) listPayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	params := dto.ListPaymentsParams{}
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	_, orgID, ok := authIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	page, err := h.paymentService.GetPaymentHistory(c.Request.Context(), orgID, params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to list payments", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve payments"})
		return
	}

	c.JSON(http.StatusOK, page)
}

// getLateFee godoc
// @Summary Calculate the late fee for a lease
// @Description Computes the fee owed for a due date as of now, without creating a payment
// @Tags payments
// @Produce  json
// @Param   leaseID path string true "Lease ID"
// @Param   dueDate query string true "Due date (RFC 3339)"
// @Success 200 {object} dto.LateFeeResponse "The computed fee"
// @Failure 400 {object} map[string]string "Invalid due date"
// @Failure 404 {object} map[string]string "Lease not found"
// @Router /leases/{leaseID}/late-fee [get]
func (h *paymentHandler) getLateFee(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	leaseID := c.Param("leaseID")

	dueDate, err := time.Parse(time.RFC3339, c.Query("dueDate"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid dueDate, expected RFC 3339"})
		return
	}

	_, orgID, ok := authIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	fee, err := h.paymentService.CalculateLateFee(c.Request.Context(), orgID, leaseID, dueDate)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Lease not found"})
			return
		}
		logger.Error("Failed to calculate late fee", slog.String("error", err.Error()), slog.String("lease_id", leaseID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate late fee"})
		return
	}

	c.JSON(http.StatusOK, dto.LateFeeResponse{LeaseID: leaseID, DueDate: dueDate, LateFee: fee})
}

// registerPaymentRoutes registers payment specific routes
func registerPaymentRoutes(group *gin.RouterGroup, paymentService portssvc.PaymentSvcFacade) {
	h := newPaymentHandler(paymentService)

	payments := group.Group("/payments")
	{
		payments.POST("", h.processPayment)
		payments.GET("", h.listPayments)
		payments.POST("/refund", h.refundPayment)
		payments.POST("/confirm/:chargeRef", h.confirmPayment)
		payments.GET("/:paymentID", h.getPayment)
	}

	leases := group.Group("/leases")
	{
		leases.GET("/:leaseID/late-fee", h.getLateFee)
	}
}
