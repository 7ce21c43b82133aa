package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leasepay/leasepay_backend/internal/apperrors"
	"github.com/leasepay/leasepay_backend/internal/core/domain"
	portssvc "github.com/leasepay/leasepay_backend/internal/core/ports/services"
	"github.com/leasepay/leasepay_backend/internal/dto"
	"github.com/leasepay/leasepay_backend/internal/middleware"
)

// ledgerHandler handles HTTP requests related to the ledger.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// newLedgerHandler creates a new ledgerHandler.
func newLedgerHandler(ledgerService portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ledgerService}
}

// listAccounts godoc
// @Summary List the org's chart of accounts
// @Description Returns every ledger account, creating the default chart on first use
// @Tags ledger
// @Produce  json
// @Success 200 {array} dto.AccountResponse "Accounts ordered by code"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /ledger/accounts [get]
func (h *ledgerHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, orgID, ok := authIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	accounts, err := h.ledgerService.GetOrCreateDefaultChartOfAccounts(c.Request.Context(), orgID, userID)
	if err != nil {
		logger.Error("Failed to list accounts", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve accounts"})
		return
	}

	responses := make([]dto.AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = dto.ToAccountResponse(&accounts[i])
	}
	c.JSON(http.StatusOK, responses)
}

// getAccountBalance godoc
// @Summary Get an account balance
// @Description Computes the balance with the account-type sign convention applied
// @Tags ledger
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Success 200 {object} map[string]string "Account ID and balance"
// @Failure 404 {object} map[string]string "Account not found"
// @Router /ledger/accounts/{accountID}/balance [get]
func (h *ledgerHandler) getAccountBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	_, orgID, ok := authIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	balance, err := h.ledgerService.GetAccountBalance(c.Request.Context(), orgID, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		logger.Error("Failed to get account balance", slog.String("error", err.Error()), slog.String("account_id", accountID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve balance"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"accountID": accountID, "balance": balance})
}

// getBalances godoc
// @Summary Get all account balances
// @Description Returns every account of the org with its computed balance
// @Tags ledger
// @Produce  json
// @Success 200 {array} dto.AccountBalanceResponse "Accounts with balances"
// @Router /ledger/balances [get]
func (h *ledgerHandler) getBalances(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	_, orgID, ok := authIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	balances, err := h.ledgerService.GetLedgerBalances(c.Request.Context(), orgID)
	if err != nil {
		logger.Error("Failed to get ledger balances", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve balances"})
		return
	}

	c.JSON(http.StatusOK, balances)
}

// postEntries godoc
// @Summary Post a batch of ledger entries
// @Description Posts an atomic batch of entries documenting one business event. Re-posting the same reference is a no-op.
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   entries body dto.PostEntriesRequest true "Entry batch"
// @Success 201 {object} map[string]bool "created=true when the batch was inserted"
// @Success 200 {object} map[string]bool "created=false when the reference was already posted"
// @Failure 400 {object} map[string]string "Invalid batch"
// @Router /ledger/entries [post]
func (h *ledgerHandler) postEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.PostEntriesRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for PostEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, orgID, ok := authIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	created, err := h.ledgerService.PostEntries(c.Request.Context(), orgID, req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Validation error posting entries", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to post entries", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to post entries"})
		}
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"created": created})
}

// listTransactions godoc
// @Summary List ledger entries
// @Description Returns a token-paginated page of entries, optionally for one account
// @Tags ledger
// @Produce  json
// @Param   accountID query string false "Filter by account"
// @Param   limit query int false "Page size (default 20)"
// @Param   nextToken query string false "Pagination token from the previous page"
// @Success 200 {object} dto.ListTransactionsResponse "Page of entries"
// @Router /ledger/transactions [get]
func (h *ledgerHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	params := dto.ListTransactionsParams{}
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	_, orgID, ok := authIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	page, err := h.ledgerService.ListTransactions(c.Request.Context(), orgID, params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to list transactions", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transactions"})
		return
	}

	c.JSON(http.StatusOK, page)
}

// getEntriesByReference godoc
// @Summary Get the entries documenting one payment or refund
// @Tags ledger
// @Produce  json
// @Param   referenceID path string true "Payment or refund ID"
// @Param   referenceType query string false "PAYMENT or REFUND (default PAYMENT)"
// @Success 200 {array} dto.TransactionResponse "Entries for the reference"
// @Router /ledger/references/{referenceID} [get]
func (h *ledgerHandler) getEntriesByReference(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	referenceID := c.Param("referenceID")

	referenceType := domain.ReferenceType(c.DefaultQuery("referenceType", string(domain.ReferencePayment)))
	if referenceType != domain.ReferencePayment && referenceType != domain.ReferenceRefund {
		c.JSON(http.StatusBadRequest, gin.H{"error": "referenceType must be PAYMENT or REFUND"})
		return
	}

	_, orgID, ok := authIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entries, err := h.ledgerService.FindEntriesByReference(c.Request.Context(), orgID, referenceID, referenceType)
	if err != nil {
		logger.Error("Failed to get entries by reference", slog.String("error", err.Error()), slog.String("reference_id", referenceID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve entries"})
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponses(entries))
}

// reconcileTransactions godoc
// @Summary Mark ledger entries as reconciled
// @Description Marks the given entries as matched against an external statement. Foreign and already-reconciled ids are skipped.
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   reconcile body dto.ReconcileRequest true "Entry ids to reconcile"
// @Success 200 {object} dto.ReconcileResponse "How many entries were updated"
// @Failure 400 {object} map[string]string "Invalid request format"
// @Router /ledger/reconcile [post]
func (h *ledgerHandler) reconcileTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.ReconcileRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, orgID, ok := authIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	count, err := h.ledgerService.ReconcileTransactions(c.Request.Context(), orgID, req, userID)
	if err != nil {
		logger.Error("Failed to reconcile transactions", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reconcile transactions"})
		return
	}

	logger.Info("Transactions reconciled", slog.Int("count", count))
	c.JSON(http.StatusOK, dto.ReconcileResponse{ReconciledCount: count})
}

// deactivateAccount godoc
// @Summary Deactivate a ledger account
// @Description Soft-disables an account; its history remains queryable
// @Tags ledger
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Success 204 "Account deactivated"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Default accounts cannot be deactivated while referenced"
// @Router /ledger/accounts/{accountID} [delete]
func (h *ledgerHandler) deactivateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	userID, orgID, ok := authIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.ledgerService.DeactivateAccount(c.Request.Context(), orgID, accountID, userID); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		case errors.Is(err, apperrors.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to deactivate account", slog.String("error", err.Error()), slog.String("account_id", accountID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate account"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// registerLedgerRoutes registers ledger specific routes
func registerLedgerRoutes(group *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	ledger := group.Group("/ledger")
	{
		ledger.GET("/accounts", h.listAccounts)
		ledger.GET("/accounts/:accountID/balance", h.getAccountBalance)
		ledger.DELETE("/accounts/:accountID", h.deactivateAccount)
		ledger.GET("/balances", h.getBalances)
		ledger.POST("/entries", h.postEntries)
		ledger.GET("/transactions", h.listTransactions)
		ledger.GET("/references/:referenceID", h.getEntriesByReference)
		ledger.POST("/reconcile", h.reconcileTransactions)
	}
}
