package dto

import (
	"time"

	"github.com/leasepay/leasepay_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerEntryInput is one leg of a posting batch.
type LedgerEntryInput struct {
	AccountID   string                 `json:"accountID" binding:"required"`
	Direction   domain.TransactionType `json:"direction" binding:"required,oneof=DEBIT CREDIT"`
	Amount      decimal.Decimal        `json:"amount" binding:"required"`
	Description string                 `json:"description"`
}

// PostEntriesRequest posts a batch of entries documenting one business event.
type PostEntriesRequest struct {
	ReferenceID   string               `json:"referenceID" binding:"required"`
	ReferenceType domain.ReferenceType `json:"referenceType" binding:"required,oneof=PAYMENT REFUND"`
	CurrencyCode  string               `json:"currencyCode" binding:"required"`
	Category      string               `json:"category"`
	Entries       []LedgerEntryInput   `json:"entries" binding:"required,min=2,dive"`
}

// TransactionResponse is the externally visible shape of a ledger entry.
type TransactionResponse struct {
	TransactionID string                 `json:"transactionID"`
	AccountID     string                 `json:"accountID"`
	Amount        decimal.Decimal        `json:"amount"`
	Direction     domain.TransactionType `json:"direction"`
	CurrencyCode  string                 `json:"currencyCode"`
	Category      string                 `json:"category,omitempty"`
	ReferenceID   string                 `json:"referenceID"`
	ReferenceType domain.ReferenceType   `json:"referenceType"`
	Description   string                 `json:"description,omitempty"`
	IsReconciled  bool                   `json:"isReconciled"`
	ReconciledAt  *time.Time             `json:"reconciledAt,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
}

// ListTransactionsParams holds filters and pagination for ledger listings.
type ListTransactionsParams struct {
	AccountID *string `form:"accountID"`
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListTransactionsResponse is a page of ledger entries.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ReconcileRequest marks a batch of entries as reconciled.
type ReconcileRequest struct {
	TransactionIDs []string `json:"transactionIDs" binding:"required,min=1"`
}

// ReconcileResponse reports how many entries were actually reconciled.
type ReconcileResponse struct {
	ReconciledCount int `json:"reconciledCount"`
}

// AccountResponse is the externally visible shape of a ledger account.
type AccountResponse struct {
	AccountID    string             `json:"accountID"`
	Code         string             `json:"code"`
	Name         string             `json:"name"`
	AccountType  domain.AccountType `json:"accountType"`
	CurrencyCode string             `json:"currencyCode"`
	IsActive     bool               `json:"isActive"`
}

// AccountBalanceResponse pairs an account with its computed balance.
type AccountBalanceResponse struct {
	Account AccountResponse `json:"account"`
	Balance decimal.Decimal `json:"balance"`
}

// ToTransactionResponse converts a domain.Transaction to its response DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: txn.TransactionID,
		AccountID:     txn.AccountID,
		Amount:        txn.Amount,
		Direction:     txn.TransactionType,
		CurrencyCode:  txn.CurrencyCode,
		Category:      txn.Category,
		ReferenceID:   txn.ReferenceID,
		ReferenceType: txn.ReferenceType,
		Description:   txn.Description,
		IsReconciled:  txn.IsReconciled,
		ReconciledAt:  txn.ReconciledAt,
		CreatedAt:     txn.CreatedAt,
	}
}

// ToTransactionResponses converts a slice of domain transactions.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i := range txns {
		responses[i] = ToTransactionResponse(&txns[i])
	}
	return responses
}

// ToAccountResponse converts a domain.LedgerAccount to its response DTO.
func ToAccountResponse(a *domain.LedgerAccount) AccountResponse {
	return AccountResponse{
		AccountID:    a.AccountID,
		Code:         a.Code,
		Name:         a.Name,
		AccountType:  a.AccountType,
		CurrencyCode: a.CurrencyCode,
		IsActive:     a.IsActive,
	}
}
