package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates whether a ledger entry is a Debit or a Credit.
type TransactionType string

const (
	Debit  TransactionType = "DEBIT"
	Credit TransactionType = "CREDIT"
)

// ReferenceType identifies the business event a ledger entry documents.
type ReferenceType string

const (
	ReferencePayment ReferenceType = "PAYMENT"
	ReferenceRefund  ReferenceType = "REFUND"
)

// Transaction represents a single debit or credit leg posted against exactly
// one ledger account. Once created it is immutable except for the
// reconciliation fields.
type Transaction struct {
	TransactionID   string          `json:"transactionID"` // Primary key (UUID)
	OrgID           string          `json:"orgID"`         // Owning organization (NON-NULL)
	AccountID       string          `json:"accountID"`     // FK -> ledger_accounts.account_id
	Amount          decimal.Decimal `json:"amount"`        // Positive, minor-unit precision
	TransactionType TransactionType `json:"transactionType"`
	CurrencyCode    string          `json:"currencyCode"`
	Category        string          `json:"category"`      // Optional grouping label
	ReferenceID     string          `json:"referenceID"`   // Payment ID this entry documents
	ReferenceType   ReferenceType   `json:"referenceType"` // PAYMENT or REFUND
	Description     string          `json:"description"`
	IsReconciled    bool            `json:"isReconciled"`
	ReconciledAt    *time.Time      `json:"reconciledAt,omitempty"`
	ReconciledBy    *string         `json:"reconciledBy,omitempty"`
	AuditFields
}
