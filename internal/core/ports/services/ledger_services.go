package services

import (
	"context"

	"github.com/leasepay/leasepay_backend/internal/core/domain"
	"github.com/leasepay/leasepay_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// LedgerSvcFacade is the double-entry ledger engine consumed by the payment
// orchestrator and the HTTP layer.
type LedgerSvcFacade interface {
	// GetOrCreateDefaultChartOfAccounts lazily creates the fixed default
	// accounts for an org. Idempotent and safe under concurrency.
	GetOrCreateDefaultChartOfAccounts(ctx context.Context, orgID, userID string) ([]domain.LedgerAccount, error)

	// PostEntries persists one atomic batch of entries for a single
	// reference. Returns created=false without error when entries for that
	// reference already exist.
	PostEntries(ctx context.Context, orgID string, req dto.PostEntriesRequest, userID string) (created bool, err error)

	// GetAccountBalance computes the balance of one account with the
	// account-type sign convention applied.
	GetAccountBalance(ctx context.Context, orgID, accountID string) (decimal.Decimal, error)

	// GetLedgerBalances returns every account of the org with its balance.
	GetLedgerBalances(ctx context.Context, orgID string) ([]dto.AccountBalanceResponse, error)

	// ListTransactions returns a page of ledger entries.
	ListTransactions(ctx context.Context, orgID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)

	// ReconcileTransactions marks entries as reconciled and returns the
	// count actually updated.
	ReconcileTransactions(ctx context.Context, orgID string, req dto.ReconcileRequest, userID string) (int, error)

	// FindEntriesByReference returns the entries documenting one payment or
	// refund.
	FindEntriesByReference(ctx context.Context, orgID, referenceID string, referenceType domain.ReferenceType) ([]domain.Transaction, error)

	// DeactivateAccount soft-disables an account.
	DeactivateAccount(ctx context.Context, orgID, accountID, userID string) error
}
