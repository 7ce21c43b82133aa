package repositories

import (
	"context"
	"time"

	"github.com/leasepay/leasepay_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerReader defines read operations for ledger accounts and entries.
type LedgerReader interface {
	// FindAccountByID retrieves an account owned by orgID.
	FindAccountByID(ctx context.Context, orgID, accountID string) (*domain.LedgerAccount, error)

	// FindAccountByCode retrieves an account by its chart-of-accounts code.
	FindAccountByCode(ctx context.Context, orgID, code string) (*domain.LedgerAccount, error)

	// ListAccounts retrieves all accounts for orgID, active and inactive.
	ListAccounts(ctx context.Context, orgID string) ([]domain.LedgerAccount, error)

	// FindTransactionsByReference retrieves the entries documenting one
	// business event.
	FindTransactionsByReference(ctx context.Context, orgID, referenceID string, referenceType domain.ReferenceType) ([]domain.Transaction, error)

	// ListTransactions retrieves a page of entries for orgID, optionally
	// narrowed to one account, newest first with token pagination.
	ListTransactions(ctx context.Context, orgID string, accountID *string, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// GetAccountTotals returns the debit and credit sums posted against an
	// account. Balance sign conventions are applied by the service layer.
	GetAccountTotals(ctx context.Context, orgID, accountID string) (debitTotal, creditTotal decimal.Decimal, err error)
}

// LedgerWriter defines write operations for ledger accounts and entries.
type LedgerWriter interface {
	// EnsureAccount inserts the account if no account with the same
	// (org, code) exists, and returns the surviving row. Safe to call
	// concurrently; the unique constraint on (org_id, code) backstops it.
	EnsureAccount(ctx context.Context, account domain.LedgerAccount) (*domain.LedgerAccount, error)

	// DeactivateAccount clears the active flag. Accounts are never deleted.
	DeactivateAccount(ctx context.Context, orgID, accountID, updatedBy string, now time.Time) error

	// PostEntries inserts all entries in one database transaction, or none
	// of them. All entries must share the same reference id/type; if any
	// entry for that reference already exists the batch is skipped and
	// created is false. Two concurrent calls for the same reference cannot
	// both insert: the existence check runs inside the inserting
	// transaction and a unique index on (reference_id, reference_type,
	// account_id, transaction_type) backstops it.
	PostEntries(ctx context.Context, entries []domain.Transaction) (created bool, err error)

	// ReconcileTransactions marks the given not-yet-reconciled entries owned
	// by orgID as reconciled and returns how many rows changed. Foreign and
	// already-reconciled ids are skipped, not errored.
	ReconcileTransactions(ctx context.Context, orgID string, transactionIDs []string, reconciledBy string, now time.Time) (int, error)
}

// LedgerRepositoryFacade combines all ledger repository interfaces.
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}
