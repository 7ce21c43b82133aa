package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/leasepay/leasepay_backend/internal/apperrors"
	"github.com/leasepay/leasepay_backend/internal/core/domain"
	portsrepo "github.com/leasepay/leasepay_backend/internal/core/ports/repositories"
	"github.com/leasepay/leasepay_backend/internal/utils/pagination"
)

const pgUniqueViolation = "23505"

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for ledger accounts and entries.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxLedgerRepository implements portsrepo.LedgerRepositoryFacade
var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

const accountColumns = `account_id, org_id, code, name, account_type, currency_code, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (*domain.LedgerAccount, error) {
	var a domain.LedgerAccount
	err := row.Scan(
		&a.AccountID,
		&a.OrgID,
		&a.Code,
		&a.Name,
		&a.AccountType,
		&a.CurrencyCode,
		&a.IsActive,
		&a.CreatedAt,
		&a.CreatedBy,
		&a.LastUpdatedAt,
		&a.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FindAccountByID retrieves an account owned by orgID.
func (r *PgxLedgerRepository) FindAccountByID(ctx context.Context, orgID, accountID string) (*domain.LedgerAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM ledger_accounts WHERE account_id = $1 AND org_id = $2;`
	account, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID, orgID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find account by ID "+accountID, err)
	}
	return account, nil
}

// FindAccountByCode retrieves an account by its chart-of-accounts code.
func (r *PgxLedgerRepository) FindAccountByCode(ctx context.Context, orgID, code string) (*domain.LedgerAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM ledger_accounts WHERE org_id = $1 AND code = $2;`
	account, err := scanAccount(r.Pool.QueryRow(ctx, query, orgID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find account by code "+code, err)
	}
	return account, nil
}

// ListAccounts retrieves all accounts for orgID, active and inactive.
func (r *PgxLedgerRepository) ListAccounts(ctx context.Context, orgID string) ([]domain.LedgerAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM ledger_accounts WHERE org_id = $1 ORDER BY code;`
	rows, err := r.Pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query accounts for org "+orgID, err)
	}
	defer rows.Close()

	accounts := []domain.LedgerAccount{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account row for org "+orgID, err)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating account rows for org "+orgID, err)
	}
	return accounts, nil
}

// EnsureAccount inserts the account unless an account with the same
// (org, code) already exists, then returns the surviving row. ON CONFLICT DO
// NOTHING makes concurrent calls race-safe; whichever insert wins, both
// callers read back the same row.
func (r *PgxLedgerRepository) EnsureAccount(ctx context.Context, account domain.LedgerAccount) (*domain.LedgerAccount, error) {
	insertQuery := `
		INSERT INTO ledger_accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (org_id, code) DO NOTHING;
	`
	_, err := r.Pool.Exec(ctx, insertQuery,
		account.AccountID,
		account.OrgID,
		account.Code,
		account.Name,
		account.AccountType,
		account.CurrencyCode,
		account.IsActive,
		account.CreatedAt,
		account.CreatedBy,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to ensure account "+account.Code+" for org "+account.OrgID, err)
	}

	return r.FindAccountByCode(ctx, account.OrgID, account.Code)
}

// DeactivateAccount clears the active flag. Accounts are never deleted.
func (r *PgxLedgerRepository) DeactivateAccount(ctx context.Context, orgID, accountID, updatedBy string, now time.Time) error {
	query := `
		UPDATE ledger_accounts
		SET is_active = FALSE,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE account_id = $1 AND org_id = $2;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, accountID, orgID, now, updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to deactivate account "+accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("account " + accountID + " not found for deactivation")
	}
	return nil
}

const transactionColumns = `transaction_id, org_id, account_id, amount, transaction_type, currency_code, category, reference_id, reference_type, description, is_reconciled, reconciled_at, reconciled_by, created_at, created_by, last_updated_at, last_updated_by`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(
		&t.TransactionID,
		&t.OrgID,
		&t.AccountID,
		&t.Amount,
		&t.TransactionType,
		&t.CurrencyCode,
		&t.Category,
		&t.ReferenceID,
		&t.ReferenceType,
		&t.Description,
		&t.IsReconciled,
		&t.ReconciledAt,
		&t.ReconciledBy,
		&t.CreatedAt,
		&t.CreatedBy,
		&t.LastUpdatedAt,
		&t.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FindTransactionsByReference retrieves the entries documenting one business event.
func (r *PgxLedgerRepository) FindTransactionsByReference(ctx context.Context, orgID, referenceID string, referenceType domain.ReferenceType) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM ledger_transactions
		WHERE org_id = $1 AND reference_id = $2 AND reference_type = $3
		ORDER BY created_at, transaction_id;
	`
	rows, err := r.Pool.Query(ctx, query, orgID, referenceID, referenceType)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query transactions for reference "+referenceID, err)
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan transaction row for reference "+referenceID, err)
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating transaction rows for reference "+referenceID, err)
	}
	return transactions, nil
}

// ListTransactions retrieves a page of entries for orgID, optionally narrowed
// to one account, newest first with token-based pagination.
func (r *PgxLedgerRepository) ListTransactions(ctx context.Context, orgID string, accountID *string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to determine whether a next page exists.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + transactionColumns + `
		FROM ledger_transactions
		WHERE org_id = $1
	`
	args := []interface{}{orgID}

	if accountID != nil && *accountID != "" {
		baseQuery += ` AND account_id = $` + strconv.Itoa(len(args)+1)
		args = append(args, *accountID)
	}

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastTransactionID, decodeErr := pagination.DecodeCursorToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		// Tuple comparison on (created_at, transaction_id): entries posted in
		// one batch share a created_at, so the timestamp alone cannot place a
		// page boundary inside a batch without losing its remaining legs.
		baseQuery += ` AND (created_at, transaction_id) < ($` + strconv.Itoa(len(args)+1) + `, $` + strconv.Itoa(len(args)+2) + `)`
		args = append(args, lastCreatedAt, lastTransactionID)
	}

	query := baseQuery + ` ORDER BY created_at DESC, transaction_id DESC LIMIT $` + strconv.Itoa(len(args)+1) + `;`
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query transactions for org "+orgID, err)
	}
	defer rows.Close()

	transactions := make([]domain.Transaction, 0, fetchLimit)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan transaction row for org "+orgID, err)
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating transaction rows for org "+orgID, err)
	}

	var nextTokenVal *string
	if len(transactions) > limit {
		last := transactions[limit-1]
		token := pagination.EncodeCursorToken(last.CreatedAt, last.TransactionID)
		nextTokenVal = &token
		transactions = transactions[:limit]
	}
	return transactions, nextTokenVal, nil
}

// GetAccountTotals returns the debit and credit sums posted against an account.
func (r *PgxLedgerRepository) GetAccountTotals(ctx context.Context, orgID, accountID string) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT
		    COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'DEBIT'), 0),
		    COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'CREDIT'), 0)
		FROM ledger_transactions
		WHERE org_id = $1 AND account_id = $2;
	`
	var debitTotal, creditTotal decimal.Decimal
	err := r.Pool.QueryRow(ctx, query, orgID, accountID).Scan(&debitTotal, &creditTotal)
	if err != nil {
		return decimal.Zero, decimal.Zero, apperrors.NewAppError(500, "failed to total entries for account "+accountID, err)
	}
	return debitTotal, creditTotal, nil
}

// PostEntries inserts all entries in one database transaction, or none of
// them. The existence check for the batch's reference runs inside the
// inserting transaction, and the unique index on (reference_id,
// reference_type, account_id, transaction_type) backstops the race where two
// transactions pass the check concurrently: the loser surfaces a unique
// violation that is reported as created=false, not as an error.
func (r *PgxLedgerRepository) PostEntries(ctx context.Context, entries []domain.Transaction) (bool, error) {
	if len(entries) == 0 {
		return false, apperrors.NewAppError(400, "no entries to post", nil)
	}
	refID := entries[0].ReferenceID
	refType := entries[0].ReferenceType
	orgID := entries[0].OrgID
	for _, e := range entries {
		if e.ReferenceID != refID || e.ReferenceType != refType || e.OrgID != orgID {
			return false, apperrors.NewAppError(400, "entries in one batch must share org and reference", nil)
		}
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer r.Rollback(ctx, tx)

	var exists bool
	existsQuery := `
		SELECT EXISTS (
		    SELECT 1 FROM ledger_transactions
		    WHERE org_id = $1 AND reference_id = $2 AND reference_type = $3
		);
	`
	if err := tx.QueryRow(ctx, existsQuery, orgID, refID, refType).Scan(&exists); err != nil {
		return false, apperrors.NewAppError(500, "failed to check existing entries for reference "+refID, err)
	}
	if exists {
		return false, nil
	}

	if err := insertEntriesTx(ctx, tx, entries); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			// A concurrent transaction posted this reference first.
			return false, nil
		}
		return false, apperrors.NewAppError(500, "failed to insert entries for reference "+refID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return false, err
	}
	return true, nil
}

// insertEntriesTx queues all entry inserts on one pgx batch inside tx.
// Shared by PostEntries and the refund write path.
func insertEntriesTx(ctx context.Context, tx pgx.Tx, entries []domain.Transaction) error {
	batch := &pgx.Batch{}
	insertQuery := `
		INSERT INTO ledger_transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	for _, e := range entries {
		batch.Queue(insertQuery,
			e.TransactionID,
			e.OrgID,
			e.AccountID,
			e.Amount,
			e.TransactionType,
			e.CurrencyCode,
			e.Category,
			e.ReferenceID,
			e.ReferenceType,
			e.Description,
			e.IsReconciled,
			e.ReconciledAt,
			e.ReconciledBy,
			e.CreatedAt,
			e.CreatedBy,
			e.LastUpdatedAt,
			e.LastUpdatedBy,
		)
	}

	br := tx.SendBatch(ctx, batch)
	return br.Close()
}

// ReconcileTransactions marks the given not-yet-reconciled entries owned by
// orgID as reconciled. Foreign and already-reconciled ids are skipped.
func (r *PgxLedgerRepository) ReconcileTransactions(ctx context.Context, orgID string, transactionIDs []string, reconciledBy string, now time.Time) (int, error) {
	if len(transactionIDs) == 0 {
		return 0, nil
	}
	query := `
		UPDATE ledger_transactions
		SET is_reconciled = TRUE,
		    reconciled_at = $3,
		    reconciled_by = $4,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE org_id = $1
		  AND transaction_id = ANY($2)
		  AND is_reconciled = FALSE;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, orgID, transactionIDs, now, reconciledBy)
	if err != nil {
		return 0, apperrors.NewAppError(500, fmt.Sprintf("failed to reconcile %d transactions for org %s", len(transactionIDs), orgID), err)
	}
	return int(cmdTag.RowsAffected()), nil
}
