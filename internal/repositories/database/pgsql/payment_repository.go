package pgsql

import (
	"context"
	"errors"
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

type PgxPaymentRepository struct {
	BaseRepository
}

// newPgxPaymentRepository creates a new repository for payment data.
func newPgxPaymentRepository(pool *pgxpool.Pool) portsrepo.PaymentRepositoryFacade {
	return &PgxPaymentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxPaymentRepository implements portsrepo.PaymentRepositoryFacade
var _ portsrepo.PaymentRepositoryFacade = (*PgxPaymentRepository)(nil)

const paymentColumns = `payment_id, org_id, lease_id, amount, late_fee_amount, total_amount, method, gateway_charge_ref, status, due_date, paid_at, failure_reason, parent_payment_id, metadata, created_at, created_by, last_updated_at, last_updated_by`

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(
		&p.PaymentID,
		&p.OrgID,
		&p.LeaseID,
		&p.Amount,
		&p.LateFeeAmount,
		&p.TotalAmount,
		&p.Method,
		&p.GatewayChargeRef,
		&p.Status,
		&p.DueDate,
		&p.PaidAt,
		&p.FailureReason,
		&p.ParentPaymentID,
		&p.Metadata,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SavePayment inserts a new payment row.
func (r *PgxPaymentRepository) SavePayment(ctx context.Context, payment domain.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err := r.Pool.Exec(ctx, query,
		payment.PaymentID,
		payment.OrgID,
		payment.LeaseID,
		payment.Amount,
		payment.LateFeeAmount,
		payment.TotalAmount,
		payment.Method,
		payment.GatewayChargeRef,
		payment.Status,
		payment.DueDate,
		payment.PaidAt,
		payment.FailureReason,
		payment.ParentPaymentID,
		payment.Metadata,
		payment.CreatedAt,
		payment.CreatedBy,
		payment.LastUpdatedAt,
		payment.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperrors.NewAppError(409, "payment "+payment.PaymentID+" already exists", apperrors.ErrDuplicate)
		}
		return apperrors.NewAppError(500, "failed to save payment "+payment.PaymentID, err)
	}
	return nil
}

// FindPaymentByID retrieves a payment owned by orgID. Missing rows and rows
// owned by a different org both come back as ErrNotFound.
func (r *PgxPaymentRepository) FindPaymentByID(ctx context.Context, orgID, paymentID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_id = $1 AND org_id = $2;`
	payment, err := scanPayment(r.Pool.QueryRow(ctx, query, paymentID, orgID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find payment by ID "+paymentID, err)
	}
	return payment, nil
}

// FindPaymentByChargeRef locates a payment by its gateway charge reference.
// Not org-scoped; the caller verifies ownership.
func (r *PgxPaymentRepository) FindPaymentByChargeRef(ctx context.Context, chargeRef string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE gateway_charge_ref = $1;`
	payment, err := scanPayment(r.Pool.QueryRow(ctx, query, chargeRef))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find payment by charge ref", err)
	}
	return payment, nil
}

// ListPayments retrieves a page of payments for orgID using token-based
// pagination, newest due date first with creation time as tie-breaker.
func (r *PgxPaymentRepository) ListPayments(ctx context.Context, orgID string, filter portsrepo.ListPaymentsFilter, limit int, nextToken *string) ([]domain.Payment, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + paymentColumns + ` FROM payments WHERE org_id = $1`
	args := []interface{}{orgID}

	if filter.LeaseID != nil && *filter.LeaseID != "" {
		baseQuery += ` AND lease_id = $` + strconv.Itoa(len(args)+1)
		args = append(args, *filter.LeaseID)
	}
	if filter.Status != nil && *filter.Status != "" {
		baseQuery += ` AND status = $` + strconv.Itoa(len(args)+1)
		args = append(args, *filter.Status)
	}
	if filter.Method != nil && *filter.Method != "" {
		baseQuery += ` AND method = $` + strconv.Itoa(len(args)+1)
		args = append(args, *filter.Method)
	}

	if nextToken != nil && *nextToken != "" {
		lastDueDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		baseQuery += ` AND (due_date, created_at) < ($` + strconv.Itoa(len(args)+1) + `, $` + strconv.Itoa(len(args)+2) + `)`
		args = append(args, lastDueDate, lastCreatedAt)
	}

	query := baseQuery + ` ORDER BY due_date DESC, created_at DESC LIMIT $` + strconv.Itoa(len(args)+1) + `;`
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query payments for org "+orgID, err)
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0, fetchLimit)
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan payment row for org "+orgID, err)
		}
		payments = append(payments, *payment)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating payment rows for org "+orgID, err)
	}

	var nextTokenVal *string
	if len(payments) > limit {
		last := payments[limit-1]
		token := pagination.EncodeToken(last.DueDate, last.CreatedAt)
		nextTokenVal = &token
		payments = payments[:limit]
	}
	return payments, nextTokenVal, nil
}

// SumRefundedAmount totals the amounts of refund rows pointing back at
// parentPaymentID. Failed refund rows do not exist, so no status filter is
// needed beyond excluding nothing.
func (r *PgxPaymentRepository) SumRefundedAmount(ctx context.Context, orgID, parentPaymentID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM payments
		WHERE org_id = $1 AND parent_payment_id = $2;
	`
	var total decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, orgID, parentPaymentID).Scan(&total); err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to total refunds of payment "+parentPaymentID, err)
	}
	return total, nil
}

// ListStaleProcessing returns payments stuck in PROCESSING whose last update
// is older than the cutoff. Runs across orgs for the reconciliation sweep.
func (r *PgxPaymentRepository) ListStaleProcessing(ctx context.Context, updatedBefore time.Time, limit int) ([]domain.Payment, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE status = $1 AND last_updated_at < $2
		ORDER BY last_updated_at
		LIMIT $3;
	`
	rows, err := r.Pool.Query(ctx, query, domain.PaymentProcessing, updatedBefore, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query stale processing payments", err)
	}
	defer rows.Close()

	payments := []domain.Payment{}
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan stale payment row", err)
		}
		payments = append(payments, *payment)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating stale payment rows", err)
	}
	return payments, nil
}

// UpdatePayment applies a patch to a payment owned by orgID. Nil patch
// fields are left unchanged via COALESCE.
func (r *PgxPaymentRepository) UpdatePayment(ctx context.Context, orgID, paymentID string, patch domain.PaymentPatch, updatedBy string, now time.Time) error {
	return r.updatePayment(ctx, r.Pool, orgID, paymentID, patch, updatedBy, now)
}

// execer is the subset of pgxpool.Pool and pgx.Tx the patch update needs.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func (r *PgxPaymentRepository) updatePayment(ctx context.Context, db execer, orgID, paymentID string, patch domain.PaymentPatch, updatedBy string, now time.Time) error {
	query := `
		UPDATE payments
		SET status = COALESCE($3, status),
		    gateway_charge_ref = COALESCE($4, gateway_charge_ref),
		    paid_at = COALESCE($5, paid_at),
		    failure_reason = COALESCE($6, failure_reason),
		    last_updated_at = $7,
		    last_updated_by = $8
		WHERE payment_id = $1 AND org_id = $2;
	`
	cmdTag, err := db.Exec(ctx, query,
		paymentID,
		orgID,
		patch.Status,
		patch.GatewayChargeRef,
		patch.PaidAt,
		patch.FailureReason,
		now,
		updatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update payment "+paymentID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("payment " + paymentID + " not found for update")
	}
	return nil
}

// SaveRefundWithEntries atomically inserts the refund payment row, patches
// the original payment's status and posts the reversing ledger entries.
// Nothing is persisted if any step fails.
func (r *PgxPaymentRepository) SaveRefundWithEntries(ctx context.Context, refund domain.Payment, originalPatch domain.PaymentPatch, entries []domain.Transaction) error {
	if refund.ParentPaymentID == nil {
		return apperrors.NewAppError(400, "refund row must reference its original payment", nil)
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	insertQuery := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err = tx.Exec(ctx, insertQuery,
		refund.PaymentID,
		refund.OrgID,
		refund.LeaseID,
		refund.Amount,
		refund.LateFeeAmount,
		refund.TotalAmount,
		refund.Method,
		refund.GatewayChargeRef,
		refund.Status,
		refund.DueDate,
		refund.PaidAt,
		refund.FailureReason,
		refund.ParentPaymentID,
		refund.Metadata,
		refund.CreatedAt,
		refund.CreatedBy,
		refund.LastUpdatedAt,
		refund.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert refund payment "+refund.PaymentID, err)
	}

	if err := r.updatePayment(ctx, tx, refund.OrgID, *refund.ParentPaymentID, originalPatch, refund.CreatedBy, refund.CreatedAt); err != nil {
		return err
	}

	if err := insertEntriesTx(ctx, tx, entries); err != nil {
		return apperrors.NewAppError(500, "failed to insert refund entries for "+refund.PaymentID, err)
	}

	return r.Commit(ctx, tx)
}
