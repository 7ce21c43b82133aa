package repositories

import (
	"context"
	"time"

	"github.com/leasepay/leasepay_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ListPaymentsFilter narrows a payment history listing. Nil fields are not
// applied. OrgID is deliberately absent: it is a mandatory argument on the
// repository method, never an optional filter.
type ListPaymentsFilter struct {
	LeaseID *string
	Status  *domain.PaymentStatus
	Method  *domain.PaymentMethod
}

// PaymentReader defines read operations for payment data.
type PaymentReader interface {
	// FindPaymentByID retrieves a payment owned by orgID. Returns
	// apperrors.ErrNotFound for missing rows and for rows owned by a
	// different org.
	FindPaymentByID(ctx context.Context, orgID, paymentID string) (*domain.Payment, error)

	// FindPaymentByChargeRef locates a payment by its gateway charge
	// reference. This lookup is not org-scoped because webhooks identify
	// payments by charge ref alone; the caller must verify ownership.
	FindPaymentByChargeRef(ctx context.Context, chargeRef string) (*domain.Payment, error)

	// ListPayments retrieves a page of payments for orgID using token-based
	// pagination, newest due date first.
	ListPayments(ctx context.Context, orgID string, filter ListPaymentsFilter, limit int, nextToken *string) ([]domain.Payment, *string, error)

	// SumRefundedAmount totals the amounts of refund rows whose parent is
	// parentPaymentID.
	SumRefundedAmount(ctx context.Context, orgID, parentPaymentID string) (decimal.Decimal, error)

	// ListStaleProcessing returns payments stuck in PROCESSING whose last
	// update is older than the cutoff. Used by the reconciliation sweep,
	// which runs across orgs.
	ListStaleProcessing(ctx context.Context, updatedBefore time.Time, limit int) ([]domain.Payment, error)
}

// PaymentWriter defines write operations for payment data.
type PaymentWriter interface {
	// SavePayment inserts a new payment row.
	SavePayment(ctx context.Context, payment domain.Payment) error

	// UpdatePayment applies a patch to a payment owned by orgID. Nil patch
	// fields are left unchanged.
	UpdatePayment(ctx context.Context, orgID, paymentID string, patch domain.PaymentPatch, updatedBy string, now time.Time) error

	// SaveRefundWithEntries atomically inserts the refund payment row,
	// patches the original payment's status, and posts the reversing ledger
	// entries. Nothing is persisted if any step fails.
	SaveRefundWithEntries(ctx context.Context, refund domain.Payment, originalPatch domain.PaymentPatch, entries []domain.Transaction) error
}

// PaymentRepositoryFacade combines all payment repository interfaces.
type PaymentRepositoryFacade interface {
	PaymentReader
	PaymentWriter
}

// LeaseReader defines the read-only lease access the payment core needs.
type LeaseReader interface {
	// FindLeaseByID retrieves a lease owned by orgID. Returns
	// apperrors.ErrNotFound for missing or foreign rows.
	FindLeaseByID(ctx context.Context, orgID, leaseID string) (*domain.Lease, error)
}
