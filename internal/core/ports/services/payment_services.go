package services

import (
	"context"
	"time"

	"github.com/leasepay/leasepay_backend/internal/core/domain"
	"github.com/leasepay/leasepay_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// PaymentSvcFacade is the payment lifecycle orchestrator.
type PaymentSvcFacade interface {
	// ProcessPayment computes any late fee, creates the payment record and
	// asks the gateway to charge the total. The returned payment carries
	// the status mapped from the gateway's immediate result.
	ProcessPayment(ctx context.Context, orgID string, req dto.ProcessPaymentRequest, userID string) (*domain.Payment, error)

	// ConfirmPayment re-fetches the gateway's current view of a charge and
	// applies the same transition rules as the webhook path. Idempotent:
	// re-confirming a completed payment creates no duplicate ledger entries.
	ConfirmPayment(ctx context.Context, orgID, chargeRef, userID string) (*domain.Payment, error)

	// ProcessWebhook verifies the signature, locates the payment by charge
	// reference and applies the status transition. Returns handled=false
	// for unknown event types and for payments not owned by orgHint;
	// neither is an error.
	ProcessWebhook(ctx context.Context, payload []byte, signatureHeader, orgHint string) (handled bool, err error)

	// RefundPayment executes a full or partial refund: gateway first, then
	// refund row + original status + reversing entries in one unit of work.
	RefundPayment(ctx context.Context, orgID string, req dto.RefundPaymentRequest, userID string) (*domain.Payment, error)

	// GetPaymentDetails returns one payment with best-effort receipt URLs.
	GetPaymentDetails(ctx context.Context, orgID, paymentID string) (*dto.PaymentDetailsResponse, error)

	// GetPaymentHistory returns a filtered, paginated payment listing.
	GetPaymentHistory(ctx context.Context, orgID string, params dto.ListPaymentsParams) (*dto.ListPaymentsResponse, error)

	// CalculateLateFee computes the late fee a lease owes for a due date,
	// evaluated now.
	CalculateLateFee(ctx context.Context, orgID, leaseID string, dueDate time.Time) (decimal.Decimal, error)

	// ReconcilePendingPayments sweeps payments stuck in PROCESSING longer
	// than maxAge and syncs each against the gateway's authoritative
	// status. Returns how many payments were examined.
	ReconcilePendingPayments(ctx context.Context, maxAge time.Duration) (int, error)
}
