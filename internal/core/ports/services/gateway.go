package services

import (
	"context"

	"github.com/leasepay/leasepay_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ChargeStatus is the gateway-neutral status of a charge attempt.
type ChargeStatus string

const (
	ChargeSucceeded             ChargeStatus = "succeeded"
	ChargeProcessing            ChargeStatus = "processing"
	ChargeRequiresAction        ChargeStatus = "requires_action"
	ChargeRequiresPaymentMethod ChargeStatus = "requires_payment_method"
	ChargeCanceled              ChargeStatus = "canceled"
	ChargeFailed                ChargeStatus = "failed"
)

// CreateChargeParams carries everything needed to create a charge.
type CreateChargeParams struct {
	Amount         decimal.Decimal
	CurrencyCode   string
	Method         domain.PaymentMethod
	MethodToken    string // Gateway token for the card/bank instrument
	CustomerRef    string // Optional gateway customer reference
	IdempotencyKey string
	Metadata       map[string]string
}

// ChargeResult is the gateway's view of a charge.
type ChargeResult struct {
	ChargeRef     string
	Status        ChargeStatus
	ClientSecret  string // Present when the payer must complete an in-browser step
	FailureReason string
	ReceiptURL    string
}

// RefundResult is the gateway's view of a refund.
type RefundResult struct {
	RefundRef string
	Status    ChargeStatus
}

// WebhookEvent is a verified, parsed gateway webhook. For event types the
// adapter does not understand, ChargeRef is empty and Status is unset; the
// orchestrator accepts and ignores those.
type WebhookEvent struct {
	EventID       string
	EventType     string
	ChargeRef     string
	Status        ChargeStatus
	FailureReason string
}

// PaymentGateway is the external card/bank processor the orchestrator
// consumes. Implementations wrap a third-party API; every call must respect
// the deadline on ctx.
type PaymentGateway interface {
	CreateCharge(ctx context.Context, params CreateChargeParams) (*ChargeResult, error)
	ConfirmCharge(ctx context.Context, chargeRef, methodToken string) (*ChargeResult, error)
	GetCharge(ctx context.Context, chargeRef string) (*ChargeResult, error)
	CreateRefund(ctx context.Context, chargeRef string, amount *decimal.Decimal, reason string) (*RefundResult, error)
	// VerifyWebhookSignature checks the payload signature and parses the
	// event. Returns apperrors.ErrSignatureInvalid on verification failure.
	VerifyWebhookSignature(payload []byte, signatureHeader string) (*WebhookEvent, error)
	// GetChargeReceipts returns receipt URLs for a charge, best-effort.
	GetChargeReceipts(ctx context.Context, chargeRef string) ([]string, error)
}
