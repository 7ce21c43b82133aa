package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the lifecycle state of a payment record.
// Transitions are one-directional: PENDING/PROCESSING lead to a terminal
// state, and only COMPLETED may move on to PARTIAL_REFUND or REFUNDED.
type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "PENDING"
	PaymentProcessing    PaymentStatus = "PROCESSING"
	PaymentCompleted     PaymentStatus = "COMPLETED"
	PaymentFailed        PaymentStatus = "FAILED"
	PaymentCancelled     PaymentStatus = "CANCELLED"
	PaymentPartialRefund PaymentStatus = "PARTIAL_REFUND"
	PaymentRefunded      PaymentStatus = "REFUNDED"
)

// IsTerminal reports whether no further gateway-driven transition applies.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentFailed, PaymentCancelled, PaymentRefunded:
		return true
	}
	return false
}

// PaymentMethod is the instrument chosen by the payer.
type PaymentMethod string

const (
	MethodCard  PaymentMethod = "CARD"
	MethodBank  PaymentMethod = "BANK"
	MethodOther PaymentMethod = "OTHER"
)

// Payment represents one money movement against a lease. Refunds are new
// rows pointing back at the original via ParentPaymentID; payment rows are
// never physically deleted.
type Payment struct {
	PaymentID        string            `json:"paymentID"` // Primary key (UUID)
	OrgID            string            `json:"orgID"`     // Owning organization (NON-NULL)
	LeaseID          string            `json:"leaseID"`   // FK -> leases.lease_id
	Amount           decimal.Decimal   `json:"amount"`    // Requested amount
	LateFeeAmount    decimal.Decimal   `json:"lateFeeAmount"`
	TotalAmount      decimal.Decimal   `json:"totalAmount"` // Amount + LateFeeAmount
	Method           PaymentMethod     `json:"method"`
	GatewayChargeRef *string           `json:"gatewayChargeRef,omitempty"` // Nil until the gateway call succeeds
	Status           PaymentStatus     `json:"status"`
	DueDate          time.Time         `json:"dueDate"`
	PaidAt           *time.Time        `json:"paidAt,omitempty"`
	FailureReason    *string           `json:"failureReason,omitempty"`
	ParentPaymentID  *string           `json:"parentPaymentID,omitempty"` // Set on refund rows
	Metadata         map[string]string `json:"metadata,omitempty"`
	AuditFields
}

// PaymentPatch lists the payment fields the orchestrator may change after
// creation. A nil field means "unchanged"; a set pointer overwrites,
// including explicit clears via pointer-to-zero.
type PaymentPatch struct {
	Status           *PaymentStatus
	GatewayChargeRef *string
	PaidAt           *time.Time
	FailureReason    *string
}
