package dto

import (
	"time"

	"github.com/leasepay/leasepay_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ProcessPaymentRequest is the payload for initiating a payment.
type ProcessPaymentRequest struct {
	LeaseID     string               `json:"leaseID" binding:"required"`
	Amount      decimal.Decimal      `json:"amount" binding:"required"`
	Method      domain.PaymentMethod `json:"method" binding:"required,oneof=CARD BANK OTHER"`
	MethodToken string               `json:"methodToken"` // Required for CARD and BANK
	CustomerRef string               `json:"customerRef"`
	DueDate     time.Time            `json:"dueDate" binding:"required"`
	Metadata    map[string]string    `json:"metadata"`
}

// RefundPaymentRequest is the payload for refunding a completed payment.
// Amount defaults to the full remaining un-refunded amount when nil.
type RefundPaymentRequest struct {
	PaymentID string           `json:"paymentID" binding:"required"`
	Amount    *decimal.Decimal `json:"amount"`
	Reason    string           `json:"reason"`
}

// PaymentResponse is the externally visible shape of a payment.
type PaymentResponse struct {
	PaymentID        string               `json:"paymentID"`
	LeaseID          string               `json:"leaseID"`
	Amount           decimal.Decimal      `json:"amount"`
	LateFeeAmount    decimal.Decimal      `json:"lateFeeAmount"`
	TotalAmount      decimal.Decimal      `json:"totalAmount"`
	Method           domain.PaymentMethod `json:"method"`
	GatewayChargeRef *string              `json:"gatewayChargeRef,omitempty"`
	Status           domain.PaymentStatus `json:"status"`
	DueDate          time.Time            `json:"dueDate"`
	PaidAt           *time.Time           `json:"paidAt,omitempty"`
	FailureReason    *string              `json:"failureReason,omitempty"`
	ParentPaymentID  *string              `json:"parentPaymentID,omitempty"`
	CreatedAt        time.Time            `json:"createdAt"`
}

// PaymentDetailsResponse bundles a payment with its best-effort receipt URLs.
type PaymentDetailsResponse struct {
	Payment  PaymentResponse `json:"payment"`
	Receipts []string        `json:"receipts,omitempty"`
}

// ListPaymentsParams holds filters and pagination for payment history.
type ListPaymentsParams struct {
	LeaseID   *string               `form:"leaseID"`
	Status    *domain.PaymentStatus `form:"status"`
	Method    *domain.PaymentMethod `form:"method"`
	Limit     int                   `form:"limit"`
	NextToken *string               `form:"nextToken"`
}

// ListPaymentsResponse is a page of payment history.
type ListPaymentsResponse struct {
	Payments  []PaymentResponse `json:"payments"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// LateFeeResponse reports a computed late fee for a lease and due date.
type LateFeeResponse struct {
	LeaseID string          `json:"leaseID"`
	DueDate time.Time       `json:"dueDate"`
	LateFee decimal.Decimal `json:"lateFee"`
}

// ToPaymentResponse converts a domain.Payment to its response DTO.
func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:        p.PaymentID,
		LeaseID:          p.LeaseID,
		Amount:           p.Amount,
		LateFeeAmount:    p.LateFeeAmount,
		TotalAmount:      p.TotalAmount,
		Method:           p.Method,
		GatewayChargeRef: p.GatewayChargeRef,
		Status:           p.Status,
		DueDate:          p.DueDate,
		PaidAt:           p.PaidAt,
		FailureReason:    p.FailureReason,
		ParentPaymentID:  p.ParentPaymentID,
		CreatedAt:        p.CreatedAt,
	}
}

// ToPaymentResponses converts a slice of domain payments.
func ToPaymentResponses(payments []domain.Payment) []PaymentResponse {
	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = ToPaymentResponse(&payments[i])
	}
	return responses
}
