// Package stripegw adapts the Stripe API to the payment gateway port.
// Nothing outside this package imports stripe-go; gateway failures surface
// as apperrors sentinels.
package stripegw

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/charge"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/refund"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/leasepay/leasepay_backend/internal/apperrors"
	"github.com/leasepay/leasepay_backend/internal/core/domain"
	portssvc "github.com/leasepay/leasepay_backend/internal/core/ports/services"
)

// Config carries the Stripe credentials.
type Config struct {
	SecretKey     string // STRIPE_SECRET_KEY
	WebhookSecret string // STRIPE_WEBHOOK_SECRET
}

type stripeGateway struct {
	webhookSecret string
}

// NewStripeGateway creates a gateway backed by Stripe PaymentIntents.
func NewStripeGateway(cfg Config) portssvc.PaymentGateway {
	stripe.Key = cfg.SecretKey
	return &stripeGateway{webhookSecret: cfg.WebhookSecret}
}

var _ portssvc.PaymentGateway = (*stripeGateway)(nil)

// toMinorUnits converts a decimal amount to Stripe's integer minor units.
// Supported currencies here all carry two decimal places.
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// CreateCharge creates and, when an instrument token is present, confirms a
// PaymentIntent for the total amount. The idempotency key makes network
// retries safe: Stripe returns the original intent instead of charging twice.
func (g *stripeGateway) CreateCharge(ctx context.Context, p portssvc.CreateChargeParams) (*portssvc.ChargeResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(toMinorUnits(p.Amount)),
		Currency: stripe.String(p.CurrencyCode),
	}
	params.Context = ctx
	if p.IdempotencyKey != "" {
		params.IdempotencyKey = stripe.String(p.IdempotencyKey)
	}
	if p.MethodToken != "" {
		params.PaymentMethod = stripe.String(p.MethodToken)
		params.Confirm = stripe.Bool(true)
	}
	if p.CustomerRef != "" {
		params.Customer = stripe.String(p.CustomerRef)
	}
	if p.Method == domain.MethodBank {
		params.PaymentMethodTypes = stripe.StringSlice([]string{"us_bank_account"})
	}
	if len(p.Metadata) > 0 {
		params.Metadata = make(map[string]string, len(p.Metadata))
		for k, v := range p.Metadata {
			params.Metadata[k] = v
		}
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return resultFromIntent(pi), nil
}

// ConfirmCharge confirms an intent that was waiting on a payment method.
func (g *stripeGateway) ConfirmCharge(ctx context.Context, chargeRef, methodToken string) (*portssvc.ChargeResult, error) {
	params := &stripe.PaymentIntentConfirmParams{}
	params.Context = ctx
	if methodToken != "" {
		params.PaymentMethod = stripe.String(methodToken)
	}

	pi, err := paymentintent.Confirm(chargeRef, params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return resultFromIntent(pi), nil
}

// GetCharge fetches the authoritative current state of an intent.
func (g *stripeGateway) GetCharge(ctx context.Context, chargeRef string) (*portssvc.ChargeResult, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(chargeRef, params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return resultFromIntent(pi), nil
}

// CreateRefund issues a refund against an intent. A nil amount refunds the
// full remaining charge.
func (g *stripeGateway) CreateRefund(ctx context.Context, chargeRef string, amount *decimal.Decimal, reason string) (*portssvc.RefundResult, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(chargeRef),
	}
	params.Context = ctx
	if amount != nil {
		params.Amount = stripe.Int64(toMinorUnits(*amount))
	}
	if reason != "" {
		params.Metadata = map[string]string{"reason": reason}
	}

	ref, err := refund.New(params)
	if err != nil {
		return nil, mapStripeError(err)
	}

	status := portssvc.ChargeSucceeded
	if ref.Status == stripe.RefundStatusPending {
		status = portssvc.ChargeProcessing
	}
	return &portssvc.RefundResult{RefundRef: ref.ID, Status: status}, nil
}

// VerifyWebhookSignature checks the Stripe-Signature header and parses the
// event into the gateway-neutral shape. Payment intent events carry a
// ChargeRef and mapped status; everything else comes back with both empty so
// the orchestrator can acknowledge and ignore it.
func (g *stripeGateway) VerifyWebhookSignature(payload []byte, signatureHeader string) (*portssvc.WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, g.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSignatureInvalid, err)
	}

	parsed := &portssvc.WebhookEvent{
		EventID:   event.ID,
		EventType: string(event.Type),
	}

	switch event.Type {
	case "payment_intent.succeeded",
		"payment_intent.processing",
		"payment_intent.payment_failed",
		"payment_intent.canceled",
		"payment_intent.requires_action":
		var pi stripe.PaymentIntent
		if err := pi.UnmarshalJSON(event.Data.Raw); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payment intent from event %s: %w", event.ID, err)
		}
		result := resultFromIntent(&pi)
		parsed.ChargeRef = result.ChargeRef
		parsed.Status = result.Status
		parsed.FailureReason = result.FailureReason
	}

	return parsed, nil
}

// GetChargeReceipts collects receipt URLs from the charges under an intent.
func (g *stripeGateway) GetChargeReceipts(ctx context.Context, chargeRef string) ([]string, error) {
	params := &stripe.ChargeListParams{
		PaymentIntent: stripe.String(chargeRef),
	}
	params.Context = ctx

	var receipts []string
	iter := charge.List(params)
	for iter.Next() {
		if url := iter.Charge().ReceiptURL; url != "" {
			receipts = append(receipts, url)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, mapStripeError(err)
	}
	return receipts, nil
}

// resultFromIntent maps a PaymentIntent to the gateway-neutral result.
func resultFromIntent(pi *stripe.PaymentIntent) *portssvc.ChargeResult {
	result := &portssvc.ChargeResult{
		ChargeRef:    pi.ID,
		ClientSecret: pi.ClientSecret,
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		result.Status = portssvc.ChargeSucceeded
	case stripe.PaymentIntentStatusProcessing:
		result.Status = portssvc.ChargeProcessing
	case stripe.PaymentIntentStatusRequiresAction, stripe.PaymentIntentStatusRequiresConfirmation, stripe.PaymentIntentStatusRequiresCapture:
		result.Status = portssvc.ChargeRequiresAction
	case stripe.PaymentIntentStatusRequiresPaymentMethod:
		// Also Stripe's resting state after a declined confirmation attempt;
		// the decline itself arrives in LastPaymentError.
		if pi.LastPaymentError != nil {
			result.Status = portssvc.ChargeFailed
		} else {
			result.Status = portssvc.ChargeRequiresPaymentMethod
		}
	case stripe.PaymentIntentStatusCanceled:
		result.Status = portssvc.ChargeCanceled
	default:
		result.Status = portssvc.ChargeFailed
	}

	if pi.LastPaymentError != nil {
		result.FailureReason = pi.LastPaymentError.Msg
	}
	if pi.LatestCharge != nil {
		result.ReceiptURL = pi.LatestCharge.ReceiptURL
	}
	return result
}

// mapStripeError keeps stripe-go error types out of the service layer.
func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		switch {
		case stripeErr.HTTPStatusCode == http.StatusNotFound:
			return fmt.Errorf("%w: %s", apperrors.ErrNotFound, stripeErr.Msg)
		case stripeErr.Code == stripe.ErrorCodeCardDeclined:
			return fmt.Errorf("%w: card was declined (%s)", apperrors.ErrGateway, stripeErr.Msg)
		case stripeErr.Code == stripe.ErrorCodeExpiredCard:
			return fmt.Errorf("%w: card has expired", apperrors.ErrGateway)
		case stripeErr.HTTPStatusCode >= http.StatusInternalServerError:
			return fmt.Errorf("%w: processor unavailable", apperrors.ErrGateway)
		}
		return fmt.Errorf("%w: %s", apperrors.ErrGateway, stripeErr.Msg)
	}
	return fmt.Errorf("%w: %v", apperrors.ErrGateway, err)
}
