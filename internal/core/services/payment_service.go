package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/leasepay/leasepay_backend/internal/apperrors"
	"github.com/leasepay/leasepay_backend/internal/core/domain"
	portsrepo "github.com/leasepay/leasepay_backend/internal/core/ports/repositories"
	portssvc "github.com/leasepay/leasepay_backend/internal/core/ports/services"
	"github.com/leasepay/leasepay_backend/internal/dto"
	"github.com/leasepay/leasepay_backend/internal/middleware"
	"github.com/leasepay/leasepay_backend/internal/utils/latefee"
)

var (
	ErrMethodTokenMissing    = errors.New("payment method token is required for the selected method")
	ErrPaymentNotRefundable  = errors.New("payment is not in a refundable state")
	ErrRefundExceedsOriginal = errors.New("refund amount exceeds the amount remaining un-refunded")
)

// systemActor is the audit identity used for transitions driven by webhooks
// and background reconciliation rather than a signed-in user.
const systemActor = "system"

// persistAttempts bounds the DB retries that run after a gateway call has
// already succeeded. The gateway side cannot be rolled back, so the local
// write is retried rather than abandoned.
const persistAttempts = 3

// paymentService drives the payment lifecycle state machine. It is the only
// writer of Payment rows; ledger entries are delegated to the ledger engine.
type paymentService struct {
	paymentRepo    portsrepo.PaymentRepositoryFacade
	leaseRepo      portsrepo.LeaseReader
	ledgerSvc      portssvc.LedgerSvcFacade
	gateway        portssvc.PaymentGateway
	gatewayTimeout time.Duration
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	paymentRepo portsrepo.PaymentRepositoryFacade,
	leaseRepo portsrepo.LeaseReader,
	ledgerSvc portssvc.LedgerSvcFacade,
	gateway portssvc.PaymentGateway,
	gatewayTimeout time.Duration,
) portssvc.PaymentSvcFacade {
	return &paymentService{
		paymentRepo:    paymentRepo,
		leaseRepo:      leaseRepo,
		ledgerSvc:      ledgerSvc,
		gateway:        gateway,
		gatewayTimeout: gatewayTimeout,
	}
}

var _ portssvc.PaymentSvcFacade = (*paymentService)(nil)

// gatewayCtx bounds every call to the external processor.
func (s *paymentService) gatewayCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.gatewayTimeout)
}

// ProcessPayment creates a payment record, charges the gateway for
// amount + late fee, and maps the gateway's immediate result onto the
// payment's status.
func (s *paymentService) ProcessPayment(ctx context.Context, orgID string, req dto.ProcessPaymentRequest, userID string) (*domain.Payment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: payment amount must be positive", apperrors.ErrValidation)
	}
	if (req.Method == domain.MethodCard || req.Method == domain.MethodBank) && req.MethodToken == "" {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrMethodTokenMissing)
	}

	lease, err := s.leaseRepo.FindLeaseByID(ctx, orgID, req.LeaseID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to fetch lease for payment", slog.String("lease_id", req.LeaseID), slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("failed to find lease %s: %w", req.LeaseID, err)
	}

	now := time.Now().UTC()
	lateFee := latefee.Calculate(latefee.Terms{
		MonthlyRent:     lease.MonthlyRent,
		LateFeePercent:  lease.LateFeePercent,
		GracePeriodDays: lease.GracePeriodDays,
	}, req.DueDate, now)
	total := req.Amount.Add(lateFee)

	payment := domain.Payment{
		PaymentID:     uuid.NewString(),
		OrgID:         orgID,
		LeaseID:       lease.LeaseID,
		Amount:        req.Amount,
		LateFeeAmount: lateFee,
		TotalAmount:   total,
		Method:        req.Method,
		Status:        domain.PaymentProcessing,
		DueDate:       req.DueDate,
		Metadata:      req.Metadata,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.paymentRepo.SavePayment(ctx, payment); err != nil {
		logger.Error("Failed to save payment record", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	gctx, cancel := s.gatewayCtx(ctx)
	defer cancel()
	result, err := s.gateway.CreateCharge(gctx, portssvc.CreateChargeParams{
		Amount:         total,
		CurrencyCode:   lease.CurrencyCode,
		Method:         req.Method,
		MethodToken:    req.MethodToken,
		CustomerRef:    req.CustomerRef,
		IdempotencyKey: payment.PaymentID,
		Metadata: map[string]string{
			"payment_id": payment.PaymentID,
			"org_id":     orgID,
			"lease_id":   lease.LeaseID,
		},
	})
	if err != nil {
		// A gateway failure is terminal for this attempt: the payment is
		// marked FAILED with the reason recorded, never left stuck in
		// PROCESSING. Retrying is the caller's decision.
		reason := err.Error()
		failed := domain.PaymentFailed
		if patchErr := s.paymentRepo.UpdatePayment(ctx, orgID, payment.PaymentID, domain.PaymentPatch{
			Status:        &failed,
			FailureReason: &reason,
		}, userID, time.Now().UTC()); patchErr != nil {
			logger.Error("Failed to record gateway failure on payment", slog.String("payment_id", payment.PaymentID), slog.String("error", patchErr.Error()))
		}
		payment.Status = domain.PaymentFailed
		payment.FailureReason = &reason
		logger.Warn("Gateway charge creation failed", slog.String("payment_id", payment.PaymentID), slog.String("error", reason))
		return &payment, fmt.Errorf("%w: %v", apperrors.ErrGateway, err)
	}

	// The charge exists at the gateway now; losing its reference would leave
	// the row looking never-charged, so the patch is retried like the refund
	// write is.
	chargeRef := result.ChargeRef
	var refPatchErr error
	for attempt := 1; attempt <= persistAttempts; attempt++ {
		refPatchErr = s.paymentRepo.UpdatePayment(ctx, orgID, payment.PaymentID, domain.PaymentPatch{
			GatewayChargeRef: &chargeRef,
		}, userID, time.Now().UTC())
		if refPatchErr == nil {
			break
		}
		logger.Error("Failed to record charge reference, retrying",
			slog.Int("attempt", attempt),
			slog.String("payment_id", payment.PaymentID),
			slog.String("error", refPatchErr.Error()))
		time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
	}
	if refPatchErr != nil {
		// The charge ref here and the payment_id in the charge metadata are
		// the recovery handles for this payment.
		logger.Error("Charge created but reference could not be recorded",
			slog.String("payment_id", payment.PaymentID),
			slog.String("charge_ref", chargeRef),
			slog.String("error", refPatchErr.Error()))
		return nil, fmt.Errorf("failed to record charge reference %s: %w", chargeRef, refPatchErr)
	}
	payment.GatewayChargeRef = &chargeRef

	updated, err := s.applyChargeResult(ctx, &payment, result, userID)
	if err != nil {
		return nil, err
	}

	logger.Info("Payment processed",
		slog.String("payment_id", updated.PaymentID),
		slog.String("status", string(updated.Status)),
		slog.String("total", total.String()))
	return updated, nil
}

// ConfirmPayment re-fetches the gateway's current view of a charge and
// applies the same transition rules as the webhook path.
func (s *paymentService) ConfirmPayment(ctx context.Context, orgID, chargeRef, userID string) (*domain.Payment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	payment, err := s.paymentRepo.FindPaymentByChargeRef(ctx, chargeRef)
	if err != nil {
		return nil, fmt.Errorf("failed to find payment for charge: %w", err)
	}
	if payment.OrgID != orgID {
		// Answer as if the payment does not exist rather than revealing it
		// belongs to someone else.
		return nil, apperrors.ErrNotFound
	}

	gctx, cancel := s.gatewayCtx(ctx)
	defer cancel()
	result, err := s.gateway.GetCharge(gctx, chargeRef)
	if err != nil {
		logger.Error("Failed to fetch charge from gateway", slog.String("charge_ref", chargeRef), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrGateway, err)
	}

	return s.applyChargeResult(ctx, payment, result, userID)
}

// ProcessWebhook verifies and applies one gateway webhook delivery. The
// handler is at-least-once and out-of-order tolerant: duplicate deliveries
// are no-ops and unknown event types are accepted and ignored.
func (s *paymentService) ProcessWebhook(ctx context.Context, payload []byte, signatureHeader, orgHint string) (bool, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	event, err := s.gateway.VerifyWebhookSignature(payload, signatureHeader)
	if err != nil {
		logger.Warn("Webhook signature verification failed", slog.String("error", err.Error()))
		return false, fmt.Errorf("%w: %v", apperrors.ErrSignatureInvalid, err)
	}

	if event.ChargeRef == "" || event.Status == "" {
		// Forward compatible: event types the adapter does not understand
		// are acknowledged without processing.
		logger.Info("Ignoring unhandled webhook event type", slog.String("event_type", event.EventType))
		return false, nil
	}

	payment, err := s.paymentRepo.FindPaymentByChargeRef(ctx, event.ChargeRef)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Webhook references unknown charge", slog.String("charge_ref", event.ChargeRef))
			return false, nil
		}
		return false, fmt.Errorf("failed to find payment for webhook: %w", err)
	}

	if payment.OrgID != orgHint {
		// A payment found under the wrong org is treated as not processed,
		// not as an error, to avoid leaking cross-tenant existence.
		logger.Warn("Webhook org hint does not match payment owner", slog.String("charge_ref", event.ChargeRef))
		return false, nil
	}

	result := &portssvc.ChargeResult{
		ChargeRef:     event.ChargeRef,
		Status:        event.Status,
		FailureReason: event.FailureReason,
	}
	if _, err := s.applyChargeResult(ctx, payment, result, systemActor); err != nil {
		return false, err
	}

	logger.Info("Webhook processed",
		slog.String("event_type", event.EventType),
		slog.String("payment_id", payment.PaymentID))
	return true, nil
}

// applyChargeResult maps a gateway charge status onto the payment state
// machine and persists the transition. Transitions are idempotent and
// one-directional: applying "succeeded" to an already-completed payment is a
// no-op, and nothing moves a terminal payment back to PENDING/PROCESSING.
func (s *paymentService) applyChargeResult(ctx context.Context, payment *domain.Payment, result *portssvc.ChargeResult, actor string) (*domain.Payment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	switch result.Status {
	case portssvc.ChargeSucceeded:
		switch payment.Status {
		case domain.PaymentCompleted, domain.PaymentPartialRefund, domain.PaymentRefunded:
			return payment, nil
		}
		// Ledger first: the payment may only become COMPLETED once its
		// postings are durable. A crash in between is healed by the next
		// confirm/webhook delivery finding the entries already posted.
		if err := s.postPaymentEntries(ctx, payment, actor); err != nil {
			return nil, err
		}
		now := time.Now().UTC()
		completed := domain.PaymentCompleted
		if err := s.paymentRepo.UpdatePayment(ctx, payment.OrgID, payment.PaymentID, domain.PaymentPatch{
			Status: &completed,
			PaidAt: &now,
		}, actor, now); err != nil {
			return nil, fmt.Errorf("failed to mark payment completed: %w", err)
		}
		payment.Status = domain.PaymentCompleted
		payment.PaidAt = &now
		return payment, nil

	case portssvc.ChargeProcessing, portssvc.ChargeRequiresAction:
		if payment.Status != domain.PaymentPending && payment.Status != domain.PaymentProcessing {
			return payment, nil
		}
		return s.transition(ctx, payment, domain.PaymentProcessing, nil, actor)

	case portssvc.ChargeRequiresPaymentMethod:
		if payment.Status != domain.PaymentPending && payment.Status != domain.PaymentProcessing {
			return payment, nil
		}
		return s.transition(ctx, payment, domain.PaymentPending, nil, actor)

	case portssvc.ChargeCanceled:
		if payment.Status.IsTerminal() || payment.Status == domain.PaymentCompleted {
			return payment, nil
		}
		return s.transition(ctx, payment, domain.PaymentCancelled, nil, actor)

	default:
		if payment.Status.IsTerminal() || payment.Status == domain.PaymentCompleted {
			return payment, nil
		}
		reason := result.FailureReason
		if reason == "" {
			reason = fmt.Sprintf("gateway reported status %s", result.Status)
		}
		logger.Warn("Charge failed", slog.String("payment_id", payment.PaymentID), slog.String("reason", reason))
		return s.transition(ctx, payment, domain.PaymentFailed, &reason, actor)
	}
}

// transition persists a simple status change.
func (s *paymentService) transition(ctx context.Context, payment *domain.Payment, status domain.PaymentStatus, failureReason *string, actor string) (*domain.Payment, error) {
	if payment.Status == status && failureReason == nil {
		return payment, nil
	}
	now := time.Now().UTC()
	if err := s.paymentRepo.UpdatePayment(ctx, payment.OrgID, payment.PaymentID, domain.PaymentPatch{
		Status:        &status,
		FailureReason: failureReason,
	}, actor, now); err != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	payment.Status = status
	if failureReason != nil {
		payment.FailureReason = failureReason
	}
	return payment, nil
}

// postPaymentEntries posts the standard payment entries for a successful
// charge: CREDIT rent income and DEBIT cash for the rent amount, plus a
// CREDIT to late-fee income when a fee was charged. The late-fee credit has
// no matching cash debit leg; that imbalance is part of the documented
// posting contract (see DESIGN.md).
func (s *paymentService) postPaymentEntries(ctx context.Context, payment *domain.Payment, actor string) error {
	accounts, err := s.ledgerSvc.GetOrCreateDefaultChartOfAccounts(ctx, payment.OrgID, actor)
	if err != nil {
		return fmt.Errorf("failed to resolve chart of accounts: %w", err)
	}
	byCode := accountsByCode(accounts)

	rentAccount, cashAccount := byCode[domain.CodeRentIncome], byCode[domain.CodeCash]
	if rentAccount == nil || cashAccount == nil {
		return fmt.Errorf("%w: default rent/cash accounts missing", apperrors.ErrInternal)
	}

	entries := []dto.LedgerEntryInput{
		{
			AccountID:   rentAccount.AccountID,
			Direction:   domain.Credit,
			Amount:      payment.Amount,
			Description: fmt.Sprintf("Rent payment for lease %s", payment.LeaseID),
		},
		{
			AccountID:   cashAccount.AccountID,
			Direction:   domain.Debit,
			Amount:      payment.Amount,
			Description: fmt.Sprintf("Cash received for payment %s", payment.PaymentID),
		},
	}
	if payment.LateFeeAmount.GreaterThan(decimal.Zero) {
		lateFeeAccount := byCode[domain.CodeLateFeeIncome]
		if lateFeeAccount == nil {
			return fmt.Errorf("%w: default late-fee account missing", apperrors.ErrInternal)
		}
		entries = append(entries, dto.LedgerEntryInput{
			AccountID:   lateFeeAccount.AccountID,
			Direction:   domain.Credit,
			Amount:      payment.LateFeeAmount,
			Description: fmt.Sprintf("Late fee for payment %s", payment.PaymentID),
		})
	}

	// created=false means another delivery already posted these entries;
	// that is success, not an error.
	_, err = s.ledgerSvc.PostEntries(ctx, payment.OrgID, dto.PostEntriesRequest{
		ReferenceID:   payment.PaymentID,
		ReferenceType: domain.ReferencePayment,
		CurrencyCode:  currencyOf(accounts),
		Category:      "RENT_PAYMENT",
		Entries:       entries,
	}, actor)
	if err != nil {
		return fmt.Errorf("failed to post payment entries: %w", err)
	}
	return nil
}

// RefundPayment refunds a completed payment, fully or partially. The
// gateway refund is issued first; the local refund row, the original
// payment's new status and the reversing ledger entries then commit in one
// unit of work, retried a bounded number of times because the processor-side
// refund cannot be taken back.
func (s *paymentService) RefundPayment(ctx context.Context, orgID string, req dto.RefundPaymentRequest, userID string) (*domain.Payment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	original, err := s.paymentRepo.FindPaymentByID(ctx, orgID, req.PaymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find payment %s: %w", req.PaymentID, err)
	}

	if original.Status != domain.PaymentCompleted && original.Status != domain.PaymentPartialRefund {
		return nil, fmt.Errorf("%w: %s (status %s)", apperrors.ErrConflict, ErrPaymentNotRefundable, original.Status)
	}
	if original.GatewayChargeRef == nil {
		return nil, fmt.Errorf("%w: payment %s has no gateway charge", apperrors.ErrConflict, original.PaymentID)
	}

	alreadyRefunded, err := s.paymentRepo.SumRefundedAmount(ctx, orgID, original.PaymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to total prior refunds: %w", err)
	}
	remaining := original.TotalAmount.Sub(alreadyRefunded)

	amount := remaining
	if req.Amount != nil {
		amount = *req.Amount
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: refund amount must be positive", apperrors.ErrValidation)
	}
	if amount.GreaterThan(remaining) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrRefundExceedsOriginal)
	}

	newStatus := domain.PaymentPartialRefund
	if alreadyRefunded.Add(amount).Equal(original.TotalAmount) {
		newStatus = domain.PaymentRefunded
	}

	gctx, cancel := s.gatewayCtx(ctx)
	defer cancel()
	refundResult, err := s.gateway.CreateRefund(gctx, *original.GatewayChargeRef, &amount, req.Reason)
	if err != nil {
		logger.Error("Gateway refund failed", slog.String("payment_id", original.PaymentID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrGateway, err)
	}

	now := time.Now().UTC()
	refundRef := refundResult.RefundRef
	refund := domain.Payment{
		PaymentID:        uuid.NewString(),
		OrgID:            orgID,
		LeaseID:          original.LeaseID,
		Amount:           amount,
		LateFeeAmount:    decimal.Zero,
		TotalAmount:      amount,
		Method:           original.Method,
		GatewayChargeRef: &refundRef,
		Status:           domain.PaymentCompleted,
		DueDate:          original.DueDate,
		PaidAt:           &now,
		ParentPaymentID:  &original.PaymentID,
		Metadata: map[string]string{
			"original_payment_id": original.PaymentID,
			"refund_reason":       req.Reason,
		},
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	entries, err := s.buildRefundEntries(ctx, &refund, userID)
	if err != nil {
		return nil, err
	}

	originalPatch := domain.PaymentPatch{Status: &newStatus}

	// The processor has already moved the money; keep retrying the local
	// write briefly rather than showing a refund the books never recorded.
	var persistErr error
	for attempt := 1; attempt <= persistAttempts; attempt++ {
		persistErr = s.paymentRepo.SaveRefundWithEntries(ctx, refund, originalPatch, entries)
		if persistErr == nil {
			break
		}
		logger.Error("Failed to persist refund, retrying",
			slog.Int("attempt", attempt),
			slog.String("payment_id", original.PaymentID),
			slog.String("error", persistErr.Error()))
		time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
	}
	if persistErr != nil {
		return nil, fmt.Errorf("refund issued at gateway but could not be recorded locally: %w", persistErr)
	}

	logger.Info("Refund completed",
		slog.String("original_payment_id", original.PaymentID),
		slog.String("refund_payment_id", refund.PaymentID),
		slog.String("amount", amount.String()),
		slog.String("original_status", string(newStatus)))
	return &refund, nil
}

// buildRefundEntries constructs the mirror image of the original payment
// posting: DEBIT rent income and CREDIT cash for the refunded amount.
func (s *paymentService) buildRefundEntries(ctx context.Context, refund *domain.Payment, actor string) ([]domain.Transaction, error) {
	accounts, err := s.ledgerSvc.GetOrCreateDefaultChartOfAccounts(ctx, refund.OrgID, actor)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve chart of accounts: %w", err)
	}
	byCode := accountsByCode(accounts)

	rentAccount, cashAccount := byCode[domain.CodeRentIncome], byCode[domain.CodeCash]
	if rentAccount == nil || cashAccount == nil {
		return nil, fmt.Errorf("%w: default rent/cash accounts missing", apperrors.ErrInternal)
	}

	now := time.Now().UTC()
	currency := currencyOf(accounts)
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actor,
		LastUpdatedAt: now,
		LastUpdatedBy: actor,
	}
	originalID := ""
	if refund.ParentPaymentID != nil {
		originalID = *refund.ParentPaymentID
	}

	return []domain.Transaction{
		{
			TransactionID:   uuid.NewString(),
			OrgID:           refund.OrgID,
			AccountID:       rentAccount.AccountID,
			Amount:          refund.Amount,
			TransactionType: domain.Debit,
			CurrencyCode:    currency,
			Category:        "REFUND",
			ReferenceID:     refund.PaymentID,
			ReferenceType:   domain.ReferenceRefund,
			Description:     fmt.Sprintf("Refund of payment %s", originalID),
			AuditFields:     audit,
		},
		{
			TransactionID:   uuid.NewString(),
			OrgID:           refund.OrgID,
			AccountID:       cashAccount.AccountID,
			Amount:          refund.Amount,
			TransactionType: domain.Credit,
			CurrencyCode:    currency,
			Category:        "REFUND",
			ReferenceID:     refund.PaymentID,
			ReferenceType:   domain.ReferenceRefund,
			Description:     fmt.Sprintf("Cash returned for refund of payment %s", originalID),
			AuditFields:     audit,
		},
	}, nil
}

// GetPaymentDetails returns one payment with best-effort receipt URLs.
func (s *paymentService) GetPaymentDetails(ctx context.Context, orgID, paymentID string) (*dto.PaymentDetailsResponse, error) {
	payment, err := s.paymentRepo.FindPaymentByID(ctx, orgID, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find payment %s: %w", paymentID, err)
	}

	resp := &dto.PaymentDetailsResponse{Payment: dto.ToPaymentResponse(payment)}
	if payment.GatewayChargeRef != nil {
		gctx, cancel := s.gatewayCtx(ctx)
		defer cancel()
		receipts, err := s.gateway.GetChargeReceipts(gctx, *payment.GatewayChargeRef)
		if err != nil {
			// Receipts are best-effort; their absence is not an error.
			middleware.GetLoggerFromCtx(ctx).Warn("Failed to fetch receipts", slog.String("payment_id", paymentID), slog.String("error", err.Error()))
		} else {
			resp.Receipts = receipts
		}
	}
	return resp, nil
}

// GetPaymentHistory returns a filtered, paginated payment listing.
func (s *paymentService) GetPaymentHistory(ctx context.Context, orgID string, params dto.ListPaymentsParams) (*dto.ListPaymentsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	payments, nextToken, err := s.paymentRepo.ListPayments(ctx, orgID, portsrepo.ListPaymentsFilter{
		LeaseID: params.LeaseID,
		Status:  params.Status,
		Method:  params.Method,
	}, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve payments: %w", err)
	}

	return &dto.ListPaymentsResponse{
		Payments:  dto.ToPaymentResponses(payments),
		NextToken: nextToken,
	}, nil
}

// CalculateLateFee computes the fee a lease owes for a due date as of now.
func (s *paymentService) CalculateLateFee(ctx context.Context, orgID, leaseID string, dueDate time.Time) (decimal.Decimal, error) {
	lease, err := s.leaseRepo.FindLeaseByID(ctx, orgID, leaseID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to find lease %s: %w", leaseID, err)
	}

	return latefee.Calculate(latefee.Terms{
		MonthlyRent:     lease.MonthlyRent,
		LateFeePercent:  lease.LateFeePercent,
		GracePeriodDays: lease.GracePeriodDays,
	}, dueDate, time.Now().UTC()), nil
}

// ReconcilePendingPayments sweeps payments stuck in PROCESSING longer than
// maxAge and syncs each against the gateway's authoritative status. One
// payment failing does not stop the sweep.
func (s *paymentService) ReconcilePendingPayments(ctx context.Context, maxAge time.Duration) (int, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	cutoff := time.Now().UTC().Add(-maxAge)

	stale, err := s.paymentRepo.ListStaleProcessing(ctx, cutoff, 50)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale payments: %w", err)
	}

	for i := range stale {
		payment := stale[i]
		if payment.GatewayChargeRef == nil {
			// Never reached the gateway; nothing to reconcile against.
			reason := "no gateway charge was created"
			if _, err := s.transition(ctx, &payment, domain.PaymentFailed, &reason, systemActor); err != nil {
				logger.Error("Failed to fail chargeless stale payment", slog.String("payment_id", payment.PaymentID), slog.String("error", err.Error()))
			}
			continue
		}

		gctx, cancel := s.gatewayCtx(ctx)
		result, err := s.gateway.GetCharge(gctx, *payment.GatewayChargeRef)
		cancel()
		if err != nil {
			logger.Error("Failed to fetch charge during sweep", slog.String("payment_id", payment.PaymentID), slog.String("error", err.Error()))
			continue
		}

		if _, err := s.applyChargeResult(ctx, &payment, result, systemActor); err != nil {
			logger.Error("Failed to apply gateway status during sweep", slog.String("payment_id", payment.PaymentID), slog.String("error", err.Error()))
		}
	}

	logger.Info("Stale payment sweep finished", slog.Int("examined", len(stale)))
	return len(stale), nil
}

// accountsByCode indexes a chart of accounts by code.
func accountsByCode(accounts []domain.LedgerAccount) map[string]*domain.LedgerAccount {
	byCode := make(map[string]*domain.LedgerAccount, len(accounts))
	for i := range accounts {
		byCode[accounts[i].Code] = &accounts[i]
	}
	return byCode
}

// currencyOf returns the chart's currency; default accounts share one.
func currencyOf(accounts []domain.LedgerAccount) string {
	if len(accounts) == 0 {
		return ""
	}
	return accounts[0].CurrencyCode
}
