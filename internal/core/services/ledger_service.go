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
	"github.com/leasepay/leasepay_backend/internal/utils/accounting"
)

var ErrEntriesMinLegs = errors.New("posting batch must have at least two entries")

// ledgerService owns ledger accounts and entries. It is the only writer of
// Transaction rows.
type ledgerService struct {
	ledgerRepo      portsrepo.LedgerRepositoryFacade
	defaultCurrency string
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepositoryFacade, defaultCurrency string) portssvc.LedgerSvcFacade {
	return &ledgerService{
		ledgerRepo:      ledgerRepo,
		defaultCurrency: defaultCurrency,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// GetOrCreateDefaultChartOfAccounts lazily creates the fixed default chart
// of accounts for an org. Each account is ensured individually; the unique
// (org_id, code) constraint keeps concurrent callers from duplicating codes.
func (s *ledgerService) GetOrCreateDefaultChartOfAccounts(ctx context.Context, orgID, userID string) ([]domain.LedgerAccount, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()

	accounts := make([]domain.LedgerAccount, 0, len(domain.DefaultChartOfAccounts))
	for _, spec := range domain.DefaultChartOfAccounts {
		account := domain.LedgerAccount{
			AccountID:    uuid.NewString(),
			OrgID:        orgID,
			Code:         spec.Code,
			Name:         spec.Name,
			AccountType:  spec.Type,
			CurrencyCode: s.defaultCurrency,
			IsActive:     true,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}

		ensured, err := s.ledgerRepo.EnsureAccount(ctx, account)
		if err != nil {
			logger.Error("Failed to ensure default account", slog.String("code", spec.Code), slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to ensure default account %s: %w", spec.Code, err)
		}
		accounts = append(accounts, *ensured)
	}

	return accounts, nil
}

// PostEntries persists one atomic batch of ledger entries documenting a
// single payment or refund. The caller is responsible for the batch summing
// to zero in signed terms; the engine's contract is to persist exactly the
// rows given, all-or-nothing, at most once per (reference id, type).
func (s *ledgerService) PostEntries(ctx context.Context, orgID string, req dto.PostEntriesRequest, userID string) (bool, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if len(req.Entries) < 2 {
		return false, ErrEntriesMinLegs
	}

	now := time.Now().UTC()
	entries := make([]domain.Transaction, len(req.Entries))
	accountIDs := make([]string, 0, len(req.Entries))
	for i, in := range req.Entries {
		if in.Amount.LessThanOrEqual(decimal.Zero) {
			return false, fmt.Errorf("%w: entry amount must be positive for account %s", apperrors.ErrValidation, in.AccountID)
		}
		entries[i] = domain.Transaction{
			TransactionID:   uuid.NewString(),
			OrgID:           orgID,
			AccountID:       in.AccountID,
			Amount:          in.Amount,
			TransactionType: in.Direction,
			CurrencyCode:    req.CurrencyCode,
			Category:        req.Category,
			ReferenceID:     req.ReferenceID,
			ReferenceType:   req.ReferenceType,
			Description:     in.Description,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
		accountIDs = append(accountIDs, in.AccountID)
	}

	// Validate every account before touching the ledger so a bad leg fails
	// the batch with nothing persisted.
	for _, id := range uniqueStrings(accountIDs) {
		account, err := s.ledgerRepo.FindAccountByID(ctx, orgID, id)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return false, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
			}
			return false, fmt.Errorf("failed to fetch account %s: %w", id, err)
		}
		if !account.IsActive {
			return false, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, id)
		}
		if account.CurrencyCode != req.CurrencyCode {
			return false, fmt.Errorf("%w: account currency %s does not match posting currency %s", apperrors.ErrValidation, account.CurrencyCode, req.CurrencyCode)
		}
	}

	created, err := s.ledgerRepo.PostEntries(ctx, entries)
	if err != nil {
		logger.Error("Failed to post ledger entries", slog.String("reference_id", req.ReferenceID), slog.String("error", err.Error()))
		return false, fmt.Errorf("failed to post ledger entries for %s: %w", req.ReferenceID, err)
	}

	if !created {
		logger.Info("Ledger entries already posted, skipping",
			slog.String("reference_id", req.ReferenceID),
			slog.String("reference_type", string(req.ReferenceType)))
		return false, nil
	}

	logger.Info("Ledger entries posted",
		slog.String("reference_id", req.ReferenceID),
		slog.String("reference_type", string(req.ReferenceType)),
		slog.Int("entry_count", len(entries)))
	return true, nil
}

// GetAccountBalance computes debitTotal - creditTotal for ASSET/EXPENSE
// accounts and creditTotal - debitTotal for LIABILITY/EQUITY/INCOME.
func (s *ledgerService) GetAccountBalance(ctx context.Context, orgID, accountID string) (decimal.Decimal, error) {
	account, err := s.ledgerRepo.FindAccountByID(ctx, orgID, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}

	debitTotal, creditTotal, err := s.ledgerRepo.GetAccountTotals(ctx, orgID, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch totals for account %s: %w", accountID, err)
	}

	balance, err := accounting.AccountBalance(account.AccountType, debitTotal, creditTotal)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute balance for account %s: %w", accountID, err)
	}
	return balance, nil
}

// GetLedgerBalances returns every account of the org with its balance.
func (s *ledgerService) GetLedgerBalances(ctx context.Context, orgID string) ([]dto.AccountBalanceResponse, error) {
	accounts, err := s.ledgerRepo.ListAccounts(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	balances := make([]dto.AccountBalanceResponse, 0, len(accounts))
	for i := range accounts {
		debitTotal, creditTotal, err := s.ledgerRepo.GetAccountTotals(ctx, orgID, accounts[i].AccountID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch totals for account %s: %w", accounts[i].AccountID, err)
		}
		balance, err := accounting.AccountBalance(accounts[i].AccountType, debitTotal, creditTotal)
		if err != nil {
			return nil, fmt.Errorf("failed to compute balance for account %s: %w", accounts[i].AccountID, err)
		}
		balances = append(balances, dto.AccountBalanceResponse{
			Account: dto.ToAccountResponse(&accounts[i]),
			Balance: balance,
		})
	}
	return balances, nil
}

// ListTransactions returns a page of ledger entries for the org.
func (s *ledgerService) ListTransactions(ctx context.Context, orgID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	transactions, nextToken, err := s.ledgerRepo.ListTransactions(ctx, orgID, params.AccountID, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve ledger entries: %w", err)
	}

	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(transactions),
		NextToken:    nextToken,
	}, nil
}

// ReconcileTransactions marks a batch of entries as reconciled. Entries
// owned by another org or already reconciled are skipped, and the returned
// count reflects only the rows actually updated.
func (s *ledgerService) ReconcileTransactions(ctx context.Context, orgID string, req dto.ReconcileRequest, userID string) (int, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	count, err := s.ledgerRepo.ReconcileTransactions(ctx, orgID, req.TransactionIDs, userID, time.Now().UTC())
	if err != nil {
		logger.Error("Failed to reconcile ledger entries", slog.String("error", err.Error()))
		return 0, fmt.Errorf("failed to reconcile ledger entries: %w", err)
	}

	logger.Info("Ledger entries reconciled", slog.Int("requested", len(req.TransactionIDs)), slog.Int("reconciled", count))
	return count, nil
}

// FindEntriesByReference returns the entries documenting one payment or refund.
func (s *ledgerService) FindEntriesByReference(ctx context.Context, orgID, referenceID string, referenceType domain.ReferenceType) ([]domain.Transaction, error) {
	entries, err := s.ledgerRepo.FindTransactionsByReference(ctx, orgID, referenceID, referenceType)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entries for reference %s: %w", referenceID, err)
	}
	return entries, nil
}

// DeactivateAccount soft-disables an account. The account and its history
// stay queryable.
func (s *ledgerService) DeactivateAccount(ctx context.Context, orgID, accountID, userID string) error {
	if _, err := s.ledgerRepo.FindAccountByID(ctx, orgID, accountID); err != nil {
		return fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	if err := s.ledgerRepo.DeactivateAccount(ctx, orgID, accountID, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to deactivate account %s: %w", accountID, err)
	}
	return nil
}

// uniqueStrings returns a slice containing only the unique strings from the input.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, str := range input {
		if _, ok := seen[str]; !ok {
			seen[str] = struct{}{}
			result = append(result, str)
		}
	}
	return result
}
