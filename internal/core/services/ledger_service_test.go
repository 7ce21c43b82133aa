package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/leasepay/leasepay_backend/internal/apperrors"
	"github.com/leasepay/leasepay_backend/internal/core/domain"
	portsrepo "github.com/leasepay/leasepay_backend/internal/core/ports/repositories"
	portssvc "github.com/leasepay/leasepay_backend/internal/core/ports/services"
	"github.com/leasepay/leasepay_backend/internal/core/services"
	"github.com/leasepay/leasepay_backend/internal/dto"
)

// --- Mock LedgerRepository ---
type MockLedgerRepository struct {
	mock.Mock
}

// Ensure MockLedgerRepository implements portsrepo.LedgerRepositoryFacade
var _ portsrepo.LedgerRepositoryFacade = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) FindAccountByID(ctx context.Context, orgID, accountID string) (*domain.LedgerAccount, error) {
	args := m.Called(ctx, orgID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerAccount), args.Error(1)
}

func (m *MockLedgerRepository) FindAccountByCode(ctx context.Context, orgID, code string) (*domain.LedgerAccount, error) {
	args := m.Called(ctx, orgID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerAccount), args.Error(1)
}

func (m *MockLedgerRepository) ListAccounts(ctx context.Context, orgID string) ([]domain.LedgerAccount, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerAccount), args.Error(1)
}

func (m *MockLedgerRepository) FindTransactionsByReference(ctx context.Context, orgID, referenceID string, referenceType domain.ReferenceType) ([]domain.Transaction, error) {
	args := m.Called(ctx, orgID, referenceID, referenceType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) ListTransactions(ctx context.Context, orgID string, accountID *string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, orgID, accountID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Transaction), returnedNextToken, args.Error(2)
}

func (m *MockLedgerRepository) GetAccountTotals(ctx context.Context, orgID, accountID string) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, orgID, accountID)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

// EnsureAccount echoes the input account when the expectation returns (nil, nil).
func (m *MockLedgerRepository) EnsureAccount(ctx context.Context, account domain.LedgerAccount) (*domain.LedgerAccount, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		if args.Error(1) == nil {
			return &account, nil
		}
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerAccount), args.Error(1)
}

func (m *MockLedgerRepository) DeactivateAccount(ctx context.Context, orgID, accountID, updatedBy string, now time.Time) error {
	args := m.Called(ctx, orgID, accountID, updatedBy, now)
	return args.Error(0)
}

func (m *MockLedgerRepository) PostEntries(ctx context.Context, entries []domain.Transaction) (bool, error) {
	args := m.Called(ctx, entries)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerRepository) ReconcileTransactions(ctx context.Context, orgID string, transactionIDs []string, reconciledBy string, now time.Time) (int, error) {
	args := m.Called(ctx, orgID, transactionIDs, reconciledBy, now)
	return args.Int(0), args.Error(1)
}

// --- Test Suite Setup ---
type LedgerServiceTestSuite struct {
	suite.Suite
	mockLedgerRepo *MockLedgerRepository
	service        portssvc.LedgerSvcFacade
	orgID          string
	userID         string
	cashAccount    domain.LedgerAccount
	rentAccount    domain.LedgerAccount
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.service = services.NewLedgerService(suite.mockLedgerRepo, "USD")

	suite.orgID = uuid.NewString()
	suite.userID = uuid.NewString()

	suite.cashAccount = domain.LedgerAccount{
		AccountID:    uuid.NewString(),
		OrgID:        suite.orgID,
		Code:         domain.CodeCash,
		Name:         "Cash",
		AccountType:  domain.Asset,
		CurrencyCode: "USD",
		IsActive:     true,
	}
	suite.rentAccount = domain.LedgerAccount{
		AccountID:    uuid.NewString(),
		OrgID:        suite.orgID,
		Code:         domain.CodeRentIncome,
		Name:         "Rent Income",
		AccountType:  domain.Income,
		CurrencyCode: "USD",
		IsActive:     true,
	}
}

func (suite *LedgerServiceTestSuite) postEntriesRequest() dto.PostEntriesRequest {
	return dto.PostEntriesRequest{
		ReferenceID:   uuid.NewString(),
		ReferenceType: domain.ReferencePayment,
		CurrencyCode:  "USD",
		Category:      "RENT_PAYMENT",
		Entries: []dto.LedgerEntryInput{
			{AccountID: suite.rentAccount.AccountID, Direction: domain.Credit, Amount: decimal.NewFromInt(1500)},
			{AccountID: suite.cashAccount.AccountID, Direction: domain.Debit, Amount: decimal.NewFromInt(1500)},
		},
	}
}

// --- Test Cases ---

func (suite *LedgerServiceTestSuite) TestGetOrCreateDefaultChartOfAccounts_Success() {
	ctx := context.Background()

	suite.mockLedgerRepo.On("EnsureAccount", ctx, mock.AnythingOfType("domain.LedgerAccount")).
		Return(nil, nil).Times(len(domain.DefaultChartOfAccounts))

	accounts, err := suite.service.GetOrCreateDefaultChartOfAccounts(ctx, suite.orgID, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(accounts, len(domain.DefaultChartOfAccounts))
	codes := make(map[string]domain.AccountType, len(accounts))
	for _, a := range accounts {
		suite.Equal(suite.orgID, a.OrgID)
		suite.Equal("USD", a.CurrencyCode)
		suite.True(a.IsActive)
		codes[a.Code] = a.AccountType
	}
	suite.Equal(domain.Asset, codes[domain.CodeCash])
	suite.Equal(domain.Income, codes[domain.CodeRentIncome])
	suite.Equal(domain.Income, codes[domain.CodeLateFeeIncome])
	suite.Equal(domain.Liability, codes[domain.CodeSecurityDeposit])
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestPostEntries_Success() {
	ctx := context.Background()
	req := suite.postEntriesRequest()

	suite.mockLedgerRepo.On("FindAccountByID", ctx, suite.orgID, suite.rentAccount.AccountID).Return(&suite.rentAccount, nil).Once()
	suite.mockLedgerRepo.On("FindAccountByID", ctx, suite.orgID, suite.cashAccount.AccountID).Return(&suite.cashAccount, nil).Once()
	suite.mockLedgerRepo.On("PostEntries", ctx, mock.MatchedBy(func(entries []domain.Transaction) bool {
		return len(entries) == 2 &&
			entries[0].ReferenceID == req.ReferenceID &&
			entries[0].TransactionType == domain.Credit &&
			entries[1].TransactionType == domain.Debit &&
			entries[0].OrgID == suite.orgID
	})).Return(true, nil).Once()

	created, err := suite.service.PostEntries(ctx, suite.orgID, req, suite.userID)

	suite.Require().NoError(err)
	suite.True(created)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestPostEntries_AlreadyPostedIsNoOp() {
	ctx := context.Background()
	req := suite.postEntriesRequest()

	suite.mockLedgerRepo.On("FindAccountByID", ctx, suite.orgID, suite.rentAccount.AccountID).Return(&suite.rentAccount, nil).Once()
	suite.mockLedgerRepo.On("FindAccountByID", ctx, suite.orgID, suite.cashAccount.AccountID).Return(&suite.cashAccount, nil).Once()
	suite.mockLedgerRepo.On("PostEntries", ctx, mock.AnythingOfType("[]domain.Transaction")).Return(false, nil).Once()

	created, err := suite.service.PostEntries(ctx, suite.orgID, req, suite.userID)

	suite.Require().NoError(err)
	suite.False(created)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestPostEntries_RejectsSingleLeg() {
	ctx := context.Background()
	req := suite.postEntriesRequest()
	req.Entries = req.Entries[:1]

	created, err := suite.service.PostEntries(ctx, suite.orgID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrEntriesMinLegs)
	suite.False(created)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "PostEntries", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestPostEntries_RejectsNonPositiveAmount() {
	ctx := context.Background()
	req := suite.postEntriesRequest()
	req.Entries[1].Amount = decimal.Zero

	created, err := suite.service.PostEntries(ctx, suite.orgID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.False(created)
}

func (suite *LedgerServiceTestSuite) TestPostEntries_RejectsInactiveAccount() {
	ctx := context.Background()
	req := suite.postEntriesRequest()

	inactive := suite.rentAccount
	inactive.IsActive = false
	suite.mockLedgerRepo.On("FindAccountByID", ctx, suite.orgID, suite.rentAccount.AccountID).Return(&inactive, nil).Once()

	created, err := suite.service.PostEntries(ctx, suite.orgID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.False(created)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "PostEntries", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestPostEntries_RejectsCurrencyMismatch() {
	ctx := context.Background()
	req := suite.postEntriesRequest()
	req.CurrencyCode = "EUR"

	suite.mockLedgerRepo.On("FindAccountByID", ctx, suite.orgID, suite.rentAccount.AccountID).Return(&suite.rentAccount, nil).Once()

	created, err := suite.service.PostEntries(ctx, suite.orgID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.False(created)
}

func (suite *LedgerServiceTestSuite) TestPostEntries_RejectsUnknownAccount() {
	ctx := context.Background()
	req := suite.postEntriesRequest()

	suite.mockLedgerRepo.On("FindAccountByID", ctx, suite.orgID, suite.rentAccount.AccountID).Return(nil, apperrors.ErrNotFound).Once()

	created, err := suite.service.PostEntries(ctx, suite.orgID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.False(created)
}

func (suite *LedgerServiceTestSuite) TestGetAccountBalance_AssetIsDebitMinusCredit() {
	ctx := context.Background()

	suite.mockLedgerRepo.On("FindAccountByID", ctx, suite.orgID, suite.cashAccount.AccountID).Return(&suite.cashAccount, nil).Once()
	suite.mockLedgerRepo.On("GetAccountTotals", ctx, suite.orgID, suite.cashAccount.AccountID).
		Return(decimal.NewFromInt(100), decimal.NewFromInt(30), nil).Once()

	balance, err := suite.service.GetAccountBalance(ctx, suite.orgID, suite.cashAccount.AccountID)

	suite.Require().NoError(err)
	suite.True(balance.Equal(decimal.NewFromInt(70)), "expected 70, got %s", balance)
}

func (suite *LedgerServiceTestSuite) TestGetAccountBalance_IncomeIsCreditMinusDebit() {
	ctx := context.Background()

	suite.mockLedgerRepo.On("FindAccountByID", ctx, suite.orgID, suite.rentAccount.AccountID).Return(&suite.rentAccount, nil).Once()
	suite.mockLedgerRepo.On("GetAccountTotals", ctx, suite.orgID, suite.rentAccount.AccountID).
		Return(decimal.NewFromInt(200), decimal.NewFromInt(1500), nil).Once()

	balance, err := suite.service.GetAccountBalance(ctx, suite.orgID, suite.rentAccount.AccountID)

	suite.Require().NoError(err)
	suite.True(balance.Equal(decimal.NewFromInt(1300)), "expected 1300, got %s", balance)
}

func (suite *LedgerServiceTestSuite) TestReconcileTransactions_ReportsActualCount() {
	ctx := context.Background()
	ids := []string{uuid.NewString(), uuid.NewString(), uuid.NewString()}

	// One id is foreign or already reconciled; only two rows change.
	suite.mockLedgerRepo.On("ReconcileTransactions", ctx, suite.orgID, ids, suite.userID, mock.AnythingOfType("time.Time")).
		Return(2, nil).Once()

	count, err := suite.service.ReconcileTransactions(ctx, suite.orgID, dto.ReconcileRequest{TransactionIDs: ids}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(2, count)
}

func (suite *LedgerServiceTestSuite) TestDeactivateAccount_NotFound() {
	ctx := context.Background()
	accountID := uuid.NewString()

	suite.mockLedgerRepo.On("FindAccountByID", ctx, suite.orgID, accountID).Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.DeactivateAccount(ctx, suite.orgID, accountID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "DeactivateAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
