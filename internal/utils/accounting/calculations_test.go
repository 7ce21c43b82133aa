package accounting_test

import (
	"testing"

	"github.com/leasepay/leasepay_backend/internal/core/domain"
	"github.com/leasepay/leasepay_backend/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateSignedAmount(t *testing.T) {
	amount := decimal.NewFromInt(100)

	testCases := []struct {
		name        string
		accountType domain.AccountType
		txnType     domain.TransactionType
		expected    decimal.Decimal
	}{
		{"debit asset", domain.Asset, domain.Debit, amount},
		{"credit asset", domain.Asset, domain.Credit, amount.Neg()},
		{"debit expense", domain.Expense, domain.Debit, amount},
		{"debit liability", domain.Liability, domain.Debit, amount.Neg()},
		{"credit income", domain.Income, domain.Credit, amount},
		{"debit income", domain.Income, domain.Debit, amount.Neg()},
		{"credit equity", domain.Equity, domain.Credit, amount},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			txn := domain.Transaction{Amount: amount, TransactionType: tc.txnType}
			signed, err := accounting.CalculateSignedAmount(txn, tc.accountType)
			require.NoError(t, err)
			assert.True(t, signed.Equal(tc.expected), "expected %s, got %s", tc.expected, signed)
		})
	}
}

func TestCalculateSignedAmount_UnknownType(t *testing.T) {
	txn := domain.Transaction{Amount: decimal.NewFromInt(10), TransactionType: domain.Debit}
	_, err := accounting.CalculateSignedAmount(txn, domain.AccountType("BOGUS"))
	assert.Error(t, err)
}

func TestAccountBalance_SignConvention(t *testing.T) {
	debits := decimal.NewFromInt(100)
	credits := decimal.NewFromInt(30)

	assetBalance, err := accounting.AccountBalance(domain.Asset, debits, credits)
	require.NoError(t, err)
	assert.True(t, assetBalance.Equal(decimal.NewFromInt(70)), "got %s", assetBalance)

	incomeBalance, err := accounting.AccountBalance(domain.Income, debits, credits)
	require.NoError(t, err)
	assert.True(t, incomeBalance.Equal(decimal.NewFromInt(-70)), "got %s", incomeBalance)
}

func TestSumEntriesByDirection(t *testing.T) {
	entries := []domain.Transaction{
		{Amount: decimal.NewFromInt(1500), TransactionType: domain.Debit},
		{Amount: decimal.NewFromInt(1500), TransactionType: domain.Credit},
		{Amount: decimal.NewFromInt(25), TransactionType: domain.Credit},
	}

	debits, credits := accounting.SumEntriesByDirection(entries)
	assert.True(t, debits.Equal(decimal.NewFromInt(1500)))
	assert.True(t, credits.Equal(decimal.NewFromInt(1525)))
}
