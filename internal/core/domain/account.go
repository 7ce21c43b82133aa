package domain

// AccountType defines the fundamental accounting type of a ledger account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
)

// Default chart-of-accounts codes. Accounts are created lazily per org and
// looked up by code when posting payment entries.
const (
	CodeCash            = "1000"
	CodeOperatingBank   = "1100"
	CodeSecurityDeposit = "2000"
	CodeOwnerEquity     = "3000"
	CodeRentIncome      = "4000"
	CodeLateFeeIncome   = "4100"
	CodeMaintenance     = "5000"
)

// LedgerAccount represents a named bucket in an org's chart of accounts.
// Accounts are never deleted, only deactivated.
type LedgerAccount struct {
	AccountID    string      `json:"accountID"` // Primary key (UUID)
	OrgID        string      `json:"orgID"`     // Owning organization (NON-NULL)
	Code         string      `json:"code"`      // Chart-of-accounts number, unique per org
	Name         string      `json:"name"`
	AccountType  AccountType `json:"accountType"`
	CurrencyCode string      `json:"currencyCode"`
	IsActive     bool        `json:"isActive"`
	AuditFields
}

// DefaultAccountSpec describes one entry of the default chart of accounts.
type DefaultAccountSpec struct {
	Code string
	Name string
	Type AccountType
}

// DefaultChartOfAccounts is the fixed set of accounts every org gets.
var DefaultChartOfAccounts = []DefaultAccountSpec{
	{Code: CodeCash, Name: "Cash", Type: Asset},
	{Code: CodeOperatingBank, Name: "Operating Bank Account", Type: Asset},
	{Code: CodeSecurityDeposit, Name: "Security Deposits Held", Type: Liability},
	{Code: CodeOwnerEquity, Name: "Owner Equity", Type: Equity},
	{Code: CodeRentIncome, Name: "Rent Income", Type: Income},
	{Code: CodeLateFeeIncome, Name: "Late Fee Income", Type: Income},
	{Code: CodeMaintenance, Name: "Maintenance Expense", Type: Expense},
}
