package domain

import "github.com/shopspring/decimal"

// Lease carries the terms the payment core needs: the rent amount and the
// late-fee policy. The rest of lease management lives outside this service.
type Lease struct {
	LeaseID         string          `json:"leaseID"` // Primary key (UUID)
	OrgID           string          `json:"orgID"`   // Owning organization (NON-NULL)
	UnitLabel       string          `json:"unitLabel"`
	MonthlyRent     decimal.Decimal `json:"monthlyRent"`
	LateFeePercent  decimal.Decimal `json:"lateFeePercent"`  // Percentage of monthly rent, e.g. 5 for 5%
	GracePeriodDays int             `json:"gracePeriodDays"` // Days after due date before fees accrue
	CurrencyCode    string          `json:"currencyCode"`
	IsActive        bool            `json:"isActive"`
	AuditFields
}
