// Package latefee computes late-fee surcharges from lease terms. It is pure:
// no clock access beyond the caller-supplied asOf date, no storage.
package latefee

import (
	"time"

	"github.com/shopspring/decimal"
)

var daysPerMonth = decimal.NewFromInt(30)

// Terms are the lease fields that drive the fee calculation.
type Terms struct {
	MonthlyRent     decimal.Decimal
	LateFeePercent  decimal.Decimal // e.g. 5 for 5%
	GracePeriodDays int
}

// Calculate returns the late fee owed on a payment due at dueDate, evaluated
// at asOf. Both dates are compared with time-of-day zeroed out; a payment is
// fee-free while daysLate <= grace days. Past the grace period the fee is
// prorated daily: (rent * percent / 100) / 30 per billable day, rounded
// half-up to 2 decimal places.
func Calculate(terms Terms, dueDate, asOf time.Time) decimal.Decimal {
	daysLate := daysBetween(dueDate, asOf)
	if daysLate <= terms.GracePeriodDays {
		return decimal.Zero
	}

	billableDays := daysLate - terms.GracePeriodDays
	monthlyFee := terms.MonthlyRent.Mul(terms.LateFeePercent).Div(decimal.NewFromInt(100))
	dailyRate := monthlyFee.Div(daysPerMonth)

	return dailyRate.Mul(decimal.NewFromInt(int64(billableDays))).Round(2)
}

// daysBetween returns the whole-day difference to - from, ignoring time of day.
func daysBetween(from, to time.Time) int {
	fromDay := truncateToDay(from)
	toDay := truncateToDay(to)
	return int(toDay.Sub(fromDay).Hours() / 24)
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
