package latefee_test

import (
	"testing"
	"time"

	"github.com/leasepay/leasepay_backend/internal/utils/latefee"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func standardTerms() latefee.Terms {
	return latefee.Terms{
		MonthlyRent:     decimal.NewFromInt(1500),
		LateFeePercent:  decimal.NewFromInt(5),
		GracePeriodDays: 5,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalculate_WithinGracePeriod(t *testing.T) {
	terms := standardTerms()
	due := day(2024, time.January, 1)

	testCases := []struct {
		name string
		asOf time.Time
	}{
		{"on due date", due},
		{"before due date", day(2023, time.December, 28)},
		{"last grace day", day(2024, time.January, 6)}, // daysLate == graceDays
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fee := latefee.Calculate(terms, due, tc.asOf)
			assert.True(t, fee.IsZero(), "expected zero fee, got %s", fee)
		})
	}
}

func TestCalculate_FirstBillableDay(t *testing.T) {
	terms := standardTerms()
	due := day(2024, time.January, 1)

	// daysLate == graceDays + 1 -> exactly one day's proration.
	// dailyRate = (1500 * 5 / 100) / 30 = 2.5
	fee := latefee.Calculate(terms, due, day(2024, time.January, 7))
	assert.True(t, fee.Equal(decimal.NewFromFloat(2.5)), "got %s", fee)
}

func TestCalculate_FifteenDaysLate(t *testing.T) {
	terms := standardTerms()
	due := day(2024, time.January, 1)

	// 15 days late, 5 grace -> 10 billable days at 2.5/day = 25.00
	fee := latefee.Calculate(terms, due, day(2024, time.January, 16))
	assert.True(t, fee.Equal(decimal.NewFromInt(25)), "got %s", fee)
}

func TestCalculate_RoundsHalfUpToCents(t *testing.T) {
	terms := latefee.Terms{
		MonthlyRent:     decimal.NewFromInt(1000),
		LateFeePercent:  decimal.NewFromInt(5),
		GracePeriodDays: 0,
	}
	due := day(2024, time.March, 1)

	// dailyRate = 50/30 = 1.666..., 1 billable day -> 1.67 after rounding
	fee := latefee.Calculate(terms, due, day(2024, time.March, 2))
	assert.Equal(t, "1.67", fee.StringFixed(2))
}

func TestCalculate_IgnoresTimeOfDay(t *testing.T) {
	terms := standardTerms()
	due := time.Date(2024, time.January, 1, 23, 59, 0, 0, time.UTC)
	asOf := time.Date(2024, time.January, 6, 0, 1, 0, 0, time.UTC)

	// 5 whole days late, still inside the 5-day grace window.
	fee := latefee.Calculate(terms, due, asOf)
	assert.True(t, fee.IsZero(), "got %s", fee)
}
