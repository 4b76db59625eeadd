package refund_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripline/refund-engine/booking"
	"github.com/tripline/refund-engine/refund"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func prices(base, commission string) booking.PriceBreakdown {
	return booking.PriceBreakdown{
		BasePrice:  dec(base),
		Tax:        dec("0"),
		Commission: dec(commission),
		Total:      dec(base).Add(dec(commission)),
	}
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// calcAt runs the default-table calculator with a cancellation the given
// number of days before check-in.
func calcAt(t *testing.T, policy refund.PolicyType, p booking.PriceBreakdown, daysBefore int) refund.Decision {
	t.Helper()

	calc := refund.NewCalculator(refund.DefaultPolicyTable())
	cancelledAt := time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)
	checkIn := cancelledAt.AddDate(0, 0, daysBefore)

	d, err := calc.Calculate(p, policy, checkIn, cancelledAt)
	require.NoError(t, err)
	return d
}

// =============================================================================
// POLICY TIER TESTS
// =============================================================================

func TestCalculate_Flexible_FullRefundTenDaysOut(t *testing.T) {
	// GIVEN: FLEXIBLE policy, basePrice 500, commission 50, check-in in 10 days
	// WHEN: Cancelling now
	// THEN: 100% refund of the base price; the commission is only reported

	d := calcAt(t, refund.PolicyFlexible, prices("500", "50"), 10)

	assert.Equal(t, 100, d.RefundPercentage)
	assert.True(t, dec("500").Equal(d.RefundAmount), "refund: %s", d.RefundAmount)
	assert.True(t, dec("50").Equal(d.PlatformFeeDeducted))
	assert.True(t, d.NetRefundAmount.Equal(d.RefundAmount), "the fee is never subtracted from the refund")
	assert.Equal(t, 10, d.DaysUntilCheckIn)
}

func TestCalculate_Flexible_NothingInsideSevenDays(t *testing.T) {
	// FLEXIBLE has no partial tier: anything under 7 days drops to 0%.
	for _, days := range []int{6, 3, 1, 0, -2} {
		d := calcAt(t, refund.PolicyFlexible, prices("500", "50"), days)
		assert.Equal(t, 0, d.RefundPercentage, "days=%d", days)
		assert.True(t, d.RefundAmount.IsZero(), "days=%d", days)
	}
}

func TestCalculate_Moderate_PartialTier(t *testing.T) {
	// GIVEN: MODERATE policy (full >= 3 days, 50% >= 1 day)
	// WHEN: Cancelling 2 days before check-in
	// THEN: 50% of the base price

	d := calcAt(t, refund.PolicyModerate, prices("500", "50"), 2)

	assert.Equal(t, 50, d.RefundPercentage)
	assert.True(t, dec("250").Equal(d.RefundAmount), "refund: %s", d.RefundAmount)
}

func TestCalculate_Moderate_TierBoundaries(t *testing.T) {
	cases := []struct {
		days    int
		percent int
	}{
		{10, 100},
		{3, 100}, // boundary: exactly the full tier
		{2, 50},
		{1, 50}, // boundary: exactly the partial tier
		{0, 0},
		{-1, 0},
	}
	for _, tc := range cases {
		d := calcAt(t, refund.PolicyModerate, prices("1000", "100"), tc.days)
		assert.Equal(t, tc.percent, d.RefundPercentage, "days=%d", tc.days)
	}
}

func TestCalculate_Strict_SameDayIsZero(t *testing.T) {
	// GIVEN: STRICT policy (full >= 1 day, 0% partial tier at >= 0)
	// WHEN: Cancelling on the check-in day (daysUntilCheckIn == 0)
	// THEN: No refund

	d := calcAt(t, refund.PolicyStrict, prices("500", "50"), 0)

	assert.Equal(t, 0, d.RefundPercentage)
	assert.True(t, d.RefundAmount.IsZero())
}

func TestCalculate_NonRefundable_NeverRefunds(t *testing.T) {
	// NON_REFUNDABLE has FullRefundDays == 0. The full tier deliberately
	// requires FullRefundDays > 0, so a same-day cancellation cannot slip
	// into a 100% refund on a policy named "non-refundable".
	for _, days := range []int{365, 7, 1, 0, -3} {
		d := calcAt(t, refund.PolicyNonRefundable, prices("500", "50"), days)
		assert.Equal(t, 0, d.RefundPercentage, "days=%d", days)
		assert.True(t, d.RefundAmount.IsZero(), "days=%d", days)
		assert.True(t, dec("50").Equal(d.PlatformFeeDeducted), "fee still reported, days=%d", days)
	}
}

func TestCalculate_UnknownPolicy_Fails(t *testing.T) {
	calc := refund.NewCalculator(refund.DefaultPolicyTable())
	_, err := calc.Calculate(prices("500", "50"), "SUPER_SAVER", time.Now().AddDate(0, 0, 5), time.Now())

	assert.ErrorIs(t, err, refund.ErrInvalidPolicy)
}

// =============================================================================
// PROPERTY TESTS
// =============================================================================

func TestCalculate_AmountNeverExceedsBasePrice(t *testing.T) {
	base := prices("333.33", "41.17")
	for _, pt := range []refund.PolicyType{
		refund.PolicyFlexible, refund.PolicyModerate, refund.PolicyStrict, refund.PolicyNonRefundable,
	} {
		for days := -5; days <= 30; days++ {
			d := calcAt(t, pt, base, days)
			assert.False(t, d.RefundAmount.IsNegative(), "%s days=%d", pt, days)
			assert.True(t, d.RefundAmount.LessThanOrEqual(base.BasePrice), "%s days=%d", pt, days)
			assert.True(t, base.Commission.Equal(d.PlatformFeeDeducted), "%s days=%d", pt, days)
		}
	}
}

func TestCalculate_DecimalPrecision(t *testing.T) {
	// 50% of 100.01 must be exactly 50.005, not a float approximation.
	d := calcAt(t, refund.PolicyModerate, prices("100.01", "10"), 2)

	assert.True(t, dec("50.005").Equal(d.RefundAmount), "refund: %s", d.RefundAmount)
}

func TestCalculate_NegativeDays_AfterCheckIn(t *testing.T) {
	// Cancelling 3 days after check-in yields a negative day count and 0%.
	d := calcAt(t, refund.PolicyFlexible, prices("500", "50"), -3)

	assert.Equal(t, -3, d.DaysUntilCheckIn)
	assert.Equal(t, 0, d.RefundPercentage)
}

func TestCalculate_ReasonMentionsPolicyAndDays(t *testing.T) {
	d := calcAt(t, refund.PolicyFlexible, prices("500", "50"), 10)

	assert.Contains(t, d.Reason, "FLEXIBLE")
	assert.Contains(t, d.Reason, "100%")
	assert.Contains(t, d.Reason, "10 day")
}

func TestDaysUntil_TruncatesTowardZero(t *testing.T) {
	base := time.Date(2026, time.June, 10, 15, 0, 0, 0, time.UTC)

	// 36 hours out is 1 day, not 2.
	assert.Equal(t, 1, refund.DaysUntil(base, base.Add(-36*time.Hour)))
	// 12 hours out is same-day.
	assert.Equal(t, 0, refund.DaysUntil(base, base.Add(-12*time.Hour)))
	// 12 hours past is still 0 (truncation toward zero), 30 hours past is -1.
	assert.Equal(t, 0, refund.DaysUntil(base, base.Add(12*time.Hour)))
	assert.Equal(t, -1, refund.DaysUntil(base, base.Add(30*time.Hour)))
}

// =============================================================================
// POLICY TABLE TESTS
// =============================================================================

func TestDefaultPolicyTable_Valid(t *testing.T) {
	require.NoError(t, refund.DefaultPolicyTable().Validate())
}

func TestPolicyTable_RejectsInvertedTiers(t *testing.T) {
	partial := 5
	table := refund.PolicyTable{
		refund.PolicyFlexible: {FullRefundDays: 3, PartialRefundDays: &partial, PartialRefundPercent: 50},
	}
	assert.Error(t, table.Validate(), "partial tier before full tier must be rejected")
}

func TestPolicyTable_RejectsBadPercentage(t *testing.T) {
	partial := 1
	table := refund.PolicyTable{
		refund.PolicyModerate: {FullRefundDays: 3, PartialRefundDays: &partial, PartialRefundPercent: 120},
	}
	assert.Error(t, table.Validate())
}
