/*
calculator.go - Pure refund calculation

PURPOSE:
  Computes what a cancelling traveler is owed. Pure function of the policy
  table, the booking's frozen price breakdown, the check-in date, and the
  cancellation timestamp - no storage, no clock, no side effects.

ALGORITHM:
  1. daysUntilCheckIn = whole days between cancellation and check-in,
     truncated toward zero. Negative when cancelling after check-in.
  2. Look up the policy rule (unknown type -> InvalidPolicyError).
  3. First matching tier wins:
       full tier (only when FullRefundDays > 0), then partial, then 0%.
  4. refundAmount = basePrice * percentage / 100, in decimal arithmetic.
     Binary floats would drift by cents over enough bookings.
  5. The platform commission is reported but never refunded.

SEE ALSO:
  - policy.go: Tier definitions and the default table
  - engine.go: Feeds booking data into this calculation
*/
package refund

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tripline/refund-engine/booking"
)

// =============================================================================
// DECISION - Calculation output
// =============================================================================

// Decision is the outcome of a refund calculation. It is frozen onto the
// refund record at request time so later policy changes never alter it.
type Decision struct {
	RefundPercentage    int             `json:"refund_percentage"`
	RefundAmount        decimal.Decimal `json:"refund_amount"`
	PlatformFeeDeducted decimal.Decimal `json:"platform_fee_deducted"`
	NetRefundAmount     decimal.Decimal `json:"net_refund_amount"`
	Reason              string          `json:"reason"`
	PolicyApplied       PolicyType      `json:"policy_applied"`
	DaysUntilCheckIn    int             `json:"days_until_check_in"`
}

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculator applies a policy table to cancellation requests.
type Calculator struct {
	table PolicyTable
}

// NewCalculator builds a calculator over the given policy table.
func NewCalculator(table PolicyTable) *Calculator {
	return &Calculator{table: table}
}

// Calculate produces the refund decision for one cancellation.
//
// daysUntilCheckIn can be zero (same-day) or negative (after check-in); the
// stricter policies rely on those falling through to the 0% tier.
func (c *Calculator) Calculate(
	prices booking.PriceBreakdown,
	policy PolicyType,
	checkIn time.Time,
	cancelledAt time.Time,
) (Decision, error) {
	rule, err := c.table.Rule(policy)
	if err != nil {
		return Decision{}, err
	}

	days := DaysUntil(checkIn, cancelledAt)

	percentage := 0
	tier := "no refund"
	switch {
	case rule.FullRefundDays > 0 && days >= rule.FullRefundDays:
		percentage = 100
		tier = "full refund"
	case rule.PartialRefundDays != nil && days >= *rule.PartialRefundDays:
		percentage = rule.PartialRefundPercent
		if percentage > 0 {
			tier = "partial refund"
		}
	}

	amount := tierAmount(prices.BasePrice, percentage)

	return Decision{
		RefundPercentage:    percentage,
		RefundAmount:        amount,
		PlatformFeeDeducted: prices.Commission,
		NetRefundAmount:     amount,
		Reason: fmt.Sprintf("%s policy: %s (%d%%), cancelled %d day(s) before check-in",
			policy, tier, percentage, days),
		PolicyApplied:    policy,
		DaysUntilCheckIn: days,
	}, nil
}

// DaysUntil returns the whole days between cancellation and check-in,
// truncated toward zero. Negative for after-the-fact cancellations.
func DaysUntil(checkIn, cancelledAt time.Time) int {
	return int(checkIn.Sub(cancelledAt).Hours() / 24)
}

// tierAmount computes basePrice * percentage / 100 in decimal arithmetic.
func tierAmount(basePrice decimal.Decimal, percentage int) decimal.Decimal {
	if percentage <= 0 {
		return decimal.Zero
	}
	if percentage >= 100 {
		return basePrice
	}
	return basePrice.Mul(decimal.NewFromInt(int64(percentage))).Div(decimal.NewFromInt(100))
}
