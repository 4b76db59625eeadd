/*
policy.go - Cancellation policy table

PURPOSE:
  Maps a cancellation policy type to its refund-timing rule. The table is an
  immutable value injected at construction time, never a package-level global,
  so tests and deployments can override individual policies.

POLICY TIERS:
  Each rule defines up to three refund tiers by days-before-check-in:
  1. Full refund:    daysUntilCheckIn >= FullRefundDays  -> 100%
  2. Partial refund: daysUntilCheckIn >= *PartialRefundDays -> PartialRefundPercent
  3. No refund:      everything else -> 0%

  The full tier only applies when FullRefundDays > 0. A rule with
  FullRefundDays == 0 (NON_REFUNDABLE) would otherwise match the full tier on
  same-day cancellations and grant 100% on a policy whose name promises 0%.

DEFAULT TABLE:
  FLEXIBLE:       full refund until 7 days before check-in, nothing after
  MODERATE:       full until 3 days, 50% until 1 day, nothing after
  STRICT:         full until 1 day, nothing after
  NON_REFUNDABLE: never refunded

SEE ALSO:
  - calculator.go: Applies these rules to a booking's price snapshot
  - config/config.go: Optional JSON override of the default table
*/
package refund

import "fmt"

// =============================================================================
// POLICY TYPES
// =============================================================================

// PolicyType identifies a cancellation policy.
type PolicyType string

const (
	PolicyFlexible      PolicyType = "FLEXIBLE"
	PolicyModerate      PolicyType = "MODERATE"
	PolicyStrict        PolicyType = "STRICT"
	PolicyNonRefundable PolicyType = "NON_REFUNDABLE"
)

// Valid reports whether t is one of the known policy types.
func (t PolicyType) Valid() bool {
	switch t {
	case PolicyFlexible, PolicyModerate, PolicyStrict, PolicyNonRefundable:
		return true
	}
	return false
}

// =============================================================================
// POLICY RULE
// =============================================================================

// PolicyRule is the refund-timing rule for one policy type.
//
// INVARIANT: FullRefundDays >= *PartialRefundDays >= 0 (by construction).
type PolicyRule struct {
	// FullRefundDays is the minimum days-before-check-in for a 100% refund.
	FullRefundDays int `json:"full_refund_until_days"`

	// PartialRefundDays, when set, is the minimum days-before-check-in for
	// the partial tier. Nil means the policy has no partial tier.
	PartialRefundDays *int `json:"partial_refund_until_days,omitempty"`

	// PartialRefundPercent is the refund percentage in the partial tier.
	// Defaults to 50 when the partial tier exists but no percentage is set.
	PartialRefundPercent int `json:"partial_refund_percentage"`
}

// DefaultPartialPercent is used when a partial tier exists without an
// explicit percentage.
const DefaultPartialPercent = 50

// =============================================================================
// POLICY TABLE
// =============================================================================

// PolicyTable maps policy types to their rules.
type PolicyTable map[PolicyType]PolicyRule

// DefaultPolicyTable returns the standard marketplace policy table.
func DefaultPolicyTable() PolicyTable {
	return PolicyTable{
		PolicyFlexible:      {FullRefundDays: 7},
		PolicyModerate:      {FullRefundDays: 3, PartialRefundDays: intPtr(1), PartialRefundPercent: 50},
		PolicyStrict:        {FullRefundDays: 1, PartialRefundDays: intPtr(0), PartialRefundPercent: 0},
		PolicyNonRefundable: {FullRefundDays: 0, PartialRefundDays: intPtr(0), PartialRefundPercent: 0},
	}
}

// Validate checks every rule's tier ordering invariant.
func (t PolicyTable) Validate() error {
	for pt, rule := range t {
		if !pt.Valid() {
			return fmt.Errorf("unknown policy type %q in table", pt)
		}
		if rule.FullRefundDays < 0 {
			return fmt.Errorf("policy %s: full refund days must be >= 0", pt)
		}
		if rule.PartialRefundDays != nil {
			if *rule.PartialRefundDays < 0 {
				return fmt.Errorf("policy %s: partial refund days must be >= 0", pt)
			}
			if rule.FullRefundDays < *rule.PartialRefundDays {
				return fmt.Errorf("policy %s: full tier (%d) must not come before partial tier (%d)",
					pt, rule.FullRefundDays, *rule.PartialRefundDays)
			}
		}
		if rule.PartialRefundPercent < 0 || rule.PartialRefundPercent > 100 {
			return fmt.Errorf("policy %s: partial percentage must be within [0, 100]", pt)
		}
	}
	return nil
}

// Rule returns the rule for a policy type, or ErrInvalidPolicy if unknown.
func (t PolicyTable) Rule(pt PolicyType) (PolicyRule, error) {
	rule, ok := t[pt]
	if !ok {
		return PolicyRule{}, &InvalidPolicyError{Policy: pt}
	}
	return rule, nil
}

func intPtr(v int) *int { return &v }
