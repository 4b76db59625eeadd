// stats.go - Aggregate refund statistics.
//
// Counts and summed amounts grouped by status and by policy. Only APPROVED and
// PROCESSED refunds count toward the total-refunded figure; everything else is
// money that never moved.
package refund

import "github.com/shopspring/decimal"

// Bucket is a count plus the summed refund amount of one group.
type Bucket struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// Statistics aggregates the refund table for dashboards.
type Statistics struct {
	TotalRequests int                   `json:"total_requests"`
	TotalRefunded decimal.Decimal       `json:"total_refunded"`
	ByStatus      map[Status]Bucket     `json:"by_status"`
	ByPolicy      map[PolicyType]Bucket `json:"by_policy"`
}

// CountsTowardRefunded reports whether a status contributes to TotalRefunded.
func (s Status) CountsTowardRefunded() bool {
	return s == StatusApproved || s == StatusProcessed
}
