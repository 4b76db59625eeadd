/*
refund.go - The persisted refund entity

PURPOSE:
  One refund record per booking, at most. Created in PENDING by a traveler's
  request, moved through the approval state machine by admin and processing
  actions, never deleted. The calculation that priced it is frozen onto the
  record (both as flat columns and as a full JSON blob) for audit.

STATE MACHINE:
  PENDING --approve--> APPROVED --process--> PROCESSED --fail--> FAILED
  PENDING --reject---> REJECTED

  REJECTED and FAILED are terminal. PROCESSED is terminal under normal flow;
  the one backward escape is FAILED, for refund payments that bounce after
  the ledger entry was written.

SEE ALSO:
  - engine.go: The only writer of these records
  - store/sqlite: Persistence with a unique constraint on booking_id
*/
package refund

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STATUS
// =============================================================================

// Status is a refund's position in the approval state machine.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusProcessed Status = "PROCESSED"
	StatusFailed    Status = "FAILED"
)

// Valid reports whether s is a known refund status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusProcessed, StatusFailed:
		return true
	}
	return false
}

// =============================================================================
// REFUND ENTITY
// =============================================================================

// Refund is one traveler's refund request for one booking.
type Refund struct {
	ID         string
	BookingID  string // unique: at most one refund per booking
	UserID     string // requester, must own the booking
	ProviderID string // resolved from the booking's package
	Status     Status

	// Reason is the requester's free-text cancellation reason.
	Reason string

	// Frozen calculation snapshot.
	RefundAmount              decimal.Decimal
	RefundPercentage          int
	RefundReason              string
	CancellationPolicyApplied PolicyType

	// CalculationJSON holds the full Decision plus price breakdown, for audit.
	CalculationJSON string

	// Admin action fields.
	ApprovedBy *string
	ApprovedAt *time.Time
	AdminNotes *string

	// Processing fields.
	RefundPaymentID *string
	ProcessedAt     *time.Time

	// FailureReason is set when a processed refund payment bounces.
	FailureReason *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
