/*
store.go - Persistence contract for refund records

PURPOSE:
  Defines what the lifecycle controller needs from storage. The refund row is
  the unit of mutual exclusion: every transition is a conditional update
  ("only if current status equals expected"), and refund creation relies on a
  storage-level unique constraint on booking_id rather than a check-then-act
  read. Both close time-of-check/time-of-use races against concurrent callers.

ATOMIC PROCESSING:
  MarkProcessed flips APPROVED -> PROCESSED and appends the ledger entry in
  one storage transaction. Either both writes land or neither does; a refund
  can never be PROCESSED without its ledger entry, nor the reverse.

SEE ALSO:
  - engine.go: The only caller
  - store/sqlite: SQLite implementation
*/
package refund

import (
	"context"
	"time"

	"github.com/tripline/refund-engine/ledger"
)

// StatusChange describes a conditional transition and the fields it records.
type StatusChange struct {
	Expected Status // transition only applies while the row is in this status
	To       Status

	// Fields set by approve/reject.
	ApprovedBy *string
	ApprovedAt *time.Time
	AdminNotes *string

	// Field set by fail.
	FailureReason *string
}

// Store persists refund records.
type Store interface {
	// CreateRefund inserts a new PENDING refund. A second refund for the
	// same booking fails with ErrDuplicateRefund, enforced by a unique
	// constraint so concurrent creators cannot both succeed.
	CreateRefund(ctx context.Context, r *Refund) error

	// GetRefund returns a refund by ID, or nil when it doesn't exist.
	GetRefund(ctx context.Context, refundID string) (*Refund, error)

	// GetRefundByBooking returns the booking's refund, or nil.
	GetRefundByBooking(ctx context.Context, bookingID string) (*Refund, error)

	// ListRefundsByUser returns a requester's refunds, newest first.
	ListRefundsByUser(ctx context.Context, userID string) ([]Refund, error)

	// ListRefundsByProvider returns a provider's refunds, newest first.
	ListRefundsByProvider(ctx context.Context, providerID string) ([]Refund, error)

	// ListRefundsByStatus returns refunds in one status, newest first.
	ListRefundsByStatus(ctx context.Context, status Status) ([]Refund, error)

	// ListPendingRefunds returns PENDING refunds, oldest first, for the
	// admin review queue.
	ListPendingRefunds(ctx context.Context) ([]Refund, error)

	// UpdateStatusIf applies a conditional transition. Returns false without
	// error when no row matched refundID in the expected status.
	UpdateStatusIf(ctx context.Context, refundID string, change StatusChange) (bool, error)

	// MarkProcessed atomically flips APPROVED -> PROCESSED, records the
	// payment reference, and appends the ledger entry. Returns false when
	// the refund was not APPROVED. A ledger failure rolls back everything
	// and surfaces as ErrLedgerWriteFailed.
	MarkProcessed(ctx context.Context, refundID, paymentRef string, at time.Time, entry ledger.Entry) (bool, error)

	// Statistics aggregates counts and amounts by status and policy.
	Statistics(ctx context.Context) (*Statistics, error)
}
