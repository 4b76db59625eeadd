/*
errors.go - Centralized error types for the refund engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers distinguish failure classes with errors.Is / errors.As; nothing
  is ever silently swallowed.

ERROR CATEGORIES:
  1. Lookup errors     - Booking or refund missing
  2. Validation errors - Ownership, booking state, insufficient booking data
  3. Transition errors - Status does not permit the requested action
  4. Storage errors    - Uniqueness conflicts, ledger write failures

RETRY POLICY:
  ErrLedgerWriteFailed is the only retryable error: the failed processing
  transaction is rolled back, the refund stays APPROVED, and the caller may
  retry once the transient failure clears. Every other error requires a
  different caller action, not a blind retry.

SEE ALSO:
  - engine.go: Produces these errors
  - store/sqlite: Maps constraint violations onto ErrDuplicateRefund
*/
package refund

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrBookingNotFound is returned when the referenced booking doesn't exist.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrRefundNotFound is returned when the referenced refund doesn't exist.
	ErrRefundNotFound = errors.New("refund not found")

	// ErrNotBookingOwner is returned when the requester does not own the booking.
	ErrNotBookingOwner = errors.New("booking does not belong to requester")

	// ErrBookingNotRefundable is returned when the booking status does not
	// permit a refund request.
	ErrBookingNotRefundable = errors.New("booking is not in a refundable status")

	// ErrDuplicateRefund is returned when a refund already exists for the
	// booking. The storage layer enforces this with a unique constraint, so
	// concurrent requests still collapse to exactly one refund row.
	ErrDuplicateRefund = errors.New("refund already exists for booking")

	// ErrMissingPolicyOrPrice is returned when the booking carries no usable
	// cancellation policy or price snapshot.
	ErrMissingPolicyOrPrice = errors.New("booking has no cancellation policy or price snapshot")

	// ErrMissingDate is returned when the booking has neither a check-in nor
	// a departure date.
	ErrMissingDate = errors.New("booking has no check-in or departure date")

	// ErrMissingProvider is returned when the booking's package cannot be
	// resolved to a provider.
	ErrMissingProvider = errors.New("booking does not resolve to a provider")

	// ErrInvalidPolicy is returned when the policy type is unknown.
	ErrInvalidPolicy = errors.New("unknown cancellation policy")

	// ErrInvalidTransition is returned when the refund's current status does
	// not permit the requested action.
	ErrInvalidTransition = errors.New("invalid refund status transition")

	// ErrLedgerWriteFailed is returned when the ledger entry could not be
	// written while processing. The status change is rolled back with it.
	ErrLedgerWriteFailed = errors.New("ledger write failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidTransitionError reports which transition was refused.
type InvalidTransitionError struct {
	RefundID string
	Current  Status
	Action   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("refund %s is in %s, cannot %s", e.RefundID, e.Current, e.Action)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// InvalidPolicyError reports an unknown policy type.
type InvalidPolicyError struct {
	Policy PolicyType
}

func (e *InvalidPolicyError) Error() string {
	return fmt.Sprintf("unknown cancellation policy %q", e.Policy)
}

func (e *InvalidPolicyError) Unwrap() error {
	return ErrInvalidPolicy
}

// BookingStateError reports a booking status that blocks a refund request.
type BookingStateError struct {
	BookingID string
	Status    string
}

func (e *BookingStateError) Error() string {
	return fmt.Sprintf("booking %s is %s, refunds require CONFIRMED or PAYMENT_PENDING", e.BookingID, e.Status)
}

func (e *BookingStateError) Unwrap() error {
	return ErrBookingNotRefundable
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrLedgerWriteFailed)
}

// IsClientError returns true if the error is due to invalid caller input or state.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNotBookingOwner) ||
		errors.Is(err, ErrBookingNotRefundable) ||
		errors.Is(err, ErrDuplicateRefund) ||
		errors.Is(err, ErrMissingPolicyOrPrice) ||
		errors.Is(err, ErrMissingDate) ||
		errors.Is(err, ErrMissingProvider) ||
		errors.Is(err, ErrInvalidPolicy) ||
		errors.Is(err, ErrInvalidTransition)
}

// IsNotFound returns true if the error indicates a missing booking or refund.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBookingNotFound) ||
		errors.Is(err, ErrRefundNotFound)
}
