/*
engine.go - Refund lifecycle controller

PURPOSE:
  Orchestrates the full life of a refund: a traveler requests one against a
  booking, an admin approves or rejects it, processing pays it out and posts
  the ledger entry, and a bounced payout marks it failed.

REQUEST FLOW:
  1. Read the booking (external collaborator, read-only)
  2. Validate ownership, booking status, and booking data
  3. Run the calculator against the current clock
  4. Persist the refund in PENDING with the frozen calculation

  Uniqueness is NOT checked by reading first. The insert hits the storage
  unique constraint on booking_id, so two concurrent requests for the same
  booking still produce exactly one row; the loser gets ErrDuplicateRefund.

TRANSITIONS:
  Every transition is a conditional update: "move to X only while in Y".
  A concurrent approve/reject/process pair on the same refund cannot both
  win; the loser observes zero rows updated and gets InvalidTransitionError.

PROCESSING:
  The APPROVED -> PROCESSED flip and the ledger append happen in one storage
  transaction (Store.MarkProcessed). A ledger failure rolls the status back
  and surfaces ErrLedgerWriteFailed, which is retryable: the refund is still
  APPROVED afterwards.

FAILURE AFTER PROCESSING:
  FailRefund moves PROCESSED -> FAILED when the payout bounces. It does not
  reverse the ledger entry; reconciling the ledger for failed payouts is an
  accounting decision left to the caller.

SEE ALSO:
  - calculator.go: Pure refund math
  - store.go: Conditional-update persistence contract
  - booking/booking.go: The read-only booking contract
*/
package refund

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tripline/refund-engine/booking"
	"github.com/tripline/refund-engine/ledger"
)

// =============================================================================
// ENGINE
// =============================================================================

// Engine is the refund lifecycle controller.
type Engine struct {
	store    Store
	bookings booking.Reader
	calc     *Calculator
	log      *zap.Logger

	// Now is the clock used for calculations and timestamps. Overridable in
	// tests; defaults to time.Now.
	Now func() time.Time

	// Currency stamped onto ledger entries. The price snapshot carries no
	// currency of its own.
	Currency string
}

// NewEngine wires the lifecycle controller.
func NewEngine(store Store, bookings booking.Reader, table PolicyTable, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		store:    store,
		bookings: bookings,
		calc:     NewCalculator(table),
		log:      log,
		Now:      time.Now,
		Currency: "USD",
	}
}

// =============================================================================
// REQUEST
// =============================================================================

// RequestRefund creates a PENDING refund for the caller's booking.
func (e *Engine) RequestRefund(ctx context.Context, bookingID, userID, reason string) (*Refund, error) {
	b, err := e.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("read booking %s: %w", bookingID, err)
	}
	if b == nil {
		return nil, ErrBookingNotFound
	}

	// Ownership is re-validated here even though the caller layer also
	// guards it: a refund against someone else's booking is a safety bug,
	// not a UX bug.
	if b.UserID != userID {
		return nil, ErrNotBookingOwner
	}
	if !b.Refundable() {
		return nil, &BookingStateError{BookingID: b.ID, Status: b.Status}
	}

	providerID, err := e.bookings.ResolveProvider(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("resolve provider for booking %s: %w", bookingID, err)
	}
	if providerID == "" {
		return nil, ErrMissingProvider
	}

	policyStr, ok := b.PolicyType()
	if !ok {
		return nil, ErrMissingPolicyOrPrice
	}
	prices, ok := b.Prices()
	if !ok {
		return nil, ErrMissingPolicyOrPrice
	}
	travelDate, ok := b.TravelDate()
	if !ok {
		return nil, ErrMissingDate
	}

	now := e.Now()
	decision, err := e.calc.Calculate(prices, PolicyType(policyStr), travelDate, now)
	if err != nil {
		return nil, err
	}

	audit, err := json.Marshal(struct {
		Decision Decision               `json:"decision"`
		Prices   booking.PriceBreakdown `json:"price_breakdown"`
	}{decision, prices})
	if err != nil {
		return nil, fmt.Errorf("marshal calculation snapshot: %w", err)
	}

	r := &Refund{
		ID:                        uuid.NewString(),
		BookingID:                 b.ID,
		UserID:                    userID,
		ProviderID:                providerID,
		Status:                    StatusPending,
		Reason:                    reason,
		RefundAmount:              decision.RefundAmount,
		RefundPercentage:          decision.RefundPercentage,
		RefundReason:              decision.Reason,
		CancellationPolicyApplied: decision.PolicyApplied,
		CalculationJSON:           string(audit),
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}

	if err := e.store.CreateRefund(ctx, r); err != nil {
		return nil, err
	}

	e.log.Info("refund requested",
		zap.String("refund_id", r.ID),
		zap.String("booking_id", r.BookingID),
		zap.Int("percentage", r.RefundPercentage),
		zap.String("amount", r.RefundAmount.String()))

	return r, nil
}

// =============================================================================
// ADMIN ACTIONS
// =============================================================================

// ApproveRefund moves a PENDING refund to APPROVED.
func (e *Engine) ApproveRefund(ctx context.Context, refundID, adminID, notes string) (*Refund, error) {
	now := e.Now()
	change := StatusChange{
		Expected:   StatusPending,
		To:         StatusApproved,
		ApprovedBy: &adminID,
		ApprovedAt: &now,
	}
	if notes != "" {
		change.AdminNotes = &notes
	}

	if err := e.transition(ctx, refundID, change, "approve"); err != nil {
		return nil, err
	}
	e.log.Info("refund approved", zap.String("refund_id", refundID), zap.String("admin_id", adminID))
	return e.mustGet(ctx, refundID)
}

// RejectRefund moves a PENDING refund to REJECTED, folding the rejection
// reason into the admin notes.
func (e *Engine) RejectRefund(ctx context.Context, refundID, adminID, reason string) (*Refund, error) {
	now := e.Now()
	notes := "rejected: " + reason
	change := StatusChange{
		Expected:   StatusPending,
		To:         StatusRejected,
		ApprovedBy: &adminID,
		ApprovedAt: &now,
		AdminNotes: &notes,
	}

	if err := e.transition(ctx, refundID, change, "reject"); err != nil {
		return nil, err
	}
	e.log.Info("refund rejected", zap.String("refund_id", refundID), zap.String("admin_id", adminID))
	return e.mustGet(ctx, refundID)
}

// =============================================================================
// PROCESSING
// =============================================================================

// ProcessRefund moves an APPROVED refund to PROCESSED and appends exactly one
// ledger entry, atomically. paymentRef is the external payment reference; one
// is generated when the gateway did not supply any.
func (e *Engine) ProcessRefund(ctx context.Context, refundID, paymentRef string) (*Refund, error) {
	r, err := e.store.GetRefund(ctx, refundID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrRefundNotFound
	}

	if paymentRef == "" {
		paymentRef = "refund-pay-" + uuid.NewString()
	}
	now := e.Now()

	entry := ledger.Entry{
		ID:            uuid.NewString(),
		BookingID:     r.BookingID,
		Type:          ledger.EntryRefundProcessed,
		DebitAccount:  ledger.TravelerAccount(r.UserID),
		CreditAccount: ledger.ProviderAccount(r.ProviderID),
		Amount:        r.RefundAmount,
		Currency:      e.Currency,
		Description:   fmt.Sprintf("refund for booking %s", r.BookingID),
		Metadata: map[string]string{
			"refund_id":  r.ID,
			"reason":     r.RefundReason,
			"percentage": fmt.Sprintf("%d", r.RefundPercentage),
		},
		CreatedAt: now,
	}

	ok, err := e.store.MarkProcessed(ctx, refundID, paymentRef, now, entry)
	if err != nil {
		e.log.Error("refund processing failed, status rolled back",
			zap.String("refund_id", refundID), zap.Error(err))
		return nil, err
	}
	if !ok {
		// The conditional update lost: the refund left APPROVED between our
		// read and the transaction. Report the current state.
		return nil, e.transitionConflict(ctx, refundID, "process")
	}

	e.log.Info("refund processed",
		zap.String("refund_id", refundID),
		zap.String("payment_ref", paymentRef),
		zap.String("amount", r.RefundAmount.String()))

	return e.mustGet(ctx, refundID)
}

// FailRefund moves a PROCESSED refund to FAILED when the payout bounces.
// The ledger entry written at processing time is NOT reversed.
func (e *Engine) FailRefund(ctx context.Context, refundID, reason string) (*Refund, error) {
	change := StatusChange{
		Expected:      StatusProcessed,
		To:            StatusFailed,
		FailureReason: &reason,
	}
	if err := e.transition(ctx, refundID, change, "fail"); err != nil {
		return nil, err
	}
	e.log.Warn("refund payout failed", zap.String("refund_id", refundID), zap.String("reason", reason))
	return e.mustGet(ctx, refundID)
}

// =============================================================================
// READS
// =============================================================================

// GetRefund returns one refund by ID.
func (e *Engine) GetRefund(ctx context.Context, refundID string) (*Refund, error) {
	return e.mustGet(ctx, refundID)
}

// GetRefundByBooking returns the booking's refund, if any.
func (e *Engine) GetRefundByBooking(ctx context.Context, bookingID string) (*Refund, error) {
	r, err := e.store.GetRefundByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrRefundNotFound
	}
	return r, nil
}

// GetUserRefunds returns a requester's refunds, newest first.
func (e *Engine) GetUserRefunds(ctx context.Context, userID string) ([]Refund, error) {
	return e.store.ListRefundsByUser(ctx, userID)
}

// GetProviderRefunds returns a provider's refunds, newest first.
func (e *Engine) GetProviderRefunds(ctx context.Context, providerID string) ([]Refund, error) {
	return e.store.ListRefundsByProvider(ctx, providerID)
}

// GetRefundsByStatus returns refunds in one status, newest first.
func (e *Engine) GetRefundsByStatus(ctx context.Context, status Status) ([]Refund, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown refund status %q", status)
	}
	return e.store.ListRefundsByStatus(ctx, status)
}

// GetPendingRefunds returns the admin review queue, oldest first.
func (e *Engine) GetPendingRefunds(ctx context.Context) ([]Refund, error) {
	return e.store.ListPendingRefunds(ctx)
}

// GetStatistics aggregates counts and amounts by status and policy.
func (e *Engine) GetStatistics(ctx context.Context) (*Statistics, error) {
	return e.store.Statistics(ctx)
}

// =============================================================================
// INTERNAL
// =============================================================================

// transition applies a conditional status change, converting a lost update
// into the appropriate typed error.
func (e *Engine) transition(ctx context.Context, refundID string, change StatusChange, action string) error {
	ok, err := e.store.UpdateStatusIf(ctx, refundID, change)
	if err != nil {
		return err
	}
	if !ok {
		return e.transitionConflict(ctx, refundID, action)
	}
	return nil
}

// transitionConflict distinguishes "refund missing" from "wrong status" after
// a conditional update matched no row.
func (e *Engine) transitionConflict(ctx context.Context, refundID, action string) error {
	r, err := e.store.GetRefund(ctx, refundID)
	if err != nil {
		return err
	}
	if r == nil {
		return ErrRefundNotFound
	}
	return &InvalidTransitionError{RefundID: refundID, Current: r.Status, Action: action}
}

func (e *Engine) mustGet(ctx context.Context, refundID string) (*Refund, error) {
	r, err := e.store.GetRefund(ctx, refundID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrRefundNotFound
	}
	return r, nil
}
