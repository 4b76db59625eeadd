/*
Package ledger is the append-only double-entry log of money movements.

PURPOSE:
  Every processed refund is recorded here exactly once, as a matched
  debit/credit pair between two named accounts. The ledger is the immutable
  source of truth for who-owes-whom per booking.

CRITICAL INVARIANTS:
  1. APPEND-ONLY: No Update, No Delete. EVER.
  2. IMMUTABLE: Once written, entries cannot be modified.
  3. EXACTLY-ONCE: One entry per refund that reaches PROCESSED, written in
     the same storage transaction as the status change.

ACCOUNT NAMES:
  Entries don't model a full chart of accounts; they carry free-form account
  strings with a fixed convention:
    traveler:<userID>   - debited (the marketplace owes the traveler)
    provider:<providerID> - credited (recovered from the provider)

SEE ALSO:
  - refund/engine.go: Builds entries while processing
  - store/sqlite: Persistence; no UPDATE or DELETE statement exists for entries
*/
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ENTRY
// =============================================================================

// EntryType classifies a money movement.
type EntryType string

const (
	// EntryRefundProcessed records a refund paid out to a traveler.
	EntryRefundProcessed EntryType = "REFUND_PROCESSED"
)

// Entry is one immutable double-entry record.
type Entry struct {
	ID            string
	BookingID     string
	Type          EntryType
	DebitAccount  string
	CreditAccount string
	Amount        decimal.Decimal
	Currency      string
	Description   string
	Metadata      map[string]string
	CreatedAt     time.Time
}

// TravelerAccount names the debit side for a traveler refund.
func TravelerAccount(userID string) string { return "traveler:" + userID }

// ProviderAccount names the credit side for a provider clawback.
func ProviderAccount(providerID string) string { return "provider:" + providerID }

// =============================================================================
// LEDGER - Append-only persistence contract
// =============================================================================

// Ledger exposes the only operations the log supports: append and read.
type Ledger interface {
	// Append writes one entry. This is the ONLY write operation.
	Append(ctx context.Context, entry Entry) error

	// EntriesByBooking returns all entries for a booking, oldest first.
	EntriesByBooking(ctx context.Context, bookingID string) ([]Entry, error)
}
