/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements refund.Store, ledger.Ledger, and booking.Reader against one
  SQLite database. In production the same patterns apply to PostgreSQL -
  only minor SQL dialect differences.

APPEND-ONLY ENFORCEMENT:
  No UPDATE or DELETE statement exists for ledger_entries. Corrections, if
  the marketplace ever needs them, would be new entries.

CONCURRENCY INVARIANTS:
  - refunds.booking_id carries a UNIQUE constraint. Two concurrent
    CreateRefund calls for the same booking cannot both insert; the loser's
    constraint violation is mapped to refund.ErrDuplicateRefund.
  - Status transitions are conditional UPDATEs ("... WHERE id = ? AND
    status = ?"). Zero rows affected means the caller lost the race.
  - MarkProcessed performs the status flip and the ledger insert inside one
    database transaction. A ledger failure rolls back the flip.

KEY TABLES:
  refunds:        One row per booking (unique), full calculation snapshot
  ledger_entries: Immutable double-entry log
  bookings:       Read-side copy of the external booking collaborator
  packages:       Hotel/tour package -> provider resolution

WAL MODE:
  SQLite is opened with WAL for better concurrency: readers don't block,
  single writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/refunds.db")  // or ":memory:"
  engine := refund.NewEngine(store, store, refund.DefaultPolicyTable(), logger)

SEE ALSO:
  - refund/store.go: Interface definitions and contracts
  - ledger/ledger.go: Entry shape and append-only rules
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/tripline/refund-engine/booking"
	"github.com/tripline/refund-engine/ledger"
	"github.com/tripline/refund-engine/refund"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: SQLite allows a single writer, and pooled connections
	// would each see their own private database when dbPath is ":memory:".
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Refunds (one per booking, never deleted)
	CREATE TABLE IF NOT EXISTS refunds (
		id TEXT PRIMARY KEY,
		booking_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		provider_id TEXT NOT NULL,
		status TEXT NOT NULL,
		reason TEXT,
		refund_amount TEXT NOT NULL,
		refund_percentage INTEGER NOT NULL,
		refund_reason TEXT,
		policy_applied TEXT NOT NULL,
		calculation_json TEXT NOT NULL,
		approved_by TEXT,
		approved_at TEXT,
		admin_notes TEXT,
		refund_payment_id TEXT,
		processed_at TEXT,
		failure_reason TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- CRITICAL: At most one refund per booking, enforced here and not by an
	-- application-level read. Concurrent requests collapse to one row.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_refunds_unique_booking
		ON refunds(booking_id);

	CREATE INDEX IF NOT EXISTS idx_refunds_user ON refunds(user_id);
	CREATE INDEX IF NOT EXISTS idx_refunds_provider ON refunds(provider_id);
	CREATE INDEX IF NOT EXISTS idx_refunds_status ON refunds(status);

	-- Ledger entries (append-only; no UPDATE/DELETE anywhere in this package)
	CREATE TABLE IF NOT EXISTS ledger_entries (
		id TEXT PRIMARY KEY,
		booking_id TEXT NOT NULL,
		entry_type TEXT NOT NULL,
		debit_account TEXT NOT NULL,
		credit_account TEXT NOT NULL,
		amount TEXT NOT NULL,
		currency TEXT NOT NULL,
		description TEXT,
		metadata_json TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_ledger_booking ON ledger_entries(booking_id);

	-- Bookings (read side of the external collaborator)
	CREATE TABLE IF NOT EXISTS bookings (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		status TEXT NOT NULL,
		check_in_date TEXT,
		departure_date TEXT,
		price_snapshot TEXT,
		cancellation_policy TEXT,
		cancellation_policy_json TEXT,
		hotel_package_id TEXT,
		tour_package_id TEXT,
		created_at TEXT NOT NULL
	);

	-- Packages (hotel/tour -> provider resolution)
	CREATE TABLE IF NOT EXISTS packages (
		id TEXT PRIMARY KEY,
		provider_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		name TEXT
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// REFUND STORE (refund.Store interface)
// =============================================================================

// CreateRefund inserts a new refund row. A unique-constraint violation on
// booking_id is mapped to refund.ErrDuplicateRefund.
func (s *Store) CreateRefund(ctx context.Context, r *refund.Refund) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO refunds
		(id, booking_id, user_id, provider_id, status, reason,
		 refund_amount, refund_percentage, refund_reason, policy_applied,
		 calculation_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.BookingID, r.UserID, r.ProviderID, r.Status, r.Reason,
		r.RefundAmount.String(), r.RefundPercentage, r.RefundReason,
		r.CancellationPolicyApplied, r.CalculationJSON,
		r.CreatedAt.UTC().Format(time.RFC3339), r.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return refund.ErrDuplicateRefund
		}
		return fmt.Errorf("failed to insert refund: %w", err)
	}
	return nil
}

// GetRefund returns a refund by ID, or nil when it doesn't exist.
func (s *Store) GetRefund(ctx context.Context, refundID string) (*refund.Refund, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryOneRefund(ctx, selectRefund+" WHERE id = ?", refundID)
}

// GetRefundByBooking returns the booking's refund, or nil.
func (s *Store) GetRefundByBooking(ctx context.Context, bookingID string) (*refund.Refund, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryOneRefund(ctx, selectRefund+" WHERE booking_id = ?", bookingID)
}

// ListRefundsByUser returns a requester's refunds, newest first.
func (s *Store) ListRefundsByUser(ctx context.Context, userID string) ([]refund.Refund, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRefunds(ctx, selectRefund+" WHERE user_id = ? ORDER BY created_at DESC", userID)
}

// ListRefundsByProvider returns a provider's refunds, newest first.
func (s *Store) ListRefundsByProvider(ctx context.Context, providerID string) ([]refund.Refund, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRefunds(ctx, selectRefund+" WHERE provider_id = ? ORDER BY created_at DESC", providerID)
}

// ListRefundsByStatus returns refunds in one status, newest first.
func (s *Store) ListRefundsByStatus(ctx context.Context, status refund.Status) ([]refund.Refund, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRefunds(ctx, selectRefund+" WHERE status = ? ORDER BY created_at DESC", status)
}

// ListPendingRefunds returns PENDING refunds, oldest first.
func (s *Store) ListPendingRefunds(ctx context.Context) ([]refund.Refund, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRefunds(ctx, selectRefund+" WHERE status = ? ORDER BY created_at ASC", refund.StatusPending)
}

// UpdateStatusIf applies a conditional status transition. Returns false when
// no row matched refundID in the expected status.
func (s *Store) UpdateStatusIf(ctx context.Context, refundID string, change refund.StatusChange) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return updateStatusIf(ctx, s.db, refundID, change)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func updateStatusIf(ctx context.Context, db execer, refundID string, change refund.StatusChange) (bool, error) {
	sets := []string{"status = ?", "updated_at = ?"}
	args := []any{change.To, time.Now().UTC().Format(time.RFC3339)}

	if change.ApprovedBy != nil {
		sets = append(sets, "approved_by = ?")
		args = append(args, *change.ApprovedBy)
	}
	if change.ApprovedAt != nil {
		sets = append(sets, "approved_at = ?")
		args = append(args, change.ApprovedAt.UTC().Format(time.RFC3339))
	}
	if change.AdminNotes != nil {
		sets = append(sets, "admin_notes = ?")
		args = append(args, *change.AdminNotes)
	}
	if change.FailureReason != nil {
		sets = append(sets, "failure_reason = ?")
		args = append(args, *change.FailureReason)
	}

	args = append(args, refundID, change.Expected)

	query := "UPDATE refunds SET " + strings.Join(sets, ", ") + " WHERE id = ? AND status = ?"
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update refund status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkProcessed atomically moves APPROVED -> PROCESSED and appends the ledger
// entry. Either both writes commit or neither does.
func (s *Store) MarkProcessed(ctx context.Context, refundID, paymentRef string, at time.Time, entry ledger.Entry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE refunds
		SET status = ?, refund_payment_id = ?, processed_at = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		refund.StatusProcessed, paymentRef,
		at.UTC().Format(time.RFC3339), at.UTC().Format(time.RFC3339),
		refundID, refund.StatusApproved,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark refund processed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	if err := appendEntry(ctx, tx, entry); err != nil {
		// The deferred rollback undoes the status flip; the refund stays
		// APPROVED and the caller may retry.
		return false, fmt.Errorf("%w: %v", refund.ErrLedgerWriteFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("%w: %v", refund.ErrLedgerWriteFailed, err)
	}
	return true, nil
}

// Statistics aggregates counts and summed amounts by status and policy.
// Amounts are stored as decimal strings, so summation happens here rather
// than in SQL.
func (s *Store) Statistics(ctx context.Context) (*refund.Statistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT status, policy_applied, refund_amount FROM refunds")
	if err != nil {
		return nil, fmt.Errorf("failed to query statistics: %w", err)
	}
	defer rows.Close()

	stats := &refund.Statistics{
		TotalRefunded: decimal.Zero,
		ByStatus:      make(map[refund.Status]refund.Bucket),
		ByPolicy:      make(map[refund.PolicyType]refund.Bucket),
	}

	for rows.Next() {
		var status, policy, amountStr string
		if err := rows.Scan(&status, &policy, &amountStr); err != nil {
			return nil, err
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("corrupt refund amount %q: %w", amountStr, err)
		}

		st := refund.Status(status)
		pt := refund.PolicyType(policy)

		sb := stats.ByStatus[st]
		sb.Count++
		sb.Amount = sb.Amount.Add(amount)
		stats.ByStatus[st] = sb

		pb := stats.ByPolicy[pt]
		pb.Count++
		pb.Amount = pb.Amount.Add(amount)
		stats.ByPolicy[pt] = pb

		stats.TotalRequests++
		if st.CountsTowardRefunded() {
			stats.TotalRefunded = stats.TotalRefunded.Add(amount)
		}
	}
	return stats, rows.Err()
}

const selectRefund = `
	SELECT id, booking_id, user_id, provider_id, status, reason,
	       refund_amount, refund_percentage, refund_reason, policy_applied,
	       calculation_json, approved_by, approved_at, admin_notes,
	       refund_payment_id, processed_at, failure_reason, created_at, updated_at
	FROM refunds`

func (s *Store) queryOneRefund(ctx context.Context, query string, args ...any) (*refund.Refund, error) {
	refunds, err := s.queryRefunds(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(refunds) == 0 {
		return nil, nil
	}
	return &refunds[0], nil
}

func (s *Store) queryRefunds(ctx context.Context, query string, args ...any) ([]refund.Refund, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query refunds: %w", err)
	}
	defer rows.Close()

	var refunds []refund.Refund
	for rows.Next() {
		r, err := scanRefund(rows)
		if err != nil {
			return nil, err
		}
		refunds = append(refunds, r)
	}
	return refunds, rows.Err()
}

func scanRefund(rows *sql.Rows) (refund.Refund, error) {
	var (
		r             refund.Refund
		reason        sql.NullString
		amountStr     string
		refundReason  sql.NullString
		approvedBy    sql.NullString
		approvedAt    sql.NullString
		adminNotes    sql.NullString
		paymentID     sql.NullString
		processedAt   sql.NullString
		failureReason sql.NullString
		createdAt     string
		updatedAt     string
	)

	err := rows.Scan(
		&r.ID, &r.BookingID, &r.UserID, &r.ProviderID, &r.Status, &reason,
		&amountStr, &r.RefundPercentage, &refundReason, &r.CancellationPolicyApplied,
		&r.CalculationJSON, &approvedBy, &approvedAt, &adminNotes,
		&paymentID, &processedAt, &failureReason, &createdAt, &updatedAt,
	)
	if err != nil {
		return r, fmt.Errorf("failed to scan refund: %w", err)
	}

	r.RefundAmount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return r, fmt.Errorf("corrupt refund amount %q: %w", amountStr, err)
	}
	r.Reason = reason.String
	r.RefundReason = refundReason.String
	r.ApprovedBy = nullStrPtr(approvedBy)
	r.AdminNotes = nullStrPtr(adminNotes)
	r.RefundPaymentID = nullStrPtr(paymentID)
	r.FailureReason = nullStrPtr(failureReason)
	r.ApprovedAt = nullTimePtr(approvedAt)
	r.ProcessedAt = nullTimePtr(processedAt)
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return r, nil
}

// =============================================================================
// LEDGER (ledger.Ledger interface)
// =============================================================================

// Append writes one ledger entry outside of any refund transaction.
func (s *Store) Append(ctx context.Context, entry ledger.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return appendEntry(ctx, s.db, entry)
}

func appendEntry(ctx context.Context, db execer, entry ledger.Entry) error {
	metadataJSON, _ := json.Marshal(entry.Metadata)

	query := `
		INSERT INTO ledger_entries
		(id, booking_id, entry_type, debit_account, credit_account,
		 amount, currency, description, metadata_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		entry.ID, entry.BookingID, entry.Type,
		entry.DebitAccount, entry.CreditAccount,
		entry.Amount.String(), entry.Currency, entry.Description,
		string(metadataJSON),
		entry.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return nil
}

// EntriesByBooking returns all ledger entries for a booking, oldest first.
func (s *Store) EntriesByBooking(ctx context.Context, bookingID string) ([]ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, booking_id, entry_type, debit_account, credit_account,
		       amount, currency, description, metadata_json, created_at
		FROM ledger_entries
		WHERE booking_id = ?
		ORDER BY created_at ASC`,
		bookingID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []ledger.Entry
	for rows.Next() {
		var (
			e            ledger.Entry
			amountStr    string
			description  sql.NullString
			metadataJSON sql.NullString
			createdAt    string
		)
		if err := rows.Scan(&e.ID, &e.BookingID, &e.Type, &e.DebitAccount, &e.CreditAccount,
			&amountStr, &e.Currency, &description, &metadataJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		e.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("corrupt ledger amount %q: %w", amountStr, err)
		}
		e.Description = description.String
		if metadataJSON.Valid && metadataJSON.String != "" {
			json.Unmarshal([]byte(metadataJSON.String), &e.Metadata)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// BOOKING STORE (booking.Reader interface + seed writes)
// =============================================================================

// GetBooking returns the booking, or nil when it doesn't exist.
func (s *Store) GetBooking(ctx context.Context, bookingID string) (*booking.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		b              booking.Booking
		checkIn        sql.NullString
		departure      sql.NullString
		priceSnapshot  sql.NullString
		policy         sql.NullString
		policyJSON     sql.NullString
		hotelPackageID sql.NullString
		tourPackageID  sql.NullString
		createdAt      string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, status, check_in_date, departure_date,
		       price_snapshot, cancellation_policy, cancellation_policy_json,
		       hotel_package_id, tour_package_id, created_at
		FROM bookings WHERE id = ?`,
		bookingID,
	).Scan(&b.ID, &b.UserID, &b.Status, &checkIn, &departure,
		&priceSnapshot, &policy, &policyJSON, &hotelPackageID, &tourPackageID, &createdAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	b.CheckInDate = nullTimePtr(checkIn)
	b.DepartureDate = nullTimePtr(departure)
	if priceSnapshot.Valid {
		b.PriceSnapshot = json.RawMessage(priceSnapshot.String)
	}
	b.CancellationPolicy = policy.String
	if policyJSON.Valid {
		b.CancellationPolicyJSON = json.RawMessage(policyJSON.String)
	}
	b.HotelPackageID = hotelPackageID.String
	b.TourPackageID = tourPackageID.String

	return &b, nil
}

// ResolveProvider maps the booking's package reference to its provider.
func (s *Store) ResolveProvider(ctx context.Context, b *booking.Booking) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	packageID := b.HotelPackageID
	if packageID == "" {
		packageID = b.TourPackageID
	}
	if packageID == "" {
		return "", nil
	}

	var providerID string
	err := s.db.QueryRowContext(ctx,
		"SELECT provider_id FROM packages WHERE id = ?", packageID,
	).Scan(&providerID)

	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve provider: %w", err)
	}
	return providerID, nil
}

// SaveBooking writes a booking row. Used by the demo API and tests; the real
// write side of bookings lives outside this engine.
func (s *Store) SaveBooking(ctx context.Context, b *booking.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO bookings
		(id, user_id, status, check_in_date, departure_date, price_snapshot,
		 cancellation_policy, cancellation_policy_json, hotel_package_id, tour_package_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			price_snapshot = excluded.price_snapshot,
			cancellation_policy = excluded.cancellation_policy,
			cancellation_policy_json = excluded.cancellation_policy_json
	`

	_, err := s.db.ExecContext(ctx, query,
		b.ID, b.UserID, b.Status,
		nullTimeStr(b.CheckInDate), nullTimeStr(b.DepartureDate),
		nullRawStr(b.PriceSnapshot),
		nullStr(b.CancellationPolicy), nullRawStr(b.CancellationPolicyJSON),
		nullStr(b.HotelPackageID), nullStr(b.TourPackageID),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// SavePackage writes a package -> provider mapping.
func (s *Store) SavePackage(ctx context.Context, id, providerID, kind, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO packages (id, provider_id, kind, name)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			provider_id = excluded.provider_id,
			kind = excluded.kind,
			name = excluded.name`,
		id, providerID, kind, name,
	)
	if err != nil {
		return fmt.Errorf("failed to save package: %w", err)
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}

func nullStrPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func nullTimePtr(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, ns.String)
	if err != nil {
		return nil
	}
	return &t
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTimeStr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func nullRawStr(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
