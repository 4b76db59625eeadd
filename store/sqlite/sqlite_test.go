package sqlite_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripline/refund-engine/booking"
	"github.com/tripline/refund-engine/ledger"
	"github.com/tripline/refund-engine/refund"
	"github.com/tripline/refund-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var testNow = time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC)

func setupStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testRefund(id, bookingID string) *refund.Refund {
	return &refund.Refund{
		ID:                        id,
		BookingID:                 bookingID,
		UserID:                    "user-1",
		ProviderID:                "prov-1",
		Status:                    refund.StatusPending,
		Reason:                    "test",
		RefundAmount:              decimal.NewFromInt(500),
		RefundPercentage:          100,
		RefundReason:              "FLEXIBLE policy: full refund (100%), cancelled 10 day(s) before check-in",
		CancellationPolicyApplied: refund.PolicyFlexible,
		CalculationJSON:           "{}",
		CreatedAt:                 testNow,
		UpdatedAt:                 testNow,
	}
}

func testEntry(id, bookingID string) ledger.Entry {
	return ledger.Entry{
		ID:            id,
		BookingID:     bookingID,
		Type:          ledger.EntryRefundProcessed,
		DebitAccount:  ledger.TravelerAccount("user-1"),
		CreditAccount: ledger.ProviderAccount("prov-1"),
		Amount:        decimal.NewFromInt(500),
		Currency:      "USD",
		Description:   "refund for booking " + bookingID,
		Metadata:      map[string]string{"refund_id": "ref-1"},
		CreatedAt:     testNow,
	}
}

func approve(t *testing.T, store *sqlite.Store, refundID string) {
	t.Helper()
	admin := "admin-1"
	at := testNow
	ok, err := store.UpdateStatusIf(context.Background(), refundID, refund.StatusChange{
		Expected:   refund.StatusPending,
		To:         refund.StatusApproved,
		ApprovedBy: &admin,
		ApprovedAt: &at,
	})
	require.NoError(t, err)
	require.True(t, ok)
}

// =============================================================================
// REFUND ROW TESTS
// =============================================================================

func TestCreateRefund_RoundTrip(t *testing.T) {
	store := setupStore(t)

	r := testRefund("ref-1", "bkg-1")
	require.NoError(t, store.CreateRefund(context.Background(), r))

	got, err := store.GetRefund(context.Background(), "ref-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, r.BookingID, got.BookingID)
	assert.Equal(t, refund.StatusPending, got.Status)
	assert.True(t, r.RefundAmount.Equal(got.RefundAmount))
	assert.Equal(t, r.RefundPercentage, got.RefundPercentage)
	assert.Equal(t, refund.PolicyFlexible, got.CancellationPolicyApplied)
	assert.Nil(t, got.ApprovedBy)
	assert.Nil(t, got.ProcessedAt)
	assert.Nil(t, got.FailureReason)
	assert.Equal(t, testNow.Unix(), got.CreatedAt.Unix())
}

func TestGetRefund_Missing(t *testing.T) {
	store := setupStore(t)

	got, err := store.GetRefund(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got, "a missing refund is nil, not an error")
}

func TestCreateRefund_UniqueBookingConstraint(t *testing.T) {
	// GIVEN: An existing refund for bkg-1
	// WHEN: Inserting a second refund for the same booking
	// THEN: ErrDuplicateRefund from the unique index, even with a fresh ID

	store := setupStore(t)
	require.NoError(t, store.CreateRefund(context.Background(), testRefund("ref-1", "bkg-1")))

	err := store.CreateRefund(context.Background(), testRefund("ref-2", "bkg-1"))
	assert.ErrorIs(t, err, refund.ErrDuplicateRefund)

	// A different booking is fine.
	require.NoError(t, store.CreateRefund(context.Background(), testRefund("ref-3", "bkg-2")))
}

func TestUpdateStatusIf_WrongExpectedStatus(t *testing.T) {
	// A conditional update against the wrong current status matches no row
	// and reports false without touching anything.

	store := setupStore(t)
	require.NoError(t, store.CreateRefund(context.Background(), testRefund("ref-1", "bkg-1")))

	ok, err := store.UpdateStatusIf(context.Background(), "ref-1", refund.StatusChange{
		Expected: refund.StatusApproved, // actually PENDING
		To:       refund.StatusProcessed,
	})
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := store.GetRefund(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.Equal(t, refund.StatusPending, got.Status)
}

func TestUpdateStatusIf_SetsOptionalFields(t *testing.T) {
	store := setupStore(t)
	require.NoError(t, store.CreateRefund(context.Background(), testRefund("ref-1", "bkg-1")))

	admin := "admin-1"
	at := testNow.Add(time.Hour)
	notes := "looks legit"
	ok, err := store.UpdateStatusIf(context.Background(), "ref-1", refund.StatusChange{
		Expected:   refund.StatusPending,
		To:         refund.StatusApproved,
		ApprovedBy: &admin,
		ApprovedAt: &at,
		AdminNotes: &notes,
	})
	require.NoError(t, err)
	require.True(t, ok)

	got, err := store.GetRefund(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.Equal(t, refund.StatusApproved, got.Status)
	require.NotNil(t, got.ApprovedBy)
	assert.Equal(t, "admin-1", *got.ApprovedBy)
	require.NotNil(t, got.ApprovedAt)
	assert.Equal(t, at.Unix(), got.ApprovedAt.Unix())
	require.NotNil(t, got.AdminNotes)
	assert.Equal(t, "looks legit", *got.AdminNotes)
}

// =============================================================================
// PROCESSING TRANSACTION TESTS
// =============================================================================

func TestMarkProcessed(t *testing.T) {
	store := setupStore(t)
	require.NoError(t, store.CreateRefund(context.Background(), testRefund("ref-1", "bkg-1")))
	approve(t, store, "ref-1")

	ok, err := store.MarkProcessed(context.Background(), "ref-1", "pay-1", testNow.Add(time.Hour), testEntry("led-1", "bkg-1"))
	require.NoError(t, err)
	require.True(t, ok)

	got, err := store.GetRefund(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.Equal(t, refund.StatusProcessed, got.Status)
	require.NotNil(t, got.RefundPaymentID)
	assert.Equal(t, "pay-1", *got.RefundPaymentID)

	entries, err := store.EntriesByBooking(context.Background(), "bkg-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "led-1", entries[0].ID)
}

func TestMarkProcessed_NotApproved(t *testing.T) {
	store := setupStore(t)
	require.NoError(t, store.CreateRefund(context.Background(), testRefund("ref-1", "bkg-1")))

	ok, err := store.MarkProcessed(context.Background(), "ref-1", "pay-1", testNow, testEntry("led-1", "bkg-1"))
	require.NoError(t, err)
	assert.False(t, ok)

	entries, err := store.EntriesByBooking(context.Background(), "bkg-1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMarkProcessed_LedgerFailureRollsBackStatus(t *testing.T) {
	// GIVEN: An APPROVED refund and a ledger entry whose ID already exists,
	//        so the insert inside the transaction must fail
	// WHEN: MarkProcessed runs
	// THEN: ErrLedgerWriteFailed, and the refund is still APPROVED - the
	//       status flip and the ledger append commit together or not at all

	store := setupStore(t)
	require.NoError(t, store.CreateRefund(context.Background(), testRefund("ref-1", "bkg-1")))
	approve(t, store, "ref-1")

	require.NoError(t, store.Append(context.Background(), testEntry("led-dup", "bkg-other")))

	ok, err := store.MarkProcessed(context.Background(), "ref-1", "pay-1", testNow, testEntry("led-dup", "bkg-1"))
	assert.False(t, ok)
	assert.ErrorIs(t, err, refund.ErrLedgerWriteFailed)
	assert.True(t, refund.IsRetryable(err))

	got, err := store.GetRefund(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.Equal(t, refund.StatusApproved, got.Status)
	assert.Nil(t, got.RefundPaymentID)
	assert.Nil(t, got.ProcessedAt)

	entries, err := store.EntriesByBooking(context.Background(), "bkg-1")
	require.NoError(t, err)
	assert.Empty(t, entries, "the failed transaction must not leave a partial ledger entry")
}

// =============================================================================
// LEDGER TESTS
// =============================================================================

func TestLedger_AppendAndRead(t *testing.T) {
	store := setupStore(t)

	e1 := testEntry("led-1", "bkg-1")
	e2 := testEntry("led-2", "bkg-1")
	e2.CreatedAt = testNow.Add(time.Hour)
	e2.Amount = decimal.RequireFromString("250.50")
	other := testEntry("led-3", "bkg-other")

	require.NoError(t, store.Append(context.Background(), e1))
	require.NoError(t, store.Append(context.Background(), e2))
	require.NoError(t, store.Append(context.Background(), other))

	entries, err := store.EntriesByBooking(context.Background(), "bkg-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Oldest first.
	assert.Equal(t, "led-1", entries[0].ID)
	assert.Equal(t, "led-2", entries[1].ID)

	got := entries[1]
	assert.Equal(t, "traveler:user-1", got.DebitAccount)
	assert.Equal(t, "provider:prov-1", got.CreditAccount)
	assert.True(t, decimal.RequireFromString("250.50").Equal(got.Amount))
	assert.Equal(t, "USD", got.Currency)
	assert.Equal(t, "ref-1", got.Metadata["refund_id"])
}

func TestLedger_EmptyBooking(t *testing.T) {
	store := setupStore(t)

	entries, err := store.EntriesByBooking(context.Background(), "bkg-virgin")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// =============================================================================
// BOOKING READER TESTS
// =============================================================================

func TestBooking_RoundTrip(t *testing.T) {
	store := setupStore(t)

	checkIn := testNow.AddDate(0, 0, 10)
	b := &booking.Booking{
		ID:                 "bkg-1",
		UserID:             "user-1",
		Status:             booking.StatusConfirmed,
		CheckInDate:        &checkIn,
		PriceSnapshot:      json.RawMessage(`{"basePrice":"500","tax":"25","commission":"50","total":"575"}`),
		CancellationPolicy: "FLEXIBLE",
		HotelPackageID:     "pkg-1",
	}
	require.NoError(t, store.SaveBooking(context.Background(), b))

	got, err := store.GetBooking(context.Background(), "bkg-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "user-1", got.UserID)
	require.NotNil(t, got.CheckInDate)
	assert.Equal(t, checkIn.Unix(), got.CheckInDate.Unix())
	assert.Nil(t, got.DepartureDate)
	assert.Equal(t, "FLEXIBLE", got.CancellationPolicy)

	prices, ok := got.Prices()
	require.True(t, ok)
	assert.Equal(t, "500", prices.BasePrice.String())
}

func TestBooking_Missing(t *testing.T) {
	store := setupStore(t)

	got, err := store.GetBooking(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResolveProvider(t *testing.T) {
	store := setupStore(t)
	require.NoError(t, store.SavePackage(context.Background(), "pkg-hotel", "prov-h", "hotel", "Hotel"))
	require.NoError(t, store.SavePackage(context.Background(), "pkg-tour", "prov-t", "tour", "Tour"))

	// Hotel reference wins when present.
	prov, err := store.ResolveProvider(context.Background(), &booking.Booking{HotelPackageID: "pkg-hotel"})
	require.NoError(t, err)
	assert.Equal(t, "prov-h", prov)

	prov, err = store.ResolveProvider(context.Background(), &booking.Booking{TourPackageID: "pkg-tour"})
	require.NoError(t, err)
	assert.Equal(t, "prov-t", prov)

	// Unknown or absent packages resolve to "", not an error.
	prov, err = store.ResolveProvider(context.Background(), &booking.Booking{HotelPackageID: "pkg-ghost"})
	require.NoError(t, err)
	assert.Equal(t, "", prov)

	prov, err = store.ResolveProvider(context.Background(), &booking.Booking{})
	require.NoError(t, err)
	assert.Equal(t, "", prov)
}

func TestSaveBooking_Upsert(t *testing.T) {
	store := setupStore(t)

	b := &booking.Booking{ID: "bkg-1", UserID: "user-1", Status: booking.StatusConfirmed}
	require.NoError(t, store.SaveBooking(context.Background(), b))

	b.Status = "CANCELLED"
	require.NoError(t, store.SaveBooking(context.Background(), b))

	got, err := store.GetBooking(context.Background(), "bkg-1")
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", got.Status)
}
