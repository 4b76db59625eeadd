package booking_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripline/refund-engine/booking"
)

// =============================================================================
// PRICE SNAPSHOT PARSING
// =============================================================================

func TestPrices_ObjectSnapshot(t *testing.T) {
	b := &booking.Booking{
		PriceSnapshot: json.RawMessage(`{"basePrice":500,"tax":25,"commission":50,"total":575}`),
	}

	p, ok := b.Prices()
	require.True(t, ok)
	assert.Equal(t, "500", p.BasePrice.String())
	assert.Equal(t, "50", p.Commission.String())
	assert.Equal(t, "575", p.Total.String())
}

func TestPrices_StringWrappedSnapshot(t *testing.T) {
	// Some writers double-encode the snapshot: a JSON string containing JSON.
	b := &booking.Booking{
		PriceSnapshot: json.RawMessage(`"{\"basePrice\":\"120.50\",\"tax\":\"10\",\"commission\":\"12\",\"total\":\"142.50\"}"`),
	}

	p, ok := b.Prices()
	require.True(t, ok)
	assert.Equal(t, "120.5", p.BasePrice.String())
}

func TestPrices_StringAmounts(t *testing.T) {
	// Amounts may arrive as JSON strings; decimal accepts both forms.
	b := &booking.Booking{
		PriceSnapshot: json.RawMessage(`{"basePrice":"99.99","tax":"0","commission":"5","total":"104.99"}`),
	}

	p, ok := b.Prices()
	require.True(t, ok)
	assert.Equal(t, "99.99", p.BasePrice.String())
}

func TestPrices_Absent(t *testing.T) {
	cases := map[string]json.RawMessage{
		"nil":          nil,
		"empty":        json.RawMessage(``),
		"null":         json.RawMessage(`null`),
		"garbage":      json.RawMessage(`not json at all`),
		"wrapped-bad":  json.RawMessage(`"also not json"`),
		"array":        json.RawMessage(`[1,2,3]`),
		"empty-object": json.RawMessage(`{}`),
		"all-zero":     json.RawMessage(`{"basePrice":0,"total":0}`),
		"wrong-types":  json.RawMessage(`{"basePrice":{"nested":true}}`),
	}
	for name, raw := range cases {
		b := &booking.Booking{PriceSnapshot: raw}
		_, ok := b.Prices()
		assert.False(t, ok, "case %q must parse as absent", name)
	}
}

// =============================================================================
// POLICY RESOLUTION
// =============================================================================

func TestPolicyType_JSONWinsOverEnum(t *testing.T) {
	// GIVEN: A booking carrying both the plain enum and a policy JSON payload
	// WHEN: Resolving the effective policy
	// THEN: The JSON "type" field wins

	b := &booking.Booking{
		CancellationPolicy:     "FLEXIBLE",
		CancellationPolicyJSON: json.RawMessage(`{"type":"STRICT","fullRefundUntilDays":1}`),
	}

	policy, ok := b.PolicyType()
	require.True(t, ok)
	assert.Equal(t, "STRICT", policy)
}

func TestPolicyType_StringWrappedJSON(t *testing.T) {
	b := &booking.Booking{
		CancellationPolicyJSON: json.RawMessage(`"{\"type\":\"MODERATE\"}"`),
	}

	policy, ok := b.PolicyType()
	require.True(t, ok)
	assert.Equal(t, "MODERATE", policy)
}

func TestPolicyType_FallsBackToEnum(t *testing.T) {
	cases := map[string]json.RawMessage{
		"absent":    nil,
		"null":      json.RawMessage(`null`),
		"no-type":   json.RawMessage(`{"fullRefundUntilDays":7}`),
		"malformed": json.RawMessage(`{broken`),
	}
	for name, raw := range cases {
		b := &booking.Booking{CancellationPolicy: "MODERATE", CancellationPolicyJSON: raw}
		policy, ok := b.PolicyType()
		require.True(t, ok, "case %q", name)
		assert.Equal(t, "MODERATE", policy, "case %q", name)
	}
}

func TestPolicyType_NothingPresent(t *testing.T) {
	b := &booking.Booking{}
	_, ok := b.PolicyType()
	assert.False(t, ok)
}

// =============================================================================
// STATUS AND DATES
// =============================================================================

func TestRefundable(t *testing.T) {
	cases := []struct {
		status string
		want   bool
	}{
		{booking.StatusConfirmed, true},
		{booking.StatusPaymentPending, true},
		{"CANCELLED", false},
		{"COMPLETED", false},
		{"", false},
	}
	for _, tc := range cases {
		b := &booking.Booking{Status: tc.status}
		assert.Equal(t, tc.want, b.Refundable(), "status %q", tc.status)
	}
}

func TestTravelDate(t *testing.T) {
	checkIn := time.Date(2026, time.July, 1, 15, 0, 0, 0, time.UTC)
	departure := time.Date(2026, time.August, 1, 9, 0, 0, 0, time.UTC)

	// Hotel: check-in date.
	b := &booking.Booking{CheckInDate: &checkIn}
	got, ok := b.TravelDate()
	require.True(t, ok)
	assert.Equal(t, checkIn, got)

	// Tour: departure date.
	b = &booking.Booking{DepartureDate: &departure}
	got, ok = b.TravelDate()
	require.True(t, ok)
	assert.Equal(t, departure, got)

	// Check-in wins when both are somehow present.
	b = &booking.Booking{CheckInDate: &checkIn, DepartureDate: &departure}
	got, ok = b.TravelDate()
	require.True(t, ok)
	assert.Equal(t, checkIn, got)

	// Neither.
	b = &booking.Booking{}
	_, ok = b.TravelDate()
	assert.False(t, ok)
}
