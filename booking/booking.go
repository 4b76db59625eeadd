/*
Package booking defines the read-only contract the refund engine has with the
booking subsystem.

PURPOSE:
  Bookings are owned by another part of the marketplace; the refund engine only
  reads them. This package models exactly the slice of a booking the engine
  needs: ownership, status, the check-in date, the frozen price breakdown and
  cancellation policy, and the package reference used to resolve the provider.

LOOSE PAYLOADS:
  The price snapshot and the cancellation policy arrive as external JSON that
  may be either an object or a string-wrapped object, depending on which
  writer produced the booking. Parsing is defensive: a malformed payload
  yields a "not present" result, never a panic, and the engine turns that into
  its own typed error.

SEE ALSO:
  - refund/engine.go: The only consumer of this contract
  - store/sqlite: Persisted implementation of Reader
*/
package booking

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// BOOKING READ MODEL
// =============================================================================

// Booking statuses the engine cares about. The full booking state machine
// lives elsewhere; refunds are only requestable from these two.
const (
	StatusConfirmed      = "CONFIRMED"
	StatusPaymentPending = "PAYMENT_PENDING"
)

// Booking is the engine's read model of a marketplace booking.
type Booking struct {
	ID     string
	UserID string
	Status string

	// Exactly one of CheckInDate (hotels) or DepartureDate (tours) is set.
	CheckInDate   *time.Time
	DepartureDate *time.Time

	// PriceSnapshot is the frozen price breakdown captured at booking time,
	// as raw JSON (object or string-wrapped object).
	PriceSnapshot json.RawMessage

	// CancellationPolicy is the plain policy enum. CancellationPolicyJSON,
	// when present and carrying a "type" field, takes precedence over it.
	CancellationPolicy     string
	CancellationPolicyJSON json.RawMessage

	// Package references; exactly one is set and resolves to a provider.
	HotelPackageID string
	TourPackageID  string
}

// Refundable reports whether the booking status permits a refund request.
func (b *Booking) Refundable() bool {
	return b.Status == StatusConfirmed || b.Status == StatusPaymentPending
}

// TravelDate returns the check-in date for hotels or the departure date for
// tours, and false when neither is present.
func (b *Booking) TravelDate() (time.Time, bool) {
	if b.CheckInDate != nil {
		return *b.CheckInDate, true
	}
	if b.DepartureDate != nil {
		return *b.DepartureDate, true
	}
	return time.Time{}, false
}

// PolicyType returns the effective cancellation policy type: the "type" field
// of the policy JSON when present, otherwise the plain enum field. The second
// return is false when neither yields a policy.
func (b *Booking) PolicyType() (string, bool) {
	if len(b.CancellationPolicyJSON) > 0 {
		var payload struct {
			Type string `json:"type"`
		}
		if raw, ok := unwrapJSON(b.CancellationPolicyJSON); ok {
			if err := json.Unmarshal(raw, &payload); err == nil && payload.Type != "" {
				return payload.Type, true
			}
		}
	}
	if b.CancellationPolicy != "" {
		return b.CancellationPolicy, true
	}
	return "", false
}

// =============================================================================
// PRICE SNAPSHOT
// =============================================================================

// PriceBreakdown is the frozen price structure captured at booking time.
type PriceBreakdown struct {
	BasePrice  decimal.Decimal `json:"basePrice"`
	Tax        decimal.Decimal `json:"tax"`
	Commission decimal.Decimal `json:"commission"`
	Total      decimal.Decimal `json:"total"`
}

// Prices parses the booking's price snapshot. The second return is false when
// the snapshot is absent or unparseable.
func (b *Booking) Prices() (PriceBreakdown, bool) {
	raw, ok := unwrapJSON(b.PriceSnapshot)
	if !ok {
		return PriceBreakdown{}, false
	}
	var p PriceBreakdown
	if err := json.Unmarshal(raw, &p); err != nil {
		return PriceBreakdown{}, false
	}
	// A snapshot without a base price cannot drive a refund calculation.
	if p.BasePrice.IsZero() && p.Total.IsZero() {
		return PriceBreakdown{}, false
	}
	return p, true
}

// unwrapJSON normalizes a payload that may be an object or a string-wrapped
// object into plain object JSON.
func unwrapJSON(raw json.RawMessage) (json.RawMessage, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, false
	}
	if strings.HasPrefix(trimmed, "\"") {
		var inner string
		if err := json.Unmarshal([]byte(trimmed), &inner); err != nil {
			return nil, false
		}
		trimmed = strings.TrimSpace(inner)
	}
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false
	}
	return json.RawMessage(trimmed), true
}

// =============================================================================
// READER - Storage contract
// =============================================================================

// Reader is the engine's view of booking storage.
type Reader interface {
	// GetBooking returns the booking, or nil when it doesn't exist.
	GetBooking(ctx context.Context, bookingID string) (*Booking, error)

	// ResolveProvider maps the booking's hotel or tour package to the
	// provider who fulfils it. Returns "" when no package resolves.
	ResolveProvider(ctx context.Context, b *Booking) (string, error)
}
