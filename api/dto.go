/*
dto.go - Request/response data structures for the HTTP API

Monetary amounts cross the wire as decimal strings, never as JSON numbers;
clients that parse them as binary floats get exactly what they asked for.
*/
package api

import (
	"time"

	"github.com/tripline/refund-engine/booking"
	"github.com/tripline/refund-engine/ledger"
	"github.com/tripline/refund-engine/refund"
)

// =============================================================================
// REQUESTS
// =============================================================================

// RequestRefundRequest is the traveler's cancellation request.
type RequestRefundRequest struct {
	BookingID string `json:"booking_id"`
	UserID    string `json:"user_id"`
	Reason    string `json:"reason,omitempty"`
}

// ApproveRefundRequest is the admin approval action.
type ApproveRefundRequest struct {
	AdminID string `json:"admin_id"`
	Notes   string `json:"notes,omitempty"`
}

// RejectRefundRequest is the admin rejection action.
type RejectRefundRequest struct {
	AdminID string `json:"admin_id"`
	Reason  string `json:"reason"`
}

// ProcessRefundRequest carries the optional external payment reference.
type ProcessRefundRequest struct {
	PaymentReference string `json:"payment_reference,omitempty"`
}

// FailRefundRequest marks a processed payout as bounced.
type FailRefundRequest struct {
	Reason string `json:"reason"`
}

// CreateBookingRequest seeds a demo booking. The production write side of
// bookings lives outside this service.
type CreateBookingRequest struct {
	ID                     string `json:"id,omitempty"`
	UserID                 string `json:"user_id"`
	Status                 string `json:"status"`
	CheckInDate            string `json:"check_in_date,omitempty"`
	DepartureDate          string `json:"departure_date,omitempty"`
	PriceSnapshot          any    `json:"price_snapshot,omitempty"`
	CancellationPolicy     string `json:"cancellation_policy,omitempty"`
	CancellationPolicyJSON any    `json:"cancellation_policy_json,omitempty"`
	HotelPackageID         string `json:"hotel_package_id,omitempty"`
	TourPackageID          string `json:"tour_package_id,omitempty"`
}

// =============================================================================
// RESPONSES
// =============================================================================

// RefundDTO is the wire form of a refund record.
type RefundDTO struct {
	ID              string  `json:"id"`
	BookingID       string  `json:"booking_id"`
	UserID          string  `json:"user_id"`
	ProviderID      string  `json:"provider_id"`
	Status          string  `json:"status"`
	Reason          string  `json:"reason,omitempty"`
	RefundAmount    string  `json:"refund_amount"`
	RefundPercent   int     `json:"refund_percentage"`
	RefundReason    string  `json:"refund_reason"`
	PolicyApplied   string  `json:"cancellation_policy_applied"`
	ApprovedBy      *string `json:"approved_by,omitempty"`
	ApprovedAt      *string `json:"approved_at,omitempty"`
	AdminNotes      *string `json:"admin_notes,omitempty"`
	RefundPaymentID *string `json:"refund_payment_id,omitempty"`
	ProcessedAt     *string `json:"processed_at,omitempty"`
	FailureReason   *string `json:"failure_reason,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

func toRefundDTO(r *refund.Refund) RefundDTO {
	return RefundDTO{
		ID:              r.ID,
		BookingID:       r.BookingID,
		UserID:          r.UserID,
		ProviderID:      r.ProviderID,
		Status:          string(r.Status),
		Reason:          r.Reason,
		RefundAmount:    r.RefundAmount.String(),
		RefundPercent:   r.RefundPercentage,
		RefundReason:    r.RefundReason,
		PolicyApplied:   string(r.CancellationPolicyApplied),
		ApprovedBy:      r.ApprovedBy,
		ApprovedAt:      formatTimePtr(r.ApprovedAt),
		AdminNotes:      r.AdminNotes,
		RefundPaymentID: r.RefundPaymentID,
		ProcessedAt:     formatTimePtr(r.ProcessedAt),
		FailureReason:   r.FailureReason,
		CreatedAt:       r.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toRefundDTOs(refunds []refund.Refund) []RefundDTO {
	dtos := make([]RefundDTO, len(refunds))
	for i := range refunds {
		dtos[i] = toRefundDTO(&refunds[i])
	}
	return dtos
}

// LedgerEntryDTO is the wire form of a ledger entry.
type LedgerEntryDTO struct {
	ID            string            `json:"id"`
	BookingID     string            `json:"booking_id"`
	Type          string            `json:"type"`
	DebitAccount  string            `json:"debit_account"`
	CreditAccount string            `json:"credit_account"`
	Amount        string            `json:"amount"`
	Currency      string            `json:"currency"`
	Description   string            `json:"description,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	CreatedAt     string            `json:"created_at"`
}

func toLedgerEntryDTOs(entries []ledger.Entry) []LedgerEntryDTO {
	dtos := make([]LedgerEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = LedgerEntryDTO{
			ID:            e.ID,
			BookingID:     e.BookingID,
			Type:          string(e.Type),
			DebitAccount:  e.DebitAccount,
			CreditAccount: e.CreditAccount,
			Amount:        e.Amount.String(),
			Currency:      e.Currency,
			Description:   e.Description,
			Metadata:      e.Metadata,
			CreatedAt:     e.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	return dtos
}

// BookingDTO is the wire form of the booking read model.
type BookingDTO struct {
	ID                 string `json:"id"`
	UserID             string `json:"user_id"`
	Status             string `json:"status"`
	CheckInDate        string `json:"check_in_date,omitempty"`
	DepartureDate      string `json:"departure_date,omitempty"`
	CancellationPolicy string `json:"cancellation_policy,omitempty"`
	HotelPackageID     string `json:"hotel_package_id,omitempty"`
	TourPackageID      string `json:"tour_package_id,omitempty"`
}

func toBookingDTO(b *booking.Booking) BookingDTO {
	dto := BookingDTO{
		ID:                 b.ID,
		UserID:             b.UserID,
		Status:             b.Status,
		CancellationPolicy: b.CancellationPolicy,
		HotelPackageID:     b.HotelPackageID,
		TourPackageID:      b.TourPackageID,
	}
	if b.CheckInDate != nil {
		dto.CheckInDate = b.CheckInDate.UTC().Format(time.RFC3339)
	}
	if b.DepartureDate != nil {
		dto.DepartureDate = b.DepartureDate.UTC().Format(time.RFC3339)
	}
	return dto
}

// StatisticsDTO is the wire form of aggregate refund statistics.
type StatisticsDTO struct {
	TotalRequests int                  `json:"total_requests"`
	TotalRefunded string               `json:"total_refunded"`
	ByStatus      map[string]BucketDTO `json:"by_status"`
	ByPolicy      map[string]BucketDTO `json:"by_policy"`
}

// BucketDTO is one aggregation group.
type BucketDTO struct {
	Count  int    `json:"count"`
	Amount string `json:"amount"`
}

func toStatisticsDTO(s *refund.Statistics) StatisticsDTO {
	dto := StatisticsDTO{
		TotalRequests: s.TotalRequests,
		TotalRefunded: s.TotalRefunded.String(),
		ByStatus:      make(map[string]BucketDTO, len(s.ByStatus)),
		ByPolicy:      make(map[string]BucketDTO, len(s.ByPolicy)),
	}
	for status, b := range s.ByStatus {
		dto.ByStatus[string(status)] = BucketDTO{Count: b.Count, Amount: b.Amount.String()}
	}
	for policy, b := range s.ByPolicy {
		dto.ByPolicy[string(policy)] = BucketDTO{Count: b.Count, Amount: b.Amount.String()}
	}
	return dto
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
