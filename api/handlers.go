/*
handlers.go - HTTP handlers for the refund engine

PURPOSE:
  Exposes the refund lifecycle via REST. Handles HTTP request/response and
  JSON shape; every decision belongs to the engine.

ENDPOINTS:
  Refund lifecycle:
    POST   /api/refunds                  Traveler requests a refund
    POST   /api/refunds/{id}/approve     Admin approves
    POST   /api/refunds/{id}/reject      Admin rejects
    POST   /api/refunds/{id}/process     Pays out + posts the ledger entry
    POST   /api/refunds/{id}/fail        Marks a bounced payout

  Reads:
    GET    /api/refunds/{id}
    GET    /api/refunds/booking/{bookingID}
    GET    /api/refunds/user/{userID}
    GET    /api/refunds/provider/{providerID}
    GET    /api/refunds?status=PENDING
    GET    /api/refunds/pending
    GET    /api/refunds/statistics
    GET    /api/ledger/booking/{bookingID}

  Demo bookings (the real booking service lives elsewhere):
    POST   /api/bookings
    GET    /api/bookings/{id}

ERROR HANDLING:
  The engine's typed errors map onto HTTP status codes:
    403  requester does not own the booking
    404  booking or refund missing
    409  duplicate refund, transition conflicts
    400  other validation failures (booking state, missing data, bad policy)
    500  infrastructure failures; details are logged, not leaked

AUTH NOTE:
  Role enforcement (traveler vs admin) belongs to the gateway in front of
  this service. Booking ownership is still re-validated by the engine.

SEE ALSO:
  - dto.go: Wire shapes
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tripline/refund-engine/booking"
	"github.com/tripline/refund-engine/refund"
	"github.com/tripline/refund-engine/store/sqlite"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine *refund.Engine
	Store  *sqlite.Store
	Log    *zap.Logger
}

// NewHandler creates a new handler.
func NewHandler(engine *refund.Engine, store *sqlite.Store, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Engine: engine, Store: store, Log: log}
}

// =============================================================================
// REFUND LIFECYCLE
// =============================================================================

// RequestRefund creates a PENDING refund for a booking.
func (h *Handler) RequestRefund(w http.ResponseWriter, r *http.Request) {
	var req RequestRefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.BookingID == "" || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "booking_id and user_id are required", nil)
		return
	}

	ref, err := h.Engine.RequestRefund(r.Context(), req.BookingID, req.UserID, req.Reason)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRefundDTO(ref))
}

// ApproveRefund moves a PENDING refund to APPROVED.
func (h *Handler) ApproveRefund(w http.ResponseWriter, r *http.Request) {
	var req ApproveRefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.AdminID == "" {
		writeError(w, http.StatusBadRequest, "admin_id is required", nil)
		return
	}

	ref, err := h.Engine.ApproveRefund(r.Context(), chi.URLParam(r, "id"), req.AdminID, req.Notes)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRefundDTO(ref))
}

// RejectRefund moves a PENDING refund to REJECTED.
func (h *Handler) RejectRefund(w http.ResponseWriter, r *http.Request) {
	var req RejectRefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.AdminID == "" || req.Reason == "" {
		writeError(w, http.StatusBadRequest, "admin_id and reason are required", nil)
		return
	}

	ref, err := h.Engine.RejectRefund(r.Context(), chi.URLParam(r, "id"), req.AdminID, req.Reason)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRefundDTO(ref))
}

// ProcessRefund pays out an APPROVED refund and posts the ledger entry.
func (h *Handler) ProcessRefund(w http.ResponseWriter, r *http.Request) {
	var req ProcessRefundRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	ref, err := h.Engine.ProcessRefund(r.Context(), chi.URLParam(r, "id"), req.PaymentReference)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRefundDTO(ref))
}

// FailRefund marks a PROCESSED refund's payout as bounced.
func (h *Handler) FailRefund(w http.ResponseWriter, r *http.Request) {
	var req FailRefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Reason == "" {
		writeError(w, http.StatusBadRequest, "reason is required", nil)
		return
	}

	ref, err := h.Engine.FailRefund(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRefundDTO(ref))
}

// =============================================================================
// READS
// =============================================================================

// GetRefund returns one refund by ID.
func (h *Handler) GetRefund(w http.ResponseWriter, r *http.Request) {
	ref, err := h.Engine.GetRefund(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRefundDTO(ref))
}

// GetRefundByBooking returns the booking's refund, if any.
func (h *Handler) GetRefundByBooking(w http.ResponseWriter, r *http.Request) {
	ref, err := h.Engine.GetRefundByBooking(r.Context(), chi.URLParam(r, "bookingID"))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRefundDTO(ref))
}

// ListRefunds returns refunds filtered by the status query parameter, or all
// pending refunds when none is given.
func (h *Handler) ListRefunds(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		h.ListPendingRefunds(w, r)
		return
	}

	refunds, err := h.Engine.GetRefundsByStatus(r.Context(), refund.Status(status))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown refund status", err)
		return
	}
	writeJSON(w, http.StatusOK, toRefundDTOs(refunds))
}

// ListUserRefunds returns a requester's refunds.
func (h *Handler) ListUserRefunds(w http.ResponseWriter, r *http.Request) {
	refunds, err := h.Engine.GetUserRefunds(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRefundDTOs(refunds))
}

// ListProviderRefunds returns a provider's refunds.
func (h *Handler) ListProviderRefunds(w http.ResponseWriter, r *http.Request) {
	refunds, err := h.Engine.GetProviderRefunds(r.Context(), chi.URLParam(r, "providerID"))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRefundDTOs(refunds))
}

// ListPendingRefunds returns the admin review queue, oldest first.
func (h *Handler) ListPendingRefunds(w http.ResponseWriter, r *http.Request) {
	refunds, err := h.Engine.GetPendingRefunds(r.Context())
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRefundDTOs(refunds))
}

// GetStatistics returns aggregate refund statistics.
func (h *Handler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Engine.GetStatistics(r.Context())
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatisticsDTO(stats))
}

// GetLedgerEntries returns all ledger entries for a booking.
func (h *Handler) GetLedgerEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Store.EntriesByBooking(r.Context(), chi.URLParam(r, "bookingID"))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLedgerEntryDTOs(entries))
}

// =============================================================================
// DEMO BOOKINGS
// =============================================================================

// CreateBooking seeds a demo booking row.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.UserID == "" || req.Status == "" {
		writeError(w, http.StatusBadRequest, "user_id and status are required", nil)
		return
	}

	b := &booking.Booking{
		ID:                 req.ID,
		UserID:             req.UserID,
		Status:             req.Status,
		CancellationPolicy: req.CancellationPolicy,
		HotelPackageID:     req.HotelPackageID,
		TourPackageID:      req.TourPackageID,
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if req.CheckInDate != "" {
		t, err := time.Parse(time.RFC3339, req.CheckInDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "check_in_date must be RFC3339", err)
			return
		}
		b.CheckInDate = &t
	}
	if req.DepartureDate != "" {
		t, err := time.Parse(time.RFC3339, req.DepartureDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "departure_date must be RFC3339", err)
			return
		}
		b.DepartureDate = &t
	}
	if req.PriceSnapshot != nil {
		raw, _ := json.Marshal(req.PriceSnapshot)
		b.PriceSnapshot = raw
	}
	if req.CancellationPolicyJSON != nil {
		raw, _ := json.Marshal(req.CancellationPolicyJSON)
		b.CancellationPolicyJSON = raw
	}

	if err := h.Store.SaveBooking(r.Context(), b); err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBookingDTO(b))
}

// GetBooking returns a demo booking.
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.Store.GetBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	if b == nil {
		writeError(w, http.StatusNotFound, "Booking not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toBookingDTO(b))
}

// =============================================================================
// ERROR MAPPING + RESPONSE HELPERS
// =============================================================================

// writeEngineError maps the engine's typed errors onto HTTP status codes.
// Infrastructure failures log the cause and return a generic message.
func (h *Handler) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, refund.ErrNotBookingOwner):
		writeError(w, http.StatusForbidden, "Booking does not belong to requester", nil)
	case refund.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, refund.ErrDuplicateRefund),
		errors.Is(err, refund.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "Conflict", err)
	case refund.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	case refund.IsRetryable(err):
		h.Log.Error("retryable infrastructure failure", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "Temporarily unavailable, please retry", nil)
	default:
		h.Log.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal error", nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
