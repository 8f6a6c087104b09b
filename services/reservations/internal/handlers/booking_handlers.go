package handlers

import (
	"net/http"

	"github.com/diagnosis/guestroom-reservations/internal/http/response"
	"github.com/diagnosis/guestroom-reservations/pkg/auth"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/domain"
)

// CreateBooking handles booking intake. Only staff may create a booking that
// is confirmed on arrival.
func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var body createBookingReq
	if err := decodeJSON(r, &body); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	if body.Confirmed {
		if claims := getClaims(r); claims == nil || !claims.Allows(auth.RoleStaff) {
			response.Forbidden(w, "Only staff can create confirmed bookings")
			return
		}
	}

	req, err := body.toDomain()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	booking, err := h.svc.Reserve(r.Context(), req, r.Header.Get("Idempotency-Key"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, toBookingDTO(*booking))
}

func (h *Handlers) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	booking, err := h.svc.GetBooking(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, toBookingDTO(*booking))
}

func (h *Handlers) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id int64) (*domain.Booking, error) {
		return h.svc.Confirm(r.Context(), id)
	})
}

type checkInReq struct {
	OverrideBalance bool `json:"override_balance"`
}

// CheckIn answers 409 OUTSTANDING_BALANCE when money is owed; resending with
// override_balance acknowledges the warning.
func (h *Handlers) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkInReq
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	h.transition(w, r, func(id int64) (*domain.Booking, error) {
		return h.svc.CheckIn(r.Context(), id, req.OverrideBalance)
	})
}

type checkOutReq struct {
	AdditionalPayment float64 `json:"additional_payment"`
}

func (h *Handlers) CheckOut(w http.ResponseWriter, r *http.Request) {
	var req checkOutReq
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	h.transition(w, r, func(id int64) (*domain.Booking, error) {
		return h.svc.CheckOut(r.Context(), id, req.AdditionalPayment)
	})
}

func (h *Handlers) CancelBooking(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id int64) (*domain.Booking, error) {
		return h.svc.Cancel(r.Context(), id)
	})
}

func (h *Handlers) transition(w http.ResponseWriter, r *http.Request, fn func(id int64) (*domain.Booking, error)) {
	id, ok := parseID(r)
	if !ok {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	booking, err := fn(id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, toBookingDTO(*booking))
}
