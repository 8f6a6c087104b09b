package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/diagnosis/guestroom-reservations/internal/http/response"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/domain"
)

// ListRooms returns the full inventory in display order.
func (h *Handlers) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.svc.ListRooms(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]roomDTO, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, toRoomDTO(room))
	}
	response.JSON(w, http.StatusOK, out)
}

// AvailableRooms lists rooms free for ?check_in&check_out with their price.
func (h *Handlers) AvailableRooms(w http.ResponseWriter, r *http.Request) {
	stay, err := parseStay(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	quotes, err := h.svc.FindAvailableRooms(r.Context(), stay)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]quoteDTO, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, toQuoteDTO(q, stay))
	}
	response.JSON(w, http.StatusOK, out)
}

func (h *Handlers) QuoteRoom(w http.ResponseWriter, r *http.Request) {
	stay, err := parseStay(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	q, err := h.svc.Quote(r.Context(), chi.URLParam(r, "number"), stay)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, toQuoteDTO(*q, stay))
}

type roomStatusReq struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// SetRoomStatus handles housekeeping and maintenance updates.
func (h *Handlers) SetRoomStatus(w http.ResponseWriter, r *http.Request) {
	var req roomStatusReq
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	status, ok := domain.ParseRoomStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if !ok {
		response.BadRequest(w, "Invalid room status")
		return
	}

	room, err := h.svc.SetRoomStatus(r.Context(), chi.URLParam(r, "number"), status, req.Notes)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, toRoomDTO(*room))
}
