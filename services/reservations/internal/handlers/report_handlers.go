package handlers

import (
	"net/http"

	"github.com/diagnosis/guestroom-reservations/internal/http/response"
)

// Analytics serves the dashboard for the month containing ?as_of (default today).
func (h *Handlers) Analytics(w http.ResponseWriter, r *http.Request) {
	asOf, err := parseDate(r, "as_of", h.svc.Today())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	m, err := h.svc.ComputeMetrics(r.Context(), asOf)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, toMetricsDTO(*m))
}

func (h *Handlers) Activity(w http.ResponseWriter, r *http.Request) {
	day, err := parseDate(r, "date", h.svc.Today())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	activity, err := h.svc.TodayActivity(r.Context(), day)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, toActivityDTO(*activity))
}

func (h *Handlers) SendReminders(w http.ResponseWriter, r *http.Request) {
	day, err := parseDate(r, "date", h.svc.Today())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	sent, err := h.svc.SendCheckInReminders(r.Context(), day)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusAccepted, map[string]any{
		"date":       date(day),
		"dispatched": sent,
	})
}
