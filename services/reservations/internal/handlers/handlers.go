package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/diagnosis/guestroom-reservations/internal/http/response"
	"github.com/diagnosis/guestroom-reservations/pkg/auth"
	"github.com/diagnosis/guestroom-reservations/pkg/logger"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/domain"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/locking"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/service"
)

type claimsKey struct{}

type Handlers struct {
	svc         service.ReservationService
	jwtSecret   string
	intakeLimit func(http.Handler) http.Handler
}

func New(svc service.ReservationService, jwtSecret string) *Handlers {
	return &Handlers{svc: svc, jwtSecret: jwtSecret}
}

// LimitIntake throttles POST /v1/bookings with m.
func (h *Handlers) LimitIntake(m func(http.Handler) http.Handler) *Handlers {
	h.intakeLimit = m
	return h
}

// Routes mounts the /v1 API.
func (h *Handlers) Routes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Route("/rooms", func(r chi.Router) {
			r.Get("/", h.ListRooms)
			r.Get("/available", h.AvailableRooms)
			r.Get("/{number}/quote", h.QuoteRoom)
			r.With(h.RequireJWT(auth.RoleStaff)).Patch("/{number}/status", h.SetRoomStatus)
		})

		r.Route("/bookings", func(r chi.Router) {
			intake := r.With(h.OptionalJWT)
			if h.intakeLimit != nil {
				intake = intake.With(h.intakeLimit)
			}
			intake.Post("/", h.CreateBooking)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireJWT(auth.RoleStaff))
				r.Get("/{id}", h.GetBooking)
				r.Post("/{id}/confirm", h.ConfirmBooking)
				r.Post("/{id}/check-in", h.CheckIn)
				r.Post("/{id}/check-out", h.CheckOut)
				r.Post("/{id}/cancel", h.CancelBooking)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(h.RequireJWT(auth.RoleStaff))
			r.Get("/analytics", h.Analytics)
			r.Get("/activity", h.Activity)
			r.Post("/activity/reminders", h.SendReminders)
		})
	})
}

// RequireJWT rejects requests without a valid bearer token carrying requiredRole.
func (h *Handlers) RequireJWT(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				response.Unauthorized(w, "Missing or invalid authorization header")
				return
			}

			claims, err := auth.Parse(token, h.jwtSecret)
			if err != nil {
				response.WriteError(w, http.StatusUnauthorized, "Invalid token", response.CodeInvalidToken)
				return
			}
			if !claims.Allows(requiredRole) {
				response.Forbidden(w, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// OptionalJWT attaches claims when a valid token is present and otherwise lets
// the request through anonymously.
func (h *Handlers) OptionalJWT(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, ok := bearerToken(r); ok {
			if claims, err := auth.Parse(token, h.jwtSecret); err == nil {
				r = r.WithContext(withClaims(r.Context(), claims))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

func withClaims(ctx context.Context, claims *auth.Claims) context.Context {
	ctx = context.WithValue(ctx, claimsKey{}, claims)
	return context.WithValue(ctx, logger.UserIDKey, claims.Sub)
}

func getClaims(r *http.Request) *auth.Claims {
	if claims, ok := r.Context().Value(claimsKey{}).(*auth.Claims); ok {
		return claims
	}
	return nil
}

// decodeJSON decodes an optional request body. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// parseDate reads a YYYY-MM-DD query parameter, falling back to def when absent.
func parseDate(r *http.Request, name string, def time.Time) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		if def.IsZero() {
			return time.Time{}, &domain.ValidationError{Field: name, Message: "is required"}
		}
		return def, nil
	}
	t, err := domain.ParseDay(raw)
	if err != nil {
		return time.Time{}, &domain.ValidationError{Field: name, Message: "must be a YYYY-MM-DD date"}
	}
	return t, nil
}

func parseStay(r *http.Request) (domain.DateRange, error) {
	in, err := parseDate(r, "check_in", time.Time{})
	if err != nil {
		return domain.DateRange{}, err
	}
	out, err := parseDate(r, "check_out", time.Time{})
	if err != nil {
		return domain.DateRange{}, err
	}
	return domain.NewDateRange(in, out)
}

// writeServiceError maps domain errors onto HTTP responses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, locking.ErrNotAcquired) {
		response.WriteError(w, http.StatusServiceUnavailable, "Room is busy, retry shortly", response.CodeBusy)
		return
	}
	if !domain.IsRecoverable(err) {
		logger.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
		response.InternalError(w, "Internal server error")
		return
	}

	var (
		validation  *domain.ValidationError
		unavailable *domain.RoomUnavailableError
		transition  *domain.StateTransitionError
		balance     *domain.OutstandingBalanceError
	)

	switch {
	case errors.As(err, &validation):
		response.WriteErrorWithDetails(w, http.StatusBadRequest, validation.Error(), response.CodeInvalidInput,
			map[string]string{"field": validation.Field})
	case errors.Is(err, domain.ErrInvalidDateRange):
		response.WriteError(w, http.StatusBadRequest, err.Error(), response.CodeInvalidDateRange)
	case errors.Is(err, domain.ErrRoomNotFound):
		response.WriteError(w, http.StatusNotFound, err.Error(), response.CodeRoomNotFound)
	case errors.Is(err, domain.ErrBookingNotFound):
		response.WriteError(w, http.StatusNotFound, err.Error(), response.CodeBookingNotFound)
	case errors.As(err, &unavailable):
		details := map[string]any{"room_number": unavailable.Number}
		if unavailable.ConflictingID != 0 {
			details["conflicting_booking_id"] = unavailable.ConflictingID
		}
		response.WriteErrorWithDetails(w, http.StatusConflict, unavailable.Error(), response.CodeRoomUnavailable, details)
	case errors.Is(err, domain.ErrRoomUnavailable):
		response.WriteError(w, http.StatusConflict, err.Error(), response.CodeRoomUnavailable)
	case errors.As(err, &transition):
		response.WriteErrorWithDetails(w, http.StatusConflict, transition.Error(), response.CodeInvalidState,
			map[string]string{"status": string(transition.Actual)})
	case errors.Is(err, domain.ErrInvalidStateTransition):
		response.WriteError(w, http.StatusConflict, err.Error(), response.CodeInvalidState)
	case errors.As(err, &balance):
		response.WriteErrorWithDetails(w, http.StatusConflict, balance.Error(), response.CodeOutstandingBalance,
			map[string]float64{"balance": balance.Balance})
	case errors.Is(err, domain.ErrOutstandingBalance):
		response.WriteError(w, http.StatusConflict, err.Error(), response.CodeOutstandingBalance)
	default:
		response.BadRequest(w, err.Error())
	}
}
