package bookings

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vipride/booking-assistant/pkg/logging"
)

// Handler serves the admin booking endpoints.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// ListBookingsResponse is returned by GET /admin/bookings.
type ListBookingsResponse struct {
	Bookings []*Booking `json:"bookings"`
	Count    int        `json:"count"`
	Offset   int        `json:"offset"`
	Limit    int        `json:"limit"`
}

// ListBookings handles GET /admin/bookings.
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{Limit: 50, Status: r.URL.Query().Get("status")}
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 && limit <= 100 {
			filter.Limit = limit
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if offset, err := strconv.Atoi(v); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}

	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list bookings", "error", err)
		http.Error(w, "failed to list bookings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ListBookingsResponse{
		Bookings: list,
		Count:    len(list),
		Offset:   filter.Offset,
		Limit:    filter.Limit,
	})
}

// GetBooking handles GET /admin/bookings/{bookingID}.
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bookingID")
	if id == "" {
		http.Error(w, "missing booking id", http.StatusBadRequest)
		return
	}
	booking, err := h.service.Get(r.Context(), id)
	if errors.Is(err, ErrBookingNotFound) {
		http.Error(w, "booking not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to load booking", "booking_id", id, "error", err)
		http.Error(w, "failed to load booking", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
