package handlers

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/medbookai/medbook/internal/store"
	"github.com/medbookai/medbook/pkg/logging"
)

var lookupEmailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// BookingsHandler serves the public booking lookup endpoint.
type BookingsHandler struct {
	repo   store.Repository
	logger *logging.Logger
}

// NewBookingsHandler creates the bookings handler.
func NewBookingsHandler(repo store.Repository, logger *logging.Logger) *BookingsHandler {
	if repo == nil {
		panic("handlers: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingsHandler{repo: repo, logger: logger}
}

type bookingRow struct {
	ID          string `json:"id"`
	BookingType string `json:"booking_type"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Status      string `json:"status"`
}

// ListByEmail returns a customer's recent bookings.
// GET /bookings?email=
func (h *BookingsHandler) ListByEmail(w http.ResponseWriter, r *http.Request) {
	email := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("email")))
	if email == "" {
		jsonError(w, "email query parameter is required", http.StatusBadRequest)
		return
	}
	if !lookupEmailPattern.MatchString(email) {
		jsonError(w, "invalid email address", http.StatusBadRequest)
		return
	}

	bookings, err := h.repo.ListBookingsByEmail(r.Context(), email, 10)
	if err != nil {
		h.logger.Error("booking lookup failed", "email", email, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	rows := make([]bookingRow, 0, len(bookings))
	for _, b := range bookings {
		rows = append(rows, bookingRow{
			ID:          b.ID,
			BookingType: b.BookingType,
			Date:        b.Date,
			Time:        b.TimeSlot,
			Status:      string(b.Status),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"email":    email,
		"bookings": rows,
	})
}
