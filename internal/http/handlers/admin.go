package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/medbookai/medbook/internal/rag"
	"github.com/medbookai/medbook/internal/store"
	"github.com/medbookai/medbook/pkg/logging"
)

// KnowledgeStore accepts clinic documents for retrieval.
type KnowledgeStore interface {
	AddDocuments(ctx context.Context, docs []rag.Document) error
	Len() int
}

// AdminHandler serves the operator endpoints behind admin auth.
type AdminHandler struct {
	repo      store.Repository
	knowledge KnowledgeStore
	logger    *logging.Logger
}

// NewAdminHandler creates the admin handler. knowledge may be nil when
// retrieval is disabled.
func NewAdminHandler(repo store.Repository, knowledge KnowledgeStore, logger *logging.Logger) *AdminHandler {
	if repo == nil {
		panic("handlers: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminHandler{repo: repo, knowledge: knowledge, logger: logger}
}

type adminBookingRow struct {
	ID            string `json:"id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	BookingType   string `json:"booking_type"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Status        string `json:"status"`
	Notes         string `json:"notes,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// ListBookings lists and filters bookings.
// GET /admin/bookings?date_from=&date_to=&status=&q=&limit=&offset=
func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.SearchFilter{
		DateFrom: strings.TrimSpace(q.Get("date_from")),
		DateTo:   strings.TrimSpace(q.Get("date_to")),
		Term:     strings.TrimSpace(q.Get("q")),
		Limit:    intParam(q.Get("limit")),
		Offset:   intParam(q.Get("offset")),
	}
	if status := strings.TrimSpace(q.Get("status")); status != "" {
		if !store.ValidStatus(store.BookingStatus(status)) {
			jsonError(w, "invalid status filter", http.StatusBadRequest)
			return
		}
		filter.Status = store.BookingStatus(status)
	}

	bookings, err := h.repo.SearchBookings(r.Context(), filter)
	if err != nil {
		h.logger.Error("admin booking search failed", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	rows := make([]adminBookingRow, 0, len(bookings))
	for _, b := range bookings {
		rows = append(rows, adminBookingRow{
			ID:            b.ID,
			CustomerName:  b.CustomerName,
			CustomerEmail: b.CustomerEmail,
			BookingType:   b.BookingType,
			Date:          b.Date,
			Time:          b.TimeSlot,
			Status:        string(b.Status),
			Notes:         b.Notes,
			CreatedAt:     b.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"bookings": rows,
		"count":    len(rows),
	})
}

// UpdateBookingStatus changes one booking's status.
// PATCH /admin/bookings/{bookingID}/status
func (h *AdminHandler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "bookingID"))
	if id == "" {
		jsonError(w, "missing booking id", http.StatusBadRequest)
		return
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	status := store.BookingStatus(strings.TrimSpace(payload.Status))
	if !store.ValidStatus(status) {
		jsonError(w, "invalid status", http.StatusBadRequest)
		return
	}

	if err := h.repo.UpdateBookingStatus(r.Context(), id, status); err != nil {
		if errors.Is(err, store.ErrBookingNotFound) {
			jsonError(w, "booking not found", http.StatusNotFound)
			return
		}
		h.logger.Error("admin status update failed", "booking_id", id, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"id":     id,
		"status": string(status),
	})
}

// Stats reports booking counts grouped by status.
// GET /admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repo.BookingStats(r.Context())
	if err != nil {
		h.logger.Error("admin stats failed", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	byStatus := make(map[string]int, len(stats.ByStatus))
	for status, count := range stats.ByStatus {
		byStatus[string(status)] = count
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":     stats.Total,
		"by_status": byStatus,
	})
}

// IngestKnowledge adds clinic documents to the retrieval store.
// POST /admin/knowledge
func (h *AdminHandler) IngestKnowledge(w http.ResponseWriter, r *http.Request) {
	if h.knowledge == nil {
		jsonError(w, "knowledge store not configured", http.StatusServiceUnavailable)
		return
	}

	var payload struct {
		Documents []struct {
			Source  string `json:"source"`
			Content string `json:"content"`
		} `json:"documents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if len(payload.Documents) == 0 {
		jsonError(w, "documents are required", http.StatusBadRequest)
		return
	}

	docs := make([]rag.Document, 0, len(payload.Documents))
	for _, d := range payload.Documents {
		if strings.TrimSpace(d.Content) == "" {
			continue
		}
		source := strings.TrimSpace(d.Source)
		if source == "" {
			source = "admin-upload"
		}
		docs = append(docs, rag.Document{Source: source, Content: d.Content})
	}
	if len(docs) == 0 {
		jsonError(w, "documents are empty", http.StatusBadRequest)
		return
	}

	if err := h.knowledge.AddDocuments(r.Context(), docs); err != nil {
		h.logger.Error("knowledge ingest failed", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ingested": len(docs),
		"chunks":   h.knowledge.Len(),
	})
}

func intParam(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
