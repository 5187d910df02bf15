package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medbookai/medbook/internal/rag"
	"github.com/medbookai/medbook/internal/store"
)

type fakeKnowledge struct {
	docs []rag.Document
	err  error
}

func (f *fakeKnowledge) AddDocuments(_ context.Context, docs []rag.Document) error {
	if f.err != nil {
		return f.err
	}
	f.docs = append(f.docs, docs...)
	return nil
}

func (f *fakeKnowledge) Len() int { return len(f.docs) }

func newAdminTestServer(t *testing.T, knowledge KnowledgeStore) (*chi.Mux, *store.MemoryRepository) {
	t.Helper()
	repo := store.NewMemoryRepository()
	handler := NewAdminHandler(repo, knowledge, nil)

	r := chi.NewRouter()
	r.Get("/admin/bookings", handler.ListBookings)
	r.Patch("/admin/bookings/{bookingID}/status", handler.UpdateBookingStatus)
	r.Get("/admin/stats", handler.Stats)
	r.Post("/admin/knowledge", handler.IngestKnowledge)
	return r, repo
}

func seedBooking(t *testing.T, repo *store.MemoryRepository, bookingType, date string) *store.Booking {
	t.Helper()
	ctx := context.Background()
	customer, _, err := repo.GetOrCreateCustomer(ctx, "John Smith", "john@example.com", "5551234567")
	require.NoError(t, err)
	b, err := repo.CreateBooking(ctx, store.CreateBookingParams{
		CustomerID:  customer.ID,
		BookingType: bookingType,
		Date:        date,
		TimeSlot:    "14:00",
	})
	require.NoError(t, err)
	return b
}

func TestAdminListBookings(t *testing.T) {
	r, repo := newAdminTestServer(t, nil)
	seedBooking(t, repo, "Dental Care", "2026-03-05")
	seedBooking(t, repo, "Eye Exam", "2026-04-01")

	req := httptest.NewRequest(http.MethodGet, "/admin/bookings?q=dental", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Bookings []adminBookingRow `json:"bookings"`
		Count    int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "Dental Care", resp.Bookings[0].BookingType)
	assert.Equal(t, "john@example.com", resp.Bookings[0].CustomerEmail)
}

func TestAdminListBookingsRejectsBadStatus(t *testing.T) {
	r, _ := newAdminTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/bookings?status=scheduled", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminUpdateBookingStatus(t *testing.T) {
	r, repo := newAdminTestServer(t, nil)
	b := seedBooking(t, repo, "Dental Care", "2026-03-05")

	req := httptest.NewRequest(http.MethodPatch, "/admin/bookings/"+b.ID+"/status", strings.NewReader(`{"status":"cancelled"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	updated, err := repo.GetBookingByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusCancelled, updated.Status)
}

func TestAdminUpdateBookingStatusErrors(t *testing.T) {
	r, repo := newAdminTestServer(t, nil)
	b := seedBooking(t, repo, "Dental Care", "2026-03-05")

	req := httptest.NewRequest(http.MethodPatch, "/admin/bookings/missing/status", strings.NewReader(`{"status":"cancelled"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodPatch, "/admin/bookings/"+b.ID+"/status", strings.NewReader(`{"status":"bogus"}`))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminStats(t *testing.T) {
	r, repo := newAdminTestServer(t, nil)
	seedBooking(t, repo, "Dental Care", "2026-03-05")
	seedBooking(t, repo, "Eye Exam", "2026-04-01")

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Total    int            `json:"total"`
		ByStatus map[string]int `json:"by_status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 2, resp.ByStatus["confirmed"])
}

func TestAdminIngestKnowledge(t *testing.T) {
	knowledge := &fakeKnowledge{}
	r, _ := newAdminTestServer(t, knowledge)

	body := `{"documents":[{"source":"faq.md","content":"We open at 8 AM."},{"source":"","content":"Parking is free."}]}`
	req := httptest.NewRequest(http.MethodPost, "/admin/knowledge", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, knowledge.docs, 2)
	assert.Equal(t, "faq.md", knowledge.docs[0].Source)
	assert.Equal(t, "admin-upload", knowledge.docs[1].Source)
}

func TestAdminIngestKnowledgeValidation(t *testing.T) {
	r, _ := newAdminTestServer(t, &fakeKnowledge{})

	req := httptest.NewRequest(http.MethodPost, "/admin/knowledge", strings.NewReader(`{"documents":[]}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	r, _ = newAdminTestServer(t, nil)
	req = httptest.NewRequest(http.MethodPost, "/admin/knowledge", strings.NewReader(`{"documents":[{"content":"x"}]}`))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
