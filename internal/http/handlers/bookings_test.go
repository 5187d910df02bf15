package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medbookai/medbook/internal/store"
)

func TestListByEmail(t *testing.T) {
	repo := store.NewMemoryRepository()
	seedBooking(t, repo, "Dental Care", "2026-03-05")
	handler := NewBookingsHandler(repo, nil)

	req := httptest.NewRequest(http.MethodGet, "/bookings?email=John@Example.com", nil)
	rec := httptest.NewRecorder()
	handler.ListByEmail(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Email    string       `json:"email"`
		Bookings []bookingRow `json:"bookings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "john@example.com", resp.Email)
	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, "Dental Care", resp.Bookings[0].BookingType)
	assert.Equal(t, "14:00", resp.Bookings[0].Time)
}

func TestListByEmailValidation(t *testing.T) {
	handler := NewBookingsHandler(store.NewMemoryRepository(), nil)

	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	rec := httptest.NewRecorder()
	handler.ListByEmail(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/bookings?email=not-an-email", nil)
	rec = httptest.NewRecorder()
	handler.ListByEmail(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListByEmailNoBookings(t *testing.T) {
	handler := NewBookingsHandler(store.NewMemoryRepository(), nil)

	req := httptest.NewRequest(http.MethodGet, "/bookings?email=jane@example.com", nil)
	rec := httptest.NewRecorder()
	handler.ListByEmail(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Bookings []bookingRow `json:"bookings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Bookings)
}
