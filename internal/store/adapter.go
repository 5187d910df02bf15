package store

import (
	"context"

	"github.com/medbookai/medbook/internal/booking"
	"github.com/medbookai/medbook/internal/chat"
)

// FlowStore adapts Repository to the booking flow's Store interface.
type FlowStore struct {
	repo Repository
}

var _ booking.Store = (*FlowStore)(nil)

func NewFlowStore(repo Repository) *FlowStore {
	if repo == nil {
		panic("store: repository required")
	}
	return &FlowStore{repo: repo}
}

func (s *FlowStore) GetOrCreateCustomer(ctx context.Context, name, email, phone string) (booking.CustomerRecord, bool, error) {
	customer, wasNew, err := s.repo.GetOrCreateCustomer(ctx, name, email, phone)
	if err != nil {
		return booking.CustomerRecord{}, false, err
	}
	return booking.CustomerRecord{
		ID:    customer.ID,
		Name:  customer.Name,
		Email: customer.Email,
		Phone: customer.Phone,
	}, wasNew, nil
}

func (s *FlowStore) CreateBooking(ctx context.Context, req booking.CreateBookingRequest) (booking.BookingRecord, error) {
	created, err := s.repo.CreateBooking(ctx, CreateBookingParams{
		CustomerID:  req.CustomerID,
		BookingType: req.BookingType,
		Date:        req.Date,
		TimeSlot:    req.Time,
		Status:      StatusConfirmed,
		Notes:       req.Notes,
	})
	if err != nil {
		return booking.BookingRecord{}, err
	}
	return booking.BookingRecord{ID: created.ID, Status: string(created.Status)}, nil
}

// BookingDirectory adapts Repository to the chat service's Directory
// interface for the lookup intent.
type BookingDirectory struct {
	repo Repository
}

var _ chat.Directory = (*BookingDirectory)(nil)

func NewBookingDirectory(repo Repository) *BookingDirectory {
	if repo == nil {
		panic("store: repository required")
	}
	return &BookingDirectory{repo: repo}
}

func (d *BookingDirectory) ListRecentByEmail(ctx context.Context, email string, limit int) ([]chat.BookingSummary, error) {
	bookings, err := d.repo.ListBookingsByEmail(ctx, email, limit)
	if err != nil {
		return nil, err
	}
	out := make([]chat.BookingSummary, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, chat.BookingSummary{
			ID:          b.ID,
			BookingType: b.BookingType,
			Date:        b.Date,
			Time:        b.TimeSlot,
			Status:      string(b.Status),
		})
	}
	return out, nil
}
