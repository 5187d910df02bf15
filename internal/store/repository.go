package store

import (
	"context"
	"errors"
)

var (
	ErrCustomerNotFound = errors.New("store: customer not found")
	ErrBookingNotFound  = errors.New("store: booking not found")
)

// Repository is the record store consumed by the booking flow, the lookup
// intent, and the admin endpoints. Implementations must return errors on
// backend failures, never silently empty data.
type Repository interface {
	GetCustomerByEmail(ctx context.Context, email string) (*Customer, error)
	CreateCustomer(ctx context.Context, name, email, phone string) (*Customer, error)

	// GetOrCreateCustomer refreshes name/phone on an existing customer and
	// reports whether a new record was created.
	GetOrCreateCustomer(ctx context.Context, name, email, phone string) (*Customer, bool, error)

	CreateBooking(ctx context.Context, params CreateBookingParams) (*Booking, error)
	GetBookingByID(ctx context.Context, id string) (*Booking, error)
	ListBookingsByEmail(ctx context.Context, email string, limit int) ([]*Booking, error)
	ListBookings(ctx context.Context, limit, offset int) ([]*Booking, error)
	SearchBookings(ctx context.Context, filter SearchFilter) ([]*Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, status BookingStatus) error
	BookingStats(ctx context.Context) (*Stats, error)
}
