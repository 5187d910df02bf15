package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository for tests and stub deployments.
type MemoryRepository struct {
	mu        sync.RWMutex
	customers map[string]*Customer // keyed by email
	bookings  map[string]*Booking

	// FailWith makes every operation fail; tests use it to simulate outages.
	FailWith error
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		customers: make(map[string]*Customer),
		bookings:  make(map[string]*Booking),
	}
}

func (r *MemoryRepository) GetCustomerByEmail(_ context.Context, email string) (*Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	c, ok := r.customers[strings.ToLower(email)]
	if !ok {
		return nil, ErrCustomerNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *MemoryRepository) CreateCustomer(_ context.Context, name, email, phone string) (*Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	email = strings.ToLower(email)
	if existing, ok := r.customers[email]; ok {
		copied := *existing
		return &copied, nil
	}
	c := &Customer{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		CreatedAt: time.Now().UTC(),
	}
	r.customers[email] = c
	copied := *c
	return &copied, nil
}

func (r *MemoryRepository) GetOrCreateCustomer(ctx context.Context, name, email, phone string) (*Customer, bool, error) {
	email = strings.ToLower(email)

	_, err := r.GetCustomerByEmail(ctx, email)
	if err == nil {
		r.mu.Lock()
		stored := r.customers[email]
		stored.Name = name
		stored.Phone = phone
		copied := *stored
		r.mu.Unlock()
		return &copied, false, nil
	}
	if err != ErrCustomerNotFound {
		return nil, false, err
	}

	created, err := r.CreateCustomer(ctx, name, email, phone)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

func (r *MemoryRepository) CreateBooking(_ context.Context, params CreateBookingParams) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	status := params.Status
	if status == "" {
		status = StatusConfirmed
	}
	b := &Booking{
		ID:          uuid.New().String(),
		CustomerID:  params.CustomerID,
		BookingType: params.BookingType,
		Date:        params.Date,
		TimeSlot:    params.TimeSlot,
		Status:      status,
		Notes:       params.Notes,
		CreatedAt:   time.Now().UTC(),
	}
	for _, c := range r.customers {
		if c.ID == params.CustomerID {
			b.CustomerName = c.Name
			b.CustomerEmail = c.Email
			break
		}
	}
	r.bookings[b.ID] = b
	copied := *b
	return &copied, nil
}

func (r *MemoryRepository) GetBookingByID(_ context.Context, id string) (*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *MemoryRepository) ListBookingsByEmail(_ context.Context, email string, limit int) ([]*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	if limit <= 0 {
		limit = 5
	}
	email = strings.ToLower(email)
	var out []*Booking
	for _, b := range r.bookings {
		if b.CustomerEmail == email {
			copied := *b
			out = append(out, &copied)
		}
	}
	sortBookingsByDateDesc(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) ListBookings(_ context.Context, limit, offset int) ([]*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	all := r.snapshot()
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *MemoryRepository) SearchBookings(_ context.Context, filter SearchFilter) ([]*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	term := strings.ToLower(filter.Term)
	var out []*Booking
	for _, b := range r.snapshot() {
		if filter.DateFrom != "" && b.Date < filter.DateFrom {
			continue
		}
		if filter.DateTo != "" && b.Date > filter.DateTo {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(b.CustomerName), term) &&
			!strings.Contains(strings.ToLower(b.CustomerEmail), term) &&
			!strings.Contains(strings.ToLower(b.BookingType), term) {
			continue
		}
		out = append(out, b)
	}
	sortBookingsByDateDesc(out)
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) UpdateBookingStatus(_ context.Context, id string, status BookingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	if !ValidStatus(status) {
		return fmt.Errorf("store: invalid booking status %q", status)
	}
	b, ok := r.bookings[id]
	if !ok {
		return ErrBookingNotFound
	}
	b.Status = status
	return nil
}

func (r *MemoryRepository) BookingStats(_ context.Context) (*Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	stats := &Stats{ByStatus: make(map[BookingStatus]int)}
	for _, b := range r.bookings {
		stats.ByStatus[b.Status]++
		stats.Total++
	}
	return stats, nil
}

func (r *MemoryRepository) snapshot() []*Booking {
	out := make([]*Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		copied := *b
		out = append(out, &copied)
	}
	return out
}

func sortBookingsByDateDesc(bookings []*Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		if bookings[i].Date != bookings[j].Date {
			return bookings[i].Date > bookings[j].Date
		}
		return bookings[i].TimeSlot > bookings[j].TimeSlot
	})
}
