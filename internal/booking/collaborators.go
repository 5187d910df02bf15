package booking

import "context"

// CustomerRecord is the persisted customer as seen by the flow.
type CustomerRecord struct {
	ID    string
	Name  string
	Email string
	Phone string
}

// BookingRecord is the persisted booking as seen by the flow.
type BookingRecord struct {
	ID     string
	Status string
}

// CreateBookingRequest carries canonical slot values to the record store.
type CreateBookingRequest struct {
	CustomerID  string
	BookingType string
	Date        string // YYYY-MM-DD
	Time        string // 24-hour HH:MM
	Notes       string
}

// Store is the persistence collaborator. Implementations must fail with an
// error on any backend problem rather than returning empty records.
type Store interface {
	// GetOrCreateCustomer looks a customer up by normalized email, creating
	// one if absent. The bool reports whether a new record was created.
	GetOrCreateCustomer(ctx context.Context, name, email, phone string) (CustomerRecord, bool, error)

	// CreateBooking persists a booking for an existing customer.
	CreateBooking(ctx context.Context, req CreateBookingRequest) (BookingRecord, error)
}

// Confirmation carries everything needed to render a confirmation email.
type Confirmation struct {
	Email       string
	Name        string
	BookingID   string
	BookingType string
	Date        string
	Time        string
	Notes       string
}

// Notifier is the notification collaborator. Delivery failures are returned
// as errors and treated as non-fatal by the flow.
type Notifier interface {
	SendBookingConfirmation(ctx context.Context, msg Confirmation) error
}

// StubStore is an in-memory Store for tests and stub deployments.
type StubStore struct {
	Customers []CustomerRecord
	Bookings  []CreateBookingRequest
	FailWith  error
	nextID    int
}

var _ Store = (*StubStore)(nil)

func (s *StubStore) GetOrCreateCustomer(_ context.Context, name, email, phone string) (CustomerRecord, bool, error) {
	if s.FailWith != nil {
		return CustomerRecord{}, false, s.FailWith
	}
	for _, c := range s.Customers {
		if c.Email == email {
			return c, false, nil
		}
	}
	s.nextID++
	customer := CustomerRecord{ID: stubID("cust", s.nextID), Name: name, Email: email, Phone: phone}
	s.Customers = append(s.Customers, customer)
	return customer, true, nil
}

func (s *StubStore) CreateBooking(_ context.Context, req CreateBookingRequest) (BookingRecord, error) {
	if s.FailWith != nil {
		return BookingRecord{}, s.FailWith
	}
	s.nextID++
	s.Bookings = append(s.Bookings, req)
	return BookingRecord{ID: stubID("bk", s.nextID), Status: "confirmed"}, nil
}

func stubID(prefix string, n int) string {
	return prefix + "-" + twoDigit(n)
}

// StubNotifier records confirmations instead of sending them.
type StubNotifier struct {
	Sent     []Confirmation
	FailWith error
}

var _ Notifier = (*StubNotifier)(nil)

func (n *StubNotifier) SendBookingConfirmation(_ context.Context, msg Confirmation) error {
	if n.FailWith != nil {
		return n.FailWith
	}
	n.Sent = append(n.Sent, msg)
	return nil
}
