package store

import "time"

// BookingStatus is the lifecycle status of a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

// ValidStatus reports whether s is a known booking status.
func ValidStatus(s BookingStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Customer is uniquely identified by normalized lowercase email.
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// Booking references exactly one customer. Date and TimeSlot carry the
// canonical formats (YYYY-MM-DD, 24-hour HH:MM) unchanged.
type Booking struct {
	ID          string        `json:"id"`
	CustomerID  string        `json:"customer_id"`
	BookingType string        `json:"booking_type"`
	Date        string        `json:"date"`
	TimeSlot    string        `json:"time"`
	Status      BookingStatus `json:"status"`
	Notes       string        `json:"notes,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`

	// Joined customer fields, populated by list/search queries.
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
}

// CreateBookingParams carries validated values into the repository.
type CreateBookingParams struct {
	CustomerID  string
	BookingType string
	Date        string
	TimeSlot    string
	Status      BookingStatus
	Notes       string
}

// SearchFilter narrows admin booking searches. Zero values mean "no filter".
type SearchFilter struct {
	DateFrom string
	DateTo   string
	Status   BookingStatus
	Term     string // matched against customer name, email, and booking type
	Limit    int
	Offset   int
}

// Stats summarizes bookings for the admin dashboard.
type Stats struct {
	Total    int                   `json:"total"`
	ByStatus map[BookingStatus]int `json:"by_status"`
}
