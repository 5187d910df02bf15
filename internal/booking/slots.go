package booking

import (
	"fmt"
	"strings"
)

// Slots is the working booking record during a flow. Every set field holds a
// validator-approved canonical value, never raw user text.
type Slots struct {
	Name        string
	Email       string
	Phone       string
	BookingType string
	Date        string // YYYY-MM-DD
	Time        string // 24-hour HH:MM
	Notes       string
}

// Get returns the current value of a field.
func (s *Slots) Get(f Field) string {
	switch f {
	case FieldName:
		return s.Name
	case FieldEmail:
		return s.Email
	case FieldPhone:
		return s.Phone
	case FieldBookingType:
		return s.BookingType
	case FieldDate:
		return s.Date
	case FieldTime:
		return s.Time
	default:
		return ""
	}
}

// Set stores a canonical value for a field. Callers must only pass values
// produced by the field's validator.
func (s *Slots) Set(f Field, value string) {
	switch f {
	case FieldName:
		s.Name = value
	case FieldEmail:
		s.Email = value
	case FieldPhone:
		s.Phone = value
	case FieldBookingType:
		s.BookingType = value
	case FieldDate:
		s.Date = value
	case FieldTime:
		s.Time = value
	}
}

// Missing returns the unset fields in canonical collection order.
func (s *Slots) Missing() []Field {
	var missing []Field
	for _, f := range FieldOrder {
		if s.Get(f) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// Complete reports whether every required field is set.
func (s *Slots) Complete() bool {
	return len(s.Missing()) == 0
}

// FilledCount returns how many required fields are set.
func (s *Slots) FilledCount() int {
	return len(FieldOrder) - len(s.Missing())
}

// Summary renders the collected fields for the confirmation message.
func (s *Slots) Summary() string {
	var b strings.Builder
	for _, f := range FieldOrder {
		fmt.Fprintf(&b, "%s: %s\n", f.Label(), s.Get(f))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Reset clears every field.
func (s *Slots) Reset() {
	*s = Slots{}
}
