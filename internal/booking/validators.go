package booking

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Result is the tri-state outcome of a validator or parser: accepted with a
// canonical value, or rejected with a user-facing message. Rejections are
// expected input problems, never system faults.
type Result struct {
	OK      bool
	Value   string
	Message string
}

func accept(value string) Result {
	return Result{OK: true, Value: value}
}

func reject(format string, args ...any) Result {
	return Result{Message: fmt.Sprintf(format, args...)}
}

const maxEmailLength = 254

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	namePattern  = regexp.MustCompile(`^[a-zA-Z\s\-.']+$`)
	digitPattern = regexp.MustCompile(`\d`)
)

// BookingTypes is the fixed catalog of appointment types. Input matching a
// catalog entry (case-insensitive, substring in either direction) canonicalizes
// to that entry; anything else is accepted verbatim after sanitization.
var BookingTypes = []string{
	"general checkup",
	"specialist consultation",
	"follow-up visit",
	"vaccination",
	"lab tests",
	"dental care",
	"eye examination",
	"physical therapy",
	"mental health consultation",
	"pediatric care",
	"other",
}

// ValidateName sanitizes and checks a name, canonicalizing to title case.
func ValidateName(raw string) Result {
	if strings.TrimSpace(raw) == "" {
		return reject("Name cannot be empty.")
	}
	name := Sanitize(raw)
	if len(name) < 2 || len(name) > 100 {
		return reject("Name must be between 2 and 100 characters.")
	}
	if !namePattern.MatchString(name) {
		return reject("Name can only contain letters, spaces, hyphens, apostrophes, and periods.")
	}
	return accept(titleCase(name))
}

// ValidateEmail normalizes to lowercase and checks the local@domain.tld shape.
// No DNS or mailbox verification is performed.
func ValidateEmail(raw string) Result {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return reject("Email cannot be empty.")
	}
	if len(email) > maxEmailLength {
		return reject("Email address is too long.")
	}
	if !emailPattern.MatchString(email) {
		return reject("Please provide a valid email address (e.g., name@example.com).")
	}
	return accept(email)
}

// ValidatePhone strips all non-digit characters and accepts 10-15 digits.
// The canonical value is the bare digit string.
func ValidatePhone(raw string) Result {
	if strings.TrimSpace(raw) == "" {
		return reject("Phone number cannot be empty.")
	}
	digits := strings.Join(digitPattern.FindAllString(raw, -1), "")
	if len(digits) < 10 || len(digits) > 15 {
		return reject("Phone number must have between 10 and 15 digits.")
	}
	return accept(digits)
}

// ValidateBookingType matches input against the catalog, falling back to the
// sanitized input verbatim when nothing matches. The fallback is deliberate:
// the clinic accepts appointment types outside the standard catalog.
func ValidateBookingType(raw string) Result {
	cleaned := Sanitize(raw)
	if cleaned == "" {
		return reject("Appointment type cannot be empty.")
	}
	lowered := strings.ToLower(cleaned)
	for _, catalog := range BookingTypes {
		if lowered == catalog || strings.Contains(lowered, catalog) || strings.Contains(catalog, lowered) {
			return accept(titleCase(catalog))
		}
	}
	return accept(titleCase(cleaned))
}

// Validate dispatches to the validator for a field. Date and time route
// through the natural-language parsers.
func Validate(f Field, raw string) Result {
	switch f {
	case FieldName:
		return ValidateName(raw)
	case FieldEmail:
		return ValidateEmail(raw)
	case FieldPhone:
		return ValidatePhone(raw)
	case FieldBookingType:
		return ValidateBookingType(raw)
	case FieldDate:
		return ParseDate(raw)
	case FieldTime:
		return ParseTime(raw)
	default:
		return reject("Unknown field.")
	}
}

// titleCase uppercases each letter that follows a non-letter and lowercases
// the rest, so "o'brien-smith" becomes "O'Brien-Smith".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			b.WriteRune(r)
			prevLetter = false
		}
	}
	return b.String()
}
