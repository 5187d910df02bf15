package booking

// Field identifies one slot of the booking record. The declaration order is
// the collection order: the next prompt is always the first missing field in
// this sequence.
type Field int

const (
	FieldName Field = iota
	FieldEmail
	FieldPhone
	FieldBookingType
	FieldDate
	FieldTime
)

// FieldOrder is the canonical collection and prompt order.
var FieldOrder = [...]Field{FieldName, FieldEmail, FieldPhone, FieldBookingType, FieldDate, FieldTime}

func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldEmail:
		return "email"
	case FieldPhone:
		return "phone"
	case FieldBookingType:
		return "booking_type"
	case FieldDate:
		return "date"
	case FieldTime:
		return "time"
	default:
		return "unknown"
	}
}

// Label is the human-facing field name used in summaries and edit menus.
func (f Field) Label() string {
	switch f {
	case FieldName:
		return "Name"
	case FieldEmail:
		return "Email"
	case FieldPhone:
		return "Phone"
	case FieldBookingType:
		return "Appointment Type"
	case FieldDate:
		return "Date"
	case FieldTime:
		return "Time"
	default:
		return "Unknown"
	}
}

// Prompt is the question asked when collecting this field.
func (f Field) Prompt() string {
	switch f {
	case FieldName:
		return "What's your full name?"
	case FieldEmail:
		return "What's your email address?"
	case FieldPhone:
		return "What's your phone number?"
	case FieldBookingType:
		return "What type of appointment do you need? (e.g., General Checkup, Dental Care, Eye Examination)"
	case FieldDate:
		return "What date would you like? (e.g., 'tomorrow', 'next Monday', or '2025-12-25')"
	case FieldTime:
		return "What time works for you? (e.g., '2pm', '14:30', or 'afternoon')"
	default:
		return ""
	}
}

// editKeywords maps selection keywords to fields for the edit menu and the
// direct-jump shortcut from Confirming. Digits "1"-"6" are handled separately.
var editKeywords = []struct {
	keyword string
	field   Field
}{
	{"name", FieldName},
	{"email", FieldEmail},
	{"mail", FieldEmail},
	{"phone", FieldPhone},
	{"number", FieldPhone},
	{"mobile", FieldPhone},
	{"cell", FieldPhone},
	{"type", FieldBookingType},
	{"appointment", FieldBookingType},
	{"service", FieldBookingType},
	{"date", FieldDate},
	{"day", FieldDate},
	{"time", FieldTime},
	{"hour", FieldTime},
}
