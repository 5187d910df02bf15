package chat

import "strings"

// Intent classifies a single user utterance. It is computed per turn and
// never persisted.
type Intent int

const (
	IntentGeneral Intent = iota
	IntentBooking
	IntentBookingEdit
	IntentGreeting
	IntentLookup
	IntentHelp
)

func (i Intent) String() string {
	switch i {
	case IntentBooking:
		return "booking"
	case IntentBookingEdit:
		return "booking_edit"
	case IntentGreeting:
		return "greeting"
	case IntentLookup:
		return "lookup"
	case IntentHelp:
		return "help"
	default:
		return "general"
	}
}

// Pattern tables are deliberately flat literal lists so the accepted
// vocabulary stays enumerable.
var (
	greetingTokens = []string{"hi", "hello", "hey", "good morning", "good afternoon", "good evening", "howdy"}

	helpPatterns = []string{"help", "what can you do", "how to use", "how does this work", "options", "menu"}

	lookupPatterns = []string{"my appointments", "my bookings", "check my", "find my", "lookup", "look up"}

	bookingPatterns = []string{
		"book", "schedule", "appointment", "reserve", "make an appointment",
		"i want to", "i need to", "can i get", "set up", "arrange",
		"see a doctor", "visit", "consultation", "checkup", "check-up",
	}
)

// Short utterances starting with a greeting token classify as greetings; the
// word-count cap keeps "hi, can I book an appointment" out of this bucket.
const greetingMaxWords = 3

// DetectIntent maps an utterance to an intent. An active booking flow always
// wins so mid-flow input can never be diverted by keyword overlap.
func DetectIntent(utterance string, flowActive bool) Intent {
	if flowActive {
		return IntentBooking
	}

	text := strings.ToLower(strings.TrimSpace(utterance))
	if text == "" {
		return IntentGeneral
	}

	if len(strings.Fields(text)) <= greetingMaxWords {
		for _, token := range greetingTokens {
			if strings.HasPrefix(text, token) {
				return IntentGreeting
			}
		}
	}

	for _, pattern := range helpPatterns {
		if strings.Contains(text, pattern) {
			return IntentHelp
		}
	}

	for _, pattern := range lookupPatterns {
		if strings.Contains(text, pattern) {
			return IntentLookup
		}
	}

	for _, pattern := range bookingPatterns {
		if strings.Contains(text, pattern) {
			return IntentBooking
		}
	}

	return IntentGeneral
}
