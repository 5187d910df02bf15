package booking

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/medbookai/medbook/pkg/logging"
)

// Confirmation response classes, matched case-insensitively after trimming.
var (
	affirmativeWords = []string{"yes", "y", "confirm", "confirmed", "correct", "ok", "okay", "yep", "sure"}
	cancelWords      = []string{"cancel", "nevermind", "never mind", "abort", "stop"}
	editWords        = []string{"no", "n", "edit", "change", "modify", "wrong"}
)

// Flow is the session-scoped slot-filling state machine. One instance per
// conversation session; turns for a session must be processed sequentially.
type Flow struct {
	state        State
	slots        Slots
	editField    Field
	editSelected bool

	store    Store
	notifier Notifier
	logger   *logging.Logger
	now      func() time.Time

	completions int
}

// FlowOption customizes a Flow.
type FlowOption func(*Flow)

// WithClock overrides the flow's clock; tests use this to pin dates.
func WithClock(now func() time.Time) FlowOption {
	return func(f *Flow) { f.now = now }
}

// NewFlow builds an idle flow bound to its collaborators.
func NewFlow(store Store, notifier Notifier, logger *logging.Logger, opts ...FlowOption) *Flow {
	if store == nil {
		panic("booking: store cannot be nil")
	}
	if notifier == nil {
		panic("booking: notifier cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	f := &Flow{
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// State returns the current flow state.
func (f *Flow) State() State { return f.state }

// Slots returns a copy of the working record.
func (f *Flow) Slots() Slots { return f.slots }

// IsActive reports whether a booking flow is in progress.
func (f *Flow) IsActive() bool {
	return f.state != StateIdle
}

// Completions returns how many bookings this flow has saved.
func (f *Flow) Completions() int { return f.completions }

// Reset discards all collected data and returns to idle.
func (f *Flow) Reset() {
	f.state = StateIdle
	f.slots.Reset()
	f.editSelected = false
}

// Start resets the slots, enters Collecting, and returns the first prompt.
func (f *Flow) Start() string {
	f.slots.Reset()
	f.state = StateCollecting
	f.editSelected = false
	return "Great, let's book your appointment! " + FieldOrder[0].Prompt()
}

// HandleInput processes one user turn and returns the conversational
// response. Exactly one state transition happens per call.
func (f *Flow) HandleInput(ctx context.Context, input string) string {
	switch f.state {
	case StateIdle:
		return f.Start()
	case StateCollecting:
		return f.handleCollecting(input)
	case StateConfirming:
		return f.handleConfirming(ctx, input)
	case StateEditing:
		return f.handleEditing(input)
	case StateCompleted:
		// Transient: fold into idle and treat the turn as a fresh start.
		f.Reset()
		return f.Start()
	default:
		f.Reset()
		return f.Start()
	}
}

func (f *Flow) handleCollecting(input string) string {
	missing := f.slots.Missing()
	if len(missing) == 0 {
		f.state = StateConfirming
		return f.confirmationMessage()
	}
	field := missing[0]

	result := f.validate(field, input)
	if !result.OK {
		return result.Message + " " + field.Prompt()
	}
	f.slots.Set(field, result.Value)

	if f.slots.Complete() {
		f.state = StateConfirming
		return f.confirmationMessage()
	}
	next := f.slots.Missing()[0]
	return "Got it! " + next.Prompt()
}

func (f *Flow) handleConfirming(ctx context.Context, input string) string {
	response := strings.ToLower(strings.TrimSpace(input))

	if matchesAny(response, affirmativeWords) {
		return f.save(ctx)
	}
	if matchesAny(response, cancelWords) {
		f.Reset()
		return "No problem, I've cancelled this booking. Let me know if you'd like to start again."
	}
	if matchesAny(response, editWords) {
		f.state = StateEditing
		f.editSelected = false
		return f.editMenu()
	}

	// Direct jump: "change the date" selects the date field without the menu.
	if field, ok := findFieldKeyword(response); ok {
		f.state = StateEditing
		f.editField = field
		f.editSelected = true
		return fmt.Sprintf("Current %s: %s. What should it be instead?", strings.ToLower(field.Label()), f.slots.Get(field))
	}

	return "Please reply 'yes' to confirm, 'edit' to change a field, or 'cancel' to abort."
}

func (f *Flow) handleEditing(input string) string {
	if !f.editSelected {
		field, ok := selectEditField(input)
		if !ok {
			return "Which field would you like to change? Reply with a number (1-6) or the field name."
		}
		f.editField = field
		f.editSelected = true
		return fmt.Sprintf("Current %s: %s. What should it be instead?", strings.ToLower(field.Label()), f.slots.Get(field))
	}

	result := f.validate(f.editField, input)
	if !result.OK {
		return result.Message + " " + f.editField.Prompt()
	}
	f.slots.Set(f.editField, result.Value)
	f.editSelected = false
	f.state = StateConfirming
	return "Updated! " + f.confirmationMessage()
}

// save persists the booking and sends the confirmation email. Persistence
// failure keeps the flow in Confirming with all slots intact; notification
// failure only softens the success message.
func (f *Flow) save(ctx context.Context) string {
	customer, wasNew, err := f.store.GetOrCreateCustomer(ctx, f.slots.Name, f.slots.Email, f.slots.Phone)
	if err != nil {
		perr := &PersistenceError{Op: "get or create customer", Err: err}
		f.logger.Error("booking save failed", "op", perr.Op, "error", err)
		return f.persistenceFailureMessage(err)
	}

	record, err := f.store.CreateBooking(ctx, CreateBookingRequest{
		CustomerID:  customer.ID,
		BookingType: f.slots.BookingType,
		Date:        f.slots.Date,
		Time:        f.slots.Time,
		Notes:       f.slots.Notes,
	})
	if err != nil {
		perr := &PersistenceError{Op: "create booking", Err: err}
		f.logger.Error("booking save failed", "op", perr.Op, "error", err)
		return f.persistenceFailureMessage(err)
	}

	f.logger.Info("booking saved",
		"booking_id", record.ID,
		"customer_id", customer.ID,
		"new_customer", wasNew,
		"type", f.slots.BookingType,
		"date", f.slots.Date,
		"time", f.slots.Time,
	)

	emailed := true
	if err := f.notifier.SendBookingConfirmation(ctx, Confirmation{
		Email:       f.slots.Email,
		Name:        f.slots.Name,
		BookingID:   record.ID,
		BookingType: f.slots.BookingType,
		Date:        f.slots.Date,
		Time:        f.slots.Time,
		Notes:       f.slots.Notes,
	}); err != nil {
		nerr := &NotificationError{Err: err}
		f.logger.Warn("confirmation email failed", "booking_id", record.ID, "error", nerr)
		emailed = false
	}

	email := f.slots.Email
	f.completions++
	f.state = StateCompleted
	f.Reset()

	if !emailed {
		return fmt.Sprintf("Your appointment is confirmed! Booking ID: %s. We couldn't send the confirmation email, so please note your booking ID.", record.ID)
	}
	return fmt.Sprintf("Your appointment is confirmed! Booking ID: %s. A confirmation email is on its way to %s.", record.ID, email)
}

func (f *Flow) persistenceFailureMessage(err error) string {
	return fmt.Sprintf("Sorry, there was a problem saving your booking: %v. Would you like to try again? (yes/no)", err)
}

func (f *Flow) validate(field Field, input string) Result {
	switch field {
	case FieldDate:
		return ParseDateAt(input, f.now())
	case FieldTime:
		return ParseTime(input)
	default:
		return Validate(field, input)
	}
}

func (f *Flow) confirmationMessage() string {
	return "Please confirm your appointment details:\n\n" + f.slots.Summary() +
		"\n\nReply 'yes' to confirm, 'edit' to change a field, or 'cancel' to abort."
}

func (f *Flow) editMenu() string {
	var b strings.Builder
	b.WriteString("Which field would you like to change?\n")
	for i, field := range FieldOrder {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, field.Label(), f.slots.Get(field))
	}
	b.WriteString("Reply with a number or the field name.")
	return b.String()
}

// StatusSummary describes the flow state for UI display.
func (f *Flow) StatusSummary() string {
	switch f.state {
	case StateIdle:
		return "No booking in progress."
	case StateCollecting:
		return fmt.Sprintf("Collecting booking details (%d of %d fields complete).", f.slots.FilledCount(), len(FieldOrder))
	case StateConfirming:
		return "Waiting for you to confirm the booking details."
	case StateEditing:
		return "Editing booking details."
	case StateCompleted:
		return "Booking complete."
	default:
		return "No booking in progress."
	}
}

// matchesAny reports whether response equals one of the keywords.
func matchesAny(response string, keywords []string) bool {
	for _, kw := range keywords {
		if response == kw {
			return true
		}
	}
	return false
}

// findFieldKeyword scans a free-form response for a field-selection keyword.
func findFieldKeyword(response string) (Field, bool) {
	for _, entry := range editKeywords {
		if strings.Contains(response, entry.keyword) {
			return entry.field, true
		}
	}
	return 0, false
}

// selectEditField resolves menu input: digits "1"-"6" or field keywords.
func selectEditField(input string) (Field, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(input))
	if n, err := strconv.Atoi(trimmed); err == nil && n >= 1 && n <= len(FieldOrder) {
		return FieldOrder[n-1], true
	}
	return findFieldKeyword(trimmed)
}
