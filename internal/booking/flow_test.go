package booking

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medbookai/medbook/pkg/logging"
)

func newTestFlow(store Store, notifier Notifier) *Flow {
	return NewFlow(store, notifier, logging.Default(), WithClock(func() time.Time { return testNow }))
}

// run walks the flow through a sequence of inputs, returning the last reply.
func run(t *testing.T, f *Flow, ctx context.Context, inputs ...string) string {
	t.Helper()
	var reply string
	for _, input := range inputs {
		reply = f.HandleInput(ctx, input)
	}
	return reply
}

var happyPathInputs = []string{
	"john smith",
	"john@example.com",
	"(555) 123-4567",
	"dental care",
	"tomorrow",
	"2pm",
}

func TestFlowHappyPath(t *testing.T) {
	ctx := context.Background()
	store := &StubStore{}
	notifier := &StubNotifier{}
	f := newTestFlow(store, notifier)

	reply := f.Start()
	assert.Equal(t, StateCollecting, f.State())
	assert.Contains(t, reply, "full name")

	reply = run(t, f, ctx, happyPathInputs...)
	require.Equal(t, StateConfirming, f.State())
	for _, want := range []string{"John Smith", "john@example.com", "5551234567", "Dental Care", "2026-03-05", "14:00"} {
		assert.Contains(t, reply, want)
	}

	reply = f.HandleInput(ctx, "yes")
	assert.Equal(t, StateIdle, f.State())
	assert.False(t, f.IsActive())
	assert.Contains(t, reply, "confirmed")
	assert.Contains(t, reply, "bk-")

	require.Len(t, store.Bookings, 1)
	assert.Equal(t, "Dental Care", store.Bookings[0].BookingType)
	assert.Equal(t, "2026-03-05", store.Bookings[0].Date)
	assert.Equal(t, "14:00", store.Bookings[0].Time)

	require.Len(t, notifier.Sent, 1)
	assert.Equal(t, "john@example.com", notifier.Sent[0].Email)
	assert.Equal(t, 1, f.Completions())

	// Slots are discarded after the save.
	assert.Equal(t, Slots{}, f.Slots())
}

func TestFlowInvalidInputDoesNotAdvance(t *testing.T) {
	ctx := context.Background()
	f := newTestFlow(&StubStore{}, &StubNotifier{})
	f.Start()

	reply := f.HandleInput(ctx, "j")
	assert.Equal(t, StateCollecting, f.State())
	assert.Contains(t, reply, "between 2 and 100 characters")
	assert.Contains(t, reply, "full name")
	assert.Empty(t, f.Slots().Name)

	reply = f.HandleInput(ctx, "john smith")
	assert.Contains(t, reply, "email")
	assert.Equal(t, "John Smith", f.Slots().Name)
}

func TestFlowCancelFromConfirming(t *testing.T) {
	ctx := context.Background()
	store := &StubStore{}
	f := newTestFlow(store, &StubNotifier{})
	f.Start()
	run(t, f, ctx, happyPathInputs...)
	require.Equal(t, StateConfirming, f.State())

	reply := f.HandleInput(ctx, "cancel")
	assert.Equal(t, StateIdle, f.State())
	assert.Contains(t, reply, "cancelled")
	assert.Empty(t, store.Bookings)
	assert.Equal(t, Slots{}, f.Slots())
}

func TestFlowEditMenu(t *testing.T) {
	ctx := context.Background()
	f := newTestFlow(&StubStore{}, &StubNotifier{})
	f.Start()
	run(t, f, ctx, happyPathInputs...)

	reply := f.HandleInput(ctx, "no")
	assert.Equal(t, StateEditing, f.State())
	assert.Contains(t, reply, "1. Name")
	assert.Contains(t, reply, "6. Time")

	reply = f.HandleInput(ctx, "2")
	assert.Contains(t, reply, "john@example.com")

	reply = f.HandleInput(ctx, "jane@example.com")
	assert.Equal(t, StateConfirming, f.State())
	assert.Contains(t, reply, "jane@example.com")
	assert.Equal(t, "John Smith", f.Slots().Name)
}

func TestFlowDirectJumpEdit(t *testing.T) {
	ctx := context.Background()
	f := newTestFlow(&StubStore{}, &StubNotifier{})
	f.Start()
	run(t, f, ctx, happyPathInputs...)

	// "change the date" skips the numbered menu entirely.
	reply := f.HandleInput(ctx, "change the date")
	assert.Equal(t, StateEditing, f.State())
	assert.NotContains(t, reply, "1. Name")
	assert.Contains(t, reply, "2026-03-05")

	reply = f.HandleInput(ctx, "next friday")
	assert.Equal(t, StateConfirming, f.State())
	assert.Contains(t, reply, "2026-03-06")
	// Everything else is untouched.
	assert.Equal(t, "14:00", f.Slots().Time)
	assert.Equal(t, "John Smith", f.Slots().Name)
}

func TestFlowEditInvalidValueRetries(t *testing.T) {
	ctx := context.Background()
	f := newTestFlow(&StubStore{}, &StubNotifier{})
	f.Start()
	run(t, f, ctx, happyPathInputs...)

	f.HandleInput(ctx, "change the time")
	reply := f.HandleInput(ctx, "7am")
	assert.Equal(t, StateEditing, f.State())
	assert.Contains(t, reply, "8:00 AM")

	reply = f.HandleInput(ctx, "9am")
	assert.Equal(t, StateConfirming, f.State())
	assert.Contains(t, reply, "09:00")
}

func TestFlowUnclassifiedConfirmationInput(t *testing.T) {
	ctx := context.Background()
	f := newTestFlow(&StubStore{}, &StubNotifier{})
	f.Start()
	run(t, f, ctx, happyPathInputs...)

	reply := f.HandleInput(ctx, "hmm let me think")
	assert.Equal(t, StateConfirming, f.State())
	assert.Contains(t, reply, "'yes'")
	assert.Contains(t, reply, "'cancel'")
}

func TestFlowPersistenceFailureKeepsSlots(t *testing.T) {
	ctx := context.Background()
	store := &StubStore{FailWith: errors.New("connection refused")}
	f := newTestFlow(store, &StubNotifier{})
	f.Start()
	run(t, f, ctx, happyPathInputs...)

	reply := f.HandleInput(ctx, "yes")
	assert.Equal(t, StateConfirming, f.State())
	assert.Contains(t, reply, "problem saving")
	assert.Contains(t, reply, "connection refused")
	assert.Equal(t, "John Smith", f.Slots().Name)

	// Retry succeeds once the backend recovers.
	store.FailWith = nil
	reply = f.HandleInput(ctx, "yes")
	assert.Equal(t, StateIdle, f.State())
	assert.Contains(t, reply, "confirmed")
	require.Len(t, store.Bookings, 1)
}

func TestFlowEmailFailureStillConfirms(t *testing.T) {
	ctx := context.Background()
	store := &StubStore{}
	notifier := &StubNotifier{FailWith: errors.New("smtp timeout")}
	f := newTestFlow(store, notifier)
	f.Start()
	run(t, f, ctx, happyPathInputs...)

	reply := f.HandleInput(ctx, "yes")
	assert.Equal(t, StateIdle, f.State())
	require.Len(t, store.Bookings, 1)
	assert.Contains(t, reply, "confirmed")
	assert.Contains(t, strings.ToLower(reply), "couldn't send the confirmation email")
	assert.Contains(t, reply, "bk-")
}

func TestFlowStatusSummary(t *testing.T) {
	ctx := context.Background()
	f := newTestFlow(&StubStore{}, &StubNotifier{})
	assert.Equal(t, "No booking in progress.", f.StatusSummary())

	f.Start()
	run(t, f, ctx, "john smith", "john@example.com")
	assert.Contains(t, f.StatusSummary(), "2 of 6")

	run(t, f, ctx, "(555) 123-4567", "dental care", "tomorrow", "2pm")
	assert.Contains(t, f.StatusSummary(), "confirm")
}
