package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/medbookai/medbook/internal/booking"
)

type mockEmailSender struct {
	sent    []EmailMessage
	callErr error
}

func (m *mockEmailSender) Send(_ context.Context, msg EmailMessage) error {
	if m.callErr != nil {
		return m.callErr
	}
	m.sent = append(m.sent, msg)
	return nil
}

func testClinic() ClinicInfo {
	return ClinicInfo{
		Name:    "HealthFirst Medical Center",
		Phone:   "+1-555-0123",
		Address: "123 Health Street, Medical City",
		AppName: "MedBook AI",
	}
}

func testConfirmation() booking.Confirmation {
	return booking.Confirmation{
		Email:       "john@example.com",
		Name:        "John Smith",
		BookingID:   "bk-42",
		BookingType: "Dental Care",
		Date:        "2026-03-05",
		Time:        "14:00",
	}
}

func TestSendBookingConfirmation(t *testing.T) {
	sender := &mockEmailSender{}
	svc := NewService(sender, testClinic(), nil)

	if err := svc.SendBookingConfirmation(context.Background(), testConfirmation()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sender.sent))
	}

	msg := sender.sent[0]
	if msg.To != "john@example.com" {
		t.Errorf("wrong recipient: %s", msg.To)
	}
	if msg.Subject != "Appointment Confirmed - HealthFirst Medical Center" {
		t.Errorf("wrong subject: %s", msg.Subject)
	}
	for _, want := range []string{"bk-42", "Dental Care", "Thursday, March 5, 2026", "2:00 PM", "+1-555-0123"} {
		if !strings.Contains(msg.Body, want) {
			t.Errorf("plain body missing %q", want)
		}
		if !strings.Contains(msg.HTML, want) {
			t.Errorf("html body missing %q", want)
		}
	}
}

func TestSendBookingConfirmationSenderError(t *testing.T) {
	sender := &mockEmailSender{callErr: errors.New("smtp down")}
	svc := NewService(sender, testClinic(), nil)

	err := svc.SendBookingConfirmation(context.Background(), testConfirmation())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "send confirmation") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewServiceNilSenderUsesStub(t *testing.T) {
	svc := NewService(nil, testClinic(), nil)
	if err := svc.SendBookingConfirmation(context.Background(), testConfirmation()); err != nil {
		t.Fatalf("stub sender should never fail: %v", err)
	}
}

func TestFriendlyFormatting(t *testing.T) {
	if got := friendlyDate("2026-03-05"); got != "Thursday, March 5, 2026" {
		t.Errorf("friendlyDate = %q", got)
	}
	if got := friendlyDate("not-a-date"); got != "not-a-date" {
		t.Errorf("friendlyDate passthrough = %q", got)
	}
	if got := friendlyTime("09:30"); got != "9:30 AM" {
		t.Errorf("friendlyTime = %q", got)
	}
	if got := friendlyTime("14:00"); got != "2:00 PM" {
		t.Errorf("friendlyTime = %q", got)
	}
}
