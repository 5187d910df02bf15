package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/medbookai/medbook/internal/booking"
	"github.com/medbookai/medbook/pkg/logging"
)

// ClinicInfo is the branding rendered into confirmation emails.
type ClinicInfo struct {
	Name    string
	Phone   string
	Address string
	AppName string
}

// Service renders and sends booking confirmation emails.
type Service struct {
	email  EmailSender
	clinic ClinicInfo
	logger *logging.Logger
}

var _ booking.Notifier = (*Service)(nil)

// NewService creates a notification service. A nil sender falls back to the
// stub so booking flows never break on missing email config.
func NewService(email EmailSender, clinic ClinicInfo, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if email == nil {
		email = NewStubEmailSender(logger)
	}
	if clinic.AppName == "" {
		clinic.AppName = "MedBook AI"
	}
	return &Service{
		email:  email,
		clinic: clinic,
		logger: logger,
	}
}

// SendBookingConfirmation sends the confirmation email for a saved booking.
func (s *Service) SendBookingConfirmation(ctx context.Context, msg booking.Confirmation) error {
	subject := fmt.Sprintf("Appointment Confirmed - %s", s.clinic.Name)
	prettyDate := friendlyDate(msg.Date)
	prettyTime := friendlyTime(msg.Time)

	body := fmt.Sprintf(`Hi %s,

Your appointment is confirmed!

Booking ID: %s
Appointment: %s
Date: %s
Time: %s

Location: %s
Questions? Call us at %s.

Please arrive 10 minutes early and bring a photo ID.

— %s`, msg.Name, msg.BookingID, msg.BookingType, prettyDate, prettyTime,
		s.clinic.Address, s.clinic.Phone, s.clinic.AppName)

	html := fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px;">
<h2 style="color: #10b981;">Your appointment is confirmed!</h2>
<p>Hi <strong>%s</strong>, we look forward to seeing you.</p>
<table style="border-collapse: collapse; margin: 20px 0;">
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Booking ID:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Appointment:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Date:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Time:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Location:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>
</table>
<p style="background: #f0fdf4; padding: 12px; border-radius: 8px; border-left: 4px solid #10b981;">
  Please arrive 10 minutes early and bring a photo ID. Questions? Call <a href="tel:%s">%s</a>.
</p>
<p style="color: #6b7280; font-size: 12px; margin-top: 20px;">— %s</p>
</div>`,
		msg.Name, msg.BookingID, msg.BookingType, prettyDate, prettyTime,
		s.clinic.Address, s.clinic.Phone, s.clinic.Phone, s.clinic.AppName)

	err := s.email.Send(ctx, EmailMessage{
		To:      msg.Email,
		ToName:  msg.Name,
		Subject: subject,
		Body:    body,
		HTML:    html,
	})
	if err != nil {
		s.logger.Error("notify: confirmation email failed", "error", err, "booking_id", msg.BookingID, "to", msg.Email)
		return fmt.Errorf("notify: send confirmation: %w", err)
	}

	s.logger.Info("notify: confirmation email sent", "booking_id", msg.BookingID, "to", msg.Email)
	return nil
}

// friendlyDate renders a canonical YYYY-MM-DD date for humans. Unparseable
// input is passed through untouched.
func friendlyDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Monday, January 2, 2006")
}

// friendlyTime renders a canonical 24-hour HH:MM time for humans.
func friendlyTime(clock string) string {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return clock
	}
	return t.Format("3:04 PM")
}
