package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type emailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &emailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *emailService) send(to, toName, subject, plainText, htmlContent string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)

	message := mail.NewSingleEmail(from, subject, recipient, plainText, htmlContent)

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (s *emailService) SendBookingConfirmation(ctx context.Context, email, guestName, propertyName, checkIn, checkOut string, totalCents int32, currency string) error {
	subject := fmt.Sprintf("Booking confirmed: %s", propertyName)
	plainText := fmt.Sprintf("Hello %s,\n\nYour booking at %s from %s to %s is confirmed.\nTotal paid: %d.%02d %s.\n\nHave a great stay!\nThe StayHub Team",
		guestName, propertyName, checkIn, checkOut, totalCents/100, totalCents%100, currency)
	htmlContent := fmt.Sprintf(`
		<html>
			<body>
				<h2>Booking Confirmed</h2>
				<p>Hello <strong>%s</strong>,</p>
				<p>Your booking at <strong>%s</strong> from %s to %s is confirmed.</p>
				<p>Total paid: <strong>%d.%02d %s</strong></p>
			</body>
		</html>
	`, guestName, propertyName, checkIn, checkOut, totalCents/100, totalCents%100, currency)

	return s.send(email, guestName, subject, plainText, htmlContent)
}

func (s *emailService) SendPaymentFailure(ctx context.Context, email, guestName, propertyName, reason string) error {
	subject := fmt.Sprintf("Payment failed for %s", propertyName)
	plainText := fmt.Sprintf("Hello %s,\n\nYour payment for the booking at %s was not successful.\nReason: %s\n\nThe dates have been released; you can try booking again.\nThe StayHub Team",
		guestName, propertyName, reason)
	htmlContent := fmt.Sprintf(`
		<html>
			<body>
				<h2>Payment Failed</h2>
				<p>Hello <strong>%s</strong>,</p>
				<p>Your payment for the booking at <strong>%s</strong> was not successful.</p>
				<p>Reason: %s</p>
				<p>The dates have been released; you can try booking again.</p>
			</body>
		</html>
	`, guestName, propertyName, reason)

	return s.send(email, guestName, subject, plainText, htmlContent)
}

func (s *emailService) SendBookingExpired(ctx context.Context, email, guestName, propertyName string) error {
	subject := fmt.Sprintf("Booking hold expired: %s", propertyName)
	plainText := fmt.Sprintf("Hello %s,\n\nYour hold on %s expired before payment completed and has been cancelled.\nThe StayHub Team",
		guestName, propertyName)
	htmlContent := fmt.Sprintf(`
		<html>
			<body>
				<h2>Booking Hold Expired</h2>
				<p>Hello <strong>%s</strong>,</p>
				<p>Your hold on <strong>%s</strong> expired before payment completed and has been cancelled.</p>
			</body>
		</html>
	`, guestName, propertyName)

	return s.send(email, guestName, subject, plainText, htmlContent)
}
