package service

import (
	"context"

	"stayhub-backend/internal/domain"
	"stayhub-backend/internal/gateway"
)

// CreateBookingInput is the reservation request. Prices are snapshotted
// from the property at creation; later price changes never touch an
// existing booking.
type CreateBookingInput struct {
	PropertyID    int32
	CheckIn       string
	CheckOut      string
	Guests        int32
	PricingPeriod domain.PricingPeriod
}

// UserBooking is a booking joined with its property for list views.
type UserBooking struct {
	Booking  domain.Booking   `json:"booking"`
	Property *domain.Property `json:"property,omitempty"`
}

// PaymentVerification is the poll-trigger response.
type PaymentVerification struct {
	Confirmed bool   `json:"confirmed"`
	Pending   bool   `json:"pending"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
}

type BookingService interface {
	CreateBooking(ctx context.Context, userID int32, in CreateBookingInput) (*domain.Booking, error)
	AttachGuestDetails(ctx context.Context, userID, bookingID int32, name, email, phone string) (*domain.Booking, error)
	InitiatePayment(ctx context.Context, userID, bookingID int32) (string, error)
	ConfirmPayAtProperty(ctx context.Context, userID, bookingID int32, paymentMethod string) (*domain.Booking, error)
	VerifyPayment(ctx context.Context, userID, bookingID int32, checkoutID string) (*PaymentVerification, error)
	CancelBooking(ctx context.Context, userID, bookingID int32) error
	GetBooking(ctx context.Context, userID, bookingID int32) (*domain.Booking, error)
	GetBookingStatus(ctx context.Context, userID, bookingID int32) (domain.BookingStatus, domain.PaymentStatus, error)
	ListUserBookings(ctx context.Context, userID int32) ([]UserBooking, error)
}

// PaymentGateway is the outbound boundary to the external processor.
// *gateway.Client is the production implementation.
type PaymentGateway interface {
	CreateCheckout(ctx context.Context, req gateway.CheckoutRequest) (*gateway.CheckoutSession, error)
	QueryPaymentStatus(ctx context.Context, checkoutID string) (*gateway.PaymentOutcome, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
}

type EmailService interface {
	SendBookingConfirmation(ctx context.Context, email, guestName, propertyName, checkIn, checkOut string, totalCents int32, currency string) error
	SendPaymentFailure(ctx context.Context, email, guestName, propertyName, reason string) error
	SendBookingExpired(ctx context.Context, email, guestName, propertyName string) error
}
