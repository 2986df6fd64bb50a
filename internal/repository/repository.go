package repository

import (
	"context"

	"stayhub-backend/internal/domain"
)

// BookingRepository is the single source of truth for booking state.
// Every terminal transition is a conditional write guarded on the current
// status; the bool result reports whether the guard matched, so racing
// callers can tell winner from loser without external locking.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int32) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int32, statuses []domain.BookingStatus) ([]domain.Booking, error)

	SetGuestDetails(ctx context.Context, id int32, name, email, phone string) error
	SetCheckout(ctx context.Context, id int32, checkoutID string) error

	// ConfirmPayment applies the gateway-success transition and writes the
	// payment snapshot in one transaction. Applies only while the booking
	// is still pending.
	ConfirmPayment(ctx context.Context, id int32, transactionID string, details *domain.PaymentDetails) (bool, error)

	// FailPayment applies the gateway-decline transition and writes the
	// payment snapshot. Applies only while the booking is still pending.
	FailPayment(ctx context.Context, id int32, details *domain.PaymentDetails) (bool, error)

	// ConfirmPayAtProperty confirms the booking with payment collected at
	// the property. Applies only while the booking is still pending.
	ConfirmPayAtProperty(ctx context.Context, id int32, paymentMethod string) (bool, error)

	// CancelIfPending force-cancels an expired hold.
	CancelIfPending(ctx context.Context, id int32) (bool, error)

	// Cancel sets the booking to cancelled regardless of current state.
	Cancel(ctx context.Context, id int32) error

	AppendPaymentAttempt(ctx context.Context, attempt *domain.PaymentAttempt) error
	// SettlePaymentAttempt moves one attempt from initiated to a terminal
	// status; an already-settled attempt is left untouched.
	SettlePaymentAttempt(ctx context.Context, bookingID int32, checkoutID string, status domain.PaymentAttemptStatus, code, description string) (bool, error)
	ListPaymentAttempts(ctx context.Context, bookingID int32) ([]domain.PaymentAttempt, error)

	GetPaymentDetails(ctx context.Context, bookingID int32) (*domain.PaymentDetails, error)
}

type PropertyRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Property, error)

	// AddUnavailableRange appends a date range to the property's
	// unavailable set. Invoked only from confirmed transitions.
	AddUnavailableRange(ctx context.Context, rng *domain.UnavailableRange) error
	// ReleaseUnavailableRange frees the range a confirmed booking held.
	ReleaseUnavailableRange(ctx context.Context, bookingID int32) error
	ListUnavailableRanges(ctx context.Context, propertyID int32) ([]domain.UnavailableRange, error)

	// IsRangeAvailable reports whether [checkIn, checkOut) overlaps no
	// existing unavailable range.
	IsRangeAvailable(ctx context.Context, propertyID int32, checkIn, checkOut string) (bool, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.User, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}
