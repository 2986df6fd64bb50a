package service_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"stayhub-backend/internal/domain"
	"stayhub-backend/internal/gateway"
	"stayhub-backend/internal/service"
)

// MockBookingRepo
type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) Create(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}
func (m *MockBookingRepo) GetByID(ctx context.Context, id int32) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) ListByUser(ctx context.Context, userID int32, statuses []domain.BookingStatus) ([]domain.Booking, error) {
	args := m.Called(ctx, userID, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) SetGuestDetails(ctx context.Context, id int32, name, email, phone string) error {
	args := m.Called(ctx, id, name, email, phone)
	return args.Error(0)
}
func (m *MockBookingRepo) SetCheckout(ctx context.Context, id int32, checkoutID string) error {
	args := m.Called(ctx, id, checkoutID)
	return args.Error(0)
}
func (m *MockBookingRepo) ConfirmPayment(ctx context.Context, id int32, transactionID string, details *domain.PaymentDetails) (bool, error) {
	args := m.Called(ctx, id, transactionID, details)
	return args.Bool(0), args.Error(1)
}
func (m *MockBookingRepo) FailPayment(ctx context.Context, id int32, details *domain.PaymentDetails) (bool, error) {
	args := m.Called(ctx, id, details)
	return args.Bool(0), args.Error(1)
}
func (m *MockBookingRepo) ConfirmPayAtProperty(ctx context.Context, id int32, paymentMethod string) (bool, error) {
	args := m.Called(ctx, id, paymentMethod)
	return args.Bool(0), args.Error(1)
}
func (m *MockBookingRepo) CancelIfPending(ctx context.Context, id int32) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
func (m *MockBookingRepo) Cancel(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockBookingRepo) AppendPaymentAttempt(ctx context.Context, attempt *domain.PaymentAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}
func (m *MockBookingRepo) SettlePaymentAttempt(ctx context.Context, bookingID int32, checkoutID string, status domain.PaymentAttemptStatus, code, description string) (bool, error) {
	args := m.Called(ctx, bookingID, checkoutID, status, code, description)
	return args.Bool(0), args.Error(1)
}
func (m *MockBookingRepo) ListPaymentAttempts(ctx context.Context, bookingID int32) ([]domain.PaymentAttempt, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentAttempt), args.Error(1)
}
func (m *MockBookingRepo) GetPaymentDetails(ctx context.Context, bookingID int32) (*domain.PaymentDetails, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentDetails), args.Error(1)
}

// MockPropertyRepo
type MockPropertyRepo struct {
	mock.Mock
}

func (m *MockPropertyRepo) GetByID(ctx context.Context, id int32) (*domain.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Property), args.Error(1)
}
func (m *MockPropertyRepo) AddUnavailableRange(ctx context.Context, rng *domain.UnavailableRange) error {
	args := m.Called(ctx, rng)
	return args.Error(0)
}
func (m *MockPropertyRepo) ReleaseUnavailableRange(ctx context.Context, bookingID int32) error {
	args := m.Called(ctx, bookingID)
	return args.Error(0)
}
func (m *MockPropertyRepo) ListUnavailableRanges(ctx context.Context, propertyID int32) ([]domain.UnavailableRange, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UnavailableRange), args.Error(1)
}
func (m *MockPropertyRepo) IsRangeAvailable(ctx context.Context, propertyID int32, checkIn, checkOut string) (bool, error) {
	args := m.Called(ctx, propertyID, checkIn, checkOut)
	return args.Bool(0), args.Error(1)
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int32), args.Error(2)
	}
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendBookingConfirmation(ctx context.Context, email, guestName, propertyName, checkIn, checkOut string, totalCents int32, currency string) error {
	args := m.Called(ctx, email, guestName, propertyName, checkIn, checkOut, totalCents, currency)
	return args.Error(0)
}
func (m *MockEmailService) SendPaymentFailure(ctx context.Context, email, guestName, propertyName, reason string) error {
	args := m.Called(ctx, email, guestName, propertyName, reason)
	return args.Error(0)
}
func (m *MockEmailService) SendBookingExpired(ctx context.Context, email, guestName, propertyName string) error {
	args := m.Called(ctx, email, guestName, propertyName)
	return args.Error(0)
}

// MockPaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateCheckout(ctx context.Context, req gateway.CheckoutRequest) (*gateway.CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.CheckoutSession), args.Error(1)
}
func (m *MockPaymentGateway) QueryPaymentStatus(ctx context.Context, checkoutID string) (*gateway.PaymentOutcome, error) {
	args := m.Called(ctx, checkoutID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.PaymentOutcome), args.Error(1)
}

// MockReconciler
type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) Apply(ctx context.Context, bookingID int32, outcome *gateway.PaymentOutcome, trigger gateway.TriggerContext) (*service.ReconcileResult, error) {
	args := m.Called(ctx, bookingID, outcome, trigger)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReconcileResult), args.Error(1)
}
