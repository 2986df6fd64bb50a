package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"stayhub-backend/internal/domain"
	"stayhub-backend/internal/service"
)

type mockBookingService struct {
	mock.Mock
}

func (m *mockBookingService) CreateBooking(ctx context.Context, userID int32, in service.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *mockBookingService) AttachGuestDetails(ctx context.Context, userID, bookingID int32, name, email, phone string) (*domain.Booking, error) {
	args := m.Called(ctx, userID, bookingID, name, email, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *mockBookingService) InitiatePayment(ctx context.Context, userID, bookingID int32) (string, error) {
	args := m.Called(ctx, userID, bookingID)
	return args.String(0), args.Error(1)
}
func (m *mockBookingService) ConfirmPayAtProperty(ctx context.Context, userID, bookingID int32, paymentMethod string) (*domain.Booking, error) {
	args := m.Called(ctx, userID, bookingID, paymentMethod)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *mockBookingService) VerifyPayment(ctx context.Context, userID, bookingID int32, checkoutID string) (*service.PaymentVerification, error) {
	args := m.Called(ctx, userID, bookingID, checkoutID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PaymentVerification), args.Error(1)
}
func (m *mockBookingService) CancelBooking(ctx context.Context, userID, bookingID int32) error {
	args := m.Called(ctx, userID, bookingID)
	return args.Error(0)
}
func (m *mockBookingService) GetBooking(ctx context.Context, userID, bookingID int32) (*domain.Booking, error) {
	args := m.Called(ctx, userID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *mockBookingService) GetBookingStatus(ctx context.Context, userID, bookingID int32) (domain.BookingStatus, domain.PaymentStatus, error) {
	args := m.Called(ctx, userID, bookingID)
	return args.Get(0).(domain.BookingStatus), args.Get(1).(domain.PaymentStatus), args.Error(2)
}
func (m *mockBookingService) ListUserBookings(ctx context.Context, userID int32) ([]service.UserBooking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.UserBooking), args.Error(1)
}

func authedRequest(method, target string, body []byte, userID int32, vars map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := context.WithValue(req.Context(), userIDKey, userID)
	req = req.WithContext(ctx)
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}

func TestBookingHandler_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(mockBookingService)
		handler := NewBookingHandler(svc)

		svc.On("CreateBooking", mock.Anything, int32(1), mock.AnythingOfType("service.CreateBookingInput")).
			Return(&domain.Booking{ID: 42, BookingStatus: domain.BookingStatusPending}, nil)

		body := []byte(`{"property_id": 7, "check_in": "2026-09-10", "check_out": "2026-09-14", "guests": 2}`)
		rec := httptest.NewRecorder()
		handler.Create(rec, authedRequest(http.MethodPost, "/api/v1/bookings", body, 1, nil))

		assert.Equal(t, http.StatusCreated, rec.Code)
		var got domain.Booking
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, int32(42), got.ID)
	})

	t.Run("Validation Failure", func(t *testing.T) {
		svc := new(mockBookingService)
		handler := NewBookingHandler(svc)

		body := []byte(`{"property_id": 7, "check_in": "next tuesday", "check_out": "2026-09-14", "guests": 2}`)
		rec := httptest.NewRecorder()
		handler.Create(rec, authedRequest(http.MethodPost, "/api/v1/bookings", body, 1, nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Dates Unavailable Maps To Conflict", func(t *testing.T) {
		svc := new(mockBookingService)
		handler := NewBookingHandler(svc)

		svc.On("CreateBooking", mock.Anything, int32(1), mock.AnythingOfType("service.CreateBookingInput")).
			Return(nil, service.ErrDatesUnavailable)

		body := []byte(`{"property_id": 7, "check_in": "2026-09-10", "check_out": "2026-09-14", "guests": 2}`)
		rec := httptest.NewRecorder()
		handler.Create(rec, authedRequest(http.MethodPost, "/api/v1/bookings", body, 1, nil))

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestBookingHandler_VerifyPayment(t *testing.T) {
	t.Run("Pending", func(t *testing.T) {
		svc := new(mockBookingService)
		handler := NewBookingHandler(svc)

		svc.On("VerifyPayment", mock.Anything, int32(1), int32(42), "chk-1").
			Return(&service.PaymentVerification{Pending: true, Status: "pending-verification"}, nil)

		body := []byte(`{"checkout_id": "chk-1"}`)
		rec := httptest.NewRecorder()
		handler.VerifyPayment(rec, authedRequest(http.MethodPost, "/api/v1/bookings/42/payment/verify", body, 1, map[string]string{"id": "42"}))

		assert.Equal(t, http.StatusOK, rec.Code)
		var got service.PaymentVerification
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.True(t, got.Pending)
		assert.False(t, got.Confirmed)
	})

	t.Run("Expired Maps To Gone", func(t *testing.T) {
		svc := new(mockBookingService)
		handler := NewBookingHandler(svc)

		svc.On("VerifyPayment", mock.Anything, int32(1), int32(42), "chk-1").
			Return(nil, service.ErrBookingExpired)

		body := []byte(`{"checkout_id": "chk-1"}`)
		rec := httptest.NewRecorder()
		handler.VerifyPayment(rec, authedRequest(http.MethodPost, "/api/v1/bookings/42/payment/verify", body, 1, map[string]string{"id": "42"}))

		assert.Equal(t, http.StatusGone, rec.Code)
	})
}

func TestBookingHandler_GetStatus(t *testing.T) {
	svc := new(mockBookingService)
	handler := NewBookingHandler(svc)

	svc.On("GetBookingStatus", mock.Anything, int32(1), int32(42)).
		Return(domain.BookingStatusConfirmed, domain.PaymentStatusConfirmed, nil)

	rec := httptest.NewRecorder()
	handler.GetStatus(rec, authedRequest(http.MethodGet, "/api/v1/bookings/42/status", nil, 1, map[string]string{"id": "42"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	var got map[string]string
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "confirmed", got["booking_status"])
	assert.Equal(t, "confirmed", got["payment_status"])
}

func TestBookingHandler_InvalidBookingID(t *testing.T) {
	svc := new(mockBookingService)
	handler := NewBookingHandler(svc)

	rec := httptest.NewRecorder()
	handler.Get(rec, authedRequest(http.MethodGet, "/api/v1/bookings/abc", nil, 1, map[string]string{"id": "abc"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "GetBooking", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingHandler_NotOwnerMapsToForbidden(t *testing.T) {
	svc := new(mockBookingService)
	handler := NewBookingHandler(svc)

	svc.On("GetBooking", mock.Anything, int32(1), int32(42)).Return(nil, service.ErrUnauthorized)

	rec := httptest.NewRecorder()
	handler.Get(rec, authedRequest(http.MethodGet, "/api/v1/bookings/42", nil, 1, map[string]string{"id": "42"}))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
