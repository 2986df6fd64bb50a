package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"stayhub-backend/internal/domain"
	"stayhub-backend/internal/service"
)

// BookingHandler exposes the booking lifecycle over REST.
type BookingHandler struct {
	bookings service.BookingService
	validate *validator.Validate
}

func NewBookingHandler(bookings service.BookingService) *BookingHandler {
	return &BookingHandler{
		bookings: bookings,
		validate: validator.New(),
	}
}

type createBookingRequest struct {
	PropertyID    int32  `json:"property_id" validate:"required,gt=0"`
	CheckIn       string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut      string `json:"check_out" validate:"required,datetime=2006-01-02"`
	Guests        int32  `json:"guests" validate:"required,gt=0"`
	PricingPeriod string `json:"pricing_period" validate:"omitempty,oneof=night week month year"`
}

type guestDetailsRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required"`
}

type payAtPropertyRequest struct {
	PaymentMethod string `json:"payment_method" validate:"omitempty,oneof=cash card-at-property pay-at-property"`
}

type verifyPaymentRequest struct {
	CheckoutID string `json:"checkout_id" validate:"required"`
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	booking, err := h.bookings.CreateBooking(r.Context(), userID, service.CreateBookingInput{
		PropertyID:    req.PropertyID,
		CheckIn:       req.CheckIn,
		CheckOut:      req.CheckOut,
		Guests:        req.Guests,
		PricingPeriod: domain.PricingPeriod(req.PricingPeriod),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (h *BookingHandler) AttachGuestDetails(w http.ResponseWriter, r *http.Request) {
	userID, bookingID, ok := h.authedBookingID(w, r)
	if !ok {
		return
	}

	var req guestDetailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	booking, err := h.bookings.AttachGuestDetails(r.Context(), userID, bookingID, req.Name, req.Email, req.Phone)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	userID, bookingID, ok := h.authedBookingID(w, r)
	if !ok {
		return
	}

	checkoutID, err := h.bookings.InitiatePayment(r.Context(), userID, bookingID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"checkout_id": checkoutID})
}

func (h *BookingHandler) ConfirmPayAtProperty(w http.ResponseWriter, r *http.Request) {
	userID, bookingID, ok := h.authedBookingID(w, r)
	if !ok {
		return
	}

	var req payAtPropertyRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := h.validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	booking, err := h.bookings.ConfirmPayAtProperty(r.Context(), userID, bookingID, req.PaymentMethod)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	userID, bookingID, ok := h.authedBookingID(w, r)
	if !ok {
		return
	}

	var req verifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	verification, err := h.bookings.VerifyPayment(r.Context(), userID, bookingID, req.CheckoutID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, verification)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, bookingID, ok := h.authedBookingID(w, r)
	if !ok {
		return
	}

	if err := h.bookings.CancelBooking(r.Context(), userID, bookingID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(domain.BookingStatusCancelled)})
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, bookingID, ok := h.authedBookingID(w, r)
	if !ok {
		return
	}

	booking, err := h.bookings.GetBooking(r.Context(), userID, bookingID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	userID, bookingID, ok := h.authedBookingID(w, r)
	if !ok {
		return
	}

	bookingStatus, paymentStatus, err := h.bookings.GetBookingStatus(r.Context(), userID, bookingID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"booking_status": string(bookingStatus),
		"payment_status": string(paymentStatus),
	})
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	bookings, err := h.bookings.ListUserBookings(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"bookings": bookings})
}

func (h *BookingHandler) authedBookingID(w http.ResponseWriter, r *http.Request) (int32, int32, bool) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return 0, 0, false
	}
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return 0, 0, false
	}
	return userID, int32(id), true
}
