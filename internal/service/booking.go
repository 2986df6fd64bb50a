package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"stayhub-backend/internal/domain"
	"stayhub-backend/internal/gateway"
	"stayhub-backend/internal/logger"
	"stayhub-backend/internal/repository"
	"stayhub-backend/internal/utils"
)

type bookingService struct {
	bookingRepo  repository.BookingRepository
	propertyRepo repository.PropertyRepository
	userRepo     repository.UserRepository
	noteRepo     repository.NotificationRepository
	emailSvc     EmailService
	gateway      PaymentGateway
	reconciler   PaymentReconciler
	holdWindow   time.Duration
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	propertyRepo repository.PropertyRepository,
	userRepo repository.UserRepository,
	noteRepo repository.NotificationRepository,
	emailSvc EmailService,
	gw PaymentGateway,
	reconciler PaymentReconciler,
	holdWindow time.Duration,
) BookingService {
	if holdWindow <= 0 {
		holdWindow = 30 * time.Minute
	}
	return &bookingService{
		bookingRepo:  bookingRepo,
		propertyRepo: propertyRepo,
		userRepo:     userRepo,
		noteRepo:     noteRepo,
		emailSvc:     emailSvc,
		gateway:      gw,
		reconciler:   reconciler,
		holdWindow:   holdWindow,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, userID int32, in CreateBookingInput) (*domain.Booking, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if user.Blocked {
		return nil, ErrAccountBlocked
	}

	property, err := s.propertyRepo.GetByID(ctx, in.PropertyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	if property.Blocked {
		return nil, ErrPropertyBlocked
	}

	stay, err := utils.ParseStayRange(in.CheckIn, in.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if in.Guests <= 0 {
		return nil, fmt.Errorf("%w: guest count must be positive", ErrInvalidInput)
	}
	if property.MaxGuests > 0 && in.Guests > property.MaxGuests {
		return nil, fmt.Errorf("%w: property sleeps at most %d guests", ErrInvalidInput, property.MaxGuests)
	}

	available, err := s.propertyRepo.IsRangeAvailable(ctx, property.ID, in.CheckIn, in.CheckOut)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrDatesUnavailable
	}

	expiresAt := time.Now().Add(s.holdWindow)
	booking := &domain.Booking{
		UserID:        userID,
		PropertyID:    property.ID,
		CheckIn:       in.CheckIn,
		CheckOut:      in.CheckOut,
		Guests:        in.Guests,
		BookingStatus: domain.BookingStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		ExpiresAt:     &expiresAt,
	}
	applyPriceSnapshot(booking, property, stay, in.PricingPeriod)

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	logger.Info("Booking hold created",
		"booking_id", booking.ID, "user_id", userID, "property_id", property.ID,
		"check_in", in.CheckIn, "check_out", in.CheckOut, "expires_at", expiresAt)
	return booking, nil
}

func (s *bookingService) AttachGuestDetails(ctx context.Context, userID, bookingID int32, name, email, phone string) (*domain.Booking, error) {
	booking, err := s.loadOwnedBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.failIfExpired(ctx, booking); err != nil {
		return nil, err
	}
	if booking.BookingStatus == domain.BookingStatusConfirmed {
		return nil, ErrAlreadyConfirmed
	}
	if booking.BookingStatus != domain.BookingStatusPending {
		return nil, fmt.Errorf("%w: booking is %s", ErrInvalidInput, booking.BookingStatus)
	}
	if name == "" || email == "" || phone == "" {
		return nil, fmt.Errorf("%w: guest name, email and phone are required", ErrInvalidInput)
	}

	// Last write wins; re-submitting details is allowed until confirmation.
	if err := s.bookingRepo.SetGuestDetails(ctx, bookingID, name, email, phone); err != nil {
		return nil, err
	}
	booking.GuestName = name
	booking.GuestEmail = email
	booking.GuestPhone = phone
	return booking, nil
}

func (s *bookingService) InitiatePayment(ctx context.Context, userID, bookingID int32) (string, error) {
	booking, err := s.loadOwnedBooking(ctx, userID, bookingID)
	if err != nil {
		return "", err
	}
	if err := s.failIfExpired(ctx, booking); err != nil {
		return "", err
	}
	if booking.BookingStatus == domain.BookingStatusConfirmed {
		return "", ErrAlreadyConfirmed
	}
	if booking.BookingStatus != domain.BookingStatusPending {
		return "", fmt.Errorf("%w: booking is %s", ErrInvalidInput, booking.BookingStatus)
	}
	if !booking.HasGuestDetails() {
		return "", ErrGuestDetailsMissing
	}

	session, err := s.gateway.CreateCheckout(ctx, gateway.CheckoutRequest{
		MerchantTransactionID: strconv.Itoa(int(booking.ID)),
		AmountCents:           booking.TotalCents,
		Currency:              booking.Currency,
		CustomerName:          booking.GuestName,
		CustomerEmail:         booking.GuestEmail,
		CustomerPhone:         booking.GuestPhone,
	})
	if err != nil {
		// Nothing was persisted; the booking is untouched and the
		// caller may retry.
		return "", err
	}

	if err := s.bookingRepo.SetCheckout(ctx, booking.ID, session.ID); err != nil {
		return "", err
	}
	attempt := &domain.PaymentAttempt{
		BookingID:         booking.ID,
		CheckoutID:        session.ID,
		Reference:         uuid.NewString(),
		Status:            domain.PaymentAttemptInitiated,
		ResultCode:        session.ResultCode,
		ResultDescription: session.ResultDescription,
	}
	if err := s.bookingRepo.AppendPaymentAttempt(ctx, attempt); err != nil {
		return "", err
	}

	logger.Info("Checkout session opened", "booking_id", booking.ID, "checkout_id", session.ID)
	return session.ID, nil
}

func (s *bookingService) ConfirmPayAtProperty(ctx context.Context, userID, bookingID int32, paymentMethod string) (*domain.Booking, error) {
	booking, err := s.loadOwnedBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.failIfExpired(ctx, booking); err != nil {
		return nil, err
	}
	if !booking.HasGuestDetails() {
		return nil, ErrGuestDetailsMissing
	}
	if paymentMethod == "" {
		paymentMethod = "pay-at-property"
	}

	applied, err := s.bookingRepo.ConfirmPayAtProperty(ctx, bookingID, paymentMethod)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, ErrAlreadyConfirmed
	}

	rng := &domain.UnavailableRange{
		PropertyID: booking.PropertyID,
		BookingID:  &booking.ID,
		StartDate:  booking.CheckIn,
		EndDate:    booking.CheckOut,
		Reason:     "booking",
	}
	if err := s.propertyRepo.AddUnavailableRange(ctx, rng); err != nil {
		logger.Error("Failed to write inventory lock for confirmed booking",
			"booking_id", booking.ID, "property_id", booking.PropertyID, "error", err)
	}

	s.notifyConfirmedAtProperty(ctx, booking)

	booking.BookingStatus = domain.BookingStatusConfirmed
	booking.PaymentStatus = domain.PaymentStatusPending
	booking.PaymentMethod = paymentMethod
	booking.ExpiresAt = nil
	return booking, nil
}

func (s *bookingService) VerifyPayment(ctx context.Context, userID, bookingID int32, checkoutID string) (*PaymentVerification, error) {
	booking, err := s.loadOwnedBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	// The webhook may have won the race already; report success without
	// touching anything.
	if booking.BookingStatus == domain.BookingStatusConfirmed {
		return &PaymentVerification{Confirmed: true, Status: string(domain.BookingStatusConfirmed)}, nil
	}
	if err := s.failIfExpired(ctx, booking); err != nil {
		return nil, err
	}
	if booking.CheckoutID == nil || *booking.CheckoutID != checkoutID {
		return nil, fmt.Errorf("%w: checkout id does not match booking", ErrInvalidInput)
	}

	outcome, err := s.gateway.QueryPaymentStatus(ctx, checkoutID)
	if err != nil {
		return nil, err
	}

	result, err := s.reconciler.Apply(ctx, bookingID, outcome, gateway.TriggerPoll)
	if err != nil {
		return nil, err
	}

	switch result.Outcome {
	case gateway.OutcomeSuccess:
		if result.Applied || result.AlreadyConfirmed {
			return &PaymentVerification{Confirmed: true, Status: string(domain.BookingStatusConfirmed)}, nil
		}
		// The gateway reported success but the booking had already gone
		// terminal some other way, so no confirmation happened. Report
		// the booking's real status.
		refreshed, err := s.bookingRepo.GetByID(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		return &PaymentVerification{
			Status:  string(refreshed.BookingStatus),
			Message: "payment succeeded for a booking that is no longer active, contact support",
		}, nil
	case gateway.OutcomePending:
		return &PaymentVerification{Pending: true, Status: string(domain.PaymentStatusPendingVerification), Message: "payment still processing, retry shortly"}, nil
	default:
		return &PaymentVerification{Status: string(domain.PaymentStatusFailed), Message: outcome.ResultDescription}, nil
	}
}

func (s *bookingService) CancelBooking(ctx context.Context, userID, bookingID int32) error {
	booking, err := s.loadOwnedBooking(ctx, userID, bookingID)
	if err != nil {
		return err
	}
	if booking.BookingStatus == domain.BookingStatusCancelled {
		return nil
	}

	wasConfirmed := booking.BookingStatus == domain.BookingStatusConfirmed
	if err := s.bookingRepo.Cancel(ctx, bookingID); err != nil {
		return err
	}

	// A confirmed booking held an inventory lock; cancelling must free
	// the dates again or the property stays unbookable forever.
	if wasConfirmed {
		if err := s.propertyRepo.ReleaseUnavailableRange(ctx, bookingID); err != nil {
			logger.Error("Failed to release inventory lock on cancellation",
				"booking_id", bookingID, "error", err)
		}
	}

	logger.Info("Booking cancelled", "booking_id", bookingID, "user_id", userID, "was_confirmed", wasConfirmed)
	return nil
}

func (s *bookingService) GetBooking(ctx context.Context, userID, bookingID int32) (*domain.Booking, error) {
	booking, err := s.loadOwnedBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	// Reads reflect reality: a lapsed hold is cancelled before reporting.
	if booking.IsExpired(time.Now()) {
		if _, err := s.bookingRepo.CancelIfPending(ctx, bookingID); err != nil {
			return nil, err
		}
		booking.BookingStatus = domain.BookingStatusCancelled
	}
	return booking, nil
}

func (s *bookingService) GetBookingStatus(ctx context.Context, userID, bookingID int32) (domain.BookingStatus, domain.PaymentStatus, error) {
	booking, err := s.GetBooking(ctx, userID, bookingID)
	if err != nil {
		return "", "", err
	}
	return booking.BookingStatus, booking.PaymentStatus, nil
}

func (s *bookingService) ListUserBookings(ctx context.Context, userID int32) ([]UserBooking, error) {
	bookings, err := s.bookingRepo.ListByUser(ctx, userID, []domain.BookingStatus{
		domain.BookingStatusConfirmed,
		domain.BookingStatusCancelled,
	})
	if err != nil {
		return nil, err
	}

	properties := make(map[int32]*domain.Property)
	out := make([]UserBooking, 0, len(bookings))
	for _, b := range bookings {
		property, ok := properties[b.PropertyID]
		if !ok {
			property, err = s.propertyRepo.GetByID(ctx, b.PropertyID)
			if err != nil {
				logger.Warn("Failed to join property onto booking", "property_id", b.PropertyID, "error", err)
				property = nil
			}
			properties[b.PropertyID] = property
		}
		out = append(out, UserBooking{Booking: b, Property: property})
	}
	return out, nil
}

func (s *bookingService) loadOwnedBooking(ctx context.Context, userID, bookingID int32) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if booking.UserID != userID {
		return nil, ErrUnauthorized
	}
	return booking, nil
}

// failIfExpired is the lazy half of expiry handling: a lapsed pending hold
// is force-cancelled before the requested operation, which then fails with
// an expired reason. The sweeper covers holds nobody revisits.
func (s *bookingService) failIfExpired(ctx context.Context, booking *domain.Booking) error {
	if !booking.IsExpired(time.Now()) {
		return nil
	}
	if _, err := s.bookingRepo.CancelIfPending(ctx, booking.ID); err != nil {
		return err
	}
	booking.BookingStatus = domain.BookingStatusCancelled
	logger.Info("Expired booking hold force-cancelled", "booking_id", booking.ID)
	return ErrBookingExpired
}

func (s *bookingService) notifyConfirmedAtProperty(ctx context.Context, booking *domain.Booking) {
	property, err := s.propertyRepo.GetByID(ctx, booking.PropertyID)
	if err != nil {
		logger.Error("Failed to load property for confirmation notice", "property_id", booking.PropertyID, "error", err)
		return
	}

	if booking.GuestEmail != "" {
		if err := s.emailSvc.SendBookingConfirmation(ctx, booking.GuestEmail, booking.GuestName,
			property.Name, booking.CheckIn, booking.CheckOut, booking.TotalCents, booking.Currency); err != nil {
			logger.Error("Failed to send confirmation email", "booking_id", booking.ID, "error", err)
		}
	}

	note := &domain.Notification{
		UserID:  booking.UserID,
		Title:   "Booking Confirmed",
		Message: fmt.Sprintf("Your booking at %s is confirmed, payment due at the property", property.Name),
		Attributes: map[string]string{
			"type":       "BOOKING_CONFIRMED",
			"booking_id": fmt.Sprintf("%d", booking.ID),
		},
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		logger.Error("Failed to create confirmation notification", "booking_id", booking.ID, "error", err)
	}
}

// applyPriceSnapshot copies the property's current price card onto the
// booking. Units round up to whole pricing periods.
func applyPriceSnapshot(b *domain.Booking, p *domain.Property, stay utils.StayRange, period domain.PricingPeriod) {
	if period == "" {
		period = domain.PricingPeriodNight
	}

	nights := stay.Nights()
	daysPerUnit := int32(1)
	switch period {
	case domain.PricingPeriodWeek:
		daysPerUnit = 7
	case domain.PricingPeriodMonth:
		daysPerUnit = 30
	case domain.PricingPeriodYear:
		daysPerUnit = 365
	}

	units := nights / daysPerUnit
	if nights%daysPerUnit > 0 {
		units++
	}

	// Fee math runs in int64 so a large subtotal times a basis-point rate
	// cannot wrap before the division.
	unitPrice := int64(p.UnitPriceCents) * int64(daysPerUnit)
	subtotal := unitPrice * int64(units)
	tax := subtotal * int64(p.TaxRateBps) / 10000
	vat := subtotal * int64(p.VATRateBps) / 10000

	b.PricingPeriod = period
	b.UnitCount = units
	b.UnitPriceCents = int32(unitPrice)
	b.SubtotalCents = int32(subtotal)
	b.CleaningFeeCents = p.CleaningFeeCents
	b.ServiceFeeCents = p.ServiceFeeCents
	b.TaxCents = int32(tax)
	b.VATCents = int32(vat)
	b.TotalCents = int32(subtotal + int64(p.CleaningFeeCents) + int64(p.ServiceFeeCents) + tax + vat)
	b.Currency = p.Currency
}
