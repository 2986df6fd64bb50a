package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"stayhub-backend/internal/domain"
	"stayhub-backend/internal/gateway"
	"stayhub-backend/internal/logger"
	"stayhub-backend/internal/repository"
)

// ReconcileResult reports what applying a gateway outcome did to a booking.
type ReconcileResult struct {
	Outcome gateway.Outcome
	// Applied is true when this call performed the transition. The loser
	// of a webhook/poll race sees Applied=false.
	Applied bool
	// AlreadyConfirmed is true when a success outcome arrived for a
	// booking some earlier delivery already confirmed.
	AlreadyConfirmed bool
}

// PaymentReconciler applies a gateway-reported payment outcome to booking
// state exactly once, regardless of which channel (webhook or poll)
// delivers it first.
type PaymentReconciler interface {
	Apply(ctx context.Context, bookingID int32, outcome *gateway.PaymentOutcome, trigger gateway.TriggerContext) (*ReconcileResult, error)
}

type paymentReconciler struct {
	bookingRepo  repository.BookingRepository
	propertyRepo repository.PropertyRepository
	noteRepo     repository.NotificationRepository
	emailSvc     EmailService
	classifier   *gateway.Classifier
}

func NewPaymentReconciler(
	bookingRepo repository.BookingRepository,
	propertyRepo repository.PropertyRepository,
	noteRepo repository.NotificationRepository,
	emailSvc EmailService,
	classifier *gateway.Classifier,
) PaymentReconciler {
	return &paymentReconciler{
		bookingRepo:  bookingRepo,
		propertyRepo: propertyRepo,
		noteRepo:     noteRepo,
		emailSvc:     emailSvc,
		classifier:   classifier,
	}
}

func (r *paymentReconciler) Apply(ctx context.Context, bookingID int32, outcome *gateway.PaymentOutcome, trigger gateway.TriggerContext) (*ReconcileResult, error) {
	booking, err := r.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// A lapsed hold is cancelled before any outcome applies, so both
	// delivery channels agree: an expired booking is never confirmed,
	// regardless of whether the sweeper has run yet.
	if booking.IsExpired(time.Now()) {
		if _, err := r.bookingRepo.CancelIfPending(ctx, booking.ID); err != nil {
			return nil, err
		}
		booking.BookingStatus = domain.BookingStatusCancelled
		logger.Info("Expired booking hold force-cancelled before reconciliation", "booking_id", booking.ID)
	}

	class := r.classifier.Classify(outcome.ResultCode, trigger)
	logger.Info("Reconciling payment outcome",
		"booking_id", bookingID,
		"checkout_id", outcome.CheckoutID,
		"result_code", outcome.ResultCode,
		"classification", class.String(),
		"via_webhook", trigger == gateway.TriggerWebhook)

	switch class {
	case gateway.OutcomeSuccess:
		return r.applySuccess(ctx, booking, outcome, trigger)
	case gateway.OutcomePending:
		// Still processing on the gateway side: no state change, the
		// caller polls again later.
		return &ReconcileResult{Outcome: gateway.OutcomePending}, nil
	default:
		return r.applyFailure(ctx, booking, outcome, trigger)
	}
}

// applySuccess performs the confirmed transition. The conditional write in
// ConfirmPayment is the race guard: the inventory record and the
// confirmation notification happen only on the winning call.
func (r *paymentReconciler) applySuccess(ctx context.Context, booking *domain.Booking, outcome *gateway.PaymentOutcome, trigger gateway.TriggerContext) (*ReconcileResult, error) {
	details := snapshotFromOutcome(booking.ID, outcome, trigger)

	applied, err := r.bookingRepo.ConfirmPayment(ctx, booking.ID, outcome.TransactionID, details)
	if err != nil {
		return nil, fmt.Errorf("confirm payment: %w", err)
	}
	if !applied {
		if booking.BookingStatus == domain.BookingStatusConfirmed {
			return &ReconcileResult{Outcome: gateway.OutcomeSuccess, AlreadyConfirmed: true}, nil
		}
		// Success outcome for a booking that already went terminal some
		// other way (expired hold, cancellation). Needs manual follow-up.
		logger.Warn("Success outcome for terminal booking",
			"booking_id", booking.ID, "booking_status", booking.BookingStatus)
		return &ReconcileResult{Outcome: gateway.OutcomeSuccess}, nil
	}

	if _, err := r.bookingRepo.SettlePaymentAttempt(ctx, booking.ID, outcome.CheckoutID,
		domain.PaymentAttemptSuccess, outcome.ResultCode, outcome.ResultDescription); err != nil {
		logger.Error("Failed to settle payment attempt", "booking_id", booking.ID, "error", err)
	}

	rng := &domain.UnavailableRange{
		PropertyID: booking.PropertyID,
		BookingID:  &booking.ID,
		StartDate:  booking.CheckIn,
		EndDate:    booking.CheckOut,
		Reason:     "booking",
	}
	if err := r.propertyRepo.AddUnavailableRange(ctx, rng); err != nil {
		logger.Error("Failed to write inventory lock for confirmed booking",
			"booking_id", booking.ID, "property_id", booking.PropertyID, "error", err)
	}

	r.notifyConfirmed(ctx, booking)

	return &ReconcileResult{Outcome: gateway.OutcomeSuccess, Applied: true}, nil
}

// applyFailure performs the terminal-negative transition. No inventory
// effect.
func (r *paymentReconciler) applyFailure(ctx context.Context, booking *domain.Booking, outcome *gateway.PaymentOutcome, trigger gateway.TriggerContext) (*ReconcileResult, error) {
	details := snapshotFromOutcome(booking.ID, outcome, trigger)

	applied, err := r.bookingRepo.FailPayment(ctx, booking.ID, details)
	if err != nil {
		return nil, fmt.Errorf("fail payment: %w", err)
	}
	if !applied {
		return &ReconcileResult{Outcome: gateway.OutcomeRejected}, nil
	}

	if _, err := r.bookingRepo.SettlePaymentAttempt(ctx, booking.ID, outcome.CheckoutID,
		domain.PaymentAttemptFailed, outcome.ResultCode, outcome.ResultDescription); err != nil {
		logger.Error("Failed to settle payment attempt", "booking_id", booking.ID, "error", err)
	}

	r.notifyFailed(ctx, booking, outcome.ResultDescription)

	return &ReconcileResult{Outcome: gateway.OutcomeRejected, Applied: true}, nil
}

func (r *paymentReconciler) notifyConfirmed(ctx context.Context, booking *domain.Booking) {
	property, err := r.propertyRepo.GetByID(ctx, booking.PropertyID)
	if err != nil {
		logger.Error("Failed to load property for confirmation notice", "property_id", booking.PropertyID, "error", err)
		return
	}

	if booking.GuestEmail != "" {
		if err := r.emailSvc.SendBookingConfirmation(ctx, booking.GuestEmail, booking.GuestName,
			property.Name, booking.CheckIn, booking.CheckOut, booking.TotalCents, booking.Currency); err != nil {
			logger.Error("Failed to send confirmation email", "booking_id", booking.ID, "error", err)
		}
	}

	note := &domain.Notification{
		UserID:  booking.UserID,
		Title:   "Booking Confirmed",
		Message: fmt.Sprintf("Your booking at %s (%s to %s) is confirmed", property.Name, booking.CheckIn, booking.CheckOut),
		Attributes: map[string]string{
			"type":       "BOOKING_CONFIRMED",
			"booking_id": fmt.Sprintf("%d", booking.ID),
		},
	}
	if err := r.noteRepo.Create(ctx, note); err != nil {
		logger.Error("Failed to create confirmation notification", "booking_id", booking.ID, "error", err)
	}
}

func (r *paymentReconciler) notifyFailed(ctx context.Context, booking *domain.Booking, reason string) {
	property, err := r.propertyRepo.GetByID(ctx, booking.PropertyID)
	if err != nil {
		logger.Error("Failed to load property for failure notice", "property_id", booking.PropertyID, "error", err)
		return
	}

	if booking.GuestEmail != "" {
		if err := r.emailSvc.SendPaymentFailure(ctx, booking.GuestEmail, booking.GuestName, property.Name, reason); err != nil {
			logger.Error("Failed to send payment failure email", "booking_id", booking.ID, "error", err)
		}
	}

	note := &domain.Notification{
		UserID:  booking.UserID,
		Title:   "Payment Failed",
		Message: fmt.Sprintf("Payment for your booking at %s failed: %s", property.Name, reason),
		Attributes: map[string]string{
			"type":       "PAYMENT_FAILED",
			"booking_id": fmt.Sprintf("%d", booking.ID),
		},
	}
	if err := r.noteRepo.Create(ctx, note); err != nil {
		logger.Error("Failed to create failure notification", "booking_id", booking.ID, "error", err)
	}
}

func snapshotFromOutcome(bookingID int32, outcome *gateway.PaymentOutcome, trigger gateway.TriggerContext) *domain.PaymentDetails {
	return &domain.PaymentDetails{
		BookingID:         bookingID,
		Brand:             outcome.Brand,
		AmountCents:       outcome.AmountCents,
		Currency:          outcome.Currency,
		ResultCode:        outcome.ResultCode,
		ResultDescription: outcome.ResultDescription,
		CardBin:           outcome.CardBin,
		CardLast4:         outcome.CardLast4,
		ViaWebhook:        trigger == gateway.TriggerWebhook,
		ReceivedOn:        outcome.Timestamp,
	}
}
