package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusNoShow    BookingStatus = "no-show"
)

type PaymentStatus string

const (
	PaymentStatusPending             PaymentStatus = "pending"
	PaymentStatusPendingVerification PaymentStatus = "pending-verification"
	PaymentStatusConfirmed           PaymentStatus = "confirmed"
	PaymentStatusFailed              PaymentStatus = "failed"
	PaymentStatusRefunded            PaymentStatus = "refunded"
)

type PricingPeriod string

const (
	PricingPeriodNight PricingPeriod = "night"
	PricingPeriodWeek  PricingPeriod = "week"
	PricingPeriodMonth PricingPeriod = "month"
	PricingPeriodYear  PricingPeriod = "year"
)

type Booking struct {
	ID         int32 `json:"id"`
	UserID     int32 `json:"user_id"`
	PropertyID int32 `json:"property_id"`

	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
	Guests   int32  `json:"guests"`

	// Price snapshot, captured from the property at booking creation.
	// All later flows use these values, not live property prices.
	PricingPeriod    PricingPeriod `json:"pricing_period"`
	UnitCount        int32         `json:"unit_count"`
	UnitPriceCents   int32         `json:"unit_price_cents"`
	SubtotalCents    int32         `json:"subtotal_cents"`
	CleaningFeeCents int32         `json:"cleaning_fee_cents"`
	ServiceFeeCents  int32         `json:"service_fee_cents"`
	TaxCents         int32         `json:"tax_cents"`
	VATCents         int32         `json:"vat_cents"`
	TotalCents       int32         `json:"total_cents"`
	Currency         string        `json:"currency"`

	// Guest contact, attached in a second step before confirmation.
	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email"`
	GuestPhone string `json:"guest_phone"`

	BookingStatus BookingStatus `json:"booking_status"`
	PaymentStatus PaymentStatus `json:"payment_status"`

	CheckoutID           *string `json:"checkout_id,omitempty"`
	PaymentTransactionID *string `json:"payment_transaction_id,omitempty"`
	PaymentMethod        string  `json:"payment_method,omitempty"`

	// ExpiresAt voids an unpaid pending booking; cleared once payment
	// is confirmed.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	CheckedOut bool   `json:"checked_out"`
	Rated      bool   `json:"rated"`
	ReviewID   *int32 `json:"review_id,omitempty"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// IsExpired reports whether the booking hold has lapsed without payment.
// Terminal bookings never expire; their ExpiresAt is cleared or ignored.
func (b *Booking) IsExpired(now time.Time) bool {
	return b.BookingStatus == BookingStatusPending &&
		b.ExpiresAt != nil && b.ExpiresAt.Before(now)
}

// HasGuestDetails reports whether the second-step contact capture happened.
func (b *Booking) HasGuestDetails() bool {
	return b.GuestName != "" && b.GuestEmail != "" && b.GuestPhone != ""
}

type PaymentAttemptStatus string

const (
	PaymentAttemptInitiated PaymentAttemptStatus = "initiated"
	PaymentAttemptSuccess   PaymentAttemptStatus = "success"
	PaymentAttemptFailed    PaymentAttemptStatus = "failed"
)

// PaymentAttempt is one entry of a booking's append-only payment trail.
// Status moves initiated → success|failed exactly once; everything else
// is immutable after insert.
type PaymentAttempt struct {
	ID                int32                `json:"id"`
	BookingID         int32                `json:"booking_id"`
	CheckoutID        string               `json:"checkout_id"`
	Reference         string               `json:"reference"`
	Status            PaymentAttemptStatus `json:"status"`
	ResultCode        string               `json:"result_code,omitempty"`
	ResultDescription string               `json:"result_description,omitempty"`
	CreatedOn         time.Time            `json:"created_on"`
	SettledOn         *time.Time           `json:"settled_on,omitempty"`
}

// PaymentDetails is the settled-payment snapshot written when the gateway
// reports a terminal outcome.
type PaymentDetails struct {
	BookingID         int32     `json:"booking_id"`
	Brand             string    `json:"brand"`
	AmountCents       int32     `json:"amount_cents"`
	Currency          string    `json:"currency"`
	ResultCode        string    `json:"result_code"`
	ResultDescription string    `json:"result_description"`
	CardBin           string    `json:"card_bin,omitempty"`
	CardLast4         string    `json:"card_last4,omitempty"`
	ViaWebhook        bool      `json:"via_webhook"`
	ReceivedOn        time.Time `json:"received_on"`
}
