package domain

import "time"

type Property struct {
	ID      int32  `json:"id"`
	OwnerID int32  `json:"owner_id"`
	Name    string `json:"name"`
	City    string `json:"city"`
	Country string `json:"country"`

	// Nightly price card, snapshotted onto bookings at creation.
	UnitPriceCents   int32  `json:"unit_price_cents"`
	CleaningFeeCents int32  `json:"cleaning_fee_cents"`
	ServiceFeeCents  int32  `json:"service_fee_cents"`
	TaxRateBps       int32  `json:"tax_rate_bps"`
	VATRateBps       int32  `json:"vat_rate_bps"`
	Currency         string `json:"currency"`

	MaxGuests int32 `json:"max_guests"`
	Blocked   bool  `json:"blocked"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// UnavailableRange marks a property as unbookable for overlapping stays.
// Rows are written by the confirmed-payment transition (BookingID set) or
// by the host blocking dates manually (BookingID nil).
type UnavailableRange struct {
	ID         int32     `json:"id"`
	PropertyID int32     `json:"property_id"`
	BookingID  *int32    `json:"booking_id,omitempty"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	Reason     string    `json:"reason,omitempty"`
	CreatedOn  time.Time `json:"created_on"`
}
