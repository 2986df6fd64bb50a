package service

import "errors"

// Sentinel errors carried across the service boundary. The HTTP layer maps
// each to a status code and a machine-readable reason; none of them is
// fatal to the process.
var (
	ErrNotFound            = errors.New("booking not found")
	ErrPropertyNotFound    = errors.New("property not found")
	ErrUnauthorized        = errors.New("caller does not own this booking")
	ErrAccountBlocked      = errors.New("account is blocked")
	ErrPropertyBlocked     = errors.New("property is not accepting bookings")
	ErrDatesUnavailable    = errors.New("requested dates are unavailable")
	ErrBookingExpired      = errors.New("booking expired")
	ErrAlreadyConfirmed    = errors.New("booking already confirmed")
	ErrGuestDetailsMissing = errors.New("guest details missing")
	ErrInvalidInput        = errors.New("invalid input")
)
