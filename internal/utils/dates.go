package utils

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for all calendar dates (no time component).
const DateLayout = "2006-01-02"

// StayRange is a half-open [CheckIn, CheckOut) interval of calendar dates.
// A guest checking out on a given day does not block that day for the next
// check-in.
type StayRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// ParseDate converts a yyyy-mm-dd formatted string into a UTC midnight time.
func ParseDate(dateStr string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, dateStr, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected yyyy-mm-dd: %w", dateStr, err)
	}
	return d, nil
}

// ParseStayRange parses and validates a check-in/check-out pair.
// Check-out must be strictly after check-in (minimum one night).
func ParseStayRange(checkIn, checkOut string) (StayRange, error) {
	in, err := ParseDate(checkIn)
	if err != nil {
		return StayRange{}, fmt.Errorf("check-in: %w", err)
	}
	out, err := ParseDate(checkOut)
	if err != nil {
		return StayRange{}, fmt.Errorf("check-out: %w", err)
	}
	if !out.After(in) {
		return StayRange{}, fmt.Errorf("check-out %s must be after check-in %s", checkOut, checkIn)
	}
	return StayRange{CheckIn: in, CheckOut: out}, nil
}

// Nights returns the stay length in nights.
func (r StayRange) Nights() int32 {
	return int32(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
}

// Overlaps reports whether two stay ranges share at least one night.
// All four arrangements are covered:
//   - candidate starts during existing
//   - candidate ends during existing
//   - candidate contains existing
//   - existing contains candidate
func (r StayRange) Overlaps(other StayRange) bool {
	startsDuring := !r.CheckIn.Before(other.CheckIn) && r.CheckIn.Before(other.CheckOut)
	endsDuring := other.CheckIn.Before(r.CheckOut) && !other.CheckOut.Before(r.CheckOut)
	containsOther := !other.CheckIn.Before(r.CheckIn) && !other.CheckOut.After(r.CheckOut)
	containedByOther := !r.CheckIn.Before(other.CheckIn) && !r.CheckOut.After(other.CheckOut)
	return startsDuring || endsDuring || containsOther || containedByOther
}

// RangesOverlap is the string-date convenience form of StayRange.Overlaps.
func RangesOverlap(aIn, aOut, bIn, bOut string) (bool, error) {
	a, err := ParseStayRange(aIn, aOut)
	if err != nil {
		return false, err
	}
	b, err := ParseStayRange(bIn, bOut)
	if err != nil {
		return false, err
	}
	return a.Overlaps(b), nil
}
