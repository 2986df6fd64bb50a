package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStayRange(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		r, err := ParseStayRange("2026-09-10", "2026-09-14")
		assert.NoError(t, err)
		assert.Equal(t, int32(4), r.Nights())
	})

	t.Run("Checkout Equals Checkin", func(t *testing.T) {
		_, err := ParseStayRange("2026-09-10", "2026-09-10")
		assert.Error(t, err)
	})

	t.Run("Checkout Before Checkin", func(t *testing.T) {
		_, err := ParseStayRange("2026-09-14", "2026-09-10")
		assert.Error(t, err)
	})

	t.Run("Bad Format", func(t *testing.T) {
		_, err := ParseStayRange("10/09/2026", "2026-09-14")
		assert.Error(t, err)
	})
}

func TestStayRange_Overlaps(t *testing.T) {
	overlap := func(aIn, aOut, bIn, bOut string) bool {
		got, err := RangesOverlap(aIn, aOut, bIn, bOut)
		assert.NoError(t, err)
		return got
	}

	t.Run("Starts During Other", func(t *testing.T) {
		assert.True(t, overlap("2026-09-12", "2026-09-16", "2026-09-10", "2026-09-14"))
	})

	t.Run("Ends During Other", func(t *testing.T) {
		assert.True(t, overlap("2026-09-08", "2026-09-12", "2026-09-10", "2026-09-14"))
	})

	t.Run("Contains Other", func(t *testing.T) {
		assert.True(t, overlap("2026-09-08", "2026-09-16", "2026-09-10", "2026-09-14"))
	})

	t.Run("Contained By Other", func(t *testing.T) {
		assert.True(t, overlap("2026-09-11", "2026-09-13", "2026-09-10", "2026-09-14"))
	})

	t.Run("Identical", func(t *testing.T) {
		assert.True(t, overlap("2026-09-10", "2026-09-14", "2026-09-10", "2026-09-14"))
	})

	t.Run("Disjoint Before", func(t *testing.T) {
		assert.False(t, overlap("2026-09-01", "2026-09-05", "2026-09-10", "2026-09-14"))
	})

	t.Run("Disjoint After", func(t *testing.T) {
		assert.False(t, overlap("2026-09-20", "2026-09-24", "2026-09-10", "2026-09-14"))
	})

	t.Run("Back To Back Does Not Overlap", func(t *testing.T) {
		// Half-open ranges: checkout day is free for the next check-in.
		assert.False(t, overlap("2026-09-10", "2026-09-14", "2026-09-14", "2026-09-18"))
		assert.False(t, overlap("2026-09-06", "2026-09-10", "2026-09-10", "2026-09-14"))
	})
}
