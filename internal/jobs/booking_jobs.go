package jobs

import (
	"context"
	"time"

	"stayhub-backend/internal/logger"
)

// ExpireStaleBookings cancels pending bookings whose payment hold lapsed.
// This is the sweep half of expiry; request paths also force-cancel
// lazily, so the conditional update tolerates either side winning. Both
// halves touch booking_status only, payment_status keeps whatever the
// last gateway outcome recorded.
func (jr *JobRunner) ExpireStaleBookings() {
	jr.runWithRecovery("ExpireStaleBookings", func() {
		ctx := context.Background()

		query := `
			UPDATE bookings
			SET booking_status = 'cancelled',
			    updated_on = NOW()
			WHERE booking_status = 'pending'
			  AND expires_at IS NOT NULL
			  AND expires_at < $1
			RETURNING id, user_id, property_id, guest_name, guest_email
		`

		rows, err := jr.db.QueryContext(ctx, query, time.Now())
		if err != nil {
			logger.Error("Failed to expire stale bookings", "error", err)
			return
		}
		defer rows.Close()

		type expired struct {
			ID         int32
			UserID     int32
			PropertyID int32
			GuestName  string
			GuestEmail string
		}

		var expiredBookings []expired
		for rows.Next() {
			var e expired
			if err := rows.Scan(&e.ID, &e.UserID, &e.PropertyID, &e.GuestName, &e.GuestEmail); err != nil {
				logger.Error("Failed to scan expired booking", "error", err)
				continue
			}
			expiredBookings = append(expiredBookings, e)
		}
		if err := rows.Err(); err != nil {
			logger.Error("Error iterating expired bookings", "error", err)
			return
		}

		logger.Info("Expired stale booking holds", "count", len(expiredBookings))

		for _, e := range expiredBookings {
			logger.Debug("Cancelled expired booking hold",
				"booking_id", e.ID,
				"user_id", e.UserID,
				"property_id", e.PropertyID)

			if e.GuestEmail == "" {
				continue
			}
			property, err := jr.store.PropertyRepository.GetByID(ctx, e.PropertyID)
			if err != nil {
				logger.Error("Failed to load property for expiry email", "property_id", e.PropertyID, "error", err)
				continue
			}
			if err := jr.services.Email.SendBookingExpired(ctx, e.GuestEmail, e.GuestName, property.Name); err != nil {
				logger.Error("Failed to send expiry email", "booking_id", e.ID, "error", err)
			}
		}
	})
}
