package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"stayhub-backend/internal/domain"
	"stayhub-backend/internal/repository"

	"github.com/lib/pq"
)

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

const bookingColumns = `id, user_id, property_id, check_in, check_out, guests, pricing_period, unit_count,
	unit_price_cents, subtotal_cents, cleaning_fee_cents, service_fee_cents, tax_cents, vat_cents, total_cents, currency,
	guest_name, guest_email, guest_phone, booking_status, payment_status,
	checkout_id, payment_transaction_id, payment_method, expires_at,
	checked_out, rated, review_id, created_on, updated_on`

func scanBooking(row interface{ Scan(...interface{}) error }) (*domain.Booking, error) {
	b := &domain.Booking{}
	err := row.Scan(
		&b.ID, &b.UserID, &b.PropertyID, &b.CheckIn, &b.CheckOut, &b.Guests, &b.PricingPeriod, &b.UnitCount,
		&b.UnitPriceCents, &b.SubtotalCents, &b.CleaningFeeCents, &b.ServiceFeeCents, &b.TaxCents, &b.VATCents, &b.TotalCents, &b.Currency,
		&b.GuestName, &b.GuestEmail, &b.GuestPhone, &b.BookingStatus, &b.PaymentStatus,
		&b.CheckoutID, &b.PaymentTransactionID, &b.PaymentMethod, &b.ExpiresAt,
		&b.CheckedOut, &b.Rated, &b.ReviewID, &b.CreatedOn, &b.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	query := `INSERT INTO bookings (user_id, property_id, check_in, check_out, guests, pricing_period, unit_count,
	            unit_price_cents, subtotal_cents, cleaning_fee_cents, service_fee_cents, tax_cents, vat_cents, total_cents, currency,
	            booking_status, payment_status, expires_at, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20) RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query,
		b.UserID, b.PropertyID, b.CheckIn, b.CheckOut, b.Guests, b.PricingPeriod, b.UnitCount,
		b.UnitPriceCents, b.SubtotalCents, b.CleaningFeeCents, b.ServiceFeeCents, b.TaxCents, b.VATCents, b.TotalCents, b.Currency,
		b.BookingStatus, b.PaymentStatus, b.ExpiresAt, now, now,
	).Scan(&b.ID)
}

func (r *bookingRepository) GetByID(ctx context.Context, id int32) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return scanBooking(r.db.QueryRowContext(ctx, query, id))
}

func (r *bookingRepository) ListByUser(ctx context.Context, userID int32, statuses []domain.BookingStatus) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1`
	args := []interface{}{userID}
	if len(statuses) > 0 {
		ss := make([]string, len(statuses))
		for i, s := range statuses {
			ss[i] = string(s)
		}
		query += ` AND booking_status = ANY($2)`
		args = append(args, pq.Array(ss))
	}
	query += ` ORDER BY created_on DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *bookingRepository) SetGuestDetails(ctx context.Context, id int32, name, email, phone string) error {
	query := `UPDATE bookings SET guest_name=$1, guest_email=$2, guest_phone=$3, updated_on=$4 WHERE id=$5`
	_, err := r.db.ExecContext(ctx, query, name, email, phone, time.Now(), id)
	return err
}

func (r *bookingRepository) SetCheckout(ctx context.Context, id int32, checkoutID string) error {
	query := `UPDATE bookings SET checkout_id=$1, payment_status=$2, updated_on=$3 WHERE id=$4`
	_, err := r.db.ExecContext(ctx, query, checkoutID, domain.PaymentStatusPendingVerification, time.Now(), id)
	return err
}

// ConfirmPayment is the success half of the reconciliation transition. The
// status guard makes it a compare-and-swap: whichever of the racing webhook
// and poll deliveries runs first flips the booking, the other sees zero rows.
func (r *bookingRepository) ConfirmPayment(ctx context.Context, id int32, transactionID string, details *domain.PaymentDetails) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	query := `UPDATE bookings
	          SET booking_status=$1, payment_status=$2, payment_transaction_id=$3, expires_at=NULL, updated_on=$4
	          WHERE id=$5 AND booking_status=$6`
	res, err := tx.ExecContext(ctx, query,
		domain.BookingStatusConfirmed, domain.PaymentStatusConfirmed, transactionID, time.Now(),
		id, domain.BookingStatusPending)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	if err := insertPaymentDetails(ctx, tx, details); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// FailPayment is the decline half of the reconciliation transition, guarded
// the same way as ConfirmPayment.
func (r *bookingRepository) FailPayment(ctx context.Context, id int32, details *domain.PaymentDetails) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	query := `UPDATE bookings
	          SET booking_status=$1, payment_status=$2, updated_on=$3
	          WHERE id=$4 AND booking_status=$5`
	res, err := tx.ExecContext(ctx, query,
		domain.BookingStatusCancelled, domain.PaymentStatusFailed, time.Now(),
		id, domain.BookingStatusPending)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	if err := insertPaymentDetails(ctx, tx, details); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *bookingRepository) ConfirmPayAtProperty(ctx context.Context, id int32, paymentMethod string) (bool, error) {
	query := `UPDATE bookings
	          SET booking_status=$1, payment_status=$2, payment_method=$3, expires_at=NULL, updated_on=$4
	          WHERE id=$5 AND booking_status=$6`
	res, err := r.db.ExecContext(ctx, query,
		domain.BookingStatusConfirmed, domain.PaymentStatusPending, paymentMethod, time.Now(),
		id, domain.BookingStatusPending)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *bookingRepository) CancelIfPending(ctx context.Context, id int32) (bool, error) {
	query := `UPDATE bookings SET booking_status=$1, updated_on=$2 WHERE id=$3 AND booking_status=$4`
	res, err := r.db.ExecContext(ctx, query,
		domain.BookingStatusCancelled, time.Now(), id, domain.BookingStatusPending)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *bookingRepository) Cancel(ctx context.Context, id int32) error {
	query := `UPDATE bookings SET booking_status=$1, updated_on=$2 WHERE id=$3`
	_, err := r.db.ExecContext(ctx, query, domain.BookingStatusCancelled, time.Now(), id)
	return err
}

func (r *bookingRepository) AppendPaymentAttempt(ctx context.Context, a *domain.PaymentAttempt) error {
	query := `INSERT INTO booking_payment_attempts (booking_id, checkout_id, reference, status, result_code, result_description, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		a.BookingID, a.CheckoutID, a.Reference, a.Status, a.ResultCode, a.ResultDescription, time.Now(),
	).Scan(&a.ID)
}

func (r *bookingRepository) SettlePaymentAttempt(ctx context.Context, bookingID int32, checkoutID string, status domain.PaymentAttemptStatus, code, description string) (bool, error) {
	query := `UPDATE booking_payment_attempts
	          SET status=$1, result_code=$2, result_description=$3, settled_on=$4
	          WHERE booking_id=$5 AND checkout_id=$6 AND status=$7`
	res, err := r.db.ExecContext(ctx, query,
		status, code, description, time.Now(),
		bookingID, checkoutID, domain.PaymentAttemptInitiated)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *bookingRepository) ListPaymentAttempts(ctx context.Context, bookingID int32) ([]domain.PaymentAttempt, error) {
	query := `SELECT id, booking_id, checkout_id, reference, status, result_code, result_description, created_on, settled_on
	          FROM booking_payment_attempts WHERE booking_id = $1 ORDER BY created_on ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []domain.PaymentAttempt
	for rows.Next() {
		var a domain.PaymentAttempt
		if err := rows.Scan(&a.ID, &a.BookingID, &a.CheckoutID, &a.Reference, &a.Status, &a.ResultCode, &a.ResultDescription, &a.CreatedOn, &a.SettledOn); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

func (r *bookingRepository) GetPaymentDetails(ctx context.Context, bookingID int32) (*domain.PaymentDetails, error) {
	d := &domain.PaymentDetails{}
	query := `SELECT booking_id, brand, amount_cents, currency, result_code, result_description, card_bin, card_last4, via_webhook, received_on
	          FROM booking_payment_details WHERE booking_id = $1`
	err := r.db.QueryRowContext(ctx, query, bookingID).Scan(
		&d.BookingID, &d.Brand, &d.AmountCents, &d.Currency, &d.ResultCode, &d.ResultDescription,
		&d.CardBin, &d.CardLast4, &d.ViaWebhook, &d.ReceivedOn)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func insertPaymentDetails(ctx context.Context, tx *sql.Tx, d *domain.PaymentDetails) error {
	if d == nil {
		return fmt.Errorf("payment details required")
	}
	query := `INSERT INTO booking_payment_details (booking_id, brand, amount_cents, currency, result_code, result_description, card_bin, card_last4, via_webhook, received_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := tx.ExecContext(ctx, query,
		d.BookingID, d.Brand, d.AmountCents, d.Currency, d.ResultCode, d.ResultDescription,
		d.CardBin, d.CardLast4, d.ViaWebhook, d.ReceivedOn)
	return err
}
