package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"stayhub-backend/internal/domain"
	"stayhub-backend/internal/repository/postgres"
)

func testDetails() *domain.PaymentDetails {
	return &domain.PaymentDetails{
		BookingID:         42,
		Brand:             "VISA",
		AmountCents:       48000,
		Currency:          "EUR",
		ResultCode:        "000.000.000",
		ResultDescription: "Transaction succeeded",
		CardBin:           "411111",
		CardLast4:         "1111",
		ViaWebhook:        true,
		ReceivedOn:        time.Now(),
	}
}

func TestBookingRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewBookingRepository(db)
	ctx := context.Background()

	expires := time.Now().Add(30 * time.Minute)
	b := &domain.Booking{
		UserID:         1,
		PropertyID:     7,
		CheckIn:        "2026-09-10",
		CheckOut:       "2026-09-14",
		Guests:         2,
		PricingPeriod:  domain.PricingPeriodNight,
		UnitCount:      4,
		UnitPriceCents: 10000,
		SubtotalCents:  40000,
		TaxCents:       4000,
		TotalCents:     47000,
		Currency:       "EUR",
		BookingStatus:  domain.BookingStatusPending,
		PaymentStatus:  domain.PaymentStatusPending,
		ExpiresAt:      &expires,
	}

	mock.ExpectQuery("INSERT INTO bookings").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	err = repo.Create(ctx, b)
	assert.NoError(t, err)
	assert.Equal(t, int32(42), b.ID)
}

func TestBookingRepository_ConfirmPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("Winner Flips Booking And Writes Snapshot", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()

		repo := postgres.NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE bookings").
			WithArgs(domain.BookingStatusConfirmed, domain.PaymentStatusConfirmed, "tx-100", sqlmock.AnyArg(), int32(42), domain.BookingStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO booking_payment_details").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		applied, err := repo.ConfirmPayment(ctx, 42, "tx-100", testDetails())
		assert.NoError(t, err)
		assert.True(t, applied)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Loser Sees Zero Rows And Rolls Back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()

		repo := postgres.NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE bookings").
			WithArgs(domain.BookingStatusConfirmed, domain.PaymentStatusConfirmed, "tx-100", sqlmock.AnyArg(), int32(42), domain.BookingStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		applied, err := repo.ConfirmPayment(ctx, 42, "tx-100", testDetails())
		assert.NoError(t, err)
		assert.False(t, applied)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_FailPayment(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewBookingRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings").
		WithArgs(domain.BookingStatusCancelled, domain.PaymentStatusFailed, sqlmock.AnyArg(), int32(42), domain.BookingStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO booking_payment_details").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	applied, err := repo.FailPayment(ctx, 42, testDetails())
	assert.NoError(t, err)
	assert.True(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_ConfirmPayAtProperty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewBookingRepository(db)
	ctx := context.Background()

	t.Run("Pending Booking Confirms", func(t *testing.T) {
		mock.ExpectExec("UPDATE bookings").
			WithArgs(domain.BookingStatusConfirmed, domain.PaymentStatusPending, "cash", sqlmock.AnyArg(), int32(42), domain.BookingStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))

		applied, err := repo.ConfirmPayAtProperty(ctx, 42, "cash")
		assert.NoError(t, err)
		assert.True(t, applied)
	})

	t.Run("Terminal Booking Is Untouched", func(t *testing.T) {
		mock.ExpectExec("UPDATE bookings").
			WithArgs(domain.BookingStatusConfirmed, domain.PaymentStatusPending, "cash", sqlmock.AnyArg(), int32(42), domain.BookingStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 0))

		applied, err := repo.ConfirmPayAtProperty(ctx, 42, "cash")
		assert.NoError(t, err)
		assert.False(t, applied)
	})
}

func TestBookingRepository_CancelIfPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewBookingRepository(db)
	ctx := context.Background()

	mock.ExpectExec("UPDATE bookings").
		WithArgs(domain.BookingStatusCancelled, sqlmock.AnyArg(), int32(42), domain.BookingStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	applied, err := repo.CancelIfPending(ctx, 42)
	assert.NoError(t, err)
	assert.True(t, applied)
}

func TestBookingRepository_SettlePaymentAttempt(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewBookingRepository(db)
	ctx := context.Background()

	t.Run("Initiated Attempt Settles", func(t *testing.T) {
		mock.ExpectExec("UPDATE booking_payment_attempts").
			WithArgs(domain.PaymentAttemptSuccess, "000.000.000", "ok", sqlmock.AnyArg(), int32(42), "chk-1", domain.PaymentAttemptInitiated).
			WillReturnResult(sqlmock.NewResult(0, 1))

		applied, err := repo.SettlePaymentAttempt(ctx, 42, "chk-1", domain.PaymentAttemptSuccess, "000.000.000", "ok")
		assert.NoError(t, err)
		assert.True(t, applied)
	})

	t.Run("Settled Attempt Stays Settled", func(t *testing.T) {
		mock.ExpectExec("UPDATE booking_payment_attempts").
			WithArgs(domain.PaymentAttemptFailed, "800.100.151", "declined", sqlmock.AnyArg(), int32(42), "chk-1", domain.PaymentAttemptInitiated).
			WillReturnResult(sqlmock.NewResult(0, 0))

		applied, err := repo.SettlePaymentAttempt(ctx, 42, "chk-1", domain.PaymentAttemptFailed, "800.100.151", "declined")
		assert.NoError(t, err)
		assert.False(t, applied)
	})
}
