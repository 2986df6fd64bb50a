package postgres

import (
	"context"
	"database/sql"
	"time"

	"stayhub-backend/internal/domain"
	"stayhub-backend/internal/repository"
)

type propertyRepository struct {
	db *sql.DB
}

func NewPropertyRepository(db *sql.DB) repository.PropertyRepository {
	return &propertyRepository{db: db}
}

func (r *propertyRepository) GetByID(ctx context.Context, id int32) (*domain.Property, error) {
	p := &domain.Property{}
	query := `SELECT id, owner_id, name, city, country, unit_price_cents, cleaning_fee_cents, service_fee_cents,
	            tax_rate_bps, vat_rate_bps, currency, max_guests, blocked, created_on, updated_on
	          FROM properties WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.OwnerID, &p.Name, &p.City, &p.Country, &p.UnitPriceCents, &p.CleaningFeeCents, &p.ServiceFeeCents,
		&p.TaxRateBps, &p.VATRateBps, &p.Currency, &p.MaxGuests, &p.Blocked, &p.CreatedOn, &p.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *propertyRepository) AddUnavailableRange(ctx context.Context, rng *domain.UnavailableRange) error {
	query := `INSERT INTO property_unavailable_dates (property_id, booking_id, start_date, end_date, reason, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		rng.PropertyID, rng.BookingID, rng.StartDate, rng.EndDate, rng.Reason, time.Now(),
	).Scan(&rng.ID)
}

func (r *propertyRepository) ReleaseUnavailableRange(ctx context.Context, bookingID int32) error {
	query := `DELETE FROM property_unavailable_dates WHERE booking_id = $1`
	_, err := r.db.ExecContext(ctx, query, bookingID)
	return err
}

func (r *propertyRepository) ListUnavailableRanges(ctx context.Context, propertyID int32) ([]domain.UnavailableRange, error) {
	query := `SELECT id, property_id, booking_id, start_date, end_date, reason, created_on
	          FROM property_unavailable_dates WHERE property_id = $1 ORDER BY start_date ASC`
	rows, err := r.db.QueryContext(ctx, query, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ranges []domain.UnavailableRange
	for rows.Next() {
		var rng domain.UnavailableRange
		if err := rows.Scan(&rng.ID, &rng.PropertyID, &rng.BookingID, &rng.StartDate, &rng.EndDate, &rng.Reason, &rng.CreatedOn); err != nil {
			return nil, err
		}
		ranges = append(ranges, rng)
	}
	return ranges, rows.Err()
}

// IsRangeAvailable uses the canonical half-open interval predicate: two
// ranges overlap iff each starts before the other ends.
func (r *propertyRepository) IsRangeAvailable(ctx context.Context, propertyID int32, checkIn, checkOut string) (bool, error) {
	var count int32
	query := `SELECT count(*) FROM property_unavailable_dates
	          WHERE property_id = $1 AND start_date < $3 AND $2 < end_date`
	err := r.db.QueryRowContext(ctx, query, propertyID, checkIn, checkOut).Scan(&count)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
