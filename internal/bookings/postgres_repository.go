package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores bookings in the bookings table.
type PostgresRepository struct {
	db pgxQuerier
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("bookings: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithQuerier(db pgxQuerier) *PostgresRepository {
	if db == nil {
		panic("bookings: querier required")
	}
	return &PostgresRepository{db: db}
}

const bookingColumns = `id::text, session_id, customer_name, customer_email, customer_phone, service_type,
	pickup_location, dropoff_location, booking_date::text, booking_time::text, passenger_count,
	vehicle_preference, special_requirements, status, created_at`

// Create inserts one row. Date and time are cast server side so malformed values are rejected.
// A second insert for the same session hits the unique session index and returns the stored row.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateBookingRequest) (*Booking, bool, error) {
	if err := req.Validate(); err != nil {
		return nil, false, err
	}
	id := uuid.New()
	query := `
		INSERT INTO bookings (
			id, session_id, customer_name, customer_email, customer_phone, service_type,
			pickup_location, dropoff_location, booking_date, booking_time, passenger_count,
			vehicle_preference, special_requirements, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::date, $10::time, $11, $12, $13, $14)
		ON CONFLICT (session_id) DO UPDATE SET session_id = EXCLUDED.session_id
		RETURNING id::text, created_at, (xmax = 0) AS inserted
	`
	var (
		storedID  string
		createdAt time.Time
		inserted  bool
	)
	if err := r.db.QueryRow(ctx, query,
		id,
		req.SessionID,
		req.CustomerName,
		req.CustomerEmail,
		req.CustomerPhone,
		req.ServiceType,
		req.PickupLocation,
		req.DropoffLocation,
		req.BookingDate,
		req.BookingTime,
		req.PassengerCount,
		req.VehiclePreference,
		req.SpecialRequirements,
		StatusPending,
	).Scan(&storedID, &createdAt, &inserted); err != nil {
		return nil, false, fmt.Errorf("bookings: insert failed: %w", err)
	}
	if inserted {
		return req.toBooking(storedID, createdAt), true, nil
	}
	existing, err := r.GetByID(ctx, storedID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrBookingNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	booking, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("bookings: select failed: %w", err)
	}
	return booking, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*Booking, error) {
	filter = filter.normalized()
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, filter.Status, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("bookings: list failed: %w", err)
	}
	defer rows.Close()

	out := []*Booking{}
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("bookings: scan failed: %w", err)
		}
		out = append(out, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bookings: list failed: %w", err)
	}
	return out, nil
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	if err := row.Scan(
		&b.ID,
		&b.SessionID,
		&b.CustomerName,
		&b.CustomerEmail,
		&b.CustomerPhone,
		&b.ServiceType,
		&b.PickupLocation,
		&b.DropoffLocation,
		&b.BookingDate,
		&b.BookingTime,
		&b.PassengerCount,
		&b.VehiclePreference,
		&b.SpecialRequirements,
		&b.Status,
		&b.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}
