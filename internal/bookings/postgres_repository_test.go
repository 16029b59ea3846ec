package bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func validRequest() *CreateBookingRequest {
	return &CreateBookingRequest{
		SessionID:       "sess-1",
		CustomerName:    "John Smith",
		CustomerEmail:   "john@example.com",
		CustomerPhone:   "07700 900123",
		ServiceType:     "Airport Transfer",
		PickupLocation:  "Manchester Airport",
		DropoffLocation: "city centre",
		BookingDate:     "2025-12-25",
		BookingTime:     "17:00:00",
		PassengerCount:  3,
	}
}

func TestPostgresRepositoryCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newPostgresRepositoryWithQuerier(mock)
	req := validRequest()
	created := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)

	id := "6f1c1f0e-6b5e-4a55-9d0b-3f1f1f7a2a11"
	mock.ExpectQuery("(?s)INSERT INTO bookings .* ON CONFLICT \\(session_id\\)").
		WithArgs(pgxmock.AnyArg(), "sess-1", "John Smith", "john@example.com", "07700 900123", "Airport Transfer",
			"Manchester Airport", "city centre", "2025-12-25", "17:00:00", 3, "", "", StatusPending).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "inserted"}).AddRow(id, created, true))

	booking, inserted, err := repo.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if !inserted {
		t.Fatalf("expected a new row")
	}
	if booking.ID != id {
		t.Fatalf("id = %q, want %q", booking.ID, id)
	}
	if booking.Status != StatusPending {
		t.Fatalf("status = %q, want pending", booking.Status)
	}
	if !booking.CreatedAt.Equal(created) {
		t.Fatalf("created_at = %v, want %v", booking.CreatedAt, created)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresRepositoryCreateRejectsInvalid(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	req := validRequest()
	req.PassengerCount = 0
	_, _, err = newPostgresRepositoryWithQuerier(mock).Create(context.Background(), req)
	if !errors.Is(err, ErrInvalidPassenger) {
		t.Fatalf("expected ErrInvalidPassenger, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected queries: %v", err)
	}
}

func TestPostgresRepositoryCreateExistingSession(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()
	repo := newPostgresRepositoryWithQuerier(mock)

	id := "6f1c1f0e-6b5e-4a55-9d0b-3f1f1f7a2a11"
	created := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO bookings").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "inserted"}).AddRow(id, created, false))
	mock.ExpectQuery("FROM bookings WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "session_id", "customer_name", "customer_email", "customer_phone", "service_type",
			"pickup_location", "dropoff_location", "booking_date", "booking_time", "passenger_count",
			"vehicle_preference", "special_requirements", "status", "created_at",
		}).AddRow(id, "sess-1", "John Smith", "john@example.com", "07700 900123", "Airport Transfer",
			"Manchester Airport", "city centre", "2025-12-25", "17:00:00", 3, "", "", "pending", created))

	req := validRequest()
	req.BookingTime = "18:00:00"
	booking, inserted, err := repo.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if inserted {
		t.Fatalf("expected the stored booking to be returned")
	}
	if booking.ID != id || booking.BookingTime != "17:00:00" {
		t.Fatalf("unexpected booking: %+v", booking)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresRepositoryGetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()
	repo := newPostgresRepositoryWithQuerier(mock)

	id := "6f1c1f0e-6b5e-4a55-9d0b-3f1f1f7a2a11"
	created := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM bookings WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "session_id", "customer_name", "customer_email", "customer_phone", "service_type",
			"pickup_location", "dropoff_location", "booking_date", "booking_time", "passenger_count",
			"vehicle_preference", "special_requirements", "status", "created_at",
		}).AddRow(id, "sess-1", "John Smith", "john@example.com", "07700 900123", "Airport Transfer",
			"Manchester Airport", "city centre", "2025-12-25", "17:00:00", 3, "", "", "pending", created))

	booking, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if booking.BookingTime != "17:00:00" || booking.PassengerCount != 3 {
		t.Fatalf("unexpected booking: %+v", booking)
	}

	missing := "0e1c1f0e-6b5e-4a55-9d0b-3f1f1f7a2a11"
	mock.ExpectQuery("FROM bookings WHERE id").WithArgs(missing).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByID(context.Background(), missing); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}

	if _, err := repo.GetByID(context.Background(), "not-a-uuid"); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound for malformed id, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
