package leads

import (
	"context"
	"errors"
	"testing"
	"time"

	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestPostgresRepository(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()
	repo := newPostgresRepositoryWithQuerier(mock)
	ctx := context.Background()
	created := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO leads").
		WithArgs(pgxmock.AnyArg(), "Sam", "", "07700 900456", "Prom Parties", "", "website").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(created))
	lead, err := repo.Create(ctx, &CreateLeadRequest{Name: "Sam", Phone: "07700 900456", ServiceType: "Prom Parties"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !lead.CreatedAt.Equal(created) || lead.Source != "website" {
		t.Fatalf("unexpected lead: %+v", lead)
	}

	mock.ExpectQuery("FROM leads").WithArgs(lead.ID).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByID(ctx, lead.ID); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
