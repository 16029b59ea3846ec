package leads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores leads in the leads table.
type PostgresRepository struct {
	db rowQuerier
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithQuerier(db rowQuerier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	id := uuid.New()
	var createdAt time.Time
	err := r.db.QueryRow(ctx, `
		INSERT INTO leads (id, name, email, phone, service_type, message, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, id, req.Name, req.Email, req.Phone, req.ServiceType, req.Message, req.Source).Scan(&createdAt)
	if err != nil {
		return nil, fmt.Errorf("leads: insert failed: %w", err)
	}
	return req.toLead(id.String(), createdAt), nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrLeadNotFound
	}
	var lead Lead
	err := r.db.QueryRow(ctx, `
		SELECT id::text, name, email, phone, service_type, message, source, created_at
		FROM leads
		WHERE id = $1
	`, id).Scan(
		&lead.ID,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&lead.ServiceType,
		&lead.Message,
		&lead.Source,
		&lead.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return &lead, nil
}
