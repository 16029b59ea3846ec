package conversation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// SnapshotStore mirrors conversation state to durable storage, one row per session.
type SnapshotStore interface {
	Upsert(ctx context.Context, snap Snapshot) error
	Get(ctx context.Context, sessionID string) (*Snapshot, error)
}

// PostgresSnapshotStore writes snapshots to the chat_conversations table.
type PostgresSnapshotStore struct {
	db *sql.DB
}

func NewPostgresSnapshotStore(db *sql.DB) *PostgresSnapshotStore {
	if db == nil {
		return nil
	}
	return &PostgresSnapshotStore{db: db}
}

const upsertSnapshotSQL = `
	INSERT INTO chat_conversations (
		session_id, messages, extracted_data, missing_fields, booking_id, status, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (session_id) DO UPDATE SET
		messages = EXCLUDED.messages,
		extracted_data = EXCLUDED.extracted_data,
		missing_fields = EXCLUDED.missing_fields,
		booking_id = COALESCE(EXCLUDED.booking_id, chat_conversations.booking_id),
		status = EXCLUDED.status,
		updated_at = EXCLUDED.updated_at
`

// Upsert creates or replaces the row for snap.SessionID. A stored booking id is never cleared.
func (s *PostgresSnapshotStore) Upsert(ctx context.Context, snap Snapshot) error {
	if s == nil || s.db == nil {
		return nil
	}
	if snap.SessionID == "" {
		return ErrEmptySession
	}
	messages, err := json.Marshal(snap.Messages)
	if err != nil {
		return fmt.Errorf("conversation: encode snapshot messages: %w", err)
	}
	extracted, err := json.Marshal(snap.ExtractedData)
	if err != nil {
		return fmt.Errorf("conversation: encode snapshot booking: %w", err)
	}
	missing := snap.MissingFields
	if missing == nil {
		missing = []string{}
	}
	var bookingID sql.NullString
	if snap.BookingID != nil {
		bookingID = sql.NullString{String: *snap.BookingID, Valid: true}
	}
	updated := snap.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}
	created := snap.CreatedAt
	if created.IsZero() {
		created = updated
	}

	if _, err := s.db.ExecContext(ctx, upsertSnapshotSQL,
		snap.SessionID, messages, extracted, pq.Array(missing), bookingID, snap.Status, created, updated,
	); err != nil {
		return fmt.Errorf("conversation: upsert snapshot: %w", err)
	}
	return nil
}

// Get loads the snapshot for sessionID, or ErrSessionNotFound.
func (s *PostgresSnapshotStore) Get(ctx context.Context, sessionID string) (*Snapshot, error) {
	if s == nil || s.db == nil {
		return nil, ErrSessionNotFound
	}
	var (
		snap      Snapshot
		messages  []byte
		extracted []byte
		bookingID sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT session_id, messages, extracted_data, missing_fields, booking_id, status, created_at, updated_at
		FROM chat_conversations
		WHERE session_id = $1
	`, sessionID).Scan(
		&snap.SessionID, &messages, &extracted, pq.Array(&snap.MissingFields),
		&bookingID, &snap.Status, &snap.CreatedAt, &snap.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("conversation: get snapshot: %w", err)
	}
	if len(messages) > 0 {
		if err := json.Unmarshal(messages, &snap.Messages); err != nil {
			return nil, fmt.Errorf("conversation: decode snapshot messages: %w", err)
		}
	}
	if len(extracted) > 0 {
		if err := json.Unmarshal(extracted, &snap.ExtractedData); err != nil {
			return nil, fmt.Errorf("conversation: decode snapshot booking: %w", err)
		}
	}
	if bookingID.Valid {
		id := bookingID.String
		snap.BookingID = &id
	}
	return &snap, nil
}
