package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const defaultSessionTTL = 24 * time.Hour

// SessionStore holds live conversation state between turns.
// Load returns ErrSessionNotFound for unknown sessions.
type SessionStore interface {
	Load(ctx context.Context, sessionID string) (*ConversationState, error)
	Save(ctx context.Context, state *ConversationState) error
}

// MemorySessionStore keeps sessions in process. Sessions do not survive a restart.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*ConversationState
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*ConversationState)}
}

func (s *MemorySessionStore) Load(_ context.Context, sessionID string) (*ConversationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return state.Clone(), nil
}

func (s *MemorySessionStore) Save(_ context.Context, state *ConversationState) error {
	if state == nil || state.SessionID == "" {
		return ErrEmptySession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[state.SessionID] = state.Clone()
	return nil
}

// RedisSessionStore keeps sessions in Redis as JSON with a sliding TTL.
type RedisSessionStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) (*RedisSessionStore, error) {
	if client == nil {
		return nil, errors.New("conversation: redis client is required")
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &RedisSessionStore{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("vipride/conversation/sessions"),
	}, nil
}

func (s *RedisSessionStore) Load(ctx context.Context, sessionID string) (*ConversationState, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.load_session")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: load session: %w", err)
	}

	var state ConversationState
	if err := json.Unmarshal(data, &state); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: decode session: %w", err)
	}
	if state.Messages == nil {
		state.Messages = []Message{}
	}
	return &state, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, state *ConversationState) error {
	if state == nil || state.SessionID == "" {
		return ErrEmptySession
	}
	ctx, span := s.tracer.Start(ctx, "conversation.save_session")
	defer span.End()

	data, err := json.Marshal(state)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: encode session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(state.SessionID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: save session: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return fmt.Sprintf("chat_session:%s", id)
}
