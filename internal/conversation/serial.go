package conversation

import (
	"context"
	"strings"
	"sync"
)

// SerialService runs at most one turn per session at a time. Different sessions proceed
// concurrently. It only coordinates turns within one process.
type SerialService struct {
	inner Service

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

var _ Service = (*SerialService)(nil)

func NewSerialService(inner Service) *SerialService {
	return &SerialService{inner: inner, locks: make(map[string]*sessionLock)}
}

func (s *SerialService) StartSession(ctx context.Context, req StartRequest) (*TurnResult, error) {
	if strings.TrimSpace(req.SessionID) == "" {
		return s.inner.StartSession(ctx, req)
	}
	unlock := s.lock(strings.TrimSpace(req.SessionID))
	defer unlock()
	return s.inner.StartSession(ctx, req)
}

func (s *SerialService) ProcessMessage(ctx context.Context, req MessageRequest) (*TurnResult, error) {
	unlock := s.lock(strings.TrimSpace(req.SessionID))
	defer unlock()
	return s.inner.ProcessMessage(ctx, req)
}

func (s *SerialService) History(ctx context.Context, sessionID string) ([]Message, error) {
	return s.inner.History(ctx, sessionID)
}

// Session forwards to the wrapped service when it exposes full session state.
func (s *SerialService) Session(ctx context.Context, sessionID string) (*ConversationState, error) {
	reader, ok := s.inner.(sessionReader)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return reader.Session(ctx, sessionID)
}

func (s *SerialService) lock(sessionID string) func() {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		s.locks[sessionID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, sessionID)
		}
		s.mu.Unlock()
	}
}
