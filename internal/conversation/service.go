package conversation

import (
	"context"
	"time"
)

// Service is the chat surface used by the HTTP, websocket and CLI front ends.
type Service interface {
	StartSession(ctx context.Context, req StartRequest) (*TurnResult, error)
	ProcessMessage(ctx context.Context, req MessageRequest) (*TurnResult, error)
	History(ctx context.Context, sessionID string) ([]Message, error)
}

// StartRequest opens a chat. An empty SessionID asks the assistant to generate one.
type StartRequest struct {
	SessionID string `json:"session_id"`
}

// MessageRequest is one customer message.
type MessageRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// TurnResult is the assistant's answer to a turn.
type TurnResult struct {
	SessionID     string    `json:"sessionId"`
	Response      string    `json:"response"`
	BookingReady  bool      `json:"bookingReady"`
	Mode          Mode      `json:"mode,omitempty"`
	MissingFields []string  `json:"missingFields"`
	BookingID     string    `json:"bookingId,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}
