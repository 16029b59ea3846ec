package conversation

import "errors"

var (
	ErrEmptySession    = errors.New("conversation: session id is required")
	ErrEmptyMessage    = errors.New("conversation: message is required")
	ErrSessionNotFound = errors.New("conversation: session not found")
)
