package conversation

import "time"

// Message is one entry of a session transcript.
type Message struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationState is everything the assistant knows about one chat session.
// Messages is append-only.
type ConversationState struct {
	SessionID        string        `json:"session_id"`
	Messages         []Message     `json:"messages"`
	Booking          BookingRecord `json:"booking"`
	BookingPersisted bool          `json:"booking_persisted"`
	BookingID        string        `json:"booking_id,omitempty"`
	Mode             Mode          `json:"mode,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// NewConversationState returns an empty state for sessionID.
func NewConversationState(sessionID string, now time.Time) *ConversationState {
	return &ConversationState{
		SessionID: sessionID,
		Messages:  []Message{},
		Mode:      ModeNormal,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MissingFields is recomputed from the booking on every call.
func (s *ConversationState) MissingFields() []string {
	return MissingFields(s.Booking)
}

// Complete reports whether the booking has every required field.
func (s *ConversationState) Complete() bool {
	return IsComplete(s.Booking)
}

func (s *ConversationState) appendMessage(role, content string, at time.Time) {
	s.Messages = append(s.Messages, Message{Role: role, Content: content, Timestamp: at})
	s.UpdatedAt = at
}

// Clone returns a deep copy so callers cannot alias another holder's transcript.
func (s *ConversationState) Clone() *ConversationState {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Messages = append([]Message(nil), s.Messages...)
	if cp.Messages == nil {
		cp.Messages = []Message{}
	}
	return &cp
}

// Snapshot is the mirrored form of a session kept in the external store for recovery and audit.
type Snapshot struct {
	SessionID     string        `json:"session_id"`
	Messages      []Message     `json:"messages"`
	ExtractedData BookingRecord `json:"extracted_data"`
	MissingFields []string      `json:"missing_fields"`
	BookingID     *string       `json:"booking_id"`
	Status        string        `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Snapshot captures the state for mirroring. Status carries the latest turn's mode.
func (s *ConversationState) Snapshot() Snapshot {
	snap := Snapshot{
		SessionID:     s.SessionID,
		Messages:      append([]Message(nil), s.Messages...),
		ExtractedData: s.Booking,
		MissingFields: s.MissingFields(),
		Status:        string(s.Mode),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	if snap.Status == "" {
		snap.Status = string(ModeNormal)
	}
	if s.BookingID != "" {
		id := s.BookingID
		snap.BookingID = &id
	}
	return snap
}

// stateFromSnapshot rebuilds a session from its mirror. A stored booking id means the
// booking was already saved, so the persisted flag is restored with it.
func stateFromSnapshot(snap Snapshot) *ConversationState {
	state := &ConversationState{
		SessionID: snap.SessionID,
		Messages:  append([]Message{}, snap.Messages...),
		Booking:   snap.ExtractedData,
		Mode:      Mode(snap.Status),
		CreatedAt: snap.CreatedAt,
		UpdatedAt: snap.UpdatedAt,
	}
	if snap.BookingID != nil && *snap.BookingID != "" {
		state.BookingPersisted = true
		state.BookingID = *snap.BookingID
	}
	return state
}
