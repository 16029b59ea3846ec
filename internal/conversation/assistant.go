package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vipride/booking-assistant/internal/observability/metrics"
	"github.com/vipride/booking-assistant/pkg/logging"
)

var assistantTracer = otel.Tracer("vipride/conversation/assistant")

// AssistantConfig wires an Assistant's collaborators. Sessions, Replies and Bookings are required.
type AssistantConfig struct {
	Extractor  *SlotExtractor
	Classifier *IntentClassifier
	Replies    *ReplyOrchestrator
	Sessions   SessionStore
	Snapshots  SnapshotStore
	Bookings   BookingStore
	Contact    ContactInfo
	Metrics    *metrics.ConversationMetrics
	Logger     *logging.Logger
	Clock      func() time.Time
}

// Assistant runs the booking conversation: it extracts booking details from each message,
// asks for what is missing and saves the booking once, when it is complete.
//
// Turns for one session must not run concurrently; callers serialise them.
type Assistant struct {
	extractor  *SlotExtractor
	classifier *IntentClassifier
	replies    *ReplyOrchestrator
	sessions   SessionStore
	snapshots  SnapshotStore
	bookings   BookingStore
	contact    ContactInfo
	metrics    *metrics.ConversationMetrics
	logger     *logging.Logger
	now        func() time.Time
}

var _ Service = (*Assistant)(nil)

func NewAssistant(cfg AssistantConfig) (*Assistant, error) {
	if cfg.Sessions == nil {
		return nil, errors.New("conversation: session store is required")
	}
	if cfg.Replies == nil {
		return nil, errors.New("conversation: reply orchestrator is required")
	}
	if cfg.Bookings == nil {
		return nil, errors.New("conversation: booking store is required")
	}
	a := &Assistant{
		extractor:  cfg.Extractor,
		classifier: cfg.Classifier,
		replies:    cfg.Replies,
		sessions:   cfg.Sessions,
		snapshots:  cfg.Snapshots,
		bookings:   cfg.Bookings,
		contact:    cfg.Contact,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
		now:        cfg.Clock,
	}
	if a.extractor == nil {
		a.extractor = NewSlotExtractor()
	}
	if a.classifier == nil {
		a.classifier = defaultClassifier
	}
	if a.logger == nil {
		a.logger = logging.Default()
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a, nil
}

// Contact returns the details quoted in fallback replies.
func (a *Assistant) Contact() ContactInfo {
	return a.contact
}

// StartSession opens a session and greets the customer. Starting an existing session
// returns the greeting again without touching its transcript.
func (a *Assistant) StartSession(ctx context.Context, req StartRequest) (*TurnResult, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	state, err := a.loadState(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	greeting := GreetingReply(a.contact)
	if len(state.Messages) == 0 {
		state.appendMessage(ChatRoleAssistant, greeting, a.now().UTC())
		if err := a.sessions.Save(ctx, state); err != nil {
			return nil, fmt.Errorf("conversation: save new session: %w", err)
		}
		a.mirror(ctx, state)
		a.logger.Info("chat session started", "session_id", sessionID)
	}
	return &TurnResult{
		SessionID:     sessionID,
		Response:      greeting,
		Mode:          ModeNormal,
		MissingFields: state.MissingFields(),
		BookingID:     state.BookingID,
		Timestamp:     state.UpdatedAt,
	}, nil
}

// ProcessMessage runs one turn. The returned error is non-nil only when the session
// could not be loaded from the live store or the snapshot mirror; reply, booking and
// mirror failures are absorbed.
func (a *Assistant) ProcessMessage(ctx context.Context, req MessageRequest) (*TurnResult, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	text := strings.TrimSpace(req.Message)
	if sessionID == "" {
		return nil, ErrEmptySession
	}
	if text == "" {
		return nil, ErrEmptyMessage
	}

	ctx, span := assistantTracer.Start(ctx, "conversation.process_message")
	defer span.End()
	span.SetAttributes(attribute.String("vipride.session_id", sessionID))

	start := a.now()
	logger := a.logger.WithSession(sessionID)

	state, err := a.loadState(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	wasComplete := state.Complete()
	state.appendMessage(ChatRoleUser, text, a.now().UTC())

	mode := a.classifier.Classify(text, wasComplete)
	partial := a.extractor.Extract(text)
	detected := partial.Fields()
	if len(detected) > 0 {
		names := make([]string, 0, len(detected))
		for field := range detected {
			names = append(names, field)
		}
		a.metrics.ObserveFieldsExtracted(names)
	}
	state.Booking = Merge(state.Booking, partial)
	state.Mode = mode
	missing := state.MissingFields()

	reply := a.replies.Reply(ctx, ReplyRequest{
		SessionID:     sessionID,
		UserMessage:   text,
		Booking:       state.Booking,
		MissingFields: missing,
		Mode:          mode,
		History:       state.Messages,
	})
	state.appendMessage(ChatRoleAssistant, reply.Text, a.now().UTC())

	bookingReady := false
	if len(missing) == 0 && !state.BookingPersisted {
		bookingID, created, err := a.bookings.InsertBooking(ctx, sessionID, state.Booking)
		switch {
		case err != nil:
			span.RecordError(err)
			a.metrics.ObserveBookingPersist("error")
			logger.Error("booking insert failed, will retry on next turn", "error", err)
		case !created:
			// An earlier turn saved the booking but its state write was lost.
			state.BookingPersisted = true
			state.BookingID = bookingID
			a.metrics.ObserveBookingPersist("existing")
			logger.Warn("booking already stored for session", "booking_id", bookingID)
		default:
			state.BookingPersisted = true
			state.BookingID = bookingID
			bookingReady = true
			a.metrics.ObserveBookingPersist("ok")
			logger.Info("booking persisted", "booking_id", bookingID)
		}
	}

	if err := a.sessions.Save(ctx, state); err != nil {
		span.RecordError(err)
		logger.Error("failed to save session state", "error", err)
	}
	a.mirror(ctx, state)

	span.SetAttributes(
		attribute.String("vipride.mode", string(mode)),
		attribute.Int("vipride.missing_fields", len(missing)),
		attribute.Bool("vipride.booking_ready", bookingReady),
		attribute.Bool("vipride.reply_fallback", reply.Fallback),
	)
	a.metrics.ObserveTurn(string(mode), a.now().Sub(start).Seconds())
	logger.Info("chat turn processed",
		"mode", mode,
		"fields_detected", len(detected),
		"missing_fields", len(missing),
		"booking_ready", bookingReady,
		"reply_fallback", reply.Fallback,
	)

	return &TurnResult{
		SessionID:     sessionID,
		Response:      reply.Text,
		BookingReady:  bookingReady,
		Mode:          mode,
		MissingFields: missing,
		BookingID:     state.BookingID,
		Timestamp:     state.UpdatedAt,
	}, nil
}

// History returns the transcript of a session.
func (a *Assistant) History(ctx context.Context, sessionID string) ([]Message, error) {
	state, err := a.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return state.Messages, nil
}

// Session returns the stored state, falling back to the mirrored snapshot.
// Unknown sessions return ErrSessionNotFound.
func (a *Assistant) Session(ctx context.Context, sessionID string) (*ConversationState, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrEmptySession
	}
	state, err := a.sessions.Load(ctx, sessionID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, ErrSessionNotFound) {
		return nil, err
	}
	if a.snapshots == nil {
		return nil, ErrSessionNotFound
	}
	snap, err := a.snapshots.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return stateFromSnapshot(*snap), nil
}

// loadState finds the session in the live store, then in the snapshot mirror, and otherwise
// starts a new one. A failed lookup in either store is returned; starting fresh after a failed
// snapshot read would overwrite the mirrored transcript.
func (a *Assistant) loadState(ctx context.Context, sessionID string) (*ConversationState, error) {
	state, err := a.sessions.Load(ctx, sessionID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, ErrSessionNotFound) {
		return nil, fmt.Errorf("conversation: load session: %w", err)
	}

	if a.snapshots != nil {
		snap, err := a.snapshots.Get(ctx, sessionID)
		switch {
		case err == nil:
			a.logger.Info("session restored from snapshot", "session_id", sessionID, "messages", len(snap.Messages))
			return stateFromSnapshot(*snap), nil
		case !errors.Is(err, ErrSessionNotFound):
			return nil, fmt.Errorf("conversation: load snapshot: %w", err)
		}
	}
	return NewConversationState(sessionID, a.now().UTC()), nil
}

func (a *Assistant) mirror(ctx context.Context, state *ConversationState) {
	if a.snapshots == nil {
		return
	}
	if err := a.snapshots.Upsert(ctx, state.Snapshot()); err != nil {
		a.metrics.ObserveMirrorFailure()
		a.logger.Warn("conversation snapshot upsert failed", "session_id", state.SessionID, "error", err)
	}
}
