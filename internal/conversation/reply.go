package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vipride/booking-assistant/internal/observability/metrics"
	"github.com/vipride/booking-assistant/pkg/logging"
)

var replyTracer = otel.Tracer("vipride/conversation/reply")

// ReplyRequest is the context handed to a reply generator for one turn.
type ReplyRequest struct {
	SessionID     string
	UserMessage   string
	Booking       BookingRecord
	MissingFields []string
	Mode          Mode
	History       []Message
}

// Complete reports whether the request describes a finished booking.
func (r ReplyRequest) Complete() bool {
	return len(r.MissingFields) == 0
}

// ReplyGenerator phrases the assistant's next message, usually with an LLM.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, req ReplyRequest) (string, error)
}

// ReplyGeneratorFunc adapts a function to ReplyGenerator.
type ReplyGeneratorFunc func(ctx context.Context, req ReplyRequest) (string, error)

// GenerateReply calls f.
func (f ReplyGeneratorFunc) GenerateReply(ctx context.Context, req ReplyRequest) (string, error) {
	return f(ctx, req)
}

// ContactInfo is quoted in fallback replies so customers can reach a person.
type ContactInfo struct {
	BusinessName string
	Phone        string
	Email        string
}

// ReplyResult is the orchestrator's output for a turn.
type ReplyResult struct {
	Text     string
	Fallback bool
}

// ReplyOrchestrator asks the generator for a reply and substitutes a templated one when it
// is unavailable. It keeps no per-session state.
type ReplyOrchestrator struct {
	generator ReplyGenerator
	contact   ContactInfo
	timeout   time.Duration
	metrics   *metrics.ConversationMetrics
	logger    *logging.Logger
}

// ReplyOption customises a ReplyOrchestrator.
type ReplyOption func(*ReplyOrchestrator)

// WithReplyTimeout bounds each generator call.
func WithReplyTimeout(d time.Duration) ReplyOption {
	return func(o *ReplyOrchestrator) { o.timeout = d }
}

// WithReplyMetrics records fallback counts.
func WithReplyMetrics(m *metrics.ConversationMetrics) ReplyOption {
	return func(o *ReplyOrchestrator) { o.metrics = m }
}

// NewReplyOrchestrator builds an orchestrator. A nil generator always uses the fallback.
func NewReplyOrchestrator(generator ReplyGenerator, contact ContactInfo, logger *logging.Logger, opts ...ReplyOption) *ReplyOrchestrator {
	if logger == nil {
		logger = logging.Default()
	}
	o := &ReplyOrchestrator{
		generator: generator,
		contact:   contact,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

var errEmptyReply = errors.New("conversation: reply generator returned empty text")

// Reply produces the assistant text for a turn. It never fails.
func (o *ReplyOrchestrator) Reply(ctx context.Context, req ReplyRequest) ReplyResult {
	ctx, span := replyTracer.Start(ctx, "conversation.reply")
	defer span.End()
	span.SetAttributes(
		attribute.String("conversation.mode", string(req.Mode)),
		attribute.Int("conversation.missing_fields", len(req.MissingFields)),
	)

	if o.generator == nil {
		o.metrics.ObserveReplyFallback("no_generator")
		return ReplyResult{Text: FallbackReply(req, o.contact), Fallback: true}
	}

	genCtx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	text, err := o.generator.GenerateReply(genCtx, req)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errEmptyReply
	}
	if err != nil {
		span.RecordError(err)
		reason := "generator_error"
		if errors.Is(err, errEmptyReply) {
			reason = "empty_reply"
		} else if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
		}
		o.logger.Warn("reply generation failed, using fallback",
			"session_id", req.SessionID,
			"mode", req.Mode,
			"reason", reason,
			"error", err,
		)
		o.metrics.ObserveReplyFallback(reason)
		return ReplyResult{Text: FallbackReply(req, o.contact), Fallback: true}
	}

	guarded := GuardReply(strings.TrimSpace(text))
	if guarded.Blocked {
		o.logger.Warn("generated reply blocked, using fallback",
			"session_id", req.SessionID,
			"reasons", guarded.Reasons,
		)
		o.metrics.ObserveReplyFallback("blocked")
		return ReplyResult{Text: FallbackReply(req, o.contact), Fallback: true}
	}
	return ReplyResult{Text: guarded.Text}
}

// fieldQuestions are the templated follow-up questions, one per required field.
var fieldQuestions = map[string]string{
	FieldCustomerName:    "Could I take your full name, please?",
	FieldCustomerEmail:   "What email address should we send your booking details to?",
	FieldCustomerPhone:   "What's the best phone number to reach you on?",
	FieldServiceType:     "Which service do you need? We offer airport transfers, wedding, corporate, prom and event transport, security services and general chauffeur hire.",
	FieldPickupLocation:  "Where will you be travelling from and to?",
	FieldDropoffLocation: "Where would you like to be dropped off?",
	FieldBookingDate:     "What date do you need the car? (e.g. 25/12/2025)",
	FieldBookingTime:     "What time should we collect you? (e.g. 5pm or 17:00)",
	FieldPassengerCount:  "How many passengers will be travelling?",
}

// FallbackReply is the deterministic reply used when no generated text is available.
// A complete booking gets an acknowledgement with contact details; otherwise the customer
// is asked for the next missing field.
func FallbackReply(req ReplyRequest, contact ContactInfo) string {
	switch req.Mode {
	case ModeCancelled:
		return fmt.Sprintf("No problem, I've stopped this booking request. If you change your mind, just message us here or call %s.", contactPhone(contact))
	case ModeOutOfRegion:
		return fmt.Sprintf("We currently operate within the UK only. For travel outside the UK please call %s or email %s and our team will see what we can arrange.", contactPhone(contact), contactEmail(contact))
	}

	if req.Complete() {
		greeting := "Thank you"
		if name := firstName(req.Booking.CustomerName); name != "" {
			greeting += ", " + name
		}
		return fmt.Sprintf("%s! We've received your booking request and a member of our team will be in touch shortly to confirm the details. If you need us sooner, call %s or email %s.",
			greeting, contactPhone(contact), contactEmail(contact))
	}

	next := req.MissingFields[0]
	question, ok := fieldQuestions[next]
	if !ok {
		question = fmt.Sprintf("Could you tell me your %s?", FieldLabel(next))
	}
	if req.Mode == ModeUpdate {
		return "No problem, I can update that. " + question
	}
	return question
}

// TechnicalDifficultyReply is shown when a turn could not be processed at all.
func TechnicalDifficultyReply(contact ContactInfo) string {
	return fmt.Sprintf("Sorry, we're having a technical difficulty right now. Please try again in a moment or call us on %s.", contactPhone(contact))
}

// GreetingReply opens a new session.
func GreetingReply(contact ContactInfo) string {
	name := strings.TrimSpace(contact.BusinessName)
	if name == "" {
		name = "our chauffeur service"
	}
	return fmt.Sprintf("Hello and welcome to %s! I can help you book a chauffeur, airport transfer or security service. What can I arrange for you today?", name)
}

func contactPhone(c ContactInfo) string {
	if strings.TrimSpace(c.Phone) == "" {
		return "our office"
	}
	return c.Phone
}

func contactEmail(c ContactInfo) string {
	if strings.TrimSpace(c.Email) == "" {
		return "our bookings team"
	}
	return c.Email
}

func firstName(full string) string {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}
