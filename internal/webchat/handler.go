package webchat

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/websocket"

	"github.com/vipride/booking-assistant/internal/conversation"
	"github.com/vipride/booking-assistant/pkg/logging"
)

// Handler serves the embeddable chat widget over a websocket.
type Handler struct {
	service  conversation.Service
	contact  conversation.ContactInfo
	logger   *logging.Logger
	widgetJS []byte
}

// InboundMessage is what the widget sends.
type InboundMessage struct {
	Type string `json:"type"` // "message", "ping"
	Text string `json:"text"`
}

// OutboundMessage is what we send to the widget.
type OutboundMessage struct {
	Type          string           `json:"type"` // "session", "history", "typing", "message", "pong", "error"
	Text          string           `json:"text,omitempty"`
	Role          string           `json:"role,omitempty"`
	SessionID     string           `json:"session_id,omitempty"`
	Timestamp     string           `json:"timestamp,omitempty"`
	BookingReady  bool             `json:"booking_ready,omitempty"`
	BookingID     string           `json:"booking_id,omitempty"`
	MissingFields []string         `json:"missing_fields,omitempty"`
	Messages      []HistoryMessage `json:"messages,omitempty"`
}

// HistoryMessage is a transcript entry replayed on reconnect.
type HistoryMessage struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// NewHandler creates a web chat handler.
func NewHandler(service conversation.Service, contact conversation.ContactInfo, widgetJS []byte, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, contact: contact, logger: logger, widgetJS: widgetJS}
}

// HandleWebSocket upgrades to a websocket. The optional session query parameter resumes a chat.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(r.Context(), conn, r.URL.Query().Get("session"))
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(ctx context.Context, conn *websocket.Conn, sessionID string) {
	started, err := h.service.StartSession(ctx, conversation.StartRequest{SessionID: sessionID})
	if err != nil {
		h.logger.Error("webchat: failed to start session", "error", err)
		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: conversation.TechnicalDifficultyReply(h.contact)})
		return
	}
	sessionID = started.SessionID
	logger := h.logger.WithSession(sessionID)

	if err := websocket.JSON.Send(conn, OutboundMessage{Type: "session", SessionID: sessionID}); err != nil {
		return
	}
	if msgs, err := h.service.History(ctx, sessionID); err == nil && len(msgs) > 0 {
		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "history", Messages: toHistory(msgs)})
	}

	logger.Info("webchat: connection opened")
	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			logger.Debug("webchat: connection closed", "error", err)
			return
		}
		switch {
		case msg.Type == "ping":
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
			continue
		case msg.Type != "message" || strings.TrimSpace(msg.Text) == "":
			continue
		}

		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "typing"})
		if err := websocket.JSON.Send(conn, h.turn(ctx, logger, sessionID, msg.Text)); err != nil {
			logger.Warn("webchat: failed to send reply", "error", err)
			return
		}
	}
}

func (h *Handler) turn(ctx context.Context, logger *logging.Logger, sessionID, text string) OutboundMessage {
	res, err := h.service.ProcessMessage(ctx, conversation.MessageRequest{SessionID: sessionID, Message: text})
	if err != nil {
		if !errors.Is(err, conversation.ErrEmptyMessage) {
			logger.Error("webchat: turn failed", "error", err)
		}
		return OutboundMessage{Type: "error", Text: conversation.TechnicalDifficultyReply(h.contact)}
	}
	return OutboundMessage{
		Type:          "message",
		Role:          conversation.ChatRoleAssistant,
		Text:          res.Response,
		SessionID:     res.SessionID,
		Timestamp:     res.Timestamp.UTC().Format(time.RFC3339),
		BookingReady:  res.BookingReady,
		BookingID:     res.BookingID,
		MissingFields: res.MissingFields,
	}
}

func toHistory(msgs []conversation.Message) []HistoryMessage {
	out := make([]HistoryMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, HistoryMessage{
			Role:      m.Role,
			Text:      m.Content,
			Timestamp: m.Timestamp.UTC().Format(time.RFC3339),
		})
	}
	return out
}

// HandleWidgetJS serves the embeddable widget JavaScript.
func (h *Handler) HandleWidgetJS(w http.ResponseWriter, r *http.Request) {
	if len(h.widgetJS) == 0 {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_, _ = w.Write(h.widgetJS)
}
