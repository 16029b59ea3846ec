package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vipride/booking-assistant/pkg/logging"
)

// sessionReader is implemented by services that can return the full session state.
type sessionReader interface {
	Session(ctx context.Context, sessionID string) (*ConversationState, error)
}

// Handler wires HTTP requests to the conversation service.
type Handler struct {
	service Service
	contact ContactInfo
	logger  *logging.Logger
}

func NewHandler(service Service, contact ContactInfo, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, contact: contact, logger: logger}
}

// Start handles POST /api/chat/sessions. An empty body is accepted.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("failed to decode start request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.StartSession(r.Context(), req)
	if err != nil {
		h.logger.Error("failed to start chat session", "error", err)
		h.writeTechnicalDifficulty(w)
		return
	}
	h.writeJSON(w, http.StatusCreated, resp)
}

// Message handles POST /api/chat/messages.
func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode message request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.ProcessMessage(r.Context(), req)
	switch {
	case errors.Is(err, ErrEmptySession), errors.Is(err, ErrEmptyMessage):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		h.logger.Error("failed to process chat message", "session_id", req.SessionID, "error", err)
		h.writeTechnicalDifficulty(w)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// HistoryResponse is returned by GET /api/chat/sessions/{sessionID}/messages.
type HistoryResponse struct {
	SessionID string    `json:"sessionId"`
	Messages  []Message `json:"messages"`
}

// History handles GET /api/chat/sessions/{sessionID}/messages.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	messages, err := h.service.History(r.Context(), sessionID)
	if err != nil {
		h.writeLookupError(w, sessionID, err)
		return
	}
	h.writeJSON(w, http.StatusOK, HistoryResponse{SessionID: sessionID, Messages: messages})
}

// AdminSession handles GET /admin/conversations/{sessionID} and returns the mirrored snapshot.
func (h *Handler) AdminSession(w http.ResponseWriter, r *http.Request) {
	reader, ok := h.service.(sessionReader)
	if !ok {
		http.Error(w, "session lookup not supported", http.StatusNotImplemented)
		return
	}
	sessionID := chi.URLParam(r, "sessionID")
	state, err := reader.Session(r.Context(), sessionID)
	if err != nil {
		h.writeLookupError(w, sessionID, err)
		return
	}
	h.writeJSON(w, http.StatusOK, state.Snapshot())
}

func (h *Handler) writeLookupError(w http.ResponseWriter, sessionID string, err error) {
	switch {
	case errors.Is(err, ErrEmptySession):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrSessionNotFound):
		http.Error(w, "session not found", http.StatusNotFound)
	default:
		h.logger.Error("failed to load chat session", "session_id", sessionID, "error", err)
		http.Error(w, "failed to load session", http.StatusInternalServerError)
	}
}

// writeTechnicalDifficulty keeps the widget's response shape so it can show the text as a reply.
func (h *Handler) writeTechnicalDifficulty(w http.ResponseWriter) {
	h.writeJSON(w, http.StatusServiceUnavailable, TurnResult{
		Response:      TechnicalDifficultyReply(h.contact),
		MissingFields: []string{},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
