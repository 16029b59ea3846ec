package conversation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/vipride/booking-assistant/pkg/logging"
)

func newTestHandlerRouter(t *testing.T, svc Service) http.Handler {
	t.Helper()
	h := NewHandler(svc, testContact, logging.Default())
	r := chi.NewRouter()
	r.Post("/api/chat/sessions", h.Start)
	r.Post("/api/chat/messages", h.Message)
	r.Get("/api/chat/sessions/{sessionID}/messages", h.History)
	r.Get("/admin/conversations/{sessionID}", h.AdminSession)
	return r
}

type erroringService struct{}

func (erroringService) StartSession(context.Context, StartRequest) (*TurnResult, error) {
	return nil, errors.New("boom")
}

func (erroringService) ProcessMessage(context.Context, MessageRequest) (*TurnResult, error) {
	return nil, errors.New("boom")
}

func (erroringService) History(context.Context, string) ([]Message, error) {
	return nil, errors.New("boom")
}

func TestHandler_MessageFlow(t *testing.T) {
	f := newAssistantFixture(t, nil)
	router := newTestHandlerRouter(t, f.assistant)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat/sessions", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("start status = %d", rec.Code)
	}
	var started TurnResult
	if err := json.NewDecoder(rec.Body).Decode(&started); err != nil {
		t.Fatalf("decode start: %v", err)
	}
	if started.SessionID == "" {
		t.Fatalf("expected generated session id")
	}

	body, _ := json.Marshal(MessageRequest{SessionID: started.SessionID, Message: fullBookingMessage})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat/messages", bytes.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("message status = %d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Response     string `json:"response"`
		BookingReady bool   `json:"bookingReady"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if !resp.BookingReady || resp.Response == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat/sessions/"+started.SessionID+"/messages", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("history status = %d", rec.Code)
	}
	var history HistoryResponse
	if err := json.NewDecoder(rec.Body).Decode(&history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history.Messages) != 3 {
		t.Fatalf("history length = %d, want 3", len(history.Messages))
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/conversations/"+started.SessionID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("admin status = %d", rec.Code)
	}
	var snap Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.BookingID == nil || *snap.BookingID != "booking-1" {
		t.Fatalf("snapshot booking id = %v", snap.BookingID)
	}
}

func TestHandler_MessageValidation(t *testing.T) {
	f := newAssistantFixture(t, nil)
	router := newTestHandlerRouter(t, f.assistant)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid json", "{", http.StatusBadRequest},
		{"missing session", `{"message":"hi"}`, http.StatusBadRequest},
		{"blank message", `{"session_id":"s1","message":"  "}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat/messages", strings.NewReader(tt.body)))
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandler_TechnicalDifficulty(t *testing.T) {
	router := newTestHandlerRouter(t, erroringService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat/messages", strings.NewReader(`{"session_id":"s1","message":"hi"}`)))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	var resp TurnResult
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(resp.Response, "technical difficulty") || resp.BookingReady {
		t.Fatalf("unexpected body: %+v", resp)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/conversations/s1", nil))
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("admin status = %d, want 501", rec.Code)
	}
}

func TestHandler_HistoryNotFound(t *testing.T) {
	f := newAssistantFixture(t, nil)
	router := newTestHandlerRouter(t, f.assistant)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat/sessions/unknown/messages", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
