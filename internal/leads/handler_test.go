package leads

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vipride/booking-assistant/pkg/logging"
)

type countingNotifier struct {
	leads []*Lead
	err   error
}

func (n *countingNotifier) NotifyLeadReceived(_ context.Context, lead *Lead) error {
	n.leads = append(n.leads, lead)
	return n.err
}

type failingRepository struct{}

func (failingRepository) Create(context.Context, *CreateLeadRequest) (*Lead, error) {
	return nil, errors.New("boom")
}

func (failingRepository) GetByID(context.Context, string) (*Lead, error) {
	return nil, ErrLeadNotFound
}

func TestCreateWebLead(t *testing.T) {
	tests := []struct {
		name       string
		repo       Repository
		body       string
		wantStatus int
		wantNotify int
	}{
		{
			name:       "created",
			repo:       NewInMemoryRepository(),
			body:       `{"name":"Sarah Jones","email":"sarah@example.com","service_type":"Wedding Transport","message":"June wedding in York"}`,
			wantStatus: http.StatusCreated,
			wantNotify: 1,
		},
		{
			name:       "phone only",
			repo:       NewInMemoryRepository(),
			body:       `{"name":"Sam","phone":"07700 900456"}`,
			wantStatus: http.StatusCreated,
			wantNotify: 1,
		},
		{"missing name", NewInMemoryRepository(), `{"email":"a@example.com"}`, http.StatusBadRequest, 0},
		{"missing contact", NewInMemoryRepository(), `{"name":"Sam"}`, http.StatusBadRequest, 0},
		{"bad email", NewInMemoryRepository(), `{"name":"Sam","email":"not-an-email"}`, http.StatusBadRequest, 0},
		{"invalid json", NewInMemoryRepository(), `{`, http.StatusBadRequest, 0},
		{"repository error", failingRepository{}, `{"name":"Sam","phone":"1"}`, http.StatusInternalServerError, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &countingNotifier{}
			h := NewHandler(tt.repo, notifier, logging.Default())

			w := httptest.NewRecorder()
			h.CreateWebLead(w, httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader(tt.body)))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if len(notifier.leads) != tt.wantNotify {
				t.Fatalf("notifications = %d, want %d", len(notifier.leads), tt.wantNotify)
			}
			if tt.wantStatus == http.StatusCreated {
				var lead Lead
				if err := json.NewDecoder(w.Body).Decode(&lead); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if lead.ID == "" || lead.Source != "website" {
					t.Fatalf("unexpected lead: %+v", lead)
				}
			}
		})
	}
}

func TestCreateWebLeadNotifierFailureStillCreates(t *testing.T) {
	h := NewHandler(NewInMemoryRepository(), &countingNotifier{err: errors.New("smtp down")}, nil)
	w := httptest.NewRecorder()
	h.CreateWebLead(w, httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader(`{"name":"Sam","phone":"07700 900456"}`)))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
}

func TestInMemoryRepository(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, &CreateLeadRequest{Name: " Jane ", Email: "jane@example.com", Source: "instagram"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Name != "Jane" || created.CreatedAt.IsZero() {
		t.Fatalf("unexpected lead: %+v", created)
	}

	found, err := repo.GetByID(ctx, created.ID)
	if err != nil || found.Source != "instagram" {
		t.Fatalf("GetByID = %+v, %v", found, err)
	}

	if _, err := repo.GetByID(ctx, "nonexistent"); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}
}
