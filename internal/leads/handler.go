package leads

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vipride/booking-assistant/pkg/logging"
)

// Notifier is told about each new lead. Failures are logged only.
type Notifier interface {
	NotifyLeadReceived(ctx context.Context, lead *Lead) error
}

// Handler handles the contact form endpoint.
type Handler struct {
	repo     Repository
	notifier Notifier
	logger   *logging.Logger
}

func NewHandler(repo Repository, notifier Notifier, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, notifier: notifier, logger: logger}
}

// CreateWebLead handles POST /api/leads.
func (h *Handler) CreateWebLead(w http.ResponseWriter, r *http.Request) {
	var req CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode lead request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	lead, err := h.repo.Create(r.Context(), &req)
	switch {
	case errors.Is(err, ErrInvalidName), errors.Is(err, ErrMissingContact), errors.Is(err, ErrInvalidEmail):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		h.logger.Error("failed to create lead", "error", err)
		http.Error(w, "failed to save enquiry", http.StatusInternalServerError)
		return
	}
	h.logger.Info("lead created", "lead_id", lead.ID, "source", lead.Source, "service_type", lead.ServiceType)

	if h.notifier != nil {
		if err := h.notifier.NotifyLeadReceived(r.Context(), lead); err != nil {
			h.logger.Warn("lead notification failed", "lead_id", lead.ID, "error", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(lead)
}
