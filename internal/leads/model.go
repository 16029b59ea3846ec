package leads

import (
	"net/mail"
	"strings"
	"time"
)

// Lead is an enquiry left through the website contact form rather than the chat.
type Lead struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	ServiceType string    `json:"service_type,omitempty"`
	Message     string    `json:"message,omitempty"`
	Source      string    `json:"source"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateLeadRequest is the body of POST /api/leads.
type CreateLeadRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	ServiceType string `json:"service_type"`
	Message     string `json:"message"`
	Source      string `json:"source"`
}

// Validate trims the request in place and checks the required fields.
func (r *CreateLeadRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Source = strings.TrimSpace(r.Source)
	if r.Source == "" {
		r.Source = "website"
	}
	if r.Name == "" {
		return ErrInvalidName
	}
	if r.Email == "" && r.Phone == "" {
		return ErrMissingContact
	}
	if r.Email != "" {
		if _, err := mail.ParseAddress(r.Email); err != nil {
			return ErrInvalidEmail
		}
	}
	return nil
}

func (r *CreateLeadRequest) toLead(id string, createdAt time.Time) *Lead {
	return &Lead{
		ID:          id,
		Name:        r.Name,
		Email:       r.Email,
		Phone:       r.Phone,
		ServiceType: r.ServiceType,
		Message:     r.Message,
		Source:      r.Source,
		CreatedAt:   createdAt,
	}
}
