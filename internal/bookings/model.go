package bookings

import (
	"errors"
	"strings"
	"time"
)

// StatusPending is the status every booking request starts in until staff confirm it by phone.
const StatusPending = "pending"

var (
	ErrBookingNotFound  = errors.New("bookings: booking not found")
	ErrMissingSession   = errors.New("bookings: session id is required")
	ErrMissingName      = errors.New("bookings: customer name is required")
	ErrMissingContact   = errors.New("bookings: customer email and phone are required")
	ErrMissingRoute     = errors.New("bookings: pickup and dropoff locations are required")
	ErrMissingSchedule  = errors.New("bookings: booking date and time are required")
	ErrInvalidPassenger = errors.New("bookings: passenger count must be positive")
)

// Booking is a stored booking request.
type Booking struct {
	ID                  string    `json:"id"`
	SessionID           string    `json:"session_id"`
	CustomerName        string    `json:"customer_name"`
	CustomerEmail       string    `json:"customer_email"`
	CustomerPhone       string    `json:"customer_phone"`
	ServiceType         string    `json:"service_type"`
	PickupLocation      string    `json:"pickup_location"`
	DropoffLocation     string    `json:"dropoff_location"`
	BookingDate         string    `json:"booking_date"`
	BookingTime         string    `json:"booking_time"`
	PassengerCount      int       `json:"passenger_count"`
	VehiclePreference   string    `json:"vehicle_preference,omitempty"`
	SpecialRequirements string    `json:"special_requirements,omitempty"`
	Status              string    `json:"status"`
	CreatedAt           time.Time `json:"created_at"`
}

// CreateBookingRequest carries a completed booking record from a chat session.
type CreateBookingRequest struct {
	SessionID           string
	CustomerName        string
	CustomerEmail       string
	CustomerPhone       string
	ServiceType         string
	PickupLocation      string
	DropoffLocation     string
	BookingDate         string // YYYY-MM-DD
	BookingTime         string // HH:MM:SS
	PassengerCount      int
	VehiclePreference   string
	SpecialRequirements string
}

func (r *CreateBookingRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.SessionID) == "":
		return ErrMissingSession
	case strings.TrimSpace(r.CustomerName) == "":
		return ErrMissingName
	case strings.TrimSpace(r.CustomerEmail) == "" || strings.TrimSpace(r.CustomerPhone) == "":
		return ErrMissingContact
	case strings.TrimSpace(r.PickupLocation) == "" || strings.TrimSpace(r.DropoffLocation) == "":
		return ErrMissingRoute
	case strings.TrimSpace(r.BookingDate) == "" || strings.TrimSpace(r.BookingTime) == "":
		return ErrMissingSchedule
	case r.PassengerCount <= 0:
		return ErrInvalidPassenger
	}
	return nil
}

func (r *CreateBookingRequest) toBooking(id string, createdAt time.Time) *Booking {
	return &Booking{
		ID:                  id,
		SessionID:           r.SessionID,
		CustomerName:        r.CustomerName,
		CustomerEmail:       r.CustomerEmail,
		CustomerPhone:       r.CustomerPhone,
		ServiceType:         r.ServiceType,
		PickupLocation:      r.PickupLocation,
		DropoffLocation:     r.DropoffLocation,
		BookingDate:         r.BookingDate,
		BookingTime:         r.BookingTime,
		PassengerCount:      r.PassengerCount,
		VehiclePreference:   r.VehiclePreference,
		SpecialRequirements: r.SpecialRequirements,
		Status:              StatusPending,
		CreatedAt:           createdAt,
	}
}

// ListFilter pages through bookings, newest first.
type ListFilter struct {
	Status string
	Limit  int
	Offset int
}

func (f ListFilter) normalized() ListFilter {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
