package bookings

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vipride/booking-assistant/pkg/logging"
)

var bookingsTracer = otel.Tracer("vipride/bookings")

// Notifier is told about each new booking. Failures never undo the booking.
type Notifier interface {
	NotifyBookingReceived(ctx context.Context, booking *Booking) error
}

// Service records booking requests and tells the operations team about them.
type Service struct {
	repo     Repository
	notifier Notifier
	logger   *logging.Logger
}

func NewService(repo Repository, notifier Notifier, logger *logging.Logger) *Service {
	if repo == nil {
		panic("bookings: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

// Create stores a pending booking and returns it with its generated id. When the session
// already has a booking, that booking is returned with created=false and nobody is notified.
func (s *Service) Create(ctx context.Context, req *CreateBookingRequest) (*Booking, bool, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.create")
	defer span.End()
	span.SetAttributes(
		attribute.String("vipride.session_id", req.SessionID),
		attribute.String("vipride.service_type", req.ServiceType),
	)

	booking, created, err := s.repo.Create(ctx, req)
	if err != nil {
		span.RecordError(err)
		return nil, false, err
	}
	span.SetAttributes(
		attribute.String("vipride.booking_id", booking.ID),
		attribute.Bool("vipride.booking_created", created),
	)
	if !created {
		s.logger.Info("booking already recorded for session",
			"booking_id", booking.ID,
			"session_id", booking.SessionID,
		)
		return booking, false, nil
	}
	s.logger.Info("booking created",
		"booking_id", booking.ID,
		"session_id", booking.SessionID,
		"service_type", booking.ServiceType,
		"booking_date", booking.BookingDate,
	)

	if s.notifier != nil {
		if err := s.notifier.NotifyBookingReceived(ctx, booking); err != nil {
			s.logger.Warn("booking notification failed", "booking_id", booking.ID, "error", err)
		}
	}
	return booking, true, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Booking, error) {
	return s.repo.List(ctx, filter)
}
