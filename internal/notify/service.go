package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vipride/booking-assistant/internal/bookings"
	"github.com/vipride/booking-assistant/internal/leads"
	"github.com/vipride/booking-assistant/pkg/logging"
)

// Config names the business in outgoing mail and says where operations alerts go.
type Config struct {
	BusinessName string
	OpsEmail     string
	ContactPhone string
	ContactEmail string
}

// Service emails the operations team and customers about new bookings and enquiries.
type Service struct {
	email  EmailSender
	cfg    Config
	logger *logging.Logger
}

func NewService(email EmailSender, cfg Config, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if email == nil {
		email = NewStubEmailSender(logger)
	}
	if strings.TrimSpace(cfg.BusinessName) == "" {
		cfg.BusinessName = defaultFromName
	}
	return &Service{email: email, cfg: cfg, logger: logger}
}

// NotifyBookingReceived alerts operations and acknowledges the customer. Both sends are
// attempted; their errors are joined.
func (s *Service) NotifyBookingReceived(ctx context.Context, b *bookings.Booking) error {
	if b == nil {
		return nil
	}
	var errs []error
	if s.cfg.OpsEmail != "" {
		err := s.email.Send(ctx, EmailMessage{
			To:      s.cfg.OpsEmail,
			ReplyTo: b.CustomerEmail,
			Subject: fmt.Sprintf("New booking request: %s on %s", b.ServiceType, b.BookingDate),
			Body:    opsBookingBody(b),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("ops alert: %w", err))
		}
	} else {
		s.logger.Debug("ops email not configured, skipping booking alert", "booking_id", b.ID)
	}

	if b.CustomerEmail != "" {
		err := s.email.Send(ctx, EmailMessage{
			To:      b.CustomerEmail,
			ToName:  b.CustomerName,
			ReplyTo: s.cfg.ContactEmail,
			Subject: fmt.Sprintf("We've received your booking request - %s", s.cfg.BusinessName),
			Body:    s.customerBookingBody(b),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("customer acknowledgement: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("notify: booking %s: %w", b.ID, errors.Join(errs...))
	}
	return nil
}

// NotifyLeadReceived alerts operations about a contact form enquiry.
func (s *Service) NotifyLeadReceived(ctx context.Context, lead *leads.Lead) error {
	if lead == nil || s.cfg.OpsEmail == "" {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "A new enquiry was left on the website.\n\n")
	writeLine(&b, "Name", lead.Name)
	writeLine(&b, "Email", lead.Email)
	writeLine(&b, "Phone", lead.Phone)
	writeLine(&b, "Service", lead.ServiceType)
	writeLine(&b, "Source", lead.Source)
	writeLine(&b, "Message", lead.Message)

	if err := s.email.Send(ctx, EmailMessage{
		To:      s.cfg.OpsEmail,
		ReplyTo: lead.Email,
		Subject: fmt.Sprintf("New enquiry from %s", lead.Name),
		Body:    b.String(),
	}); err != nil {
		return fmt.Errorf("notify: lead %s: %w", lead.ID, err)
	}
	return nil
}

func opsBookingBody(bk *bookings.Booking) string {
	var b strings.Builder
	b.WriteString("A booking request was completed in the website chat. Please call the customer to confirm.\n\n")
	writeLine(&b, "Booking ID", bk.ID)
	writeLine(&b, "Name", bk.CustomerName)
	writeLine(&b, "Email", bk.CustomerEmail)
	writeLine(&b, "Phone", bk.CustomerPhone)
	writeLine(&b, "Service", bk.ServiceType)
	writeLine(&b, "Pickup", bk.PickupLocation)
	writeLine(&b, "Drop-off", bk.DropoffLocation)
	writeLine(&b, "Date", bk.BookingDate)
	writeLine(&b, "Time", bk.BookingTime)
	writeLine(&b, "Passengers", fmt.Sprint(bk.PassengerCount))
	writeLine(&b, "Vehicle", bk.VehiclePreference)
	writeLine(&b, "Requirements", bk.SpecialRequirements)
	writeLine(&b, "Chat session", bk.SessionID)
	return b.String()
}

func (s *Service) customerBookingBody(bk *bookings.Booking) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", firstName(bk.CustomerName))
	fmt.Fprintf(&b, "Thank you for booking with %s. Here is what we have:\n\n", s.cfg.BusinessName)
	writeLine(&b, "Service", bk.ServiceType)
	writeLine(&b, "Pickup", bk.PickupLocation)
	writeLine(&b, "Drop-off", bk.DropoffLocation)
	writeLine(&b, "Date", bk.BookingDate)
	writeLine(&b, "Time", bk.BookingTime)
	writeLine(&b, "Passengers", fmt.Sprint(bk.PassengerCount))
	b.WriteString("\nA member of our team will call you shortly to confirm the details and price.")
	if s.cfg.ContactPhone != "" {
		fmt.Fprintf(&b, " If anything changes, call us on %s.", s.cfg.ContactPhone)
	}
	b.WriteString("\n")
	return b.String()
}

func writeLine(b *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", label, value)
}

func firstName(full string) string {
	if parts := strings.Fields(full); len(parts) > 0 {
		return parts[0]
	}
	return "there"
}
