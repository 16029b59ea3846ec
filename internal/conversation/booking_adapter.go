package conversation

import (
	"context"
	"errors"

	"github.com/vipride/booking-assistant/internal/bookings"
)

// BookingStore saves a completed booking and returns its id. Stores keep one booking per
// session: inserting again for a session returns the stored id with created=false.
type BookingStore interface {
	InsertBooking(ctx context.Context, sessionID string, record BookingRecord) (id string, created bool, err error)
}

// BookingStoreFunc adapts a function to BookingStore.
type BookingStoreFunc func(ctx context.Context, sessionID string, record BookingRecord) (string, bool, error)

func (f BookingStoreFunc) InsertBooking(ctx context.Context, sessionID string, record BookingRecord) (string, bool, error) {
	return f(ctx, sessionID, record)
}

// BookingServiceAdapter wires bookings.Service into the BookingStore contract.
type BookingServiceAdapter struct {
	Service *bookings.Service
}

func (a BookingServiceAdapter) InsertBooking(ctx context.Context, sessionID string, record BookingRecord) (string, bool, error) {
	if a.Service == nil {
		return "", false, errors.New("conversation: bookings service not configured")
	}
	booking, created, err := a.Service.Create(ctx, &bookings.CreateBookingRequest{
		SessionID:           sessionID,
		CustomerName:        record.CustomerName,
		CustomerEmail:       record.CustomerEmail,
		CustomerPhone:       record.CustomerPhone,
		ServiceType:         record.ServiceType,
		PickupLocation:      record.PickupLocation,
		DropoffLocation:     record.DropoffLocation,
		BookingDate:         record.BookingDate,
		BookingTime:         record.BookingTime,
		PassengerCount:      record.PassengerCount,
		VehiclePreference:   record.VehiclePreference,
		SpecialRequirements: record.SpecialRequirements,
	})
	if err != nil {
		return "", false, err
	}
	return booking.ID, created, nil
}
