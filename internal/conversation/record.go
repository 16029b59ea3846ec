package conversation

import "strconv"

// Booking record field keys. They double as JSON keys and database column names.
const (
	FieldCustomerName        = "customer_name"
	FieldCustomerEmail       = "customer_email"
	FieldCustomerPhone       = "customer_phone"
	FieldServiceType         = "service_type"
	FieldPickupLocation      = "pickup_location"
	FieldDropoffLocation     = "dropoff_location"
	FieldBookingDate         = "booking_date"
	FieldBookingTime         = "booking_time"
	FieldPassengerCount      = "passenger_count"
	FieldVehiclePreference   = "vehicle_preference"
	FieldSpecialRequirements = "special_requirements"
)

// RequiredFields lists, in asking order, the fields a booking needs before it can be saved.
// Vehicle preference and special requirements are optional.
var RequiredFields = []string{
	FieldCustomerName,
	FieldCustomerEmail,
	FieldCustomerPhone,
	FieldServiceType,
	FieldPickupLocation,
	FieldDropoffLocation,
	FieldBookingDate,
	FieldBookingTime,
	FieldPassengerCount,
}

// BookingRecord is the structured target of slot filling. A zero value field is unset.
type BookingRecord struct {
	CustomerName        string `json:"customer_name,omitempty"`
	CustomerEmail       string `json:"customer_email,omitempty"`
	CustomerPhone       string `json:"customer_phone,omitempty"`
	PickupLocation      string `json:"pickup_location,omitempty"`
	DropoffLocation     string `json:"dropoff_location,omitempty"`
	BookingDate         string `json:"booking_date,omitempty"` // YYYY-MM-DD
	BookingTime         string `json:"booking_time,omitempty"` // HH:MM:SS
	ServiceType         string `json:"service_type,omitempty"`
	PassengerCount      int    `json:"passenger_count,omitempty"`
	VehiclePreference   string `json:"vehicle_preference,omitempty"`
	SpecialRequirements string `json:"special_requirements,omitempty"`
}

// Has reports whether the named field is set.
func (r BookingRecord) Has(field string) bool {
	_, ok := r.value(field)
	return ok
}

// Fields returns the set fields keyed by field name, with values rendered as strings.
func (r BookingRecord) Fields() map[string]string {
	out := make(map[string]string)
	for _, field := range allFields {
		if v, ok := r.value(field); ok {
			out[field] = v
		}
	}
	return out
}

// IsEmpty reports whether no field is set.
func (r BookingRecord) IsEmpty() bool {
	return r == BookingRecord{}
}

func (r BookingRecord) value(field string) (string, bool) {
	var v string
	switch field {
	case FieldCustomerName:
		v = r.CustomerName
	case FieldCustomerEmail:
		v = r.CustomerEmail
	case FieldCustomerPhone:
		v = r.CustomerPhone
	case FieldServiceType:
		v = r.ServiceType
	case FieldPickupLocation:
		v = r.PickupLocation
	case FieldDropoffLocation:
		v = r.DropoffLocation
	case FieldBookingDate:
		v = r.BookingDate
	case FieldBookingTime:
		v = r.BookingTime
	case FieldPassengerCount:
		if r.PassengerCount <= 0 {
			return "", false
		}
		v = strconv.Itoa(r.PassengerCount)
	case FieldVehiclePreference:
		v = r.VehiclePreference
	case FieldSpecialRequirements:
		v = r.SpecialRequirements
	}
	return v, v != ""
}

var allFields = append(append([]string{}, RequiredFields...), FieldVehiclePreference, FieldSpecialRequirements)

// Merge overlays the set fields of partial onto old and returns the result.
// Fields absent from partial are left untouched; neither argument is modified.
func Merge(old, partial BookingRecord) BookingRecord {
	merged := old
	if partial.CustomerName != "" {
		merged.CustomerName = partial.CustomerName
	}
	if partial.CustomerEmail != "" {
		merged.CustomerEmail = partial.CustomerEmail
	}
	if partial.CustomerPhone != "" {
		merged.CustomerPhone = partial.CustomerPhone
	}
	if partial.PickupLocation != "" {
		merged.PickupLocation = partial.PickupLocation
	}
	if partial.DropoffLocation != "" {
		merged.DropoffLocation = partial.DropoffLocation
	}
	if partial.BookingDate != "" {
		merged.BookingDate = partial.BookingDate
	}
	if partial.BookingTime != "" {
		merged.BookingTime = partial.BookingTime
	}
	if partial.ServiceType != "" {
		merged.ServiceType = partial.ServiceType
	}
	if partial.PassengerCount > 0 {
		merged.PassengerCount = partial.PassengerCount
	}
	if partial.VehiclePreference != "" {
		merged.VehiclePreference = partial.VehiclePreference
	}
	if partial.SpecialRequirements != "" {
		merged.SpecialRequirements = partial.SpecialRequirements
	}
	return merged
}

// MissingFields returns the required fields not yet set, in RequiredFields order.
func MissingFields(r BookingRecord) []string {
	missing := make([]string, 0, len(RequiredFields))
	for _, field := range RequiredFields {
		if !r.Has(field) {
			missing = append(missing, field)
		}
	}
	return missing
}

// IsComplete reports whether every required field is set.
func IsComplete(r BookingRecord) bool {
	return len(MissingFields(r)) == 0
}

// FieldLabel returns a human readable label for a field key.
func FieldLabel(field string) string {
	switch field {
	case FieldCustomerName:
		return "name"
	case FieldCustomerEmail:
		return "email address"
	case FieldCustomerPhone:
		return "phone number"
	case FieldServiceType:
		return "service type"
	case FieldPickupLocation:
		return "pickup location"
	case FieldDropoffLocation:
		return "drop-off location"
	case FieldBookingDate:
		return "date"
	case FieldBookingTime:
		return "pickup time"
	case FieldPassengerCount:
		return "number of passengers"
	case FieldVehiclePreference:
		return "vehicle preference"
	case FieldSpecialRequirements:
		return "special requirements"
	default:
		return field
	}
}
