package leads

import "errors"

var (
	ErrInvalidName    = errors.New("leads: name is required")
	ErrMissingContact = errors.New("leads: either email or phone is required")
	ErrInvalidEmail   = errors.New("leads: email address is not valid")
	ErrLeadNotFound   = errors.New("leads: lead not found")
)
