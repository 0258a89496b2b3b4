package content

import "errors"

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrInvalidQuery    = errors.New("invalid availability query")
	ErrUpstream        = errors.New("booking api unavailable")
)
