package booking

import "errors"

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrUnavailable       = errors.New("listing is not available for the requested dates")
	ErrInvalidTransition = errors.New("booking cannot change to that status")
	ErrStayInPast        = errors.New("check-in date is in the past")
)
