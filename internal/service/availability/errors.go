package availability

import "errors"

var (
	ErrInvalidDate       = errors.New("date must be formatted as YYYY-MM-DD")
	ErrDateOutsideWindow = errors.New("date is outside the booking window")
)
