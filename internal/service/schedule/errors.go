package schedule

import "errors"

var (
	ErrScheduleNotFound    = errors.New("no default availability schedule for coach")
	ErrIntegrationNotFound = errors.New("no calendar integration for coach")
	ErrInvalidSchedule     = errors.New("invalid availability schedule")
)
