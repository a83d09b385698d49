package constants

const (
	ConfigName   = "config"
	ConfigFormat = "yaml"
	EnvPrefix    = "COACHBOOK"

	ServiceName = "coachbook_backend"
)

// NATS subjects. The trailing token is the coach ID.
const (
	SubjectCalendarChanged = "coachbook.calendar.changed.*"
	SubjectScheduleUpdated = "coachbook.schedule.updated.*"
)
