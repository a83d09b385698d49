package busytime

import "errors"

var ErrCalendarUnavailable = errors.New("calendar provider unavailable")
