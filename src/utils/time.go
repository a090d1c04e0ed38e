package utils

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

const ClockLayout = "15:04"

// ParseClock parses an "HH:MM" time of day.
func ParseClock(clock string) (hour int, minute int, err error) {
	t, err := time.Parse(ClockLayout, clock)
	if err != nil {
		return 0, 0, fmt.Errorf("ParseClock: invalid time of day %q: %w", clock, err)
	}

	return t.Hour(), t.Minute(), nil
}

// NextDailyOccurrence returns the first instant strictly after now at which
// the wall clock in loc reads hour:minute.
func NextDailyOccurrence(now time.Time, hour, minute int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, loc)
	}

	return next
}
