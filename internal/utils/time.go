package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitchain/internal/constants"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == constants.DefaultTimezone {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return loc, nil
}

// CalendarDate returns the YYYY-MM-DD date of t as seen in loc.
// A nil loc means the system local timezone.
func CalendarDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(constants.DateFormat)
}

// SameCalendarDay reports whether a and b fall on the same date in loc
func SameCalendarDay(a, b time.Time, loc *time.Location) bool {
	return CalendarDate(a, loc) == CalendarDate(b, loc)
}

// DaysAgo returns the calendar date n days before now in loc.
// Stepping is done on the date, not by 24h durations, so DST shifts do not skip days.
func DaysAgo(now time.Time, n int, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day()-n, 12, 0, 0, 0, loc)
	return day.Format(constants.DateFormat)
}

// ParseTime parses a time string in the standard format (HH:MM).
func ParseTime(timeStr string) (time.Time, error) {
	return time.Parse(constants.TimeFormat, timeStr)
}

// ValidateTimeFormat checks if the string matches the standard time format.
func ValidateTimeFormat(timeStr string) bool {
	_, err := ParseTime(timeStr)
	return err == nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}
