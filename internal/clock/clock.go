package clock

import (
	"fmt"
	"time"
)

// UserClock supplies "today" in the time zone the health workers are configured for.
type UserClock struct {
	location *time.Location
	now      func() time.Time
}

func NewUserClock(location *time.Location) *UserClock {
	if location == nil {
		location = time.UTC
	}
	return &UserClock{location: location, now: time.Now}
}

// LoadUserClock resolves an IANA zone name such as "Asia/Kolkata".
func LoadUserClock(zone string) (*UserClock, error) {
	location, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("invalid user time zone %q: %w", zone, err)
	}
	return NewUserClock(location), nil
}

// NewFixedClock always reports the given instant. Used by tests and one-off exports.
func NewFixedClock(instant time.Time) *UserClock {
	return &UserClock{location: instant.Location(), now: func() time.Time { return instant }}
}

func (c *UserClock) Location() *time.Location {
	return c.location
}

// Today returns the current calendar date in the user's zone, at midnight UTC.
func (c *UserClock) Today() time.Time {
	return Date(c.now().In(c.location))
}

// Date drops the time of day, keeping the calendar date as seen in t's own location.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole calendar days from `from` to `to`.
// The result is negative when `from` is after `to`.
func DaysBetween(from, to time.Time) int {
	return int(Date(to).Sub(Date(from)).Hours() / 24)
}
