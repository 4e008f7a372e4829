package services

import "time"

// Clock is the single time source for limit windows, transaction timestamps and expiry.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in a fixed location.
type SystemClock struct {
	Location *time.Location
}

func NewSystemClock(loc *time.Location) *SystemClock {
	if loc == nil {
		loc = time.Local
	}
	return &SystemClock{Location: loc}
}

func (c *SystemClock) Now() time.Time {
	return time.Now().In(c.Location)
}

// DayWindow returns [start of the calendar day containing now, start of the next day)
// in now's location.
func DayWindow(now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}
