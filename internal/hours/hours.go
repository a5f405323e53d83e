// Package hours models the static weekly window during which technician
// lines may be routed live. The schedule is read-only at runtime.
package hours

import (
	"strings"
	"time"
)

// Window is a weekly business-hours schedule in a fixed time zone.
type Window struct {
	weekdays map[time.Weekday]bool
	start    int // inclusive hour, 0-23
	end      int // exclusive hour, 1-24
	loc      *time.Location
}

// New builds a Window. Weekday names accept both short ("Tue") and long
// ("Tuesday") forms, case-insensitive. Unknown names are ignored.
func New(weekdays []string, startHour, endHour int, timezone string) (*Window, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	days := make(map[time.Weekday]bool, len(weekdays))
	for _, name := range weekdays {
		if d, ok := parseWeekday(name); ok {
			days[d] = true
		}
	}
	return &Window{weekdays: days, start: startHour, end: endHour, loc: loc}, nil
}

// Contains reports whether t falls inside the window. The instant is
// converted to the window's zone before checking.
func (w *Window) Contains(t time.Time) bool {
	local := t.In(w.loc)
	if !w.weekdays[local.Weekday()] {
		return false
	}
	h := local.Hour()
	return h >= w.start && h < w.end
}

// Location returns the window's reference time zone.
func (w *Window) Location() *time.Location { return w.loc }

func parseWeekday(name string) (time.Weekday, bool) {
	switch strings.ToLower(name) {
	case "sun", "sunday":
		return time.Sunday, true
	case "mon", "monday":
		return time.Monday, true
	case "tue", "tues", "tuesday":
		return time.Tuesday, true
	case "wed", "wednesday":
		return time.Wednesday, true
	case "thu", "thur", "thurs", "thursday":
		return time.Thursday, true
	case "fri", "friday":
		return time.Friday, true
	case "sat", "saturday":
		return time.Saturday, true
	}
	return 0, false
}
