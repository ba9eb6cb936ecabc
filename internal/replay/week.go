// Package replay drives streak algorithms through scripted scenarios written
// in symbolic week times ("Mon 07:00") against a simulated server clock.
package replay

import (
	"fmt"
	"strings"
	"time"
)

// Monday is the first day of the symbolic week, 2014-11-24.
var Monday = time.Date(2014, time.November, 24, 0, 0, 0, 0, time.UTC)

var dayNames = map[string]int{
	"mon": 0, "tue": 1, "wed": 2, "thu": 3, "fri": 4, "sat": 5, "sun": 6,
}

// Moment parses "Mon 07:00" (or "Mon 07:00:30") into a naive time in the
// symbolic week, expressed in time.UTC.
func Moment(s string) (time.Time, error) {
	day, clock, ok := strings.Cut(strings.TrimSpace(s), " ")
	if !ok {
		return time.Time{}, fmt.Errorf("moment %q: want \"<Day> HH:MM\"", s)
	}
	idx, ok := dayNames[strings.ToLower(day)]
	if !ok {
		return time.Time{}, fmt.Errorf("moment %q: unknown day %q", s, day)
	}
	layout := "15:04"
	if strings.Count(clock, ":") == 2 {
		layout = "15:04:05"
	}
	tod, err := time.Parse(layout, strings.TrimSpace(clock))
	if err != nil {
		return time.Time{}, fmt.Errorf("moment %q: %w", s, err)
	}
	return Monday.AddDate(0, 0, idx).Add(
		time.Duration(tod.Hour())*time.Hour +
			time.Duration(tod.Minute())*time.Minute +
			time.Duration(tod.Second())*time.Second), nil
}

// MustMoment is Moment for literals known to be valid.
func MustMoment(s string) time.Time {
	t, err := Moment(s)
	if err != nil {
		panic(err)
	}
	return t
}

// FormatMoment renders t back into symbolic form when it falls inside the
// symbolic week, and as a plain timestamp otherwise.
func FormatMoment(t time.Time) string {
	t = t.UTC()
	d := int(t.Sub(Monday) / (24 * time.Hour))
	if t.Before(Monday) || d > 6 {
		return t.Format("2006-01-02 15:04:05")
	}
	name := t.Weekday().String()[:3]
	if t.Second() != 0 {
		return name + " " + t.Format("15:04:05")
	}
	return name + " " + t.Format("15:04")
}

// Clock is a settable stand-in for the trusted server clock.
type Clock struct {
	now time.Time
}

// NewClock returns a clock reading Mon 00:00.
func NewClock() *Clock {
	return &Clock{now: Monday}
}

// Now returns the current simulated UTC time.
func (c *Clock) Now() time.Time { return c.now }

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) { c.now = t.UTC() }

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) { c.now = c.now.Add(d) }
