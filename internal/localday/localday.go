// Package localday does calendar-day arithmetic on client-local timestamps.
//
// A Time keeps the trusted UTC instant together with the offset the client
// claimed at that instant. Day boundaries come from the local wall clock,
// ordering and staleness come from UTC.
package localday

import (
	"fmt"
	"time"
)

// ContiguityThreshold is the smallest DayDistance that breaks a streak.
// Same day (1) and next day (2) are contiguous; a missed day (3) is not.
const ContiguityThreshold = 3

// Time is a UTC instant plus the client's offset from UTC.
type Time struct {
	UTC    time.Time
	Offset time.Duration
}

// At builds a Time from a trusted UTC instant and a client offset.
func At(utc time.Time, offset time.Duration) Time {
	return Time{UTC: utc.UTC(), Offset: offset}
}

// Wall returns the local wall-clock reading, expressed in time.UTC so the
// calendar fields are the local ones.
func (t Time) Wall() time.Time {
	return t.UTC.Add(t.Offset)
}

// Date returns the local calendar date.
func (t Time) Date() Date {
	y, m, d := t.Wall().Date()
	return Date{Year: y, Month: m, Day: d}
}

// Before reports whether t's wall clock is earlier than o's.
func (t Time) Before(o Time) bool {
	return t.Wall().Before(o.Wall())
}

// After reports whether t's wall clock is later than o's.
func (t Time) After(o Time) bool {
	return t.Wall().After(o.Wall())
}

// IsZero reports whether t carries no instant.
func (t Time) IsZero() bool {
	return t.UTC.IsZero()
}

func (t Time) String() string {
	return t.Wall().Format("2006-01-02 15:04:05") + " (UTC" + FormatOffset(t.Offset) + ")"
}

// Date is a civil calendar date.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// days returns the number of days since the Unix epoch.
func (d Date) days() int64 {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// AddDays returns the date n days later (earlier when n is negative).
func (d Date) AddDays(n int) Date {
	y, m, dd := time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC).Date()
	return Date{Year: y, Month: m, Day: dd}
}

// Weekday returns the day of the week.
func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

// Naive returns the wall-clock reading of t re-expressed in UTC, discarding
// t's location. Clients report local times this way.
func Naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// DayDistance counts calendar days in the closed span [a, b]: same day is 1,
// next day is 2. When b falls on an earlier date the result is negative and
// symmetric: one day earlier is -2.
func DayDistance(a, b Time) int {
	d := int(b.Date().days() - a.Date().days())
	if d >= 0 {
		return d + 1
	}
	return d - 1
}

// AreContiguous reports whether a span ending at end and one beginning at
// begin belong to the same unbroken streak.
func AreContiguous(end, begin Time) bool {
	return DayDistance(end, begin) < ContiguityThreshold
}
