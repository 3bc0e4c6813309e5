// Package schedule maps routine durations onto the calendar.
//
// All functions work on calendar dates: inputs are truncated to midnight UTC
// of their own calendar day, so callers should convert "now" into the
// relevant time zone first (see DateIn).
package schedule

import (
	"fmt"
	"time"

	"alcyxob/gym-app/internal/domain"
)

const day = 24 * time.Hour

var weeksByDuration = map[domain.DurationType]int{
	domain.DurationWeek:      1,
	domain.DurationMonth:     4,
	domain.DurationTrimester: 12,
}

// WeeksFor returns the fixed week count of a duration type. It panics for
// values outside the enum; inputs must go through domain.ParseDurationType.
func WeeksFor(d domain.DurationType) int {
	weeks, ok := weeksByDuration[d]
	if !ok {
		panic(fmt.Sprintf("schedule: unknown duration type %q", d))
	}
	return weeks
}

// Date truncates t to midnight UTC of its calendar date.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateIn returns the calendar date of t as observed in loc.
func DateIn(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Date(t.In(loc))
}

// ComputeEndDate returns the last day of the inclusive range
// [start, start + weeks*7 - 1].
func ComputeEndDate(start time.Time, d domain.DurationType) time.Time {
	weeks := WeeksFor(d)
	return Date(start).AddDate(0, 0, weeks*7-1)
}

// ISOWeekday maps time.Weekday (Sunday=0) to Monday=1 .. Sunday=7.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// ResolveTodayCoordinate returns the (week, day) slot for today, or false if
// today falls outside [start, end]. The day is today's ISO weekday, not an
// offset from start.
func ResolveTodayCoordinate(start, end, today time.Time) (domain.Coordinate, bool) {
	start, end, today = Date(start), Date(end), Date(today)
	if today.Before(start) || today.After(end) {
		return domain.Coordinate{}, false
	}
	diffDays := int(today.Sub(start) / day)
	return domain.Coordinate{
		Week: diffDays/7 + 1,
		Day:  ISOWeekday(today),
	}, true
}

// ValidCoordinate reports whether c addresses a slot of a routine with the
// given duration.
func ValidCoordinate(c domain.Coordinate, d domain.DurationType) bool {
	return c.Week >= 1 && c.Week <= WeeksFor(d) && c.Day >= 1 && c.Day <= 7
}
