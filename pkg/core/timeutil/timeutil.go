// Package timeutil holds the date and interval arithmetic shared by the scheduling core.
// All wall-clock values are interpreted in UTC so that day and hour arithmetic is exact.
package timeutil

import (
	"fmt"
	"time"

	"github.com/jakechorley/guard-rota/pkg/core/model"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"

	Day  = 24 * time.Hour
	Week = 7 * Day
)

// Night shifts start at or after 22:00 or before 06:00
const (
	NightStartHour = 22
	NightEndHour   = 6
	EveningHour    = 14
)

// Interval is a half-open [Start, End) span of time
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals share any instant.
// Touching intervals (one ends exactly when the other starts) do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Hours returns the interval length in hours
func (i Interval) Hours() float64 {
	return i.End.Sub(i.Start).Hours()
}

// ParseDate parses a "2006-01-02" date at UTC midnight
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, model.NewValidationError("date", "%q is not a YYYY-MM-DD date", s)
	}
	return d, nil
}

// ParseClock parses a "15:04" time of day into an offset from midnight
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, model.NewValidationError("time", "%q is not an HH:MM time", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// ShiftInterval returns the instants a shift covers.
// When EndTime is earlier than StartTime the shift crosses midnight and ends the next day.
func ShiftInterval(shift model.Shift) (Interval, error) {
	date, err := ParseDate(shift.Date)
	if err != nil {
		return Interval{}, fmt.Errorf("shift %s: %w", shift.ID, err)
	}
	start, err := ParseClock(shift.StartTime)
	if err != nil {
		return Interval{}, fmt.Errorf("shift %s start: %w", shift.ID, err)
	}
	end, err := ParseClock(shift.EndTime)
	if err != nil {
		return Interval{}, fmt.Errorf("shift %s end: %w", shift.ID, err)
	}
	if end < start {
		end += Day
	}
	return Interval{Start: date.Add(start), End: date.Add(end)}, nil
}

// ShiftHours returns a shift's duration in hours, with overnight wrap-around
func ShiftHours(shift model.Shift) (float64, error) {
	interval, err := ShiftInterval(shift)
	if err != nil {
		return 0, err
	}
	return interval.Hours(), nil
}

// StartOfDay truncates t to UTC midnight of its calendar date
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole calendar days from a to b (negative if b is before a)
func DaysBetween(a, b time.Time) int {
	return int(StartOfDay(b).Sub(StartOfDay(a)).Hours() / 24)
}

// WeekStart returns the Sunday on or before date
func WeekStart(date time.Time) time.Time {
	d := StartOfDay(date)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// FormatDate formats t as "2006-01-02"
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// IsNightStart reports whether a shift starting at t counts as a night shift
func IsNightStart(t time.Time) bool {
	h := t.Hour()
	return h >= NightStartHour || h < NightEndHour
}

// ClassifyShift returns the shift's explicit type, or derives it from its start time
func ClassifyShift(shift model.Shift) (model.ShiftType, error) {
	if shift.ShiftType != "" {
		return shift.ShiftType, nil
	}
	interval, err := ShiftInterval(shift)
	if err != nil {
		return "", err
	}
	switch h := interval.Start.Hour(); {
	case IsNightStart(interval.Start):
		return model.ShiftTypeNight, nil
	case h >= EveningHour:
		return model.ShiftTypeEvening, nil
	default:
		return model.ShiftTypeDay, nil
	}
}

// IsNightShift reports whether the shift is a night shift
func IsNightShift(shift model.Shift) (bool, error) {
	t, err := ClassifyShift(shift)
	if err != nil {
		return false, err
	}
	return t == model.ShiftTypeNight, nil
}

// AgeOn returns completed years between birth and on
func AgeOn(birth, on time.Time) int {
	years := on.Year() - birth.Year()
	if on.Month() < birth.Month() || (on.Month() == birth.Month() && on.Day() < birth.Day()) {
		years--
	}
	return years
}
