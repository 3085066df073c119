package bulk

import (
	"fmt"
	"slices"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/core/timeutil"
)

// Frequency of a recurring shift
type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

// MaxRecurringShifts caps a single expansion
const MaxRecurringShifts = 1000

// RecurrencePattern describes when a template shift repeats between StartDate and
// EndDate inclusive.
//
// DaysOfWeek uses 0 for Sunday through 6 for Saturday and applies to weekly and biweekly
// patterns; it defaults to the start date's weekday. DayOfMonth applies to monthly
// patterns and defaults to the start date's day. Interval is ignored for biweekly.
type RecurrencePattern struct {
	Frequency  Frequency `validate:"required,oneof=daily weekly biweekly monthly"`
	Interval   int       `validate:"gte=0"`
	DaysOfWeek []int     `validate:"dive,gte=0,lte=6"`
	DayOfMonth int       `validate:"gte=0,lte=31"`
	StartDate  string    `validate:"required,datetime=2006-01-02"`
	EndDate    string    `validate:"required,datetime=2006-01-02"`
	Exclusions []string  `validate:"dive,datetime=2006-01-02"`
}

var rruleWeekdays = []rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// CreateRecurringShifts expands template across the pattern's dates.
// Every generated shift gets a fresh id and the same RecurrenceID.
func CreateRecurringShifts(template model.Shift, pattern RecurrencePattern, ids model.IDGenerator) ([]model.Shift, error) {
	if err := validateOptions(pattern); err != nil {
		return nil, err
	}
	window, err := parseRange(pattern.StartDate, pattern.EndDate)
	if err != nil {
		return nil, err
	}
	if _, err := timeutil.ShiftInterval(model.Shift{ID: template.ID, Date: pattern.StartDate, StartTime: template.StartTime, EndTime: template.EndTime}); err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}

	dates, err := occurrences(pattern, window)
	if err != nil {
		return nil, err
	}

	return instantiate(template, dates, ids)
}

// instantiate creates one shift per position on each date, all sharing a new RecurrenceID
func instantiate(template model.Shift, dates []time.Time, ids model.IDGenerator) ([]model.Shift, error) {
	positions := template.Positions()
	if total := len(dates) * positions; total > MaxRecurringShifts {
		return nil, model.NewValidationError("recurrence", "pattern produces %d shifts (maximum %d)", total, MaxRecurringShifts)
	}

	recurrenceID := ids()
	status := template.Status
	if status == "" {
		status = model.StatusDraft
	}

	shifts := make([]model.Shift, 0, len(dates)*positions)
	for _, date := range dates {
		for p := 0; p < positions; p++ {
			shift := template
			shift.ID = ids()
			shift.Date = timeutil.FormatDate(date)
			shift.RecurrenceID = recurrenceID
			shift.Status = status
			shift.PositionsOpen = 1
			shifts = append(shifts, shift)
		}
	}

	return shifts, nil
}

// occurrences lists the pattern's dates within window, minus exclusions
func occurrences(pattern RecurrencePattern, window dateRange) ([]time.Time, error) {
	rule, err := rrule.NewRRule(ruleOption(pattern, window))
	if err != nil {
		return nil, fmt.Errorf("failed to build recurrence rule: %w", err)
	}

	weekdays := daysOfWeek(pattern, window)

	var dates []time.Time
	for _, date := range rule.Between(window.from, window.to, true) {
		if pattern.Frequency == FrequencyBiweekly && !onBiweeklyDay(date, window.from, weekdays) {
			continue
		}
		if slices.Contains(pattern.Exclusions, timeutil.FormatDate(date)) {
			continue
		}
		dates = append(dates, date)
	}

	return dates, nil
}

func ruleOption(pattern RecurrencePattern, window dateRange) rrule.ROption {
	option := rrule.ROption{
		Dtstart:  window.from,
		Until:    window.to,
		Interval: max(1, pattern.Interval),
		Wkst:     rrule.SU,
	}

	switch pattern.Frequency {
	case FrequencyDaily:
		option.Freq = rrule.DAILY
	case FrequencyWeekly:
		option.Freq = rrule.WEEKLY
		for _, d := range daysOfWeek(pattern, window) {
			option.Byweekday = append(option.Byweekday, rruleWeekdays[d])
		}
	case FrequencyBiweekly:
		// Expanded daily and filtered on week parity and weekday
		option.Freq = rrule.DAILY
		option.Interval = 1
	case FrequencyMonthly:
		option.Freq = rrule.MONTHLY
		day := pattern.DayOfMonth
		if day == 0 {
			day = window.from.Day()
		}
		option.Bymonthday = []int{day}
	}

	return option
}

func daysOfWeek(pattern RecurrencePattern, window dateRange) []int {
	if len(pattern.DaysOfWeek) == 0 {
		return []int{int(window.from.Weekday())}
	}
	return pattern.DaysOfWeek
}

// onBiweeklyDay reports whether date falls on an even week counted from the start
// date's week, and on one of the pattern's weekdays
func onBiweeklyDay(date, start time.Time, weekdays []int) bool {
	weeks := timeutil.DaysBetween(timeutil.WeekStart(start), timeutil.WeekStart(date)) / 7
	if weeks%2 != 0 {
		return false
	}
	return slices.Contains(weekdays, int(date.Weekday()))
}

// CreateShiftsFromRule expands template over the dates an RFC 5545 RRULE string produces
// between from and to inclusive. The rule's DTSTART is replaced by from.
// Used for the named recurring templates in the config file.
func CreateShiftsFromRule(template model.Shift, rule, from, to string, ids model.IDGenerator) ([]model.Shift, error) {
	window, err := parseRange(from, to)
	if err != nil {
		return nil, err
	}
	if _, err := timeutil.ShiftInterval(model.Shift{ID: template.ID, Date: from, StartTime: template.StartTime, EndTime: template.EndTime}); err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}

	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return nil, model.NewValidationError("rrule", "%v", err)
	}
	r.DTStart(window.from)

	return instantiate(template, r.Between(window.from, window.to, true), ids)
}
