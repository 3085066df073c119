package conflicts

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jakechorley/guard-rota/pkg/core/timeutil"
)

// Fatigue score contributions
const (
	FatigueConsecutiveDaysBlocking = 40
	FatigueConsecutiveDaysWarning  = 20
	FatigueNoWeeklyRest            = 30
	FatigueNightShifts             = 25
	FatigueShiftRotation           = 20
)

// ConsecutiveDaysRule limits runs of consecutive worked days.
//
// The run is every consecutive calendar date with at least one shift that includes
// the candidate's date. A run of ConsecutiveDaysBlocking or more is blocking,
// ConsecutiveDaysWarning or more is a warning.
type ConsecutiveDaysRule struct{}

func (r *ConsecutiveDaysRule) Name() string     { return "ConsecutiveDays" }
func (r *ConsecutiveDaysRule) Group() RuleGroup { return GroupFatigue }

func (r *ConsecutiveDaysRule) Evaluate(ctx context.Context, input *EvaluationInput) ([]Finding, error) {
	worked := input.timeline.workedDates()
	day := input.timeline.candidate.date

	run := 1
	for d := day.AddDate(0, 0, -1); worked[d]; d = d.AddDate(0, 0, -1) {
		run++
	}
	for d := day.AddDate(0, 0, 1); worked[d]; d = d.AddDate(0, 0, 1) {
		run++
	}

	switch {
	case run >= input.rules.ConsecutiveDaysBlocking:
		return []Finding{{
			Conflict: Conflict{
				Type:     TypeConsecutiveDays,
				Severity: SeverityBlocking,
				Message:  fmt.Sprintf("%d consecutive working days (maximum %d)", run, input.rules.ConsecutiveDaysBlocking-1),
				Details:  map[string]any{"consecutiveDays": run},
			},
			FatiguePoints: FatigueConsecutiveDaysBlocking,
		}}, nil
	case run >= input.rules.ConsecutiveDaysWarning:
		return []Finding{{
			Conflict: Conflict{
				Type:     TypeConsecutiveDays,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("%d consecutive working days", run),
				Details:  map[string]any{"consecutiveDays": run},
			},
			FatiguePoints: FatigueConsecutiveDaysWarning,
		}}, nil
	}

	return nil, nil
}

// WeeklyRestRule requires one continuous rest period of WeeklyRestHours within the
// candidate's Sunday-start week. Shifts spilling into or out of the week are clipped.
type WeeklyRestRule struct{}

func (r *WeeklyRestRule) Name() string     { return "WeeklyRest" }
func (r *WeeklyRestRule) Group() RuleGroup { return GroupFatigue }

func (r *WeeklyRestRule) Evaluate(ctx context.Context, input *EvaluationInput) ([]Finding, error) {
	weekStart := timeutil.WeekStart(input.timeline.candidate.date)
	weekEnd := weekStart.Add(timeutil.Week)
	required := time.Duration(input.rules.WeeklyRestHours * float64(time.Hour))

	var busy []timeutil.Interval
	for _, e := range input.timeline.entries {
		window := timeutil.Interval{Start: weekStart, End: weekEnd}
		if !e.interval.Overlaps(window) {
			continue
		}
		busy = append(busy, e.interval)
	}
	sort.Slice(busy, func(i, j int) bool { return busy[i].Start.Before(busy[j].Start) })

	longest := time.Duration(0)
	cursor := weekStart
	for _, iv := range busy {
		if gap := iv.Start.Sub(cursor); gap > longest {
			longest = gap
		}
		if iv.End.After(cursor) {
			cursor = iv.End
		}
	}
	if gap := weekEnd.Sub(cursor); gap > longest {
		longest = gap
	}

	if longest >= required {
		return nil, nil
	}

	return []Finding{{
		Conflict: Conflict{
			Type:     TypeNoWeeklyRest,
			Severity: SeverityCritical,
			Message: fmt.Sprintf("No %.0f hour rest period in week starting %s (longest %.1f hours)",
				input.rules.WeeklyRestHours, timeutil.FormatDate(weekStart), longest.Hours()),
			Details: map[string]any{"longestRestHours": roundTo(longest.Hours(), 1)},
		},
		FatiguePoints: FatigueNoWeeklyRest,
	}}, nil
}

// NightShiftRule warns when a night shift follows MaxNightShiftsPerWeek or more night
// shifts started in the trailing seven days.
type NightShiftRule struct{}

func (r *NightShiftRule) Name() string     { return "NightShifts" }
func (r *NightShiftRule) Group() RuleGroup { return GroupFatigue }

func (r *NightShiftRule) Evaluate(ctx context.Context, input *EvaluationInput) ([]Finding, error) {
	candidate := input.timeline.candidate
	if !candidate.night {
		return nil, nil
	}

	windowStart := candidate.interval.Start.Add(-timeutil.Week)
	count := 0
	for _, e := range input.timeline.others() {
		start := e.interval.Start
		if start.Before(windowStart) || !start.Before(candidate.interval.Start) {
			continue
		}
		if e.night {
			count++
		}
	}

	if count < input.rules.MaxNightShiftsPerWeek {
		return nil, nil
	}

	return []Finding{{
		Conflict: Conflict{
			Type:     TypeNightShifts,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("%d night shifts already worked in the previous 7 days", count),
			Details:  map[string]any{"nightShifts": count},
		},
		FatiguePoints: FatigueNightShifts,
	}}, nil
}

// ShiftRotationRule warns when the guard switches between day and night work
// within RotationWindowHours of the candidate's start.
type ShiftRotationRule struct{}

func (r *ShiftRotationRule) Name() string     { return "ShiftRotation" }
func (r *ShiftRotationRule) Group() RuleGroup { return GroupFatigue }

func (r *ShiftRotationRule) Evaluate(ctx context.Context, input *EvaluationInput) ([]Finding, error) {
	candidate := input.timeline.candidate
	window := time.Duration(input.rules.RotationWindowHours * float64(time.Hour))

	for _, e := range input.timeline.others() {
		distance := e.interval.Start.Sub(candidate.interval.Start)
		if distance < 0 {
			distance = -distance
		}
		if distance > window {
			continue
		}
		if e.night == candidate.night {
			continue
		}

		return []Finding{{
			Conflict: Conflict{
				Type:     TypeShiftRotation,
				Severity: SeverityWarning,
				Message: fmt.Sprintf("Day/night rotation within %.0f hours of shift on %s",
					input.rules.RotationWindowHours, e.shift.Date),
				Details: map[string]any{"otherShiftId": e.shift.ID},
			},
			FatiguePoints: FatigueShiftRotation,
		}}, nil
	}

	return nil, nil
}
