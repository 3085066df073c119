package conflicts

import (
	"fmt"
	"time"

	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/core/timeutil"
)

// ValidateShift checks a single candidate assignment of guard to shift.
//
// Rules are evaluated independently (none short-circuits the others):
//   - License expiry: expired is blocking, expiring within the grace period is a warning
//   - Double booking: any overlapping active shift of the guard in allShifts is blocking
//   - Minimum rest: gaps of [0, MinRestHours) between adjacent shifts are warnings
//   - Daily hours: more than MaxDailyHours on the shift's date is a warning
//   - Weekly hours: more than MaxWeeklyHours in the Sunday-start week is a warning,
//     more than OvertimeThresholdHours adds an info finding
//
// Returns an error only for malformed dates or times.
func ValidateShift(shift model.Shift, guard model.Guard, allShifts, guardSchedule []model.Shift, now time.Time, rules Rules) (*ValidationReport, error) {
	report := &ValidationReport{
		Conflicts: []Conflict{},
		Warnings:  []Conflict{},
	}

	tl, err := buildTimeline(shift, guardSchedule)
	if err != nil {
		return nil, fmt.Errorf("failed to build schedule: %w", err)
	}

	// Rule 1: license expiry
	licenseFindings, err := checkLicense(guard, now, rules)
	if err != nil {
		return nil, err
	}
	report.add(licenseFindings...)

	// Rule 2: double booking
	bookingFindings, err := checkDoubleBooking(tl.candidate, guard, allShifts)
	if err != nil {
		return nil, err
	}
	report.add(bookingFindings...)

	// Rule 3: minimum rest between adjacent shifts
	report.add(checkRestPeriods(tl, rules)...)

	// Rule 4: daily hours
	report.add(checkDailyHours(tl, rules)...)

	// Rule 5: weekly hours and overtime
	report.add(checkWeeklyHours(tl, rules)...)

	report.Valid = len(report.Conflicts) == 0
	return report, nil
}

func (r *ValidationReport) add(findings ...Conflict) {
	for _, f := range findings {
		if f.Severity == SeverityBlocking {
			r.Conflicts = append(r.Conflicts, f)
		} else {
			r.Warnings = append(r.Warnings, f)
		}
	}
}

func checkLicense(guard model.Guard, now time.Time, rules Rules) ([]Conflict, error) {
	if guard.LicenseExpiry == "" {
		return []Conflict{{
			Type:     TypeLicenseMissing,
			Severity: SeverityBlocking,
			Message:  fmt.Sprintf("%s has no SIA license expiry on record", guardLabel(guard)),
		}}, nil
	}

	expiry, err := timeutil.ParseDate(guard.LicenseExpiry)
	if err != nil {
		return nil, fmt.Errorf("guard %s license expiry: %w", guard.ID, err)
	}

	daysUntilExpiry := timeutil.DaysBetween(now, expiry)

	if daysUntilExpiry < 0 {
		return []Conflict{{
			Type:     TypeLicenseExpired,
			Severity: SeverityBlocking,
			Message:  fmt.Sprintf("SIA license expired %d days ago", -daysUntilExpiry),
			Details:  map[string]any{"expiryDate": guard.LicenseExpiry, "daysExpired": -daysUntilExpiry},
		}}, nil
	}

	if daysUntilExpiry <= rules.LicenseGraceDays {
		return []Conflict{{
			Type:     TypeLicenseExpiring,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("SIA license expires in %d days", daysUntilExpiry),
			Details:  map[string]any{"expiryDate": guard.LicenseExpiry, "daysUntilExpiry": daysUntilExpiry},
		}}, nil
	}

	return nil, nil
}

func checkDoubleBooking(candidate entry, guard model.Guard, allShifts []model.Shift) ([]Conflict, error) {
	var findings []Conflict

	for _, other := range allShifts {
		if other.GuardID != guard.ID || other.IsInactive() {
			continue
		}
		if candidate.shift.ID != "" && other.ID == candidate.shift.ID {
			continue
		}

		interval, err := timeutil.ShiftInterval(other)
		if err != nil {
			return nil, err
		}
		if !candidate.interval.Overlaps(interval) {
			continue
		}

		findings = append(findings, Conflict{
			Type:     TypeDoubleBooking,
			Severity: SeverityBlocking,
			Message: fmt.Sprintf("Already booked at %s on %s from %s to %s",
				siteLabel(other), other.Date, other.StartTime, other.EndTime),
			Details: map[string]any{"conflictingShiftId": other.ID, "siteId": other.SiteID},
		})
	}

	return findings, nil
}

func checkRestPeriods(tl *timeline, rules Rules) []Conflict {
	var findings []Conflict

	for i := 1; i < len(tl.entries); i++ {
		earlier := tl.entries[i-1]
		later := tl.entries[i]

		gap := later.interval.Start.Sub(earlier.interval.End).Hours()

		// Negative gaps are double bookings and are reported by that rule
		if gap < 0 || gap >= rules.MinRestHours {
			continue
		}

		findings = append(findings, Conflict{
			Type:     TypeInsufficientRest,
			Severity: SeverityWarning,
			Message: fmt.Sprintf("Only %.1f hours rest between shifts on %s and %s (minimum %.0f)",
				gap, earlier.shift.Date, later.shift.Date, rules.MinRestHours),
			Details: map[string]any{
				"restHours":     roundTo(gap, 1),
				"previousShift": earlier.shift.ID,
				"nextShift":     later.shift.ID,
			},
		})
	}

	return findings
}

func checkDailyHours(tl *timeline, rules Rules) []Conflict {
	total := tl.hoursOn(tl.candidate.date)
	if total <= rules.MaxDailyHours {
		return nil
	}

	return []Conflict{{
		Type:     TypeDailyHours,
		Severity: SeverityWarning,
		Message:  fmt.Sprintf("%.1f hours scheduled on %s (maximum %.0f)", total, tl.candidate.shift.Date, rules.MaxDailyHours),
		Details:  map[string]any{"totalHours": roundTo(total, 1), "date": tl.candidate.shift.Date},
	}}
}

func checkWeeklyHours(tl *timeline, rules Rules) []Conflict {
	weekStart := timeutil.WeekStart(tl.candidate.date)
	total := tl.hoursBetween(weekStart, weekStart.Add(timeutil.Week))

	var findings []Conflict

	if total > rules.MaxWeeklyHours {
		findings = append(findings, Conflict{
			Type:     TypeWeeklyHours,
			Severity: SeverityWarning,
			Message: fmt.Sprintf("%.1f hours scheduled in week starting %s (maximum %.0f)",
				total, timeutil.FormatDate(weekStart), rules.MaxWeeklyHours),
			Details: map[string]any{"totalHours": roundTo(total, 1), "weekStart": timeutil.FormatDate(weekStart)},
		})
	}

	if total > rules.OvertimeThresholdHours {
		over := total - rules.OvertimeThresholdHours
		findings = append(findings, Conflict{
			Type:     TypeOvertime,
			Severity: SeverityInfo,
			Message:  fmt.Sprintf("%.1f hours over the %.0f hour overtime threshold", over, rules.OvertimeThresholdHours),
			Details:  map[string]any{"overtimeHours": roundTo(over, 1), "weekStart": timeutil.FormatDate(weekStart)},
		})
	}

	return findings
}
