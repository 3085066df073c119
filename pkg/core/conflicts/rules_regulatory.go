package conflicts

import (
	"context"
	"fmt"
	"time"

	"github.com/jakechorley/guard-rota/pkg/core/timeutil"
)

// Restricted hours for workers under MinimumAge
const (
	minorRestrictedFromHour = 0
	minorRestrictedToHour   = 6
)

// MinorNightWorkRule blocks guards under MinimumAge (on the shift date) from any shift
// that touches 00:00-06:00. Guards without a date of birth are not checked.
type MinorNightWorkRule struct{}

func (r *MinorNightWorkRule) Name() string     { return "MinorNightWork" }
func (r *MinorNightWorkRule) Group() RuleGroup { return GroupRegulatory }

func (r *MinorNightWorkRule) Evaluate(ctx context.Context, input *EvaluationInput) ([]Finding, error) {
	if input.Guard.DateOfBirth == "" {
		return nil, nil
	}

	birth, err := timeutil.ParseDate(input.Guard.DateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("guard %s date of birth: %w", input.Guard.ID, err)
	}

	candidate := input.timeline.candidate
	age := timeutil.AgeOn(birth, candidate.date)
	if age >= input.rules.MinimumAge {
		return nil, nil
	}

	if !touchesRestrictedHours(candidate.interval) {
		return nil, nil
	}

	return []Finding{{Conflict: Conflict{
		Type:     TypeMinorNightWork,
		Severity: SeverityBlocking,
		Message:  fmt.Sprintf("Guards under %d cannot work between 00:00 and 06:00 (age %d)", input.rules.MinimumAge, age),
		Details:  map[string]any{"age": age},
	}}}, nil
}

// touchesRestrictedHours reports whether the interval overlaps 00:00-06:00 on any day it spans
func touchesRestrictedHours(iv timeutil.Interval) bool {
	for day := timeutil.StartOfDay(iv.Start); day.Before(iv.End); day = day.Add(timeutil.Day) {
		restricted := timeutil.Interval{
			Start: day.Add(minorRestrictedFromHour * time.Hour),
			End:   day.Add(minorRestrictedToHour * time.Hour),
		}
		if iv.Overlaps(restricted) {
			return true
		}
	}
	return false
}

// AnnualHoursRule raises a critical finding when the guard's hours in the shift's
// calendar year, including the candidate, reach MaxAnnualHours.
type AnnualHoursRule struct{}

func (r *AnnualHoursRule) Name() string     { return "AnnualHours" }
func (r *AnnualHoursRule) Group() RuleGroup { return GroupRegulatory }

func (r *AnnualHoursRule) Evaluate(ctx context.Context, input *EvaluationInput) ([]Finding, error) {
	year := input.timeline.candidate.date.Year()
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	total := input.timeline.hoursBetween(yearStart, yearStart.AddDate(1, 0, 0))

	if total < input.rules.MaxAnnualHours {
		return nil, nil
	}

	return []Finding{{Conflict: Conflict{
		Type:     TypeAnnualHours,
		Severity: SeverityCritical,
		Message:  fmt.Sprintf("%.0f hours worked in %d (limit %.0f)", total, year, input.rules.MaxAnnualHours),
		Details:  map[string]any{"annualHours": roundTo(total, 1), "year": year},
	}}}, nil
}

// SiteInductionRule blocks guards who have not completed the site's induction
type SiteInductionRule struct{}

func (r *SiteInductionRule) Name() string     { return "SiteInduction" }
func (r *SiteInductionRule) Group() RuleGroup { return GroupRegulatory }

func (r *SiteInductionRule) Evaluate(ctx context.Context, input *EvaluationInput) ([]Finding, error) {
	if input.Shift.SiteID == "" {
		return nil, nil
	}

	inducted, err := input.lookup.HasSiteInduction(ctx, input.Shift.SiteID, input.Guard.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check site induction: %w", err)
	}
	if inducted {
		return nil, nil
	}

	return []Finding{{Conflict: Conflict{
		Type:     TypeInductionMissing,
		Severity: SeverityBlocking,
		Message:  fmt.Sprintf("%s has not completed the induction for %s", guardLabel(input.Guard), siteLabel(input.Shift)),
		Details:  map[string]any{"siteId": input.Shift.SiteID},
	}}}, nil
}

// CertificationExpiryRule warns about each certification (first aid, etc.) that has
// expired by the shift date.
type CertificationExpiryRule struct{}

func (r *CertificationExpiryRule) Name() string     { return "CertificationExpiry" }
func (r *CertificationExpiryRule) Group() RuleGroup { return GroupRegulatory }

func (r *CertificationExpiryRule) Evaluate(ctx context.Context, input *EvaluationInput) ([]Finding, error) {
	var findings []Finding
	shiftDate := input.timeline.candidate.date

	for _, cert := range input.Guard.Certifications {
		if cert.Expiry == "" {
			continue
		}
		expiry, err := timeutil.ParseDate(cert.Expiry)
		if err != nil {
			return nil, fmt.Errorf("guard %s certification %s: %w", input.Guard.ID, cert.Name, err)
		}
		if !expiry.Before(shiftDate) {
			continue
		}

		findings = append(findings, Finding{Conflict: Conflict{
			Type:     TypeCertificationExpired,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("%s certification expired on %s", cert.Name, cert.Expiry),
			Details:  map[string]any{"certification": cert.Name, "expiryDate": cert.Expiry},
		}})
	}

	return findings, nil
}
