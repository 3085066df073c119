package eligibility

import (
	"fmt"

	"github.com/jakechorley/guard-rota/pkg/core/timeutil"
)

// DefaultLicenseWarningDays is how close to expiry a license scores half marks
const DefaultLicenseWarningDays = 30

// LicenseCriterion requires an SIA license valid today and on the shift date.
//
// Scoring:
//   - 0 and failed if there is no license, or it has expired by today or by the shift date
//   - half weight if it expires within warningDays of today
//   - full weight otherwise
type LicenseCriterion struct {
	warningDays int
}

// NewLicenseCriterion creates a LicenseCriterion that halves the score within warningDays of expiry
func NewLicenseCriterion(warningDays int) *LicenseCriterion {
	return &LicenseCriterion{warningDays: warningDays}
}

func (c *LicenseCriterion) Key() string     { return "license" }
func (c *LicenseCriterion) Weight() int     { return 20 }
func (c *LicenseCriterion) Mandatory() bool { return true }

func (c *LicenseCriterion) Evaluate(input *Input) (CriterionResult, error) {
	if input.Guard.LicenseExpiry == "" {
		return CriterionResult{Details: "no license on record", Reason: "No SIA license on record"}, nil
	}

	expiry, err := timeutil.ParseDate(input.Guard.LicenseExpiry)
	if err != nil {
		return CriterionResult{}, fmt.Errorf("guard %s license expiry: %w", input.Guard.ID, err)
	}

	daysLeft := timeutil.DaysBetween(input.Now, expiry)
	if daysLeft < 0 {
		return CriterionResult{
			Details: fmt.Sprintf("expired %d days ago", -daysLeft),
			Reason:  "SIA license has expired",
		}, nil
	}
	if expiry.Before(input.ShiftDate) {
		return CriterionResult{
			Details: fmt.Sprintf("expires %s, before the shift", input.Guard.LicenseExpiry),
			Reason:  "SIA license expires before the shift date",
		}, nil
	}

	if daysLeft <= c.warningDays {
		return CriterionResult{
			Score:   c.Weight() / 2,
			Passed:  true,
			Details: fmt.Sprintf("expires in %d days", daysLeft),
		}, nil
	}

	return CriterionResult{Score: c.Weight(), Passed: true, Details: "valid"}, nil
}
