package eligibility

import (
	"fmt"
	"math"
)

// Experience below this share of the requirement fails the criterion
const minExperienceRatio = 0.7

// ExperienceCriterion compares years of experience with the shift's requirement.
//
// Scoring:
//   - no requirement: full marks
//   - meets or exceeds: 10 plus 2 per year over, capped at 15
//   - below: the ratio of the requirement met, out of 10; passes at 70% or more
type ExperienceCriterion struct{}

func (c *ExperienceCriterion) Key() string     { return "experience" }
func (c *ExperienceCriterion) Weight() int     { return 15 }
func (c *ExperienceCriterion) Mandatory() bool { return false }

func (c *ExperienceCriterion) Evaluate(input *Input) (CriterionResult, error) {
	required := input.Shift.RequiredExperience
	years := input.Guard.YearsExperience

	if required <= 0 {
		return CriterionResult{Score: c.Weight(), Passed: true, Details: "no experience required"}, nil
	}

	if years >= required {
		excess := years - required
		score := min(c.Weight(), int(math.Round(10+2*excess)))
		return CriterionResult{
			Score:   score,
			Passed:  true,
			Details: fmt.Sprintf("%.1f years (%.1f required)", years, required),
		}, nil
	}

	ratio := years / required
	result := CriterionResult{
		Score:   proportional(ratio, 10),
		Passed:  ratio >= minExperienceRatio,
		Details: fmt.Sprintf("%.1f years (%.1f required)", years, required),
	}
	if !result.Passed {
		result.Reason = fmt.Sprintf("Insufficient experience: %.1f of %.1f years", years, required)
	}
	return result, nil
}
