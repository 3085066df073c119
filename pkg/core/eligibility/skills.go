package eligibility

import (
	"fmt"
	"strings"
)

// SkillsCriterion scores the share of required skills the guard has.
// Passes at half or more. Shifts with no required skills score full marks.
type SkillsCriterion struct{}

func (c *SkillsCriterion) Key() string     { return "skills" }
func (c *SkillsCriterion) Weight() int     { return 20 }
func (c *SkillsCriterion) Mandatory() bool { return false }

func (c *SkillsCriterion) Evaluate(input *Input) (CriterionResult, error) {
	required := input.Shift.RequiredSkills
	if len(required) == 0 {
		return CriterionResult{Score: c.Weight(), Passed: true, Details: "no skills required"}, nil
	}

	var missing []string
	for _, skill := range required {
		if !input.Guard.HasSkill(skill) {
			missing = append(missing, skill)
		}
	}

	matched := len(required) - len(missing)
	rate := float64(matched) / float64(len(required))

	result := CriterionResult{
		Score:   proportional(rate, c.Weight()),
		Passed:  rate >= 0.5,
		Details: fmt.Sprintf("%d/%d required skills", matched, len(required)),
	}
	if !result.Passed {
		result.Reason = fmt.Sprintf("Missing required skills: %s", strings.Join(missing, ", "))
	}
	return result, nil
}
