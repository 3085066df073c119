package eligibility

import (
	"fmt"
	"strings"
)

// TrainingCriterion scores the share of required training completed.
// Only a full match passes.
type TrainingCriterion struct{}

func (c *TrainingCriterion) Key() string     { return "training" }
func (c *TrainingCriterion) Weight() int     { return 10 }
func (c *TrainingCriterion) Mandatory() bool { return false }

func (c *TrainingCriterion) Evaluate(input *Input) (CriterionResult, error) {
	required := input.Shift.RequiredTraining
	if len(required) == 0 {
		return CriterionResult{Score: c.Weight(), Passed: true, Details: "no training required"}, nil
	}

	var missing []string
	for _, training := range required {
		if !input.Guard.HasTraining(training) {
			missing = append(missing, training)
		}
	}

	completed := len(required) - len(missing)
	result := CriterionResult{
		Score:   proportional(float64(completed)/float64(len(required)), c.Weight()),
		Passed:  len(missing) == 0,
		Details: fmt.Sprintf("%d/%d required training", completed, len(required)),
	}
	if !result.Passed {
		result.Reason = fmt.Sprintf("Missing required training: %s", strings.Join(missing, ", "))
	}
	return result, nil
}
