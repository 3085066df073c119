package eligibility

import "fmt"

const minReliability = 70

// ReliabilityCriterion scales the guard's 0-100 reliability score onto its weight.
// Guards without history get model.DefaultReliabilityScore.
type ReliabilityCriterion struct{}

func (c *ReliabilityCriterion) Key() string     { return "reliability" }
func (c *ReliabilityCriterion) Weight() int     { return 15 }
func (c *ReliabilityCriterion) Mandatory() bool { return false }

func (c *ReliabilityCriterion) Evaluate(input *Input) (CriterionResult, error) {
	reliability := max(0, min(100, input.History.Reliability()))

	result := CriterionResult{
		Score:   proportional(reliability/100, c.Weight()),
		Passed:  reliability >= minReliability,
		Details: fmt.Sprintf("reliability %.0f", reliability),
	}
	if !result.Passed {
		result.Reason = fmt.Sprintf("Reliability score %.0f is below %d", reliability, minReliability)
	}
	return result, nil
}
