package eligibility

import "fmt"

// SiteFamiliarityCriterion rewards guards who have worked the site before.
// It never fails: an unfamiliar site only forgoes the bonus.
type SiteFamiliarityCriterion struct{}

func (c *SiteFamiliarityCriterion) Key() string     { return "siteFamiliarity" }
func (c *SiteFamiliarityCriterion) Weight() int     { return 10 }
func (c *SiteFamiliarityCriterion) Mandatory() bool { return false }

func (c *SiteFamiliarityCriterion) Evaluate(input *Input) (CriterionResult, error) {
	if !input.History.HasWorkedAt(input.Shift.SiteID) {
		return CriterionResult{Passed: true, Details: "never worked at this site"}, nil
	}

	visits := input.History.SiteVisits[input.Shift.SiteID]
	return CriterionResult{
		Score:   min(c.Weight(), 5+visits),
		Passed:  true,
		Details: fmt.Sprintf("%d previous visits", visits),
	}, nil
}
