package eligibility

import (
	"fmt"

	"github.com/jakechorley/guard-rota/pkg/core/timeutil"
)

// AvailabilityCriterion fails when the shift overlaps anything already in the guard's
// schedule. Overnight shifts from the previous day are included.
type AvailabilityCriterion struct{}

func (c *AvailabilityCriterion) Key() string     { return "availability" }
func (c *AvailabilityCriterion) Weight() int     { return 10 }
func (c *AvailabilityCriterion) Mandatory() bool { return true }

func (c *AvailabilityCriterion) Evaluate(input *Input) (CriterionResult, error) {
	for _, scheduled := range input.History.ScheduledShifts {
		if scheduled.IsInactive() {
			continue
		}
		if input.Shift.ID != "" && scheduled.ID == input.Shift.ID {
			continue
		}

		interval, err := timeutil.ShiftInterval(scheduled)
		if err != nil {
			return CriterionResult{}, err
		}
		if !interval.Overlaps(input.ShiftInterval) {
			continue
		}

		return CriterionResult{
			Details: fmt.Sprintf("overlaps shift %s on %s %s-%s", scheduled.ID, scheduled.Date, scheduled.StartTime, scheduled.EndTime),
			Reason:  "Scheduling conflict with an existing shift",
		}, nil
	}

	return CriterionResult{Score: c.Weight(), Passed: true, Details: "available"}, nil
}
