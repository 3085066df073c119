package bulk

import (
	"github.com/jakechorley/guard-rota/pkg/core/model"
)

// Assignment pairs a shift with the guard to put on it
type Assignment struct {
	ShiftID string
	GuardID string
}

// AssignGuards applies each assignment to its shift through the lifecycle's assign event.
// Unknown shifts, missing guard ids and illegal transitions are collected as failures.
// A shift assigned twice in one batch keeps the first assignment.
func AssignGuards(shifts []model.Shift, assignments []Assignment) Result {
	byID := make(map[string]model.Shift, len(shifts))
	for _, shift := range shifts {
		byID[shift.ID] = shift
	}

	result := Result{Shifts: []model.Shift{}}
	assigned := make(map[string]bool)

	for _, a := range assignments {
		shift, ok := byID[a.ShiftID]
		if !ok {
			result.fail(a.ShiftID, "shift not found")
			continue
		}
		if a.GuardID == "" {
			result.fail(a.ShiftID, "no guard given")
			continue
		}
		if assigned[a.ShiftID] {
			result.fail(a.ShiftID, "shift already assigned in this batch")
			continue
		}

		updated, err := transition(shift, model.EventAssign)
		if err != nil {
			result.fail(a.ShiftID, "%v", err)
			continue
		}
		updated.GuardID = a.GuardID

		assigned[a.ShiftID] = true
		result.Shifts = append(result.Shifts, updated)
	}

	return result
}

// PublishShifts publishes every draft shift. Shifts in any other status are failures.
func PublishShifts(shifts []model.Shift) Result {
	return applyEvent(shifts, model.EventPublish)
}

// CancelShifts cancels every shift the lifecycle allows. Completed, locked and archived
// shifts cannot be cancelled and are reported as failures.
func CancelShifts(shifts []model.Shift) Result {
	return applyEvent(shifts, model.EventCancel)
}

func applyEvent(shifts []model.Shift, event model.ShiftEvent) Result {
	result := Result{Shifts: []model.Shift{}}

	for _, shift := range shifts {
		updated, err := transition(shift, event)
		if err != nil {
			result.fail(shift.ID, "%v", err)
			continue
		}
		result.Shifts = append(result.Shifts, updated)
	}

	return result
}
