package bulk

import (
	"slices"

	"github.com/jakechorley/guard-rota/pkg/core/model"
)

// DeleteCriteria selects shifts for bulk deletion.
// From and To are inclusive; empty SiteID, GuardID and Statuses match everything.
type DeleteCriteria struct {
	From     string `validate:"required,datetime=2006-01-02"`
	To       string `validate:"required,datetime=2006-01-02"`
	SiteID   string
	GuardID  string
	Statuses []model.ShiftStatus

	// IncludeProtected also selects completed and locked shifts
	IncludeProtected bool
}

// SelectForDelete returns the shifts matching criteria. Completed and locked shifts are
// left out unless IncludeProtected is set.
func SelectForDelete(shifts []model.Shift, criteria DeleteCriteria) ([]model.Shift, error) {
	if err := validateOptions(criteria); err != nil {
		return nil, err
	}
	window, err := parseRange(criteria.From, criteria.To)
	if err != nil {
		return nil, err
	}

	selected := []model.Shift{}
	for _, shift := range shifts {
		inRange, err := window.containsShift(shift)
		if err != nil {
			return nil, err
		}
		if !inRange {
			continue
		}
		if criteria.SiteID != "" && shift.SiteID != criteria.SiteID {
			continue
		}
		if criteria.GuardID != "" && shift.GuardID != criteria.GuardID {
			continue
		}
		if len(criteria.Statuses) > 0 && !slices.Contains(criteria.Statuses, shift.Status) {
			continue
		}
		if shift.Status.IsProtected() && !criteria.IncludeProtected {
			continue
		}

		selected = append(selected, shift)
	}

	return selected, nil
}
