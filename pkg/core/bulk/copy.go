package bulk

import (
	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/core/timeutil"
)

// CopyOptions describes a bulk copy. Every shift dated SourceFrom..SourceTo is moved by
// the number of days between SourceFrom and TargetFrom.
type CopyOptions struct {
	SourceFrom string `validate:"required,datetime=2006-01-02"`
	SourceTo   string `validate:"required,datetime=2006-01-02"`
	TargetFrom string `validate:"required,datetime=2006-01-02"`

	// SiteID limits the copy to one site when set
	SiteID string

	// ClearAssignment drops the guard from every copy
	ClearAssignment bool
}

// CopyShifts returns re-dated copies of the matching shifts.
//
// Copies get fresh ids from ids, draft status and no offer metadata. Cancelled and
// rejected shifts are not copied.
func CopyShifts(shifts []model.Shift, options CopyOptions, ids model.IDGenerator) ([]model.Shift, error) {
	if err := validateOptions(options); err != nil {
		return nil, err
	}
	source, err := parseRange(options.SourceFrom, options.SourceTo)
	if err != nil {
		return nil, err
	}
	target, err := timeutil.ParseDate(options.TargetFrom)
	if err != nil {
		return nil, err
	}
	offset := timeutil.DaysBetween(source.from, target)

	copies := []model.Shift{}
	for _, shift := range shifts {
		if shift.IsInactive() {
			continue
		}
		if options.SiteID != "" && shift.SiteID != options.SiteID {
			continue
		}

		date, err := timeutil.ParseDate(shift.Date)
		if err != nil {
			return nil, err
		}
		if !source.contains(date) {
			continue
		}

		copied := shift
		copied.ID = ids()
		copied.CopiedFromID = shift.ID
		copied.Date = timeutil.FormatDate(date.AddDate(0, 0, offset))
		copied.Status = model.StatusDraft
		copied.OfferedTo = ""
		copied.OfferedAt = nil
		copied.ExpiresAt = nil
		copied.ClaimCount = 0
		copied.ViewCount = 0
		if options.ClearAssignment {
			copied.GuardID = ""
		}

		copies = append(copies, copied)
	}

	return copies, nil
}
