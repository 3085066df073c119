// Package bulk holds batch operations over shift snapshots: delete selection, copying,
// recurrence expansion, assignment, publishing, auto-fill and reporting.
//
// Operations never abort on a bad item. Items that cannot be processed are collected as
// Failures next to the items that succeeded.
package bulk

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/core/timeutil"
)

var validate = validator.New()

// Failure records why one item in a batch was not processed
type Failure struct {
	ID     string
	Reason string
}

// Result is the outcome of a batch transform
type Result struct {
	// Shifts holds the updated copies of every shift that succeeded
	Shifts []model.Shift
	Failed []Failure
}

func (r *Result) fail(id, format string, args ...any) {
	r.Failed = append(r.Failed, Failure{ID: id, Reason: fmt.Sprintf(format, args...)})
}

// dateRange is an inclusive range of calendar dates
type dateRange struct {
	from time.Time
	to   time.Time
}

func parseRange(from, to string) (dateRange, error) {
	start, err := timeutil.ParseDate(from)
	if err != nil {
		return dateRange{}, err
	}
	end, err := timeutil.ParseDate(to)
	if err != nil {
		return dateRange{}, err
	}
	if end.Before(start) {
		return dateRange{}, model.NewValidationError("date range", "%s is before %s", to, from)
	}
	return dateRange{from: start, to: end}, nil
}

func (r dateRange) contains(date time.Time) bool {
	return !date.Before(r.from) && !date.After(r.to)
}

// containsShift reports whether the shift's date falls in the range
func (r dateRange) containsShift(shift model.Shift) (bool, error) {
	date, err := timeutil.ParseDate(shift.Date)
	if err != nil {
		return false, fmt.Errorf("shift %s: %w", shift.ID, err)
	}
	return r.contains(date), nil
}

// validateOptions runs struct validation and reports the first failing field as a
// *model.ValidationError
func validateOptions(options any) error {
	err := validate.Struct(options)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return model.NewValidationError(fe.Field(), "failed %q check (value %v)", fe.Tag(), fe.Value())
	}
	return fmt.Errorf("failed to validate options: %w", err)
}

// transition applies event to a copy of shift
func transition(shift model.Shift, event model.ShiftEvent) (model.Shift, error) {
	next, err := model.Transition(shift.Status, event)
	if err != nil {
		return shift, err
	}
	shift.Status = next
	return shift, nil
}
