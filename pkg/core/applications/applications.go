// Package applications models a guard's request to work an open shift.
//
// An application is created PENDING and moves once to APPROVED, REJECTED, WITHDRAWN or
// EXPIRED. Every function returns a new value; the input is never modified.
package applications

import (
	"errors"
	"fmt"
	"time"

	"github.com/jakechorley/guard-rota/pkg/core/eligibility"
	"github.com/jakechorley/guard-rota/pkg/core/model"
)

// Status of an application
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusWithdrawn Status = "WITHDRAWN"
	StatusExpired   Status = "EXPIRED"
)

// IsTerminal returns true for every status except PENDING
func (s Status) IsTerminal() bool {
	return s != StatusPending
}

// DefaultExpiry is how long an application may stay pending
const DefaultExpiry = 24 * time.Hour

// ErrNotPending is returned when a transition is attempted on a decided application
var ErrNotPending = errors.New("application is not pending")

// Application is a guard's request to work a shift
type Application struct {
	ID        string
	GuardID   string
	GuardName string
	ShiftID   string

	// ShiftDetails is a snapshot of the shift when the guard applied
	ShiftDetails model.Shift
	Eligibility  *eligibility.Result
	Message      string

	Status    Status
	AppliedAt time.Time

	ReviewedAt      *time.Time
	ReviewedBy      string
	ReviewerName    string
	ReviewNotes     string
	RejectionReason string
}

// Reviewer is the admin deciding an application
type Reviewer struct {
	ID   string
	Name string
}

// Create builds a new PENDING application for guard on shift
func Create(id string, guard model.Guard, shift model.Shift, result *eligibility.Result, message string, now time.Time) (Application, error) {
	if id == "" {
		return Application{}, model.NewValidationError("application", "id is required")
	}
	if guard.ID == "" {
		return Application{}, model.NewValidationError("application", "guard id is required")
	}
	if shift.ID == "" {
		return Application{}, model.NewValidationError("application", "shift id is required")
	}

	return Application{
		ID:           id,
		GuardID:      guard.ID,
		GuardName:    guard.Name,
		ShiftID:      shift.ID,
		ShiftDetails: shift,
		Eligibility:  result,
		Message:      message,
		Status:       StatusPending,
		AppliedAt:    now,
	}, nil
}

// Approve returns app approved by reviewer.
// A decided application is returned unchanged with ErrNotPending.
func Approve(app Application, reviewer Reviewer, notes string, now time.Time) (Application, error) {
	if app.Status != StatusPending {
		return app, fmt.Errorf("cannot approve %s application %s: %w", app.Status, app.ID, ErrNotPending)
	}

	app.Status = StatusApproved
	app.stampReview(reviewer, now)
	app.ReviewNotes = notes
	return app, nil
}

// Reject returns app rejected by reviewer with reason.
// A decided application is returned unchanged with ErrNotPending.
func Reject(app Application, reviewer Reviewer, reason string, now time.Time) (Application, error) {
	if app.Status != StatusPending {
		return app, fmt.Errorf("cannot reject %s application %s: %w", app.Status, app.ID, ErrNotPending)
	}

	app.Status = StatusRejected
	app.stampReview(reviewer, now)
	app.RejectionReason = reason
	return app, nil
}

// Withdraw returns app withdrawn by the applying guard.
// A decided application is returned unchanged with ErrNotPending.
func Withdraw(app Application, now time.Time) (Application, error) {
	if app.Status != StatusPending {
		return app, fmt.Errorf("cannot withdraw %s application %s: %w", app.Status, app.ID, ErrNotPending)
	}

	app.Status = StatusWithdrawn
	reviewedAt := now
	app.ReviewedAt = &reviewedAt
	return app, nil
}

func (a *Application) stampReview(reviewer Reviewer, now time.Time) {
	reviewedAt := now
	a.ReviewedAt = &reviewedAt
	a.ReviewedBy = reviewer.ID
	a.ReviewerName = reviewer.Name
}

// CanApprove checks whether app may be approved for shift.
// Returns false with a reason when the application is decided, the guard was
// ineligible, or the shift already has a guard.
func CanApprove(app Application, shift model.Shift) (bool, string) {
	if app.Status != StatusPending {
		return false, fmt.Sprintf("Application is %s", app.Status)
	}
	if app.Eligibility != nil && !app.Eligibility.Eligible {
		return false, "Guard is not eligible for this shift"
	}
	if shift.IsAssigned() {
		return false, "Shift is already assigned"
	}
	return true, ""
}

// ExpireOld marks PENDING applications older than maxAge as EXPIRED.
// maxAge <= 0 uses DefaultExpiry. Other applications pass through unchanged.
func ExpireOld(apps []Application, now time.Time, maxAge time.Duration) []Application {
	if maxAge <= 0 {
		maxAge = DefaultExpiry
	}

	result := make([]Application, len(apps))
	for i, app := range apps {
		if app.Status == StatusPending && now.Sub(app.AppliedAt) > maxAge {
			app.Status = StatusExpired
		}
		result[i] = app
	}
	return result
}

// HasActiveApplication reports whether the guard already has a PENDING or APPROVED
// application for the shift
func HasActiveApplication(apps []Application, guardID, shiftID string) bool {
	for _, app := range apps {
		if app.GuardID != guardID || app.ShiftID != shiftID {
			continue
		}
		if app.Status == StatusPending || app.Status == StatusApproved {
			return true
		}
	}
	return false
}

// OtherPendingForShift returns the PENDING applications for the approved application's
// shift, excluding the approved one. Callers reject these once a shift is filled.
func OtherPendingForShift(apps []Application, approved Application) []Application {
	var others []Application
	for _, app := range apps {
		if app.ShiftID != approved.ShiftID || app.ID == approved.ID {
			continue
		}
		if app.Status == StatusPending {
			others = append(others, app)
		}
	}
	return others
}
