package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/pkg/audit"
	"github.com/jakechorley/guard-rota/pkg/core/applications"
	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/db"
)

// ApplicationStore defines the database operations needed by the application workflow
type ApplicationStore interface {
	GetShift(ctx context.Context, id string) (*model.Shift, error)
	UpdateShifts(ctx context.Context, shifts []model.Shift) error
	GetGuard(ctx context.Context, id string) (*model.Guard, error)
	GetGuardHistory(ctx context.Context, guardID string) (*model.GuardHistory, error)
	GetApplication(ctx context.Context, id string) (*applications.Application, error)
	ListApplications(ctx context.Context, filter db.ApplicationFilter) ([]applications.Application, error)
	InsertApplication(ctx context.Context, app applications.Application) error
	UpdateApplications(ctx context.Context, apps []applications.Application) error
}

// ReasonShiftFilled is given to pending applications rejected because another was approved
const ReasonShiftFilled = "Shift has been assigned to another guard"

// ApplyForShift scores the guard for an open shift and stores a PENDING application.
// An ineligible guard may still apply; the score travels with the application.
func ApplyForShift(
	ctx context.Context,
	store ApplicationStore,
	deps Deps,
	guardID string,
	shiftID string,
	message string,
) (*applications.Application, error) {
	deps.Logger.Debug("Applying for shift",
		zap.String("guard_id", guardID),
		zap.String("shift_id", shiftID))

	shift, err := store.GetShift(ctx, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shift: %w", err)
	}
	if !shift.IsOpen() || !offeredTo(*shift, guardID) {
		return nil, fmt.Errorf("shift %s (%s): %w", shift.ID, shift.Status, ErrShiftNotOpen)
	}

	guard, err := store.GetGuard(ctx, guardID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch guard: %w", err)
	}

	existing, err := store.ListApplications(ctx, db.ApplicationFilter{ShiftID: shift.ID, GuardID: guard.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch existing applications: %w", err)
	}
	if applications.HasActiveApplication(existing, guard.ID, shift.ID) {
		return nil, ErrDuplicateApplication
	}

	history, err := store.GetGuardHistory(ctx, guard.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch guard history: %w", err)
	}

	now := deps.now()
	result, err := deps.Cfg.Scorer(now).Score(*guard, *shift, *history)
	if err != nil {
		return nil, fmt.Errorf("failed to score guard: %w", err)
	}
	deps.Metrics.ObserveEligibility(float64(result.Score))

	app, err := applications.Create(deps.newID(), *guard, *shift, result, message, now)
	if err != nil {
		return nil, err
	}

	if err := store.InsertApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to save application: %w", err)
	}
	deps.Metrics.ObserveApplication(string(app.Status))

	deps.Logger.Info("Application created",
		zap.String("application_id", app.ID),
		zap.String("guard_id", guard.ID),
		zap.String("shift_id", shift.ID),
		zap.Int("score", result.Score),
		zap.Bool("eligible", result.Eligible))

	deps.record(ctx, audit.Event{
		Action:     audit.ActionApplicationCreated,
		EntityType: "application",
		EntityID:   app.ID,
		ActorID:    guard.ID,
		Details: map[string]any{
			"shiftId":  shift.ID,
			"score":    result.Score,
			"eligible": result.Eligible,
		},
	})

	return &app, nil
}

// ApprovalResult is the outcome of approving an application
type ApprovalResult struct {
	Application applications.Application
	Shift       model.Shift

	// AutoRejected holds the other pending applications for the shift
	AutoRejected []applications.Application
}

// ApproveApplication approves a pending application, assigns the guard to the shift and
// rejects every other pending application for that shift
func ApproveApplication(
	ctx context.Context,
	store ApplicationStore,
	deps Deps,
	applicationID string,
	reviewer applications.Reviewer,
	notes string,
) (*ApprovalResult, error) {
	app, err := store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch application: %w", err)
	}
	shift, err := store.GetShift(ctx, app.ShiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shift: %w", err)
	}

	if ok, reason := applications.CanApprove(*app, *shift); !ok {
		return nil, fmt.Errorf("%w: %s", ErrCannotApprove, reason)
	}

	now := deps.now()
	approved, err := applications.Approve(*app, reviewer, notes, now)
	if err != nil {
		return nil, err
	}

	status, err := model.Transition(shift.Status, model.EventAssign)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCannotApprove, err)
	}
	assigned := *shift
	assigned.Status = status
	assigned.GuardID = approved.GuardID

	pending, err := store.ListApplications(ctx, db.ApplicationFilter{
		ShiftID: shift.ID,
		Status:  applications.StatusPending,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending applications: %w", err)
	}

	var rejected []applications.Application
	for _, other := range applications.OtherPendingForShift(pending, approved) {
		r, err := applications.Reject(other, reviewer, ReasonShiftFilled, now)
		if err != nil {
			return nil, err
		}
		rejected = append(rejected, r)
	}

	if err := store.UpdateShifts(ctx, []model.Shift{assigned}); err != nil {
		return nil, fmt.Errorf("failed to assign shift: %w", err)
	}
	if err := store.UpdateApplications(ctx, append([]applications.Application{approved}, rejected...)); err != nil {
		return nil, fmt.Errorf("failed to save applications: %w", err)
	}

	deps.Logger.Info("Application approved",
		zap.String("application_id", approved.ID),
		zap.String("guard_id", approved.GuardID),
		zap.String("shift_id", shift.ID),
		zap.Int("auto_rejected", len(rejected)))

	deps.Metrics.ObserveApplication(string(approved.Status))
	deps.record(ctx, audit.Event{
		Action:     audit.ActionApplicationApproved,
		EntityType: "application",
		EntityID:   approved.ID,
		ActorID:    reviewer.ID,
		Details: map[string]any{
			"shiftId":      shift.ID,
			"guardId":      approved.GuardID,
			"autoRejected": len(rejected),
		},
	})

	notify(ctx, store, deps, approved, applications.StatusPending)
	for _, r := range rejected {
		deps.Metrics.ObserveApplication(string(r.Status))
		notify(ctx, store, deps, r, applications.StatusPending)
	}

	return &ApprovalResult{Application: approved, Shift: assigned, AutoRejected: rejected}, nil
}

// RejectApplication rejects a pending application with a reason shown to the guard
func RejectApplication(
	ctx context.Context,
	store ApplicationStore,
	deps Deps,
	applicationID string,
	reviewer applications.Reviewer,
	reason string,
) (*applications.Application, error) {
	app, err := store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch application: %w", err)
	}

	rejected, err := applications.Reject(*app, reviewer, reason, deps.now())
	if err != nil {
		return nil, err
	}

	if err := store.UpdateApplications(ctx, []applications.Application{rejected}); err != nil {
		return nil, fmt.Errorf("failed to save application: %w", err)
	}

	deps.Logger.Info("Application rejected",
		zap.String("application_id", rejected.ID),
		zap.String("reason", reason))

	deps.Metrics.ObserveApplication(string(rejected.Status))
	deps.record(ctx, audit.Event{
		Action:     audit.ActionApplicationRejected,
		EntityType: "application",
		EntityID:   rejected.ID,
		ActorID:    reviewer.ID,
		Details:    map[string]any{"shiftId": rejected.ShiftID, "reason": reason},
	})

	notify(ctx, store, deps, rejected, app.Status)
	return &rejected, nil
}

// WithdrawApplication withdraws a pending application on the guard's behalf
func WithdrawApplication(ctx context.Context, store ApplicationStore, deps Deps, applicationID string) (*applications.Application, error) {
	app, err := store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch application: %w", err)
	}

	withdrawn, err := applications.Withdraw(*app, deps.now())
	if err != nil {
		return nil, err
	}

	if err := store.UpdateApplications(ctx, []applications.Application{withdrawn}); err != nil {
		return nil, fmt.Errorf("failed to save application: %w", err)
	}

	deps.Logger.Info("Application withdrawn", zap.String("application_id", withdrawn.ID))

	deps.Metrics.ObserveApplication(string(withdrawn.Status))
	deps.record(ctx, audit.Event{
		Action:     audit.ActionApplicationWithdrawn,
		EntityType: "application",
		EntityID:   withdrawn.ID,
		ActorID:    withdrawn.GuardID,
		Details:    map[string]any{"shiftId": withdrawn.ShiftID},
	})

	return &withdrawn, nil
}

// ExpireApplications expires every pending application older than the configured expiry
// and returns the ones that changed
func ExpireApplications(ctx context.Context, store ApplicationStore, deps Deps) ([]applications.Application, error) {
	pending, err := store.ListApplications(ctx, db.ApplicationFilter{Status: applications.StatusPending})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending applications: %w", err)
	}
	deps.Logger.Debug("Found pending applications", zap.Int("count", len(pending)))

	var expired []applications.Application
	for _, app := range applications.ExpireOld(pending, deps.now(), deps.Cfg.ApplicationExpiry()) {
		if app.Status == applications.StatusExpired {
			expired = append(expired, app)
		}
	}

	if len(expired) == 0 {
		deps.Logger.Info("No applications to expire")
		return nil, nil
	}

	if err := store.UpdateApplications(ctx, expired); err != nil {
		return nil, fmt.Errorf("failed to save expired applications: %w", err)
	}

	ids := make([]string, len(expired))
	for i, app := range expired {
		ids[i] = app.ID
		deps.Metrics.ObserveApplication(string(app.Status))
		notify(ctx, store, deps, app, applications.StatusPending)
	}

	deps.Logger.Info("Applications expired", zap.Int("count", len(expired)), zap.Strings("application_ids", ids))
	deps.record(ctx, audit.Event{
		Action:     audit.ActionApplicationsExpired,
		EntityType: "application",
		EntityID:   "batch",
		Details:    map[string]any{"applicationIds": ids},
	})

	return expired, nil
}

// notify emails the guard about the application's new status.
// Failures are logged and never returned.
func notify(ctx context.Context, store ApplicationStore, deps Deps, app applications.Application, previous applications.Status) {
	if deps.Notifier == nil {
		return
	}

	notification := applications.GenerateNotification(app, previous)
	if notification == nil {
		return
	}

	guard, err := store.GetGuard(ctx, app.GuardID)
	if err != nil {
		deps.Logger.Warn("Failed to fetch guard for notification",
			zap.String("application_id", app.ID),
			zap.Error(err))
		return
	}
	if guard.Email == "" {
		deps.Logger.Debug("Guard has no email, skipping notification", zap.String("guard_id", guard.ID))
		return
	}

	if err := deps.Notifier.SendEmail(guard.Email, notification.Title, notification.Message); err != nil {
		deps.Logger.Warn("Failed to send notification",
			zap.String("application_id", app.ID),
			zap.String("email", guard.Email),
			zap.Error(err))
		return
	}

	deps.Logger.Debug("Notification sent",
		zap.String("application_id", app.ID),
		zap.String("priority", string(notification.Priority)))
}
