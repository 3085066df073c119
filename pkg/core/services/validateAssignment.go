package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/pkg/audit"
	"github.com/jakechorley/guard-rota/pkg/core/conflicts"
	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/core/timeutil"
	"github.com/jakechorley/guard-rota/pkg/db"
)

// AssignmentStore defines the database operations needed to validate an assignment
type AssignmentStore interface {
	GetShift(ctx context.Context, id string) (*model.Shift, error)
	GetGuard(ctx context.Context, id string) (*model.Guard, error)
	ListShifts(ctx context.Context, filter db.ShiftFilter) ([]model.Shift, error)
}

// AssignmentValidation is the outcome of checking a guard against a shift
type AssignmentValidation struct {
	Shift  model.Shift
	Guard  model.Guard
	Report *conflicts.AdvancedReport
}

// ValidateAssignment runs the base conflict detector and the advanced rules engine for
// putting guardID on shiftID. Nothing is written except the audit event.
func ValidateAssignment(
	ctx context.Context,
	store AssignmentStore,
	lookup conflicts.ComplianceLookup,
	deps Deps,
	shiftID string,
	guardID string,
	options conflicts.Options,
) (*AssignmentValidation, error) {
	defer deps.Metrics.Time("validate_assignment")()

	deps.Logger.Debug("Validating assignment",
		zap.String("shift_id", shiftID),
		zap.String("guard_id", guardID))

	shift, err := store.GetShift(ctx, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shift: %w", err)
	}
	guard, err := store.GetGuard(ctx, guardID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch guard: %w", err)
	}

	allShifts, err := loadSurroundingShifts(ctx, store, *shift)
	if err != nil {
		return nil, err
	}
	deps.Logger.Debug("Loaded surrounding shifts", zap.Int("count", len(allShifts)))

	candidate := *shift
	candidate.GuardID = guard.ID

	if lookup == nil {
		lookup = conflicts.NoopLookup{}
	}
	engine := conflicts.NewEngine(lookup, deps.Cfg.ConflictRules())

	report, err := engine.Evaluate(ctx, conflicts.EvaluationInput{
		Shift:         candidate,
		Guard:         *guard,
		AllShifts:     allShifts,
		GuardSchedule: guardSchedule(allShifts, guard.ID, shift.ID),
		Now:           deps.now(),
	}, options)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate conflicts: %w", err)
	}

	observeConflicts(deps, report)

	deps.Logger.Info("Assignment validated",
		zap.String("shift_id", shift.ID),
		zap.String("guard_id", guard.ID),
		zap.Bool("valid", report.Valid),
		zap.Int("blocking", report.Summary.Blocking),
		zap.Int("critical", report.Summary.Critical),
		zap.Int("fatigue_score", report.FatigueScore))

	deps.record(ctx, audit.Event{
		Action:     audit.ActionShiftValidated,
		EntityType: "shift",
		EntityID:   shift.ID,
		Details: map[string]any{
			"guardId":      guard.ID,
			"valid":        report.Valid,
			"blocking":     report.Summary.Blocking,
			"critical":     report.Summary.Critical,
			"fatigueScore": report.FatigueScore,
		},
	})

	return &AssignmentValidation{Shift: candidate, Guard: *guard, Report: report}, nil
}

// loadSurroundingShifts fetches every shift the rules can look at for shift: its calendar
// year for annual hours, and a month either side for fatigue runs and rest periods
func loadSurroundingShifts(ctx context.Context, store AssignmentStore, shift model.Shift) ([]model.Shift, error) {
	date, err := timeutil.ParseDate(shift.Date)
	if err != nil {
		return nil, err
	}

	from := time.Date(date.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	if monthBefore := date.AddDate(0, -1, 0); monthBefore.Before(from) {
		from = monthBefore
	}
	to := date.AddDate(0, 1, 0)

	shifts, err := store.ListShifts(ctx, db.ShiftFilter{
		From: timeutil.FormatDate(from),
		To:   timeutil.FormatDate(to),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch surrounding shifts: %w", err)
	}
	return shifts, nil
}

// guardSchedule returns the guard's active shifts other than excludeID
func guardSchedule(shifts []model.Shift, guardID, excludeID string) []model.Shift {
	var schedule []model.Shift
	for _, s := range shifts {
		if s.GuardID != guardID || s.ID == excludeID || s.IsInactive() {
			continue
		}
		schedule = append(schedule, s)
	}
	return schedule
}

func observeConflicts(deps Deps, report *conflicts.AdvancedReport) {
	if deps.Metrics == nil {
		return
	}
	buckets := [][]conflicts.Conflict{
		report.Conflicts.Blocking,
		report.Conflicts.Critical,
		report.Conflicts.Warnings,
		report.Conflicts.Info,
		report.Conflicts.Recommendations,
	}
	for _, bucket := range buckets {
		for _, c := range bucket {
			deps.Metrics.ObserveConflict(string(c.Type), string(c.Severity))
		}
	}
}
