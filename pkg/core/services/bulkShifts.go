package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/pkg/audit"
	"github.com/jakechorley/guard-rota/pkg/core/bulk"
	"github.com/jakechorley/guard-rota/pkg/core/eligibility"
	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/db"
)

// BulkShiftStore defines the database operations needed by bulk shift operations
type BulkShiftStore interface {
	ListShifts(ctx context.Context, filter db.ShiftFilter) ([]model.Shift, error)
	InsertShifts(ctx context.Context, shifts []model.Shift) error
	UpdateShifts(ctx context.Context, shifts []model.Shift) error
	DeleteShifts(ctx context.Context, ids []string) error
}

// AutoFillStore adds the guard lookups auto-fill ranks with
type AutoFillStore interface {
	BulkShiftStore
	ListGuards(ctx context.Context) ([]model.Guard, error)
	GetGuardHistory(ctx context.Context, guardID string) (*model.GuardHistory, error)
}

// ShiftRange selects the shifts a bulk operation works on.
// From and To are inclusive; an empty SiteID matches every site.
type ShiftRange struct {
	From   string
	To     string
	SiteID string
}

// BulkDeleteShifts deletes the shifts matching criteria. With dryRun the selection is
// returned without deleting anything.
func BulkDeleteShifts(ctx context.Context, store BulkShiftStore, deps Deps, criteria bulk.DeleteCriteria, dryRun bool) ([]model.Shift, error) {
	shifts, err := store.ListShifts(ctx, db.ShiftFilter{From: criteria.From, To: criteria.To, SiteID: criteria.SiteID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shifts: %w", err)
	}

	selected, err := bulk.SelectForDelete(shifts, criteria)
	if err != nil {
		return nil, err
	}
	deps.Logger.Info("Selected shifts for deletion",
		zap.Int("count", len(selected)),
		zap.Bool("dry_run", dryRun))

	if dryRun || len(selected) == 0 {
		return selected, nil
	}

	ids := shiftIDs(selected)
	if err := store.DeleteShifts(ctx, ids); err != nil {
		return nil, fmt.Errorf("failed to delete shifts: %w", err)
	}

	deps.Metrics.ObserveBulk("delete", len(selected), 0)
	deps.record(ctx, audit.Event{
		Action:     audit.ActionShiftsDeleted,
		EntityType: "shift",
		EntityID:   "batch",
		Details:    map[string]any{"shiftIds": ids, "from": criteria.From, "to": criteria.To},
	})

	return selected, nil
}

// BulkCopyShifts copies the shifts in the source range to the target start date and
// stores the copies as drafts
func BulkCopyShifts(ctx context.Context, store BulkShiftStore, deps Deps, options bulk.CopyOptions) ([]model.Shift, error) {
	shifts, err := store.ListShifts(ctx, db.ShiftFilter{From: options.SourceFrom, To: options.SourceTo, SiteID: options.SiteID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source shifts: %w", err)
	}

	copies, err := bulk.CopyShifts(shifts, options, deps.idGenerator())
	if err != nil {
		return nil, err
	}

	if err := store.InsertShifts(ctx, copies); err != nil {
		return nil, fmt.Errorf("failed to save copied shifts: %w", err)
	}

	deps.Logger.Info("Shifts copied",
		zap.Int("count", len(copies)),
		zap.String("source_from", options.SourceFrom),
		zap.String("target_from", options.TargetFrom))

	deps.Metrics.ObserveBulk("copy", len(copies), 0)
	deps.record(ctx, audit.Event{
		Action:     audit.ActionShiftsCopied,
		EntityType: "shift",
		EntityID:   "batch",
		Details: map[string]any{
			"count":      len(copies),
			"sourceFrom": options.SourceFrom,
			"sourceTo":   options.SourceTo,
			"targetFrom": options.TargetFrom,
		},
	})

	return copies, nil
}

// CreateRecurringShifts expands template over pattern and stores the generated shifts
func CreateRecurringShifts(ctx context.Context, store BulkShiftStore, deps Deps, template model.Shift, pattern bulk.RecurrencePattern) ([]model.Shift, error) {
	shifts, err := bulk.CreateRecurringShifts(template, pattern, deps.idGenerator())
	if err != nil {
		return nil, err
	}
	return saveRecurring(ctx, store, deps, shifts, string(pattern.Frequency))
}

// CreateShiftsFromTemplate expands a named recurring template from the config file
func CreateShiftsFromTemplate(ctx context.Context, store BulkShiftStore, deps Deps, templateName, from, to string) ([]model.Shift, error) {
	tmpl, err := deps.Cfg.FindTemplate(templateName)
	if err != nil {
		return nil, err
	}

	shifts, err := bulk.CreateShiftsFromRule(tmpl.Shift(), tmpl.RRule, from, to, deps.idGenerator())
	if err != nil {
		return nil, err
	}
	return saveRecurring(ctx, store, deps, shifts, tmpl.Name)
}

func saveRecurring(ctx context.Context, store BulkShiftStore, deps Deps, shifts []model.Shift, source string) ([]model.Shift, error) {
	if len(shifts) == 0 {
		deps.Logger.Info("Recurrence produced no shifts", zap.String("source", source))
		return shifts, nil
	}

	if err := store.InsertShifts(ctx, shifts); err != nil {
		return nil, fmt.Errorf("failed to save recurring shifts: %w", err)
	}

	recurrenceID := shifts[0].RecurrenceID
	deps.Logger.Info("Recurring shifts created",
		zap.String("recurrence_id", recurrenceID),
		zap.String("source", source),
		zap.Int("count", len(shifts)))

	deps.Metrics.ObserveBulk("recurring", len(shifts), 0)
	deps.record(ctx, audit.Event{
		Action:     audit.ActionShiftsCreated,
		EntityType: "recurrence",
		EntityID:   recurrenceID,
		Details:    map[string]any{"count": len(shifts), "source": source},
	})

	return shifts, nil
}

// BulkAssignGuards applies the assignments and stores the shifts that succeeded
func BulkAssignGuards(ctx context.Context, store BulkShiftStore, deps Deps, assignments []bulk.Assignment) (*bulk.Result, error) {
	if len(assignments) == 0 {
		return &bulk.Result{Shifts: []model.Shift{}}, nil
	}

	ids := make([]string, len(assignments))
	for i, a := range assignments {
		ids[i] = a.ShiftID
	}

	shifts, err := store.ListShifts(ctx, db.ShiftFilter{IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shifts: %w", err)
	}

	result := bulk.AssignGuards(shifts, assignments)
	return saveBulkResult(ctx, store, deps, "assign", audit.ActionShiftsAssigned, result)
}

// BulkPublishShifts publishes every draft shift in the range
func BulkPublishShifts(ctx context.Context, store BulkShiftStore, deps Deps, r ShiftRange) (*bulk.Result, error) {
	shifts, err := store.ListShifts(ctx, db.ShiftFilter{
		From:     r.From,
		To:       r.To,
		SiteID:   r.SiteID,
		Statuses: []model.ShiftStatus{model.StatusDraft},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch draft shifts: %w", err)
	}

	result := bulk.PublishShifts(shifts)
	return saveBulkResult(ctx, store, deps, "publish", audit.ActionShiftsPublished, result)
}

// BulkCancelShifts cancels every shift in the range that the lifecycle allows
func BulkCancelShifts(ctx context.Context, store BulkShiftStore, deps Deps, r ShiftRange) (*bulk.Result, error) {
	shifts, err := store.ListShifts(ctx, db.ShiftFilter{From: r.From, To: r.To, SiteID: r.SiteID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shifts: %w", err)
	}

	var cancellable []model.Shift
	for _, s := range shifts {
		if s.Status != model.StatusCancelled {
			cancellable = append(cancellable, s)
		}
	}

	result := bulk.CancelShifts(cancellable)
	return saveBulkResult(ctx, store, deps, "cancel", audit.ActionShiftsCancelled, result)
}

// AutoFillShifts assigns the best eligible guard to each unassigned shift in the range.
// With dryRun the proposed assignments are returned without being stored.
func AutoFillShifts(ctx context.Context, store AutoFillStore, deps Deps, r ShiftRange, dryRun bool) (*bulk.Result, error) {
	defer deps.Metrics.Time("auto_fill")()

	shifts, err := store.ListShifts(ctx, db.ShiftFilter{From: r.From, To: r.To, SiteID: r.SiteID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shifts: %w", err)
	}

	guards, err := store.ListGuards(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch guards: %w", err)
	}
	deps.Logger.Debug("Loaded auto-fill inputs",
		zap.Int("shifts", len(shifts)),
		zap.Int("guards", len(guards)))

	histories := make(map[string]model.GuardHistory, len(guards))
	for _, g := range guards {
		history, err := store.GetGuardHistory(ctx, g.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch history for guard %s: %w", g.ID, err)
		}
		histories[g.ID] = *history
	}

	ranker := eligibility.NewRanker(deps.Cfg.Scorer(deps.now()), histories)
	result := bulk.AutoFill(shifts, guards, ranker.Rank)

	if dryRun {
		deps.Logger.Info("Auto-fill dry run",
			zap.Int("assigned", len(result.Shifts)),
			zap.Int("failed", len(result.Failed)))
		return &result, nil
	}

	return saveBulkResult(ctx, store, deps, "auto_fill", audit.ActionShiftsAutoFilled, result)
}

// GenerateShiftReport aggregates the shifts in the range
func GenerateShiftReport(ctx context.Context, store BulkShiftStore, deps Deps, r ShiftRange) (*bulk.Report, error) {
	shifts, err := store.ListShifts(ctx, db.ShiftFilter{From: r.From, To: r.To, SiteID: r.SiteID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shifts: %w", err)
	}

	report, err := bulk.GenerateReport(shifts, r.From, r.To)
	if err != nil {
		return nil, err
	}

	deps.Logger.Info("Shift report generated",
		zap.Int("total_shifts", report.TotalShifts),
		zap.Float64("fill_rate", report.FillRate))

	return report, nil
}

// saveBulkResult stores the shifts that succeeded and records the batch
func saveBulkResult(ctx context.Context, store BulkShiftStore, deps Deps, operation, action string, result bulk.Result) (*bulk.Result, error) {
	if len(result.Shifts) > 0 {
		if err := store.UpdateShifts(ctx, result.Shifts); err != nil {
			return nil, fmt.Errorf("failed to save shifts: %w", err)
		}
	}

	for _, f := range result.Failed {
		deps.Logger.Debug("Bulk item failed",
			zap.String("operation", operation),
			zap.String("shift_id", f.ID),
			zap.String("reason", f.Reason))
	}
	deps.Logger.Info("Bulk operation finished",
		zap.String("operation", operation),
		zap.Int("succeeded", len(result.Shifts)),
		zap.Int("failed", len(result.Failed)))

	deps.Metrics.ObserveBulk(operation, len(result.Shifts), len(result.Failed))
	deps.record(ctx, audit.Event{
		Action:     action,
		EntityType: "shift",
		EntityID:   "batch",
		Details: map[string]any{
			"shiftIds": shiftIDs(result.Shifts),
			"failed":   len(result.Failed),
		},
	})

	return &result, nil
}

func shiftIDs(shifts []model.Shift) []string {
	ids := make([]string, len(shifts))
	for i, s := range shifts {
		ids[i] = s.ID
	}
	return ids
}
