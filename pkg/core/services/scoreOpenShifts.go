package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/pkg/core/eligibility"
	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/db"
)

// OpenShiftStore defines the database operations needed to score open shifts
type OpenShiftStore interface {
	GetGuard(ctx context.Context, id string) (*model.Guard, error)
	GetGuardHistory(ctx context.Context, guardID string) (*model.GuardHistory, error)
	ListShifts(ctx context.Context, filter db.ShiftFilter) ([]model.Shift, error)
}

// ScoredShift is an open shift with the guard's eligibility for it
type ScoredShift struct {
	Shift  model.Shift
	Result *eligibility.Result
}

var openStatuses = []model.ShiftStatus{model.StatusPublished, model.StatusUnassigned, model.StatusOffered}

// ScoreOpenShifts scores the guard against every open shift from today onwards.
// Shifts offered to a different guard are skipped. Results are ordered by score, best first.
func ScoreOpenShifts(ctx context.Context, store OpenShiftStore, deps Deps, guardID string) ([]ScoredShift, error) {
	defer deps.Metrics.Time("score_open_shifts")()

	guard, err := store.GetGuard(ctx, guardID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch guard: %w", err)
	}
	history, err := store.GetGuardHistory(ctx, guardID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch guard history: %w", err)
	}

	shifts, err := store.ListShifts(ctx, db.ShiftFilter{From: deps.today(), Statuses: openStatuses})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch open shifts: %w", err)
	}
	deps.Logger.Debug("Found candidate shifts", zap.Int("count", len(shifts)))

	scorer := deps.Cfg.Scorer(deps.now())

	scored := make([]ScoredShift, 0, len(shifts))
	for _, shift := range shifts {
		if !shift.IsOpen() || !offeredTo(shift, guard.ID) {
			continue
		}

		result, err := scorer.Score(*guard, shift, *history)
		if err != nil {
			return nil, fmt.Errorf("failed to score shift %s: %w", shift.ID, err)
		}
		deps.Metrics.ObserveEligibility(float64(result.Score))
		scored = append(scored, ScoredShift{Shift: shift, Result: result})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Result.Score > scored[j].Result.Score
	})

	deps.Logger.Info("Scored open shifts",
		zap.String("guard_id", guard.ID),
		zap.Int("count", len(scored)))

	return scored, nil
}

// offeredTo reports whether the guard may take the shift given who it was offered to
func offeredTo(shift model.Shift, guardID string) bool {
	return shift.OfferedTo == "" || shift.OfferedTo == model.OfferedToAll || shift.OfferedTo == guardID
}
