package bulk

import (
	"github.com/jakechorley/guard-rota/pkg/core/model"
)

// RankFunc scores candidate guards for a shift. Only Recommended candidates are assigned.
type RankFunc func(candidates []model.Guard, shift model.Shift) ([]model.RankedGuard, error)

// AutoFill greedily assigns guards to unassigned shifts in input order.
//
// For each shift the highest scoring recommended candidate still in the pool is assigned
// and removed from the pool, so no guard is given two shifts in one batch. Assigned
// shifts and shifts the lifecycle will not assign are skipped. Shifts left unfilled,
// including ones whose ranking failed, are reported as failures.
func AutoFill(shifts []model.Shift, guards []model.Guard, rank RankFunc) Result {
	result := Result{Shifts: []model.Shift{}}

	pool := make([]model.Guard, len(guards))
	copy(pool, guards)

	for _, shift := range shifts {
		if shift.IsAssigned() || !model.CanTransition(shift.Status, model.EventAssign) {
			continue
		}
		if len(pool) == 0 {
			result.fail(shift.ID, "no candidates remaining")
			continue
		}

		ranked, err := rank(pool, shift)
		if err != nil {
			result.fail(shift.ID, "ranking failed: %v", err)
			continue
		}

		best, ok := pickBest(ranked, pool)
		if !ok {
			result.fail(shift.ID, "no recommended candidate")
			continue
		}

		updated, err := transition(shift, model.EventAssign)
		if err != nil {
			result.fail(shift.ID, "%v", err)
			continue
		}
		updated.GuardID = best.ID

		result.Shifts = append(result.Shifts, updated)
		pool = removeGuard(pool, best.ID)
	}

	return result
}

// pickBest returns the recommended candidate with the highest score that is still in
// the pool. Ties go to the earlier candidate.
func pickBest(ranked []model.RankedGuard, pool []model.Guard) (model.Guard, bool) {
	inPool := make(map[string]bool, len(pool))
	for _, g := range pool {
		inPool[g.ID] = true
	}

	var best *model.RankedGuard
	for i := range ranked {
		candidate := &ranked[i]
		if !candidate.Recommended || !inPool[candidate.Guard.ID] {
			continue
		}
		if best == nil || candidate.Score > best.Score {
			best = candidate
		}
	}

	if best == nil {
		return model.Guard{}, false
	}
	return best.Guard, true
}

func removeGuard(pool []model.Guard, guardID string) []model.Guard {
	remaining := make([]model.Guard, 0, len(pool))
	for _, g := range pool {
		if g.ID != guardID {
			remaining = append(remaining, g)
		}
	}
	return remaining
}
