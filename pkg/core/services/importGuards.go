package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/pkg/audit"
	"github.com/jakechorley/guard-rota/pkg/core/model"
)

// GuardWriter defines the database operations needed to import guards
type GuardWriter interface {
	UpsertGuard(ctx context.Context, guard model.Guard) error
}

// ImportGuards inserts or replaces each guard. It stops at the first failure and
// returns how many guards were saved before it.
func ImportGuards(ctx context.Context, store GuardWriter, deps Deps, guards []model.Guard) (int, error) {
	saved := 0
	for _, g := range guards {
		if err := store.UpsertGuard(ctx, g); err != nil {
			return saved, fmt.Errorf("failed to save guard %s: %w", g.ID, err)
		}
		saved++
		deps.Logger.Debug("Guard saved", zap.String("guard_id", g.ID))
	}

	deps.Logger.Info("Guards imported", zap.Int("count", saved))

	ids := make([]string, len(guards))
	for i, g := range guards {
		ids[i] = g.ID
	}
	deps.record(ctx, audit.Event{
		Action:     audit.ActionGuardsImported,
		EntityType: "guard",
		EntityID:   "batch",
		Details:    map[string]any{"guardIds": ids},
	})

	return saved, nil
}
