package postgres

import (
	"context"
	"fmt"

	"github.com/jakechorley/guard-rota/pkg/db"
)

// InsertAuditEvent inserts an audit event record
func (d *DB) InsertAuditEvent(ctx context.Context, event db.AuditEvent) error {
	details := event.Details
	if details == nil {
		details = map[string]any{}
	}

	_, err := d.pool.Exec(ctx, `
		INSERT INTO audit_events (id, action, entity_type, entity_id, actor_id, details, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, event.ID, event.Action, event.EntityType, event.EntityID, event.ActorID, details, event.OccurredAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}
