// Package audit records who changed what in the schedule.
//
// Recording is best effort: a failed write is logged and never fails the operation that
// produced the event. Store writes go through a circuit breaker so a down database does
// not stall every bulk operation on its timeout.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/db"
)

// Mode selects where events are recorded
type Mode string

const (
	ModeAll Mode = "all"
	ModeDB  Mode = "db"
	ModeLog Mode = "log"
	ModeOff Mode = "off"
)

// Actions recorded by the services layer
const (
	ActionShiftValidated       = "shift.validated"
	ActionShiftsDeleted        = "shifts.deleted"
	ActionShiftsCopied         = "shifts.copied"
	ActionShiftsCreated        = "shifts.recurring_created"
	ActionShiftsAssigned       = "shifts.assigned"
	ActionShiftsPublished      = "shifts.published"
	ActionShiftsCancelled      = "shifts.cancelled"
	ActionShiftsAutoFilled     = "shifts.auto_filled"
	ActionApplicationCreated   = "application.created"
	ActionApplicationApproved  = "application.approved"
	ActionApplicationRejected  = "application.rejected"
	ActionApplicationWithdrawn = "application.withdrawn"
	ActionApplicationsExpired  = "applications.expired"
	ActionGuardsImported       = "guards.imported"
	ActionSchedulePublished    = "schedule.published"
)

// Event is a single audited change
type Event struct {
	Action     string
	EntityType string
	EntityID   string
	ActorID    string
	Details    map[string]any
}

// Sink receives audit events. Record never returns an error.
type Sink interface {
	Record(ctx context.Context, event Event)
}

// Logger is a Sink that mirrors events to zap and writes them to a store
type Logger struct {
	store   db.AuditStore
	logger  *zap.Logger
	mode    Mode
	breaker *gobreaker.CircuitBreaker
	ids     model.IDGenerator
	now     func() time.Time
}

// NewLogger creates an audit logger. A nil store downgrades db modes to log only.
func NewLogger(store db.AuditStore, logger *zap.Logger, mode Mode) *Logger {
	if mode == "" {
		mode = ModeAll
	}
	if store == nil && mode == ModeAll {
		mode = ModeLog
	}
	if store == nil && mode == ModeDB {
		mode = ModeOff
	}

	return &Logger{
		store:   store,
		logger:  logger,
		mode:    mode,
		breaker: newBreaker("audit-store", logger),
		ids:     model.NewUUID,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func newBreaker(name string, logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Audit circuit breaker changed state",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}

// Record writes the event according to the logger's mode.
// A nil *Logger is a valid no-op sink.
func (l *Logger) Record(ctx context.Context, event Event) {
	if l == nil || l.mode == ModeOff {
		return
	}

	record := db.AuditEvent{
		ID:         l.ids(),
		Action:     event.Action,
		EntityType: event.EntityType,
		EntityID:   event.EntityID,
		ActorID:    event.ActorID,
		Details:    event.Details,
		OccurredAt: l.now(),
	}

	if l.mode == ModeAll || l.mode == ModeLog {
		l.logger.Info("Audit event",
			zap.Bool("audit", true),
			zap.String("audit_id", record.ID),
			zap.String("action", record.Action),
			zap.String("entity_type", record.EntityType),
			zap.String("entity_id", record.EntityID),
			zap.String("actor_id", record.ActorID),
			zap.Any("details", record.Details))
	}

	if l.mode == ModeAll || l.mode == ModeDB {
		_, err := l.breaker.Execute(func() (any, error) {
			return nil, l.store.InsertAuditEvent(ctx, record)
		})
		if err != nil {
			l.logger.Warn("Failed to persist audit event",
				zap.String("audit_id", record.ID),
				zap.String("action", record.Action),
				zap.Error(fmt.Errorf("failed to insert audit event: %w", err)))
		}
	}
}
