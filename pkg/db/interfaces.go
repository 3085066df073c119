package db

import (
	"context"
	"errors"

	"github.com/jakechorley/guard-rota/pkg/core/applications"
	"github.com/jakechorley/guard-rota/pkg/core/model"
)

// ErrNotFound is returned when a record looked up by id does not exist
var ErrNotFound = errors.New("record not found")

// ShiftStore defines the interface for shift database operations
type ShiftStore interface {
	GetShift(ctx context.Context, id string) (*model.Shift, error)
	ListShifts(ctx context.Context, filter ShiftFilter) ([]model.Shift, error)
	InsertShifts(ctx context.Context, shifts []model.Shift) error
	UpdateShifts(ctx context.Context, shifts []model.Shift) error
	DeleteShifts(ctx context.Context, ids []string) error
}

// GuardStore defines the interface for guard database operations
type GuardStore interface {
	GetGuard(ctx context.Context, id string) (*model.Guard, error)
	ListGuards(ctx context.Context) ([]model.Guard, error)
	UpsertGuard(ctx context.Context, guard model.Guard) error
}

// HistoryStore builds a guard's working history from stored shifts
type HistoryStore interface {
	GetGuardHistory(ctx context.Context, guardID string) (*model.GuardHistory, error)
}

// ApplicationStore defines the interface for shift application database operations
type ApplicationStore interface {
	GetApplication(ctx context.Context, id string) (*applications.Application, error)
	ListApplications(ctx context.Context, filter ApplicationFilter) ([]applications.Application, error)
	InsertApplication(ctx context.Context, app applications.Application) error
	UpdateApplications(ctx context.Context, apps []applications.Application) error
}

// AuditStore persists audit events
type AuditStore interface {
	InsertAuditEvent(ctx context.Context, event AuditEvent) error
}

// ComplianceStore answers client restriction, site blacklist and site induction lookups.
// It has the same method set as conflicts.ComplianceLookup.
type ComplianceStore interface {
	IsClientRestricted(ctx context.Context, clientID, guardID string) (bool, error)
	IsSiteBlacklisted(ctx context.Context, siteID, guardID string) (bool, error)
	HasSiteInduction(ctx context.Context, siteID, guardID string) (bool, error)
}

// Database defines the interface for all database operations.
// postgres.DB implements this interface.
type Database interface {
	ShiftStore
	GuardStore
	HistoryStore
	ApplicationStore
	AuditStore
	ComplianceStore
	RunMigrations(ctx context.Context) ([]string, error)
	Close()
}
