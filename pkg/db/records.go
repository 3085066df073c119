package db

import (
	"time"

	"github.com/jakechorley/guard-rota/pkg/core/applications"
	"github.com/jakechorley/guard-rota/pkg/core/model"
)

// ShiftFilter narrows ListShifts. Empty fields match everything.
// From and To are inclusive "2006-01-02" dates.
type ShiftFilter struct {
	From     string
	To       string
	SiteID   string
	GuardID  string
	Statuses []model.ShiftStatus
	IDs      []string
}

// ApplicationFilter narrows ListApplications. Empty fields match everything.
type ApplicationFilter struct {
	ShiftID string
	GuardID string
	Status  applications.Status
}

// AuditEvent represents a row in the audit_events table
type AuditEvent struct {
	ID         string
	Action     string
	EntityType string
	EntityID   string
	ActorID    string
	Details    map[string]any
	OccurredAt time.Time
}
