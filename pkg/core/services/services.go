// Package services wires the scheduling core to storage, audit, metrics and
// notifications. Each use-case loads a snapshot from a narrow store interface, runs the
// pure core over it and persists the outcome.
package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/internal/config"
	"github.com/jakechorley/guard-rota/pkg/audit"
	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/core/timeutil"
	"github.com/jakechorley/guard-rota/pkg/metrics"
)

var (
	// ErrShiftNotOpen is returned when applying for a shift that is not taking applications
	ErrShiftNotOpen = errors.New("shift is not open for applications")

	// ErrDuplicateApplication is returned when the guard already has a live application for the shift
	ErrDuplicateApplication = errors.New("guard already has an active application for this shift")

	// ErrCannotApprove wraps the reason an application could not be approved
	ErrCannotApprove = errors.New("application cannot be approved")
)

// Clock returns the current time
type Clock func() time.Time

// SystemClock is the production Clock
func SystemClock() time.Time {
	return time.Now().UTC()
}

// Notifier delivers notification emails
type Notifier interface {
	SendEmail(to, subject, body string) error
}

// Deps holds the collaborators shared by every service.
// Audit, Metrics and Notifier may be nil.
type Deps struct {
	Cfg      *config.Config
	Logger   *zap.Logger
	Audit    audit.Sink
	Metrics  *metrics.Metrics
	Notifier Notifier
	Now      Clock
	IDs      model.IDGenerator
}

func (d Deps) now() time.Time {
	if d.Now == nil {
		return SystemClock()
	}
	return d.Now().UTC()
}

func (d Deps) today() string {
	return timeutil.FormatDate(d.now())
}

func (d Deps) newID() string {
	if d.IDs == nil {
		return model.NewUUID()
	}
	return d.IDs()
}

func (d Deps) idGenerator() model.IDGenerator {
	if d.IDs == nil {
		return model.NewUUID
	}
	return d.IDs
}

func (d Deps) record(ctx context.Context, event audit.Event) {
	if d.Audit == nil {
		return
	}
	d.Audit.Record(ctx, event)
}
