package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/internal/config"
	"github.com/jakechorley/guard-rota/pkg/audit"
	"github.com/jakechorley/guard-rota/pkg/core/applications"
	"github.com/jakechorley/guard-rota/pkg/core/services"
	"github.com/jakechorley/guard-rota/pkg/core/timeutil"
	"github.com/jakechorley/guard-rota/pkg/db"
	"github.com/jakechorley/guard-rota/pkg/metrics"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg      *config.Config
	Database db.Database
	Logger   *zap.Logger
	Audit    *audit.Logger
	Metrics  *metrics.Metrics
	Notifier services.Notifier
	Sheets   services.SchedulePublisher
	Ctx      context.Context
}

// Deps returns the collaborators the services need
func (app *AppContext) Deps() services.Deps {
	deps := services.Deps{
		Cfg:      app.Cfg,
		Logger:   app.Logger,
		Metrics:  app.Metrics,
		Notifier: app.Notifier,
		Now:      services.SystemClock,
	}
	// A nil *audit.Logger would be a non-nil interface
	if app.Audit != nil {
		deps.Audit = app.Audit
	}
	return deps
}

func addRangeFlags(flags *pflag.FlagSet) {
	flags.String("from", "", "First date of the range (YYYY-MM-DD, required)")
	flags.String("to", "", "Last date of the range (YYYY-MM-DD, required)")
	flags.String("site", "", "Limit to one site id")
}

func readRange(flags *pflag.FlagSet) (services.ShiftRange, error) {
	from, _ := flags.GetString("from")
	to, _ := flags.GetString("to")
	site, _ := flags.GetString("site")

	if _, err := timeutil.ParseDate(from); err != nil {
		return services.ShiftRange{}, fmt.Errorf("--from must be a date: %w", err)
	}
	if _, err := timeutil.ParseDate(to); err != nil {
		return services.ShiftRange{}, fmt.Errorf("--to must be a date: %w", err)
	}
	return services.ShiftRange{From: from, To: to, SiteID: site}, nil
}

func reviewerFromFlags(flags *pflag.FlagSet) (applications.Reviewer, error) {
	id, _ := flags.GetString("reviewer")
	name, _ := flags.GetString("reviewer-name")
	if id == "" {
		return applications.Reviewer{}, fmt.Errorf("--reviewer is required")
	}
	if name == "" {
		name = id
	}
	return applications.Reviewer{ID: id, Name: name}, nil
}
