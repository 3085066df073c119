package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/pkg/audit"
	"github.com/jakechorley/guard-rota/pkg/clients/sheetsclient"
	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/db"
)

// ErrNoRotaSheet is returned when publishing without a configured spreadsheet
var ErrNoRotaSheet = errors.New("no rota sheet configured (publishing.rotaSheetID)")

// ScheduleStore defines the database operations needed to publish a schedule
type ScheduleStore interface {
	ListShifts(ctx context.Context, filter db.ShiftFilter) ([]model.Shift, error)
	ListGuards(ctx context.Context) ([]model.Guard, error)
}

// SchedulePublisher writes a schedule to an external spreadsheet
type SchedulePublisher interface {
	PublishSchedule(spreadsheetID string, schedule *sheetsclient.PublishedSchedule) error
}

// PublishSchedule publishes the active shifts in the range to the configured rota sheet.
// Cancelled and rejected shifts are left out.
func PublishSchedule(
	ctx context.Context,
	store ScheduleStore,
	publisher SchedulePublisher,
	deps Deps,
	r ShiftRange,
) (*sheetsclient.PublishedSchedule, error) {
	sheetID := deps.Cfg.Publishing.RotaSheetID
	if sheetID == "" {
		return nil, ErrNoRotaSheet
	}

	shifts, err := store.ListShifts(ctx, db.ShiftFilter{From: r.From, To: r.To, SiteID: r.SiteID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shifts: %w", err)
	}
	guards, err := store.ListGuards(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch guards: %w", err)
	}

	names := make(map[string]string, len(guards))
	for _, g := range guards {
		names[g.ID] = g.Name
	}

	schedule := &sheetsclient.PublishedSchedule{From: r.From, To: r.To}
	for _, s := range shifts {
		if s.IsInactive() {
			continue
		}
		schedule.Rows = append(schedule.Rows, scheduleRow(s, names))
	}

	deps.Logger.Info("Publishing schedule",
		zap.String("from", r.From),
		zap.String("to", r.To),
		zap.Int("shifts", len(schedule.Rows)))

	if err := publisher.PublishSchedule(sheetID, schedule); err != nil {
		return nil, fmt.Errorf("failed to publish schedule: %w", err)
	}

	deps.record(ctx, audit.Event{
		Action:     audit.ActionSchedulePublished,
		EntityType: "schedule",
		EntityID:   r.From + "/" + r.To,
		Details:    map[string]any{"shifts": len(schedule.Rows), "siteId": r.SiteID},
	})

	return schedule, nil
}

func scheduleRow(s model.Shift, names map[string]string) sheetsclient.ScheduleRow {
	site := s.SiteName
	if site == "" {
		site = s.SiteID
	}

	guard := ""
	if s.IsAssigned() {
		guard = names[s.GuardID]
		if guard == "" {
			guard = s.GuardID
		}
	}

	endTime := s.EndTime
	if s.EndTime < s.StartTime {
		endTime += " (+1)"
	}

	return sheetsclient.ScheduleRow{
		ShiftID:   s.ID,
		Date:      s.Date,
		StartTime: s.StartTime,
		EndTime:   endTime,
		Site:      site,
		Guard:     guard,
		Status:    string(s.Status),
	}
}
