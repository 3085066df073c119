package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/internal/config"
	"github.com/jakechorley/guard-rota/pkg/audit"
	"github.com/jakechorley/guard-rota/pkg/core/applications"
	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/db"
)

var testNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

// mockStore is an in-memory implementation of every store the services use
type mockStore struct {
	shifts       map[string]model.Shift
	guards       map[string]model.Guard
	histories    map[string]model.GuardHistory
	applications map[string]applications.Application

	listErr   error
	updateErr error
	upsertErr error

	inserted []model.Shift
	updated  []model.Shift
	deleted  []string
}

func newMockStore() *mockStore {
	return &mockStore{
		shifts:       make(map[string]model.Shift),
		guards:       make(map[string]model.Guard),
		histories:    make(map[string]model.GuardHistory),
		applications: make(map[string]applications.Application),
	}
}

func (m *mockStore) addShifts(shifts ...model.Shift) {
	for _, s := range shifts {
		m.shifts[s.ID] = s
	}
}

func (m *mockStore) addGuards(guards ...model.Guard) {
	for _, g := range guards {
		m.guards[g.ID] = g
	}
}

func (m *mockStore) addApplications(apps ...applications.Application) {
	for _, a := range apps {
		m.applications[a.ID] = a
	}
}

func (m *mockStore) GetShift(ctx context.Context, id string) (*model.Shift, error) {
	s, ok := m.shifts[id]
	if !ok {
		return nil, fmt.Errorf("shift %s: %w", id, db.ErrNotFound)
	}
	return &s, nil
}

func (m *mockStore) ListShifts(ctx context.Context, filter db.ShiftFilter) ([]model.Shift, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}

	var result []model.Shift
	for _, s := range m.shifts {
		if filter.From != "" && s.Date < filter.From {
			continue
		}
		if filter.To != "" && s.Date > filter.To {
			continue
		}
		if filter.SiteID != "" && s.SiteID != filter.SiteID {
			continue
		}
		if filter.GuardID != "" && s.GuardID != filter.GuardID {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, s.Status) {
			continue
		}
		if len(filter.IDs) > 0 && !slices.Contains(filter.IDs, s.ID) {
			continue
		}
		result = append(result, s)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date < result[j].Date
		}
		if result[i].StartTime != result[j].StartTime {
			return result[i].StartTime < result[j].StartTime
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *mockStore) InsertShifts(ctx context.Context, shifts []model.Shift) error {
	m.inserted = append(m.inserted, shifts...)
	m.addShifts(shifts...)
	return nil
}

func (m *mockStore) UpdateShifts(ctx context.Context, shifts []model.Shift) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated = append(m.updated, shifts...)
	m.addShifts(shifts...)
	return nil
}

func (m *mockStore) DeleteShifts(ctx context.Context, ids []string) error {
	m.deleted = append(m.deleted, ids...)
	for _, id := range ids {
		delete(m.shifts, id)
	}
	return nil
}

func (m *mockStore) GetGuard(ctx context.Context, id string) (*model.Guard, error) {
	g, ok := m.guards[id]
	if !ok {
		return nil, fmt.Errorf("guard %s: %w", id, db.ErrNotFound)
	}
	return &g, nil
}

func (m *mockStore) ListGuards(ctx context.Context) ([]model.Guard, error) {
	guards := make([]model.Guard, 0, len(m.guards))
	for _, g := range m.guards {
		guards = append(guards, g)
	}
	sort.Slice(guards, func(i, j int) bool { return guards[i].ID < guards[j].ID })
	return guards, nil
}

func (m *mockStore) UpsertGuard(ctx context.Context, guard model.Guard) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.guards[guard.ID] = guard
	return nil
}

func (m *mockStore) GetGuardHistory(ctx context.Context, guardID string) (*model.GuardHistory, error) {
	if _, ok := m.guards[guardID]; !ok {
		return nil, fmt.Errorf("guard %s: %w", guardID, db.ErrNotFound)
	}
	h := m.histories[guardID]
	return &h, nil
}

func (m *mockStore) GetApplication(ctx context.Context, id string) (*applications.Application, error) {
	a, ok := m.applications[id]
	if !ok {
		return nil, fmt.Errorf("application %s: %w", id, db.ErrNotFound)
	}
	return &a, nil
}

func (m *mockStore) ListApplications(ctx context.Context, filter db.ApplicationFilter) ([]applications.Application, error) {
	var result []applications.Application
	for _, a := range m.applications {
		if filter.ShiftID != "" && a.ShiftID != filter.ShiftID {
			continue
		}
		if filter.GuardID != "" && a.GuardID != filter.GuardID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockStore) InsertApplication(ctx context.Context, app applications.Application) error {
	m.applications[app.ID] = app
	return nil
}

func (m *mockStore) UpdateApplications(ctx context.Context, apps []applications.Application) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.addApplications(apps...)
	return nil
}

// recordingSink captures audit events
type recordingSink struct {
	events []audit.Event
}

func (r *recordingSink) Record(ctx context.Context, event audit.Event) {
	r.events = append(r.events, event)
}

func (r *recordingSink) actions() []string {
	actions := make([]string, len(r.events))
	for i, e := range r.events {
		actions[i] = e.Action
	}
	return actions
}

type sentEmail struct {
	to      string
	subject string
	body    string
}

type mockNotifier struct {
	sent []sentEmail
	err  error
}

func (m *mockNotifier) SendEmail(to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentEmail{to: to, subject: subject, body: body})
	return nil
}

var errStore = errors.New("connection refused")

func sequentialIDs() model.IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func testDeps(sink *recordingSink, notifier Notifier) Deps {
	return Deps{
		Cfg:      &config.Config{DatabaseURL: "postgres://test"},
		Logger:   zap.NewNop(),
		Audit:    sink,
		Notifier: notifier,
		Now:      func() time.Time { return testNow },
		IDs:      sequentialIDs(),
	}
}

func testGuard(id, name string) model.Guard {
	return model.Guard{
		ID:            id,
		Name:          name,
		Email:         id + "@example.com",
		LicenseExpiry: "2030-01-01",
		HasVehicle:    true,
	}
}

func testShift(id, date, start, end string) model.Shift {
	return model.Shift{
		ID:        id,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		SiteID:    "site-1",
		SiteName:  "Riverside Depot",
		Status:    model.StatusPublished,
	}
}
