package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/db"
)

const guardColumns = `
	id, name, email, license_expiry, date_of_birth, skills, completed_training,
	years_experience, preferred_shift_types, languages, has_vehicle, certifications,
	reliability_score`

// GetGuard retrieves a single guard by id
func (d *DB) GetGuard(ctx context.Context, id string) (*model.Guard, error) {
	row := d.pool.QueryRow(ctx, `SELECT `+guardColumns+` FROM guards WHERE id = $1`, id)

	guard, err := scanGuard(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("guard %s: %w", id, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan guard: %w", err)
	}
	return &guard, nil
}

// ListGuards retrieves all guard records ordered by name
func (d *DB) ListGuards(ctx context.Context) ([]model.Guard, error) {
	rows, err := d.pool.Query(ctx, `SELECT `+guardColumns+` FROM guards ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query guards: %w", err)
	}
	defer rows.Close()

	var guards []model.Guard
	for rows.Next() {
		guard, err := scanGuard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan guard: %w", err)
		}
		guards = append(guards, guard)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating guards: %w", err)
	}

	return guards, nil
}

// UpsertGuard inserts a guard or replaces the stored record with the same id
func (d *DB) UpsertGuard(ctx context.Context, guard model.Guard) error {
	preferred := make([]string, len(guard.PreferredShiftTypes))
	for i, t := range guard.PreferredShiftTypes {
		preferred[i] = string(t)
	}
	certifications := guard.Certifications
	if certifications == nil {
		certifications = []model.Certification{}
	}

	_, err := d.pool.Exec(ctx, `
		INSERT INTO guards (`+guardColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, email = EXCLUDED.email,
			license_expiry = EXCLUDED.license_expiry, date_of_birth = EXCLUDED.date_of_birth,
			skills = EXCLUDED.skills, completed_training = EXCLUDED.completed_training,
			years_experience = EXCLUDED.years_experience,
			preferred_shift_types = EXCLUDED.preferred_shift_types,
			languages = EXCLUDED.languages, has_vehicle = EXCLUDED.has_vehicle,
			certifications = EXCLUDED.certifications,
			reliability_score = EXCLUDED.reliability_score
	`, guard.ID, guard.Name, guard.Email, nullableDate(guard.LicenseExpiry),
		nullableDate(guard.DateOfBirth), nonNil(guard.Skills), nonNil(guard.CompletedTraining),
		guard.YearsExperience, preferred, nonNil(guard.Languages), guard.HasVehicle, certifications,
		guard.ReliabilityScore)
	if err != nil {
		return fmt.Errorf("failed to upsert guard %s: %w", guard.ID, err)
	}
	return nil
}

// GetGuardHistory builds the guard's history: a reliability score, visit counts per site
// from completed shifts, and every active shift currently on their schedule
func (d *DB) GetGuardHistory(ctx context.Context, guardID string) (*model.GuardHistory, error) {
	history := &model.GuardHistory{SiteVisits: make(map[string]int)}

	var stored *float64
	var completed, noShows int
	err := d.pool.QueryRow(ctx, `
		SELECT g.reliability_score,
			COUNT(s.id) FILTER (WHERE s.status = $2),
			COUNT(s.id) FILTER (WHERE s.status = $3)
		FROM guards g
		LEFT JOIN shifts s ON s.guard_id = g.id
		WHERE g.id = $1
		GROUP BY g.id
	`, guardID, string(model.StatusCompleted), string(model.StatusNoShow)).Scan(&stored, &completed, &noShows)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("guard %s: %w", guardID, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query reliability: %w", err)
	}
	history.ReliabilityScore = reliabilityScore(stored, completed, noShows)

	rows, err := d.pool.Query(ctx, `
		SELECT site_id, COUNT(*)
		FROM shifts
		WHERE guard_id = $1 AND status = $2 AND site_id <> ''
		GROUP BY site_id
		ORDER BY site_id
	`, guardID, string(model.StatusCompleted))
	if err != nil {
		return nil, fmt.Errorf("failed to query site visits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var siteID string
		var visits int
		if err := rows.Scan(&siteID, &visits); err != nil {
			return nil, fmt.Errorf("failed to scan site visits: %w", err)
		}
		history.SitesWorked = append(history.SitesWorked, siteID)
		history.SiteVisits[siteID] = visits
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating site visits: %w", err)
	}

	scheduled, err := d.ListShifts(ctx, db.ShiftFilter{GuardID: guardID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch scheduled shifts: %w", err)
	}
	for _, shift := range scheduled {
		if !shift.IsInactive() {
			history.ScheduledShifts = append(history.ScheduledShifts, shift)
		}
	}

	return history, nil
}

func scanGuard(row pgx.Row) (model.Guard, error) {
	var g model.Guard
	var licenseExpiry, dateOfBirth *time.Time
	var preferred []string

	err := row.Scan(
		&g.ID, &g.Name, &g.Email, &licenseExpiry, &dateOfBirth, &g.Skills, &g.CompletedTraining,
		&g.YearsExperience, &preferred, &g.Languages, &g.HasVehicle, &g.Certifications,
		&g.ReliabilityScore,
	)
	if err != nil {
		return model.Guard{}, err
	}

	g.LicenseExpiry = formatDate(licenseExpiry)
	g.DateOfBirth = formatDate(dateOfBirth)
	for _, t := range preferred {
		g.PreferredShiftTypes = append(g.PreferredShiftTypes, model.ShiftType(t))
	}

	return g, nil
}

// reliabilityScore prefers a stored score over one derived from attendance
func reliabilityScore(stored *float64, completed, noShows int) *float64 {
	if stored != nil {
		return stored
	}
	return model.AttendanceReliability(completed, noShows)
}
