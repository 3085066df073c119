package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/guard-rota/pkg/core/applications"
	"github.com/jakechorley/guard-rota/pkg/core/eligibility"
	"github.com/jakechorley/guard-rota/pkg/db"
)

const applicationColumns = `
	id, guard_id, guard_name, shift_id, shift_details, eligibility, message, status,
	applied_at, reviewed_at, reviewed_by, reviewer_name, review_notes, rejection_reason`

// GetApplication retrieves a single application by id
func (d *DB) GetApplication(ctx context.Context, id string) (*applications.Application, error) {
	row := d.pool.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)

	app, err := scanApplication(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("application %s: %w", id, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan application: %w", err)
	}
	return &app, nil
}

// ListApplications retrieves the applications matching the filter, oldest first
func (d *DB) ListApplications(ctx context.Context, filter db.ApplicationFilter) ([]applications.Application, error) {
	var clauses []string
	var args []any
	if filter.ShiftID != "" {
		args = append(args, filter.ShiftID)
		clauses = append(clauses, fmt.Sprintf("shift_id = $%d", len(args)))
	}
	if filter.GuardID != "" {
		args = append(args, filter.GuardID)
		clauses = append(clauses, fmt.Sprintf("guard_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + applicationColumns + ` FROM applications`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY applied_at, id"

	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	defer rows.Close()

	var apps []applications.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating applications: %w", err)
	}

	return apps, nil
}

// InsertApplication inserts a new application record
func (d *DB) InsertApplication(ctx context.Context, app applications.Application) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO applications (`+applicationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, applicationValues(app)...)
	if err != nil {
		return fmt.Errorf("failed to insert application: %w", err)
	}
	return nil
}

// UpdateApplications overwrites the given applications in a single transaction
func (d *DB) UpdateApplications(ctx context.Context, apps []applications.Application) error {
	if len(apps) == 0 {
		return nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, app := range apps {
		tag, err := tx.Exec(ctx, `
			UPDATE applications SET
				guard_id = $2, guard_name = $3, shift_id = $4, shift_details = $5,
				eligibility = $6, message = $7, status = $8, applied_at = $9, reviewed_at = $10,
				reviewed_by = $11, reviewer_name = $12, review_notes = $13, rejection_reason = $14
			WHERE id = $1
		`, applicationValues(app)...)
		if err != nil {
			return fmt.Errorf("failed to update application %s: %w", app.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("application %s: %w", app.ID, db.ErrNotFound)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func applicationValues(app applications.Application) []any {
	return []any{
		app.ID, app.GuardID, app.GuardName, app.ShiftID, app.ShiftDetails, app.Eligibility,
		app.Message, string(app.Status), app.AppliedAt.UTC(), utcOrNil(app.ReviewedAt),
		app.ReviewedBy, app.ReviewerName, app.ReviewNotes, app.RejectionReason,
	}
}

func scanApplication(row pgx.Row) (applications.Application, error) {
	var app applications.Application
	var status string
	var eligibilityJSON []byte

	err := row.Scan(
		&app.ID, &app.GuardID, &app.GuardName, &app.ShiftID, &app.ShiftDetails, &eligibilityJSON,
		&app.Message, &status, &app.AppliedAt, &app.ReviewedAt,
		&app.ReviewedBy, &app.ReviewerName, &app.ReviewNotes, &app.RejectionReason,
	)
	if err != nil {
		return applications.Application{}, err
	}

	app.Status = applications.Status(status)
	app.AppliedAt = app.AppliedAt.UTC()
	if app.ReviewedAt != nil {
		reviewed := app.ReviewedAt.UTC()
		app.ReviewedAt = &reviewed
	}
	if len(eligibilityJSON) > 0 {
		var result eligibility.Result
		if err := json.Unmarshal(eligibilityJSON, &result); err != nil {
			return applications.Application{}, fmt.Errorf("failed to decode eligibility: %w", err)
		}
		app.Eligibility = &result
	}

	return app, nil
}
