package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/db"
)

const shiftColumns = `
	id, date, start_time, end_time, guard_id, site_id, site_name, client_id, status,
	offered_to, offered_at, expires_at, urgency, pay_rate, claim_count, view_count,
	required_skills, required_training, required_languages, required_experience,
	requires_pairing, max_guards, positions_open, shift_type, public_transport_24h,
	recurrence_id, copied_from_id, notes`

// GetShift retrieves a single shift by id
func (d *DB) GetShift(ctx context.Context, id string) (*model.Shift, error) {
	row := d.pool.QueryRow(ctx, `SELECT `+shiftColumns+` FROM shifts WHERE id = $1`, id)

	shift, err := scanShift(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("shift %s: %w", id, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan shift: %w", err)
	}
	return &shift, nil
}

// ListShifts retrieves the shifts matching the filter, ordered by date and start time
func (d *DB) ListShifts(ctx context.Context, filter db.ShiftFilter) ([]model.Shift, error) {
	where, args := shiftWhere(filter)

	rows, err := d.pool.Query(ctx, `SELECT `+shiftColumns+` FROM shifts`+where+` ORDER BY date, start_time, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	var shifts []model.Shift
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, shift)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shifts: %w", err)
	}

	return shifts, nil
}

// InsertShifts inserts shift records in a single transaction
func (d *DB) InsertShifts(ctx context.Context, shifts []model.Shift) error {
	if len(shifts) == 0 {
		return nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, s := range shifts {
		_, err := tx.Exec(ctx, `
			INSERT INTO shifts (`+shiftColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
				$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)
		`, shiftValues(s)...)
		if err != nil {
			return fmt.Errorf("failed to insert shift %s: %w", s.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdateShifts overwrites every column of the given shifts in a single transaction
func (d *DB) UpdateShifts(ctx context.Context, shifts []model.Shift) error {
	if len(shifts) == 0 {
		return nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, s := range shifts {
		tag, err := tx.Exec(ctx, `
			UPDATE shifts SET
				date = $2, start_time = $3, end_time = $4, guard_id = $5, site_id = $6,
				site_name = $7, client_id = $8, status = $9, offered_to = $10, offered_at = $11,
				expires_at = $12, urgency = $13, pay_rate = $14, claim_count = $15, view_count = $16,
				required_skills = $17, required_training = $18, required_languages = $19,
				required_experience = $20, requires_pairing = $21, max_guards = $22,
				positions_open = $23, shift_type = $24, public_transport_24h = $25,
				recurrence_id = $26, copied_from_id = $27, notes = $28
			WHERE id = $1
		`, shiftValues(s)...)
		if err != nil {
			return fmt.Errorf("failed to update shift %s: %w", s.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("shift %s: %w", s.ID, db.ErrNotFound)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteShifts deletes shifts by id. Applications for them are removed by cascade.
func (d *DB) DeleteShifts(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := d.pool.Exec(ctx, `DELETE FROM shifts WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("failed to delete shifts: %w", err)
	}
	return nil
}

func shiftWhere(filter db.ShiftFilter) (string, []any) {
	var clauses []string
	var args []any

	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.From != "" {
		add("date >= $%d", filter.From)
	}
	if filter.To != "" {
		add("date <= $%d", filter.To)
	}
	if filter.SiteID != "" {
		add("site_id = $%d", filter.SiteID)
	}
	if filter.GuardID != "" {
		add("guard_id = $%d", filter.GuardID)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		add("status = ANY($%d)", statuses)
	}
	if len(filter.IDs) > 0 {
		add("id = ANY($%d)", filter.IDs)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func shiftValues(s model.Shift) []any {
	return []any{
		s.ID, s.Date, s.StartTime, s.EndTime, nullableString(s.GuardID), s.SiteID, s.SiteName,
		s.ClientID, string(s.Status), s.OfferedTo, utcOrNil(s.OfferedAt), utcOrNil(s.ExpiresAt),
		string(s.Urgency), s.PayRate, s.ClaimCount, s.ViewCount,
		nonNil(s.RequiredSkills), nonNil(s.RequiredTraining), nonNil(s.RequiredLanguages),
		s.RequiredExperience, s.RequiresPairing, s.MaxGuards, s.PositionsOpen,
		string(s.ShiftType), s.PublicTransport24h, s.RecurrenceID, s.CopiedFromID, s.Notes,
	}
}

func scanShift(row pgx.Row) (model.Shift, error) {
	var s model.Shift
	var date time.Time
	var guardID *string
	var status, urgency, shiftType string

	err := row.Scan(
		&s.ID, &date, &s.StartTime, &s.EndTime, &guardID, &s.SiteID, &s.SiteName,
		&s.ClientID, &status, &s.OfferedTo, &s.OfferedAt, &s.ExpiresAt,
		&urgency, &s.PayRate, &s.ClaimCount, &s.ViewCount,
		&s.RequiredSkills, &s.RequiredTraining, &s.RequiredLanguages,
		&s.RequiredExperience, &s.RequiresPairing, &s.MaxGuards, &s.PositionsOpen,
		&shiftType, &s.PublicTransport24h, &s.RecurrenceID, &s.CopiedFromID, &s.Notes,
	)
	if err != nil {
		return model.Shift{}, err
	}

	s.Date = date.Format("2006-01-02")
	if guardID != nil {
		s.GuardID = *guardID
	}
	s.Status = model.ShiftStatus(status)
	s.Urgency = model.Urgency(urgency)
	s.ShiftType = model.ShiftType(shiftType)

	return s, nil
}
