package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/avery/vaops/internal/db"
	"github.com/avery/vaops/internal/domain"
)

// EntryRepo is a SQLite implementation of TimeEntryRepository
type EntryRepo struct {
	db *db.DB
}

// NewEntryRepo creates a new EntryRepo
func NewEntryRepo(database *db.DB) *EntryRepo {
	return &EntryRepo{db: database}
}

const entryColumns = `id, task_id, session_id, start_time, end_time, duration_minutes, notes, created_at, updated_at`

// Create inserts a new time entry into the database
func (r *EntryRepo) Create(ctx context.Context, entry *domain.TimeEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("invalid time entry: %w", err)
	}

	query := `
		INSERT INTO time_entries (
			task_id, session_id, start_time, end_time, duration_minutes,
			notes, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		entry.TaskID,
		entry.SessionID,
		entry.StartTime.Format(timeLayout),
		entry.EndTime.Format(timeLayout),
		entry.DurationMinutes,
		entry.Notes,
		entry.CreatedAt.Format(timeLayout),
		entry.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to create time entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get time entry ID: %w", err)
	}

	entry.ID = id
	return nil
}

// GetByID retrieves a time entry by ID, or nil if not found
func (r *EntryRepo) GetByID(ctx context.Context, id int64) (*domain.TimeEntry, error) {
	query := "SELECT " + entryColumns + " FROM time_entries WHERE id = ?"

	entry := &domain.TimeEntry{}
	var sessionID, notes sql.NullString
	var startTime, endTime, createdAt, updatedAt string

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&entry.ID,
		&entry.TaskID,
		&sessionID,
		&startTime,
		&endTime,
		&entry.DurationMinutes,
		&notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get time entry: %w", err)
	}

	if err := scanTimeEntry(entry, sessionID, notes, startTime, endTime, createdAt, updatedAt); err != nil {
		return nil, err
	}

	return entry, nil
}

// ListForClientRange retrieves all time entries for a client's tasks whose
// start time falls within [start, end], newest first.
func (r *EntryRepo) ListForClientRange(ctx context.Context, clientID int64, start, end time.Time) ([]*domain.TimeEntry, error) {
	query := `
		SELECT e.id, e.task_id, e.session_id, e.start_time, e.end_time,
		       e.duration_minutes, e.notes, e.created_at, e.updated_at
		FROM time_entries e
		JOIN tasks t ON t.id = e.task_id
		WHERE t.client_id = ?
		  AND e.start_time >= ?
		  AND e.start_time <= ?
		ORDER BY e.start_time DESC
	`

	rows, err := r.db.QueryContext(ctx, query,
		clientID,
		start.Format(timeLayout),
		end.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for client: %w", err)
	}
	defer rows.Close()

	return scanTimeEntries(rows)
}

// List retrieves time entries with optional filters, newest first
func (r *EntryRepo) List(ctx context.Context, taskID *int64, start, end *time.Time) ([]*domain.TimeEntry, error) {
	query := "SELECT " + entryColumns + " FROM time_entries WHERE 1=1"
	args := make([]interface{}, 0)

	if taskID != nil {
		query += " AND task_id = ?"
		args = append(args, *taskID)
	}

	if start != nil {
		query += " AND start_time >= ?"
		args = append(args, start.Format(timeLayout))
	}

	if end != nil {
		query += " AND start_time <= ?"
		args = append(args, end.Format(timeLayout))
	}

	query += " ORDER BY start_time DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}
	defer rows.Close()

	return scanTimeEntries(rows)
}

// Update updates an existing time entry
func (r *EntryRepo) Update(ctx context.Context, entry *domain.TimeEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("invalid time entry: %w", err)
	}

	query := `
		UPDATE time_entries
		SET task_id = ?, session_id = ?, start_time = ?, end_time = ?,
		    duration_minutes = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`

	entry.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		entry.TaskID,
		entry.SessionID,
		entry.StartTime.Format(timeLayout),
		entry.EndTime.Format(timeLayout),
		entry.DurationMinutes,
		entry.Notes,
		entry.UpdatedAt.Format(timeLayout),
		entry.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update time entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("time entry not found")
	}

	return nil
}

// Delete removes a time entry. Saved report entries keep their frozen copies
// regardless.
func (r *EntryRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM time_entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete time entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("time entry not found")
	}

	return nil
}

func scanTimeEntries(rows *sql.Rows) ([]*domain.TimeEntry, error) {
	entries := make([]*domain.TimeEntry, 0)
	for rows.Next() {
		entry := &domain.TimeEntry{}
		var sessionID, notes sql.NullString
		var startTime, endTime, createdAt, updatedAt string

		err := rows.Scan(
			&entry.ID,
			&entry.TaskID,
			&sessionID,
			&startTime,
			&endTime,
			&entry.DurationMinutes,
			&notes,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}

		if err := scanTimeEntry(entry, sessionID, notes, startTime, endTime, createdAt, updatedAt); err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating time entries: %w", err)
	}

	return entries, nil
}

// scanTimeEntry is a helper to parse time entry fields
func scanTimeEntry(entry *domain.TimeEntry, sessionID, notes sql.NullString, startTime, endTime, createdAt, updatedAt string) error {
	var err error

	if sessionID.Valid {
		val, err := strconv.ParseInt(sessionID.String, 10, 64)
		if err != nil {
			return fmt.Errorf("failed to parse session_id: %w", err)
		}
		entry.SessionID = &val
	}

	entry.Notes = notes.String

	if entry.StartTime, err = parseTime(startTime); err != nil {
		return fmt.Errorf("failed to parse start_time: %w", err)
	}
	if entry.EndTime, err = parseTime(endTime); err != nil {
		return fmt.Errorf("failed to parse end_time: %w", err)
	}
	if entry.CreatedAt, err = parseTime(createdAt); err != nil {
		return fmt.Errorf("failed to parse created_at: %w", err)
	}
	if entry.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return nil
}
