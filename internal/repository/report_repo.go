package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/avery/vaops/internal/db"
	"github.com/avery/vaops/internal/domain"
)

// ReportRepo is a SQLite implementation of TimeReportRepository
type ReportRepo struct {
	db *db.DB
}

// NewReportRepo creates a new ReportRepo
func NewReportRepo(database *db.DB) *ReportRepo {
	return &ReportRepo{db: database}
}

// Create persists a report and its entry batch in a single transaction.
// Either everything is written or nothing is; an entry insert failure rolls
// the report row back too.
func (r *ReportRepo) Create(ctx context.Context, report *domain.TimeReport, entries []*domain.TimeReportEntry) error {
	if err := report.Validate(); err != nil {
		return fmt.Errorf("invalid report: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO time_reports (
			va_user_id, client_id, name, date_from, date_to,
			total_seconds, entry_count, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		report.VAUserID,
		report.ClientID,
		report.Name,
		report.DateFrom.Format(dateLayout),
		report.DateTo.Format(dateLayout),
		report.TotalSeconds,
		report.EntryCount,
		report.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	reportID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get report ID: %w", err)
	}

	if len(entries) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO time_report_entries (
				report_id, entry_date, task_title, duration_seconds,
				notes, source_time_entry_id, session_id, task_id
			)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare entry insert: %w", err)
		}
		defer stmt.Close()

		for _, entry := range entries {
			var notes interface{}
			if entry.Notes != nil {
				notes = *entry.Notes
			}

			res, err := stmt.ExecContext(ctx,
				reportID,
				entry.EntryDate.Format(timeLayout),
				entry.TaskTitle,
				entry.DurationSeconds,
				notes,
				entry.SourceTimeEntryID,
				entry.SessionID,
				entry.TaskID,
			)
			if err != nil {
				return fmt.Errorf("failed to insert report entry: %w", err)
			}

			entryID, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("failed to get report entry ID: %w", err)
			}
			entry.ID = entryID
			entry.ReportID = reportID
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit report: %w", err)
	}

	report.ID = reportID
	return nil
}

// GetByID retrieves a report by ID, or nil if not found. Entries are loaded
// separately via GetEntries.
func (r *ReportRepo) GetByID(ctx context.Context, id int64) (*domain.TimeReport, error) {
	query := `
		SELECT id, va_user_id, client_id, name, date_from, date_to,
		       total_seconds, entry_count, created_at
		FROM time_reports
		WHERE id = ?
	`

	report := &domain.TimeReport{}
	var dateFrom, dateTo, createdAt string

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&report.ID,
		&report.VAUserID,
		&report.ClientID,
		&report.Name,
		&dateFrom,
		&dateTo,
		&report.TotalSeconds,
		&report.EntryCount,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	if err := scanReportDates(report, dateFrom, dateTo, createdAt); err != nil {
		return nil, err
	}

	return report, nil
}

// GetEntries retrieves the frozen entry rows for a report, preserving the
// order they were snapshotted in
func (r *ReportRepo) GetEntries(ctx context.Context, reportID int64) ([]*domain.TimeReportEntry, error) {
	query := `
		SELECT id, report_id, entry_date, task_title, duration_seconds,
		       notes, source_time_entry_id, session_id, task_id
		FROM time_report_entries
		WHERE report_id = ?
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to get report entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*domain.TimeReportEntry, 0)
	for rows.Next() {
		entry := &domain.TimeReportEntry{}
		var entryDate string
		var notes sql.NullString
		var sourceID, sessionID, taskID sql.NullString

		err := rows.Scan(
			&entry.ID,
			&entry.ReportID,
			&entryDate,
			&entry.TaskTitle,
			&entry.DurationSeconds,
			&notes,
			&sourceID,
			&sessionID,
			&taskID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report entry: %w", err)
		}

		if entry.EntryDate, err = parseTime(entryDate); err != nil {
			return nil, fmt.Errorf("failed to parse entry_date: %w", err)
		}
		if notes.Valid {
			val := notes.String
			entry.Notes = &val
		}
		if entry.SourceTimeEntryID, err = nullableID(sourceID, "source_time_entry_id"); err != nil {
			return nil, err
		}
		if entry.SessionID, err = nullableID(sessionID, "session_id"); err != nil {
			return nil, err
		}
		if entry.TaskID, err = nullableID(taskID, "task_id"); err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report entries: %w", err)
	}

	return entries, nil
}

// List retrieves saved reports for a VA, newest first, optionally filtered
// by client
func (r *ReportRepo) List(ctx context.Context, vaUserID string, clientID *int64) ([]*domain.TimeReport, error) {
	query := `
		SELECT id, va_user_id, client_id, name, date_from, date_to,
		       total_seconds, entry_count, created_at
		FROM time_reports
		WHERE va_user_id = ?
	`
	args := []interface{}{vaUserID}

	if clientID != nil {
		query += " AND client_id = ?"
		args = append(args, *clientID)
	}

	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := make([]*domain.TimeReport, 0)
	for rows.Next() {
		report := &domain.TimeReport{}
		var dateFrom, dateTo, createdAt string

		err := rows.Scan(
			&report.ID,
			&report.VAUserID,
			&report.ClientID,
			&report.Name,
			&dateFrom,
			&dateTo,
			&report.TotalSeconds,
			&report.EntryCount,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}

		if err := scanReportDates(report, dateFrom, dateTo, createdAt); err != nil {
			return nil, err
		}

		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}

	return reports, nil
}

// Delete removes a report and all its entries in one transaction
func (r *ReportRepo) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM time_report_entries WHERE report_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete report entries: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM time_reports WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("report not found")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit report delete: %w", err)
	}

	return nil
}

func scanReportDates(report *domain.TimeReport, dateFrom, dateTo, createdAt string) error {
	var err error

	if report.DateFrom, err = parseDate(dateFrom); err != nil {
		return fmt.Errorf("failed to parse date_from: %w", err)
	}
	if report.DateTo, err = parseDate(dateTo); err != nil {
		return fmt.Errorf("failed to parse date_to: %w", err)
	}
	if report.CreatedAt, err = parseTime(createdAt); err != nil {
		return fmt.Errorf("failed to parse created_at: %w", err)
	}

	return nil
}

func nullableID(v sql.NullString, column string) (*int64, error) {
	if !v.Valid {
		return nil, nil
	}
	val, err := strconv.ParseInt(v.String, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", column, err)
	}
	return &val, nil
}
