package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avery/vaops/internal/db"
	"github.com/avery/vaops/internal/domain"
)

// SessionRepo is a SQLite implementation of WorkSessionRepository
type SessionRepo struct {
	db *db.DB
}

// NewSessionRepo creates a new SessionRepo
func NewSessionRepo(database *db.DB) *SessionRepo {
	return &SessionRepo{db: database}
}

// Create inserts a new work session
func (r *SessionRepo) Create(ctx context.Context, session *domain.WorkSession) error {
	query := "INSERT INTO work_sessions (task_id, started_at) VALUES (?, ?)"

	result, err := r.db.ExecContext(ctx, query,
		session.TaskID,
		session.StartedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to create work session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get work session ID: %w", err)
	}

	session.ID = id
	return nil
}

// GetByID retrieves a work session by ID, or nil if not found
func (r *SessionRepo) GetByID(ctx context.Context, id int64) (*domain.WorkSession, error) {
	query := "SELECT id, task_id, started_at FROM work_sessions WHERE id = ?"

	session := &domain.WorkSession{}
	var startedAt string

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.TaskID,
		&startedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get work session: %w", err)
	}

	if session.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, fmt.Errorf("failed to parse started_at: %w", err)
	}

	return session, nil
}
