package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avery/vaops/internal/db"
	"github.com/avery/vaops/internal/domain"
)

// TaskRepo is a SQLite implementation of TaskRepository
type TaskRepo struct {
	db *db.DB
}

// NewTaskRepo creates a new TaskRepo
func NewTaskRepo(database *db.DB) *TaskRepo {
	return &TaskRepo{db: database}
}

// Create inserts a new task into the database
func (r *TaskRepo) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}

	query := `
		INSERT INTO tasks (client_id, title, is_archived, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		task.ClientID,
		task.Title,
		task.IsArchived,
		task.CreatedAt.Format(timeLayout),
		task.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get task ID: %w", err)
	}

	task.ID = id
	return nil
}

// GetByID retrieves a task by ID, or nil if not found
func (r *TaskRepo) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	query := `
		SELECT id, client_id, title, is_archived, created_at, updated_at
		FROM tasks
		WHERE id = ?
	`

	task := &domain.Task{}
	var createdAt, updatedAt string

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&task.ID,
		&task.ClientID,
		&task.Title,
		&task.IsArchived,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	if task.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if task.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return task, nil
}

// ListByClient retrieves tasks for a client
func (r *TaskRepo) ListByClient(ctx context.Context, clientID int64, includeArchived bool) ([]*domain.Task, error) {
	query := `
		SELECT id, client_id, title, is_archived, created_at, updated_at
		FROM tasks
		WHERE client_id = ?
	`
	if !includeArchived {
		query += " AND is_archived = 0"
	}
	query += " ORDER BY title"

	rows, err := r.db.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task := &domain.Task{}
		var createdAt, updatedAt string

		err := rows.Scan(
			&task.ID,
			&task.ClientID,
			&task.Title,
			&task.IsArchived,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}

		if task.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if task.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}

		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

// Archive marks a task as archived
func (r *TaskRepo) Archive(ctx context.Context, id int64) error {
	query := "UPDATE tasks SET is_archived = 1, updated_at = ? WHERE id = ?"

	result, err := r.db.ExecContext(ctx, query, formatTime(), id)
	if err != nil {
		return fmt.Errorf("failed to archive task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("task not found")
	}

	return nil
}
