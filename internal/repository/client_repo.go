package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avery/vaops/internal/db"
	"github.com/avery/vaops/internal/domain"
)

// ClientRepo is a SQLite implementation of ClientRepository
type ClientRepo struct {
	db *db.DB
}

// NewClientRepo creates a new ClientRepo
func NewClientRepo(database *db.DB) *ClientRepo {
	return &ClientRepo{db: database}
}

// Create inserts a new client into the database
func (r *ClientRepo) Create(ctx context.Context, client *domain.Client) error {
	if err := client.Validate(); err != nil {
		return fmt.Errorf("invalid client: %w", err)
	}

	query := `
		INSERT INTO clients (name, email, notes, is_archived, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		client.Name,
		client.Email,
		client.Notes,
		client.IsArchived,
		client.CreatedAt.Format(timeLayout),
		client.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get client ID: %w", err)
	}

	client.ID = id
	return nil
}

// GetByID retrieves a client by ID, or nil if not found
func (r *ClientRepo) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	return r.getOne(ctx, "id = ?", id)
}

// GetByName retrieves a client by name, or nil if not found
func (r *ClientRepo) GetByName(ctx context.Context, name string) (*domain.Client, error) {
	return r.getOne(ctx, "name = ?", name)
}

func (r *ClientRepo) getOne(ctx context.Context, where string, arg interface{}) (*domain.Client, error) {
	query := `
		SELECT id, name, email, notes, is_archived, created_at, updated_at
		FROM clients
		WHERE ` + where

	client := &domain.Client{}
	var email, notes sql.NullString
	var createdAt, updatedAt string

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&client.ID,
		&client.Name,
		&email,
		&notes,
		&client.IsArchived,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	client.Email = email.String
	client.Notes = notes.String

	if client.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if client.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return client, nil
}

// List retrieves all clients, optionally including archived ones
func (r *ClientRepo) List(ctx context.Context, includeArchived bool) ([]*domain.Client, error) {
	query := `
		SELECT id, name, email, notes, is_archived, created_at, updated_at
		FROM clients
	`
	if !includeArchived {
		query += " WHERE is_archived = 0"
	}
	query += " ORDER BY name"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	clients := make([]*domain.Client, 0)
	for rows.Next() {
		client := &domain.Client{}
		var email, notes sql.NullString
		var createdAt, updatedAt string

		err := rows.Scan(
			&client.ID,
			&client.Name,
			&email,
			&notes,
			&client.IsArchived,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}

		client.Email = email.String
		client.Notes = notes.String

		if client.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if client.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}

		clients = append(clients, client)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clients: %w", err)
	}

	return clients, nil
}

// Update updates an existing client
func (r *ClientRepo) Update(ctx context.Context, client *domain.Client) error {
	if err := client.Validate(); err != nil {
		return fmt.Errorf("invalid client: %w", err)
	}

	query := `
		UPDATE clients
		SET name = ?, email = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		client.Name,
		client.Email,
		client.Notes,
		formatTime(),
		client.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("client not found")
	}

	return nil
}

// Archive marks a client as archived
func (r *ClientRepo) Archive(ctx context.Context, id int64) error {
	return r.setArchived(ctx, id, true)
}

// Unarchive restores an archived client
func (r *ClientRepo) Unarchive(ctx context.Context, id int64) error {
	return r.setArchived(ctx, id, false)
}

func (r *ClientRepo) setArchived(ctx context.Context, id int64, archived bool) error {
	query := "UPDATE clients SET is_archived = ?, updated_at = ? WHERE id = ?"

	result, err := r.db.ExecContext(ctx, query, archived, formatTime(), id)
	if err != nil {
		return fmt.Errorf("failed to update client archive state: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("client not found")
	}

	return nil
}
