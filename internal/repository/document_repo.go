package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avery/vaops/internal/db"
	"github.com/avery/vaops/internal/domain"
)

// DocumentRepo is a SQLite implementation of DocumentRepository
type DocumentRepo struct {
	db *db.DB
}

// NewDocumentRepo creates a new DocumentRepo
func NewDocumentRepo(database *db.DB) *DocumentRepo {
	return &DocumentRepo{db: database}
}

// Create inserts a new client document into the database
func (r *DocumentRepo) Create(ctx context.Context, doc *domain.ClientDocument) error {
	query := `
		INSERT INTO client_documents (client_id, kind, title, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		doc.ClientID,
		string(doc.Kind),
		doc.Title,
		doc.Content,
		doc.CreatedAt.Format(timeLayout),
		doc.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get document ID: %w", err)
	}

	doc.ID = id
	return nil
}

// GetByID retrieves a document by ID, or nil if not found
func (r *DocumentRepo) GetByID(ctx context.Context, id int64) (*domain.ClientDocument, error) {
	query := `
		SELECT id, client_id, kind, title, content, created_at, updated_at
		FROM client_documents
		WHERE id = ?
	`

	doc := &domain.ClientDocument{}
	var kind, createdAt, updatedAt string

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&doc.ID,
		&doc.ClientID,
		&kind,
		&doc.Title,
		&doc.Content,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	doc.Kind = domain.DocumentKind(kind)

	if doc.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if doc.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return doc, nil
}

// List retrieves documents with optional client and kind filters, newest first
func (r *DocumentRepo) List(ctx context.Context, clientID *int64, kind *domain.DocumentKind) ([]*domain.ClientDocument, error) {
	query := `
		SELECT id, client_id, kind, title, content, created_at, updated_at
		FROM client_documents
		WHERE 1=1
	`
	args := make([]interface{}, 0)

	if clientID != nil {
		query += " AND client_id = ?"
		args = append(args, *clientID)
	}

	if kind != nil {
		query += " AND kind = ?"
		args = append(args, string(*kind))
	}

	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]*domain.ClientDocument, 0)
	for rows.Next() {
		doc := &domain.ClientDocument{}
		var docKind, createdAt, updatedAt string

		err := rows.Scan(
			&doc.ID,
			&doc.ClientID,
			&docKind,
			&doc.Title,
			&doc.Content,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}

		doc.Kind = domain.DocumentKind(docKind)

		if doc.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if doc.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}

		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}

	return docs, nil
}

// UpdateContent replaces a document's content blob
func (r *DocumentRepo) UpdateContent(ctx context.Context, id int64, content string) error {
	query := "UPDATE client_documents SET content = ?, updated_at = ? WHERE id = ?"

	result, err := r.db.ExecContext(ctx, query, content, formatTime(), id)
	if err != nil {
		return fmt.Errorf("failed to update document content: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("document not found")
	}

	return nil
}

// Delete removes a document. Reports referenced by the document are never
// touched; the link is a weak reference.
func (r *DocumentRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM client_documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("document not found")
	}

	return nil
}
