package repository

import (
	"context"
	"time"

	"github.com/avery/vaops/internal/domain"
)

// ClientRepository manages client persistence
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id int64) (*domain.Client, error)
	GetByName(ctx context.Context, name string) (*domain.Client, error)
	List(ctx context.Context, includeArchived bool) ([]*domain.Client, error)
	Update(ctx context.Context, client *domain.Client) error
	Archive(ctx context.Context, id int64) error
	Unarchive(ctx context.Context, id int64) error
}

// TaskRepository manages task persistence
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	ListByClient(ctx context.Context, clientID int64, includeArchived bool) ([]*domain.Task, error)
	Archive(ctx context.Context, id int64) error
}

// TimeEntryRepository manages raw time entries. The report core only reads
// through ListForClientRange; writes belong to the tracking feature.
type TimeEntryRepository interface {
	Create(ctx context.Context, entry *domain.TimeEntry) error
	GetByID(ctx context.Context, id int64) (*domain.TimeEntry, error)
	// ListForClientRange returns entries for all of the client's tasks whose
	// start time falls within [start, end], newest first.
	ListForClientRange(ctx context.Context, clientID int64, start, end time.Time) ([]*domain.TimeEntry, error)
	List(ctx context.Context, taskID *int64, start, end *time.Time) ([]*domain.TimeEntry, error)
	Update(ctx context.Context, entry *domain.TimeEntry) error
	Delete(ctx context.Context, id int64) error
}

// TimeReportRepository manages immutable report snapshots. Create persists
// the report row and its entry batch in a single transaction so a failure
// can never leave an orphaned report.
type TimeReportRepository interface {
	Create(ctx context.Context, report *domain.TimeReport, entries []*domain.TimeReportEntry) error
	GetByID(ctx context.Context, id int64) (*domain.TimeReport, error)
	GetEntries(ctx context.Context, reportID int64) ([]*domain.TimeReportEntry, error)
	List(ctx context.Context, vaUserID string, clientID *int64) ([]*domain.TimeReport, error)
	// Delete removes the report and all its entries together.
	Delete(ctx context.Context, id int64) error
}

// DocumentRepository manages client documents (invoices)
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.ClientDocument) error
	GetByID(ctx context.Context, id int64) (*domain.ClientDocument, error)
	List(ctx context.Context, clientID *int64, kind *domain.DocumentKind) ([]*domain.ClientDocument, error)
	UpdateContent(ctx context.Context, id int64, content string) error
	Delete(ctx context.Context, id int64) error
}

// WorkSessionRepository manages work session rows
type WorkSessionRepository interface {
	Create(ctx context.Context, session *domain.WorkSession) error
	GetByID(ctx context.Context, id int64) (*domain.WorkSession, error)
}

// TimerRepository manages the active timer state (singleton)
type TimerRepository interface {
	Get(ctx context.Context) (*domain.ActiveTimer, error) // Returns nil if no active timer
	Save(ctx context.Context, timer *domain.ActiveTimer) error
	Delete(ctx context.Context) error
}
