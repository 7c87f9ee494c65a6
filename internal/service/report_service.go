package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avery/vaops/internal/domain"
	"github.com/avery/vaops/internal/repository"
)

var (
	ErrEmptyReportName = errors.New("report name cannot be empty")
	ErrClientNotFound  = errors.New("client not found")
	ErrInvalidRange    = errors.New("date from must not be after date to")
)

// ReportService generates and persists time report snapshots.
//
// Preview aggregates raw entries without side effects; Save freezes a
// preview into an immutable report. A saved report never changes when the
// underlying time entries are edited or deleted.
type ReportService interface {
	// Preview aggregates the client's time entries for an inclusive
	// calendar-date range into normalized lines plus totals. Pure read;
	// an empty range is a valid preview, not an error.
	Preview(ctx context.Context, clientID int64, dateFrom, dateTo time.Time, includeNotes bool) (*domain.ReportPreview, error)

	// SuggestName builds the default report name for a client and range
	SuggestName(ctx context.Context, clientID int64, dateFrom, dateTo time.Time) (string, error)

	// Save persists a preview under the given name. The report row and its
	// entry batch are written atomically; an empty name after trimming
	// aborts before anything is written.
	Save(ctx context.Context, preview *domain.ReportPreview, name string) (*domain.TimeReport, error)

	// Get loads a saved report with its entries, or nil if it no longer exists
	Get(ctx context.Context, id int64) (*domain.TimeReport, error)

	// List returns the VA's saved reports, optionally filtered by client
	List(ctx context.Context, clientID *int64) ([]*domain.TimeReport, error)

	// Delete removes a report and all its entries. Destructive; callers are
	// expected to confirm with the user first.
	Delete(ctx context.Context, id int64) error
}

type reportService struct {
	vaUserID   string
	reportRepo repository.TimeReportRepository
	entryRepo  repository.TimeEntryRepository
	taskRepo   repository.TaskRepository
	clientRepo repository.ClientRepository
}

// NewReportService creates a new report service
func NewReportService(
	vaUserID string,
	reportRepo repository.TimeReportRepository,
	entryRepo repository.TimeEntryRepository,
	taskRepo repository.TaskRepository,
	clientRepo repository.ClientRepository,
) ReportService {
	return &reportService{
		vaUserID:   vaUserID,
		reportRepo: reportRepo,
		entryRepo:  entryRepo,
		taskRepo:   taskRepo,
		clientRepo: clientRepo,
	}
}

func (s *reportService) Preview(
	ctx context.Context,
	clientID int64,
	dateFrom, dateTo time.Time,
	includeNotes bool,
) (*domain.ReportPreview, error) {
	if clientID <= 0 {
		return nil, ErrClientNotFound
	}

	from := startOfDay(dateFrom)
	to := startOfDay(dateTo)
	if to.Before(from) {
		return nil, ErrInvalidRange
	}

	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, ErrClientNotFound
	}

	// Inclusive calendar range: start of the first day to end of the last
	rangeEnd := endOfDay(to)

	entries, err := s.entryRepo.ListForClientRange(ctx, clientID, from, rangeEnd)
	if err != nil {
		return nil, err
	}

	// Task titles are copied into the lines; a missing task falls back to
	// a generic title rather than failing the preview
	titles, err := s.taskTitles(ctx, clientID)
	if err != nil {
		return nil, err
	}

	preview := &domain.ReportPreview{
		ClientID:     clientID,
		DateFrom:     from,
		DateTo:       to,
		IncludeNotes: includeNotes,
		Lines:        make([]*domain.PreviewLine, 0, len(entries)),
	}

	for _, entry := range entries {
		title, ok := titles[entry.TaskID]
		if !ok || strings.TrimSpace(title) == "" {
			title = domain.UntitledTask
		}

		line := &domain.PreviewLine{
			EntryDate:       entry.StartTime,
			TaskTitle:       title,
			DurationSeconds: entry.DurationMinutes * 60,
			SessionID:       entry.SessionID,
		}

		entryID := entry.ID
		line.SourceTimeEntryID = &entryID
		taskID := entry.TaskID
		line.TaskID = &taskID

		if includeNotes && entry.Notes != "" {
			notes := entry.Notes
			line.Notes = &notes
		}

		preview.Lines = append(preview.Lines, line)
		preview.TotalSeconds += line.DurationSeconds
	}

	preview.EntryCount = int64(len(preview.Lines))
	return preview, nil
}

func (s *reportService) SuggestName(ctx context.Context, clientID int64, dateFrom, dateTo time.Time) (string, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return "", err
	}
	if client == nil {
		return "", ErrClientNotFound
	}

	return domain.SuggestReportName(client.Name, dateFrom, dateTo), nil
}

func (s *reportService) Save(ctx context.Context, preview *domain.ReportPreview, name string) (*domain.TimeReport, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyReportName
	}

	report := &domain.TimeReport{
		VAUserID:     s.vaUserID,
		ClientID:     preview.ClientID,
		Name:         name,
		DateFrom:     preview.DateFrom,
		DateTo:       preview.DateTo,
		TotalSeconds: preview.TotalSeconds,
		EntryCount:   preview.EntryCount,
		CreatedAt:    time.Now(),
	}

	entries := preview.Snapshot()

	if err := s.reportRepo.Create(ctx, report, entries); err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}

	report.Entries = entries
	return report, nil
}

func (s *reportService) Get(ctx context.Context, id int64) (*domain.TimeReport, error) {
	report, err := s.reportRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, nil
	}

	entries, err := s.reportRepo.GetEntries(ctx, id)
	if err != nil {
		return nil, err
	}

	report.Entries = entries
	return report, nil
}

func (s *reportService) List(ctx context.Context, clientID *int64) ([]*domain.TimeReport, error) {
	return s.reportRepo.List(ctx, s.vaUserID, clientID)
}

func (s *reportService) Delete(ctx context.Context, id int64) error {
	return s.reportRepo.Delete(ctx, id)
}

func (s *reportService) taskTitles(ctx context.Context, clientID int64) (map[int64]string, error) {
	tasks, err := s.taskRepo.ListByClient(ctx, clientID, true)
	if err != nil {
		return nil, err
	}

	titles := make(map[int64]string, len(tasks))
	for _, task := range tasks {
		titles[task.ID] = task.Title
	}
	return titles, nil
}

// startOfDay normalizes a timestamp to midnight local time
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// endOfDay returns 23:59:59.999 on the given day
func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999_000_000, t.Location())
}
