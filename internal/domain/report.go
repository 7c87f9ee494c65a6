package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// UntitledTask is the title recorded on report lines whose source task is
// gone or was never titled.
const UntitledTask = "Untitled task"

// TimeReport is an immutable snapshot of time worked for one client over a
// date range. Totals are frozen at creation and never recomputed, so later
// edits or deletions of the source entries cannot change an issued report.
type TimeReport struct {
	ID           int64
	VAUserID     string
	ClientID     int64
	Name         string
	DateFrom     time.Time // calendar date, midnight local
	DateTo       time.Time
	TotalSeconds int64
	EntryCount   int64
	CreatedAt    time.Time

	// Entries are populated by the repository on load
	Entries []*TimeReportEntry
}

// TimeReportEntry is one frozen line within a report. Task title, duration
// and the session/task ids are denormalized copies, not live references.
type TimeReportEntry struct {
	ID                int64
	ReportID          int64
	EntryDate         time.Time
	TaskTitle         string
	DurationSeconds   int64
	Notes             *string
	SourceTimeEntryID *int64
	SessionID         *int64
	TaskID            *int64
}

// Validate returns an error if the report is invalid
func (r *TimeReport) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("report name is required")
	}
	if r.ClientID <= 0 {
		return errors.New("client ID is required")
	}
	if r.DateFrom.IsZero() || r.DateTo.IsZero() {
		return errors.New("date range is required")
	}
	if r.DateTo.Before(r.DateFrom) {
		return errors.New("date to must not be before date from")
	}
	if r.TotalSeconds < 0 {
		return errors.New("total seconds cannot be negative")
	}
	return nil
}

// ReportPreview is the in-memory result of aggregating time entries for a
// range, before anything is persisted. Generating one has no side effects.
type ReportPreview struct {
	ClientID     int64
	DateFrom     time.Time
	DateTo       time.Time
	IncludeNotes bool
	Lines        []*PreviewLine
	TotalSeconds int64
	EntryCount   int64
}

// PreviewLine is one normalized entry within a preview.
type PreviewLine struct {
	EntryDate         time.Time
	TaskTitle         string
	DurationSeconds   int64
	Notes             *string
	SourceTimeEntryID *int64
	SessionID         *int64
	TaskID            *int64
}

// Snapshot converts the preview lines into frozen report entries, ready to
// be persisted or grouped for display.
func (p *ReportPreview) Snapshot() []*TimeReportEntry {
	entries := make([]*TimeReportEntry, 0, len(p.Lines))
	for _, line := range p.Lines {
		entries = append(entries, &TimeReportEntry{
			EntryDate:         line.EntryDate,
			TaskTitle:         line.TaskTitle,
			DurationSeconds:   line.DurationSeconds,
			Notes:             line.Notes,
			SourceTimeEntryID: line.SourceTimeEntryID,
			SessionID:         line.SessionID,
			TaskID:            line.TaskID,
		})
	}
	return entries
}

// SuggestReportName builds the default name for a report covering the given
// range, e.g. "Acme Co – 1 Jan 2025–31 Jan 2025".
func SuggestReportName(clientName string, dateFrom, dateTo time.Time) string {
	return fmt.Sprintf("%s – %s–%s",
		clientName,
		dateFrom.Format("2 Jan 2006"),
		dateTo.Format("2 Jan 2006"),
	)
}
