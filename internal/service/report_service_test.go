package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avery/vaops/internal/domain"
)

func newReportFixture() (*reportService, *mockReportRepo, *mockEntryRepo) {
	clientRepo := &mockClientRepo{clients: map[int64]*domain.Client{
		1: {ID: 1, Name: "Acme Co"},
	}}
	taskRepo := &mockTaskRepo{tasks: map[int64]*domain.Task{
		10: {ID: 10, ClientID: 1, Title: "Inbox triage"},
		11: {ID: 11, ClientID: 1, Title: "Research"},
	}}
	entryRepo := &mockEntryRepo{clientOf: map[int64]int64{10: 1, 11: 1}}
	reportRepo := newMockReportRepo()

	svc := &reportService{
		vaUserID:   "va-1",
		reportRepo: reportRepo,
		entryRepo:  entryRepo,
		taskRepo:   taskRepo,
		clientRepo: clientRepo,
	}
	return svc, reportRepo, entryRepo
}

func addEntry(repo *mockEntryRepo, taskID int64, start time.Time, minutes int64, sessionID *int64, notes string) *domain.TimeEntry {
	entry := &domain.TimeEntry{
		TaskID:          taskID,
		SessionID:       sessionID,
		StartTime:       start,
		EndTime:         start.Add(time.Duration(minutes) * time.Minute),
		DurationMinutes: minutes,
		Notes:           notes,
	}
	repo.Create(context.Background(), entry)
	return entry
}

func TestPreviewAggregatesEntries(t *testing.T) {
	svc, _, entryRepo := newReportFixture()
	ctx := context.Background()

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.Local)

	e1 := addEntry(entryRepo, 10, from.Add(9*time.Hour), 30, nil, "sorted inbox")
	addEntry(entryRepo, 11, from.AddDate(0, 0, 2).Add(14*time.Hour), 45, int64Ptr(5), "")
	// outside the range, must not appear
	addEntry(entryRepo, 10, from.AddDate(0, -1, 0), 60, nil, "")

	preview, err := svc.Preview(ctx, 1, from, to, true)
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}

	if preview.EntryCount != 2 {
		t.Fatalf("expected 2 lines, got %d", preview.EntryCount)
	}
	if preview.TotalSeconds != 75*60 {
		t.Errorf("expected total %d seconds, got %d", 75*60, preview.TotalSeconds)
	}

	// lines come back newest first by entry start time
	if preview.Lines[0].TaskTitle != "Research" {
		t.Fatalf("expected newest entry first, got %q", preview.Lines[0].TaskTitle)
	}
	if preview.Lines[0].EntryDate.Before(preview.Lines[1].EntryDate) {
		t.Error("lines must be ordered newest first")
	}
	if preview.Lines[0].SessionID == nil || *preview.Lines[0].SessionID != 5 {
		t.Error("expected session id preserved on newest line")
	}

	line := preview.Lines[1]
	if line.TaskTitle != "Inbox triage" {
		t.Errorf("expected denormalized task title, got %q", line.TaskTitle)
	}
	if line.DurationSeconds != 1800 {
		t.Errorf("expected 1800 seconds, got %d", line.DurationSeconds)
	}
	if line.SourceTimeEntryID == nil || *line.SourceTimeEntryID != e1.ID {
		t.Error("expected source entry id on line")
	}
	if line.Notes == nil || *line.Notes != "sorted inbox" {
		t.Error("expected notes carried onto line when includeNotes is set")
	}
}

func TestPreviewExcludesNotes(t *testing.T) {
	svc, _, entryRepo := newReportFixture()
	ctx := context.Background()

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)
	addEntry(entryRepo, 10, from.Add(9*time.Hour), 30, nil, "private note")

	preview, err := svc.Preview(ctx, 1, from, from, false)
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if preview.Lines[0].Notes != nil {
		t.Error("notes should be omitted when includeNotes is false")
	}
}

func TestPreviewEmptyRangeIsValid(t *testing.T) {
	svc, _, _ := newReportFixture()

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)
	preview, err := svc.Preview(context.Background(), 1, from, from, false)
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if preview.EntryCount != 0 || preview.TotalSeconds != 0 || len(preview.Lines) != 0 {
		t.Errorf("expected empty preview, got %+v", preview)
	}
}

func TestPreviewInvalidRange(t *testing.T) {
	svc, _, _ := newReportFixture()

	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	to := time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)

	_, err := svc.Preview(context.Background(), 1, from, to, false)
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestPreviewClientNotFound(t *testing.T) {
	svc, _, _ := newReportFixture()

	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)
	_, err := svc.Preview(context.Background(), 99, day, day, false)
	if !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}

func TestPreviewMissingTaskFallsBack(t *testing.T) {
	svc, _, entryRepo := newReportFixture()
	ctx := context.Background()

	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)
	// task 12 belongs to client 1 in the entry index but has no task row
	entryRepo.clientOf[12] = 1
	addEntry(entryRepo, 12, day.Add(time.Hour), 15, nil, "")

	preview, err := svc.Preview(ctx, 1, day, day, false)
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if preview.Lines[0].TaskTitle != domain.UntitledTask {
		t.Errorf("expected fallback title %q, got %q", domain.UntitledTask, preview.Lines[0].TaskTitle)
	}
}

func TestSaveFreezesPreview(t *testing.T) {
	svc, reportRepo, entryRepo := newReportFixture()
	ctx := context.Background()

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.Local)
	addEntry(entryRepo, 10, from.Add(9*time.Hour), 30, nil, "")
	addEntry(entryRepo, 11, from.Add(10*time.Hour), 45, int64Ptr(5), "")

	preview, err := svc.Preview(ctx, 1, from, to, false)
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}

	report, err := svc.Save(ctx, preview, "March 2026")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if report.ID == 0 {
		t.Error("expected report id assigned")
	}
	if report.VAUserID != "va-1" {
		t.Errorf("expected VA user id stamped, got %q", report.VAUserID)
	}
	if report.Name != "March 2026" {
		t.Errorf("unexpected name %q", report.Name)
	}
	if report.TotalSeconds != preview.TotalSeconds || report.EntryCount != preview.EntryCount {
		t.Error("totals must be frozen from the preview")
	}
	if reportRepo.createCalls != 1 {
		t.Fatalf("expected a single Create call, got %d", reportRepo.createCalls)
	}

	saved, _ := reportRepo.GetEntries(ctx, report.ID)
	if len(saved) != 2 {
		t.Fatalf("expected 2 frozen entries, got %d", len(saved))
	}
	if saved[0].ReportID != report.ID {
		t.Error("frozen entries must point at the saved report")
	}
	// the 10:00 session entry is newer, so it snapshots first
	if saved[0].SessionID == nil || *saved[0].SessionID != 5 {
		t.Error("session id must survive the snapshot")
	}
}

func TestSaveTrimsAndRejectsEmptyName(t *testing.T) {
	svc, reportRepo, _ := newReportFixture()
	ctx := context.Background()

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)
	preview, err := svc.Preview(ctx, 1, from, from, false)
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}

	for _, name := range []string{"", "   ", "\t\n"} {
		if _, err := svc.Save(ctx, preview, name); !errors.Is(err, ErrEmptyReportName) {
			t.Errorf("name %q: expected ErrEmptyReportName, got %v", name, err)
		}
	}
	if reportRepo.createCalls != 0 {
		t.Fatalf("nothing should be written for an invalid name, got %d Create calls", reportRepo.createCalls)
	}

	report, err := svc.Save(ctx, preview, "  Q1 wrap-up  ")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if report.Name != "Q1 wrap-up" {
		t.Errorf("expected trimmed name, got %q", report.Name)
	}
}

func TestSaveEmptyPreviewIsValid(t *testing.T) {
	svc, reportRepo, _ := newReportFixture()
	ctx := context.Background()

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)
	preview, err := svc.Preview(ctx, 1, from, from, false)
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}

	report, err := svc.Save(ctx, preview, "Empty week")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if report.EntryCount != 0 || report.TotalSeconds != 0 {
		t.Errorf("expected zeroed totals, got %+v", report)
	}
	if reportRepo.createCalls != 1 {
		t.Fatalf("expected one Create call, got %d", reportRepo.createCalls)
	}
}

func TestSuggestName(t *testing.T) {
	svc, _, _ := newReportFixture()

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)
	to := time.Date(2026, 1, 31, 0, 0, 0, 0, time.Local)

	name, err := svc.SuggestName(context.Background(), 1, from, to)
	if err != nil {
		t.Fatalf("SuggestName failed: %v", err)
	}
	want := "Acme Co – 1 Jan 2026–31 Jan 2026"
	if name != want {
		t.Errorf("expected %q, got %q", want, name)
	}

	if _, err := svc.SuggestName(context.Background(), 99, from, to); !errors.Is(err, ErrClientNotFound) {
		t.Errorf("expected ErrClientNotFound, got %v", err)
	}
}

func TestGetMissingReport(t *testing.T) {
	svc, _, _ := newReportFixture()

	report, err := svc.Get(context.Background(), 404)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if report != nil {
		t.Error("expected nil for a missing report")
	}
}
