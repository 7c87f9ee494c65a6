package service

import (
	"testing"
	"time"

	"github.com/avery/vaops/internal/domain"
)

func int64Ptr(n int64) *int64 { return &n }

func reportEntry(title string, date time.Time, seconds int64, sessionID *int64) *domain.TimeReportEntry {
	return &domain.TimeReportEntry{
		TaskTitle:       title,
		EntryDate:       date,
		DurationSeconds: seconds,
		SessionID:       sessionID,
	}
}

func TestGroupReportEntriesEmpty(t *testing.T) {
	rows := GroupReportEntries(nil)
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}

	rows = GroupReportEntries([]*domain.TimeReportEntry{})
	if len(rows) != 0 {
		t.Fatalf("expected no rows for empty slice, got %d", len(rows))
	}
}

func TestGroupReportEntriesNoSessions(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	entries := []*domain.TimeReportEntry{
		reportEntry("Inbox triage", day, 1800, nil),
		reportEntry("Calendar cleanup", day.AddDate(0, 0, 1), 2700, nil),
	}

	rows := GroupReportEntries(entries)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	for i, row := range rows {
		if row.Level != 0 {
			t.Errorf("row %d: expected level 0, got %d", i, row.Level)
		}
		if row.IsSessionSummary {
			t.Errorf("row %d: unexpected session summary", i)
		}
		if row.Entry != entries[i] {
			t.Errorf("row %d: expected passthrough of input entry", i)
		}
	}

	if rows[0].Key != "entry-0" || rows[1].Key != "entry-1" {
		t.Errorf("unexpected keys: %q, %q", rows[0].Key, rows[1].Key)
	}
}

func TestGroupReportEntriesSessionGrouping(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	entries := []*domain.TimeReportEntry{
		reportEntry("Inbox triage", day, 1800, nil),
		reportEntry("Research", day.AddDate(0, 0, 1), 2700, int64Ptr(7)),
		reportEntry("Research", day, 900, int64Ptr(7)),
	}

	rows := GroupReportEntries(entries)
	// standalone + summary + 2 children
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}

	if rows[0].Key != "entry-0" || rows[0].Level != 0 || rows[0].IsSessionSummary {
		t.Errorf("row 0 should be the standalone entry, got %+v", rows[0])
	}

	summary := rows[1]
	if !summary.IsSessionSummary {
		t.Fatal("expected session summary at first appearance position")
	}
	if summary.Key != "session-7" {
		t.Errorf("expected key session-7, got %q", summary.Key)
	}
	if summary.Level != 0 {
		t.Errorf("expected summary at level 0, got %d", summary.Level)
	}
	if summary.DurationSeconds != 3600 {
		t.Errorf("expected summary duration 3600, got %d", summary.DurationSeconds)
	}
	if summary.TaskTitle != "Research" {
		t.Errorf("expected shared title on summary, got %q", summary.TaskTitle)
	}
	// earliest member date, not first member date
	if !summary.EntryDate.Equal(day) {
		t.Errorf("expected earliest member date %v, got %v", day, summary.EntryDate)
	}
	if summary.Entry != nil {
		t.Error("summary row should not carry an underlying entry")
	}

	for i, row := range rows[2:] {
		if row.Level != 1 {
			t.Errorf("child %d: expected level 1, got %d", i, row.Level)
		}
		if row.IsSessionSummary {
			t.Errorf("child %d: should not be a summary", i)
		}
	}
	if rows[2].Key != "session-7-entry-1" || rows[3].Key != "session-7-entry-2" {
		t.Errorf("unexpected child keys: %q, %q", rows[2].Key, rows[3].Key)
	}

	// top-level durations account for every input second exactly once
	var topTotal, inputTotal int64
	for _, row := range rows {
		if row.Level == 0 {
			topTotal += row.DurationSeconds
		}
	}
	for _, e := range entries {
		inputTotal += e.DurationSeconds
	}
	if topTotal != inputTotal {
		t.Errorf("top-level total %d does not match input total %d", topTotal, inputTotal)
	}
}

func TestGroupReportEntriesMixedTitleSession(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	entries := []*domain.TimeReportEntry{
		reportEntry("Research", day, 600, int64Ptr(3)),
		reportEntry("Write-up", day, 1200, int64Ptr(3)),
	}

	rows := GroupReportEntries(entries)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].TaskTitle != SessionLabel {
		t.Errorf("expected generic label %q for mixed-title session, got %q", SessionLabel, rows[0].TaskTitle)
	}
}

func TestGroupReportEntriesInterleavedSessions(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	entries := []*domain.TimeReportEntry{
		reportEntry("A", day, 100, int64Ptr(1)),
		reportEntry("B", day, 200, int64Ptr(2)),
		reportEntry("A", day, 300, int64Ptr(1)),
	}

	rows := GroupReportEntries(entries)
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}

	// session 1 first appeared first, so its block comes first even though
	// its second member arrives after session 2 started
	wantKeys := []string{"session-1", "session-1-entry-0", "session-1-entry-2", "session-2", "session-2-entry-1"}
	for i, want := range wantKeys {
		if rows[i].Key != want {
			t.Errorf("row %d: expected key %q, got %q", i, want, rows[i].Key)
		}
	}
	if rows[0].DurationSeconds != 400 {
		t.Errorf("expected session 1 total 400, got %d", rows[0].DurationSeconds)
	}
}

func TestGroupReportEntriesDoesNotMutateInput(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	entry := reportEntry("Research", day, 600, int64Ptr(9))
	before := *entry

	GroupReportEntries([]*domain.TimeReportEntry{entry})

	if *entry != before {
		t.Error("input entry was mutated")
	}
}
