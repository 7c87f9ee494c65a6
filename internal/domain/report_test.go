package domain

import (
	"testing"
	"time"
)

func TestTimeReportValidate(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.Local)

	valid := &TimeReport{Name: "March 2026", ClientID: 1, DateFrom: from, DateTo: to}
	if err := valid.Validate(); err != nil {
		t.Errorf("expected valid report, got %v", err)
	}

	cases := []struct {
		name   string
		report *TimeReport
	}{
		{"blank name", &TimeReport{Name: "  ", ClientID: 1, DateFrom: from, DateTo: to}},
		{"missing client", &TimeReport{Name: "x", DateFrom: from, DateTo: to}},
		{"missing range", &TimeReport{Name: "x", ClientID: 1}},
		{"inverted range", &TimeReport{Name: "x", ClientID: 1, DateFrom: to, DateTo: from}},
		{"negative total", &TimeReport{Name: "x", ClientID: 1, DateFrom: from, DateTo: to, TotalSeconds: -1}},
	}
	for _, tc := range cases {
		if err := tc.report.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestSuggestReportName(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)
	to := time.Date(2026, 1, 31, 0, 0, 0, 0, time.Local)

	got := SuggestReportName("Acme Co", from, to)
	want := "Acme Co – 1 Jan 2026–31 Jan 2026"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPreviewSnapshot(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	notes := "sorted inbox"
	entryID := int64(7)
	sessionID := int64(5)
	taskID := int64(10)

	preview := &ReportPreview{
		Lines: []*PreviewLine{
			{
				EntryDate:         day,
				TaskTitle:         "Inbox triage",
				DurationSeconds:   1800,
				Notes:             &notes,
				SourceTimeEntryID: &entryID,
				SessionID:         &sessionID,
				TaskID:            &taskID,
			},
			{EntryDate: day, TaskTitle: "Research", DurationSeconds: 900},
		},
	}

	entries := preview.Snapshot()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	first := entries[0]
	if first.TaskTitle != "Inbox triage" || first.DurationSeconds != 1800 {
		t.Errorf("unexpected first entry: %+v", first)
	}
	if first.Notes == nil || *first.Notes != notes {
		t.Error("expected notes copied onto the entry")
	}
	if first.SourceTimeEntryID == nil || *first.SourceTimeEntryID != entryID {
		t.Error("expected source entry id preserved")
	}
	if first.SessionID == nil || *first.SessionID != sessionID {
		t.Error("expected session id preserved")
	}

	second := entries[1]
	if second.Notes != nil || second.SessionID != nil {
		t.Error("expected nil optionals to stay nil")
	}
}
