package service

import (
	"fmt"
	"time"

	"github.com/avery/vaops/internal/domain"
)

// SessionLabel is the summary title used when a session's entries span
// more than one task title.
const SessionLabel = "Session"

// ReportRow is one row of the two-level report display structure produced
// by GroupReportEntries. Session summaries are synthetic rows; their member
// entries follow as level-1 children.
type ReportRow struct {
	// Key uniquely identifies the row; summaries and their members would
	// otherwise collide on entry identifiers.
	Key              string
	Level            int // 0 for standalone and summary rows, 1 for children
	IsSessionSummary bool

	TaskTitle       string
	EntryDate       time.Time
	DurationSeconds int64
	Notes           *string

	// Entry is the underlying row; nil for session summaries
	Entry *domain.TimeReportEntry
}

// sessionGroup accumulates the members of one session in input order
type sessionGroup struct {
	sessionID int64
	members   []*domain.TimeReportEntry
	indexes   []int
}

// GroupReportEntries transforms a flat entry sequence into display rows:
// entries sharing a session id collapse under one summary row, everything
// else passes through as standalone rows. Overall ordering is stable by
// first appearance in the input; the input is never mutated. The function
// is total — any well-formed input, including an empty one, produces a
// valid result.
func GroupReportEntries(entries []*domain.TimeReportEntry) []ReportRow {
	// Items in order of first appearance: either a standalone entry or a
	// session group
	type item struct {
		entry *domain.TimeReportEntry
		index int
		group *sessionGroup
	}

	items := make([]*item, 0, len(entries))
	groups := make(map[int64]*sessionGroup)

	for i, entry := range entries {
		if entry.SessionID == nil {
			items = append(items, &item{entry: entry, index: i})
			continue
		}

		sid := *entry.SessionID
		group, ok := groups[sid]
		if !ok {
			group = &sessionGroup{sessionID: sid}
			groups[sid] = group
			items = append(items, &item{group: group})
		}
		group.members = append(group.members, entry)
		group.indexes = append(group.indexes, i)
	}

	rows := make([]ReportRow, 0, len(entries)+len(groups))
	for _, it := range items {
		if it.group == nil {
			rows = append(rows, ReportRow{
				Key:             fmt.Sprintf("entry-%d", it.index),
				Level:           0,
				TaskTitle:       it.entry.TaskTitle,
				EntryDate:       it.entry.EntryDate,
				DurationSeconds: it.entry.DurationSeconds,
				Notes:           it.entry.Notes,
				Entry:           it.entry,
			})
			continue
		}

		rows = append(rows, summaryRow(it.group))
		for i, member := range it.group.members {
			rows = append(rows, ReportRow{
				Key:             fmt.Sprintf("session-%d-entry-%d", it.group.sessionID, it.group.indexes[i]),
				Level:           1,
				TaskTitle:       member.TaskTitle,
				EntryDate:       member.EntryDate,
				DurationSeconds: member.DurationSeconds,
				Notes:           member.Notes,
				Entry:           member,
			})
		}
	}

	return rows
}

// summaryRow builds the synthetic parent row for a session: duration is the
// members' sum, date is the earliest member's, and the title is the shared
// task title or a generic label when members span titles.
func summaryRow(group *sessionGroup) ReportRow {
	var total int64
	first := group.members[0].TaskTitle
	earliest := group.members[0].EntryDate
	mixed := false

	for _, member := range group.members {
		total += member.DurationSeconds
		if member.TaskTitle != first {
			mixed = true
		}
		if member.EntryDate.Before(earliest) {
			earliest = member.EntryDate
		}
	}

	title := first
	if mixed {
		title = SessionLabel
	}

	return ReportRow{
		Key:              fmt.Sprintf("session-%d", group.sessionID),
		Level:            0,
		IsSessionSummary: true,
		TaskTitle:        title,
		EntryDate:        earliest,
		DurationSeconds:  total,
	}
}
