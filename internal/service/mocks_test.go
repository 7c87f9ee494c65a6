package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/avery/vaops/internal/domain"
)

// hand-written mocks shared by the service tests

type mockClientRepo struct {
	clients map[int64]*domain.Client
}

func (m *mockClientRepo) Create(ctx context.Context, client *domain.Client) error { return nil }
func (m *mockClientRepo) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	if c, ok := m.clients[id]; ok {
		return c, nil
	}
	return nil, nil
}
func (m *mockClientRepo) GetByName(ctx context.Context, name string) (*domain.Client, error) {
	for _, c := range m.clients {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, nil
}
func (m *mockClientRepo) List(ctx context.Context, includeArchived bool) ([]*domain.Client, error) {
	return nil, nil
}
func (m *mockClientRepo) Update(ctx context.Context, client *domain.Client) error { return nil }
func (m *mockClientRepo) Archive(ctx context.Context, id int64) error             { return nil }
func (m *mockClientRepo) Unarchive(ctx context.Context, id int64) error           { return nil }

type mockTaskRepo struct {
	tasks map[int64]*domain.Task
}

func (m *mockTaskRepo) Create(ctx context.Context, task *domain.Task) error { return nil }
func (m *mockTaskRepo) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	if t, ok := m.tasks[id]; ok {
		return t, nil
	}
	return nil, nil
}
func (m *mockTaskRepo) ListByClient(ctx context.Context, clientID int64, includeArchived bool) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, t := range m.tasks {
		if t.ClientID == clientID {
			out = append(out, t)
		}
	}
	return out, nil
}
func (m *mockTaskRepo) Archive(ctx context.Context, id int64) error { return nil }

type mockEntryRepo struct {
	entries []*domain.TimeEntry
	// clientOf maps task id to client id for range queries
	clientOf map[int64]int64
	nextID   int64
}

func (m *mockEntryRepo) Create(ctx context.Context, entry *domain.TimeEntry) error {
	m.nextID++
	entry.ID = m.nextID
	m.entries = append(m.entries, entry)
	return nil
}
func (m *mockEntryRepo) GetByID(ctx context.Context, id int64) (*domain.TimeEntry, error) {
	for _, e := range m.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}
func (m *mockEntryRepo) ListForClientRange(ctx context.Context, clientID int64, start, end time.Time) ([]*domain.TimeEntry, error) {
	var out []*domain.TimeEntry
	for _, e := range m.entries {
		if m.clientOf[e.TaskID] != clientID {
			continue
		}
		if e.StartTime.Before(start) || e.StartTime.After(end) {
			continue
		}
		out = append(out, e)
	}
	// newest first, matching the SQL repository's ordering
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.After(out[j].StartTime)
	})
	return out, nil
}
func (m *mockEntryRepo) List(ctx context.Context, taskID *int64, start, end *time.Time) ([]*domain.TimeEntry, error) {
	return m.entries, nil
}
func (m *mockEntryRepo) Update(ctx context.Context, entry *domain.TimeEntry) error { return nil }
func (m *mockEntryRepo) Delete(ctx context.Context, id int64) error                { return nil }

type mockReportRepo struct {
	reports     map[int64]*domain.TimeReport
	entries     map[int64][]*domain.TimeReportEntry
	nextID      int64
	createCalls int
}

func newMockReportRepo() *mockReportRepo {
	return &mockReportRepo{
		reports: make(map[int64]*domain.TimeReport),
		entries: make(map[int64][]*domain.TimeReportEntry),
	}
}

func (m *mockReportRepo) Create(ctx context.Context, report *domain.TimeReport, entries []*domain.TimeReportEntry) error {
	m.createCalls++
	m.nextID++
	report.ID = m.nextID
	m.reports[report.ID] = report
	for i, e := range entries {
		e.ID = int64(i + 1)
		e.ReportID = report.ID
	}
	m.entries[report.ID] = entries
	return nil
}
func (m *mockReportRepo) GetByID(ctx context.Context, id int64) (*domain.TimeReport, error) {
	if r, ok := m.reports[id]; ok {
		return r, nil
	}
	return nil, nil
}
func (m *mockReportRepo) GetEntries(ctx context.Context, reportID int64) ([]*domain.TimeReportEntry, error) {
	return m.entries[reportID], nil
}
func (m *mockReportRepo) List(ctx context.Context, vaUserID string, clientID *int64) ([]*domain.TimeReport, error) {
	var out []*domain.TimeReport
	for _, r := range m.reports {
		if r.VAUserID != vaUserID {
			continue
		}
		if clientID != nil && r.ClientID != *clientID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
func (m *mockReportRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.reports[id]; !ok {
		return errors.New("report not found")
	}
	delete(m.reports, id)
	delete(m.entries, id)
	return nil
}

type mockDocRepo struct {
	docs   map[int64]*domain.ClientDocument
	nextID int64
}

func newMockDocRepo() *mockDocRepo {
	return &mockDocRepo{docs: make(map[int64]*domain.ClientDocument)}
}

func (m *mockDocRepo) Create(ctx context.Context, doc *domain.ClientDocument) error {
	m.nextID++
	doc.ID = m.nextID
	m.docs[doc.ID] = doc
	return nil
}
func (m *mockDocRepo) GetByID(ctx context.Context, id int64) (*domain.ClientDocument, error) {
	if d, ok := m.docs[id]; ok {
		return d, nil
	}
	return nil, nil
}
func (m *mockDocRepo) List(ctx context.Context, clientID *int64, kind *domain.DocumentKind) ([]*domain.ClientDocument, error) {
	var out []*domain.ClientDocument
	for _, d := range m.docs {
		if clientID != nil && d.ClientID != *clientID {
			continue
		}
		if kind != nil && d.Kind != *kind {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}
func (m *mockDocRepo) UpdateContent(ctx context.Context, id int64, content string) error {
	doc, ok := m.docs[id]
	if !ok {
		return errors.New("document not found")
	}
	doc.Content = content
	doc.UpdatedAt = time.Now()
	return nil
}
func (m *mockDocRepo) Delete(ctx context.Context, id int64) error {
	delete(m.docs, id)
	return nil
}

type mockTimerRepo struct {
	timer *domain.ActiveTimer
}

func (m *mockTimerRepo) Get(ctx context.Context) (*domain.ActiveTimer, error) { return m.timer, nil }
func (m *mockTimerRepo) Save(ctx context.Context, timer *domain.ActiveTimer) error {
	m.timer = timer
	return nil
}
func (m *mockTimerRepo) Delete(ctx context.Context) error {
	m.timer = nil
	return nil
}

type mockSessionRepo struct {
	sessions map[int64]*domain.WorkSession
	nextID   int64
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[int64]*domain.WorkSession)}
}

func (m *mockSessionRepo) Create(ctx context.Context, session *domain.WorkSession) error {
	m.nextID++
	session.ID = m.nextID
	m.sessions[session.ID] = session
	return nil
}
func (m *mockSessionRepo) GetByID(ctx context.Context, id int64) (*domain.WorkSession, error) {
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, nil
}
