package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/avery/vaops/internal/app"
	"github.com/avery/vaops/internal/domain"
	"github.com/avery/vaops/internal/service"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// reportMode represents the current screen mode
type reportMode int

const (
	reportModeList reportMode = iota
	reportModeForm
	reportModePreview
	reportModeDetail
)

// generate form field indices
const (
	reportFieldClient = iota
	reportFieldFrom
	reportFieldTo
	reportFieldName
	reportFieldCount
)

// ReportsModel lists saved reports and drives the generate/preview/save flow
type ReportsModel struct {
	app         *app.App
	reports     []*domain.TimeReport
	clientNames map[int64]string
	cursor      int
	loading     bool
	err         error
	statusMsg   string

	mode reportMode

	// Form state
	fields       []textinput.Model
	fieldFocus   int
	includeNotes bool

	// Preview state
	preview     *domain.ReportPreview
	previewRows []service.ReportRow
	previewName string

	// Detail state
	detail     *domain.TimeReport
	detailRows []service.ReportRow

	confirmingDelete bool
}

type reportsDataMsg struct {
	reports     []*domain.TimeReport
	clientNames map[int64]string
	err         error
}

type reportPreviewMsg struct {
	preview *domain.ReportPreview
	name    string
	err     error
}

type reportSavedMsg struct {
	report *domain.TimeReport
	err    error
}

type reportDetailMsg struct {
	report *domain.TimeReport
	err    error
}

type reportDeletedMsg struct {
	name string
	err  error
}

// NewReportsModel creates a new reports screen model
func NewReportsModel(a *app.App) tea.Model {
	return &ReportsModel{
		app:         a,
		clientNames: make(map[int64]string),
		loading:     true,
	}
}

// IsCapturingInput returns true when the generate form is active
func (m *ReportsModel) IsCapturingInput() bool {
	return m.mode == reportModeForm
}

func (m *ReportsModel) Init() tea.Cmd {
	return m.loadReports()
}

func (m *ReportsModel) loadReports() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		reports, err := m.app.ReportService.List(ctx, nil)
		if err != nil {
			return reportsDataMsg{err: err}
		}

		names := make(map[int64]string)
		for _, report := range reports {
			if _, ok := names[report.ClientID]; ok {
				continue
			}
			client, err := m.app.ClientRepo.GetByID(ctx, report.ClientID)
			if err == nil && client != nil {
				names[report.ClientID] = client.Name
			}
		}

		return reportsDataMsg{reports: reports, clientNames: names}
	}
}

func (m *ReportsModel) initForm() {
	m.fields = make([]textinput.Model, reportFieldCount)

	m.fields[reportFieldClient] = textinput.New()
	m.fields[reportFieldClient].Placeholder = "Client name or ID"
	m.fields[reportFieldClient].CharLimit = 100
	m.fields[reportFieldClient].Width = 40

	m.fields[reportFieldFrom] = textinput.New()
	m.fields[reportFieldFrom].Placeholder = "2026-08-01"
	m.fields[reportFieldFrom].CharLimit = 10
	m.fields[reportFieldFrom].Width = 15

	m.fields[reportFieldTo] = textinput.New()
	m.fields[reportFieldTo].Placeholder = "2026-08-31"
	m.fields[reportFieldTo].CharLimit = 10
	m.fields[reportFieldTo].Width = 15

	m.fields[reportFieldName] = textinput.New()
	m.fields[reportFieldName].Placeholder = "Leave blank for a suggested name"
	m.fields[reportFieldName].CharLimit = 150
	m.fields[reportFieldName].Width = 50

	m.includeNotes = false
	m.fieldFocus = reportFieldClient
	m.fields[reportFieldClient].Focus()
}

func (m *ReportsModel) generatePreview() tea.Cmd {
	clientStr := m.fields[reportFieldClient].Value()
	fromStr := m.fields[reportFieldFrom].Value()
	toStr := m.fields[reportFieldTo].Value()
	name := m.fields[reportFieldName].Value()
	includeNotes := m.includeNotes

	return func() tea.Msg {
		ctx := context.Background()

		clientID, err := m.resolveClient(ctx, clientStr)
		if err != nil {
			return reportPreviewMsg{err: err}
		}

		from, err := parseFormDate(fromStr)
		if err != nil {
			return reportPreviewMsg{err: fmt.Errorf("from date: %w", err)}
		}
		to, err := parseFormDate(toStr)
		if err != nil {
			return reportPreviewMsg{err: fmt.Errorf("to date: %w", err)}
		}

		preview, err := m.app.ReportService.Preview(ctx, clientID, from, to, includeNotes)
		if err != nil {
			return reportPreviewMsg{err: err}
		}

		if name == "" {
			name, err = m.app.ReportService.SuggestName(ctx, clientID, from, to)
			if err != nil {
				return reportPreviewMsg{err: err}
			}
		}

		return reportPreviewMsg{preview: preview, name: name}
	}
}

func (m *ReportsModel) resolveClient(ctx context.Context, idOrName string) (int64, error) {
	if id, err := strconv.ParseInt(idOrName, 10, 64); err == nil {
		return id, nil
	}
	client, err := m.app.ClientRepo.GetByName(ctx, idOrName)
	if err != nil {
		return 0, err
	}
	if client == nil {
		return 0, fmt.Errorf("client '%s' not found", idOrName)
	}
	return client.ID, nil
}

func (m *ReportsModel) saveReport() tea.Cmd {
	preview := m.preview
	name := m.previewName
	return func() tea.Msg {
		ctx := context.Background()
		report, err := m.app.ReportService.Save(ctx, preview, name)
		if err != nil {
			return reportSavedMsg{err: err}
		}
		return reportSavedMsg{report: report}
	}
}

func (m *ReportsModel) loadDetail(id int64) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		report, err := m.app.ReportService.Get(ctx, id)
		if err != nil {
			return reportDetailMsg{err: err}
		}
		if report == nil {
			return reportDetailMsg{err: fmt.Errorf("report not found")}
		}
		return reportDetailMsg{report: report}
	}
}

func (m *ReportsModel) deleteReport() tea.Cmd {
	report := m.reports[m.cursor]
	return func() tea.Msg {
		ctx := context.Background()
		if err := m.app.ReportService.Delete(ctx, report.ID); err != nil {
			return reportDeletedMsg{err: err}
		}
		return reportDeletedMsg{name: report.Name}
	}
}

func (m *ReportsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadReports()

	case reportsDataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.reports = msg.reports
			m.clientNames = msg.clientNames
			if m.cursor >= len(m.reports) {
				m.cursor = max(0, len(m.reports)-1)
			}
		}
		return m, nil

	case reportPreviewMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.preview = msg.preview
		m.previewName = msg.name
		m.previewRows = service.GroupReportEntries(msg.preview.Snapshot())
		m.mode = reportModePreview
		return m, nil

	case reportSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.mode = reportModeList
		m.statusMsg = fmt.Sprintf("Saved: %s", msg.report.Name)
		m.loading = true
		return m, m.loadReports()

	case reportDetailMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.detail = msg.report
		m.detailRows = service.GroupReportEntries(msg.report.Entries)
		m.mode = reportModeDetail
		return m, nil

	case reportDeletedMsg:
		m.confirmingDelete = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Deleted: %s", msg.name)
		m.loading = true
		return m, m.loadReports()

	case tea.KeyMsg:
		switch m.mode {
		case reportModeForm:
			return m.updateForm(msg)
		case reportModePreview:
			return m.updatePreview(msg)
		case reportModeDetail:
			return m.updateDetail(msg)
		default:
			return m.updateList(msg)
		}
	}

	return m, nil
}

func (m *ReportsModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}

	// Delete confirmation intercepts keys
	if m.confirmingDelete {
		switch msg.String() {
		case "y":
			return m, m.deleteReport()
		default:
			m.confirmingDelete = false
			return m, nil
		}
	}

	m.statusMsg = ""
	m.err = nil

	switch {
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.cursor < len(m.reports)-1 {
			m.cursor++
		}
	case msg.String() == "n":
		m.mode = reportModeForm
		m.initForm()
		return m, m.fields[reportFieldClient].Focus()
	case key.Matches(msg, DefaultKeyMap.Select):
		if len(m.reports) > 0 && m.cursor < len(m.reports) {
			return m, m.loadDetail(m.reports[m.cursor].ID)
		}
	case key.Matches(msg, DefaultKeyMap.Delete):
		if len(m.reports) > 0 && m.cursor < len(m.reports) {
			m.confirmingDelete = true
		}
	}

	return m, nil
}

func (m *ReportsModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = reportModeList
		m.err = nil
		return m, nil

	case "tab", "down":
		m.fields[m.fieldFocus].Blur()
		m.fieldFocus = (m.fieldFocus + 1) % reportFieldCount
		return m, m.fields[m.fieldFocus].Focus()

	case "shift+tab", "up":
		m.fields[m.fieldFocus].Blur()
		m.fieldFocus = (m.fieldFocus - 1 + reportFieldCount) % reportFieldCount
		return m, m.fields[m.fieldFocus].Focus()

	case "ctrl+n":
		// Toggle notes inclusion from any field
		m.includeNotes = !m.includeNotes
		return m, nil

	case "enter":
		if m.fieldFocus == reportFieldCount-1 {
			return m, m.generatePreview()
		}
		m.fields[m.fieldFocus].Blur()
		m.fieldFocus++
		return m, m.fields[m.fieldFocus].Focus()

	case "ctrl+s":
		return m, m.generatePreview()
	}

	var cmd tea.Cmd
	m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
	return m, cmd
}

func (m *ReportsModel) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		// Back to the form with values intact
		m.mode = reportModeForm
		return m, m.fields[m.fieldFocus].Focus()
	case "ctrl+s", "s":
		return m, m.saveReport()
	}
	return m, nil
}

func (m *ReportsModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, DefaultKeyMap.Back) {
		m.mode = reportModeList
		m.detail = nil
		m.detailRows = nil
		return m, nil
	}
	return m, nil
}

func (m *ReportsModel) View() string {
	switch m.mode {
	case reportModeForm:
		return m.viewForm()
	case reportModePreview:
		return m.viewPreview()
	case reportModeDetail:
		return m.viewDetail()
	default:
		return m.viewList()
	}
}

func (m *ReportsModel) viewList() string {
	if m.loading {
		return "Loading reports..."
	}

	if m.err != nil {
		return lipgloss.NewStyle().Foreground(errorColor).
			Render(fmt.Sprintf("Error: %v", m.err))
	}

	var s string
	s += titleStyle.Render("Time Reports") + "\n\n"

	if m.statusMsg != "" {
		s += lipgloss.NewStyle().Foreground(successColor).
			Render("  "+m.statusMsg) + "\n\n"
	}

	if m.confirmingDelete && len(m.reports) > 0 {
		s += lipgloss.NewStyle().Foreground(warningColor).Render(
			fmt.Sprintf("  Delete '%s'? Invoices linking to it will show no report. [y/N]",
				m.reports[m.cursor].Name),
		) + "\n\n"
	}

	if len(m.reports) == 0 {
		s += subtitleStyle.Render("  No saved reports yet. Press 'n' to generate one.") + "\n"
		return s
	}

	for i, report := range m.reports {
		selected := i == m.cursor
		indicator := "  "
		if selected {
			indicator = "> "
		}

		clientName := m.clientNames[report.ClientID]
		if clientName == "" {
			clientName = fmt.Sprintf("Client #%d", report.ClientID)
		}

		line1 := fmt.Sprintf("%s%s", indicator, report.Name)
		line2 := fmt.Sprintf("    %s  |  %s - %s  |  %d entries, %s",
			clientName,
			report.DateFrom.Format("Jan 2"),
			report.DateTo.Format("Jan 2, 2006"),
			report.EntryCount,
			formatSeconds(report.TotalSeconds),
		)

		nameStyle := lipgloss.NewStyle()
		if selected {
			nameStyle = nameStyle.Bold(true).Foreground(primaryColor)
		}

		s += nameStyle.Render(line1) + "\n" + subtitleStyle.Render(line2) + "\n"
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  n: generate  enter: view  d: delete")
	return s
}

func (m *ReportsModel) viewForm() string {
	var s string
	s += titleStyle.Render("Generate Report") + "\n\n"

	labels := []string{"Client:", "From (YYYY-MM-DD):", "To (YYYY-MM-DD):", "Report name:"}
	for i, label := range labels {
		indicator := "  "
		if i == m.fieldFocus {
			indicator = "> "
		}
		labelStyle := subtitleStyle
		if i == m.fieldFocus {
			labelStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
		}
		s += fmt.Sprintf("%s%s\n  %s\n\n", indicator, labelStyle.Render(label), m.fields[i].View())
	}

	notesMark := "[ ]"
	if m.includeNotes {
		notesMark = "[x]"
	}
	s += fmt.Sprintf("  %s Include entry notes (ctrl+n to toggle)\n\n", notesMark)

	if m.err != nil {
		s += lipgloss.NewStyle().Foreground(errorColor).
			Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}

	s += helpStyle.Render("  tab: navigate  ctrl+s: preview  enter: next/preview  esc: cancel")
	return s
}

func (m *ReportsModel) viewPreview() string {
	var s string
	s += titleStyle.Render("Report Preview") + "\n"
	s += subtitleStyle.Render(fmt.Sprintf("  %s", m.previewName)) + "\n\n"

	if m.err != nil {
		s += lipgloss.NewStyle().Foreground(errorColor).
			Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}

	s += renderGroupedRows(m.previewRows)
	s += "\n"
	s += fmt.Sprintf("  Entries: %d\n", m.preview.EntryCount)
	s += fmt.Sprintf("  Total: %s\n", formatSeconds(m.preview.TotalSeconds))

	s += "\n" + helpStyle.Render("  s: save report  esc: back to form")
	return s
}

func (m *ReportsModel) viewDetail() string {
	if m.detail == nil {
		return "Loading report..."
	}

	var s string
	s += titleStyle.Render(m.detail.Name) + "\n"

	clientName := m.clientNames[m.detail.ClientID]
	if clientName == "" {
		clientName = fmt.Sprintf("Client #%d", m.detail.ClientID)
	}
	s += subtitleStyle.Render(fmt.Sprintf("  %s  |  %s - %s  |  created %s",
		clientName,
		m.detail.DateFrom.Format("Jan 2"),
		m.detail.DateTo.Format("Jan 2, 2006"),
		m.detail.CreatedAt.Format("Jan 2, 2006"),
	)) + "\n\n"

	s += renderGroupedRows(m.detailRows)
	s += "\n"
	s += fmt.Sprintf("  Entries: %d\n", m.detail.EntryCount)
	s += fmt.Sprintf("  Total: %s\n", formatSeconds(m.detail.TotalSeconds))

	s += "\n" + helpStyle.Render("  esc: back")
	return s
}

// renderGroupedRows renders report rows with session members indented under
// their summary row
func renderGroupedRows(rows []service.ReportRow) string {
	if len(rows) == 0 {
		return subtitleStyle.Render("  No entries in range") + "\n"
	}

	var s string
	for _, row := range rows {
		indent := "  "
		if row.Level > 0 {
			indent = "    "
		}

		line := fmt.Sprintf("%s%-10s %-40s %8s",
			indent,
			row.EntryDate.Format("2006-01-02"),
			truncateStr(row.TaskTitle, 40),
			formatSeconds(row.DurationSeconds),
		)

		if row.IsSessionSummary {
			s += sessionSummaryStyle.Render(line) + "\n"
		} else if row.Level > 0 {
			s += subtitleStyle.Render(line) + "\n"
		} else {
			s += line + "\n"
		}

		if row.Notes != nil && *row.Notes != "" {
			s += subtitleStyle.Render(fmt.Sprintf("%s  %s", indent, truncateStr(*row.Notes, 60))) + "\n"
		}
	}
	return s
}

// parseFormDate parses a YYYY-MM-DD form value in local time
func parseFormDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD")
	}
	return t, nil
}
