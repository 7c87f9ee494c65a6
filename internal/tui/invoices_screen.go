package tui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/avery/vaops/internal/app"
	"github.com/avery/vaops/internal/domain"
	"github.com/avery/vaops/internal/service"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// invoiceMode represents the current screen mode
type invoiceMode int

const (
	invoiceModeList invoiceMode = iota
	invoiceModeNew
	invoiceModeDetail
	invoiceModeLink
)

// new invoice form field indices
const (
	invoiceFieldClient = iota
	invoiceFieldTitle
	invoiceFieldCount
)

// InvoicesModel lists invoices and manages their time report linkage
type InvoicesModel struct {
	app         *app.App
	invoices    []*domain.ClientDocument
	contents    map[int64]*domain.InvoiceContent
	clientNames map[int64]string
	cursor      int
	loading     bool
	err         error
	statusMsg   string

	mode invoiceMode

	// New invoice form
	fields     []textinput.Model
	fieldFocus int

	// Detail state
	detail        *domain.ClientDocument
	detailContent *domain.InvoiceContent
	linkedReport  *domain.TimeReport
	reportRows    []service.ReportRow
	clientView    bool

	// Link form
	linkInput textinput.Model
}

type invoicesDataMsg struct {
	invoices    []*domain.ClientDocument
	contents    map[int64]*domain.InvoiceContent
	clientNames map[int64]string
	err         error
}

type invoiceDetailMsg struct {
	doc     *domain.ClientDocument
	content *domain.InvoiceContent
	report  *domain.TimeReport
	err     error
}

type invoiceSavedMsg struct {
	title string
	err   error
}

type invoiceLinkChangedMsg struct {
	status string
	err    error
}

// NewInvoicesModel creates a new invoices screen model
func NewInvoicesModel(a *app.App) tea.Model {
	return &InvoicesModel{
		app:         a,
		contents:    make(map[int64]*domain.InvoiceContent),
		clientNames: make(map[int64]string),
		loading:     true,
	}
}

// IsCapturingInput returns true when a form is active
func (m *InvoicesModel) IsCapturingInput() bool {
	return m.mode == invoiceModeNew || m.mode == invoiceModeLink
}

func (m *InvoicesModel) Init() tea.Cmd {
	return m.loadInvoices()
}

func (m *InvoicesModel) loadInvoices() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		invoices, err := m.app.InvoiceService.ListInvoices(ctx, nil)
		if err != nil {
			return invoicesDataMsg{err: err}
		}

		contents := make(map[int64]*domain.InvoiceContent)
		names := make(map[int64]string)
		for _, doc := range invoices {
			content, err := domain.MergeInvoiceContent(doc.Content)
			if err == nil {
				contents[doc.ID] = content
			}
			if _, ok := names[doc.ClientID]; !ok {
				client, err := m.app.ClientRepo.GetByID(ctx, doc.ClientID)
				if err == nil && client != nil {
					names[doc.ClientID] = client.Name
				}
			}
		}

		return invoicesDataMsg{invoices: invoices, contents: contents, clientNames: names}
	}
}

func (m *InvoicesModel) loadDetail(id int64, clientView bool) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		doc, content, err := m.app.InvoiceService.GetInvoice(ctx, id)
		if err != nil {
			return invoiceDetailMsg{err: err}
		}

		// nil report covers unlinked, deleted, and hidden-from-client cases
		report, err := m.app.InvoiceService.TimeReportForInvoice(ctx, id, clientView)
		if err != nil {
			return invoiceDetailMsg{err: err}
		}

		return invoiceDetailMsg{doc: doc, content: content, report: report}
	}
}

func (m *InvoicesModel) initNewForm() {
	m.fields = make([]textinput.Model, invoiceFieldCount)

	m.fields[invoiceFieldClient] = textinput.New()
	m.fields[invoiceFieldClient].Placeholder = "Client name or ID"
	m.fields[invoiceFieldClient].CharLimit = 100
	m.fields[invoiceFieldClient].Width = 40

	m.fields[invoiceFieldTitle] = textinput.New()
	m.fields[invoiceFieldTitle].Placeholder = "Invoice title"
	m.fields[invoiceFieldTitle].CharLimit = 150
	m.fields[invoiceFieldTitle].Width = 50

	m.fieldFocus = invoiceFieldClient
	m.fields[invoiceFieldClient].Focus()
}

func (m *InvoicesModel) saveInvoice() tea.Cmd {
	clientStr := m.fields[invoiceFieldClient].Value()
	title := m.fields[invoiceFieldTitle].Value()

	return func() tea.Msg {
		ctx := context.Background()

		var clientID int64
		if id, err := strconv.ParseInt(clientStr, 10, 64); err == nil {
			clientID = id
		} else {
			client, err := m.app.ClientRepo.GetByName(ctx, clientStr)
			if err != nil {
				return invoiceSavedMsg{err: err}
			}
			if client == nil {
				return invoiceSavedMsg{err: fmt.Errorf("client '%s' not found", clientStr)}
			}
			clientID = client.ID
		}

		doc, err := m.app.InvoiceService.CreateInvoice(ctx, clientID, title, nil)
		if err != nil {
			return invoiceSavedMsg{err: err}
		}
		return invoiceSavedMsg{title: doc.Title}
	}
}

func (m *InvoicesModel) linkReport() tea.Cmd {
	docID := m.detail.ID
	reportStr := m.linkInput.Value()

	return func() tea.Msg {
		ctx := context.Background()

		reportID, err := strconv.ParseInt(reportStr, 10, 64)
		if err != nil {
			return invoiceLinkChangedMsg{err: fmt.Errorf("invalid report ID: %s", reportStr)}
		}

		if err := m.app.InvoiceService.LinkTimeReport(ctx, docID, reportID, false); err != nil {
			return invoiceLinkChangedMsg{err: err}
		}
		return invoiceLinkChangedMsg{status: fmt.Sprintf("Linked report #%d", reportID)}
	}
}

func (m *InvoicesModel) unlinkReport() tea.Cmd {
	docID := m.detail.ID
	return func() tea.Msg {
		ctx := context.Background()
		if err := m.app.InvoiceService.UnlinkTimeReport(ctx, docID); err != nil {
			return invoiceLinkChangedMsg{err: err}
		}
		return invoiceLinkChangedMsg{status: "Report unlinked"}
	}
}

func (m *InvoicesModel) toggleShowReport() tea.Cmd {
	docID := m.detail.ID
	show := !m.detailContent.ShowTimeReportToClient
	return func() tea.Msg {
		ctx := context.Background()
		if err := m.app.InvoiceService.SetShowTimeReport(ctx, docID, show); err != nil {
			return invoiceLinkChangedMsg{err: err}
		}
		if show {
			return invoiceLinkChangedMsg{status: "Report is now shown to the client"}
		}
		return invoiceLinkChangedMsg{status: "Report is now hidden from the client"}
	}
}

func (m *InvoicesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadInvoices()

	case invoicesDataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.invoices = msg.invoices
			m.contents = msg.contents
			m.clientNames = msg.clientNames
			if m.cursor >= len(m.invoices) {
				m.cursor = max(0, len(m.invoices)-1)
			}
		}
		return m, nil

	case invoiceDetailMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.detail = msg.doc
		m.detailContent = msg.content
		m.linkedReport = msg.report
		if msg.report != nil {
			m.reportRows = service.GroupReportEntries(msg.report.Entries)
		} else {
			m.reportRows = nil
		}
		m.mode = invoiceModeDetail
		return m, nil

	case invoiceSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.mode = invoiceModeList
		m.statusMsg = fmt.Sprintf("Created: %s", msg.title)
		m.loading = true
		return m, m.loadInvoices()

	case invoiceLinkChangedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.mode = invoiceModeDetail
			return m, nil
		}
		m.err = nil
		m.statusMsg = msg.status
		// Reload the detail so linkage state is fresh
		return m, m.loadDetail(m.detail.ID, m.clientView)

	case tea.KeyMsg:
		switch m.mode {
		case invoiceModeNew:
			return m.updateNewForm(msg)
		case invoiceModeLink:
			return m.updateLinkForm(msg)
		case invoiceModeDetail:
			return m.updateDetail(msg)
		default:
			return m.updateList(msg)
		}
	}

	return m, nil
}

func (m *InvoicesModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}

	m.statusMsg = ""
	m.err = nil

	switch {
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.cursor < len(m.invoices)-1 {
			m.cursor++
		}
	case msg.String() == "n":
		m.mode = invoiceModeNew
		m.initNewForm()
		return m, m.fields[invoiceFieldClient].Focus()
	case key.Matches(msg, DefaultKeyMap.Select):
		if len(m.invoices) > 0 && m.cursor < len(m.invoices) {
			m.clientView = false
			return m, m.loadDetail(m.invoices[m.cursor].ID, false)
		}
	}

	return m, nil
}

func (m *InvoicesModel) updateNewForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = invoiceModeList
		m.err = nil
		return m, nil

	case "tab", "down":
		m.fields[m.fieldFocus].Blur()
		m.fieldFocus = (m.fieldFocus + 1) % invoiceFieldCount
		return m, m.fields[m.fieldFocus].Focus()

	case "shift+tab", "up":
		m.fields[m.fieldFocus].Blur()
		m.fieldFocus = (m.fieldFocus - 1 + invoiceFieldCount) % invoiceFieldCount
		return m, m.fields[m.fieldFocus].Focus()

	case "enter":
		if m.fieldFocus == invoiceFieldCount-1 {
			return m, m.saveInvoice()
		}
		m.fields[m.fieldFocus].Blur()
		m.fieldFocus++
		return m, m.fields[m.fieldFocus].Focus()

	case "ctrl+s":
		return m, m.saveInvoice()
	}

	var cmd tea.Cmd
	m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
	return m, cmd
}

func (m *InvoicesModel) updateLinkForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = invoiceModeDetail
		m.err = nil
		return m, nil
	case "enter":
		return m, m.linkReport()
	}

	var cmd tea.Cmd
	m.linkInput, cmd = m.linkInput.Update(msg)
	return m, cmd
}

func (m *InvoicesModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMsg = ""

	switch {
	case key.Matches(msg, DefaultKeyMap.Back):
		m.mode = invoiceModeList
		m.detail = nil
		m.detailContent = nil
		m.linkedReport = nil
		m.loading = true
		return m, m.loadInvoices()

	case msg.String() == "l":
		m.linkInput = textinput.New()
		m.linkInput.Placeholder = "Report ID"
		m.linkInput.CharLimit = 10
		m.linkInput.Width = 15
		m.mode = invoiceModeLink
		return m, m.linkInput.Focus()

	case msg.String() == "u":
		if m.detailContent.TimeReportID != 0 {
			return m, m.unlinkReport()
		}

	case msg.String() == "s":
		if m.detailContent.TimeReportID != 0 {
			return m, m.toggleShowReport()
		}
		m.err = fmt.Errorf("no report linked")

	case msg.String() == "v":
		m.clientView = !m.clientView
		return m, m.loadDetail(m.detail.ID, m.clientView)
	}

	return m, nil
}

func (m *InvoicesModel) View() string {
	switch m.mode {
	case invoiceModeNew:
		return m.viewNewForm()
	case invoiceModeLink:
		return m.viewLinkForm()
	case invoiceModeDetail:
		return m.viewDetail()
	default:
		return m.viewList()
	}
}

func (m *InvoicesModel) viewList() string {
	if m.loading {
		return "Loading invoices..."
	}

	if m.err != nil {
		return lipgloss.NewStyle().Foreground(errorColor).
			Render(fmt.Sprintf("Error: %v", m.err))
	}

	var s string
	s += titleStyle.Render("Invoices") + "\n\n"

	if m.statusMsg != "" {
		s += lipgloss.NewStyle().Foreground(successColor).
			Render("  "+m.statusMsg) + "\n\n"
	}

	if len(m.invoices) == 0 {
		s += subtitleStyle.Render("  No invoices yet. Press 'n' to create one.") + "\n"
		return s
	}

	for i, doc := range m.invoices {
		selected := i == m.cursor
		indicator := "  "
		if selected {
			indicator = "> "
		}

		clientName := m.clientNames[doc.ClientID]
		if clientName == "" {
			clientName = fmt.Sprintf("Client #%d", doc.ClientID)
		}

		reportInfo := "no report"
		if content, ok := m.contents[doc.ID]; ok && content.TimeReportID != 0 {
			reportInfo = fmt.Sprintf("report #%d", content.TimeReportID)
			if content.ShowTimeReportToClient {
				reportInfo += " (shown to client)"
			}
		}

		total := ""
		if content, ok := m.contents[doc.ID]; ok {
			total = formatMoney(content.Total())
		}

		line1 := fmt.Sprintf("%s%s", indicator, doc.Title)
		line2 := fmt.Sprintf("    %s  |  %s  |  %s", clientName, total, reportInfo)

		nameStyle := lipgloss.NewStyle()
		if selected {
			nameStyle = nameStyle.Bold(true).Foreground(primaryColor)
		}

		s += nameStyle.Render(line1) + "\n" + subtitleStyle.Render(line2) + "\n"
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  n: new  enter: view")
	return s
}

func (m *InvoicesModel) viewNewForm() string {
	var s string
	s += titleStyle.Render("New Invoice") + "\n\n"

	labels := []string{"Client:", "Title:"}
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

	if m.err != nil {
		s += lipgloss.NewStyle().Foreground(errorColor).
			Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}

	s += helpStyle.Render("  tab: navigate  ctrl+s: save  enter: next/save  esc: cancel")
	return s
}

func (m *InvoicesModel) viewLinkForm() string {
	var s string
	s += titleStyle.Render("Link Time Report") + "\n\n"
	s += subtitleStyle.Render(fmt.Sprintf("  Invoice: %s", m.detail.Title)) + "\n\n"
	s += "  Report ID:\n  " + m.linkInput.View() + "\n\n"

	if m.err != nil {
		s += lipgloss.NewStyle().Foreground(errorColor).
			Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}

	s += helpStyle.Render("  enter: link  esc: cancel")
	return s
}

func (m *InvoicesModel) viewDetail() string {
	if m.detail == nil {
		return "Loading invoice..."
	}

	var s string
	s += titleStyle.Render(m.detail.Title) + "\n"

	clientName := m.clientNames[m.detail.ClientID]
	if clientName == "" {
		clientName = fmt.Sprintf("Client #%d", m.detail.ClientID)
	}

	viewLabel := ""
	if m.clientView {
		viewLabel = "  |  client view"
	}
	s += subtitleStyle.Render(fmt.Sprintf("  %s%s", clientName, viewLabel)) + "\n\n"

	if m.statusMsg != "" {
		s += lipgloss.NewStyle().Foreground(successColor).
			Render("  "+m.statusMsg) + "\n\n"
	}
	if m.err != nil {
		s += lipgloss.NewStyle().Foreground(errorColor).
			Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}

	content := m.detailContent
	if content.InvoiceNumber != "" {
		s += fmt.Sprintf("  Number: %s\n", content.InvoiceNumber)
	}
	if content.IssueDate != "" {
		s += fmt.Sprintf("  Issued: %s    Due: %s\n", content.IssueDate, content.DueDate)
	}
	s += fmt.Sprintf("  Total: %s\n\n", formatMoney(content.Total()))

	// Linked report section
	if m.linkedReport != nil {
		s += lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("  Time Report: %s", m.linkedReport.Name)) + "\n"
		if !m.clientView {
			visibility := "hidden from client"
			if content.ShowTimeReportToClient {
				visibility = "shown to client"
			}
			s += subtitleStyle.Render(fmt.Sprintf("  (%s)", visibility)) + "\n"
		}
		s += renderGroupedRows(m.reportRows)
		s += fmt.Sprintf("  Report total: %s\n", formatSeconds(m.linkedReport.TotalSeconds))
	} else if content.TimeReportID != 0 && !m.clientView {
		s += subtitleStyle.Render("  Time Report: no report (the linked report no longer exists)") + "\n"
	} else {
		s += subtitleStyle.Render("  Time Report: none") + "\n"
	}

	s += "\n" + helpStyle.Render("  l: link report  u: unlink  s: show/hide to client  v: toggle client view  esc: back")
	return s
}
