package tui

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/avery/vaops/internal/app"
	"github.com/avery/vaops/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DashboardModel represents the dashboard home screen
type DashboardModel struct {
	app *app.App

	// Data
	activeTimer   *domain.ActiveTimer
	activeTask    *domain.Task
	clientCount   int
	reportCount   int
	invoiceCount  int
	recentEntries []*domain.TimeEntry
	taskCache     map[int64]*domain.Task

	loading bool
	err     error
}

type dashboardDataMsg struct {
	activeTimer   *domain.ActiveTimer
	activeTask    *domain.Task
	clientCount   int
	reportCount   int
	invoiceCount  int
	recentEntries []*domain.TimeEntry
	taskCache     map[int64]*domain.Task
	err           error
}

// TimerTickMsg drives the elapsed-time display while a timer is active
type TimerTickMsg struct{}

func tickTimer() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return TimerTickMsg{}
	})
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(a *app.App) tea.Model {
	return &DashboardModel{
		app:       a,
		loading:   true,
		taskCache: make(map[int64]*domain.Task),
	}
}

func (m *DashboardModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *DashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		msg := dashboardDataMsg{
			taskCache: make(map[int64]*domain.Task),
		}

		// Counts
		clients, err := m.app.ClientRepo.List(ctx, false)
		if err != nil {
			msg.err = fmt.Errorf("clients: %w", err)
			return msg
		}
		msg.clientCount = len(clients)

		reports, err := m.app.ReportService.List(ctx, nil)
		if err != nil {
			msg.err = fmt.Errorf("reports: %w", err)
			return msg
		}
		msg.reportCount = len(reports)

		invoices, err := m.app.InvoiceService.ListInvoices(ctx, nil)
		if err == nil {
			msg.invoiceCount = len(invoices)
		}

		// Active timer
		activeTimer, err := m.app.TrackerService.GetActiveTimer(ctx)
		if err == nil && activeTimer != nil {
			msg.activeTimer = activeTimer
			task, err := m.app.TaskRepo.GetByID(ctx, activeTimer.TaskID)
			if err == nil {
				msg.activeTask = task
				if task != nil {
					msg.taskCache[task.ID] = task
				}
			}
		}

		// Recent entries (last 7 days)
		now := time.Now()
		sevenDaysAgo := now.AddDate(0, 0, -7)
		entries, err := m.app.EntryRepo.List(ctx, nil, &sevenDaysAgo, &now)
		if err == nil {
			msg.recentEntries = entries
			for _, entry := range entries {
				if _, ok := msg.taskCache[entry.TaskID]; !ok {
					task, err := m.app.TaskRepo.GetByID(ctx, entry.TaskID)
					if err == nil {
						msg.taskCache[entry.TaskID] = task
					}
				}
			}
		}

		return msg
	}
}

func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		m.activeTimer = msg.activeTimer
		m.activeTask = msg.activeTask
		m.clientCount = msg.clientCount
		m.reportCount = msg.reportCount
		m.invoiceCount = msg.invoiceCount
		m.recentEntries = msg.recentEntries
		m.taskCache = msg.taskCache
		if m.activeTimer != nil {
			return m, tickTimer()
		}
		return m, nil

	case TimerTickMsg:
		if m.activeTimer != nil {
			// Refresh timer state
			ctx := context.Background()
			t, err := m.app.TrackerService.GetActiveTimer(ctx)
			if err == nil {
				m.activeTimer = t
			}
			if m.activeTimer != nil {
				return m, tickTimer()
			}
		}
		return m, nil

	case RefreshDataMsg:
		m.loading = true
		return m, m.loadData()
	}

	return m, nil
}

func (m *DashboardModel) View() string {
	if m.loading {
		return "Loading dashboard..."
	}

	if m.err != nil {
		return lipgloss.NewStyle().Foreground(errorColor).
			Render(fmt.Sprintf("Error: %v", m.err))
	}

	var s string

	s += fmt.Sprintf("  Clients: %d    Saved Reports: %d    Invoices: %d\n",
		m.clientCount,
		m.reportCount,
		m.invoiceCount,
	)

	// Active timer
	s += "\n"
	if m.activeTimer != nil {
		s += m.renderActiveTimer()
	} else {
		s += subtitleStyle.Render("  No active timer (use 'vaops timer start <task>' to track time)") + "\n"
	}

	// Recent entries
	s += "\n" + m.renderRecentEntries()

	return s
}

func (m *DashboardModel) renderActiveTimer() string {
	taskTitle := fmt.Sprintf("Task #%d", m.activeTimer.TaskID)
	if m.activeTask != nil {
		taskTitle = m.activeTask.Title
	}

	elapsed := m.activeTimer.Elapsed()
	h := int(elapsed.Hours())
	min := int(elapsed.Minutes()) % 60
	sec := int(elapsed.Seconds()) % 60
	timeStr := fmt.Sprintf("%02d:%02d:%02d", h, min, sec)

	var stateStyle lipgloss.Style
	if m.activeTimer.State() == domain.TimerStatePaused {
		stateStyle = timerPausedStyle
	} else {
		stateStyle = timerRunningStyle
	}

	return fmt.Sprintf("  Active Timer\n  %s %s  [%s]\n",
		stateStyle.Render("●"),
		taskTitle,
		timeStr,
	)
}

func (m *DashboardModel) renderRecentEntries() string {
	header := "  Recent Entries (Last 7 Days)\n"
	if len(m.recentEntries) == 0 {
		return header + subtitleStyle.Render("  No recent entries") + "\n"
	}

	// Sort most recent first
	sorted := make([]*domain.TimeEntry, len(m.recentEntries))
	copy(sorted, m.recentEntries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartTime.After(sorted[j].StartTime)
	})

	s := header
	limit := 8
	if len(sorted) < limit {
		limit = len(sorted)
	}

	for i := 0; i < limit; i++ {
		entry := sorted[i]
		taskTitle := fmt.Sprintf("Task #%d", entry.TaskID)
		if t, ok := m.taskCache[entry.TaskID]; ok && t != nil {
			taskTitle = t.Title
		}

		session := ""
		if entry.SessionID != nil {
			session = subtitleStyle.Render(fmt.Sprintf("  (session #%d)", *entry.SessionID))
		}

		s += fmt.Sprintf("  %-7s %-30s %6s%s\n",
			entry.StartTime.Format("Jan 2"),
			truncateStr(taskTitle, 30),
			formatSeconds(entry.DurationMinutes*60),
			session,
		)
	}

	return s
}
