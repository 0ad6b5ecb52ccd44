// Package tui renders the dashboard in the terminal. Like the HTML page it
// only reads cell snapshots and never writes them.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gopherwatch/internal/models"
	"gopherwatch/internal/services"
	"gopherwatch/internal/view"
)

// Dracula theme colors.
const (
	draculaForeground = "#F8F8F2"
	draculaCyan       = "#8BE9FD"
	draculaGreen      = "#50FA7B"
	draculaPink       = "#FF79C6"
	draculaPurple     = "#BD93F9"
	draculaRed        = "#FF5555"
	draculaComment    = "#6272A4"
)

type styles struct {
	title, header, cell, placeholder, alert, banner, help, app lipgloss.Style
}

func newStyles() styles {
	return styles{
		title: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaPink)).
			Bold(true),
		header: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaCyan)).
			Bold(true),
		cell: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaForeground)),
		placeholder: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaComment)).
			Italic(true),
		alert: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaRed)).
			Bold(true),
		banner: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaRed)),
		help: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaComment)),
		app: lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(draculaPurple)),
	}
}

var (
	agentColumns = []int{22, 10, 14, 10, 22}
	alertColumns = []int{8, 22, 10, 12, 10}
)

type refreshMsg time.Time

// DiagnosticsProvider exposes the poller's cycle history.
type DiagnosticsProvider interface {
	Diagnostics() models.Diagnostics
}

// Model is the bubbletea model for the terminal dashboard.
type Model struct {
	state    services.DashboardState
	diag     DiagnosticsProvider
	loc      *time.Location
	interval time.Duration

	tree        models.DisplayTree
	diagnostics models.Diagnostics
	lastRefresh time.Time
	styles      styles
}

func NewModel(state services.DashboardState, diag DiagnosticsProvider, loc *time.Location, interval time.Duration) *Model {
	if interval <= 0 {
		interval = services.DefaultRefreshInterval
	}

	m := &Model{
		state:    state,
		diag:     diag,
		loc:      loc,
		interval: interval,
		styles:   newStyles(),
	}
	m.reload(time.Now())

	return m
}

func (m *Model) Init() tea.Cmd {
	return m.scheduleRefresh()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		m.reload(time.Time(msg))
		return m, m.scheduleRefresh()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			m.reload(time.Now())
		}
	}

	return m, nil
}

func (m *Model) View() string {
	var content strings.Builder

	content.WriteString(m.styles.title.Render("GopherWatch") + "\n")

	for _, health := range m.diagnostics.FailingSources() {
		content.WriteString(m.styles.banner.Render(fmt.Sprintf("%s source failing (%d in a row): %s",
			health.Source, health.ConsecutiveFailures, health.LastError)) + "\n")
	}

	content.WriteString("\n" + m.styles.header.Render("Agents") + "\n")

	if m.tree.Agents.Placeholder != "" {
		content.WriteString(m.styles.placeholder.Render(m.tree.Agents.Placeholder) + "\n")
	} else {
		content.WriteString(m.row(m.styles.header, agentColumns, "SERVICE", "CPU", "MEMORY", "REQUESTS", "REPORTED") + "\n")

		for _, r := range m.tree.Agents.Rows {
			content.WriteString(m.row(m.styles.cell, agentColumns, r.ServiceID, r.CPU, r.Memory, r.Requests, r.UpdatedAt) + "\n")
		}
	}

	content.WriteString("\n" + m.styles.header.Render("Alerts") + "\n")

	if m.tree.Alerts.Placeholder != "" {
		content.WriteString(m.styles.placeholder.Render(m.tree.Alerts.Placeholder) + "\n")
	} else {
		content.WriteString(m.row(m.styles.header, alertColumns, "ID", "SERVICE", "METRIC", "VALUE", "TIME") + "\n")

		for _, r := range m.tree.Alerts.Rows {
			content.WriteString(m.row(m.styles.cell, alertColumns, r.ID, r.ServiceName, m.styles.alert.Render(r.Metric), r.Value, r.TriggeredAt) + "\n")
		}
	}

	content.WriteString("\n" + m.styles.help.Render(fmt.Sprintf("cycle %d | skipped %d | refreshed %s | r → refresh | q → quit",
		m.diagnostics.Generation, m.diagnostics.SkippedTicks, m.lastRefresh.Format(view.TimeOfDayLayout))))

	return m.styles.app.Render(content.String())
}

// Tree returns the display tree from the last refresh.
func (m *Model) Tree() models.DisplayTree {
	return m.tree
}

func (m *Model) reload(now time.Time) {
	m.tree = view.Render(m.state.StatusSnapshot().Agents, m.state.AlertSnapshot().Alerts, m.loc)
	if m.diag != nil {
		m.diagnostics = m.diag.Diagnostics()
	}
	m.lastRefresh = now
}

func (m *Model) scheduleRefresh() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

func (m *Model) row(style lipgloss.Style, widths []int, cells ...string) string {
	rendered := make([]string, len(cells))
	for i, cell := range cells {
		rendered[i] = style.Width(widths[i]).Render(cell)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// Run blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, m *Model) error {
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running terminal dashboard: %w", err)
	}

	return nil
}
