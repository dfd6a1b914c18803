// Package tui renders the low-stock alert feed in the terminal.
package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"supplychain/internal/alertfeed"
	"supplychain/internal/inventory"
	"supplychain/internal/models"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styling
var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	liveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#30d158")).
			Padding(0, 1)

	staleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#ffd60a")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#ff453a")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// StateMsg carries a new alert feed state into the program
type StateMsg alertfeed.State

// refreshErrMsg reports a manual refresh that could not start
type refreshErrMsg struct{ err error }

// Model is the alert view
type Model struct {
	table   table.Model
	spinner spinner.Model
	state   alertfeed.State
	refresh func() error
	user    string
	notice  string
}

var columns = []table.Column{
	{Title: "Name", Width: 24},
	{Title: "SKU", Width: 10},
	{Title: "Qty", Width: 6},
	{Title: "Min", Width: 6},
	{Title: "Status", Width: 13},
	{Title: "Supplier", Width: 16},
	{Title: "Location", Width: 14},
}

// New creates the view. refresh is called when the user presses r; user is
// shown in the header when non-empty.
func New(refresh func() error, user string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	t := table.New(
		table.WithColumns(columns),
		table.WithRows([]table.Row{}),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	return Model{
		table:   t,
		spinner: s,
		state:   alertfeed.State{Phase: alertfeed.Idle},
		refresh: refresh,
		user:    user,
	}
}

// Listener returns a feed listener that forwards states to p
func Listener(p *tea.Program) func(alertfeed.State) {
	return func(s alertfeed.State) {
		p.Send(StateMsg(s))
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles UI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.notice = "refreshing..."
			return m, m.refreshCmd()
		}
	case tea.WindowSizeMsg:
		h := msg.Height - 8
		if h < 3 {
			h = 3
		}
		m.table.SetHeight(h)
	case StateMsg:
		m.state = alertfeed.State(msg)
		m.notice = ""
		m.table.SetRows(Rows(m.state.Items))
		return m, nil
	case refreshErrMsg:
		m.notice = msg.err.Error()
		return m, nil
	case spinner.TickMsg:
		if m.state.Phase != alertfeed.Idle {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) refreshCmd() tea.Cmd {
	refresh := m.refresh
	return func() tea.Msg {
		if refresh == nil {
			return nil
		}
		if err := refresh(); err != nil {
			return refreshErrMsg{err: err}
		}
		return nil
	}
}

// View renders the UI
func (m Model) View() string {
	var b strings.Builder

	title := "Low Stock Alerts"
	if m.user != "" {
		title += " · " + m.user
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString(" ")
	b.WriteString(m.statusLine())
	b.WriteString("\n\n")

	switch m.state.Phase {
	case alertfeed.Idle:
		b.WriteString(m.spinner.View() + " loading alerts...")
	case alertfeed.Error:
		b.WriteString(errorStyle.Render("error"))
		if m.state.Err != nil {
			b.WriteString(" " + m.state.Err.Error())
		}
	default:
		if len(m.state.Items) == 0 {
			b.WriteString("All items are in stock.")
		} else {
			b.WriteString(m.table.View())
		}
	}
	b.WriteString("\n\n")

	if m.notice != "" {
		b.WriteString(m.notice + "\n")
	}
	b.WriteString(helpStyle.Render("r refresh • ↑/↓ move • q quit"))
	return docStyle.Render(b.String())
}

func (m Model) statusLine() string {
	var badge string
	if m.state.Live {
		badge = liveStyle.Render("live")
	} else {
		badge = staleStyle.Render("not live")
	}
	if m.state.UpdatedAt.IsZero() {
		return badge
	}
	return fmt.Sprintf("%s %d alerts, updated %s", badge, len(m.state.Items), m.state.UpdatedAt.Format(time.Kitchen))
}

// Rows turns items into table rows with their derived status
func Rows(items []models.Item) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for _, item := range items {
		rows = append(rows, table.Row{
			item.Name,
			item.SKU,
			strconv.Itoa(item.Quantity),
			strconv.Itoa(item.MinQuantity),
			statusLabel(inventory.Classify(item)),
			item.Supplier,
			item.Location,
		})
	}
	return rows
}

func statusLabel(s inventory.StockStatus) string {
	switch s {
	case inventory.StatusOutOfStock:
		return "Out of stock"
	case inventory.StatusLowStock:
		return "Low stock"
	default:
		return "In stock"
	}
}
