// Package feed shows the notifications delivered while the watch view is
// open, newest first.
package feed

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/finlit/internal/constants"
	"github.com/julianstephens/finlit/internal/models"
	"github.com/julianstephens/finlit/internal/money"
)

// Limit caps how many entries are kept.
const Limit = 200

const timeLayout = constants.DateFormat + " " + constants.TimeFormat

type Entry struct {
	Reminder models.Reminder
	FiredAt  time.Time
}

type Model struct {
	table   table.Model
	entries []Entry
}

func columns(width int) []table.Column {
	title := width - 16 - 12 - 10 - 8
	if title < 20 {
		title = 20
	}
	return []table.Column{
		{Title: "Fired", Width: 16},
		{Title: "Reminder", Width: title},
		{Title: "Amount", Width: 12},
		{Title: "Channel", Width: 10},
	}
}

func New(width, height int) Model {
	t := table.New(
		table.WithColumns(columns(width)),
		table.WithFocused(true),
		table.WithHeight(height),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	t.SetStyles(s)
	return Model{table: t}
}

// Add records a delivery and drops the oldest entries past Limit.
func (m *Model) Add(r models.Reminder, firedAt time.Time) {
	m.entries = append([]Entry{{Reminder: r, FiredAt: firedAt}}, m.entries...)
	if len(m.entries) > Limit {
		m.entries = m.entries[:Limit]
	}
	rows := make([]table.Row, len(m.entries))
	for i, e := range m.entries {
		amount := "-"
		if e.Reminder.AmountCents != nil {
			amount = money.FormatMinor(*e.Reminder.AmountCents)
		}
		rows[i] = table.Row{e.FiredAt.UTC().Format(timeLayout), e.Reminder.Title, amount, string(e.Reminder.Channel)}
	}
	m.table.SetRows(rows)
}

func (m Model) Entries() []Entry {
	return m.entries
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.entries) == 0 {
		return "Nothing has fired yet. Due reminders appear here as they are delivered."
	}
	return m.table.View()
}

func (m *Model) SetSize(width, height int) {
	m.table.SetColumns(columns(width))
	m.table.SetHeight(height)
}
