// Package tui is the interactive watch view: the reminder list, a feed of
// deliveries made while it is open, and a debt overview.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/finlit/internal/models"
	"github.com/julianstephens/finlit/internal/planning"
	"github.com/julianstephens/finlit/internal/reminders"
	"github.com/julianstephens/finlit/internal/scheduler"
	"github.com/julianstephens/finlit/internal/tui/components/feed"
	reminderlist "github.com/julianstephens/finlit/internal/tui/components/reminders"
)

type SessionState int

const (
	StateReminders SessionState = iota
	StateFeed
	StateDebts
)

var tabTitles = []string{"Reminders", "Fired", "Debts"}

// FiredMsg is a reminder the poller delivered to the view.
type FiredMsg struct {
	Reminder models.Reminder
	At       time.Time
}

// TickMsg is the outcome of one poll.
type TickMsg scheduler.TickReport

type refreshedMsg struct {
	reminders []models.Reminder
	debts     []models.DebtAccount
	err       error
}

type actionMsg struct {
	status string
	err    error
}

type Model struct {
	reminders *reminders.Service
	planning  *planning.Service
	state     SessionState
	keys      KeyMap
	help      help.Model
	list      reminderlist.Model
	feed      feed.Model
	debts     []models.DebtAccount
	lastTick  *TickMsg
	status    string
	err       error
	quitting  bool
	width     int
	height    int
}

func NewModel(r *reminders.Service, p *planning.Service) Model {
	return Model{
		reminders: r,
		planning:  p,
		state:     StateReminders,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		list:      reminderlist.New(nil, 0, 0),
		feed:      feed.New(0, 0),
	}
}

func (m Model) Init() tea.Cmd {
	return m.refresh()
}

func (m Model) refresh() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		list, err := m.reminders.List(ctx)
		if err != nil {
			return refreshedMsg{err: err}
		}
		debts, err := m.planning.ListDebts(ctx)
		if err != nil {
			return refreshedMsg{err: err}
		}
		return refreshedMsg{reminders: list, debts: debts}
	}
}

func (m Model) snooze(id string, minutes int) tea.Cmd {
	return func() tea.Msg {
		r, err := m.reminders.Snooze(context.Background(), id, minutes)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: "Snoozed " + r.Title + " until " + r.NextFireAt.UTC().Format(timeLayout)}
	}
}

func (m Model) dismiss(id string) tea.Cmd {
	return func() tea.Msg {
		r, err := m.reminders.Dismiss(context.Background(), id)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: "Dismissed " + r.Title}
	}
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Refresh, m.keys.Quit, m.keys.Help}
	if m.state == StateReminders {
		rk := reminderlist.DefaultKeyMap()
		keys = append(keys, rk.Snooze, rk.Dismiss)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Refresh, m.keys.Quit, m.keys.Help}
	var actions []key.Binding
	if m.state == StateReminders {
		rk := reminderlist.DefaultKeyMap()
		actions = []key.Binding{rk.Snooze, rk.Dismiss}
	}
	return [][]key.Binding{global, actions}
}
