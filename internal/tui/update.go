package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	reminderlist "github.com/julianstephens/finlit/internal/tui/components/reminders"
)

// chromeHeight is the rows taken by tabs, status line and help.
const chromeHeight = 5

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		h := msg.Height - chromeHeight
		if h < 1 {
			h = 1
		}
		m.list.SetSize(msg.Width-4, h)
		m.feed.SetSize(msg.Width-4, h)
		m.help.Width = msg.Width
		return m, nil

	case refreshedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.list.SetReminders(msg.reminders)
		m.debts = msg.debts
		return m, nil

	case actionMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = msg.status
		}
		return m, m.refresh()

	case FiredMsg:
		m.feed.Add(msg.Reminder, msg.At)
		m.status = "Fired: " + msg.Reminder.Title
		return m, nil

	case TickMsg:
		tick := msg
		m.lastTick = &tick
		return m, m.refresh()

	case reminderlist.SnoozeMsg:
		return m, m.snooze(msg.ID, msg.Minutes)

	case reminderlist.DismissMsg:
		return m, m.dismiss(msg.ID)

	case tea.KeyMsg:
		if m.state == StateReminders && m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % SessionState(len(tabTitles))
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state + SessionState(len(tabTitles)) - 1) % SessionState(len(tabTitles))
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.status = ""
			return m, m.refresh()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateReminders:
		m.list, cmd = m.list.Update(msg)
	case StateFeed:
		m.feed, cmd = m.feed.Update(msg)
	}
	return m, cmd
}
