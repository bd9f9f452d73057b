package reminders

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/finlit/internal/constants"
	"github.com/julianstephens/finlit/internal/models"
	"github.com/julianstephens/finlit/internal/money"
)

const timeLayout = constants.DateFormat + " " + constants.TimeFormat

type SnoozeMsg struct {
	ID      string
	Minutes int
}

type DismissMsg struct {
	ID string
}

type Item struct {
	Reminder models.Reminder
}

func (i Item) Title() string {
	r := i.Reminder
	title := "⏰ " + r.Title
	if r.AmountCents != nil {
		title += " · " + money.FormatMinor(*r.AmountCents)
	}
	if !r.Armed() {
		title = "[" + strings.ToUpper(string(r.Status)) + "] " + title
	}
	return title
}

func (i Item) Description() string {
	r := i.Reminder
	var parts []string
	if r.NextFireAt != nil {
		parts = append(parts, "next "+r.NextFireAt.UTC().Format(timeLayout))
	} else {
		parts = append(parts, "due "+r.DueAt.UTC().Format(timeLayout))
	}
	if r.Recurrence.IsRecurring() {
		parts = append(parts, r.Recurrence.Label())
	}
	parts = append(parts, string(r.Status))
	if r.ScheduleID != nil {
		parts = append(parts, "installment")
	}
	return strings.Join(parts, " · ")
}

func (i Item) FilterValue() string { return i.Reminder.Title }

type KeyMap struct {
	Snooze  key.Binding
	Dismiss key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Snooze: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "snooze"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "dismiss"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(reminders []models.Reminder, width, height int) Model {
	l := list.New(items(reminders), list.NewDefaultDelegate(), width, height)
	l.Title = "Reminders"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Snooze, keys.Dismiss}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Snooze, keys.Dismiss}
	}

	return Model{
		list: l,
		keys: keys,
	}
}

func items(reminders []models.Reminder) []list.Item {
	out := make([]list.Item, len(reminders))
	for i, r := range reminders {
		out[i] = Item{Reminder: r}
	}
	return out
}

func (m *Model) SetReminders(reminders []models.Reminder) {
	m.list.SetItems(items(reminders))
}

func (m Model) Len() int {
	return len(m.list.Items())
}

func (m Model) Selected() (models.Reminder, bool) {
	item, ok := m.list.SelectedItem().(Item)
	return item.Reminder, ok
}

func (m Model) FilterState() list.FilterState {
	return m.list.FilterState()
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Snooze):
			if r, ok := m.Selected(); ok {
				return m, func() tea.Msg {
					return SnoozeMsg{ID: r.ID, Minutes: r.SnoozeLength()}
				}
			}
		case key.Matches(msg, m.keys.Dismiss):
			if r, ok := m.Selected(); ok {
				return m, func() tea.Msg {
					return DismissMsg{ID: r.ID}
				}
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.Len() == 0 {
		return "No reminders. Add one with 'finlit reminder add'."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
