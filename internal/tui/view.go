package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/finlit/internal/constants"
	"github.com/julianstephens/finlit/internal/money"
)

const timeLayout = constants.DateFormat + " " + constants.TimeFormat

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateReminders:
		content = m.list.View()
	case StateFeed:
		content = m.feed.View()
	case StateDebts:
		content = m.viewDebts()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		m.viewStatus(),
		docStyle.Render(content),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range tabTitles {
		if m.state == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStatus() string {
	if m.err != nil {
		return dangerStyle.Render("⚠ " + m.err.Error())
	}
	line := "Waiting for the first poll"
	if t := m.lastTick; t != nil {
		line = fmt.Sprintf("Last poll %s · %d due · %d sent", t.At.UTC().Format(timeLayout), t.Due, t.Sent)
		if failed := t.DispatchFailed + t.MarkFailed; failed > 0 {
			return warningStyle.Render(fmt.Sprintf("%s · %d failed", line, failed))
		}
	}
	if m.status != "" {
		line += " · " + m.status
	}
	return statusStyle.Render(line)
}

func (m Model) viewDebts() string {
	if len(m.debts) == 0 {
		return "No debts. Add one with 'finlit debt add'."
	}
	rows := make([][]string, len(m.debts))
	for i, d := range m.debts {
		rows[i] = []string{
			d.Name,
			string(d.Kind),
			money.Format(d.CurrentBalance),
			d.InterestRate.String() + "%",
			money.Format(d.MinPayment),
			fmt.Sprintf("%d", d.DueDay),
		}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("Name", "Kind", "Balance", "APR", "Min payment", "Due day").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}
