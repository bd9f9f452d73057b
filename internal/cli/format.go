package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/finlit/internal/constants"
	"github.com/julianstephens/finlit/internal/money"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// RenderTable draws rows under headers. Columns named in muted are dimmed.
func RenderTable(headers []string, rows [][]string, muted ...int) string {
	dim := map[int]bool{}
	for _, c := range muted {
		dim[c] = true
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case dim[col]:
				return mutedStyle
			default:
				return cellStyle
			}
		}).
		String()
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(constants.DateFormat + " " + constants.TimeFormat)
}

func FormatOptionalTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return FormatTime(*t)
}

func FormatCents(c *int64) string {
	if c == nil {
		return "-"
	}
	return money.FormatMinor(*c)
}

func Optional(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func Truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}

// PrintWarnings lists best-effort failures after a successful operation.
func PrintWarnings(c *Context, warnings []string) {
	for _, w := range warnings {
		fmt.Fprintln(c.Out, WarningStyle.Render("⚠ "+w))
	}
}

// ParseWhen accepts RFC 3339, "YYYY-MM-DD HH:MM" or "YYYY-MM-DD" (09:00),
// all in UTC.
func ParseWhen(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(constants.DateFormat+" "+constants.TimeFormat, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(constants.DateFormat, s); err == nil {
		return t.Add(time.Duration(constants.DefaultReminderHour) * time.Hour), nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q: use RFC 3339, 'YYYY-MM-DD HH:MM' or 'YYYY-MM-DD'", s)
}
