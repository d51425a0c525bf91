package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"momentum/internal/model"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	toolStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	sectionStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.view {
	case ViewToday:
		body = m.renderToday()
	default:
		body = m.renderChat()
	}

	status := statusStyle.Render(m.status.Text)
	if m.status.IsError {
		status = errorStyle.Render(m.status.Text)
	}
	if m.waiting {
		status = m.spin.View() + " " + status
	}

	lines := []string{
		headerStyle.Render(fmt.Sprintf("momentum — %s", m.view)),
		body,
		m.input.View(),
		status,
		footerStyle.Render("tab: switch view · /help: commands · ctrl+c: quit"),
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderChat() string {
	width := m.width - 4
	if width < 40 {
		width = 76
	}

	if len(m.transcript) == 0 {
		return panelStyle.Width(width).Render("Ask about your day, or try /task Buy milk")
	}

	var sb strings.Builder
	// Show the tail that fits a terminal comfortably.
	msgs := m.transcript
	if len(msgs) > 12 {
		msgs = msgs[len(msgs)-12:]
	}
	for _, msg := range msgs {
		switch {
		case msg.ToolCall != nil:
			sb.WriteString(toolStyle.Render(fmt.Sprintf("⚙ %s", msg.ToolCall.Name)))
		case msg.ToolResult != nil:
			if ok, _ := msg.ToolResult.Payload["ok"].(bool); ok {
				sb.WriteString(toolStyle.Render(fmt.Sprintf("⚙ %s ✓", msg.ToolResult.Name)))
			} else {
				sb.WriteString(toolStyle.Render(fmt.Sprintf("⚙ %s ✗", msg.ToolResult.Name)))
			}
		case msg.Role == model.RoleUser:
			sb.WriteString(userStyle.Render("you ") + msg.Text)
		default:
			sb.WriteString(assistantStyle.Render(renderMarkdown(msg.Text)))
		}
		sb.WriteString("\n")
	}
	return panelStyle.Width(width).Render(strings.TrimRight(sb.String(), "\n"))
}

func (m Model) renderToday() string {
	width := m.width - 4
	if width < 40 {
		width = 76
	}

	var sb strings.Builder
	sb.WriteString(sectionStyle.Render("Overdue"))
	sb.WriteString("\n")
	if len(m.today.Overdue) == 0 {
		sb.WriteString("  nothing overdue\n")
	}
	for _, t := range m.today.Overdue {
		sb.WriteString(errorStyle.Render(fmt.Sprintf("  ! %s (due %s)\n", t.Title, t.DueDate.Format(model.DateLayout))))
	}

	sb.WriteString(sectionStyle.Render("Due today"))
	sb.WriteString("\n")
	if len(m.today.DueToday) == 0 {
		sb.WriteString("  nothing due\n")
	}
	for _, t := range m.today.DueToday {
		sb.WriteString(fmt.Sprintf("  • %s [%s]\n", t.Title, t.Priority))
	}

	sb.WriteString(sectionStyle.Render("Habits"))
	sb.WriteString("\n")
	if len(m.today.Habits) == 0 {
		sb.WriteString("  no habits yet\n")
	}
	for _, row := range m.today.Habits {
		mark := "○"
		if row.Logged {
			mark = "●"
		}
		sb.WriteString(fmt.Sprintf("  %s %s\n", mark, row.Habit.Name))
	}

	sb.WriteString("\n")
	sb.WriteString(statusStyle.Render(fmt.Sprintf("%d points · %d day streak", m.today.Stats.Points, m.today.Stats.Streak)))
	return panelStyle.Width(width).Render(strings.TrimRight(sb.String(), "\n"))
}

func renderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
