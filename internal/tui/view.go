// pattern: Imperative Shell

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"boostinstaller/internal/discovery"
	"boostinstaller/internal/logging"
)

// View renders the TUI.
func (m Model) View() string {
	layout := ComputeLayout(m.width, m.height, m.logPanelOpen)

	header := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.TitleStyle().Render("AMD-GPU-BOOST Installer"),
		m.styles.SubtitleStyle().Render(m.truncate("Pinokio path: "+m.state.Root, layout.Header.Width)),
	)

	var content string
	switch m.mode {
	case modeInput:
		content = m.renderInput()
	case modePreview, modeAbout:
		content = m.renderPanel()
	default:
		content = m.renderList(layout)
	}
	content = lipgloss.NewStyle().Height(layout.List.Height).Render(content)

	parts := []string{header, content}

	if m.logPanelOpen {
		separator := m.styles.SeparatorStyle().Render(strings.Repeat("─", max(layout.Separator.Width, 1)))
		parts = append(parts, separator, m.renderLogPanel(layout))
	}

	parts = append(parts, "", m.renderStatusBar(layout.StatusBar.Width))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderList(layout Layout) string {
	if len(m.state.Apps) == 0 {
		if m.busy {
			return m.styles.InfoStyle().Render("Scanning " + m.state.Root + "...")
		}
		return m.styles.HelpStyle().Render("No apps found. Press c to change the Pinokio path or b to add an app directory.")
	}
	summary := m.styles.HelpStyle().Render(fmt.Sprintf("%d patched • %d not patched • %d without entry • %d marked",
		m.state.Count(discovery.StatusPatched),
		m.state.Count(discovery.StatusUnpatched),
		m.state.Count(discovery.StatusNoEntry),
		len(m.marked),
	))
	return lipgloss.JoinVertical(lipgloss.Left, m.appList.View(), summary)
}

func (m Model) renderInput() string {
	prompt := "Pinokio path (enter to scan, esc to cancel)"
	if m.purpose == inputAppDir {
		prompt = "App directory to add (enter to add, esc to cancel)"
	}
	return m.styles.BoxStyle().Render(lipgloss.JoinVertical(lipgloss.Left,
		m.styles.AccentStyle().Render(prompt),
		m.input.View(),
	))
}

func (m Model) renderPanel() string {
	title := m.styles.TitleStyle().Render(m.title)
	hint := m.styles.HelpStyle().Render("↑/↓: scroll • esc: close")
	if m.mode == modeAbout {
		hint = m.styles.HelpStyle().Render("esc: close")
	}
	return m.styles.BoxStyle().Render(lipgloss.JoinVertical(lipgloss.Left, title, m.viewport.View(), hint))
}

// colorDiff styles a LineDiff rendering line by line.
func (m Model) colorDiff(diff string) string {
	lines := strings.Split(diff, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+"):
			lines[i] = m.styles.DiffAddStyle().Render(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = m.styles.DiffRemoveStyle().Render(line)
		default:
			lines[i] = m.styles.DiffContextStyle().Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

// renderStatusBar renders the status bar with operation feedback and help.
func (m Model) renderStatusBar(width int) string {
	var statusIcon string
	var messageStyle lipgloss.Style

	switch m.statusLevel {
	case StatusLoading:
		statusIcon = m.statusSpinner.View()
		messageStyle = m.styles.InfoStatusStyle()
	case StatusSuccess:
		statusIcon = m.styles.SuccessStyle().Render("✓")
		messageStyle = m.styles.SuccessStyle()
	case StatusError:
		statusIcon = m.styles.ErrorStyle().Render("✗")
		messageStyle = m.styles.ErrorStyle()
	default:
		messageStyle = m.styles.InfoStatusStyle()
	}

	var statusText string
	if statusIcon != "" {
		statusText = statusIcon + " " + messageStyle.Render(m.statusMessage)
	} else if m.statusMessage != "" {
		statusText = messageStyle.Render(m.statusMessage)
	}
	if m.statusLevel == StatusError {
		statusText += m.styles.HelpStyle().Render(" (esc to clear)")
	}

	help := m.renderContextualHelp()

	spacerWidth := width - lipgloss.Width(statusText) - lipgloss.Width(help) - 2
	if spacerWidth < 1 {
		// Not enough room for both; the status wins and help is cut.
		room := width - lipgloss.Width(statusText) - 2
		if room < 1 {
			return m.truncate(statusText, width)
		}
		return statusText + "  " + m.truncate(help, room)
	}

	return lipgloss.JoinHorizontal(lipgloss.Bottom,
		statusText,
		strings.Repeat(" ", spacerWidth),
		help,
	)
}

// renderContextualHelp returns help text for the current mode.
func (m Model) renderContextualHelp() string {
	var help string
	switch {
	case m.mode == modeInput:
		help = "enter: confirm • esc: cancel"
	case m.mode != modeList:
		help = "esc: close"
	case m.busy:
		help = "working… • ctrl+c: quit"
	case len(m.state.Apps) == 0:
		help = "r: rescan • c: path • b: add app • i: about • q: quit"
	default:
		help = "space/a: mark • p: patch • x: remove • d: diff • r: rescan • c: path • b: add • y: copy • l: logs • i: about • q: quit"
	}
	return m.styles.HelpStyle().Render(help)
}

// renderLogEntry formats a single log entry for display.
func (m Model) renderLogEntry(entry logging.LogEntry) string {
	ts := m.styles.LogTimestampStyle().Render(entry.Timestamp.Format("15:04:05"))
	level := m.styles.LogLevelStyle(entry.Level).Render(entry.Level)
	scope := m.styles.LogScopeStyle().Render("[" + entry.Scope + "]")
	line := fmt.Sprintf("%s %s %s %s", ts, level, scope, entry.Message)
	if app, ok := entry.Fields["app"]; ok {
		line += fmt.Sprintf(" app=%v", app)
	}
	if err, ok := entry.Fields["error"]; ok {
		line += fmt.Sprintf(" error=%v", err)
	}
	return line
}

// renderLogPanel renders the log panel content.
func (m Model) renderLogPanel(layout Layout) string {
	header := m.styles.PanelHeaderStyle().Width(layout.Logs.Width).Render(fmt.Sprintf(" Logs (%d)", len(m.logEntries)))
	if len(m.logEntries) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			header,
			m.styles.InfoStyle().Render("No log entries"),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, m.logViewport.View())
}

func (m Model) truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return ansi.Truncate(s, width, "…")
}
