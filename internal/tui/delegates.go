// pattern: Imperative Shell

package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"boostinstaller/internal/discovery"
)

// appItem wraps an app record for display in a list.
type appItem struct {
	app discovery.AppRecord
}

// Title returns the app name for display.
func (i appItem) Title() string {
	return i.app.Name
}

// Description returns the entry files and app path.
func (i appItem) Description() string {
	return fmt.Sprintf("%s | %s", i.app.EntryText(), i.app.Path)
}

// FilterValue returns the value to filter on.
func (i appItem) FilterValue() string {
	return i.app.Name
}

// appDelegate handles rendering of app items in a list.
type appDelegate struct {
	styles       *Styles
	marked       map[string]bool // app paths marked for a batch operation
	spinnerFrame string
	pending      map[string]bool
}

// newAppDelegate creates a new app delegate with the given styles.
func newAppDelegate(styles *Styles) appDelegate {
	return appDelegate{
		styles:  styles,
		marked:  make(map[string]bool),
		pending: make(map[string]bool),
	}
}

// WithState returns a delegate with updated marks and spinner state.
func (d appDelegate) WithState(marked map[string]bool, spinnerFrame string, pending map[string]bool) appDelegate {
	d.marked = marked
	d.spinnerFrame = spinnerFrame
	d.pending = pending
	return d
}

// Height returns the height of a single item.
func (d appDelegate) Height() int {
	return 2
}

// Spacing returns the spacing between items.
func (d appDelegate) Spacing() int {
	return 1
}

// Update handles item-specific updates.
func (d appDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

// Render renders a single app item.
func (d appDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ai, ok := item.(appItem)
	if !ok {
		return
	}

	isSelected := index == m.Index()
	width := m.Width()

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(d.styles.flavor.Text().Hex))
	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(d.styles.flavor.Subtext0().Hex))

	if isSelected {
		titleStyle = titleStyle.
			Bold(true).
			Foreground(lipgloss.Color(d.styles.flavor.Mauve().Hex))
		descStyle = descStyle.
			Foreground(lipgloss.Color(d.styles.flavor.Overlay0().Hex))
	}

	indicator := "  "
	if isSelected {
		indicator = lipgloss.NewStyle().
			Foreground(lipgloss.Color(d.styles.flavor.Mauve().Hex)).
			Render("▸ ")
	}

	mark := "[ ]"
	if d.marked[ai.app.Path] {
		mark = d.styles.AccentStyle().Render("[x]")
	}

	var statusIndicator string
	if d.pending[ai.app.Path] && d.spinnerFrame != "" {
		statusIndicator = d.styles.AccentStyle().Render(d.spinnerFrame)
	} else {
		statusIndicator = lipgloss.NewStyle().
			Foreground(d.styles.StatusColor(ai.app.Status)).
			Render("●")
	}

	label := lipgloss.NewStyle().
		Foreground(d.styles.StatusColor(ai.app.Status)).
		Render(ai.app.Status.Label())

	title := fmt.Sprintf("%s%s %s %s  %s", indicator, mark, statusIndicator, titleStyle.Render(ai.app.Name), label)
	desc := "      " + descStyle.Render(ai.Description())
	if width > 0 {
		title = ansi.Truncate(title, width, "…")
		desc = ansi.Truncate(desc, width, "…")
	}

	_, _ = fmt.Fprintf(w, "%s\n%s", title, desc)
}

// toListItems converts app records to list items.
func toListItems(apps []discovery.AppRecord) []list.Item {
	items := make([]list.Item, len(apps))
	for i, app := range apps {
		items[i] = appItem{app: app}
	}
	return items
}
