// pattern: Imperative Shell

package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"boostinstaller/internal/about"
	"boostinstaller/internal/config"
	"boostinstaller/internal/discovery"
	"boostinstaller/internal/logging"
)

// scanDoneMsg carries the result of a rescan.
type scanDoneMsg struct {
	state *discovery.State
	err   error
}

// opDoneMsg is sent when a patch or remove batch completes.
type opDoneMsg struct {
	op      string // "patch" or "remove"
	success int
	errs    []error
}

// previewMsg carries a dry-run diff for one app.
type previewMsg struct {
	app  string
	diff string
	err  error
}

// logEntriesMsg delivers log entries from the logging channel.
type logEntriesMsg struct {
	entries []logging.LogEntry
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.statusSpinner, cmd = m.statusSpinner.Update(msg)
		if m.busy {
			m.refreshDelegate()
		}
		return m, cmd

	case scanDoneMsg:
		m.busy = false
		m.state = msg.state
		m.pending = make(map[string]bool)
		m.pruneMarks()
		switch {
		case errors.Is(msg.err, discovery.ErrRootNotFound):
			m.fail("Path not found: "+msg.state.Root, msg.err)
		case msg.err != nil:
			m.fail("Scan error: "+msg.err.Error(), msg.err)
		case m.afterScan != nil:
			m.statusLevel, m.statusMessage, m.err = m.afterScan.level, m.afterScan.text, m.afterScan.err
		default:
			m.setStatus(StatusInfo, fmt.Sprintf("Found %d apps", len(msg.state.Apps)))
		}
		m.afterScan = nil
		return m, m.syncList()

	case opDoneMsg:
		verb := "patched"
		if msg.op == "remove" {
			verb = "removed patches from"
		}
		m.marked = make(map[string]bool)
		// Shown once the follow-up rescan lands.
		if len(msg.errs) > 0 {
			m.afterScan = &statusLine{
				level: StatusError,
				text:  fmt.Sprintf("Successfully %s %d apps; %d failed: %v", verb, msg.success, len(msg.errs), msg.errs[0]),
				err:   errors.Join(msg.errs...),
			}
		} else {
			m.afterScan = &statusLine{level: StatusSuccess, text: fmt.Sprintf("Successfully %s %d apps", verb, msg.success)}
		}
		return m, m.rescan()

	case previewMsg:
		m.busy = false
		m.pending = make(map[string]bool)
		m.refreshDelegate()
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.openPanel(modePreview, "Preview: "+msg.app, m.colorDiff(msg.diff))
		m.setStatus(StatusInfo, "Dry run, nothing written")
		return m, nil

	case logEntriesMsg:
		for _, entry := range msg.entries {
			m.addLogEntry(entry)
		}
		if m.logPanelOpen {
			m.updateLogViewportContent()
		}
		return m, m.consumeLogEntries()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case modeInput:
		return m.handleInputKey(msg)
	case modePreview, modeAbout:
		return m.handlePanelKey(msg)
	}

	// One operation at a time.
	if m.busy {
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "r", "f5":
		return m, m.startScan()

	case " ", "space":
		if app, ok := m.selectedApp(); ok && app.HasEntry() {
			if m.marked[app.Path] {
				delete(m.marked, app.Path)
			} else {
				m.marked[app.Path] = true
			}
			m.refreshDelegate()
		}
		return m, nil

	case "a":
		allMarked := true
		for _, app := range m.state.Apps {
			if app.HasEntry() && !m.marked[app.Path] {
				allMarked = false
				break
			}
		}
		m.marked = make(map[string]bool)
		if !allMarked {
			for _, app := range m.state.Apps {
				if app.HasEntry() {
					m.marked[app.Path] = true
				}
			}
		}
		m.refreshDelegate()
		return m, nil

	case "p":
		return m.startOp("patch")

	case "x":
		return m.startOp("remove")

	case "d":
		app, ok := m.selectedApp()
		if !ok {
			m.setStatus(StatusInfo, "Please select an app to preview")
			return m, nil
		}
		m.busy = true
		m.pending = map[string]bool{app.Path: true}
		m.setStatus(StatusLoading, "Rendering preview for "+app.Name+"...")
		m.refreshDelegate()
		return m, tea.Batch(m.statusSpinner.Tick, m.preview(app))

	case "c":
		m.openInput(inputRootPath, m.state.Root)
		return m, nil

	case "b":
		m.openInput(inputAppDir, m.state.Root+string(filepath.Separator))
		return m, nil

	case "i":
		m.openPanel(modeAbout, "About AMD-GPU-BOOST", about.Text(m.version))
		return m, nil

	case "y":
		app, ok := m.selectedApp()
		if !ok || !app.HasEntry() {
			m.setStatus(StatusInfo, "No entry file to copy")
			return m, nil
		}
		if err := m.copy(app.MainEntry()); err != nil {
			m.logger.Warn("clipboard write failed", "error", err)
			m.setError(fmt.Errorf("copy failed: %w", err))
			return m, nil
		}
		m.setStatus(StatusSuccess, "Copied "+app.MainEntry())
		return m, nil

	case "l":
		m.logPanelOpen = !m.logPanelOpen
		m.resize()
		if m.logPanelOpen {
			m.updateLogViewportContent()
		}
		return m, nil

	case "esc":
		m.marked = make(map[string]bool)
		m.refreshDelegate()
		m.clearStatus()
		return m, nil
	}

	var cmd tea.Cmd
	m.appList, cmd = m.appList.Update(msg)
	return m, cmd
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.input.Blur()
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		m.mode = modeList
		m.input.Blur()
		if value == "" {
			return m, nil
		}
		if m.purpose == inputRootPath {
			return m.changeRoot(value)
		}
		return m.addApp(value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handlePanelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "enter":
		m.mode = modeList
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) openInput(purpose inputPurpose, value string) {
	m.mode = modeInput
	m.purpose = purpose
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *Model) openPanel(mode viewMode, title, content string) {
	m.mode = mode
	m.title = title
	m.resize()
	m.viewport.SetContent(content)
	m.viewport.GotoTop()
}

// changeRoot validates and persists a new root path, then rescans.
func (m Model) changeRoot(value string) (tea.Model, tea.Cmd) {
	root, err := filepath.Abs(config.ExpandHome(value))
	if err != nil {
		m.setError(err)
		return m, nil
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		m.fail("Path not found: "+root, discovery.ErrRootNotFound)
		return m, nil
	}
	if m.pathStore != nil {
		if err := m.pathStore.Save(root); err != nil {
			m.logger.Warn("failed to save root path", "root", root, "error", err)
		}
	}
	m.logger.Info("root path changed", "root", root)
	m.state.Root = root
	return m, m.startScan()
}

// addApp classifies one directory and adds it to the list.
func (m Model) addApp(value string) (tea.Model, tea.Cmd) {
	dir, err := filepath.Abs(config.ExpandHome(value))
	if err != nil {
		m.setError(err)
		return m, nil
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		m.fail("Path not found: "+dir, os.ErrNotExist)
		return m, nil
	}
	rec := m.scanner.ScanApp(dir)
	m.state.Put(rec)
	if filepath.Dir(dir) != filepath.Clean(m.state.Root) {
		m.extraApps = append(m.extraApps, dir)
	}
	m.setStatus(StatusSuccess, "Added "+rec.Name)
	m.logger.Info("app added", "app", rec.Name, "status", rec.Status.String())
	return m, m.syncList()
}

func (m *Model) startScan() tea.Cmd {
	m.busy = true
	m.setStatus(StatusLoading, "Scanning...")
	return tea.Batch(m.statusSpinner.Tick, m.rescan())
}

// startOp runs patch or remove over the current targets.
func (m Model) startOp(op string) (tea.Model, tea.Cmd) {
	targets := m.targets()
	if len(targets) == 0 {
		if op == "patch" {
			m.setStatus(StatusInfo, "Please select apps to patch")
		} else {
			m.setStatus(StatusInfo, "Please select apps to remove patches from")
		}
		return m, nil
	}

	m.busy = true
	m.pending = make(map[string]bool)
	for _, app := range targets {
		m.pending[app.Path] = true
	}
	label := "Patching"
	if op == "remove" {
		label = "Removing patches from"
	}
	m.setStatus(StatusLoading, fmt.Sprintf("%s %d apps...", label, len(targets)))
	m.refreshDelegate()
	return m, tea.Batch(m.statusSpinner.Tick, m.runOp(op, targets))
}

// rescan returns a command that scans the root and re-classifies hand-added apps.
func (m Model) rescan() tea.Cmd {
	scanner := m.scanner
	root := m.state.Root
	extra := append([]string(nil), m.extraApps...)
	logger := m.logger
	return func() tea.Msg {
		state, err := scanner.Scan(root)
		for _, dir := range extra {
			if info, statErr := os.Stat(dir); statErr == nil && info.IsDir() {
				state.Put(scanner.ScanApp(dir))
			}
		}
		if err != nil {
			logger.Warn("scan failed", "root", root, "error", err)
		} else {
			logger.Info("scan complete", "root", root, "apps", len(state.Apps))
		}
		return scanDoneMsg{state: state, err: err}
	}
}

// runOp returns a command that applies op to each app in turn. Failures are
// collected and do not stop the batch.
func (m Model) runOp(op string, apps []discovery.AppRecord) tea.Cmd {
	engine := m.engine
	return func() tea.Msg {
		done := opDoneMsg{op: op}
		for _, app := range apps {
			var err error
			if op == "patch" {
				err = engine.Patch(app)
			} else {
				err = engine.Unpatch(app)
			}
			if err != nil {
				done.errs = append(done.errs, err)
				continue
			}
			done.success++
		}
		return done
	}
}

func (m Model) preview(app discovery.AppRecord) tea.Cmd {
	engine := m.engine
	return func() tea.Msg {
		diff, err := engine.Preview(app)
		return previewMsg{app: app.Name, diff: diff, err: err}
	}
}

// consumeLogEntries waits for the next log entry and drains any that are
// already queued behind it.
func (m Model) consumeLogEntries() tea.Cmd {
	ch := m.logCh
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		entry, ok := <-ch
		if !ok {
			return nil
		}
		entries := []logging.LogEntry{entry}
		for {
			select {
			case e, ok := <-ch:
				if !ok {
					return logEntriesMsg{entries: entries}
				}
				entries = append(entries, e)
			default:
				return logEntriesMsg{entries: entries}
			}
		}
	}
}

// pruneMarks drops marks for apps that are gone or no longer have an entry.
func (m *Model) pruneMarks() {
	keep := make(map[string]bool)
	for _, app := range m.state.Apps {
		if m.marked[app.Path] && app.HasEntry() {
			keep[app.Path] = true
		}
	}
	m.marked = keep
}

func (m *Model) resize() {
	layout := ComputeLayout(m.width, m.height, m.logPanelOpen)
	// One line below the list holds the status summary.
	m.appList.SetSize(m.width, max(layout.ListHeight()-1, 1))
	m.logViewport.Width = layout.Logs.Width
	m.logViewport.Height = max(layout.Logs.Height-1, 1)

	// Panels take the list region minus the box border and padding.
	m.viewport.Width = max(m.width-6, 1)
	m.viewport.Height = max(layout.List.Height-4, 1)
}

func (m *Model) updateLogViewportContent() {
	lines := make([]string, 0, len(m.logEntries))
	for _, entry := range m.logEntries {
		lines = append(lines, m.renderLogEntry(entry))
	}
	m.logViewport.SetContent(strings.Join(lines, "\n"))
	m.logViewport.GotoBottom()
}
