package tui

import (
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"boostinstaller/internal/config"
	"boostinstaller/internal/discovery"
	"boostinstaller/internal/logging"
	"boostinstaller/internal/patch"
)

// maxLogEntries caps the log panel buffer.
const maxLogEntries = 1000

// StatusLevel represents the type of status message being displayed.
type StatusLevel int

const (
	StatusInfo StatusLevel = iota
	StatusSuccess
	StatusError
	StatusLoading
)

// String returns the string representation of a StatusLevel.
func (s StatusLevel) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	case StatusLoading:
		return "loading"
	default:
		return "info"
	}
}

// viewMode is what currently owns the keyboard.
type viewMode int

const (
	modeList viewMode = iota
	modeInput
	modePreview
	modeAbout
)

// inputPurpose is what the text input is collecting.
type inputPurpose int

const (
	inputRootPath inputPurpose = iota
	inputAppDir
)

// Options carries the dependencies of the TUI.
type Options struct {
	Version   string
	Theme     string
	Root      string
	PathStore *config.PathStore
	Scanner   *discovery.Scanner
	Engine    *patch.Engine
	Logs      logging.LoggerProvider
	// LogEntries feeds the log panel. May be nil.
	LogEntries <-chan logging.LogEntry
	// Copy writes to the system clipboard. Defaults to clipboard.WriteAll.
	Copy func(string) error
}

// Model represents the TUI application state.
type Model struct {
	width   int
	height  int
	styles  *Styles
	version string

	scanner   *discovery.Scanner
	engine    *patch.Engine
	pathStore *config.PathStore
	logger    *logging.ScopedLogger
	logCh     <-chan logging.LogEntry
	copy      func(string) error

	state     *discovery.State
	extraApps []string // app dirs added by hand, kept across rescans
	appList   list.Model
	delegate  appDelegate
	marked    map[string]bool
	pending   map[string]bool
	busy      bool

	mode     viewMode
	purpose  inputPurpose
	input    textinput.Model
	viewport viewport.Model
	title    string // preview / about panel title

	logPanelOpen bool
	logViewport  viewport.Model
	logEntries   []logging.LogEntry

	statusSpinner spinner.Model
	statusMessage string
	statusLevel   StatusLevel
	err           error
	afterScan     *statusLine // replaces "Found N apps" after an operation's rescan
}

// statusLine is a status bar message with its level.
type statusLine struct {
	level StatusLevel
	text  string
	err   error
}

// NewModel creates a new TUI model.
func NewModel(opts Options) Model {
	styles := NewStyles(opts.Theme)

	logger := logging.NopLogger()
	if opts.Logs != nil {
		logger = opts.Logs.For("tui")
	}
	copyFn := opts.Copy
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}

	delegate := newAppDelegate(styles)
	appList := list.New([]list.Item{}, delegate, 0, 0)
	appList.SetShowTitle(false)
	appList.SetShowStatusBar(false)
	appList.SetFilteringEnabled(false)
	appList.SetShowHelp(false)
	appList.KeyMap.Quit.SetEnabled(false)
	appList.KeyMap.ForceQuit.SetEnabled(false)
	appList.KeyMap.PrevPage = key.NewBinding(key.WithKeys("pgup", "left"))
	appList.KeyMap.NextPage = key.NewBinding(key.WithKeys("pgdown", "right"))

	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 4096

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.AccentStyle()

	logger.Info("tui initialized", "root", opts.Root)

	return Model{
		styles:        styles,
		version:       opts.Version,
		scanner:       opts.Scanner,
		engine:        opts.Engine,
		pathStore:     opts.PathStore,
		logger:        logger,
		logCh:         opts.LogEntries,
		copy:          copyFn,
		state:         &discovery.State{Root: opts.Root},
		appList:       appList,
		delegate:      delegate,
		marked:        make(map[string]bool),
		pending:       make(map[string]bool),
		input:         input,
		viewport:      viewport.New(0, 0),
		logViewport:   viewport.New(0, 0),
		statusSpinner: sp,
		statusMessage: "Ready",
	}
}

// Init returns the initial command to run.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.rescan(),
		m.statusSpinner.Tick,
		m.consumeLogEntries(),
	)
}

// Root returns the directory currently being scanned.
func (m Model) Root() string {
	return m.state.Root
}

// Apps returns the records from the last scan.
func (m Model) Apps() []discovery.AppRecord {
	return m.state.Apps
}

func (m *Model) setStatus(level StatusLevel, msg string) {
	m.statusLevel = level
	m.statusMessage = msg
	if level != StatusError {
		m.err = nil
	}
}

func (m *Model) setError(err error) {
	m.fail(err.Error(), err)
}

// fail shows text as an error status while keeping err for the log.
func (m *Model) fail(text string, err error) {
	m.err = err
	m.statusLevel = StatusError
	m.statusMessage = text
}

func (m *Model) clearStatus() {
	m.err = nil
	m.statusLevel = StatusInfo
	m.statusMessage = ""
}

func (m *Model) addLogEntry(entry logging.LogEntry) {
	m.logEntries = append(m.logEntries, entry)
	if len(m.logEntries) > maxLogEntries {
		m.logEntries = m.logEntries[len(m.logEntries)-maxLogEntries:]
	}
}

// selectedApp returns the app under the cursor.
func (m Model) selectedApp() (discovery.AppRecord, bool) {
	item, ok := m.appList.SelectedItem().(appItem)
	if !ok {
		return discovery.AppRecord{}, false
	}
	return item.app, true
}

// targets returns the marked apps in list order, or the app under the
// cursor when nothing is marked.
func (m Model) targets() []discovery.AppRecord {
	var apps []discovery.AppRecord
	for _, app := range m.state.Apps {
		if m.marked[app.Path] {
			apps = append(apps, app)
		}
	}
	if len(apps) > 0 {
		return apps
	}
	if app, ok := m.selectedApp(); ok {
		return []discovery.AppRecord{app}
	}
	return nil
}

// syncList pushes the current state and marks into the list.
func (m *Model) syncList() tea.Cmd {
	m.refreshDelegate()
	return m.appList.SetItems(toListItems(m.state.Apps))
}

func (m *Model) refreshDelegate() {
	frame := ""
	if m.busy {
		frame = m.statusSpinner.View()
	}
	m.delegate = m.delegate.WithState(m.marked, frame, m.pending)
	m.appList.SetDelegate(m.delegate)
}
