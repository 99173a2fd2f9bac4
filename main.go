// pattern: Imperative Shell
package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"

	"boostinstaller/internal/cli"
	"boostinstaller/internal/config"
	"boostinstaller/internal/discovery"
	"boostinstaller/internal/instance"
	"boostinstaller/internal/logging"
	"boostinstaller/internal/patch"
	"boostinstaller/internal/tui"
)

var version = "dev"

const logFileName = "boost-installer.log"

// options are the global flags.
type options struct {
	root      string
	module    string
	configDir string
	logLevel  string
}

// runtime is everything wired from options and config.yaml.
type runtime struct {
	cfg        config.Config
	stateDir   string
	logManager *logging.Manager // nil when the log file cannot be opened
	deps       *cli.Deps
}

func main() {
	// Stop parsing flags after the first non-flag arg (the subcommand),
	// so that --help after a subcommand is handled by the subcommand.
	flag.CommandLine.SetInterspersed(false)

	var opts options
	flag.StringVarP(&opts.root, "root", "r", "", "Pinokio api directory to scan (default: stored path)")
	flag.StringVarP(&opts.module, "module", "m", "", "path to boost_v11_plus.py (default: next to the executable)")
	flag.StringVarP(&opts.configDir, "config-dir", "c", "", "config and state directory (default: XDG dirs)")
	flag.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (default: from config.yaml)")

	flag.Usage = func() {
		app := cli.BuildApp(version, &cli.Deps{})
		app.PrintHelp(os.Stderr)
		flag.PrintDefaults()
	}

	flag.Parse()

	rt := setup(opts)
	if rt.logManager != nil {
		defer func() { _ = rt.logManager.Close() }()
	}

	app := cli.BuildApp(version, rt.deps)
	if app.Execute(flag.Args()) {
		runTUI(rt)
	}
}

// setup loads settings, opens the log and builds the scanner and engine.
// Failures to load settings or open the log are reported and tolerated.
func setup(opts options) runtime {
	cfg, err := config.Load(opts.configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.module != "" {
		cfg.ModulePath = opts.module
	}

	stateDir := config.ResolveStateDir(opts.configDir)

	rt := runtime{cfg: cfg, stateDir: stateDir}
	var logs logging.LoggerProvider = nopProvider{}
	logManager, err := logging.NewManager(logging.Config{
		FilePath: filepath.Join(stateDir, logFileName),
		Level:    cfg.LogLevel,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging to file disabled: %v\n", err)
	} else {
		rt.logManager = logManager
		logs = logManager
	}

	appLogger := logs.For("app")
	modulePath := cfg.ResolveModulePath()
	appLogger.Debug("starting", "version", version, "module", modulePath, "state_dir", stateDir)

	detector := patch.MarkerDetector{}
	rt.deps = &cli.Deps{
		Root:      opts.root,
		PathStore: config.NewPathStore(config.DefaultPathStoreFile()),
		Scanner:   discovery.NewScanner(detector),
		Engine:    patch.NewEngine(modulePath, detector, logs.For("patch")),
		StateDir:  stateDir,
		Logger:    appLogger,
	}
	return rt
}

// runTUI launches the interactive TUI.
func runTUI(rt runtime) {
	fl, err := instance.Lock(rt.stateDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer instance.Unlock(fl)

	appLogger := rt.deps.Logger
	appLogger.Info("application starting", "version", version)

	opts := tui.Options{
		Version:   version,
		Theme:     rt.cfg.Theme,
		Root:      rt.deps.ResolveRoot(),
		PathStore: rt.deps.PathStore,
		Scanner:   rt.deps.Scanner,
		Engine:    rt.deps.Engine,
	}
	if rt.logManager != nil {
		opts.Logs = rt.logManager
		opts.LogEntries = rt.logManager.Entries()
	}

	p := tea.NewProgram(tui.NewModel(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		appLogger.Error("application exited with error", "error", err)
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}

	appLogger.Info("application stopped")
}

// nopProvider hands out discarding loggers when the log file is unavailable.
type nopProvider struct{}

func (nopProvider) For(string) *logging.ScopedLogger {
	return logging.NopLogger()
}
