// pattern: Imperative Shell
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	flag "github.com/spf13/pflag"

	"boostinstaller/internal/about"
	"boostinstaller/internal/config"
	"boostinstaller/internal/discovery"
	"boostinstaller/internal/instance"
	"boostinstaller/internal/logging"
	"boostinstaller/internal/patch"
)

// Deps carries what the commands operate on. main builds it once.
type Deps struct {
	// Root overrides the stored root path when non-empty (--root).
	Root      string
	PathStore *config.PathStore
	Scanner   *discovery.Scanner
	Engine    *patch.Engine
	// StateDir holds the instance lock taken by mutating commands.
	StateDir string
	Logger   *logging.ScopedLogger
}

// ResolveRoot returns the --root override or the stored root path. A
// broken store is logged and the default path is used.
func (d *Deps) ResolveRoot() string {
	if d.Root != "" {
		return config.ExpandHome(d.Root)
	}
	root, err := d.PathStore.Load()
	if err != nil {
		d.Logger.Warn("failed to load root path, using default", "file", d.PathStore.File(), "error", err)
	}
	return root
}

// BuildApp creates and configures the CLI application with all commands.
func BuildApp(version string, deps *Deps) *App {
	app := NewApp(version)
	if deps.Logger == nil {
		deps.Logger = logging.NopLogger()
	}

	app.AddCommand(&Command{
		Name:    "scan",
		Summary: "List apps under the root path with their patch status",
		Usage:   "Usage: boost-installer scan [--json]",
		Run: func(args []string) error {
			fs := flag.NewFlagSet("scan", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			asJSON := fs.Bool("json", false, "print records as JSON")
			if err := fs.Parse(args); err != nil {
				return fmt.Errorf("usage: boost-installer scan [--json]")
			}
			return runScan(app.Stdout, deps, *asJSON)
		},
	})

	app.AddCommand(&Command{
		Name:    "patch",
		Summary: "Insert the boost block into apps",
		Usage:   "Usage: boost-installer patch [--dry-run] [--all] <app-name-or-dir>...",
		Run: func(args []string) error {
			fs := flag.NewFlagSet("patch", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			dryRun := fs.BoolP("dry-run", "n", false, "print the change without writing")
			all := fs.BoolP("all", "a", false, "patch every unpatched app")
			if err := fs.Parse(args); err != nil {
				return fmt.Errorf("usage: boost-installer patch [--dry-run] [--all] <app-name-or-dir>...")
			}
			if *dryRun {
				return runPreview(app.Stdout, deps, fs.Args(), *all)
			}
			return runBatch(app.Stdout, deps, opPatch, fs.Args(), *all)
		},
	})

	app.AddCommand(&Command{
		Name:    "remove",
		Summary: "Remove the boost block from apps",
		Usage:   "Usage: boost-installer remove [--all] <app-name-or-dir>...",
		Run: func(args []string) error {
			fs := flag.NewFlagSet("remove", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			all := fs.BoolP("all", "a", false, "remove from every patched app")
			if err := fs.Parse(args); err != nil {
				return fmt.Errorf("usage: boost-installer remove [--all] <app-name-or-dir>...")
			}
			return runBatch(app.Stdout, deps, opRemove, fs.Args(), *all)
		},
	})

	app.AddCommand(&Command{
		Name:    "path",
		Summary: "Print the root path, or store a new one",
		Usage:   "Usage: boost-installer path [new-path]",
		Run: func(args []string) error {
			if len(args) > 1 {
				return fmt.Errorf("usage: boost-installer path [new-path]")
			}
			if len(args) == 0 {
				fmt.Fprintln(app.Stdout, deps.ResolveRoot())
				return nil
			}
			return runSetPath(app.Stdout, deps, args[0])
		},
	})

	app.AddCommand(&Command{
		Name:    "about",
		Summary: "Show project information",
		Usage:   "Usage: boost-installer about",
		Run: func(args []string) error {
			fmt.Fprintln(app.Stdout, about.Text(version))
			return nil
		},
	})

	app.AddCommand(&Command{
		Name:    "version",
		Summary: "Print version and exit",
		Usage:   "Usage: boost-installer version",
		Run: func(args []string) error {
			fmt.Fprintln(app.Stdout, version)
			return nil
		},
	})

	return app
}

func runScan(w io.Writer, deps *Deps, asJSON bool) error {
	state, err := deps.Scanner.Scan(deps.ResolveRoot())
	if errors.Is(err, discovery.ErrRootNotFound) {
		return err
	}
	if err != nil {
		deps.Logger.Warn("scan incomplete", "root", state.Root, "error", err)
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(state); encErr != nil {
			return encErr
		}
		return err
	}

	fmt.Fprint(w, RenderTable(state))
	fmt.Fprintf(w, "Found %d apps in %s\n", len(state.Apps), state.Root)
	return err
}

// RenderTable renders scan results as a bordered table.
func RenderTable(state *discovery.State) string {
	header := lipgloss.NewStyle().Bold(true)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("App", "Status", "Entry", "Path").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return lipgloss.NewStyle()
		})
	for _, app := range state.Apps {
		t.Row(app.Name, app.Status.Label(), app.EntryText(), app.Path)
	}
	return t.String() + "\n"
}

type operation int

const (
	opPatch operation = iota
	opRemove
)

func (o operation) verb() string {
	if o == opPatch {
		return "patched"
	}
	return "removed patch from"
}

// selectApps resolves CLI arguments into records. An argument naming a
// directory on disk is classified on its own; anything else is looked up by
// name in a scan of the root. With all set, every app in the given status is
// selected.
func selectApps(deps *Deps, args []string, all bool, want discovery.Status) ([]discovery.AppRecord, []error, error) {
	if len(args) == 0 && !all {
		return nil, nil, errors.New("no apps given (pass app names or --all)")
	}

	var state *discovery.State
	scan := func() (*discovery.State, error) {
		if state != nil {
			return state, nil
		}
		s, err := deps.Scanner.Scan(deps.ResolveRoot())
		if errors.Is(err, discovery.ErrRootNotFound) {
			return nil, err
		}
		if err != nil {
			deps.Logger.Warn("scan incomplete", "root", s.Root, "error", err)
		}
		state = s
		return state, nil
	}

	var apps []discovery.AppRecord
	var missing []error

	if all {
		s, err := scan()
		if err != nil {
			return nil, nil, err
		}
		for _, app := range s.Apps {
			if app.Status == want {
				apps = append(apps, app)
			}
		}
	}

	for _, arg := range args {
		if strings.ContainsRune(arg, filepath.Separator) {
			if info, err := os.Stat(arg); err == nil && info.IsDir() {
				abs, err := filepath.Abs(arg)
				if err != nil {
					abs = arg
				}
				apps = append(apps, deps.Scanner.ScanApp(abs))
				continue
			}
		}
		s, err := scan()
		if err != nil {
			return nil, nil, err
		}
		app, ok := s.Lookup(arg)
		if !ok {
			missing = append(missing, fmt.Errorf("%s: not found under %s", arg, s.Root))
			continue
		}
		apps = append(apps, app)
	}
	return apps, missing, nil
}

func runBatch(w io.Writer, deps *Deps, op operation, args []string, all bool) error {
	want := discovery.StatusUnpatched
	if op == opRemove {
		want = discovery.StatusPatched
	}
	apps, missing, err := selectApps(deps, args, all, want)
	if err != nil {
		return err
	}

	fl, err := instance.Lock(deps.StateDir)
	if err != nil {
		return err
	}
	defer instance.Unlock(fl)

	failed := len(missing)
	for _, m := range missing {
		fmt.Fprintf(w, "FAIL %v\n", m)
	}

	success := 0
	for _, app := range apps {
		var opErr error
		if op == opPatch {
			opErr = deps.Engine.Patch(app)
		} else {
			opErr = deps.Engine.Unpatch(app)
		}
		if opErr != nil {
			failed++
			fmt.Fprintf(w, "FAIL %v\n", opErr)
			continue
		}
		success++
		fmt.Fprintf(w, "ok   %s\n", app.Name)
	}

	fmt.Fprintf(w, "Successfully %s %d apps\n", op.verb(), success)
	if failed > 0 {
		return fmt.Errorf("%d of %d apps failed", failed, failed+success)
	}
	return nil
}

func runPreview(w io.Writer, deps *Deps, args []string, all bool) error {
	apps, missing, err := selectApps(deps, args, all, discovery.StatusUnpatched)
	if err != nil {
		return err
	}
	failed := len(missing)
	for _, m := range missing {
		fmt.Fprintf(w, "FAIL %v\n", m)
	}
	for _, app := range apps {
		diff, err := deps.Engine.Preview(app)
		if err != nil {
			failed++
			fmt.Fprintf(w, "FAIL %v\n", err)
			continue
		}
		fmt.Fprintf(w, "--- %s (%s)\n%s\n", app.Name, app.MainEntry(), diff)
	}
	if failed > 0 {
		return fmt.Errorf("%d apps cannot be patched", failed)
	}
	return nil
}

func runSetPath(w io.Writer, deps *Deps, newPath string) error {
	abs, err := filepath.Abs(config.ExpandHome(newPath))
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%s is not a directory", abs)
	}
	if err := deps.PathStore.Save(abs); err != nil {
		return fmt.Errorf("failed to save root path: %w", err)
	}
	deps.Logger.Info("root path changed", "root", abs)
	fmt.Fprintf(w, "Root path set to %s\n", abs)
	return nil
}
