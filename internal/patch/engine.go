// pattern: Imperative Shell

package patch

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/moby/sys/atomicwriter"

	"boostinstaller/internal/discovery"
	"boostinstaller/internal/logging"
)

// Engine patches and unpatches the first entry file of an app.
type Engine struct {
	modulePath string
	detector   Detector
	logger     *logging.ScopedLogger

	// writeFile replaces entry contents; swapped in tests to inject failures.
	writeFile func(name string, data []byte, perm os.FileMode) error
}

// NewEngine creates an engine that copies the auxiliary module from modulePath.
func NewEngine(modulePath string, detector Detector, logger *logging.ScopedLogger) *Engine {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Engine{
		modulePath: modulePath,
		detector:   detector,
		logger:     logger,
		writeFile:  atomicwriter.WriteFile,
	}
}

// ModulePath returns the auxiliary module source path.
func (e *Engine) ModulePath() string {
	return e.modulePath
}

// BackupPath returns the backup location for an entry file.
func BackupPath(entry string) string {
	return entry + BackupSuffix
}

// Patch inserts Block into the app's first entry file. It copies the
// auxiliary module next to the entry and writes a backup first. If any step
// fails, the steps already applied are undone.
func (e *Engine) Patch(app discovery.AppRecord) error {
	fail := func(err error) error {
		e.logger.Warn("patch failed", "app", app.Name, "error", err)
		return &Error{Op: "patch", App: app.Name, Err: err}
	}

	if len(app.Entries) == 0 {
		return fail(ErrNoEntry)
	}
	if !exists(e.modulePath) {
		return fail(ErrModuleNotFound)
	}

	entry := app.Entries[0]
	if e.detector.IsPatched([]string{entry}) {
		return fail(ErrAlreadyPatched)
	}

	info, err := os.Stat(entry)
	if err != nil {
		return fail(err)
	}
	original, err := os.ReadFile(entry)
	if err != nil {
		return fail(err)
	}
	patched := Insert(string(original))

	moduleDest := filepath.Join(filepath.Dir(entry), ModuleFileName)
	backup := BackupPath(entry)

	restoreModule, err := snapshot(moduleDest)
	if err != nil {
		return fail(err)
	}
	restoreBackup, err := snapshot(backup)
	if err != nil {
		return fail(err)
	}
	mode := info.Mode().Perm()

	t := &txn{logger: e.logger.With("app", app.Name, "op", "patch")}
	err = t.do("copy module",
		func() error { return copyFile(e.modulePath, moduleDest) },
		restoreModule)
	if err == nil {
		err = t.do("write backup",
			func() error { return copyFile(entry, backup) },
			restoreBackup)
	}
	if err == nil {
		err = t.do("write entry",
			func() error { return e.writeFile(entry, []byte(patched), mode) },
			func() error { return atomicwriter.WriteFile(entry, original, mode) })
	}
	if err != nil {
		return fail(errors.Join(err, t.rollback()))
	}

	e.logger.Info("patched", "app", app.Name, "entry", entry, "backup", backup)
	return nil
}

// Unpatch reverts the app's first entry file. A backup is restored verbatim
// and deleted when present; otherwise the marked block is cut out of the
// file. The auxiliary module is removed from the entry directory either way.
func (e *Engine) Unpatch(app discovery.AppRecord) error {
	fail := func(err error) error {
		e.logger.Warn("remove failed", "app", app.Name, "error", err)
		return &Error{Op: "remove", App: app.Name, Err: err}
	}

	if len(app.Entries) == 0 {
		return fail(ErrNoEntry)
	}

	entry := app.Entries[0]
	backup := BackupPath(entry)
	moduleDest := filepath.Join(filepath.Dir(entry), ModuleFileName)

	restoreEntry, err := snapshot(entry)
	if err != nil {
		return fail(err)
	}

	t := &txn{logger: e.logger.With("app", app.Name, "op", "remove")}
	restored := "excision"

	if exists(backup) {
		restored = "backup"
		info, err := os.Stat(backup)
		if err != nil {
			return fail(err)
		}
		data, err := os.ReadFile(backup)
		if err != nil {
			return fail(err)
		}
		restoreBackup, err := snapshot(backup)
		if err != nil {
			return fail(err)
		}
		err = t.do("restore entry",
			func() error { return e.writeFile(entry, data, info.Mode().Perm()) },
			restoreEntry)
		if err == nil {
			err = t.do("remove backup",
				func() error { return os.Remove(backup) },
				restoreBackup)
		}
		if err != nil {
			return fail(errors.Join(err, t.rollback()))
		}
	} else {
		info, err := os.Stat(entry)
		if err != nil {
			return fail(err)
		}
		content, err := os.ReadFile(entry)
		if err != nil {
			return fail(err)
		}
		stripped, err := Excise(string(content))
		if err != nil {
			return fail(err)
		}
		err = t.do("write entry",
			func() error { return e.writeFile(entry, []byte(stripped), info.Mode().Perm()) },
			restoreEntry)
		if err != nil {
			return fail(errors.Join(err, t.rollback()))
		}
	}

	if exists(moduleDest) {
		restoreModule, err := snapshot(moduleDest)
		if err != nil {
			return fail(errors.Join(err, t.rollback()))
		}
		err = t.do("remove module",
			func() error { return removeIfExists(moduleDest) },
			restoreModule)
		if err != nil {
			return fail(errors.Join(err, t.rollback()))
		}
	}

	e.logger.Info("removed patch", "app", app.Name, "entry", entry, "via", restored)
	return nil
}

// Preview returns a line diff of what Patch would write, without touching
// the filesystem.
func (e *Engine) Preview(app discovery.AppRecord) (string, error) {
	if len(app.Entries) == 0 {
		return "", &Error{Op: "preview", App: app.Name, Err: ErrNoEntry}
	}
	entry := app.Entries[0]
	if e.detector.IsPatched([]string{entry}) {
		return "", &Error{Op: "preview", App: app.Name, Err: ErrAlreadyPatched}
	}
	original, err := os.ReadFile(entry)
	if err != nil {
		return "", &Error{Op: "preview", App: app.Name, Err: err}
	}
	return LineDiff(string(original), Insert(string(original))), nil
}
