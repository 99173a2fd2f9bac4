// pattern: Imperative Shell

package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// MaxEntryDepth bounds how many path elements below the app directory an
// entry file may sit, counting the file itself: app/a/b/main.py is found,
// app/a/b/c/main.py is not.
const MaxEntryDepth = 3

// EntryNames are the file names recognised as app entry points.
var EntryNames = []string{
	"main.py",
	"app.py",
	"webui.py",
	"run.py",
	"server.py",
	"launch.py",
	"wgp.py",
	"loader.py",
}

// ErrRootNotFound is returned when the scan root does not exist.
var ErrRootNotFound = errors.New("root path not found")

// Detector classifies entry files as patched or not.
type Detector interface {
	IsPatched(entries []string) bool
}

// Scanner discovers apps under a root directory.
type Scanner struct {
	detector Detector
}

// NewScanner creates a scanner that classifies entries with detector.
func NewScanner(detector Detector) *Scanner {
	return &Scanner{detector: detector}
}

// Scan builds one AppRecord per immediate subdirectory of root, whether or
// not it has an entry file. If listing root fails part way, the records
// collected so far are returned along with the error.
func (s *Scanner) Scan(root string) (*State, error) {
	state := &State{Root: root}

	if _, err := os.Stat(root); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return state, fmt.Errorf("%w: %s", ErrRootNotFound, root)
		}
		return state, fmt.Errorf("scan %s: %w", root, err)
	}

	entries, readErr := os.ReadDir(root)
	for _, entry := range entries {
		appPath := filepath.Join(root, entry.Name())
		if !isDir(entry, appPath) {
			continue
		}
		state.Apps = append(state.Apps, s.ScanApp(appPath))
	}

	if readErr != nil {
		return state, fmt.Errorf("scan %s: %w", root, readErr)
	}
	return state, nil
}

// ScanApp classifies a single app directory.
func (s *Scanner) ScanApp(appPath string) AppRecord {
	rec := AppRecord{
		Name:    filepath.Base(appPath),
		Path:    appPath,
		Entries: FindEntries(appPath),
	}
	if !rec.HasEntry() {
		rec.Status = StatusNoEntry
		return rec
	}
	rec.Patched = s.detector.IsPatched(rec.Entries)
	if rec.Patched {
		rec.Status = StatusPatched
	} else {
		rec.Status = StatusUnpatched
	}
	return rec
}

// FindEntries walks appPath top-down, listing each directory's matching
// files before descending into its subdirectories, and returns entry files
// no deeper than MaxEntryDepth. Unreadable directories are skipped.
func FindEntries(appPath string) []string {
	var found []string
	walkEntries(appPath, 1, &found)
	return found
}

// walkEntries scans dir, whose files sit depth elements below the app root.
func walkEntries(dir string, depth int, found *[]string) {
	if depth > MaxEntryDepth {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	var subdirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			subdirs = append(subdirs, filepath.Join(dir, entry.Name()))
			continue
		}
		if slices.Contains(EntryNames, entry.Name()) {
			*found = append(*found, filepath.Join(dir, entry.Name()))
		}
	}
	for _, sub := range subdirs {
		walkEntries(sub, depth+1, found)
	}
}

// isDir reports whether entry is a directory, following symlinks.
func isDir(entry os.DirEntry, path string) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
