// pattern: Functional Core

package discovery

import (
	"path/filepath"
	"strings"
)

// Status is the patch state of an app as derived from disk.
type Status int

const (
	StatusNoEntry Status = iota
	StatusUnpatched
	StatusPatched
)

// String returns the status in lower-case form for logs and JSON.
func (s Status) String() string {
	switch s {
	case StatusPatched:
		return "patched"
	case StatusUnpatched:
		return "unpatched"
	default:
		return "no-entry"
	}
}

// Label returns the status as shown to users.
func (s Status) Label() string {
	switch s {
	case StatusPatched:
		return "Patched"
	case StatusUnpatched:
		return "Not patched"
	default:
		return "No Python"
	}
}

// MarshalText lets Status encode as its String form.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// AppRecord describes one app directory found under the root.
type AppRecord struct {
	Name    string   `json:"name"`    // Directory base name
	Path    string   `json:"path"`    // Absolute path to the app directory
	Entries []string `json:"entries"` // Candidate entry files in walk order
	Patched bool     `json:"patched"` // Any entry carries a patch marker
	Status  Status   `json:"status"`
}

// HasEntry reports whether patch and remove apply to this app.
func (r AppRecord) HasEntry() bool {
	return len(r.Entries) > 0
}

// MainEntry returns the entry file operations act on, or "" if none.
func (r AppRecord) MainEntry() string {
	if len(r.Entries) == 0 {
		return ""
	}
	return r.Entries[0]
}

// EntryText lists entry base names joined by ", ", or "None".
func (r AppRecord) EntryText() string {
	if len(r.Entries) == 0 {
		return "None"
	}
	names := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		names[i] = filepath.Base(e)
	}
	return strings.Join(names, ", ")
}

// State is the result of a scan, owned by whichever front end drives it.
type State struct {
	Root string      `json:"root"`
	Apps []AppRecord `json:"apps"`
}

// Lookup finds an app by name.
func (s *State) Lookup(name string) (AppRecord, bool) {
	for _, app := range s.Apps {
		if app.Name == name {
			return app, true
		}
	}
	return AppRecord{}, false
}

// Put replaces the record with the same path or appends it.
func (s *State) Put(rec AppRecord) {
	for i, app := range s.Apps {
		if app.Path == rec.Path {
			s.Apps[i] = rec
			return
		}
	}
	s.Apps = append(s.Apps, rec)
}

// Count returns how many apps are in the given status.
func (s *State) Count(status Status) int {
	n := 0
	for _, app := range s.Apps {
		if app.Status == status {
			n++
		}
	}
	return n
}
