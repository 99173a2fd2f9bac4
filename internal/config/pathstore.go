// pattern: Imperative Shell

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// DefaultRootPath is used whenever the stored root path cannot be read.
const DefaultRootPath = "/home/oem/pinokio/api"

// pathStoreFile is the legacy location of the stored root path.
const pathStoreFile = ".boost_installer_config.json"

type storedPath struct {
	PinokioPath string `json:"pinokio_path"`
}

// PathStore persists the Pinokio root path as a one-key JSON object.
type PathStore struct {
	file string
}

// NewPathStore creates a store backed by file.
func NewPathStore(file string) *PathStore {
	return &PathStore{file: file}
}

// DefaultPathStoreFile returns ~/.boost_installer_config.json.
func DefaultPathStoreFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return pathStoreFile
	}
	return filepath.Join(home, pathStoreFile)
}

// File returns the backing file path.
func (s *PathStore) File() string {
	return s.file
}

// Load returns the stored root path. It always returns a usable path:
// DefaultRootPath when the file is absent, empty, or unreadable. The error
// is non-nil only for unreadable or malformed files, so callers can log it.
func (s *PathStore) Load() (string, error) {
	data, err := os.ReadFile(s.file)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultRootPath, nil
		}
		return DefaultRootPath, err
	}

	var stored storedPath
	if err := json.Unmarshal(data, &stored); err != nil {
		return DefaultRootPath, err
	}
	if stored.PinokioPath == "" {
		return DefaultRootPath, nil
	}
	return stored.PinokioPath, nil
}

// Save overwrites the file with path.
func (s *PathStore) Save(path string) error {
	data, err := json.Marshal(storedPath{PinokioPath: path})
	if err != nil {
		return err
	}
	return os.WriteFile(s.file, data, 0644)
}
