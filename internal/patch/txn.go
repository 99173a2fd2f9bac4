// pattern: Imperative Shell

package patch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/moby/sys/atomicwriter"

	"boostinstaller/internal/logging"
)

// txn applies file mutations in order and can undo the applied ones in
// reverse order.
type txn struct {
	logger *logging.ScopedLogger
	undo   []undoStep
}

type undoStep struct {
	name string
	fn   func() error
}

// do runs apply and, on success, records undo for rollback.
func (t *txn) do(name string, apply, undo func() error) error {
	if err := apply(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	t.undo = append(t.undo, undoStep{name: name, fn: undo})
	return nil
}

// rollback undoes applied steps newest first and returns every undo failure.
func (t *txn) rollback() error {
	var errs []error
	for i := len(t.undo) - 1; i >= 0; i-- {
		step := t.undo[i]
		if err := step.fn(); err != nil {
			t.logger.Error("rollback step failed", "step", step.name, "error", err)
			errs = append(errs, fmt.Errorf("undo %s: %w", step.name, err))
			continue
		}
		t.logger.Debug("rolled back", "step", step.name)
	}
	t.undo = nil
	return errors.Join(errs...)
}

// snapshot captures the current state of path so it can be put back later.
// A missing file is restored by removing whatever was written there.
func snapshot(path string) (func() error, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return func() error {
			if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			return nil
		}, nil
	}
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mode := info.Mode().Perm()
	return func() error {
		return atomicwriter.WriteFile(path, data, mode)
	}, nil
}

// copyFile copies src over dst atomically, keeping the permission bits and
// modification time of src.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := atomicwriter.WriteFile(dst, data, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
