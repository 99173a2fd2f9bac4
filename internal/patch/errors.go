// pattern: Functional Core

package patch

import (
	"errors"
	"fmt"
)

var (
	ErrNoEntry           = errors.New("no python entry point")
	ErrModuleNotFound    = errors.New(ModuleFileName + " not found")
	ErrAlreadyPatched    = errors.New("already patched")
	ErrNotPatched        = errors.New("no patch markers found")
	ErrCallMarkerMissing = errors.New("start marker present but " + CallLine + " line missing")
)

// Error reports a failed patch or remove operation for one app.
type Error struct {
	Op  string // "patch" or "remove"
	App string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.App, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
