// pattern: Imperative Shell

package patch

import (
	"io"
	"os"
	"strings"
)

// headSize is how much of each entry file the detector inspects.
const headSize = 2000

// Detector decides whether a set of entry files already carries the patch.
type Detector interface {
	IsPatched(entries []string) bool
}

// MarkerDetector is a heuristic Detector: a file counts as patched when its
// head contains either marker, even inside a comment or string literal.
type MarkerDetector struct{}

// IsPatched returns true if any readable entry contains a marker in its
// first headSize bytes. Unreadable files are skipped.
func (MarkerDetector) IsPatched(entries []string) bool {
	for _, entry := range entries {
		head, err := readHead(entry)
		if err != nil {
			continue
		}
		if strings.Contains(head, IdentifierMarker) || strings.Contains(head, FunctionMarker) {
			return true
		}
	}
	return false
}

// readHead reads up to headSize bytes and drops invalid UTF-8 sequences.
func readHead(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf, err := io.ReadAll(io.LimitReader(f, headSize))
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(buf), ""), nil
}
