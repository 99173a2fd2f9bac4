// pattern: Functional Core

package patch

import (
	"regexp"
	"slices"
	"strings"
)

const (
	// ModuleFileName is the auxiliary module copied next to a patched entry file.
	ModuleFileName = "boost_v11_plus.py"

	// BackupSuffix is appended to an entry path to form its backup path.
	BackupSuffix = ".boost_backup"

	// IdentifierMarker and FunctionMarker are the detection markers.
	IdentifierMarker = "AMD-GPU-BOOST"
	FunctionMarker   = "apply_boost_optimizations"

	// StartMarker opens the inserted block and CallLine closes it.
	StartMarker = "# === AMD-GPU-BOOST INTEGRATION ==="
	CallLine    = "apply_boost_optimizations()"
)

// Block is the code inserted into an entry file. It defines the
// initialization routine and calls it at import time; every failure inside
// the routine is logged and swallowed so the host app keeps starting.
const Block = `import os
import logging
import torch
# === AMD-GPU-BOOST INTEGRATION ===
def apply_boost_optimizations():
    """Applies AMD-GPU-BOOST Software-Overclocking for AMD GPUs"""
    boost_logger = logging.getLogger("BOOST_LOADER")
    boost_logger.setLevel(logging.INFO)
    handler = logging.StreamHandler()
    boost_logger.addHandler(handler)
    # === ROCm Check ===
    if torch.version.hip:
        boost_logger.info(f"ROCm detected: {torch.version.hip}")
    else:
        boost_logger.warning("No ROCm backend detected – AMD-GPU-BOOST may not apply")
        return  # bail out early when ROCm is not active
    try:
        os.environ.setdefault("BOOST_FORCE_MP_COUNT", "72")
        os.environ.setdefault("BOOST_FORCE_WARP_SIZE", "64")
        os.environ.setdefault("ROCM_PATH", "/opt/rocm-6.4.2")
        os.environ.setdefault("HIP_VISIBLE_DEVICES", "0")
        import boost_v11_plus
        boost_v11_plus.apply_boost_patches()
        boost_logger.info("🚀 AMD-GPU-BOOST activated!")
    except ImportError:
        boost_logger.warning("⚠️ AMD-GPU-BOOST not available")
    except Exception as e:
        boost_logger.warning(f"⚠️ AMD-GPU-BOOST initialization failed: {e}")
# Apply AMD-GPU-BOOST before any GPU operations
apply_boost_optimizations()

`

// encodingDecl matches a PEP 263 source encoding comment.
var encodingDecl = regexp.MustCompile(`^[ \t\f]*#.*?coding[:=][ \t]*[-_.a-zA-Z0-9]+`)

// isPreamble reports whether line must stay above the inserted block.
func isPreamble(line string) bool {
	return strings.HasPrefix(line, "#!") || encodingDecl.MatchString(line)
}

// InsertionLine returns the index of the first line that is neither a
// shebang nor an encoding declaration, scanning from the top.
func InsertionLine(lines []string) int {
	pos := 0
	for i, line := range lines {
		if !isPreamble(line) {
			break
		}
		pos = i + 1
	}
	return pos
}

// Insert returns content with Block inserted as a single line element at
// the insertion line. Lines are split and rejoined on "\n", so everything
// outside the block is preserved byte for byte.
func Insert(content string) string {
	lines := strings.Split(content, "\n")
	lines = slices.Insert(lines, InsertionLine(lines), Block)
	return strings.Join(lines, "\n")
}

// Excise removes the span from StartMarker through the end of the first
// following line whose trimmed text is CallLine, including that line's
// newline. It fails with ErrNotPatched when the start marker is absent and
// with ErrCallMarkerMissing when no call line follows it.
func Excise(content string) (string, error) {
	start := strings.Index(content, StartMarker)
	if start < 0 {
		return "", ErrNotPatched
	}

	pos := start
	for pos < len(content) {
		end := strings.IndexByte(content[pos:], '\n')
		var line string
		next := len(content)
		if end >= 0 {
			line = content[pos : pos+end]
			next = pos + end + 1
		} else {
			line = content[pos:]
		}
		if strings.TrimSpace(line) == CallLine {
			return content[:start] + content[next:], nil
		}
		pos = next
	}
	return "", ErrCallMarkerMissing
}
