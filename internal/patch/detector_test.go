package patch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMarkerDetector(t *testing.T) {
	dir := t.TempDir()

	files := map[string]string{
		"clean.py":       "import gradio\nlaunch()\n",
		"identifier.py":  "# mentions AMD-GPU-BOOST in passing\nimport gradio\n",
		"function.py":    "x = 'apply_boost_optimizations'\n",
		"late_marker.py": strings.Repeat("#\n", headSize) + "AMD-GPU-BOOST\n",
		"binary.py":      "\xff\xfeAMD-GPU-BOOST\x80",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name    string
		entries []string
		want    bool
	}{
		{"clean file", []string{"clean.py"}, false},
		{"identifier in a comment counts", []string{"identifier.py"}, true},
		{"function name in a string counts", []string{"function.py"}, true},
		{"marker past the window is ignored", []string{"late_marker.py"}, false},
		{"invalid bytes are skipped", []string{"binary.py"}, true},
		{"any entry suffices", []string{"clean.py", "function.py"}, true},
		{"unreadable entries are skipped", []string{"missing.py", "identifier.py"}, true},
		{"no entries", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var paths []string
			for _, e := range tt.entries {
				paths = append(paths, filepath.Join(dir, e))
			}
			if got := (MarkerDetector{}).IsPatched(paths); got != tt.want {
				t.Errorf("IsPatched() = %v, want %v", got, tt.want)
			}
		})
	}
}
