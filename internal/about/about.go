// Package about holds the product blurb shown by the about command and the
// TUI about panel.
package about

import "fmt"

const ProjectURL = "https://github.com/Painter3000/AMD-GPU-BOOST"

const body = `From 25%% to 100%% GPU Utilization!

Fixes AMD GPU underperformance in AI/ML applications by correcting
PyTorch's ROCm hardware detection at runtime.

Supported GPUs:
  RDNA2: RX 6400 - RX 6950 XT
  RDNA3: RX 7600 - RX 7900 XTX
  RDNA4: Future support planned

Performance Gains: Up to 4x faster inference!

GitHub: %s
Issues: Report bugs and request features

MIT License - Free to use, modify, distribute`

// Text returns the about blurb headed by the installer version.
func Text(version string) string {
	return fmt.Sprintf("AMD-GPU-BOOST Installer %s (for Pinokio)\n\n", version) + fmt.Sprintf(body, ProjectURL)
}
