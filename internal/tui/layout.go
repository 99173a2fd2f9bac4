// pattern: Functional Core

package tui

// Region defines a rectangular area within the terminal.
type Region struct {
	X      int // Left position (0-indexed)
	Y      int // Top position (0-indexed)
	Width  int // Width in cells
	Height int // Height in lines
}

// Layout holds computed regions for all UI components.
type Layout struct {
	Header    Region // Title + root path (2 lines)
	List      Region // App list (dynamic)
	Separator Region // Separator between list and logs (1 line when logs open)
	Logs      Region // Log panel when open (dynamic, 40% of content area)
	StatusBar Region // Status bar (1 line)
}

// Fixed heights for chrome elements
const (
	headerHeight    = 2 // Title + root path
	statusBarHeight = 1 // Status bar
	marginHeight    = 1 // Blank line above the status bar
	separatorHeight = 1 // Separator when log panel open
)

// ComputeLayout calculates regions based on terminal dimensions.
// When logPanelOpen is true, the content area splits 60/40 vertically (list/logs).
func ComputeLayout(width, height int, logPanelOpen bool) Layout {
	availableHeight := height - headerHeight - statusBarHeight - marginHeight

	// Ensure minimum usable height
	if availableHeight < 4 {
		availableHeight = 4
	}

	var listHeight, logsHeight int
	if logPanelOpen {
		listHeight = int(float64(availableHeight) * 0.6)
		logsHeight = availableHeight - listHeight - separatorHeight
		if logsHeight < 1 {
			logsHeight = 1
		}
	} else {
		listHeight = availableHeight
	}

	y := 0
	header := Region{X: 0, Y: y, Width: width, Height: headerHeight}
	y += headerHeight

	list := Region{X: 0, Y: y, Width: width, Height: listHeight}
	y += listHeight

	var separator, logs Region
	if logPanelOpen {
		separator = Region{X: 0, Y: y, Width: width, Height: separatorHeight}
		y += separatorHeight

		logs = Region{X: 0, Y: y, Width: width, Height: logsHeight}
		y += logsHeight
	}
	y += marginHeight

	statusBar := Region{X: 0, Y: y, Width: width, Height: statusBarHeight}

	return Layout{
		Header:    header,
		List:      list,
		Separator: separator,
		Logs:      logs,
		StatusBar: statusBar,
	}
}

// ListHeight returns the height available for list items.
func (l Layout) ListHeight() int {
	if l.List.Height < 1 {
		return 1
	}
	return l.List.Height
}
