package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Color palette
	colorAccent = lipgloss.Color("#2980b9")
	colorTeal   = lipgloss.Color("#1abc9c")
	colorDim    = lipgloss.Color("#445566")
	colorWhite  = lipgloss.Color("#e8eef0")
	colorGray   = lipgloss.Color("#8899aa")
	colorRed    = lipgloss.Color("#e74c3c")
	colorOrange = lipgloss.Color("#e67e22")
	colorYellow = lipgloss.Color("#f1c40f")
	colorGreen  = lipgloss.Color("#2ecc71")

	// Bar colors by size percentile (index 0 = largest)
	barColors = []lipgloss.Color{
		colorRed,
		colorOrange,
		colorYellow,
		colorTeal,
		colorGreen,
		colorDim,
	}

	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite).
			Background(colorAccent).
			Padding(0, 2)

	styleBreadcrumb = lipgloss.NewStyle().
			Foreground(colorTeal).
			Italic(true).
			Padding(0, 1)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.Color("#1a2a4a")).
			Bold(true)

	styleRow = lipgloss.NewStyle().
			Foreground(colorWhite)

	styleDir = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	styleFile = lipgloss.NewStyle().
			Foreground(colorGray)

	styleSize = lipgloss.NewStyle().
			Foreground(colorTeal).
			Width(9).
			Align(lipgloss.Right)

	stylePct = lipgloss.NewStyle().
			Foreground(colorGray).
			Width(5).
			Align(lipgloss.Right)

	styleFooter = lipgloss.NewStyle().
			Foreground(colorGray).
			Background(lipgloss.Color("#111822")).
			Padding(0, 1)

	styleKey = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	styleScanning = lipgloss.NewStyle().
			Foreground(colorYellow).
			Bold(true)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	styleDivider = lipgloss.NewStyle().
			Foreground(colorDim)

	styleDim = lipgloss.NewStyle().
			Foreground(colorDim)

	styleBarFill = lipgloss.NewStyle().
			Foreground(colorAccent)
)

// barColor picks a color based on the item's rank in the list.
func barColor(rank, total int) lipgloss.Color {
	if total <= 1 {
		return barColors[0]
	}
	idx := (rank * (len(barColors) - 1)) / (total - 1)
	if idx >= len(barColors) {
		idx = len(barColors) - 1
	}
	return barColors[idx]
}
