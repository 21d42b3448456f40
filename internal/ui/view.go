package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	humanize "github.com/dustin/go-humanize"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing…"
	}

	switch m.state {
	case StatePicking:
		return m.viewPicker()
	case StateScanning:
		return m.viewScanning()
	case StateError:
		return m.viewError()
	case StateBrowsing:
		return m.viewBrowse()
	}
	return ""
}

// viewPicker renders the volume selection screen.
func (m Model) viewPicker() string {
	lines := make([]string, 0, len(m.volumes)+4)
	lines = append(lines, styleHeader.Width(m.width).Render("  duscan — pick a volume"))
	lines = append(lines, "")

	if len(m.volumes) == 0 {
		lines = append(lines, styleScanning.Render("  "+m.sp.View()+" detecting volumes…"))
	}

	for i, v := range m.volumes {
		used := v.Total - v.Free
		pct := float64(used) / float64(v.Total)
		bar := usageBar(pct, 20)
		row := fmt.Sprintf("  %s  %s %s / %s  %s",
			padRight(v.Path, 24),
			bar,
			humanize.IBytes(used),
			humanize.IBytes(v.Total),
			styleDim.Render(v.Fstype),
		)
		if i == m.volCursor {
			row = styleSelected.Width(m.width).Render(row)
		}
		lines = append(lines, row)
	}

	lines = append(lines, "")
	lines = append(lines, styleFooter.Width(m.width).Render(" ↑↓/jk move  enter scan  q quit"))
	return strings.Join(lines, "\n")
}

// viewScanning renders the live progress screen, reading the shared counters
// each frame.
func (m Model) viewScanning() string {
	files := m.progress.FilesScanned()
	dirs := m.progress.DirsScanned()
	errs := m.progress.Errors()

	header := styleHeader.Width(m.width).Render("  duscan")
	status := styleScanning.Render(fmt.Sprintf("\n  %s Scanning %s…", m.sp.View(), m.rootPath))
	counters := fmt.Sprintf("\n  %s files   %s dirs   %s errors\n",
		humanize.Comma(int64(files)), humanize.Comma(int64(dirs)), humanize.Comma(int64(errs)))
	current := styleDim.Render("  " + truncate(m.progress.CurrentPath(), m.width-4) + "\n")
	hint := styleFooter.Width(m.width).Render(" Press q to quit")
	return lipgloss.JoinVertical(lipgloss.Left, header, status, counters, current, hint)
}

// viewError renders an error screen.
func (m Model) viewError() string {
	header := styleHeader.Width(m.width).Render("  duscan — Error")
	msg := styleError.Render(fmt.Sprintf("\n  ✗ %v\n", m.scanErr))
	hint := styleFooter.Width(m.width).Render(" Press q to quit")
	return lipgloss.JoinVertical(lipgloss.Left, header, msg, hint)
}

// viewBrowse renders the main tree browser screen.
func (m Model) viewBrowse() string {
	lines := make([]string, 0, m.height)

	lines = append(lines, styleHeader.Width(m.width).Render("  duscan"))
	lines = append(lines, styleBreadcrumb.Width(m.width).Render(m.breadcrumb()))
	lines = append(lines, styleDivider.Render(strings.Repeat("─", m.width)))

	children := m.visibleChildren()
	current := m.currentDir()
	totalSize := int64(0)
	if current != nil {
		totalSize = current.Size
	}

	// Reserve header+breadcrumb+divider+divider+status+hints rows, plus one
	// spare row.
	listHeight := m.height - 7
	if listHeight < 1 {
		listHeight = 1
	}

	start, end := scrollWindow(m.cursor, len(children), listHeight)
	for i := start; i < end; i++ {
		lines = append(lines, m.renderRow(children[i], i, len(children), totalSize, i == m.cursor))
	}
	for i := end - start; i < listHeight; i++ {
		lines = append(lines, "")
	}

	lines = append(lines, styleDivider.Render(strings.Repeat("─", m.width)))

	sortLabel := "size"
	if m.sortByName {
		sortLabel = "name"
	}
	errs := ""
	if n := m.progress.Errors(); n > 0 {
		errs = fmt.Sprintf("  skipped: %d", n)
	}
	statusLeft := fmt.Sprintf(" %d items  total: %s  sort: %s%s",
		len(children), humanize.IBytes(uint64(totalSize)), sortLabel, errs)
	statusRight := scrollIndicator(m.cursor, len(children)) + " "
	gap := m.width - utf8.RuneCountInString(statusLeft) - utf8.RuneCountInString(statusRight)
	if gap < 0 {
		gap = 0
	}
	lines = append(lines, styleFooter.Render(statusLeft+strings.Repeat(" ", gap)+statusRight))
	lines = append(lines, m.keyHints())

	return strings.Join(lines, "\n")
}

// renderRow renders a single file/dir row with a proportional usage bar.
func (m Model) renderRow(node *Node, rank, total int, parentSize int64, selected bool) string {
	barMaxW := m.width / 4
	if barMaxW > 30 {
		barMaxW = 30
	}
	if barMaxW < 4 {
		barMaxW = 4
	}

	pct := 0.0
	if parentSize > 0 {
		pct = float64(node.Size) / float64(parentSize)
	}
	barLen := int(pct * float64(barMaxW))
	if barLen == 0 && node.Size > 0 {
		barLen = 1
	}

	color := barColor(rank, total)
	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", barLen)) +
		lipgloss.NewStyle().Foreground(colorDim).Render(strings.Repeat("░", barMaxW-barLen))

	icon := styleFile.Render("  ")
	nameStyle := styleRow
	if node.IsDir {
		icon = styleDir.Render(" ")
		nameStyle = styleDir
	}

	nameW := m.width - barMaxW - 18 // 18 = size(9) + pct(5) + gaps
	if nameW < 10 {
		nameW = 10
	}
	name := nameStyle.Width(nameW).Render(icon + truncate(node.Name, nameW-3))

	sizeStr := styleSize.Render(humanize.IBytes(uint64(node.Size)))
	pctStr := stylePct.Render(fmt.Sprintf("%4.0f%%", pct*100))

	row := bar + " " + name + sizeStr + pctStr
	if selected {
		return styleSelected.Width(m.width).Render(row)
	}
	return row
}

// breadcrumb returns a readable "root › dir › subdir" path. The root node's
// name is the absolute scan path.
func (m Model) breadcrumb() string {
	parts := []string{" " + m.rootPath}
	for _, n := range m.stack {
		parts = append(parts, n.Name)
	}
	return strings.Join(parts, " › ")
}

// keyHints returns the footer key hint string.
func (m Model) keyHints() string {
	k := func(key, desc string) string {
		return styleKey.Render(key) + " " + desc + "  "
	}
	raw := " " +
		k("↑↓/jk", "move") +
		k("→/enter", "enter") +
		k("←/bsp", "back") +
		k("s", "sort") +
		k("q", "quit")
	return styleFooter.Width(m.width).Render(raw)
}

// usageBar renders a fixed-width fill bar for the volume picker.
func usageBar(pct float64, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 1 {
		pct = 1
	}
	fill := int(pct * float64(width))
	return styleBarFill.Render(strings.Repeat("█", fill)) +
		styleDim.Render(strings.Repeat("░", width-fill))
}

// scrollWindow returns [start, end) to keep cursor visible in height rows.
func scrollWindow(cursor, total, height int) (int, int) {
	if total <= height {
		return 0, total
	}
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	end := start + height
	if end > total {
		end = total
		start = end - height
		if start < 0 {
			start = 0
		}
	}
	return start, end
}

// scrollIndicator shows a simple N/total indicator.
func scrollIndicator(cursor, total int) string {
	if total == 0 {
		return "0/0"
	}
	return fmt.Sprintf("%d/%d", cursor+1, total)
}

// truncate shortens a string with an ellipsis if it exceeds maxLen runes.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

// padRight pads s with spaces to width runes.
func padRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return truncate(s, width)
	}
	return s + strings.Repeat(" ", width-n)
}
